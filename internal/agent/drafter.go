package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fishcatch/internal/llm"
)

// draftTimeout bounds the generation call so validation never blocks
// indefinitely waiting on a provider.
const draftTimeout = 10 * time.Second

const drafterSystemPrompt = "You write short, friendly text messages for a commercial fisherman " +
	"selling fresh catch directly to local buyers. One or two sentences, no emoji."

// draftText produces the outbound message text for one buyer. Any
// provider failure, timeout, or empty completion falls back to the
// deterministic template so drafting always yields a candidate.
func (a *Agent) draftText(ctx context.Context, c Catch, p Price, buyer Buyer) string {
	if a.llm == nil {
		return templateDraft(c, p, buyer)
	}

	ctx, cancel := context.WithTimeout(ctx, draftTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Draft a text message to %s offering %d lbs of fresh %s at %s/lb. "+
			"Quote the exact pounds, fish type, and price, ask if they are interested, "+
			"and do not promise a deal or a final price.",
		buyer.Name, int(c.Pounds), c.FishType, formatPrice(p.PerLb))

	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: drafterSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   160,
		Temperature: 0.7,
	})
	if err != nil {
		return templateDraft(c, p, buyer)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return templateDraft(c, p, buyer)
	}
	return text
}

// templateDraft is the deterministic fallback: facts only, one
// question, no commitment language.
func templateDraft(c Catch, p Price, buyer Buyer) string {
	return fmt.Sprintf("Hey %s, got %d lbs fresh %s today. Cannery buying at %s/lb. Interested?",
		buyer.Name, int(c.Pounds), c.FishType, formatPrice(p.PerLb))
}
