package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fishcatch/internal/coach"
	"fishcatch/internal/llm"
)

// scriptedProvider returns a fixed completion, or an error.
type scriptedProvider struct {
	text string
	err  error
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.text}, nil
}

func newTestAgent(provider llm.Provider) *Agent {
	return New(coach.New(coach.NewMemStore()), provider, "test-model", "fishing_agent_001")
}

func halibutCatch() Catch  { return Catch{FishType: "Halibut", Pounds: 450} }
func halibutPrice() *Price { return &Price{FishType: "Halibut", PerLb: 4.20, Source: "pacific_pride"} }

func john() Buyer { return Buyer{ID: "b1", Name: "John", Phone: "5551234567"} }

func TestGenerateWithoutPriceBlocks(t *testing.T) {
	a := newTestAgent(nil)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), nil, []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if !result.Blocked {
		t.Error("missing price must block the batch")
	}
	if len(result.Drafts) != 0 {
		t.Errorf("drafts = %d, want 0", len(result.Drafts))
	}
	if len(result.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(result.Violations))
	}
	if result.Violations[0].Depth != coach.DepthCritical {
		t.Errorf("Depth = %q, want critical", result.Violations[0].Depth)
	}
}

func TestTemplateDraftQuotesAllFacts(t *testing.T) {
	a := newTestAgent(nil)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if result.Blocked {
		t.Error("batch should not be blocked")
	}
	if len(result.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(result.Drafts))
	}
	text := result.Drafts[0].Text
	for _, want := range []string{"450", "$4.20", "Halibut", "John"} {
		if !strings.Contains(text, want) {
			t.Errorf("draft %q missing %q", text, want)
		}
	}
	if len(result.Violations) != 0 {
		t.Errorf("violations = %d, want 0", len(result.Violations))
	}
}

func TestDraftOmittingPoundsIsRejected(t *testing.T) {
	provider := &scriptedProvider{text: "Hey John, fresh Halibut today at $4.20/lb. Interested?"}
	a := newTestAgent(provider)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if len(result.Drafts) != 0 {
		t.Errorf("drafts = %d, want 0 after fact check failure", len(result.Drafts))
	}
	if result.Blocked {
		t.Error("a rejected draft must not block the batch")
	}
	if len(result.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(result.Violations))
	}
	v := result.Violations[0]
	if v.Depth != coach.DepthCritical || !v.Blocked {
		t.Errorf("hallucination violation should be critical and blocked, got %+v", v)
	}
	if !strings.Contains(v.Coaching, "450") {
		t.Error("coaching should name the missing pound count")
	}
}

func TestRecentlyContactedBuyerSkipped(t *testing.T) {
	a := newTestAgent(nil)

	buyers := []Buyer{
		{ID: "b1", Name: "John", Phone: "5551234567", ContactedRecently: true},
		{ID: "b2", Name: "Maria", Phone: "5559876543"},
	}
	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), buyers)
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if result.Blocked {
		t.Error("buyer skip must not block the batch")
	}
	if len(result.Drafts) != 1 || result.Drafts[0].BuyerID != "b2" {
		t.Errorf("drafts = %+v, want only b2", result.Drafts)
	}
	if len(result.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(result.Violations))
	}
	if result.Violations[0].Depth != coach.DepthHigh {
		t.Errorf("Depth = %q, want high", result.Violations[0].Depth)
	}
}

func TestDraftLeakingOtherBuyerIsRejected(t *testing.T) {
	provider := &scriptedProvider{
		text: "Hey John, got 450 lbs fresh Halibut at $4.20/lb. Maria already asked about it. Interested?",
	}
	a := newTestAgent(provider)

	buyers := []Buyer{john(), {ID: "b2", Name: "Maria", Phone: "5559876543"}}
	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), buyers)
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}

	var sawPII bool
	for _, d := range result.Drafts {
		if d.BuyerID == "b1" {
			t.Error("draft leaking another buyer's name must be discarded")
		}
	}
	for _, v := range result.Violations {
		if strings.Contains(v.Coaching, "contact details of another buyer") {
			sawPII = true
		}
	}
	if !sawPII {
		t.Error("expected a pii violation for the leaked name")
	}
}

func TestCommitmentLanguageWarnsButKeepsDraft(t *testing.T) {
	provider := &scriptedProvider{
		text: "Hey John, got 450 lbs fresh Halibut at $4.20/lb. It's basically sold if you want it.",
	}
	a := newTestAgent(provider)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if len(result.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1 (warn-only check)", len(result.Drafts))
	}
	if len(result.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(result.Violations))
	}
	v := result.Violations[0]
	if v.Blocked {
		t.Error("commitment language must not block")
	}
	if !strings.Contains(v.Coaching, "sold") {
		t.Error("coaching should name the offending phrase")
	}
}

func TestWrongTotalIsRejected(t *testing.T) {
	// 450 lbs at $4.20/lb is $1890; $2,000 deviates by more than 1%.
	provider := &scriptedProvider{
		text: "Hey John, got 450 lbs fresh Halibut at $4.20/lb, that's $2,000 total. Interested?",
	}
	a := newTestAgent(provider)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if len(result.Drafts) != 0 {
		t.Errorf("drafts = %d, want 0 after financial check failure", len(result.Drafts))
	}
	var found *coach.Result
	for i, v := range result.Violations {
		if strings.Contains(v.Coaching, "incorrect financial figure") {
			found = &result.Violations[i]
		}
	}
	if found == nil {
		t.Fatal("expected a financial accuracy violation")
	}
	// The financial check records at high depth; the draft is discarded
	// by the check itself, not by coaching depth.
	if found.Depth != coach.DepthHigh {
		t.Errorf("Depth = %q, want high", found.Depth)
	}
	if found.Blocked {
		t.Error("financial coaching itself should not be marked blocked")
	}
}

func TestCorrectTotalIsAccepted(t *testing.T) {
	provider := &scriptedProvider{
		text: "Hey John, got 450 lbs fresh Halibut at $4.20/lb, that's $1,890.00 total. Interested?",
	}
	a := newTestAgent(provider)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if len(result.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(result.Drafts))
	}
	if len(result.Violations) != 0 {
		t.Errorf("violations = %d, want 0, got %+v", len(result.Violations), result.Violations)
	}
}

func TestProviderFailureFallsBackToTemplate(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("provider down")}
	a := newTestAgent(provider)

	result, err := a.GenerateBuyerMessages(context.Background(), halibutCatch(), halibutPrice(), []Buyer{john()})
	if err != nil {
		t.Fatalf("GenerateBuyerMessages: %v", err)
	}
	if len(result.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1 from template fallback", len(result.Drafts))
	}
	if !strings.Contains(result.Drafts[0].Text, "Cannery buying at $4.20/lb") {
		t.Errorf("expected template text, got %q", result.Drafts[0].Text)
	}
}

func TestValidateCatchLog(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown fish type blocks", func(t *testing.T) {
		a := newTestAgent(nil)
		result, err := a.ValidateCatchLog(ctx, "Tuna", 100)
		if err != nil {
			t.Fatalf("ValidateCatchLog: %v", err)
		}
		if !result.Blocked {
			t.Error("unknown fish type must block")
		}
	})

	t.Run("non-positive pounds blocks", func(t *testing.T) {
		a := newTestAgent(nil)
		result, err := a.ValidateCatchLog(ctx, "Crab", 0)
		if err != nil {
			t.Fatalf("ValidateCatchLog: %v", err)
		}
		if !result.Blocked {
			t.Error("zero pounds must block")
		}
	})

	t.Run("huge haul warns without blocking", func(t *testing.T) {
		a := newTestAgent(nil)
		result, err := a.ValidateCatchLog(ctx, "Salmon", 15000)
		if err != nil {
			t.Fatalf("ValidateCatchLog: %v", err)
		}
		if result.Blocked {
			t.Error("oversized haul must not block")
		}
		if len(result.Violations) != 1 || result.Violations[0].Depth != coach.DepthMedium {
			t.Errorf("violations = %+v, want one medium warning", result.Violations)
		}
	})

	t.Run("valid catch passes clean", func(t *testing.T) {
		a := newTestAgent(nil)
		result, err := a.ValidateCatchLog(ctx, "Halibut", 450)
		if err != nil {
			t.Fatalf("ValidateCatchLog: %v", err)
		}
		if result.Blocked || len(result.Violations) != 0 {
			t.Errorf("result = %+v, want clean pass", result)
		}
	})
}

func TestValidateDataAccess(t *testing.T) {
	ctx := context.Background()

	a := newTestAgent(nil)
	result, err := a.ValidateDataAccess(ctx, false, "sales history")
	if err != nil {
		t.Fatalf("ValidateDataAccess: %v", err)
	}
	if !result.Blocked {
		t.Error("unauthenticated access must block")
	}
	if len(result.Violations) != 1 || result.Violations[0].Depth != coach.DepthCritical {
		t.Errorf("violations = %+v, want one critical", result.Violations)
	}

	result, err = a.ValidateDataAccess(ctx, true, "sales history")
	if err != nil {
		t.Fatalf("ValidateDataAccess: %v", err)
	}
	if result.Blocked || len(result.Violations) != 0 {
		t.Error("authenticated access must pass without checks")
	}
}

func TestRepeatedViolationsEscalateThroughAgent(t *testing.T) {
	a := newTestAgent(nil)
	ctx := context.Background()

	var last *ValidationResult
	for i := 0; i < 3; i++ {
		result, err := a.ValidateDataAccess(ctx, false, "buyer list")
		if err != nil {
			t.Fatalf("ValidateDataAccess: %v", err)
		}
		last = result
	}
	if !strings.Contains(last.Violations[0].Coaching, "3 times") {
		t.Error("third violation should name the exact count")
	}
}
