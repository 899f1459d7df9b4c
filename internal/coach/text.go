package coach

import (
	"fmt"
	"strings"

	"fishcatch/internal/guardrail"
)

// rationales explains, per agent type, why a guardrail matters. The
// wording is business-facing: it is shown verbatim to the human operator
// whenever a draft is withheld.
var rationales = map[guardrail.Guardrail]map[guardrail.AgentType]string{
	guardrail.HallucinationPrevention: {
		guardrail.SalesCoordinator: "Buyers rely on accurate information to make purchasing decisions. " +
			"False prices, weights, or availability damage trust and can end business relationships. " +
			"Always use verified data from logged catches and scraped prices.",
	},
	guardrail.PIIProtection: {
		guardrail.SalesCoordinator: "Buyer contact information is confidential business data. Exposing it violates " +
			"privacy and could expose the fisherman to legal issues. Never include buyer " +
			"lists or contact details in messages or logs.",
	},
	guardrail.DataAccessControl: {
		guardrail.SalesCoordinator: "Historical catch and sales data is sensitive business information. " +
			"Unauthorized access could expose competitive intelligence or be used for fraud. " +
			"Only authenticated users can access this data.",
	},
	guardrail.FinancialAccuracy: {
		guardrail.SalesCoordinator: "Price calculations affect real money and business relationships. " +
			"Incorrect math can cost the fisherman income or damage buyer trust. " +
			"Always verify: pounds x price per lb = total.",
	},
	guardrail.CommunicationIntegrity: {
		guardrail.SalesCoordinator: "Messages represent the fisherman directly. Sending without approval " +
			"removes his control over his business. All messages must be reviewed " +
			"and approved before sending.",
	},
	guardrail.BusinessRelationshipProtection: {
		guardrail.SalesCoordinator: "Buyer relationships are valuable. Duplicate messages, messages at wrong times, " +
			"or pushy communication can damage these relationships. Always check before contacting.",
	},
	guardrail.DataIntegrity: {
		guardrail.SalesCoordinator: "Catch logs feed every downstream decision: prices quoted, buyers contacted, " +
			"sales reconciled. A bad fish type or weight poisons all of them. " +
			"Validate ranges and enums before the record is saved.",
	},
}

func rationaleFor(g guardrail.Guardrail, agentType guardrail.AgentType) string {
	if byType, ok := rationales[g]; ok {
		if text, ok := byType[agentType]; ok {
			return text
		}
	}
	return fmt.Sprintf("This guardrail protects integrity and safety for %s agents.", agentType)
}

// principles states the one-sentence rule behind each guardrail.
var principles = map[guardrail.Guardrail]string{
	guardrail.HallucinationPrevention:        "Only use verified data from logged catches and scraped prices. Never fabricate or estimate values.",
	guardrail.PIIProtection:                  "Treat all buyer information as confidential. Never expose contact details.",
	guardrail.DataAccessControl:              "Require authentication for all data access. Log access attempts.",
	guardrail.FinancialAccuracy:              "Verify all calculations: pounds x price_per_lb. Show your work.",
	guardrail.CommunicationIntegrity:         "All messages are drafts until a human approves. Never auto-send.",
	guardrail.BusinessRelationshipProtection: "Check message history and buyer preferences before contacting.",
	guardrail.DataIntegrity:                  "Validate every catch field against its allowed range before saving.",
}

func principleFor(g guardrail.Guardrail) string {
	if p, ok := principles[g]; ok {
		return p
	}
	return "Follow the guardrail consistently."
}

// examples holds the before/after pair shown for each strategy.
var examples = map[StrategyID]string{
	StrategySales: `Bad (hallucinating):
"Got 500 lbs halibut today. Cannery buying at $5.00/lb."
(Actually: logged 450 lbs, cannery shows $4.20/lb)

Good (accurate with verification):
"Got 450 lbs halibut today. Cannery buying at $4.20/lb. Interested?"
(Matches logged catch: 450 lbs, scraped price: $4.20/lb)`,

	StrategyDataPrivacy: `Bad (exposing PII):
"Here's my buyer list: John (360-555-1234), Mike (360-555-5678)..."

Good (protected):
Message sent to John only, no mention of other buyers.`,

	StrategyCalculation: `Bad (wrong math):
450 lbs x $4.20/lb = $1,800 (incorrect)

Good (correct math):
450 lbs x $4.20/lb = $1,890`,

	StrategyAccessControl: `Bad (open door):
Returning sales history to an unauthenticated caller.

Good (gated):
Reject the request, record the attempt, ask the caller to log in.`,

	StrategyApproval: `Bad (committing):
"Deal. Meet me at the dock at 6, final price $1,890."

Good (informing):
"Got 450 lbs halibut, cannery at $4.20/lb. Interested?"`,

	StrategyRelationship: `Bad (pestering):
Second message to the same buyer within a day.

Good (patient):
Skip the buyer until 24 hours have passed since the last contact.`,

	StrategyDataChecks: `Bad (garbage in):
Logging fish_type "Tuna" with -40 pounds.

Good (validated):
Logging one of Crab/Salmon/Halibut/Other with a positive weight.`,
}

func examplesFor(s Strategy) string {
	if text, ok := examples[s.ID]; ok {
		return text
	}
	return "Follow the principle above."
}

// fixes gives the single concrete instruction for this violation.
var fixes = map[guardrail.Guardrail]string{
	guardrail.HallucinationPrevention:        "Verify data against the logged catch and the scraped price. Only use verified values.",
	guardrail.PIIProtection:                  "Remove all buyer contact information from the output. Message one buyer at a time.",
	guardrail.DataAccessControl:              "Check authentication before allowing access. Log the attempt.",
	guardrail.FinancialAccuracy:              "Recalculate: pounds x price_per_lb. Show the calculation.",
	guardrail.CommunicationIntegrity:         "Mark the message as a draft. Wait for human approval before sending.",
	guardrail.BusinessRelationshipProtection: "Check message history for contacts in the last 24 hours before drafting.",
	guardrail.DataIntegrity:                  "Re-enter the catch with a valid fish type and a positive weight.",
}

func fixFor(g guardrail.Guardrail) string {
	if f, ok := fixes[g]; ok {
		return f
	}
	return "Reformulate the output to address the guardrail violation."
}

// humanReviewWarning is the escalation phrase that must appear from the
// third recurrence of the same guardrail onward.
const humanReviewWarning = "this may escalate to human review"

// patternAnalysis escalates through three bands keyed on how many times
// the agent has now violated this guardrail, current violation included.
func patternAnalysis(g guardrail.Guardrail, count int) string {
	switch {
	case count <= 1:
		return "First time violating this guardrail. Stay aware and you should be fine."
	case count == 2:
		return "This is the 2nd violation of this type. Focus on the principle above."
	default:
		return fmt.Sprintf("PATTERN: you have violated %s %d times. "+
			"This requires immediate behavioral change. If it continues, %s.",
			g, count, humanReviewWarning)
	}
}

// buildCoaching assembles the coaching text from its fixed sections, in
// order: what happened, why it matters, core principle, worked examples,
// immediate fix, pattern analysis.
func buildCoaching(v guardrail.Violation, profile *Profile, strat Strategy, occurrence int) string {
	sections := []string{
		"What happened:\n" + v.WhatHappened,
		"Why it matters:\n" + rationaleFor(v.Guardrail, profile.AgentType),
		"Core principle:\n" + principleFor(v.Guardrail),
		"Examples:\n" + examplesFor(strat),
		"Immediate fix:\n" + fixFor(v.Guardrail),
		"Pattern analysis:\n" + patternAnalysis(v.Guardrail, occurrence),
	}
	return strings.Join(sections, "\n\n")
}

// suggestions returns the generic improvement checklist delivered with
// every coaching.
func suggestions() []string {
	return []string{
		"Review the principle above",
		"Verify data before using it",
		"Ask for human review if unsure",
	}
}

// followups recommends next actions; repeat offenders get stronger ones.
func followups(priorCount int) []string {
	var actions []string
	if priorCount > 2 {
		actions = append(actions,
			"Review guardrail documentation thoroughly",
			"Request human feedback on the next similar request",
		)
	}
	actions = append(actions, "Refer back to this coaching before similar requests")
	return actions
}

// formatPeerLessons renders up to the given lessons as a numbered list.
// Returns "" when there is nothing to share.
func formatPeerLessons(lessons []string) string {
	if len(lessons) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Other agents learned:\n")
	for i, lesson := range lessons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, lesson)
	}
	return strings.TrimRight(b.String(), "\n")
}
