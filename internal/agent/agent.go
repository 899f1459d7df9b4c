package agent

import (
	"context"
	"fmt"

	"fishcatch/internal/coach"
	"fishcatch/internal/guardrail"
	"fishcatch/internal/llm"
)

// Agent drafts buyer outreach messages and validates every artifact it
// produces against the guardrail battery. Each failed check is coached
// through the engine so refusals always carry an explanation.
type Agent struct {
	coach *coach.Engine
	llm   llm.Provider
	model string
	id    string
	typ   guardrail.AgentType
}

// New creates the sales-coordinator agent. A nil provider disables LLM
// drafting; the deterministic template is used instead.
func New(engine *coach.Engine, provider llm.Provider, model, agentID string) *Agent {
	return &Agent{
		coach: engine,
		llm:   provider,
		model: model,
		id:    agentID,
		typ:   guardrail.SalesCoordinator,
	}
}

// GenerateBuyerMessages drafts one message per candidate buyer and runs
// each draft through the integrity checks. Drafts that trip a blocking
// check are discarded; warned drafts are kept. The batch as a whole is
// blocked only when no verified price exists.
func (a *Agent) GenerateBuyerMessages(ctx context.Context, c Catch, price *Price, buyers []Buyer) (*BatchResult, error) {
	result := &BatchResult{Drafts: []Draft{}, Violations: []coach.Result{}}

	if price == nil {
		v := a.violation(guardrail.HallucinationPrevention, guardrail.SeverityCritical,
			fmt.Sprintf("Attempted to draft buyer messages for %s with no verified price", c.FishType),
			"Never draft messages without a scraped or manually verified price")
		coached, err := a.coach.Coach(ctx, v)
		if err != nil {
			return nil, err
		}
		result.Violations = append(result.Violations, *coached)
		result.Blocked = true
		return result, nil
	}

	for _, buyer := range buyers {
		if buyer.ContactedRecently {
			v := a.violation(guardrail.BusinessRelationshipProtection, guardrail.SeverityHigh,
				fmt.Sprintf("Buyer %s was already contacted within the last 24 hours", buyer.Name),
				"Wait at least 24 hours between messages to the same buyer")
			coached, err := a.coach.Coach(ctx, v)
			if err != nil {
				return nil, err
			}
			result.Violations = append(result.Violations, *coached)
			continue
		}

		text := a.draftText(ctx, c, *price, buyer)

		rejected := false
		for _, v := range a.checkDraft(text, c, *price, buyer, buyers) {
			coached, err := a.coach.Coach(ctx, v)
			if err != nil {
				return nil, err
			}
			result.Violations = append(result.Violations, *coached)
			if blocksDraft(v) {
				rejected = true
			}
		}
		if rejected {
			continue
		}

		result.Drafts = append(result.Drafts, Draft{
			BuyerID:   buyer.ID,
			BuyerName: buyer.Name,
			Text:      text,
			Catch:     c,
			Price:     *price,
		})
	}

	return result, nil
}

// ValidateCatchLog checks a catch entry before it is accepted. Bad
// fish types and non-positive pounds block; an implausibly large haul
// is recorded as a warning only.
func (a *Agent) ValidateCatchLog(ctx context.Context, fishType string, pounds float64) (*ValidationResult, error) {
	result := &ValidationResult{Violations: []coach.Result{}}

	if !ValidFishType(fishType) {
		v := a.violation(guardrail.DataIntegrity, guardrail.SeverityHigh,
			fmt.Sprintf("Catch log has unknown fish type %q", fishType),
			"Fish type must be one of Crab, Salmon, Halibut, Other")
		coached, err := a.coach.Coach(ctx, v)
		if err != nil {
			return nil, err
		}
		result.Violations = append(result.Violations, *coached)
		result.Blocked = true
	}

	switch {
	case pounds <= 0:
		v := a.violation(guardrail.DataIntegrity, guardrail.SeverityHigh,
			fmt.Sprintf("Catch log has non-positive pounds: %v", pounds),
			"Pounds must be greater than zero")
		coached, err := a.coach.Coach(ctx, v)
		if err != nil {
			return nil, err
		}
		result.Violations = append(result.Violations, *coached)
		result.Blocked = true

	case pounds > 10000:
		v := a.violation(guardrail.DataIntegrity, guardrail.SeverityMedium,
			fmt.Sprintf("Catch log reports %v pounds, above the plausible single-trip range", pounds),
			"Double-check hauls over 10000 lbs before logging")
		coached, err := a.coach.Coach(ctx, v)
		if err != nil {
			return nil, err
		}
		result.Violations = append(result.Violations, *coached)
	}

	return result, nil
}

// ValidateDataAccess guards reads of stored business data. Nothing is
// checked once the caller is authenticated.
func (a *Agent) ValidateDataAccess(ctx context.Context, isAuthenticated bool, resource string) (*ValidationResult, error) {
	result := &ValidationResult{Violations: []coach.Result{}}
	if isAuthenticated {
		return result, nil
	}

	v := a.violation(guardrail.DataAccessControl, guardrail.SeverityCritical,
		fmt.Sprintf("Unauthenticated access attempt to %s", resource),
		"All business data requires an authenticated session")
	coached, err := a.coach.Coach(ctx, v)
	if err != nil {
		return nil, err
	}
	result.Violations = append(result.Violations, *coached)
	result.Blocked = true
	return result, nil
}

// violation builds a violation attributed to this agent.
func (a *Agent) violation(g guardrail.Guardrail, sev guardrail.Severity, what, expected string) guardrail.Violation {
	return guardrail.Violation{
		AgentID:      a.id,
		AgentType:    a.typ,
		Guardrail:    g,
		Severity:     sev,
		WhatHappened: what,
		Expected:     expected,
	}
}
