package coach

import (
	"testing"

	"fishcatch/internal/guardrail"
)

func TestStrategyTableCoversAllGuardrails(t *testing.T) {
	for _, g := range guardrail.All {
		s := selectStrategy(g, guardrail.SalesCoordinator, LevelIntermediate)
		if s.ID == StrategyDefault {
			t.Errorf("guardrail %q has no sales-coordinator strategy", g)
		}
	}
}

func TestStrategyUnknownPairingFallsBackToDefault(t *testing.T) {
	s := selectStrategy(guardrail.PIIProtection, guardrail.AgentType("quant"), LevelIntermediate)
	if s.ID != StrategyDefault {
		t.Errorf("StrategyID = %q, want default", s.ID)
	}
}

func TestStrategyVariantTracksLearningLevel(t *testing.T) {
	cases := []struct {
		level LearningLevel
		want  Variant
	}{
		{LevelNovice, VariantDetailed},
		{LevelIntermediate, VariantBase},
		{LevelAdvanced, VariantCondensed},
		{LearningLevel("unset"), VariantBase},
	}
	for _, tc := range cases {
		s := selectStrategy(guardrail.FinancialAccuracy, guardrail.SalesCoordinator, tc.level)
		if s.Variant != tc.want {
			t.Errorf("level %q: variant = %q, want %q", tc.level, s.Variant, tc.want)
		}
	}
}

func TestExamplesExistForEveryStrategy(t *testing.T) {
	for _, id := range []StrategyID{
		StrategySales, StrategyDataPrivacy, StrategyAccessControl,
		StrategyCalculation, StrategyApproval, StrategyRelationship,
		StrategyDataChecks,
	} {
		if examplesFor(Strategy{ID: id}) == "Follow the principle above." {
			t.Errorf("strategy %q has no worked examples", id)
		}
	}
}
