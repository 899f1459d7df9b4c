package coach

import "fishcatch/internal/guardrail"

// StrategyID names a coaching strategy: the family of worked examples and
// phrasing used when explaining a violation.
type StrategyID string

const (
	StrategySales         StrategyID = "sales_examples"
	StrategyDataPrivacy   StrategyID = "data_privacy_examples"
	StrategyAccessControl StrategyID = "access_control_examples"
	StrategyCalculation   StrategyID = "calculation_examples"
	StrategyApproval      StrategyID = "approval_examples"
	StrategyRelationship  StrategyID = "relationship_examples"
	StrategyDataChecks    StrategyID = "data_check_examples"
	StrategyDefault       StrategyID = "default"
)

// Variant adjusts strategy delivery to the agent's learning level.
type Variant string

const (
	VariantDetailed  Variant = "detailed"
	VariantBase      Variant = "base"
	VariantCondensed Variant = "condensed"
)

// Strategy is a fully resolved coaching approach.
type Strategy struct {
	ID      StrategyID
	Variant Variant
}

// strategyTable indexes the base strategy by (guardrail, agent type).
// Pairings absent from the table fall back to StrategyDefault.
var strategyTable = map[guardrail.Guardrail]map[guardrail.AgentType]StrategyID{
	guardrail.HallucinationPrevention: {
		guardrail.SalesCoordinator: StrategySales,
	},
	guardrail.PIIProtection: {
		guardrail.SalesCoordinator: StrategyDataPrivacy,
	},
	guardrail.DataAccessControl: {
		guardrail.SalesCoordinator: StrategyAccessControl,
	},
	guardrail.FinancialAccuracy: {
		guardrail.SalesCoordinator: StrategyCalculation,
	},
	guardrail.CommunicationIntegrity: {
		guardrail.SalesCoordinator: StrategyApproval,
	},
	guardrail.BusinessRelationshipProtection: {
		guardrail.SalesCoordinator: StrategyRelationship,
	},
	guardrail.DataIntegrity: {
		guardrail.SalesCoordinator: StrategyDataChecks,
	},
}

// selectStrategy resolves the coaching strategy for a violation. The base
// strategy is keyed by guardrail and agent type; the learning level picks
// the delivery variant (novice gets detailed, advanced gets condensed).
func selectStrategy(g guardrail.Guardrail, agentType guardrail.AgentType, level LearningLevel) Strategy {
	id := StrategyDefault
	if byType, ok := strategyTable[g]; ok {
		if s, ok := byType[agentType]; ok {
			id = s
		}
	}
	return Strategy{ID: id, Variant: variantFor(level)}
}

func variantFor(level LearningLevel) Variant {
	switch level {
	case LevelNovice:
		return VariantDetailed
	case LevelAdvanced:
		return VariantCondensed
	default:
		return VariantBase
	}
}
