package guardrail

import "fmt"

// Guardrail names a fixed business-integrity rule checked against
// machine-generated artifacts. The set is closed: every dispatch table in
// the coaching engine switches over these values.
type Guardrail string

const (
	HallucinationPrevention        Guardrail = "hallucination_prevention"
	PIIProtection                  Guardrail = "pii_protection"
	CommunicationIntegrity         Guardrail = "communication_integrity"
	FinancialAccuracy              Guardrail = "financial_accuracy"
	DataIntegrity                  Guardrail = "data_integrity"
	DataAccessControl              Guardrail = "data_access_control"
	BusinessRelationshipProtection Guardrail = "business_relationship_protection"
)

// All lists every known guardrail.
var All = []Guardrail{
	HallucinationPrevention,
	PIIProtection,
	CommunicationIntegrity,
	FinancialAccuracy,
	DataIntegrity,
	DataAccessControl,
	BusinessRelationshipProtection,
}

// Known reports whether g names a guardrail from the fixed taxonomy.
func Known(g Guardrail) bool {
	switch g {
	case HallucinationPrevention, PIIProtection, CommunicationIntegrity,
		FinancialAccuracy, DataIntegrity, DataAccessControl,
		BusinessRelationshipProtection:
		return true
	}
	return false
}

// Severity grades how serious a violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AgentType identifies the coached role that produced an artifact.
// This system fields a single sales coordinator, but the coaching engine
// keys its strategy tables on the type so new roles slot in.
type AgentType string

const (
	SalesCoordinator AgentType = "sales_coordinator"
)

// Violation is a single failed guardrail check. Violations are data, not
// errors: they are always returned to the caller together with coaching,
// never raised across the validation/coaching boundary.
type Violation struct {
	AgentID      string            `json:"agent_id"`
	AgentType    AgentType         `json:"agent_type"`
	Guardrail    Guardrail         `json:"guardrail"`
	Severity     Severity          `json:"severity"`
	WhatHappened string            `json:"what_happened"`
	Expected     string            `json:"expected"`
	Context      map[string]string `json:"context,omitempty"`
}

// Validate checks the coaching contract: a violation must carry an agent
// id, a description, and exactly one guardrail from the fixed taxonomy.
// A violation failing this check indicates a coding bug in a producer,
// so callers should fail loud rather than default.
func (v Violation) Validate() error {
	if v.AgentID == "" {
		return fmt.Errorf("violation missing agent id")
	}
	if v.WhatHappened == "" {
		return fmt.Errorf("violation missing description")
	}
	if !Known(v.Guardrail) {
		return fmt.Errorf("unknown guardrail %q", v.Guardrail)
	}
	return nil
}
