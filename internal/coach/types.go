package coach

import (
	"time"

	"fishcatch/internal/guardrail"
)

// Depth is the coaching depth tier assigned to a violation. A depth of
// critical blocks the offending artifact outright.
type Depth string

const (
	DepthCritical Depth = "critical"
	DepthHigh     Depth = "high"
	DepthMedium   Depth = "medium"
	DepthLow      Depth = "low"
	DepthInfo     Depth = "info"
)

// depthFor maps a violation severity to a coaching depth. Unknown
// severities default to medium rather than failing: severity is advisory,
// the guardrail itself carries the safety decision.
func depthFor(sev guardrail.Severity) Depth {
	switch sev {
	case guardrail.SeverityCritical:
		return DepthCritical
	case guardrail.SeverityHigh:
		return DepthHigh
	case guardrail.SeverityMedium:
		return DepthMedium
	case guardrail.SeverityLow:
		return DepthLow
	default:
		return DepthMedium
	}
}

// LearningLevel describes how experienced an agent is with coaching.
type LearningLevel string

const (
	LevelNovice       LearningLevel = "novice"
	LevelIntermediate LearningLevel = "intermediate"
	LevelAdvanced     LearningLevel = "advanced"
)

// Profile tracks the evolving behavioral record of one producing agent.
// Profiles are created lazily on first violation and never deleted.
type Profile struct {
	AgentID          string                      `json:"agent_id"`
	AgentType        guardrail.AgentType         `json:"agent_type"`
	LearningLevel    LearningLevel               `json:"learning_level"`
	ViolationCounts  map[guardrail.Guardrail]int `json:"violation_counts"`
	ImprovementScore float64                     `json:"improvement_score"`
	Receptiveness    float64                     `json:"receptiveness"`
	CoachingStyle    string                      `json:"coaching_style"`
	Expertise        []string                    `json:"expertise"`
	Weaknesses       []string                    `json:"weaknesses"`
	LastCoaching     *time.Time                  `json:"last_coaching,omitempty"`
}

// newProfile returns the starting profile for an agent seen for the
// first time: intermediate level, fully receptive, clean history.
func newProfile(agentID string, agentType guardrail.AgentType) *Profile {
	return &Profile{
		AgentID:          agentID,
		AgentType:        agentType,
		LearningLevel:    LevelIntermediate,
		ViolationCounts:  map[guardrail.Guardrail]int{},
		ImprovementScore: 0.8,
		Receptiveness:    1.0,
		CoachingStyle:    "balanced",
		Expertise:        []string{"commercial_fishing", "sales_communication"},
		Weaknesses:       []string{},
	}
}

// Event is one append-only coaching log entry. The description and
// delivered coaching are immutable once written; only the outcome fields
// may be backfilled later via RecordOutcome.
type Event struct {
	ID                   string              `json:"id"`
	Timestamp            time.Time           `json:"timestamp"`
	AgentID              string              `json:"agent_id"`
	AgentType            guardrail.AgentType `json:"agent_type"`
	Guardrail            guardrail.Guardrail `json:"guardrail"`
	Depth                Depth               `json:"depth"`
	ViolationDescription string              `json:"violation_description"`
	CoachingDelivered    string              `json:"coaching_delivered"`
	AgentResponse        *string             `json:"agent_response,omitempty"`
	Improved             *bool               `json:"improved,omitempty"`
	ImprovementTimeline  *int                `json:"improvement_timeline,omitempty"`
}

// Result is what the engine hands back for a single violation. It is not
// persisted; the matching Event is.
type Result struct {
	EventID                string   `json:"event_id"`
	Coaching               string   `json:"coaching"`
	Depth                  Depth    `json:"depth"`
	Suggestions            []string `json:"suggestions"`
	Principle              string   `json:"principle"`
	Followups              []string `json:"followups"`
	PredictedEffectiveness float64  `json:"predicted_effectiveness"`
	PeerLessons            string   `json:"peer_lessons,omitempty"`
	Blocked                bool     `json:"blocked"`
}
