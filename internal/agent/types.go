package agent

import "fishcatch/internal/coach"

// Catch is the fact set for one logged catch. Facts are passed in by
// value; the agent never reaches into storage itself.
type Catch struct {
	FishType string  `json:"fish_type"`
	Pounds   float64 `json:"pounds"`
}

// Price is a verified price quote for one fish type.
type Price struct {
	FishType string  `json:"fish_type"`
	PerLb    float64 `json:"price_per_lb"`
	Source   string  `json:"source"`
}

// Buyer is one candidate recipient. ContactedRecently is resolved by
// the caller from message history before drafting starts.
type Buyer struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Phone             string   `json:"phone"`
	PreferredFish     []string `json:"preferred_fish,omitempty"`
	ContactedRecently bool     `json:"contacted_recently"`
}

// Draft is one accepted outbound message, pending human approval.
type Draft struct {
	BuyerID   string `json:"buyer_id"`
	BuyerName string `json:"buyer_name"`
	Text      string `json:"text"`
	Catch     Catch  `json:"catch"`
	Price     Price  `json:"price"`
}

// BatchResult aggregates per-buyer outcomes of one drafting run.
// Blocked is true only when no drafts may be generated at all;
// individual buyer skips and rejections never block the batch.
type BatchResult struct {
	Drafts     []Draft        `json:"drafts"`
	Violations []coach.Result `json:"violations"`
	Blocked    bool           `json:"blocked"`
}

// ValidationResult is the outcome of a single validation call.
type ValidationResult struct {
	Blocked    bool           `json:"blocked"`
	Violations []coach.Result `json:"violations"`
}

// ValidFishTypes is the closed set of fish types the operation deals in.
var ValidFishTypes = []string{"Crab", "Salmon", "Halibut", "Other"}

// ValidFishType reports whether the given fish type is recognized.
func ValidFishType(fishType string) bool {
	for _, ft := range ValidFishTypes {
		if ft == fishType {
			return true
		}
	}
	return false
}
