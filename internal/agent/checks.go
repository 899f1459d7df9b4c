package agent

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fishcatch/internal/guardrail"
)

// commitmentPhrases trip the communication-integrity check. Drafts must
// ask for interest, never commit to terms on the captain's behalf.
var commitmentPhrases = []string{"deal", "sold", "meet me", "pickup at", "final price", "agreed"}

var dollarPattern = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// formatPrice renders a per-pound price the way drafts must quote it.
func formatPrice(perLb float64) string {
	return fmt.Sprintf("$%.2f", perLb)
}

// checkDraft runs a draft through the full battery of integrity checks
// and returns every violation it triggers. The caller discards the
// draft if any returned violation blocks per blocksDraft.
func (a *Agent) checkDraft(text string, c Catch, p Price, buyer Buyer, all []Buyer) []guardrail.Violation {
	var violations []guardrail.Violation

	if v := a.checkFacts(text, c, p); v != nil {
		violations = append(violations, *v)
	}
	violations = append(violations, a.checkPII(text, buyer, all)...)
	if v := a.checkCommitmentLanguage(text); v != nil {
		violations = append(violations, *v)
	}
	violations = append(violations, a.checkDollarFigures(text, c, p)...)

	return violations
}

// blocksDraft reports whether a violation discards the draft it was
// raised against. Critical checks always block; a wrong dollar figure
// blocks too even though its severity is high.
func blocksDraft(v guardrail.Violation) bool {
	return v.Severity == guardrail.SeverityCritical || v.Guardrail == guardrail.FinancialAccuracy
}

// checkFacts verifies the draft quotes the verified facts exactly: the
// price figure, the integer pound count, and the fish-type token.
func (a *Agent) checkFacts(text string, c Catch, p Price) *guardrail.Violation {
	var missing []string

	priceStr := formatPrice(p.PerLb)
	if !strings.Contains(text, priceStr) {
		missing = append(missing, fmt.Sprintf("verified price %s/lb", priceStr))
	}

	poundsStr := strconv.Itoa(int(c.Pounds))
	if !strings.Contains(text, poundsStr) {
		missing = append(missing, fmt.Sprintf("pound count %s", poundsStr))
	}

	if !strings.Contains(strings.ToLower(text), strings.ToLower(c.FishType)) {
		missing = append(missing, fmt.Sprintf("fish type %s", c.FishType))
	}

	if len(missing) == 0 {
		return nil
	}
	v := a.violation(guardrail.HallucinationPrevention, guardrail.SeverityCritical,
		fmt.Sprintf("Draft message doesn't contain %s", strings.Join(missing, ", ")),
		"Message must quote the exact verified price, pound count, and fish type")
	return &v
}

// checkPII scans the draft for any other candidate buyer's name or
// phone number.
func (a *Agent) checkPII(text string, buyer Buyer, all []Buyer) []guardrail.Violation {
	var violations []guardrail.Violation
	lower := strings.ToLower(text)

	for _, other := range all {
		if other.ID == buyer.ID {
			continue
		}
		leaked := other.Name != "" && strings.Contains(lower, strings.ToLower(other.Name))
		if !leaked && other.Phone != "" {
			leaked = strings.Contains(text, other.Phone)
		}
		if leaked {
			v := a.violation(guardrail.PIIProtection, guardrail.SeverityCritical,
				fmt.Sprintf("Draft for %s contains contact details of another buyer (%s)", buyer.Name, other.Name),
				"Each message must reference only its own recipient")
			violations = append(violations, v)
		}
	}
	return violations
}

// checkCommitmentLanguage flags phrases that read as a binding
// commitment. Warn only; the captain may still choose to send.
func (a *Agent) checkCommitmentLanguage(text string) *guardrail.Violation {
	lower := strings.ToLower(text)
	var found []string
	for _, phrase := range commitmentPhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	if len(found) == 0 {
		return nil
	}
	v := a.violation(guardrail.CommunicationIntegrity, guardrail.SeverityMedium,
		fmt.Sprintf("Draft contains commitment language: %s", strings.Join(found, ", ")),
		"Drafts ask for interest; only the captain commits to terms")
	return &v
}

// checkDollarFigures scans every dollar amount in the draft. Amounts
// matching the verified per-pound price are legitimate; anything else
// must be within 1% of pounds times price-per-pound.
func (a *Agent) checkDollarFigures(text string, c Catch, p Price) []guardrail.Violation {
	var violations []guardrail.Violation
	expected := c.Pounds * p.PerLb

	for _, match := range dollarPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(match[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if math.Abs(value-p.PerLb) < 0.005 {
			continue
		}
		if math.Abs(value-expected) > 0.01*expected {
			v := a.violation(guardrail.FinancialAccuracy, guardrail.SeverityHigh,
				fmt.Sprintf("Draft message contains incorrect financial figure: %s (expected total %.2f)", match[0], expected),
				"Every quoted total must match pounds times the verified price within 1%")
			violations = append(violations, v)
		}
	}
	return violations
}
