package recon

import (
	"fmt"
	"math"
	"time"

	"fraudit/internal/domain"
)

const (
	// DefaultEpsilon absorbs rounding in currency arithmetic.
	DefaultEpsilon = 0.01
	// DefaultFraudScoreFloor is the minimum fraud score when recomputed math
	// contradicts the backend's claim that the math is correct.
	DefaultFraudScoreFloor = 40
)

// Checker independently re-derives the arithmetic of a validated record and
// reconciles the backend's self-reported risk assessment against it. The
// recomputation is authoritative for is_math_correct; the backend's narrative
// issues and fraud score remain advisory, except that the score is floored
// when the backend understates a provable arithmetic inconsistency.
type Checker struct {
	epsilon    float64
	fraudFloor int
}

// NewChecker creates a Checker. Non-positive arguments fall back to defaults.
func NewChecker(epsilon float64, fraudFloor int) *Checker {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	if fraudFloor <= 0 {
		fraudFloor = DefaultFraudScoreFloor
	}
	return &Checker{epsilon: epsilon, fraudFloor: fraudFloor}
}

// Reconcile recomputes ground truth and amends the record's risk assessment
// in place. Line items and totals are never modified.
func (c *Checker) Reconcile(rec *domain.InvoiceExtraction) {
	mismatches := c.findMismatches(rec)
	computed := len(mismatches) == 0

	ra := &rec.RiskAssessment
	ra.FlaggedIssues = append(ra.FlaggedIssues, mismatches...)

	if computed != ra.IsMathCorrect {
		ra.FlaggedIssues = append(ra.FlaggedIssues, fmt.Sprintf(
			"reconciliation: backend reported is_math_correct=%t but recomputation found %t",
			ra.IsMathCorrect, computed,
		))
		ra.IsMathCorrect = computed
	}

	if !computed && ra.FraudScore < c.fraudFloor {
		ra.FlaggedIssues = append(ra.FlaggedIssues, fmt.Sprintf(
			"reconciliation: fraud score raised from %d to floor %d due to arithmetic inconsistency",
			ra.FraudScore, c.fraudFloor,
		))
		ra.FraudScore = c.fraudFloor
	}

	if _, err := time.Parse("2006-01-02", rec.InvoiceDate); err != nil {
		ra.FlaggedIssues = append(ra.FlaggedIssues, fmt.Sprintf(
			"invoice_date %q is not in YYYY-MM-DD format", rec.InvoiceDate,
		))
	}
}

// findMismatches runs the arithmetic checks and returns one message per
// mismatch. An empty result means the math adds up.
func (c *Checker) findMismatches(rec *domain.InvoiceExtraction) []string {
	var mismatches []string

	for i := range rec.LineItems {
		item := &rec.LineItems[i]
		expected := item.Quantity * item.UnitPrice
		if !c.approxEqual(expected, item.Total) {
			mismatches = append(mismatches, fmt.Sprintf(
				"line_items[%d].total mismatch: expected %s (quantity * unit_price), got %s",
				i, fmtf(expected), fmtf(item.Total),
			))
		}
	}

	var sum float64
	for i := range rec.LineItems {
		sum += rec.LineItems[i].Total
	}
	if !c.approxEqual(sum, rec.Subtotal) {
		mismatches = append(mismatches, fmt.Sprintf(
			"subtotal mismatch: expected %s (sum of line item totals), got %s",
			fmtf(sum), fmtf(rec.Subtotal),
		))
	}

	expectedGrand := rec.Subtotal + rec.TaxAmount
	if !c.approxEqual(expectedGrand, rec.GrandTotal) {
		mismatches = append(mismatches, fmt.Sprintf(
			"grand_total mismatch: expected %s (subtotal + tax_amount), got %s",
			fmtf(expectedGrand), fmtf(rec.GrandTotal),
		))
	}

	return mismatches
}

// approxEqual treats a difference of up to epsilon as equal. The extra slack
// absorbs float64 representation error so a difference of exactly one cent
// (e.g. 108.01 - 108.00, which exceeds 0.01 in float64) still passes.
func (c *Checker) approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= c.epsilon+1e-9
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
