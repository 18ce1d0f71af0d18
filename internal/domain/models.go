package domain

// LineItem is a single billed line on an invoice, in document order.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// RiskAssessment carries the backend's forensic judgment of the invoice.
// IsMathCorrect and FlaggedIssues may be amended during reconciliation;
// FraudScore is backend-authored but subject to a minimum floor when the
// recomputed arithmetic disagrees with the backend's claim.
type RiskAssessment struct {
	IsMathCorrect bool     `json:"is_math_correct"`
	FlaggedIssues []string `json:"flagged_issues"`
	FraudScore    int      `json:"fraud_score"`
}

// InvoiceExtraction is the canonical audited invoice record. Every provider's
// reply is normalized into this shape before anything downstream sees it.
type InvoiceExtraction struct {
	VendorName     string         `json:"vendor_name"`
	InvoiceDate    string         `json:"invoice_date"`
	InvoiceNumber  string         `json:"invoice_number"`
	LineItems      []LineItem     `json:"line_items"`
	Subtotal       float64        `json:"subtotal"`
	TaxAmount      float64        `json:"tax_amount"`
	GrandTotal     float64        `json:"grand_total"`
	Currency       string         `json:"currency"`
	RiskAssessment RiskAssessment `json:"risk_assessment"`
}

// RiskBand buckets a fraud score for presentation.
type RiskBand string

const (
	RiskBandLow    RiskBand = "low"
	RiskBandMedium RiskBand = "medium"
	RiskBandHigh   RiskBand = "high"
)

// BandForScore maps a fraud score to its risk band.
func BandForScore(score int) RiskBand {
	switch {
	case score < 20:
		return RiskBandLow
	case score < 60:
		return RiskBandMedium
	default:
		return RiskBandHigh
	}
}
