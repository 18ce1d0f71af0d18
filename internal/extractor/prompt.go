package extractor

// InstructionVersion identifies the extraction instruction revision. The
// instruction is part of the extraction contract: changing its wording changes
// extraction behavior across every provider, so revisions must bump this.
const InstructionVersion = "2024-07"

// Instruction is the canonical extraction instruction sent to every provider.
// It is the single source of truth for what the backends are asked to do;
// provider packages differ only in how they package it into a request.
const Instruction = `You are an expert forensic accountant AI.
1. Extract invoice data from the text provided.
2. Strictly validate the math (Quantity * Unit Price = Total per line, and line items must sum to the subtotal).
3. Flag any discrepancies, missing details, ambiguous dates, or suspicious formatting in the 'risk_assessment'.
4. Calculate a 'fraud_score' (integer 0-100, where 100 is likely fraud).

Return pure JSON strictly matching this schema, with no markdown formatting, no code fences, and no explanation:
{
    "vendor_name": "...",
    "invoice_date": "YYYY-MM-DD",
    "invoice_number": "...",
    "line_items": [{"description": "...", "quantity": 0.0, "unit_price": 0.0, "total": 0.0}],
    "subtotal": 0.0,
    "tax_amount": 0.0,
    "grand_total": 0.0,
    "currency": "USD",
    "risk_assessment": {
        "is_math_correct": true,
        "flagged_issues": ["..."],
        "fraud_score": 0
    }
}

All amounts must be JSON numbers, never quoted strings. The currency must be a 3-letter uppercase code. Preserve line items in document order.`

// UserContent wraps the document text for providers with separate
// system/user roles.
func UserContent(documentText string) string {
	return "INVOICE TEXT:\n" + documentText
}

// CombinedPrompt joins the instruction and document text for providers that
// take a single prompt.
func CombinedPrompt(documentText string) string {
	return Instruction + "\n\n" + UserContent(documentText)
}
