package validate

// buildInvoiceSchema returns the canonical invoice record as a JSON-Schema
// (draft 2020-12 subset) generic map. It is the machine-checkable counterpart
// of the extraction instruction: every required field, every semantic type,
// fraud_score bounded to [0,100], currency exactly three uppercase letters.
// Numbers must be JSON numbers; numeric-looking strings fail here on purpose,
// since coercing malformed backend output would mask extraction failures the
// auditor needs to see.
func buildInvoiceSchema() map[string]any {
	lineItem := map[string]any{
		"type":     "object",
		"required": []string{"description", "quantity", "unit_price", "total"},
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "number", "minimum": 0},
			"unit_price":  map[string]any{"type": "number", "minimum": 0},
			"total":       map[string]any{"type": "number"},
		},
	}

	riskAssessment := map[string]any{
		"type":     "object",
		"required": []string{"is_math_correct", "flagged_issues", "fraud_score"},
		"properties": map[string]any{
			"is_math_correct": map[string]any{"type": "boolean"},
			"flagged_issues": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"fraud_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		},
	}

	return map[string]any{
		"type": "object",
		"required": []string{
			"vendor_name", "invoice_date", "invoice_number", "line_items",
			"subtotal", "tax_amount", "grand_total", "currency", "risk_assessment",
		},
		"properties": map[string]any{
			"vendor_name":   map[string]any{"type": "string", "minLength": 1},
			"invoice_date":  map[string]any{"type": "string"},
			"invoice_number": map[string]any{"type": "string"},
			"line_items": map[string]any{
				"type":  "array",
				"items": lineItem,
			},
			"subtotal":        map[string]any{"type": "number"},
			"tax_amount":      map[string]any{"type": "number"},
			"grand_total":     map[string]any{"type": "number"},
			"currency":        map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
			"risk_assessment": riskAssessment,
		},
	}
}
