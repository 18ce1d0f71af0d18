package port

import "context"

// InvoiceExtractor abstracts one LLM backend behind a single operation.
//
// Extract packages the canonical instruction and the document text into the
// backend's request shape, makes exactly one outbound call, and returns the
// backend's reply payload as unparsed text. Retries are the orchestrator's
// concern, never the extractor's. The credential is scoped to this call and
// must not be retained or logged.
//
// Failures are always a classified *extractor.AdapterError.
type InvoiceExtractor interface {
	Extract(ctx context.Context, credential, documentText string) (string, error)
}
