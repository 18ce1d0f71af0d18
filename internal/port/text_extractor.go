package port

import "context"

// TextExtractor converts an opaque document blob into plain UTF-8 text.
// Failures are a classified *pdftext.ExtractionError.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
