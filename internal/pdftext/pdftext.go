package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrorKind classifies a text extraction failure.
type ErrorKind string

const (
	KindUnreadable  ErrorKind = "unreadable"
	KindEncrypted   ErrorKind = "encrypted"
	KindNoTextLayer ErrorKind = "no_text_layer"
)

// ExtractionError is the typed failure returned by ExtractText.
type ExtractionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf text extraction failed (%s): %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor implements port.TextExtractor over the PDF text layer. Scanned
// image-only documents have no text layer and fail with KindNoTextLayer; OCR
// is out of scope.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText concatenates the plain text of every page. The PDF library can
// panic on malformed input, so the whole walk runs under a recover that
// reports the document as unreadable.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Kind: KindUnreadable, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", &ExtractionError{Kind: KindEncrypted, Err: err}
		}
		return "", &ExtractionError{Kind: KindUnreadable, Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if ctx.Err() != nil {
			return "", &ExtractionError{Kind: KindUnreadable, Err: ctx.Err()}
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			// A single bad page does not fail the document; later pages may
			// still carry the invoice body.
			continue
		}
		sb.WriteString(pageText)
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		return "", &ExtractionError{
			Kind: KindNoTextLayer,
			Err:  errors.New("document contains no extractable text (possibly a scanned image)"),
		}
	}
	return out, nil
}
