package pdftext_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudit/internal/pdftext"
)

func TestExtractText_NotAPDF(t *testing.T) {
	ex := pdftext.NewExtractor()

	_, err := ex.ExtractText(context.Background(), []byte("this is a plain text file"))

	var ee *pdftext.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, pdftext.KindUnreadable, ee.Kind)
}

func TestExtractText_EmptyInput(t *testing.T) {
	ex := pdftext.NewExtractor()

	_, err := ex.ExtractText(context.Background(), nil)

	var ee *pdftext.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, pdftext.KindUnreadable, ee.Kind)
}

func TestExtractText_TruncatedHeader(t *testing.T) {
	ex := pdftext.NewExtractor()

	// valid magic bytes but nothing else
	_, err := ex.ExtractText(context.Background(), []byte("%PDF-1.7\n"))

	var ee *pdftext.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, pdftext.KindUnreadable, ee.Kind)
	assert.Contains(t, err.Error(), "unreadable")
}
