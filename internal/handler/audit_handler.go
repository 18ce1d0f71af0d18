package handler

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"fraudit/internal/domain"
	"fraudit/internal/export"
	"fraudit/internal/port"
	"fraudit/internal/service"
)

// CredentialHeader carries the provider API key. It is read once per request
// and handed to the pipeline; it is never logged or stored.
const CredentialHeader = "X-Provider-Api-Key"

// AuditHandler handles invoice audit endpoints.
type AuditHandler struct {
	auditService  service.AuditService
	textExtractor port.TextExtractor
	maxFileBytes  int64
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService service.AuditService, textExtractor port.TextExtractor, maxFileSizeMB int64) *AuditHandler {
	return &AuditHandler{
		auditService:  auditService,
		textExtractor: textExtractor,
		maxFileBytes:  maxFileSizeMB * 1024 * 1024,
	}
}

// auditResult is the JSON payload for a completed audit.
type auditResult struct {
	Record   *domain.InvoiceExtraction `json:"record"`
	RiskBand domain.RiskBand           `json:"risk_band"`
	Provider domain.Provider           `json:"provider"`
}

// Audit handles POST /api/v1/audits. The request is a multipart form with a
// "provider" field and either a "file" (PDF) or a pre-extracted "text" field;
// the provider credential arrives in the X-Provider-Api-Key header. The
// "format" query parameter selects json (default), csv, or xlsx.
func (h *AuditHandler) Audit(c *gin.Context) {
	provider, err := domain.ParseProvider(c.PostForm("provider"))
	if err != nil {
		HandleError(c, err)
		return
	}

	credential := c.GetHeader(CredentialHeader)
	if credential == "" {
		HandleError(c, domain.ErrMissingCredential)
		return
	}

	text, err := h.documentText(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	rec, err := h.auditService.Run(c.Request.Context(), &service.RunInput{
		Provider:     provider,
		Credential:   credential,
		DocumentText: text,
	})
	if err != nil {
		log.Printf("auditHandler.Audit: run failed for provider %s: %v", provider, err)
		HandleError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		RespondOK(c, auditResult{
			Record:   rec,
			RiskBand: domain.BandForScore(rec.RiskAssessment.FraudScore),
			Provider: provider,
		})
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="audit.csv"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if werr := export.WriteCSV(c.Writer, rec); werr != nil {
			log.Printf("auditHandler.Audit: csv export failed: %v", werr)
		}
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="audit.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if werr := export.WriteXLSX(c.Writer, rec); werr != nil {
			log.Printf("auditHandler.Audit: xlsx export failed: %v", werr)
		}
	default:
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be json, csv, or xlsx")
	}
}

// TextPreview handles POST /api/v1/audits/text-preview: extract the text
// layer of an uploaded PDF without invoking any provider.
func (h *AuditHandler) TextPreview(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrMissingDocument)
		return
	}
	defer func() { _ = file.Close() }()

	text, err := h.readAndExtract(c, file, header)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"text": text})
}

// documentText resolves the document text for an audit request: an uploaded
// PDF wins over the raw text field.
func (h *AuditHandler) documentText(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer func() { _ = file.Close() }()
		return h.readAndExtract(c, file, header)
	}

	if text := c.PostForm("text"); text != "" {
		return text, nil
	}
	return "", domain.ErrMissingDocument
}

func (h *AuditHandler) readAndExtract(c *gin.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filepath.Ext(header.Filename))
	}
	if h.maxFileBytes > 0 && header.Size > h.maxFileBytes {
		return "", domain.ErrFileTooLarge
	}

	var r io.Reader = file
	if h.maxFileBytes > 0 {
		// one extra byte so an over-limit upload is detected, not truncated
		r = io.LimitReader(file, h.maxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if h.maxFileBytes > 0 && int64(len(data)) > h.maxFileBytes {
		return "", domain.ErrFileTooLarge
	}

	return h.textExtractor.ExtractText(c.Request.Context(), data)
}
