package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fraudit/internal/domain"
	"fraudit/internal/extractor"
	"fraudit/internal/pdftext"
	"fraudit/internal/service"
	"fraudit/internal/validate"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response. Stage is set when the failure
// occurred inside the extraction pipeline, so a caller can tell "the provider
// couldn't be reached" apart from "the provider replied with garbage".
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// HandleError classifies any error from the pipeline or its collaborators
// and writes the mapped response.
func HandleError(c *gin.Context, err error) {
	status, apiErr := MapError(err)
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}

// MapError translates typed pipeline and collaborator errors to HTTP status
// codes and stable error codes.
func MapError(err error) (int, *APIError) {
	var pe *service.PipelineError
	if errors.As(err, &pe) {
		status, apiErr := mapStageError(pe.Err)
		apiErr.Stage = string(pe.Stage)
		return status, apiErr
	}

	var ee *pdftext.ExtractionError
	if errors.As(err, &ee) {
		switch ee.Kind {
		case pdftext.KindEncrypted:
			return http.StatusBadRequest, &APIError{Code: "DOCUMENT_ENCRYPTED", Message: "document is encrypted"}
		case pdftext.KindNoTextLayer:
			return http.StatusUnprocessableEntity, &APIError{Code: "DOCUMENT_NO_TEXT_LAYER", Message: "document contains no extractable text (OCR is not supported)"}
		default:
			return http.StatusBadRequest, &APIError{Code: "DOCUMENT_UNREADABLE", Message: "document could not be read"}
		}
	}

	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, &APIError{Code: "UNKNOWN_PROVIDER", Message: err.Error()}
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusBadRequest, &APIError{Code: "MISSING_CREDENTIAL", Message: "provider API key header is required"}
	case errors.Is(err, domain.ErrMissingDocument):
		return http.StatusBadRequest, &APIError{Code: "MISSING_DOCUMENT", Message: "either a file upload or a text field is required"}
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, &APIError{Code: "UNSUPPORTED_FILE_TYPE", Message: "unsupported file type; only PDF is accepted"}
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, &APIError{Code: "FILE_TOO_LARGE", Message: "file exceeds maximum allowed size"}
	}

	return http.StatusInternalServerError, &APIError{Code: "INTERNAL", Message: "internal error"}
}

func mapStageError(err error) (int, *APIError) {
	var ae *extractor.AdapterError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case extractor.KindUnauthorized:
			return http.StatusUnauthorized, &APIError{Code: "PROVIDER_UNAUTHORIZED", Message: "provider rejected the supplied credential"}
		case extractor.KindRateLimited:
			return http.StatusTooManyRequests, &APIError{Code: "PROVIDER_RATE_LIMITED", Message: "provider rate limit exceeded; try again later"}
		case extractor.KindTimeout:
			return http.StatusGatewayTimeout, &APIError{Code: "PROVIDER_TIMEOUT", Message: "provider did not respond in time"}
		case extractor.KindUnreachable:
			return http.StatusBadGateway, &APIError{Code: "PROVIDER_UNREACHABLE", Message: "provider could not be reached"}
		default:
			return http.StatusBadGateway, &APIError{Code: "PROVIDER_BAD_REPLY", Message: "provider returned an unusable response"}
		}
	}

	var ve *validate.Error
	if errors.As(err, &ve) {
		if ve.Kind == validate.KindMalformedJSON {
			return http.StatusBadGateway, &APIError{Code: "REPLY_MALFORMED_JSON", Message: "provider reply was not valid JSON"}
		}
		return http.StatusBadGateway, &APIError{Code: "REPLY_SCHEMA_VIOLATION", Message: "provider reply violated the invoice schema at field: " + ve.Field}
	}

	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, &APIError{Code: "UNKNOWN_PROVIDER", Message: err.Error()}
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusBadRequest, &APIError{Code: "MISSING_CREDENTIAL", Message: "provider API key header is required"}
	}

	return http.StatusInternalServerError, &APIError{Code: "INTERNAL", Message: "internal error"}
}
