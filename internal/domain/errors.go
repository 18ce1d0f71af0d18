package domain

import "errors"

var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrMissingCredential   = errors.New("provider credential is required")
	ErrMissingDocument     = errors.New("document file or text is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
)
