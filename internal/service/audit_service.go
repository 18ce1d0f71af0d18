package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fraudit/internal/config"
	"fraudit/internal/domain"
	"fraudit/internal/extractor"
	"fraudit/internal/port"
	"fraudit/internal/recon"
	"fraudit/internal/validate"
)

// maxAttempts bounds adapter invocations per run: the initial call plus at
// most one retry, whether triggered by a transient adapter failure or by a
// low-quality reply that failed validation.
const maxAttempts = 2

// Stage identifies where in the pipeline a run failed.
type Stage string

const (
	StageAdapter    Stage = "adapter"
	StageValidation Stage = "validation"
)

// PipelineError wraps exactly one stage failure. It is the only error type
// Run returns; no raw failure crosses to the caller.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// RunInput carries one extraction request. The credential is scoped to this
// run and is never logged or retained.
type RunInput struct {
	Provider     domain.Provider
	Credential   string
	DocumentText string
}

// AuditService is the single entry point of the extraction pipeline.
type AuditService interface {
	Run(ctx context.Context, input *RunInput) (*domain.InvoiceExtraction, error)
}

type auditService struct {
	extractors     map[domain.Provider]port.InvoiceExtractor
	validator      *validate.Validator
	checker        *recon.Checker
	requestTimeout time.Duration
	retryBackoff   time.Duration
}

// NewAuditService creates an AuditService over the given per-provider
// extractors.
func NewAuditService(
	extractors map[domain.Provider]port.InvoiceExtractor,
	validator *validate.Validator,
	checker *recon.Checker,
	cfg *config.PipelineConfig,
) AuditService {
	return &auditService{
		extractors:     extractors,
		validator:      validator,
		checker:        checker,
		requestTimeout: cfg.RequestTimeout(),
		retryBackoff:   cfg.RetryBackoff(),
	}
}

// Run invokes the selected extractor, validates its reply against the
// canonical schema, and reconciles the risk assessment against recomputed
// arithmetic. Retries are sequential and bounded: only transient adapter
// failures (rate limit, timeout) and a single failed-validation reply earn a
// second adapter call.
func (s *auditService) Run(ctx context.Context, input *RunInput) (*domain.InvoiceExtraction, error) {
	ext, ok := s.extractors[input.Provider]
	if !ok {
		return nil, &PipelineError{Stage: StageAdapter, Err: fmt.Errorf("%w: %s", domain.ErrUnknownProvider, input.Provider)}
	}
	if input.Credential == "" {
		return nil, &PipelineError{Stage: StageAdapter, Err: domain.ErrMissingCredential}
	}

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	attempt := 0
	for {
		attempt++

		raw, err := ext.Extract(ctx, input.Credential, input.DocumentText)
		if err != nil {
			var ae *extractor.AdapterError
			if errors.As(err, &ae) && ae.Retryable() && attempt < maxAttempts {
				log.Printf("auditService.Run: %s attempt %d failed (%s), retrying after backoff", input.Provider, attempt, ae.Kind)
				if werr := s.wait(ctx, s.backoffFor(ae)); werr != nil {
					return nil, &PipelineError{Stage: StageAdapter, Err: err}
				}
				continue
			}
			return nil, &PipelineError{Stage: StageAdapter, Err: err}
		}

		rec, verr := s.validator.Validate(raw)
		if verr != nil {
			if attempt < maxAttempts {
				log.Printf("auditService.Run: %s reply failed validation (%v), re-invoking once", input.Provider, verr)
				continue
			}
			return nil, &PipelineError{Stage: StageValidation, Err: verr}
		}

		s.checker.Reconcile(rec)
		return rec, nil
	}
}

// backoffFor prefers the provider's Retry-After over the configured backoff.
func (s *auditService) backoffFor(ae *extractor.AdapterError) time.Duration {
	if ae.RetryAfter > 0 {
		return ae.RetryAfter
	}
	return s.retryBackoff
}

func (s *auditService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
