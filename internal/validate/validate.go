package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"fraudit/internal/domain"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindMalformedJSON   ErrorKind = "malformed_json"
	KindSchemaViolation ErrorKind = "schema_violation"
)

// Error is the typed failure returned by Validate. Field is set for schema
// violations and names the offending field path.
type Error struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindSchemaViolation && e.Field != "" {
		return fmt.Sprintf("schema violation at %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validator checks a raw provider reply against the canonical invoice schema
// and produces the typed record. Safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles the canonical invoice schema into a Validator.
func New() (*Validator, error) {
	b, err := json.Marshal(buildInvoiceSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("invoice.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate parses rawReply as JSON, walks it against the canonical schema,
// and decodes it into the typed record. All-or-nothing: a partial record is
// never returned.
func (v *Validator) Validate(rawReply string) (*domain.InvoiceExtraction, error) {
	var parsed any
	if err := json.Unmarshal([]byte(rawReply), &parsed); err != nil {
		return nil, &Error{Kind: KindMalformedJSON, Err: err}
	}

	if err := v.schema.Validate(parsed); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := leafCause(ve)
			return nil, &Error{
				Kind:  KindSchemaViolation,
				Field: fieldPath(leaf.InstanceLocation),
				Err:   fmt.Errorf("%s", leaf.Message),
			}
		}
		return nil, &Error{Kind: KindSchemaViolation, Err: err}
	}

	var rec domain.InvoiceExtraction
	if err := json.Unmarshal([]byte(rawReply), &rec); err != nil {
		return nil, &Error{Kind: KindSchemaViolation, Err: err}
	}
	return &rec, nil
}

// leafCause walks to the deepest cause of a validation error, which names the
// actual offending field rather than the document root.
func leafCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// fieldPath converts a JSON-Schema instance location ("/line_items/0/total")
// to a dotted field path ("line_items.0.total").
func fieldPath(instanceLocation string) string {
	p := strings.TrimPrefix(instanceLocation, "/")
	if p == "" {
		return "(document root)"
	}
	return strings.ReplaceAll(p, "/", ".")
}
