// Package schemas validates structured documents against JSON Schemas. The
// CandidateRecord schema is embedded and checks remote parser replies.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed candidate_record.schema.json
var candidateSchemaJSON string

var candidateSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(candidateSchemaJSON))
})

// FieldError is one schema violation. Field is a dotted path such as
// "experiences.0.company", or "(root)".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the paths of the violating fields, in report order.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		fields[i] = fe.Field
	}
	return fields
}

// DocumentError reports a document that could not be read as JSON, or an
// embedded schema that failed to compile.
type DocumentError struct {
	Subject string
	Cause   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Subject, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// CandidateSchema returns the embedded CandidateRecord schema source.
func CandidateSchema() string {
	return candidateSchemaJSON
}

// ValidateCandidate checks that jsonContent has the CandidateRecord shape.
// Unknown properties are allowed; known ones must have the right types.
func ValidateCandidate(jsonContent string) error {
	schema, err := candidateSchema()
	if err != nil {
		return &DocumentError{Subject: "candidate_record.schema.json", Cause: err}
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &DocumentError{Subject: "candidate record is not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
