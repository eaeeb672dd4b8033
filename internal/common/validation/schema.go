// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	compiled *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Compile builds a schema from a Go value such as map[string]interface{}.
func Compile(schema interface{}) (*Schema, error) {
	return compile(gojsonschema.NewGoLoader(schema))
}

// CompileBytes builds a schema from its JSON text.
func CompileBytes(schema []byte) (*Schema, error) {
	return compile(gojsonschema.NewBytesLoader(schema))
}

func compile(loader gojsonschema.JSONLoader) (*Schema, error) {
	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: s}, nil
}

// ValidateBytes checks a JSON document. The error is non-nil only when doc
// is not JSON at all; schema violations are reported in the result.
func (s *Schema) ValidateBytes(doc []byte) (*ValidationResult, error) {
	res, err := s.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, err
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, toValidationError(e))
	}
	return out, nil
}

func (s *Schema) ValidateString(doc string) (*ValidationResult, error) {
	return s.ValidateBytes([]byte(doc))
}

const rootContext = "(root)"

// errorCodes maps gojsonschema error types to our codes.
var errorCodes = map[string]string{
	"required":                        "REQUIRED_FIELD_MISSING",
	"invalid_type":                    "INVALID_TYPE",
	"string_gte":                      "MIN_LENGTH_VIOLATION",
	"string_lte":                      "MAX_LENGTH_VIOLATION",
	"pattern":                         "PATTERN_MISMATCH",
	"enum":                            "INVALID_ENUM_VALUE",
	"number_gte":                      "MINIMUM_VIOLATION",
	"number_lte":                      "MAXIMUM_VIOLATION",
	"additional_property_not_allowed": "EXTRA_FIELD",
	"array_min_items":                 "MIN_ITEMS_VIOLATION",
}

func toValidationError(e gojsonschema.ResultError) ValidationError {
	code, ok := errorCodes[e.Type()]
	if !ok {
		code = strings.ToUpper(e.Type())
	}

	field := e.Field()
	msg := e.Description()
	if e.Type() == "required" {
		// Report the missing property itself rather than its parent.
		if prop, ok := e.Details()["property"].(string); ok {
			if field == rootContext || field == "" {
				field = prop
			} else {
				field = field + "." + prop
			}
			msg = "required field missing"
		}
	}

	return ValidationError{Field: field, Message: msg, Code: code}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Error joins all messages, or returns "" for a valid result.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and anything nested under it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
