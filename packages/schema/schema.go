// Package schema validates response bodies against JSON Schema documents.
package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

// Result reports the outcome of validating one response body.
type Result struct {
	Valid  bool
	Errors []string
}

// ValidateResponse checks the response body against the given schema
// document.
func ValidateResponse(resp *rest.Response, schemaData []byte) (*Result, error) {
	return ValidateBody([]byte(resp.Body), schemaData)
}

// ValidateBody checks a JSON document against the given schema document.
func ValidateBody(document, schemaData []byte) (*Result, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return &Result{Valid: true}, nil
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return &Result{Errors: errors}, nil
}

// ValidateFile checks a JSON document against a schema read from disk.
func ValidateFile(document []byte, schemaPath string) (*Result, error) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ValidateBody(document, schemaData)
}

// Summary returns a single-line description of the validation errors.
func (r *Result) Summary() string {
	if r.Valid {
		return ""
	}
	return strings.Join(r.Errors, "; ")
}
