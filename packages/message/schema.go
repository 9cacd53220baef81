package message

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateSchema checks a prepared JSON body against the JSON Schema
// file at schemaPath. A non-nil error means the body must not be sent.
func ValidateSchema(body []byte, schemaPath string) error {
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("resolve schema path: %w", err)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs))
	bodyLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, bodyLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&b, "\n  - %s", desc)
		}
		return fmt.Errorf("body does not match schema %s:%s", schemaPath, b.String())
	}

	return nil
}
