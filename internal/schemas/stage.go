package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var schemaFS embed.FS

// Stage schema names, one per structured model response.
const (
	ValidateResponse = "validate_response"
	ClassifyResponse = "classify_response"
	CreateDetails    = "create_details"
	LookupCriteria   = "lookup_criteria"
)

// ForStage returns the embedded JSON Schema document for a stage response.
func ForStage(name string) (string, error) {
	data, err := schemaFS.ReadFile(name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{
			Name:    name,
			Message: "no embedded schema with this name",
			Cause:   err,
		}
	}
	return string(data), nil
}

// ValidateStage validates a model response against the stage's schema.
// A *ValidationError return means the document does not conform; any other
// error is a schema-loading problem.
func ValidateStage(name, jsonContent string) error {
	schema, err := ForStage(name)
	if err != nil {
		return err
	}
	if err := ValidateJSONString(schema, jsonContent); err != nil {
		return fmt.Errorf("%s response: %w", name, err)
	}
	return nil
}
