package reporting

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// analysisSchemaV1 pins the shape of the machine-readable analysis artifact.
// Downstream tooling parses this file; validating at render time catches
// shape drift before an artifact ships.
const analysisSchemaV1 = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "scoping_analysis_v1",
  "type": "object",
  "required": ["job_ids", "generated_at", "spec", "documents", "estimate"],
  "properties": {
    "job_ids": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "generated_at": {"type": "string"},
    "spec": {"type": "object"},
    "documents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["record", "assessment", "classified"],
        "properties": {
          "record": {"type": "object"},
          "historical_matches": {"type": ["array", "null"]},
          "assessment": {"type": "object"},
          "classified": {"type": "boolean"}
        }
      }
    },
    "estimate": {
      "type": "object",
      "required": ["complexity_score", "total_words", "total_hours", "tat_hours", "role_hours"],
      "properties": {
        "complexity_score": {"type": "number"},
        "total_words": {"type": "integer"},
        "total_hours": {"type": "number"},
        "tat_hours": {"type": "number"},
        "role_hours": {"type": "object"}
      }
    }
  }
}`

var analysisSchema = gojsonschema.NewStringLoader(analysisSchemaV1)

// validateAnalysis checks the rendered analysis artifact against the v1
// schema.
func validateAnalysis(data []byte) error {
	res, err := gojsonschema.Validate(analysisSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("analysis schema validation failed: %w", err)
	}
	if !res.Valid() {
		errs := res.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("analysis artifact does not match schema: %s", errs[0])
		}
		return fmt.Errorf("analysis artifact does not match schema")
	}
	return nil
}
