package classification

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// assessmentSchemaV1 is the versioned contract for model output. Responses
// that fail validation are treated the same as unparseable ones.
const assessmentSchemaV1 = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "complexity_assessment_v1",
  "type": "object",
  "required": ["domain", "complexity_tier", "confidence"],
  "properties": {
    "domain": {"type": "string"},
    "complexity_tier": {"type": "string"},
    "terminology_heavy": {"type": "boolean"},
    "tone_sensitive": {"type": "boolean"},
    "idioms_present": {"type": "boolean"},
    "formatting_tags": {"type": "boolean"},
    "confidence": {"type": "number"},
    "quality_considerations": {"type": "array", "items": {"type": "string"}},
    "sourcing_criteria": {"type": "string"}
  }
}`

var assessmentSchema = gojsonschema.NewStringLoader(assessmentSchemaV1)

// validateAssessmentJSON checks the raw model response against the v1 schema.
func validateAssessmentJSON(raw string) error {
	res, err := gojsonschema.Validate(assessmentSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !res.Valid() {
		errs := res.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("assessment does not match schema: %s", errs[0])
		}
		return fmt.Errorf("assessment does not match schema")
	}
	return nil
}
