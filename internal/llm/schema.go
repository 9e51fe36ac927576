package llm

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Response schemas for each interpreter endpoint. LLM output is never
// trusted partially parsed: a body failing its schema is treated as a
// failed call so the caller degrades to its safe default.

const interpretationSchema = `{
	"type": "object",
	"required": ["intent", "confidence"],
	"properties": {
		"intent": {"type": "string", "minLength": 1},
		"proposedContracts": {"type": "array", "items": {"type": "string"}},
		"extractedEntities": {"type": "object", "additionalProperties": {"type": "string"}},
		"isAmbiguous": {"type": "boolean"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reason": {"type": "string"}
	}
}`

const validationSchema = `{
	"type": "object",
	"required": ["confirmed"],
	"properties": {
		"confirmed": {"type": "boolean"},
		"suggestedIntent": {"type": "string"}
	}
}`

const selectionSchema = `{
	"type": "object",
	"required": ["contracts"],
	"properties": {
		"contracts": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	}
}`

var (
	interpretationValidator = gojsonschema.NewStringLoader(interpretationSchema)
	validationValidator     = gojsonschema.NewStringLoader(validationSchema)
	selectionValidator      = gojsonschema.NewStringLoader(selectionSchema)
)

func validateBody(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("response failed schema: %v", result.Errors())
	}
	return nil
}
