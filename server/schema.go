package server

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// analyzeSchema rejects malformed analyze requests before any decoding
// into typed structs happens
const analyzeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["parameterId"],
  "properties": {
    "parameterId": {"type": "string", "minLength": 1},
    "data": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["index", "value"],
        "properties": {
          "index": {"type": "integer", "minimum": 0},
          "value": {"type": "number"},
          "timestamp": {"type": "string"}
        }
      }
    },
    "samples": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["defects", "size"],
        "properties": {
          "index": {"type": "integer", "minimum": 0},
          "defects": {"type": "integer", "minimum": 0},
          "size": {"type": "integer", "minimum": 1}
        }
      }
    }
  },
  "anyOf": [
    {"required": ["data"]},
    {"required": ["samples"]}
  ]
}`

func compileAnalyzeSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.CompileString("analyze.schema.json", analyzeSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile analyze request schema: %w", err)
	}
	return schema, nil
}

// validateAgainstSchema checks the raw body against the compiled schema
func validateAgainstSchema(schema *jsonschema.Schema, raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("request is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("request failed schema validation: %w", err)
	}
	return nil
}
