package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const recordSchema = `{
	"type": "object",
	"required": ["type", "name"],
	"properties": {
		"id": {"type": "string"},
		"type": {"enum": ["basic", "qlearn", "deepq"]},
		"name": {"type": "string"},
		"description": {"type": "string"},
		"stats": {"type": "object"},
		"hyperparameters": {
			"type": "object",
			"properties": {
				"alpha": {"type": "number", "minimum": 0},
				"gamma": {"type": "number", "minimum": 0, "maximum": 1},
				"epsilon": {"type": "number", "minimum": 0, "maximum": 1},
				"batchSize": {"type": "integer", "minimum": 1},
				"bufferSize": {"type": "integer", "minimum": 1},
				"memorySize": {"type": "integer", "minimum": 1}
			}
		},
		"qTable": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["state", "action", "value"],
				"properties": {
					"state": {"type": "object"},
					"action": {"type": "object"},
					"value": {"type": "number"}
				}
			}
		},
		"rewardSystem": {
			"type": "object",
			"properties": {
				"rewards": {
					"type": ["array", "null"],
					"items": {
						"type": "object",
						"required": ["type", "value", "enabled"],
						"properties": {
							"type": {"type": "string"},
							"value": {"type": "number"},
							"enabled": {"type": "boolean"}
						}
					}
				}
			}
		}
	}
}`

var (
	agentSchema = jsonschema.MustCompileString("agent.schema.json", `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"allOf": [` + recordSchema + `],
	"required": ["format"],
	"properties": {
		"format": {"type": "string", "pattern": "^ai-civilization-agent"}
	}
}`)

	collectionSchema = jsonschema.MustCompileString("collection.schema.json", `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["type", "agents"],
	"properties": {
		"type": {"const": "`+CollectionType+`"},
		"agents": {"type": "array", "items": `+recordSchema+`}
	}
}`)
)

func validate(s *jsonschema.Schema, data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}
