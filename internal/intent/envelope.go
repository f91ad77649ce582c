package intent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	majordomoErrors "github.com/majordomo-labs/majordomo/internal/errors"
)

const envelopeSchemaName = "majordomo_intent_v1"

// envelope is the fixed extraction contract. Every field is required by the
// schema so a conforming extractor cannot omit any of them.
type envelope struct {
	ActionName            *string        `json:"action_name"`
	Arguments             map[string]any `json:"arguments"`
	Confidence            float64        `json:"confidence"`
	MissingFields         []string       `json:"missing_fields"`
	ClarificationQuestion *string        `json:"clarification_question"`
}

// envelopeSchemaDoc builds the envelope's JSON Schema. action_name is
// constrained to the allowed action list, with null meaning "no action, ask".
func envelopeSchemaDoc(actionNames []string) map[string]any {
	nameEnum := make([]any, 0, len(actionNames)+1)
	for _, name := range actionNames {
		nameEnum = append(nameEnum, name)
	}
	nameEnum = append(nameEnum, nil)

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"action_name": map[string]any{
				"type": []any{"string", "null"},
				"enum": nameEnum,
			},
			"arguments": map[string]any{
				"type":                 "object",
				"additionalProperties": true,
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"missing_fields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"clarification_question": map[string]any{
				"type": []any{"string", "null"},
			},
		},
		"required": []any{
			"action_name",
			"arguments",
			"confidence",
			"missing_fields",
			"clarification_question",
		},
	}
}

func compileEnvelopeSchema(doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := "https://majordomo.schemas.local/intent/envelope.schema.json"
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load envelope schema: %w", err)
	}
	return c.Compile(url)
}

// parseEnvelope decodes and validates raw extractor output against the
// envelope schema. Failures are repairable extraction-parse errors.
func parseEnvelope(schema *jsonschema.Schema, raw string) (*envelope, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, majordomoErrors.ExtractionParse(fmt.Sprintf("output is not valid JSON: %v", err))
	}
	if err := schema.Validate(decoded); err != nil {
		return nil, majordomoErrors.ExtractionParse(fmt.Sprintf("output does not match the envelope schema: %v", err))
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, majordomoErrors.ExtractionParse(fmt.Sprintf("decode envelope: %v", err))
	}
	if env.Arguments == nil {
		env.Arguments = map[string]any{}
	}
	return &env, nil
}
