package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	majordomoErrors "github.com/majordomo-labs/majordomo/internal/errors"
)

type compiledSchema struct {
	schema *jsonschema.Schema
	doc    map[string]any
}

func compileSchema(name string, doc map[string]any) (*compiledSchema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://majordomo.schemas.local/actions/%s.schema.json", name)
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema for %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", name, err)
	}

	return &compiledSchema{schema: compiled, doc: doc}, nil
}

func (cs *compiledSchema) validate(actionName string, value any) (map[string]any, error) {
	value = cs.applyDefaults(value)

	if err := cs.schema.Validate(value); err != nil {
		return nil, &ValidationError{
			Action: actionName,
			Fields: fieldErrors(err),
			cause:  err,
		}
	}

	input, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{
			Action: actionName,
			cause:  fmt.Errorf("expected object input, got %T", value),
		}
	}
	return input, nil
}

// applyDefaults fills absent optional fields that declare a "default" in the
// schema document, mirroring how the schemas are written (optional fields
// with defaults validate without being supplied).
func (cs *compiledSchema) applyDefaults(value any) any {
	input, ok := value.(map[string]any)
	if !ok {
		return value
	}

	props, ok := cs.doc["properties"].(map[string]any)
	if !ok {
		return value
	}

	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = v
	}
	for field, prop := range props {
		propDoc, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		def, hasDefault := propDoc["default"]
		if !hasDefault {
			continue
		}
		if _, present := out[field]; !present {
			out[field] = def
		}
	}
	return out
}

// ValidationError is an input schema violation carrying field-level detail.
type ValidationError struct {
	Action string
	Fields []string
	cause  error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("input for %s failed validation", e.Action)
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, "; ")
	} else if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return majordomoErrors.ErrInvalidInput
}

// fieldErrors flattens a jsonschema validation error into per-field messages.
func fieldErrors(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	var fields []string
	for _, line := range ve.BasicOutput().Errors {
		if line.Error == "" || strings.HasPrefix(line.Error, "doesn't validate with") {
			continue
		}
		loc := strings.TrimPrefix(line.InstanceLocation, "/")
		if loc == "" {
			fields = append(fields, line.Error)
		} else {
			fields = append(fields, fmt.Sprintf("%s: %s", strings.ReplaceAll(loc, "/", "."), line.Error))
		}
	}
	if len(fields) == 0 {
		fields = append(fields, ve.Error())
	}
	return fields
}
