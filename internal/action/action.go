package action

import (
	"context"

	"github.com/majordomo-labs/majordomo/internal/policy"
)

// Request is one inbound call into the pipeline. Created per request,
// immutable, never persisted directly.
type Request struct {
	UserID  string            `json:"user_id"`
	Role    policy.Role       `json:"role"`
	Text    string            `json:"text"`
	Context map[string]string `json:"context,omitempty"`
}

// Result is what an action handler returns. The router treats it as opaque.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler executes the side effect once the pipeline has authorized it.
// input has already been validated against the action's schema.
type Handler func(ctx context.Context, req Request, input map[string]any) (Result, error)

// Descriptor is the prompt-facing view of an action.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Definition is an immutable, registered-once action: a name, a human
// description used to prompt the resolver, a compiled input schema, and the
// side-effecting handler.
type Definition struct {
	Name        string
	Description string
	Handler     Handler

	schema *compiledSchema
}

// NewDefinition compiles the JSON Schema document and builds a definition.
func NewDefinition(name, description string, schemaDoc map[string]any, handler Handler) (Definition, error) {
	cs, err := compileSchema(name, schemaDoc)
	if err != nil {
		return Definition{}, err
	}
	return Definition{
		Name:        name,
		Description: description,
		Handler:     handler,
		schema:      cs,
	}, nil
}

// Validate checks value against the action's input schema and returns the
// normalized argument payload with schema defaults applied.
func (d Definition) Validate(value any) (map[string]any, error) {
	return d.schema.validate(d.Name, value)
}
