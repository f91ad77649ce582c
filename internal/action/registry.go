package action

import (
	"fmt"

	majordomoErrors "github.com/majordomo-labs/majordomo/internal/errors"
)

// Registry is the immutable catalog of actions, built once at process
// construction and passed by reference into the resolver and router.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry builds a catalog from definitions. Duplicate names are a
// construction error, not a runtime condition.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if _, exists := r.defs[def.Name]; exists {
			return nil, fmt.Errorf("duplicate action: %s", def.Name)
		}
		r.defs[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, majordomoErrors.UnknownAction(name)
	}
	return def, nil
}

// List returns the prompt-facing descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		out = append(out, Descriptor{Name: def.Name, Description: def.Description})
	}
	return out
}

// Names returns the action names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ValidateInput validates a raw payload against the named action's schema.
func (r *Registry) ValidateInput(name string, value any) (map[string]any, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return def.Validate(value)
}
