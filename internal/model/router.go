package model

import (
	"context"
	"fmt"
	"sort"

	"github.com/majordomo-labs/majordomo/internal/model/contract"
)

// Router dispatches completion requests to the provider registered for the
// requested model name.
type Router struct {
	providers    map[string]Provider
	defaultModel string
}

func NewRouter() *Router {
	return &Router{providers: make(map[string]Provider)}
}

// RegisterModel binds a model name to a provider. The first registration
// becomes the default unless SetDefault is called.
func (r *Router) RegisterModel(modelName string, p Provider) {
	if r.defaultModel == "" {
		r.defaultModel = modelName
	}
	r.providers[modelName] = p
}

func (r *Router) SetDefault(modelName string) {
	if _, ok := r.providers[modelName]; ok {
		r.defaultModel = modelName
	}
}

// Configured reports whether at least one provider is available. When false,
// the intent resolver runs in its degraded no-extraction mode.
func (r *Router) Configured() bool {
	return len(r.providers) > 0
}

// ListModels returns the registered model names, sorted.
func (r *Router) ListModels() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Router) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = r.defaultModel
	}
	p, ok := r.providers[modelName]
	if !ok {
		return nil, fmt.Errorf("no provider registered for model %q", modelName)
	}
	req.Model = modelName
	return p.Generate(ctx, req)
}
