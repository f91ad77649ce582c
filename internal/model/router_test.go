package model

import (
	"context"
	"testing"

	"github.com/majordomo-labs/majordomo/internal/model/contract"
)

type fakeProvider struct {
	name  string
	calls int
	last  contract.CompletionRequest
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	f.calls++
	f.last = req
	return &contract.CompletionResponse{Content: "{}", Model: req.Model}, nil
}

func TestRouterDispatchByModelName(t *testing.T) {
	a := &fakeProvider{name: "openai"}
	b := &fakeProvider{name: "anthropic"}

	r := NewRouter()
	r.RegisterModel("gpt-4o-mini", a)
	r.RegisterModel("claude-3-5-haiku", b)

	_, err := r.Generate(context.Background(), contract.CompletionRequest{Model: "claude-3-5-haiku"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if b.calls != 1 || a.calls != 0 {
		t.Errorf("dispatched to wrong provider: a=%d b=%d", a.calls, b.calls)
	}
}

func TestRouterDefaultModel(t *testing.T) {
	a := &fakeProvider{name: "openai"}
	r := NewRouter()
	r.RegisterModel("gpt-4o-mini", a)

	resp, err := r.Generate(context.Background(), contract.CompletionRequest{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("default model not applied: %q", resp.Model)
	}
	if a.last.Model != "gpt-4o-mini" {
		t.Errorf("request model not filled in: %q", a.last.Model)
	}
}

func TestRouterSetDefault(t *testing.T) {
	a := &fakeProvider{name: "openai"}
	b := &fakeProvider{name: "gemini"}

	r := NewRouter()
	r.RegisterModel("gpt-4o-mini", a)
	r.RegisterModel("gemini-2.0-flash", b)

	r.SetDefault("gemini-2.0-flash")
	if _, err := r.Generate(context.Background(), contract.CompletionRequest{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if b.calls != 1 {
		t.Errorf("SetDefault ignored: b=%d", b.calls)
	}

	// Unknown names do not change the default.
	r.SetDefault("nonexistent")
	if _, err := r.Generate(context.Background(), contract.CompletionRequest{}); err != nil {
		t.Fatalf("generate after bogus SetDefault: %v", err)
	}
	if b.calls != 2 {
		t.Errorf("default drifted: b=%d", b.calls)
	}
}

func TestRouterUnknownModel(t *testing.T) {
	r := NewRouter()
	r.RegisterModel("gpt-4o-mini", &fakeProvider{name: "openai"})

	if _, err := r.Generate(context.Background(), contract.CompletionRequest{Model: "no-such-model"}); err == nil {
		t.Fatal("expected error for unregistered model")
	}
}

func TestRouterConfigured(t *testing.T) {
	r := NewRouter()
	if r.Configured() {
		t.Error("empty router must not report configured")
	}
	r.RegisterModel("gpt-4o-mini", &fakeProvider{name: "openai"})
	if !r.Configured() {
		t.Error("router with a provider must report configured")
	}
	if got := r.ListModels(); len(got) != 1 || got[0] != "gpt-4o-mini" {
		t.Errorf("unexpected model list: %v", got)
	}
}
