package model

import (
	"context"

	"github.com/majordomo-labs/majordomo/internal/model/contract"
)

// Client is the extraction capability consumed by the intent resolver. It may
// fail or return malformed output; callers must treat responses as untrusted.
type Client interface {
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
}

// Provider is one backing model vendor.
type Provider interface {
	Client
	Name() string
}
