package adapter

import (
	"context"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/router"
)

// Dispatcher is what adapters need from the pipeline: the slash-command
// surface and the uniform request path.
type Dispatcher interface {
	HandleCommand(ctx context.Context, text string, id router.Identity) (router.CommandResult, error)
	Route(ctx context.Context, req action.Request) (action.Result, error)
}

// InputAdapter is a front end that receives operator requests from an
// external platform and replies with display strings.
type InputAdapter interface {
	// Name returns the adapter name (e.g. "telegram", "cli").
	Name() string

	// Start begins listening for events. Must respect context cancellation.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the adapter.
	Stop(ctx context.Context) error
}
