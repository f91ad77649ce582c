package intent

import (
	"context"
	"log/slog"

	"github.com/majordomo-labs/majordomo/internal/action"
)

// Strategy is one way of turning request text into a Resolution. Strategies
// are tried in order; a NoMatch hands over to the next strategy in the chain.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, req action.Request) (*Resolution, error)
}

// Resolver runs an ordered chain of resolution strategies: extractor first,
// then the deterministic heuristic fallback.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve tries each strategy in sequence until one produces a Ready or Ask
// outcome. The last NoMatch is returned when every strategy passes.
func (r *Resolver) Resolve(ctx context.Context, req action.Request) (*Resolution, error) {
	var last *Resolution
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := s.Resolve(ctx, req)
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}

		slog.Debug("Resolution strategy finished", "strategy", s.Name(), "state", res.State, "confidence", res.Confidence)
		last = res
		if res.State != StateNoMatch {
			return res, nil
		}
	}

	if last == nil {
		last = &Resolution{
			State:   StateNoMatch,
			Message: "No resolution strategies are configured.",
		}
	}
	return last, nil
}
