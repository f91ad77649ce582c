package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/majordomo-labs/majordomo/internal/action"
)

// HeuristicConfidence is deliberately low: it marks a best guess from keyword
// matching, not a confirmed intent.
const HeuristicConfidence = 0.62

// Pattern maps a set of keywords (all must appear) to an action with default
// argument guesses.
type Pattern struct {
	Keywords   []string
	ActionName string
	Args       map[string]any
}

// DefaultPatterns covers the built-in actions.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Keywords:   []string{"approve", "expense"},
			ActionName: "expense.approve",
			Args:       map[string]any{"amount": float64(1000), "vendor": "Unknown", "purpose": "Unspecified"},
		},
		{
			Keywords:   []string{"flag", "sku"},
			ActionName: "inventory.flag",
			Args:       map[string]any{"sku": "UNKNOWN", "issue": "Unspecified"},
		},
	}
}

// Heuristic is the fully deterministic fallback strategy for operation
// without any extraction capability: simple keyword matching against a small
// fixed set of phrase patterns.
type Heuristic struct {
	registry *action.Registry
	patterns []Pattern
}

func NewHeuristic(registry *action.Registry, patterns []Pattern) *Heuristic {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Heuristic{registry: registry, patterns: patterns}
}

func (h *Heuristic) Name() string {
	return "heuristic"
}

func (h *Heuristic) Resolve(_ context.Context, req action.Request) (*Resolution, error) {
	text := strings.ToLower(req.Text)

	for _, p := range h.patterns {
		if !containsAll(text, p.Keywords) {
			continue
		}

		// Default guesses still go through the action's schema so a Ready
		// resolution always carries validated args.
		args, err := h.registry.ValidateInput(p.ActionName, p.Args)
		if err != nil {
			continue
		}

		return &Resolution{
			State:      StateReady,
			ActionName: p.ActionName,
			Args:       args,
			Confidence: HeuristicConfidence,
		}, nil
	}

	return &Resolution{
		State:      StateNoMatch,
		Message:    fmt.Sprintf("I couldn't match that to an action. Available actions: %s.", strings.Join(h.registry.Names(), ", ")),
		Confidence: 0,
	}, nil
}

func containsAll(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}
