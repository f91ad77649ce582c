package intent

import (
	"context"
	"strings"
	"testing"

	"github.com/majordomo-labs/majordomo/internal/action"
)

func TestHeuristicExpensePattern(t *testing.T) {
	h := NewHeuristic(testRegistry(t), nil)

	res, err := h.Resolve(context.Background(), action.Request{Text: "Please APPROVE this expense"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateReady {
		t.Fatalf("expected READY, got %s", res.State)
	}
	if res.ActionName != "expense.approve" {
		t.Errorf("unexpected action: %s", res.ActionName)
	}
	if res.Confidence != HeuristicConfidence {
		t.Errorf("expected confidence %v, got %v", HeuristicConfidence, res.Confidence)
	}
	if res.Args["amount"] != float64(1000) || res.Args["vendor"] != "Unknown" || res.Args["purpose"] != "Unspecified" {
		t.Errorf("unexpected default args: %v", res.Args)
	}
}

func TestHeuristicInventoryPattern(t *testing.T) {
	h := NewHeuristic(testRegistry(t), nil)

	res, err := h.Resolve(context.Background(), action.Request{Text: "flag sku 123, it looks damaged"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateReady {
		t.Fatalf("expected READY, got %s", res.State)
	}
	if res.ActionName != "inventory.flag" {
		t.Errorf("unexpected action: %s", res.ActionName)
	}
	if res.Args["sku"] != "UNKNOWN" || res.Args["issue"] != "Unspecified" {
		t.Errorf("unexpected default args: %v", res.Args)
	}
}

func TestHeuristicRequiresAllKeywords(t *testing.T) {
	h := NewHeuristic(testRegistry(t), nil)

	for _, text := range []string{"approve this", "expense report", "flag the shipment", "sku 9 is here"} {
		res, err := h.Resolve(context.Background(), action.Request{Text: text})
		if err != nil {
			t.Fatalf("resolve %q: %v", text, err)
		}
		if res.State != StateNoMatch {
			t.Errorf("%q: expected NO_MATCH, got %s", text, res.State)
		}
	}
}

func TestHeuristicNoMatchListsActions(t *testing.T) {
	h := NewHeuristic(testRegistry(t), nil)

	res, err := h.Resolve(context.Background(), action.Request{Text: "what is the weather"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateNoMatch {
		t.Fatalf("expected NO_MATCH, got %s", res.State)
	}
	if !strings.Contains(res.Message, "expense.approve") || !strings.Contains(res.Message, "inventory.flag") {
		t.Errorf("message should list available actions: %q", res.Message)
	}
}

func TestHeuristicSkipsPatternsWithInvalidGuesses(t *testing.T) {
	// A pattern whose guessed args fail the schema must not produce READY.
	patterns := []Pattern{{
		Keywords:   []string{"approve", "expense"},
		ActionName: "expense.approve",
		Args:       map[string]any{"amount": float64(-1)},
	}}
	h := NewHeuristic(testRegistry(t), patterns)

	res, err := h.Resolve(context.Background(), action.Request{Text: "approve expense"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateNoMatch {
		t.Errorf("invalid guess should fall through to NO_MATCH, got %s", res.State)
	}
}
