package builtin

import (
	"context"
	"fmt"

	"github.com/majordomo-labs/majordomo/internal/action"
)

var inventoryFlagSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"sku": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"issue": map[string]any{
			"type":      "string",
			"minLength": 3,
		},
		"location": map[string]any{
			"type": "string",
		},
	},
	"required": []any{"sku", "issue"},
}

// InventoryFlag builds the inventory issue flagging action.
func InventoryFlag() (action.Definition, error) {
	return action.NewDefinition(
		"inventory.flag",
		"Log/flag an inventory issue.",
		inventoryFlagSchema,
		func(_ context.Context, _ action.Request, input map[string]any) (action.Result, error) {
			// TODO: integrate with the inventory database
			return action.Result{
				OK:      true,
				Message: fmt.Sprintf("Flagged SKU %v: %v", input["sku"], input["issue"]),
				Data:    input,
			}, nil
		},
	)
}

// Registry builds the catalog of built-in actions.
func Registry() (*action.Registry, error) {
	expense, err := ExpenseApprove()
	if err != nil {
		return nil, err
	}
	inventory, err := InventoryFlag()
	if err != nil {
		return nil, err
	}
	return action.NewRegistry(expense, inventory)
}
