package builtin

import (
	"context"
	"fmt"

	"github.com/majordomo-labs/majordomo/internal/action"
)

var expenseApproveSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"amount": map[string]any{
			"type":             "number",
			"exclusiveMinimum": 0,
		},
		"vendor": map[string]any{
			"type":      "string",
			"minLength": 1,
			"default":   "Unknown",
		},
		"purpose": map[string]any{
			"type":      "string",
			"minLength": 3,
			"default":   "Unspecified",
		},
	},
	"required": []any{"amount"},
}

// ExpenseApprove builds the expense approval action.
func ExpenseApprove() (action.Definition, error) {
	return action.NewDefinition(
		"expense.approve",
		"Approve an expense request.",
		expenseApproveSchema,
		func(_ context.Context, _ action.Request, input map[string]any) (action.Result, error) {
			// TODO: connect to the accounting system
			return action.Result{
				OK:      true,
				Message: fmt.Sprintf("Expense approved: ₱%v for %v", input["amount"], input["vendor"]),
				Data:    input,
			}, nil
		},
	)
}
