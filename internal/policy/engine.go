package policy

// Rule evaluates one action's authorization for a role and validated input.
// Rules must be pure: no I/O, no mutation, fully reproducible from inputs.
type Rule func(role Role, input map[string]any) Decision

// Engine maps action names to their rules. Actions without an explicit rule
// fall through to a conservative default: escalation to the highest role.
// Unknown actions must never default-allow.
type Engine struct {
	rules map[string]Rule
}

// NewEngine builds an engine with the built-in business rules.
func NewEngine() *Engine {
	e := &Engine{rules: make(map[string]Rule)}
	e.Register("expense.approve", expenseApproveRule)
	e.Register("inventory.flag", inventoryFlagRule)
	return e
}

// Register installs a rule for an action name, replacing any existing rule.
func (e *Engine) Register(actionName string, rule Rule) {
	e.rules[actionName] = rule
}

// Evaluate returns the authorization decision for (role, action, input).
func (e *Engine) Evaluate(role Role, actionName string, input map[string]any) Decision {
	if rule, ok := e.rules[actionName]; ok {
		return rule(role, input)
	}
	return Decision{
		Verdict:  RequireApproval,
		Reason:   "Unclassified action. Needs Founder approval.",
		Requires: &Requirement{ApproverRole: RoleFounder},
	}
}

// CanPerform is a convenience for plain allow/deny checks.
func (e *Engine) CanPerform(role Role, actionName string, input map[string]any) bool {
	return e.Evaluate(role, actionName, input).Verdict == Allow
}

const expenseFounderThreshold = 50000

func expenseApproveRule(role Role, input map[string]any) Decision {
	if !role.AtLeast(RoleFinance) {
		return Decision{Verdict: Deny, Reason: "Only FINANCE+ can approve expenses."}
	}

	amount := numberField(input, "amount")
	if amount > expenseFounderThreshold && role != RoleFounder {
		return Decision{
			Verdict:  RequireApproval,
			Reason:   "Amount exceeds FINANCE limit (₱50,000).",
			Requires: &Requirement{ApproverRole: RoleFounder, Threshold: expenseFounderThreshold},
		}
	}

	return Decision{Verdict: Allow, Reason: "Within expense policy."}
}

func inventoryFlagRule(role Role, _ map[string]any) Decision {
	if !role.AtLeast(RoleWarehouse) {
		return Decision{Verdict: Deny, Reason: "Only WAREHOUSE+ can flag inventory issues."}
	}
	return Decision{Verdict: Allow, Reason: "Warehouse operations permitted."}
}

// numberField reads a numeric field from decoded JSON input. Missing or
// non-numeric values evaluate as zero.
func numberField(input map[string]any, key string) float64 {
	if input == nil {
		return 0
	}
	switch v := input[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
