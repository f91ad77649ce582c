package policy

// Verdict is the authorization outcome of a policy evaluation.
type Verdict string

const (
	Allow           Verdict = "ALLOW"
	Deny            Verdict = "DENY"
	RequireApproval Verdict = "REQUIRE_APPROVAL"
)

// Requirement names who must approve an escalated action, and the numeric
// threshold that triggered the escalation when one applies.
type Requirement struct {
	ApproverRole Role    `json:"approver_role"`
	Threshold    float64 `json:"threshold,omitempty"`
}

// Decision is the result of evaluating (role, action, input). Reason is always
// populated; it is surfaced to the caller and stored in the audit trail verbatim.
type Decision struct {
	Verdict  Verdict      `json:"decision"`
	Reason   string       `json:"reason"`
	Requires *Requirement `json:"requires,omitempty"`
}
