package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/audit"
	majordomoErrors "github.com/majordomo-labs/majordomo/internal/errors"
	"github.com/majordomo-labs/majordomo/internal/intent"
	"github.com/majordomo-labs/majordomo/internal/logger"
	"github.com/majordomo-labs/majordomo/internal/policy"
)

// unknownActionName is the audit placeholder used when a command failed
// before the action could be identified.
const unknownActionName = "(unknown)"

// commandFailurePrefix distinguishes "you typed it wrong" failures from
// policy failures in user-facing messages.
const commandFailurePrefix = "Command failed: "

// Identity is the caller-supplied principal for the raw-text surface.
type Identity struct {
	UserID string
	Role   policy.Role
}

// CommandResult is the display-string surface: Handled is false when the text
// is not a slash command at all.
type CommandResult struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply,omitempty"`
}

// Router is the single orchestration path every inbound request flows
// through, whether expressed as a slash command or free text. Every terminal
// outcome that reached a concrete action attempt writes exactly one audit
// event; Ask/NoMatch resolutions never reached an action and write none.
type Router struct {
	registry *action.Registry
	policy   *policy.Engine
	resolver *intent.Resolver
	audit    *audit.Store
}

func New(registry *action.Registry, policyEngine *policy.Engine, resolver *intent.Resolver, auditStore *audit.Store) *Router {
	return &Router{
		registry: registry,
		policy:   policyEngine,
		resolver: resolver,
		audit:    auditStore,
	}
}

// Route runs one request end to end and returns the user-facing result.
// A non-nil error means the pipeline itself failed (caller cancellation or an
// audit write failure), not that the action was denied or invalid.
func (r *Router) Route(ctx context.Context, req action.Request) (action.Result, error) {
	text := strings.TrimSpace(req.Text)
	if strings.HasPrefix(text, "/") {
		return r.routeCommand(ctx, req, text)
	}
	return r.routeFreeText(ctx, req)
}

// HandleCommand is the raw-text variant for callers that only want a display
// string. Non-slash text is a non-match; callers fall back to Route.
func (r *Router) HandleCommand(ctx context.Context, text string, id Identity) (CommandResult, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return CommandResult{Handled: false}, nil
	}

	req := action.Request{UserID: id.UserID, Role: id.Role, Text: trimmed}
	result, err := r.routeCommand(ctx, req, trimmed)
	if err != nil {
		return CommandResult{Handled: true}, err
	}
	return CommandResult{Handled: true, Reply: result.Message}, nil
}

func (r *Router) routeFreeText(ctx context.Context, req action.Request) (action.Result, error) {
	res, err := r.resolver.Resolve(ctx, req)
	if err != nil {
		return action.Result{}, err
	}

	switch res.State {
	case intent.StateAsk:
		// Never reached an action: returned to the caller, not audited.
		return action.Result{
			OK:      false,
			Message: res.Question,
			Data:    map[string]any{"missing_fields": res.MissingFields},
		}, nil

	case intent.StateNoMatch:
		return action.Result{OK: false, Message: res.Message}, nil
	}

	def, err := r.registry.Get(res.ActionName)
	if err != nil {
		// The resolver validated against the registry; reaching this means a
		// registry/resolver mismatch, which is a pipeline fault.
		return action.Result{}, fmt.Errorf("resolved action vanished from registry: %w", err)
	}

	return r.authorize(ctx, req, def, res.Args)
}

func (r *Router) routeCommand(ctx context.Context, req action.Request, text string) (action.Result, error) {
	name, rawArgs := parseCommand(text)

	def, err := r.registry.Get(name)
	if err != nil {
		return r.failCommand(ctx, req, unknownActionName, nil, err)
	}

	input, err := def.Validate(decodeArgs(rawArgs))
	if err != nil {
		return r.failCommand(ctx, req, def.Name, nil, err)
	}

	if req.Context == nil {
		req.Context = map[string]string{"args": rawArgs}
	}

	return r.authorize(ctx, req, def, input)
}

// authorize is where the slash-command and free-text paths converge: policy
// gate, execution, and the single audit write.
func (r *Router) authorize(ctx context.Context, req action.Request, def action.Definition, input map[string]any) (action.Result, error) {
	decision := r.policy.Evaluate(req.Role, def.Name, input)

	switch decision.Verdict {
	case policy.Deny:
		result := action.Result{
			OK:      false,
			Message: fmt.Sprintf("Denied: %s", decision.Reason),
			Data:    decision,
		}
		return r.record(ctx, req, def.Name, input, &decision, result)

	case policy.RequireApproval:
		// Declared-but-unimplemented escalation: execution stops here and the
		// caller learns who must approve. No approval workflow exists.
		result := action.Result{
			OK:      false,
			Message: fmt.Sprintf("Needs approval from %s: %s", decision.Requires.ApproverRole, decision.Reason),
			Data:    decision,
		}
		return r.record(ctx, req, def.Name, input, &decision, result)
	}

	// Cancellation before execution: no side effect, no partial audit row.
	if err := ctx.Err(); err != nil {
		return action.Result{}, err
	}

	result, err := def.Handler(ctx, req, input)
	if err != nil {
		slog.Error("Action handler failed",
			"action", def.Name,
			"user", req.UserID,
			"request_id", logger.GetRequestID(ctx),
			"error", majordomoErrors.HandlerFailure(err))
		result = action.Result{
			OK:      false,
			Message: commandFailurePrefix + err.Error(),
		}
	}

	return r.record(ctx, req, def.Name, input, &decision, result)
}

// failCommand converts a parse/resolve failure on the slash-command path into
// a displayed failure plus its audit event. policy is nil: the failure
// occurred before a policy decision existed.
func (r *Router) failCommand(ctx context.Context, req action.Request, actionName string, input map[string]any, cause error) (action.Result, error) {
	result := action.Result{
		OK:      false,
		Message: commandFailurePrefix + cause.Error(),
	}
	return r.record(ctx, req, actionName, input, nil, result)
}

func (r *Router) record(ctx context.Context, req action.Request, actionName string, input map[string]any, decision *policy.Decision, result action.Result) (action.Result, error) {
	requestID := logger.GetRequestID(ctx)

	id, err := r.audit.Log(ctx, audit.Record{
		UserID:     req.UserID,
		Role:       string(req.Role),
		ActionName: actionName,
		Input:      input,
		Policy:     decision,
		Result:     result,
	})
	if err != nil {
		slog.Error("Audit write failed", "action", actionName, "user", req.UserID, "request_id", requestID, "error", err)
		return action.Result{}, majordomoErrors.Wrap(err, "audit write failed")
	}

	slog.Info("Request recorded", "audit_id", id, "action", actionName, "user", req.UserID, "request_id", requestID, "ok", result.OK)
	return result, nil
}
