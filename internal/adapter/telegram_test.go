package adapter

import (
	"context"
	"testing"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/config"
	"github.com/majordomo-labs/majordomo/internal/policy"
	"github.com/majordomo-labs/majordomo/internal/router"
)

type stubDispatcher struct {
	handled   bool
	reply     string
	routed    bool
	lastText  string
	lastIdent router.Identity
}

func (s *stubDispatcher) HandleCommand(_ context.Context, text string, id router.Identity) (router.CommandResult, error) {
	s.lastText = text
	s.lastIdent = id
	return router.CommandResult{Handled: s.handled, Reply: s.reply}, nil
}

func (s *stubDispatcher) Route(_ context.Context, req action.Request) (action.Result, error) {
	s.routed = true
	s.lastText = req.Text
	return action.Result{OK: true, Message: "routed"}, nil
}

func newTelegram(t *testing.T, d Dispatcher) *TelegramAdapter {
	t.Helper()
	adapter, err := NewTelegramAdapter(config.TelegramConfig{
		BotToken:    "test-token",
		DefaultRole: "STAFF",
		Operators:   map[string]string{"42": "FOUNDER", "7": "warehouse"},
	}, d)
	if err != nil {
		t.Fatalf("build adapter: %v", err)
	}
	return adapter
}

func TestTelegramRoleMapping(t *testing.T) {
	a := newTelegram(t, &stubDispatcher{})

	if got := a.roleFor("42"); got != policy.RoleFounder {
		t.Errorf("operator 42: got %s", got)
	}
	if got := a.roleFor("7"); got != policy.RoleWarehouse {
		t.Errorf("operator 7: got %s", got)
	}
	if got := a.roleFor("999"); got != policy.RoleStaff {
		t.Errorf("unlisted operator: got %s", got)
	}
}

func TestTelegramRejectsBadOperatorRole(t *testing.T) {
	_, err := NewTelegramAdapter(config.TelegramConfig{
		BotToken:  "test-token",
		Operators: map[string]string{"42": "WIZARD"},
	}, &stubDispatcher{})
	if err == nil {
		t.Fatal("expected error for unknown operator role")
	}
}

func TestTelegramDispatchPrefersCommands(t *testing.T) {
	d := &stubDispatcher{handled: true, reply: "done"}
	a := newTelegram(t, d)

	reply, err := a.dispatch(context.Background(), "/expense.approve {}", router.Identity{UserID: "42", Role: policy.RoleFounder})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if reply != "done" {
		t.Errorf("unexpected reply %q", reply)
	}
	if d.routed {
		t.Error("handled command must not fall through to Route")
	}
}

func TestTelegramDispatchFallsBackToFreeText(t *testing.T) {
	d := &stubDispatcher{handled: false}
	a := newTelegram(t, d)

	reply, err := a.dispatch(context.Background(), "approve the expense", router.Identity{UserID: "1", Role: policy.RoleStaff})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !d.routed {
		t.Error("unhandled text must go through Route")
	}
	if reply != "routed" {
		t.Errorf("unexpected reply %q", reply)
	}
}
