package adapter

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/config"
	"github.com/majordomo-labs/majordomo/internal/logger"
	"github.com/majordomo-labs/majordomo/internal/policy"
	"github.com/majordomo-labs/majordomo/internal/router"
)

// TelegramAdapter long-polls Telegram and feeds operator messages through the
// command router. The claimed role comes from the operator allowlist in
// config; unlisted users get the configured default role.
type TelegramAdapter struct {
	token         string
	updateTimeout int
	operators     map[string]policy.Role
	defaultRole   policy.Role
	dispatcher    Dispatcher
	bot           *tgbotapi.BotAPI
}

func NewTelegramAdapter(cfg config.TelegramConfig, dispatcher Dispatcher) (*TelegramAdapter, error) {
	updateTimeout := cfg.UpdateTimeout
	if updateTimeout <= 0 {
		updateTimeout = config.DefaultTelegramUpdateTimeout
	}

	defaultRole, err := policy.ParseRole(cfg.DefaultRole)
	if err != nil {
		defaultRole = policy.RoleStaff
	}

	operators := make(map[string]policy.Role, len(cfg.Operators))
	for userID, roleName := range cfg.Operators {
		role, err := policy.ParseRole(roleName)
		if err != nil {
			return nil, fmt.Errorf("telegram operator %s: %w", userID, err)
		}
		operators[userID] = role
	}

	return &TelegramAdapter{
		token:         cfg.BotToken,
		updateTimeout: updateTimeout,
		operators:     operators,
		defaultRole:   defaultRole,
		dispatcher:    dispatcher,
	}, nil
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}
	t.bot = bot

	slog.Info("Telegram adapter started", "user", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.updateTimeout
	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-updates:
				t.handleUpdate(ctx, update)
			}
		}
	}()

	return nil
}

func (t *TelegramAdapter) Stop(_ context.Context) error {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return nil
}

func (t *TelegramAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	msg := update.Message
	userID := fmt.Sprintf("%d", msg.From.ID)
	id := router.Identity{UserID: userID, Role: t.roleFor(userID)}

	reply, err := t.dispatch(logger.WithRequestID(ctx, ulid.Make().String()), msg.Text, id)
	if err != nil {
		slog.Error("Telegram dispatch failed", "user", userID, "error", err)
		reply = "Something went wrong handling that request."
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		slog.Error("Telegram send failed", "chat", msg.Chat.ID, "error", err)
	}
}

// dispatch tries the slash-command surface first, then the free-text path.
func (t *TelegramAdapter) dispatch(ctx context.Context, text string, id router.Identity) (string, error) {
	cmd, err := t.dispatcher.HandleCommand(ctx, text, id)
	if err != nil {
		return "", err
	}
	if cmd.Handled {
		return cmd.Reply, nil
	}

	result, err := t.dispatcher.Route(ctx, action.Request{
		UserID: id.UserID,
		Role:   id.Role,
		Text:   text,
	})
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (t *TelegramAdapter) roleFor(userID string) policy.Role {
	if role, ok := t.operators[userID]; ok {
		return role
	}
	return t.defaultRole
}
