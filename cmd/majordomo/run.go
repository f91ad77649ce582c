package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/logger"
	"github.com/majordomo-labs/majordomo/internal/policy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start Majordomo in interactive mode",
	Long:  `Starts an interactive session. Slash commands invoke actions directly; any other text goes through intent resolution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		roleName, _ := cmd.Flags().GetString("role")

		role, err := policy.ParseRole(roleName)
		if err != nil {
			return err
		}

		p, err := buildPipeline(cfg, true)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repl := newREPL(p, userID, role)
		return repl.Start(ctx)
	},
}

type repl struct {
	pipeline *pipeline
	reader   *bufio.Reader
	userID   string
	role     policy.Role

	promptStyle lipgloss.Style
	okStyle     lipgloss.Style
	failStyle   lipgloss.Style
}

func newREPL(p *pipeline, userID string, role policy.Role) *repl {
	return &repl{
		pipeline:    p,
		reader:      bufio.NewReader(os.Stdin),
		userID:      userID,
		role:        role,
		promptStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		okStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

func (r *repl) Start(ctx context.Context) error {
	fmt.Printf("Majordomo interactive session (user=%s role=%s)\n", r.userID, r.role)
	fmt.Println("Type '/exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := r.readLine(ctx); err != nil {
				if err == io.EOF {
					return nil
				}
				if errors.Is(err, context.Canceled) {
					return nil
				}
				fmt.Println(r.failStyle.Render(err.Error()))
			}
		}
	}
}

func (r *repl) readLine(ctx context.Context) error {
	fmt.Print(r.promptStyle.Render("> ") + " ")
	// ReadString blocks until a newline, so an interrupt signal is only
	// observed between lines. Routing itself honors cancellation.
	text, err := r.reader.ReadString('\n')
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if text == "/exit" {
		return io.EOF
	}

	result, err := r.pipeline.router.Route(logger.WithRequestID(ctx, ulid.Make().String()), action.Request{
		UserID: r.userID,
		Role:   r.role,
		Text:   text,
	})
	if err != nil {
		return err
	}

	if result.OK {
		fmt.Println(r.okStyle.Render(result.Message))
	} else {
		fmt.Println(r.failStyle.Render(result.Message))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("user", "u", "local", "Acting user id")
	runCmd.Flags().StringP("role", "r", "STAFF", "Claimed role (FOUNDER, LEGAL, FINANCE, HR, WAREHOUSE, STAFF)")
}
