package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/majordomo-labs/majordomo/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long:  `Read-only access to the append-only audit log: list, show, and export events.`,
}

var auditLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		actionName, _ := cmd.Flags().GetString("action")
		limit, _ := cmd.Flags().GetInt("limit")

		p, err := buildPipeline(cfg, false)
		if err != nil {
			return err
		}
		defer p.Close()

		events, err := p.audit.Query(cmd.Context(), audit.Filter{
			UserID:     userID,
			ActionName: actionName,
			Limit:      limit,
		})
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		fmt.Println(formatEventTable(events))
		return nil
	},
}

var auditShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one audit event in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, false)
		if err != nil {
			return err
		}
		defer p.Close()

		event, err := p.audit.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("audit event not found: %s", args[0])
		}

		raw, err := json.MarshalIndent(event, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	},
}

var auditExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export audit events to a file",
	Long:  `Writes matching events to the given path atomically, as YAML or JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		actionName, _ := cmd.Flags().GetString("action")
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("output")

		p, err := buildPipeline(cfg, false)
		if err != nil {
			return err
		}
		defer p.Close()

		events, err := p.audit.Query(cmd.Context(), audit.Filter{
			UserID:     userID,
			ActionName: actionName,
			Limit:      limit,
		})
		if err != nil {
			return err
		}

		var raw []byte
		switch format {
		case "yaml":
			raw, err = yaml.Marshal(events)
		case "json":
			raw, err = json.MarshalIndent(events, "", "  ")
		default:
			return fmt.Errorf("invalid output format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}

		if err := atomic.WriteFile(args[0], bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("write export: %w", err)
		}

		fmt.Printf("Exported %d events to %s\n", len(events), args[0])
		return nil
	},
}

func formatEventTable(events []*audit.Event) string {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center).Padding(0, 1)
	oddRowStyle := lipgloss.NewStyle().Foreground(gray).Padding(0, 1)
	evenRowStyle := lipgloss.NewStyle().Foreground(lightGray).Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("ID", "Time", "User", "Role", "Action", "Decision", "OK")

	for _, e := range events {
		decision := "-"
		if e.Policy != nil {
			decision = string(e.Policy.Verdict)
		}
		ok := "no"
		if e.Result != nil && e.Result.OK {
			ok = "yes"
		}
		t.Row(
			e.ID,
			time.UnixMilli(e.TS).UTC().Format(time.RFC3339),
			e.UserID,
			e.Role,
			e.ActionName,
			decision,
			ok,
		)
	}

	return t.String()
}

func init() {
	auditLsCmd.Flags().String("user", "", "Filter by user id")
	auditLsCmd.Flags().String("action", "", "Filter by action name")
	auditLsCmd.Flags().Int("limit", 50, "Maximum events to list")

	auditExportCmd.Flags().String("user", "", "Filter by user id")
	auditExportCmd.Flags().String("action", "", "Filter by action name")
	auditExportCmd.Flags().Int("limit", 0, "Maximum events to export (0 = all)")
	auditExportCmd.Flags().StringP("output", "o", "yaml", "Output format (yaml|json)")

	auditCmd.AddCommand(auditLsCmd)
	auditCmd.AddCommand(auditShowCmd)
	auditCmd.AddCommand(auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}
