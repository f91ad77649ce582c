package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/logger"
	"github.com/majordomo-labs/majordomo/internal/policy"
)

var routeCmd = &cobra.Command{
	Use:   "route [text]",
	Short: "Route a single request and print the result",
	Long:  `Runs one request through the full pipeline and exits. Useful for scripting and smoke checks.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		roleName, _ := cmd.Flags().GetString("role")
		asJSON, _ := cmd.Flags().GetBool("json")

		role, err := policy.ParseRole(roleName)
		if err != nil {
			return err
		}

		p, err := buildPipeline(cfg, false)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx := logger.WithRequestID(cmd.Context(), ulid.Make().String())
		result, err := p.router.Route(ctx, action.Request{
			UserID: userID,
			Role:   role,
			Text:   strings.Join(args, " "),
		})
		if err != nil {
			return err
		}

		if asJSON {
			raw, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		}

		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringP("user", "u", "local", "Acting user id")
	routeCmd.Flags().StringP("role", "r", "STAFF", "Claimed role (FOUNDER, LEGAL, FINANCE, HR, WAREHOUSE, STAFF)")
	routeCmd.Flags().Bool("json", false, "Print the full result as JSON")
}
