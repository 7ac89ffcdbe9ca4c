// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/graphrag-console/internal/report"
	"github.com/pdiddy/graphrag-console/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the state kept between workflow steps",
	Long: `A session holds the prompt texts and the last index name used by the
workflow steps. The active session is chosen with --session (default
"default") and lives in the session database until it is ended.`,
}

var sessionInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the session if it does not exist",
	Long: `Init creates the session with empty values. Running it again leaves
existing values untouched. With --new a fresh random session ID is created
and printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := cfg.Session.ID
		if fresh, _ := cmd.Flags().GetBool("new"); fresh {
			id = ""
		}
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		st, err := sessions.Init(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), st.ID)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		st, err := sessions.Get(cmd.Context(), cfg.Session.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Session.ID, err)
		}
		return session.Export(cmd.OutOrStdout(), st, format)
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		all, err := sessions.List(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([]report.SessionRow, len(all))
		for i, st := range all {
			rows[i] = report.SessionRow{
				ID:         st.ID,
				IndexName:  st.BuildIndexName,
				HasPrompts: !st.Prompts().IsEmpty(),
				UpdatedAt:  st.UpdatedAt,
			}
		}
		report.FormatSessions(cmd.OutOrStdout(), rows)
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the session and delete its state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		if err := sessions.End(cmd.Context(), cfg.Session.ID); err != nil {
			return err
		}
		rep.Success(fmt.Sprintf("Session %s ended", cfg.Session.ID))
		return nil
	},
}

func init() {
	sessionInitCmd.Flags().Bool("new", false, "create a session with a new random ID")
	sessionShowCmd.Flags().String("format", session.FormatYAML, "output format: yaml or json")

	sessionCmd.AddCommand(sessionInitCmd, sessionShowCmd, sessionListCmd, sessionEndCmd)
	rootCmd.AddCommand(sessionCmd)
}
