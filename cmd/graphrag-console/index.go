// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/graphrag-console/internal/report"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "List, build, and configure knowledge-graph indexes",
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the indexes known to the service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, sessions, err := newPipeline()
		if err != nil {
			return err
		}
		defer sessions.Close()

		names, err := p.IndexOptions(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return report.FormatJSON(cmd.OutOrStdout(), names[1:])
		}
		report.FormatList(cmd.OutOrStdout(), "Indexes", names)
		return nil
	},
}

var indexBuildCmd = &cobra.Command{
	Use:   "build <storage-name> <index-name>",
	Short: "Submit an index build job",
	Long: `Build asks the service to build a knowledge-graph index from a storage
container. With --session-prompts the prompts held by the session replace the
service defaults; empty prompts keep their default.

The command returns once the job is accepted. Build progress is not tracked.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		useSession, _ := cmd.Flags().GetBool("session-prompts")

		p, sessions, err := newPipeline()
		if err != nil {
			return err
		}
		defer sessions.Close()

		resp, err := p.BuildStep(cmd.Context(), cfg.Session.ID, args[0], args[1], useSession)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return report.FormatJSON(cmd.OutOrStdout(), resp)
		}
		return nil
	},
}

var indexConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show index configuration",
}

var indexConfigEntityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Show the entity-extraction configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, sessions, err := newPipeline()
		if err != nil {
			return err
		}
		defer sessions.Close()

		conf, err := p.EntityConfig(cmd.Context())
		if err != nil {
			return err
		}
		return report.FormatJSON(cmd.OutOrStdout(), conf)
	},
}

func init() {
	indexListCmd.Flags().Bool("json", false, "output as JSON")
	indexBuildCmd.Flags().Bool("session-prompts", false, "override the default prompts with the session's prompts")
	indexBuildCmd.Flags().Bool("json", false, "print the service response as JSON")

	indexConfigCmd.AddCommand(indexConfigEntityCmd)
	indexCmd.AddCommand(indexListCmd, indexBuildCmd, indexConfigCmd)
	rootCmd.AddCommand(indexCmd)
}

var entityCmd = &cobra.Command{
	Use:   "entity <index-name> <entity-id>",
	Short: "Show a source entity record from an index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, sessions, err := newPipeline()
		if err != nil {
			return err
		}
		defer sessions.Close()

		ent, err := p.EntityStep(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return report.FormatJSON(cmd.OutOrStdout(), ent)
	},
}

func init() {
	rootCmd.AddCommand(entityCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity and credentials against the service",
	Long: `Ping issues GET /data with the configured headers and prints the status
code and response body. It exits non-zero unless the status is 200.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, body, err := client.Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s/data: %d\n%s\n", client.BaseURL(), status, body)
		if status != 200 {
			return fmt.Errorf("unexpected status %d", status)
		}
		rep.Success("API reachable")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
