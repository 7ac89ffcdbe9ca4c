// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/graphrag-console/internal/prompts"
	"github.com/pdiddy/graphrag-console/internal/report"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Generate, inspect, and edit the session's prompts",
}

var promptsGenerateCmd = &cobra.Command{
	Use:   "generate <storage-name>",
	Short: "Generate prompts from a storage container's documents",
	Long: `Generate asks the service to produce summarization, entity-extraction, and
community-report prompts tuned to the documents in a storage container. The
archive is saved to prompts.zip, extracted, and loaded into the session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			cfg.Prompts.Limit = limit
		}
		p, sessions, err := newPipeline()
		if err != nil {
			return err
		}
		defer sessions.Close()

		out, err := p.PromptStep(cmd.Context(), cfg.Session.ID, args[0])
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if out.Show && !quiet {
			printBundle(cmd.OutOrStdout(), out.Bundle)
		}
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the prompts held by the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		st, err := sessions.Get(cmd.Context(), cfg.Session.ID)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return report.FormatJSON(cmd.OutOrStdout(), st.Prompts())
		}
		printBundle(cmd.OutOrStdout(), st.Prompts())
		return nil
	},
}

var promptsWriteCmd = &cobra.Command{
	Use:   "write [dir]",
	Short: "Write the session's prompts to files for editing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Prompts.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		st, err := sessions.Get(cmd.Context(), cfg.Session.ID)
		if err != nil {
			return err
		}
		written, err := st.Prompts().WriteFiles(dir)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

var promptsLoadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Load prompt files from a directory into the session",
	Long: `Load reads one summ*, one entity*, and one community* .txt file from the
directory (default: the prompts directory) and stores them in the session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Prompts.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		if _, err := sessions.Init(cmd.Context(), cfg.Session.ID); err != nil {
			return err
		}
		if _, err := sessions.LoadPrompts(cmd.Context(), cfg.Session.ID, dir); err != nil {
			return err
		}
		rep.Success(fmt.Sprintf("Loaded prompts from %s", dir))
		return nil
	},
}

var promptsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the session's prompts from individual files",
	Long: `Set replaces the session's prompts with the contents of the given files.
A prompt whose flag is omitted becomes empty, so the service default is used
for it at build time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var texts [3]string
		for i, flag := range []string{"summary", "entity", "community"} {
			path, _ := cmd.Flags().GetString(flag)
			if path == "" {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s prompt: %w", flag, err)
			}
			texts[i] = string(data)
		}

		sessions, err := openSessions()
		if err != nil {
			return err
		}
		defer sessions.Close()

		if _, err := sessions.Init(cmd.Context(), cfg.Session.ID); err != nil {
			return err
		}
		if err := sessions.SetPrompts(cmd.Context(), cfg.Session.ID, texts[0], texts[1], texts[2]); err != nil {
			return err
		}
		rep.Success("Prompts updated")
		return nil
	},
}

func init() {
	promptsGenerateCmd.Flags().Int("limit", 0, "number of documents the service samples (default from config, 5)")
	promptsGenerateCmd.Flags().Bool("quiet", false, "do not print the generated prompts")
	promptsShowCmd.Flags().Bool("json", false, "output as JSON")
	promptsSetCmd.Flags().String("summary", "", "file with the summarize-descriptions prompt")
	promptsSetCmd.Flags().String("entity", "", "file with the entity-extraction prompt")
	promptsSetCmd.Flags().String("community", "", "file with the community-report prompt")

	promptsCmd.AddCommand(promptsGenerateCmd, promptsShowCmd, promptsWriteCmd, promptsLoadCmd, promptsSetCmd)
	rootCmd.AddCommand(promptsCmd)
}

func printBundle(w io.Writer, b prompts.Bundle) {
	for _, section := range []struct{ title, text string }{
		{"Entity extraction prompt", b.EntityExtraction},
		{"Summarize descriptions prompt", b.Summarize},
		{"Community report prompt", b.CommunityReport},
	} {
		fmt.Fprintf(w, "== %s ==\n%s\n\n", section.title, section.text)
	}
}
