// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/graphrag-console/internal/pipeline"
	"github.com/pdiddy/graphrag-console/internal/report"
)

var queryCmd = &cobra.Command{
	Use:   "query <question...>",
	Short: "Ask a global or local question of one or more indexes",
	Long: `Query sends a question to the service. Global queries reason over community
summaries of the whole graph; local queries start from matching entities.

Without --index the session's last built or queried index is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var queryBatchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Run the queries listed in a YAML file",
	Long: `Batch runs every query in a YAML file and writes the answers to a results
file. A failed query is recorded with its error and the batch continues.

  index: [my-index]
  type: global
  queries:
    - query: What are the main themes?
    - query: Who is involved?
      type: local`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryBatch,
}

func init() {
	queryCmd.Flags().StringSlice("index", nil, "index names (comma-separated)")
	queryCmd.Flags().String("type", "global", "query type, e.g. global or local")
	queryCmd.Flags().Bool("json", false, "print the full response as JSON")
	queryBatchCmd.Flags().StringP("out", "o", "", "results file (default: <file>-results.yaml)")

	queryCmd.AddCommand(queryBatchCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	indexes, _ := cmd.Flags().GetStringSlice("index")
	queryType, _ := cmd.Flags().GetString("type")

	p, sessions, err := newPipeline()
	if err != nil {
		return err
	}
	defer sessions.Close()

	if len(indexes) == 0 {
		if st, err := sessions.Get(cmd.Context(), cfg.Session.ID); err == nil && st.BuildIndexName != "" {
			indexes = []string{st.BuildIndexName}
		}
	}

	resp, err := p.QueryStep(cmd.Context(), cfg.Session.ID, indexes, queryType, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return report.FormatJSON(cmd.OutOrStdout(), resp)
	}
	return report.FormatQuery(cmd.OutOrStdout(), resp)
}

func runQueryBatch(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(args[0], ".yaml"), ".yml") + "-results.yaml"
	}

	bf, err := pipeline.ReadBatchFile(args[0])
	if err != nil {
		return err
	}

	p, sessions, err := newPipeline()
	if err != nil {
		return err
	}
	defer sessions.Close()

	res, runErr := p.RunBatch(cmd.Context(), cfg.Session.ID, bf)
	if err := pipeline.WriteBatchResults(out, res); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	rep.Success(fmt.Sprintf("%d queries, %d failed; results in %s", res.Summary.Total, res.Summary.Failed, out))
	if res.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d queries failed", res.Summary.Failed, res.Summary.Total)
	}
	return nil
}
