// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the graphrag-console CLI, a terminal
// front-end over a remote GraphRAG indexing and query service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/graphrag-console/internal/api"
	"github.com/pdiddy/graphrag-console/internal/logger"
	"github.com/pdiddy/graphrag-console/internal/pipeline"
	"github.com/pdiddy/graphrag-console/internal/report"
	"github.com/pdiddy/graphrag-console/internal/secrets"
	"github.com/pdiddy/graphrag-console/internal/session"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

// Process-wide handles set up by the root command before any subcommand runs.
var (
	cfg types.PipelineConfig
	log = logger.Nop()
	rep report.Reporter
)

var rootCmd = &cobra.Command{
	Use:   "graphrag-console",
	Short: "Terminal front-end for a GraphRAG indexing and query service",
	Long: `graphrag-console drives a remote GraphRAG service through its REST API.

The indexing workflow is a sequence of independent steps:

  data upload      put documents into a storage container
  prompts generate generate prompts tuned to the container's documents
  index build      build a knowledge-graph index, optionally with those prompts
  query            ask global or local questions of one or more indexes

Prompts and the last index name are kept in a named session between
invocations until "session end".`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { log.Sync() },
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./graphrag-console.yaml or ~/.config/graphrag-console/graphrag-console.yaml)")
	pf.String("api-url", "", "GraphRAG API base URL")
	pf.String("session", "", "session ID (default \"default\")")
	pf.Bool("verbose", false, "log requests at debug level")
	pf.Bool("no-color", false, "disable colored status output")

	_ = viper.BindPFlag("api.url", pf.Lookup("api-url"))
	_ = viper.BindPFlag("session.id", pf.Lookup("session"))
}

func initConfig() {
	// A missing .env is normal; variables may come from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("graphrag-console")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "graphrag-console"))
		}
	}

	viper.SetEnvPrefix("GRAPHRAG_CONSOLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.url", "")
	viper.SetDefault("api.timeout", "0s")
	viper.SetDefault("api.user_agent", types.DefaultUserAgent)
	viper.SetDefault("api.max_retries", 0)
	viper.SetDefault("api.cache_ttl", types.DefaultCacheTTL)
	viper.SetDefault("prompts.dir", types.DefaultPromptDir)
	viper.SetDefault("prompts.zip_file", types.DefaultZipFile)
	viper.SetDefault("prompts.extract_dir", types.DefaultExtractDir)
	viper.SetDefault("prompts.limit", types.DefaultLimit)
	viper.SetDefault("session.db", types.DefaultSessionDB)
	viper.SetDefault("session.id", types.DefaultSessionID)
	viper.SetDefault("log.mode", "dev")
	viper.SetDefault("log.file", "")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup loads configuration and secrets and builds the logger and reporter.
func setup(cmd *cobra.Command, args []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")
	rep = report.NewTerminal(cmd.ErrOrStderr(), noColor)

	var c types.PipelineConfig
	if err := viper.Unmarshal(&c); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	c.ApplyDefaults()

	s, err := secrets.Load(secretsDir)
	if err != nil {
		return err
	}
	c.API.Headers = secrets.Headers(s, c.API.Headers)
	cfg = c

	verbose, _ := cmd.Flags().GetBool("verbose")
	l, err := logger.New(logger.Options{Mode: cfg.Log.Mode, File: cfg.Log.File, Verbose: verbose})
	if err != nil {
		return err
	}
	log = l

	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		log.Debug("loaded secrets", "keys", keys)
	}
	return nil
}

// newClient validates the configuration and returns an API client.
func newClient() (*api.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return api.New(cfg.API, nil, log)
}

func openSessions() (*session.Manager, error) {
	store, err := session.OpenSQLite(cfg.Session.DB)
	if err != nil {
		return nil, err
	}
	return session.NewManager(store), nil
}

// newPipeline wires the client, session store, and reporter. The caller
// must close the returned manager.
func newPipeline() (*pipeline.Pipeline, *session.Manager, error) {
	client, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	sessions, err := openSessions()
	if err != nil {
		return nil, nil, err
	}
	return pipeline.New(client, sessions, rep, cfg.Prompts, log), sessions, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if rep == nil {
			rep = report.NewTerminal(os.Stderr, false)
		}
		rep.Error(err)
		os.Exit(1)
	}
}
