// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citation-graph CLI: batch
// integration of gathered publication metadata into a Neo4j citation
// knowledge graph, plus the keyword/topic second pass.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/BlueBrain/citation-graph/internal/secrets"
	"github.com/BlueBrain/citation-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the citation-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "citation-graph",
	Short: "Build a citation knowledge graph from gathered publication metadata",
	Long: `citation-graph integrates publication metadata gathered from EuroPMC,
ORCID, SERP, and manual CSV exports into a Neo4j knowledge graph.

The integrate command loads the per-entity tables from a data directory,
deduplicates records across sources, and upserts nodes and relationships
in fixed-size batches. The keywords command applies human-reviewed
keyword merges and attaches keywords and cluster topics to the graph.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citation-graph.yaml or ~/.config/citation-graph/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citation-graph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citation-graph"))
		}
	}

	viper.SetEnvPrefix("CITATION_GRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the operational logger for a command invocation.
func newLogger(cmd *cobra.Command) (*zap.SugaredLogger, func()) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar(), func() {}
	}
	return logger.Sugar(), func() { _ = logger.Sync() }
}

// graphConfigFromFlags resolves connection settings with precedence
// flag > config/env > secrets file.
func graphConfigFromFlags(cmd *cobra.Command) types.GraphConfig {
	uri, _ := cmd.Flags().GetString("uri")
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	database, _ := cmd.Flags().GetString("database")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	if uri == "" {
		uri = viper.GetString("neo4j_uri")
	}
	if user == "" {
		user = viper.GetString("neo4j_user")
	}
	if password == "" {
		password = viper.GetString("neo4j_password")
	}

	cfg := types.GraphConfig{
		URI:      loadedSecrets.Get(secrets.Neo4jURI, uri),
		Username: loadedSecrets.Get(secrets.Neo4jUser, user),
		Password: loadedSecrets.Get(secrets.Neo4jPassword, password),
		Database: database,
	}
	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	cfg.ConnectTimeout = 10 * time.Second
	return cfg.WithDefaults()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
