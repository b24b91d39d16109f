// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BlueBrain/citation-graph/internal/audit"
	"github.com/BlueBrain/citation-graph/internal/dataset"
	"github.com/BlueBrain/citation-graph/internal/graph"
	"github.com/BlueBrain/citation-graph/pkg/types"
)

var integrateCmd = &cobra.Command{
	Use:   "integrate [data-dir]",
	Short: "Load, deduplicate, and write the citation graph",
	Long: `Integrate reads the per-entity tables from the data directory
(extended_articles.jsonl, authors.csv, institutions.csv and the edge
CSVs), deduplicates records across sources, and upserts all nodes and
relationships into Neo4j in fixed-size batches. A derived pass then
recomputes citation edges and count properties.

With --wipe-db all prior nodes and relationships are removed first.
Without it, the run upserts into the existing graph.`,
	Args: cobra.ExactArgs(1),
	RunE: runIntegrate,
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	icfg := types.IntegrationConfig{DataDir: args[0]}
	icfg.WipeDB, _ = cmd.Flags().GetBool("wipe-db")

	log, sync := newLogger(cmd)
	defer sync()

	auditLog, err := audit.Open(filepath.Join(icfg.DataDir, "audit.jsonl"), "integrate")
	if err != nil {
		return err
	}
	defer auditLog.Close()

	ds, err := dataset.Load(icfg.DataDir)
	if err != nil {
		return err
	}
	log.Infow("loaded dataset",
		"articles", len(ds.Articles), "authors", len(ds.Authors),
		"institutions", len(ds.Institutions), "citations", len(ds.Citations),
		"authorships", len(ds.Authorships), "affiliations", len(ds.Affiliations))

	norm := dataset.NewNormalizer(log, auditLog).Normalize(ds)
	fmt.Fprintln(os.Stdout, norm.Summary())

	cfg := graphConfigFromFlags(cmd)
	client, err := graph.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	writer := graph.NewWriter(client, cfg, log, auditLog)

	nodesBefore, edgesBefore, err := writer.Counts(ctx)
	if err != nil {
		return err
	}
	log.Infow("graph before run", "nodes", nodesBefore, "edges", edgesBefore)

	if icfg.WipeDB {
		if err := writer.Wipe(ctx); err != nil {
			return err
		}
	}
	if err := writer.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := writer.WriteDataset(ctx, norm); err != nil {
		return err
	}
	if err := writer.Derive(ctx); err != nil {
		return err
	}

	nodesAfter, edgesAfter, err := writer.Counts(ctx)
	if err != nil {
		return err
	}
	log.Infow("graph after run", "nodes", nodesAfter, "edges", edgesAfter)
	fmt.Fprintf(os.Stdout, "integrated %s: %d nodes, %d edges\n", icfg.DataDir, nodesAfter, edgesAfter)

	return nil
}

func init() {
	integrateCmd.Flags().String("uri", "", "Neo4j URI (e.g. neo4j://localhost:7687)")
	integrateCmd.Flags().String("user", "", "Neo4j username")
	integrateCmd.Flags().String("password", "", "Neo4j password")
	integrateCmd.Flags().String("database", "", "Neo4j database name (default: neo4j)")
	integrateCmd.Flags().Bool("wipe-db", false, "remove all prior nodes and relationships first")
	integrateCmd.Flags().Int("batch-size", 0, "rows per write transaction (default: 1000)")

	rootCmd.AddCommand(integrateCmd)
}
