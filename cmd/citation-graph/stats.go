// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BlueBrain/citation-graph/internal/graph"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node and relationship counts for the graph",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, sync := newLogger(cmd)
	defer sync()

	cfg := graphConfigFromFlags(cmd)
	client, err := graph.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	writer := graph.NewWriter(client, cfg, log, nil)
	stats, err := writer.ReadStats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "nodes: %d\n", stats.Nodes)
	for _, label := range graph.NodeLabels {
		fmt.Fprintf(os.Stdout, "  %-30s %d\n", label, stats.NodesByLabel[label])
	}
	fmt.Fprintf(os.Stdout, "edges: %d\n", stats.Edges)
	for _, rel := range graph.RelationshipTypes {
		fmt.Fprintf(os.Stdout, "  %-30s %d\n", rel, stats.EdgesByType[rel])
	}
	return nil
}

func init() {
	statsCmd.Flags().String("uri", "", "Neo4j URI")
	statsCmd.Flags().String("user", "", "Neo4j username")
	statsCmd.Flags().String("password", "", "Neo4j password")
	statsCmd.Flags().String("database", "", "Neo4j database name (default: neo4j)")

	rootCmd.AddCommand(statsCmd)
}
