// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/BlueBrain/citation-graph/internal/audit"
	"github.com/BlueBrain/citation-graph/internal/graph"
	"github.com/BlueBrain/citation-graph/internal/keywords"
	"github.com/BlueBrain/citation-graph/internal/pipeline"
	"github.com/BlueBrain/citation-graph/pkg/types"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Apply keyword merges and attach cluster topics to the graph",
}

var keywordsApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply merge suggestions and update keywords in the graph",
	Long: `Apply loads the article keyword assignment, folds human-reviewed merge
suggestions into it (variants replaced by their canonical keyword,
duplicates removed), and updates the graph: Keyword nodes, HAS_KEYWORD
edges, per-article keyword properties, and per-cluster topic properties.

Cluster topic results are memoized: when the inputs are unchanged since
the last run the cached cluster_results.json is reused, preserving
externally generated topic summaries. --force-run recomputes.`,
	RunE: runKeywordsApply,
}

const topicsStage = "keyword-topics"

func runKeywordsApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var kcfg types.KeywordsConfig
	kcfg.ArticleKeywordsPath, _ = cmd.Flags().GetString("article-keywords")
	kcfg.MergeSuggestionsPath, _ = cmd.Flags().GetString("merge-suggestions")
	kcfg.ClustersPath, _ = cmd.Flags().GetString("clusters")
	kcfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	kcfg.SkipMerge, _ = cmd.Flags().GetBool("skip-merge")
	kcfg.ForceRun, _ = cmd.Flags().GetBool("force-run")

	if kcfg.OutputDir == "" {
		kcfg.OutputDir = filepath.Dir(kcfg.ArticleKeywordsPath)
	}

	log, sync := newLogger(cmd)
	defer sync()

	auditLog, err := audit.Open(filepath.Join(kcfg.OutputDir, "audit.jsonl"), "keywords apply")
	if err != nil {
		return err
	}
	defer auditLog.Close()

	articleKeywords, err := keywords.LoadArticleKeywords(kcfg.ArticleKeywordsPath)
	if err != nil {
		return err
	}
	clusterData, err := keywords.LoadClusters(kcfg.ClustersPath)
	if err != nil {
		return err
	}

	if !kcfg.SkipMerge {
		suggestions, err := keywords.LoadSuggestions(kcfg.MergeSuggestionsPath, log, auditLog)
		if err != nil {
			return err
		}
		if len(suggestions) > 0 {
			log.Infow("applying merge suggestions", "canonical_keywords", len(suggestions))
			articleKeywords = keywords.Apply(articleKeywords, suggestions)
		} else {
			log.Infow("no merge suggestions found, keeping original keywords")
		}
	} else {
		log.Infow("skipping merge as requested")
	}

	resultsPath := filepath.Join(kcfg.OutputDir, "cluster_results.json")
	updatedPath := filepath.Join(kcfg.OutputDir, "updated_article_keywords.json")

	store, err := pipeline.NewStore(kcfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	inputs := []string{kcfg.ArticleKeywordsPath, kcfg.MergeSuggestionsPath, kcfg.ClustersPath}
	fingerprint, err := pipeline.Fingerprint(inputs...)
	if err != nil {
		return err
	}

	var results map[string]keywords.ClusterResult
	fresh, err := store.Fresh(ctx, topicsStage, fingerprint)
	if err != nil {
		return err
	}
	if fresh && !kcfg.ForceRun {
		log.Infow("reusing cached cluster results", "path", resultsPath)
		results, err = keywords.LoadClusterResults(resultsPath)
		if err != nil {
			return err
		}
	}
	if results == nil {
		cached, err := keywords.LoadClusterResults(resultsPath)
		if err != nil {
			return err
		}
		results = keywords.ExtractTopics(clusterData.Clusters, articleKeywords, cached)
	}

	if err := keywords.SaveArticleKeywords(updatedPath, articleKeywords); err != nil {
		return err
	}
	if err := keywords.SaveClusterResults(resultsPath, results); err != nil {
		return err
	}
	if err := store.Complete(ctx, topicsStage, fingerprint, resultsPath, auditLog.RunID()); err != nil {
		return err
	}
	if err := pipeline.WriteManifest(resultsPath+".manifest.yaml", pipeline.Manifest{
		Stage:            topicsStage,
		RunID:            auditLog.RunID(),
		InputFingerprint: fingerprint,
		Inputs:           inputs,
		Output:           resultsPath,
	}); err != nil {
		return err
	}

	cfg := graphConfigFromFlags(cmd)
	client, err := graph.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	writer := graph.NewWriter(client, cfg, log, auditLog)
	if err := writer.WriteKeywords(ctx, articleKeywords); err != nil {
		return err
	}
	if err := writer.WriteClusterTopics(ctx, keywords.AlgorithmLabel(clusterData.Algorithm), clusterTopics(results)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "updated keywords for %d articles, topics for %d clusters\n",
		len(articleKeywords), len(results))
	return nil
}

// clusterTopics converts the artifact map into ordered topic rows.
func clusterTopics(results map[string]keywords.ClusterResult) []graph.ClusterTopic {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	topics := make([]graph.ClusterTopic, 0, len(keys))
	for _, key := range keys {
		id, err := keywords.ClusterID(key)
		if err != nil {
			continue
		}
		r := results[key]
		topics = append(topics, graph.ClusterTopic{
			ClusterID:    id,
			Keywords:     r.Keywords,
			TopicSummary: r.TopicSummary,
		})
	}
	return topics
}

func init() {
	keywordsApplyCmd.Flags().String("article-keywords", "", "article→keywords JSON file")
	keywordsApplyCmd.Flags().String("merge-suggestions", "", "JSONL merge suggestions file (optional)")
	keywordsApplyCmd.Flags().String("clusters", "", "cluster assignment JSON file")
	keywordsApplyCmd.Flags().String("output-dir", "", "directory for output artifacts (default: alongside article keywords)")
	keywordsApplyCmd.Flags().Bool("skip-merge", false, "skip applying merge suggestions")
	keywordsApplyCmd.Flags().Bool("force-run", false, "recompute cluster results even when cached")
	keywordsApplyCmd.Flags().String("uri", "", "Neo4j URI")
	keywordsApplyCmd.Flags().String("user", "", "Neo4j username")
	keywordsApplyCmd.Flags().String("password", "", "Neo4j password")
	keywordsApplyCmd.Flags().String("database", "", "Neo4j database name (default: neo4j)")
	keywordsApplyCmd.Flags().Int("batch-size", 0, "rows per write transaction (default: 1000)")

	_ = keywordsApplyCmd.MarkFlagRequired("article-keywords")
	_ = keywordsApplyCmd.MarkFlagRequired("clusters")

	keywordsCmd.AddCommand(keywordsApplyCmd)
	rootCmd.AddCommand(keywordsCmd)
}
