// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"sort"
)

// ClusterTopic carries the keyword union and cached topic summary for
// one cluster of one algorithm.
type ClusterTopic struct {
	ClusterID    int
	Keywords     []string
	TopicSummary string
}

const deleteStaleKeywordsQuery = `
MATCH (k:Keyword)
WHERE NOT k.name IN $keep
DETACH DELETE k`

const keywordEdgesQuery = `
UNWIND $rows AS row
MERGE (k:Keyword {name: row.keyword})
WITH k, row
MATCH (a:Article {uid: row.uid})
MERGE (a)-[:HAS_KEYWORD]->(k)`

const articleKeywordsQuery = `
UNWIND $rows AS row
MATCH (a:Article {uid: row.uid})
SET a.keywords = row.keywords`

const clusterTopicsQuery = `
UNWIND $rows AS row
MERGE (c:Cluster {algorithm: row.algorithm, cluster_id: row.cluster_id})
SET c.keywords = row.keywords,
    c.topic_summary = row.topic_summary`

// WriteKeywords replaces the keyword layer of the graph with the given
// article-to-keywords assignment: Keyword nodes no longer referenced are
// deleted, the remaining ones are upserted with HAS_KEYWORD edges, and
// each article gets its keyword list as a property.
func (w *Writer) WriteKeywords(ctx context.Context, articleKeywords map[string][]string) error {
	keep := make([]string, 0)
	seen := make(map[string]bool)
	var edgeRows, articleRows []map[string]any

	uids := make([]string, 0, len(articleKeywords))
	for uid := range articleKeywords {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	for _, uid := range uids {
		keywords := articleKeywords[uid]
		for _, kw := range keywords {
			if !seen[kw] {
				seen[kw] = true
				keep = append(keep, kw)
			}
			edgeRows = append(edgeRows, map[string]any{"uid": uid, "keyword": kw})
		}
		articleRows = append(articleRows, map[string]any{"uid": uid, "keywords": keywords})
	}

	if err := w.exec.WriteQuery(ctx, deleteStaleKeywordsQuery, map[string]any{"keep": keep}); err != nil {
		return err
	}
	if err := w.writeBatches(ctx, "article_has_keyword", keywordEdgesQuery, edgeRows); err != nil {
		return err
	}
	return w.writeBatches(ctx, "article_keywords", articleKeywordsQuery, articleRows)
}

// WriteClusterTopics attaches per-cluster keyword unions and topic
// summaries to the Cluster nodes of one algorithm.
func (w *Writer) WriteClusterTopics(ctx context.Context, algorithm string, topics []ClusterTopic) error {
	rows := make([]map[string]any, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, map[string]any{
			"algorithm":     algorithm,
			"cluster_id":    t.ClusterID,
			"keywords":      t.Keywords,
			"topic_summary": t.TopicSummary,
		})
	}
	return w.writeBatches(ctx, "cluster_topics", clusterTopicsQuery, rows)
}
