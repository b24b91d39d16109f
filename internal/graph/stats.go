// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
)

// NodeLabels and RelationshipTypes enumerate the schema this writer
// maintains, in display order.
var (
	NodeLabels = []string{"Article", "Author", "Institution", "Keyword", "Cluster"}

	RelationshipTypes = []string{
		"WROTE",
		"ARTICLE_CITES_ARTICLE",
		"AUTHOR_CITES_ARTICLE",
		"INSTITUTION_CITES_ARTICLE",
		"AFFILIATED_WITH",
		"HAS_KEYWORD",
		"IN_CLUSTER",
	}
)

// Stats holds node and relationship counts for one database.
type Stats struct {
	Nodes        int64
	Edges        int64
	NodesByLabel map[string]int64
	EdgesByType  map[string]int64
}

// ReadStats counts nodes and relationships overall and per schema
// label/type.
func (w *Writer) ReadStats(ctx context.Context) (*Stats, error) {
	nodes, edges, err := w.Counts(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Nodes:        nodes,
		Edges:        edges,
		NodesByLabel: make(map[string]int64, len(NodeLabels)),
		EdgesByType:  make(map[string]int64, len(RelationshipTypes)),
	}

	for _, label := range NodeLabels {
		n, err := w.exec.ReadCount(ctx, fmt.Sprintf(`MATCH (n:%s) RETURN count(n)`, label))
		if err != nil {
			return nil, err
		}
		stats.NodesByLabel[label] = n
	}
	for _, rel := range RelationshipTypes {
		n, err := w.exec.ReadCount(ctx, fmt.Sprintf(`MATCH ()-[r:%s]->() RETURN count(r)`, rel))
		if err != nil {
			return nil, err
		}
		stats.EdgesByType[rel] = n
	}
	return stats, nil
}
