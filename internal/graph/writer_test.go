// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/BlueBrain/citation-graph/internal/dataset"
	"github.com/BlueBrain/citation-graph/pkg/types"
)

// fakeExecutor records every statement and can fail a configurable
// number of times before succeeding.
type fakeExecutor struct {
	queries      []string
	rowCounts    []int
	failuresLeft int
}

func (f *fakeExecutor) WriteQuery(ctx context.Context, query string, params map[string]any) error {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return errors.New("transient write failure")
	}
	f.queries = append(f.queries, query)
	if rows, ok := params["rows"].([]map[string]any); ok {
		f.rowCounts = append(f.rowCounts, len(rows))
	} else {
		f.rowCounts = append(f.rowCounts, -1)
	}
	return nil
}

func (f *fakeExecutor) ReadCount(ctx context.Context, query string) (int64, error) {
	return 0, nil
}

func strPtr(s string) *string { return &s }

func testDataset(t *testing.T) *dataset.Normalized {
	t.Helper()
	doi := "10.1000/p1"
	ds := &dataset.Dataset{
		Articles: []types.Article{
			{UID: "p1", Title: "BBP Article", Source: types.SourceEuroPMC, IsBBP: true, DOI: &doi},
			{UID: "p2", Title: "Article Two", Source: types.SourceCSV},
			{UID: "p3", Title: "Article Three", Source: types.SourceCSV},
		},
		Authors: []types.Author{
			{UID: "a1", Name: strPtr("Jane Doe")},
		},
		Institutions: []types.Institution{
			{UID: "i1", Name: "EPFL", OrganizationID: "02s376052", OrganizationIDFrom: types.OrgIDROR},
		},
		Citations:   []types.Citation{{SourceUID: "p2", TargetUID: "p1"}},
		Authorships: []types.Authorship{{AuthorUID: "a1", ArticleUID: "p1"}},
	}
	return dataset.NewNormalizer(nil, nil).Normalize(ds)
}

func TestWriteDatasetBatches(t *testing.T) {
	exec := &fakeExecutor{}
	w := NewWriter(exec, types.GraphConfig{BatchSize: 2}, nil, nil)

	if err := w.WriteDataset(context.Background(), testDataset(t)); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}

	// Three articles with batch size two make two article batches; every
	// other entity fits in one.
	var articleBatches []int
	for i, q := range exec.queries {
		if strings.Contains(q, "MERGE (a:Article {uid: row.uid})") {
			articleBatches = append(articleBatches, exec.rowCounts[i])
		}
	}
	if !reflect.DeepEqual(articleBatches, []int{2, 1}) {
		t.Errorf("article batch sizes = %v, want [2 1]", articleBatches)
	}

	for i, q := range exec.queries {
		if !strings.Contains(q, "UNWIND $rows") {
			t.Errorf("query %d is not a batch statement: %s", i, q)
		}
		if strings.Contains(q, "CREATE ") {
			t.Errorf("query %d uses CREATE; writes must be MERGE upserts", i)
		}
	}
}

func TestWriteDatasetIsRepeatable(t *testing.T) {
	norm := testDataset(t)

	first := &fakeExecutor{}
	if err := NewWriter(first, types.GraphConfig{BatchSize: 2}, nil, nil).WriteDataset(context.Background(), norm); err != nil {
		t.Fatal(err)
	}
	second := &fakeExecutor{}
	if err := NewWriter(second, types.GraphConfig{BatchSize: 2}, nil, nil).WriteDataset(context.Background(), norm); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.queries, second.queries) {
		t.Error("two runs over the same input must issue identical statements")
	}
	if !reflect.DeepEqual(first.rowCounts, second.rowCounts) {
		t.Error("two runs over the same input must issue identical batches")
	}
}

func TestWriteDatasetCarriesDerivedStats(t *testing.T) {
	exec := &fakeExecutor{}
	w := NewWriter(exec, types.GraphConfig{}, nil, nil)

	norm := testDataset(t)
	if err := w.WriteDataset(context.Background(), norm); err != nil {
		t.Fatal(err)
	}

	rows := authorRows(norm.Authors, norm.AuthorStats)
	if len(rows) != 1 {
		t.Fatalf("author rows = %d, want 1", len(rows))
	}
	if rows[0]["wrote_bbp"] != true {
		t.Error("wrote_bbp should be true for the BBP author")
	}
	if rows[0]["num_articles_written"] != 1 || rows[0]["num_bbp_articles_written"] != 1 {
		t.Errorf("author counts = %v, want 1/1", rows[0])
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	exec := &fakeExecutor{}
	w := NewWriter(exec, types.GraphConfig{}, nil, nil)

	if err := w.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, q := range exec.queries {
		if !strings.Contains(q, "IF NOT EXISTS") {
			t.Errorf("schema statement missing IF NOT EXISTS: %s", q)
		}
	}
}

func TestWipe(t *testing.T) {
	exec := &fakeExecutor{}
	w := NewWriter(exec, types.GraphConfig{}, nil, nil)

	if err := w.Wipe(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := 1 + len(schemaConstraints) + len(schemaIndexes)
	if len(exec.queries) != want {
		t.Fatalf("wipe issued %d queries, want %d", len(exec.queries), want)
	}
	if !strings.Contains(exec.queries[0], "DETACH DELETE") {
		t.Errorf("first wipe query = %q, want DETACH DELETE", exec.queries[0])
	}
	for _, q := range exec.queries[1:] {
		if !strings.HasPrefix(q, "DROP CONSTRAINT") && !strings.HasPrefix(q, "DROP INDEX") {
			t.Errorf("unexpected wipe query: %s", q)
		}
	}
}

func TestWriteKeywords(t *testing.T) {
	exec := &fakeExecutor{}
	w := NewWriter(exec, types.GraphConfig{}, nil, nil)

	articleKeywords := map[string][]string{
		"p1": {"neurogenesis", "memory"},
		"p2": {"memory"},
	}
	if err := w.WriteKeywords(context.Background(), articleKeywords); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(exec.queries[0], "NOT k.name IN $keep") {
		t.Errorf("first statement should prune stale keywords, got %s", exec.queries[0])
	}
	var edgeRows int
	for i, q := range exec.queries {
		if strings.Contains(q, "HAS_KEYWORD") {
			edgeRows += exec.rowCounts[i]
		}
	}
	if edgeRows != 3 {
		t.Errorf("HAS_KEYWORD rows = %d, want 3", edgeRows)
	}
}

func TestArticleRowsSplitCoordinates(t *testing.T) {
	rows := articleRows([]types.Article{{
		UID: "p1", Title: "T", Source: types.SourceCSV,
		UMAP: []float64{1.5, -2.5},
	}})

	if rows[0]["umap_x"] != 1.5 || rows[0]["umap_y"] != -2.5 {
		t.Errorf("umap coordinates not split: %v", rows[0])
	}
	if rows[0]["tsne_x"] != nil || rows[0]["pca_y"] != nil {
		t.Error("absent coordinate pairs should be null")
	}
}
