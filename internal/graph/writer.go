// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BlueBrain/citation-graph/internal/audit"
	"github.com/BlueBrain/citation-graph/internal/dataset"
	"github.com/BlueBrain/citation-graph/pkg/types"
)

// Writer upserts the normalized dataset into the graph in fixed-size
// batches. Batches are processed strictly in sequence; the writer owns
// the target database for the duration of a run.
type Writer struct {
	exec  Executor
	cfg   types.GraphConfig
	log   *zap.SugaredLogger
	audit *audit.Log
}

// NewWriter returns a Writer over exec. The logger and audit log may be
// nil.
func NewWriter(exec Executor, cfg types.GraphConfig, log *zap.SugaredLogger, auditLog *audit.Log) *Writer {
	return &Writer{exec: exec, cfg: cfg.WithDefaults(), log: log, audit: auditLog}
}

// Wipe removes every node and relationship and drops the writer's
// constraints and indexes, returning the database to a blank state.
// Destructive; callers must gate it behind the explicit wipe flag.
func (w *Writer) Wipe(ctx context.Context) error {
	if err := w.exec.WriteQuery(ctx, `MATCH (n) DETACH DELETE n`, nil); err != nil {
		return err
	}
	for _, c := range schemaConstraints {
		if err := w.exec.WriteQuery(ctx, fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", c.name), nil); err != nil {
			return err
		}
	}
	for _, idx := range schemaIndexes {
		if err := w.exec.WriteQuery(ctx, fmt.Sprintf("DROP INDEX %s IF EXISTS", idx.name), nil); err != nil {
			return err
		}
	}
	if w.log != nil {
		w.log.Infow("removed all nodes, edges, constraints, and indexes")
	}
	w.audit.Record(audit.KindDatabaseWiped, nil)
	return nil
}

// The uniqueness constraints and indexes the upserts rely on, keyed by
// schema object name so Wipe can drop what EnsureSchema created.
var schemaConstraints = []struct{ name, body string }{
	{"article_uid_unique", "FOR (a:Article) REQUIRE a.uid IS UNIQUE"},
	{"author_uid_unique", "FOR (a:Author) REQUIRE a.uid IS UNIQUE"},
	{"institution_uid_unique", "FOR (i:Institution) REQUIRE i.uid IS UNIQUE"},
	{"keyword_name_unique", "FOR (k:Keyword) REQUIRE k.name IS UNIQUE"},
}

var schemaIndexes = []struct{ name, body string }{
	{"article_title", "FOR (a:Article) ON (a.title)"},
	{"article_is_bbp", "FOR (a:Article) ON (a.is_bbp)"},
	{"article_publication_date", "FOR (a:Article) ON (a.publication_date)"},
	{"article_google_scholar_id", "FOR (a:Article) ON (a.google_scholar_id)"},
	{"author_name", "FOR (a:Author) ON (a.name)"},
	{"author_google_scholar_id", "FOR (a:Author) ON (a.google_scholar_id)"},
	{"institution_name", "FOR (i:Institution) ON (i.name)"},
	{"cluster_algorithm", "FOR (c:Cluster) ON (c.algorithm)"},
}

// EnsureSchema creates constraints and indexes. All statements are
// IF NOT EXISTS, so re-running is harmless.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	for _, c := range schemaConstraints {
		stmt := fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS %s", c.name, c.body)
		if err := w.exec.WriteQuery(ctx, stmt, nil); err != nil {
			return err
		}
	}
	for _, idx := range schemaIndexes {
		stmt := fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS %s", idx.name, idx.body)
		if err := w.exec.WriteQuery(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}

const articlesQuery = `
UNWIND $rows AS row
MERGE (a:Article {uid: row.uid})
SET a.title = row.title,
    a.source = row.source,
    a.is_bbp = row.is_bbp,
    a.is_published = row.is_published,
    a.publication_date = CASE WHEN row.publication_date IS NULL THEN null ELSE date(row.publication_date) END,
    a.abstract = row.abstract,
    a.doi = row.doi,
    a.pmid = row.pmid,
    a.europmc_id = row.europmc_id,
    a.google_scholar_id = row.google_scholar_id,
    a.url = row.url,
    a.isbns = row.isbns,
    a.citations = row.citations,
    a.embedding = row.embedding,
    a.umap_x = row.umap_x, a.umap_y = row.umap_y,
    a.tsne_x = row.tsne_x, a.tsne_y = row.tsne_y,
    a.pca_x = row.pca_x, a.pca_y = row.pca_y`

const authorsQuery = `
UNWIND $rows AS row
MERGE (a:Author {uid: row.uid})
SET a.orcid_id = row.orcid_id,
    a.name = row.name,
    a.google_scholar_id = row.google_scholar_id,
    a.wrote_bbp = row.wrote_bbp,
    a.num_articles_written = row.num_articles_written,
    a.num_bbp_articles_written = row.num_bbp_articles_written`

const institutionsQuery = `
UNWIND $rows AS row
MERGE (i:Institution {uid: row.uid})
SET i.name = row.name,
    i.organization_id = row.organization_id,
    i.organization_id_source = row.organization_id_source,
    i.num_ex_aff_authors = row.num_ex_aff_authors,
    i.num_currently_aff_authors = row.num_currently_aff_authors,
    i.num_ex_aff_bbp_authors = row.num_ex_aff_bbp_authors,
    i.num_currently_aff_bbp_authors = row.num_currently_aff_bbp_authors`

const citationsQuery = `
UNWIND $rows AS row
MATCH (source:Article {uid: row.source}), (target:Article {uid: row.target})
MERGE (source)-[:ARTICLE_CITES_ARTICLE]->(target)`

const authorshipsQuery = `
UNWIND $rows AS row
MATCH (author:Author)
WHERE author.uid = row.author OR author.google_scholar_id = row.author
MATCH (article:Article)
WHERE article.uid = row.article OR article.google_scholar_id = row.article
MERGE (author)-[:WROTE]->(article)`

// Affiliation edges are keyed by start day so an author's distinct
// affiliation intervals with the same institution stay distinct edges,
// while re-writing the same interval stays idempotent.
const affiliationsQuery = `
UNWIND $rows AS row
MATCH (author:Author {uid: row.author}), (institution:Institution {uid: row.institution})
MERGE (author)-[rel:AFFILIATED_WITH {start_day: row.start_day}]->(institution)
SET rel.start_date = CASE WHEN row.start_date IS NULL THEN null ELSE date(row.start_date) END,
    rel.end_date = CASE WHEN row.end_date IS NULL THEN null ELSE date(row.end_date) END,
    rel.current = row.current`

const clustersQuery = `
UNWIND $rows AS row
MERGE (c:Cluster {algorithm: row.algorithm, cluster_id: row.cluster_id})
WITH c, row
MATCH (a:Article {uid: row.uid})
MERGE (a)-[:IN_CLUSTER]->(c)`

// WriteDataset upserts all nodes and relationships of the normalized
// dataset in batches of cfg.BatchSize. Node batches precede edge batches
// so edge MATCH clauses find their endpoints.
func (w *Writer) WriteDataset(ctx context.Context, norm *dataset.Normalized) error {
	steps := []struct {
		label string
		query string
		rows  []map[string]any
	}{
		{"articles", articlesQuery, articleRows(norm.Articles)},
		{"authors", authorsQuery, authorRows(norm.Authors, norm.AuthorStats)},
		{"institutions", institutionsQuery, institutionRows(norm.Institutions, norm.InstitutionStats)},
		{"article_cites_article", citationsQuery, citationRows(norm.Citations)},
		{"author_wrote_article", authorshipsQuery, authorshipRows(norm.Authorships)},
		{"author_affiliated_with_institution", affiliationsQuery, affiliationRows(norm.Affiliations)},
		{"clusters", clustersQuery, clusterRows(norm.Articles)},
	}

	for _, step := range steps {
		if err := w.writeBatches(ctx, step.label, step.query, step.rows); err != nil {
			return err
		}
	}
	return nil
}

// writeBatches splits rows into batches and writes them strictly in
// sequence. The batch is the unit of retry.
func (w *Writer) writeBatches(ctx context.Context, label, query string, rows []map[string]any) error {
	size := w.cfg.BatchSize
	batches := (len(rows) + size - 1) / size

	for i := 0; i < batches; i++ {
		end := (i + 1) * size
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i*size : end]
		if err := w.runWithRetry(ctx, label, i, query, map[string]any{"rows": batch}); err != nil {
			return err
		}
	}

	if w.log != nil && len(rows) > 0 {
		w.log.Infow("wrote batches", "label", label, "rows", len(rows), "batches", batches)
	}
	return nil
}

// Counts returns the total node and relationship counts.
func (w *Writer) Counts(ctx context.Context) (nodes, edges int64, err error) {
	nodes, err = w.exec.ReadCount(ctx, `MATCH (n) RETURN count(n) AS num_nodes`)
	if err != nil {
		return 0, 0, err
	}
	edges, err = w.exec.ReadCount(ctx, `MATCH ()-->() RETURN count(*) AS num_edges`)
	if err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

// --- row shaping ---

func articleRows(articles []types.Article) []map[string]any {
	rows := make([]map[string]any, 0, len(articles))
	for _, a := range articles {
		row := map[string]any{
			"uid":               a.UID,
			"title":             a.Title,
			"source":            string(a.Source),
			"is_bbp":            a.IsBBP,
			"is_published":      a.IsPublished,
			"publication_date":  dayVal(a.PublicationDate),
			"abstract":          strVal(a.Abstract),
			"doi":               strVal(a.DOI),
			"pmid":              strVal(a.PMID),
			"europmc_id":        strVal(a.EuroPMCID),
			"google_scholar_id": strVal(a.GoogleScholarID),
			"url":               strVal(a.URL),
			"isbns":             strVal(a.ISBNs),
			"citations":         intVal(a.Citations),
			"embedding":         floatsVal(a.Embedding),
		}
		setCoordinates(row, "umap", a.UMAP)
		setCoordinates(row, "tsne", a.TSNE)
		setCoordinates(row, "pca", a.PCA)
		rows = append(rows, row)
	}
	return rows
}

func authorRows(authors []types.Author, stats map[string]types.AuthorStats) []map[string]any {
	rows := make([]map[string]any, 0, len(authors))
	for _, a := range authors {
		s := stats[a.UID]
		rows = append(rows, map[string]any{
			"uid":                      a.UID,
			"orcid_id":                 strVal(a.ORCIDID),
			"name":                     strVal(a.Name),
			"google_scholar_id":        strVal(a.GoogleScholarID),
			"wrote_bbp":                s.WroteBBP,
			"num_articles_written":     s.ArticlesWritten,
			"num_bbp_articles_written": s.BBPArticlesWritten,
		})
	}
	return rows
}

func institutionRows(institutions []types.Institution, stats map[string]types.InstitutionStats) []map[string]any {
	rows := make([]map[string]any, 0, len(institutions))
	for _, inst := range institutions {
		s := stats[inst.UID]
		rows = append(rows, map[string]any{
			"uid":                           inst.UID,
			"name":                          inst.Name,
			"organization_id":               inst.OrganizationID,
			"organization_id_source":        string(inst.OrganizationIDFrom),
			"num_ex_aff_authors":            s.EverAffiliated,
			"num_currently_aff_authors":     s.CurrentlyAffiliated,
			"num_ex_aff_bbp_authors":        s.EverAffiliatedBBP,
			"num_currently_aff_bbp_authors": s.CurrentlyAffiliatedBBP,
		})
	}
	return rows
}

func citationRows(citations []types.Citation) []map[string]any {
	rows := make([]map[string]any, 0, len(citations))
	for _, c := range citations {
		rows = append(rows, map[string]any{"source": c.SourceUID, "target": c.TargetUID})
	}
	return rows
}

func authorshipRows(authorships []types.Authorship) []map[string]any {
	rows := make([]map[string]any, 0, len(authorships))
	for _, a := range authorships {
		rows = append(rows, map[string]any{"author": a.AuthorUID, "article": a.ArticleUID})
	}
	return rows
}

func affiliationRows(affiliations []types.Affiliation) []map[string]any {
	rows := make([]map[string]any, 0, len(affiliations))
	for _, aff := range affiliations {
		startDay := ""
		if aff.StartDate != nil {
			startDay = aff.StartDate.Day()
		}
		rows = append(rows, map[string]any{
			"author":      aff.AuthorUID,
			"institution": aff.InstitutionUID,
			"start_day":   startDay,
			"start_date":  dayVal(aff.StartDate),
			"end_date":    dayVal(aff.EndDate),
			"current":     aff.Current,
		})
	}
	return rows
}

func clusterRows(articles []types.Article) []map[string]any {
	var rows []map[string]any
	for _, a := range articles {
		for algorithm, clusterID := range a.Clusters {
			rows = append(rows, map[string]any{
				"uid":        a.UID,
				"algorithm":  algorithm,
				"cluster_id": clusterID,
			})
		}
	}
	return rows
}

func setCoordinates(row map[string]any, name string, coords []float64) {
	if len(coords) == 2 {
		row[name+"_x"] = coords[0]
		row[name+"_y"] = coords[1]
	} else {
		row[name+"_x"] = nil
		row[name+"_y"] = nil
	}
}

func strVal(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intVal(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func dayVal(d *types.Date) any {
	if d == nil {
		return nil
	}
	return d.Day()
}

func floatsVal(f []float64) any {
	if f == nil {
		return nil
	}
	return f
}
