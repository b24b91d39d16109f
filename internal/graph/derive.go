// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "context"

// derivedQueries are views over the loaded edges, recomputed after every
// integration run. Order matters: AUTHOR_CITES_ARTICLE feeds the
// institution pass and the citing counts.
var derivedQueries = []struct {
	name  string
	query string
}{
	{
		"author_cites_article",
		`MATCH (author:Author)-[:WROTE]->(article1:Article)-[:ARTICLE_CITES_ARTICLE]->(article2:Article)
MERGE (author)-[:AUTHOR_CITES_ARTICLE]->(article2)`,
	},
	{
		// Attribute each author citation to the institution whose
		// affiliation start is closest to, and not after, the cited
		// article's publication date.
		"institution_cites_article",
		`MATCH (author:Author)-[aff:AFFILIATED_WITH]->(institution:Institution),
      (author)-[:AUTHOR_CITES_ARTICLE]->(article:Article)
WHERE aff.start_date IS NOT NULL AND article.publication_date IS NOT NULL
WITH author, institution, article, aff,
     duration.inDays(aff.start_date, article.publication_date).days AS time_diff_days
ORDER BY abs(time_diff_days) ASC
WITH author, institution, article, COLLECT(aff)[0] AS closest_affiliation
WHERE closest_affiliation.start_date <= article.publication_date
WITH institution, article,
     closest_affiliation.start_date AS start_date,
     closest_affiliation.end_date AS end_date
MERGE (institution)-[rel:INSTITUTION_CITES_ARTICLE]->(article)
SET rel.start_date = start_date, rel.end_date = end_date`,
	},
	{
		"article_num_citing_authors",
		`MATCH (source:Author)-[:AUTHOR_CITES_ARTICLE]->(target:Article)
WITH target, count(source) AS num_citing_authors
SET target.num_citing_authors = num_citing_authors`,
	},
	{
		"article_num_articles_cite",
		`MATCH (source:Article)-[:ARTICLE_CITES_ARTICLE]->(target:Article)
WITH target, count(source) AS num_articles_cite
SET target.num_articles_cite = num_articles_cite`,
	},
	{
		"article_num_citing_institutions",
		`MATCH (institution:Institution)-[:INSTITUTION_CITES_ARTICLE]->(article:Article)
WITH article, count(institution) AS num_citing_institutions
SET article.num_citing_institutions = num_citing_institutions`,
	},
	{
		"article_num_bbp_articles_cites",
		`MATCH (source:Article)-[:ARTICLE_CITES_ARTICLE]->(target:Article)
WHERE target.is_bbp = true
WITH source, count(target) AS num_bbp_articles_cites
SET source.num_bbp_articles_cites = num_bbp_articles_cites`,
	},
	{
		"author_num_bbp_articles_cites",
		`MATCH (source:Author)-[:AUTHOR_CITES_ARTICLE]->(target:Article)
WHERE target.is_bbp = true
WITH source, count(target) AS num_bbp_articles_cites
SET source.num_bbp_articles_cites = num_bbp_articles_cites`,
	},
	{
		"institution_num_bbp_articles_cites",
		`MATCH (source:Institution)-[:INSTITUTION_CITES_ARTICLE]->(target:Article)
WHERE target.is_bbp = true
WITH source, count(target) AS num_bbp_articles_cites
SET source.num_bbp_articles_cites = num_bbp_articles_cites`,
	},
}

// Derive recomputes the relationship types and count properties that are
// functions of the loaded graph: author and institution citation edges
// and the citing-count properties hanging off them. Safe to re-run; all
// statements are MERGE or full SET passes.
func (w *Writer) Derive(ctx context.Context) error {
	for _, dq := range derivedQueries {
		if err := w.exec.WriteQuery(ctx, dq.query, nil); err != nil {
			return err
		}
		if w.log != nil {
			w.log.Infow("derived", "pass", dq.name)
		}
	}
	return nil
}
