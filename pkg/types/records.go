// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the entity records and configuration structs shared
// across the integration pipeline.
package types

// Source identifies where an entity record originated. Records that were
// matched across sources carry a combined value such as "serp_europmc".
type Source string

const (
	SourceEuroPMC Source = "europmc"
	SourceSERP    Source = "serp"
	SourceCSV     Source = "csv"

	SourceSERPEuroPMC Source = "serp_europmc"
	SourceSERPCSV     Source = "serp_csv"
)

// Rank orders sources by metadata richness: europmc > serp > csv.
// Combined sources rank as their richest component. Unknown sources rank
// lowest so they never win a scalar conflict.
func (s Source) Rank() int {
	switch s {
	case SourceEuroPMC, SourceSERPEuroPMC:
		return 3
	case SourceSERP:
		return 2
	case SourceCSV, SourceSERPCSV:
		return 1
	default:
		return 0
	}
}

// OrganizationIDSource names the registry an institution identifier came
// from. "sha256" marks identifiers derived from the institution name.
type OrganizationIDSource string

const (
	OrgIDLEI      OrganizationIDSource = "LEI"
	OrgIDFundref  OrganizationIDSource = "FUNDREF"
	OrgIDGrid     OrganizationIDSource = "GRID"
	OrgIDRinggold OrganizationIDSource = "RINGGOLD"
	OrgIDROR      OrganizationIDSource = "ROR"
	OrgIDSHA256   OrganizationIDSource = "sha256"
)

// Article is one publication. Optional scalar fields are pointers so the
// loader can distinguish "absent in the source row" from a zero value,
// which the merge-priority rules depend on.
type Article struct {
	UID             string  `json:"uid" yaml:"uid"`
	Title           string  `json:"title" yaml:"title"`
	Source          Source  `json:"source" yaml:"source"`
	IsBBP           bool    `json:"is_bbp" yaml:"is_bbp"`
	IsPublished     bool    `json:"is_published" yaml:"is_published"`
	PublicationDate *Date   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Abstract        *string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	DOI             *string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID            *string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	EuroPMCID       *string `json:"europmc_id,omitempty" yaml:"europmc_id,omitempty"`
	GoogleScholarID *string `json:"google_scholar_id,omitempty" yaml:"google_scholar_id,omitempty"`
	URL             *string `json:"url,omitempty" yaml:"url,omitempty"`
	ISBNs           *string `json:"isbns,omitempty" yaml:"isbns,omitempty"`
	Citations       *int    `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Analysis fields attached by the embedding/clustering stages.
	Embedding []float64      `json:"embedding,omitempty" yaml:"embedding,omitempty"`
	Clusters  map[string]int `json:"clusters,omitempty" yaml:"clusters,omitempty"`
	UMAP      []float64      `json:"umap,omitempty" yaml:"umap,omitempty"`
	TSNE      []float64      `json:"tsne,omitempty" yaml:"tsne,omitempty"`
	PCA       []float64      `json:"pca,omitempty" yaml:"pca,omitempty"`

	// FetchedAt breaks scalar-conflict ties between equally ranked sources.
	FetchedAt *Date `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
}

// Author is one publication author.
type Author struct {
	UID             string  `json:"uid" yaml:"uid"`
	ORCIDID         *string `json:"orcid_id,omitempty" yaml:"orcid_id,omitempty"`
	Name            *string `json:"name,omitempty" yaml:"name,omitempty"`
	GoogleScholarID *string `json:"google_scholar_id,omitempty" yaml:"google_scholar_id,omitempty"`
	Source          Source  `json:"source,omitempty" yaml:"source,omitempty"`
	FetchedAt       *Date   `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
}

// AuthorStats holds the per-author counts derived from authorship edges at
// integration time. They are views over the edge set, never read back from
// the database or mutated independently.
type AuthorStats struct {
	WroteBBP           bool `json:"wrote_bbp" yaml:"wrote_bbp"`
	ArticlesWritten    int  `json:"num_articles_written" yaml:"num_articles_written"`
	BBPArticlesWritten int  `json:"num_bbp_articles_written" yaml:"num_bbp_articles_written"`
}

// Institution is one research organization.
type Institution struct {
	UID                string               `json:"uid" yaml:"uid"`
	Name               string               `json:"name" yaml:"name"`
	OrganizationID     string               `json:"organization_id" yaml:"organization_id"`
	OrganizationIDFrom OrganizationIDSource `json:"organization_id_source" yaml:"organization_id_source"`
}

// InstitutionStats holds the per-institution counts derived from
// affiliation edges and author stats at integration time.
type InstitutionStats struct {
	EverAffiliated         int `json:"num_ex_aff_authors" yaml:"num_ex_aff_authors"`
	CurrentlyAffiliated    int `json:"num_currently_aff_authors" yaml:"num_currently_aff_authors"`
	EverAffiliatedBBP      int `json:"num_ex_aff_bbp_authors" yaml:"num_ex_aff_bbp_authors"`
	CurrentlyAffiliatedBBP int `json:"num_currently_aff_bbp_authors" yaml:"num_currently_aff_bbp_authors"`
}

// Citation is a directed article-cites-article edge.
type Citation struct {
	SourceUID string `json:"article_uid_source" yaml:"article_uid_source"`
	TargetUID string `json:"article_uid_target" yaml:"article_uid_target"`
}

// Authorship is an author-wrote-article edge.
type Authorship struct {
	AuthorUID  string `json:"author_uid" yaml:"author_uid"`
	ArticleUID string `json:"article_uid" yaml:"article_uid"`
}

// Affiliation links an author to an institution over a validity interval.
// Current is derived at write time: the author's most recent affiliation.
type Affiliation struct {
	AuthorUID      string `json:"author_uid" yaml:"author_uid"`
	InstitutionUID string `json:"institution_uid" yaml:"institution_uid"`
	StartDate      *Date  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate        *Date  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Current        bool   `json:"current" yaml:"current"`
}

// ClusterAnalysis is the persisted output of one clustering run.
type ClusterAnalysis struct {
	Algorithm  string              `json:"algorithm" yaml:"algorithm"`
	Parameters map[string]string   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Clusters   map[string][]string `json:"clusters" yaml:"clusters"`
}
