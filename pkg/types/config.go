package types

import "time"

// GraphConfig holds the Neo4j connection settings for the batch writer.
// It is passed explicitly to the writer at construction; there is no
// process-wide default connection.
type GraphConfig struct {
	// URI is the bolt/neo4j endpoint (e.g. "neo4j://localhost:7687").
	URI string `json:"uri" yaml:"uri"`

	// Username and Password authenticate against the database.
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Database is the target database name (default "neo4j").
	Database string `json:"database" yaml:"database"`

	// BatchSize bounds the number of rows per write transaction (default 1000).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxRetries is the number of retry attempts per failed batch (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// ConnectTimeout is the socket connect timeout (default 10s).
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
}

// WithDefaults fills unset fields with their documented defaults.
func (c GraphConfig) WithDefaults() GraphConfig {
	if c.Database == "" {
		c.Database = "neo4j"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	return c
}

// IntegrationConfig holds settings for the batch integration stage.
type IntegrationConfig struct {
	// DataDir is the directory containing the per-entity tables
	// (authors.csv, institutions.csv, extended_articles.jsonl, ...).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// WipeDB clears all prior nodes, edges, constraints, and indexes
	// before writing. Destructive; requires the explicit --wipe-db flag.
	WipeDB bool `json:"wipe_db" yaml:"wipe_db"`
}

// KeywordsConfig holds settings for the keyword merge stage.
type KeywordsConfig struct {
	// ArticleKeywordsPath is the article→keywords JSON mapping.
	ArticleKeywordsPath string `json:"article_keywords" yaml:"article_keywords"`

	// MergeSuggestionsPath is the human-reviewed JSONL suggestion list.
	// Optional; an absent or empty file means no merges are applied.
	MergeSuggestionsPath string `json:"merge_suggestions,omitempty" yaml:"merge_suggestions,omitempty"`

	// ClustersPath is the cluster-assignment JSON file.
	ClustersPath string `json:"clusters" yaml:"clusters"`

	// OutputDir receives updated_article_keywords.json and
	// cluster_results.json (default: the data directory).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SkipMerge passes keywords through without applying suggestions.
	SkipMerge bool `json:"skip_merge" yaml:"skip_merge"`

	// ForceRun recomputes cluster results even when the cached artifact
	// is fresh.
	ForceRun bool `json:"force_run" yaml:"force_run"`
}
