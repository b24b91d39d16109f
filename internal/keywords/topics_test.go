// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtractTopics(t *testing.T) {
	clusters := map[string][]string{
		"0": {"p1", "p2"},
		"1": {"p3"},
		"2": {},
	}
	articleKeywords := map[string][]string{
		"p1": {"neurogenesis", "memory"},
		"p2": {"memory", "synapse"},
		"p3": {"plasticity"},
	}

	results := ExtractTopics(clusters, articleKeywords, nil)

	if got := results["0"].Keywords; !reflect.DeepEqual(got, []string{"memory", "neurogenesis", "synapse"}) {
		t.Errorf("cluster 0 keywords = %v, want sorted union without duplicates", got)
	}
	if got := results["1"].Keywords; !reflect.DeepEqual(got, []string{"plasticity"}) {
		t.Errorf("cluster 1 keywords = %v", got)
	}
	if len(results["2"].Keywords) != 0 {
		t.Errorf("empty cluster keywords = %v, want none", results["2"].Keywords)
	}
}

func TestExtractTopicsPreservesCachedSummaries(t *testing.T) {
	clusters := map[string][]string{"0": {"p1"}}
	articleKeywords := map[string][]string{"p1": {"neurogenesis"}}
	cached := map[string]ClusterResult{
		"0": {Keywords: []string{"stale"}, TopicSummary: "Adult neurogenesis research."},
		"9": {TopicSummary: "Gone cluster."},
	}

	results := ExtractTopics(clusters, articleKeywords, cached)

	if results["0"].TopicSummary != "Adult neurogenesis research." {
		t.Error("cached topic summary should be carried over")
	}
	if !reflect.DeepEqual(results["0"].Keywords, []string{"neurogenesis"}) {
		t.Errorf("keywords = %v, want recomputed union, not the cached one", results["0"].Keywords)
	}
	if _, ok := results["9"]; ok {
		t.Error("clusters absent from the assignment should not survive")
	}
}

func TestClusterResultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster_results.json")
	in := map[string]ClusterResult{
		"0": {Keywords: []string{"memory"}, TopicSummary: "Memory research."},
	}

	if err := SaveClusterResults(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadClusterResults(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round-trip = %v, want %v", out, in)
	}
}

func TestLoadClusterResultsMissingFile(t *testing.T) {
	out, err := LoadClusterResults(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || out != nil {
		t.Errorf("LoadClusterResults = %v, %v; want nil, nil", out, err)
	}
}

func TestAlgorithmLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"AgglomerativeClustering", "AGGLOMERATIVE"},
		{"KMeans", "KMEANS"},
		{"hdbscan", "HDBSCAN"},
	}
	for _, tt := range tests {
		if got := AlgorithmLabel(tt.in); got != tt.want {
			t.Errorf("AlgorithmLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadClusters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.json")
	data := `{
  "algorithm": "AgglomerativeClustering",
  "parameters": {"n_clusters": "8"},
  "clusters": {"0": ["p1", "p2"], "1": ["p3"]}
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	ca, err := LoadClusters(path)
	if err != nil {
		t.Fatal(err)
	}
	if ca.Algorithm != "AgglomerativeClustering" {
		t.Errorf("algorithm = %q", ca.Algorithm)
	}
	if !reflect.DeepEqual(ca.Clusters["0"], []string{"p1", "p2"}) {
		t.Errorf("cluster 0 = %v", ca.Clusters["0"])
	}
}
