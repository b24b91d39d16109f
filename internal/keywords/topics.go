// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BlueBrain/citation-graph/pkg/types"
)

// ClusterResult is the topic artifact for one cluster: the union of its
// articles' keywords plus a cached topic summary. Summaries come from an
// external generation step and are carried through unchanged.
type ClusterResult struct {
	Keywords     []string `json:"keywords"`
	TopicSummary string   `json:"topic_summary"`
}

// LoadClusters reads the cluster assignment artifact: one algorithm's
// assignment of article uids to clusters.
func LoadClusters(path string) (*types.ClusterAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	var ca types.ClusterAnalysis
	if err := json.Unmarshal(data, &ca); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &ca, nil
}

// LoadClusterResults reads a previously produced topic artifact. A
// missing file yields nil, nil.
func LoadClusterResults(path string) (map[string]ClusterResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	var results map[string]ClusterResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return results, nil
}

// SaveClusterResults writes the topic artifact.
func SaveClusterResults(path string, results map[string]ClusterResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ExtractTopics builds per-cluster results from the articles' keywords:
// each cluster gets the sorted union of its members' keywords. Topic
// summaries are copied from cached results when present; generating new
// summaries is an external step, so clusters without a cached entry get
// an empty summary.
func ExtractTopics(clusters map[string][]string, articleKeywords map[string][]string, cached map[string]ClusterResult) map[string]ClusterResult {
	results := make(map[string]ClusterResult, len(clusters))
	for clusterID, uids := range clusters {
		seen := make(map[string]bool)
		var union []string
		for _, uid := range uids {
			for _, kw := range articleKeywords[uid] {
				if !seen[kw] {
					seen[kw] = true
					union = append(union, kw)
				}
			}
		}
		sort.Strings(union)

		result := ClusterResult{Keywords: union}
		if prev, ok := cached[clusterID]; ok {
			result.TopicSummary = prev.TopicSummary
		}
		results[clusterID] = result
	}
	return results
}

// AlgorithmLabel maps a clustering implementation name to the label used
// on Cluster nodes: "AgglomerativeClustering" becomes "AGGLOMERATIVE",
// names without the suffix are uppercased whole.
func AlgorithmLabel(algorithm string) string {
	name, _, _ := strings.Cut(algorithm, "Clustering")
	return strings.ToUpper(name)
}

// ClusterID parses the numeric cluster id used as a map key in the
// cluster artifacts.
func ClusterID(key string) (int, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("cluster id %q: %w", key, err)
	}
	return id, nil
}
