// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		keywords    map[string][]string
		suggestions map[string][]string
		want        map[string][]string
	}{
		{
			name: "variants fold into canonical keyword",
			keywords: map[string][]string{
				"p1": {"Neurogenesis", "neuronal birth", "memory"},
			},
			suggestions: map[string][]string{
				"neurogenesis": {"Neurogenesis", "neuronal birth"},
			},
			want: map[string][]string{
				"p1": {"neurogenesis", "memory"},
			},
		},
		{
			name: "unlisted keywords pass through",
			keywords: map[string][]string{
				"p1": {"synapse", "plasticity"},
			},
			suggestions: map[string][]string{
				"neurogenesis": {"Neurogenesis"},
			},
			want: map[string][]string{
				"p1": {"synapse", "plasticity"},
			},
		},
		{
			name: "no suggestions is a no-op",
			keywords: map[string][]string{
				"p1": {"synapse"},
			},
			suggestions: map[string][]string{},
			want: map[string][]string{
				"p1": {"synapse"},
			},
		},
		{
			name: "canonical already present deduplicates",
			keywords: map[string][]string{
				"p1": {"neurogenesis", "Neurogenesis", "memory"},
			},
			suggestions: map[string][]string{
				"neurogenesis": {"Neurogenesis"},
			},
			want: map[string][]string{
				"p1": {"neurogenesis", "memory"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.keywords, tt.suggestions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyOrderIndependentForDisjointSuggestions(t *testing.T) {
	keywords := map[string][]string{
		"p1": {"Neurogenesis", "LTP", "memory"},
	}
	first := map[string][]string{"neurogenesis": {"Neurogenesis"}}
	second := map[string][]string{"long-term potentiation": {"LTP"}}

	ab := Apply(Apply(keywords, first), second)
	ba := Apply(Apply(keywords, second), first)

	normalize := func(m map[string][]string) map[string][]string {
		out := make(map[string][]string, len(m))
		for k, v := range m {
			s := append([]string(nil), v...)
			sort.Strings(s)
			out[k] = s
		}
		return out
	}
	if !reflect.DeepEqual(normalize(ab), normalize(ba)) {
		t.Errorf("application order changed the result: %v vs %v", ab, ba)
	}
}

func TestLoadSuggestions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suggestions.jsonl")
	content := `{"neurogenesis": ["Neurogenesis", "neuronal birth"]}
not valid json
{"plasticity": ["synaptic plasticity"]}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	suggestions, err := LoadSuggestions(path, nil, nil)
	if err != nil {
		t.Fatalf("LoadSuggestions: %v", err)
	}

	// The malformed line is skipped, the valid lines survive.
	if len(suggestions) != 2 {
		t.Fatalf("suggestions = %v, want 2 entries", suggestions)
	}
	want := []string{"Neurogenesis", "neuronal birth"}
	if !reflect.DeepEqual(suggestions["neurogenesis"], want) {
		t.Errorf("neurogenesis variants = %v, want %v", suggestions["neurogenesis"], want)
	}
}

func TestLoadSuggestionsMissingFile(t *testing.T) {
	suggestions, err := LoadSuggestions(filepath.Join(t.TempDir(), "absent.jsonl"), nil, nil)
	if err != nil {
		t.Fatalf("LoadSuggestions: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("suggestions = %v, want empty", suggestions)
	}
}

func TestSaveAndLoadArticleKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	in := map[string][]string{"p1": {"neurogenesis"}, "p2": {"memory", "synapse"}}

	if err := SaveArticleKeywords(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadArticleKeywords(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round-trip = %v, want %v", out, in)
	}
}
