// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"testing"

	"github.com/BlueBrain/citation-graph/pkg/types"
)

func TestTitleFingerprint(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "lowercases and strips non-letters",
			title: "The Blue Brain Project: 10 Years On!",
			want:  "thebluebrainprojectyearson",
		},
		{
			name:  "truncates to thirty characters",
			title: "Reconstruction and Simulation of Neocortical Microcircuitry",
			want:  "reconstructionandsimulationofn",
		},
		{
			name:  "whitespace variants fingerprint identically",
			title: "  Synaptic   plasticity\tin cortex ",
			want:  "synapticplasticityincortex",
		},
		{
			name:  "numeric-only title collapses to empty",
			title: "2015 (3)",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFingerprint(tt.title); got != tt.want {
				t.Errorf("TitleFingerprint(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestIsDOI(t *testing.T) {
	valid := []string{
		"10.1016/j.cell.2015.09.029",
		"10.3389/fninf.2019.00002",
		"10.1145/1234567.1234568",
	}
	invalid := []string{"", "doi:10.1016/j.cell.2015.09.029", "not-a-doi", "11.1234/x"}

	for _, s := range valid {
		if !IsDOI(s) {
			t.Errorf("IsDOI(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsDOI(s) {
			t.Errorf("IsDOI(%q) = true, want false", s)
		}
	}
}

func TestNameHash(t *testing.T) {
	h := NameHash("École Polytechnique Fédérale de Lausanne")
	if len(h) != 8 {
		t.Fatalf("NameHash length = %d, want 8", len(h))
	}
	if h != NameHash("École Polytechnique Fédérale de Lausanne") {
		t.Error("NameHash is not deterministic")
	}
	if h == NameHash("ETH Zürich") {
		t.Error("distinct names should not collide in practice")
	}
}

func TestArticleKey(t *testing.T) {
	doi := "10.1016/j.cell.2015.09.029"
	pmid := "26451489"

	tests := []struct {
		name    string
		article types.Article
		want    string
	}{
		{
			name:    "doi beats pmid and title",
			article: types.Article{UID: "a1", Title: "Some Title", DOI: &doi, PMID: &pmid},
			want:    "doi:10.1016/j.cell.2015.09.029",
		},
		{
			name:    "pmid beats title",
			article: types.Article{UID: "a1", Title: "Some Title", PMID: &pmid},
			want:    "pmid:26451489",
		},
		{
			name:    "title fingerprint fallback",
			article: types.Article{UID: "a1", Title: "Some Title"},
			want:    "title:sometitle",
		},
		{
			name:    "uid fallback for unmatched records",
			article: types.Article{UID: "a1", Title: "123"},
			want:    "uid:a1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArticleKey(tt.article); got != tt.want {
				t.Errorf("ArticleKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstitutionKey(t *testing.T) {
	withROR := types.Institution{UID: "i1", Name: "EPFL", OrganizationID: "02s376052", OrganizationIDFrom: types.OrgIDROR}
	if got := InstitutionKey(withROR); got != "ROR:02s376052" {
		t.Errorf("InstitutionKey = %q, want ROR:02s376052", got)
	}

	hashed := types.Institution{UID: "i2", Name: "EPFL", OrganizationID: "deadbeef", OrganizationIDFrom: types.OrgIDSHA256}
	if got := InstitutionKey(hashed); got != "sha256:"+NameHash("EPFL") {
		t.Errorf("InstitutionKey = %q, want name-hash key", got)
	}
}
