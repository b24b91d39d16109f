// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/BlueBrain/citation-graph/pkg/types"
)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[-._;()/:A-Za-z0-9]+$`)

// IsDOI reports whether s is a syntactically valid DOI.
func IsDOI(s string) bool {
	return doiPattern.MatchString(strings.TrimSpace(s))
}

// nonAlpha strips everything that is not a letter or whitespace.
var nonAlpha = regexp.MustCompile(`[^a-zA-Z\s]`)

// whitespace collapses runs of whitespace.
var whitespace = regexp.MustCompile(`\s+`)

// TitleFingerprint normalizes a title for cross-source matching: letters
// only, whitespace removed, lowercased, truncated to 30 characters. Two
// source rows with the same fingerprint are treated as the same article
// when no stronger identifier (DOI, PMID) matches.
func TitleFingerprint(title string) string {
	t := nonAlpha.ReplaceAllString(title, "")
	t = whitespace.ReplaceAllString(t, "")
	t = strings.ToLower(t)
	if len(t) > 30 {
		t = t[:30]
	}
	return t
}

// NameHash derives a stable short identifier from an arbitrary name, for
// institutions that carry no registry identifier.
func NameHash(name string) string {
	h := sha256.Sum256([]byte(name))
	return fmt.Sprintf("%x", h)[:8]
}

// ArticleKey resolves the canonical identity of an article. DOI beats
// PMID beats title fingerprint; the prefix keeps the key spaces disjoint.
func ArticleKey(a types.Article) string {
	if a.DOI != nil && IsDOI(*a.DOI) {
		return "doi:" + strings.ToLower(strings.TrimSpace(*a.DOI))
	}
	if a.PMID != nil && *a.PMID != "" {
		return "pmid:" + *a.PMID
	}
	if fp := TitleFingerprint(a.Title); fp != "" {
		return "title:" + fp
	}
	return "uid:" + a.UID
}

// AuthorKey resolves the canonical identity of an author: the ORCID id
// when present, the record uid otherwise.
func AuthorKey(a types.Author) string {
	if a.ORCIDID != nil && *a.ORCIDID != "" {
		return "orcid:" + *a.ORCIDID
	}
	return "uid:" + a.UID
}

// InstitutionKey resolves the canonical identity of an institution: the
// registry identifier when present, a hash of the name otherwise.
func InstitutionKey(i types.Institution) string {
	if i.OrganizationID != "" && i.OrganizationIDFrom != types.OrgIDSHA256 {
		return string(i.OrganizationIDFrom) + ":" + i.OrganizationID
	}
	return "sha256:" + NameHash(i.Name)
}
