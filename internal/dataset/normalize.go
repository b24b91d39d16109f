// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BlueBrain/citation-graph/internal/audit"
	"github.com/BlueBrain/citation-graph/pkg/types"
)

// Conflict records one scalar disagreement between two source records for
// the same canonical entity, and how it was resolved. Identity resolution
// is best-effort; conflicts go to the audit log for manual correction
// instead of being silently fixed.
type Conflict struct {
	Entity        string       `json:"entity"`
	Key           string       `json:"key"`
	Field         string       `json:"field"`
	Kept          string       `json:"kept"`
	Dropped       string       `json:"dropped"`
	KeptSource    types.Source `json:"kept_source"`
	DroppedSource types.Source `json:"dropped_source"`
}

// Normalized is the deduplicated dataset ready for the batch writer.
// Stats maps are keyed by canonical entity uid.
type Normalized struct {
	Articles     []types.Article
	Authors      []types.Author
	Institutions []types.Institution
	Citations    []types.Citation
	Authorships  []types.Authorship
	Affiliations []types.Affiliation

	AuthorStats      map[string]types.AuthorStats
	InstitutionStats map[string]types.InstitutionStats
}

// Normalizer deduplicates source records and derives integration-time
// stats. Merge and conflict decisions are written to the audit log.
type Normalizer struct {
	log   *zap.SugaredLogger
	audit *audit.Log
}

// NewNormalizer returns a Normalizer. Both the logger and the audit log
// may be nil, in which case decisions are not recorded.
func NewNormalizer(log *zap.SugaredLogger, auditLog *audit.Log) *Normalizer {
	return &Normalizer{log: log, audit: auditLog}
}

// Normalize merges records sharing a resolved canonical key, remaps edge
// endpoints to the canonical uids, drops duplicate edges, flags current
// affiliations, and computes derived stats.
func (n *Normalizer) Normalize(ds *Dataset) *Normalized {
	norm := &Normalized{}

	articleRemap := n.normalizeArticles(ds, norm)
	authorRemap := n.normalizeAuthors(ds, norm)
	instRemap := n.normalizeInstitutions(ds, norm)

	n.normalizeEdges(ds, norm, articleRemap, authorRemap, instRemap)
	flagCurrentAffiliations(norm.Affiliations)
	deriveStats(norm)

	return norm
}

func (n *Normalizer) normalizeArticles(ds *Dataset, norm *Normalized) map[string]string {
	index := make(map[string]int)
	remap := make(map[string]string)

	for _, a := range ds.Articles {
		key := ArticleKey(a)
		i, seen := index[key]
		if !seen {
			index[key] = len(norm.Articles)
			norm.Articles = append(norm.Articles, a)
			remap[a.UID] = a.UID
			continue
		}
		merged, conflicts := MergeArticles(norm.Articles[i], a)
		remap[a.UID] = merged.UID
		norm.Articles[i] = merged
		n.recordMerge("article", key, conflicts)
	}
	return remap
}

func (n *Normalizer) normalizeAuthors(ds *Dataset, norm *Normalized) map[string]string {
	index := make(map[string]int)
	remap := make(map[string]string)

	for _, a := range ds.Authors {
		key := AuthorKey(a)
		i, seen := index[key]
		if !seen {
			index[key] = len(norm.Authors)
			norm.Authors = append(norm.Authors, a)
			remap[a.UID] = a.UID
			continue
		}
		merged, conflicts := MergeAuthors(norm.Authors[i], a)
		remap[a.UID] = merged.UID
		norm.Authors[i] = merged
		n.recordMerge("author", key, conflicts)
	}
	return remap
}

func (n *Normalizer) normalizeInstitutions(ds *Dataset, norm *Normalized) map[string]string {
	index := make(map[string]int)
	remap := make(map[string]string)

	for _, inst := range ds.Institutions {
		key := InstitutionKey(inst)
		i, seen := index[key]
		if !seen {
			index[key] = len(norm.Institutions)
			norm.Institutions = append(norm.Institutions, inst)
			remap[inst.UID] = inst.UID
			continue
		}
		merged, conflicts := MergeInstitutions(norm.Institutions[i], inst)
		remap[inst.UID] = merged.UID
		norm.Institutions[i] = merged
		n.recordMerge("institution", key, conflicts)
	}
	return remap
}

// normalizeEdges remaps edge endpoints to canonical uids and unions the
// edge sets. Merging two records for the same entity must never create
// duplicate relationships.
func (n *Normalizer) normalizeEdges(ds *Dataset, norm *Normalized, articles, authors, institutions map[string]string) {
	canonical := func(remap map[string]string, uid string) string {
		if c, ok := remap[uid]; ok {
			return c
		}
		return uid
	}

	seenCitations := make(map[types.Citation]bool)
	for _, c := range ds.Citations {
		c.SourceUID = canonical(articles, c.SourceUID)
		c.TargetUID = canonical(articles, c.TargetUID)
		if c.SourceUID == c.TargetUID || seenCitations[c] {
			continue
		}
		seenCitations[c] = true
		norm.Citations = append(norm.Citations, c)
	}

	seenAuthorships := make(map[types.Authorship]bool)
	for _, w := range ds.Authorships {
		w.AuthorUID = canonical(authors, w.AuthorUID)
		w.ArticleUID = canonical(articles, w.ArticleUID)
		if seenAuthorships[w] {
			continue
		}
		seenAuthorships[w] = true
		norm.Authorships = append(norm.Authorships, w)
	}

	type affKey struct {
		author, institution, start, end string
	}
	seenAffiliations := make(map[affKey]bool)
	for _, aff := range ds.Affiliations {
		aff.AuthorUID = canonical(authors, aff.AuthorUID)
		aff.InstitutionUID = canonical(institutions, aff.InstitutionUID)
		k := affKey{aff.AuthorUID, aff.InstitutionUID, dayOrEmpty(aff.StartDate), dayOrEmpty(aff.EndDate)}
		if seenAffiliations[k] {
			continue
		}
		seenAffiliations[k] = true
		norm.Affiliations = append(norm.Affiliations, aff)
	}
}

func (n *Normalizer) recordMerge(entity, key string, conflicts []Conflict) {
	if n.log != nil {
		n.log.Debugw("merged duplicate record", "entity", entity, "key", key, "conflicts", len(conflicts))
	}
	n.audit.Record(audit.KindRecordMerged, map[string]any{"entity": entity, "key": key})
	for _, c := range conflicts {
		c.Entity, c.Key = entity, key
		if n.log != nil {
			n.log.Warnw("identifier conflict resolved by source priority",
				"entity", entity, "key", key, "field", c.Field,
				"kept_source", c.KeptSource, "dropped_source", c.DroppedSource)
		}
		n.audit.Record(audit.KindIdentifierConflict, map[string]any{
			"entity": c.Entity, "key": c.Key, "field": c.Field,
			"kept": c.Kept, "dropped": c.Dropped,
			"kept_source": string(c.KeptSource), "dropped_source": string(c.DroppedSource),
		})
	}
}

// flagCurrentAffiliations marks, per author, the affiliation with the most
// recent start date. Affiliations without a start date are never current.
func flagCurrentAffiliations(affiliations []types.Affiliation) {
	latest := make(map[string]int)
	for i := range affiliations {
		affiliations[i].Current = false
		if affiliations[i].StartDate == nil {
			continue
		}
		j, ok := latest[affiliations[i].AuthorUID]
		if !ok || affiliations[i].StartDate.After(affiliations[j].StartDate.Time) {
			latest[affiliations[i].AuthorUID] = i
		}
	}
	for _, i := range latest {
		affiliations[i].Current = true
	}
}

// deriveStats computes the per-author and per-institution counts from the
// normalized edge sets. The counts are views: they equal the number of
// matching edges at write time.
func deriveStats(norm *Normalized) {
	norm.AuthorStats = make(map[string]types.AuthorStats, len(norm.Authors))
	norm.InstitutionStats = make(map[string]types.InstitutionStats, len(norm.Institutions))

	bbpArticles := make(map[string]bool, len(norm.Articles))
	for _, a := range norm.Articles {
		if a.IsBBP {
			bbpArticles[a.UID] = true
		}
	}

	for _, w := range norm.Authorships {
		stats := norm.AuthorStats[w.AuthorUID]
		stats.ArticlesWritten++
		if bbpArticles[w.ArticleUID] {
			stats.BBPArticlesWritten++
			stats.WroteBBP = true
		}
		norm.AuthorStats[w.AuthorUID] = stats
	}

	// Distinct affiliated authors per institution, ever and current.
	seenEver := make(map[string]bool)
	for _, aff := range norm.Affiliations {
		stats := norm.InstitutionStats[aff.InstitutionUID]
		wroteBBP := norm.AuthorStats[aff.AuthorUID].WroteBBP

		everKey := aff.InstitutionUID + "\x00" + aff.AuthorUID
		if !seenEver[everKey] {
			seenEver[everKey] = true
			stats.EverAffiliated++
			if wroteBBP {
				stats.EverAffiliatedBBP++
			}
		}
		if aff.Current {
			stats.CurrentlyAffiliated++
			if wroteBBP {
				stats.CurrentlyAffiliatedBBP++
			}
		}
		norm.InstitutionStats[aff.InstitutionUID] = stats
	}
}

// MergeArticles folds two source records for the same article into one
// canonical record. The uid of the first-seen record wins. Scalar
// disagreements resolve by source priority (europmc > serp > csv), ties
// by most-recently-fetched; each is reported as a Conflict.
// Merging is idempotent: MergeArticles(MergeArticles(a, b), b) equals
// MergeArticles(a, b) up to reported conflicts.
func MergeArticles(a, b types.Article) (types.Article, []Conflict) {
	var conflicts []Conflict
	win, lose := a, b
	if preferSecond(a.Source, a.FetchedAt, b.Source, b.FetchedAt) {
		win, lose = b, a
	}

	out := win
	out.UID = a.UID
	out.Source = combineSources(a.Source, b.Source)

	out.Title = pickString(win.Title, lose.Title, "title", win.Source, lose.Source, &conflicts)
	out.Abstract = pickOptString(win.Abstract, lose.Abstract, "abstract", win.Source, lose.Source, &conflicts)
	out.DOI = pickOptString(win.DOI, lose.DOI, "doi", win.Source, lose.Source, &conflicts)
	out.PMID = pickOptString(win.PMID, lose.PMID, "pmid", win.Source, lose.Source, &conflicts)
	out.EuroPMCID = pickOptString(win.EuroPMCID, lose.EuroPMCID, "europmc_id", win.Source, lose.Source, &conflicts)
	out.GoogleScholarID = pickOptString(win.GoogleScholarID, lose.GoogleScholarID, "google_scholar_id", win.Source, lose.Source, &conflicts)
	out.URL = pickOptString(win.URL, lose.URL, "url", win.Source, lose.Source, &conflicts)
	out.ISBNs = pickOptString(win.ISBNs, lose.ISBNs, "isbns", win.Source, lose.Source, &conflicts)

	out.IsBBP = a.IsBBP || b.IsBBP
	out.IsPublished = a.IsPublished || b.IsPublished

	if out.PublicationDate == nil {
		out.PublicationDate = lose.PublicationDate
	} else if lose.PublicationDate != nil && !out.PublicationDate.Equal(lose.PublicationDate.Time) {
		conflicts = append(conflicts, Conflict{
			Field: "publication_date",
			Kept:  out.PublicationDate.Day(), Dropped: lose.PublicationDate.Day(),
			KeptSource: win.Source, DroppedSource: lose.Source,
		})
	}

	if out.Citations == nil {
		out.Citations = lose.Citations
	} else if lose.Citations != nil && *lose.Citations > *out.Citations {
		// Citation counts only grow; keep the larger observation.
		out.Citations = lose.Citations
	}

	if out.Embedding == nil {
		out.Embedding = lose.Embedding
	}
	if out.Clusters == nil {
		out.Clusters = lose.Clusters
	}
	if out.UMAP == nil {
		out.UMAP = lose.UMAP
	}
	if out.TSNE == nil {
		out.TSNE = lose.TSNE
	}
	if out.PCA == nil {
		out.PCA = lose.PCA
	}

	out.FetchedAt = laterDate(a.FetchedAt, b.FetchedAt)
	return out, conflicts
}

// MergeAuthors folds two source records for the same author (matched by
// ORCID id) into one canonical record.
func MergeAuthors(a, b types.Author) (types.Author, []Conflict) {
	var conflicts []Conflict
	win, lose := a, b
	if preferSecond(a.Source, a.FetchedAt, b.Source, b.FetchedAt) {
		win, lose = b, a
	}

	out := win
	out.UID = a.UID
	out.Source = combineSources(a.Source, b.Source)
	out.ORCIDID = pickOptString(win.ORCIDID, lose.ORCIDID, "orcid_id", win.Source, lose.Source, &conflicts)
	out.Name = pickOptString(win.Name, lose.Name, "name", win.Source, lose.Source, &conflicts)
	out.GoogleScholarID = pickOptString(win.GoogleScholarID, lose.GoogleScholarID, "google_scholar_id", win.Source, lose.Source, &conflicts)
	out.FetchedAt = laterDate(a.FetchedAt, b.FetchedAt)
	return out, conflicts
}

// MergeInstitutions folds two records for the same institution. A registry
// identifier always beats a name-hash identifier.
func MergeInstitutions(a, b types.Institution) (types.Institution, []Conflict) {
	var conflicts []Conflict
	win, lose := a, b
	if a.OrganizationIDFrom == types.OrgIDSHA256 && b.OrganizationIDFrom != types.OrgIDSHA256 {
		win, lose = b, a
	}

	out := win
	out.UID = a.UID
	if out.Name == "" {
		out.Name = lose.Name
	} else if lose.Name != "" && lose.Name != out.Name {
		conflicts = append(conflicts, Conflict{
			Field: "name", Kept: out.Name, Dropped: lose.Name,
		})
	}
	return out, conflicts
}

// preferSecond reports whether the second record should win scalar
// conflicts: strictly richer source, or an equally rich source fetched
// more recently.
func preferSecond(s1 types.Source, t1 *types.Date, s2 types.Source, t2 *types.Date) bool {
	if s2.Rank() != s1.Rank() {
		return s2.Rank() > s1.Rank()
	}
	return t1 != nil && t2 != nil && t2.After(t1.Time)
}

// combineSources labels a record matched across sources, e.g. a SERP row
// merged with a EuroPMC row becomes "serp_europmc".
func combineSources(a, b types.Source) types.Source {
	set := make(map[types.Source]bool, 3)
	for _, s := range []types.Source{a, b} {
		switch s {
		case types.SourceSERPEuroPMC:
			set[types.SourceSERP] = true
			set[types.SourceEuroPMC] = true
		case types.SourceSERPCSV:
			set[types.SourceSERP] = true
			set[types.SourceCSV] = true
		case types.SourceEuroPMC, types.SourceSERP, types.SourceCSV:
			set[s] = true
		}
	}
	switch {
	case set[types.SourceSERP] && set[types.SourceEuroPMC]:
		return types.SourceSERPEuroPMC
	case set[types.SourceSERP] && set[types.SourceCSV]:
		return types.SourceSERPCSV
	case set[types.SourceEuroPMC]:
		return types.SourceEuroPMC
	case set[types.SourceSERP]:
		return types.SourceSERP
	case set[types.SourceCSV]:
		return types.SourceCSV
	default:
		if a != "" {
			return a
		}
		return b
	}
}

func pickString(win, lose, field string, winSrc, loseSrc types.Source, conflicts *[]Conflict) string {
	if win == "" {
		return lose
	}
	if lose != "" && lose != win {
		*conflicts = append(*conflicts, Conflict{
			Field: field, Kept: win, Dropped: lose,
			KeptSource: winSrc, DroppedSource: loseSrc,
		})
	}
	return win
}

func pickOptString(win, lose *string, field string, winSrc, loseSrc types.Source, conflicts *[]Conflict) *string {
	if win == nil {
		return lose
	}
	if lose != nil && *lose != *win {
		*conflicts = append(*conflicts, Conflict{
			Field: field, Kept: *win, Dropped: *lose,
			KeptSource: winSrc, DroppedSource: loseSrc,
		})
	}
	return win
}

func laterDate(a, b *types.Date) *types.Date {
	if a == nil {
		return b
	}
	if b == nil || a.After(b.Time) {
		return a
	}
	return b
}

func dayOrEmpty(d *types.Date) string {
	if d == nil {
		return ""
	}
	return d.Day()
}

// Summary describes the normalized dataset for logging.
func (n *Normalized) Summary() string {
	return fmt.Sprintf("%d articles, %d authors, %d institutions, %d citations, %d authorships, %d affiliations",
		len(n.Articles), len(n.Authors), len(n.Institutions),
		len(n.Citations), len(n.Authorships), len(n.Affiliations))
}
