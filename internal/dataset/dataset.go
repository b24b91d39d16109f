// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads the per-entity flat tables produced by the
// gathering scripts and normalizes them into canonical records: one
// record per real-world article, author, and institution, with edge sets
// unioned across sources.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BlueBrain/citation-graph/pkg/types"
)

// Input file names expected under the data directory.
const (
	ArticlesFile     = "extended_articles.jsonl"
	AuthorsFile      = "authors.csv"
	InstitutionsFile = "institutions.csv"
	CitationsFile    = "article_cites_article.csv"
	AuthorshipsFile  = "author_wrote_article.csv"
	AffiliationsFile = "author_affiliated_with_institution.csv"
)

// MissingSourceError reports a required input file that is absent for the
// active pipeline stage. It is fatal before any write happens.
type MissingSourceError struct {
	Path string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("required source file missing: %s", e.Path)
}

// Dataset holds the raw source rows, before deduplication.
type Dataset struct {
	Articles     []types.Article
	Authors      []types.Author
	Institutions []types.Institution
	Citations    []types.Citation
	Authorships  []types.Authorship
	Affiliations []types.Affiliation
}

// Load reads all required entity tables from dataDir. A missing file
// yields a MissingSourceError; malformed rows are errors naming the file
// and line.
func Load(dataDir string) (*Dataset, error) {
	ds := &Dataset{}

	var err error
	if ds.Articles, err = loadArticles(filepath.Join(dataDir, ArticlesFile)); err != nil {
		return nil, err
	}
	if ds.Authors, err = loadAuthors(filepath.Join(dataDir, AuthorsFile)); err != nil {
		return nil, err
	}
	if ds.Institutions, err = loadInstitutions(filepath.Join(dataDir, InstitutionsFile)); err != nil {
		return nil, err
	}
	if ds.Citations, err = loadCitations(filepath.Join(dataDir, CitationsFile)); err != nil {
		return nil, err
	}
	if ds.Authorships, err = loadAuthorships(filepath.Join(dataDir, AuthorshipsFile)); err != nil {
		return nil, err
	}
	if ds.Affiliations, err = loadAffiliations(filepath.Join(dataDir, AffiliationsFile)); err != nil {
		return nil, err
	}
	return ds, nil
}

// loadArticles reads the JSON-lines article table.
func loadArticles(path string) ([]types.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingSourceError{Path: path}
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var articles []types.Article
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var a types.Article
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		if a.UID == "" {
			return nil, fmt.Errorf("%s line %d: article without uid", path, lineNo)
		}
		articles = append(articles, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return articles, nil
}

func loadAuthors(path string) ([]types.Author, error) {
	var authors []types.Author
	err := readCSV(path, []string{"uid"}, func(row csvRow) error {
		a := types.Author{
			UID:             row.mustString("uid"),
			ORCIDID:         row.optString("orcid_id"),
			Name:            row.optString("name"),
			GoogleScholarID: row.optString("google_scholar_id"),
			Source:          types.Source(row.stringOr("source", "")),
		}
		fetched, err := row.optDate("fetched_at")
		if err != nil {
			return err
		}
		a.FetchedAt = fetched
		authors = append(authors, a)
		return nil
	})
	return authors, err
}

func loadInstitutions(path string) ([]types.Institution, error) {
	var institutions []types.Institution
	err := readCSV(path, []string{"uid", "name"}, func(row csvRow) error {
		institutions = append(institutions, types.Institution{
			UID:                row.mustString("uid"),
			Name:               row.mustString("name"),
			OrganizationID:     row.stringOr("organization_id", ""),
			OrganizationIDFrom: types.OrganizationIDSource(row.stringOr("organization_id_source", "")),
		})
		return nil
	})
	return institutions, err
}

func loadCitations(path string) ([]types.Citation, error) {
	var citations []types.Citation
	err := readCSV(path, []string{"article_uid_source", "article_uid_target"}, func(row csvRow) error {
		citations = append(citations, types.Citation{
			SourceUID: row.mustString("article_uid_source"),
			TargetUID: row.mustString("article_uid_target"),
		})
		return nil
	})
	return citations, err
}

func loadAuthorships(path string) ([]types.Authorship, error) {
	var authorships []types.Authorship
	err := readCSV(path, []string{"author_uid", "article_uid"}, func(row csvRow) error {
		authorships = append(authorships, types.Authorship{
			AuthorUID:  row.mustString("author_uid"),
			ArticleUID: row.mustString("article_uid"),
		})
		return nil
	})
	return authorships, err
}

func loadAffiliations(path string) ([]types.Affiliation, error) {
	var affiliations []types.Affiliation
	err := readCSV(path, []string{"author_uid", "institution_uid"}, func(row csvRow) error {
		aff := types.Affiliation{
			AuthorUID:      row.mustString("author_uid"),
			InstitutionUID: row.mustString("institution_uid"),
		}
		start, err := row.optDate("start_date")
		if err != nil {
			return err
		}
		end, err := row.optDate("end_date")
		if err != nil {
			return err
		}
		aff.StartDate, aff.EndDate = start, end
		affiliations = append(affiliations, aff)
		return nil
	})
	return affiliations, err
}

// csvRow is one record with header-resolved column access. Empty cells
// read as absent values, matching how the gathering scripts leave
// unknown fields blank.
type csvRow struct {
	path   string
	lineNo int
	cols   map[string]int
	fields []string
}

func (r csvRow) raw(name string) (string, bool) {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.fields) {
		return "", false
	}
	return strings.TrimSpace(r.fields[idx]), true
}

func (r csvRow) mustString(name string) string {
	v, _ := r.raw(name)
	return v
}

func (r csvRow) stringOr(name, fallback string) string {
	if v, ok := r.raw(name); ok && v != "" {
		return v
	}
	return fallback
}

func (r csvRow) optString(name string) *string {
	if v, ok := r.raw(name); ok && v != "" {
		return &v
	}
	return nil
}

func (r csvRow) optDate(name string) (*types.Date, error) {
	v, ok := r.raw(name)
	if !ok || v == "" {
		return nil, nil
	}
	t, err := types.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("%s line %d, column %s: %w", r.path, r.lineNo, name, err)
	}
	return t, nil
}

// readCSV reads path row by row, dispatching each record to fn. The
// header row defines column positions; required names must be present.
func readCSV(path string, required []string, fn func(csvRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &MissingSourceError{Path: path}
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return fmt.Errorf("%s: empty file, header row required", path)
	}
	if err != nil {
		return fmt.Errorf("reading %s header: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: missing required column %q", path, name)
		}
	}

	lineNo := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s line %d: %w", path, lineNo+1, err)
		}
		lineNo++
		if err := fn(csvRow{path: path, lineNo: lineNo, cols: cols, fields: fields}); err != nil {
			return err
		}
	}
}
