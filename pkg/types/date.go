// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing source dates. Sources emit
// full timestamps, dates, year-month pairs, or bare years.
var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01", "2006"}

// Date is a point in time parsed from the partial forms the gathering
// scripts emit. A bare year resolves to January 1 of that year. It
// marshals as an ISO day string, which Cypher's date() accepts.
type Date struct {
	time.Time
}

// ParseDate parses a source date string. An empty string parses to nil
// without error, keeping absent values absent.
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &Date{Time: t.UTC()}, nil
		}
	}
	return nil, fmt.Errorf("invalid date format: %q", s)
}

// Day renders the date as an ISO day string.
func (d Date) Day() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Day() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.Day(), nil
}

func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	if parsed != nil {
		d.Time = parsed.Time
	}
	return nil
}
