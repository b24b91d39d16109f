// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads database credentials from a directory of
// plain-text files, one secret per file: the filename is the key and
// the trimmed file contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Keys the CLI looks up. Flags and config take precedence over these.
const (
	Neo4jURI      = "neo4j-uri"
	Neo4jUser     = "neo4j-user"
	Neo4jPassword = "neo4j-password"
)

// Store maps secret names to their values.
type Store map[string]string

// Get returns fallback when it is non-empty, otherwise the stored
// value for name. A nil Store just returns the fallback.
func (s Store) Get(name, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[name]
}

// Load reads every regular file in dir into a Store. A missing
// directory is not an error; Load returns an empty Store so callers
// fall through to flags and config. Dotfiles are ignored, and a file
// that cannot be read produces a stderr warning rather than aborting
// the command.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		value, err := readSecret(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value != "" {
			store[name] = value
		}
	}
	return store, nil
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
