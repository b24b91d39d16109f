// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestLogLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "audit.jsonl")

	log, err := Open(path, "integrate")
	require.NoError(t, err)
	require.NotEmpty(t, log.RunID())

	log.Record(KindRecordMerged, map[string]any{"entity": "article", "key": "doi:10.1000/x"})
	log.Record(KindIdentifierConflict, map[string]any{"field": "title"})
	require.NoError(t, log.Close())

	entries := readEntries(t, path)
	require.Len(t, entries, 4)

	assert.Equal(t, KindRunStart, entries[0].Kind)
	assert.Equal(t, "integrate", entries[0].Fields["command"])
	assert.Equal(t, KindRecordMerged, entries[1].Kind)
	assert.Equal(t, KindIdentifierConflict, entries[2].Kind)
	assert.Equal(t, KindRunComplete, entries[3].Kind)

	for _, e := range entries {
		assert.Equal(t, log.RunID(), e.RunID)
		assert.False(t, e.Time.IsZero())
	}
}

func TestLogAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	first, err := Open(path, "integrate")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, "keywords apply")
	require.NoError(t, err)
	require.NoError(t, second.Close())

	entries := readEntries(t, path)
	require.Len(t, entries, 4)
	assert.NotEqual(t, entries[0].RunID, entries[2].RunID, "each run gets a fresh id")
}

func TestNilLogIsSafe(t *testing.T) {
	var log *Log
	assert.Empty(t, log.RunID())
	log.Record(KindBatchRetry, nil)
	assert.NoError(t, log.Close())
}
