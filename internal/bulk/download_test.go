package bulk

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/garminbulk-go/internal/fitindex"
)

func TestMatchEntry(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	index := []fitindex.Entry{
		{Date: start.Add(-4 * time.Minute), FitFileName: "early.fit"},
		{Date: start.Add(90 * time.Second), FitFileName: "near.fit"},
		{Date: start.Add(20 * time.Minute), FitFileName: "far.fit"},
	}

	match, delta := matchEntry(index, start, 5*time.Minute)
	require.NotNil(t, match)
	assert.Equal(t, "near.fit", match.FitFileName)
	assert.Equal(t, 90*time.Second, delta)
}

func TestMatchEntry_NoneWithinTolerance(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	index := []fitindex.Entry{
		{Date: start.Add(6 * time.Minute), FitFileName: "far.fit"},
	}

	match, _ := matchEntry(index, start, 5*time.Minute)
	assert.Nil(t, match)
}

func TestMatchEntry_TieKeepsFirst(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	index := []fitindex.Entry{
		{Date: start.Add(-time.Minute), FitFileName: "before.fit"},
		{Date: start.Add(time.Minute), FitFileName: "after.fit"},
	}

	match, delta := matchEntry(index, start, 5*time.Minute)
	require.NotNil(t, match)
	assert.Equal(t, "before.fit", match.FitFileName)
	assert.Equal(t, time.Minute, delta)
}

func TestRepackageEntry(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "uploads.zip")
	writeZipArchive(t, archive, map[string]string{
		"Activities/2024/run.fit": "fit bytes",
		"Activities/other.fit":    "other",
	})

	data, err := repackageEntry(archive, "Activities/2024/run.fit")
	require.NoError(t, err)
	assertZipContains(t, data, "run.fit", "fit bytes")
}

func TestRepackageEntry_MissingInnerFileFails(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "uploads.zip")
	writeZipArchive(t, archive, map[string]string{"a.fit": "x"})

	_, err := repackageEntry(archive, "missing.fit")
	require.Error(t, err)
}
