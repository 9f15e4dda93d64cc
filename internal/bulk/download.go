package bulk

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/sstent/garminbulk-go/internal/fitindex"
)

// matchEntry selects the index entry whose session start is nearest the
// activity start, provided the delta falls inside the tolerance window.
// The hard cutoff keeps the matcher from jumping to recordings on
// unrelated days when no true counterpart exists. Ties on equal delta
// keep the earlier entry in index order, which is archive walk order at
// build time and cache order afterwards.
func matchEntry(index []fitindex.Entry, activityStart time.Time, tolerance time.Duration) (*fitindex.Entry, time.Duration) {
	var best *fitindex.Entry
	var bestDelta time.Duration

	for i := range index {
		delta := index[i].Date.Sub(activityStart)
		if delta < 0 {
			delta = -delta
		}
		if delta > tolerance {
			continue
		}
		if best == nil || delta < bestDelta {
			best = &index[i]
			bestDelta = delta
		}
	}

	return best, bestDelta
}

// repackageEntry extracts one file from a source archive and returns it
// wrapped in a new in-memory zip archive under its base name, stripping
// any archive-internal directory structure.
func repackageEntry(archivePath, innerName string) ([]byte, error) {
	src, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer src.Close()

	rc, err := src.Open(innerName)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", innerName, archivePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", innerName, archivePath, err)
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	out, err := w.Create(path.Base(innerName))
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
