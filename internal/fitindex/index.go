// Package fitindex builds and caches an index of the activity recording
// files found inside a bulk export's uploaded-file archives. Decoding
// every recording is by far the most expensive step of a run, so the
// index is persisted beside the export and reused on later runs.
package fitindex

import (
	"archive/zip"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"
)

// CacheFileName is the name of the index cache file, stored at the root
// of the export directory.
const CacheFileName = "fit_file_index.json"

// Entry locates one activity recording inside the export archives.
// Duplicate recordings across archives are valid; the download matcher
// resolves them by nearest session start at query time.
type Entry struct {
	Date        time.Time `json:"date"`          // session start, UTC
	ZipFileName string    `json:"zip_file_name"` // path of the containing archive
	FitFileName string    `json:"fit_file_name"` // name inside the archive
	Activity    string    `json:"activity"`
}

// Builder scans recording archives into a list of index entries.
type Builder struct {
	decoder SessionDecoder
}

func NewBuilder(decoder SessionDecoder) *Builder {
	return &Builder{decoder: decoder}
}

// Build decodes every .fit file inside the given archives far enough to
// read its session start time and sport. Recordings without a session
// are skipped; a recording that fails to decode aborts the whole scan,
// since a partial index must never be served.
func (b *Builder) Build(archivePaths []string) ([]Entry, error) {
	var index []Entry
	for _, archivePath := range archivePaths {
		entries, err := b.scanArchive(archivePath)
		if err != nil {
			return nil, err
		}
		index = append(index, entries...)
	}

	log.Printf("Found %d activity .fit files", len(index))
	return index, nil
}

func (b *Builder) scanArchive(archivePath string) ([]Entry, error) {
	z, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer z.Close()

	log.Printf("Processing %s (%d files)", archivePath, len(z.File))

	var entries []Entry
	for i, f := range z.File {
		if i > 0 && i%500 == 0 {
			log.Printf("%.2f%% of %s processed ...",
				float64(i)/float64(len(z.File))*100, filepath.Base(archivePath))
		}

		if !strings.HasSuffix(strings.ToLower(f.Name), ".fit") {
			continue
		}

		summary, err := b.decodeEntry(f)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				continue
			}
			return nil, fmt.Errorf("failed to parse FIT file %s in %s: %w", f.Name, archivePath, err)
		}

		entries = append(entries, Entry{
			Date:        summary.StartTime,
			ZipFileName: archivePath,
			FitFileName: f.Name,
			Activity:    summary.Sport,
		})
	}

	return entries, nil
}

func (b *Builder) decodeEntry(f *zip.File) (*SessionSummary, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	return b.decoder.DecodeSession(rc)
}
