// Package bulk answers Garmin Connect API queries from a bulk data
// export: a directory of JSON export files plus zip archives of the raw
// activity recordings.
package bulk

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"regexp"
)

// Filename patterns for the export file families. Classification is
// done per consumer over the full file list; files matching none of the
// patterns are ignored.
var (
	activityFilePattern  = regexp.MustCompile(`DI-Connect-Fitness.*summarizedActivities\.json`)
	sleepFilePattern     = regexp.MustCompile(`DI-Connect-Wellness.*sleepData\.json`)
	aggregateFilePattern = regexp.MustCompile(`DI-Connect-Aggregator.*UDSFile.*\.json`)
	archiveFilePattern   = regexp.MustCompile(`DI-Connect-Uploaded-Files.*\.zip`)
)

// listFiles returns every file found under root, recursively.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Found %d total files in %s", len(files), root)
	return files, nil
}

// filterFiles returns the subset of paths matching pattern.
func filterFiles(paths []string, pattern *regexp.Regexp) []string {
	var matched []string
	for _, p := range paths {
		if pattern.MatchString(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

func decodeJSONFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(v)
}
