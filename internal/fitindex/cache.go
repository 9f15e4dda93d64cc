package fitindex

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Save writes the index to path as JSON for reuse by later runs.
func Save(index []Entry, path string) error {
	log.Printf("Caching fit index to %s", path)

	data, err := json.MarshalIndent(index, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a previously saved index. It returns nil when no cache file
// exists. A cache is trusted unconditionally once present: archives added
// to the export afterwards stay invisible until the cache file is
// deleted by hand.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	log.Printf("Using cached fit index at %s", path)

	var index []Entry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse fit index cache %s: %w", path, err)
	}
	return index, nil
}
