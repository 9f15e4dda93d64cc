package bulk

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// mergeSleepStats loads every sleep export file and merges the per-day
// records into a single map keyed by calendar date.
//
// Entries without a calendarDate are skipped: sleep exports are known to
// carry malformed trailing entries. A second entry for a date that is
// already present means the export itself is duplicated, which aborts
// the load rather than silently overwriting.
func mergeSleepStats(paths []string) (map[string]map[string]interface{}, error) {
	if len(paths) == 0 {
		return nil, errors.New("failed to find any sleep stats files")
	}

	sleepStats := make(map[string]map[string]interface{})
	for _, p := range paths {
		var entries []map[string]interface{}
		if err := decodeJSONFile(p, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse sleep stats file %s: %w", p, err)
		}

		for _, stats := range entries {
			rawDate, ok := stats["calendarDate"].(string)
			if !ok {
				continue
			}
			date := strings.TrimSpace(rawDate)
			if _, exists := sleepStats[date]; exists {
				return nil, fmt.Errorf("duplicate entries found for sleep stats dated on %s", date)
			}

			// Coerce the end timestamp into the epoch-millisecond shape
			// the Connect API reports.
			if iso, ok := stats["sleepEndTimestampGMT"].(string); ok {
				ms, err := isoToTimestampMs(iso)
				if err != nil {
					return nil, fmt.Errorf("invalid sleepEndTimestampGMT for %s: %w", date, err)
				}
				stats["sleepEndTimestampGMT"] = ms
			}

			sleepStats[date] = stats
		}
	}

	log.Printf("Loaded %d days of sleep stats", len(sleepStats))
	return sleepStats, nil
}

// isoToTimestampMs converts an ISO-8601 timestamp string to UTC epoch
// milliseconds. Timestamps without an explicit zone, which is what the
// export contains, are interpreted as UTC.
func isoToTimestampMs(iso string) (int64, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, iso, time.UTC); err == nil {
			return t.UTC().UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", iso)
}
