package bulk

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// mergeAggStats loads the aggregated daily (UDS) export files. Hydration
// entries share these files, distinguished by a "hydration" marker key,
// and are split out into their own map; they carry no uniqueness
// guarantee, so the last one read wins. Daily stats entries enforce one
// record per calendar date across all files.
//
// sleepStats must already be merged: each daily stats record gets a
// derived sleepingSeconds value, which the export does not include.
func mergeAggStats(paths []string, sleepStats map[string]map[string]interface{}) (map[string]map[string]interface{}, map[string]map[string]interface{}, error) {
	if len(paths) == 0 {
		return nil, nil, errors.New("failed to find any aggregated stats files")
	}

	aggStats := make(map[string]map[string]interface{})
	hydrationStats := make(map[string]map[string]interface{})

	for _, p := range paths {
		var entries []map[string]interface{}
		if err := decodeJSONFile(p, &entries); err != nil {
			return nil, nil, fmt.Errorf("failed to parse aggregated stats file %s: %w", p, err)
		}

		for _, stats := range entries {
			if hydration, ok := stats["hydration"].(map[string]interface{}); ok {
				date, _ := hydration["calendarDate"].(string)
				hydrationStats[strings.TrimSpace(date)] = hydration
				continue
			}

			rawDate, ok := stats["calendarDate"].(string)
			if !ok {
				return nil, nil, fmt.Errorf("aggregated stats entry in %s has no calendarDate", p)
			}
			date := strings.TrimSpace(rawDate)
			if _, exists := aggStats[date]; exists {
				return nil, nil, fmt.Errorf("duplicate entries found for aggregated stats dated on %s", date)
			}

			stats["sleepingSeconds"] = sleepingSeconds(sleepStats, date)
			aggStats[date] = stats
		}
	}

	log.Printf("Loaded %d days of aggregated stats", len(aggStats))
	return aggStats, hydrationStats, nil
}

// sleepingSeconds sums the four sleep phase durations recorded for a
// date. It returns nil when no sleep record exists or the phases sum to
// zero; the Connect API reports both as missing data.
func sleepingSeconds(sleepStats map[string]map[string]interface{}, date string) interface{} {
	stats, ok := sleepStats[date]
	if !ok {
		return nil
	}

	total := numberField(stats, "deepSleepSeconds") +
		numberField(stats, "lightSleepSeconds") +
		numberField(stats, "awakeSleepSeconds") +
		numberField(stats, "unmeasurableSeconds")
	if total <= 0 {
		return nil
	}
	return total
}

func numberField(m map[string]interface{}, key string) float64 {
	v, _ := m[key].(float64)
	return v
}
