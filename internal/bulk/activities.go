package bulk

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/sstent/garminbulk-go/internal/garmin"
)

// startTimeLayout is the wall-clock format the Connect API uses for
// activity start times. Sub-second precision is discarded, which is why
// recording matching needs a tolerance window.
const startTimeLayout = "2006-01-02 15:04:05"

// rawActivitySummary is the export-file shape of one activity, before
// normalization into the API shape.
type rawActivitySummary struct {
	ActivityID   int64   `json:"activityId"`
	Name         string  `json:"name"`
	ActivityType string  `json:"activityType"`
	StartTimeGmt int64   `json:"startTimeGmt"` // epoch milliseconds
	Distance     float64 `json:"distance"`
	Duration     float64 `json:"duration"`
	AvgSpeed     float64 `json:"avgSpeed"`
	MaxSpeed     float64 `json:"maxSpeed"`
	AvgHr        float64 `json:"avgHr"`
	MaxHr        float64 `json:"maxHr"`
	Calories     float64 `json:"calories"`
	LapCount     int     `json:"lapCount"`
}

type activityExportBatch struct {
	SummarizedActivitiesExport []rawActivitySummary `json:"summarizedActivitiesExport"`
}

// loadActivities flattens every summarizedActivities export file into a
// single list of API-shaped activities, sorted ascending by start time.
// Activity files are optional in a bulk export; no files means no
// activities, not an error.
func loadActivities(paths []string) ([]garmin.Activity, error) {
	var activities []garmin.Activity
	for _, p := range paths {
		var batches []activityExportBatch
		if err := decodeJSONFile(p, &batches); err != nil {
			return nil, fmt.Errorf("failed to parse activity summary file %s: %w", p, err)
		}
		for _, batch := range batches {
			for _, raw := range batch.SummarizedActivitiesExport {
				activities = append(activities, normalizeActivity(raw))
			}
		}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].StartTimeGMT < activities[j].StartTimeGMT
	})

	log.Printf("Loaded %d activities", len(activities))
	return activities, nil
}

// normalizeActivity converts the export field names and timestamp format
// into the shape the Connect API reports.
func normalizeActivity(raw rawActivitySummary) garmin.Activity {
	name := raw.Name
	if name == "" {
		name = raw.ActivityType
	}

	return garmin.Activity{
		ActivityID:   raw.ActivityID,
		ActivityName: name,
		StartTimeGMT: time.UnixMilli(raw.StartTimeGmt).UTC().Format(startTimeLayout),
		ActivityType: map[string]interface{}{"typeKey": raw.ActivityType},
		Distance:     raw.Distance,
		Duration:     raw.Duration,
		AverageSpeed: raw.AvgSpeed,
		MaxSpeed:     raw.MaxSpeed,
		AverageHR:    raw.AvgHr,
		MaxHR:        raw.MaxHr,
		Calories:     raw.Calories,
		LapCount:     raw.LapCount,
	}
}
