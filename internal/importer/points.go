package importer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sstent/garminbulk-go/internal/database"
	"github.com/sstent/garminbulk-go/internal/garmin"
)

// Point builders translating source records into writer points. The
// measurement names and tag layout match what the dashboards query.

// dailyStatsPoint builds the DailyStats point for one day, or nil when
// the source returned the no-wellness-data sentinel.
func dailyStatsPoint(date string, stats map[string]interface{}) *database.Point {
	if _, ok := stats["calendarDate"]; !ok {
		return nil
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil
	}

	return &database.Point{
		Measurement: "DailyStats",
		Time:        day,
		Tags:        map[string]string{"Date": date},
		Fields:      scalarFields(stats),
	}
}

// sleepPoint builds the SleepSummary point from the dailySleepDTO
// container, or nil for the no-data sentinel.
func sleepPoint(date string, data map[string]interface{}) *database.Point {
	dto, _ := data["dailySleepDTO"].(map[string]interface{})
	if dto == nil || dto["sleepEndTimestampGMT"] == nil {
		return nil
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil
	}

	return &database.Point{
		Measurement: "SleepSummary",
		Time:        day,
		Tags:        map[string]string{"Date": date},
		Fields:      scalarFields(dto),
	}
}

// hydrationPoint builds the HydrationData point, or nil when the source
// returned an empty record.
func hydrationPoint(date string, data map[string]interface{}) *database.Point {
	if len(data) == 0 {
		return nil
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil
	}

	return &database.Point{
		Measurement: "HydrationData",
		Time:        day,
		Tags:        map[string]string{"Date": date},
		Fields:      scalarFields(data),
	}
}

func activityPoint(act garmin.Activity) (*database.Point, error) {
	start, err := time.ParseInLocation(startTimeLayout, act.StartTimeGMT, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid start time on activity %d: %w", act.ActivityID, err)
	}
	typeKey, _ := act.ActivityType["typeKey"].(string)

	return &database.Point{
		Measurement: "ActivitySummary",
		Time:        start,
		Tags: map[string]string{
			"ActivityID":       strconv.FormatInt(act.ActivityID, 10),
			"ActivitySelector": activitySelector(start, typeKey),
		},
		Fields: map[string]interface{}{
			"activityName":    act.ActivityName,
			"activityType":    typeKey,
			"distance":        act.Distance,
			"elapsedDuration": act.Duration,
			"averageSpeed":    act.AverageSpeed,
			"maxSpeed":        act.MaxSpeed,
			"averageHR":       act.AverageHR,
			"maxHR":           act.MaxHR,
			"calories":        act.Calories,
			"lapCount":        act.LapCount,
		},
	}, nil
}

func activitySelector(start time.Time, activityType string) string {
	return start.Format("20060102T150405") + "UTC-" + activityType
}

// scalarFields keeps the scalar values of a record; nested structures
// are not representable as point fields.
func scalarFields(record map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(record))
	for k, v := range record {
		switch v.(type) {
		case string, float64, int64, int, bool:
			fields[k] = v
		}
	}
	return fields
}
