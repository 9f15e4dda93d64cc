package importer

import (
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sstent/garminbulk-go/internal/database"
	"github.com/sstent/garminbulk-go/internal/fitindex"
)

// fitActivityID derives a stable activity id from the recording's file
// metadata, so re-importing the same file lands on the same series.
func fitActivityID(summary *fitindex.SessionSummary) int64 {
	canonical := fmt.Sprintf("product=%s,serial=%d,time_created=%s",
		summary.ProductName, summary.SerialNumber,
		summary.TimeCreated.UTC().Format(time.RFC3339))
	sum := md5.Sum([]byte(canonical))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// FitSummaryPoints builds the ActivitySummary start point and its END
// marker from one decoded recording. The END marker closes the activity
// interval on the dashboards.
func FitSummaryPoints(summary *fitindex.SessionSummary) (database.Point, database.Point) {
	id := fitActivityID(summary)

	device := summary.ProductName
	if device == "" {
		device = "Garmin"
	}
	tags := map[string]string{
		"Device":           device,
		"ActivityID":       strconv.FormatInt(id, 10),
		"ActivitySelector": activitySelector(summary.StartTime, summary.Sport),
	}

	start := database.Point{
		Measurement: "ActivitySummary",
		Time:        summary.StartTime,
		Tags:        tags,
		Fields: map[string]interface{}{
			"Device_ID":       int64(summary.SerialNumber),
			"activityType":    summary.Sport,
			"activityName":    fmt.Sprintf("%s %s", capitalize(summary.Sport), summary.StartTime.Format(dateLayout)),
			"distance":        summary.TotalDistance,
			"elapsedDuration": summary.TotalElapsedTime,
			"movingDuration":  summary.TotalTimerTime,
			"averageSpeed":    summary.AvgSpeed,
			"maxSpeed":        summary.MaxSpeed,
			"calories":        summary.TotalCalories,
			"averageHR":       summary.AvgHeartRate,
			"maxHR":           summary.MaxHeartRate,
			"lapCount":        summary.NumLaps,
		},
	}

	end := database.Point{
		Measurement: "ActivitySummary",
		Time:        summary.StartTime.Add(time.Duration(summary.TotalElapsedTime) * time.Second),
		Tags:        tags,
		Fields: map[string]interface{}{
			"Device_ID":    int64(summary.SerialNumber),
			"ActivityID":   id,
			"activityName": "END",
			"activityType": "No Activity",
		},
	}

	return start, end
}

// ImportFitFile decodes a single recording file and writes its summary
// points. This is the standalone import mode for recordings obtained
// outside a bulk export.
func ImportFitFile(path string, decoder fitindex.SessionDecoder, writer database.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	summary, err := decoder.DecodeSession(f)
	if err != nil {
		if errors.Is(err, fitindex.ErrNoSession) {
			return fmt.Errorf("%s contains no activity session", path)
		}
		return err
	}

	start, end := FitSummaryPoints(summary)
	log.Printf("Parsed activity %s from %s", start.Tags["ActivitySelector"], path)

	return writer.WritePoints([]database.Point{start, end})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
