package bulk

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sstent/garminbulk-go/internal/fitindex"
	"github.com/sstent/garminbulk-go/internal/garmin"
)

const dateLayout = "2006-01-02"

// defaultMatchTolerance is the maximum drift allowed between an activity
// summary start time and a recording's session start time for the two to
// be considered the same activity. The two data sources routinely differ
// by a few seconds.
const defaultMatchTolerance = 5 * time.Minute

// ErrNoActivities is returned by GetLastActivity when the export
// contained no activity summaries.
var ErrNoActivities = errors.New("no activities found in bulk export")

// Options tunes BulkExport construction.
type Options struct {
	// MatchTolerance overrides the recording match window. Zero keeps
	// the default of 5 minutes.
	MatchTolerance time.Duration
	// Decoder decodes recording files during indexing. Nil selects the
	// FIT decoder.
	Decoder fitindex.SessionDecoder
}

// BulkExport answers Garmin Connect API queries from a bulk data export
// directory. It implements the same garmin.Source interface as the live
// API client.
type BulkExport struct {
	path           string
	matchTolerance time.Duration

	allFiles       []string
	activities     []garmin.Activity
	sleepStats     map[string]map[string]interface{}
	aggStats       map[string]map[string]interface{}
	hydrationStats map[string]map[string]interface{}
	fitIndex       []fitindex.Entry
}

var _ garmin.Source = (*BulkExport)(nil)

// NewBulkExport reads the whole export under path into memory. All
// queries afterwards are served from the assembled structures; only
// DownloadActivity goes back to the archives. Construction is
// all-or-nothing: any missing mandatory family, duplicated daily record,
// or undecodable recording aborts it.
func NewBulkExport(path string, opts Options) (*BulkExport, error) {
	if opts.MatchTolerance <= 0 {
		opts.MatchTolerance = defaultMatchTolerance
	}
	if opts.Decoder == nil {
		opts.Decoder = fitindex.NewFITDecoder()
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("bulk export directory %s does not exist", path)
	}

	e := &BulkExport{
		path:           path,
		matchTolerance: opts.MatchTolerance,
	}

	if e.allFiles, err = listFiles(path); err != nil {
		return nil, err
	}

	if e.activities, err = loadActivities(filterFiles(e.allFiles, activityFilePattern)); err != nil {
		return nil, err
	}

	// Sleep stats must be merged before the aggregated stats, which
	// derive their sleepingSeconds from them.
	if e.sleepStats, err = mergeSleepStats(filterFiles(e.allFiles, sleepFilePattern)); err != nil {
		return nil, err
	}
	if e.aggStats, e.hydrationStats, err = mergeAggStats(filterFiles(e.allFiles, aggregateFilePattern), e.sleepStats); err != nil {
		return nil, err
	}

	if err = e.loadFitIndex(opts.Decoder); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *BulkExport) loadFitIndex(decoder fitindex.SessionDecoder) error {
	cachePath := filepath.Join(e.path, fitindex.CacheFileName)

	index, err := fitindex.Load(cachePath)
	if err != nil {
		return err
	}
	if len(index) == 0 {
		builder := fitindex.NewBuilder(decoder)
		if index, err = builder.Build(filterFiles(e.allFiles, archiveFilePattern)); err != nil {
			return err
		}
		if err = fitindex.Save(index, cachePath); err != nil {
			return err
		}
	}

	e.fitIndex = index
	return nil
}

// GetDeviceLastUsed mimics the Connect API's device endpoint, naming the
// local host as the device. No historical device data exists in a bulk
// export.
func (e *BulkExport) GetDeviceLastUsed() (*garmin.DeviceInfo, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	return &garmin.DeviceInfo{LastUsedDeviceName: hostname}, nil
}

// GetLastActivity returns the chronologically last activity.
func (e *BulkExport) GetLastActivity() (*garmin.Activity, error) {
	if len(e.activities) == 0 {
		return nil, ErrNoActivities
	}
	last := e.activities[len(e.activities)-1]
	return &last, nil
}

// GetStats returns the aggregated daily record for the date, or the
// no-wellness-data sentinel when the date is absent or the record
// declares it lacks wellness data.
func (e *BulkExport) GetStats(date string) (map[string]interface{}, error) {
	stats, ok := e.aggStats[date]
	if !ok || !includesWellnessData(stats) {
		return map[string]interface{}{"wellnessStartTimeGmt": nil}, nil
	}
	return stats, nil
}

func includesWellnessData(stats map[string]interface{}) bool {
	v, ok := stats["includesWellnessData"].(bool)
	if !ok {
		return true
	}
	return v
}

// GetSleepData returns the sleep record for the date wrapped in the
// container shape the Connect API uses.
func (e *BulkExport) GetSleepData(date string) (map[string]interface{}, error) {
	stats, ok := e.sleepStats[date]
	if !ok {
		return map[string]interface{}{
			"dailySleepDTO": map[string]interface{}{"sleepEndTimestampGMT": nil},
		}, nil
	}
	return map[string]interface{}{"dailySleepDTO": stats}, nil
}

// GetHydrationData returns the hydration record for the date, or an
// empty record.
func (e *BulkExport) GetHydrationData(date string) (map[string]interface{}, error) {
	stats, ok := e.hydrationStats[date]
	if !ok {
		return map[string]interface{}{}, nil
	}
	return stats, nil
}

// GetActivitiesByDate returns the activities whose start time falls in
// [startDate 00:00:00, endDate 23:59:59], inclusive on both ends.
func (e *BulkExport) GetActivitiesByDate(startDate, endDate string) ([]garmin.Activity, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	// The range covers the whole end day.
	end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var results []garmin.Activity
	for _, act := range e.activities {
		actStart, err := time.ParseInLocation(startTimeLayout, act.StartTimeGMT, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid start time on activity %d: %w", act.ActivityID, err)
		}
		if !actStart.Before(start) && !actStart.After(end) {
			results = append(results, act)
		}
	}
	return results, nil
}

// DownloadActivity returns the original recording for an activity as a
// fresh single-file zip archive. Alternate formats are not present in a
// bulk export and yield an empty payload.
func (e *BulkExport) DownloadActivity(activityID int64, format garmin.DownloadFormat) ([]byte, error) {
	if format != garmin.FormatOriginal {
		return []byte{}, nil
	}

	activity := e.findActivity(activityID)
	if activity == nil {
		return nil, fmt.Errorf("activity ID not found: %d", activityID)
	}
	activityStart, err := time.ParseInLocation(startTimeLayout, activity.StartTimeGMT, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid start time on activity %d: %w", activityID, err)
	}

	match, delta := matchEntry(e.fitIndex, activityStart, e.matchTolerance)
	if match == nil {
		return nil, fmt.Errorf("no matching FIT file found for activityId=%d (%s)",
			activityID, activityStart.Format(time.RFC3339))
	}

	log.Printf("Matched activityId=%d to FIT file %s (%s, delta=%ds)",
		activityID, match.FitFileName, match.ZipFileName, int(delta.Seconds()))

	return repackageEntry(match.ZipFileName, match.FitFileName)
}

func (e *BulkExport) findActivity(activityID int64) *garmin.Activity {
	for i := range e.activities {
		if e.activities[i].ActivityID == activityID {
			return &e.activities[i]
		}
	}
	return nil
}
