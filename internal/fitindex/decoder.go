package fitindex

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tormoder/fit"
)

// ErrNoSession is returned by a SessionDecoder when a recording carries
// no session summary. Monitoring files and other non-activity telemetry
// fall in this bucket and are skipped during indexing.
var ErrNoSession = errors.New("no session found in recording")

// SessionSummary is the subset of a recording's file_id and session data
// that the indexer and importer consume.
type SessionSummary struct {
	StartTime        time.Time // UTC
	Sport            string
	TotalElapsedTime float64 // seconds
	TotalTimerTime   float64 // seconds
	TotalDistance    float64 // meters
	AvgSpeed         float64 // m/s
	MaxSpeed         float64 // m/s
	TotalCalories    int
	AvgHeartRate     int
	MaxHeartRate     int
	NumLaps          int
	SerialNumber     uint32
	ProductName      string
	TimeCreated      time.Time
}

// SessionDecoder extracts the session summary from a raw recording.
// Malformed input must produce an error; input that decodes but holds no
// session must produce ErrNoSession.
type SessionDecoder interface {
	DecodeSession(r io.Reader) (*SessionSummary, error)
}

// FITDecoder decodes Garmin FIT recordings.
type FITDecoder struct{}

func NewFITDecoder() *FITDecoder {
	return &FITDecoder{}
}

func (d *FITDecoder) DecodeSession(r io.Reader) (*SessionSummary, error) {
	fitFile, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FIT file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		// Not an activity recording (monitoring, settings, ...).
		return nil, ErrNoSession
	}
	if len(activity.Sessions) == 0 {
		return nil, ErrNoSession
	}

	session := activity.Sessions[0]
	summary := &SessionSummary{
		StartTime:        session.StartTime.UTC(),
		Sport:            session.Sport.String(),
		TotalElapsedTime: session.GetTotalElapsedTimeScaled(),
		TotalTimerTime:   session.GetTotalTimerTimeScaled(),
		TotalDistance:    session.GetTotalDistanceScaled(),
		AvgSpeed:         session.GetAvgSpeedScaled(),
		MaxSpeed:         session.GetMaxSpeedScaled(),
		TotalCalories:    int(session.TotalCalories),
		AvgHeartRate:     int(session.AvgHeartRate),
		MaxHeartRate:     int(session.MaxHeartRate),
		NumLaps:          int(session.NumLaps),
		SerialNumber:     fitFile.FileId.SerialNumber,
		ProductName:      fmt.Sprint(fitFile.FileId.GetProduct()),
		TimeCreated:      fitFile.FileId.TimeCreated.UTC(),
	}
	if session.Sport == fit.SportInvalid {
		summary.Sport = "Unknown"
	}

	return summary, nil
}
