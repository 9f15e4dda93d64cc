// Package importer drives a full import run: for every day in the
// configured range it reads stats, sleep, and hydration from a
// garmin.Source, sweeps the range once for activities, and writes
// everything through a database.Writer.
package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sstent/garminbulk-go/internal/database"
	"github.com/sstent/garminbulk-go/internal/garmin"
)

const (
	dateLayout      = "2006-01-02"
	startTimeLayout = "2006-01-02 15:04:05"
)

type Importer struct {
	source       garmin.Source
	writer       database.Writer
	ignoreErrors bool
}

// New creates an Importer. With ignoreErrors set, a failed day is logged
// and skipped instead of aborting the run.
func New(source garmin.Source, writer database.Writer, ignoreErrors bool) *Importer {
	return &Importer{
		source:       source,
		writer:       writer,
		ignoreErrors: ignoreErrors,
	}
}

// Run imports the inclusive date range.
func (im *Importer) Run(ctx context.Context, startDate, endDate string) error {
	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}

	began := time.Now()
	log.Printf("Starting import for %s to %s", startDate, endDate)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		date := day.Format(dateLayout)
		if err := im.importDay(date); err != nil {
			if !im.ignoreErrors {
				return fmt.Errorf("import failed for %s: %w", date, err)
			}
			log.Printf("Ignoring import error for %s: %v", date, err)
		}
	}

	if err := im.importActivities(startDate, endDate); err != nil {
		if !im.ignoreErrors {
			return err
		}
		log.Printf("Ignoring activity import error: %v", err)
	}

	log.Printf("Import completed in %s", time.Since(began))
	return nil
}

func (im *Importer) importDay(date string) error {
	var points []database.Point

	stats, err := im.source.GetStats(date)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	if p := dailyStatsPoint(date, stats); p != nil {
		points = append(points, *p)
	}

	sleep, err := im.source.GetSleepData(date)
	if err != nil {
		return fmt.Errorf("failed to get sleep data: %w", err)
	}
	if p := sleepPoint(date, sleep); p != nil {
		points = append(points, *p)
	}

	hydration, err := im.source.GetHydrationData(date)
	if err != nil {
		return fmt.Errorf("failed to get hydration data: %w", err)
	}
	if p := hydrationPoint(date, hydration); p != nil {
		points = append(points, *p)
	}

	if len(points) == 0 {
		log.Printf("No data for %s", date)
		return nil
	}
	return im.writer.WritePoints(points)
}

func (im *Importer) importActivities(startDate, endDate string) error {
	activities, err := im.source.GetActivitiesByDate(startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to get activities: %w", err)
	}
	if len(activities) == 0 {
		return nil
	}

	points := make([]database.Point, 0, len(activities))
	for _, act := range activities {
		p, err := activityPoint(act)
		if err != nil {
			return err
		}
		points = append(points, *p)
	}

	log.Printf("Importing %d activities", len(points))
	return im.writer.WritePoints(points)
}
