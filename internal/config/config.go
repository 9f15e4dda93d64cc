// Package config centralises runtime configuration for the importer.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures every runtime option. The data-source selector, date
// range, and match tolerance are explicit here rather than ambient state
// so the query facade can be constructed without globals.
type Config struct {
	DataSource            string // "bulk" reads an export directory, "api" a live service
	ExportRoot            string
	StartDate             string // YYYY-MM-DD, mandatory for an import run
	EndDate               string // YYYY-MM-DD, defaults to today
	IgnoreErrors          bool   // continue past per-day import failures
	MatchToleranceSeconds int    // recording match window for downloads
	DBPath                string
	APIBaseURL            string
	HTTPAddress           string
	CronSchedule          string // daemon-mode re-import schedule
}

// Load reads environment variables into Config, applying the defaults
// used by the docker setup.
func Load() Config {
	return Config{
		DataSource:            getEnv("DATA_SOURCE", "bulk"),
		ExportRoot:            getEnv("BULK_DATA_PATH", "/bulk_export"),
		StartDate:             getEnv("MANUAL_START_DATE", ""),
		EndDate:               getEnv("MANUAL_END_DATE", time.Now().UTC().Format("2006-01-02")),
		IgnoreErrors:          getBoolEnv("IGNORE_ERRORS", false),
		MatchToleranceSeconds: getIntEnv("FIT_MATCH_TOLERANCE_SECONDS", 300),
		DBPath:                getEnv("DB_PATH", "./data/garmin.db"),
		APIBaseURL:            getEnv("GARMIN_API_URL", "http://garmin-api:8081"),
		HTTPAddress:           getEnv("HTTP_ADDRESS", ":8888"),
		CronSchedule:          getEnv("IMPORT_CRON", "@hourly"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
