// internal/database/models.go
package database

import (
	"time"
)

// Point is a single time-series record handed to a Writer: one
// measurement at one instant, with indexed tags and free-form fields.
type Point struct {
	Measurement string                 `json:"measurement"`
	Time        time.Time              `json:"time"`
	Tags        map[string]string      `json:"tags"`
	Fields      map[string]interface{} `json:"fields"`
}

// Writer persists health points. Failure handling is the writer's
// concern; the importer only decides whether to continue past a failed
// day.
type Writer interface {
	WritePoints(points []Point) error
	Close() error
}
