// internal/database/sqlite.go
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// SQLiteWriter stores health points in a local SQLite database. Tags and
// fields are kept as JSON columns; the Grafana dashboards query them
// through the JSON1 functions.
type SQLiteWriter struct {
	db *sql.DB
}

var _ Writer = (*SQLiteWriter)(nil)

func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	w := &SQLiteWriter{db: db}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

func (w *SQLiteWriter) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS health_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		measurement TEXT NOT NULL,
		time DATETIME NOT NULL,
		tags TEXT NOT NULL,
		fields TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_health_points_measurement ON health_points(measurement);
	CREATE INDEX IF NOT EXISTS idx_health_points_time ON health_points(time);
	`

	_, err := w.db.Exec(schema)
	return err
}

// WritePoints persists the batch transactionally; either every point
// lands or none do.
func (w *SQLiteWriter) WritePoints(points []Point) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
	INSERT INTO health_points (measurement, time, tags, fields)
	VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		fields, err := json.Marshal(p.Fields)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode fields: %w", err)
		}

		_, err = stmt.Exec(p.Measurement, p.Time.UTC().Format(timeLayout), string(tags), string(fields))
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetPoints returns all stored points for a measurement, oldest first.
func (w *SQLiteWriter) GetPoints(measurement string) ([]Point, error) {
	query := `
	SELECT measurement, time, tags, fields
	FROM health_points
	WHERE measurement = ?
	ORDER BY time ASC`

	rows, err := w.db.Query(query, measurement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		var ts, tags, fields string

		if err := rows.Scan(&p.Measurement, &ts, &tags, &fields); err != nil {
			return nil, err
		}

		if p.Time, err = time.ParseInLocation(timeLayout, ts, time.UTC); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fields), &p.Fields); err != nil {
			return nil, err
		}

		points = append(points, p)
	}

	return points, rows.Err()
}

// CountPoints reports how many points are stored for a measurement.
func (w *SQLiteWriter) CountPoints(measurement string) (int, error) {
	var count int
	err := w.db.QueryRow(`SELECT COUNT(*) FROM health_points WHERE measurement = ?`, measurement).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
