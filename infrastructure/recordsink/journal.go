package recordsink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mruput.io/application/services/verification"
	"mruput.io/entities"
)

// Journal is a local sqlite record sink for replays and offline kiosks.
type Journal struct {
	db *sql.DB
}

func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS attendance_records (
		attempt_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason_code TEXT NOT NULL,
		decided_at TEXT NOT NULL,
		body TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, record *verification.Record) error {
	entity := ToEntity(record, nil)
	body, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO attendance_records (attempt_id, user_id, outcome, reason_code, decided_at, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entity.AttemptID, entity.UserID, entity.Outcome, entity.ReasonCode,
		entity.DecidedAt.UTC().Format(time.RFC3339Nano), string(body))
	if err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// List returns a user's journaled records, newest first.
func (j *Journal) List(ctx context.Context, userID string) ([]entities.AttendanceRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT body FROM attendance_records WHERE user_id = ? ORDER BY decided_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []entities.AttendanceRecord{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var record entities.AttendanceRecord
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
