package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/hivemind/hive"
)

// SQLiteMissionStore persists missions in a SQLite database. The step list
// is stored as a JSON column: missions are append-only records read back
// whole, so relational decomposition of steps buys nothing.
type SQLiteMissionStore struct {
	db *sql.DB
}

// NewSQLiteMissionStore opens/creates the database at dbPath.
func NewSQLiteMissionStore(dbPath string) (*SQLiteMissionStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteMissionStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteMissionStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS missions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		goal TEXT NOT NULL,
		status TEXT NOT NULL,
		steps TEXT NOT NULL,
		total_steps INTEGER,
		successful_steps INTEGER,
		failed_steps INTEGER,
		created_at TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteMissionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts the mission and assigns it the generated row id.
func (s *SQLiteMissionStore) Append(ctx context.Context, mission *hive.Mission) (int64, error) {
	if mission == nil {
		return 0, errors.New("nil mission")
	}
	steps, err := json.Marshal(mission.Steps)
	if err != nil {
		return 0, err
	}
	result := mission.Result
	if result == nil {
		result = mission.Tally()
	}
	mission.Timestamp = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO missions (goal, status, steps, total_steps, successful_steps, failed_steps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mission.Goal, string(mission.Status), string(steps),
		result.TotalSteps, result.SuccessfulSteps, result.FailedSteps,
		mission.Timestamp,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	mission.ID = id
	return id, nil
}

// History returns the most recent missions in chronological order.
func (s *SQLiteMissionStore) History(ctx context.Context, limit int) ([]hive.Mission, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal, status, steps, total_steps, successful_steps, failed_steps, created_at
		FROM missions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []hive.Mission
	for rows.Next() {
		var m hive.Mission
		var steps string
		var result hive.MissionResult
		if err := rows.Scan(&m.ID, &m.Goal, &m.Status, &steps,
			&result.TotalSteps, &result.SuccessfulSteps, &result.FailedSteps, &m.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(steps), &m.Steps); err != nil {
			return nil, err
		}
		m.Result = &result
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Rows came back newest-first; flip to chronological order.
	for i, j := 0, len(missions)-1; i < j; i, j = i+1, j-1 {
		missions[i], missions[j] = missions[j], missions[i]
	}
	return missions, nil
}
