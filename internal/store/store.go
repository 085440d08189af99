// Package store provides SQLite-backed history of finished drills.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// RunRecord summarizes one drill.
type RunRecord struct {
	ID         string    `db:"id" json:"id"`
	Building   string    `db:"building" json:"building"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	Seed       int64     `db:"seed" json:"seed"`
	ExitTarget string    `db:"exit_target" json:"exit_target"`
	Ticks      int       `db:"ticks" json:"ticks"`
	Elapsed    float64   `db:"elapsed" json:"elapsed"`
	Agents     int       `db:"agents" json:"agents"`
	Evacuated  int       `db:"evacuated" json:"evacuated"`
	NoExit     int       `db:"no_exit" json:"no_exit"`
	Fallbacks  int       `db:"fallbacks" json:"fallbacks"`
}

type agentRow struct {
	RunID          string  `db:"run_id"`
	AgentID        string  `db:"agent_id"`
	ProfileID      string  `db:"profile_id"`
	LevelIndex     int     `db:"level_index"`
	Evacuated      bool    `db:"evacuated"`
	EvacuationTime float64 `db:"evacuation_time"`
	Distance       float64 `db:"distance"`
}

// DB wraps a SQLite connection holding drill history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		building TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		seed INTEGER NOT NULL,
		exit_target TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		elapsed REAL NOT NULL,
		agents INTEGER NOT NULL,
		evacuated INTEGER NOT NULL,
		no_exit INTEGER NOT NULL,
		fallbacks INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_results (
		run_id TEXT NOT NULL REFERENCES runs(id),
		agent_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		level_index INTEGER NOT NULL,
		evacuated INTEGER NOT NULL,
		evacuation_time REAL NOT NULL,
		distance REAL NOT NULL,
		PRIMARY KEY (run_id, agent_id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_recorded ON runs(recorded_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a run and its agent results in one transaction. An empty
// run ID gets a fresh UUID and a zero RecordedAt gets the current time. The
// stored ID is returned.
func (db *DB) SaveRun(run RunRecord, results []sim.AgentResult) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now().UTC()
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`INSERT INTO runs
		(id, building, recorded_at, seed, exit_target, ticks, elapsed, agents, evacuated, no_exit, fallbacks)
		VALUES (:id, :building, :recorded_at, :seed, :exit_target, :ticks, :elapsed, :agents, :evacuated, :no_exit, :fallbacks)`,
		run); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO agent_results
		(run_id, agent_id, profile_id, level_index, evacuated, evacuation_time, distance)
		VALUES (:run_id, :agent_id, :profile_id, :level_index, :evacuated, :evacuation_time, :distance)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, r := range results {
		row := agentRow{
			RunID:          run.ID,
			AgentID:        r.AgentID,
			ProfileID:      r.ProfileID,
			LevelIndex:     r.LevelIndex,
			Evacuated:      r.Evacuated,
			EvacuationTime: r.EvacuationTime,
			Distance:       r.Distance,
		}
		if _, err := stmt.Exec(row); err != nil {
			return "", fmt.Errorf("insert agent %s: %w", r.AgentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// GetRun returns the run with the given id.
func (db *DB) GetRun(id string) (RunRecord, error) {
	var run RunRecord
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var runs []RunRecord
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY recorded_at DESC, id LIMIT ?",
		limit,
	)
	return runs, err
}

// AgentResults returns the stored agent outcomes of a run in agent id order.
func (db *DB) AgentResults(runID string) ([]sim.AgentResult, error) {
	var rows []agentRow
	if err := db.conn.Select(&rows,
		"SELECT * FROM agent_results WHERE run_id = ? ORDER BY agent_id",
		runID,
	); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if _, err := db.GetRun(runID); err != nil {
			return nil, err
		}
	}
	out := make([]sim.AgentResult, len(rows))
	for i, r := range rows {
		out[i] = sim.AgentResult{
			AgentID:        r.AgentID,
			ProfileID:      r.ProfileID,
			LevelIndex:     r.LevelIndex,
			Evacuated:      r.Evacuated,
			EvacuationTime: r.EvacuationTime,
			Distance:       r.Distance,
		}
	}
	return out, nil
}
