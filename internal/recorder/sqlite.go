package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"LevelSentinel/internal/model"
)

// SQLiteRecorder persists level history to a SQLite database.
type SQLiteRecorder struct {
	db    *sql.DB
	mu    sync.Mutex
	runID string
	last  map[string]model.Level
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
// Every row written by this recorder carries the same fresh run id.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, runID: uuid.NewString(), last: make(map[string]model.Level)}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithFields(log.Fields{"path": dbPath, "run_id": r.runID}).Info("sqlite recorder opened")
	return r, nil
}

// RunID identifies the rows written by this process.
func (r *SQLiteRecorder) RunID() string { return r.runID }

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS level_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			bar_index    INTEGER NOT NULL,
			tag          TEXT NOT NULL,
			label        TEXT,
			price        REAL,
			anchor_index INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_level_tag_ts ON level_history(tag, timestamp)`,

		`CREATE TABLE IF NOT EXISTS session_closes (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			session      TEXT NOT NULL,
			tag          TEXT NOT NULL,
			open         REAL,
			high         REAL,
			low          REAL,
			anchor_index INTEGER,
			closed_index INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_ts ON session_closes(session, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordLevels(bar model.Bar, levels []model.Level) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := changes(r.last, bar, levels)
	if len(pending) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO level_history
		(run_id, timestamp, bar_index, tag, label, price, anchor_index)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range pending {
		if _, err := stmt.Exec(r.runID, c.BarTime.Unix(), c.BarIndex,
			c.Level.Tag, c.Level.Label, c.Level.Price, c.Level.AnchorIndex); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("insert level %s: %w", c.Level.Tag, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	for _, c := range pending {
		r.last[c.Level.Tag] = c.Level
	}
	return len(pending), nil
}

func (r *SQLiteRecorder) RecordSessionClose(snap model.SessionSnapshot, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO session_closes
		(run_id, timestamp, session, tag, open, high, low, anchor_index, closed_index)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		r.runID, closedAt.Unix(), snap.Session, snap.Tag,
		snap.Open, snap.High, snap.Low, snap.AnchorIndex, snap.ClosedIndex,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
