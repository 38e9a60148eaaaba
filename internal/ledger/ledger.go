// Package ledger provides an append-only journal of level transitions.
// It is write-mostly: nothing reads it back to restore state at startup.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sweeney/light-bridge/internal/logic"
)

// Entry is one journaled transition.
type Entry struct {
	ID        int64
	Session   string
	Timestamp time.Time
	Source    logic.Source
	Kind      logic.Kind
	From      logic.Level
	To        logic.Level
}

// Ledger appends transitions to a SQLite database.
type Ledger struct {
	db      *sql.DB
	session string
}

// Open opens (or creates) the journal at path and starts a new session.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Ledger{db: db, session: uuid.NewString()}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			source TEXT NOT NULL,
			kind TEXT NOT NULL,
			from_level INTEGER NOT NULL,
			to_level INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_session ON transitions(session, id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create transitions table: %w", err)
	}
	return nil
}

// Session returns the identifier stamped on every entry written by this process.
func (l *Ledger) Session() string {
	return l.session
}

// Record appends t under the current session.
func (l *Ledger) Record(t logic.Transition) error {
	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := l.db.Exec(
		`INSERT INTO transitions (session, timestamp, source, kind, from_level, to_level) VALUES (?, ?, ?, ?, ?, ?)`,
		l.session, ts.UTC().UnixMilli(), string(t.Source), string(t.Kind), int(t.From), int(t.To),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", t.Kind, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first, across all sessions.
func (l *Ledger) Recent(limit int) ([]Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, session, timestamp, source, kind, from_level, to_level
		FROM transitions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			ms       int64
			source   string
			kind     string
			from, to int
		)
		if err := rows.Scan(&e.ID, &e.Session, &ms, &source, &kind, &from, &to); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.Timestamp = time.UnixMilli(ms).UTC()
		e.Source = logic.Source(source)
		e.Kind = logic.Kind(kind)
		e.From = logic.Level(from)
		e.To = logic.Level(to)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
