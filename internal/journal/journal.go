// Package journal keeps a local SQLite record of every change the console
// made and the server confirmed. It is informational only: nothing is
// replayed from it.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trustdesk-cli/internal/listing"

	_ "modernc.org/sqlite"
)

const FileName = "journal.sqlite"

type Entry struct {
	ID       string         `json:"id"`
	Profile  string         `json:"profile"`
	Entity   string         `json:"entity"`
	Action   listing.Action `json:"action"`
	RecordID int64          `json:"recordId"`
	At       time.Time      `json:"at"`
}

type Journal struct {
	db      *sql.DB
	profile string
	log     *slog.Logger
}

// Open opens (and migrates) the journal at path. Entries appended through
// this handle are tagged with profile.
func Open(ctx context.Context, path, profile string, log *slog.Logger) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL: the CLI and the console may write at the same time.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Journal{db: db, profile: profile, log: log}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mutations (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			entity TEXT NOT NULL,
			action TEXT NOT NULL,
			record_id INTEGER NOT NULL,
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mutations_record ON mutations(entity, record_id, at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_mutations_at ON mutations(at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("journal: migrate: %w", err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Profile == "" {
		e.Profile = j.profile
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO mutations(id, profile, entity, action, record_id, at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		e.ID, e.Profile, e.Entity, string(e.Action), e.RecordID, e.At.UnixMilli(),
	)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// ObserveMutation records a confirmed mutation. Failures are logged and
// never surface to the screen that made the change.
func (j *Journal) ObserveMutation(ev listing.MutationEvent) {
	if j == nil {
		return
	}
	_, err := j.Append(context.Background(), Entry{
		Entity:   ev.Entity,
		Action:   ev.Action,
		RecordID: ev.RecordID,
		At:       ev.At,
	})
	if err != nil {
		j.log.Warn("journal append failed", "entity", ev.Entity, "action", ev.Action, "record_id", ev.RecordID, "error", err)
	}
}

// Query filters journal reads. Zero fields match everything.
type Query struct {
	Entity   string
	RecordID int64
	Limit    int
}

// List returns matching entries, newest first.
func (j *Journal) List(ctx context.Context, q Query) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if q.Entity != "" {
		where = append(where, "entity = ?")
		args = append(args, q.Entity)
	}
	if q.RecordID != 0 {
		where = append(where, "record_id = ?")
		args = append(args, q.RecordID)
	}
	stmt := `SELECT id, profile, entity, action, record_id, at_unixms FROM mutations`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY at_unixms DESC, rowid DESC"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e      Entry
			action string
			atMS   int64
		)
		if err := rows.Scan(&e.ID, &e.Profile, &e.Entity, &action, &e.RecordID, &atMS); err != nil {
			return nil, err
		}
		e.Action = listing.Action(action)
		e.At = time.UnixMilli(atMS).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Tail(ctx context.Context, n int) ([]Entry, error) {
	return j.List(ctx, Query{Limit: n})
}

func (j *Journal) ForRecord(ctx context.Context, entity string, id int64) ([]Entry, error) {
	return j.List(ctx, Query{Entity: entity, RecordID: id})
}
