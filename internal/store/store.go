package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"daygrid/internal/board"
	"daygrid/internal/drag"
	"daygrid/internal/model"

	_ "modernc.org/sqlite"
)

const dbFileName = "daygrid.sqlite"

var ErrNotFound = errors.New("task not found")

// Store persists tasks in a local sqlite file and implements the engine's
// Persister contract. The persisted fields (order key, date, category, state)
// round-trip unchanged; a NULL date marks a graveyard resident.
type Store struct {
	db *sql.DB
}

// DefaultDir resolves the store directory: DAYGRID_DIR, else ~/.daygrid.
func DefaultDir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("DAYGRID_DIR")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".daygrid"), nil
}

func Open(ctx context.Context, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database
	// is locked" flakiness when the TUI and CLI race.
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
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			date TEXT,
			category TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT 'active',
			sort_key TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewTaskID returns task-<suffix> where suffix is 8 chars of lowercase
// base32 (~40 bits).
func NewTaskID() (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return "task-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}

func (s *Store) AddTask(ctx context.Context, t model.Task) error {
	var date any
	if strings.TrimSpace(t.Date) != "" {
		date = t.Date
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, text, date, category, state, sort_key, completed, created_at_unixms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Text, date, string(t.Category), string(t.EffectiveState()),
		t.Order, boolToInt(t.Completed), t.CreatedAt.UnixMilli())
	return err
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, date, category, state, sort_key, completed, created_at_unixms
		 FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Load reads the whole board: tasks grouped by date plus the graveyard,
// newest burials first.
func (s *Store) Load(ctx context.Context) (*board.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, date, category, state, sort_key, completed, created_at_unixms
		 FROM tasks ORDER BY created_at_unixms ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := board.NewSnapshot()
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		snap.Insert(t)
	}
	return snap, rows.Err()
}

// PersistReorder writes the new order key and only the identity fields that
// changed; the rest stay as stored.
func (s *Store) PersistReorder(ctx context.Context, taskID, newKey string, changed drag.ChangedFields) error {
	set := []string{"sort_key = ?"}
	args := []any{newKey}
	if changed.Date != nil {
		set = append(set, "date = ?")
		args = append(args, *changed.Date)
	}
	if changed.Category != nil {
		set = append(set, "category = ?")
		args = append(args, string(*changed.Category))
	}
	if changed.State != nil {
		set = append(set, "state = ?", "completed = ?")
		args = append(args, string(*changed.State), boolToInt(*changed.State == model.StateCompleted))
	}
	args = append(args, taskID)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tasks SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PersistGraveyardTransfer clears the task's date, moving it into the
// graveyard. The origin date is recorded nowhere beyond the caller; it exists
// so a server-side implementation can validate the move.
func (s *Store) PersistGraveyardTransfer(ctx context.Context, taskID, originDate string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET date = NULL WHERE id = ? AND (date = ? OR date IS NULL)`,
		taskID, originDate)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PersistResurrection puts a buried task back on a day as active, with the
// tail order key the coordinator assigned for the landing container.
func (s *Store) PersistResurrection(ctx context.Context, taskID, targetDate, newKey string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET date = ?, state = ?, completed = 0, sort_key = ? WHERE id = ?`,
		targetDate, string(model.StateActive), newKey, taskID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	var date sql.NullString
	var completed int
	var createdMS int64
	var category, state string
	if err := r.Scan(&t.ID, &t.Text, &date, &category, &state, &t.Order, &completed, &createdMS); err != nil {
		return model.Task{}, err
	}
	if date.Valid {
		t.Date = date.String
	}
	t.Category = model.Category(category)
	t.State = model.TaskState(state)
	t.Completed = completed != 0
	t.CreatedAt = time.UnixMilli(createdMS).UTC()
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
