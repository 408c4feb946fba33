// Package sqlite implements the repository contracts on SQLite.
//
// The handle must be opened with _txlock=immediate (see
// database.OpenSQLite) so read-write transactions start with
// BEGIN IMMEDIATE and take the database write lock before the first read.
// Read-only transactions use a plain BEGIN.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists events and registrations in SQLite.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTxTimeout bounds transactions whose context has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.txTimeout = d
	}
}

// New constructs a Store on an open, migrated handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, txTimeout: repository.DefaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InTx runs fn inside a transaction. Contenders for the write lock wait up
// to the handle's busy_timeout and then fail with SQLITE_BUSY.
func (s *Store) InTx(ctx context.Context, mode repository.TxMode, fn func(q repository.Queries) error) error {
	ctx, cancel := repository.WithTxTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: mode == repository.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", mode, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&txQueries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txQueries struct {
	q querier
}

func (t *txQueries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(t.q.QueryRowContext(ctx,
		`SELECT id, title, date, location, description, capacity, status, created_at, updated_at
		   FROM events WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (t *txQueries) UpdateEvent(ctx context.Context, e *model.Event) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE events
		    SET title = ?, date = ?, location = ?, description = ?,
		        capacity = ?, status = ?, updated_at = ?
		  WHERE id = ?`,
		e.Title, e.Date, e.Location, e.Description,
		e.Capacity, string(e.Status), toMillis(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(res)
}

func (t *txQueries) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE events SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	return requireAffected(res)
}

func (t *txQueries) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var n int
	err := t.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ?`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (t *txQueries) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO registrations (id, event_id, student_id, student_name, registered_at)
		 VALUES (?, ?, ?, ?, ?)`,
		reg.ID, reg.EventID, reg.StudentID, reg.StudentName, toMillis(reg.RegisteredAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (t *txQueries) DeleteRegistration(ctx context.Context, eventID, studentID string) (bool, error) {
	res, err := t.q.ExecContext(ctx,
		`DELETE FROM registrations WHERE event_id = ? AND student_id = ?`,
		eventID, studentID,
	)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner, extra ...any) (*model.Event, error) {
	var (
		e         model.Event
		status    string
		createdAt int64
		updatedAt int64
	)
	dest := append([]any{
		&e.ID, &e.Title, &e.Date, &e.Location, &e.Description,
		&e.Capacity, &status, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.Status = model.EventStatus(status)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return &e, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

var _ repository.Store = (*Store)(nil)
