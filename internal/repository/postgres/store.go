// Package postgres implements the repository contracts on PostgreSQL using
// pgx directly.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists events and registrations in PostgreSQL.
type Store struct {
	db        *pgxpool.Pool
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

// New constructs a Store on an existing pool.
func New(db *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{db: db, txTimeout: repository.DefaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// InTx runs fn inside a transaction.
//
// ReadWrite transactions read the event row with SELECT … FOR UPDATE. The
// row-level lock is held until COMMIT or ROLLBACK, so a second registration
// attempt on the same event blocks on its own SELECT … FOR UPDATE and only
// then reads the registration count, which by that time includes the first
// attempt's insert. Attempts on different events lock different rows and
// proceed in parallel.
//
// ReadOnly transactions run at REPEATABLE READ so every statement sees the
// same snapshot.
func (s *Store) InTx(ctx context.Context, mode repository.TxMode, fn func(q repository.Queries) error) error {
	ctx, cancel := repository.WithTxTimeout(ctx, s.txTimeout)
	defer cancel()

	opts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if mode == repository.ReadOnly {
		opts = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", mode, err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&txQueries{q: tx, lock: mode == repository.ReadWrite}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txQueries implements repository.Queries on an open transaction.
type txQueries struct {
	q    querier
	lock bool
}

func (t *txQueries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	query := `SELECT id, title, date, location, description, capacity, status, created_at, updated_at
		 FROM events WHERE id = $1`
	if t.lock {
		query += ` FOR UPDATE`
	}
	e, err := scanEvent(t.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (t *txQueries) UpdateEvent(ctx context.Context, e *model.Event) error {
	date, err := parseDate(e.Date)
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx,
		`UPDATE events
		 SET title = $2, date = $3, location = $4, description = $5,
		     capacity = $6, status = $7, updated_at = $8
		 WHERE id = $1`,
		e.ID, e.Title, date, e.Location, e.Description, e.Capacity, string(e.Status), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t *txQueries) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t *txQueries) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var n int
	err := t.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (t *txQueries) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO registrations (id, event_id, student_id, student_name, registered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		reg.ID, reg.EventID, reg.StudentID, reg.StudentName, reg.RegisteredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (t *txQueries) DeleteRegistration(ctx context.Context, eventID, studentID string) (bool, error) {
	tag, err := t.q.Exec(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND student_id = $2`,
		eventID, studentID,
	)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanEvent(row pgx.Row, extra ...any) (*model.Event, error) {
	var (
		e      model.Event
		date   time.Time
		status string
	)
	dest := append([]any{
		&e.ID, &e.Title, &date, &e.Location, &e.Description,
		&e.Capacity, &status, &e.CreatedAt, &e.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.Date = date.Format(model.DateLayout)
	e.Status = model.EventStatus(status)
	return &e, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date %q: %w", s, err)
	}
	return d, nil
}

var _ repository.Store = (*Store)(nil)
