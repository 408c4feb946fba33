package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/jackc/pgx/v5"
)

const eventColumnsWithCount = `e.id, e.title, e.date, e.location, e.description, e.capacity, e.status,
		        e.created_at, e.updated_at,
		        (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)`

// CreateEvent inserts a new event. The caller assigns ID and timestamps.
func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	date, err := parseDate(e.Date)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO events (id, title, date, location, description, capacity, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Title, date, e.Location, e.Description, e.Capacity, string(e.Status), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns all events ordered by date, each with its live
// registration count.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+eventColumnsWithCount+`
		 FROM events e
		 ORDER BY e.date ASC, e.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var registered int
		e, err := scanEvent(rows, &registered)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Registered = registered
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetEventByID returns a single event with its registration count, or
// repository.ErrNotFound.
func (s *Store) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	var registered int
	e, err := scanEvent(s.db.QueryRow(ctx,
		`SELECT `+eventColumnsWithCount+`
		 FROM events e WHERE e.id = $1`,
		id,
	), &registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	e.Registered = registered
	return e, nil
}

// DeleteEvent removes an event; registrations go with it through
// ON DELETE CASCADE.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
