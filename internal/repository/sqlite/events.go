package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

const eventColumnsWithCount = `e.id, e.title, e.date, e.location, e.description, e.capacity, e.status,
		        e.created_at, e.updated_at,
		        (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)`

// CreateEvent inserts a new event. The caller assigns ID and timestamps.
func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, title, date, location, description, capacity, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Date, e.Location, e.Description, e.Capacity, string(e.Status),
		toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns all events ordered by date with live registration counts.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
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

// GetEventByID returns one event with its registration count.
func (s *Store) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	var registered int
	e, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT `+eventColumnsWithCount+`
		   FROM events e WHERE e.id = ?`,
		id,
	), &registered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	e.Registered = registered
	return e, nil
}

// DeleteEvent removes an event. Registrations cascade through the foreign
// key, which requires foreign_keys to be enabled on the handle.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(res)
}
