package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// FindInvalidCapacity lists events whose capacity is below one.
func (s *Store) FindInvalidCapacity(ctx context.Context) ([]model.EventSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, capacity FROM events WHERE capacity < 1 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("find invalid capacity: %w", err)
	}
	defer rows.Close()

	var out []model.EventSummary
	for rows.Next() {
		var e model.EventSummary
		if err := rows.Scan(&e.ID, &e.Title, &e.Capacity); err != nil {
			return nil, fmt.Errorf("scan event summary: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindOrphanedRegistrations lists registrations whose event is gone. The
// foreign key prevents these on a schema created by this service, but
// tables imported from elsewhere may carry them.
func (s *Store) FindOrphanedRegistrations(ctx context.Context) ([]model.Registration, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.event_id, r.student_id, r.student_name, r.registered_at
		 FROM registrations r
		 LEFT JOIN events e ON e.id = r.event_id
		 WHERE e.id IS NULL
		 ORDER BY r.registered_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("find orphaned registrations: %w", err)
	}
	return collectRegistrations(rows)
}

// FindStatusDrift lists events whose status disagrees with their count.
// Cancelled and completed events are terminal and never drift.
func (s *Store) FindStatusDrift(ctx context.Context) ([]model.StatusDrift, error) {
	rows, err := s.db.Query(ctx,
		`SELECT e.id, e.title, e.capacity, e.status, COUNT(r.id) AS registered
		 FROM events e
		 LEFT JOIN registrations r ON r.event_id = e.id
		 GROUP BY e.id, e.title, e.capacity, e.status
		 HAVING (e.status = 'full' AND COUNT(r.id) < e.capacity)
		     OR (e.status = 'upcoming' AND COUNT(r.id) >= e.capacity)
		 ORDER BY e.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("find status drift: %w", err)
	}
	defer rows.Close()

	var out []model.StatusDrift
	for rows.Next() {
		var (
			d      model.StatusDrift
			status string
		)
		if err := rows.Scan(&d.EventID, &d.Title, &d.Capacity, &status, &d.Registered); err != nil {
			return nil, fmt.Errorf("scan status drift: %w", err)
		}
		d.Status = model.EventStatus(status)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteOrphanedRegistrations removes registrations whose event is gone.
func (s *Store) DeleteOrphanedRegistrations(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM registrations r
		 WHERE NOT EXISTS (SELECT 1 FROM events e WHERE e.id = r.event_id)`,
	)
	if err != nil {
		return 0, fmt.Errorf("delete orphaned registrations: %w", err)
	}
	return tag.RowsAffected(), nil
}
