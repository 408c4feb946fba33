package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// ListRegistrationsByEvent returns all registrations for a given event.
func (s *Store) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, student_id, student_name, registered_at
		   FROM registrations
		  WHERE event_id = ?
		  ORDER BY registered_at ASC, id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return collectRegistrations(rows)
}

// ListRegistrationsByStudent returns one student's registrations.
func (s *Store) ListRegistrationsByStudent(ctx context.Context, studentID string) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, student_id, student_name, registered_at
		   FROM registrations
		  WHERE student_id = ?
		  ORDER BY registered_at ASC, id ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return collectRegistrations(rows)
}

func collectRegistrations(rows *sql.Rows) ([]model.Registration, error) {
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var (
			reg          model.Registration
			registeredAt int64
		)
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.StudentID, &reg.StudentName, &registeredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.RegisteredAt = fromMillis(registeredAt)
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
