package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/jackc/pgx/v5"
)

// ListRegistrationsByEvent returns all registrations for a given event.
func (s *Store) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, student_id, student_name, registered_at
		 FROM registrations
		 WHERE event_id = $1
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
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, student_id, student_name, registered_at
		 FROM registrations
		 WHERE student_id = $1
		 ORDER BY registered_at ASC, id ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return collectRegistrations(rows)
}

func collectRegistrations(rows pgx.Rows) ([]model.Registration, error) {
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.StudentID, &reg.StudentName, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
