// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/google/uuid"
)

// MaxCapacity is the largest capacity an admin may set.
const MaxCapacity = 100_000

// EventStore is the storage an EventService needs.
type EventStore interface {
	repository.Transactor
	repository.EventStore
	repository.RegistrationStore
}

// EventService orchestrates admin event management and listings.
type EventService struct {
	store EventStore
	log   *slog.Logger
	now   func() time.Time
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(store EventStore, opts ...Option) *EventService {
	o := buildOptions(opts)
	return &EventService{store: store, log: o.logger, now: o.now}
}

// CreateEvent validates the request and stores a new upcoming event.
func (s *EventService) CreateEvent(ctx context.Context, req model.EventRequest) (*model.Event, error) {
	req = normalise(req)
	if err := s.validate(req, true); err != nil {
		return nil, err
	}
	if req.Status != "" {
		return nil, fmt.Errorf("%w: status cannot be set on create", model.ErrInvalidInput)
	}

	now := s.now().UTC()
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		Status:      model.StatusUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.InfoContext(ctx, "event created", "event_id", event.ID, "capacity", event.Capacity)
	return event, nil
}

// ListEvents returns all events with their live registration counts.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	}
	event, err := s.store.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent replaces an event's details and, when req.Status is set, its
// status. It runs in the same locked transaction the engine uses, so an
// edit never overwrites a concurrent automatic flip to "full" with a stale
// value. The status is not reconciled against the registration count: an
// admin may reopen a full event or lower capacity below the count.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.EventRequest) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	}
	req = normalise(req)

	var status model.EventStatus
	if req.Status != "" {
		var err error
		if status, err = model.ParseStatus(req.Status); err != nil {
			return nil, err
		}
	}

	var updated *model.Event
	err := s.store.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
		current, err := q.GetEvent(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.ErrEventNotFound
			}
			return err
		}
		if err := s.validate(req, req.Date != current.Date); err != nil {
			return err
		}

		next := *current
		next.Title = req.Title
		next.Date = req.Date
		next.Location = req.Location
		next.Description = req.Description
		next.Capacity = req.Capacity
		if status != "" {
			next.Status = status
		}
		next.UpdatedAt = s.now().UTC()
		if err := q.UpdateEvent(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) || errors.Is(err, model.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.log.InfoContext(ctx, "event updated", "event_id", id, "status", updated.Status, "capacity", updated.Capacity)
	return updated, nil
}

// DeleteEvent removes an event and, by cascade, its registrations.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.InfoContext(ctx, "event deleted", "event_id", id)
	return nil
}

// ListRegistrations returns all registrations for an event.
func (s *EventService) ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.store.ListRegistrationsByEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// ListStudentRegistrations returns every registration held by a student.
func (s *EventService) ListStudentRegistrations(ctx context.Context, studentID string) ([]model.Registration, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: student_id is required", model.ErrInvalidInput)
	}
	regs, err := s.store.ListRegistrationsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return regs, nil
}

func normalise(req model.EventRequest) model.EventRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Date = strings.TrimSpace(req.Date)
	req.Location = strings.TrimSpace(req.Location)
	req.Description = strings.TrimSpace(req.Description)
	req.Status = strings.TrimSpace(req.Status)
	return req
}

// validate checks required fields and capacity bounds. checkDate also
// requires the date to be today or later.
func (s *EventService) validate(req model.EventRequest, checkDate bool) error {
	switch {
	case req.Title == "":
		return fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	case req.Date == "":
		return fmt.Errorf("%w: date is required", model.ErrInvalidInput)
	case req.Location == "":
		return fmt.Errorf("%w: location is required", model.ErrInvalidInput)
	case req.Description == "":
		return fmt.Errorf("%w: description is required", model.ErrInvalidInput)
	case req.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be a positive integer", model.ErrInvalidInput)
	case req.Capacity > MaxCapacity:
		return fmt.Errorf("%w: capacity cannot exceed 100,000", model.ErrInvalidInput)
	}

	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return fmt.Errorf("%w: date must use the YYYY-MM-DD format", model.ErrInvalidInput)
	}
	if checkDate {
		now := s.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if date.Before(today) {
			return fmt.Errorf("%w: date must be today or later", model.ErrInvalidInput)
		}
	}
	return nil
}
