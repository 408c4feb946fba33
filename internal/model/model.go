// Package model defines the core domain types for the campus events system.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for Event.Date.
const DateLayout = "2006-01-02"

// EventStatus is the lifecycle flag of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusFull      EventStatus = "full"
	StatusCancelled EventStatus = "cancelled"
	StatusCompleted EventStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusFull, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s closes the event to new registrations
// regardless of capacity.
func (s EventStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ParseStatus normalises and validates a status string.
func ParseStatus(raw string) (EventStatus, error) {
	s := EventStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// Event is a campus activity with a capacity limit.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Capacity    int         `json:"capacity"`
	Status      EventStatus `json:"status"`
	// Registered is filled by read paths that join the registration count.
	Registered int       `json:"registered"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SpotsLeft returns max(0, capacity - registered).
func (e *Event) SpotsLeft() int {
	return SpotsLeft(e.Capacity, e.Registered)
}

// IsFull returns true when no spots remain.
func (e *Event) IsFull() bool {
	return e.Registered >= e.Capacity
}

// SpotsLeft returns max(0, capacity - registered).
func SpotsLeft(capacity, registered int) int {
	return max(0, capacity-registered)
}

// Registration is one student's claim on one slot of one event.
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	StudentID    string    `json:"student_id"`
	StudentName  string    `json:"student_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// EventRequest is the payload for creating or editing an event.
// Status is optional on edit; an empty value keeps the current status.
type EventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status,omitempty"`
}

// RegisterRequest is the payload for registering for an event.
type RegisterRequest struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// UnregisterRequest is the payload for dropping a registration.
type UnregisterRequest struct {
	StudentID string `json:"student_id"`
}

// RegisterResult describes the event state right after a successful
// registration commit.
type RegisterResult struct {
	EventID   string      `json:"event_id"`
	Status    EventStatus `json:"status"`
	SpotsLeft int         `json:"spots_left"`
}

// CapacityInfo is a consistent snapshot of an event's occupancy.
type CapacityInfo struct {
	EventID    string `json:"event_id"`
	Capacity   int    `json:"capacity"`
	Registered int    `json:"registered"`
	SpotsLeft  int    `json:"spots_left"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegistrationOutcome summarises a single registration attempt.
// Used by the concurrent registration tests.
type RegistrationOutcome struct {
	StudentID string
	Result    *RegisterResult
	Error     error
}
