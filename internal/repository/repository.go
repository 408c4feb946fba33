// Package repository declares the storage contracts for the campus events
// system. Concrete implementations live in the postgres and sqlite
// sub-packages and use their drivers directly (no ORM).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRegistered is returned when the (event, student) pair already exists.
var ErrAlreadyRegistered = errors.New("registration already exists")

// TxMode selects the isolation a transaction is opened with.
type TxMode int

const (
	// ReadWrite serialises registration decisions per event. Postgres locks
	// the event row on read; SQLite opens with BEGIN IMMEDIATE.
	ReadWrite TxMode = iota
	// ReadOnly gives one consistent snapshot for several reads.
	ReadOnly
)

func (m TxMode) String() string {
	if m == ReadOnly {
		return "read-only"
	}
	return "read-write"
}

// Queries is the set of statements available inside a transaction.
type Queries interface {
	// GetEvent loads an event without its registration count. In a
	// ReadWrite transaction the row stays locked until commit or rollback.
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	UpdateEvent(ctx context.Context, event *model.Event) error
	UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error
	CountRegistrations(ctx context.Context, eventID string) (int, error)
	// InsertRegistration returns ErrAlreadyRegistered on a duplicate pair.
	InsertRegistration(ctx context.Context, reg *model.Registration) error
	// DeleteRegistration reports whether a row was removed.
	DeleteRegistration(ctx context.Context, eventID, studentID string) (bool, error)
}

// Transactor runs fn inside a transaction. A nil return from fn commits,
// anything else rolls back and is returned unchanged.
type Transactor interface {
	InTx(ctx context.Context, mode TxMode, fn func(q Queries) error) error
}

// EventStore covers event reads and lifecycle writes outside the engine.
type EventStore interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// RegistrationStore covers registration listings.
type RegistrationStore interface {
	ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListRegistrationsByStudent(ctx context.Context, studentID string) ([]model.Registration, error)
}

// MaintenanceStore backs the consistency checker.
type MaintenanceStore interface {
	FindInvalidCapacity(ctx context.Context) ([]model.EventSummary, error)
	FindOrphanedRegistrations(ctx context.Context) ([]model.Registration, error)
	FindStatusDrift(ctx context.Context) ([]model.StatusDrift, error)
	DeleteOrphanedRegistrations(ctx context.Context) (int64, error)
}

// Store is everything a backend provides.
type Store interface {
	Transactor
	EventStore
	RegistrationStore
	MaintenanceStore
	Close() error
}

// DefaultTxTimeout bounds a transaction whose context carries no deadline.
const DefaultTxTimeout = 5 * time.Second

// WithTxTimeout applies timeout to ctx unless it already has a deadline.
func WithTxTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
