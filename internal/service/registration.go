package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RegistrationService is the capacity/status engine. Every registration
// decision runs inside one read-write transaction, so for a given event
// the count check, the insert and the status flip are never interleaved
// with another attempt on the same event.
type RegistrationService struct {
	tx      repository.Transactor
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRegistrationService constructs the engine on a transactional store.
func NewRegistrationService(tx repository.Transactor, opts ...Option) *RegistrationService {
	o := buildOptions(opts)
	return &RegistrationService{tx: tx, log: o.logger, metrics: o.metrics, now: o.now}
}

// Register claims one spot of eventID for the student.
//
// The returned status is "full" when this registration used the last spot,
// otherwise the event's unchanged status. On any error nothing is written.
func (s *RegistrationService) Register(ctx context.Context, eventID string, req model.RegisterRequest) (_ *model.RegisterResult, err error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Register",
		trace.WithAttributes(attribute.String("event.id", eventID)))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	defer func() {
		s.metrics.ObserveRegistration(registrationOutcome(err), time.Since(start))
	}()

	eventID = strings.TrimSpace(eventID)
	studentID := strings.TrimSpace(req.StudentID)
	studentName := strings.TrimSpace(req.StudentName)
	switch {
	case eventID == "":
		return nil, fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	case studentID == "":
		return nil, fmt.Errorf("%w: student_id is required", model.ErrInvalidInput)
	case studentName == "":
		return nil, fmt.Errorf("%w: student_name is required", model.ErrInvalidInput)
	}

	var (
		result  *model.RegisterResult
		flipped bool
	)
	err = s.tx.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
		event, err := q.GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.ErrEventNotFound
			}
			return err
		}
		if event.Capacity <= 0 {
			return model.ErrInvalidCapacity
		}

		switch event.Status {
		case model.StatusCancelled:
			return model.ErrEventCancelled
		case model.StatusCompleted:
			return model.ErrEventCompleted
		case model.StatusFull:
			return model.ErrEventFull
		}

		count, err := q.CountRegistrations(ctx, eventID)
		if err != nil {
			return err
		}
		// The status can lag behind the count after an admin reopen.
		if count >= event.Capacity {
			return model.ErrEventFull
		}

		reg := &model.Registration{
			ID:           uuid.New().String(),
			EventID:      eventID,
			StudentID:    studentID,
			StudentName:  studentName,
			RegisteredAt: s.now().UTC(),
		}
		if err := q.InsertRegistration(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrAlreadyRegistered) {
				return model.ErrAlreadyRegistered
			}
			return err
		}

		newCount := count + 1
		status := event.Status
		if newCount >= event.Capacity && status != model.StatusFull {
			if err := q.UpdateEventStatus(ctx, eventID, model.StatusFull); err != nil {
				return err
			}
			status = model.StatusFull
			flipped = true
		}

		result = &model.RegisterResult{
			EventID:   eventID,
			Status:    status,
			SpotsLeft: model.SpotsLeft(event.Capacity, newCount),
		}
		return nil
	})
	if err != nil {
		return nil, s.classify("register", err)
	}

	if flipped {
		s.metrics.IncEventsFilled()
		s.log.InfoContext(ctx, "event reached capacity", "event_id", eventID)
	}
	s.log.DebugContext(ctx, "student registered",
		"event_id", eventID, "student_id", studentID, "spots_left", result.SpotsLeft)
	span.SetAttributes(
		attribute.String("event.status", string(result.Status)),
		attribute.Int("event.spots_left", result.SpotsLeft),
	)
	return result, nil
}

// Unregister removes the student's registration if present. A missing pair
// is a successful no-op. A "full" status is left as is; reopening an event
// is an admin decision.
func (s *RegistrationService) Unregister(ctx context.Context, eventID, studentID string) (err error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Unregister",
		trace.WithAttributes(attribute.String("event.id", eventID)))
	defer func() { endSpan(span, err) }()

	eventID = strings.TrimSpace(eventID)
	studentID = strings.TrimSpace(studentID)
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	}
	if studentID == "" {
		return fmt.Errorf("%w: student_id is required", model.ErrInvalidInput)
	}

	start := time.Now()
	var removed bool
	err = s.tx.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
		var err error
		removed, err = q.DeleteRegistration(ctx, eventID, studentID)
		return err
	})
	if err != nil {
		return s.classify("unregister", err)
	}
	s.metrics.ObserveUnregistration(removed, time.Since(start))
	if removed {
		s.log.DebugContext(ctx, "student unregistered", "event_id", eventID, "student_id", studentID)
	}
	return nil
}

// CapacityInfo reads capacity and registration count from one snapshot.
func (s *RegistrationService) CapacityInfo(ctx context.Context, eventID string) (_ *model.CapacityInfo, err error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.CapacityInfo",
		trace.WithAttributes(attribute.String("event.id", eventID)))
	defer func() { endSpan(span, err) }()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	}

	start := time.Now()
	var info *model.CapacityInfo
	err = s.tx.InTx(ctx, repository.ReadOnly, func(q repository.Queries) error {
		event, err := q.GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.ErrEventNotFound
			}
			return err
		}
		count, err := q.CountRegistrations(ctx, eventID)
		if err != nil {
			return err
		}
		info = &model.CapacityInfo{
			EventID:    eventID,
			Capacity:   event.Capacity,
			Registered: count,
			SpotsLeft:  model.SpotsLeft(event.Capacity, count),
		}
		return nil
	})
	if err != nil {
		return nil, s.classify("capacity info", err)
	}
	s.metrics.ObserveCapacityRead(time.Since(start))
	return info, nil
}

// classify passes engine-detected failures through and wraps everything
// else as a storage error.
func (s *RegistrationService) classify(op string, err error) error {
	if model.IsRegistrationError(err) {
		return err
	}
	s.log.Error("registration storage failure", "op", op, "error", err)
	return &model.StorageError{Op: op, Err: err}
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, model.ErrEventNotFound):
		return metrics.OutcomeEventNotFound
	case errors.Is(err, model.ErrEventCancelled):
		return metrics.OutcomeEventCancelled
	case errors.Is(err, model.ErrEventCompleted):
		return metrics.OutcomeEventCompleted
	case errors.Is(err, model.ErrEventFull):
		return metrics.OutcomeEventFull
	case errors.Is(err, model.ErrAlreadyRegistered):
		return metrics.OutcomeAlreadyRegistered
	case errors.Is(err, model.ErrInvalidCapacity):
		return metrics.OutcomeInvalidCapacity
	case errors.Is(err, model.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	default:
		return metrics.OutcomeStorageError
	}
}
