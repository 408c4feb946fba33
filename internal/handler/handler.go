// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks EventService,RegistrationService,ConsistencyChecker

// EventService is the admin and listing surface.
type EventService interface {
	CreateEvent(ctx context.Context, req model.EventRequest) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, req model.EventRequest) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error)
	ListStudentRegistrations(ctx context.Context, studentID string) ([]model.Registration, error)
}

// RegistrationService is the capacity engine.
type RegistrationService interface {
	Register(ctx context.Context, eventID string, req model.RegisterRequest) (*model.RegisterResult, error)
	Unregister(ctx context.Context, eventID, studentID string) error
	CapacityInfo(ctx context.Context, eventID string) (*model.CapacityInfo, error)
}

// ConsistencyChecker audits and repairs stored data.
type ConsistencyChecker interface {
	Check(ctx context.Context) (*model.ConsistencyReport, error)
	Repair(ctx context.Context) (*model.RepairResult, error)
}

// EventHandler holds all HTTP handlers for the campus events API.
type EventHandler struct {
	events        EventService
	registrations RegistrationService
	checker       ConsistencyChecker
	log           *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events EventService, registrations RegistrationService, checker ConsistencyChecker, log *slog.Logger) *EventHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &EventHandler{events: events, registrations: registrations, checker: checker, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses and
// user-facing messages.
func (h *EventHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, model.ErrEventCancelled):
		writeError(w, http.StatusConflict, "this event has been cancelled")
	case errors.Is(err, model.ErrEventCompleted):
		writeError(w, http.StatusConflict, "this event has already taken place")
	case errors.Is(err, model.ErrEventFull):
		writeError(w, http.StatusConflict, "event is full")
	case errors.Is(err, model.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "you are already registered for this event")
	case errors.Is(err, model.ErrInvalidCapacity):
		h.log.ErrorContext(r.Context(), "event has invalid capacity", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "event is misconfigured")
	case model.IsStorageError(err):
		writeError(w, http.StatusServiceUnavailable, "database error, please retry")
	default:
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Event handlers ───────────────────────────────────────────────────────────

// CreateEvent handles POST /events (admin).
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PUT /events/{id} (admin).
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id} (admin).
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// ListRegistrations handles GET /events/{id}/registrations (admin).
func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.events.ListRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// ListStudentRegistrations handles GET /students/{studentID}/registrations.
func (h *EventHandler) ListStudentRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.events.ListStudentRegistrations(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// ─── Registration handlers ────────────────────────────────────────────────────

// Register handles POST /events/{id}/register.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.registrations.Register(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Unregister handles POST /events/{id}/unregister.
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	var req model.UnregisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.registrations.Unregister(r.Context(), chi.URLParam(r, "id"), req.StudentID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "unregistered"})
}

// CapacityInfo handles GET /events/{id}/capacity.
func (h *EventHandler) CapacityInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.registrations.CapacityInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// ─── Maintenance handlers ─────────────────────────────────────────────────────

// CheckConsistency handles GET /admin/consistency (admin).
func (h *EventHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.Check(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "consistency check", "error", err)
		writeError(w, http.StatusInternalServerError, "consistency check failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// RepairConsistency handles POST /admin/consistency/fix (admin).
func (h *EventHandler) RepairConsistency(w http.ResponseWriter, r *http.Request) {
	result, err := h.checker.Repair(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "consistency repair", "error", err)
		writeError(w, http.StatusInternalServerError, "consistency repair failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
