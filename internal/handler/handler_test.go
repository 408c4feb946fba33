package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Shivanand-hulikatti/campus-events/internal/handler"
	"github.com/Shivanand-hulikatti/campus-events/internal/handler/mocks"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

type fixture struct {
	events        *mocks.MockEventService
	registrations *mocks.MockRegistrationService
	checker       *mocks.MockConsistencyChecker
	router        http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		events:        mocks.NewMockEventService(ctrl),
		registrations: mocks.NewMockRegistrationService(ctrl),
		checker:       mocks.NewMockConsistencyChecker(ctrl),
	}
	log := logger.Discard()
	h := handler.NewEventHandler(f.events, f.registrations, f.checker, log)
	f.router = handler.NewRouter(h, log, nil)
	return f
}

func (f *fixture) do(method, path, body string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Role", "admin")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAdminRoutesRequireRole(t *testing.T) {
	f := newFixture(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/events"},
		{http.MethodPut, "/events/e1"},
		{http.MethodDelete, "/events/e1"},
		{http.MethodGet, "/events/e1/registrations"},
		{http.MethodGet, "/admin/consistency"},
		{http.MethodPost, "/admin/consistency/fix"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := f.do(r.method, r.path, `{}`, false)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "admin only", decodeError(t, rec))
		})
	}
}

func TestAdminRoleFromQuery(t *testing.T) {
	f := newFixture(t)
	f.checker.EXPECT().Check(gomock.Any()).Return(&model.ConsistencyReport{
		InvalidCapacity: []model.EventSummary{},
		Orphaned:        []model.Registration{},
		StatusDrift:     []model.StatusDrift{},
	}, nil)

	rec := f.do(http.MethodGet, "/admin/consistency?role=admin", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", model.ErrEventNotFound, http.StatusNotFound, "event not found"},
		{"cancelled", model.ErrEventCancelled, http.StatusConflict, "this event has been cancelled"},
		{"completed", model.ErrEventCompleted, http.StatusConflict, "this event has already taken place"},
		{"full", model.ErrEventFull, http.StatusConflict, "event is full"},
		{"duplicate", model.ErrAlreadyRegistered, http.StatusConflict, "you are already registered for this event"},
		{"invalid capacity", model.ErrInvalidCapacity, http.StatusInternalServerError, "event is misconfigured"},
		{"storage", &model.StorageError{Op: "register", Err: errors.New("conn reset")}, http.StatusServiceUnavailable, "database error, please retry"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.registrations.EXPECT().
				Register(gomock.Any(), "e1", model.RegisterRequest{StudentID: "s1", StudentName: "Ada"}).
				Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/events/e1/register", `{"student_id":"s1","student_name":"Ada"}`, false)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeError(t, rec))
		})
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	f.registrations.EXPECT().
		Register(gomock.Any(), "e1", model.RegisterRequest{StudentID: "s1", StudentName: "Ada"}).
		Return(&model.RegisterResult{EventID: "e1", Status: model.StatusFull, SpotsLeft: 0}, nil)

	rec := f.do(http.MethodPost, "/events/e1/register", `{"student_id":"s1","student_name":"Ada"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"event_id":"e1","status":"full","spots_left":0}`, rec.Body.String())
}

func TestRegisterRejectsBadBody(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`not json`, `{"student_id":"s1","extra":true}`} {
		rec := f.do(http.MethodPost, "/events/e1/register", body, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestInvalidInputMessagePassesThrough(t *testing.T) {
	f := newFixture(t)
	err := fmt.Errorf("%w: student_id is required", model.ErrInvalidInput)
	f.registrations.EXPECT().Register(gomock.Any(), "e1", gomock.Any()).Return(nil, err)

	rec := f.do(http.MethodPost, "/events/e1/register", `{"student_name":"Ada"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "student_id is required")
}

func TestUnregister(t *testing.T) {
	f := newFixture(t)
	f.registrations.EXPECT().Unregister(gomock.Any(), "e1", "s1").Return(nil)

	rec := f.do(http.MethodPost, "/events/e1/unregister", `{"student_id":"s1"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"unregistered"}`, rec.Body.String())
}

func TestCapacityInfo(t *testing.T) {
	f := newFixture(t)
	f.registrations.EXPECT().CapacityInfo(gomock.Any(), "e1").
		Return(&model.CapacityInfo{EventID: "e1", Capacity: 10, Registered: 4, SpotsLeft: 6}, nil)

	rec := f.do(http.MethodGet, "/events/e1/capacity", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"event_id":"e1","capacity":10,"registered":4,"spots_left":6}`, rec.Body.String())
}

func TestListEventsEmptyArray(t *testing.T) {
	f := newFixture(t)
	f.events.EXPECT().ListEvents(gomock.Any()).Return(nil, nil)

	rec := f.do(http.MethodGet, "/events", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	req := model.EventRequest{Title: "Talk", Date: "2026-11-01", Location: "Hall", Description: "d", Capacity: 5}
	f.events.EXPECT().CreateEvent(gomock.Any(), req).
		Return(&model.Event{ID: "e1", Title: "Talk", Capacity: 5, Status: model.StatusUpcoming}, nil)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	rec := f.do(http.MethodPost, "/events", string(body), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, model.StatusUpcoming, got.Status)
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	f := newFixture(t)
	f.events.EXPECT().UpdateEvent(gomock.Any(), "e1", gomock.Any()).Return(nil, model.ErrEventNotFound)
	f.events.EXPECT().DeleteEvent(gomock.Any(), "e1").Return(nil)

	rec := f.do(http.MethodPut, "/events/e1", `{"title":"x","capacity":1}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/events/e1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"event deleted"}`, rec.Body.String())
}

func TestStudentRegistrations(t *testing.T) {
	f := newFixture(t)
	f.events.EXPECT().ListStudentRegistrations(gomock.Any(), "s1").Return(nil, nil)

	rec := f.do(http.MethodGet, "/students/s1/registrations", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRepairConsistency(t *testing.T) {
	f := newFixture(t)
	f.checker.EXPECT().Repair(gomock.Any()).Return(&model.RepairResult{OrphansRemoved: 3}, nil)

	rec := f.do(http.MethodPost, "/admin/consistency/fix", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "3")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodOptions, "/events/e1/register", "", false)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
