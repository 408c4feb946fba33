package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	store := sqlite.New(db, sqlite.WithTxTimeout(10*time.Second))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedEvent stores an event directly, bypassing admin validation.
func seedEvent(t *testing.T, store *sqlite.Store, capacity int, status model.EventStatus) *model.Event {
	t.Helper()
	e := &model.Event{
		ID:          uuid.NewString(),
		Title:       "Go Meetup",
		Date:        "2026-11-01",
		Location:    "Room 101",
		Description: "Talks and pizza",
		Capacity:    capacity,
		Status:      status,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	require.NoError(t, store.CreateEvent(context.Background(), e))
	return e
}

func loadEvent(t *testing.T, store *sqlite.Store, id string) *model.Event {
	t.Helper()
	e, err := store.GetEventByID(context.Background(), id)
	require.NoError(t, err)
	return e
}

// setCapacity writes a capacity the admin surface would refuse.
func setCapacity(t *testing.T, store *sqlite.Store, id string, capacity int) {
	t.Helper()
	err := store.InTx(context.Background(), repository.ReadWrite, func(q repository.Queries) error {
		e, err := q.GetEvent(context.Background(), id)
		if err != nil {
			return err
		}
		e.Capacity = capacity
		return q.UpdateEvent(context.Background(), e)
	})
	require.NoError(t, err)
}

// failingTransactor runs transactions on a real store but fails the status
// flip, so the insert that preceded it must be rolled back.
type failingTransactor struct {
	inner repository.Transactor
	err   error
}

func (f *failingTransactor) InTx(ctx context.Context, mode repository.TxMode, fn func(q repository.Queries) error) error {
	return f.inner.InTx(ctx, mode, func(q repository.Queries) error {
		return fn(&failingQueries{Queries: q, err: f.err})
	})
}

type failingQueries struct {
	repository.Queries
	err error
}

func (f *failingQueries) UpdateEventStatus(context.Context, string, model.EventStatus) error {
	return f.err
}
