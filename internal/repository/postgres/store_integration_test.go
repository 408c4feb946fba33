//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("campusevents"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = database.NewPoolFromURL(ctx, url, logger.Discard())
	s.Require().NoError(err)
	s.Require().NoError(database.MigratePostgres(ctx, s.pool))
	// Running twice must be a no-op.
	s.Require().NoError(database.MigratePostgres(ctx, s.pool))

	s.store = postgres.New(s.pool, postgres.WithTxTimeout(10*time.Second))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE registrations, events`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newEvent(capacity int) *model.Event {
	now := time.Now().UTC().Truncate(time.Microsecond)
	e := &model.Event{
		ID:          uuid.NewString(),
		Title:       "Systems Seminar",
		Date:        "2026-11-15",
		Location:    "Auditorium",
		Description: "Distributed systems in practice",
		Capacity:    capacity,
		Status:      model.StatusUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Require().NoError(s.store.CreateEvent(context.Background(), e))
	return e
}

func (s *PostgresStoreSuite) TestEventRoundTrip() {
	ctx := context.Background()
	e := s.newEvent(10)

	got, err := s.store.GetEventByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Title, got.Title)
	s.Equal(e.Date, got.Date)
	s.Equal(model.StatusUpcoming, got.Status)
	s.Equal(0, got.Registered)
	s.True(e.CreatedAt.Equal(got.CreatedAt))

	events, err := s.store.ListEvents(ctx)
	s.Require().NoError(err)
	s.Len(events, 1)

	s.Require().NoError(s.store.DeleteEvent(ctx, e.ID))
	_, err = s.store.GetEventByID(ctx, e.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateRegistrationMapsToSentinel() {
	ctx := context.Background()
	e := s.newEvent(5)
	insert := func(id string) error {
		return s.store.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
			return q.InsertRegistration(ctx, &model.Registration{
				ID: id, EventID: e.ID, StudentID: "s1", StudentName: "Ada", RegisteredAt: time.Now().UTC(),
			})
		})
	}

	s.Require().NoError(insert(uuid.NewString()))
	s.ErrorIs(insert(uuid.NewString()), repository.ErrAlreadyRegistered)
}

func (s *PostgresStoreSuite) TestInTxRollsBack() {
	ctx := context.Background()
	e := s.newEvent(5)
	boom := errors.New("boom")

	err := s.store.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
		if err := q.UpdateEventStatus(ctx, e.ID, model.StatusCancelled); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.GetEventByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusUpcoming, got.Status)
}

func (s *PostgresStoreSuite) TestReadOnlyTxRejectsWrites() {
	ctx := context.Background()
	e := s.newEvent(5)

	err := s.store.InTx(ctx, repository.ReadOnly, func(q repository.Queries) error {
		return q.UpdateEventStatus(ctx, e.ID, model.StatusFull)
	})
	s.Error(err)
}

// TestConcurrentRegistrations drives the engine against Postgres row locks.
func (s *PostgresStoreSuite) TestConcurrentRegistrations() {
	ctx := context.Background()
	const capacity = 25
	e := s.newEvent(capacity)
	engine := service.NewRegistrationService(s.store)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		full      atomic.Int32
	)
	for i := 0; i < capacity+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Register(ctx, e.ID, model.RegisterRequest{
				StudentID:   fmt.Sprintf("student-%d", i),
				StudentName: "Student",
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, model.ErrEventFull):
				full.Add(1)
			default:
				s.Failf("unexpected error", "student-%d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(capacity), succeeded.Load())
	s.Equal(int32(1), full.Load())

	got, err := s.store.GetEventByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusFull, got.Status)
	s.Equal(capacity, got.Registered)
}

func (s *PostgresStoreSuite) TestMaintenance() {
	ctx := context.Background()
	ok := s.newEvent(3)
	stale := s.newEvent(3)
	s.Require().NoError(s.store.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
		return q.UpdateEventStatus(ctx, stale.ID, model.StatusFull)
	}))

	drift, err := s.store.FindStatusDrift(ctx)
	s.Require().NoError(err)
	s.Require().Len(drift, 1)
	s.Equal(stale.ID, drift[0].EventID)
	s.NotEqual(ok.ID, drift[0].EventID)

	invalid, err := s.store.FindInvalidCapacity(ctx)
	s.Require().NoError(err)
	s.Empty(invalid)

	orphans, err := s.store.FindOrphanedRegistrations(ctx)
	s.Require().NoError(err)
	s.Empty(orphans)

	n, err := s.store.DeleteOrphanedRegistrations(ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
