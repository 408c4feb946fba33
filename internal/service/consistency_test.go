package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
)

func TestConsistencyCheckHealthy(t *testing.T) {
	store := openTestStore(t)
	seedEvent(t, store, 3, model.StatusUpcoming)
	checker := service.NewConsistencyChecker(store)

	report, err := checker.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.NotNil(t, report.InvalidCapacity)
	assert.NotNil(t, report.Orphaned)
	assert.NotNil(t, report.StatusDrift)

	result, err := checker.Repair(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.OrphansRemoved)
}

func TestConsistencyCheckFindsProblems(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	broken := seedEvent(t, store, 3, model.StatusUpcoming)
	setCapacity(t, store, broken.ID, 0)
	stale := seedEvent(t, store, 3, model.StatusUpcoming)
	require.NoError(t, store.InTx(ctx, repository.ReadWrite, func(q repository.Queries) error {
		return q.UpdateEventStatus(ctx, stale.ID, model.StatusFull)
	}))

	report, err := service.NewConsistencyChecker(store).Check(ctx)
	require.NoError(t, err)
	assert.False(t, report.Healthy())
	require.Len(t, report.InvalidCapacity, 1)
	assert.Equal(t, broken.ID, report.InvalidCapacity[0].ID)
	assert.Len(t, report.StatusDrift, 2)
	assert.Empty(t, report.Orphaned)

	// Checking never changes stored data.
	assert.Equal(t, model.StatusFull, loadEvent(t, store, stale.ID).Status)
}
