package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

// ConsistencyChecker audits the event and registration tables.
type ConsistencyChecker struct {
	store repository.MaintenanceStore
	log   *slog.Logger
}

// NewConsistencyChecker constructs a checker over store.
func NewConsistencyChecker(store repository.MaintenanceStore, opts ...Option) *ConsistencyChecker {
	o := buildOptions(opts)
	return &ConsistencyChecker{store: store, log: o.logger}
}

// Check reports invalid capacities, orphaned registrations and status
// drift. Drift is expected after an admin reopens a full event and is
// reported only.
func (c *ConsistencyChecker) Check(ctx context.Context) (*model.ConsistencyReport, error) {
	invalid, err := c.store.FindInvalidCapacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("check capacity: %w", err)
	}
	orphans, err := c.store.FindOrphanedRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("check orphans: %w", err)
	}
	drift, err := c.store.FindStatusDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("check status drift: %w", err)
	}

	report := &model.ConsistencyReport{
		InvalidCapacity: nonNil(invalid),
		Orphaned:        nonNil(orphans),
		StatusDrift:     nonNil(drift),
	}
	if !report.Healthy() {
		c.log.WarnContext(ctx, "consistency problems found",
			"invalid_capacity", len(report.InvalidCapacity),
			"orphaned_registrations", len(report.Orphaned),
			"status_drift", len(report.StatusDrift),
		)
	}
	return report, nil
}

// Repair deletes orphaned registrations. Capacities and statuses are left
// for an admin to decide.
func (c *ConsistencyChecker) Repair(ctx context.Context) (*model.RepairResult, error) {
	n, err := c.store.DeleteOrphanedRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("repair orphans: %w", err)
	}
	c.log.InfoContext(ctx, "removed orphaned registrations", "count", n)
	return &model.RepairResult{OrphansRemoved: n}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
