package model

// EventSummary identifies an event in maintenance reports.
type EventSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Capacity int    `json:"capacity"`
}

// StatusDrift is an event whose status disagrees with its registration
// count: "full" below capacity, or "upcoming" at or above it.
type StatusDrift struct {
	EventID    string      `json:"event_id"`
	Title      string      `json:"title"`
	Capacity   int         `json:"capacity"`
	Registered int         `json:"registered"`
	Status     EventStatus `json:"status"`
}

// ConsistencyReport lists data problems found in the event and
// registration tables. Drift is reported, never corrected automatically.
type ConsistencyReport struct {
	InvalidCapacity []EventSummary `json:"invalid_capacity"`
	Orphaned        []Registration `json:"orphaned_registrations"`
	StatusDrift     []StatusDrift  `json:"status_drift"`
}

// Healthy reports whether no problem was found.
func (r *ConsistencyReport) Healthy() bool {
	return len(r.InvalidCapacity) == 0 && len(r.Orphaned) == 0 && len(r.StatusDrift) == 0
}

// RepairResult summarises a repair pass.
type RepairResult struct {
	OrphansRemoved int64 `json:"orphans_removed"`
}
