package models

// PriceDelta carries the numeric magnitude and direction of a price change.
type PriceDelta struct {
	Previous string     `json:"previous"`
	Current  string     `json:"current"`
	Amount   float64    `json:"amount"`
	Percent  float64    `json:"percent"`
	Kind     ChangeKind `json:"kind"`
}

// Detection is the change detector's verdict for one check cycle.
//
// A change with no resolvable numeric prices is still reported as changed
// (qualitative) with a nil Delta.
type Detection struct {
	Changed    bool
	Kind       ChangeKind
	Delta      *PriceDelta
	Confidence float64
	// Summary is a short description of a qualitative change, empty for
	// numeric changes.
	Summary string
}

// CheckResult is the ephemeral outcome of a single monitor check. It is never
// persisted as its own entity; its value fields are folded into the monitor.
type CheckResult struct {
	MonitorID string `json:"monitor_id"`
	Success   bool   `json:"success"`
	// Inactive marks a check that was skipped because the monitor is
	// deactivated; the scheduler drops the stale registration on seeing it.
	Inactive       bool       `json:"inactive,omitempty"`
	RawValue       string     `json:"raw_value,omitempty"`
	ProcessedValue string     `json:"processed_value,omitempty"`
	Changed        bool       `json:"changed"`
	Detection      *Detection `json:"-"`
	Err            error      `json:"-"`
	Error          string     `json:"error,omitempty"`
}
