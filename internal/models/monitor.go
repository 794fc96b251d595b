package models

import (
	"time"

	"github.com/google/uuid"
)

// MonitorKind determines which extraction strategy a check cycle uses.
type MonitorKind string

const (
	// MonitorKindFullContent compares the normalized text of the whole page.
	MonitorKindFullContent MonitorKind = "full-content"
	// MonitorKindSelector compares the text of the first element matching a CSS selector.
	MonitorKindSelector MonitorKind = "selector"
	// MonitorKindItemSearch locates a named entity (price, quantity) on the page.
	MonitorKindItemSearch MonitorKind = "item-search"
)

// Category is the semantic kind of tracked entity, driving pattern and selector choice.
type Category string

const (
	CategoryCrypto  Category = "crypto"
	CategoryStock   Category = "stock"
	CategoryProduct Category = "product"
	CategoryNews    Category = "news"
	// CategoryAuto lets the item search engine detect the category from the entity name.
	CategoryAuto Category = "auto"
)

// MinCheckIntervalSeconds is the lower bound enforced on monitor check intervals.
const MinCheckIntervalSeconds = 30

// Monitor is a user-defined watch over one URL with an extraction strategy and interval.
//
// PreviousValue is always the value held in CurrentValue immediately prior to
// the most recent successful check. A failed check leaves both untouched.
type Monitor struct {
	ID                   string      `json:"id"`
	OwnerID              string      `json:"owner_id"`
	Name                 string      `json:"name"`
	URL                  string      `json:"url"`
	Kind                 MonitorKind `json:"kind"`
	CSSSelector          string      `json:"css_selector,omitempty"`
	ItemName             string      `json:"item_name,omitempty"`
	Category             Category    `json:"category,omitempty"`
	CheckIntervalSeconds int         `json:"check_interval_seconds"`
	Active               bool        `json:"active"`
	NotificationsEnabled bool        `json:"notifications_enabled"`
	CurrentValue         string      `json:"current_value,omitempty"`
	PreviousValue        string      `json:"previous_value,omitempty"`
	LastCheckedAt        *time.Time  `json:"last_checked_at,omitempty"`
	LastChangedAt        *time.Time  `json:"last_changed_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// NewMonitor creates a monitor with a fresh ID and the defaults applied.
func NewMonitor(ownerID, name, url string, kind MonitorKind) Monitor {
	now := time.Now().UTC()
	return Monitor{
		ID:                   uuid.NewString(),
		OwnerID:              ownerID,
		Name:                 name,
		URL:                  url,
		Kind:                 kind,
		Category:             CategoryAuto,
		CheckIntervalSeconds: 300,
		Active:               true,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// CheckInterval returns the check interval as a duration, clamped to the minimum bound.
func (m *Monitor) CheckInterval() time.Duration {
	secs := m.CheckIntervalSeconds
	if secs < MinCheckIntervalSeconds {
		secs = MinCheckIntervalSeconds
	}
	return time.Duration(secs) * time.Second
}

// MonitorUpdate lists exactly the fields that are mutable after creation by a
// user edit. Nil fields are left unchanged.
type MonitorUpdate struct {
	Name                 *string
	URL                  *string
	CSSSelector          *string
	ItemName             *string
	Category             *Category
	CheckIntervalSeconds *int
	Active               *bool
	NotificationsEnabled *bool
}

// Apply copies the non-nil update fields onto the monitor and bumps UpdatedAt.
func (m *Monitor) Apply(u MonitorUpdate) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.URL != nil {
		m.URL = *u.URL
	}
	if u.CSSSelector != nil {
		m.CSSSelector = *u.CSSSelector
	}
	if u.ItemName != nil {
		m.ItemName = *u.ItemName
	}
	if u.Category != nil {
		m.Category = *u.Category
	}
	if u.CheckIntervalSeconds != nil {
		m.CheckIntervalSeconds = *u.CheckIntervalSeconds
	}
	if u.Active != nil {
		m.Active = *u.Active
	}
	if u.NotificationsEnabled != nil {
		m.NotificationsEnabled = *u.NotificationsEnabled
	}
	m.UpdatedAt = time.Now().UTC()
}
