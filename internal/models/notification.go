package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ChangeKind labels what sort of change a notification describes.
type ChangeKind string

const (
	ChangeKindIncrease ChangeKind = "increase"
	ChangeKindDecrease ChangeKind = "decrease"
	ChangeKindNoChange ChangeKind = "no_change"
	ChangeKindContent  ChangeKind = "content_change"
	ChangeKindUpdate   ChangeKind = "update"
	ChangeKindGeneral  ChangeKind = "general"
)

// NotificationData is the structured payload attached to a change notification.
type NotificationData struct {
	MonitorID     string      `json:"monitor_id"`
	MonitorName   string      `json:"monitor_name"`
	URL           string      `json:"url"`
	PreviousValue string      `json:"previous_value"`
	CurrentValue  string      `json:"current_value"`
	ChangeKind    ChangeKind  `json:"change_kind"`
	Confidence    float64     `json:"confidence"`
	PriceDelta    *PriceDelta `json:"price_delta,omitempty"`
}

// Notification is a persisted change event addressed to a monitor's owner.
type Notification struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Severity  Severity         `json:"severity"`
	MonitorID string           `json:"monitor_id"`
	Data      NotificationData `json:"data"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification creates a notification with a fresh ID and timestamp.
func NewNotification(ownerID, monitorID, title, message string, severity Severity, data NotificationData) Notification {
	return Notification{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Message:   message,
		Severity:  severity,
		MonitorID: monitorID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}
