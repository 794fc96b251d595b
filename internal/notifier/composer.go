package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/rs/zerolog"
)

const (
	excerptMaxChars   = 120
	defaultConfidence = 0.5
	titlePrefix       = "Change Detected: "
	increaseEmoji     = "📈"
	decreaseEmoji     = "📉"
	steadyEmoji       = "➡️"
	qualitativeEmoji  = "🔄"
)

// Describer produces a short natural-language description of a content change.
// Implementations are best effort; an error just means no description.
type Describer interface {
	DescribeChange(ctx context.Context, monitorName, previous, current string) (string, error)
}

// Composer turns detections into user-facing notifications.
type Composer struct {
	logger    zerolog.Logger
	describer Describer
}

// NewComposer creates a composer. The describer may be nil, in which case
// qualitative messages carry only the value excerpt.
func NewComposer(describer Describer, logger zerolog.Logger) *Composer {
	return &Composer{
		logger:    logger.With().Str("component", "NotificationComposer").Logger(),
		describer: describer,
	}
}

// Compose builds the notification for a detected change.
func (c *Composer) Compose(ctx context.Context, m *models.Monitor, det models.Detection, newValue string) models.Notification {
	confidence := det.Confidence
	if confidence == 0 {
		confidence = defaultConfidence
	}

	var message string
	var severity models.Severity
	if det.Delta != nil {
		message, severity = c.priceMessage(m, det.Delta)
	} else {
		message, severity = c.qualitativeMessage(ctx, m, newValue)
	}

	data := models.NotificationData{
		MonitorID:     m.ID,
		MonitorName:   m.Name,
		URL:           m.URL,
		PreviousValue: m.CurrentValue,
		CurrentValue:  newValue,
		ChangeKind:    det.Kind,
		Confidence:    confidence,
		PriceDelta:    det.Delta,
	}

	return models.NewNotification(m.OwnerID, m.ID, titlePrefix+m.Name, message, severity, data)
}

// priceMessage renders a numeric change with direction emoji and percent.
func (c *Composer) priceMessage(m *models.Monitor, delta *models.PriceDelta) (string, models.Severity) {
	subject := m.ItemName
	if subject == "" {
		subject = m.Name
	}

	switch delta.Kind {
	case models.ChangeKindIncrease:
		msg := fmt.Sprintf("%s %s price changed: %s → %s (+%.2f%%)",
			increaseEmoji, subject, delta.Previous, delta.Current, delta.Percent)
		return msg, models.SeveritySuccess
	case models.ChangeKindDecrease:
		msg := fmt.Sprintf("%s %s price changed: %s → %s (%.2f%%)",
			decreaseEmoji, subject, delta.Previous, delta.Current, delta.Percent)
		return msg, models.SeverityWarning
	default:
		msg := fmt.Sprintf("%s %s price unchanged at %s",
			steadyEmoji, subject, delta.Current)
		return msg, models.SeverityInfo
	}
}

// qualitativeMessage renders a non-numeric change, enriched with a describer
// summary when one is available.
func (c *Composer) qualitativeMessage(ctx context.Context, m *models.Monitor, newValue string) (string, models.Severity) {
	excerpt := newValue
	if len(excerpt) > excerptMaxChars {
		excerpt = strings.TrimSpace(excerpt[:excerptMaxChars]) + "..."
	}
	message := fmt.Sprintf("%s %s updated: %s", qualitativeEmoji, m.Name, excerpt)

	if c.describer != nil {
		description, err := c.describer.DescribeChange(ctx, m.Name, m.CurrentValue, newValue)
		if err != nil {
			c.logger.Debug().Err(err).Str("monitor_id", m.ID).Msg("Change description unavailable")
		} else if description != "" {
			message = fmt.Sprintf("%s %s updated: %s", qualitativeEmoji, m.Name, description)
		}
	}

	return message, models.SeverityInfo
}
