package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDescriber struct {
	description string
	err         error
}

func (f *fakeDescriber) DescribeChange(_ context.Context, _, _, _ string) (string, error) {
	return f.description, f.err
}

func testMonitor() *models.Monitor {
	return &models.Monitor{
		ID:           "mon-1",
		OwnerID:      "owner-1",
		Name:         "Bitcoin Tracker",
		URL:          "https://example.com/btc",
		ItemName:     "Bitcoin",
		Kind:         models.MonitorKindItemSearch,
		CurrentValue: "Bitcoin: $27,000.00",
	}
}

func TestComposer_Compose_PriceIncrease(t *testing.T) {
	composer := NewComposer(nil, zerolog.Nop())
	m := testMonitor()
	det := models.Detection{
		Changed:    true,
		Kind:       models.ChangeKindIncrease,
		Confidence: 0.9,
		Delta: &models.PriceDelta{
			Previous: "$27,000.00",
			Current:  "$27,431.12",
			Amount:   431.12,
			Percent:  1.5967,
			Kind:     models.ChangeKindIncrease,
		},
	}

	n := composer.Compose(context.Background(), m, det, "Bitcoin: $27,431.12")

	assert.Equal(t, "Change Detected: Bitcoin Tracker", n.Title)
	assert.Equal(t, models.SeveritySuccess, n.Severity)
	assert.True(t, strings.HasPrefix(n.Message, "📈"))
	assert.Contains(t, n.Message, "$27,000.00 → $27,431.12")
	assert.Contains(t, n.Message, "(+1.60%)")
	assert.Equal(t, "owner-1", n.OwnerID)
	assert.Equal(t, "mon-1", n.MonitorID)
	assert.Equal(t, "Bitcoin: $27,000.00", n.Data.PreviousValue)
	assert.Equal(t, "Bitcoin: $27,431.12", n.Data.CurrentValue)
	require.NotNil(t, n.Data.PriceDelta)
}

func TestComposer_Compose_PriceDecrease(t *testing.T) {
	composer := NewComposer(nil, zerolog.Nop())
	m := testMonitor()
	det := models.Detection{
		Changed:    true,
		Kind:       models.ChangeKindDecrease,
		Confidence: 0.9,
		Delta: &models.PriceDelta{
			Previous: "$27,000.00",
			Current:  "$26,500.00",
			Amount:   -500,
			Percent:  -1.8519,
			Kind:     models.ChangeKindDecrease,
		},
	}

	n := composer.Compose(context.Background(), m, det, "Bitcoin: $26,500.00")

	assert.Equal(t, models.SeverityWarning, n.Severity)
	assert.True(t, strings.HasPrefix(n.Message, "📉"))
	assert.Contains(t, n.Message, "(-1.85%)")
}

func TestComposer_Compose_QualitativeWithDescriber(t *testing.T) {
	composer := NewComposer(&fakeDescriber{description: "The headline now covers the merger."}, zerolog.Nop())
	m := testMonitor()
	m.Kind = models.MonitorKindFullContent
	det := models.Detection{Changed: true, Kind: models.ChangeKindContent, Confidence: 0.7}

	n := composer.Compose(context.Background(), m, det, "Merger announced between the two firms.")

	assert.Equal(t, models.SeverityInfo, n.Severity)
	assert.Contains(t, n.Message, "The headline now covers the merger.")
}

func TestComposer_Compose_DescriberFailureFallsBack(t *testing.T) {
	composer := NewComposer(&fakeDescriber{err: errors.New("api down")}, zerolog.Nop())
	m := testMonitor()
	det := models.Detection{Changed: true, Kind: models.ChangeKindUpdate, Confidence: 0.7}

	n := composer.Compose(context.Background(), m, det, "A fresh value appeared.")

	assert.Equal(t, models.SeverityInfo, n.Severity)
	assert.Contains(t, n.Message, "A fresh value appeared.")
}

func TestComposer_Compose_LongExcerptTruncated(t *testing.T) {
	composer := NewComposer(nil, zerolog.Nop())
	m := testMonitor()
	det := models.Detection{Changed: true, Kind: models.ChangeKindUpdate, Confidence: 0.7}

	long := strings.Repeat("word ", 60)
	n := composer.Compose(context.Background(), m, det, long)

	assert.Contains(t, n.Message, "...")
	assert.Less(t, len(n.Message), len(long))
}

func TestComposer_Compose_ZeroConfidenceFallback(t *testing.T) {
	composer := NewComposer(nil, zerolog.Nop())
	m := testMonitor()
	det := models.Detection{Changed: true, Kind: models.ChangeKindGeneral}

	n := composer.Compose(context.Background(), m, det, "value")

	assert.InDelta(t, 0.5, n.Data.Confidence, 0.001)
}
