package differ

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/extractor"
	"github.com/RahulJ0hn/Clarifi/internal/itemsearch"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/RahulJ0hn/Clarifi/internal/normalizer"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	priceChangeConfidence  = 0.9
	qualitativeConfidence  = 0.7
	fallbackConfidence     = 0.5
	canonicalValueMaxChars = 200
	itemValueFallbackChars = 100
)

var firstSentenceRe = regexp.MustCompile(`^.{1,200}[.!?]`)

// ChangeDetector compares canonicalized current vs. previous values and
// computes a magnitude/direction when both sides resolve to numeric prices.
type ChangeDetector struct {
	logger zerolog.Logger
	search *itemsearch.Engine
	dmp    *diffmatchpatch.DiffMatchPatch
}

// NewChangeDetector creates a new change detector.
func NewChangeDetector(search *itemsearch.Engine, logger zerolog.Logger) *ChangeDetector {
	return &ChangeDetector{
		logger: logger.With().Str("component", "ChangeDetector").Logger(),
		search: search,
		dmp:    diffmatchpatch.New(),
	}
}

// CanonicalValue turns a raw extracted value into the canonical string stored
// as the monitor's current value and compared across checks.
func (d *ChangeDetector) CanonicalValue(m *models.Monitor, raw string) string {
	if raw == "" {
		return ""
	}

	switch m.Kind {
	case models.MonitorKindItemSearch:
		if m.ItemName == "" {
			return truncate(raw, canonicalValueMaxChars)
		}
		if price := d.search.BestPriceFromText(raw, m.Category); price != "" {
			return m.ItemName + ": " + price
		}
		return m.ItemName + ": " + truncate(raw, itemValueFallbackChars)

	case models.MonitorKindFullContent:
		clean := extractor.CollapseWhitespace(raw)
		if len(clean) <= canonicalValueMaxChars {
			return clean
		}
		if sentence := firstSentenceRe.FindString(clean); sentence != "" {
			return sentence
		}
		return clean[:canonicalValueMaxChars] + "..."

	default:
		return truncate(raw, canonicalValueMaxChars)
	}
}

// Detect compares the monitor's stored current value against the new
// canonical value. No change is ever reported on the first successful check.
func (d *ChangeDetector) Detect(m *models.Monitor, canonical string) models.Detection {
	if m.CurrentValue == "" {
		return models.Detection{
			Changed:    false,
			Kind:       models.ChangeKindNoChange,
			Confidence: fallbackConfidence,
		}
	}

	if m.CurrentValue == canonical {
		return models.Detection{
			Changed:    false,
			Kind:       models.ChangeKindNoChange,
			Confidence: priceChangeConfidence,
		}
	}

	if delta := d.priceDelta(m, m.CurrentValue, canonical); delta != nil {
		return models.Detection{
			Changed:    true,
			Kind:       delta.Kind,
			Delta:      delta,
			Confidence: priceChangeConfidence,
		}
	}

	return models.Detection{
		Changed:    true,
		Kind:       qualitativeKind(m.Kind),
		Confidence: qualitativeConfidence,
		Summary:    d.diffSummary(m.CurrentValue, canonical),
	}
}

// priceDelta resolves both values to validated numeric prices, or returns nil
// when the change is not numeric.
func (d *ChangeDetector) priceDelta(m *models.Monitor, previous, current string) *models.PriceDelta {
	prevPrice := d.search.BestPriceFromText(previous, m.Category)
	currPrice := d.search.BestPriceFromText(current, m.Category)
	if prevPrice == "" || currPrice == "" {
		return nil
	}
	if !normalizer.Validate(prevPrice, m.Category) || !normalizer.Validate(currPrice, m.Category) {
		return nil
	}

	prevNum := normalizer.ToNumeric(prevPrice)
	currNum := normalizer.ToNumeric(currPrice)
	if prevNum == 0 {
		return nil
	}

	amount := currNum - prevNum
	delta := &models.PriceDelta{
		Previous: prevPrice,
		Current:  currPrice,
		Amount:   amount,
		Percent:  amount / prevNum * 100,
	}
	switch {
	case amount > 0:
		delta.Kind = models.ChangeKindIncrease
	case amount < 0:
		delta.Kind = models.ChangeKindDecrease
	default:
		delta.Kind = models.ChangeKindNoChange
	}
	return delta
}

// diffSummary describes a qualitative change as inserted/deleted character counts.
func (d *ChangeDetector) diffSummary(previous, current string) string {
	diffs := d.dmp.DiffMain(previous, current, false)
	var inserted, deleted int
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(diff.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(diff.Text)
		}
	}
	return fmt.Sprintf("+%d/-%d characters", inserted, deleted)
}

func qualitativeKind(kind models.MonitorKind) models.ChangeKind {
	if kind == models.MonitorKindFullContent {
		return models.ChangeKindContent
	}
	return models.ChangeKindUpdate
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
