package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/differ"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/extractor"
	"github.com/RahulJ0hn/Clarifi/internal/fetcher"
	"github.com/RahulJ0hn/Clarifi/internal/itemsearch"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/RahulJ0hn/Clarifi/internal/notifier"
	"github.com/rs/zerolog"
)

// Store is the persistence surface the check engine needs.
type Store interface {
	GetMonitor(ctx context.Context, id string) (*models.Monitor, error)
	UpdateMonitorValues(ctx context.Context, m *models.Monitor) error
	SaveNotification(ctx context.Context, n *models.Notification) error
}

// PageFetcher retrieves a page for value extraction.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*fetcher.PageResult, error)
}

// NotificationSink delivers a persisted notification to live subscribers.
type NotificationSink interface {
	PublishNotification(ctx context.Context, n *models.Notification)
}

// Engine runs single check cycles: fetch, extract, detect, persist, notify.
type Engine struct {
	store    Store
	fetcher  PageFetcher
	search   *itemsearch.Engine
	detector *differ.ChangeDetector
	composer *notifier.Composer
	sink     NotificationSink
	logger   zerolog.Logger
}

// NewEngine creates a check engine. The sink may be nil.
func NewEngine(
	store Store,
	pageFetcher PageFetcher,
	search *itemsearch.Engine,
	detector *differ.ChangeDetector,
	composer *notifier.Composer,
	sink NotificationSink,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		store:    store,
		fetcher:  pageFetcher,
		search:   search,
		detector: detector,
		composer: composer,
		sink:     sink,
		logger:   logger.With().Str("component", "CheckEngine").Logger(),
	}
}

// Check runs one full check cycle for the monitor with the given ID. A
// monitor deleted since scheduling is not an error; the result is discarded.
func (e *Engine) Check(ctx context.Context, monitorID string) *models.CheckResult {
	m, err := e.store.GetMonitor(ctx, monitorID)
	if err != nil {
		if errors.Is(err, errorwrapper.ErrMonitorNotFound) {
			e.logger.Debug().Str("monitor_id", monitorID).Msg("Monitor gone, discarding check")
		} else {
			e.logger.Error().Err(err).Str("monitor_id", monitorID).Msg("Failed to load monitor")
		}
		return failedResult(monitorID, err)
	}
	if !m.Active {
		e.logger.Debug().Str("monitor_id", monitorID).Msg("Monitor inactive, skipping check")
		return &models.CheckResult{MonitorID: monitorID, Success: true, Inactive: true}
	}
	return e.checkMonitor(ctx, m)
}

// RunCheckNow runs the same pipeline as a scheduled tick, synchronously, for
// on-demand checks. Running it twice against an unchanged page reports a
// change at most once.
func (e *Engine) RunCheckNow(ctx context.Context, monitorID string) *models.CheckResult {
	return e.Check(ctx, monitorID)
}

// checkMonitor runs the cycle for an already-loaded monitor. A failure at any
// stage leaves the monitor's stored values untouched.
func (e *Engine) checkMonitor(ctx context.Context, m *models.Monitor) *models.CheckResult {
	page, err := e.fetcher.FetchPage(ctx, m.URL)
	if err != nil {
		e.logger.Warn().Err(err).Str("monitor_id", m.ID).Str("url", m.URL).Msg("Check fetch failed")
		return failedResult(m.ID, err)
	}

	raw, err := e.extractValue(m, page)
	if err != nil {
		e.logger.Warn().Err(err).Str("monitor_id", m.ID).Msg("Value extraction failed")
		return failedResult(m.ID, err)
	}

	canonical := e.detector.CanonicalValue(m, raw)
	detection := e.detector.Detect(m, canonical)

	var notification *models.Notification
	if detection.Changed && m.NotificationsEnabled {
		n := e.composer.Compose(ctx, m, detection, canonical)
		notification = &n
	}

	now := time.Now().UTC()
	m.PreviousValue = m.CurrentValue
	m.CurrentValue = canonical
	m.LastCheckedAt = &now
	if detection.Changed {
		m.LastChangedAt = &now
	}

	if err := e.store.UpdateMonitorValues(ctx, m); err != nil {
		if errors.Is(err, errorwrapper.ErrMonitorNotFound) {
			e.logger.Debug().Str("monitor_id", m.ID).Msg("Monitor deleted mid-check, result discarded")
			return failedResult(m.ID, err)
		}
		e.logger.Error().Err(err).Str("monitor_id", m.ID).Msg("Failed to persist check result")
		return failedResult(m.ID, err)
	}

	if notification != nil {
		if err := e.store.SaveNotification(ctx, notification); err != nil {
			e.logger.Error().Err(err).Str("monitor_id", m.ID).Msg("Failed to save notification")
		} else if e.sink != nil {
			e.sink.PublishNotification(ctx, notification)
		}
	}

	e.logger.Info().
		Str("monitor_id", m.ID).
		Bool("changed", detection.Changed).
		Str("kind", string(detection.Kind)).
		Msg("Check completed")

	return &models.CheckResult{
		MonitorID:      m.ID,
		Success:        true,
		RawValue:       raw,
		ProcessedValue: canonical,
		Changed:        detection.Changed,
		Detection:      &detection,
	}
}

// extractValue produces the raw value for the monitor's kind. A selector that
// matches nothing yields a valid empty value, not an error.
func (e *Engine) extractValue(m *models.Monitor, page *fetcher.PageResult) (string, error) {
	switch m.Kind {
	case models.MonitorKindSelector:
		return extractor.ExtractBySelector(page.HTML, m.CSSSelector)

	case models.MonitorKindItemSearch:
		result := e.search.Search(page.HTML, page.Text, m.ItemName, m.Category)
		return itemsearch.FormatSearchValue(result), nil

	case models.MonitorKindFullContent:
		return extractor.NormalizeContent(page.Text), nil

	default:
		return "", errorwrapper.NewError("unknown monitor kind: %s", m.Kind)
	}
}

func failedResult(monitorID string, err error) *models.CheckResult {
	result := &models.CheckResult{MonitorID: monitorID, Err: err}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
