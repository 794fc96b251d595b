package monitor

import (
	"context"
	"net/url"
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/rs/zerolog"
)

// ServiceStore is the persistence surface for monitor lifecycle operations.
type ServiceStore interface {
	GetMonitor(ctx context.Context, id string) (*models.Monitor, error)
	SaveMonitor(ctx context.Context, m *models.Monitor) error
	DeleteMonitor(ctx context.Context, id string) error
	ListMonitorsByOwner(ctx context.Context, ownerID string) ([]*models.Monitor, error)
}

// SchedulerControl keeps the running schedule in sync with monitor edits.
type SchedulerControl interface {
	Upsert(m *models.Monitor) error
	Remove(monitorID string)
}

// Service owns the monitor lifecycle. Every mutation is persisted first and
// then reflected into the scheduler, so a crash never leaves a scheduled job
// without a stored monitor.
type Service struct {
	store     ServiceStore
	scheduler SchedulerControl
	logger    zerolog.Logger
}

// NewService creates a monitor lifecycle service.
func NewService(store ServiceStore, scheduler SchedulerControl, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		scheduler: scheduler,
		logger:    logger.With().Str("component", "MonitorService").Logger(),
	}
}

// Create validates and persists a new monitor, then schedules it.
func (s *Service) Create(ctx context.Context, m *models.Monitor) error {
	if err := validateMonitor(m); err != nil {
		return err
	}
	if err := s.store.SaveMonitor(ctx, m); err != nil {
		return err
	}
	if m.Active {
		if err := s.scheduler.Upsert(m); err != nil {
			return err
		}
	}
	s.logger.Info().Str("monitor_id", m.ID).Str("url", m.URL).Str("kind", string(m.Kind)).Msg("Monitor created")
	return nil
}

// Update applies an edit to an existing monitor and re-syncs its schedule.
// Deactivating removes the job; changing the interval reschedules it.
func (s *Service) Update(ctx context.Context, id string, update models.MonitorUpdate) (*models.Monitor, error) {
	m, err := s.store.GetMonitor(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Apply(update)
	if err := validateMonitor(m); err != nil {
		return nil, err
	}
	if err := s.store.SaveMonitor(ctx, m); err != nil {
		return nil, err
	}

	if m.Active {
		if err := s.scheduler.Upsert(m); err != nil {
			return nil, err
		}
	} else {
		s.scheduler.Remove(m.ID)
	}
	s.logger.Info().Str("monitor_id", m.ID).Msg("Monitor updated")
	return m, nil
}

// Delete unschedules and removes a monitor along with its notifications.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.scheduler.Remove(id)
	if err := s.store.DeleteMonitor(ctx, id); err != nil {
		return err
	}
	return nil
}

// Get fetches one monitor.
func (s *Service) Get(ctx context.Context, id string) (*models.Monitor, error) {
	return s.store.GetMonitor(ctx, id)
}

// List returns an owner's monitors.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.Monitor, error) {
	return s.store.ListMonitorsByOwner(ctx, ownerID)
}

// validateMonitor enforces the invariants a stored monitor must hold.
func validateMonitor(m *models.Monitor) error {
	if strings.TrimSpace(m.Name) == "" {
		return errorwrapper.NewValidationError("name", m.Name, "required")
	}

	parsed, err := url.Parse(m.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errorwrapper.NewValidationError("url", m.URL, "must be an absolute http(s) URL")
	}

	switch m.Kind {
	case models.MonitorKindFullContent:
	case models.MonitorKindSelector:
		if strings.TrimSpace(m.CSSSelector) == "" {
			return errorwrapper.NewValidationError("css_selector", m.CSSSelector, "required for selector monitors")
		}
	case models.MonitorKindItemSearch:
		if strings.TrimSpace(m.ItemName) == "" {
			return errorwrapper.NewValidationError("item_name", m.ItemName, "required for item-search monitors")
		}
	default:
		return errorwrapper.NewValidationError("kind", string(m.Kind), "unknown monitor kind")
	}

	switch m.Category {
	case models.CategoryAuto, models.CategoryCrypto, models.CategoryStock, models.CategoryProduct, models.CategoryNews, "":
	default:
		return errorwrapper.NewValidationError("category", string(m.Category), "unknown category")
	}

	if m.CheckIntervalSeconds < models.MinCheckIntervalSeconds {
		return errorwrapper.NewValidationError("check_interval_seconds", m.CheckIntervalSeconds, "below minimum interval")
	}
	return nil
}
