package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store wraps the SQL database connection and persists monitors and
// notifications.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore opens the database file and ensures the schema is set up.
func NewStore(cfg config.StorageConfig, logger zerolog.Logger) (*Store, error) {
	componentLogger := logger.With().Str("component", "Store").Logger()
	componentLogger.Info().Str("db_path", cfg.DatabasePath).Msg("Initializing database connection")

	dbDir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "creating database directory "+dbDir)
	}

	dbInstance, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "opening database "+cfg.DatabasePath)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent checks.
	dbInstance.SetMaxOpenConns(1)

	store := &Store{
		db:     dbInstance,
		logger: componentLogger,
	}
	if err := store.initSchema(); err != nil {
		_ = store.Close()
		return nil, errorwrapper.WrapError(err, "initializing schema")
	}

	componentLogger.Info().Str("path", cfg.DatabasePath).Msg("Database initialized and schema verified")
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS monitors (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		css_selector TEXT NOT NULL DEFAULT '',
		item_name TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'auto',
		check_interval_seconds INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		notifications_enabled INTEGER NOT NULL DEFAULT 1,
		current_value TEXT NOT NULL DEFAULT '',
		previous_value TEXT NOT NULL DEFAULT '',
		last_checked_at DATETIME,
		last_changed_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_monitors_owner ON monitors(owner_id);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		monitor_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		severity TEXT NOT NULL,
		data TEXT NOT NULL DEFAULT '{}',
		read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_owner ON notifications(owner_id, created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

const monitorColumns = `id, owner_id, name, url, kind, css_selector, item_name, category,
	check_interval_seconds, active, notifications_enabled, current_value, previous_value,
	last_checked_at, last_changed_at, created_at, updated_at`

// SaveMonitor inserts a monitor or replaces every column of an existing one.
func (s *Store) SaveMonitor(ctx context.Context, m *models.Monitor) error {
	query := `INSERT INTO monitors (` + monitorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			url = excluded.url,
			kind = excluded.kind,
			css_selector = excluded.css_selector,
			item_name = excluded.item_name,
			category = excluded.category,
			check_interval_seconds = excluded.check_interval_seconds,
			active = excluded.active,
			notifications_enabled = excluded.notifications_enabled,
			current_value = excluded.current_value,
			previous_value = excluded.previous_value,
			last_checked_at = excluded.last_checked_at,
			last_changed_at = excluded.last_changed_at,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.OwnerID, m.Name, m.URL, string(m.Kind), m.CSSSelector, m.ItemName, string(m.Category),
		m.CheckIntervalSeconds, m.Active, m.NotificationsEnabled, m.CurrentValue, m.PreviousValue,
		nullTime(m.LastCheckedAt), nullTime(m.LastChangedAt), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return errorwrapper.WrapError(err, "saving monitor "+m.ID)
	}
	s.logger.Debug().Str("monitor_id", m.ID).Msg("Monitor saved")
	return nil
}

// GetMonitor fetches one monitor by ID.
func (s *Store) GetMonitor(ctx context.Context, id string) (*models.Monitor, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitors WHERE id = ?`
	m, err := scanMonitor(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errorwrapper.ErrMonitorNotFound
		}
		return nil, errorwrapper.WrapError(err, "querying monitor "+id)
	}
	return m, nil
}

// LoadActiveMonitors returns every monitor flagged active, for scheduling.
func (s *Store) LoadActiveMonitors(ctx context.Context) ([]*models.Monitor, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitors WHERE active = 1 ORDER BY created_at`
	return s.queryMonitors(ctx, query)
}

// ListMonitorsByOwner returns all of an owner's monitors, newest first.
func (s *Store) ListMonitorsByOwner(ctx context.Context, ownerID string) ([]*models.Monitor, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitors WHERE owner_id = ? ORDER BY created_at DESC`
	return s.queryMonitors(ctx, query, ownerID)
}

func (s *Store) queryMonitors(ctx context.Context, query string, args ...any) ([]*models.Monitor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "querying monitors")
	}
	defer rows.Close()

	var monitors []*models.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "scanning monitor row")
		}
		monitors = append(monitors, m)
	}
	return monitors, rows.Err()
}

// ListStaleMonitors returns active monitors that have never been checked or
// whose last check predates the cutoff. Useful for spotting monitors the
// scheduler has silently lost.
func (s *Store) ListStaleMonitors(ctx context.Context, cutoff time.Time) ([]*models.Monitor, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitors
		WHERE active = 1 AND (last_checked_at IS NULL OR last_checked_at < ?)
		ORDER BY last_checked_at`
	return s.queryMonitors(ctx, query, cutoff)
}

// UpdateMonitorValues persists only the check-cycle fields of a monitor: the
// value pair and the check/change timestamps. User-editable fields are not
// touched, so a concurrent edit cannot be overwritten by a finishing check.
func (s *Store) UpdateMonitorValues(ctx context.Context, m *models.Monitor) error {
	query := `UPDATE monitors SET current_value = ?, previous_value = ?,
		last_checked_at = ?, last_changed_at = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query,
		m.CurrentValue, m.PreviousValue,
		nullTime(m.LastCheckedAt), nullTime(m.LastChangedAt), time.Now().UTC(), m.ID)
	if err != nil {
		return errorwrapper.WrapError(err, "updating monitor values for "+m.ID)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errorwrapper.ErrMonitorNotFound
	}
	return nil
}

// DeleteMonitor removes a monitor and its notifications in one transaction,
// so a failure partway through never leaves orphaned notification rows.
func (s *Store) DeleteMonitor(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errorwrapper.WrapError(err, "starting delete for monitor "+id)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM monitors WHERE id = ?`, id)
	if err != nil {
		return errorwrapper.WrapError(err, "deleting monitor "+id)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errorwrapper.ErrMonitorNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE monitor_id = ?`, id); err != nil {
		return errorwrapper.WrapError(err, "deleting notifications for monitor "+id)
	}
	if err := tx.Commit(); err != nil {
		return errorwrapper.WrapError(err, "committing delete for monitor "+id)
	}
	s.logger.Info().Str("monitor_id", id).Msg("Monitor deleted")
	return nil
}

// SaveNotification persists a notification; the structured data is stored as JSON.
func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return errorwrapper.WrapError(err, "encoding notification data")
	}

	query := `INSERT INTO notifications (id, owner_id, monitor_id, title, message, severity, data, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		n.ID, n.OwnerID, n.MonitorID, n.Title, n.Message, string(n.Severity), string(data), n.Read, n.CreatedAt)
	if err != nil {
		return errorwrapper.WrapError(err, "saving notification "+n.ID)
	}
	return nil
}

// ListNotifications returns an owner's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, ownerID string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, owner_id, monitor_id, title, message, severity, data, read, created_at
		FROM notifications WHERE owner_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "querying notifications")
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		var severity, data string
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.MonitorID, &n.Title, &n.Message, &severity, &data, &n.Read, &n.CreatedAt); err != nil {
			return nil, errorwrapper.WrapError(err, "scanning notification row")
		}
		n.Severity = models.Severity(severity)
		if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
			return nil, errorwrapper.WrapError(err, "decoding notification data for "+n.ID)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return errorwrapper.WrapError(err, "marking notification read "+id)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errorwrapper.NewError("notification not found: %s", id)
	}
	return nil
}

// DeleteExpiredNotifications removes notifications created before the cutoff
// and returns how many were removed.
func (s *Store) DeleteExpiredNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, errorwrapper.WrapError(err, "deleting expired notifications")
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errorwrapper.WrapError(err, "counting deleted notifications")
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Expired notifications purged")
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row rowScanner) (*models.Monitor, error) {
	var m models.Monitor
	var kind, category string
	var lastChecked, lastChanged sql.NullTime
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.URL, &kind, &m.CSSSelector, &m.ItemName, &category,
		&m.CheckIntervalSeconds, &m.Active, &m.NotificationsEnabled, &m.CurrentValue, &m.PreviousValue,
		&lastChecked, &lastChanged, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = models.MonitorKind(kind)
	m.Category = models.Category(category)
	if lastChecked.Valid {
		t := lastChecked.Time
		m.LastCheckedAt = &t
	}
	if lastChanged.Valid {
		t := lastChanged.Time
		m.LastChangedAt = &t
	}
	return &m, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
