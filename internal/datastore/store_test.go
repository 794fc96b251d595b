package datastore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.StorageConfig{DatabasePath: filepath.Join(t.TempDir(), "clarifi-test.db")}
	store, err := NewStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func storedMonitor() models.Monitor {
	m := models.NewMonitor("owner-1", "BTC watch", "https://example.com/btc", models.MonitorKindItemSearch)
	m.ItemName = "Bitcoin"
	m.Category = models.CategoryCrypto
	return m
}

func TestStore_SaveAndGetMonitor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := storedMonitor()

	require.NoError(t, store.SaveMonitor(ctx, &m))

	loaded, err := store.GetMonitor(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, "BTC watch", loaded.Name)
	assert.Equal(t, models.MonitorKindItemSearch, loaded.Kind)
	assert.Equal(t, models.CategoryCrypto, loaded.Category)
	assert.True(t, loaded.Active)
	assert.Nil(t, loaded.LastCheckedAt)
}

func TestStore_GetMonitor_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetMonitor(context.Background(), "missing")
	assert.True(t, errors.Is(err, errorwrapper.ErrMonitorNotFound))
}

func TestStore_SaveMonitor_UpsertsExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := storedMonitor()
	require.NoError(t, store.SaveMonitor(ctx, &m))

	m.Name = "Renamed watch"
	m.CheckIntervalSeconds = 600
	require.NoError(t, store.SaveMonitor(ctx, &m))

	loaded, err := store.GetMonitor(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed watch", loaded.Name)
	assert.Equal(t, 600, loaded.CheckIntervalSeconds)

	monitors, err := store.ListMonitorsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, monitors, 1)
}

func TestStore_LoadActiveMonitors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := storedMonitor()
	require.NoError(t, store.SaveMonitor(ctx, &active))

	inactive := storedMonitor()
	inactive.Active = false
	require.NoError(t, store.SaveMonitor(ctx, &inactive))

	monitors, err := store.LoadActiveMonitors(ctx)
	require.NoError(t, err)
	require.Len(t, monitors, 1)
	assert.Equal(t, active.ID, monitors[0].ID)
}

func TestStore_UpdateMonitorValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := storedMonitor()
	require.NoError(t, store.SaveMonitor(ctx, &m))

	now := time.Now().UTC()
	m.PreviousValue = "Bitcoin: $27,000.00"
	m.CurrentValue = "Bitcoin: $27,431.12"
	m.LastCheckedAt = &now
	m.LastChangedAt = &now
	require.NoError(t, store.UpdateMonitorValues(ctx, &m))

	loaded, err := store.GetMonitor(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin: $27,431.12", loaded.CurrentValue)
	assert.Equal(t, "Bitcoin: $27,000.00", loaded.PreviousValue)
	require.NotNil(t, loaded.LastCheckedAt)
	assert.WithinDuration(t, now, *loaded.LastCheckedAt, time.Second)
}

func TestStore_ListStaleMonitors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	neverChecked := storedMonitor()
	require.NoError(t, store.SaveMonitor(ctx, &neverChecked))

	fresh := storedMonitor()
	now := time.Now().UTC()
	fresh.LastCheckedAt = &now
	require.NoError(t, store.SaveMonitor(ctx, &fresh))

	stale := storedMonitor()
	old := now.Add(-2 * time.Hour)
	stale.LastCheckedAt = &old
	require.NoError(t, store.SaveMonitor(ctx, &stale))

	monitors, err := store.ListStaleMonitors(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, monitors, 2)

	ids := []string{monitors[0].ID, monitors[1].ID}
	assert.Contains(t, ids, neverChecked.ID)
	assert.Contains(t, ids, stale.ID)
	assert.NotContains(t, ids, fresh.ID)
}

func TestStore_UpdateMonitorValues_DeletedMonitor(t *testing.T) {
	store := newTestStore(t)
	m := storedMonitor()

	err := store.UpdateMonitorValues(context.Background(), &m)
	assert.True(t, errors.Is(err, errorwrapper.ErrMonitorNotFound))
}

func TestStore_DeleteMonitor_CascadesNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := storedMonitor()
	require.NoError(t, store.SaveMonitor(ctx, &m))

	n := models.NewNotification(m.OwnerID, m.ID, "Change Detected: BTC watch", "msg", models.SeverityInfo, models.NotificationData{MonitorID: m.ID})
	require.NoError(t, store.SaveNotification(ctx, &n))

	other := storedMonitor()
	require.NoError(t, store.SaveMonitor(ctx, &other))
	kept := models.NewNotification(other.OwnerID, other.ID, "kept", "msg", models.SeverityInfo, models.NotificationData{MonitorID: other.ID})
	require.NoError(t, store.SaveNotification(ctx, &kept))

	require.NoError(t, store.DeleteMonitor(ctx, m.ID))

	_, err := store.GetMonitor(ctx, m.ID)
	assert.True(t, errors.Is(err, errorwrapper.ErrMonitorNotFound))

	// only the deleted monitor's notifications go with it
	notifications, err := store.ListNotifications(ctx, m.OwnerID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, kept.ID, notifications[0].ID)

	assert.True(t, errors.Is(store.DeleteMonitor(ctx, m.ID), errorwrapper.ErrMonitorNotFound))
}

func TestStore_Notifications_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := models.NotificationData{
		MonitorID:    "mon-1",
		MonitorName:  "BTC watch",
		URL:          "https://example.com/btc",
		CurrentValue: "Bitcoin: $27,431.12",
		ChangeKind:   models.ChangeKindIncrease,
		Confidence:   0.9,
		PriceDelta: &models.PriceDelta{
			Previous: "$27,000.00",
			Current:  "$27,431.12",
			Amount:   431.12,
			Percent:  1.5967,
			Kind:     models.ChangeKindIncrease,
		},
	}
	n := models.NewNotification("owner-1", "mon-1", "Change Detected: BTC watch", "📈 message", models.SeveritySuccess, data)
	require.NoError(t, store.SaveNotification(ctx, &n))

	notifications, err := store.ListNotifications(ctx, "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	loaded := notifications[0]
	assert.Equal(t, n.ID, loaded.ID)
	assert.Equal(t, models.SeveritySuccess, loaded.Severity)
	assert.False(t, loaded.Read)
	require.NotNil(t, loaded.Data.PriceDelta)
	assert.InDelta(t, 431.12, loaded.Data.PriceDelta.Amount, 0.001)

	require.NoError(t, store.MarkNotificationRead(ctx, n.ID))
	notifications, err = store.ListNotifications(ctx, "owner-1", 10)
	require.NoError(t, err)
	assert.True(t, notifications[0].Read)
}

func TestStore_DeleteExpiredNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := models.NewNotification("owner-1", "mon-1", "old", "msg", models.SeverityInfo, models.NotificationData{})
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -40)
	require.NoError(t, store.SaveNotification(ctx, &old))

	fresh := models.NewNotification("owner-1", "mon-1", "fresh", "msg", models.SeverityInfo, models.NotificationData{})
	require.NoError(t, store.SaveNotification(ctx, &fresh))

	removed, err := store.DeleteExpiredNotifications(ctx, time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	notifications, err := store.ListNotifications(ctx, "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, fresh.ID, notifications[0].ID)
}
