package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServiceStore struct {
	monitors map[string]*models.Monitor
}

func newFakeServiceStore() *fakeServiceStore {
	return &fakeServiceStore{monitors: make(map[string]*models.Monitor)}
}

func (f *fakeServiceStore) GetMonitor(_ context.Context, id string) (*models.Monitor, error) {
	m, ok := f.monitors[id]
	if !ok {
		return nil, errorwrapper.ErrMonitorNotFound
	}
	clone := *m
	return &clone, nil
}

func (f *fakeServiceStore) SaveMonitor(_ context.Context, m *models.Monitor) error {
	clone := *m
	f.monitors[m.ID] = &clone
	return nil
}

func (f *fakeServiceStore) DeleteMonitor(_ context.Context, id string) error {
	if _, ok := f.monitors[id]; !ok {
		return errorwrapper.ErrMonitorNotFound
	}
	delete(f.monitors, id)
	return nil
}

func (f *fakeServiceStore) ListMonitorsByOwner(_ context.Context, ownerID string) ([]*models.Monitor, error) {
	var out []*models.Monitor
	for _, m := range f.monitors {
		if m.OwnerID == ownerID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeScheduler struct {
	upserts []string
	removes []string
}

func (f *fakeScheduler) Upsert(m *models.Monitor) error {
	f.upserts = append(f.upserts, m.ID)
	return nil
}

func (f *fakeScheduler) Remove(monitorID string) {
	f.removes = append(f.removes, monitorID)
}

func newTestService() (*Service, *fakeServiceStore, *fakeScheduler) {
	store := newFakeServiceStore()
	sched := &fakeScheduler{}
	return NewService(store, sched, zerolog.Nop()), store, sched
}

func validMonitor() *models.Monitor {
	m := models.NewMonitor("owner-1", "BTC watch", "https://example.com/btc", models.MonitorKindItemSearch)
	m.ItemName = "Bitcoin"
	return &m
}

func TestService_Create_SchedulesActiveMonitor(t *testing.T) {
	svc, store, sched := newTestService()
	m := validMonitor()

	require.NoError(t, svc.Create(context.Background(), m))

	assert.Contains(t, store.monitors, m.ID)
	assert.Equal(t, []string{m.ID}, sched.upserts)
}

func TestService_Create_InactiveMonitorNotScheduled(t *testing.T) {
	svc, store, sched := newTestService()
	m := validMonitor()
	m.Active = false

	require.NoError(t, svc.Create(context.Background(), m))

	assert.Contains(t, store.monitors, m.ID)
	assert.Empty(t, sched.upserts)
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(m *models.Monitor)
	}{
		{"missing name", func(m *models.Monitor) { m.Name = " " }},
		{"relative url", func(m *models.Monitor) { m.URL = "/relative/path" }},
		{"bad scheme", func(m *models.Monitor) { m.URL = "ftp://example.com" }},
		{"selector kind without selector", func(m *models.Monitor) {
			m.Kind = models.MonitorKindSelector
			m.CSSSelector = ""
		}},
		{"item-search without item name", func(m *models.Monitor) { m.ItemName = "" }},
		{"unknown kind", func(m *models.Monitor) { m.Kind = "screenshot" }},
		{"unknown category", func(m *models.Monitor) { m.Category = "weather" }},
		{"interval below minimum", func(m *models.Monitor) { m.CheckIntervalSeconds = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMonitor()
			tt.mutate(m)

			err := svc.Create(context.Background(), m)
			require.Error(t, err)

			var validationErr *errorwrapper.ValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}
}

func TestService_Update_DeactivationUnschedules(t *testing.T) {
	svc, _, sched := newTestService()
	m := validMonitor()
	require.NoError(t, svc.Create(context.Background(), m))

	inactive := false
	updated, err := svc.Update(context.Background(), m.ID, models.MonitorUpdate{Active: &inactive})
	require.NoError(t, err)

	assert.False(t, updated.Active)
	assert.Equal(t, []string{m.ID}, sched.removes)
}

func TestService_Update_IntervalReschedules(t *testing.T) {
	svc, store, sched := newTestService()
	m := validMonitor()
	require.NoError(t, svc.Create(context.Background(), m))

	interval := 120
	updated, err := svc.Update(context.Background(), m.ID, models.MonitorUpdate{CheckIntervalSeconds: &interval})
	require.NoError(t, err)

	assert.Equal(t, 120, updated.CheckIntervalSeconds)
	assert.Equal(t, 120, store.monitors[m.ID].CheckIntervalSeconds)
	assert.Equal(t, []string{m.ID, m.ID}, sched.upserts)
}

func TestService_Update_UnknownMonitor(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Update(context.Background(), "missing", models.MonitorUpdate{})
	assert.True(t, errors.Is(err, errorwrapper.ErrMonitorNotFound))
}

func TestService_Delete_UnschedulesFirst(t *testing.T) {
	svc, store, sched := newTestService()
	m := validMonitor()
	require.NoError(t, svc.Create(context.Background(), m))

	require.NoError(t, svc.Delete(context.Background(), m.ID))

	assert.NotContains(t, store.monitors, m.ID)
	assert.Equal(t, []string{m.ID}, sched.removes)
}

func TestService_List(t *testing.T) {
	svc, _, _ := newTestService()
	first := validMonitor()
	require.NoError(t, svc.Create(context.Background(), first))

	second := validMonitor()
	second.OwnerID = "owner-2"
	require.NoError(t, svc.Create(context.Background(), second))

	owned, err := svc.List(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, first.ID, owned[0].ID)
}
