package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*SessionManager, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewSessionManager(testStands(), StoreOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, ttl)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestSessionManager_CreateGetDelete(t *testing.T) {
	m, _ := newTestManager(0)

	sess, err := m.Create()
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, m.Delete(sess.ID))
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(sess.ID), ErrSessionNotFound)
}

func TestSessionManager_StoresAreIsolated(t *testing.T) {
	m, _ := newTestManager(0)
	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	a.Store.SearchBySuburb("Avondale")
	assert.Len(t, a.Store.Stands(), 2)
	assert.Empty(t, b.Store.Stands())
}

func TestSessionManager_Sweep(t *testing.T) {
	m, now := newTestManager(10 * time.Minute)

	idle, err := m.Create()
	require.NoError(t, err)
	active, err := m.Create()
	require.NoError(t, err)
	watched, err := m.Create()
	require.NoError(t, err)

	_, cancel := watched.Store.Subscribe()
	defer cancel()

	*now = now.Add(8 * time.Minute)
	_, err = m.Get(active.ID)
	require.NoError(t, err)

	*now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
	_, err = m.Get(watched.ID)
	assert.NoError(t, err)
}

func TestSessionManager_WatchRefreshesOnCancel(t *testing.T) {
	m, now := newTestManager(10 * time.Minute)
	sess, err := m.Create()
	require.NoError(t, err)

	_, cancel := m.Watch(sess)

	*now = now.Add(30 * time.Minute)
	assert.Equal(t, 0, m.Sweep())

	cancel()
	assert.Equal(t, *now, sess.LastSeen())
	assert.Equal(t, 0, m.Sweep())

	*now = now.Add(11 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
}

func TestSessionManager_Suggestions(t *testing.T) {
	m, _ := newTestManager(0)
	assert.Equal(t, []string{"Harare", "Bulawayo"}, slices.Collect(m.Cities()))
	assert.Equal(t, slices.Collect(Locations(testStands())), slices.Collect(m.Locations()))
}

func TestSessionManager_SweepDisabled(t *testing.T) {
	m, now := newTestManager(0)
	_, err := m.Create()
	require.NoError(t, err)

	*now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())

	// Returns immediately when eviction is disabled.
	m.RunSweeper(context.Background(), time.Millisecond)
}

func TestSessionManager_CloseAll(t *testing.T) {
	m, _ := newTestManager(0)
	sess, err := m.Create()
	require.NoError(t, err)
	ch, _ := sess.Store.Subscribe()
	<-ch

	m.CloseAll()
	assert.Equal(t, 0, m.Len())
	_, ok := <-ch
	assert.False(t, ok)
}
