package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyStore wraps a store and fails selected operations on demand.
type flakyStore struct {
	tabular.Store
	failInsert bool
	failSelect bool
	failUpdate bool
	failDelete bool
	selects    int
}

var errBackendDown = errors.New("backend down")

func (f *flakyStore) Insert(ctx context.Context, table string, row tabular.Row) (tabular.Row, error) {
	if f.failInsert {
		return nil, errBackendDown
	}
	return f.Store.Insert(ctx, table, row)
}

func (f *flakyStore) Select(ctx context.Context, table string, preds ...tabular.Predicate) ([]tabular.Row, error) {
	f.selects++
	if f.failSelect {
		return nil, errBackendDown
	}
	return f.Store.Select(ctx, table, preds...)
}

func (f *flakyStore) Update(ctx context.Context, table string, patch tabular.Row, preds ...tabular.Predicate) ([]tabular.Row, error) {
	if f.failUpdate {
		return nil, errBackendDown
	}
	return f.Store.Update(ctx, table, patch, preds...)
}

func (f *flakyStore) Delete(ctx context.Context, table string, preds ...tabular.Predicate) ([]tabular.Row, error) {
	if f.failDelete {
		return nil, errBackendDown
	}
	return f.Store.Delete(ctx, table, preds...)
}

type recordedEvent struct {
	userID    string
	sessionID string
	eventType string
}

type captureRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *captureRecorder) RecordSessionEvent(_ context.Context, userID, sessionID, eventType string, _ *session.DeviceInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{userID, sessionID, eventType})
}

func (r *captureRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.eventType
	}
	return out
}

func testDevice() session.DeviceInfo {
	return session.DeviceInfo{UserAgent: "test-agent", IPAddress: "203.0.113.7", Platform: "Linux"}
}

func TestManager_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues distinct tokens with access expiry", func(t *testing.T) {
		clock := newFakeClock()
		store := tabular.NewMemoryStore()
		mgr := session.New(store, session.WithTimeFunc(clock.Now))

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		assert.Equal(t, clock.Now().Add(time.Hour), pair.ExpiresAt)
	})

	t.Run("persists one row per session", func(t *testing.T) {
		store := tabular.NewMemoryStore()
		mgr := session.New(store)

		_, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)
		_, err = mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		// Multi-device: two live sessions for the same user.
		assert.Equal(t, 2, store.Len(session.TableSessions))
	})

	t.Run("store write failure", func(t *testing.T) {
		store := &flakyStore{Store: tabular.NewMemoryStore(), failInsert: true}
		mgr := session.New(store)

		pair, err := mgr.Create(ctx, "u1", testDevice())
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, session.ErrStoreWrite)
	})

	t.Run("emits created event", func(t *testing.T) {
		rec := &captureRecorder{}
		mgr := session.New(tabular.NewMemoryStore(), session.WithRecorder(rec))

		_, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)
		assert.Equal(t, []string{session.EventCreated}, rec.types())
	})
}

func TestManager_Validate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns user and bumps last activity", func(t *testing.T) {
		clock := newFakeClock()
		store := tabular.NewMemoryStore()
		rec := &captureRecorder{}
		mgr := session.New(store, session.WithTimeFunc(clock.Now), session.WithRecorder(rec))

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		clock.Advance(10 * time.Minute)
		userID, err := mgr.Validate(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)

		rows, err := store.Select(ctx, session.TableSessions)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		last, ok := rows[0].Time("last_activity")
		require.True(t, ok)
		assert.Equal(t, clock.Now(), last)
		assert.Equal(t, []string{session.EventCreated, session.EventActivity}, rec.types())
	})

	t.Run("empty token skips the store", func(t *testing.T) {
		store := &flakyStore{Store: tabular.NewMemoryStore()}
		mgr := session.New(store)

		_, err := mgr.Validate(ctx, "")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.Zero(t, store.selects)
	})

	t.Run("unknown token", func(t *testing.T) {
		mgr := session.New(tabular.NewMemoryStore())

		_, err := mgr.Validate(ctx, "no-such-token")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("expired session is deleted and reported absent", func(t *testing.T) {
		clock := newFakeClock()
		store := tabular.NewMemoryStore()
		rec := &captureRecorder{}
		mgr := session.New(store, session.WithTimeFunc(clock.Now), session.WithRecorder(rec))

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		clock.Advance(61 * time.Minute)
		_, err = mgr.Validate(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.Zero(t, store.Len(session.TableSessions))
		assert.Contains(t, rec.types(), session.EventExpired)

		// Second presentation of the same dead token must not error differently.
		_, err = mgr.Validate(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("expiry boundary is inclusive", func(t *testing.T) {
		clock := newFakeClock()
		mgr := session.New(tabular.NewMemoryStore(), session.WithTimeFunc(clock.Now))

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		clock.Advance(time.Hour) // now == expires_at
		_, err = mgr.Validate(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("store failure reads as not found", func(t *testing.T) {
		store := &flakyStore{Store: tabular.NewMemoryStore(), failSelect: true}
		mgr := session.New(store)

		_, err := mgr.Validate(ctx, "whatever")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("activity write failure keeps session valid", func(t *testing.T) {
		store := &flakyStore{Store: tabular.NewMemoryStore()}
		mgr := session.New(store)

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		store.failUpdate = true
		userID, err := mgr.Validate(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})
}

func TestManager_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates to a disjoint pair", func(t *testing.T) {
		store := tabular.NewMemoryStore()
		mgr := session.New(store)

		old, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		fresh, err := mgr.Refresh(ctx, old.RefreshToken, testDevice())
		require.NoError(t, err)
		assert.NotEqual(t, old.AccessToken, fresh.AccessToken)
		assert.NotEqual(t, old.RefreshToken, fresh.RefreshToken)

		// Old pair is dead, new one resolves the same user.
		_, err = mgr.Validate(ctx, old.AccessToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		userID, err := mgr.Validate(ctx, fresh.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
		assert.Equal(t, 1, store.Len(session.TableSessions))
	})

	t.Run("empty and unknown tokens", func(t *testing.T) {
		mgr := session.New(tabular.NewMemoryStore())

		_, err := mgr.Refresh(ctx, "", testDevice())
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		_, err = mgr.Refresh(ctx, "unknown", testDevice())
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("expired refresh token deletes the session", func(t *testing.T) {
		clock := newFakeClock()
		store := tabular.NewMemoryStore()
		mgr := session.New(store, session.WithTimeFunc(clock.Now))

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		clock.Advance(31 * 24 * time.Hour)
		_, err = mgr.Refresh(ctx, pair.RefreshToken, testDevice())
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.Zero(t, store.Len(session.TableSessions))
	})

	t.Run("rotation is a no-op when create fails", func(t *testing.T) {
		store := &flakyStore{Store: tabular.NewMemoryStore()}
		mgr := session.New(store)

		old, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		store.failInsert = true
		_, err = mgr.Refresh(ctx, old.RefreshToken, testDevice())
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		// Original tokens still work.
		store.failInsert = false
		userID, err := mgr.Validate(ctx, old.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		mgr := session.New(tabular.NewMemoryStore())

		pair, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)

		assert.True(t, mgr.Delete(ctx, pair.AccessToken))
		assert.False(t, mgr.Delete(ctx, pair.AccessToken))
	})

	t.Run("empty token", func(t *testing.T) {
		mgr := session.New(tabular.NewMemoryStore())
		assert.False(t, mgr.Delete(ctx, ""))
	})

	t.Run("store failure degrades to false", func(t *testing.T) {
		store := &flakyStore{Store: tabular.NewMemoryStore(), failDelete: true}
		mgr := session.New(store)
		assert.False(t, mgr.Delete(ctx, "token"))
	})
}

func TestManager_DeleteAllForUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalidates every issued token", func(t *testing.T) {
		mgr := session.New(tabular.NewMemoryStore())

		first, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)
		second, err := mgr.Create(ctx, "u1", testDevice())
		require.NoError(t, err)
		other, err := mgr.Create(ctx, "u2", testDevice())
		require.NoError(t, err)

		assert.True(t, mgr.DeleteAllForUser(ctx, "u1"))

		_, err = mgr.Validate(ctx, first.AccessToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		_, err = mgr.Validate(ctx, second.AccessToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		userID, err := mgr.Validate(ctx, other.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u2", userID)
	})

	t.Run("succeeds with zero sessions", func(t *testing.T) {
		mgr := session.New(tabular.NewMemoryStore())
		assert.True(t, mgr.DeleteAllForUser(ctx, "nobody"))
	})
}

func TestManager_CleanupExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := newFakeClock()
	store := tabular.NewMemoryStore()
	mgr := session.New(store, session.WithTimeFunc(clock.Now))

	_, err := mgr.Create(ctx, "u1", testDevice())
	require.NoError(t, err)
	_, err = mgr.Create(ctx, "u2", testDevice())
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	survivor, err := mgr.Create(ctx, "u3", testDevice())
	require.NoError(t, err)

	clock.Advance(45 * time.Minute) // first two past 1h, third at 45m

	assert.Equal(t, 2, mgr.CleanupExpired(ctx))
	assert.Equal(t, 0, mgr.CleanupExpired(ctx))

	userID, err := mgr.Validate(ctx, survivor.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u3", userID)
}

// Mirrors the reference flow: create, validate, expire, refresh, validate.
func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := newFakeClock()
	mgr := session.New(tabular.NewMemoryStore(), session.WithTimeFunc(clock.Now))

	first, err := mgr.Create(ctx, "u1", testDevice())
	require.NoError(t, err)

	userID, err := mgr.Validate(ctx, first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	clock.Advance(61 * time.Minute)

	_, err = mgr.Validate(ctx, first.AccessToken)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// The refresh token is still inside its 30d window.
	second, err := mgr.Refresh(ctx, first.RefreshToken, testDevice())
	require.NoError(t, err)

	userID, err = mgr.Validate(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		session.New(tabular.NewMemoryStore(), session.WithConfig(session.Config{
			AccessTTL:  time.Hour,
			RefreshTTL: time.Hour,
		}))
	})
}
