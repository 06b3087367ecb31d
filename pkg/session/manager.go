package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

// Recorder receives session lifecycle events. Implementations must treat
// every call as best-effort: a recording failure is theirs to log and
// swallow, never to surface.
type Recorder interface {
	RecordSessionEvent(ctx context.Context, userID, sessionID, eventType string, device *DeviceInfo)
}

// Manager owns the session lifecycle: issuing, validating, refreshing,
// deleting and sweeping sessions.
type Manager struct {
	store    tabular.Store
	recorder Recorder
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig overrides the default lifetime configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithRecorder attaches a lifecycle event recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithLogger sets the logger for internal diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithTimeFunc injects the clock. Intended for tests.
func WithTimeFunc(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a session manager backed by the given store.
// Panics when the configured refresh lifetime does not exceed the access
// lifetime, since every expiry decision depends on that ordering.
func New(store tabular.Store, opts ...Option) *Manager {
	if store == nil {
		panic("session: store is required")
	}

	m := &Manager{
		store: store,
		cfg:   DefaultConfig(),
		log:   slog.Default(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cfg.AccessTTL <= 0 || m.cfg.RefreshTTL <= m.cfg.AccessTTL {
		panic("session: refresh TTL must exceed access TTL")
	}

	return m
}

// Create issues a new session for the user and returns its token pair.
// The stored session ID is never part of the result.
func (m *Manager) Create(ctx context.Context, userID string, device DeviceInfo) (*TokenPair, error) {
	access, refresh, err := generateTokenPair()
	if err != nil {
		m.log.ErrorContext(ctx, "session token generation failed", "error", err)
		return nil, ErrTokenGeneration
	}

	now := m.now().UTC()
	s := &Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        now.Add(m.cfg.AccessTTL),
		RefreshExpiresAt: now.Add(m.cfg.RefreshTTL),
		DeviceInfo:       device,
		CreatedAt:        now,
		LastActivity:     now,
	}

	stored, err := m.store.Insert(ctx, TableSessions, s.toRow())
	if err != nil || stored == nil {
		m.log.ErrorContext(ctx, "session create failed", "user_id", userID, "error", err)
		return nil, ErrStoreWrite
	}

	m.log.InfoContext(ctx, "session created", "user_id", userID, "session_id", s.ID)
	m.recordEvent(ctx, userID, s.ID, EventCreated, &device)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.ExpiresAt,
	}, nil
}

// Validate resolves an access token to its owning user ID and bumps the
// session's last activity. An expired session is deleted on the spot; expiry
// enforcement does not wait for the background sweep.
//
// Every negative outcome is ErrSessionNotFound; see the errors package
// commentary for why the causes are not distinguished.
func (m *Manager) Validate(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", ErrSessionNotFound
	}

	rows, err := m.store.Select(ctx, TableSessions, tabular.Eq(colAccessToken, accessToken))
	if err != nil {
		m.log.ErrorContext(ctx, "session lookup failed", "token", redact(accessToken), "error", err)
		return "", ErrSessionNotFound
	}
	if len(rows) == 0 {
		m.log.DebugContext(ctx, "no session for token", "token", redact(accessToken))
		return "", ErrSessionNotFound
	}

	s, err := sessionFromRow(rows[0])
	if err != nil {
		m.log.ErrorContext(ctx, "malformed session row", "token", redact(accessToken), "error", err)
		return "", ErrSessionNotFound
	}

	now := m.now().UTC()
	if !now.Before(s.ExpiresAt) {
		if _, err := m.store.Delete(ctx, TableSessions, tabular.Eq(colID, s.ID)); err != nil {
			m.log.ErrorContext(ctx, "expired session delete failed", "session_id", s.ID, "error", err)
		}
		m.log.InfoContext(ctx, "session expired", "user_id", s.UserID, "session_id", s.ID)
		m.recordEvent(ctx, s.UserID, s.ID, EventExpired, nil)
		return "", ErrSessionNotFound
	}

	// Best-effort: a failed activity write must not invalidate a live session.
	if _, err := m.store.Update(ctx, TableSessions,
		tabular.Row{colLastActivity: now}, tabular.Eq(colID, s.ID)); err != nil {
		m.log.WarnContext(ctx, "session activity update failed", "session_id", s.ID, "error", err)
	}
	m.recordEvent(ctx, s.UserID, s.ID, EventActivity, nil)

	return s.UserID, nil
}

// Refresh rotates a session: a fresh pair is minted and the old row removed,
// so the previous tokens cannot be replayed. The new session is created
// before the old one is deleted; if creation fails the old session stays
// intact and the rotation is a no-op for the caller.
func (m *Manager) Refresh(ctx context.Context, refreshToken string, device DeviceInfo) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrSessionNotFound
	}

	rows, err := m.store.Select(ctx, TableSessions, tabular.Eq(colRefreshToken, refreshToken))
	if err != nil {
		m.log.ErrorContext(ctx, "refresh lookup failed", "token", redact(refreshToken), "error", err)
		return nil, ErrSessionNotFound
	}
	if len(rows) == 0 {
		m.log.DebugContext(ctx, "no session for refresh token", "token", redact(refreshToken))
		return nil, ErrSessionNotFound
	}

	old, err := sessionFromRow(rows[0])
	if err != nil {
		m.log.ErrorContext(ctx, "malformed session row", "token", redact(refreshToken), "error", err)
		return nil, ErrSessionNotFound
	}

	now := m.now().UTC()
	if !now.Before(old.RefreshExpiresAt) {
		if _, err := m.store.Delete(ctx, TableSessions, tabular.Eq(colID, old.ID)); err != nil {
			m.log.ErrorContext(ctx, "expired session delete failed", "session_id", old.ID, "error", err)
		}
		m.log.InfoContext(ctx, "refresh token expired", "user_id", old.UserID)
		return nil, ErrSessionNotFound
	}

	pair, err := m.Create(ctx, old.UserID, device)
	if err != nil {
		// Old session left untouched: the caller keeps a working pair.
		m.log.ErrorContext(ctx, "session rotation failed", "user_id", old.UserID, "error", err)
		return nil, ErrSessionNotFound
	}

	// A crash or failure here leaves two live sessions for the user until the
	// old one expires. Accepted: the store offers no cross-row transactions,
	// and an extra valid session is safer than none.
	if _, err := m.store.Delete(ctx, TableSessions, tabular.Eq(colID, old.ID)); err != nil {
		m.log.ErrorContext(ctx, "old session delete failed after rotation", "session_id", old.ID, "error", err)
	}

	m.log.InfoContext(ctx, "session refreshed", "user_id", old.UserID)
	return pair, nil
}

// Delete removes the session matching the access token and reports whether a
// row was actually removed. Deleting an already-deleted token is not an
// error; it returns false.
func (m *Manager) Delete(ctx context.Context, accessToken string) bool {
	if accessToken == "" {
		return false
	}

	removed, err := m.store.Delete(ctx, TableSessions, tabular.Eq(colAccessToken, accessToken))
	if err != nil {
		m.log.ErrorContext(ctx, "session delete failed", "token", redact(accessToken), "error", err)
		return false
	}
	if len(removed) > 0 {
		m.log.InfoContext(ctx, "session deleted", "token", redact(accessToken))
	}
	return len(removed) > 0
}

// DeleteAllForUser removes every session the user owns (logout everywhere).
// Zero existing sessions is still a success.
func (m *Manager) DeleteAllForUser(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}

	if _, err := m.store.Delete(ctx, TableSessions, tabular.Eq(colUserID, userID)); err != nil {
		m.log.ErrorContext(ctx, "user sessions delete failed", "user_id", userID, "error", err)
		return false
	}
	m.log.InfoContext(ctx, "all sessions deleted for user", "user_id", userID)
	return true
}

// CleanupExpired removes every session whose access expiry has passed and
// returns the count. It backstops the lazy deletion in Validate for tokens
// that are never presented again; correctness never depends on how often it
// runs, and overlapping runs are safe.
func (m *Manager) CleanupExpired(ctx context.Context) int {
	removed, err := m.store.Delete(ctx, TableSessions, tabular.Lt(colExpiresAt, m.now().UTC()))
	if err != nil {
		m.log.ErrorContext(ctx, "session cleanup failed", "error", err)
		return 0
	}
	m.log.InfoContext(ctx, "expired sessions cleaned up", "count", len(removed))
	return len(removed)
}

// StartSweep runs CleanupExpired on the configured interval until the context
// is canceled.
func (m *Manager) StartSweep(ctx context.Context) {
	interval := m.cfg.SweepInterval
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanupExpired(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) recordEvent(ctx context.Context, userID, sessionID, eventType string, device *DeviceInfo) {
	if m.recorder == nil {
		return
	}
	m.recorder.RecordSessionEvent(ctx, userID, sessionID, eventType, device)
}
