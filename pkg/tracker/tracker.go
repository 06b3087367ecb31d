package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

// Tracker records session lifecycle events, authentication attempts and
// account-level actions as an append-only audit trail.
//
// Every Record method is fire-and-forget relative to the caller's primary
// operation: a failed insert is logged and swallowed. Creating a session
// must never fail because the audit row did not land.
type Tracker struct {
	store tabular.Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// WithTimeFunc injects the clock. Intended for tests.
func WithTimeFunc(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a tracker writing to the given store.
func New(store tabular.Store, opts ...Option) *Tracker {
	if store == nil {
		panic("tracker: store is required")
	}

	t := &Tracker{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordSessionEvent appends a session lifecycle event. Satisfies
// session.Recorder.
func (t *Tracker) RecordSessionEvent(ctx context.Context, userID, sessionID, eventType string, device *session.DeviceInfo) {
	row := tabular.Row{
		colID:        uuid.NewString(),
		colUserID:    userID,
		colSessionID: sessionID,
		colEventType: eventType,
		colTimestamp: t.now().UTC(),
	}
	if device != nil {
		if data, err := json.Marshal(device); err == nil {
			row["device_info"] = string(data)
		}
	}

	if _, err := t.store.Insert(ctx, TableSessionEvents, row); err != nil {
		t.log.ErrorContext(ctx, "failed to track session event",
			"event_type", eventType, "session_id", sessionID, "error", err)
		return
	}
	t.log.DebugContext(ctx, "session event tracked", "event_type", eventType, "session_id", sessionID)
}

// RecordAuthAttempt appends a login or registration attempt.
func (t *Tracker) RecordAuthAttempt(ctx context.Context, a AuthAttempt) {
	row := tabular.Row{
		colID:        uuid.NewString(),
		colEmail:     a.Email,
		colSuccess:   a.Success,
		colIPAddress: a.Device.IPAddress,
		colUserAgent: a.Device.UserAgent,
		colPlatform:  a.Device.Platform,
		colTimestamp: t.now().UTC(),
	}
	if a.Error != "" {
		row[colError] = a.Error
	}
	if a.UserID != "" {
		row[colUserID] = a.UserID
	}

	if _, err := t.store.Insert(ctx, TableAuthEvents, row); err != nil {
		t.log.ErrorContext(ctx, "failed to track auth attempt", "email", a.Email, "error", err)
		return
	}
	t.log.InfoContext(ctx, "auth attempt tracked", "email", a.Email, "success", a.Success)
}

// RecordPasswordReset appends a password reset attempt to the auth trail.
func (t *Tracker) RecordPasswordReset(ctx context.Context, email string, success bool, errMsg string, device session.DeviceInfo) {
	row := tabular.Row{
		colID:        uuid.NewString(),
		colEmail:     email,
		colSuccess:   success,
		colEventType: EventPasswordReset,
		colIPAddress: device.IPAddress,
		colUserAgent: device.UserAgent,
		colTimestamp: t.now().UTC(),
	}
	if errMsg != "" {
		row[colError] = errMsg
	}

	if _, err := t.store.Insert(ctx, TableAuthEvents, row); err != nil {
		t.log.ErrorContext(ctx, "failed to track password reset", "email", email, "error", err)
		return
	}
	t.log.InfoContext(ctx, "password reset tracked", "email", email, "success", success)
}

// RecordAccountAction appends an account-level action (profile update,
// deletion, subscription change).
func (t *Tracker) RecordAccountAction(ctx context.Context, userID, action string, success bool, errMsg string, device session.DeviceInfo) {
	row := tabular.Row{
		colID:        uuid.NewString(),
		colUserID:    userID,
		colAction:    action,
		colSuccess:   success,
		colIPAddress: device.IPAddress,
		colUserAgent: device.UserAgent,
		colTimestamp: t.now().UTC(),
	}
	if errMsg != "" {
		row[colError] = errMsg
	}

	if _, err := t.store.Insert(ctx, TableAccountEvents, row); err != nil {
		t.log.ErrorContext(ctx, "failed to track account action",
			"user_id", userID, "action", action, "error", err)
		return
	}
	t.log.InfoContext(ctx, "account action tracked", "user_id", userID, "action", action, "success", success)
}

// AuthHistory returns auth events matching the filter, newest first.
// The tabular contract has no ordering, so rows are sorted here; callers
// with large trails should filter by email or user ID.
func (t *Tracker) AuthHistory(ctx context.Context, f HistoryFilter) ([]AuthEvent, error) {
	var preds []tabular.Predicate
	if f.Email != "" {
		preds = append(preds, tabular.Eq(colEmail, f.Email))
	}
	if f.UserID != "" {
		preds = append(preds, tabular.Eq(colUserID, f.UserID))
	}

	rows, err := t.store.Select(ctx, TableAuthEvents, preds...)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to read auth history", "error", err)
		return nil, err
	}

	events := make([]AuthEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, authEventFromRow(row))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	limit := f.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// FailedAttempts counts failed auth events for the email within the trailing
// window. Lockout policy built on this count belongs to the caller.
func (t *Tracker) FailedAttempts(ctx context.Context, email string, window time.Duration) (int, error) {
	cutoff := t.now().UTC().Add(-window)

	rows, err := t.store.Select(ctx, TableAuthEvents,
		tabular.Eq(colEmail, email),
		tabular.Eq(colSuccess, false),
		tabular.Gte(colTimestamp, cutoff),
	)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to count failed attempts", "email", email, "error", err)
		return 0, err
	}
	return len(rows), nil
}
