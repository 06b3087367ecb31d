package tracker

import (
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

// Tables this package appends to. Rows are never updated or deleted here;
// retention is an external concern.
const (
	TableSessionEvents = "session_events"
	TableAuthEvents    = "auth_events"
	TableAccountEvents = "account_events"
)

// Auth event types beyond plain login/registration attempts.
const EventPasswordReset = "password_reset"

// AuthAttempt captures one authentication attempt and its request context.
type AuthAttempt struct {
	Email   string
	Success bool
	Error   string
	UserID  string
	Device  session.DeviceInfo
}

// AuthEvent is a persisted authentication audit row.
type AuthEvent struct {
	ID        string
	Email     string
	UserID    string
	EventType string
	Success   bool
	Error     string
	IPAddress string
	UserAgent string
	Platform  string
	Timestamp time.Time
}

// HistoryFilter narrows an auth history query. Zero-value fields are ignored.
type HistoryFilter struct {
	Email  string
	UserID string
	// Limit bounds the result; defaults to 10 when not positive.
	Limit int
}

const defaultHistoryLimit = 10

const (
	colID        = "id"
	colUserID    = "user_id"
	colSessionID = "session_id"
	colEventType = "event_type"
	colAction    = "action"
	colEmail     = "email"
	colSuccess   = "success"
	colError     = "error"
	colIPAddress = "ip_address"
	colUserAgent = "user_agent"
	colPlatform  = "platform"
	colTimestamp = "timestamp"
)

func authEventFromRow(row tabular.Row) AuthEvent {
	e := AuthEvent{}
	e.ID, _ = row.String(colID)
	e.Email, _ = row.String(colEmail)
	e.UserID, _ = row.String(colUserID)
	e.EventType, _ = row.String(colEventType)
	e.Success, _ = row.Bool(colSuccess)
	e.Error, _ = row.String(colError)
	e.IPAddress, _ = row.String(colIPAddress)
	e.UserAgent, _ = row.String(colUserAgent)
	e.Platform, _ = row.String(colPlatform)
	e.Timestamp, _ = row.Time(colTimestamp)
	return e
}
