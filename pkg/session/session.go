package session

import (
	"encoding/json"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

// TableSessions is the table the session core persists to.
const TableSessions = "sessions"

// Session event types recorded through the Recorder.
const (
	EventCreated  = "created"
	EventExpired  = "expired"
	EventActivity = "activity"
)

// DeviceInfo describes the client a session was created from. It is captured
// once at creation and never updated.
type DeviceInfo struct {
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip_address"`
	Platform  string `json:"platform"`
}

// TokenPair is the only part of a session ever returned to callers. The
// session ID stays backend-internal.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Session is the server-side record binding a token pair to a user.
type Session struct {
	ID               string
	UserID           string
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
	DeviceInfo       DeviceInfo
	CreatedAt        time.Time
	LastActivity     time.Time
}

// Column names within TableSessions.
const (
	colID               = "id"
	colUserID           = "user_id"
	colAccessToken      = "access_token"
	colRefreshToken     = "refresh_token"
	colExpiresAt        = "expires_at"
	colRefreshExpiresAt = "refresh_expires_at"
	colDeviceInfo       = "device_info"
	colCreatedAt        = "created_at"
	colLastActivity     = "last_activity"
)

func (s *Session) toRow() tabular.Row {
	row := tabular.Row{
		colID:               s.ID,
		colUserID:           s.UserID,
		colAccessToken:      s.AccessToken,
		colRefreshToken:     s.RefreshToken,
		colExpiresAt:        s.ExpiresAt,
		colRefreshExpiresAt: s.RefreshExpiresAt,
		colCreatedAt:        s.CreatedAt,
		colLastActivity:     s.LastActivity,
	}
	// Serialized so SQL backends can keep device info in a plain text column.
	if data, err := json.Marshal(s.DeviceInfo); err == nil {
		row[colDeviceInfo] = string(data)
	}
	return row
}

func sessionFromRow(row tabular.Row) (*Session, error) {
	s := &Session{}

	var ok bool
	if s.ID, ok = row.String(colID); !ok {
		return nil, ErrMalformedRow
	}
	if s.UserID, ok = row.String(colUserID); !ok {
		return nil, ErrMalformedRow
	}
	if s.AccessToken, ok = row.String(colAccessToken); !ok {
		return nil, ErrMalformedRow
	}
	if s.RefreshToken, ok = row.String(colRefreshToken); !ok {
		return nil, ErrMalformedRow
	}
	if s.ExpiresAt, ok = row.Time(colExpiresAt); !ok {
		return nil, ErrMalformedRow
	}
	if s.RefreshExpiresAt, ok = row.Time(colRefreshExpiresAt); !ok {
		return nil, ErrMalformedRow
	}

	// Optional columns: tolerate absence rather than rejecting the row.
	s.CreatedAt, _ = row.Time(colCreatedAt)
	s.LastActivity, _ = row.Time(colLastActivity)
	if raw, ok := row.String(colDeviceInfo); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &s.DeviceInfo)
	}

	return s, nil
}
