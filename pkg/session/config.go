package session

import "time"

// Config holds session lifetime configuration.
type Config struct {
	// AccessTTL bounds how long an access token stays valid.
	AccessTTL time.Duration `env:"SESSION_ACCESS_TTL" envDefault:"1h"`

	// RefreshTTL bounds how long a refresh token stays valid. Must always
	// exceed AccessTTL.
	RefreshTTL time.Duration `env:"SESSION_REFRESH_TTL" envDefault:"720h"`

	// SweepInterval is the cadence of the background expired-session sweep
	// started by StartSweep.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`
}

// DefaultConfig returns the reference policy: 1 hour access, 30 days refresh.
func DefaultConfig() Config {
	return Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    30 * 24 * time.Hour,
		SweepInterval: 10 * time.Minute,
	}
}
