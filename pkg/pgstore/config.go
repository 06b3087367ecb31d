package pgstore

import "time"

// Config controls the PostgreSQL connection pool behind the store.
type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required"`                  // Database connection string.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`     // Maximum open connections.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`      // Minimum idle connections kept around.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"` // Period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"` // Connection retry attempts at startup.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`

	// QueryTimeout bounds every store operation. Timed-out calls surface as
	// store failures to the session core, which degrades them to negative
	// results; nothing upstream blocks indefinitely.
	QueryTimeout time.Duration `env:"PG_QUERY_TIMEOUT" envDefault:"5s"`
}
