// Package config loads env-tagged configuration structs from the process
// environment, reading a .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilPointer indicates Load was called with a nil target.
var ErrNilPointer = errors.New("config.nil_pointer")

// ErrParsingConfig wraps env parsing failures.
var ErrParsingConfig = errors.New("config.parsing_failed")

var dotenvOnce sync.Once

// Load populates the struct from environment variables according to its
// `env` tags. The .env file, if present, is loaded into the environment
// once per process; a missing file is not an error.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. For configuration the
// service cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
