package pgstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("pgstore.failed_to_open_connection")
	ErrFailedToParseDBConfig    = errors.New("pgstore.failed_to_parse_config")
	ErrFailedToApplyMigrations  = errors.New("pgstore.failed_to_apply_migrations")

	// ErrInvalidIdentifier indicates a table or column name that is not a
	// plain lowercase identifier. Identifiers reach SQL text directly, so
	// anything else is rejected before query building.
	ErrInvalidIdentifier = errors.New("pgstore.invalid_identifier")

	// ErrUnsupportedOp indicates a predicate operator outside the tabular
	// contract.
	ErrUnsupportedOp = errors.New("pgstore.unsupported_op")
)

// IsDuplicateKeyError detects unique constraint violations (SQLSTATE 23505),
// e.g. the astronomically unlikely access token collision.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
