// Package pgstore implements the tabular store contract on PostgreSQL via
// pgx, and ships the goose migrations for the session tables.
//
// The sessions table enforces the token uniqueness invariant with UNIQUE
// constraints on access_token and refresh_token, so uniqueness comes from
// the store rather than application-level locking.
//
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err := pgstore.Migrate(ctx, pool, log); err != nil { ... }
//	store := pgstore.New(pool, cfg.QueryTimeout)
package pgstore
