// Package tabular defines the persistence contract the session packages are
// written against: insert, select, update and delete over named tables, with
// simple column predicates.
//
// The contract deliberately stays narrow. Implementations promise per-row
// atomicity only (no cross-table or multi-row transactions), so everything
// built on top must remain correct under that weaker model. The session
// refresh rotation and the expiry sweep are both designed for it.
//
// Three implementations ship with this module:
//
//   - MemoryStore (this package): mutex-guarded maps, for tests and dev.
//   - pgstore.Store: PostgreSQL via pgx.
//   - mongostore.Store: MongoDB collections.
//
// Usage:
//
//	store := tabular.NewMemoryStore()
//	row, err := store.Insert(ctx, "sessions", tabular.Row{"user_id": "u1"})
//	rows, err := store.Select(ctx, "sessions", tabular.Eq("user_id", "u1"))
package tabular
