package tabular

import (
	"context"
	"time"
)

// Row is a single record keyed by column name.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the named column as a string.
func (r Row) String(column string) (string, bool) {
	v, ok := r[column].(string)
	return v, ok
}

// Time returns the named column as a time.Time.
func (r Row) Time(column string) (time.Time, bool) {
	v, ok := r[column].(time.Time)
	return v, ok
}

// Bool returns the named column as a bool.
func (r Row) Bool(column string) (bool, bool) {
	v, ok := r[column].(bool)
	return v, ok
}

// Op is a predicate comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpLt  Op = "<"
	OpGte Op = ">="
)

// Predicate filters rows by comparing a column against a value.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// Lt matches rows where column is strictly less than value.
func Lt(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpLt, Value: value}
}

// Gte matches rows where column is greater than or equal to value.
func Gte(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpGte, Value: value}
}

// Store persists rows in named tables. Implementations guarantee per-row
// atomicity only; there is no cross-table transaction support.
type Store interface {
	// Insert stores a new row and returns the row as persisted.
	// A nil row result without an error must not happen; callers treat
	// any error as a failed write.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Select returns all rows matching every predicate.
	Select(ctx context.Context, table string, preds ...Predicate) ([]Row, error)

	// Update applies the patch to all rows matching every predicate and
	// returns the updated rows.
	Update(ctx context.Context, table string, patch Row, preds ...Predicate) ([]Row, error)

	// Delete removes all rows matching every predicate and returns the
	// removed rows.
	Delete(ctx context.Context, table string, preds ...Predicate) ([]Row, error)
}
