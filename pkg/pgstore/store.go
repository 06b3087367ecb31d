package pgstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

// Store implements tabular.Store on a PostgreSQL pool. Queries are built
// dynamically from validated identifiers; every operation runs under the
// configured query timeout.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// New creates a store over the pool. A non-positive timeout disables the
// per-operation deadline.
func New(pool *pgxpool.Pool, timeout time.Duration) *Store {
	if pool == nil {
		panic("pgstore: pool is required")
	}
	return &Store{pool: pool, timeout: timeout}
}

// NewFromConfig connects per the config and returns the store with the pool,
// so callers can close it on shutdown.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, *pgxpool.Pool, error) {
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return New(pool, cfg.QueryTimeout), pool, nil
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func quoteIdentifier(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Insert stores the row and returns it as persisted.
func (s *Store) Insert(ctx context.Context, table string, row tabular.Row) (tabular.Row, error) {
	if row == nil {
		return nil, tabular.ErrNilRow
	}

	tbl, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		if quoted[i], err = quoteIdentifier(col); err != nil {
			return nil, err
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		tbl, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out, err := collectRows(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	return out[0], nil
}

// Select returns all rows matching every predicate.
func (s *Store) Select(ctx context.Context, table string, preds ...tabular.Predicate) ([]tabular.Row, error) {
	tbl, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	where, args, err := buildWhere(preds, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, "SELECT * FROM "+tbl+where, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

// Update patches all matching rows and returns them.
func (s *Store) Update(ctx context.Context, table string, patch tabular.Row, preds ...tabular.Predicate) ([]tabular.Row, error) {
	if patch == nil {
		return nil, tabular.ErrNilRow
	}

	tbl, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(patch))
	for col := range patch {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(preds))
	for i, col := range columns {
		quotedCol, err := quoteIdentifier(col)
		if err != nil {
			return nil, err
		}
		assignments[i] = fmt.Sprintf("%s = $%d", quotedCol, i+1)
		args = append(args, patch[col])
	}

	where, whereArgs, err := buildWhere(preds, len(columns)+1)
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s RETURNING *", tbl, strings.Join(assignments, ", "), where)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

// Delete removes all matching rows and returns them.
func (s *Store) Delete(ctx context.Context, table string, preds ...tabular.Predicate) ([]tabular.Row, error) {
	tbl, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	where, args, err := buildWhere(preds, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, "DELETE FROM "+tbl+where+" RETURNING *", args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

// buildWhere renders predicates as a WHERE clause with placeholders starting
// at the given index. No predicates renders an empty clause (full table).
func buildWhere(preds []tabular.Predicate, firstPlaceholder int) (string, []any, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, len(preds))
	args := make([]any, len(preds))
	for i, p := range preds {
		col, err := quoteIdentifier(p.Column)
		if err != nil {
			return "", nil, err
		}

		var op string
		switch p.Op {
		case tabular.OpEq:
			op = "="
		case tabular.OpLt:
			op = "<"
		case tabular.OpGte:
			op = ">="
		default:
			return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, p.Op)
		}

		clauses[i] = fmt.Sprintf("%s %s $%d", col, op, firstPlaceholder+i)
		args[i] = p.Value
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func collectRows(rows pgx.Rows) ([]tabular.Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []tabular.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(tabular.Row, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeValue maps driver types onto the value set the tabular consumers
// expect: UTC times and plain strings.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case [16]byte:
		// uuid column; consumers work with string IDs.
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	default:
		return v
	}
}
