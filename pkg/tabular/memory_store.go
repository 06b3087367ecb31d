package tabular

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory tables. It is intended for
// tests and development environments.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]Row)}
}

// Insert stores a copy of the row, assigning an "id" column when absent.
func (m *MemoryStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if table == "" {
		return nil, ErrEmptyTable
	}
	if row == nil {
		return nil, ErrNilRow
	}

	stored := row.Clone()
	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.NewString()
	}

	m.mu.Lock()
	m.tables[table] = append(m.tables[table], stored)
	m.mu.Unlock()

	return stored.Clone(), nil
}

// Select returns copies of all rows matching every predicate.
func (m *MemoryStore) Select(ctx context.Context, table string, preds ...Predicate) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Row
	for _, row := range m.tables[table] {
		ok, err := matches(row, preds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row.Clone())
		}
	}
	return out, nil
}

// Update patches all matching rows in place and returns copies of the result.
func (m *MemoryStore) Update(ctx context.Context, table string, patch Row, preds ...Predicate) ([]Row, error) {
	if patch == nil {
		return nil, ErrNilRow
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for _, row := range m.tables[table] {
		ok, err := matches(row, preds)
		if err != nil {
			return nil, err
		}
		if ok {
			for k, v := range patch {
				row[k] = v
			}
			out = append(out, row.Clone())
		}
	}
	return out, nil
}

// Delete removes all matching rows and returns them.
func (m *MemoryStore) Delete(ctx context.Context, table string, preds ...Predicate) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept, removed []Row
	for _, row := range m.tables[table] {
		ok, err := matches(row, preds)
		if err != nil {
			return nil, err
		}
		if ok {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	m.tables[table] = kept
	return removed, nil
}

// Len reports the number of rows currently held by the table.
func (m *MemoryStore) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

func matches(row Row, preds []Predicate) (bool, error) {
	for _, p := range preds {
		have, exists := row[p.Column]

		switch p.Op {
		case OpEq:
			if !exists || !equal(have, p.Value) {
				return false, nil
			}
		case OpLt, OpGte:
			if !exists {
				return false, nil
			}
			cmp, ok := compare(have, p.Value)
			if !ok {
				return false, ErrIncomparable
			}
			if p.Op == OpLt && cmp >= 0 {
				return false, nil
			}
			if p.Op == OpGte && cmp < 0 {
				return false, nil
			}
		default:
			return false, ErrUnsupportedOp
		}
	}
	return true, nil
}

func equal(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values of the same kind. Supports times, numbers and
// strings, which covers every column the session tables filter on.
func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case int, int32, int64, float64:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if !aok || !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
