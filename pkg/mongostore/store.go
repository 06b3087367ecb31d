package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/sessionkit/pkg/tabular"
)

// ErrUnsupportedOp indicates a predicate operator outside the tabular
// contract.
var ErrUnsupportedOp = errors.New("mongostore.unsupported_op")

// Store implements tabular.Store on MongoDB collections. Table names map to
// collection names; the "id" column is an application-level field, separate
// from Mongo's own _id.
//
// Update and Delete run as find-then-modify over the collected IDs; like the
// rest of the tabular contract they promise per-document atomicity only.
type Store struct {
	db      *mongo.Database
	timeout time.Duration
}

// New creates a store over the database handle.
func New(db *mongo.Database, timeout time.Duration) *Store {
	if db == nil {
		panic("mongostore: database is required")
	}
	return &Store{db: db, timeout: timeout}
}

// NewFromConfig connects per the config and returns the store with its
// client, so callers can disconnect on shutdown.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, *mongo.Client, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return New(client.Database(cfg.Database), cfg.QueryTimeout), client, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Insert stores the row, assigning an "id" field when absent.
func (s *Store) Insert(ctx context.Context, table string, row tabular.Row) (tabular.Row, error) {
	if table == "" {
		return nil, tabular.ErrEmptyTable
	}
	if row == nil {
		return nil, tabular.ErrNilRow
	}

	stored := row.Clone()
	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.NewString()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Collection(table).InsertOne(ctx, bson.M(stored)); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Select returns all documents matching every predicate.
func (s *Store) Select(ctx context.Context, table string, preds ...tabular.Predicate) ([]tabular.Row, error) {
	filter, err := buildFilter(preds)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.db.Collection(table).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return collectRows(ctx, cursor)
}

// Update applies the patch to all matching documents and returns them.
func (s *Store) Update(ctx context.Context, table string, patch tabular.Row, preds ...tabular.Predicate) ([]tabular.Row, error) {
	if patch == nil {
		return nil, tabular.ErrNilRow
	}

	filter, err := buildFilter(preds)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	coll := s.db.Collection(table)

	ids, err := matchingIDs(ctx, coll, filter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	byID := bson.M{"id": bson.M{"$in": ids}}
	if _, err := coll.UpdateMany(ctx, byID, bson.M{"$set": bson.M(patch)}); err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, byID)
	if err != nil {
		return nil, err
	}
	return collectRows(ctx, cursor)
}

// Delete removes all matching documents and returns them.
func (s *Store) Delete(ctx context.Context, table string, preds ...tabular.Predicate) ([]tabular.Row, error) {
	filter, err := buildFilter(preds)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	coll := s.db.Collection(table)

	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	removed, err := collectRows(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(removed))
	for _, row := range removed {
		if id, ok := row.String("id"); ok {
			ids = append(ids, id)
		}
	}
	if _, err := coll.DeleteMany(ctx, bson.M{"id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return removed, nil
}

func matchingIDs(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]any, error) {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := collectRows(ctx, cursor)
	if err != nil {
		return nil, err
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		if id, ok := row.String("id"); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func buildFilter(preds []tabular.Predicate) (bson.M, error) {
	filter := bson.M{}
	for _, p := range preds {
		switch p.Op {
		case tabular.OpEq:
			filter[p.Column] = p.Value
		case tabular.OpLt:
			filter[p.Column] = bson.M{"$lt": p.Value}
		case tabular.OpGte:
			filter[p.Column] = bson.M{"$gte": p.Value}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, p.Op)
		}
	}
	return filter, nil
}

func collectRows(ctx context.Context, cursor *mongo.Cursor) ([]tabular.Row, error) {
	defer cursor.Close(ctx)

	var out []tabular.Row
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		delete(doc, "_id")

		row := make(tabular.Row, len(doc))
		for k, v := range doc {
			row[k] = normalizeValue(v)
		}
		out = append(out, row)
	}
	return out, cursor.Err()
}

// normalizeValue maps BSON decode results onto the value set the tabular
// consumers expect, in particular time.Time in UTC for datetimes.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.DateTime:
		return val.Time().UTC()
	case time.Time:
		return val.UTC()
	case int32:
		return int(val)
	default:
		return v
	}
}
