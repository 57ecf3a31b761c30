// Package store implements the keyed-collection record store the engine
// persists through. Records are schemaless JSON documents; typed models
// round-trip through Encode/Decode. Three drivers share one contract and
// one query matcher: file (JSON documents on disk), memory, and postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is one schemaless document in a collection.
type Record = map[string]any

var ErrNotFound = errors.New("record not found")

// Store is the persistence contract. Create assigns an id and a createdAt
// stamp; Update merges the patch into the existing record and stamps
// updatedAt. FindByQuery matches case-insensitive substrings per field,
// with array fields matching when any element matches.
type Store interface {
	Create(ctx context.Context, collection string, rec Record) (Record, error)
	FindAll(ctx context.Context, collection string) ([]Record, error)
	FindByID(ctx context.Context, collection, id string) (Record, error)
	Update(ctx context.Context, collection, id string, patch Record) (Record, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
	FindByQuery(ctx context.Context, collection string, query map[string]string) ([]Record, error)
}

// Encode converts a typed model into a Record via its JSON form.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return rec, nil
}

// Decode fills a typed model from a Record.
func Decode(rec Record, v any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// DecodeAll decodes a slice of records into typed models.
func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := Decode(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// cloneRecord deep-copies a record so callers never share mutable state
// with the driver's in-memory view.
func cloneRecord(rec Record) Record {
	raw, err := json.Marshal(rec)
	if err != nil {
		// Records always originate from JSON, so this cannot fail on data
		// that made it into a collection.
		panic(fmt.Sprintf("store: clone record: %v", err))
	}
	var out Record
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("store: clone record: %v", err))
	}
	return out
}
