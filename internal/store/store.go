// Package store is the whole-collection persistence layer. Every mutation reads the
// full collection, changes it in memory and writes it back; there is no locking
// across requests, so concurrent writers to one collection are last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one stored object. Records are identified by their "id" field.
type Record map[string]any

// ID returns the record's id, or "" when missing or not a string.
func (r Record) ID() string {
	if v, ok := r["id"].(string); ok {
		return v
	}
	return ""
}

// Merge applies fields on top of r, like a shallow object spread. The id never changes.
func (r Record) Merge(fields Record) Record {
	out := make(Record, len(r)+len(fields))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

type Store interface {
	// Read returns every record of the collection, or an empty slice when it does not exist.
	Read(ctx context.Context, collection string) ([]Record, error)
	Write(ctx context.Context, collection string, records []Record) error
	Add(ctx context.Context, collection string, record Record) error
	// Update merges fields into the record with id. It reports false when id is absent.
	Update(ctx context.Context, collection, id string, fields Record) (bool, error)
	// Delete removes the record with id. It reports false when id is absent.
	Delete(ctx context.Context, collection, id string) (bool, error)
}

// Transactional is implemented by stores that can run several mutations atomically.
type Transactional interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Encode converts a typed value into a Record through its JSON form.
func Encode(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Decode converts a Record into dst through its JSON form.
func Decode(rec Record, dst any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func validCollection(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty collection name")
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}
