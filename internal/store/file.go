package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// FileStore keeps each collection as an indented JSON array in <dir>/<collection>.json.
// Writes go through a temp file and rename, so a failed write leaves the old file intact.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(collection string) (string, error) {
	if err := validCollection(collection); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, collection+".json"), nil
}

func (s *FileStore) Read(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(collection)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []Record{}, nil
	}
	records := []Record{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return records, nil
}

func (s *FileStore) Write(ctx context.Context, collection string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(collection)
	if err != nil {
		return err
	}
	if records == nil {
		records = []Record{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func (s *FileStore) Add(ctx context.Context, collection string, record Record) error {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return err
	}
	return s.Write(ctx, collection, append(records, record))
}

func (s *FileStore) Update(ctx context.Context, collection, id string, fields Record) (bool, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return false, err
	}
	for i, rec := range records {
		if rec.ID() != id {
			continue
		}
		records[i] = rec.Merge(fields)
		if err := s.Write(ctx, collection, records); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *FileStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return false, err
	}
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.ID() != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	return true, s.Write(ctx, collection, kept)
}
