package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psicoapp/agenda-service/internal/clock"
)

// FileStore persists each collection as one pretty-printed JSON array under
// dir, the layout the original deployment used (psicologos.json, ...).
// Every mutation is a read-modify-write cycle under a per-collection mutex,
// so writes to one collection are serialized.
type FileStore struct {
	dir string
	clk clock.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dir string, clk clock.Clock) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		dir:   dir,
		clk:   clk,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) read(collection string) ([]Record, error) {
	raw, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", collection, err)
	}
	return recs, nil
}

func (s *FileStore) write(collection string, recs []Record) error {
	raw, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", collection, err)
	}
	tmp := s.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp, s.path(collection)); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	return nil
}

func (s *FileStore) Create(_ context.Context, collection string, rec Record) (Record, error) {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()

	recs, err := s.read(collection)
	if err != nil {
		return nil, err
	}

	stored := cloneRecord(rec)
	stored["id"] = uuid.NewString()
	stored["createdAt"] = s.clk.Now().UTC().Format(time.RFC3339)
	recs = append(recs, stored)

	if err := s.write(collection, recs); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *FileStore) FindAll(_ context.Context, collection string) ([]Record, error) {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()
	return s.read(collection)
}

func (s *FileStore) FindByID(ctx context.Context, collection, id string) (Record, error) {
	recs, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec["id"] == id {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) Update(_ context.Context, collection, id string, patch Record) (Record, error) {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()

	recs, err := s.read(collection)
	if err != nil {
		return nil, err
	}
	for i, rec := range recs {
		if rec["id"] != id {
			continue
		}
		merged := cloneRecord(rec)
		for k, v := range patch {
			merged[k] = v
		}
		merged["id"] = id
		merged["updatedAt"] = s.clk.Now().UTC().Format(time.RFC3339)
		recs[i] = merged
		if err := s.write(collection, recs); err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) Delete(_ context.Context, collection, id string) (bool, error) {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()

	recs, err := s.read(collection)
	if err != nil {
		return false, err
	}
	for i, rec := range recs {
		if rec["id"] == id {
			recs = append(recs[:i], recs[i+1:]...)
			if err := s.write(collection, recs); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) FindByQuery(ctx context.Context, collection string, query map[string]string) ([]Record, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, query), nil
}
