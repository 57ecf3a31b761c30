package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psicoapp/agenda-service/internal/clock"
)

// MemoryStore keeps collections in process memory. It is the test double
// and the STORE_DRIVER=memory backend; semantics are identical to the file
// driver, minus the disk.
type MemoryStore struct {
	clk clock.Clock

	mu          sync.Mutex
	collections map[string]*memCollection
}

type memCollection struct {
	mu   sync.RWMutex
	recs []Record
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clk:         clk,
		collections: make(map[string]*memCollection),
	}
}

func (s *MemoryStore) collection(name string) *memCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Create(_ context.Context, collection string, rec Record) (Record, error) {
	c := s.collection(collection)
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := cloneRecord(rec)
	stored["id"] = uuid.NewString()
	stored["createdAt"] = s.clk.Now().UTC().Format(time.RFC3339)
	c.recs = append(c.recs, stored)
	return cloneRecord(stored), nil
}

func (s *MemoryStore) FindAll(_ context.Context, collection string) ([]Record, error) {
	c := s.collection(collection)
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Record, 0, len(c.recs))
	for _, rec := range c.recs {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, collection, id string) (Record, error) {
	c := s.collection(collection)
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.recs {
		if rec["id"] == id {
			return cloneRecord(rec), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, patch Record) (Record, error) {
	c := s.collection(collection)
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, rec := range c.recs {
		if rec["id"] != id {
			continue
		}
		merged := cloneRecord(rec)
		for k, v := range patch {
			merged[k] = v
		}
		merged["id"] = id
		merged["updatedAt"] = s.clk.Now().UTC().Format(time.RFC3339)
		c.recs[i] = merged
		return cloneRecord(merged), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) (bool, error) {
	c := s.collection(collection)
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, rec := range c.recs {
		if rec["id"] == id {
			c.recs = append(c.recs[:i], c.recs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) FindByQuery(ctx context.Context, collection string, query map[string]string) ([]Record, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, query), nil
}
