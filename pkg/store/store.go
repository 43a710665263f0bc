// Package store persists completed run records.
//
// A [Record] couples the options a run was started with and the score
// history it produced, under a stable run ID. Two backends implement the
// same [Store] interface:
//
//   - [MemoryStore]: process-local map for the CLI and tests
//   - [MongoStore]: durable storage for server deployments
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flipchain/flipchain/pkg/chain"
	"github.com/flipchain/flipchain/pkg/errors"
)

// Record is a persisted run: identity, provenance, and results.
type Record struct {
	// ID is the run identifier, assigned at execution time.
	ID string `json:"id" bson:"_id"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Options is the canonical JSON of the run options, kept so a record
	// can be reproduced or audited later.
	Options map[string]any `json:"options" bson:"options"`

	// Data is the full score history of the run.
	Data *chain.ScoreData `json:"data" bson:"data"`
}

// Store persists and retrieves run records.
type Store interface {
	// Save persists a record. Saving an existing ID overwrites it.
	Save(ctx context.Context, rec *Record) error

	// Get fetches a record by run ID.
	// Returns an ErrCodeRunNotFound error when the ID is unknown.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*Record, error)

	// Close releases any backend resources.
	Close(ctx context.Context) error
}

// MemoryStore keeps records in an in-process map.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*Record)}
}

// Save persists a record in memory.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record must have an ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

// Get fetches a record by run ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	return rec, nil
}

// List returns all records, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.recs))
	for _, rec := range s.recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
