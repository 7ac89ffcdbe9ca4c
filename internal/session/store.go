// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is the stored form of a session.
type Record struct {
	ID        string
	Values    map[Key]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists session records.
type Store interface {
	// Ensure creates the session if needed and inserts each missing key
	// with an empty value. Existing values are never changed.
	Ensure(ctx context.Context, id string, keys []Key) error
	// Set overwrites the given keys. It returns ErrNotFound for an unknown
	// session.
	Set(ctx context.Context, id string, values map[Key]string) error
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// Delete removes the session. It returns ErrNotFound for an unknown
	// session.
	Delete(ctx context.Context, id string) error
	// List returns all sessions ordered by creation time.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Record
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Record), now: time.Now}
}

func (s *MemoryStore) Ensure(_ context.Context, id string, keys []Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec, ok := s.sessions[id]
	if !ok {
		rec = &Record{ID: id, Values: make(map[Key]string), CreatedAt: now, UpdatedAt: now}
		s.sessions[id] = rec
	}
	for _, k := range keys {
		if _, ok := rec.Values[k]; !ok {
			rec.Values[k] = ""
		}
	}
	return nil
}

func (s *MemoryStore) Set(_ context.Context, id string, values map[Key]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range values {
		rec.Values[k] = v
	}
	rec.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.sessions))
	for _, rec := range s.sessions {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func copyRecord(rec *Record) Record {
	values := make(map[Key]string, len(rec.Values))
	for k, v := range rec.Values {
		values[k] = v
	}
	return Record{ID: rec.ID, Values: values, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
}
