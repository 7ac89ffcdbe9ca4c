// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the state that links pipeline steps: the prompt
// texts loaded or edited by the user and the name of the last index built or
// queried. Each session is an explicit object identified by an ID and kept in
// a Store until it is ended.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/graphrag-console/internal/prompts"
)

// Key names one value held by a session.
type Key string

// Keys created by Init.
const (
	KeySummaryPrompt   Key = "summary_prompt"
	KeyEntityPrompt    Key = "entity_prompt"
	KeyCommunityPrompt Key = "community_prompt"
	KeyBuildIndexName  Key = "build_index_name"
)

// Keys lists every key in a stable order.
var Keys = []Key{KeySummaryPrompt, KeyEntityPrompt, KeyCommunityPrompt, KeyBuildIndexName}

// ErrNotFound is returned for a session that was never initialized or has
// been ended.
var ErrNotFound = errors.New("session not found")

// State is a snapshot of one session.
type State struct {
	ID              string    `json:"id" yaml:"id"`
	SummaryPrompt   string    `json:"summary_prompt" yaml:"summary_prompt"`
	EntityPrompt    string    `json:"entity_prompt" yaml:"entity_prompt"`
	CommunityPrompt string    `json:"community_prompt" yaml:"community_prompt"`
	BuildIndexName  string    `json:"build_index_name" yaml:"build_index_name"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// Prompts returns the session's prompts as a bundle.
func (s *State) Prompts() prompts.Bundle {
	return prompts.Bundle{
		Summarize:        s.SummaryPrompt,
		EntityExtraction: s.EntityPrompt,
		CommunityReport:  s.CommunityPrompt,
	}
}

func newState(rec Record) *State {
	return &State{
		ID:              rec.ID,
		SummaryPrompt:   rec.Values[KeySummaryPrompt],
		EntityPrompt:    rec.Values[KeyEntityPrompt],
		CommunityPrompt: rec.Values[KeyCommunityPrompt],
		BuildIndexName:  rec.Values[KeyBuildIndexName],
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// Manager provides typed access to sessions kept in a Store.
type Manager struct {
	store Store
}

// NewManager returns a Manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// Init creates the session with every key set to the empty string. Keys
// that already exist keep their values, so calling Init again is harmless.
// An empty id gets a new random ID.
func (m *Manager) Init(ctx context.Context, id string) (*State, error) {
	if id == "" {
		id = NewID()
	}
	if err := m.store.Ensure(ctx, id, Keys); err != nil {
		return nil, fmt.Errorf("initializing session %s: %w", id, err)
	}
	return m.Get(ctx, id)
}

// SetPrompts stores explicit prompt texts.
func (m *Manager) SetPrompts(ctx context.Context, id, summarize, entity, community string) error {
	err := m.store.Set(ctx, id, map[Key]string{
		KeySummaryPrompt:   summarize,
		KeyEntityPrompt:    entity,
		KeyCommunityPrompt: community,
	})
	if err != nil {
		return fmt.Errorf("setting prompts for session %s: %w", id, err)
	}
	return nil
}

// LoadPrompts reads the prompt files in dir and stores them in the session.
// The session is left unchanged when the files cannot be loaded.
func (m *Manager) LoadPrompts(ctx context.Context, id, dir string) (prompts.Bundle, error) {
	b, err := prompts.Load(dir)
	if err != nil {
		return prompts.Bundle{}, err
	}
	if err := m.SetPrompts(ctx, id, b.Summarize, b.EntityExtraction, b.CommunityReport); err != nil {
		return prompts.Bundle{}, err
	}
	return b, nil
}

// SetIndexName records the index most recently built or queried.
func (m *Manager) SetIndexName(ctx context.Context, id, name string) error {
	if err := m.store.Set(ctx, id, map[Key]string{KeyBuildIndexName: name}); err != nil {
		return fmt.Errorf("setting index name for session %s: %w", id, err)
	}
	return nil
}

// Get returns the current state of the session.
func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return newState(rec), nil
}

// End deletes the session and all of its values.
func (m *Manager) End(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("ending session %s: %w", id, err)
	}
	return nil
}

// List returns every live session, oldest first.
func (m *Manager) List(ctx context.Context) ([]*State, error) {
	recs, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	out := make([]*State, len(recs))
	for i, r := range recs {
		out[i] = newState(r)
	}
	return out, nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
