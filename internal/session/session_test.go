// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/graphrag-console/internal/prompts"
)

func stores(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "sessions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestInitCreatesEmptyKeys(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			m := NewManager(open(t))
			st, err := m.Init(context.Background(), "s1")
			require.NoError(t, err)

			assert.Equal(t, "s1", st.ID)
			assert.Empty(t, st.SummaryPrompt)
			assert.Empty(t, st.EntityPrompt)
			assert.Empty(t, st.CommunityPrompt)
			assert.Empty(t, st.BuildIndexName)
			assert.False(t, st.CreatedAt.IsZero())
		})
	}
}

func TestInitIsIdempotent(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(open(t))

			_, err := m.Init(ctx, "s1")
			require.NoError(t, err)
			require.NoError(t, m.SetPrompts(ctx, "s1", "sum", "ent", "com"))
			require.NoError(t, m.SetIndexName(ctx, "s1", "idx"))

			st, err := m.Init(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "sum", st.SummaryPrompt)
			assert.Equal(t, "ent", st.EntityPrompt)
			assert.Equal(t, "com", st.CommunityPrompt)
			assert.Equal(t, "idx", st.BuildIndexName)
		})
	}
}

func TestInitWithoutIDGeneratesOne(t *testing.T) {
	m := NewManager(NewMemoryStore())
	a, err := m.Init(context.Background(), "")
	require.NoError(t, err)
	b, err := m.Init(context.Background(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSetOnUnknownSession(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			m := NewManager(open(t))
			err := m.SetIndexName(context.Background(), "nope", "idx")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = m.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoadPrompts(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"summary.txt":     "A",
		"entity_x.txt":    "B",
		"community_y.txt": "C",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	ctx := context.Background()
	m := NewManager(NewMemoryStore())
	_, err := m.Init(ctx, "s1")
	require.NoError(t, err)

	b, err := m.LoadPrompts(ctx, "s1", dir)
	require.NoError(t, err)
	assert.Equal(t, prompts.Bundle{Summarize: "A", EntityExtraction: "B", CommunityReport: "C"}, b)

	st, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, b, st.Prompts())
}

func TestLoadPromptsFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())
	_, err := m.Init(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, m.SetPrompts(ctx, "s1", "keep", "keep", "keep"))

	_, err = m.LoadPrompts(ctx, "s1", t.TempDir())
	require.ErrorIs(t, err, prompts.ErrNoMatch)

	st, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "keep", st.SummaryPrompt)
}

func TestEndRemovesSession(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(open(t))
			_, err := m.Init(ctx, "s1")
			require.NoError(t, err)
			require.NoError(t, m.SetIndexName(ctx, "s1", "idx"))

			require.NoError(t, m.End(ctx, "s1"))
			_, err = m.Get(ctx, "s1")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, m.End(ctx, "s1"), ErrNotFound)

			st, err := m.Init(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, st.BuildIndexName, "a new session starts empty")
		})
	}
}

func TestListSessions(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(open(t))
			for _, id := range []string{"a", "b"} {
				_, err := m.Init(ctx, id)
				require.NoError(t, err)
			}

			list, err := m.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			ids := []string{list[0].ID, list[1].ID}
			assert.ElementsMatch(t, []string{"a", "b"}, ids)
		})
	}
}

func TestSQLiteStatePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	m := NewManager(s1)
	_, err = m.Init(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, m.SetIndexName(ctx, "s1", "idx"))
	require.NoError(t, m.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	st, err := NewManager(s2).Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "idx", st.BuildIndexName)
}

func TestExport(t *testing.T) {
	st := &State{ID: "s1", SummaryPrompt: "A", BuildIndexName: "idx"}

	var y bytes.Buffer
	require.NoError(t, Export(&y, st, FormatYAML))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	assert.Equal(t, "idx", fromYAML["build_index_name"])

	var j bytes.Buffer
	require.NoError(t, Export(&j, st, FormatJSON))
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	assert.Equal(t, "A", fromJSON["summary_prompt"])

	assert.Error(t, Export(&j, st, "xml"))
}
