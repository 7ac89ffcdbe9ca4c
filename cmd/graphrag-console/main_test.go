// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIndexListJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/index", r.URL.Path)
		assert.Equal(t, "key-from-env", r.Header.Get("X-Test-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"index_name":["foo","bar"]}`))
	}))
	defer ts.Close()

	t.Setenv("GRAPHRAG_CONSOLE_SESSION_DB", filepath.Join(t.TempDir(), "sessions.db"))
	cfgFile := filepath.Join(t.TempDir(), "graphrag-console.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("api:\n  headers:\n    X-Test-Key: key-from-env\n"), 0o644))

	out, err := execute(t, "--config", cfgFile, "--api-url", ts.URL, "index", "list", "--json")
	require.NoError(t, err)

	start := bytes.IndexByte([]byte(out), '[')
	require.GreaterOrEqual(t, start, 0, out)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &names))
	assert.Equal(t, []string{"foo", "bar"}, names)
}

func TestSessionLifecycle(t *testing.T) {
	t.Setenv("GRAPHRAG_CONSOLE_SESSION_DB", filepath.Join(t.TempDir(), "sessions.db"))

	_, err := execute(t, "--session", "cli-test", "session", "init")
	require.NoError(t, err)

	out, err := execute(t, "--session", "cli-test", "session", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "cli-test"`)
	assert.Contains(t, out, `"build_index_name": ""`)

	_, err = execute(t, "--session", "cli-test", "session", "end")
	require.NoError(t, err)

	_, err = execute(t, "--session", "cli-test", "session", "show")
	assert.Error(t, err)
}

func TestCommandsNeedAPIURL(t *testing.T) {
	t.Setenv("GRAPHRAG_CONSOLE_SESSION_DB", filepath.Join(t.TempDir(), "sessions.db"))
	t.Setenv("GRAPHRAG_CONSOLE_API_URL", "")

	_, err := execute(t, "--api-url", "", "data", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
