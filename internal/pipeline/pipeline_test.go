// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/graphrag-console/internal/api"
	"github.com/pdiddy/graphrag-console/internal/prompts"
	"github.com/pdiddy/graphrag-console/internal/report"
	"github.com/pdiddy/graphrag-console/internal/session"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// --- test helpers ---

// fakeService is a GraphRAG API stand-in that records every request.
type fakeService struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
	mux      *http.ServeMux
}

func newFakeService() *fakeService {
	return &fakeService{bodies: make(map[string][]byte), mux: http.NewServeMux()}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	f.mu.Lock()
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.bodies[key] = body
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeService) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

type fixture struct {
	svc      *fakeService
	pipe     *Pipeline
	sessions *session.Manager
	rec      *report.Recorder
	dir      string
}

func setup(t *testing.T, register func(mux *http.ServeMux)) *fixture {
	t.Helper()
	svc := newFakeService()
	if register != nil {
		register(svc.mux)
	}
	ts := httptest.NewServer(svc)
	t.Cleanup(ts.Close)

	client, err := api.New(types.APIConfig{URL: ts.URL, CacheTTL: time.Minute}, ts.Client(), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	sessions := session.NewManager(session.NewMemoryStore())
	rec := &report.Recorder{}
	cfg := types.PromptConfig{
		Dir:        filepath.Join(dir, "prompts"),
		ZipFile:    filepath.Join(dir, "prompts.zip"),
		ExtractDir: dir,
		Limit:      5,
	}
	return &fixture{
		svc:      svc,
		pipe:     New(client, sessions, rec, cfg, nil),
		sessions: sessions,
		rec:      rec,
		dir:      dir,
	}
}

func promptZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// --- options ---

func TestStorageOptionsEmpty(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("GET /data", jsonHandler(200, `{"storage_name":[]}`))
	})
	opts, err := f.pipe.StorageOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, opts)
}

func TestStorageOptionsFailureYieldsPlaceholder(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("GET /data", jsonHandler(500, `{"detail":"down"}`))
	})
	opts, err := f.pipe.StorageOptions(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{""}, opts)
}

func TestIndexOptions(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("GET /index", jsonHandler(200, `{"index_name":["foo","bar"]}`))
	})
	opts, err := f.pipe.IndexOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "foo", "bar"}, opts)
}

// --- storage step ---

func TestStorageStepRejectsBeforeRequest(t *testing.T) {
	file := api.UploadFile{Name: "a.txt", ContentType: "text/plain", Content: strings.NewReader("x")}
	tests := []struct {
		name string
		in   StorageInput
		want error
	}{
		{"no name", StorageInput{Files: []api.UploadFile{file}}, ErrStorageNameRequired},
		{"no files", StorageInput{NewName: "docs"}, ErrNoFiles},
		{"selected with name", StorageInput{Selected: "old", NewName: "docs"}, ErrUploadDisabled},
		{"selected with files", StorageInput{Selected: "old", Files: []api.UploadFile{file}}, ErrUploadDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, nil)
			_, err := f.pipe.StorageStep(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.svc.count(), "no request may be sent")
		})
	}
}

func TestStorageStepSelectExisting(t *testing.T) {
	f := setup(t, nil)
	out, err := f.pipe.StorageStep(context.Background(), StorageInput{Selected: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "docs", out.Name)
	assert.False(t, out.Uploaded)
	assert.Zero(t, f.svc.count())
}

func TestStorageStepUploadLowercasesName(t *testing.T) {
	var gotName string
	f := setup(t, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /data", func(w http.ResponseWriter, r *http.Request) {
			gotName = r.URL.Query().Get("storage_name")
			jsonHandler(200, `{"status":"ok"}`)(w, r)
		})
	})

	out, err := f.pipe.StorageStep(context.Background(), StorageInput{
		NewName: "MyDocs",
		Files:   []api.UploadFile{{Name: "a.txt", ContentType: "text/plain", Content: strings.NewReader("x")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "mydocs", gotName)
	assert.Equal(t, "mydocs", out.Name)
	assert.True(t, out.Uploaded)
	assert.Equal(t, []string{"Files uploaded successfully!"}, f.rec.Messages(report.LevelSuccess))
	assert.Empty(t, f.rec.Messages(report.LevelWarn))
}

func TestStorageStepWarnsOnBadName(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /data", jsonHandler(200, `{}`))
	})
	_, err := f.pipe.StorageStep(context.Background(), StorageInput{
		NewName: "a--b_",
		Files:   []api.UploadFile{{Name: "a.txt", ContentType: "text/plain", Content: strings.NewReader("x")}},
	})
	require.NoError(t, err, "naming rules are advisory")
	assert.Len(t, f.rec.Messages(report.LevelWarn), 1)
}

func TestStorageStepUploadFailure(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /data", jsonHandler(500, `{"detail":"boom"}`))
	})
	out, err := f.pipe.StorageStep(context.Background(), StorageInput{
		NewName: "docs",
		Files:   []api.UploadFile{{Name: "a.txt", ContentType: "text/plain", Content: strings.NewReader("x")}},
	})
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 500))
	assert.False(t, out.Uploaded)
	assert.Equal(t, 1, f.svc.count(), "upload is not retried")
}

func TestContainerNameProblems(t *testing.T) {
	assert.Empty(t, ContainerNameProblems("my-docs-2"))
	assert.Len(t, ContainerNameProblems("ab"), 1)
	assert.Len(t, ContainerNameProblems("-docs"), 1)
	assert.Len(t, ContainerNameProblems("a--b"), 1)
	assert.Len(t, ContainerNameProblems("x_"), 2)
}

// --- prompt step ---

func TestPromptStep(t *testing.T) {
	archive := promptZip(t, map[string]string{
		"prompts/summary.txt":     "A",
		"prompts/entity_x.txt":    "B",
		"prompts/community_y.txt": "C",
	})
	var limit string
	f := setup(t, func(mux *http.ServeMux) {
		mux.HandleFunc("GET /index/config/prompts", func(w http.ResponseWriter, r *http.Request) {
			limit = r.URL.Query().Get("limit")
			w.Header().Set("Content-Type", "application/zip")
			w.Write(archive)
		})
	})

	out, err := f.pipe.PromptStep(context.Background(), "s1", "docs")
	require.NoError(t, err)
	assert.Equal(t, "5", limit)
	assert.True(t, out.Show)
	assert.Equal(t, prompts.Bundle{Summarize: "A", EntityExtraction: "B", CommunityReport: "C"}, out.Bundle)

	st, err := f.sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "B", st.EntityPrompt)
}

func TestPromptStepDownloadFailureAborts(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("GET /index/config/prompts", jsonHandler(500, `{"detail":"boom"}`))
	})

	_, err := f.pipe.PromptStep(context.Background(), "s1", "docs")
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 500))

	st, err := f.sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, st.Prompts().IsEmpty())
}

func TestPromptStepRequiresStorage(t *testing.T) {
	f := setup(t, nil)
	_, err := f.pipe.PromptStep(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrStorageNameRequired)
	assert.Zero(t, f.svc.count())
}

// --- build step ---

func TestBuildStepWithSessionPrompts(t *testing.T) {
	var parts map[string]string
	f := setup(t, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /index", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			parts = map[string]string{}
			for field, fhs := range r.MultipartForm.File {
				fh, err := fhs[0].Open()
				require.NoError(t, err)
				b, _ := io.ReadAll(fh)
				fh.Close()
				parts[field] = string(b)
			}
			jsonHandler(200, `{"status":"accepted"}`)(w, r)
		})
	})
	ctx := context.Background()
	_, err := f.sessions.Init(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, f.sessions.SetPrompts(ctx, "s1", "S", "E", ""))

	resp, err := f.pipe.BuildStep(ctx, "s1", "docs", "idx", true)
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.String("status"))
	assert.Equal(t, map[string]string{
		api.PartSummarizeDescriptions: "S",
		api.PartEntityExtraction:      "E",
	}, parts)

	st, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "idx", st.BuildIndexName)
}

func TestBuildStepDefaultPrompts(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /index", jsonHandler(200, `{}`))
	})
	ctx := context.Background()
	_, err := f.pipe.BuildStep(ctx, "s1", "docs", "idx", false)
	require.NoError(t, err)
	assert.Empty(t, f.svc.body("POST /index"))
}

func TestBuildStepValidation(t *testing.T) {
	f := setup(t, nil)
	_, err := f.pipe.BuildStep(context.Background(), "s1", "", "idx", false)
	assert.ErrorIs(t, err, ErrStorageNameRequired)
	_, err = f.pipe.BuildStep(context.Background(), "s1", "docs", "", false)
	assert.ErrorIs(t, err, ErrIndexNameRequired)
	assert.Zero(t, f.svc.count())
}

// --- query step ---

func TestQueryStep(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /query/global", jsonHandler(200, `{"result":"answer","context_data":{"reports":[]}}`))
	})
	ctx := context.Background()

	resp, err := f.pipe.QueryStep(ctx, "s1", []string{"foo"}, "Global", "hello")
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Result)
	assert.JSONEq(t, `{"index_name":["foo"],"query":"hello","reformat_context_data":true}`,
		string(f.svc.body("POST /query/global")))

	st, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "foo", st.BuildIndexName)
}

func TestQueryStepValidation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	_, err := f.pipe.QueryStep(ctx, "s1", []string{""}, "global", "hello")
	assert.ErrorIs(t, err, ErrNoIndex)
	_, err = f.pipe.QueryStep(ctx, "s1", []string{"foo"}, "global", "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	_, err = f.pipe.QueryStep(ctx, "s1", []string{"foo"}, " ", "hello")
	assert.ErrorIs(t, err, ErrQueryTypeRequired)
	assert.Zero(t, f.svc.count())
}

func TestQueryStepPassesAnyTypeThrough(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /query/drift", jsonHandler(200, `{"result":"drifted"}`))
	})

	resp, err := f.pipe.QueryStep(context.Background(), "s1", []string{"foo"}, "DRIFT", "hello")
	require.NoError(t, err)
	assert.Equal(t, "drifted", resp.Result)
	assert.JSONEq(t, `{"index_name":["foo"],"query":"hello","reformat_context_data":true}`,
		string(f.svc.body("POST /query/drift")))
}

// --- empty session ID ---

func TestBuildStepWithoutSessionIDUsesNewSession(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /index", jsonHandler(200, `{"status":"accepted"}`))
	})
	ctx := context.Background()

	resp, err := f.pipe.BuildStep(ctx, "", "docs", "idx", false)
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.String("status"))

	list, err := f.sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "idx", list[0].BuildIndexName)
}

func TestQueryStepWithoutSessionIDUsesNewSession(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /query/local", jsonHandler(200, `{"result":"ok"}`))
	})
	ctx := context.Background()

	_, err := f.pipe.QueryStep(ctx, "", []string{"foo"}, "local", "hello")
	require.NoError(t, err)

	list, err := f.sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "foo", list[0].BuildIndexName)
}

func TestPromptStepWithoutSessionIDReportsSession(t *testing.T) {
	archive := promptZip(t, map[string]string{
		"prompts/summary.txt":     "A",
		"prompts/entity_x.txt":    "B",
		"prompts/community_y.txt": "C",
	})
	f := setup(t, func(mux *http.ServeMux) {
		mux.HandleFunc("GET /index/config/prompts", func(w http.ResponseWriter, r *http.Request) {
			w.Write(archive)
		})
	})
	ctx := context.Background()

	out, err := f.pipe.PromptStep(ctx, "", "docs")
	require.NoError(t, err)
	require.NotEmpty(t, out.SessionID)

	st, err := f.sessions.Get(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "A", st.SummaryPrompt)
}

func TestEntityStep(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("GET /source/entity/idx/7", jsonHandler(200, `{"name":"ACME"}`))
	})
	ent, err := f.pipe.EntityStep(context.Background(), "idx", "7")
	require.NoError(t, err)
	assert.Equal(t, "ACME", ent.String("name"))

	_, err = f.pipe.EntityStep(context.Background(), "idx", "")
	assert.ErrorIs(t, err, ErrEntityIDRequired)
}

// --- batch ---

func TestRunBatch(t *testing.T) {
	f := setup(t, func(mux *http.ServeMux) {
		mux.Handle("POST /query/global", jsonHandler(200, `{"result":"g"}`))
		mux.Handle("POST /query/local", jsonHandler(500, `boom`))
	})

	path := filepath.Join(f.dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
index: [foo]
queries:
  - query: what is this about?
  - query: who is involved?
    type: local
`), 0o644))

	bf, err := ReadBatchFile(path)
	require.NoError(t, err)
	res, err := f.pipe.RunBatch(context.Background(), "s1", bf)
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Equal(t, "g", res.Results[0].Result)
	assert.Equal(t, "global", res.Results[0].Type)
	assert.Equal(t, "Error: 500 boom", res.Results[1].Error)
	assert.Equal(t, 2, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Failed)

	out := filepath.Join(f.dir, "results.yaml")
	require.NoError(t, WriteBatchResults(out, res))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "who is involved?")
}

func TestRunBatchStopsOnCancel(t *testing.T) {
	f := setup(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.pipe.RunBatch(ctx, "s1", &BatchFile{Index: []string{"foo"}, Queries: []BatchQuery{{Query: "q"}}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Results)
}

func TestDecodeContext(t *testing.T) {
	assert.Nil(t, decodeContext(nil))
	assert.Equal(t, "not json", decodeContext(json.RawMessage("not json")))
	assert.Equal(t, map[string]any{"a": float64(1)}, decodeContext(json.RawMessage(`{"a":1}`)))
}
