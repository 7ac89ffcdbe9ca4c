// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the indexing workflow: choose or upload a
// storage container, generate prompts from it, build an index, and query
// the index. Each step calls the remote service through the API client,
// records its outputs in the session, and reports progress to the user.
// Steps are independent; nothing enforces their order.
package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/pdiddy/graphrag-console/internal/api"
	"github.com/pdiddy/graphrag-console/internal/logger"
	"github.com/pdiddy/graphrag-console/internal/report"
	"github.com/pdiddy/graphrag-console/internal/session"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// Input errors. Each is returned before any request is sent.
var (
	ErrUploadDisabled      = errors.New("upload is disabled while an existing storage container is selected")
	ErrStorageNameRequired = errors.New("storage container name is required")
	ErrNoFiles             = errors.New("no files to upload")
	ErrIndexNameRequired   = errors.New("index name is required")
	ErrNoIndex             = errors.New("at least one index name is required")
	ErrEntityIDRequired    = errors.New("entity id is required")
	ErrEmptyQuery          = errors.New("query text is empty")
	ErrQueryTypeRequired   = errors.New("query type is required")
)

// Service is the part of the remote API the pipeline uses. *api.Client
// implements it.
type Service interface {
	ListStorageContainers(ctx context.Context) (*types.StorageList, error)
	UploadFiles(ctx context.Context, storageName string, files []api.UploadFile) (*types.UploadResponse, error)
	ListIndexes(ctx context.Context) (*types.IndexList, error)
	EntityConfig(ctx context.Context) (*types.EntityConfig, error)
	BuildIndex(ctx context.Context, storageName, indexName string, overrides types.PromptOverrides) (*types.BuildResponse, error)
	DownloadPrompts(ctx context.Context, storageName string, limit int, w io.Writer) (int64, error)
	Query(ctx context.Context, indexNames []string, queryType, text string) (*types.QueryResponse, error)
	SourceEntity(ctx context.Context, indexName, entityID string) (*types.SourceEntity, error)
}

// Pipeline runs workflow steps against one service.
type Pipeline struct {
	svc      Service
	sessions *session.Manager
	rep      report.Reporter
	prompts  types.PromptConfig
	log      *logger.Logger
}

// New returns a Pipeline. A nil log discards log output.
func New(svc Service, sessions *session.Manager, rep report.Reporter, prompts types.PromptConfig, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{svc: svc, sessions: sessions, rep: rep, prompts: prompts, log: log}
}

// StorageOptions returns the selectable storage containers: the empty
// placeholder followed by every container name. A missing list yields only
// the placeholder.
func (p *Pipeline) StorageOptions(ctx context.Context) ([]string, error) {
	list, err := p.svc.ListStorageContainers(ctx)
	if err != nil {
		p.log.Warn("no storage containers listed", "error", err)
		return []string{""}, err
	}
	return withPlaceholder(list.StorageName), nil
}

// IndexOptions returns the empty placeholder followed by every index name.
func (p *Pipeline) IndexOptions(ctx context.Context) ([]string, error) {
	list, err := p.svc.ListIndexes(ctx)
	if err != nil {
		p.log.Warn("no indexes listed", "error", err)
		return []string{""}, err
	}
	return withPlaceholder(list.IndexName), nil
}

func withPlaceholder(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, "")
	return append(out, names...)
}
