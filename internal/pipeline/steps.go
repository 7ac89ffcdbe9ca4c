// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/graphrag-console/internal/api"
	"github.com/pdiddy/graphrag-console/internal/prompts"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// StorageInput selects an existing container or names a new one to upload
// files into. Only one of the two may be used.
type StorageInput struct {
	Selected string
	NewName  string
	Files    []api.UploadFile
}

// StorageOutcome is the container the later steps should use.
type StorageOutcome struct {
	Name     string
	Uploaded bool
	Response *types.UploadResponse
}

// StorageStep resolves the storage container for the workflow. Selecting an
// existing container disables the upload inputs. An upload lower-cases the
// new name, warns about naming-rule violations, and sends the files once.
func (p *Pipeline) StorageStep(ctx context.Context, in StorageInput) (StorageOutcome, error) {
	if in.Selected != "" {
		if in.NewName != "" || len(in.Files) > 0 {
			return StorageOutcome{}, ErrUploadDisabled
		}
		p.rep.Info(fmt.Sprintf("Using storage container %s", in.Selected))
		return StorageOutcome{Name: in.Selected}, nil
	}

	if in.NewName == "" {
		return StorageOutcome{}, ErrStorageNameRequired
	}
	if len(in.Files) == 0 {
		return StorageOutcome{}, ErrNoFiles
	}

	name := strings.ToLower(in.NewName)
	if name != in.NewName {
		p.rep.Info(fmt.Sprintf("Storage name lower-cased to %s", name))
	}
	for _, problem := range ContainerNameProblems(name) {
		p.rep.Warn(problem)
	}

	p.log.Info("uploading files", "storage", name, "files", len(in.Files))
	resp, err := p.svc.UploadFiles(ctx, name, in.Files)
	if err != nil {
		return StorageOutcome{Name: name}, err
	}
	p.rep.Success("Files uploaded successfully!")
	return StorageOutcome{Name: name, Uploaded: true, Response: resp}, nil
}

// PromptOutcome reports what the prompt step produced.
type PromptOutcome struct {
	// SessionID is the session the prompts were stored in. It differs from
	// the requested ID when an empty ID created a new session.
	SessionID string
	Files     []string
	Bundle    prompts.Bundle
	// Show is true when at least one prompt has text worth displaying.
	Show bool
}

// PromptStep generates prompts from storageName, extracts the archive, and
// loads the prompt files into the session. A failed download or extraction
// aborts the step.
func (p *Pipeline) PromptStep(ctx context.Context, sessionID, storageName string) (PromptOutcome, error) {
	if storageName == "" {
		return PromptOutcome{}, ErrStorageNameRequired
	}
	st, err := p.sessions.Init(ctx, sessionID)
	if err != nil {
		return PromptOutcome{}, err
	}

	p.rep.Info("Generating LLM prompts for GraphRAG...")
	files, err := prompts.GenerateAndExtract(ctx, p.svc, storageName, p.prompts.ZipFile, p.prompts.ExtractDir, p.prompts.Limit)
	if err != nil {
		return PromptOutcome{}, err
	}
	p.log.Debug("prompt archive extracted", "files", files)

	b, err := p.sessions.LoadPrompts(ctx, st.ID, p.prompts.Dir)
	if err != nil {
		return PromptOutcome{SessionID: st.ID, Files: files}, err
	}

	out := PromptOutcome{SessionID: st.ID, Files: files, Bundle: b, Show: !b.IsEmpty()}
	p.rep.Success(fmt.Sprintf("Generated prompts for %s", storageName))
	return out, nil
}

// BuildStep submits an index build job. With useSessionPrompts the
// session's non-empty prompts override the service defaults. The index name
// is recorded in the session. The job runs remotely; only its acceptance is
// reported.
func (p *Pipeline) BuildStep(ctx context.Context, sessionID, storageName, indexName string, useSessionPrompts bool) (*types.BuildResponse, error) {
	if storageName == "" {
		return nil, ErrStorageNameRequired
	}
	if indexName == "" {
		return nil, ErrIndexNameRequired
	}
	st, err := p.sessions.Init(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var overrides types.PromptOverrides
	if useSessionPrompts {
		overrides = st.Prompts().Overrides()
		if overrides.IsEmpty() {
			p.rep.Warn("the session has no prompts; building with the default prompts")
		}
	}

	p.log.Info("building index", "storage", storageName, "index", indexName, "custom_prompts", !overrides.IsEmpty())
	resp, err := p.svc.BuildIndex(ctx, storageName, indexName, overrides)
	if err != nil {
		return nil, err
	}
	if err := p.sessions.SetIndexName(ctx, st.ID, indexName); err != nil {
		return resp, err
	}
	p.rep.Success(fmt.Sprintf("Indexing job for %s submitted", indexName))
	return resp, nil
}

// QueryStep runs a query over indexNames and records the first index name
// in the session. The query type selects the endpoint (/query/{type}) and is
// passed through lower-cased; global and local are the usual values.
func (p *Pipeline) QueryStep(ctx context.Context, sessionID string, indexNames []string, queryType, text string) (*types.QueryResponse, error) {
	names := nonEmpty(indexNames)
	if len(names) == 0 {
		return nil, ErrNoIndex
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	qt := types.QueryType(strings.ToLower(strings.TrimSpace(queryType)))
	if qt == "" {
		return nil, ErrQueryTypeRequired
	}
	st, err := p.sessions.Init(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := p.svc.Query(ctx, names, string(qt), text)
	if err != nil {
		return nil, err
	}
	if err := p.sessions.SetIndexName(ctx, st.ID, names[0]); err != nil {
		return resp, err
	}
	return resp, nil
}

// EntityStep fetches one source entity record from an index.
func (p *Pipeline) EntityStep(ctx context.Context, indexName, entityID string) (*types.SourceEntity, error) {
	if indexName == "" {
		return nil, ErrIndexNameRequired
	}
	if entityID == "" {
		return nil, ErrEntityIDRequired
	}
	return p.svc.SourceEntity(ctx, indexName, entityID)
}

// EntityConfig returns the service's entity-extraction configuration.
func (p *Pipeline) EntityConfig(ctx context.Context) (*types.EntityConfig, error) {
	return p.svc.EntityConfig(ctx)
}

func nonEmpty(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
