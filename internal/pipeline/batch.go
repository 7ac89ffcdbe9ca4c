// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/graphrag-console/internal/report"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// BatchFile is a set of queries kept on disk so they can be re-run against
// a rebuilt index. Per-query index and type fall back to the file defaults.
type BatchFile struct {
	Index   []string     `yaml:"index"`
	Type    string       `yaml:"type,omitempty"`
	Queries []BatchQuery `yaml:"queries"`
}

// BatchQuery is one query of a batch.
type BatchQuery struct {
	Query string   `yaml:"query"`
	Type  string   `yaml:"type,omitempty"`
	Index []string `yaml:"index,omitempty"`
}

// BatchResults is the on-disk form of a batch run.
type BatchResults struct {
	Results []BatchResult `yaml:"results"`
	Summary BatchSummary  `yaml:"summary"`
}

// BatchResult holds the answer or the error of one query.
type BatchResult struct {
	Query       string   `yaml:"query"`
	Type        string   `yaml:"type"`
	Index       []string `yaml:"index"`
	Result      string   `yaml:"result,omitempty"`
	ContextData any      `yaml:"context_data,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}

// BatchSummary stores counts and a timestamp.
type BatchSummary struct {
	Total     int       `yaml:"total"`
	Failed    int       `yaml:"failed"`
	Timestamp time.Time `yaml:"timestamp"`
}

// ReadBatchFile loads a batch file from disk.
func ReadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var bf BatchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	return &bf, nil
}

// WriteBatchResults saves a batch run to a YAML file.
func WriteBatchResults(path string, res BatchResults) error {
	data, err := yaml.Marshal(&res)
	if err != nil {
		return fmt.Errorf("marshaling batch results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// RunBatch runs every query of bf in order. A failing query is recorded and
// the batch continues; cancelling ctx stops the batch.
func (p *Pipeline) RunBatch(ctx context.Context, sessionID string, bf *BatchFile) (BatchResults, error) {
	var out BatchResults
	for i, q := range bf.Queries {
		if err := ctx.Err(); err != nil {
			out.Summary.Timestamp = time.Now()
			return out, err
		}

		r := BatchResult{Query: q.Query, Type: q.Type, Index: q.Index}
		if r.Type == "" {
			r.Type = bf.Type
		}
		if r.Type == "" {
			r.Type = string(types.QueryGlobal)
		}
		if len(r.Index) == 0 {
			r.Index = bf.Index
		}

		p.rep.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(bf.Queries), q.Query))
		resp, err := p.QueryStep(ctx, sessionID, r.Index, r.Type, q.Query)
		if err != nil {
			r.Error = report.Message(err)
			out.Summary.Failed++
			p.rep.Error(err)
		} else {
			r.Result = resp.Result
			r.ContextData = decodeContext(resp.ContextData)
		}
		out.Results = append(out.Results, r)
	}
	out.Summary.Total = len(out.Results)
	out.Summary.Timestamp = time.Now()
	return out, nil
}

func decodeContext(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
