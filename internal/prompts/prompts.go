// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompts manages the prompt bundle: the summarization,
// entity-extraction, and community-report prompt templates that the service
// generates from a storage container's documents and that can override the
// defaults of an index build.
package prompts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/graphrag-console/pkg/types"
)

// File name prefixes that identify each prompt in a generated bundle.
const (
	PrefixSummarize        = "summ"
	PrefixEntityExtraction = "entity"
	PrefixCommunityReport  = "community"

	promptExt = ".txt"
)

// Canonical file names used by Bundle.WriteFiles. Each matches its prefix.
const (
	FileSummarize        = "summarize_descriptions.txt"
	FileEntityExtraction = "entity_extraction.txt"
	FileCommunityReport  = "community_report.txt"
)

var (
	// ErrNoMatch means no prompt file has the expected prefix.
	ErrNoMatch = errors.New("no prompt file matches prefix")
	// ErrMultipleMatches means more than one prompt file has the prefix.
	ErrMultipleMatches = errors.New("multiple prompt files match prefix")
)

// PrefixError reports a failed prefix lookup. It wraps ErrNoMatch or
// ErrMultipleMatches.
type PrefixError struct {
	Dir        string
	Prefix     string
	Candidates []string
	Err        error
}

func (e *PrefixError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%v %q in %s: %s", e.Err, e.Prefix, e.Dir, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("%v %q in %s", e.Err, e.Prefix, e.Dir)
}

func (e *PrefixError) Unwrap() error { return e.Err }

// Bundle holds the three prompt texts.
type Bundle struct {
	Summarize        string `json:"summarize" yaml:"summarize"`
	EntityExtraction string `json:"entity_extraction" yaml:"entity_extraction"`
	CommunityReport  string `json:"community_report" yaml:"community_report"`
}

// IsEmpty reports whether every prompt is empty.
func (b Bundle) IsEmpty() bool {
	return b.Summarize == "" && b.EntityExtraction == "" && b.CommunityReport == ""
}

// Overrides converts the bundle into build overrides.
func (b Bundle) Overrides() types.PromptOverrides {
	return types.PromptOverrides{
		EntityExtraction:      b.EntityExtraction,
		CommunityReport:       b.CommunityReport,
		SummarizeDescriptions: b.Summarize,
	}
}

// Load reads the bundle from the .txt files in dir, selecting each prompt by
// file name prefix. Exactly one file must match each prefix; otherwise a
// *PrefixError is returned. Results are (summary, entity, community).
func Load(dir string) (Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Bundle{}, fmt.Errorf("reading prompt directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), promptExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var b Bundle
	for _, p := range []struct {
		prefix string
		dst    *string
	}{
		{PrefixSummarize, &b.Summarize},
		{PrefixEntityExtraction, &b.EntityExtraction},
		{PrefixCommunityReport, &b.CommunityReport},
	} {
		name, err := matchOne(dir, p.prefix, names)
		if err != nil {
			return Bundle{}, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return Bundle{}, fmt.Errorf("reading prompt %s: %w", name, err)
		}
		*p.dst = string(data)
	}
	return b, nil
}

func matchOne(dir, prefix string, names []string) (string, error) {
	var matches []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &PrefixError{Dir: dir, Prefix: prefix, Err: ErrNoMatch}
	default:
		return "", &PrefixError{Dir: dir, Prefix: prefix, Candidates: matches, Err: ErrMultipleMatches}
	}
}

// WriteFiles writes the non-empty prompts to dir under their canonical names.
func (b Bundle) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating prompt directory %s: %w", dir, err)
	}
	var written []string
	for _, f := range []struct{ name, text string }{
		{FileSummarize, b.Summarize},
		{FileEntityExtraction, b.EntityExtraction},
		{FileCommunityReport, b.CommunityReport},
	} {
		if f.text == "" {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.text), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
