// Package types defines the configuration and wire structures shared by the
// graphrag-console packages.
package types

import "encoding/json"

// StorageList is the body of GET /data.
type StorageList struct {
	StorageName []string `json:"storage_name" yaml:"storage_name"`
}

// IndexList is the body of GET /index.
type IndexList struct {
	IndexName []string `json:"index_name" yaml:"index_name"`
}

// QueryType selects the query endpoint. Values are lower-cased before use.
type QueryType string

const (
	QueryGlobal QueryType = "global"
	QueryLocal  QueryType = "local"
)

// QueryRequest is the JSON body posted to /query/{type}.
type QueryRequest struct {
	IndexName           []string `json:"index_name"`
	Query               string   `json:"query"`
	ReformatContextData bool     `json:"reformat_context_data"`
}

// QueryResponse holds the answer payload of a query. The body can be large,
// so it is kept raw alongside the commonly used fields.
type QueryResponse struct {
	Result      string          `json:"result" yaml:"result"`
	ContextData json.RawMessage `json:"context_data,omitempty" yaml:"-"`
	Raw         json.RawMessage `json:"-" yaml:"-"`
}

// Document is a generic JSON object returned by endpoints whose schema is
// owned by the remote service (entity config, build/upload acknowledgements,
// source entity records).
type Document struct {
	Fields map[string]any  `json:"-" yaml:"fields"`
	Raw    json.RawMessage `json:"-" yaml:"-"`
}

// UnmarshalJSON keeps the raw body and decodes it into Fields when it is an object.
func (d *Document) UnmarshalJSON(data []byte) error {
	d.Raw = append(d.Raw[:0], data...)
	d.Fields = nil
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		d.Fields = m
	}
	return nil
}

// MarshalJSON writes the raw body back unchanged.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// String returns a field as a string, or "" when absent or not a string.
func (d Document) String(key string) string {
	if v, ok := d.Fields[key].(string); ok {
		return v
	}
	return ""
}

// EntityConfig is the body of GET /index/config/entity.
type EntityConfig = Document

// SourceEntity is the body of GET /source/entity/{index}/{id}.
type SourceEntity = Document

// BuildResponse is the acknowledgement returned when an index build job is accepted.
type BuildResponse = Document

// UploadResponse is the acknowledgement returned by POST /data.
type UploadResponse = Document

// PromptOverrides are optional prompt texts sent with an index build. Empty
// fields are omitted so the service falls back to its defaults.
type PromptOverrides struct {
	EntityExtraction      string `json:"entity_extraction_prompt,omitempty" yaml:"entity_extraction_prompt,omitempty"`
	CommunityReport       string `json:"community_report_prompt,omitempty" yaml:"community_report_prompt,omitempty"`
	SummarizeDescriptions string `json:"summarize_descriptions_prompt,omitempty" yaml:"summarize_descriptions_prompt,omitempty"`
}

// IsEmpty reports whether no override is set.
func (o PromptOverrides) IsEmpty() bool {
	return o.EntityExtraction == "" && o.CommunityReport == "" && o.SummarizeDescriptions == ""
}
