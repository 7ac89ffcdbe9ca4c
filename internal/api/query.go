package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/graphrag-console/pkg/types"
)

// Query runs a query against one or more indexes (POST /query/{type}).
// queryType is lower-cased before use. The full response body is kept in
// QueryResponse.Raw.
func (c *Client) Query(ctx context.Context, indexNames []string, queryType, text string) (*types.QueryResponse, error) {
	const op = "query"
	qt := strings.ToLower(strings.TrimSpace(queryType))

	payload, err := json.Marshal(types.QueryRequest{
		IndexName:           indexNames,
		Query:               text,
		ReformatContextData: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/query/"+url.PathEscape(qt), nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(op, req, statusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}
	out, err := decodeQueryResponse(raw)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return out, nil
}

// decodeQueryResponse accepts a string or structured "result".
func decodeQueryResponse(raw []byte) (*types.QueryResponse, error) {
	var envelope struct {
		Result      json.RawMessage `json:"result"`
		ContextData json.RawMessage `json:"context_data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	out := &types.QueryResponse{ContextData: envelope.ContextData, Raw: raw}
	if len(envelope.Result) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Result, &s); err == nil {
			out.Result = s
		} else {
			out.Result = string(envelope.Result)
		}
	}
	return out, nil
}

// SourceEntity fetches a single entity record
// (GET /source/entity/{index_name}/{entity_id}).
func (c *Client) SourceEntity(ctx context.Context, indexName, entityID string) (*types.SourceEntity, error) {
	path := "/source/entity/" + url.PathEscape(indexName) + "/" + url.PathEscape(entityID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var out types.SourceEntity
	if err := c.doJSON("get source entity", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
