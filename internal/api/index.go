package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/graphrag-console/pkg/types"
)

// Multipart field names for prompt overrides on an index build.
const (
	PartEntityExtraction      = "entity_extraction_prompt"
	PartCommunityReport       = "community_report_prompt"
	PartSummarizeDescriptions = "summarize_descriptions_prompt"
)

// ListIndexes returns the existing index names (GET /index). Results are
// cached for the configured TTL and dropped by InvalidateIndexes, which the
// mutating operations call.
func (c *Client) ListIndexes(ctx context.Context) (*types.IndexList, error) {
	key := c.cacheKey("/index")
	if v, ok := c.indexes.Get(key); ok {
		c.log.Debug("index list cache hit")
		list := v.(types.IndexList)
		list.IndexName = slices.Clone(list.IndexName)
		return &list, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/index", nil, nil)
	if err != nil {
		return nil, err
	}
	var out types.IndexList
	if err := c.doJSON("list indexes", req, &out); err != nil {
		return nil, err
	}
	c.indexes.Set(key, types.IndexList{IndexName: slices.Clone(out.IndexName)}, cache.DefaultExpiration)
	return &out, nil
}

// InvalidateIndexes drops any cached index listing.
func (c *Client) InvalidateIndexes() {
	c.indexes.Flush()
}

// EntityConfig returns the entity extraction configuration
// (GET /index/config/entity).
func (c *Client) EntityConfig(ctx context.Context) (*types.EntityConfig, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/index/config/entity", nil, nil)
	if err != nil {
		return nil, err
	}
	var out types.EntityConfig
	if err := c.doJSON("get entity config", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildIndex submits an index build job for storageName
// (POST /index?index_name=X&storage_name=Y). Non-empty overrides are sent
// as multipart parts; with no overrides the request has no body. The call
// returns once the service accepts the job; build progress is not observed.
func (c *Client) BuildIndex(ctx context.Context, storageName, indexName string, overrides types.PromptOverrides) (*types.BuildResponse, error) {
	params := url.Values{
		"index_name":   {indexName},
		"storage_name": {storageName},
	}

	var body io.Reader
	contentType := ""
	if !overrides.IsEmpty() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		parts := []struct{ field, text string }{
			{PartEntityExtraction, overrides.EntityExtraction},
			{PartCommunityReport, overrides.CommunityReport},
			{PartSummarizeDescriptions, overrides.SummarizeDescriptions},
		}
		for _, p := range parts {
			if p.text == "" {
				continue
			}
			if err := writeFilePart(mw, p.field, p.field+".txt", "text/plain", strings.NewReader(p.text)); err != nil {
				return nil, fmt.Errorf("encoding %s: %w", p.field, err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("encoding prompt overrides: %w", err)
		}
		body = &buf
		contentType = mw.FormDataContentType()
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/index", params, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	var out types.BuildResponse
	if err := c.doJSON("build index", req, &out); err != nil {
		return nil, err
	}
	c.InvalidateIndexes()
	return &out, nil
}

// DownloadPrompts requests prompt generation for storageName and streams the
// returned zip archive into w exactly as received
// (GET /index/config/prompts?storage_name=X&limit=N). Any non-2xx status is
// an error. It returns the number of bytes written.
func (c *Client) DownloadPrompts(ctx context.Context, storageName string, limit int, w io.Writer) (int64, error) {
	const op = "generate prompts"
	params := url.Values{
		"storage_name": {storageName},
		"limit":        {strconv.Itoa(limit)},
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/index/config/prompts", params, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.send(op, req, status2xx)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Op: op, Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}
	return n, nil
}
