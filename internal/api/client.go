// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the HTTP client for the remote GraphRAG service. Each method
// issues one synchronous request against the configured base URL, attaches
// the configured headers, and returns either decoded JSON or a typed *Error.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/graphrag-console/internal/httputil"
	"github.com/pdiddy/graphrag-console/internal/logger"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// Client talks to one GraphRAG API deployment.
type Client struct {
	baseURL    string
	headers    map[string]string
	upload     map[string]string
	userAgent  string
	maxRetries int
	http       *http.Client
	log        *logger.Logger

	// indexes caches GET /index results keyed by base URL and headers.
	indexes *cache.Cache
}

// New creates a Client from cfg. When httpClient is nil a client with
// cfg.Timeout is created. A nil log discards diagnostics.
func New(cfg types.APIConfig, httpClient *http.Client, log *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api base URL %q: %w", cfg.URL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = types.DefaultCacheTTL
	}

	headers := maps.Clone(cfg.Headers)
	if headers == nil {
		headers = map[string]string{}
	}

	return &Client{
		baseURL:    base,
		headers:    headers,
		upload:     maps.Clone(cfg.UploadHeaders),
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		http:       httpClient,
		log:        log.With("component", "api"),
		indexes:    cache.New(ttl, 2*ttl),
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httputil.SetHeaders(req, c.headers, c.userAgent)
	return req, nil
}

// send executes req and returns the response when its status satisfies ok.
// Otherwise the body is read (bounded), closed, and a KindStatus error is returned.
func (c *Client) send(op string, req *http.Request, ok func(int) bool) (*http.Response, error) {
	start := time.Now()
	resp, err := httputil.DoWithRetry(req.Context(), c.http, req, c.maxRetries)
	if err != nil {
		c.log.Warn("request failed", "op", op, "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	c.log.Debug("request",
		"op", op,
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
		"headers", c.headers,
	)

	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Op:         op,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return resp, nil
}

func statusOK(code int) bool { return code == http.StatusOK }

func status2xx(code int) bool { return code >= 200 && code < 300 }

// doJSON sends req, requires HTTP 200 and decodes the body into out.
func (c *Client) doJSON(op string, req *http.Request, out any) error {
	resp, err := c.send(op, req, statusOK)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// cacheKey identifies a request by base URL and header set.
func (c *Client) cacheKey(path string) string {
	keys := make([]string, 0, len(c.headers))
	for k := range c.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(c.baseURL + path))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k + "=" + c.headers[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Ping issues GET /data and returns the raw status and body. It is the
// connectivity smoke test; unlike the other methods a non-200 status is not
// an error here.
func (c *Client) Ping(ctx context.Context) (int, []byte, error) {
	const op = "ping"
	req, err := c.newRequest(ctx, http.MethodGet, "/data", nil, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := c.send(op, req, func(int) bool { return true })
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	return resp.StatusCode, body, nil
}
