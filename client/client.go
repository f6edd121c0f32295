// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client provides HTTP wrappers for the sCMS JSON API, mirroring
// the behavior of the original frontend fetch helpers: bearer token
// attachment, envelope decoding, 401 credential wipe and a short-lived
// GET cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// DefaultCacheTTL is how long GET responses are served from the local
// cache before they are fetched again.
const DefaultCacheTTL = 5 * time.Minute

// APIError carries the error envelope returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Response is the server's success envelope.
type Response struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type cachedEntry struct {
	body      []byte
	meta      *Meta
	expiresAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithCacheTTL sets the GET cache window. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithOnUnauthorized registers a callback invoked after a 401 response
// wipes the stored token.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client talks to the public API. Requests carry the bearer token when one
// is set, and GET responses are cached for the configured window.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string

	cacheTTL time.Duration
	cacheMu  sync.Mutex
	cache    map[string]cachedEntry

	onUnauthorized func()
}

// New creates a client for the API rooted at baseURL, e.g.
// "https://school.example.com/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: 30 * time.Second},
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cachedEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the stored bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the stored bearer token, or "" when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ClearCache drops all cached GET responses.
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	c.cache = make(map[string]cachedEntry)
	c.cacheMu.Unlock()
}

// Get performs a GET request, decoding the data envelope into out. Cached
// responses within the TTL are served without a network round trip. The
// returned Meta is nil for endpoints without pagination.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*Meta, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if c.cacheTTL > 0 {
		c.cacheMu.Lock()
		entry, ok := c.cache[u]
		c.cacheMu.Unlock()
		if ok && time.Now().Before(entry.expiresAt) {
			if out != nil {
				if err := json.Unmarshal(entry.body, out); err != nil {
					return nil, fmt.Errorf("decoding cached response: %w", err)
				}
			}
			return entry.meta, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	env, err := c.send(req)
	if err != nil {
		return nil, err
	}

	if c.cacheTTL > 0 {
		c.cacheMu.Lock()
		c.cache[u] = cachedEntry{
			body:      env.Data,
			meta:      env.Meta,
			expiresAt: time.Now().Add(c.cacheTTL),
		}
		c.cacheMu.Unlock()
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}
	return env.Meta, nil
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Upload performs a multipart POST, streaming the file under the given
// field name. The Content-Type header is set by the multipart writer.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finishing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	env, err := c.send(req)
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	env, err := c.send(req)
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// send executes the request, attaching the bearer token and mapping error
// statuses. A 401 wipes the stored token before the callback fires.
func (c *Client) send(req *http.Request) (*Response, error) {
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return &Response{}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var env Response
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decoding envelope: %w", err)
		}
		return &env, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.SetToken("")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	case http.StatusNotFound:
		return nil, ErrNotFound
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	return nil, apiErr
}
