// Package apiclient talks to institute-service over HTTP/JSON.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"institute-service/internal/auth"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer. It matches ErrUnauthorized on 401 and ErrNotFound on 404.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	session *auth.AuthResponse
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithHTTPClient replaces the transport, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Session returns the stored sign-in, nil when signed out.
func (c *Client) Session() *auth.AuthResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession restores a saved sign-in.
func (c *Client) SetSession(s *auth.AuthResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func searchQuery(term string) url.Values {
	if term == "" {
		return nil
	}
	return url.Values{"q": {term}}
}

// Resource is the CRUD surface of one owner-scoped collection.
type Resource[E, R any] struct {
	client *Client
	path   string
}

func newResource[E, R any](c *Client, path string) *Resource[E, R] {
	return &Resource[E, R]{client: c, path: path}
}

func (r *Resource[E, R]) List(ctx context.Context) ([]E, error) {
	var rows []E
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Resource[E, R]) Create(ctx context.Context, req R) (*E, error) {
	var created E
	if err := r.client.do(ctx, http.MethodPost, r.path, nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Resource[E, R]) Update(ctx context.Context, id uuid.UUID, req R) (*E, error) {
	var updated E
	if err := r.client.do(ctx, http.MethodPut, r.path+"/"+id.String(), nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Resource[E, R]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.do(ctx, http.MethodDelete, r.path+"/"+id.String(), nil, nil, nil)
}

// Single is a one-row-per-owner document.
type Single[E, R any] struct {
	client *Client
	path   string
}

func (s *Single[E, R]) Get(ctx context.Context) (*E, error) {
	var row E
	if err := s.client.do(ctx, http.MethodGet, s.path, nil, nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Single[E, R]) Update(ctx context.Context, req R) (*E, error) {
	var row E
	if err := s.client.do(ctx, http.MethodPut, s.path, nil, req, &row); err != nil {
		return nil, err
	}
	return &row, nil
}
