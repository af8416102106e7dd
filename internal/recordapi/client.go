// Package recordapi is the typed client for the record-storage backend.
//
// The backend owns the learning-record, tag, link, and category collections
// and exposes plain CRUD endpoints over JSON. This client validates the shape
// of what comes back (list endpoints must return arrays) and surfaces backend
// failures unchanged; it never interprets or retries them.
package recordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yotsuba-lab/manabi/internal/records"
)

// Client talks to one record backend.
type Client struct {
	base string
	hc   *http.Client
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BackendError is a non-2xx response from the record backend, carried to the
// caller with the backend's own message.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("record backend error %d: %s", e.Status, e.Message)
}

// do executes one request and decodes a 2xx JSON body into out (skipped when
// out is nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("record backend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		msg := strings.TrimSpace(string(raw))
		var e struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(raw, &e); err == nil {
			if e.Message != "" {
				msg = e.Message
			} else if e.Error != "" {
				msg = e.Error
			}
		}
		return &BackendError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// getList fetches path and decodes it into out, rejecting anything that is
// not a JSON array. The backend has returned error objects with a 200 before;
// joining over one of those must fail loudly, not silently yield zero rows.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		return nil, fmt.Errorf("record backend %s: expected array, got %.40s", path, trimmed)
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode backend %s: %w", path, err)
	}
	return items, nil
}

// ListRecords returns all learning records owned by ownerID.
func (c *Client) ListRecords(ctx context.Context, ownerID int64) ([]records.Record, error) {
	return getList[records.Record](ctx, c, fmt.Sprintf("/api/learnings?user_id=%d", ownerID))
}

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]records.Tag, error) {
	return getList[records.Tag](ctx, c, "/api/tags")
}

// ListLinks returns all learning-tag join rows.
func (c *Client) ListLinks(ctx context.Context) ([]records.TagLink, error) {
	return getList[records.TagLink](ctx, c, "/api/learning-tags")
}

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]records.Category, error) {
	return getList[records.Category](ctx, c, "/api/categories")
}

// RecordPatch is the mutable portion of a learning record. Tags are
// submitted by name; the backend resolves or creates them and maintains the
// join rows.
type RecordPatch struct {
	Title              string   `json:"title"`
	ExplanatoryText    string   `json:"explanatory_text"`
	UnderstandingLevel int      `json:"understanding_level"`
	ReferenceURL       string   `json:"reference_url,omitempty"`
	CategoryID         int64    `json:"category_id,omitempty"`
	Tags               []string `json:"tags"`
	GitHubPath         string   `json:"github_path,omitempty"`
	CommitSHA          string   `json:"commit_sha,omitempty"`
	UserID             int64    `json:"user_id"`
}

// CreateRecord stores a new learning record and returns it with the
// backend-assigned id.
func (c *Client) CreateRecord(ctx context.Context, patch RecordPatch) (*records.Record, error) {
	var rec records.Record
	if err := c.do(ctx, http.MethodPost, "/api/learnings", patch, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord replaces the mutable fields of record id.
func (c *Client) UpdateRecord(ctx context.Context, id int64, patch RecordPatch) (*records.Record, error) {
	var rec records.Record
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/learnings/%d", id), patch, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecord removes record id.
func (c *Client) DeleteRecord(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/learnings/%d", id), nil, nil)
}

// CreateCategory stores a new category and returns it with its id.
func (c *Client) CreateCategory(ctx context.Context, name string) (*records.Category, error) {
	var cat records.Category
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/categories", body, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}
