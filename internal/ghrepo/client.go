// Package ghrepo treats one GitHub repository as a mutable filesystem
// reached over the Contents and Git-Trees REST APIs.
//
// The remote is the single source of truth: nothing is cached between
// operations except the flattened tree listing, which is replaced wholesale
// after writes. Writes use sha-based optimistic concurrency; the remote, not
// this package, serializes competing writers.
package ghrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/yotsuba-lab/manabi/internal/session"
)

const defaultBaseURL = "https://api.github.com"

// The REST API is rate limited per token; keep a margin under the documented
// secondary limits.
const (
	defaultRatePerSec = 5
	defaultBurst      = 10
)

// Client performs REST calls against one repository on behalf of one session.
type Client struct {
	hc      *http.Client
	base    string
	owner   string
	repo    string
	branch  string
	limiter *rate.Limiter
}

// Option adjusts a Client, mostly for tests.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.base = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the token-authenticated HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithBranch sets the branch written to and listed from. Default "main".
func WithBranch(branch string) Option {
	return func(c *Client) { c.branch = branch }
}

// WithRateLimit overrides the client-side request throttle.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

// New builds a client bound to the session's repository, authenticating
// every request with the session's access token.
func New(sess session.Session, opts ...Option) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sess.Token})
	c := &Client{
		hc:      oauth2.NewClient(context.Background(), src),
		base:    defaultBaseURL,
		owner:   sess.Login,
		repo:    sess.Repo,
		branch:  "main",
		limiter: rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultBurst),
	}
	c.hc.Timeout = 30 * time.Second
	for _, o := range opts {
		o(c)
	}
	return c
}

// Branch returns the branch this client writes to.
func (c *Client) Branch() string { return c.branch }

// contentsURL builds /repos/{owner}/{repo}/contents/{path}.
func (c *Client) contentsURL(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.base, url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segs, "/"))
}

// do executes one throttled API request and returns the raw response.
// Transport-level failures come back as ErrRemoteUnavailable.
func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, path string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportErr(path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, transportErr(path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, transportErr(path, err)
	}
	return resp, nil
}

// apiMessage is the error body shape the API returns on failures.
type apiMessage struct {
	Message string `json:"message"`
}

// errorDetail drains the response body and extracts the remote's message.
func errorDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var m apiMessage
	if err := json.Unmarshal(raw, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(raw))
}

// decodeJSON decodes a 2xx body, treating malformed JSON as a transport
// failure.
func decodeJSON(resp *http.Response, path string, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportErr(path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
