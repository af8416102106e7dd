// Fetches and holds the flattened blob listing of the repository.

package ghrepo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// TreeEntry is one blob in the flattened repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		SHA  string `json:"sha"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// listTree performs one recursive Git-Trees listing at the client's branch,
// keeping blob entries only. An empty or unborn repository surfaces as
// ErrEmptyRepository.
func (c *Client) listTree(ctx context.Context) ([]TreeEntry, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=true",
		c.base, url.PathEscape(c.owner), url.PathEscape(c.repo), url.PathEscape(c.branch))
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusConflict:
		// 404 for an unborn branch, 409 for a repository with no commits.
		return nil, remoteErr(ErrEmptyRepository, "", resp.StatusCode, errorDetail(resp))
	default:
		return nil, remoteErr(ErrRemoteUnavailable, "", resp.StatusCode, errorDetail(resp))
	}

	var tr treeResponse
	if err := decodeJSON(resp, "", &tr); err != nil {
		return nil, err
	}
	entries := make([]TreeEntry, 0, len(tr.Tree))
	for _, e := range tr.Tree {
		if e.Type != "blob" {
			continue
		}
		entries = append(entries, TreeEntry{Path: e.Path, SHA: e.SHA})
	}
	if len(entries) == 0 {
		return nil, remoteErr(ErrEmptyRepository, "", resp.StatusCode, "tree has no blobs")
	}
	if tr.Truncated {
		slog.WarnContext(ctx, "Tree listing truncated by remote", "entries", len(entries))
	}
	return entries, nil
}

// TreeCache holds the most recent flattened listing. The whole set is
// replaced on refresh, never patched. It does not subscribe to remote change
// events (there are none cheaply); callers invalidate it after writes.
type TreeCache struct {
	client *Client
	grace  time.Duration

	mu     sync.Mutex
	files  []TreeEntry
	loaded bool
	gen    uint64 // bumped on invalidation; guards stale fetch results
	timer  *time.Timer
}

// NewTreeCache wraps client with a listing cache. grace is the delay applied
// between a write and the refetch it triggers, tolerating the remote's own
// indexing lag.
func NewTreeCache(client *Client, grace time.Duration) *TreeCache {
	return &TreeCache{client: client, grace: grace}
}

// Files returns the cached listing, fetching on first use or after
// invalidation. An empty repository is an empty slice, not an error.
func (t *TreeCache) Files(ctx context.Context) ([]TreeEntry, error) {
	t.mu.Lock()
	if t.loaded {
		files := t.files
		t.mu.Unlock()
		return files, nil
	}
	gen := t.gen
	t.mu.Unlock()

	files, err := t.client.listTree(ctx)
	if err != nil {
		if IsKind(err, ErrEmptyRepository) {
			files = nil
		} else {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		// Superseded by an invalidation that happened mid-fetch. Hand the
		// result to this caller but do not let it shadow newer state.
		return files, nil
	}
	t.files = files
	t.loaded = true
	return files, nil
}

// Refresh discards the cached listing and fetches a fresh one.
func (t *TreeCache) Refresh(ctx context.Context) ([]TreeEntry, error) {
	t.Invalidate()
	return t.Files(ctx)
}

// Invalidate discards the cached listing immediately.
func (t *TreeCache) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invalidateLocked()
}

func (t *TreeCache) invalidateLocked() {
	t.gen++
	t.files = nil
	t.loaded = false
}

// InvalidateAfterWrite schedules an invalidation after the grace period. A
// refetch issued immediately after a write may not yet observe it, so the
// next Files call after the delay sees settled state. Consecutive writes
// coalesce into one deferred invalidation.
func (t *TreeCache) InvalidateAfterWrite() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.grace <= 0 {
		t.invalidateLocked()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.grace, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.invalidateLocked()
		t.timer = nil
	})
}

// Stop cancels a pending deferred invalidation, releasing its timer. Call on
// shutdown; the cache is still usable afterwards.
func (t *TreeCache) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
