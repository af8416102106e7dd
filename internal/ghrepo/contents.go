// Read, write, and single-level listing operations on the Contents API.

package ghrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
)

// PlaceholderName is the zero-byte blob written to make an otherwise empty
// directory appear in listings. The Git object model has no empty-directory
// primitive.
const PlaceholderName = ".keep"

// File is one blob read from the remote. Exactly one of Content (inline
// transport base64) or DownloadURL (redirect form for large/LFS blobs) is
// populated for image and binary kinds; text kinds carry the decoded Text.
type File struct {
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Kind        Kind   `json:"kind"`
	Content     string `json:"content,omitempty"`
	Text        string `json:"text,omitempty"`
	DataURL     string `json:"data_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Language    string `json:"language,omitempty"`
	Size        int64  `json:"size"`
}

// WriteResult reports the version tokens produced by a successful write.
type WriteResult struct {
	ContentSHA string `json:"content_sha"`
	CommitSHA  string `json:"commit_sha"`
}

// Child is one entry of a single-level directory listing.
type Child struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "dir" or "file"
}

// contentsEntry is the Contents API representation of a file or directory
// entry.
type contentsEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}

// ReadFile fetches one blob at path. ref selects a historical version; empty
// means the tip of the default branch. Every open re-fetches; nothing is
// cached between views.
func (c *Client) ReadFile(ctx context.Context, p, ref string) (*File, error) {
	u := c.contentsURL(p)
	if ref != "" {
		u += "?" + url.Values{"ref": {ref}}.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, u, nil, p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		detail := errorDetail(resp)
		if ref != "" {
			// A pinned historical view through a path that has since been
			// deleted. Surface it explicitly instead of a bare 404.
			detail = "file history unavailable"
		}
		return nil, remoteErr(ErrNotFound, p, resp.StatusCode, detail)
	default:
		// Auth failures and anything else transport-shaped.
		return nil, remoteErr(ErrRemoteUnavailable, p, resp.StatusCode, errorDetail(resp))
	}

	var probe json.RawMessage
	if err := decodeJSON(resp, p, &probe); err != nil {
		return nil, err
	}
	if bytes.HasPrefix(bytes.TrimSpace(probe), []byte("[")) {
		return nil, remoteErr(ErrAmbiguousPath, p, resp.StatusCode, "path is a directory")
	}
	var entry contentsEntry
	if err := json.Unmarshal(probe, &entry); err != nil {
		return nil, transportErr(p, fmt.Errorf("decode response: %w", err))
	}
	if entry.Type == "dir" {
		return nil, remoteErr(ErrAmbiguousPath, p, resp.StatusCode, "path is a directory")
	}

	f := &File{
		Path: p,
		SHA:  entry.SHA,
		Kind: Classify(p),
		Size: entry.Size,
	}
	inline := strings.TrimSpace(entry.Content) != ""

	switch f.Kind {
	case KindImage:
		if !inline {
			// Large or LFS-tracked blob: the remote omits inline content and
			// callers render from the raw URL instead.
			f.DownloadURL = entry.DownloadURL
			return f, nil
		}
		f.Content = stripTransportWhitespace(entry.Content)
		f.DataURL = ImageDataURL(entry.Content, p)
	case KindBinary:
		if !inline {
			f.DownloadURL = entry.DownloadURL
			return f, nil
		}
		f.Content = stripTransportWhitespace(entry.Content)
	default:
		if !inline {
			f.DownloadURL = entry.DownloadURL
			return f, nil
		}
		text, err := decodeText(entry.Content)
		if err != nil {
			if IsKind(err, ErrDecodeFailure) && !isBase64Garbage(entry.Content) {
				// Valid base64 but not UTF-8: the extension lied, treat the
				// blob as binary.
				f.Kind = KindBinary
				f.Content = stripTransportWhitespace(entry.Content)
				return f, nil
			}
			// Degrade to the sentinel; the surrounding view still renders.
			f.Text = DecodeFailed
			f.Language = Language(p)
			return f, nil
		}
		f.Text = text
		f.Language = Language(p)
	}
	return f, nil
}

// isBase64Garbage reports whether the transport body itself is malformed
// base64 (as opposed to decoding fine but not being UTF-8).
func isBase64Garbage(b64 string) bool {
	_, err := decodeBase64(b64)
	return err != nil
}

// writeRequest is the Contents API PUT body.
type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

// writeResponse is the Contents API PUT response.
type writeResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// WriteFile creates or updates the blob at path. expectedSHA must be the sha
// observed by the read that preceded this write in the same logical
// operation; empty means create. Content is always sent as transport base64
// regardless of kind. Of two writers racing with the same stale sha, exactly
// one succeeds; the other gets ErrVersionConflict and must re-read.
func (c *Client) WriteFile(ctx context.Context, p string, content []byte, expectedSHA string) (*WriteResult, error) {
	verb := "Update"
	if expectedSHA == "" {
		verb = "Create"
	}
	return c.putContents(ctx, p, EncodeBytes(content), fmt.Sprintf("%s %s", verb, p), expectedSHA)
}

// CreateFolder emulates directory creation by writing a zero-byte placeholder
// blob at folderPath/.keep. Folder existence is thereafter inferred from the
// presence of any blob under the prefix.
func (c *Client) CreateFolder(ctx context.Context, folderPath string) (*WriteResult, error) {
	placeholder := path.Join(folderPath, PlaceholderName)
	msg := fmt.Sprintf("Create folder: %s", path.Base(folderPath))
	return c.putContents(ctx, placeholder, EncodeBytes(nil), msg, "")
}

// isSHAMismatch reports whether a rejection detail describes a stale expected
// sha. The remote phrases it as "<path> does not match <sha>".
func isSHAMismatch(detail string) bool {
	return strings.Contains(strings.ToLower(detail), "does not match")
}

func (c *Client) putContents(ctx context.Context, p, b64, message, expectedSHA string) (*WriteResult, error) {
	body, err := json.Marshal(writeRequest{
		Message: message,
		Content: b64,
		SHA:     expectedSHA,
		Branch:  c.branch,
	})
	if err != nil {
		return nil, transportErr(p, err)
	}
	resp, err := c.do(ctx, http.MethodPut, c.contentsURL(p), bytes.NewReader(body), p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return nil, remoteErr(ErrVersionConflict, p, resp.StatusCode, errorDetail(resp))
	case http.StatusUnprocessableEntity:
		// The remote reports a stale expected sha as either a 409 or a 422
		// whose message says the blob "does not match" the supplied sha. Only
		// the conflict form invites a re-read and retry; other 422s are
		// terminal for the attempt.
		detail := errorDetail(resp)
		if isSHAMismatch(detail) {
			return nil, remoteErr(ErrVersionConflict, p, resp.StatusCode, detail)
		}
		return nil, remoteErr(ErrWriteRejected, p, resp.StatusCode, detail)
	default:
		return nil, remoteErr(ErrWriteRejected, p, resp.StatusCode, errorDetail(resp))
	}

	var wr writeResponse
	if err := decodeJSON(resp, p, &wr); err != nil {
		return nil, err
	}
	return &WriteResult{ContentSHA: wr.Content.SHA, CommitSHA: wr.Commit.SHA}, nil
}

// ListFolderChildren lists one directory level, directories first, then
// lexicographically by name. Placeholder blobs are filtered here and only
// here, so no caller needs its own filter. An existing-but-empty directory
// yields an empty slice, not an error.
func (c *Client) ListFolderChildren(ctx context.Context, folderPath string) ([]Child, error) {
	u := c.contentsURL(folderPath)
	resp, err := c.do(ctx, http.MethodGet, u, nil, folderPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, remoteErr(ErrNotFound, folderPath, resp.StatusCode, errorDetail(resp))
	default:
		return nil, remoteErr(ErrRemoteUnavailable, folderPath, resp.StatusCode, errorDetail(resp))
	}

	var probe json.RawMessage
	if err := decodeJSON(resp, folderPath, &probe); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(probe), []byte("[")) {
		return nil, remoteErr(ErrAmbiguousPath, folderPath, resp.StatusCode, "path is a file, not a directory")
	}
	var entries []contentsEntry
	if err := json.Unmarshal(probe, &entries); err != nil {
		return nil, transportErr(folderPath, fmt.Errorf("decode response: %w", err))
	}

	children := make([]Child, 0, len(entries))
	for _, e := range entries {
		if e.Type != "dir" && e.Type != "file" {
			continue // submodules and symlinks are not browsable here
		}
		if e.Type == "file" && e.Name == PlaceholderName {
			continue
		}
		children = append(children, Child{Name: e.Name, Path: e.Path, Type: e.Type})
	}
	slices.SortFunc(children, func(a, b Child) int {
		if a.Type != b.Type {
			if a.Type == "dir" {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return children, nil
}
