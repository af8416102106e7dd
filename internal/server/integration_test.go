package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yotsuba-lab/manabi/internal/ghrepo"
	"github.com/yotsuba-lab/manabi/internal/recordapi"
	"github.com/yotsuba-lab/manabi/internal/server/handlers"
	"github.com/yotsuba-lab/manabi/internal/session"
)

var testSecret = []byte("integration-test-secret!")

// testStack wires a router against mock GitHub and record-backend remotes.
func testStack(t *testing.T, github, backend http.HandlerFunc) (*httptest.Server, string) {
	t.Helper()
	ghSrv := httptest.NewServer(github)
	t.Cleanup(ghSrv.Close)
	beSrv := httptest.NewServer(backend)
	t.Cleanup(beSrv.Close)

	svc := handlers.NewServices(
		recordapi.New(beSrv.URL),
		0,
		ghrepo.WithBaseURL(ghSrv.URL),
		ghrepo.WithRateLimit(1000, 1000),
	)
	apiSrv := httptest.NewServer(NewRouter(svc, testSecret, "test"))
	t.Cleanup(apiSrv.Close)

	token, err := session.Encode(testSecret, session.New("gh-token", "octocat", 42), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return apiSrv, token
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, raw
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv, _ := testStack(t,
		func(w http.ResponseWriter, r *http.Request) { t.Error("github touched") },
		func(w http.ResponseWriter, r *http.Request) { t.Error("backend touched") },
	)
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), `"status":"ok"`) {
		t.Errorf("body = %s", raw)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv, _ := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/files", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), "UNAUTHORIZED") {
		t.Errorf("body = %s", raw)
	}
}

func TestListFilesUsesSessionRepo(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/repos/octocat/manabi-octocat/git/trees/main" {
				t.Errorf("path = %q", r.URL.Path)
			}
			fmt.Fprint(w, `{"tree": [{"path": "notes/go.md", "type": "blob", "sha": "b1"}]}`)
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/files", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		Files []struct {
			Path string `json:"path"`
			SHA  string `json:"sha"`
		} `json:"files"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Files) != 1 || out.Files[0].Path != "notes/go.md" {
		t.Errorf("files = %+v", out.Files)
	}
}

func TestGetFileMissingPathFailsValidation(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) { t.Error("github touched") },
		func(w http.ResponseWriter, r *http.Request) {},
	)
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/files/content", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), "MISSING_FIELD") {
		t.Errorf("body = %s", raw)
	}
}

func TestPutFileConflictMapsTo409(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("method = %s", r.Method)
			}
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"message": "is at abc but expected def"}`)
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/api/files/content", token,
		map[string]string{"path": "notes/go.md", "content": "x", "sha": "stale"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), "VERSION_CONFLICT") {
		t.Errorf("body = %s", raw)
	}
}

func TestSearchJoinsAndFilters(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/learnings":
				if got := r.URL.Query().Get("user_id"); got != "42" {
					t.Errorf("user_id = %q", got)
				}
				fmt.Fprint(w, `[
					{"id": 1, "title": "golang basics", "category_id": 10, "user_id": 42},
					{"id": 2, "title": "burgers", "user_id": 42}
				]`)
			case "/api/tags":
				fmt.Fprint(w, `[{"id": 100, "name": "go"}]`)
			case "/api/learning-tags":
				fmt.Fprint(w, `[{"learning_id": 1, "tag_id": 100}]`)
			case "/api/categories":
				fmt.Fprint(w, `[{"id": 10, "name": "programming"}]`)
			default:
				t.Errorf("unexpected backend path %q", r.URL.Path)
			}
		},
	)
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/search?category=programming&tags=go&sort=name-asc", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		Records []struct {
			ID           int64    `json:"id"`
			Tags         []string `json:"tags"`
			CategoryName string   `json:"category_name"`
		} `json:"records"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Records) != 1 || out.Records[0].ID != 1 {
		t.Fatalf("records = %+v", out.Records)
	}
	if out.Records[0].CategoryName != "programming" || len(out.Records[0].Tags) != 1 {
		t.Errorf("join lost: %+v", out.Records[0])
	}
}

func TestCreateRecordWritesFileBeforeBackendSave(t *testing.T) {
	var mu sync.Mutex
	var order []string
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("github method = %s", r.Method)
			}
			mu.Lock()
			order = append(order, "file")
			mu.Unlock()
			fmt.Fprint(w, `{"content":{"sha":"s1"},"commit":{"sha":"c1"}}`)
		},
		func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			order = append(order, "record")
			mu.Unlock()
			var patch struct {
				Title     string `json:"title"`
				CommitSHA string `json:"commit_sha"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				t.Fatal(err)
			}
			// The commit produced by the file write is attached to the row.
			if patch.CommitSHA != "c1" {
				t.Errorf("commit_sha = %q", patch.CommitSHA)
			}
			fmt.Fprintf(w, `{"id": 9, "title": %q, "commit_sha": %q}`, patch.Title, patch.CommitSHA)
		},
	)

	content := "# goroutines"
	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/records", token, map[string]any{
		"title":        "Async patterns",
		"tags":         []string{"go"},
		"github_path":  "notes/async.md",
		"file_content": content,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	if len(got) != 2 || got[0] != "file" || got[1] != "record" {
		t.Fatalf("order = %v, want file write before record save", got)
	}
	if !strings.Contains(string(raw), `"commit_sha":"c1"`) {
		t.Errorf("body = %s", raw)
	}
}

func TestCreateRecordAbortsWhenFileWriteFails(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"message": "sha mismatch"}`)
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("record saved despite failed file write")
		},
	)
	content := "x"
	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/records", token, map[string]any{
		"title":        "t",
		"github_path":  "notes/a.md",
		"file_content": content,
		"file_sha":     "stale",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
}

func TestDeleteRecordBindsPathID(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/learnings/7" {
				t.Errorf("%s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		},
	)
	resp, raw := doJSON(t, http.MethodDelete, srv.URL+"/api/records/7", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), `"id":7`) {
		t.Errorf("body = %s", raw)
	}
}

func TestBackendFailureRelayed(t *testing.T) {
	srv, token := testStack(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"message": "maintenance"}`)
		},
	)
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/categories", token, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), "BACKEND_ERROR") {
		t.Errorf("body = %s", raw)
	}
}
