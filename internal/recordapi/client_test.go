package recordapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/yotsuba-lab/manabi/internal/records"
)

func TestListRecordsScopedToOwner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/learnings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "42" {
			t.Errorf("user_id = %q", got)
		}
		_, _ = w.Write([]byte(`[{"id": 1, "title": "golang basics", "user_id": 42}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	recs, err := c.ListRecords(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "golang basics" {
		t.Errorf("recs = %+v", recs)
	}
}

func TestListRejectsNonArrayBody(t *testing.T) {
	// A 200 carrying an error object must not decode as zero rows.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "database offline"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	if _, err := c.ListTags(context.Background()); err == nil {
		t.Fatal("non-array body accepted")
	}
}

func TestBackendErrorCarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message": "upstream down"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.ListCategories(context.Background())
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BackendError", err)
	}
	if be.Status != http.StatusBadGateway || be.Message != "upstream down" {
		t.Errorf("backend error = %+v", be)
	}
}

func TestCreateRecordSendsPatchAndReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/learnings" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var patch RecordPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Fatalf("decode patch: %v", err)
		}
		if patch.Title != "sql joins" || !reflect.DeepEqual(patch.Tags, []string{"db"}) {
			t.Errorf("patch = %+v", patch)
		}
		_, _ = w.Write([]byte(`{"id": 7, "title": "sql joins", "user_id": 42}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	rec, err := c.CreateRecord(context.Background(), RecordPatch{
		Title: "sql joins", Tags: []string{"db"}, UserID: 42,
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if rec.ID != 7 {
		t.Errorf("id = %d", rec.ID)
	}
}

func TestUpdateAndDeleteRecordHitRightEndpoints(t *testing.T) {
	var sawPut, sawDelete bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/learnings/7":
			sawPut = true
			_, _ = w.Write([]byte(`{"id": 7, "title": "renamed"}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/learnings/7":
			sawDelete = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	rec, err := c.UpdateRecord(context.Background(), 7, RecordPatch{Title: "renamed"})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if rec.Title != "renamed" {
		t.Errorf("title = %q", rec.Title)
	}
	if err := c.DeleteRecord(context.Background(), 7); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if !sawPut || !sawDelete {
		t.Errorf("put=%v delete=%v", sawPut, sawDelete)
	}
}

func TestCreateCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["name"] != "reading" {
			t.Errorf("name = %q", body["name"])
		}
		_, _ = w.Write([]byte(`{"id": 3, "name": "reading"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	cat, err := c.CreateCategory(context.Background(), "reading")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if !reflect.DeepEqual(cat, &records.Category{ID: 3, Name: "reading"}) {
		t.Errorf("cat = %+v", cat)
	}
}
