package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/noted/internal/models"
	"github.com/starford/noted/internal/notestore"
	"github.com/starford/noted/internal/noteservice"
	"github.com/starford/noted/internal/testutil"
)

var testMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

// testEnv builds a router over a temp SQLite store.
func testEnv(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouter(testutil.TestStore(t))
}

func newTestRouter(store notestore.Store) http.Handler {
	svc := noteservice.NewService(store, nil)
	return NewRouter(svc, RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: testMethods,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func listNotes(t *testing.T, router http.Handler) []models.Note {
	t.Helper()
	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var notes []models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &notes); err != nil {
		t.Fatalf("decode list: %v (%s)", err, w.Body.String())
	}
	return notes
}

func createNote(t *testing.T, router http.Handler, title, content string) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/add-note", map[string]string{"title": title, "content": content})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreateNoteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message != "Note saved" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.ID == "" {
		t.Fatal("empty id")
	}
	return resp.ID
}

func errorOf(w *httptest.ResponseRecorder) string {
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Error
}

func TestHealth(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
	if w.Body.String() != "Backend is working!" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestProbes(t *testing.T) {
	router := testEnv(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		w := do(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d", path, w.Code)
		}
	}
}

func TestNoteLifecycle(t *testing.T) {
	router := testEnv(t)

	if notes := listNotes(t, router); len(notes) != 0 {
		t.Fatalf("initial notes = %+v", notes)
	}

	id := createNote(t, router, "A", "B")

	notes := listNotes(t, router)
	if len(notes) != 1 || notes[0].ID != id || notes[0].Title != "A" || notes[0].Content != "B" {
		t.Fatalf("notes after create = %+v", notes)
	}

	w := do(t, router, http.MethodPut, "/edit-note/"+id, map[string]string{"title": "A2", "content": "B2"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit = %d, body = %s", w.Code, w.Body.String())
	}
	var msg MessageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &msg)
	if msg.Message != "Note updated" {
		t.Errorf("edit message = %q", msg.Message)
	}

	notes = listNotes(t, router)
	if len(notes) != 1 || notes[0].Title != "A2" || notes[0].Content != "B2" {
		t.Fatalf("notes after edit = %+v", notes)
	}

	w = do(t, router, http.MethodDelete, "/delete-note/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &msg)
	if msg.Message != "Note deleted" {
		t.Errorf("delete message = %q", msg.Message)
	}

	if notes := listNotes(t, router); len(notes) != 0 {
		t.Errorf("notes after delete = %+v", notes)
	}

	w = do(t, router, http.MethodDelete, "/delete-note/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
	if got := errorOf(w); got != "Note not found" {
		t.Errorf("error = %q", got)
	}
}

func TestListRawShape(t *testing.T) {
	router := testEnv(t)
	id := createNote(t, router, "A", "B")

	w := do(t, router, http.MethodGet, "/notes", nil)
	var raw []map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw) != 1 || raw[0]["_id"] != id {
		t.Errorf("list body = %s", w.Body.String())
	}
}

func TestListEmptyIsArray(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodGet, "/notes", nil)
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestCreateMissingFields(t *testing.T) {
	router := testEnv(t)
	for _, body := range []any{
		map[string]string{"title": "only title"},
		map[string]string{"content": "only content"},
		map[string]string{"title": "", "content": ""},
		map[string]string{},
		"",
	} {
		w := do(t, router, http.MethodPost, "/add-note", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %v = %d, want 400", body, w.Code)
			continue
		}
		if got := errorOf(w); got != "Title and content are required" {
			t.Errorf("error = %q", got)
		}
	}
	if notes := listNotes(t, router); len(notes) != 0 {
		t.Errorf("invalid notes were stored: %+v", notes)
	}
}

func TestInvalidJSONBodies(t *testing.T) {
	router := testEnv(t)
	id := createNote(t, router, "A", "B")

	bodies := []string{
		"{not json",
		`{"title":1,"content":"c"}`,
		`{"title":"t","content":["c"]}`,
		`{"title":"t","content":"c"}{"title":"u","content":"d"}`,
		`{"title":"t","content":"c"} trailing`,
	}
	for _, body := range bodies {
		w := do(t, router, http.MethodPost, "/add-note", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %s = %d, want 400", body, w.Code)
		}
		if got := errorOf(w); got != "invalid JSON body" {
			t.Errorf("create %s error = %q", body, got)
		}

		w = do(t, router, http.MethodPut, "/edit-note/"+id, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("edit %s = %d, want 400", body, w.Code)
		}
	}

	notes := listNotes(t, router)
	if len(notes) != 1 || notes[0].Title != "A" || notes[0].Content != "B" {
		t.Errorf("notes changed by rejected bodies: %+v", notes)
	}

	// Trailing whitespace is still a single value.
	w := do(t, router, http.MethodPost, "/add-note", "{\"title\":\"t\",\"content\":\"c\"}\n")
	if w.Code != http.StatusCreated {
		t.Errorf("create with trailing newline = %d, want 201", w.Code)
	}
}

func TestDeleteMalformedID(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodDelete, "/delete-note/not-an-object-id", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("malformed delete = %d, want 500", w.Code)
	}
	if got := errorOf(w); got != "Failed to delete note" {
		t.Errorf("error = %q", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodPut, "/edit-note/"+notestore.NewID(), map[string]string{"title": "x", "content": "y"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
	if got := errorOf(w); got != "Note not found or not updated" {
		t.Errorf("error = %q", got)
	}
}

func TestUpdateIdenticalValues(t *testing.T) {
	router := testEnv(t)
	id := createNote(t, router, "same", "values")
	w := do(t, router, http.MethodPut, "/edit-note/"+id, map[string]string{"title": "same", "content": "values"})
	if w.Code != http.StatusNotFound {
		t.Errorf("no-op update = %d, want 404", w.Code)
	}
}

func TestUpdateAllowsEmptyValues(t *testing.T) {
	router := testEnv(t)
	id := createNote(t, router, "A", "B")
	w := do(t, router, http.MethodPut, "/edit-note/"+id, map[string]string{})
	if w.Code != http.StatusOK {
		t.Fatalf("empty update = %d, want 200", w.Code)
	}
	notes := listNotes(t, router)
	if notes[0].Title != "" || notes[0].Content != "" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestUpdateMalformedID(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodPut, "/edit-note/xyz", map[string]string{"title": "x", "content": "y"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("malformed update = %d, want 500", w.Code)
	}
}

// brokenStore fails every operation.
type brokenStore struct{}

var errBroken = errors.New("connection reset")

func (brokenStore) Insert(context.Context, string, string) (string, error) { return "", errBroken }
func (brokenStore) List(context.Context) ([]models.Note, error)           { return nil, errBroken }
func (brokenStore) Delete(context.Context, string) error                  { return errBroken }
func (brokenStore) Update(context.Context, string, string, string) error  { return errBroken }
func (brokenStore) Ping(context.Context) error                            { return errBroken }
func (brokenStore) Close(context.Context) error                           { return nil }

func TestStorageFailures(t *testing.T) {
	router := newTestRouter(brokenStore{})
	id := notestore.NewID()
	tests := []struct {
		method, target string
		body           any
		wantErr        string
	}{
		{http.MethodPost, "/add-note", map[string]string{"title": "t", "content": "c"}, "Failed to save note"},
		{http.MethodGet, "/notes", nil, "Failed to fetch notes"},
		{http.MethodDelete, "/delete-note/" + id, nil, "Failed to delete note"},
		{http.MethodPut, "/edit-note/" + id, map[string]string{"title": "t", "content": "c"}, "Failed to update note"},
	}
	for _, tt := range tests {
		w := do(t, router, tt.method, tt.target, tt.body)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s = %d, want 500", tt.method, tt.target, w.Code)
		}
		if got := errorOf(w); got != tt.wantErr {
			t.Errorf("%s %s error = %q, want %q", tt.method, tt.target, got, tt.wantErr)
		}
	}

	w := do(t, router, http.MethodGet, "/health/ready", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d, want 503", w.Code)
	}
}

func TestCORS(t *testing.T) {
	router := testEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/edit-note/abc", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got allow header %q", got)
	}
}
