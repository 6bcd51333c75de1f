package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/sitebuilder/internal/agent"
	"github.com/lehigh-university-libraries/sitebuilder/internal/assistant"
	"github.com/lehigh-university-libraries/sitebuilder/internal/models"
	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
	"github.com/lehigh-university-libraries/sitebuilder/internal/session"
	"github.com/lehigh-university-libraries/sitebuilder/internal/storage"
	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
)

// echoInvoker answers every prompt and checkpoints it like the real runtime.
type echoInvoker struct {
	store *storage.CheckpointStore
}

func (e *echoInvoker) Invoke(ctx context.Context, req agent.Request, threadID string) (*agent.Result, error) {
	msgs, _ := e.store.Get(threadID)
	turn := []providers.Message{
		{Role: providers.RoleUser, Content: req.User},
		{Role: providers.RoleAssistant, Content: "echo: " + req.User},
	}
	if err := e.store.Put(threadID, append(msgs, turn...)); err != nil {
		return nil, err
	}
	return &agent.Result{Messages: turn}, nil
}

func newTestHandler(t *testing.T) (*Handler, *workspace.Workspace) {
	t.Helper()
	store := storage.New()
	n := 0
	sessions := session.NewWithGenerator(func() string {
		n++
		return fmt.Sprintf("session-%d-xxxxxxxx", n)
	})
	a := assistant.New(sessions, store, func(context.Context) (agent.Invoker, io.Closer, error) {
		return &echoInvoker{store: store}, nil, nil
	}, "http://127.0.0.1:7860/mcp/sse")

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(a, store, ws), ws
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlePrompt(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	rec := do(t, mux, "POST", "/api/prompt", strings.NewReader(`{"prompt": "build a portfolio"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp promptResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID != "session-1-xxxxxxxx" {
		t.Errorf("Unexpected session %q", resp.SessionID)
	}
	if !strings.HasPrefix(resp.Response, "echo: build a portfolio\n\n🧠 **Session ID:** session-...") {
		t.Errorf("Unexpected response %q", resp.Response)
	}
}

func TestHandlePromptValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	tests := []struct {
		name   string
		method string
		body   string
		code   int
	}{
		{"wrong method", "GET", "", http.StatusMethodNotAllowed},
		{"bad json", "POST", "{", http.StatusBadRequest},
		{"empty prompt", "POST", `{"prompt": "  "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, tt.method, "/api/prompt", strings.NewReader(tt.body))
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestSessionEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	rec := do(t, mux, "GET", "/api/sessions/current", nil)
	var cur sessionResponse
	_ = json.NewDecoder(rec.Body).Decode(&cur)
	if cur.SessionID != "" || !strings.HasPrefix(cur.Message, "📭 No active session") {
		t.Errorf("Unexpected %+v", cur)
	}

	do(t, mux, "POST", "/api/prompt", strings.NewReader(`{"prompt": "first"}`))

	rec = do(t, mux, "DELETE", "/api/sessions/current", nil)
	var cleared sessionResponse
	_ = json.NewDecoder(rec.Body).Decode(&cleared)
	if cleared.SessionID != "session-2-xxxxxxxx" || !strings.Contains(cleared.Message, "Old session: session-...") {
		t.Errorf("Unexpected %+v", cleared)
	}

	rec = do(t, mux, "GET", "/api/sessions", nil)
	var list []models.SessionSummary
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected checkpointed and current sessions, got %+v", list)
	}
	if list[0].ID != "session-1-xxxxxxxx" || list[0].Messages != 2 || list[0].Current {
		t.Errorf("Unexpected first summary %+v", list[0])
	}
	if list[1].ID != "session-2-xxxxxxxx" || !list[1].Current {
		t.Errorf("Unexpected current summary %+v", list[1])
	}

	rec = do(t, mux, "POST", "/api/sessions", nil)
	var started sessionResponse
	_ = json.NewDecoder(rec.Body).Decode(&started)
	if started.SessionID != "session-3-xxxxxxxx" || !strings.HasPrefix(started.Message, "🚀 **Started New Website Project!**") {
		t.Errorf("Unexpected %+v", started)
	}

	if rec := do(t, mux, "PUT", "/api/sessions", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func multipartBody(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	h, ws := newTestHandler(t)
	mux := h.Routes()

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatal(err)
	}

	body, ctype := multipartBody(t, "logo.png", img.Bytes())
	req := httptest.NewRequest("POST", "/api/images", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if _, err := os.Stat(filepath.Join(ws.Dir(), "logo.png")); err != nil {
		t.Errorf("Expected uploaded file: %v", err)
	}

	body, ctype = multipartBody(t, "notes.txt", []byte("hello"))
	req = httptest.NewRequest("POST", "/api/images", body)
	req.Header.Set("Content-Type", ctype)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-image, got %d", rec.Code)
	}
}

func TestHandleSite(t *testing.T) {
	h, ws := newTestHandler(t)
	mux := h.Routes()

	if rec := do(t, mux, "GET", "/site/", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before index.html exists, got %d", rec.Code)
	}

	if _, err := ws.SaveFile("index.html", "<h1>Preview</h1>"); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.SaveFile("css/style.css", "h1{}"); err != nil {
		t.Fatal(err)
	}

	rec := do(t, mux, "GET", "/site/", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "<h1>Preview</h1>" {
		t.Errorf("Unexpected index response %d %q", rec.Code, rec.Body)
	}
	rec = do(t, mux, "GET", "/site/css/style.css", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Errorf("Unexpected css response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestHealthcheck(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h.Routes(), "GET", "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Unexpected healthcheck %d %q", rec.Code, rec.Body)
	}
}
