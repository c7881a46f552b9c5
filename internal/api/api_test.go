package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/notify"
	"github.com/starford/jotter/internal/testutil"
)

// testEnv sets up a temp notes dir, a Local bridge and the router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()
	router, dir, _ := testEnvWithBroker(t, authToken)
	return router, dir
}

func testEnvWithBroker(t *testing.T, authToken string) (http.Handler, string, *notify.Broker) {
	t.Helper()
	dir := testutil.NotesDir(t, nil)
	local, broker := testutil.Local(t, dir)
	return NewRouter(local, authToken != "", authToken, broker), dir, broker
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errResponse {
	t.Helper()
	var e errResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body: %v (%s)", err, w.Body.String())
	}
	return e
}

func TestWriteListReadRename(t *testing.T) {
	router, dir := testEnv(t, "")

	body, _ := json.Marshal(WriteFileRequest{Dir: dir, Content: "hello"})
	req := httptest.NewRequest(http.MethodPut, "/files/draft.txt", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("write status = %d, body = %s", w.Code, w.Body.String())
	}
	_ = os.WriteFile(filepath.Join(dir, ".DS_Store"), nil, 0o644)

	req = httptest.NewRequest(http.MethodGet, "/files?dir="+url.QueryEscape(dir), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var list FileListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list.Files) != 1 || list.Files[0] != "draft.txt" {
		t.Fatalf("list = %d %v", w.Code, list.Files)
	}

	req = httptest.NewRequest(http.MethodGet, "/files/draft.txt?dir="+url.QueryEscape(dir), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var file FileResponse
	_ = json.Unmarshal(w.Body.Bytes(), &file)
	if file.Content != "hello" {
		t.Errorf("content = %q", file.Content)
	}

	body, _ = json.Marshal(RenameRequest{Dir: dir, NewName: "final"})
	req = httptest.NewRequest(http.MethodPost, "/files/draft.txt/rename", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var renamed RenameResponse
	_ = json.Unmarshal(w.Body.Bytes(), &renamed)
	if w.Code != http.StatusOK || renamed.Filename != "final.txt" {
		t.Errorf("rename = %d %q", w.Code, renamed.Filename)
	}
}

func TestListEmptyDirectoryIsArray(t *testing.T) {
	router, dir := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/files?dir="+url.QueryEscape(dir), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Body.String(); got != "{\"files\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	router, dir := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/files/nope.txt?dir="+url.QueryEscape(dir), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if e := decodeErr(t, w); e.Kind != string(apperr.KindNotFound) {
		t.Errorf("kind = %q", e.Kind)
	}
}

func TestRelativeDirRejected(t *testing.T) {
	router, _ := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/files?dir=notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRenameRequiresNewName(t *testing.T) {
	router, dir := testEnv(t, "")
	body, _ := json.Marshal(RenameRequest{Dir: dir})
	req := httptest.NewRequest(http.MethodPost, "/files/a.txt/rename", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if e := decodeErr(t, w); e.Kind != string(apperr.KindInvalid) {
		t.Errorf("kind = %q", e.Kind)
	}
}

func TestWriteInvalidJSON(t *testing.T) {
	router, _ := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPut, "/files/a.txt", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDialog(t *testing.T) {
	router, dir := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/dialog", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp DialogResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Dir != dir {
		t.Errorf("dialog = %d %q", w.Code, resp.Dir)
	}
}

func TestChooseUnknownMenu(t *testing.T) {
	router, _ := testEnv(t, "")
	body, _ := json.Marshal(MenuChoiceRequest{Action: models.ActionDelete})
	req := httptest.NewRequest(http.MethodPost, "/context-menu/nope", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestChooseInvalidAction(t *testing.T) {
	router, _ := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/context-menu/x", bytes.NewReader([]byte(`{"action":"explode"}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, dir := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/files?dir="+url.QueryEscape(dir), nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, dir := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/files?dir="+url.QueryEscape(dir), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router, dir := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/files?dir="+url.QueryEscape(dir), nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router, _ := testEnv(t, "tok")
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("events without token = %d, want 401", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotFound:          http.StatusNotFound,
		apperr.KindPermission:        http.StatusForbidden,
		apperr.KindInvalid:           http.StatusBadRequest,
		apperr.KindNoSpace:           http.StatusInsufficientStorage,
		apperr.KindAlreadySubscribed: http.StatusConflict,
		apperr.KindIO:                http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusFor(kind); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", kind, got, want)
		}
	}
}

// Client tests run the router behind a real HTTP server.

func testClient(t *testing.T, serverToken, clientToken string) (*Client, string) {
	t.Helper()
	router, dir := testEnv(t, serverToken)
	srv := httptest.NewServer(http.StripPrefix("/api", router))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, clientToken, WithClientLogger(testutil.Logger())), dir
}

func TestClientRoundTrip(t *testing.T) {
	c, dir := testClient(t, "", "")
	ctx := context.Background()

	got, err := c.ShowDialog(ctx)
	if err != nil || got != dir {
		t.Fatalf("ShowDialog = %q, %v", got, err)
	}
	if err := c.OverwriteFile(ctx, "", "draft.txt", dir); err != nil {
		t.Fatalf("OverwriteFile: %v", err)
	}
	if err := c.OverwriteFile(ctx, "body", "draft.txt", dir); err != nil {
		t.Fatalf("OverwriteFile: %v", err)
	}
	content, err := c.ReadFile(ctx, "draft.txt", dir)
	if err != nil || content != "body" {
		t.Errorf("ReadFile = %q, %v", content, err)
	}
	renamed, err := c.RenameFile(ctx, "draft.txt", "my note", dir)
	if err != nil || renamed != "my note.txt" {
		t.Errorf("RenameFile = %q, %v", renamed, err)
	}
	files, err := c.ListFiles(ctx, dir)
	if err != nil || len(files) != 1 || files[0] != "my note.txt" {
		t.Errorf("ListFiles = %v, %v", files, err)
	}
}

func TestClientTypedErrors(t *testing.T) {
	c, dir := testClient(t, "", "")
	ctx := context.Background()

	if _, err := c.ReadFile(ctx, "missing.txt", dir); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing read err = %v", err)
	}
	if _, err := c.ListFiles(ctx, "relative"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("relative list err = %v", err)
	}

	denied, _ := testClient(t, "secret", "wrong")
	if _, err := denied.ListFiles(ctx, dir); !errors.Is(err, apperr.ErrPermission) {
		t.Errorf("unauthorized err = %v", err)
	}
}

func TestClientContextMenuOverEvents(t *testing.T) {
	c, dir := testClient(t, "", "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644)

	ch, err := c.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := c.Subscribe(ctx); !errors.Is(err, apperr.ErrAlreadySubscribed) {
		t.Errorf("second subscribe err = %v", err)
	}

	c.ShowContextMenu(dir, "a.txt")

	recv := func() models.Notification {
		select {
		case n := <-ch:
			return n
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for event")
		}
		return models.Notification{}
	}

	open := recv()
	if open.Kind != models.NotifyOpenContextMenu || open.Menu == nil {
		t.Fatalf("first event = %+v", open)
	}
	if err := c.ChooseMenuEntry(ctx, open.Menu.ID, models.ActionRename); err != nil {
		t.Fatalf("ChooseMenuEntry: %v", err)
	}
	if n := recv(); n.Kind != models.NotifyCloseContextMenu {
		t.Errorf("second event = %+v", n)
	}
	if n := recv(); n.Kind != models.NotifyRenameFile || n.Filename != "a.txt" {
		t.Errorf("third event = %+v", n)
	}
}
