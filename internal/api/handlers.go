package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/boundary"
)

const maxBodyBytes = 10 << 20

// Handler serves the boundary catalogue.
type Handler struct {
	bridge boundary.Bridge
}

// NewHandler creates a new Handler.
func NewHandler(bridge boundary.Bridge) *Handler {
	return &Handler{bridge: bridge}
}

// fileName extracts the filename path parameter, accepting percent-encoded
// names.
func fileName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodeBody(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body", apperr.KindInvalid))
		return false
	}
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error(), apperr.KindInvalid))
		return false
	}
	return true
}

func requireDir(w http.ResponseWriter, dir string) bool {
	if dir == "" || !filepath.IsAbs(dir) {
		writeJSON(w, http.StatusBadRequest, errorBody("dir must be an absolute path", apperr.KindInvalid))
		return false
	}
	return true
}

// ShowDialog handles POST /api/dialog.
func (h *Handler) ShowDialog(w http.ResponseWriter, r *http.Request) {
	dir, err := h.bridge.ShowDialog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DialogResponse{Dir: dir})
}

// ListFiles handles GET /api/files?dir=.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if !requireDir(w, dir) {
		return
	}
	files, err := h.bridge.ListFiles(r.Context(), dir)
	if err != nil {
		writeError(w, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// ReadFile handles GET /api/files/{name}?dir=.
func (h *Handler) ReadFile(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if !requireDir(w, dir) {
		return
	}
	name := fileName(r)
	content, err := h.bridge.ReadFile(r.Context(), name, dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FileResponse{Name: name, Content: content})
}

// OverwriteFile handles PUT /api/files/{name}.
func (h *Handler) OverwriteFile(w http.ResponseWriter, r *http.Request) {
	var req WriteFileRequest
	if !decodeBody(w, r, &req) || !requireDir(w, req.Dir) {
		return
	}
	if err := h.bridge.OverwriteFile(r.Context(), req.Content, fileName(r), req.Dir); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameFile handles POST /api/files/{name}/rename.
func (h *Handler) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeBody(w, r, &req) || !requireDir(w, req.Dir) {
		return
	}
	renamed, err := h.bridge.RenameFile(r.Context(), fileName(r), req.NewName, req.Dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RenameResponse{Filename: renamed})
}

// ShowContextMenu handles POST /api/context-menu. The menu itself arrives
// on the event stream.
func (h *Handler) ShowContextMenu(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ContextMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body", apperr.KindInvalid))
		return
	}
	if req.Dir != "" && !requireDir(w, req.Dir) {
		return
	}
	h.bridge.ShowContextMenu(req.Dir, req.Filename)
	w.WriteHeader(http.StatusAccepted)
}

// ChooseMenuEntry handles POST /api/context-menu/{id}.
func (h *Handler) ChooseMenuEntry(w http.ResponseWriter, r *http.Request) {
	var req MenuChoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.bridge.ChooseMenuEntry(r.Context(), chi.URLParam(r, "id"), req.Action); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
