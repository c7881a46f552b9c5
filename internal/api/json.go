package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/jotter/internal/apperr"
)

const kindUnauthorized apperr.Kind = "unauthorized"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func errorBody(msg string, kind apperr.Kind) errResponse {
	return errResponse{Error: msg, Kind: string(kind)}
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindNoSpace:
		return http.StatusInsufficientStorage
	case apperr.KindAlreadyExists, apperr.KindAlreadySubscribed, apperr.KindCancelled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the kind of err. Internal failures do not leak
// their message.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", msg))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody(msg, kind))
}
