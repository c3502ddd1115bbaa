package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/internal/service/article"
	"github.com/w-h-a/forumsearch/internal/service/search"
	"github.com/w-h-a/forumsearch/store"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	"github.com/w-h-a/forumsearch/tool_handler/syncposts"
	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

// StatusCode maps a tool error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, forum.ErrNotFound),
		errors.Is(err, toolhandler.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, article.ErrMissingIdentifier),
		errors.Is(err, getsafe.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, syncposts.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, embedder.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		slog.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
