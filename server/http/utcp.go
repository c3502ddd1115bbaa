package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

const (
	manualVersion = "1.0"
	// maxToolBody caps the JSON arguments accepted by a tool call.
	maxToolBody = 1 << 20
)

type manualTool struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Inputs       map[string]any `json:"inputs"`
	Tags         []string       `json:"tags,omitempty"`
	ToolProvider map[string]any `json:"tool_provider"`
}

type manual struct {
	Version string       `json:"version"`
	Tools   []manualTool `json:"tools"`
}

// manual answers UTCP discovery. Each tool points at its own POST /tools/{name} endpoint.
func (s *httpServer) manual(w http.ResponseWriter, r *http.Request) {
	base := s.base(r)

	m := manual{
		Version: manualVersion,
		Tools:   []manualTool{},
	}

	for _, spec := range s.catalog.ListSpecs() {
		inputs := spec.InputSchema
		if inputs == nil {
			inputs = map[string]any{"type": "object"}
		}

		m.Tools = append(m.Tools, manualTool{
			Name:        spec.Name,
			Description: spec.Description,
			Inputs:      inputs,
			Tags:        []string{"forum"},
			ToolProvider: map[string]any{
				"provider_type": "http",
				"name":          s.options.Name,
				"url":           base + "/tools/" + spec.Name,
				"http_method":   http.MethodPost,
				"content_type":  "application/json",
			},
		})
	}

	writeJSON(w, http.StatusOK, m)
}

func (s *httpServer) callTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxToolBody)
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	args := map[string]any{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json: %v", getsafe.ErrInvalidArgument, err))
			return
		}
	}

	rsp, err := s.catalog.Invoke(r.Context(), mux.Vars(r)["name"], args)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rsp)
}

func (s *httpServer) base(r *http.Request) string {
	if len(s.baseUrl) > 0 {
		return strings.TrimRight(s.baseUrl, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); len(fwd) > 0 {
		scheme = fwd
	}

	return scheme + "://" + r.Host
}
