package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/w-h-a/forumsearch/tool_handler/fetcharticle"
	"github.com/w-h-a/forumsearch/tool_handler/getpost"
	"github.com/w-h-a/forumsearch/tool_handler/listposts"
	"github.com/w-h-a/forumsearch/tool_handler/searchposts"
)

func (s *httpServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  len(s.catalog.ListSpecs()),
	})
}

func (s *httpServer) listPosts(w http.ResponseWriter, r *http.Request) {
	s.invoke(w, r, listposts.Name, pageArgs(r), "application/json")
}

func (s *httpServer) searchPosts(w http.ResponseWriter, r *http.Request) {
	args := pageArgs(r)

	q := r.URL.Query().Get("q")
	if len(q) == 0 {
		q = r.URL.Query().Get("query")
	}
	args["query"] = q

	s.invoke(w, r, searchposts.Name, args, "application/json")
}

func (s *httpServer) getPost(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{"post_id": mux.Vars(r)["id"]}
	s.invoke(w, r, getpost.Name, args, "application/json")
}

func (s *httpServer) fetchArticle(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{"post_id": mux.Vars(r)["id"]}
	s.invoke(w, r, fetcharticle.Name, args, "text/markdown; charset=utf-8")
}

func (s *httpServer) invoke(w http.ResponseWriter, r *http.Request, name string, args map[string]any, contentType string) {
	rsp, err := s.catalog.Invoke(r.Context(), name, args)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rsp.Content))
}

// pageArgs passes limit and offset through as strings; the tools parse them.
func pageArgs(r *http.Request) map[string]any {
	args := map[string]any{}

	for _, key := range []string{"limit", "offset"} {
		if v := strings.TrimSpace(r.URL.Query().Get(key)); len(v) > 0 {
			args[key] = v
		}
	}

	return args
}
