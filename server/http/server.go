package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/w-h-a/forumsearch/server"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type httpServer struct {
	options server.Options
	catalog *toolhandler.Catalog
	baseUrl string
	router  *mux.Router
}

func (s *httpServer) Handler() http.Handler {
	var h http.Handler = s.router

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			h = ms[i](h)
		}
	}

	return otelhttp.NewHandler(h, s.options.Name)
}

func (s *httpServer) Run(ctx context.Context) error {
	return server.ListenAndServe(ctx, s.options.Address, s.Handler(), s.options.ShutdownTimeout)
}

func (s *httpServer) routes() {
	s.router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/search", s.searchPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", s.getPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/article", s.fetchArticle).Methods(http.MethodGet)

	s.router.HandleFunc("/utcp", s.manual).Methods(http.MethodGet, http.MethodPost)
	s.router.HandleFunc("/tools/{name}", s.callTool).Methods(http.MethodPost)
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if options.Catalog == nil {
		detail := "http server requires a tool catalog"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	s := &httpServer{
		options: options,
		catalog: options.Catalog,
		router:  mux.NewRouter(),
	}

	if u, ok := BaseUrlFrom(options.Context); ok {
		s.baseUrl = u
	}

	s.routes()

	return s
}
