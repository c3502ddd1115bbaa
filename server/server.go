package server

import (
	"context"
	"net/http"
)

// Server exposes a tool catalog over one transport.
type Server interface {
	// Handler serves the transport over HTTP.
	Handler() http.Handler
	// Run blocks until ctx is done or the transport fails.
	Run(ctx context.Context) error
}
