package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/w-h-a/forumsearch/server"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type mcpServer struct {
	options server.Options
	catalog *toolhandler.Catalog
	server  *mcpsdk.Server
}

func (s *mcpServer) Handler() http.Handler {
	h := mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.server
	}, nil)

	return otelhttp.NewHandler(h, "mcp")
}

// Run serves over stdio when no address is configured, otherwise over streamable HTTP.
func (s *mcpServer) Run(ctx context.Context) error {
	if len(s.options.Address) == 0 {
		slog.InfoContext(ctx, "serving mcp over stdio", "tools", len(s.catalog.ListSpecs()))
		if err := s.server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	return server.ListenAndServe(ctx, s.options.Address, s.Handler(), s.options.ShutdownTimeout)
}

func (s *mcpServer) register(spec toolhandler.ToolSpec) {
	name := spec.Name

	s.server.AddTool(&mcpsdk.Tool{
		Name:        name,
		Description: spec.Description,
		InputSchema: inputSchema(spec),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		args, err := arguments(req.Params.Arguments)
		if err != nil {
			return errorResult(err), nil
		}

		rsp, err := s.catalog.Invoke(ctx, name, args)
		if err != nil {
			slog.WarnContext(ctx, "tool call failed", "tool", name, "error", err)
			return errorResult(err), nil
		}

		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: rsp.Content},
			},
		}, nil
	})
}

func inputSchema(spec toolhandler.ToolSpec) map[string]any {
	if spec.InputSchema == nil {
		return map[string]any{"type": "object"}
	}
	return spec.InputSchema
}

func arguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}

	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	return args, nil
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if options.Catalog == nil {
		detail := "mcp server requires a tool catalog"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	s := &mcpServer{
		options: options,
		catalog: options.Catalog,
		server: mcpsdk.NewServer(
			&mcpsdk.Implementation{
				Name:    options.Name,
				Version: options.Version,
			},
			&mcpsdk.ServerOptions{
				Logger: LoggerFrom(options.Context),
			},
		),
	}

	for _, spec := range options.Catalog.ListSpecs() {
		s.register(spec)
	}

	return s
}
