package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type utcpToolHandler struct {
	options  toolhandler.Options
	client   utcp.UtcpClientInterface
	toolName string
	spec     toolhandler.ToolSpec
}

func (th *utcpToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

func (th *utcpToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}

	raw, err := th.client.CallTool(ctx, th.toolName, args)
	if err != nil {
		return toolhandler.ToolResponse{}, fmt.Errorf("remote tool %s: %w", th.toolName, err)
	}

	return toolhandler.ToolResponse{
		Content: Content(raw),
		Metadata: map[string]string{
			"source": "utcp",
			"tool":   th.toolName,
		},
	}, nil
}

// Content flattens a remote tool result into text. A {"content": "..."} envelope
// is unwrapped; other values are JSON encoded.
func Content(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case map[string]any:
		if s, ok := v["content"].(string); ok {
			return s
		}
	}

	if b, err := json.Marshal(raw); err == nil {
		return string(b)
	}

	return fmt.Sprintf("%v", raw)
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &utcpToolHandler{
		options: options,
	}

	client, ok := UtcpClientFrom(options.Context)
	if !ok || client == nil {
		detail := "utcp tool handler requires a utcp client"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.client = client

	name, spec, ok := RemoteToolFrom(options.Context)
	if !ok || len(name) == 0 {
		detail := "utcp tool handler requires a remote tool name"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.toolName = name
	th.spec = spec

	return th
}
