package toolhandler

import "context"

// ToolHandler is one operation exposed to tool-calling clients.
// Invoke returns the rendered result in ToolResponse.Content; failures are
// returned as errors so each transport can report them its own way.
type ToolHandler interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}
