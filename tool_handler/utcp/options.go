package utcp

import (
	"context"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type utcpClientKey struct{}

func WithUtcpClient(client utcp.UtcpClientInterface) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, utcpClientKey{}, client)
	}
}

func UtcpClientFrom(ctx context.Context) (utcp.UtcpClientInterface, bool) {
	client, ok := ctx.Value(utcpClientKey{}).(utcp.UtcpClientInterface)
	return client, ok
}

type remoteToolKey struct{}

type remoteTool struct {
	name string
	spec toolhandler.ToolSpec
}

// WithRemoteTool names the provider-qualified tool to call and the spec it is exposed under.
func WithRemoteTool(name string, spec toolhandler.ToolSpec) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, remoteToolKey{}, remoteTool{name: name, spec: spec})
	}
}

func RemoteToolFrom(ctx context.Context) (string, toolhandler.ToolSpec, bool) {
	rt, ok := ctx.Value(remoteToolKey{}).(remoteTool)
	return rt.name, rt.spec, ok
}
