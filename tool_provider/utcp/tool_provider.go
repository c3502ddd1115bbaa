package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	goutcp "github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	"github.com/w-h-a/forumsearch/tool_handler/utcp"
	toolprovider "github.com/w-h-a/forumsearch/tool_provider"
)

type utcpToolProvider struct {
	options toolprovider.Options
	client  goutcp.UtcpClientInterface
}

func (tp *utcpToolProvider) Load(ctx context.Context, query string, limit int) ([]toolhandler.ToolHandler, error) {
	remoteTools, err := tp.client.SearchTools(query, limit)
	if err != nil {
		return nil, fmt.Errorf("utcp discovery failed: %w", err)
	}

	var handlers []toolhandler.ToolHandler
	for _, tool := range remoteTools {
		schema := map[string]any{
			"type":       "object",
			"properties": tool.Inputs.Properties,
		}
		if len(tool.Inputs.Required) > 0 {
			schema["required"] = tool.Inputs.Required
		}

		spec := toolhandler.ToolSpec{
			Name:        LocalName(tool.Name),
			Description: tool.Description,
			InputSchema: schema,
		}

		handlers = append(handlers, utcp.NewToolHandler(
			utcp.WithUtcpClient(tp.client),
			utcp.WithRemoteTool(tool.Name, spec),
		))
	}

	slog.DebugContext(ctx, "loaded remote tools", "query", query, "count", len(handlers))

	return handlers, nil
}

// LocalName strips the provider prefix the UTCP client adds to tool names.
func LocalName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

type ProviderConfig struct {
	Type    string            `json:"provider_type"`
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Method  string            `json:"http_method"`
	Headers map[string]string `json:"headers"`
}

type providersFile struct {
	Providers []ProviderConfig `json:"providers"`
}

// Providers describes one HTTP provider per manual address.
func Providers(addrs []string, headers map[string]string) ([]ProviderConfig, error) {
	var providers []ProviderConfig

	for i, u := range addrs {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}

		if len(parsed.Hostname()) == 0 {
			return nil, fmt.Errorf("utcp address %q has no host", u)
		}

		h := map[string]string{
			"Content-Type": "application/json",
		}
		for k, v := range headers {
			h[k] = v
		}

		name := strings.NewReplacer(".", "_", ":", "_").Replace(parsed.Host)
		if i > 0 {
			name = fmt.Sprintf("%s_%d", name, i)
		}

		providers = append(providers, ProviderConfig{
			Type:    "http",
			Name:    name,
			URL:     u,
			Method:  "POST",
			Headers: h,
		})
	}

	return providers, nil
}

func (tp *utcpToolProvider) createTempConfig() (string, error) {
	providers, err := Providers(tp.options.Addrs, tp.options.Headers)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "utcp_config_*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(providersFile{Providers: providers}); err != nil {
		return "", err
	}

	return f.Name(), nil
}

func NewToolProvider(opts ...toolprovider.Option) toolprovider.ToolProvider {
	options := toolprovider.NewOptions(opts...)

	tp := &utcpToolProvider{
		options: options,
	}

	var configPath string

	if len(options.Addrs) > 0 {
		tmpPath, err := tp.createTempConfig()
		if err != nil {
			detail := "failed to write utcp providers config"
			slog.ErrorContext(context.Background(), detail, "error", err)
			panic(detail)
		}
		configPath = tmpPath
		defer os.Remove(tmpPath)
	}

	client, err := goutcp.NewUTCPClient(
		options.Context,
		&goutcp.UtcpClientConfig{
			ProvidersFilePath: configPath,
		},
		nil,
		nil,
	)
	if err != nil {
		detail := "failed to initialize utcp client"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	tp.client = client

	return tp
}
