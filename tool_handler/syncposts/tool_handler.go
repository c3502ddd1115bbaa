package syncposts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/w-h-a/forumsearch/internal/service/ingest"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

const Name = "sync_posts"

var ErrSyncInProgress = errors.New("a sync is already running")

type syncPostsToolHandler struct {
	options toolhandler.Options
	ingest  *ingest.Service
	mtx     sync.Mutex
}

func (th *syncPostsToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Description: "Pull new posts from the forum into the store and embed them. Incremental mode covers the last `hours` hours; full mode walks every page the forum allows and rebuilds the vector index. Returns run statistics.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mode": map[string]any{
					"type":        "string",
					"enum":        []any{string(ingest.Incremental), string(ingest.Full)},
					"default":     string(ingest.Incremental),
					"description": "Ingestion mode.",
				},
				"hours": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Incremental window in hours.",
				},
			},
		},
		Examples: []map[string]any{
			{"mode": "incremental", "hours": 24},
		},
	}
}

func (th *syncPostsToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	mode, err := ingest.ParseMode(getsafe.String(req.Arguments, "mode"))
	if err != nil {
		return toolhandler.ToolResponse{}, fmt.Errorf("%w: %w", getsafe.ErrInvalidArgument, err)
	}

	hours, err := getsafe.Int(req.Arguments, "hours", 0)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	if hours < 0 {
		return toolhandler.ToolResponse{}, fmt.Errorf("%w: argument 'hours' must be positive, got %d", getsafe.ErrInvalidArgument, hours)
	}

	if !th.mtx.TryLock() {
		return toolhandler.ToolResponse{}, ErrSyncInProgress
	}
	defer th.mtx.Unlock()

	var stats ingest.Stats

	switch mode {
	case ingest.Full:
		stats, err = th.ingest.Run(ctx, ingest.Full)
	default:
		stats, err = th.ingest.RunSince(ctx, time.Duration(hours)*time.Hour)
	}
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.JSON(stats, map[string]string{
		"tool":   Name,
		"run_id": stats.RunId,
	})
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &syncPostsToolHandler{
		options: options,
	}

	svc, ok := IngestServiceFrom(options.Context)
	if !ok || svc == nil {
		detail := "sync_posts tool requires an ingest service"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.ingest = svc

	return th
}
