package toolhandler

import (
	"context"
	"log/slog"

	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

// PageArgs reads limit and offset. Malformed values fall back to the defaults;
// range clamping is left to the store.
func PageArgs(ctx context.Context, args map[string]any, defaultLimit int) (int, int) {
	limit, err := getsafe.Int(args, "limit", defaultLimit)
	if err != nil {
		slog.DebugContext(ctx, "ignoring malformed limit", "error", err)
		limit = defaultLimit
	}

	offset, err := getsafe.Int(args, "offset", 0)
	if err != nil {
		slog.DebugContext(ctx, "ignoring malformed offset", "error", err)
		offset = 0
	}

	return limit, offset
}
