package toolhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageArgs(t *testing.T) {
	ctx := context.Background()

	limit, offset := PageArgs(ctx, map[string]any{}, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 0, offset)

	limit, offset = PageArgs(ctx, map[string]any{"limit": "25", "offset": 5.0}, 10)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 5, offset)

	limit, offset = PageArgs(ctx, map[string]any{"limit": true, "offset": "later"}, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 0, offset)

	limit, offset = PageArgs(ctx, map[string]any{"limit": -3.0, "offset": -1.0}, 10)
	assert.Equal(t, -3, limit)
	assert.Equal(t, -1, offset)
}
