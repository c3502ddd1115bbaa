package toolhandler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	name string
	args map[string]any
}

func (h *stubHandler) Spec() ToolSpec {
	return ToolSpec{Name: h.name, Description: "stub"}
}

func (h *stubHandler) Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error) {
	h.args = req.Arguments
	return ToolResponse{Content: h.name}, nil
}

func TestCatalog(t *testing.T) {
	a := &stubHandler{name: "List_Posts"}
	b := &stubHandler{name: "search_posts"}

	c, err := NewCatalog(a, b)
	require.NoError(t, err)

	specs := c.ListSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, "List_Posts", specs[0].Name)
	assert.Equal(t, "search_posts", specs[1].Name)

	_, spec, ok := c.Get("list_posts")
	assert.True(t, ok)
	assert.Equal(t, "List_Posts", spec.Name)

	rsp, err := c.Invoke(context.Background(), " SEARCH_POSTS ", nil)
	require.NoError(t, err)
	assert.Equal(t, "search_posts", rsp.Content)
	assert.NotNil(t, b.args)

	_, err = c.Invoke(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestCatalogRejectsDuplicatesAndBadNames(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	require.NoError(t, c.Register(&stubHandler{name: " get_post "}))
	assert.ErrorIs(t, c.Register(&stubHandler{name: "GET_POST"}), ErrDuplicateTool)
	assert.ErrorIs(t, c.Register(&stubHandler{name: "  "}), ErrInvalidToolName)
	assert.ErrorIs(t, c.Register(&stubHandler{name: "get post"}), ErrInvalidToolName)
	assert.ErrorIs(t, c.Register(&stubHandler{name: "tools/get_post"}), ErrInvalidToolName)
	assert.ErrorIs(t, c.Register(&stubHandler{name: strings.Repeat("a", 129)}), ErrInvalidToolName)
	assert.ErrorIs(t, c.Register(nil), ErrInvalidToolName)

	assert.Equal(t, []string{"get_post"}, c.Names())

	_, spec, ok := c.Get("GET_POST")
	require.True(t, ok)
	assert.Equal(t, "get_post", spec.Name)

	th, _, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, th)
}
