package toolhandler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrDuplicateTool   = errors.New("tool already registered")
	ErrInvalidToolName = errors.New("invalid tool name")
)

// Tool names are shared by MCP, UTCP and the /tools/{name} route.
var toolName = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

type entry struct {
	spec    ToolSpec
	handler ToolHandler
}

// Catalog holds tool handlers in registration order. Lookups ignore case and
// surrounding space.
type Catalog struct {
	entries []entry
	byKey   map[string]int
	mtx     sync.RWMutex
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Catalog) Register(th ToolHandler) error {
	if th == nil {
		return fmt.Errorf("%w: handler is nil", ErrInvalidToolName)
	}

	spec := th.Spec()
	spec.Name = strings.TrimSpace(spec.Name)
	if !toolName.MatchString(spec.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidToolName, spec.Name)
	}

	key := catalogKey(spec.Name)

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.byKey[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, key)
	}

	c.byKey[key] = len(c.entries)
	c.entries = append(c.entries, entry{spec: spec, handler: th})

	return nil
}

func (c *Catalog) ListSpecs() []ToolSpec {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	specs := make([]ToolSpec, len(c.entries))
	for i, e := range c.entries {
		specs[i] = e.spec
	}

	return specs
}

// Names lists the registered tool names in registration order.
func (c *Catalog) Names() []string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.spec.Name
	}

	return names
}

func (c *Catalog) Get(name string) (ToolHandler, ToolSpec, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	i, ok := c.byKey[catalogKey(name)]
	if !ok {
		return nil, ToolSpec{}, false
	}

	return c.entries[i].handler, c.entries[i].spec, true
}

// Invoke looks up a tool by name and calls it with args.
func (c *Catalog) Invoke(ctx context.Context, name string, args map[string]any) (ToolResponse, error) {
	th, _, ok := c.Get(name)
	if !ok {
		return ToolResponse{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}

	return th.Invoke(ctx, ToolRequest{Arguments: args})
}

func NewCatalog(handlers ...ToolHandler) (*Catalog, error) {
	c := &Catalog{
		byKey: map[string]int{},
	}

	for _, th := range handlers {
		if err := c.Register(th); err != nil {
			return nil, err
		}
	}

	return c, nil
}
