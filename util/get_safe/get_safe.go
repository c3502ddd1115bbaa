package getsafe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidArgument = errors.New("invalid argument")

func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int reads an integer argument, returning def when the key is absent or null.
// JSON numbers arrive as float64 and must be whole.
func Int(payload map[string]any, key string, def int) (int, error) {
	v, ok := payload[key]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: argument '%s' must be an integer, got %v", ErrInvalidArgument, key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: argument '%s' must be an integer, got %s", ErrInvalidArgument, key, n)
		}
		return int(i), nil
	case string:
		s := strings.TrimSpace(n)
		if len(s) == 0 {
			return def, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: argument '%s' must be an integer, got %q", ErrInvalidArgument, key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: argument '%s' has invalid type: expected integer, got %T", ErrInvalidArgument, key, v)
	}
}
