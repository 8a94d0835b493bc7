package preview

import (
	"fmt"
	"unicode/utf8"
)

// Limits bounds how much of a result is rendered for display. Zero disables a
// limit.
type Limits struct {
	MaxArrayItems int `json:"max_array_items"`
	MaxStringLen  int `json:"max_string_len"`
	MaxDepth      int `json:"max_depth"`
}

// DefaultLimits keeps previews readable without hiding the response shape.
var DefaultLimits = Limits{MaxArrayItems: 5, MaxStringLen: 500}

// Compact returns a display copy of the result's value with long arrays and
// strings trimmed. Trimmed arrays end with a "... (N more items)" marker so the
// operator can tell the view is partial. The result itself is not modified.
func Compact(res *Result, lim Limits) any {
	if res == nil {
		return nil
	}
	if res.Kind == KindText {
		return trimString(res.Text, lim.MaxStringLen)
	}
	return trimValue(res.Data, lim, 0)
}

func trimValue(v any, lim Limits, depth int) any {
	if lim.MaxDepth > 0 && depth >= lim.MaxDepth {
		switch v.(type) {
		case []any, map[string]any:
			return "[max depth]"
		}
	}

	switch val := v.(type) {
	case string:
		return trimString(val, lim.MaxStringLen)
	case []any:
		n := len(val)
		if lim.MaxArrayItems > 0 && n > lim.MaxArrayItems {
			n = lim.MaxArrayItems
		}
		out := make([]any, 0, n+1)
		for _, item := range val[:n] {
			out = append(out, trimValue(item, lim, depth+1))
		}
		if rest := len(val) - n; rest > 0 {
			out = append(out, fmt.Sprintf("... (%d more items)", rest))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = trimValue(item, lim, depth+1)
		}
		return out
	}
	return v
}

func trimString(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + fmt.Sprintf("... (%d more chars)", len(runes)-max)
}
