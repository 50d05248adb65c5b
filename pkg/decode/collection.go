package decode

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Collection wraps a decoded value tree and provides path-based traversal.
// Paths are dot-separated; numeric segments index into sequences
// ("response.friends.items.0.id").
//
// When the collection was built from a JSON body the original bytes are
// retained and path lookups are served by gjson directly, which also gives
// callers gjson's extended path syntax for free. Trees that came from the XML
// or query-string fallbacks are walked manually.
type Collection struct {
	value any
	raw   []byte // original body when the source was JSON
}

// Parse decodes a raw response body and wraps it in a Collection.
func Parse(raw []byte) *Collection {
	if v, ok := decodeJSON(raw); ok {
		return &Collection{value: v, raw: raw}
	}
	return &Collection{value: Decode(raw)}
}

// NewCollection wraps an already-decoded value.
func NewCollection(v any) *Collection {
	return &Collection{value: v}
}

// Value returns the underlying decoded value.
func (c *Collection) Value() any {
	return c.value
}

// IsMapping reports whether the decoded value is a mapping. Callers must
// treat a non-mapping decode result as "no usable identity data".
func (c *Collection) IsMapping() bool {
	_, ok := c.value.(map[string]any)
	return ok
}

// Get returns the value at path, or nil when the path does not resolve.
func (c *Collection) Get(path string) any {
	if c.raw != nil {
		res := gjson.GetBytes(c.raw, path)
		if !res.Exists() {
			return nil
		}
		return res.Value()
	}
	return walk(c.value, path)
}

// Exists reports whether path resolves to a value.
func (c *Collection) Exists(path string) bool {
	if c.raw != nil {
		return gjson.GetBytes(c.raw, path).Exists()
	}
	return walk(c.value, path) != nil
}

// Filter returns the sub-collection at path. A path that does not resolve to
// a mapping yields an empty collection, so chained lookups degrade to zero
// values instead of panicking.
func (c *Collection) Filter(path string) *Collection {
	v := c.Get(path)
	if v == nil {
		return &Collection{value: map[string]any{}}
	}
	return &Collection{value: v}
}

// Str returns the value at path rendered as a string. Numbers are formatted
// without an exponent; absent values yield "".
func (c *Collection) Str(path string) string {
	switch v := c.Get(path).(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Bool returns the value at path as a bool; absent or non-bool values yield
// false.
func (c *Collection) Bool(path string) bool {
	b, _ := c.Get(path).(bool)
	return b
}

// Int returns the value at path as an int64. JSON numbers and numeric
// strings both convert; anything else yields 0.
func (c *Collection) Int(path string) int64 {
	switch v := c.Get(path).(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Slice returns the value at path as a sequence, or nil.
func (c *Collection) Slice(path string) []any {
	s, _ := c.Get(path).([]any)
	return s
}

// walk descends a generic value tree by dot-separated path segments.
func walk(v any, path string) any {
	if path == "" {
		return v
	}
	for _, segment := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			v = node[segment]
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			v = node[idx]
		default:
			return nil
		}
	}
	return v
}
