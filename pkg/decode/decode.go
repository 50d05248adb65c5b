// Package decode turns raw provider response bodies into a generic,
// traversable value tree.
//
// Identity providers are wildly inconsistent about response encodings: most
// speak JSON, a few still answer XML, and the oldest return bare
// application/x-www-form-urlencoded bodies. Decode tries each format in that
// order and the first success wins. Decoding never fails; an input no format
// can make sense of degenerates to the original string, and callers must
// treat a non-mapping result as "no usable data".
package decode

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// xmlNamespacePrefix matches a namespace prefix immediately after an element
// open or close bracket. Providers that send namespaced XML carry no meaning
// in the prefixes, so they are stripped before parsing.
var xmlNamespacePrefix = regexp.MustCompile(`(?i)([<\/])([a-z0-9-]+):`)

// Decode parses raw into a generic value tree.
//
// The result is a map[string]any for mapping-shaped payloads, a []any for
// sequences, a scalar for bare JSON scalars, or the original input as a
// string when every format fails.
func Decode(raw []byte) any {
	if v, ok := decodeJSON(raw); ok {
		return v
	}
	if v, ok := decodeXML(raw); ok {
		return v
	}
	return decodeQueryString(string(raw))
}

// decodeJSON attempts a strict JSON parse. Success means the parse yielded a
// non-null, non-false value; JSON null and false carry no identity data and
// would shadow the XML and query-string fallbacks.
func decodeJSON(raw []byte) (any, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v == nil {
		return nil, false
	}
	if b, isBool := v.(bool); isBool && !b {
		return nil, false
	}
	return v, true
}

// decodeXML attempts an XML parse after stripping namespace prefixes from
// element tags. The parsed document is re-wrapped as a single-key mapping
// keyed by the root element name. A document that fails to parse yields no
// result, not an empty mapping.
func decodeXML(raw []byte) (any, bool) {
	stripped := xmlNamespacePrefix.ReplaceAll(raw, []byte("$1"))

	root, ok := parseXMLDocument(stripped)
	if !ok {
		return nil, false
	}
	return map[string]any{root.name: root.value()}, true
}

// decodeQueryString parses a URL-encoded body into a flat mapping. When the
// input is not structurally a query string the original text is returned
// unchanged: decoding gave up.
func decodeQueryString(raw string) any {
	if !strings.Contains(raw, "=") {
		return raw
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}

	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[k] = list
	}
	return out
}
