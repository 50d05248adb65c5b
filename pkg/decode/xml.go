package decode

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// xmlElement is an intermediate node built while walking the token stream.
type xmlElement struct {
	name     string
	text     strings.Builder
	attrs    map[string]any
	children []*xmlElement
}

// parseXMLDocument parses a stripped XML document and returns its root
// element. ok is false when the document is not well-formed or has no root.
func parseXMLDocument(raw []byte) (*xmlElement, bool) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = true

	var stack []*xmlElement
	var root *xmlElement

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmlElement{name: t.Name.Local}
			if len(t.Attr) > 0 {
				el.attrs = make(map[string]any, len(t.Attr))
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
						continue
					}
					el.attrs[a.Name.Local] = a.Value
				}
				if len(el.attrs) == 0 {
					el.attrs = nil
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, false
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, false
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil || len(stack) != 0 {
		return nil, false
	}
	return root, true
}

// value converts the element subtree into the generic mapping/sequence model:
// leaf elements become their trimmed text, nested elements become mappings,
// and repeated sibling names collapse into sequences. Attributes, when
// present, are kept under an "@attributes" key.
func (e *xmlElement) value() any {
	text := strings.TrimSpace(e.text.String())

	if len(e.children) == 0 && e.attrs == nil {
		return text
	}

	out := make(map[string]any)
	if e.attrs != nil {
		out["@attributes"] = e.attrs
	}

	for _, child := range e.children {
		v := child.value()
		switch existing := out[child.name].(type) {
		case nil:
			out[child.name] = v
		case []any:
			out[child.name] = append(existing, v)
		default:
			out[child.name] = []any{existing, v}
		}
	}

	if len(e.children) == 0 && text != "" {
		// Attribute-bearing leaf: keep the text alongside the attributes.
		out["#text"] = text
	}

	return out
}
