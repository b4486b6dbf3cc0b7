// Package content implements path-addressed site content documents.
//
// A Document is a nested mapping of string keys to strings, numbers,
// booleans or further mappings. Fields are addressed by dot-separated
// paths such as "homepage.hero.title". Reads never fail: a missing or
// wrong-shaped node yields a default. Writes create intermediate mappings
// as needed, overwriting any scalar found in the way.
package content

import (
	"sort"
	"strconv"
	"strings"
)

// Document is one editable content tree, e.g. the content of the whole site
// keyed by page section.
type Document map[string]any

// Default is returned by Get when a path does not resolve.
const Default = ""

// ValidPath reports whether path is non-empty and has no empty segments.
func ValidPath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// Get returns the value at path, or Default when any segment is missing or
// an intermediate node is not a mapping. doc is never modified.
func Get(doc Document, path string) any {
	return GetOr(doc, path, Default)
}

// GetOr is Get with a caller supplied default.
func GetOr(doc Document, path string, def any) any {
	if !ValidPath(path) {
		return def
	}
	var node any = doc
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(node)
		if !ok {
			return def
		}
		next, ok := m[seg]
		if !ok || next == nil {
			return def
		}
		node = next
	}
	return node
}

// GetString returns the scalar at path formatted as a string. Mappings and
// missing paths yield "".
func GetString(doc Document, path string) string {
	switch v := Get(doc, path).(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Set returns a new document with value stored at path. Intermediate nodes
// that are absent or not mappings are replaced by empty mappings. Mappings
// along the path are copied, so doc itself is left untouched; branches off
// the path are shared with doc. An invalid path returns doc unchanged.
func Set(doc Document, path string, value any) Document {
	if !ValidPath(path) {
		return doc
	}
	segs := strings.Split(path, ".")
	root := shallowCopy(doc)
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := asMap(cur[seg])
		if !ok {
			child = Document{}
		} else {
			child = shallowCopy(child)
		}
		cur[seg] = child
		cur = child
	}
	cur[segs[len(segs)-1]] = value
	return root
}

// Clone returns a deep copy of doc.
func Clone(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		if m, ok := asMap(v); ok {
			out[k] = Clone(m)
			continue
		}
		out[k] = v
	}
	return out
}

// Normalize converts a decoded JSON or YAML tree into Document form: nested
// maps become Documents and integer numbers become float64. Slices are
// normalized element-wise and kept as-is otherwise.
func Normalize(v any) any {
	switch t := v.(type) {
	case Document:
		out := make(Document, len(t))
		for k, vv := range t {
			out[k] = Normalize(vv)
		}
		return out
	case map[string]any:
		out := make(Document, len(t))
		for k, vv := range t {
			out[k] = Normalize(vv)
		}
		return out
	case map[any]any:
		out := make(Document, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = Normalize(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = Normalize(vv)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

// FromMap normalizes m into a Document.
func FromMap(m map[string]any) Document {
	if m == nil {
		return Document{}
	}
	return Normalize(m).(Document)
}

// IsScalar reports whether v may be stored at a leaf.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int64:
		return true
	default:
		return false
	}
}

// Paths lists the path of every non-mapping leaf in doc, sorted.
func Paths(doc Document) []string {
	var out []string
	var walk func(prefix string, m Document)
	walk = func(prefix string, m Document) {
		for k, v := range m {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			if child, ok := asMap(v); ok {
				walk(p, child)
				continue
			}
			out = append(out, p)
		}
	}
	walk("", doc)
	sort.Strings(out)
	return out
}

func asMap(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, m != nil
	case map[string]any:
		return Document(m), m != nil
	default:
		return nil, false
	}
}

func shallowCopy(m Document) Document {
	out := make(Document, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
