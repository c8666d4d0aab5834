package content

import (
	"strings"
)

// 已知字段，Encode 按这个顺序输出
const (
	FieldSlug        = "slug"
	FieldTitle       = "title"
	FieldExcerpt     = "excerpt"
	FieldDate        = "date"
	FieldAuthor      = "author"
	FieldReadTime    = "readTime"
	FieldTags        = "tags"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldImage       = "image"
)

var CanonicalOrder = []string{
	FieldSlug,
	FieldTitle,
	FieldExcerpt,
	FieldDate,
	FieldAuthor,
	FieldReadTime,
	FieldTags,
	FieldCategory,
	FieldSubcategory,
	FieldImage,
}

func IsStandardField(key string) bool {
	for _, k := range CanonicalOrder {
		if k == key {
			return true
		}
	}
	return false
}

// Value is either a scalar string or an ordered list of strings.
type Value struct {
	scalar string
	items  []string
	isList bool
}

func Scalar(s string) Value {
	return Value{scalar: s}
}

func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{items: cp, isList: true}
}

func (v Value) IsList() bool { return v.isList }

// Str returns the scalar form. Lists are joined with ", ".
func (v Value) Str() string {
	if v.isList {
		return strings.Join(v.items, ", ")
	}
	return v.scalar
}

func (v Value) Items() []string {
	if !v.isList {
		if v.scalar == "" {
			return nil
		}
		return []string{v.scalar}
	}
	cp := make([]string, len(v.items))
	copy(cp, v.items)
	return cp
}

func (v Value) IsEmpty() bool {
	if v.isList {
		return len(v.items) == 0
	}
	return strings.TrimSpace(v.scalar) == ""
}

func (v Value) Equal(o Value) bool {
	if v.isList != o.isList {
		return false
	}
	if !v.isList {
		return v.scalar == o.scalar
	}
	if len(v.items) != len(o.items) {
		return false
	}
	for i := range v.items {
		if v.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// Metadata is an insertion-ordered key/value mapping. The zero value is ready
// to use.
type Metadata struct {
	keys []string
	vals map[string]Value
}

func NewMetadata() Metadata {
	return Metadata{vals: make(map[string]Value)}
}

func (m Metadata) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present with a non-empty value.
func (m Metadata) Has(key string) bool {
	v, ok := m.vals[key]
	return ok && !v.IsEmpty()
}

// Set overwrites the value; a new key is appended, an existing key keeps its
// position.
func (m *Metadata) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *Metadata) SetString(key, s string) { m.Set(key, Scalar(s)) }

func (m *Metadata) SetList(key string, items []string) { m.Set(key, List(items...)) }

func (m *Metadata) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m Metadata) Len() int { return len(m.keys) }

func (m Metadata) String(key string) string {
	v, ok := m.vals[key]
	if !ok {
		return ""
	}
	return v.Str()
}

// List returns the items of a list value; a non-empty scalar yields one item.
func (m Metadata) List(key string) []string {
	v, ok := m.vals[key]
	if !ok {
		return nil
	}
	return v.Items()
}

func (m Metadata) Clone() Metadata {
	out := Metadata{
		keys: make([]string, len(m.keys)),
		vals: make(map[string]Value, len(m.vals)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.vals {
		if v.isList {
			v = List(v.items...)
		}
		out.vals[k] = v
	}
	return out
}

// Equal compares as a mapping; key order is ignored.
func (m Metadata) Equal(o Metadata) bool {
	if len(m.vals) != len(o.vals) {
		return false
	}
	for k, v := range m.vals {
		ov, ok := o.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// NormalizeTags trims, drops empty entries and removes duplicates, keeping the
// first occurrence.
func NormalizeTags(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
