package content

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type RawDocument struct {
	Path string // 相对 docs 目录，例如 blog/my-post.md
	Text string
}

type PostRecord struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Date        string   `json:"date"`
	Author      string   `json:"author"`
	ReadTime    string   `json:"readTime"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Image       string   `json:"image,omitempty"`

	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`

	Path        string            `json:"path"`
	SortTime    time.Time         `json:"sortTime"`
	ContentHash string            `json:"contentHash"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// HasTag is case-insensitive.
func (p PostRecord) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

var markupChars = regexp.MustCompile("[#*`\\[\\]()]")

// CountWords strips common markdown markup and whitespace and counts the
// remaining characters. Mixed CJK/Latin text is not tokenized.
func CountWords(body string) int {
	stripped := markupChars.ReplaceAllString(body, "")
	n := 0
	for len(stripped) > 0 {
		r, size := utf8.DecodeRuneInString(stripped)
		stripped = stripped[size:]
		if unicode.IsSpace(r) {
			continue
		}
		n++
	}
	return n
}

var runsOfSpace = regexp.MustCompile(`\s+`)

// DeriveSlug turns a filename into a slug: extension stripped, whitespace
// runs collapsed to "-", lowercased. "My Cool Post.md" -> "my-cool-post".
func DeriveSlug(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(base)
	return strings.ToLower(runsOfSpace.ReplaceAllString(base, "-"))
}
