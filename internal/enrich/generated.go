package enrich

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Generated is what the model was asked to return.
type Generated struct {
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Tags    tagField `json:"tags"`
}

// tagField accepts ["a","b"] or "a, b".
type tagField []string

func (t *tagField) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = strings.Split(s, ",")
	return nil
}

var (
	jsonSpan     = regexp.MustCompile(`\{[\s\S]*\}`)
	titleField   = regexp.MustCompile(`(?i)title["\s:：]+["']?([^"'\n]+)["']?`)
	excerptField = regexp.MustCompile(`(?i)excerpt["\s:：]+["']?([^"'\n]+)["']?`)
)

// ParseGenerated recovers what it can from a free-text model response: the
// first-to-last brace span as JSON, then key/value regexes. ok is false when
// nothing was recovered.
func ParseGenerated(text string) (Generated, bool) {
	if span := jsonSpan.FindString(text); span != "" {
		var g Generated
		if err := json.Unmarshal([]byte(span), &g); err == nil {
			g.normalize()
			return g, true
		}
	}

	var g Generated
	if m := titleField.FindStringSubmatch(text); m != nil {
		g.Title = m[1]
	}
	if m := excerptField.FindStringSubmatch(text); m != nil {
		g.Excerpt = m[1]
	}
	g.normalize()
	return g, g.Title != "" || g.Excerpt != ""
}

// normalize makes model output safe to write as single header lines: line
// breaks become spaces, and tags lose the characters that delimit a list.
func (g *Generated) normalize() {
	g.Title = oneLine(g.Title)
	g.Excerpt = oneLine(g.Excerpt)
	out := make(tagField, 0, len(g.Tags))
	for _, t := range g.Tags {
		t = oneLine(strings.Map(func(r rune) rune {
			switch r {
			case '[', ']', ',', '"':
				return ' '
			}
			return r
		}, t))
		if t != "" {
			out = append(out, t)
		}
	}
	g.Tags = out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func buildPrompt(title, body string, limit int) string {
	r := []rune(body)
	if limit > 0 && len(r) > limit {
		r = r[:limit]
	}
	return fmt.Sprintf(`请分析以下文章内容，生成以下信息（使用中文）：
1. title: 文章标题（简洁有力，不超过 20 字）
2. excerpt: 文章摘要（2-3 句话，不超过 100 字）
3. tags: 3-5 个标签（数组格式）

标题：%s

文章内容：
%s...

请以 JSON 格式返回，格式如下：
{
  "title": "文章标题",
  "excerpt": "文章摘要",
  "tags": ["标签1", "标签2", "标签3"]
}`, title, string(r))
}
