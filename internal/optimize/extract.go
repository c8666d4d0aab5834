package optimize

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	excerptTarget  = 150
	excerptMin     = 50
	excerptMax     = 200
	excerptTrimTo  = 160
	excerptTrimMin = 100
	titleMax       = 60
	titleKeep      = 57
	maxTags        = 5
)

var (
	sentenceSep   = regexp.MustCompile(`[。！？.!?]`)
	titleWord     = regexp.MustCompile(`\p{Han}+|[a-zA-Z]+`)
	blankAltImage = regexp.MustCompile(`!\[\s*\]\(([^)\s]+)([^)]*)\)`)
)

// 标题关键词匹配用
var commonTechTerms = []string{"JavaScript", "TypeScript", "React", "Vue", "Node", "CSS", "HTML", "Web", "前端", "后端", "算法", "设计模式", "性能", "优化"}

var bodyTechTerms = []string{"javascript", "typescript", "react", "vue", "node", "css", "html", "webpack", "vite", "es6", "promise", "async", "await"}

var categoryTags = map[string]string{
	"blog":     "博客",
	"ai":       "AI",
	"practice": "实践",
}

// extractExcerpt builds an excerpt of whole sentences up to target runes from
// prose text. Short results fall back to a plain cut.
func extractExcerpt(text string, target int) string {
	var b strings.Builder
	n := 0
	for _, s := range sentenceSep.Split(text, -1) {
		s = strings.TrimSpace(s)
		l := utf8.RuneCountInString(s)
		if l <= 10 {
			continue
		}
		if n+l > target {
			break
		}
		b.WriteString(s)
		b.WriteString("。")
		n += l + 1
	}
	if n >= excerptMin {
		return strings.TrimSpace(b.String())
	}

	cut := strings.TrimSpace(truncateRunes(text, target))
	r := []rune(cut)
	if i := lastRuneIndex(r, '。'); i > excerptMin {
		return string(r[:i+1])
	}
	if i := lastRuneIndex(r, ' '); i > excerptMin {
		return string(r[:i]) + "..."
	}
	if cut == "" {
		return ""
	}
	return cut + "..."
}

// trimExcerpt shortens an overlong excerpt, ending at a full stop when one
// is far enough in.
func trimExcerpt(excerpt string) string {
	cut := []rune(strings.TrimSpace(truncateRunes(excerpt, excerptTrimTo)))
	if i := lastRuneIndex(cut, '。'); i > excerptTrimMin {
		return string(cut[:i+1])
	}
	return string(cut) + "..."
}

func shortenTitle(title string) string {
	return strings.TrimSpace(truncateRunes(title, titleKeep)) + "..."
}

func (o *Optimizer) extractTags(body, title, category string) []string {
	var tags []string
	add := func(t string) {
		for _, have := range tags {
			if have == t {
				return
			}
		}
		tags = append(tags, t)
	}

	if t, ok := categoryTags[category]; ok {
		add(t)
	}
	for _, kw := range titleWord.FindAllString(title, -1) {
		if utf8.RuneCountInString(kw) < 2 {
			continue
		}
		for _, term := range commonTechTerms {
			if strings.Contains(kw, term) || strings.Contains(term, kw) {
				add(kw)
				break
			}
		}
	}
	for _, term := range o.terms.Contained(body) {
		if len(tags) >= maxTags {
			break
		}
		add(strings.ToUpper(term[:1]) + term[1:])
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// fillImageAlts gives every image with blank alt text a description taken
// from its file name. It returns the new body and the alts it wrote.
func fillImageAlts(body string) (string, []string) {
	var alts []string
	out := blankAltImage.ReplaceAllStringFunc(body, func(m string) string {
		sub := blankAltImage.FindStringSubmatch(m)
		src, rest := sub[1], sub[2]
		alt := altFromSource(src)
		alts = append(alts, alt)
		return "![" + alt + "](" + src + rest + ")"
	})
	return out, alts
}

func altFromSource(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	base := path.Base(src)
	base = strings.TrimSuffix(base, path.Ext(base))
	alt := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	if alt == "" || alt == "." || alt == "/" {
		return "文章配图"
	}
	return alt
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func lastRuneIndex(r []rune, c rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == c {
			return i
		}
	}
	return -1
}
