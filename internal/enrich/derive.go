package enrich

import (
	"path/filepath"
	"regexp"
	"strings"
)

type CategoryMapping struct {
	Folder string
	Key    string
}

// DeriveCategory returns the key of the first mapping whose folder appears as
// a path segment of path, or def.
func DeriveCategory(path string, mappings []CategoryMapping, def string) string {
	p := "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
	for _, m := range mappings {
		folder := strings.Trim(m.Folder, "/")
		if folder == "" {
			continue
		}
		if strings.Contains(p, "/"+folder+"/") {
			return m.Key
		}
	}
	return def
}

func ReadMinutes(wordCount, speed int) int {
	if speed <= 0 {
		speed = 300
	}
	m := (wordCount + speed - 1) / speed
	if m < 1 {
		m = 1
	}
	return m
}

// NaiveExcerpt takes the first n characters with newlines flattened.
func NaiveExcerpt(body string, n int) string {
	r := []rune(body)
	if len(r) > n {
		r = r[:n]
	}
	s := strings.ReplaceAll(string(r), "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

var (
	latinTag      = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)
	nonWord       = regexp.MustCompile(`[^\w\s-]`)
	latinWord     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

type keywordRule struct {
	needles  []string
	keywords []string
}

// 标题里没有英文词时按关键字猜一组通用搜索词
var keywordRules = []keywordRule{
	{[]string{"ai", "gemini", "agent"}, []string{"artificial intelligence", "technology"}},
	{[]string{"前端", "frontend", "web"}, []string{"web development", "coding"}},
	{[]string{"算法", "algorithm"}, []string{"algorithm", "programming"}},
	{[]string{"css", "layout"}, []string{"web design", "ui"}},
}

// ImageQuery builds a short Latin-script search query from tags and title.
func ImageQuery(title string, tags []string) string {
	var keywords []string

	n := 0
	for _, tag := range tags {
		if n == 2 {
			break
		}
		if latinTag.MatchString(tag) {
			keywords = append(keywords, tag)
			n++
		}
	}

	n = 0
	for _, w := range whitespaceRun.Split(nonWord.ReplaceAllString(title, " "), -1) {
		if n == 2 {
			break
		}
		if len(w) >= 2 && latinWord.MatchString(w) {
			keywords = append(keywords, w)
			n++
		}
	}

	if len(keywords) == 0 {
		lower := strings.ToLower(title)
		keywords = []string{"technology", "digital"}
		for _, rule := range keywordRules {
			if containsAny(lower, rule.needles) {
				keywords = rule.keywords
				break
			}
		}
	}

	if len(keywords) > 2 {
		keywords = keywords[:2]
	}
	q := strings.TrimSpace(strings.Join(keywords, " "))
	if q == "" {
		return "technology"
	}
	return q
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
