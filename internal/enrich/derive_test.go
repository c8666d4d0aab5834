package enrich

import (
	"testing"
)

func TestDeriveCategory(t *testing.T) {
	maps := []CategoryMapping{
		{Folder: "blog", Key: "blog"},
		{Folder: "practice", Key: "practice"},
		{Folder: "ai", Key: "ai"},
	}
	tests := []struct {
		path string
		want string
	}{
		{"blog/post.md", "blog"},
		{"practice/React/hooks.md", "practice"},
		{"/abs/docs/ai/x.md", "ai"},
		{"notes/ai-thoughts.md", "fallback"},
		{"post.md", "fallback"},
	}
	for _, tt := range tests {
		if got := DeriveCategory(tt.path, maps, "fallback"); got != tt.want {
			t.Errorf("DeriveCategory(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadMinutes(t *testing.T) {
	tests := []struct{ wc, want int }{
		{0, 1},
		{1, 1},
		{300, 1},
		{301, 2},
		{900, 3},
	}
	for _, tt := range tests {
		if got := ReadMinutes(tt.wc, 300); got != tt.want {
			t.Errorf("ReadMinutes(%d) = %d, want %d", tt.wc, got, tt.want)
		}
	}
}

func TestNaiveExcerpt(t *testing.T) {
	if got := NaiveExcerpt("a\nb\r\nc", 100); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if got := NaiveExcerpt("一二三四五", 3); got != "一二三" {
		t.Errorf("got %q", got)
	}
}

func TestImageQuery(t *testing.T) {
	tests := []struct {
		name  string
		title string
		tags  []string
		want  string
	}{
		{"latin tags first", "随便", []string{"React", "前端", "Next.js", "web dev"}, "React web dev"},
		{"title words", "深入理解 Go 的 context 包", nil, "Go context"},
		{"tags then title", "Rust 所有权", []string{"系统"}, "Rust"},
		{"ai keyword", "聊聊_ai_助手", nil, "artificial intelligence technology"},
		{"frontend keyword", "前端工程化", []string{"工程"}, "web development coding"},
		{"algorithm keyword", "算法题", nil, "algorithm programming"},
		{"css keyword", "1px_css", nil, "web design ui"},
		{"latin word wins over keywords", "我的ai之旅", nil, "ai"},
		{"default", "随笔", nil, "technology digital"},
		{"capped at two", "Go", []string{"a1", "b2"}, "a1 b2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageQuery(tt.title, tt.tags); got != tt.want {
				t.Errorf("ImageQuery(%q, %v) = %q, want %q", tt.title, tt.tags, got, tt.want)
			}
		})
	}
}

func TestParseGenerated(t *testing.T) {
	g, ok := ParseGenerated("Here you go:\n{\"title\":\"T\",\"excerpt\":\"E\",\"tags\":[\"a\",\"b\"]}\nthanks")
	if !ok || g.Title != "T" || g.Excerpt != "E" || len(g.Tags) != 2 {
		t.Fatalf("stage 1: %+v %v", g, ok)
	}

	g, ok = ParseGenerated(`{"excerpt": "x", "tags": "go, web"}`)
	if !ok || len(g.Tags) != 2 || g.Tags[1] != "web" {
		t.Fatalf("string tags: %+v %v", g, ok)
	}

	g, ok = ParseGenerated("{broken json\ntitle: 新标题\nexcerpt：一段摘要\n}")
	if !ok || g.Title != "新标题" || g.Excerpt != "一段摘要" {
		t.Fatalf("stage 2: %+v %v", g, ok)
	}

	if _, ok := ParseGenerated("no structure at all"); ok {
		t.Fatal("expected nothing recovered")
	}
}
