package content

import (
	"strings"
	"testing"
)

func TestMetadataSetKeepsFirstPosition(t *testing.T) {
	var m Metadata
	m.SetString("slug", "a")
	m.SetString("title", "T")
	m.SetString("slug", "b")

	keys := m.Keys()
	if strings.Join(keys, ",") != "slug,title" {
		t.Fatalf("keys = %v", keys)
	}
	if got := m.String("slug"); got != "b" {
		t.Errorf("slug = %q, want b", got)
	}
}

func TestMetadataHasTreatsEmptyAsAbsent(t *testing.T) {
	var m Metadata
	m.SetString("excerpt", "   ")
	m.SetList("tags", nil)
	m.SetString("title", "x")

	if m.Has("excerpt") {
		t.Error("blank excerpt should not count as present")
	}
	if m.Has("tags") {
		t.Error("empty tag list should not count as present")
	}
	if !m.Has("title") {
		t.Error("title should be present")
	}
	if m.Has("missing") {
		t.Error("missing key reported present")
	}
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	var m Metadata
	m.SetList("tags", []string{"go", "blog"})

	c := m.Clone()
	c.SetList("tags", []string{"other"})
	c.SetString("slug", "s")

	if got := m.List("tags"); len(got) != 2 || got[0] != "go" {
		t.Fatalf("original mutated: %v", got)
	}
	if m.Has("slug") {
		t.Fatal("original gained key from clone")
	}
}

func TestMetadataEqualIgnoresOrder(t *testing.T) {
	var a, b Metadata
	a.SetString("slug", "x")
	a.SetList("tags", []string{"1", "2"})
	b.SetList("tags", []string{"1", "2"})
	b.SetString("slug", "x")

	if !a.Equal(b) {
		t.Fatal("expected equal")
	}
	b.SetList("tags", []string{"2", "1"})
	if a.Equal(b) {
		t.Fatal("list order must matter")
	}
	var c Metadata
	c.SetString("tags", "1, 2")
	c.SetString("slug", "x")
	if a.Equal(c) {
		t.Fatal("scalar and list must differ")
	}
}

func TestMetadataDelete(t *testing.T) {
	var m Metadata
	m.SetString("a", "1")
	m.SetString("b", "2")
	m.SetString("c", "3")
	m.Delete("b")
	m.Delete("nope")

	if strings.Join(m.Keys(), ",") != "a,c" || m.Len() != 2 {
		t.Fatalf("keys = %v", m.Keys())
	}
}

func TestScalarListItems(t *testing.T) {
	var m Metadata
	m.SetString("tags", "solo")
	if got := m.List("tags"); len(got) != 1 || got[0] != "solo" {
		t.Fatalf("List(scalar) = %v", got)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "", "Go", "AI", "  "})
	if strings.Join(got, "|") != "Go|AI" {
		t.Fatalf("got %v", got)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", " \n\t ", 0},
		{"latin", "hello world", 10},
		{"markup stripped", "# Title\n**bold** [link](x)", 14},
		{"cjk", "你好 世界", 4},
		{"nine hundred", strings.Repeat("字", 900), 900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.in); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool Post.md", "my-cool-post"},
		{"blog/Hello World.md", "hello-world"},
		{`docs\ai\Deep  Dive` + "\t" + `Notes.markdown`, "deep-dive-notes"},
		{"  spaced out .md", "spaced-out"},
		{"中文 标题.md", "中文-标题"},
		{".hidden", ".hidden"},
		{"v1.2 notes.md", "v1.2-notes"},
	}
	for _, tt := range tests {
		if got := DeriveSlug(tt.in); got != tt.want {
			t.Errorf("DeriveSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	// same input, same slug
	if DeriveSlug("My Cool Post.md") != DeriveSlug("My Cool Post.md") {
		t.Error("not deterministic")
	}
}
