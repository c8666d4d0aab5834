package ingest

import (
	"strings"
	"testing"

	"inkpipe/internal/domain/content"
)

func TestDecodeScenario(t *testing.T) {
	meta, body := Decode("---\nslug: hello\ntags: [a, b, c]\n---\nBody text")

	if body != "Body text" {
		t.Fatalf("body = %q", body)
	}
	if got := meta.String("slug"); got != "hello" {
		t.Errorf("slug = %q", got)
	}
	tags := meta.List("tags")
	if strings.Join(tags, "|") != "a|b|c" {
		t.Errorf("tags = %v", tags)
	}
	if meta.Len() != 2 {
		t.Errorf("len = %d, want 2", meta.Len())
	}
}

func TestDecodeWithoutBlock(t *testing.T) {
	tests := []string{
		"Just plain text",
		"line one\nline two\n",
		"",
		"intro\n---\nslug: x\n---\nbody",
	}
	for _, in := range tests {
		meta, body := Decode(in)
		if meta.Len() != 0 {
			t.Errorf("Decode(%q) metadata = %v, want empty", in, meta.Keys())
		}
		if body != in {
			t.Errorf("Decode(%q) body = %q, want original text", in, body)
		}
	}
}

func TestDecodeUnclosedBlock(t *testing.T) {
	in := "---\nslug: hello\ntitle: never closed\nsome text"
	meta, body := Decode(in)
	if meta.Len() != 0 {
		t.Fatalf("metadata = %v, want empty", meta.Keys())
	}
	if body != in {
		t.Fatalf("body = %q", body)
	}
}

func TestDecodeLineRules(t *testing.T) {
	in := strings.Join([]string{
		"",
		"  ",
		"---",
		"title: A: B",
		"no colon here",
		": orphan value",
		"empty:",
		"tags: []",
		"url: https://example.com/x",
		"slug: first",
		"slug: second",
		"---",
		"",
		"para",
		"---",
		"after rule",
		"",
	}, "\r\n")

	meta, body := Decode(in)

	if got := meta.String("title"); got != "A: B" {
		t.Errorf("title = %q", got)
	}
	if got := meta.String("url"); got != "https://example.com/x" {
		t.Errorf("url = %q", got)
	}
	if v, ok := meta.Get("empty"); !ok || v.Str() != "" {
		t.Errorf("empty = %#v, %v", v, ok)
	}
	if v, ok := meta.Get("tags"); !ok || !v.IsList() || len(v.Items()) != 0 {
		t.Errorf("tags = %#v", v)
	}
	if got := meta.String("slug"); got != "second" {
		t.Errorf("slug = %q, want last value", got)
	}
	want := []string{"title", "empty", "tags", "url", "slug"}
	if strings.Join(meta.Keys(), ",") != strings.Join(want, ",") {
		t.Errorf("keys = %v, want %v", meta.Keys(), want)
	}
	if body != "para\n---\nafter rule" {
		t.Errorf("body = %q", body)
	}
}

func TestDecodeSplitsEveryComma(t *testing.T) {
	meta, _ := Decode("---\ntags: [a, \"b, c\", d]\n---\n")
	got := meta.List("tags")
	want := []string{"a", `"b`, `c"`, "d"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("tags = %q, want %q", got, want)
	}
}

func TestEncodeCanonicalOrder(t *testing.T) {
	var m content.Metadata
	m.SetString("custom", "x")
	m.SetString("image", "https://img")
	m.SetList("tags", []string{"go", "web dev"})
	m.SetString("title", "Hello")
	m.SetString("slug", "hello")
	m.SetString("another", "y")

	got := Encode(m)
	want := strings.Join([]string{
		"slug: hello",
		"title: Hello",
		`tags: [go, "web dev"]`,
		"image: https://img",
		"custom: x",
		"another: y",
	}, "\n")
	if got != want {
		t.Fatalf("Encode =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderShape(t *testing.T) {
	var m content.Metadata
	m.SetString("slug", "s")
	got := Render(m, "\n\nbody\n\n")
	want := "---\nslug: s\n---\n\nbody\n"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		meta func() content.Metadata
		body string
	}{
		{
			name: "full",
			meta: func() content.Metadata {
				var m content.Metadata
				m.SetString("slug", "my-post")
				m.SetString("title", "我的文章 标题")
				m.SetString("excerpt", "一段摘要 with words")
				m.SetString("date", "2024-05-01")
				m.SetString("author", "小菜权")
				m.SetString("readTime", "3 分钟")
				m.SetList("tags", []string{"Go", "web dev", "AI"})
				m.SetString("category", "blog")
				m.SetString("subcategory", "Frontend/React")
				m.SetString("image", "https://images.example.com/x.jpg?w=1200&q=80")
				m.SetString("draft", "true")
				return m
			},
			body: "# Heading\n\nParagraph.",
		},
		{
			name: "empty metadata",
			meta: func() content.Metadata { return content.NewMetadata() },
			body: "just body",
		},
		{
			name: "empty list",
			meta: func() content.Metadata {
				var m content.Metadata
				m.SetList("tags", []string{})
				return m
			},
			body: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.meta()
			gotMeta, gotBody := Decode(Render(m, tc.body))
			if !gotMeta.Equal(m) {
				t.Errorf("metadata mismatch:\n got %v\nwant %v", Encode(gotMeta), Encode(m))
			}
			if gotBody != strings.TrimSpace(tc.body) {
				t.Errorf("body = %q, want %q", gotBody, tc.body)
			}
		})
	}
}

func TestHasBlock(t *testing.T) {
	if !HasBlock("\n\n---\nslug: x\n---\n") {
		t.Error("expected block")
	}
	if HasBlock("# title\n---\n") {
		t.Error("unexpected block")
	}
}

func TestRoundTripQuotedListItems(t *testing.T) {
	var m content.Metadata
	m.SetList("tags", []string{`"x"`, "a b", `"`, `y"`, " pad "})

	got, _ := Decode(Render(m, "body"))
	if !got.Equal(m) {
		t.Fatalf("tags = %q, want %q", got.List("tags"), m.List("tags"))
	}
}
