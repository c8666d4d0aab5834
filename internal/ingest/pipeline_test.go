package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inkpipe/internal/domain/content"
)

func writeDoc(t *testing.T, root, rel, text string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/b.md", "b")
	writeDoc(t, root, "blog/a.md", "a")
	writeDoc(t, root, "blog/.hidden.md", "h")
	writeDoc(t, root, "blog/notes.txt", "n")
	writeDoc(t, root, "blog/React/hooks.md", "r")
	writeDoc(t, root, "blog/.drafts/x.md", "x")
	writeDoc(t, root, "ai/agent.md", "g")
	writeDoc(t, root, "other/skip.md", "s")

	got, err := Discover(root, []string{"blog", "practice", "ai"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"blog/React/hooks.md", "blog/a.md", "blog/b.md", "ai/agent.md"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}

func TestListRoundTripAndMissing(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "posts-list.json")

	if _, err := ReadList(p); !errors.Is(err, ErrListMissing) {
		t.Fatalf("ReadList(missing) err = %v, want ErrListMissing", err)
	}
	if err := WriteList(p, []string{"blog/a.md", "ai/b.md"}); err != nil {
		t.Fatal(err)
	}
	got, err := ReadList(p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "blog/a.md,ai/b.md" {
		t.Fatalf("ReadList = %v", got)
	}
}

func TestLoadKeepsOrderAndWarns(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/one.md", "1")
	writeDoc(t, root, "blog/three.md", "3")

	docs, warns := Load(root, []string{"blog/one.md", "blog/two.md", "blog/three.md"})
	if len(docs) != 2 || docs[0].Path != "blog/one.md" || docs[1].Path != "blog/three.md" {
		t.Fatalf("docs = %+v", docs)
	}
	if len(warns) != 1 || warns[0].Path != "blog/two.md" {
		t.Fatalf("warns = %+v", warns)
	}
}

func TestBuildIndexSortsAndFallsBack(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local)
	docs := []content.RawDocument{
		{Path: "blog/old.md", Text: "---\ntitle: Old\ndate: 2020-01-01\ncategory: Blog\n---\nold"},
		{Path: "ai/New Post.md", Text: "---\ntitle: New\ndate: 2024-06-01\ntags: [x, y]\nlang: zh\n---\n# Hi\n\nbody text"},
		{Path: "practice/bad.md", Text: "---\ntitle: Bad\ndate: not-a-date\n---\nbad"},
		{Path: "blog/plain.md", Text: "no frontmatter at all"},
	}

	recs, warns := BuildIndex(docs, IndexOptions{Now: now})
	if len(recs) != 4 {
		t.Fatalf("got %d records", len(recs))
	}

	order := []string{recs[0].Slug, recs[1].Slug, recs[2].Slug, recs[3].Slug}
	// bad 和 plain 都按 now 排，稳定排序保留输入顺序
	want := []string{"bad", "plain", "new-post", "old"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}

	newPost := recs[2]
	if newPost.Category != "blog" {
		t.Errorf("category default = %q", newPost.Category)
	}
	if strings.Join(newPost.Tags, ",") != "x,y" {
		t.Errorf("tags = %v", newPost.Tags)
	}
	if newPost.Content != "# Hi\n\nbody text" || newPost.WordCount != 10 {
		t.Errorf("content = %q wordCount = %d", newPost.Content, newPost.WordCount)
	}
	if newPost.Extra["lang"] != "zh" {
		t.Errorf("extra = %v", newPost.Extra)
	}
	if recs[3].Category != "blog" {
		t.Errorf("category lowercased = %q", recs[3].Category)
	}
	if len(warns) != 1 || warns[0].Path != "blog/plain.md" {
		t.Errorf("warns = %+v", warns)
	}
}

func TestBuildIndexDuplicateSlugFirstWins(t *testing.T) {
	docs := []content.RawDocument{
		{Path: "blog/a.md", Text: "---\nslug: same\ntitle: First\ndate: 2020-01-01\n---\n"},
		{Path: "blog/b.md", Text: "---\nslug: same\ntitle: Second\ndate: 2024-01-01\n---\n"},
	}
	recs, warns := BuildIndex(docs, IndexOptions{Now: time.Now()})
	if len(recs) != 1 || recs[0].Title != "First" {
		t.Fatalf("recs = %+v", recs)
	}
	if len(warns) != 1 || warns[0].Path != "blog/b.md" {
		t.Fatalf("warns = %+v", warns)
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-01-02", "2024-01-02T03:04:05Z", "2024-01-02 03:04", "2024-01-02 03:04:05"} {
		if ParseTime(s).IsZero() {
			t.Errorf("ParseTime(%q) failed", s)
		}
	}
	for _, s := range []string{"", "yesterday", "02/01/2024"} {
		if !ParseTime(s).IsZero() {
			t.Errorf("ParseTime(%q) should fail", s)
		}
	}
}
