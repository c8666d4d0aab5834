package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"inkpipe/internal/domain/content"
	"inkpipe/internal/index"
)

func setup(t *testing.T) *Server {
	t.Helper()
	st, err := index.Open(index.OpenOptions{Path: filepath.Join(t.TempDir(), "index.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	err = st.Rebuild([]content.PostRecord{
		{Slug: "go-tips", Title: "Go Tips", Category: "blog", Tags: []string{"Go"}, Content: "# tips", SortTime: day(2)},
		{Slug: "rag", Title: "RAG", Category: "ai", Tags: []string{"LLM", "go"}, Content: "rag body", SortTime: day(1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return New(st)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func TestHandleListPosts(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	res, _, err := s.handleListPosts(ctx, nil, listInput{})
	if err != nil {
		t.Fatal(err)
	}
	var posts []postSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 || posts[0].Slug != "go-tips" {
		t.Fatalf("posts = %+v", posts)
	}

	res, _, _ = s.handleListPosts(ctx, nil, listInput{Category: "ai"})
	posts = nil
	_ = json.Unmarshal([]byte(resultText(t, res)), &posts)
	if len(posts) != 1 || posts[0].Slug != "rag" {
		t.Errorf("category = %+v", posts)
	}

	res, _, _ = s.handleListPosts(ctx, nil, listInput{Tag: "rust"})
	if got := resultText(t, res); got != "No posts found." {
		t.Errorf("empty = %q", got)
	}
}

func TestHandleGetPost(t *testing.T) {
	s := setup(t)
	res, _, err := s.handleGetPost(context.Background(), nil, getInput{Slug: "GO-TIPS"})
	if err != nil {
		t.Fatal(err)
	}
	var post content.PostRecord
	if err := json.Unmarshal([]byte(resultText(t, res)), &post); err != nil {
		t.Fatal(err)
	}
	if post.Content != "# tips" {
		t.Errorf("post = %+v", post)
	}

	res, _, _ = s.handleGetPost(context.Background(), nil, getInput{Slug: "nope"})
	if got := resultText(t, res); !strings.Contains(got, "not found") {
		t.Errorf("missing = %q", got)
	}
}

func TestHandleStats(t *testing.T) {
	s := setup(t)
	res, _, _ := s.handleTagStats(context.Background(), nil, emptyInput{})
	var tags []index.TermCount
	if err := json.Unmarshal([]byte(resultText(t, res)), &tags); err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0].Count != 2 {
		t.Errorf("tags = %+v", tags)
	}

	res, _, _ = s.handleCategoryStats(context.Background(), nil, emptyInput{})
	var cats []index.TermCount
	_ = json.Unmarshal([]byte(resultText(t, res)), &cats)
	if len(cats) != 2 {
		t.Errorf("cats = %+v", cats)
	}
}
