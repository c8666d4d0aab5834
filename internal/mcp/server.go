// Package mcp exposes the post index to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"inkpipe/internal/domain/content"
	"inkpipe/internal/index"
)

// Version is set by main before Run.
var Version = "dev"

type Server struct {
	store *index.Store
}

func New(store *index.Store) *Server {
	return &Server{store: store}
}

// Run serves the tools on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "inkpipe",
		Version: Version,
	}, nil)
	s.register(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_posts",
		Description: "List blog posts, newest first.\n\nArgs:\n  tag: only posts with this tag (case-insensitive)\n  category: only posts in this category\n  page, size: paging (default 1 and 10)\n\nReturns post metadata without bodies.",
	}, s.handleListPosts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_post",
		Description: "Get one post by slug, including its markdown body. Case and URL-encoding differences in the slug are tolerated.",
	}, s.handleGetPost)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tag_stats",
		Description: "Count posts per tag, most used first.",
	}, s.handleTagStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "category_stats",
		Description: "Count posts per category, most used first.",
	}, s.handleCategoryStats)
}

type listInput struct {
	Tag      string `json:"tag,omitempty" jsonschema:"Filter by tag"`
	Category string `json:"category,omitempty" jsonschema:"Filter by category key"`
	Page     int    `json:"page,omitempty" jsonschema:"Page number (default 1)"`
	Size     int    `json:"size,omitempty" jsonschema:"Posts per page (default 10, max 100)"`
}

type getInput struct {
	Slug string `json:"slug" jsonschema:"Post slug"`
}

type emptyInput struct{}

type postSummary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Date     string   `json:"date"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	ReadTime string   `json:"readTime"`
}

func summarize(rs []content.PostRecord) []postSummary {
	out := make([]postSummary, 0, len(rs))
	for _, r := range rs {
		out = append(out, postSummary{
			Slug:     r.Slug,
			Title:    r.Title,
			Excerpt:  r.Excerpt,
			Date:     r.Date,
			Category: r.Category,
			Tags:     r.Tags,
			ReadTime: r.ReadTime,
		})
	}
	return out
}

func (s *Server) handleListPosts(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	opt := index.ListOptions{Page: input.Page, Size: input.Size}

	var (
		posts []content.PostRecord
		err   error
	)
	switch {
	case input.Tag != "":
		posts, err = s.store.ListByTag(input.Tag, opt)
	case input.Category != "":
		posts, err = s.store.ListByCategory(input.Category, opt)
	default:
		posts, err = s.store.List(opt)
	}
	if err != nil {
		return textResult(fmt.Sprintf("List error: %v", err)), nil, nil
	}
	if len(posts) == 0 {
		return textResult("No posts found."), nil, nil
	}
	return jsonResult(summarize(posts)), nil, nil
}

func (s *Server) handleGetPost(ctx context.Context, req *mcp.CallToolRequest, input getInput) (*mcp.CallToolResult, any, error) {
	post, err := s.store.Lookup(input.Slug)
	if errors.Is(err, index.ErrNotFound) {
		return textResult(fmt.Sprintf("Post %q not found.", input.Slug)), nil, nil
	}
	if err != nil {
		return textResult(fmt.Sprintf("Lookup error: %v", err)), nil, nil
	}
	return jsonResult(post), nil, nil
}

func (s *Server) handleTagStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	tags, err := s.store.TagStats()
	if err != nil {
		return textResult(fmt.Sprintf("Stats error: %v", err)), nil, nil
	}
	return jsonResult(tags), nil, nil
}

func (s *Server) handleCategoryStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	cats, err := s.store.CategoryStats()
	if err != nil {
		return textResult(fmt.Sprintf("Stats error: %v", err)), nil, nil
	}
	return jsonResult(cats), nil, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult(string(data))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
