package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"inkpipe/internal/app"
	"inkpipe/internal/domain/config"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/index"
	"inkpipe/internal/ingest"
	"inkpipe/internal/render"
)

type Builder struct {
	Cfg   config.Config
	Store *index.Store
	Log   *logrus.Entry

	// FromList reads the existing posts list instead of scanning the docs
	// folders and rewriting it.
	FromList bool
	// Force writes artifacts even when their fingerprint is unchanged.
	Force bool
	Now   func() time.Time

	md *render.MarkdownRenderer
}

type Result struct {
	Posts    int
	Warnings []ingest.Warning
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) log() *logrus.Entry {
	if b.Log == nil {
		b.Log = logrus.NewEntry(logrus.StandardLogger()).WithField("component", "build")
	}
	return b.Log
}

func (b *Builder) markdown() *render.MarkdownRenderer {
	if b.md == nil {
		b.md = render.NewMarkdownRenderer()
	}
	return b.md
}

func (b *Builder) routes() *app.RouteBuilder {
	return app.NewRouteBuilder(b.Cfg, b.now())
}

// Run builds the index, then the feed and the sitemap from it.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	res, err := b.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := b.BuildFeed(ctx); err != nil {
		return nil, fmt.Errorf("build feed: %w", err)
	}
	if _, err := b.BuildSitemap(ctx); err != nil {
		return nil, fmt.Errorf("build sitemap: %w", err)
	}
	return res, nil
}

// BuildIndex refreshes the posts list (unless FromList), reads every listed
// document and replaces the stored index.
func (b *Builder) BuildIndex(ctx context.Context) (*Result, error) {
	docsDir := b.Cfg.Content.DocsDir

	var rels []string
	var err error
	if b.FromList {
		rels, err = ingest.ReadList(b.Cfg.Content.PostsList)
		if err != nil {
			return nil, err
		}
	} else {
		folders := make([]string, 0, len(b.Cfg.Categories))
		for _, c := range b.Cfg.Categories {
			folders = append(folders, c.Folder)
		}
		rels, err = ingest.Discover(docsDir, folders)
		if err != nil {
			return nil, fmt.Errorf("discover: %w", err)
		}
		if err := ingest.WriteList(b.Cfg.Content.PostsList, rels); err != nil {
			return nil, fmt.Errorf("write posts list: %w", err)
		}
		b.log().WithField("count", len(rels)).Info("posts list written")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs, warns := ingest.Load(docsDir, rels)
	records, more := ingest.BuildIndex(docs, ingest.IndexOptions{
		Now:             b.now(),
		DefaultCategory: b.Cfg.Completion.DefaultCategory,
	})
	warns = append(warns, more...)
	for _, w := range warns {
		b.log().WithField("file", w.Path).Warn(w.Msg)
	}

	if err := b.Store.Rebuild(records); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	b.log().WithField("posts", len(records)).Info("index rebuilt")
	return &Result{Posts: len(records), Warnings: warns}, nil
}

// records returns the indexed posts, building the index first when it is
// empty.
func (b *Builder) records(ctx context.Context) ([]content.PostRecord, error) {
	all, err := b.Store.All()
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		return all, nil
	}
	if _, err := b.BuildIndex(ctx); err != nil {
		return nil, err
	}
	return b.Store.All()
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
