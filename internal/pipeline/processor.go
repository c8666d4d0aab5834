// Package pipeline rewrites markdown documents in place with completed
// frontmatter.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"inkpipe/internal/backup"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/enrich"
	"inkpipe/internal/ingest"
)

type Completer interface {
	Complete(ctx context.Context, partial content.Metadata, body, filename, docPath string) content.Metadata
}

type Processor struct {
	DocsDir     string
	Engine      Completer
	Writer      backup.Writer
	Delay       time.Duration
	OnlyMissing bool
	Log         *logrus.Entry

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

type Outcome struct {
	Changed bool
	Skipped bool
	UsedAI  bool
}

type Stats struct {
	Total    int
	Changed  int
	Skipped  int
	Failed   int
	Failures []Failure
}

type Failure struct {
	Path string
	Err  error
}

func (f Failure) String() string { return fmt.Sprintf("%s: %v", f.Path, f.Err) }

func (p *Processor) log() *logrus.Entry {
	if p.Log == nil {
		p.Log = logrus.NewEntry(logrus.StandardLogger()).WithField("component", "pipeline")
	}
	return p.Log
}

// ProcessOne completes the frontmatter of docs/rel and writes it back.
func (p *Processor) ProcessOne(ctx context.Context, rel string) (Outcome, error) {
	full := filepath.Join(p.DocsDir, filepath.FromSlash(rel))
	b, err := os.ReadFile(full)
	if err != nil {
		return Outcome{}, fmt.Errorf("read %s: %w", rel, err)
	}
	text := string(b)
	if p.OnlyMissing && ingest.HasBlock(text) {
		return Outcome{Skipped: true}, nil
	}

	meta, body := ingest.Decode(text)
	out := Outcome{UsedAI: enrich.NeedsAI(meta)}
	done := p.Engine.Complete(ctx, meta, body, path.Base(rel), rel)

	changed, err := p.Writer.Replace(rel, []byte(ingest.Render(done, body)))
	if err != nil {
		return out, err
	}
	out.Changed = changed
	return out, nil
}

// ProcessAll handles rels one at a time. A failing document is recorded and
// the batch continues; only cancellation stops it early.
func (p *Processor) ProcessAll(ctx context.Context, rels []string) (Stats, error) {
	log := p.log()
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	st := Stats{Total: len(rels)}
	pendingDelay := false
	for i, rel := range rels {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if pendingDelay && p.Delay > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return st, err
			}
		}
		pendingDelay = false

		out, err := p.ProcessOne(ctx, rel)
		switch {
		case err != nil:
			st.Failed++
			st.Failures = append(st.Failures, Failure{Path: rel, Err: err})
			log.WithError(err).WithField("file", rel).Error("process failed")
		case out.Skipped:
			st.Skipped++
			log.WithField("file", rel).Debug("frontmatter present, skipped")
		default:
			if out.Changed {
				st.Changed++
			}
			log.WithFields(logrus.Fields{"file": rel, "n": i + 1, "total": len(rels), "changed": out.Changed}).Info("processed")
		}
		// 调过 AI 的文档之后才需要限速
		pendingDelay = out.UsedAI
	}
	return st, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
