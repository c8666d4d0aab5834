// Package optimize rewrites post frontmatter and bodies to fix the problems
// the lint report flags: missing or badly sized excerpts, long titles,
// missing tags and images without alt text.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"inkpipe/internal/backup"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/ingest"
	"inkpipe/internal/render"
)

type ChangeKind string

const (
	ExcerptAdded     ChangeKind = "excerpt_added"
	ExcerptOptimized ChangeKind = "excerpt_optimized"
	TitleFixed       ChangeKind = "title_fixed"
	TagsAdded        ChangeKind = "tags_added"
	ImageFixed       ChangeKind = "image_fixed"
)

type Change struct {
	Kind   ChangeKind
	Detail string
}

func (c Change) String() string { return c.Detail }

type Result struct {
	File    string
	Changes []Change
	Err     error
}

func (r Result) Changed() bool { return len(r.Changes) > 0 }

type Stats struct {
	Total     int
	Optimized int
	Skipped   int
	Errors    int
	ByKind    map[ChangeKind]int
}

type Optimizer struct {
	DocsDir string
	Writer  backup.Writer
	DryRun  bool
	Log     *logrus.Entry

	md    *render.MarkdownRenderer
	terms *termTrie
}

func New(docsDir string, w backup.Writer, log *logrus.Entry) *Optimizer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Optimizer{
		DocsDir: docsDir,
		Writer:  w,
		Log:     log.WithField("component", "optimize"),
		md:      render.NewMarkdownRenderer(),
		terms:   newTermTrie(bodyTechTerms),
	}
}

// OptimizeOne fixes a single document. With DryRun set the changes are
// computed and reported but nothing is written.
func (o *Optimizer) OptimizeOne(rel string) Result {
	res := Result{File: rel}
	raw, err := os.ReadFile(filepath.Join(o.DocsDir, filepath.FromSlash(rel)))
	if err != nil {
		res.Err = err
		return res
	}
	meta, body := ingest.Decode(string(raw))

	prose, err := o.md.ProseText([]byte(body))
	if err != nil {
		res.Err = fmt.Errorf("extract text: %w", err)
		return res
	}

	excerpt := strings.TrimSpace(meta.String(content.FieldExcerpt))
	switch n := utf8.RuneCountInString(excerpt); {
	case n == 0:
		if ex := extractExcerpt(prose, excerptTarget); ex != "" {
			meta.SetString(content.FieldExcerpt, ex)
			res.add(ExcerptAdded, "添加 excerpt: %s...", truncateRunes(ex, 50))
		}
	case n < excerptMin:
		if ex := extractExcerpt(prose, excerptTarget); utf8.RuneCountInString(ex) > n {
			meta.SetString(content.FieldExcerpt, ex)
			res.add(ExcerptOptimized, "优化 excerpt 长度: %d -> %d 字符", n, utf8.RuneCountInString(ex))
		}
	case n > excerptMax:
		ex := trimExcerpt(excerpt)
		meta.SetString(content.FieldExcerpt, ex)
		res.add(ExcerptOptimized, "缩短 excerpt: %d -> %d 字符", n, utf8.RuneCountInString(ex))
	}

	if title := meta.String(content.FieldTitle); utf8.RuneCountInString(title) > titleMax {
		short := shortenTitle(title)
		meta.SetString(content.FieldTitle, short)
		res.add(TitleFixed, "缩短标题: %d -> %d 字符", utf8.RuneCountInString(title), utf8.RuneCountInString(short))
	}

	if len(content.NormalizeTags(meta.List(content.FieldTags))) == 0 {
		category := strings.ToLower(strings.TrimSpace(meta.String(content.FieldCategory)))
		if category == "" {
			category = "blog"
		}
		if tags := o.extractTags(prose, meta.String(content.FieldTitle), category); len(tags) > 0 {
			meta.SetList(content.FieldTags, tags)
			res.add(TagsAdded, "添加 tags: %s", strings.Join(tags, ", "))
		}
	}

	newBody, alts := fillImageAlts(body)
	for _, alt := range alts {
		res.add(ImageFixed, "修复图片 alt: %s", alt)
	}

	if !res.Changed() || o.DryRun {
		return res
	}
	if _, err := o.Writer.Replace(rel, []byte(ingest.Render(meta, newBody))); err != nil {
		res.Err = err
	}
	return res
}

// OptimizeAll runs OptimizeOne over rels. Missing files are skipped, other
// failures are counted and the run continues.
func (o *Optimizer) OptimizeAll(ctx context.Context, rels []string) ([]Result, Stats, error) {
	st := Stats{Total: len(rels), ByKind: make(map[ChangeKind]int)}
	var results []Result
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return results, st, err
		}
		res := o.OptimizeOne(rel)
		log := o.Log.WithField("file", rel)
		switch {
		case errors.Is(res.Err, fs.ErrNotExist):
			st.Skipped++
			log.Debug("missing, skipped")
			continue
		case res.Err != nil:
			st.Errors++
			log.WithError(res.Err).Error("optimize failed")
		case res.Changed():
			st.Optimized++
			for _, c := range res.Changes {
				st.ByKind[c.Kind]++
			}
			log.WithFields(logrus.Fields{"changes": len(res.Changes), "dry_run": o.DryRun}).Info("optimized")
		default:
			st.Skipped++
		}
		results = append(results, res)
	}
	return results, st, nil
}

func (r *Result) add(kind ChangeKind, format string, args ...any) {
	r.Changes = append(r.Changes, Change{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}
