// Package lint reports soft problems in post frontmatter: overlong titles,
// missing excerpts, images without alt text and the like. Nothing here
// changes a document.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"inkpipe/internal/domain/content"
	"inkpipe/internal/ingest"
	"inkpipe/internal/render"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

const (
	maxTitle   = 60
	minExcerpt = 50
	maxExcerpt = 160
)

type Issue struct {
	Type       Severity `json:"type"`
	File       string   `json:"file"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

type Report struct {
	RunID               string    `json:"runId"`
	Timestamp           time.Time `json:"timestamp"`
	TotalPosts          int       `json:"totalPosts"`
	PostsWithImages     int       `json:"postsWithImages"`
	PostsWithoutAlt     int       `json:"postsWithoutAlt"`
	PostsWithoutExcerpt int       `json:"postsWithoutExcerpt"`
	PostsWithoutTags    int       `json:"postsWithoutTags"`
	Errors              int       `json:"errors"`
	Warnings            int       `json:"warnings"`
	Infos               int       `json:"infos"`
	Issues              []Issue   `json:"issues"`
	Recommendations     []string  `json:"recommendations"`
}

type Linter struct {
	DocsDir string
	Log     *logrus.Entry
	Now     func() time.Time

	md *render.MarkdownRenderer
}

func New(docsDir string, log *logrus.Entry) *Linter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Linter{
		DocsDir: docsDir,
		Log:     log.WithField("component", "lint"),
		Now:     time.Now,
		md:      render.NewMarkdownRenderer(),
	}
}

// Run checks every listed document. Unreadable documents are reported as
// error issues; Run itself only fails on cancellation.
func (l *Linter) Run(ctx context.Context, rels []string) (*Report, error) {
	rep := &Report{
		RunID:      uuid.NewString(),
		Timestamp:  l.Now().UTC(),
		TotalPosts: len(rels),
		Issues:     []Issue{},
	}
	seen := make(map[string]string, len(rels))

	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(filepath.Join(l.DocsDir, filepath.FromSlash(rel)))
		if err != nil {
			l.Log.WithError(err).WithField("file", rel).Error("read failed")
			rep.add(Issue{Type: SeverityError, File: rel, Message: fmt.Sprintf("Error processing file: %v", err)})
			continue
		}
		l.check(rep, rel, string(raw), seen)
	}

	rep.recommend()
	l.Log.WithFields(logrus.Fields{
		"run":      rep.RunID,
		"posts":    rep.TotalPosts,
		"errors":   rep.Errors,
		"warnings": rep.Warnings,
	}).Info("lint finished")
	return rep, nil
}

func (l *Linter) check(rep *Report, rel, text string, seen map[string]string) {
	meta, body := ingest.Decode(text)

	if meta.Has(content.FieldImage) {
		rep.PostsWithImages++
	}

	excerpt := strings.TrimSpace(meta.String(content.FieldExcerpt))
	if excerpt == "" {
		rep.PostsWithoutExcerpt++
		rep.add(Issue{Type: SeverityWarning, File: rel, Message: "Missing excerpt/description", Suggestion: "Add excerpt in frontmatter for better SEO"})
	} else if n := utf8.RuneCountInString(excerpt); n < minExcerpt {
		rep.add(Issue{Type: SeverityInfo, File: rel, Message: fmt.Sprintf("Excerpt too short (%d chars, recommended: 120-160)", n), Suggestion: "Expand excerpt for better search result snippets"})
	} else if n > maxExcerpt {
		rep.add(Issue{Type: SeverityWarning, File: rel, Message: fmt.Sprintf("Excerpt too long (%d chars, recommended: 120-160)", n), Suggestion: "Trim excerpt to optimal length"})
	}

	if len(content.NormalizeTags(meta.List(content.FieldTags))) == 0 {
		rep.PostsWithoutTags++
		rep.add(Issue{Type: SeverityWarning, File: rel, Message: "Missing tags", Suggestion: "Add tags in frontmatter for better categorization"})
	}

	if title := meta.String(content.FieldTitle); utf8.RuneCountInString(title) > maxTitle {
		rep.add(Issue{Type: SeverityWarning, File: rel, Message: fmt.Sprintf("Title too long (%d chars, recommended: <60)", utf8.RuneCountInString(title)), Suggestion: "Keep titles concise for better SEO"})
	}

	if d := meta.String(content.FieldDate); d != "" && ingest.ParseTime(d).IsZero() {
		rep.add(Issue{Type: SeverityWarning, File: rel, Message: fmt.Sprintf("Unparsable date %q, the post sorts as newest", d), Suggestion: "Use YYYY-MM-DD"})
	}

	s := strings.TrimSpace(meta.String(content.FieldSlug))
	if s == "" {
		s = content.DeriveSlug(path.Base(rel))
	}
	if !slug.IsSlug(s) {
		rep.add(Issue{Type: SeverityInfo, File: rel, Message: fmt.Sprintf("Slug %q is not URL-safe and will be percent-encoded", s), Suggestion: "Use lowercase latin letters, digits and hyphens"})
	}
	if first, dup := seen[s]; dup {
		rep.add(Issue{Type: SeverityError, File: rel, Message: fmt.Sprintf("Duplicate slug %q (already used by %s), post is skipped", s, first)})
	} else {
		seen[s] = rel
	}

	if ingest.HasBlock(text) && !strictYAML(text) {
		rep.add(Issue{Type: SeverityInfo, File: rel, Message: "Frontmatter is not valid YAML", Suggestion: "Quote values containing ':' so other tools can read the header"})
	}

	res, err := l.md.Render([]byte(body))
	if err != nil {
		l.Log.WithError(err).WithField("file", rel).Warn("markdown render failed")
		return
	}
	missing := 0
	for _, img := range res.Images {
		if img.Alt == "" {
			missing++
		}
	}
	if missing > 0 {
		rep.PostsWithoutAlt++
		rep.add(Issue{Type: SeverityWarning, File: rel, Message: fmt.Sprintf("Found %d image(s) without alt text", missing), Suggestion: "Add descriptive alt text to all images for accessibility and SEO"})
	}
}

func strictYAML(text string) bool {
	var v map[string]any
	_, err := frontmatter.Parse(strings.NewReader(text), &v)
	return err == nil
}

func (r *Report) add(is Issue) {
	switch is.Type {
	case SeverityError:
		r.Errors++
	case SeverityWarning:
		r.Warnings++
	default:
		r.Infos++
	}
	r.Issues = append(r.Issues, is)
}

func (r *Report) recommend() {
	r.Recommendations = []string{}
	if r.PostsWithoutExcerpt > 0 {
		r.Recommendations = append(r.Recommendations, fmt.Sprintf("Add excerpts to %d posts for better SEO", r.PostsWithoutExcerpt))
	}
	if r.PostsWithoutTags > 0 {
		r.Recommendations = append(r.Recommendations, fmt.Sprintf("Add tags to %d posts for better categorization", r.PostsWithoutTags))
	}
	if r.PostsWithoutAlt > 0 {
		r.Recommendations = append(r.Recommendations, fmt.Sprintf("Add alt text to images in %d posts for accessibility and SEO", r.PostsWithoutAlt))
	}
}

// Write stores the report as indented JSON.
func Write(path string, rep *Report) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
