package enrich

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"inkpipe/internal/ai"
	"inkpipe/internal/domain/config"
	"inkpipe/internal/domain/content"
)

type ImageResolver interface {
	Resolve(ctx context.Context, query string) string
}

type Options struct {
	DefaultAuthor   string
	DefaultCategory string
	Categories      []CategoryMapping
	ReadingSpeed    int
	ReadTimeUnit    string
	ExcerptLength   int
	PromptBodyChars int
	Now             func() time.Time
}

func OptionsFromConfig(cfg config.Config) Options {
	maps := make([]CategoryMapping, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		maps = append(maps, CategoryMapping{Folder: c.Folder, Key: c.Key})
	}
	return Options{
		DefaultAuthor:   cfg.Site.Author,
		DefaultCategory: cfg.Completion.DefaultCategory,
		Categories:      maps,
		ReadingSpeed:    cfg.Completion.ReadingSpeed,
		ReadTimeUnit:    cfg.Completion.ReadTimeUnit,
		ExcerptLength:   cfg.Completion.ExcerptLength,
		PromptBodyChars: cfg.Completion.PromptBodyChars,
		Now:             time.Now,
	}
}

type Engine struct {
	opts   Options
	gen    ai.Client
	images ImageResolver
	guard  Guard
	log    *logrus.Entry
}

// New builds an engine. gen and images may be nil; the deterministic
// fallbacks are used in their place.
func New(opts Options, gen ai.Client, images ImageResolver, log *logrus.Entry) *Engine {
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = "blog"
	}
	if opts.ReadingSpeed <= 0 {
		opts.ReadingSpeed = 300
	}
	if opts.ReadTimeUnit == "" {
		opts.ReadTimeUnit = "分钟"
	}
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = 100
	}
	if opts.PromptBodyChars <= 0 {
		opts.PromptBodyChars = 2000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		opts:   opts,
		gen:    gen,
		images: images,
		log:    log.WithField("component", "enrich"),
	}
}

// WithGuard screens bodies before they reach the model; suspicious bodies
// get the offline fallbacks.
func (e *Engine) WithGuard(g Guard) *Engine {
	e.guard = g
	return e
}

// Complete fills every missing recognized field. Present values are never
// touched, so running it on its own output changes nothing. partial is not
// modified.
func (e *Engine) Complete(ctx context.Context, partial content.Metadata, body, filename, docPath string) content.Metadata {
	m := partial.Clone()
	log := e.log.WithField("file", docPath)

	if !m.Has(content.FieldSlug) {
		m.SetString(content.FieldSlug, content.DeriveSlug(filename))
	}
	if !m.Has(content.FieldCategory) {
		m.SetString(content.FieldCategory, DeriveCategory(docPath, e.opts.Categories, e.opts.DefaultCategory))
	}
	if !m.Has(content.FieldDate) {
		m.SetString(content.FieldDate, e.opts.Now().Format(time.DateOnly))
	}
	if !m.Has(content.FieldAuthor) && e.opts.DefaultAuthor != "" {
		m.SetString(content.FieldAuthor, e.opts.DefaultAuthor)
	}
	if !m.Has(content.FieldReadTime) {
		mins := ReadMinutes(content.CountWords(body), e.opts.ReadingSpeed)
		m.SetString(content.FieldReadTime, fmt.Sprintf("%d %s", mins, e.opts.ReadTimeUnit))
	}

	// 标量 tags 转成列表，去掉空项
	if _, ok := m.Get(content.FieldTags); ok {
		m.SetList(content.FieldTags, content.NormalizeTags(m.List(content.FieldTags)))
	}

	if !m.Has(content.FieldExcerpt) || !m.Has(content.FieldTags) {
		title := m.String(content.FieldTitle)
		if strings.TrimSpace(title) == "" {
			title = stem(filename)
		}
		g, ok := e.generate(ctx, log, title, body)

		if !m.Has(content.FieldExcerpt) {
			excerpt := g.Excerpt
			if !ok || excerpt == "" {
				excerpt = NaiveExcerpt(body, e.opts.ExcerptLength)
			}
			m.SetString(content.FieldExcerpt, excerpt)
		}
		if !m.Has(content.FieldTags) {
			m.SetList(content.FieldTags, content.NormalizeTags(g.Tags))
		}
		if !m.Has(content.FieldTitle) && g.Title != "" {
			m.SetString(content.FieldTitle, g.Title)
		}
	}

	if !m.Has(content.FieldTitle) {
		m.SetString(content.FieldTitle, stem(filename))
	}

	if !m.Has(content.FieldImage) && e.images != nil {
		q := ImageQuery(m.String(content.FieldTitle), m.List(content.FieldTags))
		if u := e.images.Resolve(ctx, q); u != "" {
			m.SetString(content.FieldImage, u)
		}
	}
	return m
}

func (e *Engine) generate(ctx context.Context, log *logrus.Entry, title, body string) (Generated, bool) {
	if e.gen == nil {
		return Generated{}, false
	}
	if e.guard != nil && e.guard.Suspicious(ctx, truncateRunes(body, e.opts.PromptBodyChars)) {
		log.Warn("body looks like a prompt injection, skipping ai")
		return Generated{}, false
	}

	text, err := e.gen.Generate(ctx, buildPrompt(title, body, e.opts.PromptBodyChars))
	if err != nil {
		log.WithError(err).WithField("provider", e.gen.Provider()).Warn("ai generation failed, using fallback")
		return Generated{}, false
	}
	g, ok := ParseGenerated(text)
	if !ok {
		log.WithField("provider", e.gen.Provider()).Warn("ai response unparsable, using fallback")
	}
	return g, ok
}

// NeedsAI reports whether Complete would call the text generator for m.
func NeedsAI(m content.Metadata) bool {
	return !m.Has(content.FieldExcerpt) || len(content.NormalizeTags(m.List(content.FieldTags))) == 0
}

func stem(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
