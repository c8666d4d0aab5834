package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"inkpipe/internal/domain/content"
)

type Warning struct {
	Path string
	Msg  string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Msg
}

type loadResult struct {
	pos  int
	doc  content.RawDocument
	warn *Warning
}

// Load reads every listed file relative to docsDir. Unreadable files become
// warnings; the returned documents keep the order of rels.
func Load(docsDir string, rels []string) ([]content.RawDocument, []Warning) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(rels) {
		workers = len(rels)
	}
	jobs := make(chan int)
	results := make(chan loadResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				rel := rels[pos]
				raw, err := os.ReadFile(filepath.Join(docsDir, filepath.FromSlash(rel)))
				if err != nil {
					results <- loadResult{pos: pos, warn: &Warning{Path: rel, Msg: "read failed: " + err.Error()}}
					continue
				}
				results <- loadResult{pos: pos, doc: content.RawDocument{Path: rel, Text: string(raw)}}
			}
		}()
	}

	go func() {
		for i := range rels {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	slots := make([]*loadResult, len(rels))
	for r := range results {
		slots[r.pos] = &r
	}

	var docs []content.RawDocument
	var warns []Warning
	for _, r := range slots {
		if r == nil {
			continue
		}
		if r.warn != nil {
			warns = append(warns, *r.warn)
			continue
		}
		docs = append(docs, r.doc)
	}
	return docs, warns
}

type IndexOptions struct {
	Now             time.Time
	DefaultCategory string
}

// BuildIndex decodes documents into post records sorted by date, newest
// first. Records whose date does not parse sort as Now. When two documents
// share a slug the first one wins.
func BuildIndex(docs []content.RawDocument, opt IndexOptions) ([]content.PostRecord, []Warning) {
	if opt.Now.IsZero() {
		opt.Now = time.Now()
	}
	if opt.DefaultCategory == "" {
		opt.DefaultCategory = "blog"
	}

	var warns []Warning
	seen := make(map[string]struct{}, len(docs))
	out := make([]content.PostRecord, 0, len(docs))

	for _, doc := range docs {
		rec := Assemble(doc, opt)
		if strings.TrimSpace(rec.Title) == "" {
			warns = append(warns, Warning{Path: doc.Path, Msg: "title is empty"})
		}
		if _, dup := seen[rec.Slug]; dup {
			warns = append(warns, Warning{Path: doc.Path, Msg: "slug 冲突（重复），已跳过: " + rec.Slug})
			continue
		}
		seen[rec.Slug] = struct{}{}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortTime.After(out[j].SortTime)
	})
	return out, warns
}

// Assemble builds a single record without any cross-document checks.
func Assemble(doc content.RawDocument, opt IndexOptions) content.PostRecord {
	meta, body := Decode(doc.Text)

	slug := strings.TrimSpace(meta.String(content.FieldSlug))
	if slug == "" {
		slug = content.DeriveSlug(path.Base(doc.Path))
	}
	category := strings.ToLower(strings.TrimSpace(meta.String(content.FieldCategory)))
	if category == "" {
		category = opt.DefaultCategory
	}

	rec := content.PostRecord{
		Slug:        slug,
		Title:       meta.String(content.FieldTitle),
		Excerpt:     meta.String(content.FieldExcerpt),
		Date:        meta.String(content.FieldDate),
		Author:      meta.String(content.FieldAuthor),
		ReadTime:    meta.String(content.FieldReadTime),
		Tags:        content.NormalizeTags(meta.List(content.FieldTags)),
		Category:    category,
		Subcategory: meta.String(content.FieldSubcategory),
		Image:       meta.String(content.FieldImage),
		Content:     body,
		WordCount:   content.CountWords(body),
		Path:        doc.Path,
		ContentHash: HashText(doc.Text),
	}

	rec.SortTime = ParseTime(rec.Date)
	if rec.SortTime.IsZero() {
		rec.SortTime = opt.Now
	}

	for _, k := range meta.Keys() {
		if content.IsStandardField(k) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[k] = meta.String(k)
	}
	return rec
}

func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ParseTime accepts the date shapes found in frontmatter. Zero means
// unparsable.
func ParseTime(s string) time.Time {
	return ParseTimeIn(s, time.Local)
}

// ParseTimeIn is ParseTime with an explicit zone for layouts without one.
func ParseTimeIn(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
		"2006/01/02",
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
