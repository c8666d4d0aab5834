package build

import (
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	domainbuild "inkpipe/internal/domain/build"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/domain/site"
	"inkpipe/internal/ingest"
)

const (
	rssDateLayout    = "Mon, 02 Jan 2006 15:04:05 GMT"
	feedDescMax      = 200
	feedGeneratorRev = "rss/1"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language"`
	LastBuildDate string      `xml:"lastBuildDate"`
	PubDate       string      `xml:"pubDate"`
	TTL           int         `xml:"ttl"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	Author      string   `xml:"author,omitempty"`
	GUID        rssGUID  `xml:"guid"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// BuildFeed writes the RSS 2.0 feed. It reports false when the feed was
// already current.
func (b *Builder) BuildFeed(ctx context.Context) (bool, error) {
	records, err := b.records(ctx)
	if err != nil {
		return false, err
	}
	out := b.Cfg.Build.FeedPath
	fp := b.feedFingerprint(records)
	if b.upToDate(string(site.RouteRSS), out, fp) {
		b.log().WithField("path", out).Info("feed unchanged, skipped")
		return false, nil
	}

	data, err := b.encodeXML(b.feed(records))
	if err != nil {
		return false, err
	}
	if err := b.writeArtifact(string(site.RouteRSS), out, data, fp); err != nil {
		return false, fmt.Errorf("write feed: %w", err)
	}
	return true, nil
}

func (b *Builder) feed(records []content.PostRecord) rssDoc {
	rb := b.routes()
	now := b.now().UTC().Format(rssDateLayout)
	s := b.Cfg.Site

	ttl := b.Cfg.Build.FeedTTL
	if ttl <= 0 {
		ttl = 60
	}

	posts := rb.BuildPostRoutes(records)
	items := make([]rssItem, 0, len(records))
	for i, r := range records {
		items = append(items, rssItem{
			Title:       r.Title,
			Link:        posts[i].URL,
			Description: b.feedDescription(r),
			PubDate:     b.pubDate(r.Date),
			Author:      r.Author,
			GUID:        rssGUID{IsPermaLink: true, Value: posts[i].URL},
			Categories:  itemCategories(r),
		})
	}
	// 按发布时间排序，最新在前
	sort.SliceStable(items, func(i, j int) bool {
		ti, _ := time.Parse(rssDateLayout, items[i].PubDate)
		tj, _ := time.Parse(rssDateLayout, items[j].PubDate)
		return ti.After(tj)
	})

	return rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         s.Title,
			Link:          rb.Abs(""),
			Description:   s.Description,
			Language:      s.Language,
			LastBuildDate: now,
			PubDate:       now,
			TTL:           ttl,
			AtomLink: rssAtomLink{
				Href: rb.Abs(b.feedRoute()),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
}

// feedRoute is where the feed is served: its path under the public dir.
func (b *Builder) feedRoute() string {
	rel, err := filepath.Rel(b.Cfg.Build.PublicDir, b.Cfg.Build.FeedPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "/rss.xml"
	}
	return "/" + filepath.ToSlash(rel)
}

func (b *Builder) pubDate(date string) string {
	t := ingest.ParseTimeIn(date, time.UTC)
	if t.IsZero() {
		t = b.now()
	}
	return t.UTC().Format(rssDateLayout)
}

// feedDescription prefers the excerpt, then the body, then the title, each
// reduced to plain text.
func (b *Builder) feedDescription(r content.PostRecord) string {
	for _, src := range []string{r.Excerpt, r.Content} {
		if strings.TrimSpace(src) == "" {
			continue
		}
		txt, err := b.markdown().PlainText([]byte(src))
		if err != nil {
			b.log().WithError(err).WithField("slug", r.Slug).Warn("plain text extraction failed")
			continue
		}
		if txt != "" {
			return truncateText(txt, feedDescMax)
		}
	}
	return r.Title
}

// truncateText cuts s to max runes, backing up to a space when one is close
// to the end, and marks the cut with "...".
func truncateText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)[:max]
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i >= 0 && utf8.RuneCountInString(cut[:i]) > max*4/5 {
		cut = cut[:i]
	}
	return cut + "..."
}

func itemCategories(r content.PostRecord) []string {
	var out []string
	if c := strings.TrimSpace(r.Category); c != "" {
		out = append(out, c)
	}
	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (b *Builder) feedFingerprint(records []content.PostRecord) domainbuild.Fingerprint {
	s := b.Cfg.Site
	fp := domainbuild.Fingerprint{
		ContentHash: domainbuild.HashRecords(records),
		ConfigHash: domainbuild.HashStrings(map[string]string{
			"title":       s.Title,
			"description": s.Description,
			"site_url":    s.SiteURL,
			"language":    s.Language,
			"ttl":         fmt.Sprint(b.Cfg.Build.FeedTTL),
			"minify":      fmt.Sprint(b.Cfg.Build.Minify),
		}),
		GeneratorHash: feedGeneratorRev,
	}
	fp.ComputeHash()
	return fp
}
