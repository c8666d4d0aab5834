package build

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	domainbuild "inkpipe/internal/domain/build"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/domain/site"
	"inkpipe/internal/ingest"
)

const (
	sitemapDateLayout   = "2006-01-02T15:04:05.000Z"
	sitemapGeneratorRev = "sitemap/1"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// BuildSitemap writes sitemap.xml: configured static pages first, then one
// entry per post.
func (b *Builder) BuildSitemap(ctx context.Context) (bool, error) {
	records, err := b.records(ctx)
	if err != nil {
		return false, err
	}
	out := b.Cfg.Build.SitemapPath
	fp := b.sitemapFingerprint(records)
	if b.upToDate(string(site.RouteSitemap), out, fp) {
		b.log().WithField("path", out).Info("sitemap unchanged, skipped")
		return false, nil
	}

	data, err := b.encodeXML(b.sitemap(records))
	if err != nil {
		return false, err
	}
	if err := b.writeArtifact(string(site.RouteSitemap), out, data, fp); err != nil {
		return false, fmt.Errorf("write sitemap: %w", err)
	}
	return true, nil
}

func (b *Builder) sitemap(records []content.PostRecord) urlSet {
	now := b.now()
	rb := b.routes()

	// lastmod 取 frontmatter 日期（UTC），解析失败用当前时间
	dated := make([]content.PostRecord, len(records))
	for i, r := range records {
		t := ingest.ParseTimeIn(r.Date, time.UTC)
		if t.IsZero() {
			t = now
		}
		r.SortTime = t
		dated[i] = r
	}

	var routes []site.Route
	routes = append(routes, rb.BuildStaticRoutes()...)
	routes = append(routes, rb.BuildPostRoutes(dated)...)

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, rt := range routes {
		b.log().Debugf("sitemap %s", rt)
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        rt.URL,
			LastMod:    rt.LastMod.UTC().Format(sitemapDateLayout),
			ChangeFreq: rt.ChangeFreq,
			Priority:   rt.Priority,
		})
	}
	return set
}

func (b *Builder) sitemapFingerprint(records []content.PostRecord) domainbuild.Fingerprint {
	kv := map[string]string{
		"site_url": b.Cfg.Site.SiteURL,
		"minify":   fmt.Sprint(b.Cfg.Build.Minify),
		// changefreq depends on the build day
		"day": b.now().UTC().Format(time.DateOnly),
	}
	for i, sp := range b.Cfg.Build.StaticPages {
		kv[fmt.Sprintf("static.%d", i)] = sp.Path + "|" + sp.ChangeFreq + "|" + sp.Priority
	}
	for i, c := range b.Cfg.Categories {
		kv[fmt.Sprintf("category.%d", i)] = c.Key + "|" + c.Path
	}
	fp := domainbuild.Fingerprint{
		ContentHash:   domainbuild.HashRecords(records),
		ConfigHash:    domainbuild.HashStrings(kv),
		GeneratorHash: sitemapGeneratorRev,
	}
	fp.ComputeHash()
	return fp
}
