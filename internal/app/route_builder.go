package app

import (
	"net/url"
	"strings"
	"time"

	"inkpipe/internal/domain/config"
	"inkpipe/internal/domain/content"
	"inkpipe/internal/domain/site"
)

const postPriority = "0.8"

type RouteBuilder struct {
	SiteURL     string
	Categories  []config.Category
	StaticPages []config.StaticPage
	Now         time.Time
}

func NewRouteBuilder(cfg config.Config, now time.Time) *RouteBuilder {
	return &RouteBuilder{
		SiteURL:     cfg.Site.SiteURL,
		Categories:  cfg.Categories,
		StaticPages: cfg.Build.StaticPages,
		Now:         now,
	}
}

// Abs joins a site path onto the configured site url.
func (rb *RouteBuilder) Abs(p string) string {
	base := strings.TrimRight(rb.SiteURL, "/")
	if p == "" {
		return base
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

func PostPath(slug string) string {
	return "/post/" + url.PathEscape(slug)
}

func (rb *RouteBuilder) BuildPostRoutes(records []content.PostRecord) []site.Route {
	routes := make([]site.Route, 0, len(records))
	for _, r := range records {
		p := PostPath(r.Slug)
		routes = append(routes, site.Route{
			Kind:       site.RoutePost,
			Slug:       r.Slug,
			Key:        r.Category,
			Path:       p,
			URL:        rb.Abs(p),
			LastMod:    r.SortTime,
			ChangeFreq: ChangeFreq(rb.Now, r.SortTime),
			Priority:   postPriority,
		})
	}
	return routes
}

// BuildStaticRoutes returns the configured static pages. Category index pages
// are part of that list; a category missing from it is added with weekly
// change frequency.
func (rb *RouteBuilder) BuildStaticRoutes() []site.Route {
	var routes []site.Route
	seen := make(map[string]bool)
	for _, sp := range rb.StaticPages {
		kind := site.RouteStatic
		key := ""
		if sp.Path == "" || sp.Path == "/" {
			kind = site.RouteIndex
		}
		for _, c := range rb.Categories {
			if samePath(sp.Path, c.Path) {
				kind, key = site.RouteCategory, c.Key
			}
		}
		seen[normPath(sp.Path)] = true
		routes = append(routes, site.Route{
			Kind:       kind,
			Key:        key,
			Path:       sp.Path,
			URL:        rb.Abs(sp.Path),
			LastMod:    rb.Now,
			ChangeFreq: sp.ChangeFreq,
			Priority:   sp.Priority,
		})
	}
	for _, c := range rb.Categories {
		if c.Path == "" || seen[normPath(c.Path)] {
			continue
		}
		p := normPath(c.Path) + "/"
		routes = append(routes, site.Route{
			Kind:       site.RouteCategory,
			Key:        c.Key,
			Path:       p,
			URL:        rb.Abs(p),
			LastMod:    rb.Now,
			ChangeFreq: "weekly",
			Priority:   "0.9",
		})
	}
	return routes
}

// ChangeFreq grades a post by age: under a week daily, under a month weekly,
// otherwise monthly.
func ChangeFreq(now, t time.Time) string {
	age := now.Sub(t)
	switch {
	case age < 7*24*time.Hour:
		return "daily"
	case age < 30*24*time.Hour:
		return "weekly"
	default:
		return "monthly"
	}
}

func normPath(p string) string {
	return strings.TrimRight(p, "/")
}

func samePath(a, b string) bool {
	return normPath(a) != "" && normPath(a) == normPath(b)
}
