package site

import (
	"fmt"
	"strings"
	"time"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RoutePost     RouteKind = "post"
	RouteCategory RouteKind = "category"
	RouteStatic   RouteKind = "static"
	RouteRSS      RouteKind = "rss"
	RouteSitemap  RouteKind = "sitemap"
)

// Route is one public URL of the site together with what the sitemap needs
// to know about it.
type Route struct {
	Kind       RouteKind
	Slug       string
	Key        string
	Path       string // "/post/hello", "" for the home page
	URL        string
	LastMod    time.Time
	ChangeFreq string
	Priority   string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.URL != "" {
		parts = append(parts, "url="+r.URL)
	}
	if !r.LastMod.IsZero() {
		parts = append(parts, fmt.Sprintf("lastmod=%s", r.LastMod.Format(time.DateOnly)))
	}
	return strings.Join(parts, " ")
}
