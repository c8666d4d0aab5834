package index

import (
	"net/url"
	"strings"

	"inkpipe/internal/domain/content"
)

// Match finds the record for a requested slug: exact match first, then
// case/whitespace-normalized, then percent-decoded. Within a stage the
// earliest record in index order wins.
func Match(records []content.PostRecord, requested string) (content.PostRecord, bool) {
	for _, r := range records {
		if r.Slug == requested {
			return r, true
		}
	}

	norm := normalizeSlug(requested)
	if norm == "" {
		return content.PostRecord{}, false
	}
	for _, r := range records {
		if normalizeSlug(r.Slug) == norm {
			return r, true
		}
	}

	decoded, err := url.PathUnescape(requested)
	if err != nil || decoded == requested {
		return content.PostRecord{}, false
	}
	dnorm := normalizeSlug(decoded)
	for _, r := range records {
		if r.Slug == decoded || normalizeSlug(r.Slug) == dnorm {
			return r, true
		}
	}
	return content.PostRecord{}, false
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup resolves a requested slug against the stored index. A miss is
// ErrNotFound.
func (s *Store) Lookup(requested string) (content.PostRecord, error) {
	all, err := s.All()
	if err != nil {
		return content.PostRecord{}, err
	}
	r, ok := Match(all, requested)
	if !ok {
		return content.PostRecord{}, ErrNotFound
	}
	return r, nil
}
