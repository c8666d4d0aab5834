package build

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"inkpipe/internal/domain/content"
)

// Fingerprint identifies the inputs of a generated artifact. Two builds with
// equal Hash produce identical output, so the second can be skipped.
type Fingerprint struct {
	ContentHash   string
	ConfigHash    string
	GeneratorHash string
	Hash          string
}

func (f *Fingerprint) ComputeHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte{0})
	h.Write([]byte(f.ConfigHash))
	h.Write([]byte{0})
	h.Write([]byte(f.GeneratorHash))
	f.Hash = hex.EncodeToString(h.Sum(nil))
}

// HashRecords digests the parts of records that reach feeds and sitemaps.
// Order matters: the same posts in a different order hash differently.
func HashRecords(records []content.PostRecord) string {
	h := sha256.New()
	for _, r := range records {
		for _, s := range []string{r.Slug, r.Title, r.Excerpt, r.Date, r.Author, r.Category, r.Image, r.ContentHash, r.SortTime.UTC().String()} {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
		for _, t := range r.Tags {
			h.Write([]byte(t))
			h.Write([]byte{1})
		}
		h.Write([]byte{2})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashStrings digests key/value pairs independent of map order.
func HashStrings(kv map[string]string) string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(kv[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
