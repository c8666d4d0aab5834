package index

import (
	"encoding/json"
	"errors"
	"strings"

	bolt "go.etcd.io/bbolt"

	"inkpipe/internal/domain/content"
)

var ErrNotFound = errors.New("not found")

type ListOptions struct {
	Page int
	Size int
}

func (s *Store) Get(slug string) (content.PostRecord, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.PostRecord{}, ErrNotFound
	}
	var r content.PostRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &r)
	})
	return r, err
}

// All returns every record in index order.
func (s *Store) All() ([]content.PostRecord, error) {
	var out []content.PostRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		orderB := tx.Bucket(bOrder)
		metaB := tx.Bucket(bMeta)
		if orderB == nil || metaB == nil {
			return nil
		}
		return orderB.ForEach(func(_, slug []byte) error {
			v := metaB.Get(slug)
			if v == nil {
				return nil
			}
			var r content.PostRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return nil
			}
			out = append(out, r)
			return nil
		})
	})
	return out, err
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// List pages through posts newest first.
func (s *Store) List(opt ListOptions) ([]content.PostRecord, error) {
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return tx.Bucket(bIdxDate)
	})
}

func (s *Store) ListByTag(tag string, opt ListOptions) ([]content.PostRecord, error) {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if tag == "" {
		return nil, nil
	}
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return subBucket(tx, bIdxTag, tag)
	})
}

func (s *Store) ListByCategory(cat string, opt ListOptions) ([]content.PostRecord, error) {
	cat = strings.TrimSpace(cat)
	if cat == "" {
		return nil, nil
	}
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return subBucket(tx, bIdxCat, cat)
	})
}

func subBucket(tx *bolt.Tx, parent []byte, name string) *bolt.Bucket {
	p := tx.Bucket(parent)
	if p == nil {
		return nil
	}
	return p.Bucket([]byte(name))
}

// scan walks a time-ordered index bucket and resolves one page of records.
func (s *Store) scan(opt ListOptions, pick func(tx *bolt.Tx) *bolt.Bucket) ([]content.PostRecord, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.PostRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := pick(tx)
		metaB := tx.Bucket(bMeta)
		if idx == nil || metaB == nil {
			return nil
		}

		skip := (opt.Page - 1) * opt.Size
		cur := idx.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			slug := slugFromTimeSlugKey(k)
			if slug == "" {
				continue
			}
			v := metaB.Get([]byte(slug))
			if v == nil {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			var r content.PostRecord
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			out = append(out, r)
			if len(out) >= opt.Size {
				break
			}
		}
		return nil
	})
	return out, err
}

// Fingerprint returns the stored fingerprint for an artifact, or "" if none.
func (s *Store) Fingerprint(name string) (string, error) {
	var fp string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bFP)
		if b == nil {
			return nil
		}
		fp = string(b.Get([]byte(name)))
		return nil
	})
	return fp, err
}
