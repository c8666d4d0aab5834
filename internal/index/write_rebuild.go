package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	bolt "go.etcd.io/bbolt"

	"inkpipe/internal/domain/content"
)

// Rebuild replaces every post bucket with records, kept in the given order.
// Fingerprints survive a rebuild.
func (s *Store) Rebuild(records []content.PostRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bMeta, bOrder, bIdxDate, bIdxTag, bIdxCat} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}

		var metaB, orderB, idxDateB, idxTagB, idxCatB *bolt.Bucket
		for _, c := range []struct {
			name []byte
			dst  **bolt.Bucket
		}{
			{bMeta, &metaB}, {bOrder, &orderB}, {bIdxDate, &idxDateB}, {bIdxTag, &idxTagB}, {bIdxCat, &idxCatB},
		} {
			b, err := tx.CreateBucket(c.name)
			if err != nil {
				return fmt.Errorf("create bucket %s: %w", c.name, err)
			}
			*c.dst = b
		}

		pos := 0
		for _, r := range records {
			if strings.TrimSpace(r.Slug) == "" {
				continue
			}
			if metaB.Get([]byte(r.Slug)) != nil {
				continue
			}
			mb, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := metaB.Put([]byte(r.Slug), mb); err != nil {
				return err
			}
			if err := orderB.Put(makeOrderKey(pos), []byte(r.Slug)); err != nil {
				return err
			}
			pos++

			key := makeTimeSlugKey(r.SortTime.UnixNano(), r.Slug)
			if err := idxDateB.Put(key, []byte{1}); err != nil {
				return err
			}

			for _, tag := range r.Tags {
				tag = strings.TrimSpace(tag)
				if tag == "" {
					continue
				}
				sb, err := idxTagB.CreateBucketIfNotExists([]byte(strings.ToLower(tag)))
				if err != nil {
					return err
				}
				if err := sb.Put(key, []byte(tag)); err != nil {
					return err
				}
			}

			if cat := strings.TrimSpace(r.Category); cat != "" {
				sb, err := idxCatB.CreateBucketIfNotExists([]byte(cat))
				if err != nil {
					return err
				}
				if err := sb.Put(key, []byte{1}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// SetFingerprint records the last built fingerprint of an artifact.
func (s *Store) SetFingerprint(name, fp string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bFP)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), []byte(fp))
	})
}
