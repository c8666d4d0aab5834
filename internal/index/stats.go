package index

import (
	"sort"

	bolt "go.etcd.io/bbolt"
)

type TermCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagStats counts posts per tag. Tags differing only in case are merged and
// reported with the spelling of their newest post.
func (s *Store) TagStats() ([]TermCount, error) {
	return s.termStats(bIdxTag, true)
}

func (s *Store) CategoryStats() ([]TermCount, error) {
	return s.termStats(bIdxCat, false)
}

func (s *Store) termStats(parent []byte, nameFromValue bool) ([]TermCount, error) {
	var out []TermCount
	err := s.db.View(func(tx *bolt.Tx) error {
		p := tx.Bucket(parent)
		if p == nil {
			return nil
		}
		return p.ForEachBucket(func(k []byte) error {
			sb := p.Bucket(k)
			tc := TermCount{Name: string(k)}
			c := sb.Cursor()
			for kk, v := c.First(); kk != nil; kk, v = c.Next() {
				if tc.Count == 0 && nameFromValue && len(v) > 0 {
					tc.Name = string(v)
				}
				tc.Count++
			}
			out = append(out, tc)
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}
