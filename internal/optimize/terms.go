package optimize

import (
	"strings"

	"github.com/vcaesar/cedar"
)

// termTrie finds which of a fixed set of terms occur anywhere in a text.
type termTrie struct {
	trie   *cedar.Cedar
	terms  []string
	maxLen int
}

func newTermTrie(terms []string) *termTrie {
	t := &termTrie{trie: cedar.New(), terms: terms}
	for i, term := range terms {
		b := []byte(strings.ToLower(term))
		if _, err := t.trie.Get(b); err == nil {
			continue
		}
		t.trie.Insert(b, i)
		if len(b) > t.maxLen {
			t.maxLen = len(b)
		}
	}
	return t
}

// Contained returns the terms found in text (case-insensitive), in the order
// the terms were registered.
func (t *termTrie) Contained(text string) []string {
	lower := []byte(strings.ToLower(text))
	found := make([]bool, len(t.terms))
	for i := range lower {
		id := 0
		for j := i; j < len(lower) && j-i < t.maxLen; j++ {
			next, err := t.trie.Jump(lower[j:j+1], id)
			if err != nil {
				break
			}
			id = next
			if v, err := t.trie.Value(id); err == nil {
				found[v] = true
			}
		}
	}
	var out []string
	for i, ok := range found {
		if ok {
			out = append(out, t.terms[i])
		}
	}
	return out
}
