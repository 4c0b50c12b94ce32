// Trie implements a byte trie data structure, used for the debugger command
// and keyword completion.
// It is fast as it uses arrays instead of maps and no bound checks.
package trie // import "lifetime.dev/lifetime/trie"

import "strings"

type Trie struct {
	// Children of this node
	children [256]*Trie
	// This node itself is a valid leaf (end of a word) in addition having children.
	valid bool
	leaf  bool // Not really needed outside of debugging but with struct alignment it doesn't cost anything extra.
}

// Save some memory by having a shared end marker for leaves.
// Only one having "leaf" set to true.
var endMarker = &Trie{valid: true, leaf: true}

func NewTrie() *Trie {
	return &Trie{}
}

func (t *Trie) Insert(word string) {
	l := len(word)
	for i := range l {
		char := word[i]
		valid := false
		switch t.children[char] {
		case endMarker:
			// This was a valid leaf before, propagate to the new children node
			valid = true
			fallthrough
		case nil:
			if i == l-1 {
				t.children[char] = endMarker // Shared for all leaves, saves memory.
			} else {
				t.children[char] = &Trie{valid: valid}
			}
		default:
			if i == l-1 {
				t.children[char].valid = true
			}
		}
		t = t.children[char]
	}
}

func (t *Trie) Contains(word string) bool {
	return t.Prefix(word).IsValid()
}

func (t *Trie) Prefix(word string) *Trie {
	for i := range len(word) {
		char := word[i]
		t = t.children[char]
		if t == nil {
			return nil
		}
	}
	return t
}

func (t *Trie) IsLeaf() bool {
	return t != nil && t.leaf
}

func (t *Trie) IsValid() bool {
	return t != nil && t.valid
}

// PrefixAll returns all the words starting with prefix, in byte order, and
// the length of their longest common prefix (at least len(prefix) when
// there is a match, 0 otherwise).
func (t *Trie) PrefixAll(prefix string) (int, []string) {
	node := t.Prefix(prefix)
	if node == nil {
		return 0, nil
	}
	var words []string
	var sb strings.Builder
	sb.WriteString(prefix)
	node.collect(&sb, &words)
	if len(words) == 0 {
		return 0, nil
	}
	return commonPrefix(words), words
}

func (t *Trie) collect(sb *strings.Builder, words *[]string) {
	if t.valid {
		*words = append(*words, sb.String())
	}
	if t.leaf {
		return
	}
	for c, child := range t.children {
		if child == nil {
			continue
		}
		cur := sb.String()
		sb.WriteByte(byte(c))
		child.collect(sb, words)
		sb.Reset()
		sb.WriteString(cur)
	}
}

func commonPrefix(words []string) int {
	l := len(words[0])
	for _, w := range words[1:] {
		l = min(l, len(w))
		for i := range l {
			if w[i] != words[0][i] {
				l = i
				break
			}
		}
	}
	return l
}

/*
  A-B
  A-B-C

  [A] -> [B] children[C] = endMarker
*/
