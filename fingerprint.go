package bramble

import (
	"sort"
	"strings"
)

// rootSentinel stands in for the absent parent of the root (and of any
// unreachable node in malformed input) inside a fingerprint.
const rootSentinel = "^"

// Fingerprint computes a canonical structural signature for a tree snapshot.
// Node ids are sorted, then each node contributes its id, its parent's id,
// and its ordered child ids. Any structural change (adding, removing, or
// reparenting a node, or reordering children) yields a different string;
// attribute-only changes (title, label, color, shape) do not.
//
// Renders compare the new fingerprint against the previous one: equal means
// the incremental reconcile path, different means a full rebuild.
func Fingerprint(t *Tree) string {
	ids := make([]string, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parents := t.parentIndex()

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('|')
		if p, ok := parents[id]; ok {
			b.WriteString(p)
		} else {
			b.WriteString(rootSentinel)
		}
		b.WriteByte('|')
		if n := t.Nodes[id]; n != nil {
			for i, c := range n.Children {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(c)
			}
		}
		b.WriteByte(';')
	}
	return b.String()
}
