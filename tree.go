package bramble

import "fmt"

// TreeNode is a single conversation node within a tree snapshot.
// ID must be unique within the tree and stable across renders of the same
// logical node; Children is ordered and the order is significant for layout.
type TreeNode struct {
	ID       string
	Title    string
	Children []string

	// Label is the optional text shown on the connection from this node's
	// parent. Empty means the edge is drawn without a label.
	Label string

	// Color and Shape are optional visual attributes carried through to the
	// element untouched. A zero Color (fully transparent) means "use the
	// default palette"; Shape is opaque to the engine.
	Color Color
	Shape string
}

// Tree is an immutable-per-render snapshot of a conversation tree: a root id
// plus a mapping from node id to node. The engine never mutates a Tree; the
// caller supplies a fresh snapshot on every render and remains the owner.
type Tree struct {
	ID    string
	Root  string
	Nodes map[string]*TreeNode
}

// --- Construction ---

// NewTree creates a snapshot containing only the root node. Add grows it.
// The id identifies the tree for the position override store.
func NewTree(id, rootID, rootTitle string) *Tree {
	return &Tree{
		ID:   id,
		Root: rootID,
		Nodes: map[string]*TreeNode{
			rootID: {ID: rootID, Title: rootTitle},
		},
	}
}

// Add appends a new node under parentID and returns it so callers can set
// Label, Color, or Shape. Panics on an unknown parent or a duplicate id;
// builder misuse is a programmer error, unlike the malformed snapshots the
// render path tolerates.
func (t *Tree) Add(parentID, id, title string) *TreeNode {
	parent, ok := t.Nodes[parentID]
	if !ok {
		panic(fmt.Sprintf("bramble: Add under unknown parent %q", parentID))
	}
	if _, exists := t.Nodes[id]; exists {
		panic(fmt.Sprintf("bramble: Add duplicate node id %q", id))
	}
	n := &TreeNode{ID: id, Title: title}
	t.Nodes[id] = n
	parent.Children = append(parent.Children, id)
	return n
}

// --- Validation ---

// Validate checks the snapshot invariants: the root exists, every child id
// resolves, no node is claimed by two parents (or is the root), and every
// node is reachable from the root. A nil error means the tree is well formed.
//
// The render path does not require a valid tree (malformed edges are skipped
// there), so calling Validate is optional and mostly useful in tests and at
// trust boundaries.
func (t *Tree) Validate() error {
	if _, ok := t.Nodes[t.Root]; !ok {
		return fmt.Errorf("root %q not in node map", t.Root)
	}

	claimed := make(map[string]string, len(t.Nodes))
	for id, n := range t.Nodes {
		if n == nil {
			return fmt.Errorf("node %q is nil", id)
		}
		if n.ID != id {
			return fmt.Errorf("node %q keyed under %q", n.ID, id)
		}
		for _, c := range n.Children {
			if _, ok := t.Nodes[c]; !ok {
				return fmt.Errorf("node %q lists unknown child %q", id, c)
			}
			if c == t.Root {
				return fmt.Errorf("root %q listed as a child of %q", c, id)
			}
			if prev, dup := claimed[c]; dup {
				return fmt.Errorf("node %q claimed by both %q and %q", c, prev, id)
			}
			claimed[c] = id
		}
	}

	reached := 0
	t.walk(func(string, *TreeNode, int) { reached++ })
	if reached != len(t.Nodes) {
		return fmt.Errorf("%d of %d nodes unreachable from root %q",
			len(t.Nodes)-reached, len(t.Nodes), t.Root)
	}
	return nil
}

// --- Traversal ---

// walk visits every node reachable from the root in pre-order, following each
// Children slice left to right. A visited set guards against cycles in
// malformed input: a revisit is treated as a skipped edge, never recursed
// into. Dangling child ids are skipped the same way.
func (t *Tree) walk(visit func(id string, n *TreeNode, depth int)) {
	visited := make(map[string]bool, len(t.Nodes))
	var rec func(id string, depth int)
	rec = func(id string, depth int) {
		n, ok := t.Nodes[id]
		if !ok || visited[id] {
			return
		}
		visited[id] = true
		debugCheckTreeDepth(id, depth)
		visit(id, n, depth)
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	rec(t.Root, 0)
}

// parentIndex maps each node id reachable from the root to its parent's id.
// The root has no entry. Built from the children lists during a guarded walk,
// so the result is deterministic even for malformed input (first claim in
// traversal order wins).
func (t *Tree) parentIndex() map[string]string {
	parents := make(map[string]string, len(t.Nodes))
	visited := make(map[string]bool, len(t.Nodes))
	var rec func(id string)
	rec = func(id string) {
		n, ok := t.Nodes[id]
		if !ok || visited[id] {
			return
		}
		visited[id] = true
		for _, c := range n.Children {
			if _, ok := t.Nodes[c]; !ok {
				continue
			}
			if !visited[c] {
				parents[c] = id
			}
			rec(c)
		}
	}
	rec(t.Root)
	return parents
}
