package bramble

// Default layout geometry. Centers are spaced so that DefaultNodeWidth-wide
// boxes never overlap horizontally and levels read as distinct rows.
const (
	DefaultNodeWidth      = 160.0
	DefaultLevelHeight    = 120.0
	DefaultSiblingSpacing = 40.0
	DefaultTopMargin      = 80.0
)

// Layout holds the auto-layout geometry. The zero value is usable: Compute
// fills in the defaults for any field left at zero.
//
// Layout treats every node as NodeWidth wide. Measured title widths change
// only the drawn box (clamped at reconcile time), never the computed
// positions, so positions stay stable while a title is edited.
type Layout struct {
	NodeWidth      float64
	LevelHeight    float64
	SiblingSpacing float64
	TopMargin      float64
}

// DefaultLayout returns the default geometry.
func DefaultLayout() Layout {
	return Layout{
		NodeWidth:      DefaultNodeWidth,
		LevelHeight:    DefaultLevelHeight,
		SiblingSpacing: DefaultSiblingSpacing,
		TopMargin:      DefaultTopMargin,
	}
}

func (l Layout) withDefaults() Layout {
	if l.NodeWidth <= 0 {
		l.NodeWidth = DefaultNodeWidth
	}
	if l.LevelHeight <= 0 {
		l.LevelHeight = DefaultLevelHeight
	}
	if l.SiblingSpacing <= 0 {
		l.SiblingSpacing = DefaultSiblingSpacing
	}
	if l.TopMargin <= 0 {
		l.TopMargin = DefaultTopMargin
	}
	return l
}

// Compute maps a tree snapshot to a center point per node. Pure and
// deterministic: the same snapshot always yields the same positions, and
// child order fixes every tie-break. Two recursive passes:
//
//  1. post-order subtree widths: a leaf takes NodeWidth; an internal node
//     takes the sum of its children's subtree widths plus SiblingSpacing
//     between them, floored at NodeWidth;
//  2. pre-order assignment: an x-cursor advances left to right, a leaf sits
//     at cursor + NodeWidth/2, and a parent centers on the midpoint of its
//     FIRST and LAST child centers. The midpoint (not the mean of all
//     children) keeps parents visually balanced over asymmetric subtrees.
//
// A parent's x depends on subtree widths known only after visiting every
// descendant, which is why a single pass cannot center parents correctly.
// Both passes carry a visited set so cycles in malformed input degrade to
// skipped edges. Nodes unreachable from the root get no position.
func (l Layout) Compute(t *Tree) map[string]Vec2 {
	l = l.withDefaults()
	pos := make(map[string]Vec2, len(t.Nodes))
	widths := make(map[string]float64, len(t.Nodes))
	l.subtreeWidth(t, t.Root, widths, make(map[string]bool, len(t.Nodes)))
	l.assign(t, t.Root, 0, 0, widths, pos, make(map[string]bool, len(t.Nodes)))
	return pos
}

// subtreeWidth returns the horizontal span needed by id and its descendants,
// memoizing per-node results for the assignment pass. Skipped edges (dangling
// ids, revisits) contribute zero width and no spacing.
func (l Layout) subtreeWidth(t *Tree, id string, widths map[string]float64, visited map[string]bool) float64 {
	n, ok := t.Nodes[id]
	if !ok || visited[id] {
		return 0
	}
	visited[id] = true

	total := 0.0
	placed := 0
	for _, c := range n.Children {
		w := l.subtreeWidth(t, c, widths, visited)
		if w <= 0 {
			continue
		}
		total += w
		placed++
	}
	if placed > 1 {
		total += l.SiblingSpacing * float64(placed-1)
	}
	if total < l.NodeWidth {
		total = l.NodeWidth
	}
	widths[id] = total
	return total
}

// assign places id and its descendants starting at the given x-cursor.
func (l Layout) assign(t *Tree, id string, cursor float64, depth int, widths map[string]float64, pos map[string]Vec2, visited map[string]bool) {
	n, ok := t.Nodes[id]
	if !ok {
		return
	}
	visited[id] = true
	y := float64(depth)*l.LevelHeight + l.TopMargin

	cur := cursor
	firstX, lastX := 0.0, 0.0
	placed := 0
	for _, c := range n.Children {
		if _, ok := t.Nodes[c]; !ok || visited[c] {
			continue
		}
		l.assign(t, c, cur, depth+1, widths, pos, visited)
		cx := pos[c].X
		if placed == 0 {
			firstX = cx
		}
		lastX = cx
		placed++
		cur += widths[c] + l.SiblingSpacing
	}

	if placed == 0 {
		pos[id] = Vec2{X: cursor + l.NodeWidth/2, Y: y}
		return
	}
	pos[id] = Vec2{X: (firstX + lastX) / 2, Y: y}
}
