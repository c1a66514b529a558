package bramble

import "github.com/tanema/gween/ease"

// Reconciliation patches a surface's element arena to match the latest tree
// snapshot and position map. Boxes and ribbons that survive a render keep
// their *Element identity, so callbacks, capture state, and running tweens
// carry over; only elements for vanished nodes are disposed. A full rebuild
// clears the arena first and recreates everything from scratch.

func (g *Graph) reconcile(t *Tree, positions map[string]Vec2, s *Surface, full bool) {
	if full {
		s.clear()
	}
	g.reconcileBoxes(t, positions, s)
	g.reconcileRibbons(t, s)
}

// --- Boxes ---

func (g *Graph) reconcileBoxes(t *Tree, positions map[string]Vec2, s *Surface) {
	present := make(map[string]bool, len(t.Nodes))
	t.walk(func(id string, n *TreeNode, depth int) {
		pos, ok := positions[id]
		if !ok {
			return
		}
		present[id] = true
		if e := s.Box(id); e != nil {
			g.updateBox(e, n, pos)
		} else {
			g.createBox(s, n, pos)
		}
	})

	var stale []string
	for _, id := range s.boxOrder {
		if !present[id] {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		s.removeBox(id)
	}
}

// updateBox refreshes an existing box in place. The element pointer, its
// callbacks, and any running tween stay untouched; a node mid-drag keeps the
// pointer-driven position instead of snapping back to the computed one.
func (g *Graph) updateBox(e *Element, n *TreeNode, pos Vec2) {
	if ds := g.drag[e.ID]; ds == nil || !ds.dragging {
		e.X = pos.X
		e.Y = pos.Y
	}
	e.Width, e.Height, e.lines = sizeBox(g.cache, g.font, n.Title)
	e.Title = n.Title
	e.Shape = n.Shape
	if n.Color.A > 0 {
		e.Color = n.Color
	} else {
		e.Color = ColorBoxFill
	}
	e.Active = e.ID == g.activeID
}

func (g *Graph) createBox(s *Surface, n *TreeNode, pos Vec2) {
	e := NewBox(n.ID)
	e.X = pos.X
	e.Y = pos.Y
	e.Width, e.Height, e.lines = sizeBox(g.cache, g.font, n.Title)
	e.Title = n.Title
	e.Shape = n.Shape
	if n.Color.A > 0 {
		e.Color = n.Color
	}
	e.Active = e.ID == g.activeID
	g.attachBoxHandlers(s, e)
	s.addBox(e)

	e.Alpha = 0
	s.addAnim(TweenAlpha(e, 1, fadeInDuration, ease.OutQuad))
}

// attachBoxHandlers wires a fresh box into the graph: click reporting, the
// drag lifecycle, and the drag record whose teardown runs on dispose.
func (g *Graph) attachBoxHandlers(s *Surface, e *Element) {
	id := e.ID
	ds := &dragState{}
	g.drag[id] = ds
	e.teardown = func() {
		delete(g.drag, id)
	}

	e.OnClick = func(ClickContext) {
		if g.onNodeClick != nil {
			g.onNodeClick(id)
		}
	}
	e.OnDragStart = func(DragContext) {
		ds.dragging = true
		ds.hasMoved = true
	}
	e.OnDrag = func(ctx DragContext) {
		e.X += ctx.DeltaX
		e.Y += ctx.DeltaY
		s.moveRibbons(e)
	}
	e.OnDragEnd = func(DragContext) {
		ds.dragging = false
		g.commitOverride(s, e)
	}
}

// moveRibbons recomputes every ribbon touching the box: the incoming edge
// from its parent and each outgoing edge to a child. Nothing else on the
// surface changes, so a drag frame stays cheap even on large trees.
func (s *Surface) moveRibbons(box *Element) {
	if r := s.Ribbon(box.ID); r != nil {
		if parent := s.Box(r.ParentID); parent != nil {
			updateRibbonGeometry(r, parent, box)
		}
	}
	for _, id := range s.ribbonOrder {
		r := s.ribbons[id]
		if r.ParentID != box.ID {
			continue
		}
		if child := s.Box(id); child != nil {
			updateRibbonGeometry(r, box, child)
		}
	}
}

// --- Ribbons ---

// reconcileRibbons aligns connection elements with the tree's edges. A ribbon
// is keyed by its child id; an edge whose parent or child has no box on the
// surface (no computed position) is skipped without comment, matching how the
// layout pass treats unreachable nodes.
func (g *Graph) reconcileRibbons(t *Tree, s *Surface) {
	parents := t.parentIndex()
	present := make(map[string]bool, len(parents))
	t.walk(func(id string, n *TreeNode, depth int) {
		parentID, ok := parents[id]
		if !ok {
			return
		}
		parent := s.Box(parentID)
		child := s.Box(id)
		if parent == nil || child == nil {
			return
		}
		present[id] = true
		if r := s.Ribbon(id); r != nil {
			g.updateRibbon(r, n, parent, child)
		} else {
			g.createRibbon(s, n, parentID, parent, child)
		}
	})

	var stale []string
	for _, id := range s.ribbonOrder {
		if !present[id] {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		s.removeRibbon(id)
	}
}

func (g *Graph) updateRibbon(r *Element, n *TreeNode, parent, child *Element) {
	updateRibbonGeometry(r, parent, child)
	g.sizeLabel(r, n.Label)
}

func (g *Graph) createRibbon(s *Surface, n *TreeNode, parentID string, parent, child *Element) {
	r := NewRibbon(n.ID, parentID)
	updateRibbonGeometry(r, parent, child)
	g.sizeLabel(r, n.Label)
	g.attachRibbonHandlers(r, parentID)
	s.addRibbon(r)
}

// sizeLabel refreshes the label text and its measured extent. Ribbons without
// a label keep a zero extent so hit testing falls through to the curve.
func (g *Graph) sizeLabel(r *Element, label string) {
	r.Label = label
	if label == "" {
		r.labelW = 0
		r.labelH = 0
		return
	}
	w, h := g.cache.Measure(g.font, label)
	r.labelW = w + 2*labelPaddingX
	r.labelH = h + 2*labelPaddingY
}

// attachRibbonHandlers reports label clicks. The ribbon as a whole is
// hover-highlighted by the pointer machinery; only a click landing on the
// label rectangle reaches the application callback.
func (g *Graph) attachRibbonHandlers(r *Element, parentID string) {
	childID := r.ID
	r.OnClick = func(ctx ClickContext) {
		if r.Label == "" {
			return
		}
		if !r.labelBounds().Contains(ctx.WorldX, ctx.WorldY) {
			return
		}
		if g.onLabelClick != nil {
			g.onLabelClick(childID, parentID)
		}
	}
}
