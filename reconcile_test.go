package bramble

import "testing"

// newTestGraph builds a Graph with an in-memory store, no font, and one
// 800x600 surface. Box sizing falls back to the fixed title extent, so every
// box measures 160x44 and positions stay hand-checkable.
func newTestGraph() (*Graph, *Surface) {
	g := New(Config{})
	s := g.AddSurface("main", 800, 600)
	return g, s
}

// --- Building ---

func TestRenderBuildsElements(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")

	if len(s.boxOrder) != 4 {
		t.Fatalf("boxes = %d, want 4", len(s.boxOrder))
	}
	if len(s.ribbonOrder) != 3 {
		t.Fatalf("ribbons = %d, want 3", len(s.ribbonOrder))
	}

	want := map[string]Vec2{
		"R": {X: 180, Y: 80},
		"A": {X: 80, Y: 200},
		"B": {X: 280, Y: 200},
		"C": {X: 80, Y: 320},
	}
	for id, p := range want {
		e := s.Box(id)
		if e == nil {
			t.Fatalf("box %q missing", id)
		}
		if !nearlyEqual(e.X, p.X) || !nearlyEqual(e.Y, p.Y) {
			t.Errorf("box %q at (%g, %g), want (%g, %g)", id, e.X, e.Y, p.X, p.Y)
		}
	}

	r := s.Ribbon("A")
	if r == nil {
		t.Fatal("ribbon for A missing")
	}
	if r.ParentID != "R" {
		t.Errorf("ribbon A parent = %q, want R", r.ParentID)
	}
	if !nearlyEqual(r.From.X, 180) || !nearlyEqual(r.From.Y, 102) {
		t.Errorf("ribbon A From = (%g, %g), want (180, 102)", r.From.X, r.From.Y)
	}
	if !nearlyEqual(r.To.X, 80) || !nearlyEqual(r.To.Y, 178) {
		t.Errorf("ribbon A To = (%g, %g), want (80, 178)", r.To.X, r.To.Y)
	}
}

func TestRenderPopulatesStats(t *testing.T) {
	g, _ := newTestGraph()
	g.Render(buildSampleTree(), "main")
	if !g.stats.fullRebuild {
		t.Error("first render should be a full rebuild")
	}
	if g.stats.boxCount != 4 || g.stats.ribbonCount != 3 {
		t.Errorf("stats counts = (%d, %d), want (4, 3)",
			g.stats.boxCount, g.stats.ribbonCount)
	}
	g.Render(buildSampleTree(), "main")
	if g.stats.fullRebuild {
		t.Error("unchanged structure should render incrementally")
	}
}

func TestRenderAppliesNodeColor(t *testing.T) {
	g, s := newTestGraph()
	tr := buildSampleTree()
	red := Color{R: 1, A: 1}
	tr.Nodes["A"].Color = red
	g.Render(tr, "main")

	if s.Box("A").Color != red {
		t.Errorf("box A color = %v, want %v", s.Box("A").Color, red)
	}
	if s.Box("B").Color != ColorBoxFill {
		t.Errorf("box B color = %v, want default fill", s.Box("B").Color)
	}

	tr2 := buildSampleTree()
	g.Render(tr2, "main")
	if s.Box("A").Color != ColorBoxFill {
		t.Errorf("cleared color = %v, want default fill", s.Box("A").Color)
	}
}

// --- Identity across renders ---

func TestRenderPreservesIdentityWhenStructureUnchanged(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")
	boxA := s.Box("A")
	ribbonA := s.Ribbon("A")

	tr := buildSampleTree()
	tr.Nodes["A"].Title = "Alpha edited"
	g.Render(tr, "main")

	if s.Box("A") != boxA {
		t.Error("box A was recreated; identity should survive an incremental render")
	}
	if boxA.Title != "Alpha edited" {
		t.Errorf("title = %q, want %q", boxA.Title, "Alpha edited")
	}
	if s.Ribbon("A") != ribbonA {
		t.Error("ribbon A was recreated")
	}
	if boxA.IsDisposed() {
		t.Error("box A disposed during incremental render")
	}
}

func TestRenderRebuildsOnStructureChange(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")
	boxA := s.Box("A")

	tr := buildSampleTree()
	tr.Add("B", "D", "Delta")
	g.Render(tr, "main")

	if !g.stats.fullRebuild {
		t.Error("structure change should force a full rebuild")
	}
	if s.Box("A") == boxA {
		t.Error("full rebuild should recreate elements")
	}
	if !boxA.IsDisposed() {
		t.Error("old box A should be disposed")
	}
	if s.Box("D") == nil {
		t.Error("new box D missing")
	}
	if len(s.ribbonOrder) != 4 {
		t.Errorf("ribbons = %d, want 4", len(s.ribbonOrder))
	}
}

// --- Stale elements ---

func TestReconcileRemovesStaleElements(t *testing.T) {
	g, s := newTestGraph()
	tr := buildSampleTree()
	g.Render(tr, "main")
	boxB := s.Box("B")

	pos := g.layout.Compute(tr)
	delete(pos, "B")
	g.reconcile(tr, pos, s, false)

	if s.Box("B") != nil {
		t.Error("box B should be removed when its position disappears")
	}
	if !boxB.IsDisposed() {
		t.Error("removed box should be disposed")
	}
	if _, ok := g.drag["B"]; ok {
		t.Error("drag record should die with its box")
	}
	if s.Ribbon("B") != nil {
		t.Error("ribbon to a removed box should be removed")
	}
	if s.Box("A") == nil || s.Ribbon("A") == nil {
		t.Error("unrelated elements should survive")
	}
}

func TestReconcileSkipsEdgeWithoutParentBox(t *testing.T) {
	g, s := newTestGraph()
	tr := buildSampleTree()
	pos := g.layout.Compute(tr)
	delete(pos, "A")
	g.reconcile(tr, pos, s, false)

	if s.Box("A") != nil {
		t.Error("unpositioned node should not get a box")
	}
	if s.Ribbon("C") != nil {
		t.Error("edge from an unpositioned parent should be skipped")
	}
	if s.Ribbon("B") == nil {
		t.Error("unrelated edge should still be built")
	}
}

// --- Drag interplay ---

func TestRenderKeepsDraggedBoxPosition(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")
	e := s.Box("A")

	g.drag["A"].dragging = true
	e.X, e.Y = 500, 333
	g.Render(buildSampleTree(), "main")
	if e.X != 500 || e.Y != 333 {
		t.Errorf("mid-drag box snapped to (%g, %g)", e.X, e.Y)
	}

	g.drag["A"].dragging = false
	g.Render(buildSampleTree(), "main")
	if e.X != 80 || e.Y != 200 {
		t.Errorf("released box at (%g, %g), want computed (80, 200)", e.X, e.Y)
	}
}

func TestDragMovesRibbonsWithBox(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")
	e := s.Box("A")
	rIn := s.Ribbon("A")
	rOut := s.Ribbon("C")
	rOther := s.Ribbon("B")
	otherFrom := rOther.From

	e.OnDrag(DragContext{Element: e, DeltaX: 10, DeltaY: -4})

	if e.X != 90 || e.Y != 196 {
		t.Fatalf("box A at (%g, %g), want (90, 196)", e.X, e.Y)
	}
	if !nearlyEqual(rIn.To.X, 90) || !nearlyEqual(rIn.To.Y, 174) {
		t.Errorf("incoming ribbon To = (%g, %g), want (90, 174)", rIn.To.X, rIn.To.Y)
	}
	if !nearlyEqual(rOut.From.X, 90) || !nearlyEqual(rOut.From.Y, 218) {
		t.Errorf("outgoing ribbon From = (%g, %g), want (90, 218)", rOut.From.X, rOut.From.Y)
	}
	if rOther.From != otherFrom {
		t.Error("ribbon not touching the dragged box moved")
	}
}

func TestDragEndCommitsOverride(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")
	e := s.Box("A")

	e.OnDragStart(DragContext{Element: e})
	if !g.drag["A"].dragging || !g.drag["A"].hasMoved {
		t.Fatal("drag start should mark the record")
	}
	e.X, e.Y = 900, 450
	e.OnDragEnd(DragContext{Element: e})
	if g.drag["A"].dragging {
		t.Error("drag end should clear the dragging flag")
	}

	overrides, manual := g.store.Load("t1")
	if !manual {
		t.Fatal("manual flag should be set after a drag commit")
	}
	if p := overrides["A"]; p.X != 900 || p.Y != 450 {
		t.Errorf("stored override = %v, want (900, 450)", p)
	}

	g.Render(buildSampleTree(), "main")
	if e.X != 900 || e.Y != 450 {
		t.Errorf("override not applied on re-render: (%g, %g)", e.X, e.Y)
	}
	if s.Box("B").X != 280 {
		t.Errorf("unmoved box B at %g, want computed 280", s.Box("B").X)
	}
}

// --- Animation on create ---

func TestRenderFadesInNewBoxes(t *testing.T) {
	g, s := newTestGraph()
	g.Render(buildSampleTree(), "main")
	e := s.Box("R")
	if e.Alpha != 0 {
		t.Fatalf("new box alpha = %g, want 0 before the fade runs", e.Alpha)
	}
	s.updateAnims(0.2)
	if e.Alpha != 1 {
		t.Errorf("alpha after fade = %g, want 1", e.Alpha)
	}
}

// --- Callbacks ---

func TestNodeClickCallback(t *testing.T) {
	var clicked string
	g := New(Config{OnNodeClick: func(id string) { clicked = id }})
	s := g.AddSurface("main", 800, 600)
	g.Render(buildSampleTree(), "main")

	s.Box("B").OnClick(ClickContext{Element: s.Box("B")})
	if clicked != "B" {
		t.Errorf("clicked = %q, want B", clicked)
	}
}

func TestLabelClickReportsEdge(t *testing.T) {
	var gotChild, gotParent string
	g := New(Config{OnConnectionLabelClick: func(child, parent string) {
		gotChild, gotParent = child, parent
	}})
	s := g.AddSurface("main", 800, 600)
	tr := buildSampleTree()
	tr.Nodes["A"].Label = "because"
	g.Render(tr, "main")

	r := s.Ribbon("A")
	if r.Label != "because" || r.labelW == 0 {
		t.Fatalf("label not sized: %q %gx%g", r.Label, r.labelW, r.labelH)
	}

	r.OnClick(ClickContext{Element: r, WorldX: r.labelPos.X, WorldY: r.labelPos.Y})
	if gotChild != "A" || gotParent != "R" {
		t.Errorf("label click reported (%q, %q), want (A, R)", gotChild, gotParent)
	}

	gotChild, gotParent = "", ""
	r.OnClick(ClickContext{Element: r, WorldX: r.From.X, WorldY: r.From.Y})
	if gotChild != "" {
		t.Error("click on the curve away from the label should not report")
	}
}
