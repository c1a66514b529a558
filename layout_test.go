package bramble

import (
	"math"
	"strconv"
	"testing"
)

const layoutEps = 1e-9

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < layoutEps
}

// --- Determinism ---

func TestComputeDeterministic(t *testing.T) {
	tr := buildSampleTree()
	l := DefaultLayout()
	a := l.Compute(tr)
	b := l.Compute(tr)
	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for id, pa := range a {
		if pb := b[id]; !nearlyEqual(pa.X, pb.X) || !nearlyEqual(pa.Y, pb.Y) {
			t.Errorf("node %s: %v vs %v", id, pa, pb)
		}
	}
}

// --- End-to-end scenario ---

// Root R with children A and B, C under A. With the default geometry
// (width 160, spacing 40, level 120, top 80): C is the leftmost leaf at
// x=80, A inherits C's center line, B lands one subtree over, and R centers
// between A and B.
func TestComputeSampleTree(t *testing.T) {
	pos := DefaultLayout().Compute(buildSampleTree())

	tests := []struct {
		id   string
		want Vec2
	}{
		{"R", Vec2{X: 180, Y: 80}},
		{"A", Vec2{X: 80, Y: 200}},
		{"B", Vec2{X: 280, Y: 200}},
		{"C", Vec2{X: 80, Y: 320}},
	}
	for _, tt := range tests {
		got, ok := pos[tt.id]
		if !ok {
			t.Fatalf("no position for %s", tt.id)
		}
		if !nearlyEqual(got.X, tt.want.X) || !nearlyEqual(got.Y, tt.want.Y) {
			t.Errorf("%s = (%v, %v), want (%v, %v)", tt.id, got.X, got.Y, tt.want.X, tt.want.Y)
		}
	}

	if !nearlyEqual(pos["R"].X, (pos["A"].X+pos["B"].X)/2) {
		t.Errorf("R.x = %v, want midpoint of A and B = %v", pos["R"].X, (pos["A"].X+pos["B"].X)/2)
	}
	if !nearlyEqual(pos["C"].X, pos["A"].X) {
		t.Errorf("C.x = %v, want A.x = %v (single child inherits the center line)", pos["C"].X, pos["A"].X)
	}
}

// --- Centering invariant ---

// A parent with asymmetric children (subtree widths 1, 1, 3 units) must sit
// at the midpoint of its outer children's centers, not at the centroid of
// all three.
func TestComputeFirstLastMidpoint(t *testing.T) {
	tr := NewTree("t1", "P", "Parent")
	tr.Add("P", "X", "X")
	tr.Add("P", "Y", "Y")
	tr.Add("P", "Z", "Z")
	tr.Add("Z", "Z1", "Z1")
	tr.Add("Z", "Z2", "Z2")
	tr.Add("Z", "Z3", "Z3")

	pos := DefaultLayout().Compute(tr)

	mid := (pos["X"].X + pos["Z"].X) / 2
	mean := (pos["X"].X + pos["Y"].X + pos["Z"].X) / 3
	if nearlyEqual(mid, mean) {
		t.Fatal("degenerate fixture: midpoint equals mean, invariant not exercised")
	}
	if !nearlyEqual(pos["P"].X, mid) {
		t.Errorf("P.x = %v, want first/last midpoint %v (mean is %v)", pos["P"].X, mid, mean)
	}
}

// --- Geometry ---

func TestComputeLeafRow(t *testing.T) {
	tr := NewTree("t1", "R", "Root")
	tr.Add("R", "a", "a")
	tr.Add("R", "b", "b")
	tr.Add("R", "c", "c")

	l := DefaultLayout()
	pos := l.Compute(tr)

	// Leaves advance by NodeWidth + SiblingSpacing.
	wantStep := l.NodeWidth + l.SiblingSpacing
	if !nearlyEqual(pos["b"].X-pos["a"].X, wantStep) || !nearlyEqual(pos["c"].X-pos["b"].X, wantStep) {
		t.Errorf("leaf centers %v %v %v, want step %v", pos["a"].X, pos["b"].X, pos["c"].X, wantStep)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !nearlyEqual(pos[id].Y, l.TopMargin+l.LevelHeight) {
			t.Errorf("%s.Y = %v, want %v", id, pos[id].Y, l.TopMargin+l.LevelHeight)
		}
	}
}

func TestComputeDepthRows(t *testing.T) {
	tr := NewTree("t1", "n0", "n0")
	for i := 1; i < 5; i++ {
		tr.Add("n"+string(rune('0'+i-1)), "n"+string(rune('0'+i)), "n")
	}
	l := DefaultLayout()
	pos := l.Compute(tr)
	for i := 0; i < 5; i++ {
		id := "n" + string(rune('0'+i))
		want := l.TopMargin + float64(i)*l.LevelHeight
		if !nearlyEqual(pos[id].Y, want) {
			t.Errorf("%s.Y = %v, want %v", id, pos[id].Y, want)
		}
		// A vertical chain shares one center line.
		if !nearlyEqual(pos[id].X, pos["n0"].X) {
			t.Errorf("%s.X = %v, want %v", id, pos[id].X, pos["n0"].X)
		}
	}
}

func TestComputeCustomGeometry(t *testing.T) {
	tr := NewTree("t1", "R", "R")
	tr.Add("R", "a", "a")
	tr.Add("R", "b", "b")

	l := Layout{NodeWidth: 100, LevelHeight: 50, SiblingSpacing: 20, TopMargin: 10}
	pos := l.Compute(tr)

	if !nearlyEqual(pos["a"].X, 50) || !nearlyEqual(pos["b"].X, 170) {
		t.Errorf("a.X = %v, b.X = %v, want 50, 170", pos["a"].X, pos["b"].X)
	}
	if !nearlyEqual(pos["R"].Y, 10) || !nearlyEqual(pos["a"].Y, 60) {
		t.Errorf("R.Y = %v, a.Y = %v, want 10, 60", pos["R"].Y, pos["a"].Y)
	}
}

func TestComputeZeroValueLayout(t *testing.T) {
	var l Layout
	pos := l.Compute(buildSampleTree())
	want := DefaultLayout().Compute(buildSampleTree())
	for id, w := range want {
		if got := pos[id]; !nearlyEqual(got.X, w.X) || !nearlyEqual(got.Y, w.Y) {
			t.Errorf("node %s: zero-value layout %v, defaults %v", id, got, w)
		}
	}
}

// --- Malformed input ---

func TestComputeSkipsDanglingChild(t *testing.T) {
	tr := buildSampleTree()
	tr.Nodes["B"].Children = []string{"ghost"}
	pos := DefaultLayout().Compute(tr)
	if len(pos) != 4 {
		t.Errorf("got %d positions, want 4", len(pos))
	}
	if _, ok := pos["ghost"]; ok {
		t.Error("dangling id should not receive a position")
	}
}

func TestComputeCycleGuard(t *testing.T) {
	tr := buildSampleTree()
	tr.Nodes["C"].Children = []string{"R"}
	pos := DefaultLayout().Compute(tr)
	if len(pos) != 4 {
		t.Errorf("got %d positions, want 4", len(pos))
	}
	// The cycle edge is skipped, so positions match the well-formed tree.
	want := DefaultLayout().Compute(buildSampleTree())
	for id, w := range want {
		if got := pos[id]; !nearlyEqual(got.X, w.X) || !nearlyEqual(got.Y, w.Y) {
			t.Errorf("node %s: %v, want %v", id, got, w)
		}
	}
}

func TestComputeMissingRoot(t *testing.T) {
	tr := &Tree{ID: "t1", Root: "nope", Nodes: map[string]*TreeNode{}}
	pos := DefaultLayout().Compute(tr)
	if len(pos) != 0 {
		t.Errorf("got %d positions, want 0", len(pos))
	}
}

func BenchmarkComputeAutoLayout(b *testing.B) {
	// Three levels of fanout 6: 259 nodes.
	tr := NewTree("bench", "root", "Root")
	level := []string{"root"}
	id := 0
	for depth := 0; depth < 3; depth++ {
		var next []string
		for _, p := range level {
			for i := 0; i < 6; i++ {
				id++
				c := "n" + strconv.Itoa(id)
				tr.Add(p, c, c)
				next = append(next, c)
			}
		}
		level = next
	}
	l := DefaultLayout()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Compute(tr)
	}
}
