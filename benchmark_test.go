package bramble

import (
	"strconv"
	"testing"
)

// setupBenchTree builds a balanced tree: fanout children per node, depth
// levels below the root. Node count is 1 + f + f^2 + ... + f^depth.
func setupBenchTree(fanout, depth int) *Tree {
	tr := NewTree("bench", "root", "Root")
	level := []string{"root"}
	id := 0
	for d := 0; d < depth; d++ {
		var next []string
		for _, p := range level {
			for i := 0; i < fanout; i++ {
				id++
				c := "n" + strconv.Itoa(id)
				tr.Add(p, c, "Node "+strconv.Itoa(id))
				next = append(next, c)
			}
		}
		level = next
	}
	return tr
}

// setupBenchGraph renders tr once so benchmarks start from a populated
// surface with a warm fingerprint.
func setupBenchGraph(tr *Tree) (*Graph, *Surface) {
	g := New(Config{})
	s := g.AddSurface("bench", 1280, 720)
	g.Render(tr, "bench")
	return g, s
}

// --- Render Benchmarks ---

func BenchmarkRender_SteadyState_259Nodes(b *testing.B) {
	tr := setupBenchTree(6, 3)
	g, _ := setupBenchGraph(tr)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.Render(tr, "bench")
	}
}

func BenchmarkRender_TitleChurn_259Nodes(b *testing.B) {
	tr := setupBenchTree(6, 3)
	g, _ := setupBenchGraph(tr)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		// Titles change but structure does not: the incremental path with
		// every box dirty.
		if i%2 == 0 {
			tr.Nodes["n1"].Title = "Changed"
		} else {
			tr.Nodes["n1"].Title = "Node 1"
		}
		g.Render(tr, "bench")
	}
}

// --- Reconcile Benchmarks ---

func BenchmarkReconcile_Incremental_259Nodes(b *testing.B) {
	tr := setupBenchTree(6, 3)
	g, s := setupBenchGraph(tr)
	pos := g.layout.Compute(tr)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.reconcile(tr, pos, s, false)
	}
}

func BenchmarkReconcile_FullRebuild_259Nodes(b *testing.B) {
	tr := setupBenchTree(6, 3)
	g, s := setupBenchGraph(tr)
	pos := g.layout.Compute(tr)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.reconcile(tr, pos, s, true)
	}
}

// --- Tree Traversal Benchmarks ---

func BenchmarkTreeWalk_1555Nodes(b *testing.B) {
	tr := setupBenchTree(6, 4)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tr.walk(func(string, *TreeNode, int) {})
	}
}

func BenchmarkParentIndex_1555Nodes(b *testing.B) {
	tr := setupBenchTree(6, 4)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tr.parentIndex()
	}
}

// --- Hit Testing Benchmarks ---

func BenchmarkHitTest_1111Boxes(b *testing.B) {
	tr := setupBenchTree(10, 3)
	_, s := setupBenchGraph(tr)
	// A leaf box center: the reverse paint-order scan finds it early.
	e := s.boxes[s.boxOrder[len(s.boxOrder)-1]]

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.elementAt(e.X, e.Y)
	}
}

func BenchmarkHitTest_1111Boxes_Miss(b *testing.B) {
	tr := setupBenchTree(10, 3)
	_, s := setupBenchGraph(tr)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		// Far outside the content: every element is scanned.
		s.elementAt(-10000, -10000)
	}
}

// --- Camera Benchmarks ---

func BenchmarkCameraMatrix_Dirty(b *testing.B) {
	c := newCamera(Rect{Width: 1280, Height: 720})
	c.X, c.Y = 640, 360

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.MarkDirty()
		c.computeViewMatrix()
	}
}

func BenchmarkCameraMatrix_Clean(b *testing.B) {
	c := newCamera(Rect{Width: 1280, Height: 720})
	c.X, c.Y = 640, 360
	c.computeViewMatrix()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.computeViewMatrix()
	}
}

// --- Text Benchmarks ---

func BenchmarkWrapTitle(b *testing.B) {
	f := FixedFont{Advance: 7, Height: 14}
	const s = "The quick brown fox jumps over the lazy dog while the miller's " +
		"cart rattles across the old stone bridge toward the market square"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		wrapTitle(f, s, 160)
	}
}
