package bramble

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected to a pipe and returns
// everything written to it.
func captureStderr(fn func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestWarnfFormat(t *testing.T) {
	out := captureStderr(func() {
		warnf("layout store unavailable: %v", "disk gone")
	})
	want := "[bramble] warning: layout store unavailable: disk gone\n"
	if out != want {
		t.Errorf("warnf output = %q, want %q", out, want)
	}
}

func TestDebugModeDisposedElementPanics(t *testing.T) {
	g, s := newTestGraph()
	g.SetDebugMode(true)

	e := NewBox("x")
	e.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on addBox with a disposed element, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	s.addBox(e)
}

func TestReleaseModeDisposedElementNoPanic(t *testing.T) {
	_, s := newTestGraph()

	e := NewBox("x")
	e.Dispose()

	// Release mode skips the check; the element is broken but nothing
	// crashes, matching the engine's recover-and-warn posture.
	s.addBox(e)
	if s.Box("x") != e {
		t.Error("element should still be registered")
	}
}

func TestTreeDepthWarning(t *testing.T) {
	tr := NewTree("t", "n0", "Node 0")
	for i := 1; i <= debugMaxTreeDepth+2; i++ {
		tr.Add(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i), "Node")
	}

	out := captureStderr(func() {
		tr.walk(func(string, *TreeNode, int) {})
	})
	if !strings.Contains(out, "warning: tree depth") {
		t.Errorf("expected a tree depth warning, got: %q", out)
	}
}

func TestNodeCountWarning(t *testing.T) {
	tr := NewTree("t", "R", "Root")
	for i := 0; i < debugMaxNodeCount; i++ {
		tr.Add("R", fmt.Sprintf("n%d", i), "Node")
	}

	out := captureStderr(func() {
		debugCheckNodeCount(tr)
	})
	if !strings.Contains(out, "nodes") {
		t.Errorf("expected a node count warning, got: %q", out)
	}
}

func TestDebugLogGatedByFlag(t *testing.T) {
	g, _ := newTestGraph()

	out := captureStderr(func() {
		g.debugLog(debugStats{boxCount: 3})
	})
	if out != "" {
		t.Errorf("debugLog should be silent with debug off, got: %q", out)
	}

	g.SetDebugMode(true)
	out = captureStderr(func() {
		g.debugLog(debugStats{boxCount: 3, ribbonCount: 2})
	})
	if !strings.Contains(out, "boxes: 3") || !strings.Contains(out, "ribbons: 2") {
		t.Errorf("debug log missing counts: %q", out)
	}
}
