package bramble

import (
	"fmt"
	"os"
	"time"
)

// warnf prints a recoverable-condition warning to stderr. Rendering never
// fails on these paths; the warning is the whole of the error handling.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[bramble] warning: "+format+"\n", args...)
}

// debugStats holds per-render timing and element metrics.
// Only populated when Graph.debug is true.
type debugStats struct {
	fingerprintTime time.Duration
	layoutTime      time.Duration
	reconcileTime   time.Duration
	fullRebuild     bool
	boxCount        int
	ribbonCount     int
}

// debugLog prints render timing and element counts to stderr.
func (g *Graph) debugLog(stats debugStats) {
	if !g.debug {
		return
	}
	total := stats.fingerprintTime + stats.layoutTime + stats.reconcileTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[bramble] fingerprint: %v | layout: %v | reconcile: %v | total: %v | full: %v\n",
		stats.fingerprintTime, stats.layoutTime, stats.reconcileTime, total, stats.fullRebuild)
	_, _ = fmt.Fprintf(os.Stderr,
		"[bramble] boxes: %d | ribbons: %d\n",
		stats.boxCount, stats.ribbonCount)
}

// debugCheckDisposed panics with a descriptive message when a disposed element
// is used in a surface operation. Only called when the owning surface is in
// debug mode. In release mode callers skip this entirely.
func debugCheckDisposed(e *Element, op string) {
	if e.disposed {
		panic(fmt.Sprintf("bramble debug: %s on disposed element %q", op, e.ID))
	}
}

// debugMaxTreeDepth is the depth beyond which the layout pass warns on stderr.
// Conversation trees deeper than this still render; the warning flags runaway
// branching or a cycle the validator did not see.
const debugMaxTreeDepth = 64

func debugCheckTreeDepth(id string, depth int) {
	if depth > debugMaxTreeDepth {
		warnf("tree depth %d exceeds %d (node %q)", depth, debugMaxTreeDepth, id)
	}
}

// debugMaxNodeCount warns when a snapshot carries more nodes than the surface
// can usefully show.
const debugMaxNodeCount = 5000

func debugCheckNodeCount(t *Tree) {
	if len(t.Nodes) > debugMaxNodeCount {
		warnf("tree %q has %d nodes (threshold %d)", t.ID, len(t.Nodes), debugMaxNodeCount)
	}
}
