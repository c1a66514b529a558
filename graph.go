package bramble

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Graph is the rendering engine for one conversation graph. It owns the
// surfaces, the measurement cache, the position override store, and the
// per-node drag records; the caller owns the tree snapshots and hands one to
// Render whenever the conversation changes.
//
// All methods must be called from the game loop goroutine.
type Graph struct {
	surfaces     map[string]*Surface
	surfaceOrder []string

	store  *OverrideStore
	cache  *MeasureCache
	font   Font
	layout Layout

	treeID          string
	activeID        string
	lastFingerprint string

	// manual mirrors the override record last loaded for treeID. Drag
	// commits mutate it and save it back, keeping the store authoritative.
	manual   map[string]Vec2
	isManual bool

	drag map[string]*dragState

	onNodeClick   func(nodeID string)
	onLabelClick  func(childID, parentID string)
	onLayoutReset func()

	testRunner  *TestRunner
	testSurface string

	debug bool
	stats debugStats
}

// dragState tracks one box's drag lifecycle between pointer events. Records
// are created when the reconciler attaches handlers and die with the element.
type dragState struct {
	dragging bool
	hasMoved bool
}

// Config carries Graph construction options. Every field is optional: a nil
// Store keeps overrides in memory only, a nil Font sizes boxes at a fixed
// fallback, and a zero Layout means the default spacing.
type Config struct {
	// Store persists manual position overrides between sessions.
	Store KVStore

	// Font measures titles and labels for box sizing and is used to draw
	// them. Implementations must be comparable (see MeasureCache).
	Font Font

	// Layout overrides the auto-layout spacing; zero fields keep defaults.
	Layout Layout

	// MeasureCacheSize caps the text measurement cache. Zero means
	// DefaultMeasureCacheSize.
	MeasureCacheSize int

	// OnNodeClick fires when a box is clicked (never directly after a drag).
	OnNodeClick func(nodeID string)

	// OnConnectionLabelClick fires when a ribbon's label is clicked.
	OnConnectionLabelClick func(childID, parentID string)

	// OnLayoutReset fires after ResetToAutoLayout has cleared overrides,
	// so the application can re-render with automatic positions.
	OnLayoutReset func()
}

// New creates an empty Graph. Add at least one surface before rendering.
func New(cfg Config) *Graph {
	kv := cfg.Store
	if kv == nil {
		kv = NewMemStore()
	}
	return &Graph{
		surfaces:      make(map[string]*Surface),
		store:         NewOverrideStore(kv),
		cache:         NewMeasureCache(cfg.MeasureCacheSize),
		font:          cfg.Font,
		layout:        cfg.Layout.withDefaults(),
		manual:        make(map[string]Vec2),
		drag:          make(map[string]*dragState),
		onNodeClick:   cfg.OnNodeClick,
		onLabelClick:  cfg.OnConnectionLabelClick,
		onLayoutReset: cfg.OnLayoutReset,
	}
}

// --- Surfaces ---

// AddSurface registers a drawing surface with a viewport of viewW by viewH
// screen pixels and returns it. Panics on a duplicate id.
func (g *Graph) AddSurface(id string, viewW, viewH float64) *Surface {
	if _, exists := g.surfaces[id]; exists {
		panic(fmt.Sprintf("bramble: duplicate surface id %q", id))
	}
	s := newSurface(id, viewW, viewH)
	s.debug = g.debug
	s.font = g.font
	s.cache = g.cache
	g.surfaces[id] = s
	g.surfaceOrder = append(g.surfaceOrder, id)
	return s
}

// Surface returns a registered surface, or nil.
func (g *Graph) Surface(id string) *Surface {
	return g.surfaces[id]
}

// --- Current tree and node ---

// SetCurrentTree switches the override namespace to treeID and forces the
// next Render to rebuild from scratch. Rendering a tree whose ID differs from
// the current one switches implicitly; calling this first is only needed when
// the caller wants the switch to happen before the next snapshot arrives.
func (g *Graph) SetCurrentTree(treeID string) {
	if treeID == g.treeID {
		return
	}
	g.treeID = treeID
	g.lastFingerprint = ""
	g.manual = make(map[string]Vec2)
	g.isManual = false
	g.activeID = ""
}

// SetCurrentNode marks nodeID as the active conversation node. Existing boxes
// restyle in place; no reconciliation runs. An empty id clears the highlight.
func (g *Graph) SetCurrentNode(nodeID string) {
	if nodeID == g.activeID {
		return
	}
	g.activeID = nodeID
	for _, s := range g.surfaces {
		for _, id := range s.boxOrder {
			s.boxes[id].Active = id == nodeID
		}
	}
}

// FocusNode glides the surface camera to a node's box. Unknown surfaces and
// nodes are warned and skipped.
func (g *Graph) FocusNode(surfaceID, nodeID string) {
	s := g.surfaces[surfaceID]
	if s == nil {
		warnf("focus in unknown surface %q", surfaceID)
		return
	}
	e := s.Box(nodeID)
	if e == nil {
		warnf("focus on unknown node %q in surface %q", nodeID, surfaceID)
		return
	}
	s.camera.ScrollTo(e.X, e.Y, cameraFocusTime, ease.OutQuad)
}

// --- Rendering ---

// Render lays out the snapshot and patches the surface's elements to match.
// The structural fingerprint decides between an incremental update, which
// preserves element identity, and a full rebuild. A nil tree or an unknown
// surface id is warned and ignored; Render never fails.
func (g *Graph) Render(t *Tree, surfaceID string) {
	if t == nil {
		warnf("render of nil tree ignored")
		return
	}
	s := g.surfaces[surfaceID]
	if s == nil {
		warnf("render into unknown surface %q", surfaceID)
		return
	}
	if t.ID != g.treeID {
		g.SetCurrentTree(t.ID)
	}
	debugCheckNodeCount(t)

	var stats debugStats

	begin := time.Now()
	fp := Fingerprint(t)
	stats.fingerprintTime = time.Since(begin)

	full := g.lastFingerprint == "" || fp != g.lastFingerprint
	stats.fullRebuild = full

	begin = time.Now()
	auto := g.layout.Compute(t)
	stats.layoutTime = time.Since(begin)

	overrides, isManual := g.store.Load(g.treeID)
	if overrides == nil {
		overrides = make(map[string]Vec2)
	}
	g.manual = overrides
	g.isManual = isManual
	positions := mergePositions(t, auto, g.manual, g.isManual)

	begin = time.Now()
	g.reconcile(t, positions, s, full)
	stats.reconcileTime = time.Since(begin)

	if content, ok := s.contentBounds(); ok {
		s.growToFit(content)
	}
	g.lastFingerprint = fp

	stats.boxCount = len(s.boxOrder)
	stats.ribbonCount = len(s.ribbonOrder)
	g.stats = stats
	g.debugLog(stats)
}

// commitOverride records a dragged box's resting position, persists the
// override set, and widens the surface if the box was parked outside it.
func (g *Graph) commitOverride(s *Surface, e *Element) {
	g.manual[e.ID] = Vec2{X: e.X, Y: e.Y}
	g.isManual = true
	g.store.Save(g.treeID, g.manual, true)
	if content, ok := s.contentBounds(); ok {
		s.growToFit(content)
	}
}

// ResetToAutoLayout discards every manual override for the current tree and
// resizes each surface to fit its content. The boxes themselves do not move
// until the application re-renders, which the OnLayoutReset callback asks it
// to do.
func (g *Graph) ResetToAutoLayout() {
	g.store.Clear(g.treeID)
	g.manual = make(map[string]Vec2)
	g.isManual = false
	for _, id := range g.surfaceOrder {
		s := g.surfaces[id]
		if content, ok := s.contentBounds(); ok {
			s.resizeToFit(content)
		} else {
			s.setBounds(Rect{Width: minSurfaceWidth, Height: minSurfaceHeight})
		}
	}
	if g.onLayoutReset != nil {
		g.onLayoutReset()
	}
}

// --- Frame hooks ---

// Update advances every surface: input, camera scrolling, animations.
// Call once per game tick.
func (g *Graph) Update() {
	if g.testRunner != nil {
		if s := g.surfaces[g.testSurface]; s != nil {
			g.testRunner.step(g, s)
		}
	}
	for _, id := range g.surfaceOrder {
		g.surfaces[id].Update()
	}
}

// Draw renders one surface onto screen. Unknown ids are warned and skipped.
func (g *Graph) Draw(surfaceID string, screen *ebiten.Image) {
	s := g.surfaces[surfaceID]
	if s == nil {
		warnf("draw of unknown surface %q", surfaceID)
		return
	}
	s.Draw(screen)
}

// SetDebugMode toggles per-render logging, disposed-element checks, and the
// tree depth and node count warnings for all surfaces.
func (g *Graph) SetDebugMode(enabled bool) {
	g.debug = enabled
	for _, s := range g.surfaces {
		s.debug = enabled
	}
}
