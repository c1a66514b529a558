package bramble

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	// Minimum world extent of a surface. A layout reset never shrinks the
	// surface below this, so small trees still leave room to pan around.
	minSurfaceWidth  = 1200.0
	minSurfaceHeight = 800.0

	// surfaceMargin pads the content extent when the surface is resized
	// or grown to fit it.
	surfaceMargin = 200.0
)

// --- Surface ---

// Surface is one render container for the graph: an element arena, a
// camera, and per-surface input state. Create surfaces through
// Graph.AddSurface; Graph.Render draws the current tree into whichever
// surface it names.
//
// Boxes are keyed by tree node id and ribbons by the child id of their
// edge, so a node owns at most one box and one incoming ribbon. The
// order slices record insertion order, which is paint order: later
// elements draw on top and hit-test first.
type Surface struct {
	id    string
	debug bool

	boxes       map[string]*Element
	ribbons     map[string]*Element
	boxOrder    []string
	ribbonOrder []string

	// bounds is the world extent the camera may scroll over. Rendering
	// grows it to fit content; a layout reset recomputes it from scratch.
	bounds Rect

	camera *Camera

	// Input state. One logical pointer: the mouse, or the first active touch.
	handlers     handlerRegistry
	pointer      pointerState
	captured     *Element
	dragDeadZone float64
	touchID      ebiten.TouchID
	touchActive  bool
	touchBuf     []ebiten.TouchID
	injected     []syntheticPointerEvent

	anims []*TweenGroup

	// Drawing resources handed down by the owning Graph.
	font    Font
	cache   *MeasureCache
	scratch drawBuffer

	// ScreenshotDir is where queued screenshots are written as PNG files.
	ScreenshotDir   string
	screenshotQueue []string

	now func() time.Time
}

// newSurface creates a surface with the given viewport size in screen pixels.
// The initial world bounds match the viewport, floored at the minimum extent.
func newSurface(id string, viewW, viewH float64) *Surface {
	s := &Surface{
		id:            id,
		boxes:         make(map[string]*Element),
		ribbons:       make(map[string]*Element),
		dragDeadZone:  defaultDragDeadZone,
		ScreenshotDir: "screenshots",
		now:           time.Now,
	}
	s.camera = newCamera(Rect{Width: viewW, Height: viewH})
	w := viewW
	if w < minSurfaceWidth {
		w = minSurfaceWidth
	}
	h := viewH
	if h < minSurfaceHeight {
		h = minSurfaceHeight
	}
	s.setBounds(Rect{Width: w, Height: h})
	s.camera.X = w / 2
	s.camera.Y = h / 2
	return s
}

// ID returns the surface identifier used with Graph.Render.
func (s *Surface) ID() string {
	return s.id
}

// Camera returns the surface's camera for panning and zooming.
func (s *Surface) Camera() *Camera {
	return s.camera
}

// Bounds returns the current world extent of the surface.
func (s *Surface) Bounds() Rect {
	return s.bounds
}

// setBounds replaces the world extent and re-clamps the camera to it.
func (s *Surface) setBounds(r Rect) {
	s.bounds = r
	s.camera.SetBounds(r)
	s.camera.ClampToBounds()
}

// --- Element arena ---

// Box returns the box element for a tree node id, or nil.
func (s *Surface) Box(id string) *Element {
	return s.boxes[id]
}

// Ribbon returns the ribbon element keyed by the child id of its edge, or nil.
func (s *Surface) Ribbon(childID string) *Element {
	return s.ribbons[childID]
}

func (s *Surface) addBox(e *Element) {
	if s.debug {
		debugCheckDisposed(e, "addBox")
	}
	if _, ok := s.boxes[e.ID]; ok {
		panic("bramble: duplicate box id " + e.ID)
	}
	s.boxes[e.ID] = e
	s.boxOrder = append(s.boxOrder, e.ID)
}

func (s *Surface) addRibbon(e *Element) {
	if s.debug {
		debugCheckDisposed(e, "addRibbon")
	}
	if _, ok := s.ribbons[e.ID]; ok {
		panic("bramble: duplicate ribbon id " + e.ID)
	}
	s.ribbons[e.ID] = e
	s.ribbonOrder = append(s.ribbonOrder, e.ID)
}

// removeBox disposes the box for id and drops it from the arena.
// No-op if the id is unknown.
func (s *Surface) removeBox(id string) {
	e, ok := s.boxes[id]
	if !ok {
		return
	}
	delete(s.boxes, id)
	s.boxOrder = removeID(s.boxOrder, id)
	s.clearPointerRefs(e)
	e.Dispose()
}

// removeRibbon disposes the ribbon keyed by childID and drops it from the arena.
// No-op if the id is unknown.
func (s *Surface) removeRibbon(childID string) {
	e, ok := s.ribbons[childID]
	if !ok {
		return
	}
	delete(s.ribbons, childID)
	s.ribbonOrder = removeID(s.ribbonOrder, childID)
	s.clearPointerRefs(e)
	e.Dispose()
}

// clear disposes every element and empties the arena. Used by full rebuilds.
func (s *Surface) clear() {
	for _, id := range s.ribbonOrder {
		if e := s.ribbons[id]; e != nil {
			s.clearPointerRefs(e)
			e.Dispose()
		}
	}
	for _, id := range s.boxOrder {
		if e := s.boxes[id]; e != nil {
			s.clearPointerRefs(e)
			e.Dispose()
		}
	}
	s.boxes = make(map[string]*Element)
	s.ribbons = make(map[string]*Element)
	s.boxOrder = s.boxOrder[:0]
	s.ribbonOrder = s.ribbonOrder[:0]
	s.anims = s.anims[:0]
}

// removeID removes the first occurrence of id from s, preserving order.
func removeID(s []string, id string) []string {
	for i := range s {
		if s[i] == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = ""
			return s[:len(s)-1]
		}
	}
	return s
}

// clearPointerRefs drops any input-state references to a dying element so
// the machine cannot dispatch to it after disposal.
func (s *Surface) clearPointerRefs(e *Element) {
	if s.captured == e {
		s.captured = nil
	}
	if s.pointer.hit == e {
		s.pointer.hit = nil
	}
	if s.pointer.hover == e {
		s.pointer.hover = nil
	}
}

// --- Hit testing ---

// elementAt returns the topmost interactable element under the world
// point. Boxes draw above ribbons, so boxes test first; within a kind,
// later elements paint on top and therefore test first.
func (s *Surface) elementAt(wx, wy float64) *Element {
	for i := len(s.boxOrder) - 1; i >= 0; i-- {
		e := s.boxes[s.boxOrder[i]]
		if e == nil || !e.Visible || !e.Interactable {
			continue
		}
		if e.contains(wx, wy) {
			return e
		}
	}
	for i := len(s.ribbonOrder) - 1; i >= 0; i-- {
		e := s.ribbons[s.ribbonOrder[i]]
		if e == nil || !e.Visible || !e.Interactable {
			continue
		}
		if e.contains(wx, wy) {
			return e
		}
	}
	return nil
}

// --- Bounds fitting ---

// contentBounds returns the union of all box rectangles. Ribbon geometry
// stays between its endpoint boxes, so boxes alone bound the content.
// ok is false when the surface holds no boxes.
func (s *Surface) contentBounds() (r Rect, ok bool) {
	for _, id := range s.boxOrder {
		e := s.boxes[id]
		if e == nil {
			continue
		}
		b := e.Bounds()
		if !ok {
			r = b
			ok = true
			continue
		}
		r = unionRect(r, b)
	}
	return r, ok
}

// growToFit expands the surface bounds so content plus the margin fits
// inside. Never shrinks.
func (s *Surface) growToFit(content Rect) {
	want := expandRect(content, surfaceMargin)
	have := unionRect(s.bounds, want)
	if have != s.bounds {
		s.setBounds(have)
	}
}

// resizeToFit recomputes the surface bounds from scratch: the content
// extent plus the margin, floored at the minimum surface size. Extra room
// beyond the margin extends right and down.
func (s *Surface) resizeToFit(content Rect) {
	r := expandRect(content, surfaceMargin)
	if r.Width < minSurfaceWidth {
		r.Width = minSurfaceWidth
	}
	if r.Height < minSurfaceHeight {
		r.Height = minSurfaceHeight
	}
	s.setBounds(r)
}

// unionRect returns the smallest rectangle containing both a and b.
func unionRect(a, b Rect) Rect {
	minX := a.X
	if b.X < minX {
		minX = b.X
	}
	minY := a.Y
	if b.Y < minY {
		minY = b.Y
	}
	maxX := a.X + a.Width
	if bx := b.X + b.Width; bx > maxX {
		maxX = bx
	}
	maxY := a.Y + a.Height
	if by := b.Y + b.Height; by > maxY {
		maxY = by
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// expandRect grows r by m on every side.
func expandRect(r Rect, m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}

// --- Frame update ---

// Update advances animations and processes input for one frame. Graph.Update
// calls this for every surface; call it directly only when driving a single
// surface without a Graph.
func (s *Surface) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	s.updateAnims(dt)
	s.camera.update(dt)
	s.processInput()
}

// addAnim registers a tween group to be advanced each frame.
func (s *Surface) addAnim(g *TweenGroup) {
	s.anims = append(s.anims, g)
}

// updateAnims advances all tween groups and compacts out finished ones.
func (s *Surface) updateAnims(dt float32) {
	kept := s.anims[:0]
	for _, g := range s.anims {
		g.Update(dt)
		if !g.Done {
			kept = append(kept, g)
		}
	}
	for i := len(kept); i < len(s.anims); i++ {
		s.anims[i] = nil
	}
	s.anims = kept
}
