package bramble

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Callback contexts ---

// PointerContext carries pointer event data.
type PointerContext struct {
	Element   *Element
	WorldX    float64
	WorldY    float64
	ScreenX   float64
	ScreenY   float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// ClickContext carries click event data.
type ClickContext struct {
	Element   *Element
	WorldX    float64
	WorldY    float64
	ScreenX   float64
	ScreenY   float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// DragContext carries drag event data. Start coordinates are where the
// pointer was pressed; deltas are relative to the previous drag event.
type DragContext struct {
	Element   *Element
	WorldX    float64
	WorldY    float64
	StartX    float64
	StartY    float64
	DeltaX    float64
	DeltaY    float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// --- Element ---

// Element is one retained visual on a Surface: a conversation box or a
// parent→child connection ribbon. A single flat struct covers both kinds to
// avoid interface dispatch on the render and hit-test paths.
type Element struct {
	// Identity. Boxes carry their tree node id; ribbons carry the child
	// node's id (an edge is identified by its child end).
	ID   string
	Type ElementType

	// Box geometry: center position and size in world coordinates.
	X, Y          float64
	Width, Height float64

	// Content and visual attributes.
	Title string
	lines []string // wrapped title lines, recomputed when the box is sized
	Color Color
	Shape string

	Alpha        float64
	Visible      bool
	Interactable bool
	Active       bool // active-node highlight (boxes)
	Hovered      bool

	// Ribbon geometry. From is the parent's bottom-center, To the child's
	// top-center; ctrl1/ctrl2 are the cubic control points. The label sits at
	// the literal midpoint of From and To.
	ParentID       string
	From, To       Vec2
	ctrl1, ctrl2   Vec2
	Label          string
	labelPos       Vec2
	labelW, labelH float64
	verts          []ebiten.Vertex
	inds           []uint16
	samples        []Vec2 // reused curve sample buffer

	// Per-element callbacks (nil by default; zero cost when unused).
	OnPointerDown  func(PointerContext)
	OnPointerUp    func(PointerContext)
	OnPointerMove  func(PointerContext)
	OnClick        func(ClickContext)
	OnDragStart    func(DragContext)
	OnDrag         func(DragContext)
	OnDragEnd      func(DragContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)

	// teardown is the ownership record for whatever interaction state was
	// attached when the element was created. Dispose invokes it exactly once;
	// every removal path goes through Dispose.
	teardown func()

	// clickMuteUntil suppresses the click that would otherwise follow a
	// completed drag on this element.
	clickMuteUntil time.Time

	disposed bool
}

func elementDefaults(e *Element) {
	e.Alpha = 1
	e.Visible = true
	e.Interactable = true
}

// NewBox creates a box element for the given tree node id.
func NewBox(id string) *Element {
	e := &Element{ID: id, Type: ElementBox, Color: ColorBoxFill}
	elementDefaults(e)
	return e
}

// NewRibbon creates a connection element for the edge parentID→childID.
func NewRibbon(childID, parentID string) *Element {
	e := &Element{ID: childID, Type: ElementRibbon, ParentID: parentID, Color: ColorRibbon}
	elementDefaults(e)
	return e
}

// Bounds returns the box's world-space rectangle. Ribbons have no single
// rectangle; their hit area is the curve and the label.
func (e *Element) Bounds() Rect {
	return Rect{
		X:      e.X - e.Width/2,
		Y:      e.Y - e.Height/2,
		Width:  e.Width,
		Height: e.Height,
	}
}

// labelBounds returns the label's world-space rectangle, zero when unlabeled.
func (e *Element) labelBounds() Rect {
	if e.Label == "" {
		return Rect{}
	}
	return Rect{
		X:      e.labelPos.X - e.labelW/2,
		Y:      e.labelPos.Y - e.labelH/2,
		Width:  e.labelW,
		Height: e.labelH,
	}
}

// contains reports whether the world point lies on this element: inside the
// rectangle for boxes, on the label or near the sampled curve for ribbons.
func (e *Element) contains(wx, wy float64) bool {
	switch e.Type {
	case ElementBox:
		return e.Bounds().Contains(wx, wy)
	case ElementRibbon:
		if e.Label != "" && e.labelBounds().Contains(wx, wy) {
			return true
		}
		return polylineNear(e.samples, wx, wy, ribbonHitSlop)
	}
	return false
}

// Dispose marks the element dead, invokes its teardown record, and detaches
// every callback so nothing fires on a removed element.
func (e *Element) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	if e.teardown != nil {
		e.teardown()
		e.teardown = nil
	}
	e.verts = nil
	e.inds = nil
	e.samples = nil
	e.lines = nil
	e.OnPointerDown = nil
	e.OnPointerUp = nil
	e.OnPointerMove = nil
	e.OnClick = nil
	e.OnDragStart = nil
	e.OnDrag = nil
	e.OnDragEnd = nil
	e.OnPointerEnter = nil
	e.OnPointerLeave = nil
}

// IsDisposed returns true if this element has been disposed.
func (e *Element) IsDisposed() bool {
	return e.disposed
}

// --- Box sizing ---

// Box sizing constants. Width clamps between boxMinWidth and boxMaxWidth
// around the measured title; height grows in boxLineStep increments when the
// title wraps. boxMaxWidth equals the layout step (NodeWidth plus spacing) so
// neighboring boxes at maximum width just touch.
const (
	boxMinWidth   = 120.0
	boxMaxWidth   = 200.0
	boxPaddingX   = 16.0
	boxBaseHeight = 44.0
	boxLineStep   = 18.0

	// Fallback title size used when no measurement context exists; it sizes
	// the default box to DefaultNodeWidth × boxBaseHeight.
	fallbackTitleWidth  = DefaultNodeWidth - 2*boxPaddingX
	fallbackTitleHeight = 16.0
)

// sizeBox measures a title through the cache and derives the box dimensions
// and wrapped lines. Layout is already fixed at this point; sizing affects
// only the drawn box.
func sizeBox(cache *MeasureCache, font Font, title string) (w, h float64, lines []string) {
	tw, _ := cache.Measure(font, title)
	w = tw + 2*boxPaddingX
	if w < boxMinWidth {
		w = boxMinWidth
	}
	if w > boxMaxWidth {
		w = boxMaxWidth
	}
	lines = wrapTitle(font, title, w-2*boxPaddingX)
	h = boxBaseHeight
	if len(lines) > 1 {
		h += float64(len(lines)-1) * boxLineStep
	}
	return w, h, lines
}
