package bramble

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	// defaultDragDeadZone is the minimum pointer travel in screen pixels
	// before a press turns into a drag. Measured in screen space so the
	// gesture threshold feels the same at every zoom level.
	defaultDragDeadZone = 4.0

	// clickMuteDuration suppresses the click that trails a completed drag.
	clickMuteDuration = 150 * time.Millisecond

	// zoomWheelFactor is the zoom multiplier per wheel notch.
	zoomWheelFactor = 1.1
)

// --- Pointer state ---

// pointerState tracks the single logical pointer through the
// idle → down → dragging → released cycle. Both coordinate spaces are
// recorded at press time: world coordinates position elements, screen
// coordinates measure the drag dead zone.
type pointerState struct {
	down     bool
	startWX  float64
	startWY  float64
	startSX  float64
	startSY  float64
	lastWX   float64
	lastWY   float64
	lastSX   float64
	lastSY   float64
	hit      *Element
	hover    *Element
	dragging bool
	button   MouseButton // button captured at press time
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type clickHandler struct {
	id uint32
	fn func(ClickContext)
}

type dragHandler struct {
	id uint32
	fn func(DragContext)
}

type handlerRegistry struct {
	pointerDown  []pointerHandler
	pointerUp    []pointerHandler
	pointerMove  []pointerHandler
	pointerEnter []pointerHandler
	pointerLeave []pointerHandler
	click        []clickHandler
	dragStart    []dragHandler
	drag         []dragHandler
	dragEnd      []dragHandler
	nextID       uint32
}

// CallbackHandle allows removing a registered surface-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removePointerHandler(h.reg.pointerDown, h.id)
	case EventPointerUp:
		h.reg.pointerUp = removePointerHandler(h.reg.pointerUp, h.id)
	case EventPointerMove:
		h.reg.pointerMove = removePointerHandler(h.reg.pointerMove, h.id)
	case EventPointerEnter:
		h.reg.pointerEnter = removePointerHandler(h.reg.pointerEnter, h.id)
	case EventPointerLeave:
		h.reg.pointerLeave = removePointerHandler(h.reg.pointerLeave, h.id)
	case EventClick:
		h.reg.click = removeClickHandler(h.reg.click, h.id)
	case EventDragStart:
		h.reg.dragStart = removeDragHandler(h.reg.dragStart, h.id)
	case EventDrag:
		h.reg.drag = removeDragHandler(h.reg.drag, h.id)
	case EventDragEnd:
		h.reg.dragEnd = removeDragHandler(h.reg.dragEnd, h.id)
	}
}

func removePointerHandler(s []pointerHandler, id uint32) []pointerHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeClickHandler(s []clickHandler, id uint32) []clickHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = clickHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeDragHandler(s []dragHandler, id uint32) []dragHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = dragHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Surface-level event registration ---

// OnPointerDown registers a surface-level callback for pointer down events.
func (s *Surface) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerDown = append(s.handlers.pointerDown, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerDown}
}

// OnPointerUp registers a surface-level callback for pointer up events.
func (s *Surface) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerUp = append(s.handlers.pointerUp, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerUp}
}

// OnPointerMove registers a surface-level callback for pointer move events.
func (s *Surface) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerMove = append(s.handlers.pointerMove, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerMove}
}

// OnPointerEnter registers a surface-level callback for pointer enter events.
// Fired when the pointer moves over a new element (or from nil to an element).
func (s *Surface) OnPointerEnter(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerEnter = append(s.handlers.pointerEnter, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerEnter}
}

// OnPointerLeave registers a surface-level callback for pointer leave events.
// Fired when the pointer leaves an element (moves to a different element or
// to empty space).
func (s *Surface) OnPointerLeave(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerLeave = append(s.handlers.pointerLeave, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerLeave}
}

// OnClick registers a surface-level callback for click events.
func (s *Surface) OnClick(fn func(ClickContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.click = append(s.handlers.click, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventClick}
}

// OnDragStart registers a surface-level callback for drag start events.
func (s *Surface) OnDragStart(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.dragStart = append(s.handlers.dragStart, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDragStart}
}

// OnDrag registers a surface-level callback for drag events.
func (s *Surface) OnDrag(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.drag = append(s.handlers.drag, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDrag}
}

// OnDragEnd registers a surface-level callback for drag end events.
func (s *Surface) OnDragEnd(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.dragEnd = append(s.handlers.dragEnd, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDragEnd}
}

// CapturePointer routes all pointer events to the given element until
// release or ReleasePointer.
func (s *Surface) CapturePointer(e *Element) {
	s.captured = e
}

// ReleasePointer stops routing events to a captured element.
func (s *Surface) ReleasePointer() {
	s.captured = nil
}

// SetDragDeadZone sets the minimum movement in screen pixels before a drag starts.
func (s *Surface) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// processInput pumps injected, touch, mouse, and wheel input through the
// pointer machine. Called from Surface.Update. One injected event is
// consumed per frame and suppresses real input for that frame; touch takes
// priority over the mouse while a touch is active so the two cannot fight
// over the single pointer.
func (s *Surface) processInput() {
	mods := readModifiers()
	s.camera.computeViewMatrix()

	if s.processInjected(mods) {
		return
	}
	if !s.processTouch(mods) {
		s.processMouse(mods)
	}
	s.processWheel()
}

// processMouse feeds the mouse cursor and buttons into the pointer machine.
func (s *Surface) processMouse(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)
	wx, wy := s.camera.ScreenToWorld(sx, sy)

	// Detect which button is pressed. If the pointer is already down, the
	// machine keeps the stored button for the rest of the interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	s.processPointer(wx, wy, sx, sy, pressed, button, mods)
}

// processTouch feeds the first active touch into the pointer machine and
// reports whether touch currently owns the pointer.
func (s *Surface) processTouch(mods KeyModifiers) bool {
	s.touchBuf = ebiten.AppendTouchIDs(s.touchBuf[:0])

	if s.touchActive {
		for _, tid := range s.touchBuf {
			if tid != s.touchID {
				continue
			}
			tx, ty := ebiten.TouchPosition(tid)
			sx, sy := float64(tx), float64(ty)
			wx, wy := s.camera.ScreenToWorld(sx, sy)
			s.processPointer(wx, wy, sx, sy, true, MouseButtonLeft, mods)
			return true
		}
		// The tracked touch lifted; release at its last position.
		ps := &s.pointer
		s.processPointer(ps.lastWX, ps.lastWY, ps.lastSX, ps.lastSY, false, MouseButtonLeft, mods)
		s.touchActive = false
		return true
	}

	if len(s.touchBuf) > 0 {
		s.touchID = s.touchBuf[0]
		s.touchActive = true
		tx, ty := ebiten.TouchPosition(s.touchID)
		sx, sy := float64(tx), float64(ty)
		wx, wy := s.camera.ScreenToWorld(sx, sy)
		s.processPointer(wx, wy, sx, sy, true, MouseButtonLeft, mods)
		return true
	}
	return false
}

// processWheel zooms the camera about the cursor on wheel input.
func (s *Surface) processWheel() {
	_, wheelY := ebiten.Wheel()
	if wheelY == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	s.camera.ZoomAt(math.Pow(zoomWheelFactor, wheelY), float64(mx), float64(my))
}

// processPointer runs the pointer state machine for one sample.
//
// A press records both coordinate spaces and the element under the pointer.
// Movement beyond the dead zone latches the press into a drag; the dead
// zone compares screen coordinates, so zooming in never makes an ordinary
// click jitter into a drag. Release fires DragEnd if dragging, otherwise a
// Click when press and release landed on the same element. A completed
// drag mutes clicks on its element for clickMuteDuration.
func (s *Surface) processPointer(wx, wy, sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointer

	// Determine target: captured element or hit test.
	var target *Element
	if s.captured != nil {
		target = s.captured
	} else {
		target = s.elementAt(wx, wy)
	}

	// Fire hover enter/leave when the hovered element changes.
	if target != ps.hover {
		if ps.hover != nil {
			ps.hover.Hovered = false
			s.firePointerLeave(ps.hover, wx, wy, sx, sy, button, mods)
		}
		if target != nil {
			target.Hovered = true
			s.firePointerEnter(target, wx, wy, sx, sy, button, mods)
		}
		ps.hover = target
	}

	if pressed && !ps.down {
		// Just pressed. Capture the button for the whole interaction.
		ps.down = true
		ps.button = button
		ps.startWX = wx
		ps.startWY = wy
		ps.startSX = sx
		ps.startSY = sy
		ps.lastWX = wx
		ps.lastWY = wy
		ps.lastSX = sx
		ps.lastSY = sy
		ps.hit = target
		ps.dragging = false

		s.firePointerDown(target, wx, wy, sx, sy, ps.button, mods)
	} else if !pressed && ps.down {
		// Just released.
		if ps.dragging {
			s.fireDragEnd(ps.hit, wx, wy, ps.startWX, ps.startWY,
				wx-ps.lastWX, wy-ps.lastWY, ps.button, mods)
			if ps.hit != nil {
				ps.hit.clickMuteUntil = s.now().Add(clickMuteDuration)
			}
		} else if ps.hit != nil && ps.hit == target {
			s.fireClick(target, wx, wy, sx, sy, ps.button, mods)
		}

		s.firePointerUp(target, wx, wy, sx, sy, ps.button, mods)

		// Auto-release capture.
		s.captured = nil
		ps.down = false
		ps.hit = nil
		ps.dragging = false
	} else if pressed && ps.down {
		// Held down, possibly moved.
		if wx != ps.lastWX || wy != ps.lastWY || sx != ps.lastSX || sy != ps.lastSY {
			if !ps.dragging {
				dx := sx - ps.startSX
				dy := sy - ps.startSY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					s.fireDragStart(ps.hit, wx, wy, ps.startWX, ps.startWY,
						wx-ps.startWX, wy-ps.startWY, ps.button, mods)
				}
			}
			if ps.dragging {
				s.fireDrag(ps.hit, wx, wy, ps.startWX, ps.startWY,
					wx-ps.lastWX, wy-ps.lastWY, ps.button, mods)
				if ps.hit == nil {
					// Dragging empty space pans the camera. Screen deltas
					// divided by zoom avoid feedback through the view
					// matrix while it moves.
					s.camera.X -= (sx - ps.lastSX) / s.camera.Zoom
					s.camera.Y -= (sy - ps.lastSY) / s.camera.Zoom
					s.camera.ClampToBounds()
				}
			}
		}
		ps.lastWX = wx
		ps.lastWY = wy
		ps.lastSX = sx
		ps.lastSY = sy
	} else if !pressed && !ps.down {
		// Hover move.
		if wx != ps.lastWX || wy != ps.lastWY {
			s.firePointerMove(target, wx, wy, sx, sy, button, mods)
			ps.lastWX = wx
			ps.lastWY = wy
			ps.lastSX = sx
			ps.lastSY = sy
		}
	}
}

// --- Event dispatch ---

func (s *Surface) firePointerDown(e *Element, wx, wy, sx, sy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{
		Element: e,
		WorldX:  wx, WorldY: wy, ScreenX: sx, ScreenY: sy,
		Button: button, Modifiers: mods,
	}
	// Surface-level handlers first.
	for _, h := range s.handlers.pointerDown {
		h.fn(ctx)
	}
	// Per-element callback.
	if e != nil && e.OnPointerDown != nil {
		e.OnPointerDown(ctx)
	}
}

func (s *Surface) firePointerUp(e *Element, wx, wy, sx, sy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{
		Element: e,
		WorldX:  wx, WorldY: wy, ScreenX: sx, ScreenY: sy,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.pointerUp {
		h.fn(ctx)
	}
	if e != nil && e.OnPointerUp != nil {
		e.OnPointerUp(ctx)
	}
}

func (s *Surface) firePointerMove(e *Element, wx, wy, sx, sy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{
		Element: e,
		WorldX:  wx, WorldY: wy, ScreenX: sx, ScreenY: sy,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.pointerMove {
		h.fn(ctx)
	}
	if e != nil && e.OnPointerMove != nil {
		e.OnPointerMove(ctx)
	}
}

func (s *Surface) firePointerEnter(e *Element, wx, wy, sx, sy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{
		Element: e,
		WorldX:  wx, WorldY: wy, ScreenX: sx, ScreenY: sy,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.pointerEnter {
		h.fn(ctx)
	}
	if e != nil && e.OnPointerEnter != nil {
		e.OnPointerEnter(ctx)
	}
}

func (s *Surface) firePointerLeave(e *Element, wx, wy, sx, sy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{
		Element: e,
		WorldX:  wx, WorldY: wy, ScreenX: sx, ScreenY: sy,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.pointerLeave {
		h.fn(ctx)
	}
	if e != nil && e.OnPointerLeave != nil {
		e.OnPointerLeave(ctx)
	}
}

// fireClick dispatches a click unless the element is still inside the mute
// window that follows a completed drag.
func (s *Surface) fireClick(e *Element, wx, wy, sx, sy float64, button MouseButton, mods KeyModifiers) {
	if e != nil && s.now().Before(e.clickMuteUntil) {
		return
	}
	ctx := ClickContext{
		Element: e,
		WorldX:  wx, WorldY: wy, ScreenX: sx, ScreenY: sy,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.click {
		h.fn(ctx)
	}
	if e != nil && e.OnClick != nil {
		e.OnClick(ctx)
	}
}

func (s *Surface) fireDragStart(e *Element, wx, wy, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) {
	ctx := DragContext{
		Element: e,
		WorldX:  wx, WorldY: wy,
		StartX: startX, StartY: startY, DeltaX: deltaX, DeltaY: deltaY,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.dragStart {
		h.fn(ctx)
	}
	if e != nil && e.OnDragStart != nil {
		e.OnDragStart(ctx)
	}
}

func (s *Surface) fireDrag(e *Element, wx, wy, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) {
	ctx := DragContext{
		Element: e,
		WorldX:  wx, WorldY: wy,
		StartX: startX, StartY: startY, DeltaX: deltaX, DeltaY: deltaY,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.drag {
		h.fn(ctx)
	}
	if e != nil && e.OnDrag != nil {
		e.OnDrag(ctx)
	}
}

func (s *Surface) fireDragEnd(e *Element, wx, wy, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) {
	ctx := DragContext{
		Element: e,
		WorldX:  wx, WorldY: wy,
		StartX: startX, StartY: startY, DeltaX: deltaX, DeltaY: deltaY,
		Button: button, Modifiers: mods,
	}
	for _, h := range s.handlers.dragEnd {
		h.fn(ctx)
	}
	if e != nil && e.OnDragEnd != nil {
		e.OnDragEnd(ctx)
	}
}
