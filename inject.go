package bramble

// syntheticPointerEvent represents a single injected pointer event.
// Screen coordinates are used (what a script driving the widget from
// screenshots works with) and converted to world coordinates via the
// camera, identical to real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next frame's processInput call.
func (s *Surface) InjectPress(x, y float64) {
	s.injected = append(s.injected, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (s *Surface) InjectMove(x, y float64) {
	s.injected = append(s.injected, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given screen coordinates.
func (s *Surface) InjectRelease(x, y float64) {
	s.injected = append(s.injected, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two frames.
func (s *Surface) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (s *Surface) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// processInjected pops one event from the inject queue, converts
// screen to world via the camera, and feeds it through processPointer.
// Returns true if an event was consumed (real input is skipped that frame).
func (s *Surface) processInjected(mods KeyModifiers) bool {
	if len(s.injected) == 0 {
		return false
	}
	evt := s.injected[0]
	copy(s.injected, s.injected[1:])
	s.injected = s.injected[:len(s.injected)-1]

	wx, wy := s.camera.ScreenToWorld(evt.screenX, evt.screenY)
	s.processPointer(wx, wy, evt.screenX, evt.screenY, evt.pressed, evt.button, mods)
	return true
}
