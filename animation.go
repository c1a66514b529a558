package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation durations for the built-in transitions.
const (
	fadeInDuration  float32 = 0.15
	layoutGlideTime float32 = 0.25
	cameraFocusTime float32 = 0.3
)

// TweenGroup animates up to 4 float64 fields on an Element simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenAlpha,
// TweenColor) and register it with the surface, which advances it each
// frame. If the target element is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Element
	Done   bool

	// onUpdate runs after each advance while the target is alive. Used to
	// rebuild dependent geometry (a gliding box drags its ribbons along).
	onUpdate func()
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target element has been disposed, Done is set to true and
// no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.onUpdate != nil {
		g.onUpdate()
	}
}

// TweenPosition creates a TweenGroup that animates the element's X and Y to
// the given target coordinates over the specified duration using the easing
// function.
func TweenPosition(e *Element, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: e}
	g.tweens[0] = gween.New(float32(e.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(e.Y), float32(toY), duration, fn)
	g.fields[0] = &e.X
	g.fields[1] = &e.Y
	return g
}

// TweenAlpha creates a TweenGroup that animates the element's Alpha to the
// target value over the specified duration using the easing function.
func TweenAlpha(e *Element, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: e}
	g.tweens[0] = gween.New(float32(e.Alpha), float32(to), duration, fn)
	g.fields[0] = &e.Alpha
	return g
}

// TweenColor creates a TweenGroup that animates all four components of the
// element's Color to the target color over the specified duration.
func TweenColor(e *Element, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: e}
	g.tweens[0] = gween.New(float32(e.Color.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(e.Color.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(e.Color.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(e.Color.A), float32(to.A), duration, fn)
	g.fields[0] = &e.Color.R
	g.fields[1] = &e.Color.G
	g.fields[2] = &e.Color.B
	g.fields[3] = &e.Color.A
	return g
}
