package bramble

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Font is the interface for text measurement and layout. Box titles and
// connection labels are measured through a Font (via the MeasureCache) and,
// when the font can render, drawn with it. A Graph with a nil Font still
// works: every box falls back to the fixed default size.
type Font interface {
	MeasureString(text string) (width, height float64)
	LineHeight() float64
}

// --- TTFFont ---

// TTFFont wraps Ebitengine's text/v2 for TrueType font rendering.
type TTFFont struct {
	face   *text.GoTextFace
	source *text.GoTextFaceSource
	size   float64
	lh     float64 // cached line height
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("bramble: failed to parse TTF data: %w", err)
	}

	face := &text.GoTextFace{
		Source: source,
		Size:   size,
	}

	// Compute line height from metrics
	m := face.Metrics()
	lh := m.HAscent + m.HDescent + m.HLineGap

	return &TTFFont{
		face:   face,
		source: source,
		size:   size,
		lh:     lh,
	}, nil
}

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	w, h := text.Measure(s, f.face, f.lh)
	return w, h
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 {
	return f.lh
}

// Face returns the underlying GoTextFace for direct Ebitengine text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace {
	return f.face
}

// --- FixedFont ---

// FixedFont is a measurement-only font with a constant per-rune advance.
// It needs no font data and no graphics context, which makes it the font of
// choice in headless tests and a predictable sizing fallback. Drawing skips
// it (only renderable fonts produce visible text).
type FixedFont struct {
	Advance float64 // horizontal advance per rune
	Height  float64 // line height
}

// MeasureString returns the width of the widest line and the total height.
func (f FixedFont) MeasureString(s string) (width, height float64) {
	var maxLen, cur int
	lines := 1
	for _, r := range s {
		if r == '\n' {
			if cur > maxLen {
				maxLen = cur
			}
			cur = 0
			lines++
			continue
		}
		cur++
	}
	if cur > maxLen {
		maxLen = cur
	}
	return float64(maxLen) * f.Advance, float64(lines) * f.Height
}

// LineHeight returns the vertical distance between baselines.
func (f FixedFont) LineHeight() float64 {
	return f.Height
}

// --- Word wrap ---

// wrapTitle breaks s into lines no wider than maxWidth, splitting only at
// whitespace. A single word wider than maxWidth stays whole on its own line
// (no mid-word breaks). Hard newlines are respected. A nil font or
// non-positive maxWidth disables wrapping.
func wrapTitle(f Font, s string, maxWidth float64) []string {
	if s == "" {
		return nil
	}
	if f == nil || maxWidth <= 0 {
		return strings.Split(s, "\n")
	}

	var lines []string
	for _, hard := range strings.Split(s, "\n") {
		words := strings.Fields(hard)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			cand := cur + " " + w
			if cw, _ := f.MeasureString(cand); cw > maxWidth {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = cand
		}
		lines = append(lines, cur)
	}
	return lines
}

// --- Drawing ---

// drawTextLine draws a single line anchored at its top-left corner (x, y),
// scaled by scale, when the font can render. Measurement-only fonts
// (FixedFont, nil) draw nothing.
func drawTextLine(dst *ebiten.Image, f Font, s string, x, y, scale float64, c Color) {
	ttf, ok := f.(*TTFFont)
	if !ok || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(
		float32(c.R),
		float32(c.G),
		float32(c.B),
		float32(c.A),
	)
	op.LineSpacing = ttf.lh
	text.Draw(dst, s, ttf.face, op)
}
