package bramble

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Drawing runs in three passes over the element arena: ribbon meshes first,
// then box bodies and label pills, then text. Later passes paint over earlier
// ones, so connections always sit beneath the boxes they join and text is
// never occluded. Everything outside the camera's visible bounds is skipped.

// boxBorderWidth is the border thickness of a box body in world units.
const boxBorderWidth = 1.5

// maxBatchVerts caps a vertex batch below the uint16 index limit.
const maxBatchVerts = 65532

// --- White pixel singleton (no sync.Once, bramble is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white image. All solid
// geometry samples it, which keeps every batch on a single texture.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// --- Batch buffer ---

// drawBuffer accumulates screen-space vertices for a draw pass and submits
// them in one DrawTriangles call. The slices are high-water-mark buffers
// reused across frames; a pass that outgrows the index range flushes early.
type drawBuffer struct {
	verts []ebiten.Vertex
	inds  []uint16
	dst   *ebiten.Image
}

func (b *drawBuffer) begin(dst *ebiten.Image) {
	b.dst = dst
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

func (b *drawBuffer) room(n int) {
	if len(b.verts)+n > maxBatchVerts {
		b.flush()
	}
}

func (b *drawBuffer) flush() {
	if len(b.inds) > 0 {
		var op ebiten.DrawTrianglesOptions
		b.dst.DrawTriangles(b.verts, b.inds, ensureWhitePixel(), &op)
	}
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

func (b *drawBuffer) end() {
	b.flush()
	b.dst = nil
}

// appendMesh transforms world-space vertices through the view matrix and
// tints them, appending to the batch.
//
// Matrix layout: [0]=a, [1]=b, [2]=c, [3]=d, [4]=tx, [5]=ty
// newX = a*x + c*y + tx, newY = b*x + d*y + ty
func (b *drawBuffer) appendMesh(src []ebiten.Vertex, inds []uint16, view [6]float64, tint Color) {
	if len(src) == 0 || len(inds) == 0 {
		return
	}
	b.room(len(src))
	a, bb, c, d, tx, ty := view[0], view[1], view[2], view[3], view[4], view[5]
	cr := float32(tint.R)
	cg := float32(tint.G)
	cb := float32(tint.B)
	ca := float32(tint.A)

	base := uint16(len(b.verts))
	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		b.verts = append(b.verts, ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(bb*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * cr,
			ColorG: s.ColorG * cg,
			ColorB: s.ColorB * cb,
			ColorA: s.ColorA * ca,
		})
	}
	for _, ix := range inds {
		b.inds = append(b.inds, base+ix)
	}
}

// appendQuad appends a solid world-space rectangle.
func (b *drawBuffer) appendQuad(r Rect, view [6]float64, c Color) {
	b.room(4)
	base := uint16(len(b.verts))
	x0, y0 := transformPoint(view, r.X, r.Y)
	x1, y1 := transformPoint(view, r.X+r.Width, r.Y+r.Height)
	cr := float32(c.R)
	cg := float32(c.G)
	cb := float32(c.B)
	ca := float32(c.A)
	for _, p := range [4][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		b.verts = append(b.verts, ebiten.Vertex{
			DstX:   float32(p[0]),
			DstY:   float32(p[1]),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	b.inds = append(b.inds, base, base+1, base+2, base+1, base+3, base+2)
}

// --- Surface drawing ---

// Draw renders the surface's elements onto dst through the camera.
func (s *Surface) Draw(dst *ebiten.Image) {
	view := s.camera.computeViewMatrix()
	visible := s.camera.VisibleBounds()

	b := &s.scratch
	b.begin(dst)

	for _, id := range s.ribbonOrder {
		r := s.ribbons[id]
		if !r.Visible || r.Alpha <= 0 || !r.Bounds().Intersects(visible) {
			continue
		}
		tint := ColorRibbon
		if r.Hovered {
			tint = ColorRibbonHover
		}
		tint.A *= r.Alpha
		b.appendMesh(r.verts, r.inds, view, tint)
	}
	b.flush()

	for _, id := range s.boxOrder {
		e := s.boxes[id]
		if !e.Visible || e.Alpha <= 0 || !e.Bounds().Intersects(visible) {
			continue
		}
		border := ColorBoxBorder
		if e.Active {
			border = ColorBoxActive
		}
		border.A *= e.Alpha
		fill := e.Color
		fill.A *= e.Alpha
		r := e.Bounds()
		b.appendQuad(r, view, border)
		b.appendQuad(expandRect(r, -boxBorderWidth), view, fill)
	}
	for _, id := range s.ribbonOrder {
		r := s.ribbons[id]
		if r.Label == "" || !r.Visible || r.Alpha <= 0 {
			continue
		}
		pb := r.labelBounds()
		if !pb.Intersects(visible) {
			continue
		}
		back := ColorLabelBack
		back.A *= r.Alpha
		b.appendQuad(pb, view, back)
	}
	b.end()

	s.drawTitles(dst, visible)
	s.drawLabels(dst, visible)
	s.flushScreenshots(dst)
}

// drawTitles renders each visible box's wrapped title, centered in the box.
func (s *Surface) drawTitles(dst *ebiten.Image, visible Rect) {
	if _, ok := s.font.(*TTFFont); !ok {
		return
	}
	lh := s.font.LineHeight()
	for _, id := range s.boxOrder {
		e := s.boxes[id]
		if !e.Visible || e.Alpha <= 0 || len(e.lines) == 0 || !e.Bounds().Intersects(visible) {
			continue
		}
		c := ColorTitleText
		c.A *= e.Alpha
		top := e.Y - lh*float64(len(e.lines))/2
		for i, line := range e.lines {
			w, _ := s.cache.Measure(s.font, line)
			sx, sy := s.camera.WorldToScreen(e.X-w/2, top+lh*float64(i))
			drawTextLine(dst, s.font, line, sx, sy, s.camera.Zoom, c)
		}
	}
}

// drawLabels renders connection label text over the pills drawn earlier.
func (s *Surface) drawLabels(dst *ebiten.Image, visible Rect) {
	if _, ok := s.font.(*TTFFont); !ok {
		return
	}
	for _, id := range s.ribbonOrder {
		r := s.ribbons[id]
		if r.Label == "" || !r.Visible || r.Alpha <= 0 || !r.labelBounds().Intersects(visible) {
			continue
		}
		c := ColorLabelText
		c.A *= r.Alpha
		w, h := s.cache.Measure(s.font, r.Label)
		sx, sy := s.camera.WorldToScreen(r.labelPos.X-w/2, r.labelPos.Y-h/2)
		drawTextLine(dst, s.font, r.Label, sx, sy, s.camera.Zoom, c)
	}
}
