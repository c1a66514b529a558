package bramble

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	// ribbonSegments is the number of curve subdivisions per ribbon.
	ribbonSegments = 20

	// ribbonWidth is the stroke width of the ribbon mesh in world units.
	ribbonWidth = 2.0

	// ribbonCtrlFactor positions the cubic control points at this fraction
	// of the vertical span between the endpoints.
	ribbonCtrlFactor = 0.4

	// ribbonHitSlop is the world-space distance within which a pointer
	// counts as touching the curve.
	ribbonHitSlop = 6.0

	// labelPaddingX and labelPaddingY pad the measured label text to form
	// the pill drawn at the curve midpoint, which is also its hit area.
	labelPaddingX = 6.0
	labelPaddingY = 3.0
)

// --- Curve geometry ---

// connectionPoints computes the cubic curve for the edge between two boxes:
// it leaves the parent's bottom-center and enters the child's top-center.
// Control points sit at 40% of the vertical span, extending downward from
// the parent and upward into the child, so edges keep their top-down flow
// even when a manual drag moves the child above its parent.
func connectionPoints(parent, child *Element) (from, to, c1, c2 Vec2) {
	from = Vec2{X: parent.X, Y: parent.Y + parent.Height/2}
	to = Vec2{X: child.X, Y: child.Y - child.Height/2}
	off := ribbonCtrlFactor * math.Abs(to.Y-from.Y)
	c1 = Vec2{X: from.X, Y: from.Y + off}
	c2 = Vec2{X: to.X, Y: to.Y - off}
	return
}

// sampleCubic flattens a cubic Bezier into ribbonSegments+1 points,
// reusing buf when it has capacity.
func sampleCubic(from, c1, c2, to Vec2, buf []Vec2) []Vec2 {
	n := ribbonSegments + 1
	if cap(buf) < n {
		buf = make([]Vec2, n)
	}
	buf = buf[:n]
	for i := 0; i < n; i++ {
		t := float64(i) / float64(ribbonSegments)
		u := 1 - t
		u2 := u * u
		t2 := t * t
		buf[i] = Vec2{
			X: u2*u*from.X + 3*u2*t*c1.X + 3*u*t2*c2.X + t2*t*to.X,
			Y: u2*u*from.Y + 3*u2*t*c1.Y + 3*u*t2*c2.Y + t2*t*to.Y,
		}
	}
	return buf
}

// updateRibbonGeometry recomputes a ribbon's curve from its endpoint boxes
// and rebuilds the mesh. The label anchors at the midpoint of the two
// endpoints rather than the curve midpoint; for these S-curves the two
// nearly coincide.
func updateRibbonGeometry(e *Element, parent, child *Element) {
	from, to, c1, c2 := connectionPoints(parent, child)
	e.From = from
	e.To = to
	e.ctrl1 = c1
	e.ctrl2 = c2
	e.samples = sampleCubic(from, c1, c2, to, e.samples)
	buildRibbonMesh(e)
	e.labelPos = Vec2{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}

	// The cubic never leaves the convex hull of its control points, so their
	// bounding box (plus stroke width) bounds the curve for culling.
	minX := math.Min(math.Min(from.X, to.X), math.Min(c1.X, c2.X)) - ribbonWidth
	maxX := math.Max(math.Max(from.X, to.X), math.Max(c1.X, c2.X)) + ribbonWidth
	minY := math.Min(math.Min(from.Y, to.Y), math.Min(c1.Y, c2.Y)) - ribbonWidth
	maxY := math.Max(math.Max(from.Y, to.Y), math.Max(c1.Y, c2.Y)) + ribbonWidth
	e.X = (minX + maxX) / 2
	e.Y = (minY + maxY) / 2
	e.Width = maxX - minX
	e.Height = maxY - minY
}

// --- Mesh ---

// buildRibbonMesh extrudes the sampled polyline into a triangle strip of
// ribbonWidth, writing e.verts and e.inds in place. Vertices carry white
// and the center of the shared white pixel as UV; the draw pass applies
// the element color. For N points: 2N vertices, 6(N-1) indices.
func buildRibbonMesh(e *Element) {
	pts := e.samples
	if len(pts) < 2 {
		e.verts = e.verts[:0]
		e.inds = e.inds[:0]
		return
	}

	n := len(pts)
	numVerts := n * 2
	numInds := (n - 1) * 6

	// Grow vertex/index slices to high-water mark.
	if cap(e.verts) < numVerts {
		e.verts = make([]ebiten.Vertex, numVerts)
	}
	e.verts = e.verts[:numVerts]

	if cap(e.inds) < numInds {
		e.inds = make([]uint16, numInds)
	}
	e.inds = e.inds[:numInds]

	halfW := ribbonWidth / 2

	for i := 0; i < n; i++ {
		// Compute perpendicular normal.
		var nx, ny float64
		if i == 0 {
			nx, ny = perpendicular(pts[0], pts[1])
		} else if i == n-1 {
			nx, ny = perpendicular(pts[n-2], pts[n-1])
		} else {
			// Average of adjacent segment normals (miter).
			nx0, ny0 := perpendicular(pts[i-1], pts[i])
			nx1, ny1 := perpendicular(pts[i], pts[i+1])
			nx, ny = nx0+nx1, ny0+ny1
			ln := math.Sqrt(nx*nx + ny*ny)
			if ln > 1e-10 {
				nx /= ln
				ny /= ln
			}
			// Scale to maintain width at the miter, clamped to avoid
			// exaggerated spikes at sharp corners (max 2x extension).
			dot := nx0*nx + ny0*ny
			if dot > 0.1 {
				scale := 1.0 / dot
				if scale > 2.0 {
					scale = 2.0
				}
				nx *= scale
				ny *= scale
			}
		}

		vi := i * 2
		e.verts[vi] = ebiten.Vertex{
			DstX:   float32(pts[i].X + nx*halfW),
			DstY:   float32(pts[i].Y + ny*halfW),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
		e.verts[vi+1] = ebiten.Vertex{
			DstX:   float32(pts[i].X - nx*halfW),
			DstY:   float32(pts[i].Y - ny*halfW),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}

	// Build indices: two triangles per segment.
	for i := 0; i < n-1; i++ {
		ii := i * 6
		v := uint16(i * 2)
		e.inds[ii+0] = v
		e.inds[ii+1] = v + 1
		e.inds[ii+2] = v + 2
		e.inds[ii+3] = v + 1
		e.inds[ii+4] = v + 3
		e.inds[ii+5] = v + 2
	}
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// --- Hit testing ---

// polylineNear reports whether (x, y) lies within slop of any segment of pts.
func polylineNear(pts []Vec2, x, y, slop float64) bool {
	s2 := slop * slop
	for i := 0; i+1 < len(pts); i++ {
		if segmentDistSq(pts[i], pts[i+1], x, y) <= s2 {
			return true
		}
	}
	return false
}

// segmentDistSq returns the squared distance from point (x, y) to the
// segment from a to b.
func segmentDistSq(a, b Vec2, x, y float64) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	len2 := dx*dx + dy*dy
	if len2 < 1e-12 {
		ex := x - a.X
		ey := y - a.Y
		return ex*ex + ey*ey
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	ex := x - (a.X + t*dx)
	ey := y - (a.Y + t*dy)
	return ex*ex + ey*ey
}
