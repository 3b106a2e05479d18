package viz

import (
	"math"

	"github.com/san-kum/nbforce/internal/cell"
)

// scene projects atoms on the xy plane of a canvas. Periodic systems are
// wrapped into the home cell and the cell outline is drawn.
type scene struct {
	cell   *cell.Cell
	bounds [4]float64 // xmin, xmax, ymin, ymax
	canvas *Canvas
}

func newScene(c *cell.Cell, ref []float64, w, h int) *scene {
	return &scene{cell: c, bounds: viewBounds(c, ref), canvas: NewCanvas(w, h)}
}

// Snapshot draws a single configuration on a w x h character canvas.
func Snapshot(c *cell.Cell, pos []float64, w, h int) *Canvas {
	s := newScene(c, pos, w, h)
	s.draw(pos)
	return s.canvas
}

// viewBounds is the cell for a periodic system and the padded extent of
// ref otherwise.
func viewBounds(c *cell.Cell, ref []float64) [4]float64 {
	b := [4]float64{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	grow := func(x, y float64) {
		b[0], b[1] = math.Min(b[0], x), math.Max(b[1], x)
		b[2], b[3] = math.Min(b[2], y), math.Max(b[3], y)
	}
	if c != nil {
		for _, corner := range cellCorners(c.Rvecs) {
			grow(corner[0], corner[1])
		}
		return b
	}
	if len(ref) < 3 {
		return [4]float64{-1, 1, -1, 1}
	}
	for i := 0; i+2 < len(ref); i += 3 {
		grow(ref[i], ref[i+1])
	}
	pad := 0.25*math.Max(b[1]-b[0], b[3]-b[2]) + 1
	return [4]float64{b[0] - pad, b[1] + pad, b[2] - pad, b[3] + pad}
}

// cellCorners projects the parallelogram spanned by the first two lattice
// vectors.
func cellCorners(r [9]float64) [4][2]float64 {
	return [4][2]float64{
		{0, 0},
		{r[0], r[1]},
		{r[0] + r[3], r[1] + r[4]},
		{r[3], r[4]},
	}
}

func (s *scene) project(x, y float64) (int, int) {
	pw, ph := s.canvas.Pixels()
	fx := (x - s.bounds[0]) / (s.bounds[1] - s.bounds[0])
	fy := (y - s.bounds[2]) / (s.bounds[3] - s.bounds[2])
	return int(fx * float64(pw-1)), int((1 - fy) * float64(ph-1))
}

func (s *scene) draw(pos []float64) {
	s.canvas.Clear()
	if s.cell != nil {
		corners := cellCorners(s.cell.Rvecs)
		for i := range corners {
			x0, y0 := s.project(corners[i][0], corners[i][1])
			x1, y1 := s.project(corners[(i+1)%4][0], corners[(i+1)%4][1])
			s.canvas.DrawLine(x0, y0, x1, y1)
		}
	}
	for i := 0; i+2 < len(pos); i += 3 {
		p := [3]float64{pos[i], pos[i+1], pos[i+2]}
		if s.cell != nil {
			wrap(&p, &s.cell.Rvecs, &s.cell.Gvecs)
		}
		x, y := s.project(p[0], p[1])
		s.canvas.Disc(x, y, 1)
	}
}

// wrap maps p into the home cell.
func wrap(p *[3]float64, rvecs, gvecs *[9]float64) {
	var frac [3]float64
	for i := 0; i < 3; i++ {
		f := p[0]*gvecs[3*i] + p[1]*gvecs[3*i+1] + p[2]*gvecs[3*i+2]
		frac[i] = f - math.Floor(f)
	}
	for a := 0; a < 3; a++ {
		p[a] = frac[0]*rvecs[a] + frac[1]*rvecs[3+a] + frac[2]*rvecs[6+a]
	}
}
