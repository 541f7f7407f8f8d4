package contentstream

// kappa positions bezier control points to approximate a quarter circle.
const kappa = 0.5522847498

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	p.Subpaths = append(p.Subpaths, Subpath{Points: []PathPoint{{X: x, Y: y, Type: PathMoveTo}}})
	return p
}

// LineTo appends a straight segment to the current subpath.
func (p *Path) LineTo(x, y float64) *Path {
	p.current().Points = append(p.current().Points, PathPoint{X: x, Y: y, Type: PathLineTo})
	return p
}

// CurveTo appends a cubic bezier segment ending at (x, y).
func (p *Path) CurveTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	p.current().Points = append(p.current().Points, PathPoint{
		X: x, Y: y, Type: PathCurveTo,
		Control1X: c1x, Control1Y: c1y,
		Control2X: c2x, Control2Y: c2y,
	})
	return p
}

// Close marks the current subpath as closed.
func (p *Path) Close() *Path {
	if len(p.Subpaths) > 0 {
		p.Subpaths[len(p.Subpaths)-1].Closed = true
	}
	return p
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	return p == nil || len(p.Subpaths) == 0
}

func (p *Path) current() *Subpath {
	if len(p.Subpaths) == 0 {
		p.Subpaths = append(p.Subpaths, Subpath{Points: []PathPoint{{Type: PathMoveTo}}})
	}
	return &p.Subpaths[len(p.Subpaths)-1]
}

// Rect returns a closed rectangle with lower-left corner (x, y).
func Rect(x, y, w, h float64) *Path {
	p := &Path{}
	return p.MoveTo(x, y).LineTo(x+w, y).LineTo(x+w, y+h).LineTo(x, y+h).Close()
}

// RoundedRect returns a closed rectangle whose corners are rounded by r.
// The radius is clamped to half of the shorter side.
func RoundedRect(x, y, w, h, r float64) *Path {
	if r <= 0 {
		return Rect(x, y, w, h)
	}
	if limit := minFloat(w, h) / 2; r > limit {
		r = limit
	}
	c := r * (1 - kappa)
	p := &Path{}
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.CurveTo(x+w-c, y, x+w, y+c, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.CurveTo(x+w, y+h-c, x+w-c, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.CurveTo(x+c, y+h, x, y+h-c, x, y+h-r)
	p.LineTo(x, y+r)
	p.CurveTo(x, y+c, x+c, y, x+r, y)
	return p.Close()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
