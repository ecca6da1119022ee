package visualizer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/geometry"
)

// fitMargin is the canvas border, in dots, kept clear when fitting a rig.
const fitMargin = 2

// Rig renders rig frames onto a braille canvas. The view is fitted once to
// the rest pose so the picture does not rescale while the rig moves.
type Rig struct {
	canvas *Canvas
	view   Transform
	mode   int
	output string
}

// NewRig returns a renderer for a cols x rows cell area.
func NewRig(cols, rows int) *Rig {
	return &Rig{canvas: NewCanvas(cols, rows)}
}

// Fit resizes the canvas and fits the view to g with some room around it.
func (r *Rig) Fit(g *geometry.Geometry, cols, rows int) {
	if cc, rr := r.canvas.Cells(); cc != cols || rr != rows {
		r.canvas.Resize(cols, rows)
	}
	lo, hi, ok := g.Bounds()
	if !ok {
		lo, hi = r2.Vec{X: -1, Y: -1}, r2.Vec{X: 1, Y: 1}
	}
	span := r2.Sub(hi, lo)
	pad := math.Max(math.Max(span.X, span.Y)*0.25, 10)
	lo = r2.Sub(lo, r2.Vec{X: pad, Y: pad})
	hi = r2.Add(hi, r2.Vec{X: pad, Y: pad})

	w, h := r.canvas.DotSize()
	r.view = Fit(lo, hi, w, h, fitMargin)
}

// Transform returns the current world-to-dot mapping.
func (r *Rig) Transform() Transform { return r.view }

// Mode returns the active display mode.
func (r *Rig) Mode() Mode { return Modes()[r.mode] }

// CycleMode switches to the next display mode and returns its name.
func (r *Rig) CycleMode() string {
	r.mode = (r.mode + 1) % len(Modes())
	return r.Mode().Name
}

// Update redraws the canvas for f.
func (r *Rig) Update(f Frame, color bool) {
	r.canvas.Clear()
	for _, l := range r.Mode().Layers {
		l.Draw(r.canvas, r.view, f)
	}
	r.output = r.canvas.String(color)
}

// View returns the last rendered frame.
func (r *Rig) View() string {
	return r.output
}
