package visualizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/geometry"
)

// Ring is a circular force field in world space.
type Ring struct {
	Center    r2.Vec
	Radius    float64
	Intensity float64
	Selected  bool
}

// Frame is everything drawn for one tick.
type Frame struct {
	Geometry *geometry.Geometry
	Speeds   []float64 // per vertex, nil when no simulation runs
	Rings    []Ring
	Tick     uint64
	Running  bool // draws the pulsing overlay frame
	BySpeed  bool // colour by particle speed instead of segment role
}

// Layer draws one aspect of a frame.
type Layer interface {
	Name() string
	Draw(c *Canvas, t Transform, f Frame)
}

// Mode is a named stack of layers, drawn in order.
type Mode struct {
	Name   string
	Layers []Layer
}

// Modes returns all available display modes.
func Modes() []Mode {
	return []Mode{
		{Name: "rig", Layers: []Layer{Rings{}, Segments{}, Overlay{}}},
		{Name: "points", Layers: []Layer{Rings{}, Points{}, Overlay{}}},
		{Name: "bare", Layers: []Layer{Segments{}}},
	}
}

var roleHeat = map[geometry.Role]float64{
	geometry.Anchor: 0,
	geometry.Bone:   0.3,
	geometry.Muscle: 0.8,
}

// vertexHeat returns a per-vertex heat in [0, 1] scaled to the fastest
// particle, or nil when speed colouring is off or unavailable.
func vertexHeat(f Frame) []float64 {
	if !f.BySpeed || len(f.Speeds) == 0 {
		return nil
	}
	peak := floats.Max(f.Speeds)
	heat := make([]float64, len(f.Speeds))
	if peak <= 0 {
		return heat
	}
	for i, s := range f.Speeds {
		heat[i] = s / peak
	}
	return heat
}

// Segments draws every segment polyline, including the closing edge of
// closed segments.
type Segments struct{}

func (Segments) Name() string { return "segments" }

func (Segments) Draw(c *Canvas, t Transform, f Frame) {
	g := f.Geometry
	if g == nil {
		return
	}
	heat := vertexHeat(f)
	edgeHeat := func(seg geometry.Segment, a, b int) float64 {
		if heat != nil && a < len(heat) && b < len(heat) {
			return (heat[a] + heat[b]) / 2
		}
		return roleHeat[seg.Role]
	}
	for _, seg := range g.Segments {
		idx := seg.Indices
		if len(idx) == 1 {
			x, y := t.ToDots(g.Vertices[idx[0]])
			c.Set(int(math.Round(x)), int(math.Round(y)), roleHeat[seg.Role])
			continue
		}
		for i := 0; i+1 < len(idx); i++ {
			drawEdge(c, t, g.Vertices[idx[i]], g.Vertices[idx[i+1]], edgeHeat(seg, idx[i], idx[i+1]))
		}
		if seg.Closed && len(idx) > 2 {
			last := len(idx) - 1
			drawEdge(c, t, g.Vertices[idx[last]], g.Vertices[idx[0]], edgeHeat(seg, idx[last], idx[0]))
		}
	}
}

func drawEdge(c *Canvas, t Transform, a, b r2.Vec, heat float64) {
	x0, y0 := t.ToDots(a)
	x1, y1 := t.ToDots(b)
	c.Line(x0, y0, x1, y1, heat)
}

// Points draws each vertex as a small cross.
type Points struct{}

func (Points) Name() string { return "points" }

func (Points) Draw(c *Canvas, t Transform, f Frame) {
	if f.Geometry == nil {
		return
	}
	heat := vertexHeat(f)
	for i, v := range f.Geometry.Vertices {
		h := 0.5
		if heat != nil && i < len(heat) {
			h = heat[i]
		}
		x, y := t.ToDots(v)
		cx, cy := int(math.Round(x)), int(math.Round(y))
		c.Set(cx, cy, h)
		c.Set(cx-1, cy, h)
		c.Set(cx+1, cy, h)
		c.Set(cx, cy-1, h)
		c.Set(cx, cy+1, h)
	}
}

// RingBaseRadius is the world-space radius of a force's intensity ring at
// zero intensity.
const RingBaseRadius = 2.0

// Rings draws each force field as its radius outline plus an inner ring
// that grows with intensity.
type Rings struct{}

func (Rings) Name() string { return "rings" }

func (Rings) Draw(c *Canvas, t Transform, f Frame) {
	for _, r := range f.Rings {
		if r.Radius <= 0 {
			continue
		}
		heat := 0.15
		if r.Selected {
			heat = 0.6
		}
		x, y := t.ToDots(r.Center)
		c.Circle(x, y, t.Length(r.Radius), heat)
		inner := t.Length(math.Min(r.Radius, RingBaseRadius+math.Abs(r.Intensity)*1.5))
		c.Circle(x, y, inner, heat)
	}
}

// OverlayInset is the distance in dots between the canvas edge and the
// running overlay frame at tick.
func OverlayInset(tick uint64) float64 {
	return 6 + math.Sin(float64(tick)*0.02)*2
}

// Overlay draws a frame that pulses around the canvas while the simulation
// runs.
type Overlay struct{}

func (Overlay) Name() string { return "overlay" }

func (Overlay) Draw(c *Canvas, _ Transform, f Frame) {
	if !f.Running {
		return
	}
	w, h := c.DotSize()
	inset := OverlayInset(f.Tick)
	x0, y0 := math.Round(inset), math.Round(inset/2)
	x1, y1 := float64(w-1)-x0, float64(h-1)-y0
	if x1 <= x0 || y1 <= y0 {
		return
	}
	c.Rect(x0, y0, x1, y1, 1)
}
