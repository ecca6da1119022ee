package visualizer

import "gonum.org/v1/gonum/spatial/r2"

// Transform maps world coordinates (Y up) onto canvas dots (Y down) with a
// uniform scale.
type Transform struct {
	Scale  float64
	Min    r2.Vec // world point drawn at Offset
	Offset r2.Vec // dot position of Min, before the Y flip
	Height int    // canvas height in dots
}

// Fit returns the transform that centres the world box [min, max] on a
// w x h dot canvas, leaving margin dots free on every side.
func Fit(min, max r2.Vec, w, h, margin int) Transform {
	span := r2.Sub(max, min)
	if span.X <= 0 {
		span.X = 1
	}
	if span.Y <= 0 {
		span.Y = 1
	}
	availW := float64(w - 1 - 2*margin)
	availH := float64(h - 1 - 2*margin)
	if availW < 1 {
		availW = 1
	}
	if availH < 1 {
		availH = 1
	}

	scale := availW / span.X
	if s := availH / span.Y; s < scale {
		scale = s
	}
	used := r2.Scale(scale, span)
	return Transform{
		Scale: scale,
		Min:   min,
		Offset: r2.Vec{
			X: float64(margin) + (availW-used.X)/2,
			Y: float64(margin) + (availH-used.Y)/2,
		},
		Height: h,
	}
}

// ToDots converts a world point into fractional dot coordinates.
func (t Transform) ToDots(p r2.Vec) (x, y float64) {
	d := r2.Add(r2.Scale(t.Scale, r2.Sub(p, t.Min)), t.Offset)
	return d.X, float64(t.Height-1) - d.Y
}

// ToWorld converts dot coordinates back into a world point.
func (t Transform) ToWorld(x, y float64) r2.Vec {
	if t.Scale == 0 {
		return t.Min
	}
	d := r2.Vec{X: x, Y: float64(t.Height-1) - y}
	return r2.Add(t.Min, r2.Scale(1/t.Scale, r2.Sub(d, t.Offset)))
}

// Length converts a world distance into dots.
func (t Transform) Length(d float64) float64 { return d * t.Scale }
