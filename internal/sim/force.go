package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ForceKind identifies a force field variant.
type ForceKind uint8

const (
	Repulsor ForceKind = iota
	Rotator
	forceKindCount
)

func (k ForceKind) String() string {
	switch k {
	case Repulsor:
		return "repulsor"
	case Rotator:
		return "rotator"
	default:
		return fmt.Sprintf("force(%d)", uint8(k))
	}
}

// fieldDirections maps the unit vector from the force centre to the
// particle onto the direction the field pushes in.
var fieldDirections = [forceKindCount]func(dir r2.Vec) r2.Vec{
	Repulsor: func(dir r2.Vec) r2.Vec { return dir },
	Rotator:  func(dir r2.Vec) r2.Vec { return r2.Vec{X: -dir.Y, Y: dir.X} },
}

// Force is a radius-bounded field around Position. A positive Intensity
// pushes particles away (Repulsor) or turns them counter-clockwise
// (Rotator); a negative one does the opposite.
type Force struct {
	Kind      ForceKind
	Position  r2.Vec
	Radius    float64
	Intensity float64
}

// Acceleration returns the field's contribution at p. The magnitude falls
// off as 1-(d/r)^2 and is zero outside the radius, at the exact centre, and
// for a non-positive radius.
func (f *Force) Acceleration(p r2.Vec) r2.Vec {
	if f.Radius <= 0 || f.Intensity == 0 {
		return r2.Vec{}
	}
	delta := r2.Sub(p, f.Position)
	d := r2.Norm(delta)
	if d == 0 || d >= f.Radius {
		return r2.Vec{}
	}
	ratio := d / f.Radius
	factor := clamp01(1 - ratio*ratio)
	dir := r2.Scale(1/d, delta)
	return r2.Scale(f.Intensity*factor, fieldDirections[f.Kind](dir))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
