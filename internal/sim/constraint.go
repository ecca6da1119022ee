package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind identifies a constraint variant. Constraints are resolved in
// ascending Kind order every step.
type Kind uint8

const (
	KindPin Kind = iota
	KindDistance
	KindPlane
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindPin:
		return "pin"
	case KindDistance:
		return "distance"
	case KindPlane:
		return "plane"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Constraint corrects particle positions after free integration. The set of
// implementations is closed: Pin, Distance and Plane.
type Constraint interface {
	Kind() Kind
	apply(s *Store)
}

// Pin holds one particle at a fixed target.
type Pin struct {
	Index  int
	Target r3.Vec
}

func (*Pin) Kind() Kind { return KindPin }

func (c *Pin) apply(s *Store) {
	s.pos[c.Index] = c.Target
}

// Distance keeps the separation of particles A and B within [Min, Max].
// Inside the interval nothing happens; outside it the pair is pulled or
// pushed along its axis to the nearest bound. Free particles share the
// correction equally; a pinned particle does not move.
type Distance struct {
	A, B     int
	Min, Max float64
}

func (*Distance) Kind() Kind { return KindDistance }

// SetRange replaces the live interval.
func (c *Distance) SetRange(min, max float64) {
	c.Min = min
	c.Max = max
}

func (c *Distance) apply(s *Store) {
	a, b := s.pos[c.A], s.pos[c.B]
	delta := r3.Sub(b, a)
	d := r3.Norm(delta)
	if d == 0 {
		return
	}

	var target float64
	switch {
	case d < c.Min:
		target = c.Min
	case d > c.Max:
		target = c.Max
	default:
		return
	}

	wa, wb := 1.0, 1.0
	if s.fixed[c.A] {
		wa = 0
	}
	if s.fixed[c.B] {
		wb = 0
	}
	total := wa + wb
	if total == 0 {
		return
	}

	excess := (d - target) / d
	s.pos[c.A] = r3.Add(a, r3.Scale(excess*wa/total, delta))
	s.pos[c.B] = r3.Sub(b, r3.Scale(excess*wb/total, delta))
}

// Plane keeps every particle in the slab 0 <= dist <= MaxDistance, where
// dist is measured from Origin along the unit Normal. A corrected particle
// loses Friction of its tangential velocity.
type Plane struct {
	Origin      r3.Vec
	Normal      r3.Vec
	MaxDistance float64
	Friction    float64
}

func (*Plane) Kind() Kind { return KindPlane }

func (c *Plane) apply(s *Store) {
	for i, p := range s.pos {
		dist := r3.Dot(r3.Sub(p, c.Origin), c.Normal)

		var shift float64
		switch {
		case dist < 0:
			shift = -dist
		case dist > c.MaxDistance:
			shift = c.MaxDistance - dist
		default:
			continue
		}
		p = r3.Add(p, r3.Scale(shift, c.Normal))

		if c.Friction != 0 {
			v := r3.Sub(p, s.prev[i])
			tangential := r3.Sub(v, r3.Scale(r3.Dot(v, c.Normal), c.Normal))
			p = r3.Sub(p, r3.Scale(c.Friction, tangential))
		}
		s.pos[i] = p
	}
}

// registrars routes each constraint kind to its resolution bucket.
var registrars = [kindCount]func(sys *System, c Constraint){
	KindPin: func(sys *System, c Constraint) {
		pin := c.(*Pin)
		sys.store.fixed[pin.Index] = true
		sys.constraints[KindPin] = append(sys.constraints[KindPin], c)
	},
	KindDistance: func(sys *System, c Constraint) {
		sys.constraints[KindDistance] = append(sys.constraints[KindDistance], c)
	},
	KindPlane: func(sys *System, c Constraint) {
		sys.constraints[KindPlane] = append(sys.constraints[KindPlane], c)
	},
}
