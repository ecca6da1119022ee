package sim

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Store holds particle state. Positions keep a third coordinate so
// consumers that expect xyz triples can read them directly; the simulation
// never moves anything off Z=0.
type Store struct {
	pos   []r3.Vec
	prev  []r3.Vec
	fixed []bool // pinned particles do not yield to distance corrections
}

// NewStore allocates count particles at the origin.
func NewStore(count int) *Store {
	return &Store{
		pos:   make([]r3.Vec, count),
		prev:  make([]r3.Vec, count),
		fixed: make([]bool, count),
	}
}

// Len returns the particle count.
func (s *Store) Len() int { return len(s.pos) }

// SetPosition places particle i at (x, y) at rest: the previous position is
// set too, so the particle has no implicit velocity.
func (s *Store) SetPosition(i int, x, y float64) {
	p := r3.Vec{X: x, Y: y}
	s.pos[i] = p
	s.prev[i] = p
}

// Position returns the current position of particle i.
func (s *Store) Position(i int) r2.Vec {
	return r2.Vec{X: s.pos[i].X, Y: s.pos[i].Y}
}

// Previous returns the position of particle i before the last step.
func (s *Store) Previous(i int) r2.Vec {
	return r2.Vec{X: s.prev[i].X, Y: s.prev[i].Y}
}

// Distance returns the current separation of particles i and j.
func (s *Store) Distance(i, j int) float64 {
	return r3.Norm(r3.Sub(s.pos[i], s.pos[j]))
}

// Speed returns the distance particle i travelled in the last step.
func (s *Store) Speed(i int) float64 {
	return r3.Norm(r3.Sub(s.pos[i], s.prev[i]))
}

// Positions returns the raw xyz storage. Callers must not modify it.
func (s *Store) Positions() []r3.Vec { return s.pos }
