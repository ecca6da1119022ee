package sim

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// timestep scales accumulated acceleration. The system integrates in
// per-tick units.
const timestep = 1.0

// System is a particle store with its constraints and forces.
type System struct {
	store       *Store
	constraints [kindCount][]Constraint
	forces      []*Force
}

// NewSystem wraps store with no constraints or forces.
func NewSystem(store *Store) *System {
	return &System{store: store}
}

// Store returns the particle store.
func (sys *System) Store() *Store { return sys.store }

// Add registers a constraint. Pin constraints also mark their particle as
// fixed for distance resolution.
func (sys *System) Add(c Constraint) {
	registrars[c.Kind()](sys, c)
}

// AddForce registers a force field.
func (sys *System) AddForce(f *Force) {
	sys.forces = append(sys.forces, f)
}

// Count returns the number of registered constraints of kind k.
func (sys *System) Count(k Kind) int {
	return len(sys.constraints[k])
}

// Step advances the system one tick: integrate with the implicit velocity
// plus accumulated force acceleration, then resolve constraints once each
// in pin, distance, plane order.
func (sys *System) Step() {
	s := sys.store
	for i, p := range s.pos {
		v := r3.Sub(p, s.prev[i])

		var acc r2.Vec
		at := r2.Vec{X: p.X, Y: p.Y}
		for _, f := range sys.forces {
			acc = r2.Add(acc, f.Acceleration(at))
		}

		s.prev[i] = p
		s.pos[i] = r3.Add(r3.Add(p, v), r3.Vec{X: acc.X * timestep, Y: acc.Y * timestep})
	}

	for k := range kindCount {
		for _, c := range sys.constraints[k] {
			c.apply(s)
		}
	}
}
