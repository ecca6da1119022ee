package sim

import (
	"iter"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/geometry"
)

// Link is a distance constraint with the rest length measured when it was
// created.
type Link struct {
	Constraint *Distance
	Rest       float64
}

// Group is the set of links built from one bone or muscle segment.
type Group struct {
	Segment int
	Links   []Link
}

// Stats summarises a built session.
type Stats struct {
	Particles int
	Pins      int
	Distances int
	Planes    int
	Forces    int
	Bones     int
	Muscles   int
}

// Session is one activated simulation. It owns its particle storage; the
// geometry is only written to by explicit copy-back at the end of Update.
type Session struct {
	system  *System
	target  *geometry.Geometry
	bones   []Group
	muscles []Group
	forces  [3]*Force // nudge, diffusor, rotator
}

// System returns the underlying particle system.
func (s *Session) System() *System { return s.system }

// Bones returns the bone groups.
func (s *Session) Bones() []Group { return s.bones }

// Muscles returns the muscle groups.
func (s *Session) Muscles() []Group { return s.muscles }

// Force returns the session force for a control id, or nil.
func (s *Session) Force(id string) *Force {
	for i, fid := range control.ForceIDs {
		if fid == id {
			return s.forces[i]
		}
	}
	return nil
}

// Stats reports constraint and force counts.
func (s *Session) Stats() Stats {
	return Stats{
		Particles: s.system.store.Len(),
		Pins:      s.system.Count(KindPin),
		Distances: s.system.Count(KindDistance),
		Planes:    s.system.Count(KindPlane),
		Forces:    len(s.system.forces),
		Bones:     len(s.bones),
		Muscles:   len(s.muscles),
	}
}

// Velocities returns per-particle speeds in index order, each the distance
// between the particle's current and previous position. The sequence reads
// live state when iterated and can be ranged over any number of times.
func (s *Session) Velocities() iter.Seq[float64] {
	store := s.system.store
	return func(yield func(float64) bool) {
		for i := range store.Len() {
			if !yield(store.Speed(i)) {
				return
			}
		}
	}
}
