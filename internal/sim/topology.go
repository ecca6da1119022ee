package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/olivier-w/softrig/internal/geometry"
)

const (
	// BoneMinRatio is the shortest a bone may get relative to its rest length.
	BoneMinRatio = 0.95
	// PlaneFriction is the tangential damping of the bounding plane.
	PlaneFriction = 0.01
)

// Build derives a session from a geometry snapshot. Indices are validated
// before anything is allocated; on error no session exists.
func Build(g *geometry.Geometry) (*Session, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}

	store := NewStore(len(g.Vertices))
	for i, v := range g.Vertices {
		store.SetPosition(i, v.X, v.Y)
	}

	s := &Session{system: NewSystem(store), target: g}
	for si, seg := range g.Segments {
		switch seg.Role {
		case geometry.Anchor:
			s.pinSegment(seg)
		case geometry.Bone:
			s.bones = append(s.bones, s.linkSegment(si, seg))
		case geometry.Muscle:
			s.muscles = append(s.muscles, s.linkSegment(si, seg))
		}
	}

	s.system.Add(&Plane{
		Normal:      r3.Vec{Z: 1},
		MaxDistance: math.Inf(1),
		Friction:    PlaneFriction,
	})

	s.forces = [3]*Force{
		{Kind: Repulsor}, // nudge
		{Kind: Repulsor}, // diffusor
		{Kind: Rotator},  // rotator
	}
	for _, f := range s.forces {
		s.system.AddForce(f)
	}
	return s, nil
}

// pinSegment pins every index of an anchor segment. A closed segment skips
// its first index.
func (s *Session) pinSegment(seg geometry.Segment) {
	store := s.system.store
	for i, idx := range seg.Indices {
		if seg.Closed && i == 0 {
			continue
		}
		s.system.Add(&Pin{Index: idx, Target: store.pos[idx]})
	}
}

func (s *Session) linkSegment(si int, seg geometry.Segment) Group {
	store := s.system.store
	edges := seg.Edges()
	group := Group{Segment: si, Links: make([]Link, 0, len(edges))}
	for _, e := range edges {
		d := store.Distance(e[0], e[1])
		c := &Distance{A: e[0], B: e[1], Min: d * BoneMinRatio, Max: d}
		s.system.Add(c)
		group.Links = append(group.Links, Link{Constraint: c, Rest: d})
	}
	return group
}
