package geometry

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Role tags a segment with the physics behaviour it receives when a
// simulation is built from the geometry.
type Role int

const (
	Anchor Role = iota // pinned in place
	Bone               // fixed length
	Muscle             // length oscillates over time
)

func (r Role) String() string {
	switch r {
	case Anchor:
		return "anchor"
	case Bone:
		return "bone"
	case Muscle:
		return "muscle"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole accepts the names produced by Role.String, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anchor":
		return Anchor, nil
	case "bone":
		return Bone, nil
	case "muscle":
		return Muscle, nil
	default:
		return 0, fmt.Errorf("unknown segment role %q (want anchor, bone or muscle)", s)
	}
}

// Segment is an ordered run of vertex indices.
type Segment struct {
	Indices []int
	Closed  bool
	Role    Role
}

// Geometry is the authored rig: a vertex sequence and the segments that
// reference it. The simulation writes vertex positions in place but never
// adds or removes vertices or segments.
type Geometry struct {
	Vertices []r2.Vec
	Segments []Segment
}

// ErrIndexOutOfRange is matched by every ConfigurationError.
var ErrIndexOutOfRange = errors.New("segment index out of range")

// ConfigurationError reports a segment that references a vertex outside the
// geometry.
type ConfigurationError struct {
	Segment  int // segment number
	Position int // position within the segment's index list
	Index    int // offending vertex index
	Count    int // vertex count
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("segment %d: index %d at position %d outside [0, %d)",
		e.Segment, e.Index, e.Position, e.Count)
}

func (e *ConfigurationError) Unwrap() error { return ErrIndexOutOfRange }

// Validate checks that every segment index addresses an existing vertex.
// The first offending index is reported.
func (g *Geometry) Validate() error {
	n := len(g.Vertices)
	for si, seg := range g.Segments {
		for pi, idx := range seg.Indices {
			if idx < 0 || idx >= n {
				return &ConfigurationError{Segment: si, Position: pi, Index: idx, Count: n}
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	c := &Geometry{
		Vertices: make([]r2.Vec, len(g.Vertices)),
		Segments: make([]Segment, len(g.Segments)),
	}
	copy(c.Vertices, g.Vertices)
	for i, s := range g.Segments {
		c.Segments[i] = Segment{
			Indices: append([]int(nil), s.Indices...),
			Closed:  s.Closed,
			Role:    s.Role,
		}
	}
	return c
}

// Bounds returns the axis-aligned box around all vertices. ok is false for
// empty geometry.
func (g *Geometry) Bounds() (min, max r2.Vec, ok bool) {
	if len(g.Vertices) == 0 {
		return r2.Vec{}, r2.Vec{}, false
	}
	min, max = g.Vertices[0], g.Vertices[0]
	for _, v := range g.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
	}
	return min, max, true
}

// Edges returns the consecutive index pairs of a segment's polyline. A closed
// segment is drawn with its closing edge, but the closing edge is not
// returned here; the simulation only ever constrains the open polyline.
func (s Segment) Edges() [][2]int {
	if len(s.Indices) < 2 {
		return nil
	}
	edges := make([][2]int, 0, len(s.Indices)-1)
	for i := 0; i < len(s.Indices)-1; i++ {
		edges = append(edges, [2]int{s.Indices[i], s.Indices[i+1]})
	}
	return edges
}
