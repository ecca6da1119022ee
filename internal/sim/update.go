package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/control"
)

const (
	// MuscleMinRatio is the lower bound of a muscle's live interval relative
	// to its current target length.
	MuscleMinRatio = 0.9
	// MaxSeekVelocity caps the seek velocity fed into the nudge force.
	MaxSeekVelocity = 3.0
	// NudgeBias keeps the nudge force active when the pointer is still.
	NudgeBias = 2.0
)

// Pulse is the shared ambient oscillator, sin(tick * 0.01).
func Pulse(tick uint64) float64 {
	return math.Sin(float64(tick) * 0.01)
}

// MuscleScale is the fraction of rest length muscles reach at tick, in
// [0.5, 1].
func MuscleScale(tick uint64) float64 {
	return Pulse(tick)*0.25 + 0.75
}

// NudgeAngle is the rotation applied to the seek position at tick: a
// discrete sweep around the origin in polar steps.
func NudgeAngle(tick uint64, polar int) float64 {
	if polar < 1 {
		polar = 1
	}
	step := 2 * math.Pi / float64(polar)
	return step * float64(tick%uint64(polar))
}

// Update advances the session one tick using the given control and seek
// snapshot, then copies particle positions into the geometry.
func (s *Session) Update(tick uint64, snap control.Snapshot) {
	s.updateMuscles(tick)
	s.updateForces(tick, snap)
	s.system.Step()
	s.syncGeometry()
}

func (s *Session) updateMuscles(tick uint64) {
	scale := MuscleScale(tick)
	for _, g := range s.muscles {
		for _, l := range g.Links {
			next := l.Rest * scale
			l.Constraint.SetRange(next*MuscleMinRatio, next)
		}
	}
}

func (s *Session) updateForces(tick uint64, snap control.Snapshot) {
	ctl := snap.Control
	pulse := Pulse(tick)
	for i, id := range control.ForceIDs {
		f := s.forces[i]
		f.Radius = ctl.ScaledRadius(id)
		fc, _ := ctl.Force(id)

		if id == control.ForceNudge {
			f.Position = r2.Rotate(snap.Seek.Move, NudgeAngle(tick, ctl.Polar()), r2.Vec{})
			f.Intensity = math.Min(snap.Seek.Velocity, MaxSeekVelocity)*fc.Intensity*10 + NudgeBias
			continue
		}
		f.Position = r2.Vec{}
		f.Intensity = pulse * fc.Intensity * 0.1
	}
}

func (s *Session) syncGeometry() {
	store := s.system.store
	for i := range s.target.Vertices {
		s.target.Vertices[i] = store.Position(i)
	}
}
