package ui

import (
	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/control"
)

const (
	seekFrequency = 6.0
	seekDamping   = 0.7
)

// seekSpring smooths pointer motion into seek input. Its speed, in world
// units per tick, becomes the seek velocity.
type seekSpring struct {
	spring harmonica.Spring
	fps    int
	pos    r2.Vec
	vel    r2.Vec
	target r2.Vec
}

func newSeekSpring(fps int) seekSpring {
	return seekSpring{
		spring: harmonica.NewSpring(harmonica.FPS(fps), seekFrequency, seekDamping),
		fps:    fps,
	}
}

func (s *seekSpring) setTarget(p r2.Vec) {
	s.target = p
}

func (s *seekSpring) step() control.Seek {
	s.pos.X, s.vel.X = s.spring.Update(s.pos.X, s.vel.X, s.target.X)
	s.pos.Y, s.vel.Y = s.spring.Update(s.pos.Y, s.vel.Y, s.target.Y)
	return control.Seek{Move: s.pos, Velocity: r2.Norm(s.vel) / float64(s.fps)}
}
