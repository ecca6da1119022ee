package sim

import (
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/geometry"
)

// State is the activation state of a Controller.
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// DefaultInboxSize is the number of control messages that can be queued
// between two ticks.
const DefaultInboxSize = 64

// Controller owns the simulation lifecycle for one geometry. It is driven
// from a single goroutine; only Send may be called concurrently.
type Controller struct {
	geometry *geometry.Geometry
	snap     control.Snapshot
	inbox    chan control.Message
	log      *zap.Logger

	session *Session
	paused  bool
	tick    uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithInboxSize sets the message queue capacity. Sizes below 1 fall back
// to DefaultInboxSize.
func WithInboxSize(n int) Option {
	if n < 1 {
		n = DefaultInboxSize
	}
	return func(c *Controller) { c.inbox = make(chan control.Message, n) }
}

// NewController returns an idle controller for g.
func NewController(g *geometry.Geometry, ctl control.State, opts ...Option) *Controller {
	c := &Controller{
		geometry: g,
		snap:     control.Snapshot{Control: ctl.Clone()},
		inbox:    make(chan control.Message, DefaultInboxSize),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the activation state.
func (c *Controller) State() State {
	switch {
	case c.session == nil:
		return Idle
	case c.paused:
		return Paused
	default:
		return Running
	}
}

// Ticks returns the number of ticks simulated in the current session.
func (c *Controller) Ticks() uint64 { return c.tick }

// Session returns the active session, or nil when idle.
func (c *Controller) Session() *Session { return c.session }

// Snapshot returns the control and seek state the next tick will start from,
// before any queued messages are applied.
func (c *Controller) Snapshot() control.Snapshot { return c.snap }

// Activate builds a session from the geometry. It is a no-op when a session
// already exists. A configuration error leaves the controller idle.
func (c *Controller) Activate() error {
	if c.session != nil {
		return nil
	}
	start := time.Now()
	s, err := Build(c.geometry)
	if err != nil {
		c.log.Warn("simulation activation failed", zap.Error(err))
		return fmt.Errorf("activating simulation: %w", err)
	}
	c.session = s
	c.paused = false
	c.tick = 0

	st := s.Stats()
	c.log.Info("simulation created",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("particles", st.Particles),
		zap.Int("pins", st.Pins),
		zap.Int("distances", st.Distances),
		zap.Int("forces", st.Forces))
	return nil
}

// Deactivate discards the session. The geometry keeps the last simulated
// positions. It is a no-op when idle.
func (c *Controller) Deactivate() {
	if c.session == nil {
		return
	}
	c.session = nil
	c.paused = false
	c.log.Info("simulation destroyed", zap.Uint64("ticks", c.tick))
}

// Toggle activates when idle and deactivates otherwise.
func (c *Controller) Toggle() error {
	if c.session == nil {
		return c.Activate()
	}
	c.Deactivate()
	return nil
}

// TogglePause flips the paused flag of an active session.
func (c *Controller) TogglePause() {
	if c.session == nil {
		return
	}
	c.paused = !c.paused
	c.log.Debug("simulation pause toggled", zap.Bool("paused", c.paused))
}

// Send queues a control message for the next tick boundary. It never blocks
// and reports false when the queue is full.
func (c *Controller) Send(m control.Message) bool {
	select {
	case c.inbox <- m:
		return true
	default:
		c.log.Debug("control message dropped", zap.String("type", fmt.Sprintf("%T", m)))
		return false
	}
}

// Tick applies queued messages and, when running, advances the session one
// step using a single snapshot of control and seek state.
func (c *Controller) Tick() {
	c.drain()
	if c.session == nil || c.paused {
		return
	}
	c.session.Update(c.tick, c.snap)
	c.tick++
}

// ComputeParticleVelocities returns per-particle speeds in vertex order.
// ok is false when no session is active.
func (c *Controller) ComputeParticleVelocities() (seq iter.Seq[float64], ok bool) {
	if c.session == nil {
		return nil, false
	}
	return c.session.Velocities(), true
}

func (c *Controller) drain() {
	for {
		select {
		case m := <-c.inbox:
			c.snap = c.snap.Apply(m)
		default:
			return
		}
	}
}
