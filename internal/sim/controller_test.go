package sim

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/geometry"
)

// quietControls zeroes every configured intensity.
func quietControls() control.State {
	ctl := control.Defaults()
	for i := range ctl.Forces {
		ctl.Forces[i].Intensity = 0
	}
	return ctl
}

func TestControllerStateMachine(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	if c.State() != Idle {
		t.Fatalf("expected idle, got %v", c.State())
	}

	c.TogglePause()
	if c.State() != Idle {
		t.Fatal("expected pause to be ignored while idle")
	}

	if err := c.Activate(); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if c.State() != Running {
		t.Fatalf("expected running, got %v", c.State())
	}
	s := c.Session()

	if err := c.Activate(); err != nil {
		t.Fatalf("second Activate returned error: %v", err)
	}
	if c.Session() != s {
		t.Fatal("expected redundant activate to keep the session")
	}

	c.TogglePause()
	if c.State() != Paused {
		t.Fatalf("expected paused, got %v", c.State())
	}
	c.TogglePause()
	if c.State() != Running || c.Session() != s {
		t.Fatal("expected unpause to resume the same session")
	}

	c.Deactivate()
	if c.State() != Idle || c.Session() != nil {
		t.Fatal("expected idle with no session")
	}
	c.Deactivate()
	if c.State() != Idle {
		t.Fatal("expected redundant deactivate to be a no-op")
	}
}

func TestControllerToggle(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	if err := c.Toggle(); err != nil || c.State() != Running {
		t.Fatalf("expected running after toggle, got %v (%v)", c.State(), err)
	}
	if err := c.Toggle(); err != nil || c.State() != Idle {
		t.Fatalf("expected idle after second toggle, got %v (%v)", c.State(), err)
	}
}

func TestControllerActivateErrorStaysIdle(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{}},
		Segments: []geometry.Segment{{Indices: []int{0, 9}, Role: geometry.Bone}},
	}
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err == nil {
		t.Fatal("expected activation error")
	}
	if c.State() != Idle || c.Session() != nil {
		t.Fatal("expected controller to stay idle")
	}
	if _, ok := c.ComputeParticleVelocities(); ok {
		t.Fatal("expected no velocities after failed activation")
	}
}

func TestPausedTickIsNoOp(t *testing.T) {
	g := boneGeometry()
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Send(control.SetSeek{Seek: control.Seek{Move: r2.Vec{X: 2}, Velocity: 3}})
	c.Tick()
	before := slices.Clone(g.Vertices)
	ticks := c.Ticks()

	c.TogglePause()
	for range 5 {
		c.Tick()
	}
	if c.Ticks() != ticks {
		t.Fatalf("expected tick counter frozen at %d, got %d", ticks, c.Ticks())
	}
	if !slices.Equal(before, g.Vertices) {
		t.Fatalf("expected geometry unchanged while paused, got %v", g.Vertices)
	}
}

func TestMuscleIntervalAtTickZero(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{}, {X: 8}},
		Segments: []geometry.Segment{{Indices: []int{0, 1}, Role: geometry.Muscle}},
	}
	c := NewController(g, quietControls())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Tick()

	l := c.Session().Muscles()[0].Links[0]
	if !near(l.Constraint.Min, 0.675*8, 1e-12) || !near(l.Constraint.Max, 0.75*8, 1e-12) {
		t.Fatalf("expected [5.4, 6], got [%v, %v]", l.Constraint.Min, l.Constraint.Max)
	}
}

func TestMuscleIntervalFollowsOscillator(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{}, {X: 8}},
		Segments: []geometry.Segment{{Indices: []int{0, 1}, Role: geometry.Muscle}},
	}
	c := NewController(g, quietControls())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for tick := range uint64(200) {
		c.Tick()
		l := c.Session().Muscles()[0].Links[0]
		next := 8 * (math.Sin(float64(tick)*0.01)*0.25 + 0.75)
		if !near(l.Constraint.Max, next, 1e-12) || !near(l.Constraint.Min, next*0.9, 1e-12) {
			t.Fatalf("tick %d: expected [%v, %v], got [%v, %v]", tick, next*0.9, next, l.Constraint.Min, l.Constraint.Max)
		}
	}
}

func TestBoneIntervalNeverChanges(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for range 300 {
		c.Tick()
		l := c.Session().Bones()[0].Links[0]
		if l.Constraint.Min != 9.5 || l.Constraint.Max != 10 {
			t.Fatalf("bone interval changed to [%v, %v]", l.Constraint.Min, l.Constraint.Max)
		}
	}
}

func TestBoneSeparationHoldsFor100Ticks(t *testing.T) {
	g := boneGeometry()
	c := NewController(g, quietControls())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for tick := range 100 {
		c.Tick()
		d := c.Session().System().Store().Distance(0, 1)
		if d < 9.5-1e-4 || d > 10+1e-4 {
			t.Fatalf("tick %d: separation %v outside [9.5, 10]", tick, d)
		}
	}
}

func TestLastLinkIntervalHoldsUnderForces(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{X: 1, Y: 1}, {X: 6, Y: 2}, {X: 12, Y: 0}, {X: 15, Y: 5}},
		Segments: []geometry.Segment{
			{Indices: []int{0, 1, 2}, Role: geometry.Bone},
			{Indices: []int{2, 3}, Role: geometry.Muscle},
		},
	}
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Send(control.SetSeek{Seek: control.Seek{Move: r2.Vec{X: 4, Y: 1}, Velocity: 2}})

	// Links that share particle 2 are resolved in sequence, so only the
	// last link touching a particle is exact.
	for range 200 {
		c.Tick()
		store := c.Session().System().Store()
		last := c.Session().Muscles()[0].Links[0]
		d := store.Distance(last.Constraint.A, last.Constraint.B)
		if d < last.Constraint.Min-1e-4 || d > last.Constraint.Max+1e-4 {
			t.Fatalf("muscle separation %v outside [%v, %v]", d, last.Constraint.Min, last.Constraint.Max)
		}
	}
}

func TestPinsHoldExactlyWhileActive(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 8, Y: 0}},
		Segments: []geometry.Segment{
			{Indices: []int{0}, Role: geometry.Anchor},
			{Indices: []int{0, 1, 2}, Role: geometry.Muscle},
		},
	}
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Send(control.SetSeek{Seek: control.Seek{Move: r2.Vec{X: 1}, Velocity: 3}})
	for range 150 {
		c.Tick()
		if p := c.Session().System().Store().Position(0); p != (r2.Vec{}) {
			t.Fatalf("pinned particle moved to %v", p)
		}
	}
}

func TestClosedAnchorFirstIndexMovesUnderForce(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{X: 5}, {X: 30}, {X: 30, Y: 30}, {Y: 30}},
		Segments: []geometry.Segment{{Indices: []int{0, 1, 2, 3}, Closed: true, Role: geometry.Anchor}},
	}
	fixed := slices.Clone(g.Vertices[1:])
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		c.Tick()
	}

	if g.Vertices[0] == (r2.Vec{X: 5}) {
		t.Fatal("expected unpinned index 0 to move under the nudge force")
	}
	if !slices.Equal(g.Vertices[1:], fixed) {
		t.Fatalf("expected indices 1-3 fixed at %v, got %v", fixed, g.Vertices[1:])
	}
}

func TestNudgeParametersFollowSeek(t *testing.T) {
	ctl := control.Defaults()
	ctl.PolarIterations = 4
	c := NewController(boneGeometry(), ctl)
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Send(control.SetSeek{Seek: control.Seek{Move: r2.Vec{X: 10}, Velocity: 7}})

	c.Tick() // tick 0: no rotation
	nudge := c.Session().Force(control.ForceNudge)
	if !near(nudge.Position.X, 10, eps) || !near(nudge.Position.Y, 0, eps) {
		t.Fatalf("tick 0: expected nudge at (10, 0), got %v", nudge.Position)
	}
	// velocity capped at 3: 3 * 0.5 * 10 + 2
	if !near(nudge.Intensity, 17, eps) {
		t.Fatalf("expected intensity 17, got %v", nudge.Intensity)
	}
	if !near(nudge.Radius, 10, eps) {
		t.Fatalf("expected radius 10*1, got %v", nudge.Radius)
	}

	c.Tick() // tick 1: quarter turn
	if !near(nudge.Position.X, 0, 1e-9) || !near(nudge.Position.Y, 10, 1e-9) {
		t.Fatalf("tick 1: expected nudge at (0, 10), got %v", nudge.Position)
	}

	for range 3 {
		c.Tick()
	}
	// tick 4 wraps back to angle 0
	if !near(nudge.Position.X, 10, 1e-9) {
		t.Fatalf("tick 4: expected sweep to wrap, got %v", nudge.Position)
	}
}

func TestAmbientForcesPulse(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for range 51 {
		c.Tick()
	}
	// last tick simulated was 50
	want := math.Sin(0.5) * 0.5 * 0.1
	for _, id := range []string{control.ForceDiffusor, control.ForceRotator} {
		f := c.Session().Force(id)
		if !near(f.Intensity, want, eps) {
			t.Fatalf("%s: expected intensity %v, got %v", id, want, f.Intensity)
		}
		if f.Position != (r2.Vec{}) {
			t.Fatalf("%s: expected origin, got %v", id, f.Position)
		}
		if !near(f.Radius, 80, eps) {
			t.Fatalf("%s: expected radius 80, got %v", id, f.Radius)
		}
	}
}

func TestMessagesApplyAtTickBoundary(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Send(control.SetPolarIterations{N: 9})
	if c.Snapshot().Control.PolarIterations != 1 {
		t.Fatal("expected message to wait for the next tick")
	}
	c.Tick()
	if c.Snapshot().Control.PolarIterations != 9 {
		t.Fatalf("expected polar 9 after tick, got %d", c.Snapshot().Control.PolarIterations)
	}
}

func TestSendReportsFullInbox(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults(), WithInboxSize(1))
	if !c.Send(control.SetPolarIterations{N: 2}) {
		t.Fatal("expected first send to succeed")
	}
	if c.Send(control.SetPolarIterations{N: 3}) {
		t.Fatal("expected second send to report a full inbox")
	}
}

func TestVelocitiesAbsentWhenIdle(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	seq, ok := c.ComputeParticleVelocities()
	if ok || seq != nil {
		t.Fatal("expected no velocities while idle")
	}
}

func TestVelocitiesOnePerParticleInOrder(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{X: 5}, {X: 30}, {X: 30, Y: 30}},
		Segments: []geometry.Segment{{Indices: []int{1, 2}, Role: geometry.Anchor}},
	}
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	c.Tick()

	seq, ok := c.ComputeParticleVelocities()
	if !ok {
		t.Fatal("expected velocities while active")
	}
	got := slices.Collect(seq)
	if len(got) != len(g.Vertices) {
		t.Fatalf("expected %d values, got %d", len(g.Vertices), len(got))
	}
	store := c.Session().System().Store()
	for i, v := range got {
		want := r2.Norm(r2.Sub(store.Position(i), store.Previous(i)))
		if !near(v, want, eps) {
			t.Fatalf("particle %d: expected %v, got %v", i, want, v)
		}
	}
	if got[0] == 0 {
		t.Fatal("expected the free particle near the nudge to move")
	}
	if got[1] != 0 || got[2] != 0 {
		t.Fatalf("expected pinned particles to be still, got %v", got[1:])
	}

	again := slices.Collect(seq)
	if !slices.Equal(got, again) {
		t.Fatal("expected sequence to be restartable")
	}
}

func TestDeactivateKeepsLastSimulatedGeometry(t *testing.T) {
	g := &geometry.Geometry{
		Vertices: []r2.Vec{{X: 3}, {X: 13}, {X: 13, Y: 6}},
		Segments: []geometry.Segment{{Indices: []int{0, 1, 2}, Role: geometry.Bone}},
	}
	c := NewController(g, control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for range 25 {
		c.Tick()
	}
	store := c.Session().System().Store()
	last := make([]r2.Vec, store.Len())
	for i := range last {
		last[i] = store.Position(i)
	}

	c.Deactivate()
	if len(g.Vertices) != 3 {
		t.Fatalf("expected vertex count preserved, got %d", len(g.Vertices))
	}
	if !slices.Equal(g.Vertices, last) {
		t.Fatalf("expected geometry %v, got %v", last, g.Vertices)
	}
}

func TestReactivateRestartsTickCounter(t *testing.T) {
	c := NewController(boneGeometry(), control.Defaults())
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	for range 7 {
		c.Tick()
	}
	c.Deactivate()
	if err := c.Activate(); err != nil {
		t.Fatal(err)
	}
	if c.Ticks() != 0 {
		t.Fatalf("expected tick counter reset, got %d", c.Ticks())
	}
}

func TestSpeedSummary(t *testing.T) {
	got := SpeedSummary(slices.Values([]float64{1, 2, 6}))
	if got.Max != 6 || got.Mean != 3 {
		t.Fatalf("expected max 6 mean 3, got %+v", got)
	}
	if (SpeedSummary(nil) != Speeds{}) {
		t.Fatal("expected zero summary for nil")
	}
	if (SpeedSummary(slices.Values([]float64(nil))) != Speeds{}) {
		t.Fatal("expected zero summary for empty")
	}
}

func TestInboxSizeBelowOneFallsBackToDefault(t *testing.T) {
	for _, n := range []int{0, -3} {
		c := NewController(boneGeometry(), control.Defaults(), WithInboxSize(n))
		if cap(c.inbox) != DefaultInboxSize {
			t.Fatalf("WithInboxSize(%d): expected capacity %d, got %d", n, DefaultInboxSize, cap(c.inbox))
		}
		if !c.Send(control.SetPolarIterations{N: 4}) {
			t.Fatalf("WithInboxSize(%d): expected send to be queued", n)
		}
		c.Tick()
		if got := c.Snapshot().Control.PolarIterations; got != 4 {
			t.Fatalf("WithInboxSize(%d): expected 4 polar iterations, got %d", n, got)
		}
	}
}
