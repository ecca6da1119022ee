package control

// Message is a control or seek update. Updates are queued by the host and
// applied by the simulation only at tick boundaries.
type Message interface {
	isMessage()
}

// SetForce replaces the control whose ID matches Force.ID, appending it when
// no such control exists yet.
type SetForce struct {
	Force ForceControl
}

// SetScales replaces the named radius scales.
type SetScales struct {
	Scales []Scale
}

// SetPolarIterations sets the number of discrete nudge sweep positions.
type SetPolarIterations struct {
	N int
}

// SetSeek replaces the seek state.
type SetSeek struct {
	Seek Seek
}

func (SetForce) isMessage()           {}
func (SetScales) isMessage()          {}
func (SetPolarIterations) isMessage() {}
func (SetSeek) isMessage()            {}

// Snapshot is everything a tick reads from the outside world.
type Snapshot struct {
	Control State
	Seek    Seek
}

// Apply returns s with m applied. s is not modified.
func (s Snapshot) Apply(m Message) Snapshot {
	next := Snapshot{Control: s.Control.Clone(), Seek: s.Seek}
	switch m := m.(type) {
	case SetForce:
		for i, f := range next.Control.Forces {
			if f.ID == m.Force.ID {
				next.Control.Forces[i] = m.Force
				return next
			}
		}
		next.Control.Forces = append(next.Control.Forces, m.Force)
	case SetScales:
		next.Control.Scales = append([]Scale(nil), m.Scales...)
	case SetPolarIterations:
		next.Control.PolarIterations = m.N
	case SetSeek:
		next.Seek = m.Seek
	}
	return next
}
