package control

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Force ids. The simulation creates one force per id, in this order.
const (
	ForceNudge    = "nudge"
	ForceDiffusor = "diffusor"
	ForceRotator  = "rotator"
)

// ForceIDs lists the force ids in session order.
var ForceIDs = []string{ForceNudge, ForceDiffusor, ForceRotator}

// ForceControl holds the user-facing parameters of one force.
type ForceControl struct {
	ID               string  `mapstructure:"id" yaml:"id"`
	Radius           float64 `mapstructure:"radius" yaml:"radius"`
	RadiusScaleIndex int     `mapstructure:"radius_scale_index" yaml:"radius_scale_index"`
	Intensity        float64 `mapstructure:"intensity" yaml:"intensity"`
}

// Scale is a named radius multiplier.
type Scale struct {
	Name  string  `mapstructure:"name" yaml:"name"`
	Value float64 `mapstructure:"value" yaml:"value"`
}

// State is the control panel as seen by one simulation tick.
type State struct {
	Forces          []ForceControl `mapstructure:"forces" yaml:"forces"`
	Scales          []Scale        `mapstructure:"scales" yaml:"scales"`
	PolarIterations int            `mapstructure:"polar_iterations" yaml:"polar_iterations"`
}

// Seek is the pointer-derived input state.
type Seek struct {
	Move     r2.Vec
	Velocity float64
}

// Defaults returns the control state used when no config file is present.
func Defaults() State {
	return State{
		Forces: []ForceControl{
			{ID: ForceNudge, Radius: 10, RadiusScaleIndex: 2, Intensity: 0.5},
			{ID: ForceDiffusor, Radius: 40, RadiusScaleIndex: 3, Intensity: 0.5},
			{ID: ForceRotator, Radius: 40, RadiusScaleIndex: 3, Intensity: 0.5},
		},
		Scales: []Scale{
			{Name: "xs", Value: 0.25},
			{Name: "s", Value: 0.5},
			{Name: "m", Value: 1},
			{Name: "l", Value: 2},
			{Name: "xl", Value: 4},
		},
		PolarIterations: 1,
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	c := s
	c.Forces = append([]ForceControl(nil), s.Forces...)
	c.Scales = append([]Scale(nil), s.Scales...)
	return c
}

// Force returns the control for id.
func (s State) Force(id string) (ForceControl, bool) {
	for _, f := range s.Forces {
		if f.ID == id {
			return f, true
		}
	}
	return ForceControl{}, false
}

// ScaledRadius returns the force radius multiplied by its selected scale.
// A missing force or an out-of-range scale index yields 0.
func (s State) ScaledRadius(id string) float64 {
	f, ok := s.Force(id)
	if !ok {
		return 0
	}
	if f.RadiusScaleIndex < 0 || f.RadiusScaleIndex >= len(s.Scales) {
		return 0
	}
	return f.Radius * s.Scales[f.RadiusScaleIndex].Value
}

// Polar returns the number of polar sweep steps, never less than 1.
func (s State) Polar() int {
	if s.PolarIterations < 1 {
		return 1
	}
	return s.PolarIterations
}

// Validate rejects control files that reference missing scales or use
// unknown force ids.
func (s State) Validate() error {
	if s.PolarIterations < 1 {
		return fmt.Errorf("polar_iterations must be at least 1, got %d", s.PolarIterations)
	}
	seen := make(map[string]bool, len(s.Forces))
	for _, f := range s.Forces {
		known := false
		for _, id := range ForceIDs {
			if f.ID == id {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown force id %q", f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("force %q listed twice", f.ID)
		}
		seen[f.ID] = true
		if f.RadiusScaleIndex < 0 || f.RadiusScaleIndex >= len(s.Scales) {
			return fmt.Errorf("force %q: radius_scale_index %d outside %d scales",
				f.ID, f.RadiusScaleIndex, len(s.Scales))
		}
	}
	return nil
}
