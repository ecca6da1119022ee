package drive

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/control"
)

// Frame is the loudness of one simulation tick worth of audio.
type Frame struct {
	Level   float64 // normalised RMS, 0..1
	Balance float64 // -1 left .. +1 right
}

// Envelope is a track reduced to one Frame per simulation tick, used to
// steer the nudge force without a pointer.
type Envelope struct {
	frames []Frame
	fps    int
}

// NewEnvelope slices pcm into windows of SampleRate/fps frames. Levels are
// normalised so the loudest window reaches 1.
func NewEnvelope(pcm *PCM, fps int) *Envelope {
	e := &Envelope{fps: fps}
	if fps < 1 || pcm.SampleRate < 1 || pcm.Channels < 1 {
		return e
	}
	window := pcm.SampleRate / fps
	if window < 1 {
		window = 1
	}

	total := pcm.Frames()
	left := make([]float64, 0, window)
	right := make([]float64, 0, window)
	for start := 0; start < total; start += window {
		end := min(start+window, total)
		left, right = left[:0], right[:0]
		for i := start; i < end; i++ {
			base := i * pcm.Channels
			l := float64(pcm.Samples[base]) / 32768
			r := l
			if pcm.Channels > 1 {
				r = float64(pcm.Samples[base+1]) / 32768
			}
			left = append(left, l)
			right = append(right, r)
		}
		e.frames = append(e.frames, windowFrame(left, right))
	}

	levels := make([]float64, len(e.frames))
	for i, f := range e.frames {
		levels[i] = f.Level
	}
	if len(levels) > 0 {
		if peak := floats.Max(levels); peak > 0 {
			for i := range e.frames {
				e.frames[i].Level /= peak
			}
		}
	}
	return e
}

func rms(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(xs, xs) / float64(len(xs)))
}

func windowFrame(left, right []float64) Frame {
	l, r := rms(left), rms(right)
	f := Frame{Level: (l + r) / 2}
	if sum := l + r; sum > 0 {
		f.Balance = (r - l) / sum
	}
	return f
}

// Len returns the number of frames.
func (e *Envelope) Len() int { return len(e.frames) }

// FPS returns the tick rate the envelope was built for.
func (e *Envelope) FPS() int { return e.fps }

// Frame returns the frame for tick, wrapping around at the end of the track.
func (e *Envelope) Frame(tick uint64) Frame {
	if len(e.frames) == 0 {
		return Frame{}
	}
	return e.frames[tick%uint64(len(e.frames))]
}

// Seek maps the frame for tick to seek input: balance swings the nudge
// sideways, level lifts it and sets its strength.
func (e *Envelope) Seek(tick uint64, reach float64) control.Seek {
	f := e.Frame(tick)
	return control.Seek{
		Move:     r2.Vec{X: f.Balance * reach, Y: f.Level * reach},
		Velocity: f.Level * MaxDriveVelocity,
	}
}

// MaxDriveVelocity is the seek velocity of a full-level frame, matching the
// nudge force's own cap.
const MaxDriveVelocity = 3.0
