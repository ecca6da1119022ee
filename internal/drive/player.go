package drive

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// sink is the subset of *oto.Player the Player drives.
type sink interface {
	Play()
	Pause()
}

var _ sink = (*oto.Player)(nil)

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

// Player plays a decoded track alongside the simulation.
type Player struct {
	out         sink
	counter     *countingReader
	bytesPerSec int
	duration    time.Duration
	paused      bool
	closed      bool
	mu          sync.Mutex
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
	otoFormat    [2]int // sample rate, channels
)

// initOto creates the process-wide audio context. oto allows one context per
// process, so every later track must share the first track's format.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoFormat = [2]int{sampleRate, channels}
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("opening audio device: %w", otoInitErr)
	}
	if otoFormat != [2]int{sampleRate, channels} {
		return nil, fmt.Errorf("audio device already open at %d Hz/%d ch", otoFormat[0], otoFormat[1])
	}
	return globalOtoCtx, nil
}

// NewPlayer starts playing pcm immediately.
func NewPlayer(pcm *PCM) (*Player, error) {
	ctx, err := initOto(pcm.SampleRate, pcm.Channels)
	if err != nil {
		return nil, err
	}
	p := newPlayer(pcm)
	op := ctx.NewPlayer(p.counter)
	op.SetVolume(0.8)
	p.out = op
	p.out.Play()
	return p, nil
}

func newPlayer(pcm *PCM) *Player {
	return &Player{
		counter:     &countingReader{reader: bytes.NewReader(pcm.Bytes())},
		bytesPerSec: pcm.SampleRate * pcm.Channels * 2,
		duration:    pcm.Duration(),
	}
}

// Pause stops playback. It is a no-op when already paused.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused || p.closed {
		return
	}
	p.paused = true
	if p.out != nil {
		p.out.Pause()
	}
}

// Resume continues playback. It is a no-op unless paused.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused || p.closed {
		return
	}
	p.paused = false
	if p.out != nil {
		p.out.Play()
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns how much of the track has been handed to the device.
func (p *Player) Position() time.Duration {
	if p.bytesPerSec == 0 {
		return 0
	}
	secs := float64(p.counter.Pos()) / float64(p.bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Close stops playback. Further calls do nothing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.out != nil {
		p.out.Pause()
	}
}
