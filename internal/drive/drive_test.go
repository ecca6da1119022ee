package drive

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func writeWAV(t *testing.T, path string, rate, bits, chans int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, bits, chans, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: chans, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestDecodeWAV16Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 8000, 16, 2, []int{1000, -1000, 2000, -2000, 0, 32767})

	pcm, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pcm.SampleRate != 8000 || pcm.Channels != 2 {
		t.Fatalf("expected 8000 Hz stereo, got %d Hz %d ch", pcm.SampleRate, pcm.Channels)
	}
	want := []int16{1000, -1000, 2000, -2000, 0, 32767}
	if len(pcm.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(pcm.Samples))
	}
	for i := range want {
		if pcm.Samples[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], pcm.Samples[i])
		}
	}
	if pcm.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d", pcm.Frames())
	}
}

func TestDecodeRejectsUnsupportedExt(t *testing.T) {
	_, err := Decode("track.aac")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestDecodeRejectsInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Decode(path); err == nil {
		t.Fatal("expected error for invalid WAV")
	}
}

func TestPCMBytesAndDuration(t *testing.T) {
	pcm := &PCM{Samples: []int16{1, -1, 256, 0}, SampleRate: 2, Channels: 2}
	got := pcm.Bytes()
	want := []byte{1, 0, 0xff, 0xff, 0, 1, 0, 0}
	if string(got) != string(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if pcm.Duration() != time.Second {
		t.Fatalf("expected 1s, got %v", pcm.Duration())
	}
}

func TestEnvelopeNormalisesLevelAndBalance(t *testing.T) {
	// 4 Hz stereo at 2 fps: two windows of two frames each.
	pcm := &PCM{
		SampleRate: 4,
		Channels:   2,
		Samples: []int16{
			0, 16384, 0, 16384, // right only, half scale
			8192, 8192, 8192, 8192, // centred, quarter scale
		},
	}
	e := NewEnvelope(pcm, 2)
	if e.Len() != 2 {
		t.Fatalf("expected 2 frames, got %d", e.Len())
	}

	first, second := e.Frame(0), e.Frame(1)
	if !near(first.Level, 1, 1e-12) {
		t.Fatalf("expected loudest frame at level 1, got %v", first.Level)
	}
	if !near(first.Balance, 1, 1e-12) {
		t.Fatalf("expected hard-right balance, got %v", first.Balance)
	}
	if !near(second.Level, 1, 1e-12) || !near(second.Balance, 0, 1e-12) {
		t.Fatalf("expected centred frame at level 1, got %+v", second)
	}
}

func TestEnvelopeSeekWrapsAround(t *testing.T) {
	pcm := &PCM{
		SampleRate: 2,
		Channels:   1,
		Samples:    []int16{16384, 16384, 0, 0, 8192, 8192},
	}
	e := NewEnvelope(pcm, 1)
	if e.Len() != 3 {
		t.Fatalf("expected 3 frames, got %d", e.Len())
	}

	s := e.Seek(0, 20)
	if !near(s.Move.Y, 20, 1e-12) || !near(s.Move.X, 0, 1e-12) || !near(s.Velocity, MaxDriveVelocity, 1e-12) {
		t.Fatalf("unexpected seek for loud mono frame: %+v", s)
	}
	if s := e.Seek(1, 20); s.Velocity != 0 || s.Move.Y != 0 {
		t.Fatalf("expected silent frame to be still, got %+v", s)
	}
	if got := e.Seek(5, 20); !near(got.Move.Y, 10, 1e-12) {
		t.Fatalf("expected tick 5 to wrap to frame 2, got %+v", got)
	}
	if got := e.Seek(3, 20); got != s {
		t.Fatalf("expected tick 3 to wrap to frame 0, got %+v", got)
	}
}

func TestEnvelopeEmptyAndDegenerate(t *testing.T) {
	e := NewEnvelope(&PCM{SampleRate: 44100, Channels: 2}, 60)
	if e.Len() != 0 {
		t.Fatalf("expected no frames, got %d", e.Len())
	}
	if s := e.Seek(42, 10); s.Velocity != 0 || s.Move.X != 0 || s.Move.Y != 0 {
		t.Fatalf("expected zero seek, got %+v", s)
	}
	if NewEnvelope(&PCM{Samples: []int16{1}, SampleRate: 1, Channels: 1}, 0).Len() != 0 {
		t.Fatal("expected zero fps to produce no frames")
	}
}

func TestReadTitleFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Loop Body.wav")
	if got := ReadTitle(path); got != "Loop Body" {
		t.Fatalf("expected file name title, got %q", got)
	}
	mp3 := filepath.Join(t.TempDir(), "untagged.mp3")
	if err := os.WriteFile(mp3, []byte("no tag here"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if got := ReadTitle(mp3); got != "untagged" {
		t.Fatalf("expected file name title, got %q", got)
	}
}

type stubSink struct {
	playing bool
	plays   int
	pauses  int
}

func (s *stubSink) Play()  { s.playing = true; s.plays++ }
func (s *stubSink) Pause() { s.playing = false; s.pauses++ }

func TestPlayerPauseResumeAreIdempotent(t *testing.T) {
	out := &stubSink{playing: true}
	p := newPlayer(&PCM{Samples: make([]int16, 8), SampleRate: 2, Channels: 2})
	p.out = out

	p.Resume()
	if out.plays != 0 {
		t.Fatal("expected resume while playing to do nothing")
	}
	p.Pause()
	p.Pause()
	if !p.Paused() || out.pauses != 1 {
		t.Fatalf("expected one pause, got %d", out.pauses)
	}
	p.Resume()
	if p.Paused() || out.plays != 1 {
		t.Fatalf("expected one resume, got %d", out.plays)
	}
}

func TestPlayerCloseStopsOnce(t *testing.T) {
	out := &stubSink{playing: true}
	p := newPlayer(&PCM{Samples: make([]int16, 8), SampleRate: 2, Channels: 2})
	p.out = out

	p.Close()
	p.Close()
	p.Resume()
	if out.pauses != 1 || out.plays != 0 {
		t.Fatalf("expected a single stop, got %d pauses %d plays", out.pauses, out.plays)
	}
}

func TestPlayerPositionTracksBytesRead(t *testing.T) {
	p := newPlayer(&PCM{Samples: make([]int16, 8), SampleRate: 2, Channels: 2})
	if p.Duration() != 2*time.Second {
		t.Fatalf("expected 2s duration, got %v", p.Duration())
	}
	buf := make([]byte, 8)
	if _, err := p.counter.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if p.Position() != time.Second {
		t.Fatalf("expected 1s position, got %v", p.Position())
	}
}
