package drive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a decodable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of decodable formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// PCM is a fully decoded track as interleaved signed 16-bit samples.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames.
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the playing time.
func (p *PCM) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(p.Frames()) / float64(p.SampleRate) * float64(time.Second))
}

// Bytes returns the samples as 16-bit little-endian PCM.
func (p *PCM) Bytes() []byte {
	out := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Decode reads a whole audio file, detecting the format by extension.
func Decode(path string) (*PCM, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedExt(ext) {
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", ext, SupportedExtsList())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio: %w", err)
	}
	defer f.Close()

	var pcm *PCM
	switch ext {
	case ".mp3":
		pcm, err = decodeMP3(f)
	case ".wav":
		pcm, err = decodeWAV(f)
	case ".flac":
		pcm, err = decodeFLAC(f)
	case ".ogg":
		pcm, err = decodeOGG(f)
	}
	if err != nil {
		return nil, err
	}
	if pcm.Channels < 1 || pcm.SampleRate < 1 {
		return nil, fmt.Errorf("invalid stream: %d channels at %d Hz", pcm.Channels, pcm.SampleRate)
	}
	return pcm, nil
}

func clamp16(sample int) int16 {
	if sample > 32767 {
		return 32767
	}
	if sample < -32768 {
		return -32768
	}
	return int16(sample)
}

// rescale converts a sample of the given bit depth to 16 bits.
func rescale(sample, bits int) int16 {
	switch {
	case bits > 16:
		sample >>= bits - 16
	case bits < 16:
		sample <<= 16 - bits
	}
	return clamp16(sample)
}

// --- MP3 ---

func decodeMP3(r io.Reader) (*PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	// go-mp3 always yields 16-bit LE stereo
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return &PCM{Samples: samples, SampleRate: dec.SampleRate(), Channels: 2}, nil
}

// --- WAV ---

func decodeWAV(r io.ReadSeeker) (*PCM, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bits := int(dec.BitDepth)
	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		if bits == 8 {
			// 8-bit WAV is unsigned
			s -= 128
		}
		samples[i] = rescale(s, bits)
	}
	return &PCM{Samples: samples, SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}, nil
}

// --- FLAC ---

func decodeFLAC(r io.Reader) (*PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)
	samples := make([]int16, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding FLAC frame: %w", err)
		}
		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				samples = append(samples, rescale(int(frame.Subframes[ch].Samples[i]), bps))
			}
		}
	}
	return &PCM{Samples: samples, SampleRate: int(info.SampleRate), Channels: channels}, nil
}

// --- OGG Vorbis ---

func decodeOGG(r io.Reader) (*PCM, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	samples := make([]int16, 0, reader.Length()*int64(channels))
	chunk := make([]float32, 4096*channels)
	for {
		n, err := reader.Read(chunk)
		for _, s := range chunk[:n] {
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			samples = append(samples, int16(s*32767))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding OGG: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return &PCM{Samples: samples, SampleRate: reader.SampleRate(), Channels: channels}, nil
}
