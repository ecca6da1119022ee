package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/drive"
	"github.com/olivier-w/softrig/internal/scene"
	"github.com/olivier-w/softrig/internal/ui"
)

// openOptions carries the command-line settings needed to open a scene.
type openOptions struct {
	FPS       int
	Drive     string // audio file whose envelope drives the nudge
	Play      bool   // also play the drive track
	Autostart bool
	Controls  control.State
	Logger    *zap.Logger
}

type statusFunc func(phase string)

// buildSimulationModel resolves arg to a scene and prepares the simulation
// model, decoding the drive track when one is configured.
func buildSimulationModel(arg string, o openOptions, status statusFunc) (ui.Model, error) {
	if status == nil {
		status = func(string) {}
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	status("loading scene")
	sc, err := scene.Resolve(arg)
	if err != nil {
		return ui.Model{}, err
	}
	g, err := sc.Geometry()
	if err != nil {
		return ui.Model{}, fmt.Errorf("scene %s: %w", sc.Name, err)
	}
	log.Info("scene loaded",
		zap.String("scene", sc.Name),
		zap.Int("vertices", len(g.Vertices)),
		zap.Int("segments", len(g.Segments)))

	opts := ui.Options{
		SceneName: sc.Name,
		FPS:       o.FPS,
		Controls:  o.Controls,
		Logger:    log,
		Autostart: o.Autostart,
	}

	if o.Drive != "" {
		ext := strings.ToLower(filepath.Ext(o.Drive))
		if !drive.IsSupportedExt(ext) {
			return ui.Model{}, fmt.Errorf("unsupported format %s (supported: %s)", ext, drive.SupportedExtsList())
		}

		status("decoding track")
		pcm, err := drive.Decode(o.Drive)
		if err != nil {
			return ui.Model{}, err
		}
		opts.Envelope = drive.NewEnvelope(pcm, o.FPS)
		opts.Track = drive.ReadTitle(o.Drive)
		log.Info("drive track decoded",
			zap.String("path", o.Drive),
			zap.Duration("duration", pcm.Duration()),
			zap.Int("frames", opts.Envelope.Len()))

		if o.Play {
			status("starting audio")
			p, err := drive.NewPlayer(pcm)
			if err != nil {
				return ui.Model{}, err
			}
			// Playback follows the simulation state.
			p.Pause()
			opts.Player = p
		}
	}

	return ui.New(g, opts), nil
}
