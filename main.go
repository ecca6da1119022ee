package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/logging"
	"github.com/olivier-w/softrig/internal/scene"
)

type cliOptions struct {
	config     string
	fps        int
	drive      string
	play       bool
	autostart  bool
	logPath    string
	listScenes bool
}

func addFlags(fs *pflag.FlagSet, o *cliOptions) {
	fs.StringVarP(&o.config, "config", "c", "", "control config file (default ./softrig.yaml or ~/.config/softrig/softrig.yaml)")
	fs.IntVar(&o.fps, "fps", 60, "simulation ticks per second")
	fs.StringVarP(&o.drive, "drive", "d", "", "audio file whose loudness drives the nudge force")
	fs.BoolVarP(&o.play, "play", "p", false, "play the drive track while simulating")
	fs.BoolVarP(&o.autostart, "start", "s", false, "start simulating immediately")
	fs.StringVar(&o.logPath, "log", "", "write JSON logs to this file")
	fs.BoolVarP(&o.listScenes, "list-scenes", "l", false, "list built-in and local scenes, then exit")
}

func newRootCmd() *cobra.Command {
	var o cliOptions
	cmd := &cobra.Command{
		Use:   "softrig [scene]",
		Short: "Simulate soft-body rigs in the terminal",
		Long: "softrig runs a Verlet particle simulation over a rig of anchors, bones and muscles\n" +
			"and draws it as braille. The scene is a YAML file or the name of a built-in scene;\n" +
			"without one a picker is shown.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.listScenes {
				return listScenes(cmd.OutOrStdout())
			}
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return run(arg, o)
		},
	}
	addFlags(cmd.Flags(), &o)
	return cmd
}

func run(arg string, o cliOptions) error {
	if o.fps < 1 || o.fps > 240 {
		return fmt.Errorf("--fps must be between 1 and 240, got %d", o.fps)
	}
	if o.play && o.drive == "" {
		return fmt.Errorf("--play needs a --drive track")
	}

	controls, err := control.LoadConfig(o.config)
	if err != nil {
		return err
	}

	logger, err := logging.New(o.logPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting",
		zap.String("scene", arg),
		zap.Int("fps", o.fps),
		zap.String("drive", o.drive),
		zap.Int("polar_iterations", controls.PolarIterations))

	model := newStartupModel(arg, openOptions{
		FPS:       o.fps,
		Drive:     o.drive,
		Play:      o.play,
		Autostart: o.autostart,
		Controls:  controls,
		Logger:    logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		return err
	}
	return nil
}

func listScenes(w io.Writer) error {
	fmt.Fprintln(w, "built-in:")
	for _, name := range scene.BuiltinNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}

	paths, err := scene.List(".")
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		fmt.Fprintln(w, "local:")
		for _, p := range paths {
			fmt.Fprintf(w, "  %s\n", filepath.Base(p))
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
