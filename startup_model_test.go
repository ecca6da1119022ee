package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/scene"
	"github.com/olivier-w/softrig/internal/ui"
)

func testOpenOptions() openOptions {
	return openOptions{FPS: 60, Controls: control.Defaults()}
}

func TestStartupModelSelectionEntersOpeningPhase(t *testing.T) {
	m := newStartupModel("", testOpenOptions())
	if m.phase != phaseBrowse {
		t.Fatalf("expected phaseBrowse without a scene, got %v", m.phase)
	}

	model, cmd := m.Update(ui.BrowserSelectedMsg{Scene: "tendril"})
	if cmd == nil {
		t.Fatal("expected opening command")
	}

	startup, ok := model.(startupModel)
	if !ok {
		t.Fatalf("expected startupModel, got %T", model)
	}
	if startup.phase != phaseOpening {
		t.Fatalf("expected phaseOpening, got %v", startup.phase)
	}
	if startup.statusCh == nil {
		t.Fatal("expected status channel to be initialized")
	}
}

func TestStartupModelWithSceneOpensDirectly(t *testing.T) {
	m := newStartupModel("tendril", testOpenOptions())
	if m.phase != phaseOpening || m.statusCh == nil {
		t.Fatal("expected a scene argument to skip the browser")
	}
}

func TestStartupModelErrorReturnsToBrowsePhase(t *testing.T) {
	m := newStartupModel("missing", testOpenOptions())

	model, cmd := m.Update(startupResolvedMsg{err: errBoom{}})
	if cmd != nil {
		t.Fatal("expected no command on error return")
	}

	startup := model.(startupModel)
	if startup.phase != phaseBrowse {
		t.Fatalf("expected phaseBrowse, got %v", startup.phase)
	}
	if startup.errMsg == "" {
		t.Fatal("expected error message")
	}
	if !startup.browsing {
		t.Fatal("expected a browser to fall back to")
	}
}

func TestStartupModelConsumesStatusUpdates(t *testing.T) {
	m := newStartupModel("tendril", testOpenOptions())

	model, cmd := m.Update(startupStatusMsg("decoding track"))
	if cmd == nil {
		t.Fatal("expected waitForStatus command")
	}

	startup := model.(startupModel)
	if startup.status != "decoding track" {
		t.Fatalf("unexpected status: %q", startup.status)
	}
	if !strings.Contains(startup.View(), "Decoding track...") {
		t.Fatal("expected status in view")
	}
}

func TestStartupModelHandsOverToSimulation(t *testing.T) {
	sim, err := buildSimulationModel("tendril", testOpenOptions(), nil)
	if err != nil {
		t.Fatalf("buildSimulationModel returned error: %v", err)
	}

	m := newStartupModel("tendril", testOpenOptions())
	model, cmd := m.Update(startupResolvedMsg{model: sim})
	if cmd == nil {
		t.Fatal("expected simulation init command")
	}
	if _, ok := model.(ui.Model); !ok {
		t.Fatalf("expected ui.Model, got %T", model)
	}
}

func TestBuildSimulationModelReportsPhases(t *testing.T) {
	var phases []string
	_, err := buildSimulationModel("tendril", testOpenOptions(), func(p string) {
		phases = append(phases, p)
	})
	if err != nil {
		t.Fatalf("buildSimulationModel returned error: %v", err)
	}
	if len(phases) != 1 || phases[0] != "loading scene" {
		t.Fatalf("expected only the scene phase, got %v", phases)
	}
}

func TestBuildSimulationModelRejectsUnknownScene(t *testing.T) {
	if _, err := buildSimulationModel("no-such-scene", testOpenOptions(), nil); err == nil {
		t.Fatal("expected error for unknown scene")
	}
}

func TestBuildSimulationModelRejectsUnsupportedDrive(t *testing.T) {
	opts := testOpenOptions()
	opts.Drive = "track.xyz"
	_, err := buildSimulationModel("tendril", opts, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestListScenesPrintsBuiltins(t *testing.T) {
	var buf bytes.Buffer
	if err := listScenes(&buf); err != nil {
		t.Fatalf("listScenes returned error: %v", err)
	}
	for _, name := range scene.BuiltinNames() {
		if !strings.Contains(buf.String(), name) {
			t.Fatalf("expected %s in listing:\n%s", name, buf.String())
		}
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	if err := run("tendril", cliOptions{fps: 0}); err == nil {
		t.Fatal("expected error for fps 0")
	}
	if err := run("tendril", cliOptions{fps: 60, play: true}); err == nil {
		t.Fatal("expected error for --play without --drive")
	}
}

func TestRootCmdRejectsExtraArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"a", "b"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for two scene arguments")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
