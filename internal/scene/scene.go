package scene

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/olivier-w/softrig/internal/geometry"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var sceneExts = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// IsSceneExt returns true if the extension is a scene file.
func IsSceneExt(ext string) bool {
	return sceneExts[strings.ToLower(ext)]
}

// Segment is the file form of geometry.Segment.
type Segment struct {
	Indices []int  `yaml:"indices,flow"`
	Closed  bool   `yaml:"closed,omitempty"`
	Role    string `yaml:"role"`
}

// Scene is an authored rig as stored on disk.
type Scene struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Vertices    [][2]float64 `yaml:"vertices"`
	Segments    []Segment    `yaml:"segments"`
}

// Parse decodes a scene and checks that it converts to valid geometry.
// Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty scene")
		}
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if len(s.Vertices) == 0 {
		return nil, fmt.Errorf("scene %q has no vertices", s.Name)
	}
	if _, err := s.Geometry(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scene file. A scene without a name takes the file name.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if s.Name == "" {
		base := filepath.Base(path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return s, nil
}

// Builtin returns one of the embedded scenes.
func Builtin(name string) (*Scene, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in scene %q (have %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return Parse(data)
}

// BuiltinNames lists the embedded scenes in alphabetical order.
func BuiltinNames() []string {
	entries, _ := fs.ReadDir(builtinFS, "builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	slices.Sort(names)
	return names
}

// List returns the scene files directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !IsSceneExt(filepath.Ext(e.Name())) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// Resolve loads arg as a file when it names one, and as a built-in
// otherwise.
func Resolve(arg string) (*Scene, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return Load(arg)
	}
	return Builtin(arg)
}

// Geometry converts the scene into a validated geometry.
func (s *Scene) Geometry() (*geometry.Geometry, error) {
	g := &geometry.Geometry{
		Vertices: make([]r2.Vec, len(s.Vertices)),
		Segments: make([]geometry.Segment, len(s.Segments)),
	}
	for i, v := range s.Vertices {
		g.Vertices[i] = r2.Vec{X: v[0], Y: v[1]}
	}
	for i, seg := range s.Segments {
		role, err := geometry.ParseRole(seg.Role)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		g.Segments[i] = geometry.Segment{
			Indices: slices.Clone(seg.Indices),
			Closed:  seg.Closed,
			Role:    role,
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// FromGeometry captures g as a scene, for saving a posed rig.
func FromGeometry(name string, g *geometry.Geometry) *Scene {
	s := &Scene{
		Name:     name,
		Vertices: make([][2]float64, len(g.Vertices)),
		Segments: make([]Segment, len(g.Segments)),
	}
	for i, v := range g.Vertices {
		s.Vertices[i] = [2]float64{v.X, v.Y}
	}
	for i, seg := range g.Segments {
		s.Segments[i] = Segment{
			Indices: slices.Clone(seg.Indices),
			Closed:  seg.Closed,
			Role:    seg.Role.String(),
		}
	}
	return s
}

// Save writes the scene as YAML, replacing any existing file.
func (s *Scene) Save(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing scene: %w", err)
	}
	return nil
}
