package goportal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/goccy/go-yaml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// TPS is the number of simulation ticks per second.
	TPS int `yaml:"tps"`
	// Scale divides the window size to get the raster resolution.
	Scale int `yaml:"scale"`
}

type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	// FOV is the vertical field of view in degrees.
	FOV   float32 `yaml:"fov"`
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
}

type MovementConfig struct {
	Speed float32 `yaml:"speed"`
	// MouseScale converts a cursor delta in pixels into Camera.Rotate units.
	MouseScale float32 `yaml:"mouse_scale"`
}

// PortalConfig places one portal. Angles are in degrees; at zero the portal
// faces +Z.
type PortalConfig struct {
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`
	Pitch    float32    `yaml:"pitch"`
	Roll     float32    `yaml:"roll"`
	Width    float32    `yaml:"width"`
	Height   float32    `yaml:"height"`
}

type PortalsConfig struct {
	Enabled   bool         `yaml:"enabled"`
	Rendering bool         `yaml:"rendering"`
	A         PortalConfig `yaml:"a"`
	B         PortalConfig `yaml:"b"`
}

type FloorConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Size      float32 `yaml:"size"`
	Divisions int     `yaml:"divisions"`
	Seed      int64   `yaml:"seed"`
}

type EntityConfig struct {
	// Shape is one of triangle or box.
	Shape    string     `yaml:"shape"`
	Position [3]float32 `yaml:"position"`
	Velocity [3]float32 `yaml:"velocity"`
	Size     [3]float32 `yaml:"size"`
	Color    [3]float32 `yaml:"color"`
	Static   bool       `yaml:"static"`
}

type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Camera   CameraConfig   `yaml:"camera"`
	Movement MovementConfig `yaml:"movement"`
	Portals  PortalsConfig  `yaml:"portals"`
	Floor    FloorConfig    `yaml:"floor"`
	Entities []EntityConfig `yaml:"entities"`
	// Controls maps an action name to ebiten key names, e.g. forward: [W, ArrowUp].
	Controls map[string][]string `yaml:"controls"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "goportal",
			Width:  960,
			Height: 600,
			TPS:    60,
			Scale:  2,
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 1, 3},
			FOV:      70,
		},
		Movement: MovementConfig{
			Speed:      DefaultMoveSpeed,
			MouseScale: 0.02,
		},
		Portals: PortalsConfig{
			Enabled:   true,
			Rendering: true,
			A: PortalConfig{
				Position: [3]float32{-2, 1.1, -3},
				Width:    1.4,
				Height:   2,
			},
			B: PortalConfig{
				Position: [3]float32{4, 1.1, -1},
				Yaw:      -90,
				Width:    1.4,
				Height:   2,
			},
		},
		Floor: FloorConfig{
			Enabled:   true,
			Size:      24,
			Divisions: 24,
			Seed:      7,
		},
		Entities: []EntityConfig{
			{Shape: "triangle", Static: true},
			{Shape: "box", Position: [3]float32{1.5, 0.5, -4}, Size: [3]float32{1, 1, 1}, Color: [3]float32{0.8, 0.2, 0.2}, Static: true},
			{Shape: "box", Position: [3]float32{7, 0.25, -1}, Size: [3]float32{0.5, 0.5, 0.5}, Color: [3]float32{0.2, 0.8, 0.3}, Static: true},
			{Shape: "box", Position: [3]float32{-2, 1.1, -1}, Velocity: [3]float32{0, 0, -0.4}, Size: [3]float32{0.3, 0.3, 0.3}, Color: [3]float32{0.9, 0.9, 0.2}},
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. A missing file is not an
// error and yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	slog.Debug("config loaded", "path", path, "entities", len(cfg.Entities))
	return cfg, nil
}

// WriteFile stores c as YAML.
func (c Config) WriteFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c Config) Validate() error {
	w := c.Window
	if w.Width <= 0 || w.Height <= 0 {
		return invalid("window size %dx%d", w.Width, w.Height)
	}
	if w.TPS <= 0 {
		return invalid("tps %d", w.TPS)
	}
	if w.Scale < 1 {
		return invalid("scale %d", w.Scale)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return invalid("fov %v", c.Camera.FOV)
	}
	if c.Movement.Speed < 0 {
		return invalid("speed %v", c.Movement.Speed)
	}
	if c.Portals.Enabled {
		for name, p := range map[string]PortalConfig{"a": c.Portals.A, "b": c.Portals.B} {
			if p.Width <= 0 || p.Height <= 0 {
				return invalid("portal %s size %vx%v", name, p.Width, p.Height)
			}
		}
	}
	if c.Floor.Enabled && (c.Floor.Size <= 0 || c.Floor.Divisions <= 0) {
		return invalid("floor size %v divisions %d", c.Floor.Size, c.Floor.Divisions)
	}
	for i, e := range c.Entities {
		switch strings.ToLower(e.Shape) {
		case "triangle", "box":
		default:
			return invalid("entity %d shape %q", i, e.Shape)
		}
	}
	if _, err := c.Bindings(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// Bindings returns the default key bindings with the configured controls applied.
func (c Config) Bindings() (KeyBindings, error) {
	b := DefaultKeyBindings()
	for action, keys := range c.Controls {
		if err := b.Bind(action, keys...); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// BuildWorld creates the scene described by c.
func (c Config) BuildWorld() (*World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cam := NewCamera(mgl32.Vec3(c.Camera.Position), c.Camera.FOV)
	cam.SetAngles(mgl32.DegToRad(c.Camera.Yaw), mgl32.DegToRad(c.Camera.Pitch))

	w := NewWorld(cam)
	w.MoveSpeed = c.Movement.Speed
	w.PortalRendering = c.Portals.Rendering

	if c.Floor.Enabled {
		floor := NewPlaneGridMesh("floor", c.Floor.Size, c.Floor.Divisions,
			mgl32.Vec3{0.55, 0.55, 0.6}, mgl32.Vec3{0.3, 0.3, 0.35}, c.Floor.Seed)
		w.AddEntity(NewEntity(mgl32.Vec3{}, mgl32.Vec3{}, floor, Static))
	}
	for _, e := range c.Entities {
		w.AddEntity(e.build())
	}
	if c.Portals.Enabled {
		w.SetPortals(NewPortalPair(c.Portals.A.build(), c.Portals.B.build()))
	}
	slog.Debug("world built", "entities", len(w.Entities), "portals", w.Portals != nil)
	return w, nil
}

func (p PortalConfig) build() *Portal {
	orient := OrientationFromEuler(
		mgl32.DegToRad(p.Yaw), mgl32.DegToRad(p.Pitch), mgl32.DegToRad(p.Roll))
	return NewPortal(mgl32.Vec3(p.Position), orient, p.Width, p.Height)
}

func (e EntityConfig) build() *Entity {
	kind := Dynamic
	if e.Static {
		kind = Static
	}
	var mesh *Mesh
	switch strings.ToLower(e.Shape) {
	case "triangle":
		mesh = NewTriangleMesh("triangle")
	default:
		size := mgl32.Vec3(e.Size)
		if size.Len() == 0 {
			size = mgl32.Vec3{1, 1, 1}
		}
		col := mgl32.Vec3(e.Color)
		if col.Len() == 0 {
			col = mgl32.Vec3{0.7, 0.7, 0.7}
		}
		mesh = NewBoxMesh("box", size, col)
	}
	return NewEntity(mgl32.Vec3(e.Position), mgl32.Vec3(e.Velocity), mesh, kind)
}
