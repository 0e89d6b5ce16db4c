package sparkfx

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	FovY     float32    `yaml:"fov_y"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// EmitterConfig places one particle quad in the scene. The particle restarts every
// Cycle seconds, so its material time runs from 0 up to Cycle and wraps.
type EmitterConfig struct {
	Name     string     `yaml:"name"`
	Color    [4]float32 `yaml:"color"`
	Position [3]float32 `yaml:"position"`
	Size     float32    `yaml:"size"`
	Cycle    float32    `yaml:"cycle"`
	Offset   float32    `yaml:"offset"`
}

type PreviewConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Supersample int     `yaml:"supersample"`
	Frames      int     `yaml:"frames"`
	FPS         float32 `yaml:"fps"`
}

type Config struct {
	Debug      bool            `yaml:"debug"`
	Window     WindowConfig    `yaml:"window"`
	Camera     CameraConfig    `yaml:"camera"`
	ClearColor [4]float32      `yaml:"clear_color"`
	Emitters   []EmitterConfig `yaml:"emitters"`
	Preview    PreviewConfig   `yaml:"preview"`
}

const (
	defaultEmitterSize  = 2.0
	defaultEmitterCycle = 1.5
)

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "sparkfx"},
		Camera: CameraConfig{
			Position: [3]float32{0, 0, 6},
			FovY:     60,
			Near:     0.1,
			Far:      100,
		},
		ClearColor: [4]float32{0.02, 0.02, 0.04, 1},
		Emitters: []EmitterConfig{
			{Name: "blue", Color: [4]float32{0, 0, 1, 1}, Position: [3]float32{-1.25, 0, 0}, Size: defaultEmitterSize, Cycle: defaultEmitterCycle},
			{Name: "orange", Color: [4]float32{1, 0.5, 0, 1}, Position: [3]float32{1.25, 0, 0}, Size: defaultEmitterSize, Cycle: defaultEmitterCycle, Offset: 0.75},
		},
		Preview: PreviewConfig{Width: 320, Height: 180, Supersample: 2, Frames: 30, FPS: 20},
	}
}

// ParseConfig overlays YAML on top of DefaultConfig. A non-empty emitters list replaces
// the default emitters; missing per-emitter size and cycle take their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	for i := range cfg.Emitters {
		e := &cfg.Emitters[i]
		if e.Size == 0 {
			e.Size = defaultEmitterSize
		}
		if e.Cycle == 0 {
			e.Cycle = defaultEmitterCycle
		}
		if e.Name == "" {
			e.Name = fmt.Sprintf("emitter%d", i)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera near/far %v/%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		return fmt.Errorf("%w: camera fov_y %v", ErrInvalidConfig, c.Camera.FovY)
	}
	if len(c.Emitters) == 0 {
		return fmt.Errorf("%w: no emitters", ErrInvalidConfig)
	}
	for _, e := range c.Emitters {
		if e.Size <= 0 {
			return fmt.Errorf("%w: emitter %s size %v", ErrInvalidConfig, e.Name, e.Size)
		}
		if e.Cycle <= 0 {
			return fmt.Errorf("%w: emitter %s cycle %v", ErrInvalidConfig, e.Name, e.Cycle)
		}
		if e.Offset < 0 {
			return fmt.Errorf("%w: emitter %s offset %v", ErrInvalidConfig, e.Name, e.Offset)
		}
	}
	p := c.Preview
	if p.Width <= 0 || p.Height <= 0 || p.Supersample <= 0 || p.Frames <= 0 || p.FPS <= 0 {
		return fmt.Errorf("%w: preview %+v", ErrInvalidConfig, p)
	}
	return nil
}

// CameraState builds the render camera described by the config.
func (c Config) CameraState() *core.CameraState {
	cam := core.NewCameraState()
	cam.Position = mgl32.Vec3(c.Camera.Position)
	cam.FovY = c.Camera.FovY
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	return cam
}

// ParticleTime is the material time for the emitter's current particle, in [0, Cycle).
func (e EmitterConfig) ParticleTime(elapsed float64) float32 {
	if elapsed < 0 {
		elapsed = 0
	}
	t := float32(math.Mod(elapsed+float64(e.Offset), float64(e.Cycle)))
	if t >= e.Cycle {
		// float32 rounding at the very end of a cycle
		t = 0
	}
	return t
}

func (e EmitterConfig) Material(elapsed float64) core.ParticleMaterial {
	return core.NewParticleMaterial(e.Color, e.ParticleTime(elapsed))
}

func (e EmitterConfig) Quad() []core.VertexAttributes {
	return core.ParticleQuad(mgl32.Vec3(e.Position), e.Size)
}
