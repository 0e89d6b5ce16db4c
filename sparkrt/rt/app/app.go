package app

import (
	"fmt"

	"github.com/gekko3d/sparkfx"
	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/gekko3d/sparkfx/sparkrt/rt/gpu"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// emitter ties a configured emitter to the material slot it draws with.
type emitter struct {
	Config   sparkfx.EmitterConfig
	Material gpu.MaterialId
	Logger   sparkfx.Logger
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Settings  sparkfx.Config
	Camera    *core.CameraState
	Particles *gpu.ParticlePass
	Emitters  []emitter
	Logger    sparkfx.Logger
	Profiler  *Profiler
	Clock     *sparkfx.Clock
	DebugMode bool

	FrameCount int
	FPS        float64
	FPSTime    float64
}

func NewApp(window *glfw.Window, settings sparkfx.Config, logger sparkfx.Logger) *App {
	if logger == nil {
		logger = sparkfx.NewNopLogger()
	}
	return &App{
		Window:    window,
		Settings:  settings,
		Camera:    settings.CameraState(),
		Logger:    logger,
		Profiler:  NewProfiler(),
		Clock:     sparkfx.NewClock(nil),
		DebugMode: settings.Debug,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.Particles, err = gpu.NewParticlePass(a.Device, format, a.Logger)
	if err != nil {
		return err
	}

	for _, cfg := range a.Settings.Emitters {
		id, err := a.Particles.NewMaterial(cfg.Material(0))
		if err != nil {
			return fmt.Errorf("emitter %s: %w", cfg.Name, err)
		}
		if err := a.Particles.SetGeometry(id, cfg.Quad()); err != nil {
			return err
		}
		log := a.Logger.With("emitter", cfg.Name)
		log.Debugf("material %s", id)
		a.Emitters = append(a.Emitters, emitter{Config: cfg, Material: id, Logger: log})
	}

	a.Clock.Restart()
	a.Logger.Infof("Viewer ready: %dx%d, %d emitters, format %v", width, height, len(a.Emitters), format)
	return nil
}

func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Config.Width = uint32(w)
		a.Config.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
		a.Logger.Debugf("surface resized to %dx%d", w, h)
	}
}

func (a *App) TogglePause() {
	a.Clock.TogglePause()
	a.Logger.Debugf("paused=%v at %.3fs", a.Clock.Paused(), a.Clock.Seconds())
}

func (a *App) Update() {
	a.Profiler.BeginScope("update")
	defer a.Profiler.EndScope("update")

	elapsed := a.Clock.Seconds()
	for _, e := range a.Emitters {
		if err := a.Particles.SetMaterial(e.Material, e.Config.Material(elapsed)); err != nil {
			e.Logger.Errorf("set material: %v", err)
		}
	}

	aspect := float32(a.Config.Width) / float32(a.Config.Height)
	if err := a.Particles.UpdateView(a.Camera.View(aspect)); err != nil {
		a.Logger.Errorf("update view: %v", err)
	}
	if err := a.Particles.Update(); err != nil {
		a.Logger.Errorf("update particles: %v", err)
	}
	a.Profiler.SetCount("emitters", len(a.Emitters))
}

func (a *App) Render() {
	a.Profiler.BeginScope("render")
	defer a.Profiler.EndScope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	c := a.Settings.ClearColor
	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])},
		}},
	})
	a.Particles.Draw(rPass)

	if err := rPass.End(); err != nil {
		a.Logger.Errorf("Render pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("Encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.Clock.Tick()
	if a.updateFPS(a.Clock.Dt.Seconds()) && a.DebugMode {
		a.Window.SetTitle(a.Title(a.Clock.Seconds()))
		a.Logger.Debugf("%s", a.Profiler.GetStatsString())
	}
}

// updateFPS accumulates frame times and reports whether FPS was recomputed.
func (a *App) updateFPS(dt float64) bool {
	a.FrameCount++
	a.FPSTime += dt
	if a.FPSTime < 1.0 {
		return false
	}
	a.FPS = float64(a.FrameCount) / a.FPSTime
	a.FrameCount = 0
	a.FPSTime = 0
	return true
}

// Title is the window title shown in debug mode.
func (a *App) Title(elapsed float64) string {
	if !a.DebugMode {
		return a.Settings.Window.Title
	}
	state := ""
	if a.Clock.Paused() {
		state = " [paused]"
	}
	return fmt.Sprintf("%s | %.1f FPS | t=%.2fs%s", a.Settings.Window.Title, a.FPS, elapsed, state)
}

func (a *App) Release() {
	if a.Particles != nil {
		a.Particles.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}

func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}
