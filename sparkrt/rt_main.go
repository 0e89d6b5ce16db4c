package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"

	"github.com/gekko3d/sparkfx"
	"github.com/gekko3d/sparkfx/sparkrt/rt/app"
	"github.com/gekko3d/sparkfx/sparkrt/rt/raster"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML effect config (defaults to the built-in blue/orange scene)")
	previewDir := flag.String("preview", "", "Render PNG frames into this directory on the CPU instead of opening a window")
	debug := flag.Bool("debug", false, "Enable debug logging and the FPS title")
	flag.Parse()

	cfg := sparkfx.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = sparkfx.LoadConfig(*configPath)
		if err != nil {
			sparkfx.NewDefaultLogger("sparkrt", false).Errorf("%v", err)
			os.Exit(1)
		}
	}
	cfg.Debug = cfg.Debug || *debug
	logger := sparkfx.NewDefaultLogger("sparkrt", cfg.Debug)

	if *previewDir != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if _, err := raster.RenderPreview(ctx, cfg, *previewDir, logger); err != nil {
			logger.Errorf("preview: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, logger)
	if err := application.Init(); err != nil {
		panic(err)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeySpace:
			application.TogglePause()
		case glfw.KeyR:
			application.Clock.Restart()
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
