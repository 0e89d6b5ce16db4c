package raster

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gekko3d/sparkfx"
)

// RenderFrame draws every emitter of cfg at the given elapsed time into a fresh target.
// Emitters are drawn in config order so later ones composite over earlier ones.
func (r *Renderer) RenderFrame(ctx context.Context, cfg sparkfx.Config, elapsed float64, width, height int) (*Target, error) {
	target, err := NewTarget(width, height, cfg.ClearColor)
	if err != nil {
		return nil, err
	}
	view := cfg.CameraState().View(float32(width) / float32(height))
	for _, e := range cfg.Emitters {
		call := DrawCall{View: view, Material: e.Material(elapsed), Vertices: e.Quad()}
		if err := r.Draw(ctx, target, call); err != nil {
			return nil, fmt.Errorf("draw emitter %s: %w", e.Name, err)
		}
	}
	return target, nil
}

// RenderPreview writes cfg.Preview.Frames PNG frames into outDir and returns their paths.
// Each frame is rendered at Supersample times the preview size and scaled down.
func RenderPreview(ctx context.Context, cfg sparkfx.Config, outDir string, logger sparkfx.Logger) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := cfg.Preview
	r := NewRenderer(0)
	ss := p.Supersample

	start := time.Now()
	paths := make([]string, 0, p.Frames)
	for frame := 0; frame < p.Frames; frame++ {
		elapsed := float64(frame) / float64(p.FPS)
		target, err := r.RenderFrame(ctx, cfg, elapsed, p.Width*ss, p.Height*ss)
		if err != nil {
			return paths, fmt.Errorf("frame %d: %w", frame, err)
		}

		var img image.Image = target.Image()
		if ss > 1 {
			img = Downsample(img, p.Width, p.Height)
		}

		path := FramePath(outDir, frame)
		if err := SavePNG(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		logger.With("frame", frame).Debugf("t=%.3fs -> %s", elapsed, path)
	}
	logger.Infof("Rendered %d preview frames (%dx%d, %dx supersample) in %v", len(paths), p.Width, p.Height, ss, time.Since(start))
	return paths, nil
}
