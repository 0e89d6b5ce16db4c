package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

var ErrEmptyTarget = errors.New("empty render target")

// Target is a float RGBA colour attachment. Values are kept in [0,1] after every blend,
// the way a unorm attachment stores them.
type Target struct {
	Width  int
	Height int
	Pix    []float32 // RGBA interleaved, len = W*H*4, row 0 at the top
}

func NewTarget(width, height int, clear [4]float32) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyTarget, width, height)
	}
	t := &Target{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
	t.Clear(clear)
	return t, nil
}

func (t *Target) Clear(c [4]float32) {
	for i := 0; i < len(t.Pix); i += 4 {
		t.Pix[i+0] = clamp01(c[0])
		t.Pix[i+1] = clamp01(c[1])
		t.Pix[i+2] = clamp01(c[2])
		t.Pix[i+3] = clamp01(c[3])
	}
}

func (t *Target) At(x, y int) mgl32.Vec4 {
	i := (y*t.Width + x) * 4
	return mgl32.Vec4{t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3]}
}

// blend applies src*srcAlpha + dst*(1-srcAlpha) to colour and src + dst*(1-srcAlpha) to alpha.
func (t *Target) blend(x, y int, src mgl32.Vec4) {
	i := (y*t.Width + x) * 4
	a := src[3]
	inv := 1 - a
	t.Pix[i+0] = clamp01(src[0]*a + t.Pix[i+0]*inv)
	t.Pix[i+1] = clamp01(src[1]*a + t.Pix[i+1]*inv)
	t.Pix[i+2] = clamp01(src[2]*a + t.Pix[i+2]*inv)
	t.Pix[i+3] = clamp01(a + t.Pix[i+3]*inv)
}

// Image quantises the target to 8 bits per channel, straight alpha.
func (t *Target) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := t.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: to8(c[0]),
				G: to8(c[1]),
				B: to8(c[2]),
				A: to8(c[3]),
			})
		}
	}
	return img
}

// Downsample resolves a supersampled image to width x height.
func Downsample(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
