package shade

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// NominalLifetime is the particle lifetime baked into the fade, in seconds.
	NominalLifetime float32 = 1.5
	// NoiseFrequency is the spatial frequency of the noise in cycles per UV unit.
	NoiseFrequency float32 = 10.0
	// NoiseTint scales the additive noise brightening.
	NoiseTint float32 = 0.2
)

var uvCenter = mgl32.Vec2{0.5, 0.5}

// Fragment is fs_main. The result is straight alpha and is not clamped: rgb may exceed 1
// and alpha goes negative once Time passes NominalLifetime.
func Fragment(uv mgl32.Vec2, material core.ParticleMaterial) mgl32.Vec4 {
	dist := RadialDistance(uv)
	noise := Noise(uv, material.Time)

	color := mgl32.Vec4(material.Color)
	color[3] *= RadialFade(dist)

	tint := noise * NoiseTint
	color[0] += tint
	color[1] += tint
	color[2] += tint

	color[3] *= LifetimeFade(material.Time)
	return color
}

// RadialDistance is the distance from uv to the quad centre (0.5, 0.5).
func RadialDistance(uv mgl32.Vec2) float32 {
	d := uv.Sub(uvCenter)
	return math32.Sqrt(d.X()*d.X() + d.Y()*d.Y())
}

// Noise is sin(x*10 + t) * cos(y*10 + t) mapped from [-1,1] to [0,1].
func Noise(uv mgl32.Vec2, time float32) float32 {
	s := math32.Sin(uv.X()*NoiseFrequency + time)
	c := math32.Cos(uv.Y()*NoiseFrequency + time)
	return s*c*0.5 + 0.5
}

// Smoothstep follows the WGSL builtin, including reversed edges.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3.0 - 2.0*t)
}

// RadialFade is 1 at the centre and reaches 0 at dist = 0.5.
func RadialFade(dist float32) float32 {
	return Smoothstep(1.0, 0.0, dist*2.0)
}

// LifetimeFade is linear over NominalLifetime. Not clamped.
func LifetimeFade(time float32) float32 {
	return 1.0 - time/NominalLifetime
}

func clamp01(x float32) float32 {
	return math32.Min(math32.Max(x, 0), 1)
}
