// Package shade is the Go rendition of particle.wgsl. Every function here is a pure
// function of its arguments and mirrors the WGSL entry point or helper of the same role,
// evaluated in single precision like the GPU.
package shade

import (
	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is vs_main. Object space is taken as world space; any per-particle
// placement happens upstream in the geometry.
func Vertex(in core.VertexAttributes, view core.View) core.Varyings {
	world := mgl32.Vec4{in.Position[0], in.Position[1], in.Position[2], 1.0}
	return core.Varyings{
		ClipPosition:  view.ViewProj.Mul4x1(world),
		WorldPosition: world,
		UV:            mgl32.Vec2{in.UV[0], in.UV[1]},
	}
}
