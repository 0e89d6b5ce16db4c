package core

import "github.com/go-gl/mathgl/mgl32"

// QuadVertexCount is the number of vertices ParticleQuad emits (two triangles, no index buffer).
const QuadVertexCount = 6

// ParticleQuad builds a size x size quad in the XY plane centred on center.
// UV (0,0) is the bottom-left corner and (1,1) the top-right, so the quad centre maps to (0.5,0.5).
func ParticleQuad(center mgl32.Vec3, size float32) []VertexAttributes {
	h := size * 0.5
	x0, x1 := center.X()-h, center.X()+h
	y0, y1 := center.Y()-h, center.Y()+h
	z := center.Z()

	bl := VertexAttributes{Position: [3]float32{x0, y0, z}, UV: [2]float32{0, 0}}
	br := VertexAttributes{Position: [3]float32{x1, y0, z}, UV: [2]float32{1, 0}}
	tr := VertexAttributes{Position: [3]float32{x1, y1, z}, UV: [2]float32{1, 1}}
	tl := VertexAttributes{Position: [3]float32{x0, y1, z}, UV: [2]float32{0, 1}}

	// CCW when viewed from +Z
	return []VertexAttributes{bl, br, tr, bl, tr, tl}
}
