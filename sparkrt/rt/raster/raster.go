// Package raster is a software stand-in for the host graphics pipeline. It runs the
// shade stages over a triangle list, does the interpolation and blending the GPU would do
// in fixed function, and produces images for previews and end-to-end tests.
package raster

import (
	"context"
	"runtime"

	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/gekko3d/sparkfx/sparkrt/rt/shade"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// minClipW rejects vertices on or behind the camera plane. There is no near-plane clipping.
const minClipW = 1e-6

// DrawCall is one draw: a triangle list sharing a View and a ParticleMaterial.
type DrawCall struct {
	View     core.View
	Material core.ParticleMaterial
	Vertices []core.VertexAttributes
}

type Renderer struct {
	Workers int
}

func NewRenderer(workers int) *Renderer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Renderer{Workers: workers}
}

// screenVertex is a post-divide vertex with the attributes pre-divided by w.
type screenVertex struct {
	pos  mgl32.Vec2 // pixels, y down
	invW float32
	uvW  mgl32.Vec2
}

type triangle struct {
	v                      [3]screenVertex
	area                   float32
	topLeft                [3]bool
	minX, maxX, minY, maxY int
}

// Draw shades every covered pixel of target. Rows are split into bands that run in
// parallel; each band owns its rows, and triangles are applied in submission order.
func (r *Renderer) Draw(ctx context.Context, target *Target, call DrawCall) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tris := setupTriangles(target, call)
	if len(tris) == 0 {
		return nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	bandHeight := (target.Height + workers*4 - 1) / (workers * 4)
	if bandHeight < 1 {
		bandHeight = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < target.Height; y0 += bandHeight {
		y1 := min(y0+bandHeight, target.Height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := range tris {
				shadeBand(target, &tris[i], call.Material, y0, y1)
			}
			return nil
		})
	}
	return g.Wait()
}

func setupTriangles(target *Target, call DrawCall) []triangle {
	w, h := float32(target.Width), float32(target.Height)
	var tris []triangle

	for i := 0; i+2 < len(call.Vertices); i += 3 {
		var tri triangle
		visible := true
		for k := 0; k < 3; k++ {
			out := shade.Vertex(call.Vertices[i+k], call.View)
			clip := out.ClipPosition
			if clip.W() <= minClipW {
				visible = false
				break
			}
			invW := 1 / clip.W()
			ndcX, ndcY := clip.X()*invW, clip.Y()*invW
			tri.v[k] = screenVertex{
				pos:  mgl32.Vec2{(ndcX*0.5 + 0.5) * w, (0.5 - ndcY*0.5) * h},
				invW: invW,
				uvW:  out.UV.Mul(invW),
			}
		}
		if !visible {
			continue
		}

		tri.area = edge(tri.v[0].pos, tri.v[1].pos, tri.v[2].pos)
		if tri.area == 0 {
			continue
		}
		if tri.area < 0 {
			tri.v[1], tri.v[2] = tri.v[2], tri.v[1]
			tri.area = -tri.area
		}
		for k := 0; k < 3; k++ {
			tri.topLeft[k] = isTopLeft(tri.v[(k+1)%3].pos, tri.v[(k+2)%3].pos)
		}

		minX, maxX := tri.v[0].pos.X(), tri.v[0].pos.X()
		minY, maxY := tri.v[0].pos.Y(), tri.v[0].pos.Y()
		for k := 1; k < 3; k++ {
			minX, maxX = min(minX, tri.v[k].pos.X()), max(maxX, tri.v[k].pos.X())
			minY, maxY = min(minY, tri.v[k].pos.Y()), max(maxY, tri.v[k].pos.Y())
		}
		tri.minX = max(int(minX), 0)
		tri.maxX = min(int(maxX)+1, target.Width)
		tri.minY = max(int(minY), 0)
		tri.maxY = min(int(maxY)+1, target.Height)
		if tri.minX >= tri.maxX || tri.minY >= tri.maxY {
			continue
		}
		tris = append(tris, tri)
	}
	return tris
}

func shadeBand(target *Target, tri *triangle, material core.ParticleMaterial, y0, y1 int) {
	y0, y1 = max(y0, tri.minY), min(y1, tri.maxY)
	for y := y0; y < y1; y++ {
		for x := tri.minX; x < tri.maxX; x++ {
			p := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}

			var b [3]float32
			inside := true
			for k := 0; k < 3; k++ {
				e := edge(tri.v[(k+1)%3].pos, tri.v[(k+2)%3].pos, p)
				if e < 0 || (e == 0 && !tri.topLeft[k]) {
					inside = false
					break
				}
				b[k] = e / tri.area
			}
			if !inside {
				continue
			}

			// Perspective-correct: interpolate attr/w and 1/w linearly in screen space
			invW := b[0]*tri.v[0].invW + b[1]*tri.v[1].invW + b[2]*tri.v[2].invW
			uv := tri.v[0].uvW.Mul(b[0]).
				Add(tri.v[1].uvW.Mul(b[1])).
				Add(tri.v[2].uvW.Mul(b[2])).
				Mul(1 / invW)

			target.blend(x, y, shade.Fragment(uv, material))
		}
	}
}

// edge is twice the signed area of (a, b, p); positive when p is clockwise of a->b on screen.
func edge(a, b, p mgl32.Vec2) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// isTopLeft reports whether a->b is a top or left edge of a positive-area triangle.
// Pixels exactly on such edges belong to the triangle, so shared edges are shaded once.
func isTopLeft(a, b mgl32.Vec2) bool {
	dx, dy := b.X()-a.X(), b.Y()-a.Y()
	return (dy == 0 && dx > 0) || dy < 0
}
