package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sparkfx"
	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPass() *ParticlePass {
	return &ParticlePass{
		materials: make(map[MaterialId]*materialSlot),
		logger:    sparkfx.NewNopLogger(),
	}
}

func TestVertexBufferLayout_Particle(t *testing.T) {
	layout := VertexBufferLayout(core.VertexAttributes{}, wgpu.VertexStepModeVertex)

	assert.Equal(t, uint64(20), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 2)

	assert.Equal(t, uint32(0), layout.Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)

	assert.Equal(t, uint32(1), layout.Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
}

func TestVertexBufferLayout_SkipsUntaggedFields(t *testing.T) {
	type vertex struct {
		Pos   [3]float32 `sparkfx:"layout" location:"0" format:"float3"`
		Extra float32
		Color [4]float32 `sparkfx:"layout" location:"2" format:"float4"`
	}
	layout := VertexBufferLayout(vertex{}, wgpu.VertexStepModeInstance)

	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, uint64(16), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[1].ShaderLocation)
}

func TestVertexBufferLayout_Panics(t *testing.T) {
	assert.Panics(t, func() { VertexBufferLayout(42, wgpu.VertexStepModeVertex) })

	type badFormat struct {
		Pos [3]float32 `sparkfx:"layout" location:"0" format:"half3"`
	}
	assert.PanicsWithValue(t, "unsupported vertex layout format: half3", func() {
		VertexBufferLayout(badFormat{}, wgpu.VertexStepModeVertex)
	})
}

func TestStraightAlphaBlend(t *testing.T) {
	blend := StraightAlphaBlend()
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, blend.Color.DstFactor)
	assert.Equal(t, wgpu.BlendOperationAdd, blend.Color.Operation)
}

func TestMaterialId_Unique(t *testing.T) {
	a, b := newMaterialId(), newMaterialId()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(string(a))
	assert.NoError(t, err)
}

func TestParticlePass_UnknownMaterial(t *testing.T) {
	p := newTestPass()

	err := p.SetMaterial("missing", core.NewParticleMaterial([4]float32{1, 1, 1, 1}, 0))
	assert.ErrorIs(t, err, ErrUnknownMaterial)

	err = p.SetGeometry("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestParticlePass_SetMaterialMarksDirty(t *testing.T) {
	p := newTestPass()
	id := newMaterialId()
	p.materials[id] = &materialSlot{}
	p.order = append(p.order, id)

	params := core.NewParticleMaterial([4]float32{1, 0.5, 0, 1}, 0.4)
	require.NoError(t, p.SetMaterial(id, params))
	assert.True(t, p.materials[id].dirty)
	assert.Equal(t, params, p.materials[id].Params)
}

func TestBuildDrawList(t *testing.T) {
	p := newTestPass()
	ids := []MaterialId{newMaterialId(), newMaterialId(), newMaterialId()}
	for _, id := range ids {
		p.materials[id] = &materialSlot{}
		p.order = append(p.order, id)
	}

	quadA := core.ParticleQuad(mgl32.Vec3{-1, 0, 0}, 1)
	quadB := core.ParticleQuad(mgl32.Vec3{1, 0, 0}, 1)
	require.NoError(t, p.SetGeometry(ids[0], quadA))
	// ids[1] has no geometry and is skipped
	require.NoError(t, p.SetGeometry(ids[2], append(quadB, quadB...)))

	vertices, ranges := buildDrawList(p.order, p.materials)
	require.Len(t, vertices, 18)
	require.Len(t, ranges, 2)

	assert.Equal(t, drawRange{id: ids[0], first: 0, count: 6}, ranges[0])
	assert.Equal(t, drawRange{id: ids[2], first: 6, count: 12}, ranges[1])
	assert.Equal(t, quadA[0], vertices[0])
	assert.Equal(t, quadB[0], vertices[6])
}

func TestParticlePass_SetGeometryCopies(t *testing.T) {
	p := newTestPass()
	id := newMaterialId()
	p.materials[id] = &materialSlot{}

	quad := core.ParticleQuad(mgl32.Vec3{}, 1)
	require.NoError(t, p.SetGeometry(id, quad))
	quad[0].UV = [2]float32{9, 9}

	assert.Equal(t, [2]float32{0, 0}, p.materials[id].Vertices[0].UV)
}
