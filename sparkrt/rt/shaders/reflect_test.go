package shaders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWGSL = `
// lights
struct Light {
    position: vec3<f32>,
    intensity: f32,
};

struct Scene {
    light: Light,
    ambient: vec3<f32>, // trailing comment
    count: u32,
};

@group(2) @binding(1) var<uniform> scene: Scene;

struct VsIn {
    @location(3) pos: vec3<f32>,
    @builtin(vertex_index) idx: u32,
};

@vertex fn main_vs(in: VsIn) -> @builtin(position) vec4<f32> { return vec4<f32>(in.pos, 1.0); }
@fragment
fn main_fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`

func TestReflect_Layout(t *testing.T) {
	r, err := Reflect(sampleWGSL)
	require.NoError(t, err)

	light, ok := r.Struct("Light")
	require.True(t, ok)
	assert.Equal(t, uint64(16), light.Size)
	assert.Equal(t, uint64(16), light.Align)

	scene, ok := r.Struct("Scene")
	require.True(t, ok)
	tests := []struct {
		name   string
		offset uint64
		size   uint64
	}{
		{"light", 0, 16},
		{"ambient", 16, 12},
		{"count", 28, 4},
	}
	for _, tc := range tests {
		f, ok := scene.Field(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.offset, f.Offset, tc.name)
		assert.Equal(t, tc.size, f.Size, tc.name)
	}
	assert.Equal(t, uint64(32), scene.Size)
}

func TestReflect_AttributesAndBindings(t *testing.T) {
	r, err := Reflect(sampleWGSL)
	require.NoError(t, err)

	in, ok := r.Struct("VsIn")
	require.True(t, ok)
	pos, _ := in.Field("pos")
	assert.Equal(t, 3, pos.Location)
	idx, _ := in.Field("idx")
	assert.Equal(t, -1, idx.Location)
	assert.Equal(t, "vertex_index", idx.Builtin)

	u, ok := r.Uniform(2, 1)
	require.True(t, ok)
	assert.Equal(t, "scene", u.Name)
	assert.Equal(t, "Scene", u.Type)

	_, ok = r.Uniform(0, 0)
	assert.False(t, ok)

	assert.Equal(t, []string{"main_vs"}, r.VertexEntries)
	assert.Equal(t, []string{"main_fs"}, r.FragmentEntries)
}

func TestReflect_UnknownType(t *testing.T) {
	_, err := Reflect(`struct Bad { x: texture_2d<f32>, };`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestVertexFormatName(t *testing.T) {
	name, err := VertexFormatName("vec3<f32>")
	require.NoError(t, err)
	assert.Equal(t, "float3", name)

	_, err = VertexFormatName("mat4x4<f32>")
	assert.ErrorIs(t, err, ErrUnknownType)
}
