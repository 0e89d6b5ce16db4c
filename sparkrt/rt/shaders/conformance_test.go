package shaders

import (
	"reflect"
	"strconv"
	"testing"
	"unsafe"

	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reflectParticle(t *testing.T) *Reflection {
	t.Helper()
	r, err := Reflect(ParticleWGSL)
	require.NoError(t, err)
	return r
}

func TestParticleWGSL_EntryPoints(t *testing.T) {
	r := reflectParticle(t)
	assert.Equal(t, []string{ParticleVertexEntry}, r.VertexEntries)
	assert.Equal(t, []string{ParticleFragmentEntry}, r.FragmentEntries)
}

func TestParticleWGSL_ViewBinding(t *testing.T) {
	r := reflectParticle(t)

	u, ok := r.Uniform(0, 0)
	require.True(t, ok, "view must be bound at group 0 binding 0")
	s, ok := r.Struct(u.Type)
	require.True(t, ok)

	var v core.View
	assert.Equal(t, uint64(unsafe.Sizeof(v)), s.Size)
	assert.Equal(t, uint64(core.ViewSize), s.Size)

	vp, ok := s.Field("view_proj")
	require.True(t, ok)
	assert.Equal(t, "mat4x4<f32>", vp.Type)
	assert.Equal(t, uint64(unsafe.Offsetof(v.ViewProj)), vp.Offset)
}

func TestParticleWGSL_MaterialBinding(t *testing.T) {
	r := reflectParticle(t)

	u, ok := r.Uniform(1, 0)
	require.True(t, ok, "material must be bound at group 1 binding 0")
	s, ok := r.Struct(u.Type)
	require.True(t, ok)

	var m core.ParticleMaterial
	assert.Equal(t, uint64(unsafe.Sizeof(m)), s.Size)
	assert.Equal(t, uint64(core.ParticleMaterialSize), s.Size)
	assert.Len(t, m.Marshal(), int(s.Size))

	color, ok := s.Field("color")
	require.True(t, ok)
	assert.Equal(t, uint64(unsafe.Offsetof(m.Color)), color.Offset)

	tm, ok := s.Field("time")
	require.True(t, ok)
	assert.Equal(t, uint64(unsafe.Offsetof(m.Time)), tm.Offset)
}

func TestParticleWGSL_VertexInput(t *testing.T) {
	r := reflectParticle(t)
	in, ok := r.Struct("VertexInput")
	require.True(t, ok)

	byLocation := map[int]Field{}
	for _, f := range in.Fields {
		if f.Location >= 0 {
			byLocation[f.Location] = f
		}
	}

	vt := reflect.TypeOf(core.VertexAttributes{})
	tagged := 0
	for i := 0; i < vt.NumField(); i++ {
		field := vt.Field(i)
		if field.Tag.Get("sparkfx") != "layout" {
			continue
		}
		tagged++

		loc, err := strconv.Atoi(field.Tag.Get("location"))
		require.NoError(t, err)
		wgsl, ok := byLocation[loc]
		require.True(t, ok, "no shader input at location %d for %s", loc, field.Name)

		format, err := VertexFormatName(wgsl.Type)
		require.NoError(t, err)
		assert.Equal(t, format, field.Tag.Get("format"), field.Name)
		assert.Equal(t, uintptr(wgsl.Size), field.Type.Size(), field.Name)
	}
	assert.Equal(t, len(byLocation), tagged)
}

func TestParticleWGSL_VertexOutput(t *testing.T) {
	r := reflectParticle(t)
	out, ok := r.Struct("VertexOutput")
	require.True(t, ok)

	clip, ok := out.Field("clip_position")
	require.True(t, ok)
	assert.Equal(t, "position", clip.Builtin)

	world, ok := out.Field("world_position")
	require.True(t, ok)
	assert.Equal(t, "vec4<f32>", world.Type)

	uv, ok := out.Field("uv")
	require.True(t, ok)
	assert.Equal(t, "vec2<f32>", uv.Type)
}
