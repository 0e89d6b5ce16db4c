package core

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleMaterial matches WGSL layout in particle.wgsl (group 1, binding 0)
// struct ParticleMaterial { color: vec4<f32>, time: f32 }
// WGSL rounds the struct up to its 16 byte alignment, so 12 bytes of tail padding follow Time.
type ParticleMaterial struct {
	Color [4]float32 // offset  0: RGBA, not clamped
	Time  float32    // offset 16: seconds since spawn
	_     [3]float32 // offset 20: padding to 32
}

const ParticleMaterialSize = 32

func NewParticleMaterial(color [4]float32, time float32) ParticleMaterial {
	return ParticleMaterial{Color: color, Time: time}
}

func (m *ParticleMaterial) Size() int {
	return int(unsafe.Sizeof(*m))
}

// Marshal writes the exact uniform buffer image, padding zeroed.
func (m *ParticleMaterial) Marshal() []byte {
	buf := make([]byte, ParticleMaterialSize)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m.Color[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(m.Time))
	return buf
}

// View matches WGSL layout in particle.wgsl (group 0, binding 0)
// struct View { view_proj: mat4x4<f32> }
type View struct {
	ViewProj mgl32.Mat4 // offset 0: column-major, same as WGSL
}

const ViewSize = 64

func NewView(viewProj mgl32.Mat4) View {
	return View{ViewProj: viewProj}
}

func (v *View) Size() int {
	return int(unsafe.Sizeof(*v))
}

func (v *View) Marshal() []byte {
	buf := make([]byte, ViewSize)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v.ViewProj[i]))
	}
	return buf
}

// VertexAttributes is one particle quad vertex as read by vs_main.
type VertexAttributes struct {
	Position [3]float32 `sparkfx:"layout" location:"0" format:"float3"`
	UV       [2]float32 `sparkfx:"layout" location:"1" format:"float2"`
}

// Varyings is the vs_main output. The host interpolates it across the primitive.
type Varyings struct {
	ClipPosition  mgl32.Vec4
	WorldPosition mgl32.Vec4
	UV            mgl32.Vec2
}
