package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraState_GetForward(t *testing.T) {
	cam := NewCameraState()
	fwd := cam.GetForward()
	assert.InDelta(t, 0, fwd.X(), 1e-6)
	assert.InDelta(t, 0, fwd.Y(), 1e-6)
	assert.InDelta(t, -1, fwd.Z(), 1e-6)
}

func TestCameraState_View(t *testing.T) {
	cam := NewCameraState()
	view := cam.View(16.0 / 9.0)

	tests := []struct {
		name    string
		point   mgl32.Vec3
		visible bool
	}{
		{"Origin", mgl32.Vec3{0, 0, 0}, true},
		{"Slightly right", mgl32.Vec3{1, 0, 0}, true},
		{"Behind camera", mgl32.Vec3{0, 0, 20}, false},
		{"Far left", mgl32.Vec3{-100, 0, 0}, false},
	}

	for _, tc := range tests {
		clip := view.ViewProj.Mul4x1(tc.point.Vec4(1))
		inside := clip.W() > 0 &&
			clip.X() >= -clip.W() && clip.X() <= clip.W() &&
			clip.Y() >= -clip.W() && clip.Y() <= clip.W()
		assert.Equal(t, tc.visible, inside, tc.name)
	}

	// Origin projects onto the screen centre
	clip := view.ViewProj.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-6)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-6)
}

func TestCameraState_ZeroAspect(t *testing.T) {
	cam := NewCameraState()
	assert.Equal(t, cam.GetProjectionMatrix(1), cam.GetProjectionMatrix(0))
}
