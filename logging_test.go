package sparkfx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(&out, &errOut, "fx", false)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())
	assert.False(t, l.DebugEnabled())

	l.SetDebug(true)
	l.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "[fx] DEBUG: shown 2")

	l.Infof("frame %d", 3)
	assert.Contains(t, out.String(), "[fx] INFO: frame 3")

	l.Warnf("slow")
	l.Errorf("broken")
	assert.Contains(t, errOut.String(), "[fx] WARN: slow")
	assert.Contains(t, errOut.String(), "[fx] ERROR: broken")
	assert.NotContains(t, out.String(), "WARN")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, &out, "", false)
	l.Infof("hello")
	assert.Contains(t, out.String(), " INFO: hello")
	assert.NotContains(t, out.String(), "[")
}

func TestDefaultLogger_With(t *testing.T) {
	var out, errOut bytes.Buffer
	root := NewLogger(&out, &errOut, "sparkrt", false)
	emitter := root.With("emitter", "blue")
	frame := emitter.With("frame", 3)

	frame.Infof("saved")
	assert.Contains(t, out.String(), "[sparkrt] INFO: saved emitter=blue frame=3")

	emitter.Errorf("upload failed")
	assert.Contains(t, errOut.String(), "[sparkrt] ERROR: upload failed emitter=blue\n")

	// Children share the parent's debug switch
	frame.Debugf("hidden")
	assert.NotContains(t, out.String(), "hidden")
	root.SetDebug(true)
	assert.True(t, frame.DebugEnabled())
	frame.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown emitter=blue frame=3")

	root.Infof("plain")
	assert.Contains(t, out.String(), "INFO: plain\n")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	assert.NotPanics(t, func() {
		l.Debugf("x")
		l.Infof("x")
		l.Warnf("x")
		l.Errorf("x")
		l.With("frame", 1).Infof("x")
	})
}
