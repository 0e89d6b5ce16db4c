package shaders

import (
	_ "embed"
)

//go:embed particle.wgsl
var ParticleWGSL string

const (
	ParticleVertexEntry   = "vs_main"
	ParticleFragmentEntry = "fs_main"
)
