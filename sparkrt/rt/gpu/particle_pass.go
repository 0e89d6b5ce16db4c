package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sparkfx"
	"github.com/gekko3d/sparkfx/sparkrt/rt/core"
	"github.com/gekko3d/sparkfx/sparkrt/rt/shaders"
	"github.com/google/uuid"
)

var ErrUnknownMaterial = errors.New("unknown particle material")

// MaterialId names one ParticleMaterial uniform block owned by a ParticlePass.
type MaterialId string

func newMaterialId() MaterialId {
	return MaterialId(uuid.NewString())
}

type materialSlot struct {
	Params    core.ParticleMaterial
	Vertices  []core.VertexAttributes
	Uniform   *wgpu.Buffer
	BindGroup *wgpu.BindGroup
	dirty     bool
}

// drawRange is a contiguous run of the shared vertex buffer drawn with one material.
type drawRange struct {
	id    MaterialId
	first uint32
	count uint32
}

type ParticlePass struct {
	Pipeline      *wgpu.RenderPipeline
	ViewBGL       *wgpu.BindGroupLayout
	MaterialBGL   *wgpu.BindGroupLayout
	ViewBuffer    *wgpu.Buffer
	ViewBindGroup *wgpu.BindGroup
	VertexBuffer  *wgpu.Buffer
	VertexCap     uint32
	Device        *wgpu.Device
	Queue         *wgpu.Queue

	materials map[MaterialId]*materialSlot
	order     []MaterialId
	ranges    []drawRange
	logger    sparkfx.Logger
}

// StraightAlphaBlend is src*srcAlpha + dst*(1-srcAlpha) on colour; rgb is not premultiplied.
func StraightAlphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
}

func NewParticlePass(device *wgpu.Device, format wgpu.TextureFormat, logger sparkfx.Logger) (*ParticlePass, error) {
	if logger == nil {
		logger = sparkfx.NewNopLogger()
	}

	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticleShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticleWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("particle shader module: %w", err)
	}
	defer shaderModule.Release()

	// Group 0: View
	viewBgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticleViewBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: core.ViewSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("particle view layout: %w", err)
	}

	// Group 1: ParticleMaterial
	materialBgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticleMaterialBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: core.ParticleMaterialSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("particle material layout: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "ParticlePipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{viewBgl, materialBgl},
	})
	if err != nil {
		return nil, fmt.Errorf("particle pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ParticlePipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: shaders.ParticleVertexEntry,
			Buffers: []wgpu.VertexBufferLayout{
				VertexBufferLayout(core.VertexAttributes{}, wgpu.VertexStepModeVertex),
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: shaders.ParticleFragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend:     StraightAlphaBlend(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("particle pipeline: %w", err)
	}

	viewBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleViewUniform",
		Size:  core.ViewSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("particle view buffer: %w", err)
	}

	viewBindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ParticleViewBG",
		Layout: viewBgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: viewBuffer, Size: core.ViewSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("particle view bind group: %w", err)
	}

	logger.Debugf("particle pass ready (format %v)", format)

	return &ParticlePass{
		Pipeline:      pipeline,
		ViewBGL:       viewBgl,
		MaterialBGL:   materialBgl,
		ViewBuffer:    viewBuffer,
		ViewBindGroup: viewBindGroup,
		Device:        device,
		Queue:         device.GetQueue(),
		materials:     make(map[MaterialId]*materialSlot),
		logger:        logger,
	}, nil
}

// NewMaterial allocates the uniform buffer and bind group for one draw's material.
func (p *ParticlePass) NewMaterial(params core.ParticleMaterial) (MaterialId, error) {
	uniform, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleMaterialUniform",
		Size:  core.ParticleMaterialSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return "", fmt.Errorf("particle material buffer: %w", err)
	}

	bindGroup, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ParticleMaterialBG",
		Layout: p.MaterialBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniform, Size: core.ParticleMaterialSize},
		},
	})
	if err != nil {
		uniform.Release()
		return "", fmt.Errorf("particle material bind group: %w", err)
	}

	id := newMaterialId()
	p.materials[id] = &materialSlot{
		Params:    params,
		Uniform:   uniform,
		BindGroup: bindGroup,
		dirty:     true,
	}
	p.order = append(p.order, id)
	p.logger.Debugf("particle material %s created", id)
	return id, nil
}

// SetMaterial replaces the parameters uploaded on the next Update. Values must not change
// between Update and the end of the frame's Draw.
func (p *ParticlePass) SetMaterial(id MaterialId, params core.ParticleMaterial) error {
	slot, ok := p.materials[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMaterial, id)
	}
	slot.Params = params
	slot.dirty = true
	return nil
}

// SetGeometry assigns the quad vertices drawn with a material.
func (p *ParticlePass) SetGeometry(id MaterialId, vertices []core.VertexAttributes) error {
	slot, ok := p.materials[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMaterial, id)
	}
	slot.Vertices = append(slot.Vertices[:0], vertices...)
	return nil
}

func (p *ParticlePass) ReleaseMaterial(id MaterialId) {
	slot, ok := p.materials[id]
	if !ok {
		return
	}
	slot.BindGroup.Release()
	slot.Uniform.Release()
	delete(p.materials, id)
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *ParticlePass) UpdateView(view core.View) error {
	return p.Queue.WriteBuffer(p.ViewBuffer, 0, view.Marshal())
}

// Update uploads dirty materials and repacks all geometry into the shared vertex buffer.
func (p *ParticlePass) Update() error {
	for id, slot := range p.materials {
		if !slot.dirty {
			continue
		}
		if err := p.Queue.WriteBuffer(slot.Uniform, 0, slot.Params.Marshal()); err != nil {
			return fmt.Errorf("upload material %s: %w", id, err)
		}
		slot.dirty = false
	}

	vertices, ranges := buildDrawList(p.order, p.materials)
	p.ranges = ranges
	if len(vertices) == 0 {
		return nil
	}

	count := uint32(len(vertices))
	if p.VertexBuffer == nil || p.VertexCap < count {
		if p.VertexBuffer != nil {
			p.VertexBuffer.Release()
		}
		p.VertexCap = count + 6*64 // Margin
		var err error
		p.VertexBuffer, err = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "ParticleVertexBuffer",
			Size:  uint64(p.VertexCap) * vertexStride,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.VertexBuffer = nil
			p.VertexCap = 0
			return fmt.Errorf("particle vertex buffer: %w", err)
		}
		p.logger.Debugf("particle vertex buffer grown to %d vertices", p.VertexCap)
	}

	return p.Queue.WriteBuffer(p.VertexBuffer, 0, wgpu.ToBytes(vertices))
}

func (p *ParticlePass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.VertexBuffer == nil || len(p.ranges) == 0 {
		return
	}

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.ViewBindGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())

	for _, r := range p.ranges {
		slot, ok := p.materials[r.id]
		if !ok {
			continue
		}
		pass.SetBindGroup(1, slot.BindGroup, nil)
		pass.Draw(r.count, 1, r.first, 0)
	}
}

func (p *ParticlePass) Release() {
	for _, id := range append([]MaterialId(nil), p.order...) {
		p.ReleaseMaterial(id)
	}
	if p.VertexBuffer != nil {
		p.VertexBuffer.Release()
		p.VertexBuffer = nil
	}
	p.ViewBindGroup.Release()
	p.ViewBuffer.Release()
	p.MaterialBGL.Release()
	p.ViewBGL.Release()
	p.Pipeline.Release()
}

var vertexStride = VertexBufferLayout(core.VertexAttributes{}, wgpu.VertexStepModeVertex).ArrayStride

// buildDrawList flattens per-material geometry in creation order.
func buildDrawList(order []MaterialId, materials map[MaterialId]*materialSlot) ([]core.VertexAttributes, []drawRange) {
	var vertices []core.VertexAttributes
	var ranges []drawRange
	for _, id := range order {
		slot, ok := materials[id]
		if !ok || len(slot.Vertices) == 0 {
			continue
		}
		ranges = append(ranges, drawRange{
			id:    id,
			first: uint32(len(vertices)),
			count: uint32(len(slot.Vertices)),
		})
		vertices = append(vertices, slot.Vertices...)
	}
	return vertices, ranges
}
