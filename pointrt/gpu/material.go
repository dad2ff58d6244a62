package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gridparticles/pointrt/core"
	"github.com/gekko3d/gridparticles/pointrt/shaders"
)

var (
	ErrPassNotFound  = errors.New("material pass not found")
	ErrUnknownSlot   = errors.New("unknown shader resource slot")
	ErrInvalidHandle = errors.New("buffer handle is not a *wgpu.Buffer")
)

const (
	cameraGroup    = 0
	particlesGroup = 1
)

type slotBinding struct {
	group   uint32
	binding uint32
}

// pointSlots maps shader resource slot names to their bind group location.
var pointSlots = map[string]slotBinding{
	"_Particles": {group: particlesGroup, binding: 0},
}

// PointMaterial renders a storage buffer of core.Particle as a point list.
// It has a single pass.
type PointMaterial struct {
	host *Host

	pipelines      []*wgpu.RenderPipeline
	storageLayouts map[uint32]*wgpu.BindGroupLayout
	cameraLayout   *wgpu.BindGroupLayout
	cameraBuffer   *wgpu.Buffer
	cameraBG       *wgpu.BindGroup

	// Last storage buffer bound per group and its bind group. Rebuilt when
	// the provider hands out a different buffer.
	boundBuffers map[uint32]*wgpu.Buffer
	bindGroups   map[uint32]*wgpu.BindGroup
}

func NewPointMaterial(host *Host) (*PointMaterial, error) {
	device := host.Device
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PointsShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PointsWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	defer shaderModule.Release()

	m := &PointMaterial{
		host:           host,
		storageLayouts: make(map[uint32]*wgpu.BindGroupLayout),
		boundBuffers:   make(map[uint32]*wgpu.Buffer),
		bindGroups:     make(map[uint32]*wgpu.BindGroup),
	}

	// Group 0: camera uniform
	m.cameraLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "PointsCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: core.CameraUniformSize,
				},
			},
		},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("create camera layout: %w", err)
	}

	// Group 1: particle storage
	particlesLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "PointsParticlesBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: core.ParticleStride,
				},
			},
		},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("create particles layout: %w", err)
	}
	m.storageLayouts[particlesGroup] = particlesLayout

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "PointsPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{m.cameraLayout, particlesLayout},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "PointsPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    host.Format(),
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
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
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyPointList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	m.pipelines = append(m.pipelines, pipeline)

	m.cameraBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PointsCameraBuffer",
		Size:  core.CameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("create camera buffer: %w", err)
	}

	m.cameraBG, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "PointsCameraBG",
		Layout: m.cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  m.cameraBuffer,
				Size:    core.CameraUniformSize,
			},
		},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("create camera bind group: %w", err)
	}

	return m, nil
}

// PassCount returns the number of passes the material can activate.
func (m *PointMaterial) PassCount() int {
	return len(m.pipelines)
}

// ActivatePass sets the pipeline of pass index and the camera bind group on
// the host's open render pass.
func (m *PointMaterial) ActivatePass(index int) error {
	if index < 0 || index >= len(m.pipelines) {
		return fmt.Errorf("%w: %d of %d", ErrPassNotFound, index, len(m.pipelines))
	}
	pass := m.host.pass()
	if pass == nil {
		return ErrNoActiveFrame
	}
	pass.SetPipeline(m.pipelines[index])
	pass.SetBindGroup(cameraGroup, m.cameraBG, nil)
	m.host.setDrawable(true)
	return nil
}

// BindBuffer binds a storage buffer to a named slot. A nil handle marks the
// frame's draw as stale instead of failing.
func (m *PointMaterial) BindBuffer(slot string, handle any) error {
	loc, ok := pointSlots[slot]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if handle == nil {
		m.host.setDrawable(false)
		return nil
	}
	buf, ok := handle.(*wgpu.Buffer)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrInvalidHandle, handle)
	}
	if buf == nil {
		m.host.setDrawable(false)
		return nil
	}
	pass := m.host.pass()
	if pass == nil {
		return ErrNoActiveFrame
	}

	bg, err := m.storageBindGroup(loc, buf)
	if err != nil {
		m.host.setDrawable(false)
		return err
	}
	pass.SetBindGroup(loc.group, bg, nil)
	return nil
}

func (m *PointMaterial) storageBindGroup(loc slotBinding, buf *wgpu.Buffer) (*wgpu.BindGroup, error) {
	if m.boundBuffers[loc.group] == buf {
		if bg := m.bindGroups[loc.group]; bg != nil {
			return bg, nil
		}
	}
	if old := m.bindGroups[loc.group]; old != nil {
		old.Release()
		delete(m.bindGroups, loc.group)
	}

	bg, err := m.host.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "PointsParticlesBG",
		Layout: m.storageLayouts[loc.group],
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: loc.binding,
				Buffer:  buf,
				Size:    buf.GetSize(),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create particles bind group: %w", err)
	}
	m.boundBuffers[loc.group] = buf
	m.bindGroups[loc.group] = bg
	return bg, nil
}

// UpdateCamera uploads the camera's view-projection matrix.
func (m *PointMaterial) UpdateCamera(c *core.Camera) error {
	if m.cameraBuffer == nil {
		return errors.New("camera buffer not initialized")
	}
	return m.host.Queue.WriteBuffer(m.cameraBuffer, 0, c.Uniform().Marshal())
}

func (m *PointMaterial) Release() {
	for group, bg := range m.bindGroups {
		bg.Release()
		delete(m.bindGroups, group)
	}
	clear(m.boundBuffers)
	if m.cameraBG != nil {
		m.cameraBG.Release()
		m.cameraBG = nil
	}
	if m.cameraBuffer != nil {
		m.cameraBuffer.Release()
		m.cameraBuffer = nil
	}
	for _, p := range m.pipelines {
		p.Release()
	}
	m.pipelines = nil
	for group, l := range m.storageLayouts {
		l.Release()
		delete(m.storageLayouts, group)
	}
	if m.cameraLayout != nil {
		m.cameraLayout.Release()
		m.cameraLayout = nil
	}
}
