package gridparticles

import (
	"errors"
	"fmt"
	"reflect"
)

// ParticlesSlot is the shader resource slot the particle buffer is bound to.
const ParticlesSlot = "_Particles"

// ParticlePass is the only material pass the adapter activates.
const ParticlePass = 0

// ErrMissingDependency is returned when a collaborator reference is unset at
// call time.
var ErrMissingDependency = errors.New("missing dependency")

// BufferHandle is an opaque reference to GPU-resident particle data.
type BufferHandle = any

// ComputeProvider owns the particle buffer and its simulation.
type ComputeProvider interface {
	GetBuffer() BufferHandle
	GetMaxParticleNum() int
}

// Material is a shader/pipeline-state object owned by the host.
type Material interface {
	ActivatePass(index int) error
	BindBuffer(slot string, handle BufferHandle) error
}

// Graphics is the host draw API.
type Graphics interface {
	DrawProceduralPoints(count int)
}

// RenderAdapter binds a compute provider's particle buffer to a material and
// draws it as points, once per render callback.
//
// All three references are non-owning and may be nil until the first frame;
// they are resolved each time OnRenderFrame runs. The adapter keeps no state
// between frames.
type RenderAdapter struct {
	provider ComputeProvider
	material Material
	graphics Graphics
}

var _ RenderCallback = (*RenderAdapter)(nil)

func NewRenderAdapter(provider ComputeProvider, material Material, graphics Graphics) *RenderAdapter {
	return &RenderAdapter{
		provider: provider,
		material: material,
		graphics: graphics,
	}
}

func (r *RenderAdapter) SetProvider(provider ComputeProvider) { r.provider = provider }
func (r *RenderAdapter) SetMaterial(material Material)        { r.material = material }
func (r *RenderAdapter) SetGraphics(graphics Graphics)        { r.graphics = graphics }

// OnRenderFrame activates pass 0 of the material, binds the provider's buffer
// to ParticlesSlot and issues a points draw of GetMaxParticleNum vertices.
func (r *RenderAdapter) OnRenderFrame() error {
	switch {
	case isNilRef(r.provider):
		return fmt.Errorf("render adapter: compute provider: %w", ErrMissingDependency)
	case isNilRef(r.material):
		return fmt.Errorf("render adapter: material: %w", ErrMissingDependency)
	case isNilRef(r.graphics):
		return fmt.Errorf("render adapter: graphics: %w", ErrMissingDependency)
	}

	if err := r.material.ActivatePass(ParticlePass); err != nil {
		return fmt.Errorf("render adapter: activate pass %d: %w", ParticlePass, err)
	}
	if err := r.material.BindBuffer(ParticlesSlot, r.provider.GetBuffer()); err != nil {
		return fmt.Errorf("render adapter: bind %s: %w", ParticlesSlot, err)
	}

	count := r.provider.GetMaxParticleNum()
	if count < 0 {
		count = 0
	}
	r.graphics.DrawProceduralPoints(count)
	return nil
}

// isNilRef reports whether ref is nil, including a nil pointer held in an
// interface.
func isNilRef(ref any) bool {
	if ref == nil {
		return true
	}
	v := reflect.ValueOf(ref)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
