package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gridparticles/pointrt/core"
)

// ParticleBuffer holds particle data in a GPU storage buffer and exposes it
// to render adapters. It does not simulate anything; callers upload new
// particle data with Write.
type ParticleBuffer struct {
	buffer   *wgpu.Buffer
	capacity int
}

func NewParticleBuffer(device *wgpu.Device, particles []core.Particle) (*ParticleBuffer, error) {
	capacity := len(particles)
	if capacity == 0 {
		// wgpu rejects zero-sized storage bindings; keep one empty slot.
		particles = make([]core.Particle, 1)
	}

	buf, err := createParticleStorage(device, particles)
	if err != nil {
		return nil, err
	}
	return &ParticleBuffer{buffer: buf, capacity: capacity}, nil
}

func createParticleStorage(device *wgpu.Device, particles []core.Particle) (*wgpu.Buffer, error) {
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "ParticleBuffer",
		Contents: wgpu.ToBytes(particles),
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create particle buffer: %w", err)
	}
	return buf, nil
}

// Write uploads particles starting at index 0. It fails if particles exceed
// the buffer's capacity.
func (p *ParticleBuffer) Write(queue *wgpu.Queue, particles []core.Particle) error {
	if p == nil || p.buffer == nil {
		return errors.New("particle buffer released")
	}
	if len(particles) > p.capacity {
		return fmt.Errorf("write %d particles into buffer of %d", len(particles), p.capacity)
	}
	if len(particles) == 0 {
		return nil
	}
	return queue.WriteBuffer(p.buffer, 0, wgpu.ToBytes(particles))
}

// GetBuffer returns the storage buffer, or nil once released.
func (p *ParticleBuffer) GetBuffer() any {
	if p == nil || p.buffer == nil {
		return nil
	}
	return p.buffer
}

// GetMaxParticleNum returns the number of particles the buffer holds, or 0
// once released.
func (p *ParticleBuffer) GetMaxParticleNum() int {
	if p == nil || p.buffer == nil {
		return 0
	}
	return p.capacity
}

func (p *ParticleBuffer) Release() {
	if p != nil && p.buffer != nil {
		p.buffer.Release()
		p.buffer = nil
	}
}
