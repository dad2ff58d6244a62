package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

// These tests only cover the branches that return before touching a device.

func newDetachedMaterial(passes int) *PointMaterial {
	return &PointMaterial{
		host:      &Host{},
		pipelines: make([]*wgpu.RenderPipeline, passes),
	}
}

func TestPointMaterial_ActivatePassOutOfRange(t *testing.T) {
	m := newDetachedMaterial(1)

	assert.ErrorIs(t, m.ActivatePass(1), ErrPassNotFound)
	assert.ErrorIs(t, m.ActivatePass(-1), ErrPassNotFound)
	assert.Equal(t, 1, m.PassCount())
}

func TestPointMaterial_ActivatePassWithoutFrame(t *testing.T) {
	m := newDetachedMaterial(1)
	assert.ErrorIs(t, m.ActivatePass(0), ErrNoActiveFrame)
}

func TestPointMaterial_BindBufferUnknownSlot(t *testing.T) {
	m := newDetachedMaterial(1)
	assert.ErrorIs(t, m.BindBuffer("_Velocities", &wgpu.Buffer{}), ErrUnknownSlot)
}

func TestPointMaterial_BindBufferInvalidHandle(t *testing.T) {
	m := newDetachedMaterial(1)
	assert.ErrorIs(t, m.BindBuffer("_Particles", "not a buffer"), ErrInvalidHandle)
}

func TestPointMaterial_BindBufferNilHandleIsStale(t *testing.T) {
	m := newDetachedMaterial(1)
	m.host.frame = &frame{drawable: true}

	assert.NoError(t, m.BindBuffer("_Particles", nil))
	assert.False(t, m.host.frame.drawable)

	m.host.frame.drawable = true
	var typedNil *wgpu.Buffer
	assert.NoError(t, m.BindBuffer("_Particles", typedNil))
	assert.False(t, m.host.frame.drawable)
}

func TestHost_DrawWithoutFrameIsNoop(t *testing.T) {
	h := &Host{}
	h.DrawProceduralPoints(100)
	h.DrawProceduralPoints(0)
	assert.Equal(t, FrameStats{}, h.Stats())
	assert.False(t, h.InFrame())
}

func TestHost_DrawStaleFrameIsNoop(t *testing.T) {
	h := &Host{frame: &frame{drawable: false}}
	h.DrawProceduralPoints(100)
	assert.Equal(t, FrameStats{}, h.Stats())
}

func TestHost_EndFrameWithoutBegin(t *testing.T) {
	h := &Host{}
	assert.ErrorIs(t, h.EndFrame(), ErrNoActiveFrame)
}

func TestParticleBuffer_Released(t *testing.T) {
	p := &ParticleBuffer{capacity: 10}

	assert.Nil(t, p.GetBuffer())
	assert.Equal(t, 0, p.GetMaxParticleNum())
	assert.Error(t, p.Write(nil, nil))
	p.Release()
}

func TestParticleBuffer_NilReceiver(t *testing.T) {
	var p *ParticleBuffer

	assert.NotPanics(t, func() {
		assert.Nil(t, p.GetBuffer())
		assert.Equal(t, 0, p.GetMaxParticleNum())
		assert.Error(t, p.Write(nil, nil))
		p.Release()
	})
}
