package core

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_PositionAtDistance(t *testing.T) {
	target := mgl32.Vec3{1, 2, 3}
	c := NewCamera(target, 10)

	for _, yaw := range []float32{0, 1, 2.5, 4} {
		c.Yaw = yaw
		d := c.Position().Sub(target).Len()
		assert.InDelta(t, 10, d, 1e-4)
	}
}

func TestCamera_TargetProjectsToCenter(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 0}, 20)
	c.Orbit(0.7)

	clip := c.ViewProj().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.Greater(t, clip.W(), float32(0))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-4)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-4)
}

func TestCamera_OrbitWraps(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 5)
	c.Orbit(3 * math.Pi)
	assert.InDelta(t, math.Pi, c.Yaw, 1e-4)
}

func TestCamera_SetAspect(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 5)
	c.SetAspect(800, 400)
	assert.Equal(t, float32(2), c.Aspect)

	c.SetAspect(0, 400)
	assert.Equal(t, float32(2), c.Aspect, "zero sizes are ignored")
}

func TestCameraUniform_Marshal(t *testing.T) {
	u := CameraUniform{ViewProj: mgl32.Ident4()}
	buf := u.Marshal()
	assert.Len(t, buf, CameraUniformSize)

	for i := 0; i < 16; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, u.ViewProj[i], v)
	}
}
