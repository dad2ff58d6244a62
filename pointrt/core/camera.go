package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits Target at a fixed distance. Y is up.
type Camera struct {
	Target     mgl32.Vec3
	Distance   float32
	Yaw        float32
	Pitch      float32
	FovDegrees float32
	Aspect     float32
	Near       float32
	Far        float32
}

func NewCamera(target mgl32.Vec3, distance float32) *Camera {
	return &Camera{
		Target:     target,
		Distance:   distance,
		Pitch:      0.3,
		FovDegrees: 60,
		Aspect:     16.0 / 9.0,
		Near:       0.1,
		Far:        500,
	}
}

func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovDegrees), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewProj() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Orbit rotates the camera around its target by dYaw radians.
func (c *Camera) Orbit(dYaw float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
}

func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// CameraUniform matches the WGSL Camera struct (64 bytes).
type CameraUniform struct {
	ViewProj mgl32.Mat4
}

const CameraUniformSize = 64

func (c *Camera) Uniform() CameraUniform {
	return CameraUniform{ViewProj: c.ViewProj()}
}

// Marshal serializes the uniform column-major, little endian.
func (u CameraUniform) Marshal() []byte {
	buf := make([]byte, CameraUniformSize)
	for i, v := range u.ViewProj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
