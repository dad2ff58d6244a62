package core

import (
	"math/rand"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle matches WGSL layout in points.wgsl
// struct Particle { vec3 position; float size; vec4 color; }
type Particle struct {
	Position [3]float32
	Size     float32 // not read by the point shader, keeps color 16-byte aligned
	Color    [4]float32
}

const ParticleStride = uint64(unsafe.Sizeof(Particle{}))

type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Bounds) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// SeedOptions controls the size and color ranges of seeded particles.
type SeedOptions struct {
	SizeRange     [2]float32
	StartColorMin [4]float32 // RGBA min (0..1)
	StartColorMax [4]float32 // RGBA max (0..1)
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		SizeRange:     [2]float32{1, 1},
		StartColorMin: [4]float32{0.2, 0.5, 0.9, 1},
		StartColorMax: [4]float32{0.6, 0.9, 1.0, 1},
	}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// SeedParticles places n particles uniformly inside bounds.
func SeedParticles(n int, bounds Bounds, opts SeedOptions, rng *rand.Rand) []Particle {
	if n <= 0 {
		return nil
	}
	particles := make([]Particle, n)
	for i := range particles {
		p := mgl32.Vec3{
			lerp(bounds.Min.X(), bounds.Max.X(), rng.Float32()),
			lerp(bounds.Min.Y(), bounds.Max.Y(), rng.Float32()),
			lerp(bounds.Min.Z(), bounds.Max.Z(), rng.Float32()),
		}

		var c [4]float32
		for j := 0; j < 4; j++ {
			c[j] = lerp(opts.StartColorMin[j], opts.StartColorMax[j], rng.Float32())
		}

		particles[i] = Particle{
			Position: [3]float32{p.X(), p.Y(), p.Z()},
			Size:     lerp(opts.SizeRange[0], opts.SizeRange[1], rng.Float32()),
			Color:    c,
		}
	}
	return particles
}
