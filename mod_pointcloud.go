package gridparticles

import (
	"math/rand"

	"github.com/gekko3d/gridparticles/pointrt/core"
	"github.com/gekko3d/gridparticles/pointrt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// PointCloud is the resource holding the GPU objects of PointCloudModule.
type PointCloud struct {
	Buffer     *gpu.ParticleBuffer
	Material   *gpu.PointMaterial
	OrbitSpeed float32 // radians per second
}

// PointCloudModule seeds particles into a GPU buffer and draws them through
// a RenderAdapter. GpuModule must be installed first.
type PointCloudModule struct {
	Config *Config
}

func (mod PointCloudModule) Install(app *App, cmd *Commands) {
	host, ok := Resource[gpu.Host](app)
	if !ok {
		panic("PointCloudModule requires GpuModule to be installed first")
	}
	if _, ok := Resource[Time](app); !ok {
		TimeModule{}.Install(app, cmd)
	}

	cfg := mod.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	bounds := core.Bounds{
		Min: mgl32.Vec3(cfg.Particles.BoundsMin),
		Max: mgl32.Vec3(cfg.Particles.BoundsMax),
	}
	rng := rand.New(rand.NewSource(cfg.Particles.Seed))
	particles := core.SeedParticles(cfg.Particles.Count, bounds, core.DefaultSeedOptions(), rng)

	buffer, err := gpu.NewParticleBuffer(host.Device, particles)
	if err != nil {
		panic(err)
	}
	material, err := gpu.NewPointMaterial(host)
	if err != nil {
		buffer.Release()
		panic(err)
	}
	app.Logger().Infof("Uploaded %d particles (%d bytes)", buffer.GetMaxParticleNum(), uint64(len(particles))*core.ParticleStride)

	camera := core.NewCamera(bounds.Center(), cfg.Camera.Distance)
	camera.FovDegrees = cfg.Camera.FovDegrees
	camera.Near = cfg.Camera.NearPlane
	camera.Far = cfg.Camera.FarPlane
	camera.SetAspect(int(host.Config.Width), int(host.Config.Height))

	cmd.AddResources(camera, &PointCloud{
		Buffer:     buffer,
		Material:   material,
		OrbitSpeed: cfg.Camera.OrbitSpeed,
	})

	ParticleRenderModule{
		Provider: buffer,
		Material: material,
		Graphics: host,
	}.Install(app, cmd)

	app.UseSystem(
		System(orbitCameraSystem).InStage(Update),
	).UseSystem(
		System(uploadCameraSystem).InStage(PreRender),
	)

	app.OnExit(func() {
		material.Release()
		buffer.Release()
	})
}

func orbitCameraSystem(t *Time, camera *core.Camera, pc *PointCloud) {
	if pc.OrbitSpeed == 0 {
		return
	}
	camera.Orbit(pc.OrbitSpeed * t.Seconds())
}

func uploadCameraSystem(host *gpu.Host, camera *core.Camera, pc *PointCloud, cmd *Commands) {
	camera.SetAspect(int(host.Config.Width), int(host.Config.Height))
	if err := pc.Material.UpdateCamera(camera); err != nil {
		cmd.Logger().Errorf("Upload camera: %v", err)
	}
}
