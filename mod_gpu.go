package gridparticles

import (
	"fmt"
	"reflect"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gridparticles/pointrt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer enforces a single renderer invariant.
// If a different renderer is already installed, it panics with a clear message.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag, ok2 := res.(*RendererTag); ok2 {
			if tag.Name != name {
				app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
				panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
			}
			return
		}
		panic("RendererTag resource present with unexpected type")
	}
	app.addResources(&RendererTag{Name: name})
}

// GpuModule opens the window and WebGPU host and brackets the Render stage
// with BeginFrame/EndFrame.
type GpuModule struct {
	Width      int
	Height     int
	Title      string
	ClearColor wgpu.Color
}

func (mod GpuModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, "wgpu")

	width, height, title := mod.Width, mod.Height, mod.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Grid Particles"
	}

	win, err := gpu.CreateWindow(width, height, title)
	if err != nil {
		panic(err)
	}
	host, err := gpu.NewHost(win)
	if err != nil {
		gpu.DestroyWindow(win)
		panic(err)
	}
	if mod.ClearColor != (wgpu.Color{}) {
		host.ClearColor = mod.ClearColor
	}
	app.Logger().Infof("Created window (%dx%d) '%s', surface format %v", width, height, title, host.Format())

	cmd.AddResources(host)
	ensureRenderLoop(app)

	app.UseSystem(
		System(windowEventsSystem).InStage(PreUpdate),
	).UseSystem(
		System(beginFrameSystem).InStage(PreRender),
	).UseSystem(
		System(endFrameSystem).InStage(PostRender),
	)

	app.OnExit(func() {
		host.Release()
		gpu.DestroyWindow(win)
	})
}

func windowEventsSystem(host *gpu.Host, cmd *Commands) {
	glfw.PollEvents()
	if host.Window.ShouldClose() || host.Window.GetKey(glfw.KeyEscape) == glfw.Press {
		cmd.Exit()
		return
	}
	w, h := host.Window.GetFramebufferSize()
	if w > 0 && h > 0 && (uint32(w) != host.Config.Width || uint32(h) != host.Config.Height) {
		cmd.Logger().Debugf("Resizing surface to %dx%d", w, h)
		host.Resize(w, h)
	}
}

func beginFrameSystem(host *gpu.Host, loop *RenderLoop, cmd *Commands) {
	if err := host.BeginFrame(); err != nil {
		cmd.Logger().Debugf("Frame skipped: %v", err)
		loop.SetFrameEligible(false)
		return
	}
	loop.SetFrameEligible(true)
}

func endFrameSystem(host *gpu.Host, cmd *Commands) {
	if !host.InFrame() {
		return
	}
	stats := host.Stats()
	if err := host.EndFrame(); err != nil {
		cmd.Logger().Errorf("End frame: %v", err)
		return
	}
	cmd.Logger().Debugf("Frame drawn: %d draw calls, %d points", stats.DrawCalls, stats.Points)
}
