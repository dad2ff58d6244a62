package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var ErrNoActiveFrame = errors.New("no active frame")

// FrameStats counts what was drawn in the current frame.
type FrameStats struct {
	DrawCalls int
	Points    int
}

type frame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder

	// cleared when a bound resource is stale, so the next draw is skipped
	drawable bool
}

// Host owns the WebGPU device and the swapchain render pass that materials
// and draws record into between BeginFrame and EndFrame.
type Host struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	ClearColor wgpu.Color

	frame *frame
	stats FrameStats
}

func NewHost(window *glfw.Window) (*Host, error) {
	h := &Host{
		Window:     window,
		ClearColor: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}

	h.Instance = wgpu.CreateInstance(nil)
	// wraps GLFW window into a wgpu surface.
	h.Surface = h.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	// finds a suitable GPU (discrete GPU preferred)
	adapter, err := h.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: h.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	h.Adapter = adapter

	// allocates the device and command queue
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	h.Device = device
	h.Queue = device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := h.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		h.Release()
		return nil, errors.New("surface reports no supported formats")
	}
	// defines how the swapchain behaves (size, format, vsync)
	h.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	h.Surface.Configure(adapter, device, h.Config)

	return h, nil
}

// Format returns the swapchain color format.
func (h *Host) Format() wgpu.TextureFormat {
	return h.Config.Format
}

func (h *Host) Resize(width, height int) {
	if width <= 0 || height <= 0 || h.Config == nil {
		return
	}
	h.Config.Width = uint32(width)
	h.Config.Height = uint32(height)
	h.Surface.Configure(h.Adapter, h.Device, h.Config)
}

// BeginFrame acquires the next swapchain texture and opens a render pass
// cleared to ClearColor.
func (h *Host) BeginFrame() error {
	if h.frame != nil {
		return errors.New("frame already in progress")
	}
	h.stats = FrameStats{}

	nextTexture, err := h.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		nextTexture.Release()
		return fmt.Errorf("create view: %w", err)
	}

	encoder, err := h.Device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		nextTexture.Release()
		return fmt.Errorf("create command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "PointsPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: h.ClearColor,
		}},
	})

	h.frame = &frame{
		texture: nextTexture,
		view:    view,
		encoder: encoder,
		pass:    pass,
	}
	return nil
}

// EndFrame closes the render pass, submits it and presents the surface.
func (h *Host) EndFrame() error {
	f := h.frame
	if f == nil {
		return ErrNoActiveFrame
	}
	h.frame = nil
	defer f.texture.Release()
	defer f.view.Release()
	defer f.encoder.Release()

	err := f.pass.End()
	f.pass.Release()
	if err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}

	cmd, err := f.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()

	h.Queue.Submit(cmd)
	h.Surface.Present()
	return nil
}

// InFrame reports whether a frame is open.
func (h *Host) InFrame() bool {
	return h.frame != nil
}

func (h *Host) pass() *wgpu.RenderPassEncoder {
	if h.frame == nil {
		return nil
	}
	return h.frame.pass
}

func (h *Host) setDrawable(drawable bool) {
	if h.frame != nil {
		h.frame.drawable = drawable
	}
}

// DrawProceduralPoints draws count vertices with the active pipeline and no
// vertex buffers. Zero counts, missing frames and stale bindings are no-ops.
func (h *Host) DrawProceduralPoints(count int) {
	f := h.frame
	if count <= 0 || f == nil || !f.drawable {
		return
	}
	f.pass.Draw(uint32(count), 1, 0, 0)
	h.stats.DrawCalls++
	h.stats.Points += count
}

func (h *Host) Stats() FrameStats {
	return h.stats
}

func (h *Host) Release() {
	if h.frame != nil {
		h.frame.pass.Release()
		h.frame.encoder.Release()
		h.frame.view.Release()
		h.frame.texture.Release()
		h.frame = nil
	}
	if h.Queue != nil {
		h.Queue.Release()
		h.Queue = nil
	}
	if h.Device != nil {
		h.Device.Release()
		h.Device = nil
	}
	if h.Adapter != nil {
		h.Adapter.Release()
		h.Adapter = nil
	}
	if h.Surface != nil {
		h.Surface.Release()
		h.Surface = nil
	}
	if h.Instance != nil {
		h.Instance.Release()
		h.Instance = nil
	}
}
