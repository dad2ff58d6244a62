package gridparticles

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// RenderCallback is invoked by the RenderLoop once per eligible frame.
type RenderCallback interface {
	OnRenderFrame() error
}

type RenderCallbackFunc func() error

func (f RenderCallbackFunc) OnRenderFrame() error { return f() }

type CallbackId string

type renderEntry struct {
	id       CallbackId
	callback RenderCallback
}

// RenderLoop holds the callbacks drawn during the Render stage.
type RenderLoop struct {
	// FailFast panics on the first callback error instead of logging it.
	FailFast bool

	entries    []renderEntry
	ineligible bool
}

func NewRenderLoop() *RenderLoop {
	return &RenderLoop{}
}

// Register appends cb to the loop. Callbacks run in registration order.
func (l *RenderLoop) Register(cb RenderCallback) CallbackId {
	if cb == nil {
		panic("RenderLoop.Register: callback is nil")
	}
	id := CallbackId(uuid.NewString())
	l.entries = append(l.entries, renderEntry{id: id, callback: cb})
	return id
}

func (l *RenderLoop) Unregister(id CallbackId) bool {
	idx := slices.IndexFunc(l.entries, func(e renderEntry) bool { return e.id == id })
	if idx < 0 {
		return false
	}
	l.entries = slices.Delete(l.entries, idx, idx+1)
	return true
}

func (l *RenderLoop) Len() int {
	return len(l.entries)
}

// SetFrameEligible marks whether the current frame can be drawn. Frames are
// eligible unless the host says otherwise.
func (l *RenderLoop) SetFrameEligible(eligible bool) {
	l.ineligible = !eligible
}

func (l *RenderLoop) FrameEligible() bool {
	return !l.ineligible
}

// Dispatch runs every registered callback once. Failures are logged and
// collected; a failing callback does not stop the ones after it.
func (l *RenderLoop) Dispatch(logger Logger) []error {
	if l.ineligible {
		logger.Debugf("Skipping render callbacks: frame not eligible")
		return nil
	}

	var errs []error
	// Callbacks may unregister themselves; iterate over a snapshot.
	for _, e := range slices.Clone(l.entries) {
		if err := e.callback.OnRenderFrame(); err != nil {
			if l.FailFast {
				logger.Errorf("Render callback %s failed: %v", e.id, err)
				panic(fmt.Sprintf("render callback %s: %v", e.id, err))
			}
			logger.Errorf("Render callback %s failed: %v", e.id, err)
			errs = append(errs, err)
		}
	}
	return errs
}

// RenderModule installs the RenderLoop and dispatches it in the Render stage.
type RenderModule struct {
	FailFast bool
}

func (m RenderModule) Install(app *App, cmd *Commands) {
	loop := ensureRenderLoop(app)
	loop.FailFast = m.FailFast
}

// ensureRenderLoop returns the app's RenderLoop, installing it and its
// dispatch system on first use.
func ensureRenderLoop(app *App) *RenderLoop {
	if loop, ok := Resource[RenderLoop](app); ok {
		return loop
	}
	loop := NewRenderLoop()
	app.addResources(loop)
	app.UseSystem(System(renderLoopSystem).InStage(Render))
	return loop
}

func renderLoopSystem(loop *RenderLoop, cmd *Commands) {
	loop.Dispatch(cmd.Logger())
}

// ParticleRenderModule registers a RenderAdapter built from explicitly
// injected references.
type ParticleRenderModule struct {
	Provider ComputeProvider
	Material Material
	Graphics Graphics
}

func (m ParticleRenderModule) Install(app *App, cmd *Commands) {
	RegisterParticleRenderer(app, m.Provider, m.Material, m.Graphics)
}

// RegisterParticleRenderer builds a RenderAdapter and registers it with the
// app's RenderLoop. Any number of adapters may be registered; the returned id
// removes this one again.
func RegisterParticleRenderer(app *App, provider ComputeProvider, material Material, graphics Graphics) (*RenderAdapter, CallbackId) {
	if isNilRef(provider) {
		app.Logger().Warnf("Particle renderer registered without a compute provider")
		provider = nil
	}
	adapter := NewRenderAdapter(provider, material, graphics)
	id := ensureRenderLoop(app).Register(adapter)
	return adapter, id
}
