package gridparticles

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	nopLogger
	errors []string
}

func (l *captureLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func TestRenderLoop_RegistrationOrder(t *testing.T) {
	loop := NewRenderLoop()
	var order []string
	loop.Register(RenderCallbackFunc(func() error { order = append(order, "a"); return nil }))
	id := loop.Register(RenderCallbackFunc(func() error { order = append(order, "b"); return nil }))
	loop.Register(RenderCallbackFunc(func() error { order = append(order, "c"); return nil }))
	require.Equal(t, 3, loop.Len())

	assert.Empty(t, loop.Dispatch(NewNopLogger()))
	assert.Equal(t, []string{"a", "b", "c"}, order)

	assert.True(t, loop.Unregister(id))
	assert.False(t, loop.Unregister(id))
	order = nil
	loop.Dispatch(NewNopLogger())
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestRenderLoop_UniqueIds(t *testing.T) {
	loop := NewRenderLoop()
	noop := RenderCallbackFunc(func() error { return nil })
	a := loop.Register(noop)
	b := loop.Register(noop)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestRenderLoop_RegisterNilPanics(t *testing.T) {
	loop := NewRenderLoop()
	assert.Panics(t, func() { loop.Register(nil) })
}

func TestRenderLoop_ErrorsAreLoggedAndCollected(t *testing.T) {
	loop := NewRenderLoop()
	calls := 0
	boom := errors.New("boom")
	loop.Register(RenderCallbackFunc(func() error { calls++; return boom }))
	loop.Register(RenderCallbackFunc(func() error { calls++; return nil }))

	logger := &captureLogger{}
	errs := loop.Dispatch(logger)

	assert.Equal(t, 2, calls, "later callbacks still run")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "boom")
}

func TestRenderLoop_FailFastPanics(t *testing.T) {
	loop := NewRenderLoop()
	loop.FailFast = true
	loop.Register(NewRenderAdapter(nil, nil, nil))

	assert.Panics(t, func() { loop.Dispatch(NewNopLogger()) })
}

func TestRenderLoop_IneligibleFrameSkipsCallbacks(t *testing.T) {
	loop := NewRenderLoop()
	calls := 0
	loop.Register(RenderCallbackFunc(func() error { calls++; return nil }))

	assert.True(t, loop.FrameEligible())
	loop.SetFrameEligible(false)
	loop.Dispatch(NewNopLogger())
	assert.Equal(t, 0, calls)

	loop.SetFrameEligible(true)
	loop.Dispatch(NewNopLogger())
	assert.Equal(t, 1, calls)
}

func TestRenderLoop_CallbackMayUnregisterItself(t *testing.T) {
	loop := NewRenderLoop()
	calls := 0
	var id CallbackId
	id = loop.Register(RenderCallbackFunc(func() error {
		calls++
		loop.Unregister(id)
		return nil
	}))
	loop.Register(RenderCallbackFunc(func() error { calls++; return nil }))

	loop.Dispatch(NewNopLogger())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, loop.Len())
}

func TestParticleRenderModule_DrawsEachFrame(t *testing.T) {
	rec, provider, material, graphics := newMocks(42)

	app := NewAppBuilder().
		UseModule(
			RenderModule{},
			ParticleRenderModule{Provider: provider, Material: material, Graphics: graphics},
		).
		Build()

	loop, ok := Resource[RenderLoop](app)
	require.True(t, ok)
	assert.Equal(t, 1, loop.Len())

	app.Update()
	provider.count = 7
	app.Update()

	assert.Equal(t, []int{42, 7}, graphics.counts)
	assert.Len(t, rec.calls, 10)
}

func TestParticleRenderModule_WithoutRenderModule(t *testing.T) {
	_, provider, material, graphics := newMocks(1)

	app := NewAppBuilder().
		UseModule(ParticleRenderModule{Provider: provider, Material: material, Graphics: graphics}).
		Build()

	app.Update()
	assert.Equal(t, []int{1}, graphics.counts)
}

func TestParticleRenderModule_MissingProviderIsLoggedEachFrame(t *testing.T) {
	_, _, material, graphics := newMocks(1)
	logger := &captureLogger{}

	app := NewApp()
	app.addResources(logger)
	app.UseModules(ParticleRenderModule{Material: material, Graphics: graphics})

	app.Update()
	app.Update()

	assert.Empty(t, graphics.counts)
	assert.Len(t, logger.errors, 2)
	assert.Contains(t, logger.errors[0], ErrMissingDependency.Error())
}

func TestParticleRenderModule_InstallTwice(t *testing.T) {
	_, providerA, materialA, graphicsA := newMocks(3)
	_, providerB, materialB, graphicsB := newMocks(5)

	var app *App
	require.NotPanics(t, func() {
		app = NewAppBuilder().
			UseModule(
				RenderModule{},
				ParticleRenderModule{Provider: providerA, Material: materialA, Graphics: graphicsA},
				ParticleRenderModule{Provider: providerB, Material: materialB, Graphics: graphicsB},
			).
			Build()
	})

	loop, ok := Resource[RenderLoop](app)
	require.True(t, ok)
	assert.Equal(t, 2, loop.Len())

	app.Update()
	assert.Equal(t, []int{3}, graphicsA.counts)
	assert.Equal(t, []int{5}, graphicsB.counts)
}

func TestRegisterParticleRenderer_Unregister(t *testing.T) {
	_, provider, material, graphics := newMocks(9)
	app := NewApp()

	adapter, id := RegisterParticleRenderer(app, provider, material, graphics)
	require.NotNil(t, adapter)
	require.NotEmpty(t, id)

	app.Update()
	loop, ok := Resource[RenderLoop](app)
	require.True(t, ok)
	assert.True(t, loop.Unregister(id))
	app.Update()

	assert.Equal(t, []int{9}, graphics.counts)
}

func TestRegisterParticleRenderer_TypedNilProvider(t *testing.T) {
	rec, _, material, graphics := newMocks(1)
	logger := &captureLogger{}
	app := NewApp()
	app.addResources(logger)

	var provider *mockProvider
	RegisterParticleRenderer(app, provider, material, graphics)
	app.Update()

	assert.Empty(t, rec.calls)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], ErrMissingDependency.Error())
}
