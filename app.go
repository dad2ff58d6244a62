package gridparticles

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type App struct {
	stages          []Stage
	systems         map[string][]systemFn
	resources       map[reflect.Type]any
	pendingModules  []Module
	built           bool
	frame           uint64
	exitRequested   bool
	onExitCallbacks []func()
}

type Module interface {
	Install(app *App, cmd *Commands)
}

func NewApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.initStage(stage)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// UseModules queues modules for installation. Modules are installed in the
// order given, the first time the app is built.
func (app *App) UseModules(modules ...Module) *App {
	if app.built {
		cmd := app.Commands()
		for _, module := range modules {
			module.Install(app, cmd)
		}
		return app
	}
	app.pendingModules = append(app.pendingModules, modules...)
	return app
}

func (app *App) build() {
	if app.built {
		return
	}
	app.built = true

	cmd := app.Commands()
	for _, module := range app.pendingModules {
		module.Install(app, cmd)
	}
	app.pendingModules = nil
}

// Run builds the app and executes frames until Exit is requested.
func (app *App) Run() {
	app.build()
	app.Logger().Infof("Running with %d stages", len(app.stages))

	for !app.exitRequested {
		app.Update()
	}

	for i := len(app.onExitCallbacks) - 1; i >= 0; i-- {
		app.onExitCallbacks[i]()
	}
	app.Logger().Infof("Stopped after %d frames", app.frame)
}

// Update executes every stage once.
func (app *App) Update() {
	app.build()
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frame++
}

// Exit stops Run after the current frame completes.
func (app *App) Exit() {
	app.exitRequested = true
}

// OnExit registers fn to run when Run stops. Callbacks run in reverse
// registration order, so resources are released before what they depend on.
func (app *App) OnExit(fn func()) {
	app.onExitCallbacks = append(app.onExitCallbacks, fn)
}

// Frame returns the number of frames executed so far.
func (app *App) Frame() uint64 {
	return app.frame
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource looks up a resource by its element type.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := res.(*T)
	return typed, ok
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("System %s takes non-pointer argument %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(), argType))
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
