package gridparticles

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemFn) *Commands {
	cmd.app.UseSystem(System(system))
	return cmd
}

// Exit asks the app to stop after the current frame.
func (cmd *Commands) Exit() {
	cmd.app.Exit()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
