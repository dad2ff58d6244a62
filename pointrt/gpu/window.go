package gpu

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// CreateWindow initializes GLFW and opens a window without a client API so
// WebGPU can own the surface. Must be called from the main goroutine.
func CreateWindow(width, height int, title string) (*glfw.Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	return win, nil
}

// DestroyWindow closes the window and shuts GLFW down.
func DestroyWindow(win *glfw.Window) {
	if win != nil {
		win.Destroy()
	}
	glfw.Terminate()
}
