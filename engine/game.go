package engine

import (
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnCameras         Cameras
	FnOnResize        OnResize
	// Set by the engine before Initialize is called.
	SystemManager *systems.SystemManager
}

// Initialize populates the scene the engine renders.
type Initialize func(s *scene.Scene) error
type Update func(deltaTime float64) error

// Cameras returns the cameras of the next frame, in render order, and
// whether wireframe is on.
type Cameras func() ([]*components.Camera, bool)
type OnResize func(width int, height int) error
