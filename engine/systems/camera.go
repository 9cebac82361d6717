package systems

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
)

type cameraLookup struct {
	camera         *components.Camera
	referenceCount uint32
}

type CameraSystem struct {
	Config *CameraSystemConfig
	lookup map[string]*cameraLookup
	// acquisition order, which is also render order
	order []string
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system, the default camera excluded.
	 */
	MaxCameraCount uint16
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config == nil || config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &CameraSystem{
		Config:        config,
		lookup:        make(map[string]*cameraLookup, config.MaxCameraCount),
		DefaultCamera: components.NewCamera(components.DEFAULT_CAMERA_NAME, 0, 0),
	}, nil
}

/**
 * @brief Acquires a pointer to a camera by name.
 * If one is not found, a new one is created and retuned.
 * Internal reference counter is incremented.
 *
 * @param name The name of the camera to acquire.
 * @return A pointer to a camera if successful; nil and an error otherwise.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	if name == "" {
		return nil, fmt.Errorf("func Acquire - camera name cannot be empty")
	}
	lookup, ok := cs.lookup[name]
	if !ok {
		if len(cs.lookup) >= int(cs.Config.MaxCameraCount) {
			err := fmt.Errorf("func Acquire - no free slot for camera '%s'. Adjust camera system config to allow more", name)
			core.LogError(err.Error())
			return nil, err
		}
		core.LogDebug("Creating new camera named '%s'...", name)
		// new cameras start at the default camera's size
		lookup = &cameraLookup{
			camera: components.NewCamera(name, cs.DefaultCamera.PixelWidth, cs.DefaultCamera.PixelHeight),
		}
		cs.lookup[name] = lookup
		cs.order = append(cs.order, name)
	}
	lookup.referenceCount++
	return lookup.camera, nil
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0, the camera is dropped
 * and the name is usable by a new camera.
 *
 * @param name The name of the camera to release.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	lookup, ok := cs.lookup[name]
	if !ok {
		core.LogWarn("camera '%s' is not registered. Nothing was done.", name)
		return
	}
	lookup.referenceCount--
	if lookup.referenceCount > 0 {
		return
	}
	delete(cs.lookup, name)
	for i, n := range cs.order {
		if n == name {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}

// Cameras returns the default camera followed by the acquired ones, in
// the order they were first acquired.
func (cs *CameraSystem) Cameras() []*components.Camera {
	out := make([]*components.Camera, 0, len(cs.order)+1)
	out = append(out, cs.DefaultCamera)
	for _, name := range cs.order {
		out = append(out, cs.lookup[name].camera)
	}
	return out
}

// Resize sets the target size of every camera.
func (cs *CameraSystem) Resize(width, height int) {
	for _, c := range cs.Cameras() {
		c.SetPixelSize(width, height)
	}
}
