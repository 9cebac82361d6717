package testbed

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

const sceneViewCameraName = "scene view"

type TestGame struct {
	*engine.Game
	opts Options
}

type gameState struct {
	DeltaTime   float64
	WorldCamera *components.Camera
	// Editor view, rendered after the world camera when enabled.
	SceneCamera *components.Camera
	Wireframe   bool

	// Radians per second the world camera turns by.
	yawSpeed float32
}

type Options struct {
	Width       int
	Height      int
	FrameCount  uint64
	SceneView   bool
	Wireframe   bool
	PostProcess string
}

func NewTestGame(opts Options) (*TestGame, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("func NewTestGame - invalid size %dx%d", opts.Width, opts.Height)
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:        "HDRP Testbed",
				StartWidth:  opts.Width,
				StartHeight: opts.Height,
				FrameCount:  opts.FrameCount,
			},
			State: &gameState{
				Wireframe: opts.Wireframe,
				yawSpeed:  0.25,
			},
		},
		opts: opts,
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnCameras = tg.Cameras
	tg.FnOnResize = tg.OnResize

	return tg, nil
}

func (g *TestGame) setupCameras() error {
	cs := g.SystemManager.CameraSystem()
	state := g.State.(*gameState)

	state.WorldCamera = cs.GetDefault()
	state.WorldCamera.SetPosition(math.NewVec3(0, 2, 6))
	state.WorldCamera.PostProcess = g.opts.PostProcess

	if !g.opts.SceneView {
		return nil
	}
	sc, err := cs.Acquire(sceneViewCameraName)
	if err != nil {
		return err
	}
	sc.Type = components.CameraTypeSceneView
	sc.SetPosition(math.NewVec3(8, 6, 12))
	sc.SetEulerRotation(math.NewVec3(math.DegToRad(-20), math.DegToRad(30), 0))
	state.SceneCamera = sc
	return nil
}

func box(name string, center, halfSize math.Vec3, queue metadata.RenderQueue, passes ...string) *scene.Renderer {
	return &scene.Renderer{
		Name:        name,
		Bounds:      math.NewExtents3D(center, halfSize),
		Queue:       queue,
		Passes:      passes,
		CastShadows: queue == metadata.RenderQueueOpaque,
	}
}

var (
	deferredPasses = []string{
		metadata.PassNameDepthOnly, metadata.PassNameGBuffer, metadata.PassNameForward,
		metadata.PassNameMotionVectors, metadata.PassNameDebugViewMaterial, metadata.PassNameShadowCaster,
	}
	forwardOnlyPasses = []string{
		metadata.PassNameDepthOnly, metadata.PassNameForwardOnlyOpaque, metadata.PassNameForwardOnlyOpaqueDepthOnly,
		metadata.PassNameDebugViewMaterial, metadata.PassNameShadowCaster,
	}
	transparentPasses = []string{
		metadata.PassNameForward, metadata.PassNameDistortionVectors, metadata.PassNameDebugViewMaterial,
	}
)

// Initialize builds a small courtyard: a floor, a ring of pillars lit by
// point lights, a couple of glass panes and a sun.
func (g *TestGame) Initialize(s *scene.Scene) error {
	core.LogDebug("TestGame Initialize fn....")
	if err := g.setupCameras(); err != nil {
		return err
	}

	s.AddRenderer(box("floor", math.NewVec3(0, -0.5, -10), math.NewVec3(20, 0.5, 20), metadata.RenderQueueOpaque, deferredPasses...))
	for i := 0; i < 8; i++ {
		x := float32(i%4)*4 - 6
		z := float32(i/4)*-8 - 4
		s.AddRenderer(box(fmt.Sprintf("pillar_%d", i), math.NewVec3(x, 2, z), math.NewVec3(0.5, 2, 0.5), metadata.RenderQueueOpaque, deferredPasses...))
		s.AddLight(&scene.Light{
			Name:      fmt.Sprintf("torch_%d", i),
			Type:      scene.LightTypePoint,
			Position:  math.NewVec3(x+1, 3, z),
			Color:     math.NewVec3(1, 0.6, 0.3),
			Intensity: 2,
			Range:     5,
		})
	}
	// the statue material is never deferred
	s.AddRenderer(box("statue", math.NewVec3(0, 1, -8), math.NewVec3(0.8, 1, 0.8), metadata.RenderQueueOpaque, forwardOnlyPasses...))
	s.AddRenderer(box("pane_0", math.NewVec3(-2, 1.5, -2), math.NewVec3(1, 1.5, 0.05), metadata.RenderQueueTransparent, transparentPasses...))
	s.AddRenderer(box("pane_1", math.NewVec3(2, 1.5, -3), math.NewVec3(1, 1.5, 0.05), metadata.RenderQueueTransparent, transparentPasses...))

	s.AddLight(&scene.Light{
		Name:        "sun",
		Type:        scene.LightTypeDirectional,
		Direction:   math.NewVec3(-0.3, -1, -0.4),
		Color:       math.NewVec3(1, 0.95, 0.9),
		Intensity:   3,
		CastShadows: true,
	})
	s.AddLight(&scene.Light{
		Name:           "spot",
		Type:           scene.LightTypeSpot,
		Position:       math.NewVec3(0, 6, -8),
		Direction:      math.NewVec3(0, -1, 0),
		Color:          math.NewVec3One(),
		Intensity:      4,
		Range:          10,
		SpotAngle:      40,
		InnerSpotAngle: 25,
		CastShadows:    true,
	})
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.DeltaTime = deltaTime
	state.WorldCamera.Yaw(state.yawSpeed * float32(deltaTime))
	return nil
}

func (g *TestGame) Cameras() ([]*components.Camera, bool) {
	return g.SystemManager.CameraSystem().Cameras(), g.State.(*gameState).Wireframe
}

// OnResize runs after the camera system resized every camera.
func (g *TestGame) OnResize(width int, height int) error {
	core.LogDebug("TestGame resized to %dx%d", width, height)
	return nil
}

// WorldCamera returns the main camera.
func (g *TestGame) WorldCamera() *components.Camera {
	return g.State.(*gameState).WorldCamera
}
