package systems

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/lighting"
	"github.com/spaghettifunk/hdrp/engine/material"
	"github.com/spaghettifunk/hdrp/engine/postprocess"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/shadow"
	"github.com/spaghettifunk/hdrp/engine/sky"
)

const (
	/** @brief Name of the stack registered by default, selectable from cameras and common settings. */
	DefaultPostProcessStack = "default"
	maxPostProcessStacks    = 16
	maxCameras              = 8
	jobQueueDepthPerWorker  = 4
)

type SystemManager struct {
	settings    config.Source
	jobSystem   *JobSystem
	cameras     *CameraSystem
	postProcess *postprocess.Registry
	pipeline    *RenderPipelineSystem
}

func newLightLoop(s *config.Settings, backend renderer.RendererBackend, jobs lighting.JobSubmitter) (lighting.LightLoop, error) {
	loopConfig := &lighting.LightLoopConfig{
		Settings: s.LightLoop,
		Workers:  s.Pipeline.JobWorkers,
	}
	switch s.Pipeline.LightLoop {
	case config.LightLoopCluster:
		ll, err := lighting.NewClusterLightLoop(loopConfig, backend, jobs)
		if err != nil {
			return nil, err
		}
		return ll, nil
	case config.LightLoopTile:
		ll, err := lighting.NewTileLightLoop(loopConfig, backend, jobs)
		if err != nil {
			return nil, err
		}
		return ll, nil
	}
	return nil, fmt.Errorf("unknown light loop '%s': %w", s.Pipeline.LightLoop, core.ErrConfiguration)
}

func NewSystemManager(backend renderer.RendererBackend, settings config.Source, culler scene.Culler) (*SystemManager, error) {
	if backend == nil || settings == nil || culler == nil {
		return nil, fmt.Errorf("func NewSystemManager - backend, settings and culler are required")
	}
	s := settings.Settings()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := core.SetLogLevel(s.Pipeline.LogLevel); err != nil {
		return nil, err
	}

	js, err := NewJobSystem(s.Pipeline.JobWorkers, s.Pipeline.JobWorkers*jobQueueDepthPerWorker)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: maxCameras})
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	sm := &SystemManager{
		settings:  settings,
		jobSystem: js,
		cameras:   cs,
	}
	if err := sm.createPipeline(backend, culler, s); err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return sm, nil
}

func (sm *SystemManager) createPipeline(backend renderer.RendererBackend, culler scene.Culler, s *config.Settings) error {
	loop, err := newLightLoop(s, backend, sm.jobSystem)
	if err != nil {
		return err
	}
	sp, err := shadow.NewShadowRenderPass(&shadow.ShadowRenderPassConfig{
		Atlas: s.Shadow,
	})
	if err != nil {
		return err
	}
	skyManager, err := sky.NewSkyManager(&sky.SkyManagerConfig{
		Parameters: sky.DefaultSkyParameters(),
	}, backend)
	if err != nil {
		return err
	}
	skyManager.InstantiateSkyRenderer(sky.NewProceduralSky())

	registry, err := postprocess.NewRegistry(&postprocess.RegistryConfig{
		MaxStackCount: maxPostProcessStacks,
	})
	if err != nil {
		return err
	}
	if err := registry.Register(postprocess.NewStack(DefaultPostProcessStack,
		&postprocess.Exposure{EV: 0},
		&postprocess.Tonemap{Operator: postprocess.TONEMAP_ACES, WhitePoint: 1},
	)); err != nil {
		return err
	}
	fp, err := postprocess.NewFinalPass(registry)
	if err != nil {
		return err
	}

	pipeline, err := NewRenderPipelineSystem(&RenderPipelineConfig{
		VelocityInGBuffer:   s.Pipeline.VelocityInGBuffer,
		MaxTransientBuffers: uint32(s.Pipeline.MaxTransientBuffers),
	}, backend, sm.settings, culler, material.NewLitSystem(), loop, sp, skyManager, fp)
	if err != nil {
		return err
	}
	sm.postProcess = registry
	sm.pipeline = pipeline
	core.LogInfo("systems created with the %s light loop and %d job workers", s.Pipeline.LightLoop, sm.jobSystem.Workers())
	return nil
}

// Initialize builds the pipeline. Call once the backend is initialized.
func (sm *SystemManager) Initialize() error {
	return sm.pipeline.Build()
}

// RenderFrame renders one frame over cameras with the current settings.
func (sm *SystemManager) RenderFrame(cameras []*components.Camera, wireframe bool) error {
	return sm.pipeline.Render(sm.pipeline.BeginFrame(cameras, wireframe))
}

// OnResize resizes every registered camera.
func (sm *SystemManager) OnResize(width, height int) {
	sm.cameras.Resize(width, height)
}

func (sm *SystemManager) CameraSystem() *CameraSystem {
	return sm.cameras
}

func (sm *SystemManager) Pipeline() *RenderPipelineSystem {
	return sm.pipeline
}

func (sm *SystemManager) PostProcess() *postprocess.Registry {
	return sm.postProcess
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) Shutdown() error {
	sm.pipeline.Cleanup()
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
