package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	isSuspended   bool
	backend       renderer.RendererBackend
	scene         *scene.Scene
	systemManager *systems.SystemManager
	width         int
	height        int
	clock         *core.Clock
	lastTime      float64
	frames        uint64
	abortedFrames uint64
}

func New(g *Game, backend renderer.RendererBackend, settings config.Source) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New - game and its application config are required")
	}
	s := scene.NewScene()
	sm, err := systems.NewSystemManager(backend, settings, scene.NewSceneCuller(s))
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		clock:         core.NewClock(),
		backend:       backend,
		scene:         s,
		systemManager: sm,
		width:         g.ApplicationConfig.StartWidth,
		height:        g.ApplicationConfig.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	if err := e.backend.Initialize(e.gameInstance.ApplicationConfig.Name); err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(e.scene); err != nil {
		return err
	}

	if err := e.systemManager.Initialize(); err != nil {
		return err
	}

	e.systemManager.OnResize(e.width, e.height)
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}
	core.LogInfo("scene ready with %d renderers and %d lights", len(e.scene.Renderers), len(e.scene.Lights))
	e.currentStage = EngineStageInitialized
	return nil
}

// Run renders frames until Stop is called or the configured frame count is reached.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run: %w", core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	cfg := e.gameInstance.ApplicationConfig
	for e.isRunning.Load() {
		if cfg.FrameCount > 0 && e.frames >= cfg.FrameCount {
			break
		}
		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err.Error())
			e.isRunning.Store(false)
			return err
		}

		cameras, wireframe := e.gameInstance.FnCameras()
		if err := e.systemManager.RenderFrame(cameras, wireframe); err != nil {
			if !errors.Is(err, core.ErrResourceExhausted) {
				e.isRunning.Store(false)
				return err
			}
			// the pipeline already logged it, try again next frame
			e.abortedFrames++
		}
		e.frames++

		if cfg.TargetFrameSeconds > 0 {
			e.clock.Update()
			if remaining := cfg.TargetFrameSeconds - (e.clock.Elapsed() - currentTime); remaining > 0 {
				time.Sleep(time.Duration(remaining * float64(time.Second)))
			}
		}
		e.lastTime = currentTime
	}
	e.isRunning.Store(false)
	e.currentStage = EngineStageInitialized
	return nil
}

// Stop makes Run return after the frame in flight. Safe from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.backend.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// OnResize changes the main target size. A zero size suspends rendering until restored.
func (e *Engine) OnResize(width, height int) error {
	if width == e.width && height == e.height {
		return nil
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.systemManager.OnResize(width, height)
	return e.gameInstance.FnOnResize(width, height)
}

// GetFramebufferSize returns the width and height (in this order)
// of the main target
func (e *Engine) GetFramebufferSize() (int, int) {
	return e.width, e.height
}

// Frames returns how many frames Run rendered and how many of them were aborted.
func (e *Engine) Frames() (rendered, aborted uint64) {
	return e.frames, e.abortedFrames
}

func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}
