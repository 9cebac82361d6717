package engine

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

type countingGame struct {
	camera  *components.Camera
	updates int
	resizes int
}

func newGame(frames uint64) (*Game, *countingGame) {
	cg := &countingGame{camera: components.NewCamera("main", 320, 240)}
	g := &Game{
		ApplicationConfig: &ApplicationConfig{Name: "engine test", StartWidth: 320, StartHeight: 240, FrameCount: frames},
		FnInitialize: func(s *scene.Scene) error {
			s.AddRenderer(&scene.Renderer{
				Name:   "cube",
				Bounds: math.NewExtents3D(math.NewVec3(0, 0, -5), math.NewVec3One()),
				Queue:  metadata.RenderQueueOpaque,
				Passes: []string{metadata.PassNameGBuffer},
			})
			return nil
		},
		FnUpdate: func(float64) error {
			cg.updates++
			return nil
		},
		FnCameras: func() ([]*components.Camera, bool) {
			return []*components.Camera{cg.camera}, false
		},
		FnOnResize: func(w, h int) error {
			cg.resizes++
			cg.camera.SetPixelSize(w, h)
			return nil
		},
	}
	return g, cg
}

func TestEngineRunsConfiguredFrames(t *testing.T) {
	g, cg := newGame(3)
	b := headless.New()
	e, err := New(g, b, config.Static(config.Default()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Run(); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized before Initialize, got %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered, aborted := e.Frames()
	if rendered != 3 || aborted != 0 {
		t.Errorf("expected 3 frames and none aborted, got %d and %d", rendered, aborted)
	}
	if cg.updates != 3 {
		t.Errorf("expected 3 updates, got %d", cg.updates)
	}
	// material init plus one recording per frame
	if len(b.Recordings()) != 4 {
		t.Errorf("expected 4 recordings, got %d", len(b.Recordings()))
	}
	if len(e.Scene().Renderers) != 1 {
		t.Errorf("expected the game to populate the scene")
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.LiveTemporaries() != 0 || b.LiveComputeBuffers() != 0 {
		t.Errorf("expected everything released, got %d temporaries and %d buffers", b.LiveTemporaries(), b.LiveComputeBuffers())
	}
}

func TestEngineResize(t *testing.T) {
	g, cg := newGame(1)
	e, err := New(g, headless.New(), config.Static(config.Default()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.OnResize(320, 240); err != nil || cg.resizes != 1 {
		t.Errorf("expected an unchanged size to be ignored, got %d resizes", cg.resizes)
	}
	_ = e.OnResize(0, 0)
	if !e.isSuspended || cg.resizes != 1 {
		t.Errorf("expected a zero size to suspend without resizing the game")
	}
	_ = e.OnResize(640, 480)
	if e.isSuspended || cg.resizes != 2 || cg.camera.PixelWidth != 640 {
		t.Errorf("expected a restore to resume and resize, got %d resizes", cg.resizes)
	}
	if w, h := e.GetFramebufferSize(); w != 640 || h != 480 {
		t.Errorf("expected 640x480, got %dx%d", w, h)
	}
}
