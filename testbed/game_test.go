package testbed

import (
	"testing"

	"github.com/spaghettifunk/hdrp/engine"
	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

func TestTestbedRendersBothCameras(t *testing.T) {
	tb, err := NewTestGame(Options{Width: 640, Height: 360, FrameCount: 2, SceneView: true, PostProcess: "default"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := headless.New()
	e, err := engine.New(tb.Game, b, config.Static(config.Default()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Shutdown()

	if w := tb.WorldCamera(); w.PixelWidth != 640 || w.PixelHeight != 360 {
		t.Errorf("expected the world camera at 640x360, got %dx%d", w.PixelWidth, w.PixelHeight)
	}
	if cams, _ := tb.Cameras(); len(cams) != 2 || cams[1].Name != "scene view" {
		t.Errorf("expected the world and scene view cameras, got %d", len(cams))
	}

	stats := e.SystemManager().Pipeline().Stats()
	if stats.Submits != 2 || stats.SkippedCameras != 0 {
		t.Errorf("expected both cameras submitted, got %+v", stats)
	}
	recs := b.Recordings()
	// material init, then two cameras per frame
	if len(recs) != 5 {
		t.Fatalf("expected 5 recordings, got %d", len(recs))
	}
	tonemapped := false
	for _, c := range recs[3].Commands {
		if bl, ok := c.(*headless.Blit); ok && bl.Material == "Tonemapping" && bl.Dst == metadata.CameraTarget {
			tonemapped = true
		}
	}
	if !tonemapped {
		t.Errorf("expected the world camera to resolve through its post-process stack")
	}
	if list := e.SystemManager().Pipeline().LightLoop().LightList(); list.TilesX != 40 || list.TilesY != 23 {
		t.Errorf("expected 40x23 tiles, got %dx%d", list.TilesX, list.TilesY)
	}
}

func TestNewTestGameRejectsEmptySize(t *testing.T) {
	if _, err := NewTestGame(Options{Width: 0, Height: 10}); err == nil {
		t.Errorf("expected an error for a zero width")
	}
}
