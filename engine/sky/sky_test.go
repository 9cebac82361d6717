package sky

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

func newManager(t *testing.T, b *headless.Backend) *SkyManager {
	t.Helper()
	sm, err := NewSkyManager(&SkyManagerConfig{Parameters: DefaultSkyParameters()}, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sm.InstantiateSkyRenderer(NewProceduralSky())
	if err := sm.Build(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sm
}

func TestResizeOnlyOnParameterChange(t *testing.T) {
	b := headless.New()
	sm := newManager(t, b)
	requests := b.TemporaryRequests

	_ = sm.Resize()
	_ = sm.Resize()
	if b.TemporaryRequests != requests {
		t.Errorf("expected no re-allocation, got %d new requests", b.TemporaryRequests-requests)
	}

	p := sm.Parameters()
	p.Resolution = 256
	sm.SetParameters(p)
	_ = sm.Resize()
	if b.TemporaryRequests != requests+2 {
		t.Errorf("expected both sky textures to be re-allocated, got %d new requests", b.TemporaryRequests-requests)
	}
	if d, _ := b.Temporary(SkyTextureName); d.Width != 256*6 {
		t.Errorf("expected a 1536 wide sky texture, got %d", d.Width)
	}
}

func TestUpdateEnvironmentConvolvesOnChange(t *testing.T) {
	b := headless.New()
	sm := newManager(t, b)
	hd := components.NewHDCamera(components.NewCamera("main", 64, 64))
	sun := &scene.Light{Type: scene.LightTypeDirectional, Direction: math.NewVec3(0, -1, 0), Color: math.NewVec3One(), Intensity: 1}

	sm.UpdateEnvironment(&hd, sun)
	sm.UpdateEnvironment(&hd, sun)
	if sm.Convolutions() != 1 {
		t.Errorf("expected 1 convolution for an unchanged sky, got %d", sm.Convolutions())
	}

	sun.Intensity = 2
	sm.UpdateEnvironment(&hd, sun)
	if sm.Convolutions() != 2 {
		t.Errorf("expected a sun change to re-convolve, got %d", sm.Convolutions())
	}

	sm.UpdateEnvironment(&hd, nil)
	if sm.Convolutions() != 3 {
		t.Errorf("expected losing the sun to re-convolve, got %d", sm.Convolutions())
	}

	blits := 0
	for _, c := range b.Pending() {
		if bl, ok := c.(*headless.Blit); ok && bl.Dst.Name == SkyTextureName {
			blits++
		}
	}
	if blits != 18 {
		t.Errorf("expected 6 face blits per convolution, got %d", blits)
	}
}

func TestInvalidSkyDoesNothing(t *testing.T) {
	b := headless.New()
	sm, _ := NewSkyManager(&SkyManagerConfig{Parameters: DefaultSkyParameters()}, b)
	_ = sm.Build()
	if sm.IsSkyValid() {
		t.Fatal("expected a sky without renderer to be invalid")
	}
	hd := components.NewHDCamera(components.NewCamera("main", 64, 64))
	before := len(b.Pending())
	sm.UpdateEnvironment(&hd, nil)
	sm.RenderSky(&hd, nil, metadata.NewTemporaryTarget("_CameraColorTexture"), metadata.NewTemporaryTarget("_CameraDepthTexture"))
	if len(b.Pending()) != before {
		t.Error("expected no commands from an invalid sky")
	}
}

func TestRenderSkyTargetsColourWithDepth(t *testing.T) {
	b := headless.New()
	sm := newManager(t, b)
	hd := components.NewHDCamera(components.NewCamera("main", 64, 64))
	colour := metadata.NewTemporaryTarget("_CameraColorTexture")
	depth := metadata.NewTemporaryTarget("_CameraDepthTexture")

	sm.RenderSky(&hd, nil, colour, depth)
	var rt *headless.SetRenderTarget
	var blit *headless.Blit
	for _, c := range b.Pending() {
		switch c := c.(type) {
		case *headless.SetRenderTarget:
			rt = c
		case *headless.Blit:
			blit = c
		}
	}
	if rt == nil || rt.Depth != depth || len(rt.Colors) != 1 || rt.Colors[0] != colour || rt.Clear != metadata.CLEAR_FLAG_NONE {
		t.Errorf("expected colour with depth bound without clearing, got %+v", rt)
	}
	if blit == nil || blit.Dst != colour || blit.Pass != proceduralSkyScreenPass {
		t.Errorf("expected a screen pass blit into colour, got %+v", blit)
	}
}

func TestResizeFailure(t *testing.T) {
	b := headless.New(headless.WithTemporaryBudget(1))
	sm, _ := NewSkyManager(&SkyManagerConfig{Parameters: DefaultSkyParameters()}, b)
	if err := sm.Build(); !errors.Is(err, core.ErrResourceExhausted) {
		t.Errorf("expected ErrResourceExhausted, got %v", err)
	}
	if b.LiveTemporaries() != 0 {
		t.Errorf("expected the partial allocation to be released, got %d", b.LiveTemporaries())
	}
}
