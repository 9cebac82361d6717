package material

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

func TestLitGBufferLayout(t *testing.T) {
	ls := NewLitSystem()
	if ls.GBufferSlotCount() != 4 {
		t.Fatalf("expected 4 slots, got %d", ls.GBufferSlotCount())
	}
	expected := []metadata.GBufferSlotFormat{
		{Format: metadata.TEXTURE_FORMAT_ARGB32, ColorSpace: metadata.COLOR_SPACE_SRGB},
		{Format: metadata.TEXTURE_FORMAT_ARGB32, ColorSpace: metadata.COLOR_SPACE_LINEAR},
		{Format: metadata.TEXTURE_FORMAT_ARGB2101010, ColorSpace: metadata.COLOR_SPACE_LINEAR},
		{Format: metadata.TEXTURE_FORMAT_RGB111110_FLOAT, ColorSpace: metadata.COLOR_SPACE_LINEAR},
	}
	formats := ls.GBufferSlotFormats()
	for i := range expected {
		if formats[i] != expected[i] {
			t.Errorf("slot %d: expected %+v, got %+v", i, expected[i], formats[i])
		}
	}

	formats[0].Format = metadata.TEXTURE_FORMAT_R_FLOAT
	if ls.GBufferSlotFormats()[0] != expected[0] {
		t.Error("expected the returned layout to be a copy")
	}
}

func TestLitLifecycle(t *testing.T) {
	b := headless.New()
	ls := NewLitSystem()

	ls.RenderInit(b)
	if ls.IsInit() {
		t.Error("expected RenderInit before Build to be ignored")
	}

	if err := ls.Build(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ls.IsInit() {
		t.Error("expected a fresh build to be uninitialized")
	}
	ls.RenderInit(b)
	if !ls.IsInit() {
		t.Error("expected RenderInit to initialize")
	}

	ls.Bind(b)
	if v, ok := b.Global(PreIntegratedFGDName); !ok || v != metadata.NewTemporaryTarget(PreIntegratedFGDName) {
		t.Errorf("expected %s to be bound, got %v", PreIntegratedFGDName, v)
	}

	ls.Cleanup(b)
	if ls.IsInit() || b.LiveTemporaries() != 0 {
		t.Errorf("expected cleanup to release everything, got %d live", b.LiveTemporaries())
	}
}

func TestLitBuildFailure(t *testing.T) {
	b := headless.New(headless.WithTemporaryBudget(1))
	_ = b.GetTemporary(metadata.TextureDesc{Name: "_Other", Width: 4, Height: 4, Format: metadata.TEXTURE_FORMAT_ARGB32})
	if err := NewLitSystem().Build(b); !errors.Is(err, core.ErrResourceExhausted) {
		t.Errorf("expected ErrResourceExhausted, got %v", err)
	}
}
