package headless

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

func colourDesc(name string) metadata.TextureDesc {
	return metadata.TextureDesc{
		Name:       name,
		Width:      64,
		Height:     32,
		Format:     metadata.TEXTURE_FORMAT_ARGB_HALF,
		ColorSpace: metadata.COLOR_SPACE_LINEAR,
	}
}

func TestSubmitClosesRecording(t *testing.T) {
	b := New()
	if err := b.Submit(); !errors.Is(err, core.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	_ = b.Initialize("test")

	b.BeginSample("Outer")
	b.BeginSample("Inner")
	b.DispatchCompute("BuildLightList", 4, 2, 1)
	b.EndSample("Inner")
	b.EndSample("Outer")
	b.DrawRenderers([]*scene.Renderer{{Name: "a"}, {Name: "b"}}, metadata.DrawSettings{PassName: metadata.PassNameGBuffer})
	if err := b.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs := b.Recordings()
	if len(recs) != 1 {
		t.Fatalf("expected 1 recording, got %d", len(recs))
	}
	r := recs[0]
	if got := r.Samples(); len(got) != 1 || got[0] != "Outer" {
		t.Errorf("expected top-level samples [Outer], got %v", got)
	}
	if got := r.Draws(metadata.PassNameGBuffer); got != 2 {
		t.Errorf("expected 2 gbuffer draws, got %d", got)
	}
	if got := r.Dispatches(); len(got) != 1 || got[0] != "BuildLightList" {
		t.Errorf("expected one BuildLightList dispatch, got %v", got)
	}
	if len(b.Pending()) != 0 {
		t.Error("expected no pending commands after submit")
	}
}

func TestSubmitRejectsOpenSample(t *testing.T) {
	b := New()
	_ = b.Initialize("test")
	b.BeginSample("dangling")
	if err := b.Submit(); err == nil {
		t.Error("expected submit with an open sample to fail")
	}
}

func TestTemporaries(t *testing.T) {
	b := New(WithTemporaryBudget(1))
	_ = b.Initialize("test")

	if err := b.GetTemporary(colourDesc("_A")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// same name again is a re-bind, not a new texture
	if err := b.GetTemporary(colourDesc("_A")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.GetTemporary(colourDesc("_B")); err == nil {
		t.Error("expected budget to reject a second live temporary")
	}
	if b.LiveTemporaries() != 1 {
		t.Errorf("expected 1 live temporary, got %d", b.LiveTemporaries())
	}

	b.ReleaseTemporary("_A")
	if _, ok := b.Temporary("_A"); ok {
		t.Error("expected _A to be released")
	}
	if err := b.GetTemporary(colourDesc("_B")); err != nil {
		t.Errorf("expected _B to fit after release, got %v", err)
	}

	bad := colourDesc("_Bad")
	bad.Width = 0
	if err := b.GetTemporary(bad); err == nil {
		t.Error("expected a zero-sized temporary to be rejected")
	}
}

func TestComputeBuffers(t *testing.T) {
	b := New(WithBufferBudget(2))
	_ = b.Initialize("test")

	h1, err := b.CreateComputeBuffer("a", 16, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == metadata.InvalidComputeBuffer {
		t.Fatal("expected a valid handle")
	}
	if _, err := b.CreateComputeBuffer("b", 16, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.CreateComputeBuffer("c", 16, 4); err == nil {
		t.Error("expected budget to reject a third buffer")
	}

	if err := b.SetComputeBufferData(h1, make([]byte, 64)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := b.SetComputeBufferData(h1, make([]byte, 65)); err == nil {
		t.Error("expected overflowing upload to fail")
	}
	if err := b.SetComputeBufferData(99, nil); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}

	b.ReleaseComputeBuffer(h1)
	b.ReleaseComputeBuffer(h1)
	if b.BufferReleases != 1 {
		t.Errorf("expected 1 release, got %d", b.BufferReleases)
	}
	if b.LiveComputeBuffers() != 1 {
		t.Errorf("expected 1 live buffer, got %d", b.LiveComputeBuffers())
	}
}

func TestGlobals(t *testing.T) {
	b := New()
	b.SetGlobalInt("_DebugViewMaterial", 3)
	b.SetGlobalVector("_ScreenSize", math.NewVec4(1920, 1080, 1.0/1920, 1.0/1080))

	v, ok := b.Global("_DebugViewMaterial")
	if !ok || v.(int32) != 3 {
		t.Errorf("expected _DebugViewMaterial=3, got %v", v)
	}
	s, ok := b.Global("_ScreenSize")
	if !ok || s.(math.Vec4).X != 1920 {
		t.Errorf("expected _ScreenSize.x=1920, got %v", s)
	}
	if _, ok := b.Global("_Missing"); ok {
		t.Error("expected unknown global to be absent")
	}
}

func TestDiscardDropsPending(t *testing.T) {
	b := New()
	_ = b.Initialize("test")
	if err := b.GetTemporary(colourDesc("_Kept")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.BeginSample("Unfinished")
	b.DispatchCompute("Dropped", 1, 1, 1)
	b.Discard()

	if len(b.Pending()) != 0 {
		t.Errorf("expected no pending commands, got %d", len(b.Pending()))
	}
	if b.Discards != 1 {
		t.Errorf("expected 1 discard, got %d", b.Discards)
	}
	// the open sample went with the commands
	if err := b.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs := b.Recordings(); len(recs) != 1 || len(recs[0].Commands) != 0 {
		t.Errorf("expected one empty recording")
	}
	if _, ok := b.Temporary("_Kept"); !ok {
		t.Errorf("expected resource state to survive a discard")
	}
}
