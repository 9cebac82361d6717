package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

func newResources(t *testing.T, b *headless.Backend, max uint32) *ResourceSystem {
	t.Helper()
	rs, err := NewResourceSystem(&ResourceSystemConfig{MaxBufferCount: max}, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rs
}

func declareColour(t *testing.T, rs *ResourceSystem, name string) BufferHandle {
	t.Helper()
	h, err := rs.DeclareBuffer(name, metadata.TEXTURE_FORMAT_ARGB_HALF, metadata.COLOR_SPACE_LINEAR, BufferOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return h
}

func TestDeclareBuffer(t *testing.T) {
	rs := newResources(t, headless.New(), 2)
	a := declareColour(t, rs, "a")
	b := declareColour(t, rs, "b")

	tests := []struct {
		name string
		decl string
	}{
		{"empty name", ""},
		{"duplicate", "a"},
		{"pool full", "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := rs.DeclareBuffer(tt.decl, metadata.TEXTURE_FORMAT_ARGB32, metadata.COLOR_SPACE_LINEAR, BufferOptions{})
			if !errors.Is(err, core.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
			if h != InvalidBufferHandle {
				t.Errorf("expected an invalid handle, got %d", h)
			}
		})
	}

	all := rs.GetAll()
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Errorf("expected [%d %d], got %v", a, b, all)
	}
	if rs.Buffer(a).Name != "a" {
		t.Errorf("expected 'a', got '%s'", rs.Buffer(a).Name)
	}
}

func TestAllocateIsIdempotentPerExtent(t *testing.T) {
	b := headless.New()
	rs := newResources(t, b, 4)
	h := declareColour(t, rs, "_Colour")

	for i := 0; i < 3; i++ {
		if err := rs.Allocate(h, 640, 480); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if b.TemporaryRequests != 1 {
		t.Errorf("expected 1 temporary request, got %d", b.TemporaryRequests)
	}

	if err := rs.Allocate(h, 1280, 720); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TemporaryRequests != 2 {
		t.Errorf("expected 2 temporary requests, got %d", b.TemporaryRequests)
	}
	desc, ok := b.Temporary("_Colour")
	if !ok || desc.Width != 1280 || desc.Height != 720 {
		t.Errorf("expected a 1280x720 temporary, got %+v", desc)
	}
	if rs.Live() != 1 {
		t.Errorf("expected 1 live buffer, got %d", rs.Live())
	}

	rs.EndFrame()
	if rs.Live() != 0 || b.LiveTemporaries() != 0 {
		t.Errorf("expected nothing live after EndFrame, got %d and %d", rs.Live(), b.LiveTemporaries())
	}
	if rs.Identifier(h) != metadata.NewTemporaryTarget("_Colour") {
		t.Errorf("expected the identifier to survive EndFrame")
	}
}

func TestAllocateFailures(t *testing.T) {
	b := headless.New(headless.WithTemporaryBudget(1))
	rs := newResources(t, b, 4)
	first := declareColour(t, rs, "first")
	second := declareColour(t, rs, "second")

	if err := rs.Allocate(InvalidBufferHandle, 8, 8); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
	if err := rs.Allocate(first, 8, 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rs.Allocate(second, 8, 8); !errors.Is(err, core.ErrResourceExhausted) {
		t.Errorf("expected ErrResourceExhausted, got %v", err)
	}
	if rs.Buffer(second).Allocated {
		t.Errorf("expected the failed buffer to stay unallocated")
	}

	rs.Release(first)
	if err := rs.Allocate(second, 8, 8); err != nil {
		t.Errorf("expected the released slot to be reusable, got %v", err)
	}
	if rs.Identifier(InvalidBufferHandle) != metadata.NoTarget {
		t.Errorf("expected NoTarget for an invalid handle")
	}
}

func TestResourceShutdownForgetsDeclarations(t *testing.T) {
	b := headless.New()
	rs := newResources(t, b, 1)
	h := declareColour(t, rs, "only")
	if err := rs.Allocate(h, 4, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs.Shutdown()
	if b.LiveTemporaries() != 0 {
		t.Errorf("expected 0 live temporaries, got %d", b.LiveTemporaries())
	}
	if len(rs.GetAll()) != 0 {
		t.Errorf("expected no declarations, got %d", len(rs.GetAll()))
	}
	// the pool slot is free again
	declareColour(t, rs, "only")
}
