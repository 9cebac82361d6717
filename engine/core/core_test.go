package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestIdentifierPoolReusesReleasedSlots(t *testing.T) {
	p := NewIdentifierPool(0)
	a, _ := p.Acquire("a")
	b, _ := p.Acquire("b")
	if a != 0 || b != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", a, b)
	}
	if err := p.Release(a); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	c, _ := p.Acquire("c")
	if c != 0 {
		t.Errorf("expected released slot 0 to be reused, got %d", c)
	}
	if owner, ok := p.Owner(c); !ok || owner != "c" {
		t.Errorf("expected owner c, got %v", owner)
	}
}

func TestIdentifierPoolBounded(t *testing.T) {
	p := NewIdentifierPool(2)
	for i := 0; i < 2; i++ {
		if _, err := p.Acquire(i + 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := p.Acquire(3); err == nil {
		t.Error("expected error when pool is full")
	}
	if err := p.Release(7); err == nil {
		t.Error("expected out-of-range release to fail")
	}
}

func TestFrameMetricsAverage(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016, 3, 10, 2)
	}
	if got := m.FrameTime(); got < 15.99 || got > 16.01 {
		t.Errorf("expected average of 16ms, got %f", got)
	}
	frames, draws, passes, skips, _ := m.Snapshot()
	if frames != uint64(AVG_COUNT) || draws != 3 || passes != 10 || skips != 2 {
		t.Errorf("unexpected snapshot %d %d %d %d", frames, draws, passes, skips)
	}
}

func TestSentinelsWrap(t *testing.T) {
	err := fmt.Errorf("gbuffer: %w", ErrConfiguration)
	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected wrapped error to match ErrConfiguration")
	}
	if errors.Is(err, ErrResourceExhausted) {
		t.Error("configuration error must not match resource exhaustion")
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Error("expected unknown level to fail")
	}
	_ = SetLogLevel("debug")
}
