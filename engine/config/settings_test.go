package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/hdrp/engine/core"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	s, err := Parse([]byte(`
[pipeline]
light_loop = "cluster"

[debug]
use_forward_rendering_only = true

[common]
max_shadow_distance = 250.0
directional_light_cascade_count = 2
directional_light_cascades = [0.1, 0.25, 0.5]
post_process = "filmic"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Pipeline.LightLoop != LightLoopCluster {
		t.Errorf("expected cluster light loop, got %s", s.Pipeline.LightLoop)
	}
	if !s.Pipeline.VelocityInGBuffer {
		t.Error("expected untouched keys to keep their defaults")
	}
	if !s.Debug.UseForwardRenderingOnly {
		t.Error("expected forward only to be set")
	}
	if s.Common == nil || s.Common.MaxShadowDistance != 250 || s.Common.PostProcess != "filmic" {
		t.Errorf("expected common settings to be decoded, got %+v", s.Common)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown key", "[pipeline]\nfoo = 1\n"},
		{"unknown light loop", "[pipeline]\nlight_loop = \"bsp\"\n"},
		{"no workers", "[pipeline]\njob_workers = 0\n"},
		{"tile size not a power of two", "[light_loop]\ntile_size = 12\n"},
		{"decreasing cascades", "[common]\nmax_shadow_distance = 10.0\ndirectional_light_cascades = [0.3, 0.2, 0.5]\n"},
		{"atlas smaller than a map", "[shadow]\natlas_size = 256\nshadow_map_size = 512\n"},
		{"not toml", "[pipeline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if !errors.Is(err, core.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	s := Default()
	s.Common = &CommonSettings{MaxShadowDistance: 500, DirectionalLightCascadeCount: 3, DirectionalLightCascades: [3]float32{0.125, 0.25, 0.5}}
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("expected encoded settings to parse, got %v", err)
	}
	if *back.Common != *s.Common || back.LightLoop != s.LightLoop {
		t.Errorf("expected round trip to preserve settings, got %+v", back)
	}
}

func TestForwardOnlyPrecedence(t *testing.T) {
	tests := []struct {
		flag, wireframe, want bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, true},
		{true, true, true},
	}
	for _, tt := range tests {
		d := DebugParameters{UseForwardRenderingOnly: tt.flag}
		if got := d.ShouldUseForwardRenderingOnly(tt.wireframe); got != tt.want {
			t.Errorf("flag=%v wireframe=%v: expected %v, got %v", tt.flag, tt.wireframe, tt.want, got)
		}
	}
}

func TestWatcherPublishesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hdrp.toml")
	if err := os.WriteFile(path, []byte("[debug]\ndebug_view_material = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Reloaded = make(chan *Settings, 1)
	w.Start()
	defer w.Close()

	if err := os.WriteFile(path, []byte("[debug]\ndebug_view_material = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// a write may be observed as truncate then write, so wait for the final content
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case s := <-w.Reloaded:
			done = s.Debug.DebugViewMaterial == 2
		case <-timeout:
			t.Fatal("timed out waiting for reload")
		}
	}
	if w.Settings().Debug.DebugViewMaterial != 2 {
		t.Error("expected the published settings to be the reloaded ones")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Default()
	s.Common = &CommonSettings{MaxShadowDistance: 10}
	c := s.Clone()
	c.Common.MaxShadowDistance = 20
	if s.Common.MaxShadowDistance != 10 {
		t.Error("expected clone to not share common settings")
	}
}
