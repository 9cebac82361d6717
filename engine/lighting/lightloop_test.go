package lighting

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/shadow"
)

// goSubmitter runs every job on its own goroutine.
type goSubmitter struct {
	submitted atomic.Int32
}

func (g *goSubmitter) Submit(jt metadata.JobTask) {
	g.submitted.Add(1)
	go func() {
		res, err := jt.OnStart(jt.InputParams)
		if err == nil && jt.OnComplete != nil {
			jt.OnComplete(res)
		}
		if jt.OnCompletionCallback != nil {
			jt.OnCompletionCallback()
		}
	}()
}

var depth = metadata.NewTemporaryTarget("_CameraDepthTexture")

func newTileLoop(t *testing.T, b *headless.Backend, jobs JobSubmitter) *TileLightLoop {
	t.Helper()
	ll, err := NewTileLightLoop(&LightLoopConfig{Settings: config.Default().LightLoop, Workers: 4}, b, jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ll.Build(config.Default().Texture); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ll
}

func directional(name string, intensity float32) scene.VisibleLight {
	return scene.VisibleLight{Light: &scene.Light{Name: name, Type: scene.LightTypeDirectional, Color: math.NewVec3One(), Intensity: intensity}}
}

func point(name string, position math.Vec3, radius float32) scene.VisibleLight {
	return scene.VisibleLight{Light: &scene.Light{Name: name, Type: scene.LightTypePoint, Position: position, Range: radius, Color: math.NewVec3One(), Intensity: 1}}
}

func hdCamera(w, h int) *components.HDCamera {
	hd := components.NewHDCamera(components.NewCamera("main", w, h))
	return &hd
}

func TestDominantLightSelection(t *testing.T) {
	tests := []struct {
		name   string
		lights []scene.VisibleLight
		want   string
		found  bool
	}{
		{"no lights", nil, "", false},
		{"only punctual", []scene.VisibleLight{point("p", math.NewVec3Zero(), 1)}, "", false},
		{"single", []scene.VisibleLight{directional("sun", 1)}, "sun", true},
		{"brightest wins", []scene.VisibleLight{directional("dim", 1), directional("bright", 3), directional("mid", 2)}, "bright", true},
		{"first wins ties", []scene.VisibleLight{directional("a", 2), directional("b", 2)}, "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := headless.New()
			ll := newTileLoop(t, b, nil)
			cam := hdCamera(64, 64)
			// the result must not depend on how many times the frame is replayed
			for run := 0; run < 3; run++ {
				ll.NewFrame()
				ll.PrepareLightsForGPU(shadow.DefaultShadowSettings(), &scene.CullResults{VisibleLights: tt.lights}, cam, nil)
				sun, ok := ll.CurrentSunLight()
				if ok != tt.found {
					t.Fatalf("expected found=%v, got %v", tt.found, ok)
				}
				if ok && sun.Light.Name != tt.want {
					t.Errorf("expected %s, got %s", tt.want, sun.Light.Name)
				}
			}
		})
	}
}

func TestResizeReleasesBeforeReallocating(t *testing.T) {
	b := headless.New()
	ll := newTileLoop(t, b, nil)
	base := b.LiveComputeBuffers()

	if !ll.NeedsResize() {
		t.Fatal("expected a fresh light loop to need buffers")
	}
	if err := ll.AllocResolutionDependentBuffers(1920, 1080); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ll.NeedsResize() {
		t.Error("expected no resize after allocation")
	}
	if l := ll.LightList(); l.TilesX != 120 || l.TilesY != 68 {
		t.Errorf("expected 120x68 tiles, got %dx%d", l.TilesX, l.TilesY)
	}

	ll.ReleaseResolutionDependentBuffers()
	if err := ll.AllocResolutionDependentBuffers(640, 480); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a second allocation without release must not leak
	if err := ll.AllocResolutionDependentBuffers(640, 480); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.LiveComputeBuffers() - base; got != 2 {
		t.Errorf("expected 2 live resolution buffers, got %d", got)
	}
	if ll.Allocations() != 3 {
		t.Errorf("expected 3 allocations, got %d", ll.Allocations())
	}

	ll.Cleanup()
	if b.LiveComputeBuffers() != 0 || b.LiveTemporaries() != 0 {
		t.Errorf("expected cleanup to release everything, got %d buffers and %d textures", b.LiveComputeBuffers(), b.LiveTemporaries())
	}
}

func TestAllocationFailureIsResourceExhaustion(t *testing.T) {
	b := headless.New(headless.WithBufferBudget(2))
	ll := newTileLoop(t, b, nil)
	if err := ll.AllocResolutionDependentBuffers(64, 64); !errors.Is(err, core.ErrResourceExhausted) {
		t.Errorf("expected ErrResourceExhausted, got %v", err)
	}
	if b.LiveComputeBuffers() != 2 {
		t.Errorf("expected the partial allocation to be rolled back, got %d buffers", b.LiveComputeBuffers())
	}
}

func binScene(t *testing.T, ll LightLoop, cam *components.HDCamera) *LightList {
	t.Helper()
	ll.NewFrame()
	if ll.NeedsResize() {
		if err := ll.AllocResolutionDependentBuffers(cam.Width(), cam.Height()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	cull := &scene.CullResults{VisibleLights: []scene.VisibleLight{
		directional("sun", 1),
		point("front", math.NewVec3(0, 0, -10), 1),
		point("behind", math.NewVec3(0, 0, 10), 1),
		point("straddles near", math.NewVec3(0, 0, -0.5), 1),
	}}
	ll.PrepareLightsForGPU(shadow.DefaultShadowSettings(), cull, cam, nil)
	if err := ll.BuildGPULightLists(cam, depth); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ll.LightList()
}

func contains(cell []uint32, idx uint32) bool {
	for _, c := range cell {
		if c == idx {
			return true
		}
	}
	return false
}

func TestTileBinning(t *testing.T) {
	b := headless.New()
	ll := newTileLoop(t, b, nil)
	list := binScene(t, ll, hdCamera(256, 256))

	if !list.Valid {
		t.Fatal("expected a valid light list")
	}
	if len(list.Directional) != 1 || len(list.Punctual) != 3 {
		t.Fatalf("expected 1 directional and 3 punctual lights, got %d and %d", len(list.Directional), len(list.Punctual))
	}

	// punctual indices: 0 front, 1 behind, 2 straddles near
	tests := []struct {
		name  string
		x, y  int
		light uint32
		want  bool
	}{
		{"front in centre", 7, 7, 0, true},
		{"front not in corner", 0, 0, 0, false},
		{"front not in far corner", 15, 15, 0, false},
		{"behind nowhere", 7, 7, 1, false},
		{"near plane everywhere", 0, 0, 2, true},
		{"near plane everywhere 2", 15, 3, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contains(list.Cell(tt.x, tt.y, 0), tt.light); got != tt.want {
				t.Errorf("expected light %d in tile (%d,%d) = %v, got %v", tt.light, tt.x, tt.y, tt.want, got)
			}
		})
	}

	rec := b.Pending()
	found := false
	for _, c := range rec {
		if d, ok := c.(*headless.Dispatch); ok && d.Kernel == KernelTileLightListGen {
			found = d.Groups == [3]uint32{16, 16, 1}
		}
	}
	if !found {
		t.Error("expected a 16x16x1 fine prune dispatch")
	}
}

func TestParallelBinningMatchesInline(t *testing.T) {
	cam := hdCamera(320, 200)
	inline := binScene(t, newTileLoop(t, headless.New(), nil), cam)

	jobs := &goSubmitter{}
	parallel := binScene(t, newTileLoop(t, headless.New(), jobs), cam)

	if jobs.submitted.Load() < 2 {
		t.Errorf("expected binning to fan out, got %d jobs", jobs.submitted.Load())
	}
	for i := range inline.Cells {
		a, p := inline.Cells[i], parallel.Cells[i]
		if len(a) != len(p) {
			t.Fatalf("cell %d: expected %d lights, got %d", i, len(a), len(p))
		}
		for j := range a {
			if a[j] != p[j] {
				t.Fatalf("cell %d: expected %v, got %v", i, a, p)
			}
		}
	}
}

func TestClusterBinningUsesDepthSlices(t *testing.T) {
	b := headless.New()
	ll, err := NewClusterLightLoop(&LightLoopConfig{Settings: config.Default().LightLoop, Workers: 2}, b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ll.Build(config.Default().Texture); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cam := hdCamera(256, 256)
	list := binScene(t, ll, cam)

	if list.DepthSlices != 32 {
		t.Fatalf("expected 32 slices, got %d", list.DepthSlices)
	}
	// depth 9..11 with near 0.1 and far 1000 lands in slices 15 and 16
	if !contains(list.Cell(7, 7, 15), 0) || !contains(list.Cell(7, 7, 16), 0) {
		t.Error("expected the front light in slices 15 and 16")
	}
	if contains(list.Cell(7, 7, 0), 0) || contains(list.Cell(7, 7, 31), 0) {
		t.Error("expected the front light outside the first and last slices")
	}
	if list.TileLightCount(7, 7) != 2 {
		t.Errorf("expected 2 distinct lights in tile (7,7), got %d", list.TileLightCount(7, 7))
	}

	ll.PushGlobalParams(cam)
	if _, ok := b.Global("_ClusterLogScale"); !ok {
		t.Error("expected cluster params to be pushed")
	}
}

func TestUnlitFallback(t *testing.T) {
	b := headless.New()
	ll := newTileLoop(t, b, nil)
	if err := ll.AllocResolutionDependentBuffers(64, 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ll.BuildGPULightLists(hdCamera(64, 64), metadata.NoTarget); err == nil {
		t.Error("expected a missing depth buffer to be an error")
	}

	degenerate := hdCamera(64, 64)
	degenerate.Camera.NearClip = 0
	invalid := components.NewHDCamera(degenerate.Camera)
	ll.NewFrame()
	ll.PrepareLightsForGPU(shadow.DefaultShadowSettings(), &scene.CullResults{}, &invalid, nil)
	if err := ll.BuildGPULightLists(&invalid, depth); err != nil {
		t.Fatalf("expected the build to be skipped, got %v", err)
	}
	if ll.LightList().Valid {
		t.Error("expected an invalid light list")
	}

	ll.RenderDeferredLighting(&invalid, metadata.NewTemporaryTarget("_CameraColorTexture"))
	var kernels []string
	for _, c := range b.Pending() {
		if d, ok := c.(*headless.Dispatch); ok {
			kernels = append(kernels, d.Kernel)
		}
	}
	if len(kernels) != 1 || kernels[0] != KernelDeferredUnlit {
		t.Errorf("expected only the unlit kernel, got %v", kernels)
	}
}

func TestLightCaps(t *testing.T) {
	b := headless.New()
	settings := config.Default().LightLoop
	settings.MaxPunctualLights = 1
	settings.MaxDirectionalLights = 1
	ll, _ := NewTileLightLoop(&LightLoopConfig{Settings: settings}, b, nil)

	cull := &scene.CullResults{VisibleLights: []scene.VisibleLight{
		directional("a", 1), directional("b", 5),
		point("p0", math.NewVec3Zero(), 1), point("p1", math.NewVec3Zero(), 1),
	}}
	shadows := shadow.NewShadowOutput(4)
	for i := range shadows.ShadowIndices {
		shadows.ShadowIndices[i] = i
	}
	ll.NewFrame()
	out := ll.PrepareLightsForGPU(shadow.DefaultShadowSettings(), cull, hdCamera(64, 64), shadows)
	list := ll.LightList()
	if len(list.Directional) != 1 || len(list.Punctual) != 1 {
		t.Errorf("expected caps of 1, got %d directional and %d punctual", len(list.Directional), len(list.Punctual))
	}
	if out.ShadowIndex(1) != -1 || out.ShadowIndex(3) != -1 {
		t.Error("expected dropped lights to lose their shadows")
	}
	if sun, _ := ll.CurrentSunLight(); sun.Light.Name != "a" {
		t.Errorf("expected the sun to be among the kept lights, got %s", sun.Light.Name)
	}
}

func TestGPULightMarshal(t *testing.T) {
	g := NewGPULight(&scene.Light{
		Type:      scene.LightTypeSpot,
		Position:  math.NewVec3(1, 2, 3),
		Direction: math.NewVec3(0, 0, -2),
		Intensity: 4,
		Range:     10,
		SpotAngle: 60,
	}, -1)
	buf := g.Marshal()
	if len(buf) != GPULightSize {
		t.Fatalf("expected %d bytes, got %d", GPULightSize, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[12:16]) != GPU_LIGHT_TYPE_SPOT {
		t.Error("expected spot light type at offset 12")
	}
	if binary.LittleEndian.Uint32(buf[56:60]) != 0xFFFFFFFF {
		t.Error("expected shadow index -1 at offset 56")
	}
	if g.Direction != [3]float32{0, 0, -1} {
		t.Errorf("expected normalized direction, got %v", g.Direction)
	}
	if math.Abs(g.OuterCone-0.8660254) > 1e-5 || g.InnerCone != g.OuterCone {
		t.Errorf("expected cos(30deg) cones, got %f and %f", g.InnerCone, g.OuterCone)
	}
	if got := MarshalLights([]GPULight{g, g}); len(got) != 2*GPULightSize {
		t.Errorf("expected %d bytes, got %d", 2*GPULightSize, len(got))
	}
}

func TestHeatmap(t *testing.T) {
	list := &LightList{TilesX: 2, TilesY: 1, DepthSlices: 1, Cells: [][]uint32{{}, {0, 1, 2, 3}}}
	img := LightCountHeatmap(list, 32, 16, 4)
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Fatalf("expected 32x16, got %v", img.Bounds())
	}
	if c := img.RGBAAt(3, 3); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("expected an empty tile to be black, got %v", c)
	}
	if c := img.RGBAAt(20, 3); c.R != 255 || c.G != 0 {
		t.Errorf("expected a full tile to be red, got %v", c)
	}
}
