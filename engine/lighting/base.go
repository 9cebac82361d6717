package lighting

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/shadow"
)

const (
	KernelDeferredLighting = "DeferredLighting"
	KernelDeferredUnlit    = "DeferredUnlit"
)

const (
	cookieTexturesName     = "_CookieTextures"
	cookieCubeTexturesName = "_CookieCubeTextures"
	envTexturesName        = "_EnvTextures"
)

// lightLoop holds everything the tile and cluster variants share. The
// variants only differ in how depth is sliced.
type lightLoop struct {
	config  LightLoopConfig
	backend renderer.RendererBackend
	jobs    JobSubmitter

	buildKernel string
	depthSlices int
	slicer      func(camera *components.HDCamera) depthSlicer

	built           bool
	lightData       metadata.ComputeBufferHandle
	directionalData metadata.ComputeBufferHandle
	textures        []string

	allocated   bool
	width       int
	height      int
	cellBuffer  metadata.ComputeBufferHandle
	indexBuffer metadata.ComputeBufferHandle
	allocations int

	list    LightList
	spheres []math.Sphere
	shadows *shadow.ShadowOutput
	cascade int

	sun            scene.VisibleLight
	hasSun         bool
	sunDirectional int
}

func newLightLoop(caller string, config *LightLoopConfig, backend renderer.RendererBackend, jobs JobSubmitter) (*lightLoop, error) {
	if config == nil {
		return nil, fmt.Errorf("func %s - config cannot be nil", caller)
	}
	if backend == nil {
		return nil, fmt.Errorf("func %s - backend cannot be nil", caller)
	}
	s := config.Settings
	if s.TileSize <= 0 || s.MaxLightsPerTile <= 0 || s.MaxPunctualLights <= 0 || s.MaxDirectionalLights <= 0 {
		return nil, fmt.Errorf("func %s - tile size and light caps must be positive: %w", caller, core.ErrConfiguration)
	}
	return &lightLoop{
		config:         *config,
		backend:        backend,
		jobs:           jobs,
		sunDirectional: -1,
	}, nil
}

func (l *lightLoop) Build(textures config.TextureSettings) error {
	var err error
	if l.lightData, err = l.backend.CreateComputeBuffer("_LightDatas", l.config.Settings.MaxPunctualLights, GPULightSize); err != nil {
		return fmt.Errorf("light data: %s: %w", err.Error(), core.ErrResourceExhausted)
	}
	if l.directionalData, err = l.backend.CreateComputeBuffer("_DirectionalLightDatas", l.config.Settings.MaxDirectionalLights, GPULightSize); err != nil {
		return fmt.Errorf("directional light data: %s: %w", err.Error(), core.ErrResourceExhausted)
	}

	descs := []metadata.TextureDesc{
		{Name: cookieTexturesName, Width: textures.SpotCookieSize, Height: textures.SpotCookieSize, Format: metadata.TEXTURE_FORMAT_ARGB32, ColorSpace: metadata.COLOR_SPACE_LINEAR, Filter: metadata.FILTER_MODE_BILINEAR},
		{Name: cookieCubeTexturesName, Width: textures.PointCookieSize, Height: textures.PointCookieSize, Format: metadata.TEXTURE_FORMAT_ARGB32, ColorSpace: metadata.COLOR_SPACE_LINEAR, Filter: metadata.FILTER_MODE_BILINEAR},
		// probes are laid out side by side
		{Name: envTexturesName, Width: textures.ReflectionCubemapSize * textures.ReflectionProbeCount, Height: textures.ReflectionCubemapSize, Format: metadata.TEXTURE_FORMAT_ARGB_HALF, ColorSpace: metadata.COLOR_SPACE_LINEAR, Filter: metadata.FILTER_MODE_BILINEAR},
	}
	for _, d := range descs {
		if err := l.backend.GetTemporary(d); err != nil {
			return fmt.Errorf("%s: %s: %w", d.Name, err.Error(), core.ErrResourceExhausted)
		}
		l.textures = append(l.textures, d.Name)
	}
	l.built = true
	return nil
}

func (l *lightLoop) Cleanup() {
	l.ReleaseResolutionDependentBuffers()
	if l.lightData != metadata.InvalidComputeBuffer {
		l.backend.ReleaseComputeBuffer(l.lightData)
		l.lightData = metadata.InvalidComputeBuffer
	}
	if l.directionalData != metadata.InvalidComputeBuffer {
		l.backend.ReleaseComputeBuffer(l.directionalData)
		l.directionalData = metadata.InvalidComputeBuffer
	}
	for _, name := range l.textures {
		l.backend.ReleaseTemporary(name)
	}
	l.textures = nil
	l.built = false
}

func (l *lightLoop) NewFrame() {
	l.resetCamera()
	l.shadows = nil
}

// resetCamera drops the lights, cells and sun of the previous camera.
func (l *lightLoop) resetCamera() {
	l.list.reset()
	l.spheres = l.spheres[:0]
	l.sun = scene.VisibleLight{}
	l.hasSun = false
	l.sunDirectional = -1
}

func (l *lightLoop) NeedsResize() bool {
	return !l.allocated
}

// Allocations counts resolution dependent allocations since creation.
func (l *lightLoop) Allocations() int {
	return l.allocations
}

func (l *lightLoop) AllocResolutionDependentBuffers(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("light loop buffers for %dx%d: %w", width, height, core.ErrConfiguration)
	}
	if l.allocated {
		core.LogWarn("light loop buffers reallocated without release, releasing %dx%d first", l.width, l.height)
		l.ReleaseResolutionDependentBuffers()
	}

	s := l.config.Settings
	tilesX := math.DivideRoundUp(width, s.TileSize)
	tilesY := math.DivideRoundUp(height, s.TileSize)
	cells := tilesX * tilesY * l.depthSlices

	var err error
	// (offset, count) per cell
	if l.cellBuffer, err = l.backend.CreateComputeBuffer("_LightListCells", cells, 8); err != nil {
		return fmt.Errorf("light list cells: %s: %w", err.Error(), core.ErrResourceExhausted)
	}
	if l.indexBuffer, err = l.backend.CreateComputeBuffer("_LightListIndices", cells*s.MaxLightsPerTile, 4); err != nil {
		l.backend.ReleaseComputeBuffer(l.cellBuffer)
		l.cellBuffer = metadata.InvalidComputeBuffer
		return fmt.Errorf("light list indices: %s: %w", err.Error(), core.ErrResourceExhausted)
	}

	l.list = LightList{
		TileSize:    s.TileSize,
		TilesX:      tilesX,
		TilesY:      tilesY,
		DepthSlices: l.depthSlices,
		Cells:       make([][]uint32, cells),
	}
	l.width, l.height = width, height
	l.allocated = true
	l.allocations++
	core.LogDebug("light loop buffers allocated for %dx%d (%dx%dx%d cells)", width, height, tilesX, tilesY, l.depthSlices)
	return nil
}

func (l *lightLoop) ReleaseResolutionDependentBuffers() {
	if !l.allocated {
		return
	}
	l.backend.ReleaseComputeBuffer(l.cellBuffer)
	l.backend.ReleaseComputeBuffer(l.indexBuffer)
	l.cellBuffer = metadata.InvalidComputeBuffer
	l.indexBuffer = metadata.InvalidComputeBuffer
	l.list.Cells = nil
	l.list.Valid = false
	l.allocated = false
}

// PrepareLightsForGPU converts the visible lights in cull order. The sun is
// the directional light with the highest luminance; the first one wins ties.
// Lights past the caps are dropped along with their shadows.
func (l *lightLoop) PrepareLightsForGPU(settings shadow.ShadowSettings, cull *scene.CullResults, camera *components.HDCamera, shadows *shadow.ShadowOutput) *shadow.ShadowOutput {
	l.resetCamera()
	if shadows == nil {
		shadows = shadow.NewShadowOutput(len(cull.VisibleLights))
	}
	s := l.config.Settings
	droppedDirectional, droppedPunctual := 0, 0
	var best float32

	for i, vl := range cull.VisibleLights {
		light := vl.Light
		if light.Type == scene.LightTypeDirectional {
			if len(l.list.Directional) >= s.MaxDirectionalLights {
				droppedDirectional++
				shadows.ShadowIndices[i] = -1
				continue
			}
			if score := light.Luminance(); !l.hasSun || score > best {
				l.sun, l.hasSun, best = vl, true, score
				l.sunDirectional = len(l.list.Directional)
			}
			l.list.Directional = append(l.list.Directional, NewGPULight(light, shadows.ShadowIndex(i)))
			continue
		}
		if len(l.list.Punctual) >= s.MaxPunctualLights {
			droppedPunctual++
			shadows.ShadowIndices[i] = -1
			continue
		}
		l.list.Punctual = append(l.list.Punctual, NewGPULight(light, shadows.ShadowIndex(i)))
		l.spheres = append(l.spheres, light.BoundingSphere())
	}
	if droppedDirectional > 0 || droppedPunctual > 0 {
		core.LogWarn("camera '%s': dropped %d directional and %d punctual lights over the caps", camera.Camera.Name, droppedDirectional, droppedPunctual)
	}
	l.shadows = shadows
	l.cascade = settings.CascadeCount()
	return shadows
}

func (l *lightLoop) BuildGPULightLists(camera *components.HDCamera, depth metadata.RenderTargetIdentifier) error {
	if !depth.IsValid() {
		return fmt.Errorf("light list build needs a populated depth buffer")
	}
	if !l.built || !l.allocated {
		return fmt.Errorf("light list build: %w", core.ErrNotInitialized)
	}
	l.list.Valid = false
	if !camera.HasValidViewVolume() {
		core.LogDebug("camera '%s' has no view volume, lighting falls back to unlit", camera.Camera.Name)
		return nil
	}

	if err := l.backend.SetComputeBufferData(l.lightData, MarshalLights(l.list.Punctual)); err != nil {
		return err
	}
	if err := l.backend.SetComputeBufferData(l.directionalData, MarshalLights(l.list.Directional)); err != nil {
		return err
	}

	bounds := coarseBounds(camera, l.spheres, l.list.TileSize, l.list.TilesX, l.list.TilesY, l.slicer(camera))
	l.list.Overflow = binLights(&l.list, bounds, l.config.Settings.MaxLightsPerTile, l.jobs, l.config.Workers)
	if l.list.Overflow > 0 {
		core.LogWarn("camera '%s': %d light indices dropped from full cells", camera.Camera.Name, l.list.Overflow)
	}

	cells := make([]uint32, 0, len(l.list.Cells)*2)
	var indices []uint32
	for _, c := range l.list.Cells {
		cells = append(cells, uint32(len(indices)), uint32(len(c)))
		indices = append(indices, c...)
	}
	if err := l.backend.SetComputeBufferData(l.cellBuffer, MarshalUint32s(cells)); err != nil {
		return err
	}
	if err := l.backend.SetComputeBufferData(l.indexBuffer, MarshalUint32s(indices)); err != nil {
		return err
	}

	// the fine prune tests every coarse entry against the depth bounds of its tile
	l.backend.SetGlobalTexture("_CameraDepthTexture", depth)
	l.backend.SetGlobalBuffer("_LightListCells", l.cellBuffer)
	l.backend.SetGlobalBuffer("_LightListIndices", l.indexBuffer)
	l.backend.DispatchCompute(l.buildKernel, uint32(l.list.TilesX), uint32(l.list.TilesY), uint32(l.depthSlices))

	l.list.Valid = true
	return nil
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (l *lightLoop) PushGlobalParams(camera *components.HDCamera) {
	b := l.backend
	b.SetGlobalInt("_NumTileX", int32(l.list.TilesX))
	b.SetGlobalInt("_NumTileY", int32(l.list.TilesY))
	b.SetGlobalInt("_TileSize", int32(l.list.TileSize))
	b.SetGlobalInt("_NumDepthSlices", int32(l.depthSlices))
	b.SetGlobalInt("_LightListValid", boolToInt(l.list.Valid))
	b.SetGlobalInt("_PunctualLightCount", int32(len(l.list.Punctual)))
	b.SetGlobalInt("_DirectionalLightCount", int32(len(l.list.Directional)))
	b.SetGlobalInt("_SunLightIndex", int32(l.sunDirectional))

	b.SetGlobalBuffer("_LightDatas", l.lightData)
	b.SetGlobalBuffer("_DirectionalLightDatas", l.directionalData)
	b.SetGlobalBuffer("_LightListCells", l.cellBuffer)
	b.SetGlobalBuffer("_LightListIndices", l.indexBuffer)

	b.SetGlobalTexture(cookieTexturesName, metadata.NewTemporaryTarget(cookieTexturesName))
	b.SetGlobalTexture(cookieCubeTexturesName, metadata.NewTemporaryTarget(cookieCubeTexturesName))
	b.SetGlobalTexture(envTexturesName, metadata.NewTemporaryTarget(envTexturesName))

	if l.shadows != nil {
		var splits [4]float32
		copy(splits[:], l.shadows.CascadeSplits)
		b.SetGlobalInt("_CascadeCount", int32(l.cascade))
		b.SetGlobalVector("_CascadeShadowSplits", math.NewVec4(splits[0], splits[1], splits[2], splits[3]))
		if l.shadows.Atlas.IsValid() {
			b.SetGlobalTexture("_ShadowmapAtlas", l.shadows.Atlas)
		}
	}
}

func (l *lightLoop) RenderDeferredLighting(camera *components.HDCamera, colour metadata.RenderTargetIdentifier) {
	kernel := KernelDeferredLighting
	if !l.list.Valid {
		kernel = KernelDeferredUnlit
	}
	l.backend.SetGlobalTexture("_DeferredLightingOutput", colour)
	ts := l.config.Settings.TileSize
	l.backend.DispatchCompute(kernel, uint32(math.DivideRoundUp(camera.Width(), ts)), uint32(math.DivideRoundUp(camera.Height(), ts)), 1)
}

func (l *lightLoop) RenderForward(camera *components.HDCamera, opaque bool) {
	l.backend.SetGlobalInt("_UseLightList", boolToInt(l.list.Valid))
	l.backend.SetGlobalInt("_ForwardOpaqueLightList", boolToInt(opaque))
}

func (l *lightLoop) CurrentSunLight() (scene.VisibleLight, bool) {
	return l.sun, l.hasSun
}

func (l *lightLoop) LightList() *LightList {
	return &l.list
}
