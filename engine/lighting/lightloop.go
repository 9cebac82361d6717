package lighting

import (
	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/shadow"
)

/**
 * @brief Builds per tile (or per cluster) light lists and exposes the
 * deferred and forward lighting entry points. Per frame the calls must
 * happen in this order: NewFrame, resize, PrepareLightsForGPU,
 * BuildGPULightLists, PushGlobalParams, then the render entry points.
 */
type LightLoop interface {
	// Build creates the resolution independent buffers.
	Build(textures config.TextureSettings) error
	Cleanup()

	NewFrame()

	NeedsResize() bool
	AllocResolutionDependentBuffers(width, height int) error
	ReleaseResolutionDependentBuffers()

	// PrepareLightsForGPU converts the visible lights and picks the sun.
	PrepareLightsForGPU(settings shadow.ShadowSettings, cull *scene.CullResults, camera *components.HDCamera, shadows *shadow.ShadowOutput) *shadow.ShadowOutput
	// BuildGPULightLists needs depth to be populated.
	BuildGPULightLists(camera *components.HDCamera, depth metadata.RenderTargetIdentifier) error
	PushGlobalParams(camera *components.HDCamera)

	RenderDeferredLighting(camera *components.HDCamera, colour metadata.RenderTargetIdentifier)
	// RenderForward binds the opaque or transparent light list. It never draws.
	RenderForward(camera *components.HDCamera, opaque bool)

	CurrentSunLight() (scene.VisibleLight, bool)
	LightList() *LightList
}

// JobSubmitter runs binning jobs. systems.JobSystem satisfies it.
type JobSubmitter interface {
	Submit(jt metadata.JobTask)
}

/** @brief Sizing of a light loop variant. */
type LightLoopConfig struct {
	Settings config.LightLoopSettings
	// Workers splits binning into at most this many jobs.
	Workers int
}

/**
 * @brief The light lists of the current camera. Rebuilt every frame.
 */
type LightList struct {
	// Valid is false when the build was skipped; lighting then falls back to unlit.
	Valid       bool
	TileSize    int
	TilesX      int
	TilesY      int
	DepthSlices int
	// Cells holds the indices into Punctual of every tile or cluster,
	// ordered x, then y, then depth slice.
	Cells       [][]uint32
	Punctual    []GPULight
	Directional []GPULight
	// Overflow counts indices dropped from full cells.
	Overflow int
}

func (l *LightList) CellIndex(x, y, z int) int {
	return (z*l.TilesY+y)*l.TilesX + x
}

func (l *LightList) Cell(x, y, z int) []uint32 {
	if x < 0 || y < 0 || z < 0 || x >= l.TilesX || y >= l.TilesY || z >= l.DepthSlices {
		return nil
	}
	return l.Cells[l.CellIndex(x, y, z)]
}

// TileLightCount is the number of distinct lights touching a screen tile over all slices.
func (l *LightList) TileLightCount(x, y int) int {
	if l.DepthSlices == 1 {
		return len(l.Cell(x, y, 0))
	}
	seen := make(map[uint32]struct{})
	for z := 0; z < l.DepthSlices; z++ {
		for _, idx := range l.Cell(x, y, z) {
			seen[idx] = struct{}{}
		}
	}
	return len(seen)
}

func (l *LightList) reset() {
	l.Valid = false
	l.Punctual = l.Punctual[:0]
	l.Directional = l.Directional[:0]
	l.Overflow = 0
	for i := range l.Cells {
		l.Cells[i] = l.Cells[i][:0]
	}
}
