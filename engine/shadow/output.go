package shadow

import (
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

// AtlasRect is a square region of the shadow atlas, in texels.
type AtlasRect struct {
	X, Y, Size int
}

type ShadowSlice struct {
	// VisibleLight is the index of the light in CullResults.VisibleLights.
	VisibleLight int
	// Cascade or cube face, 0 for spot lights.
	Slice          int
	Rect           AtlasRect
	ViewProjection math.Mat4
}

/**
 * @brief Result of the shadow pass for the current camera. Consumed by
 * light preparation, never kept across frames.
 */
type ShadowOutput struct {
	Atlas metadata.RenderTargetIdentifier
	// ShadowIndices holds the first slice of every visible light, -1 when unshadowed.
	ShadowIndices []int
	Slices        []ShadowSlice
	// CascadeSplits are the far distances of the directional cascades.
	CascadeSplits []float32
	Draws         uint32
}

func NewShadowOutput(visibleLights int) *ShadowOutput {
	o := &ShadowOutput{ShadowIndices: make([]int, visibleLights)}
	for i := range o.ShadowIndices {
		o.ShadowIndices[i] = -1
	}
	return o
}

// ShadowIndex returns the first slice of visibleLight, or -1.
func (o *ShadowOutput) ShadowIndex(visibleLight int) int {
	if o == nil || visibleLight < 0 || visibleLight >= len(o.ShadowIndices) {
		return -1
	}
	return o.ShadowIndices[visibleLight]
}

// atlasAllocator hands out equally sized squares row by row.
type atlasAllocator struct {
	atlasSize int
	mapSize   int
	capacity  int
	next      int
}

func newAtlasAllocator(atlasSize, mapSize, maxSlices int) *atlasAllocator {
	perRow := atlasSize / mapSize
	return &atlasAllocator{
		atlasSize: atlasSize,
		mapSize:   mapSize,
		capacity:  math.Min(perRow*perRow, maxSlices),
	}
}

func (a *atlasAllocator) reset() {
	a.next = 0
}

// alloc reserves n consecutive squares. ok is false when they do not fit.
func (a *atlasAllocator) alloc(n int) (first int, rects []AtlasRect, ok bool) {
	if a.next+n > a.capacity {
		return 0, nil, false
	}
	perRow := a.atlasSize / a.mapSize
	first = a.next
	for i := 0; i < n; i++ {
		idx := a.next + i
		rects = append(rects, AtlasRect{
			X:    (idx % perRow) * a.mapSize,
			Y:    (idx / perRow) * a.mapSize,
			Size: a.mapSize,
		})
	}
	a.next += n
	return first, rects, true
}
