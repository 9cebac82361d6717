package scene

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

// CullingParameters is what the culler needs for one camera. The shadow
// pass widens it before Cull runs.
type CullingParameters struct {
	Camera         *components.Camera
	CameraPosition math.Vec3
	Frustum        math.Frustum
	// ShadowDistance bounds shadow caster collection around the camera.
	ShadowDistance    float32
	CullShadowCasters bool
}

type VisibleLight struct {
	Light *Light
	// Index of the light in the scene.
	Index int
}

type CullResults struct {
	VisibleRenderers []*Renderer
	VisibleLights    []VisibleLight
	ShadowCasters    []*Renderer
	CameraPosition   math.Vec3
}

// Culler is the scene culling collaborator of the pipeline.
type Culler interface {
	GetCullingParameters(camera *components.Camera) (CullingParameters, error)
	Cull(params *CullingParameters) (*CullResults, error)
}

// RenderList returns the visible renderers drawn by settings, sorted front
// to back for opaque and back to front for transparent. Ties keep scene order.
func (c *CullResults) RenderList(settings metadata.DrawSettings) []*Renderer {
	out := make([]*Renderer, 0, len(c.VisibleRenderers))
	for _, r := range c.VisibleRenderers {
		if r.Queue == settings.Queue && r.HasPass(settings.PassName) {
			out = append(out, r)
		}
	}
	dist := func(r *Renderer) float32 {
		return r.Bounds.Center().Sub(c.CameraPosition).LengthSquared()
	}
	slices.SortStableFunc(out, func(a, b *Renderer) int {
		da, db := dist(a), dist(b)
		if settings.Sorting == metadata.SORT_COMMON_TRANSPARENT {
			da, db = db, da
		}
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	return out
}

// HasRenderers reports whether any visible renderer in queue implements pass.
func (c *CullResults) HasRenderers(queue metadata.RenderQueue, pass string) bool {
	for _, r := range c.VisibleRenderers {
		if r.Queue == queue && r.HasPass(pass) {
			return true
		}
	}
	return false
}

// SceneCuller frustum culls a Scene on the CPU.
type SceneCuller struct {
	scene *Scene
}

func NewSceneCuller(s *Scene) *SceneCuller {
	return &SceneCuller{scene: s}
}

func (sc *SceneCuller) GetCullingParameters(camera *components.Camera) (CullingParameters, error) {
	if camera == nil {
		return CullingParameters{}, fmt.Errorf("nil camera: %w", core.ErrCullingFailed)
	}
	hd := components.NewHDCamera(camera)
	if !hd.HasValidViewVolume() {
		return CullingParameters{}, fmt.Errorf("camera '%s' (%dx%d) has no view volume: %w",
			camera.Name, camera.PixelWidth, camera.PixelHeight, core.ErrCullingFailed)
	}
	return CullingParameters{
		Camera:         camera,
		CameraPosition: camera.Position,
		Frustum:        hd.Frustum,
		ShadowDistance: camera.FarClip,
	}, nil
}

func (sc *SceneCuller) Cull(params *CullingParameters) (*CullResults, error) {
	if params == nil || !params.Frustum.Valid() {
		return nil, fmt.Errorf("invalid culling parameters: %w", core.ErrCullingFailed)
	}
	res := &CullResults{CameraPosition: params.CameraPosition}
	for _, r := range sc.scene.Renderers {
		if params.Frustum.IntersectsAABB(r.Bounds) {
			res.VisibleRenderers = append(res.VisibleRenderers, r)
		}
		if params.CullShadowCasters && r.CastShadows {
			s := r.Bounds.BoundingSphere()
			if s.Center.Distance(params.CameraPosition)-s.Radius <= params.ShadowDistance {
				res.ShadowCasters = append(res.ShadowCasters, r)
			}
		}
	}
	for i, l := range sc.scene.Lights {
		if l.Disabled || l.Intensity <= 0 {
			continue
		}
		if l.Type == LightTypeDirectional || params.Frustum.IntersectsSphere(l.BoundingSphere()) {
			res.VisibleLights = append(res.VisibleLights, VisibleLight{Light: l, Index: i})
		}
	}
	return res, nil
}
