package shadow

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

const ShadowAtlasName = "_ShadowmapAtlas"

const (
	spotShadowNear  float32 = 0.05
	pointShadowNear float32 = 0.05
)

type ShadowRenderPassConfig struct {
	Atlas config.ShadowAtlasSettings
}

/**
 * @brief Renders shadow casters of every shadowed visible light into a
 * persistent atlas: one slice per cascade for directional lights, one for
 * spots and six for points.
 */
type ShadowRenderPass struct {
	config    ShadowRenderPassConfig
	settings  ShadowSettings
	allocator *atlasAllocator
	atlas     metadata.RenderTargetIdentifier
	built     bool
}

func NewShadowRenderPass(config *ShadowRenderPassConfig) (*ShadowRenderPass, error) {
	if config == nil {
		return nil, fmt.Errorf("func NewShadowRenderPass - config cannot be nil")
	}
	a := config.Atlas
	if a.ShadowMapSize <= 0 || a.AtlasSize < a.ShadowMapSize {
		return nil, fmt.Errorf("func NewShadowRenderPass - atlas %d cannot hold %d shadow maps: %w", a.AtlasSize, a.ShadowMapSize, core.ErrConfiguration)
	}
	if a.MaxShadowSlices <= 0 {
		return nil, fmt.Errorf("func NewShadowRenderPass - max shadow slices must be positive: %w", core.ErrConfiguration)
	}
	return &ShadowRenderPass{
		config:    *config,
		settings:  DefaultShadowSettings(),
		allocator: newAtlasAllocator(a.AtlasSize, a.ShadowMapSize, a.MaxShadowSlices),
		atlas:     metadata.NewTemporaryTarget(ShadowAtlasName),
	}, nil
}

// Build allocates the atlas. It lives until Cleanup.
func (s *ShadowRenderPass) Build(backend renderer.RendererBackend) error {
	desc := metadata.TextureDesc{
		Name:      ShadowAtlasName,
		Width:     s.config.Atlas.AtlasSize,
		Height:    s.config.Atlas.AtlasSize,
		DepthBits: 24,
		Format:    metadata.TEXTURE_FORMAT_SHADOWMAP,
		Filter:    metadata.FILTER_MODE_BILINEAR,
	}
	if err := backend.GetTemporary(desc); err != nil {
		return fmt.Errorf("shadow atlas: %s: %w", err.Error(), core.ErrResourceExhausted)
	}
	s.built = true
	return nil
}

func (s *ShadowRenderPass) Cleanup(backend renderer.RendererBackend) {
	if s.built {
		backend.ReleaseTemporary(ShadowAtlasName)
		s.built = false
	}
}

func (s *ShadowRenderPass) UpdateSettings(settings ShadowSettings) {
	s.settings = settings
}

func (s *ShadowRenderPass) Settings() ShadowSettings {
	return s.settings
}

// UpdateCullingParameters runs before the scene cull so shadow casters
// within the shadow distance get collected.
func (s *ShadowRenderPass) UpdateCullingParameters(params *scene.CullingParameters) {
	params.ShadowDistance = math.Min(params.ShadowDistance, s.settings.MaxShadowDistance)
	params.CullShadowCasters = true
}

func (s *ShadowRenderPass) Render(backend renderer.RendererBackend, camera *components.HDCamera, cull *scene.CullResults) (*ShadowOutput, error) {
	if !s.built {
		return nil, fmt.Errorf("shadow pass: %w", core.ErrNotInitialized)
	}
	out := NewShadowOutput(len(cull.VisibleLights))
	out.Atlas = s.atlas
	out.CascadeSplits = s.settings.CascadeSplits(math.Min(s.settings.MaxShadowDistance, camera.FarClip))

	s.allocator.reset()
	for i, vl := range cull.VisibleLights {
		l := vl.Light
		if !l.CastShadows {
			continue
		}
		var vps []math.Mat4
		switch l.Type {
		case scene.LightTypeDirectional:
			vps = cascadeViewProjections(camera, l.Direction, out.CascadeSplits)
		case scene.LightTypeSpot:
			vps = []math.Mat4{spotViewProjection(l)}
		case scene.LightTypePoint:
			vps = pointViewProjections(l)
		}
		first, rects, ok := s.allocator.alloc(len(vps))
		if !ok {
			core.LogWarn("shadow atlas full, %s light '%s' renders unshadowed", l.Type, l.Name)
			continue
		}
		out.ShadowIndices[i] = first
		for j, vp := range vps {
			out.Slices = append(out.Slices, ShadowSlice{VisibleLight: i, Slice: j, Rect: rects[j], ViewProjection: vp})
		}
	}
	if len(out.Slices) == 0 {
		return out, nil
	}

	renderer.SetDepthTarget(backend, s.atlas, metadata.CLEAR_FLAG_DEPTH)
	settings := metadata.DrawSettings{
		PassName: metadata.PassNameShadowCaster,
		Queue:    metadata.RenderQueueOpaque,
		Sorting:  metadata.SORT_COMMON_OPAQUE,
	}
	for _, slice := range out.Slices {
		r := slice.Rect
		backend.SetGlobalVector("_ShadowAtlasViewport", math.NewVec4(float32(r.X), float32(r.Y), float32(r.Size), float32(r.Size)))
		backend.SetGlobalMatrix("_ShadowViewProjection", slice.ViewProjection)
		if len(cull.ShadowCasters) > 0 {
			out.Draws += backend.DrawRenderers(cull.ShadowCasters, settings)
		}
	}
	return out, nil
}

func stableUp(dir math.Vec3) math.Vec3 {
	if math.Abs(dir.Y) > 0.99 {
		return math.NewVec3(1, 0, 0)
	}
	return math.NewVec3Up()
}

func lightDirection(dir math.Vec3) math.Vec3 {
	if dir.LengthSquared() == 0 {
		return math.NewVec3Down()
	}
	return dir.Normalize()
}

// cascadeViewProjections fits an orthographic projection around the bounding
// sphere of each cascade's slice of the camera frustum.
func cascadeViewProjections(camera *components.HDCamera, dir math.Vec3, splits []float32) []math.Mat4 {
	dir = lightDirection(dir)
	tanY := math.Tan(camera.Camera.FOV * 0.5)
	tanX := tanY * camera.ScreenSize.X * camera.ScreenSize.W
	forward := camera.ViewMatrix.Forward()
	position := camera.Camera.Position

	out := make([]math.Mat4, 0, len(splits))
	near := camera.NearClip
	for _, far := range splits {
		center := position.Add(forward.MulScalar((near + far) * 0.5))
		halfDepth := (far - near) * 0.5
		radius := math.Sqrt(halfDepth*halfDepth + far*tanX*far*tanX + far*tanY*far*tanY)

		eye := center.Sub(dir.MulScalar(radius * 2))
		view := math.NewMat4LookAt(eye, center, stableUp(dir))
		proj := math.NewMat4Orthographic(-radius, radius, -radius, radius, 0, radius*4)
		out = append(out, view.Mul(proj))
		near = far
	}
	return out
}

func spotViewProjection(l *scene.Light) math.Mat4 {
	dir := lightDirection(l.Direction)
	angle := l.SpotAngle
	if angle <= 0 {
		angle = 90
	}
	view := math.NewMat4LookAt(l.Position, l.Position.Add(dir), stableUp(dir))
	proj := math.NewMat4Perspective(math.DegToRad(angle), 1, spotShadowNear, math.Max(l.Range, spotShadowNear*2))
	return view.Mul(proj)
}

var cubeFaces = [6]struct {
	dir, up math.Vec3
}{
	{math.Vec3{X: 1}, math.Vec3{Y: -1}},
	{math.Vec3{X: -1}, math.Vec3{Y: -1}},
	{math.Vec3{Y: 1}, math.Vec3{Z: 1}},
	{math.Vec3{Y: -1}, math.Vec3{Z: -1}},
	{math.Vec3{Z: 1}, math.Vec3{Y: -1}},
	{math.Vec3{Z: -1}, math.Vec3{Y: -1}},
}

func pointViewProjections(l *scene.Light) []math.Mat4 {
	proj := math.NewMat4Perspective(math.DegToRad(90), 1, pointShadowNear, math.Max(l.Range, pointShadowNear*2))
	out := make([]math.Mat4, 0, len(cubeFaces))
	for _, f := range cubeFaces {
		view := math.NewMat4LookAt(l.Position, l.Position.Add(f.dir), f.up)
		out = append(out, view.Mul(proj))
	}
	return out
}
