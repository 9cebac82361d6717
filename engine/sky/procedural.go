package sky

import (
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

const (
	proceduralSkyMaterial = "ProceduralSky"
	// passes 0-5 render a cube face, pass 6 the screen
	proceduralSkyScreenPass = 6
)

// ProceduralSky is a gradient sky with a sun disc.
type ProceduralSky struct {
	SkyTint     math.Vec3
	GroundColor math.Vec3
	SunSize     float32
}

func NewProceduralSky() *ProceduralSky {
	return &ProceduralSky{
		SkyTint:     math.NewVec3(0.5, 0.6, 0.8),
		GroundColor: math.NewVec3(0.37, 0.35, 0.34),
		SunSize:     0.04,
	}
}

func (ps *ProceduralSky) Name() string {
	return "procedural"
}

func (ps *ProceduralSky) IsValid(params SkyParameters) bool {
	return params.Multiplier > 0 && ps.SunSize >= 0
}

func (ps *ProceduralSky) pushParams(backend renderer.RendererBackend, params SkyParameters, sun *scene.Light) {
	backend.SetGlobalVector("_SkyTint", ps.SkyTint.ToVec4(1))
	backend.SetGlobalVector("_GroundColor", ps.GroundColor.ToVec4(1))
	backend.SetGlobalVector("_SkyParam", math.NewVec4(params.Exposure, params.Multiplier, params.Rotation, ps.SunSize))

	sunDir := math.NewVec4(0, -1, 0, 0)
	sunColour := math.NewVec4Zero()
	if sun != nil {
		d := sun.Direction.Normalize()
		sunDir = math.NewVec4(d.X, d.Y, d.Z, 0)
		sunColour = sun.Color.MulScalar(sun.Intensity).ToVec4(1)
	}
	backend.SetGlobalVector("_SunDirection", sunDir)
	backend.SetGlobalVector("_SunColor", sunColour)
}

func (ps *ProceduralSky) RenderSkyToCubemap(backend renderer.RendererBackend, params SkyParameters, sun *scene.Light, target metadata.RenderTargetIdentifier) {
	ps.pushParams(backend, params, sun)
	for face := 0; face < 6; face++ {
		backend.SetGlobalInt("_CubeFace", int32(face))
		backend.Blit(metadata.NoTarget, target, proceduralSkyMaterial, face)
	}
}

func (ps *ProceduralSky) RenderSky(backend renderer.RendererBackend, params SkyParameters, camera *components.HDCamera, sun *scene.Light, colour metadata.RenderTargetIdentifier) {
	ps.pushParams(backend, params, sun)
	backend.SetGlobalMatrix("_PixelCoordToViewDirWS", camera.InvViewProjectionMatrix)
	backend.Blit(metadata.NoTarget, colour, proceduralSkyMaterial, proceduralSkyScreenPass)
}
