package material

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

const (
	PreIntegratedFGDName   = "_PreIntegratedFGD"
	preIntegratedFGDSize   = 128
	preIntegratedFGDShader = "PreIntegratedFGD"
)

// Lit layout: base colour, normal/smoothness, specular/occlusion, baked diffuse.
var litGBufferFormats = []metadata.GBufferSlotFormat{
	{Format: metadata.TEXTURE_FORMAT_ARGB32, ColorSpace: metadata.COLOR_SPACE_SRGB},
	{Format: metadata.TEXTURE_FORMAT_ARGB32, ColorSpace: metadata.COLOR_SPACE_LINEAR},
	{Format: metadata.TEXTURE_FORMAT_ARGB2101010, ColorSpace: metadata.COLOR_SPACE_LINEAR},
	{Format: metadata.TEXTURE_FORMAT_RGB111110_FLOAT, ColorSpace: metadata.COLOR_SPACE_LINEAR},
}

/** @brief The default standard-lit shading model. */
type LitSystem struct {
	built  bool
	isInit bool
}

func NewLitSystem() *LitSystem {
	return &LitSystem{}
}

func (ls *LitSystem) Name() string {
	return "Lit"
}

func (ls *LitSystem) GBufferSlotCount() int {
	return len(litGBufferFormats)
}

func (ls *LitSystem) GBufferSlotFormats() []metadata.GBufferSlotFormat {
	out := make([]metadata.GBufferSlotFormat, len(litGBufferFormats))
	copy(out, litGBufferFormats)
	return out
}

func (ls *LitSystem) Build(backend renderer.RendererBackend) error {
	desc := metadata.TextureDesc{
		Name:       PreIntegratedFGDName,
		Width:      preIntegratedFGDSize,
		Height:     preIntegratedFGDSize,
		Format:     metadata.TEXTURE_FORMAT_ARGB_HALF,
		ColorSpace: metadata.COLOR_SPACE_LINEAR,
		Filter:     metadata.FILTER_MODE_BILINEAR,
	}
	if err := backend.GetTemporary(desc); err != nil {
		return fmt.Errorf("failed to create %s: %s: %w", PreIntegratedFGDName, err.Error(), core.ErrResourceExhausted)
	}
	ls.built = true
	ls.isInit = false
	return nil
}

func (ls *LitSystem) Cleanup(backend renderer.RendererBackend) {
	if ls.built {
		backend.ReleaseTemporary(PreIntegratedFGDName)
	}
	ls.built = false
	ls.isInit = false
}

func (ls *LitSystem) RenderInit(backend renderer.RendererBackend) {
	if !ls.built {
		core.LogWarn("lit material system rendered before build")
		return
	}
	defer renderer.ProfilingSample(backend, "PreIntegratedFGD")()
	backend.Blit(metadata.NoTarget, metadata.NewTemporaryTarget(PreIntegratedFGDName), preIntegratedFGDShader, 0)
	ls.isInit = true
}

func (ls *LitSystem) IsInit() bool {
	return ls.isInit
}

func (ls *LitSystem) Bind(backend renderer.RendererBackend) {
	backend.SetGlobalTexture(PreIntegratedFGDName, metadata.NewTemporaryTarget(PreIntegratedFGDName))
}
