package renderer

import (
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

type RendererType uint8

const (
	Headless RendererType = iota
	Vulkan
)

func (t RendererType) String() string {
	switch t {
	case Headless:
		return "headless"
	case Vulkan:
		return "vulkan"
	}
	return "unknown"
}

var black = math.NewVec4(0, 0, 0, 1)

// SetRenderTarget binds a single colour target with depth.
func SetRenderTarget(b RendererBackend, colour, depth metadata.RenderTargetIdentifier, clear metadata.ClearFlag) {
	b.SetRenderTarget([]metadata.RenderTargetIdentifier{colour}, depth, clear, black)
}

// SetRenderTargetMRT binds several colour targets with depth.
func SetRenderTargetMRT(b RendererBackend, colours []metadata.RenderTargetIdentifier, depth metadata.RenderTargetIdentifier, clear metadata.ClearFlag) {
	b.SetRenderTarget(colours, depth, clear, black)
}

// SetDepthTarget binds depth only.
func SetDepthTarget(b RendererBackend, depth metadata.RenderTargetIdentifier, clear metadata.ClearFlag) {
	b.SetRenderTarget(nil, depth, clear, black)
}

// ProfilingSample opens a named sample and returns the function closing it:
//
//	defer renderer.ProfilingSample(b, "GBuffer Pass")()
func ProfilingSample(b RendererBackend, name string) func() {
	b.BeginSample(name)
	return func() {
		b.EndSample(name)
	}
}
