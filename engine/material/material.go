package material

import (
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

/**
 * @brief The shading model as seen by the render pipeline: the gbuffer
 * layout it needs and the global data it binds before lighting.
 */
type System interface {
	Name() string
	GBufferSlotCount() int
	GBufferSlotFormats() []metadata.GBufferSlotFormat
	/** @brief Creates the build-time resources. */
	Build(backend renderer.RendererBackend) error
	Cleanup(backend renderer.RendererBackend)
	/** @brief Fills the lookup tables once. Run lazily on the first frame. */
	RenderInit(backend renderer.RendererBackend)
	IsInit() bool
	/** @brief Binds the material globals for lighting and forward passes. */
	Bind(backend renderer.RendererBackend)
}
