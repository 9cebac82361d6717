package renderer

import (
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

// RendererBackend is the graphics abstraction the pipeline records its
// frame into. Implementations queue the commands; nothing here waits on the GPU.
type RendererBackend interface {
	Initialize(appName string) error
	Shutdown() error

	// GetTemporary allocates (or re-uses) a temporary texture bound under desc.Name.
	GetTemporary(desc metadata.TextureDesc) error
	ReleaseTemporary(name string)

	CreateComputeBuffer(name string, count, stride int) (metadata.ComputeBufferHandle, error)
	ReleaseComputeBuffer(handle metadata.ComputeBufferHandle)
	SetComputeBufferData(handle metadata.ComputeBufferHandle, data []byte) error

	SetupCameraProperties(camera *components.HDCamera)
	SetRenderTarget(colors []metadata.RenderTargetIdentifier, depth metadata.RenderTargetIdentifier, clear metadata.ClearFlag, clearColour math.Vec4)

	SetGlobalInt(name string, value int32)
	SetGlobalFloat(name string, value float32)
	SetGlobalVector(name string, value math.Vec4)
	SetGlobalMatrix(name string, value math.Mat4)
	SetGlobalTexture(name string, id metadata.RenderTargetIdentifier)
	SetGlobalBuffer(name string, handle metadata.ComputeBufferHandle)

	// DrawRenderers issues one draw per renderer and returns the draw count.
	DrawRenderers(renderers []*scene.Renderer, settings metadata.DrawSettings) uint32
	// Blit copies src into dst, optionally through a named material pass. A NoTarget src
	// draws a full screen triangle with the material only.
	Blit(src, dst metadata.RenderTargetIdentifier, material string, pass int)
	DispatchCompute(kernel string, groupsX, groupsY, groupsZ uint32)

	BeginSample(name string)
	EndSample(name string)

	// Submit flushes everything recorded for the current camera.
	Submit() error
	// Discard drops everything recorded since the last Submit.
	Discard()
}
