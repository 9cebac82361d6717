package metadata

import (
	"github.com/spaghettifunk/hdrp/engine/math"
)

type RenderTargetType uint8

const (
	RENDER_TARGET_TYPE_NONE RenderTargetType = iota
	/** @brief A temporary texture owned by the resource system. */
	RENDER_TARGET_TYPE_TEMPORARY
	/** @brief The display target of the camera being rendered. */
	RENDER_TARGET_TYPE_CAMERA_TARGET
)

/**
 * @brief Value-type identifier of a render target. Temporaries are
 * addressed by the global name they were requested with.
 */
type RenderTargetIdentifier struct {
	Type RenderTargetType
	Name string
}

var (
	NoTarget     = RenderTargetIdentifier{}
	CameraTarget = RenderTargetIdentifier{Type: RENDER_TARGET_TYPE_CAMERA_TARGET, Name: "CameraTarget"}
)

func NewTemporaryTarget(name string) RenderTargetIdentifier {
	return RenderTargetIdentifier{Type: RENDER_TARGET_TYPE_TEMPORARY, Name: name}
}

func (id RenderTargetIdentifier) IsValid() bool {
	return id.Type != RENDER_TARGET_TYPE_NONE
}

func (id RenderTargetIdentifier) String() string {
	if !id.IsValid() {
		return "<none>"
	}
	return id.Name
}

/**
 * @brief The types of clearing done when binding a render target.
 * Can be combined together for multiple clearing functions.
 */
type ClearFlag uint32

const (
	/** @brief No clearing should be done. */
	CLEAR_FLAG_NONE ClearFlag = 0x0
	/** @brief Clear the colour buffer. */
	CLEAR_FLAG_COLOR ClearFlag = 0x1
	/** @brief Clear the depth buffer. */
	CLEAR_FLAG_DEPTH ClearFlag = 0x2
	CLEAR_FLAG_ALL   ClearFlag = CLEAR_FLAG_COLOR | CLEAR_FLAG_DEPTH
)

/** @brief Render queue range a render list draws from. */
type RenderQueue uint8

const (
	RenderQueueOpaque RenderQueue = iota
	RenderQueueTransparent
)

type SortFlags uint8

const (
	/** @brief Front to back. */
	SORT_COMMON_OPAQUE SortFlags = iota
	/** @brief Back to front. */
	SORT_COMMON_TRANSPARENT
)

/** @brief Extra per-renderer data to bind when drawing. */
type RendererConfiguration uint32

const (
	RENDERER_CONFIGURATION_NONE           RendererConfiguration = 0x0
	RENDERER_CONFIGURATION_BAKED_LIGHTING RendererConfiguration = 0x1
)

// Shader pass names a material can implement.
const (
	PassNameDepthOnly                  = "DepthOnly"
	PassNameForwardOnlyOpaqueDepthOnly = "ForwardOnlyOpaqueDepthOnly"
	PassNameGBuffer                    = "GBuffer"
	PassNameForward                    = "Forward"
	PassNameForwardOnlyOpaque          = "ForwardOnlyOpaque"
	PassNameMotionVectors              = "MotionVectors"
	PassNameDistortionVectors          = "DistortionVectors"
	PassNameDebugViewMaterial          = "DebugViewMaterial"
	PassNameShadowCaster               = "ShadowCaster"
)

/**
 * @brief Describes a render list submission: which shader pass of the
 * visible renderers to draw, from which queue and in which order.
 */
type DrawSettings struct {
	PassName      string
	Queue         RenderQueue
	Sorting       SortFlags
	Configuration RendererConfiguration
}

/** @brief Handle of a structured compute buffer. 0 is never a valid handle. */
type ComputeBufferHandle uint32

const InvalidComputeBuffer ComputeBufferHandle = 0

/** @brief Value types that can be pushed as global shader parameters. */
type GlobalValue interface {
	int32 | float32 | math.Vec4 | math.Mat4
}
