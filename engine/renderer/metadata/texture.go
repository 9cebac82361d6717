package metadata

import "fmt"

/** @brief Pixel formats a render target or temporary texture can take. */
type TextureFormat uint8

const (
	TEXTURE_FORMAT_UNKNOWN TextureFormat = iota
	/** @brief 8 bits per channel RGBA. */
	TEXTURE_FORMAT_ARGB32
	/** @brief 16-bit float per channel RGBA. */
	TEXTURE_FORMAT_ARGB_HALF
	/** @brief 10/10/10/2 packed. */
	TEXTURE_FORMAT_ARGB2101010
	/** @brief 11/11/10 packed float. */
	TEXTURE_FORMAT_RGB111110_FLOAT
	/** @brief Two 16-bit float channels, used for velocity. */
	TEXTURE_FORMAT_RG_HALF
	/** @brief Single 32-bit float channel. */
	TEXTURE_FORMAT_R_FLOAT
	/** @brief Depth (and stencil, depending on the bit count). */
	TEXTURE_FORMAT_DEPTH
	/** @brief Shadow map depth. */
	TEXTURE_FORMAT_SHADOWMAP
)

func (f TextureFormat) String() string {
	switch f {
	case TEXTURE_FORMAT_ARGB32:
		return "ARGB32"
	case TEXTURE_FORMAT_ARGB_HALF:
		return "ARGBHalf"
	case TEXTURE_FORMAT_ARGB2101010:
		return "ARGB2101010"
	case TEXTURE_FORMAT_RGB111110_FLOAT:
		return "RGB111110Float"
	case TEXTURE_FORMAT_RG_HALF:
		return "RGHalf"
	case TEXTURE_FORMAT_R_FLOAT:
		return "RFloat"
	case TEXTURE_FORMAT_DEPTH:
		return "Depth"
	case TEXTURE_FORMAT_SHADOWMAP:
		return "Shadowmap"
	}
	return fmt.Sprintf("TextureFormat(%d)", uint8(f))
}

func (f TextureFormat) IsDepth() bool {
	return f == TEXTURE_FORMAT_DEPTH || f == TEXTURE_FORMAT_SHADOWMAP
}

/** @brief How colour values are written to a target. */
type ColorSpace uint8

const (
	COLOR_SPACE_DEFAULT ColorSpace = iota
	COLOR_SPACE_LINEAR
	COLOR_SPACE_SRGB
)

type FilterMode uint8

const (
	FILTER_MODE_POINT FilterMode = iota
	FILTER_MODE_BILINEAR
)

/**
 * @brief Describes a temporary render texture requested from the backend.
 */
type TextureDesc struct {
	/** @brief The global name the texture is bound under, e.g. _CameraColorTexture. */
	Name   string
	Width  int
	Height int
	/** @brief 0 for colour targets, 16/24/32 for depth. */
	DepthBits  int
	Format     TextureFormat
	ColorSpace ColorSpace
	Filter     FilterMode
	/** @brief Allows compute shaders to write into the texture (UAV). */
	EnableRandomWrite bool
}

/** @brief Format and colour space of a single gbuffer slot. */
type GBufferSlotFormat struct {
	Format     TextureFormat
	ColorSpace ColorSpace
}

var (
	VelocityBufferFormat   = GBufferSlotFormat{Format: TEXTURE_FORMAT_RG_HALF, ColorSpace: COLOR_SPACE_LINEAR}
	DistortionBufferFormat = GBufferSlotFormat{Format: TEXTURE_FORMAT_ARGB_HALF, ColorSpace: COLOR_SPACE_LINEAR}
)
