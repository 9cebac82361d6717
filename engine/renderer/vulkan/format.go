package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

// Format translates a texture format and colour space into the vk.Format a
// device would allocate. Depth formats pick their layout from depthBits.
func Format(format metadata.TextureFormat, colorSpace metadata.ColorSpace, depthBits int) (vk.Format, error) {
	switch format {
	case metadata.TEXTURE_FORMAT_ARGB32:
		if colorSpace == metadata.COLOR_SPACE_SRGB {
			return vk.FormatR8g8b8a8Srgb, nil
		}
		return vk.FormatR8g8b8a8Unorm, nil
	case metadata.TEXTURE_FORMAT_ARGB_HALF:
		return vk.FormatR16g16b16a16Sfloat, nil
	case metadata.TEXTURE_FORMAT_ARGB2101010:
		return vk.FormatA2b10g10r10UnormPack32, nil
	case metadata.TEXTURE_FORMAT_RGB111110_FLOAT:
		return vk.FormatB10g11r11UfloatPack32, nil
	case metadata.TEXTURE_FORMAT_RG_HALF:
		return vk.FormatR16g16Sfloat, nil
	case metadata.TEXTURE_FORMAT_R_FLOAT:
		return vk.FormatR32Sfloat, nil
	case metadata.TEXTURE_FORMAT_DEPTH, metadata.TEXTURE_FORMAT_SHADOWMAP:
		switch depthBits {
		case 16:
			return vk.FormatD16Unorm, nil
		case 24:
			return vk.FormatD24UnormS8Uint, nil
		case 32:
			return vk.FormatD32Sfloat, nil
		}
		return vk.FormatUndefined, fmt.Errorf("unsupported depth bit count %d for %s", depthBits, format)
	}
	return vk.FormatUndefined, fmt.Errorf("unsupported texture format %s", format)
}
