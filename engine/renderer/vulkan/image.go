package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

// ImageUsage returns the usage flags a temporary of desc needs: attachment,
// sampling from later passes, and storage when compute writes into it.
func ImageUsage(desc metadata.TextureDesc) vk.ImageUsageFlags {
	var usage vk.ImageUsageFlagBits = vk.ImageUsageSampledBit | vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit
	if desc.Format.IsDepth() {
		usage |= vk.ImageUsageDepthStencilAttachmentBit
	} else {
		usage |= vk.ImageUsageColorAttachmentBit
	}
	if desc.EnableRandomWrite {
		usage |= vk.ImageUsageStorageBit
	}
	return vk.ImageUsageFlags(usage)
}

// ImageCreateInfo validates desc and builds the create info for it.
func ImageCreateInfo(desc metadata.TextureDesc) (vk.ImageCreateInfo, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return vk.ImageCreateInfo{}, fmt.Errorf("image '%s' has invalid extent %dx%d", desc.Name, desc.Width, desc.Height)
	}
	if desc.Format.IsDepth() && desc.EnableRandomWrite {
		return vk.ImageCreateInfo{}, fmt.Errorf("image '%s': depth formats cannot be written from compute", desc.Name)
	}
	format, err := Format(desc.Format, desc.ColorSpace, desc.DepthBits)
	if err != nil {
		return vk.ImageCreateInfo{}, fmt.Errorf("image '%s': %w", desc.Name, err)
	}
	return vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  uint32(desc.Width),
			Height: uint32(desc.Height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         ImageUsage(desc),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil
}

// StorageBufferCreateInfo describes a structured buffer of count elements.
func StorageBufferCreateInfo(count, stride int) (vk.BufferCreateInfo, error) {
	if count <= 0 || stride <= 0 {
		return vk.BufferCreateInfo{}, fmt.Errorf("invalid storage buffer size %d x %d", count, stride)
	}
	return vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(count * stride),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit | vk.BufferUsageTransferDstBit),
		SharingMode: vk.SharingModeExclusive,
	}, nil
}
