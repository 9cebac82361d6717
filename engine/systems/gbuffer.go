package systems

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

/** @brief The maximum number of simultaneous colour targets a gbuffer pass may bind. */
const MaxGBuffer = 8

const VelocityBufferName = "_VelocityTexture"

func gbufferName(slot int) string {
	return fmt.Sprintf("_GBufferTexture%d", slot)
}

/**
 * @brief Registry of the gbuffer layout. The material system provides the
 * slots, velocity is appended as the last one when written by the gbuffer pass.
 */
type GBufferSystem struct {
	resources  *ResourceSystem
	handles    []BufferHandle
	formats    []metadata.GBufferSlotFormat
	velocity   bool
	configured bool
}

func NewGBufferSystem(resources *ResourceSystem) (*GBufferSystem, error) {
	if resources == nil {
		return nil, fmt.Errorf("func NewGBufferSystem - resources cannot be nil")
	}
	return &GBufferSystem{resources: resources}, nil
}

func (gs *GBufferSystem) Configure(slotCount int, formats []metadata.GBufferSlotFormat, velocityInGBuffer bool) error {
	if gs.configured {
		return fmt.Errorf("gbuffer layout is already configured: %w", core.ErrConfiguration)
	}
	if slotCount < 0 {
		return fmt.Errorf("negative gbuffer slot count %d: %w", slotCount, core.ErrConfiguration)
	}
	if len(formats) != slotCount {
		return fmt.Errorf("gbuffer declares %d slots but %d formats: %w", slotCount, len(formats), core.ErrConfiguration)
	}

	all := make([]metadata.GBufferSlotFormat, 0, slotCount+1)
	all = append(all, formats...)
	if velocityInGBuffer {
		all = append(all, metadata.VelocityBufferFormat)
	}
	if len(all) > MaxGBuffer {
		return fmt.Errorf("gbuffer needs %d slots, at most %d are supported: %w", len(all), MaxGBuffer, core.ErrConfiguration)
	}

	handles := make([]BufferHandle, 0, len(all))
	for i, f := range all {
		name := gbufferName(i)
		if velocityInGBuffer && i == len(all)-1 {
			name = VelocityBufferName
		}
		h, err := gs.resources.DeclareBuffer(name, f.Format, f.ColorSpace, BufferOptions{Filter: metadata.FILTER_MODE_POINT})
		if err != nil {
			return err
		}
		handles = append(handles, h)
	}

	gs.handles = handles
	gs.formats = all
	gs.velocity = velocityInGBuffer
	gs.configured = true
	core.LogDebug("gbuffer configured with %d slots (velocity=%t)", len(all), velocityInGBuffer)
	return nil
}

func (gs *GBufferSystem) SlotCount() int {
	return len(gs.handles)
}

func (gs *GBufferSystem) Formats() []metadata.GBufferSlotFormat {
	return gs.formats
}

func (gs *GBufferSystem) VelocityInGBuffer() bool {
	return gs.velocity
}

func (gs *GBufferSystem) GetBuffers() []BufferHandle {
	return gs.handles
}

func (gs *GBufferSystem) Allocate(width, height int) error {
	for _, h := range gs.handles {
		if err := gs.resources.Allocate(h, width, height); err != nil {
			return err
		}
	}
	return nil
}

// Identifiers returns the targets to bind as MRT, in slot order.
func (gs *GBufferSystem) Identifiers() []metadata.RenderTargetIdentifier {
	out := make([]metadata.RenderTargetIdentifier, len(gs.handles))
	for i, h := range gs.handles {
		out[i] = gs.resources.Identifier(h)
	}
	return out
}
