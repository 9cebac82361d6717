package systems

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

/** @brief Index of a declared transient buffer. Cheap to copy and compare. */
type BufferHandle uint32

const InvalidBufferHandle BufferHandle = 0xFFFFFFFF

/** @brief Per-buffer allocation options. */
type BufferOptions struct {
	/** @brief Bits of depth for depth formats, 0 for colour. */
	DepthBits         int
	Filter            metadata.FilterMode
	EnableRandomWrite bool
}

/**
 * @brief A named render target whose storage is requested per frame. The
 * format is fixed at declaration, the extent follows the camera.
 */
type TransientBuffer struct {
	Name       string
	Format     metadata.TextureFormat
	ColorSpace metadata.ColorSpace
	Options    BufferOptions
	Width      int
	Height     int
	/** @brief Set while the backend holds a temporary for this buffer. */
	Allocated bool
}

func (tb *TransientBuffer) desc() metadata.TextureDesc {
	return metadata.TextureDesc{
		Name:              tb.Name,
		Width:             tb.Width,
		Height:            tb.Height,
		DepthBits:         tb.Options.DepthBits,
		Format:            tb.Format,
		ColorSpace:        tb.ColorSpace,
		Filter:            tb.Options.Filter,
		EnableRandomWrite: tb.Options.EnableRandomWrite,
	}
}

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief The maximum number of buffers that can be declared. */
	MaxBufferCount uint32
}

/**
 * @brief Owns the frame targets. Buffers are declared once at build time
 * and allocated as temporaries each frame; EndFrame hands them all back.
 */
type ResourceSystem struct {
	backend renderer.RendererBackend
	ids     *core.IdentifierPool
	buffers []*TransientBuffer
	order   []BufferHandle
	lookup  map[string]BufferHandle
}

func NewResourceSystem(config *ResourceSystemConfig, backend renderer.RendererBackend) (*ResourceSystem, error) {
	if config == nil || config.MaxBufferCount == 0 {
		return nil, fmt.Errorf("func NewResourceSystem - config.MaxBufferCount must be > 0")
	}
	if backend == nil {
		return nil, fmt.Errorf("func NewResourceSystem - backend cannot be nil")
	}
	return &ResourceSystem{
		backend: backend,
		ids:     core.NewIdentifierPool(config.MaxBufferCount),
		buffers: make([]*TransientBuffer, 0, config.MaxBufferCount),
		lookup:  make(map[string]BufferHandle, config.MaxBufferCount),
	}, nil
}

func (rs *ResourceSystem) DeclareBuffer(name string, format metadata.TextureFormat, colorSpace metadata.ColorSpace, opts BufferOptions) (BufferHandle, error) {
	if name == "" {
		return InvalidBufferHandle, fmt.Errorf("transient buffer requires a name: %w", core.ErrConfiguration)
	}
	if _, ok := rs.lookup[name]; ok {
		return InvalidBufferHandle, fmt.Errorf("transient buffer '%s' is already declared: %w", name, core.ErrConfiguration)
	}
	buffer := &TransientBuffer{Name: name, Format: format, ColorSpace: colorSpace, Options: opts}
	id, err := rs.ids.Acquire(buffer)
	if err != nil {
		return InvalidBufferHandle, fmt.Errorf("transient buffer '%s': %s: %w", name, err.Error(), core.ErrConfiguration)
	}
	for uint32(len(rs.buffers)) <= id {
		rs.buffers = append(rs.buffers, nil)
	}
	rs.buffers[id] = buffer

	handle := BufferHandle(id)
	rs.order = append(rs.order, handle)
	rs.lookup[name] = handle
	core.LogDebug("transient buffer '%s' declared as %d", name, handle)
	return handle, nil
}

func (rs *ResourceSystem) get(handle BufferHandle) (*TransientBuffer, error) {
	if handle == InvalidBufferHandle || int(handle) >= len(rs.buffers) || rs.buffers[handle] == nil {
		return nil, fmt.Errorf("transient buffer %d: %w", handle, core.ErrInvalidHandle)
	}
	return rs.buffers[handle], nil
}

// Buffer returns the declaration behind handle, nil for invalid handles.
func (rs *ResourceSystem) Buffer(handle BufferHandle) *TransientBuffer {
	b, _ := rs.get(handle)
	return b
}

// Allocate requests storage for handle at the given extent. Asking again at
// the same extent within a frame does nothing.
func (rs *ResourceSystem) Allocate(handle BufferHandle, width, height int) error {
	buffer, err := rs.get(handle)
	if err != nil {
		return err
	}
	if buffer.Allocated {
		if buffer.Width == width && buffer.Height == height {
			return nil
		}
		rs.backend.ReleaseTemporary(buffer.Name)
		buffer.Allocated = false
	}
	buffer.Width, buffer.Height = width, height
	if err := rs.backend.GetTemporary(buffer.desc()); err != nil {
		return fmt.Errorf("transient buffer '%s' at %dx%d: %s: %w", buffer.Name, width, height, err.Error(), core.ErrResourceExhausted)
	}
	buffer.Allocated = true
	return nil
}

// Release hands the temporary of handle back before the end of the frame.
func (rs *ResourceSystem) Release(handle BufferHandle) {
	buffer, err := rs.get(handle)
	if err != nil || !buffer.Allocated {
		return
	}
	rs.backend.ReleaseTemporary(buffer.Name)
	buffer.Allocated = false
}

// GetAll returns every declared handle in declaration order.
func (rs *ResourceSystem) GetAll() []BufferHandle {
	out := make([]BufferHandle, len(rs.order))
	copy(out, rs.order)
	return out
}

func (rs *ResourceSystem) Identifier(handle BufferHandle) metadata.RenderTargetIdentifier {
	buffer, err := rs.get(handle)
	if err != nil {
		return metadata.NoTarget
	}
	return metadata.NewTemporaryTarget(buffer.Name)
}

// Live counts buffers currently holding a temporary.
func (rs *ResourceSystem) Live() int {
	n := 0
	for _, h := range rs.order {
		if rs.buffers[h].Allocated {
			n++
		}
	}
	return n
}

func (rs *ResourceSystem) EndFrame() {
	for _, h := range rs.order {
		rs.Release(h)
	}
}

// Shutdown releases everything and forgets all declarations.
func (rs *ResourceSystem) Shutdown() {
	rs.EndFrame()
	for _, h := range rs.order {
		_ = rs.ids.Release(uint32(h))
	}
	rs.buffers = rs.buffers[:0]
	rs.order = nil
	rs.lookup = make(map[string]BufferHandle)
}
