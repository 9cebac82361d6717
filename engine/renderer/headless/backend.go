package headless

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/renderer/vulkan"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

type bufferInfo struct {
	name   string
	count  int
	stride int
}

type BackendOption func(*Backend)

// WithTemporaryBudget makes GetTemporary fail once more than n temporaries are live.
func WithTemporaryBudget(n int) BackendOption {
	return func(b *Backend) {
		b.temporaryBudget = n
	}
}

// WithBufferBudget makes CreateComputeBuffer fail once more than n buffers are live.
func WithBufferBudget(n int) BackendOption {
	return func(b *Backend) {
		b.bufferBudget = n
	}
}

// Backend is a RendererBackend that validates and records every call
// instead of talking to a device. Each Submit closes one Recording.
type Backend struct {
	mu sync.Mutex

	appName     string
	initialized bool

	current    []Command
	recordings []Recording

	temporaries     map[string]metadata.TextureDesc
	temporaryBudget int

	buffers      map[metadata.ComputeBufferHandle]bufferInfo
	nextBuffer   metadata.ComputeBufferHandle
	bufferBudget int

	globals     map[string]interface{}
	sampleDepth int

	TemporaryRequests int
	BufferCreates     int
	BufferReleases    int
	Discards          int
}

func New(opts ...BackendOption) *Backend {
	b := &Backend{
		temporaries: make(map[string]metadata.TextureDesc),
		buffers:     make(map[metadata.ComputeBufferHandle]bufferInfo),
		globals:     make(map[string]interface{}),
		nextBuffer:  metadata.InvalidComputeBuffer,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Backend) Initialize(appName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appName = appName
	b.initialized = true
	core.LogInfo("Headless backend initialized for '%s'.", appName)
	return nil
}

func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.buffers) > 0 {
		core.LogWarn("Headless backend shut down with %d compute buffers still alive.", len(b.buffers))
	}
	b.temporaries = make(map[string]metadata.TextureDesc)
	b.initialized = false
	return nil
}

func (b *Backend) push(cmd Command) {
	b.current = append(b.current, cmd)
}

func (b *Backend) GetTemporary(desc metadata.TextureDesc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := vulkan.ImageCreateInfo(desc); err != nil {
		return err
	}
	if _, live := b.temporaries[desc.Name]; !live && b.temporaryBudget > 0 && len(b.temporaries) >= b.temporaryBudget {
		return fmt.Errorf("temporary '%s': budget of %d textures reached", desc.Name, b.temporaryBudget)
	}
	b.temporaries[desc.Name] = desc
	b.TemporaryRequests++
	b.push(&GetTemporary{Desc: desc})
	return nil
}

func (b *Backend) ReleaseTemporary(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.temporaries[name]; !ok {
		return
	}
	delete(b.temporaries, name)
	b.push(&ReleaseTemporary{Name: name})
}

func (b *Backend) CreateComputeBuffer(name string, count, stride int) (metadata.ComputeBufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := vulkan.StorageBufferCreateInfo(count, stride); err != nil {
		return metadata.InvalidComputeBuffer, fmt.Errorf("compute buffer '%s': %w", name, err)
	}
	if b.bufferBudget > 0 && len(b.buffers) >= b.bufferBudget {
		return metadata.InvalidComputeBuffer, fmt.Errorf("compute buffer '%s': budget of %d buffers reached", name, b.bufferBudget)
	}
	b.nextBuffer++
	h := b.nextBuffer
	b.buffers[h] = bufferInfo{name: name, count: count, stride: stride}
	b.BufferCreates++
	b.push(&CreateBuffer{Handle: h, Name: name, Count: count, Stride: stride})
	return h, nil
}

func (b *Backend) ReleaseComputeBuffer(handle metadata.ComputeBufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buffers[handle]; !ok {
		return
	}
	delete(b.buffers, handle)
	b.BufferReleases++
	b.push(&ReleaseBuffer{Handle: handle})
}

func (b *Backend) SetComputeBufferData(handle metadata.ComputeBufferHandle, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	info, ok := b.buffers[handle]
	if !ok {
		return fmt.Errorf("upload to compute buffer %d: %w", handle, core.ErrInvalidHandle)
	}
	if len(data) > info.count*info.stride {
		return fmt.Errorf("upload of %d bytes overflows compute buffer '%s' (%d bytes)", len(data), info.name, info.count*info.stride)
	}
	b.push(&UploadBuffer{Handle: handle, Size: len(data)})
	return nil
}

func (b *Backend) SetupCameraProperties(camera *components.HDCamera) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := ""
	if camera.Camera != nil {
		name = camera.Camera.Name
	}
	b.push(&SetupCamera{Camera: name, ScreenSize: camera.ScreenSize})
}

func (b *Backend) SetRenderTarget(colors []metadata.RenderTargetIdentifier, depth metadata.RenderTargetIdentifier, clear metadata.ClearFlag, clearColour math.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs := make([]metadata.RenderTargetIdentifier, len(colors))
	copy(cs, colors)
	b.push(&SetRenderTarget{Colors: cs, Depth: depth, Clear: clear, ClearColour: clearColour})
}

func setGlobal[T metadata.GlobalValue](b *Backend, name string, value T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals[name] = value
	b.push(&SetGlobal{Name: name, Value: value})
}

func (b *Backend) SetGlobalInt(name string, value int32) {
	setGlobal(b, name, value)
}

func (b *Backend) SetGlobalFloat(name string, value float32) {
	setGlobal(b, name, value)
}

func (b *Backend) SetGlobalVector(name string, value math.Vec4) {
	setGlobal(b, name, value)
}

func (b *Backend) SetGlobalMatrix(name string, value math.Mat4) {
	setGlobal(b, name, value)
}

func (b *Backend) SetGlobalTexture(name string, id metadata.RenderTargetIdentifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals[name] = id
	b.push(&SetGlobal{Name: name, Value: id})
}

func (b *Backend) SetGlobalBuffer(name string, handle metadata.ComputeBufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals[name] = handle
	b.push(&SetGlobal{Name: name, Value: handle})
}

func (b *Backend) DrawRenderers(renderers []*scene.Renderer, settings metadata.DrawSettings) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(renderers))
	for i, r := range renderers {
		names[i] = r.Name
	}
	b.push(&DrawRenderers{Settings: settings, Renderers: names})
	return uint32(len(renderers))
}

func (b *Backend) Blit(src, dst metadata.RenderTargetIdentifier, material string, pass int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.push(&Blit{Src: src, Dst: dst, Material: material, Pass: pass})
}

func (b *Backend) DispatchCompute(kernel string, groupsX, groupsY, groupsZ uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.push(&Dispatch{Kernel: kernel, Groups: [3]uint32{groupsX, groupsY, groupsZ}})
}

func (b *Backend) BeginSample(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sampleDepth++
	b.push(&BeginSample{Name: name})
}

func (b *Backend) EndSample(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sampleDepth--
	b.push(&EndSample{Name: name})
}

func (b *Backend) Submit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return fmt.Errorf("submit: %w", core.ErrNotInitialized)
	}
	if b.sampleDepth != 0 {
		return fmt.Errorf("submit with %d profiling samples still open", b.sampleDepth)
	}
	b.recordings = append(b.recordings, Recording{ID: uuid.New(), Commands: b.current})
	b.current = nil
	return nil
}

// Discard drops the pending commands. Resource state is kept.
func (b *Backend) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
	b.sampleDepth = 0
	b.Discards++
}

// Recordings returns every submitted recording so far.
func (b *Backend) Recordings() []Recording {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Recording, len(b.recordings))
	copy(out, b.recordings)
	return out
}

// Pending returns the commands recorded since the last Submit.
func (b *Backend) Pending() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Command, len(b.current))
	copy(out, b.current)
	return out
}

func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordings = nil
	b.current = nil
}

func (b *Backend) Temporary(name string) (metadata.TextureDesc, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.temporaries[name]
	return d, ok
}

func (b *Backend) LiveTemporaries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.temporaries)
}

func (b *Backend) LiveComputeBuffers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers)
}

func (b *Backend) Global(name string) (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.globals[name]
	return v, ok
}
