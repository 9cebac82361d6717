package postprocess

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

/** @brief The configuration for the post-process registry. */
type RegistryConfig struct {
	/** @brief The maximum number of stacks that can be registered. */
	MaxStackCount int
}

/** @brief Stacks addressed by name from cameras and common settings. */
type Registry struct {
	mu            sync.RWMutex
	Lookup        map[string]*Stack
	MaxStackCount int
}

func NewRegistry(config *RegistryConfig) (*Registry, error) {
	if config == nil || config.MaxStackCount <= 0 {
		return nil, fmt.Errorf("func NewRegistry - config.MaxStackCount must be > 0")
	}
	return &Registry{
		Lookup:        make(map[string]*Stack, config.MaxStackCount),
		MaxStackCount: config.MaxStackCount,
	}, nil
}

func (r *Registry) Register(stack *Stack) error {
	if stack == nil || stack.Name == "" {
		return fmt.Errorf("post-process stack requires a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Lookup[stack.Name]; ok {
		return fmt.Errorf("a post-process stack named '%s' already exists", stack.Name)
	}
	if len(r.Lookup) >= r.MaxStackCount {
		return fmt.Errorf("no space for post-process stack '%s': %w", stack.Name, core.ErrConfiguration)
	}
	r.Lookup[stack.Name] = stack
	return nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.Lookup, name)
	r.mu.Unlock()
}

// Get returns nil for empty or unknown names.
func (r *Registry) Get(name string) *Stack {
	if name == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Lookup[name]
}

/**
 * @brief Resolves the camera colour buffer to the camera target, either by
 * a direct copy or through the camera's or the global post-process stack.
 */
type FinalPass struct {
	registry    *Registry
	globalStack string
}

func NewFinalPass(registry *Registry) (*FinalPass, error) {
	if registry == nil {
		return nil, fmt.Errorf("func NewFinalPass - registry cannot be nil")
	}
	return &FinalPass{registry: registry}, nil
}

// SetGlobalStack selects the stack used by cameras without an active one of their own.
func (fp *FinalPass) SetGlobalStack(name string) {
	fp.globalStack = name
}

func (fp *FinalPass) Resolve(backend renderer.RendererBackend, camera *components.HDCamera, src metadata.RenderTargetIdentifier) error {
	defer renderer.ProfilingSample(backend, "Final Pass")()

	var local *Stack
	if camera.Camera != nil {
		local = fp.registry.Get(camera.Camera.PostProcess)
	}
	global := fp.registry.Get(fp.globalStack)

	target := local
	if !local.Active() {
		target = global
	}
	if !target.Active() {
		backend.Blit(src, metadata.CameraTarget, "", 0)
		return nil
	}
	return target.Render(backend, camera, src, metadata.CameraTarget)
}
