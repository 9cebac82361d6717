package sky

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

const (
	SkyTextureName         = "_SkyTexture"
	SkyConvolvedName       = "_SkyConvolvedTexture"
	KernelConvolveSky      = "ConvolveSkyEnvironment"
	DEFAULT_SKY_RESOLUTION = 128
)

/** @brief Parameters a sky renderer is driven by. Any change triggers a re-convolution. */
type SkyParameters struct {
	/** @brief Edge size of one cubemap face in texels. */
	Resolution int
	Exposure   float32
	Multiplier float32
	/** @brief Rotation around the up axis, degrees. */
	Rotation float32
}

func DefaultSkyParameters() SkyParameters {
	return SkyParameters{
		Resolution: DEFAULT_SKY_RESOLUTION,
		Exposure:   0,
		Multiplier: 1,
	}
}

/**
 * @brief A sky model. It renders itself into the six faces of a cubemap
 * and behind opaque geometry on screen.
 */
type SkyRenderer interface {
	Name() string
	IsValid(params SkyParameters) bool
	RenderSkyToCubemap(backend renderer.RendererBackend, params SkyParameters, sun *scene.Light, target metadata.RenderTargetIdentifier)
	RenderSky(backend renderer.RendererBackend, params SkyParameters, camera *components.HDCamera, sun *scene.Light, colour metadata.RenderTargetIdentifier)
}

type SkyManagerConfig struct {
	Parameters SkyParameters
}

// sunState is what of the sun affects the convolved sky.
type sunState struct {
	light     *scene.Light
	direction math.Vec3
	colour    math.Vec3
	intensity float32
}

func newSunState(sun *scene.Light) sunState {
	if sun == nil {
		return sunState{}
	}
	return sunState{light: sun, direction: sun.Direction, colour: sun.Color, intensity: sun.Intensity}
}

type SkyManager struct {
	backend  renderer.RendererBackend
	renderer SkyRenderer

	params          SkyParameters
	allocatedParams SkyParameters
	allocated       bool

	convolvedParams SkyParameters
	convolvedSun    sunState
	convolved       bool
	convolutions    int
}

func NewSkyManager(config *SkyManagerConfig, backend renderer.RendererBackend) (*SkyManager, error) {
	if config == nil {
		return nil, fmt.Errorf("func NewSkyManager - config cannot be nil")
	}
	if backend == nil {
		return nil, fmt.Errorf("func NewSkyManager - backend cannot be nil")
	}
	if config.Parameters.Resolution <= 0 {
		return nil, fmt.Errorf("func NewSkyManager - sky resolution must be positive: %w", core.ErrConfiguration)
	}
	return &SkyManager{
		backend: backend,
		params:  config.Parameters,
	}, nil
}

// InstantiateSkyRenderer swaps the sky model. A nil renderer disables the sky.
func (sm *SkyManager) InstantiateSkyRenderer(r SkyRenderer) {
	sm.renderer = r
	sm.convolved = false
	if r != nil {
		core.LogInfo("sky renderer set to '%s'", r.Name())
	}
}

func (sm *SkyManager) SetParameters(params SkyParameters) {
	sm.params = params
}

func (sm *SkyManager) Parameters() SkyParameters {
	return sm.params
}

func (sm *SkyManager) Build() error {
	return sm.Resize()
}

// Resize runs every camera and only re-allocates when the sky parameters changed.
func (sm *SkyManager) Resize() error {
	if sm.allocated && sm.allocatedParams == sm.params {
		return nil
	}
	sm.release()
	res := sm.params.Resolution
	for _, name := range []string{SkyTextureName, SkyConvolvedName} {
		desc := metadata.TextureDesc{
			Name:       name,
			Width:      res * 6,
			Height:     res,
			Format:     metadata.TEXTURE_FORMAT_ARGB_HALF,
			ColorSpace: metadata.COLOR_SPACE_LINEAR,
			Filter:     metadata.FILTER_MODE_BILINEAR,
			// the convolution writes from compute
			EnableRandomWrite: name == SkyConvolvedName,
		}
		if err := sm.backend.GetTemporary(desc); err != nil {
			sm.release()
			return fmt.Errorf("sky texture %s: %s: %w", name, err.Error(), core.ErrResourceExhausted)
		}
	}
	sm.allocated = true
	sm.allocatedParams = sm.params
	sm.convolved = false
	return nil
}

func (sm *SkyManager) release() {
	sm.backend.ReleaseTemporary(SkyTextureName)
	sm.backend.ReleaseTemporary(SkyConvolvedName)
	sm.allocated = false
}

func (sm *SkyManager) Cleanup() {
	sm.release()
}

func (sm *SkyManager) IsSkyValid() bool {
	return sm.renderer != nil && sm.allocated && sm.renderer.IsValid(sm.params)
}

// Convolutions counts how often the environment was re-convolved.
func (sm *SkyManager) Convolutions() int {
	return sm.convolutions
}

// UpdateEnvironment re-renders and re-convolves the sky cubemap when the
// parameters or the sun changed since the last convolution.
func (sm *SkyManager) UpdateEnvironment(camera *components.HDCamera, sun *scene.Light) {
	if !sm.IsSkyValid() {
		return
	}
	state := newSunState(sun)
	if sm.convolved && sm.convolvedParams == sm.params && sm.convolvedSun == state {
		return
	}

	sky := metadata.NewTemporaryTarget(SkyTextureName)
	sm.renderer.RenderSkyToCubemap(sm.backend, sm.params, sun, sky)

	res := uint32(sm.params.Resolution)
	sm.backend.SetGlobalTexture("_SkySource", sky)
	sm.backend.SetGlobalTexture("_SkyConvolutionOutput", metadata.NewTemporaryTarget(SkyConvolvedName))
	sm.backend.DispatchCompute(KernelConvolveSky, math.DivideRoundUp(res, 8), math.DivideRoundUp(res, 8), 6)

	sm.convolved = true
	sm.convolvedParams = sm.params
	sm.convolvedSun = state
	sm.convolutions++
}

func (sm *SkyManager) SetGlobalSkyTexture() {
	sm.backend.SetGlobalTexture(SkyTextureName, metadata.NewTemporaryTarget(SkyConvolvedName))
}

// RenderSky draws the sky where depth is still at the far plane.
func (sm *SkyManager) RenderSky(camera *components.HDCamera, sun *scene.Light, colour, depth metadata.RenderTargetIdentifier) {
	if !sm.IsSkyValid() {
		return
	}
	renderer.SetRenderTarget(sm.backend, colour, depth, metadata.CLEAR_FLAG_NONE)
	sm.renderer.RenderSky(sm.backend, sm.params, camera, sun, colour)
}
