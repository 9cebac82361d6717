package postprocess

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

const (
	pingName = "_PostProcessPing"
	pongName = "_PostProcessPong"
)

/** @brief A single full screen effect reading src and writing dst. */
type Effect interface {
	Name() string
	Render(backend renderer.RendererBackend, camera *components.HDCamera, src, dst metadata.RenderTargetIdentifier)
}

/**
 * @brief An ordered chain of effects. Intermediate results ping-pong
 * between two temporaries; the last effect writes the destination.
 */
type Stack struct {
	Name    string
	Enabled bool
	Effects []Effect
}

func NewStack(name string, effects ...Effect) *Stack {
	return &Stack{Name: name, Enabled: true, Effects: effects}
}

// Active is false for a nil, disabled or empty stack.
func (s *Stack) Active() bool {
	return s != nil && s.Enabled && len(s.Effects) > 0
}

func (s *Stack) Render(backend renderer.RendererBackend, camera *components.HDCamera, src, dst metadata.RenderTargetIdentifier) error {
	if len(s.Effects) == 1 {
		s.Effects[0].Render(backend, camera, src, dst)
		return nil
	}

	temps := []string{pingName, pongName}
	for _, name := range temps {
		desc := metadata.TextureDesc{
			Name:       name,
			Width:      camera.Width(),
			Height:     camera.Height(),
			Format:     metadata.TEXTURE_FORMAT_ARGB_HALF,
			ColorSpace: metadata.COLOR_SPACE_LINEAR,
			Filter:     metadata.FILTER_MODE_BILINEAR,
		}
		if err := backend.GetTemporary(desc); err != nil {
			backend.ReleaseTemporary(pingName)
			return fmt.Errorf("post-process stack %s: %s: %w", s.Name, err.Error(), core.ErrResourceExhausted)
		}
	}
	defer func() {
		for _, name := range temps {
			backend.ReleaseTemporary(name)
		}
	}()

	in := src
	for i, effect := range s.Effects {
		out := dst
		if i < len(s.Effects)-1 {
			out = metadata.NewTemporaryTarget(temps[i%2])
		}
		effect.Render(backend, camera, in, out)
		in = out
	}
	return nil
}

// Exposure scales the colour by 2^EV.
type Exposure struct {
	EV float32
}

func (e *Exposure) Name() string {
	return "exposure"
}

func (e *Exposure) Render(backend renderer.RendererBackend, camera *components.HDCamera, src, dst metadata.RenderTargetIdentifier) {
	backend.SetGlobalFloat("_Exposure", e.EV)
	backend.Blit(src, dst, "Exposure", 0)
}

type TonemapOperator int32

const (
	TONEMAP_NONE TonemapOperator = iota
	TONEMAP_REINHARD
	TONEMAP_ACES
)

type Tonemap struct {
	Operator   TonemapOperator
	WhitePoint float32
}

func (t *Tonemap) Name() string {
	return "tonemap"
}

func (t *Tonemap) Render(backend renderer.RendererBackend, camera *components.HDCamera, src, dst metadata.RenderTargetIdentifier) {
	backend.SetGlobalInt("_TonemapOperator", int32(t.Operator))
	backend.SetGlobalFloat("_WhitePoint", t.WhitePoint)
	backend.Blit(src, dst, "Tonemapping", int(t.Operator))
}
