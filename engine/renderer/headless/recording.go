package headless

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

// Command is one recorded backend call.
type Command interface {
	isCommand()
}

func (*GetTemporary) isCommand()     {}
func (*ReleaseTemporary) isCommand() {}
func (*CreateBuffer) isCommand()     {}
func (*ReleaseBuffer) isCommand()    {}
func (*UploadBuffer) isCommand()     {}
func (*SetupCamera) isCommand()      {}
func (*SetRenderTarget) isCommand()  {}
func (*SetGlobal) isCommand()        {}
func (*DrawRenderers) isCommand()    {}
func (*Blit) isCommand()             {}
func (*Dispatch) isCommand()         {}
func (*BeginSample) isCommand()      {}
func (*EndSample) isCommand()        {}

type GetTemporary struct {
	Desc metadata.TextureDesc
}

type ReleaseTemporary struct {
	Name string
}

type CreateBuffer struct {
	Handle metadata.ComputeBufferHandle
	Name   string
	Count  int
	Stride int
}

type ReleaseBuffer struct {
	Handle metadata.ComputeBufferHandle
}

type UploadBuffer struct {
	Handle metadata.ComputeBufferHandle
	Size   int
}

type SetupCamera struct {
	Camera     string
	ScreenSize math.Vec4
}

type SetRenderTarget struct {
	Colors      []metadata.RenderTargetIdentifier
	Depth       metadata.RenderTargetIdentifier
	Clear       metadata.ClearFlag
	ClearColour math.Vec4
}

type SetGlobal struct {
	Name  string
	Value interface{}
}

type DrawRenderers struct {
	Settings  metadata.DrawSettings
	Renderers []string
}

type Blit struct {
	Src      metadata.RenderTargetIdentifier
	Dst      metadata.RenderTargetIdentifier
	Material string
	Pass     int
}

type Dispatch struct {
	Kernel string
	Groups [3]uint32
}

type BeginSample struct {
	Name string
}

type EndSample struct {
	Name string
}

// Recording is everything submitted in one Submit call.
type Recording struct {
	ID       uuid.UUID
	Commands []Command
}

// Samples returns the names of the top-level profiling samples, in order.
func (r *Recording) Samples() []string {
	var out []string
	depth := 0
	for _, c := range r.Commands {
		switch c := c.(type) {
		case *BeginSample:
			if depth == 0 {
				out = append(out, c.Name)
			}
			depth++
		case *EndSample:
			depth--
		}
	}
	return out
}

// Draws sums the renderers drawn with passName.
func (r *Recording) Draws(passName string) int {
	n := 0
	for _, c := range r.Commands {
		if d, ok := c.(*DrawRenderers); ok && d.Settings.PassName == passName {
			n += len(d.Renderers)
		}
	}
	return n
}

// Dispatches returns the kernels dispatched, in order.
func (r *Recording) Dispatches() []string {
	var out []string
	for _, c := range r.Commands {
		if d, ok := c.(*Dispatch); ok {
			out = append(out, d.Kernel)
		}
	}
	return out
}
