package lighting

import (
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
)

const KernelTileLightListGen = "TileLightListGen"

// TileLightLoop bins lights into 2D screen tiles bounded by the depth range of each tile.
type TileLightLoop struct {
	*lightLoop
}

func NewTileLightLoop(config *LightLoopConfig, backend renderer.RendererBackend, jobs JobSubmitter) (*TileLightLoop, error) {
	base, err := newLightLoop("NewTileLightLoop", config, backend, jobs)
	if err != nil {
		return nil, err
	}
	base.buildKernel = KernelTileLightListGen
	base.depthSlices = 1
	base.slicer = func(*components.HDCamera) depthSlicer {
		return singleSlice
	}
	return &TileLightLoop{lightLoop: base}, nil
}
