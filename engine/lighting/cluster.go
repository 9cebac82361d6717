package lighting

import (
	"fmt"

	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
)

const KernelClusterLightListGen = "ClusterLightListGen"

/**
 * @brief Bins lights into screen tiles times logarithmic depth slices.
 * Transparent surfaces can use the same lists since no depth bound is needed.
 */
type ClusterLightLoop struct {
	*lightLoop
}

func NewClusterLightLoop(config *LightLoopConfig, backend renderer.RendererBackend, jobs JobSubmitter) (*ClusterLightLoop, error) {
	base, err := newLightLoop("NewClusterLightLoop", config, backend, jobs)
	if err != nil {
		return nil, err
	}
	slices := config.Settings.ClusterDepthSlices
	if slices < 1 {
		return nil, fmt.Errorf("func NewClusterLightLoop - cluster depth slices must be positive: %w", core.ErrConfiguration)
	}
	base.buildKernel = KernelClusterLightListGen
	base.depthSlices = slices
	base.slicer = func(camera *components.HDCamera) depthSlicer {
		return logSlicer(camera.NearClip, camera.FarClip, slices)
	}
	return &ClusterLightLoop{lightLoop: base}, nil
}

// PushGlobalParams adds the slice mapping the shaders need to find their cluster.
func (c *ClusterLightLoop) PushGlobalParams(camera *components.HDCamera) {
	c.lightLoop.PushGlobalParams(camera)
	scale := float32(c.depthSlices) / math.Log2(camera.FarClip/camera.NearClip)
	c.backend.SetGlobalFloat("_ClusterNear", camera.NearClip)
	c.backend.SetGlobalFloat("_ClusterLogScale", scale)
}
