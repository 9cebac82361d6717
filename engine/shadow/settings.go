package shadow

import (
	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/math"
)

const (
	DEFAULT_MAX_SHADOW_DISTANCE float32 = 1000.0
	DEFAULT_CASCADE_COUNT       int     = 4
	MAX_CASCADE_COUNT           int     = 4
)

var DefaultCascadeSplits = [3]float32{0.05, 0.2, 0.3}

/**
 * @brief Shadow parameters of the current frame, recomputed before any
 * camera is processed.
 */
type ShadowSettings struct {
	MaxShadowDistance            float32
	DirectionalLightCascadeCount int
	/** @brief Split ratios of MaxShadowDistance for the first three cascades. */
	DirectionalLightCascades [3]float32
}

func DefaultShadowSettings() ShadowSettings {
	return ShadowSettings{
		MaxShadowDistance:            DEFAULT_MAX_SHADOW_DISTANCE,
		DirectionalLightCascadeCount: DEFAULT_CASCADE_COUNT,
		DirectionalLightCascades:     DefaultCascadeSplits,
	}
}

// NewShadowSettings uses the common settings when present, the defaults otherwise.
func NewShadowSettings(common *config.CommonSettings) ShadowSettings {
	if common == nil {
		return DefaultShadowSettings()
	}
	return ShadowSettings{
		MaxShadowDistance:            common.MaxShadowDistance,
		DirectionalLightCascadeCount: math.Clamp(common.DirectionalLightCascadeCount, 1, MAX_CASCADE_COUNT),
		DirectionalLightCascades:     common.DirectionalLightCascades,
	}
}

func (s ShadowSettings) CascadeCount() int {
	return math.Clamp(s.DirectionalLightCascadeCount, 1, MAX_CASCADE_COUNT)
}

// CascadeSplits returns the far distance of every cascade. The last cascade
// always ends at the shadow distance.
func (s ShadowSettings) CascadeSplits(shadowDistance float32) []float32 {
	count := s.CascadeCount()
	splits := make([]float32, count)
	for i := 0; i < count-1; i++ {
		splits[i] = s.DirectionalLightCascades[i] * shadowDistance
	}
	splits[count-1] = shadowDistance
	return splits
}
