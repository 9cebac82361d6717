package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/hdrp/engine/core"
)

const (
	LightLoopTile    = "tile"
	LightLoopCluster = "cluster"
)

/** @brief Build-time pipeline switches. */
type PipelineSettings struct {
	/** @brief "tile" or "cluster". */
	LightLoop string `toml:"light_loop"`
	/** @brief Velocity is written by the gbuffer pass instead of its own pass. */
	VelocityInGBuffer bool   `toml:"velocity_in_gbuffer"`
	LogLevel          string `toml:"log_level"`
	/** @brief Workers used by the CPU light binning. */
	JobWorkers int `toml:"job_workers"`
	/** @brief Size of the transient buffer table. */
	MaxTransientBuffers int `toml:"max_transient_buffers"`
}

/**
 * @brief Debug and display toggles read once per frame.
 */
type DebugParameters struct {
	/** @brief 0 is off, any other value selects a material property to visualize. */
	DebugViewMaterial         int32 `toml:"debug_view_material"`
	DisplayOpaqueObjects      bool  `toml:"display_opaque_objects"`
	DisplayTransparentObjects bool  `toml:"display_transparent_objects"`
	UseForwardRenderingOnly   bool  `toml:"use_forward_rendering_only"`
	UseDepthPrepass           bool  `toml:"use_depth_prepass"`
	UseDistortion             bool  `toml:"use_distortion"`
}

// ShouldUseForwardRenderingOnly is true when either the flag or the
// wireframe override asks for it. Wireframe always wins.
func (d DebugParameters) ShouldUseForwardRenderingOnly(wireframe bool) bool {
	return d.UseForwardRenderingOnly || wireframe
}

type TextureSettings struct {
	SpotCookieSize        int `toml:"spot_cookie_size"`
	PointCookieSize       int `toml:"point_cookie_size"`
	ReflectionCubemapSize int `toml:"reflection_cubemap_size"`
	ReflectionProbeCount  int `toml:"reflection_probe_count"`
}

type LightLoopSettings struct {
	TileSize             int `toml:"tile_size"`
	ClusterDepthSlices   int `toml:"cluster_depth_slices"`
	MaxLightsPerTile     int `toml:"max_lights_per_tile"`
	MaxPunctualLights    int `toml:"max_punctual_lights"`
	MaxDirectionalLights int `toml:"max_directional_lights"`
}

type ShadowAtlasSettings struct {
	AtlasSize     int `toml:"atlas_size"`
	ShadowMapSize int `toml:"shadow_map_size"`
	/** @brief Upper bound on shadow slices packed per frame. */
	MaxShadowSlices int `toml:"max_shadow_slices"`
}

/**
 * @brief Per-scene settings shared by every camera. When absent the
 * shadow defaults are used.
 */
type CommonSettings struct {
	MaxShadowDistance            float32    `toml:"max_shadow_distance"`
	DirectionalLightCascadeCount int        `toml:"directional_light_cascade_count"`
	DirectionalLightCascades     [3]float32 `toml:"directional_light_cascades"`
	/** @brief Name of the global post-process stack, empty for none. */
	PostProcess string `toml:"post_process,omitempty"`
}

type Settings struct {
	Pipeline  PipelineSettings    `toml:"pipeline"`
	Debug     DebugParameters     `toml:"debug"`
	Texture   TextureSettings     `toml:"texture"`
	LightLoop LightLoopSettings   `toml:"light_loop"`
	Shadow    ShadowAtlasSettings `toml:"shadow"`
	Common    *CommonSettings     `toml:"common,omitempty"`
}

func Default() *Settings {
	return &Settings{
		Pipeline: PipelineSettings{
			LightLoop:           LightLoopTile,
			VelocityInGBuffer:   true,
			LogLevel:            "info",
			JobWorkers:          4,
			MaxTransientBuffers: 32,
		},
		Debug: DebugParameters{
			DisplayOpaqueObjects:      true,
			DisplayTransparentObjects: true,
			UseDistortion:             true,
		},
		Texture: TextureSettings{
			SpotCookieSize:        128,
			PointCookieSize:       512,
			ReflectionCubemapSize: 128,
			ReflectionProbeCount:  64,
		},
		LightLoop: LightLoopSettings{
			TileSize:             16,
			ClusterDepthSlices:   32,
			MaxLightsPerTile:     256,
			MaxPunctualLights:    512,
			MaxDirectionalLights: 4,
		},
		Shadow: ShadowAtlasSettings{
			AtlasSize:       4096,
			ShadowMapSize:   512,
			MaxShadowSlices: 64,
		},
	}
}

// Parse decodes TOML over the defaults, so a file only needs the keys it changes.
// Unknown keys are rejected.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parse settings: %w: %s", core.ErrConfiguration, err.Error())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode writes the settings as TOML.
func (s *Settings) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(s)
}

func (s *Settings) Validate() error {
	invalid := func(field string, format string, args ...interface{}) error {
		return fmt.Errorf("%s: %s: %w", field, fmt.Sprintf(format, args...), core.ErrConfiguration)
	}

	switch s.Pipeline.LightLoop {
	case LightLoopTile, LightLoopCluster:
	default:
		return invalid("pipeline.light_loop", "unknown light loop '%s'", s.Pipeline.LightLoop)
	}
	if s.Pipeline.JobWorkers < 1 {
		return invalid("pipeline.job_workers", "must be at least 1, got %d", s.Pipeline.JobWorkers)
	}
	if s.Pipeline.MaxTransientBuffers < 1 {
		return invalid("pipeline.max_transient_buffers", "must be at least 1, got %d", s.Pipeline.MaxTransientBuffers)
	}
	if s.Debug.DebugViewMaterial < 0 {
		return invalid("debug.debug_view_material", "negative selector %d", s.Debug.DebugViewMaterial)
	}

	ll := s.LightLoop
	if ll.TileSize < 4 || ll.TileSize&(ll.TileSize-1) != 0 {
		return invalid("light_loop.tile_size", "must be a power of two >= 4, got %d", ll.TileSize)
	}
	if ll.ClusterDepthSlices < 1 || ll.ClusterDepthSlices > 64 {
		return invalid("light_loop.cluster_depth_slices", "must be in [1, 64], got %d", ll.ClusterDepthSlices)
	}
	if ll.MaxLightsPerTile < 1 || ll.MaxPunctualLights < 1 || ll.MaxDirectionalLights < 1 {
		return invalid("light_loop", "light caps must be positive")
	}

	t := s.Texture
	if t.SpotCookieSize < 1 || t.PointCookieSize < 1 || t.ReflectionCubemapSize < 1 || t.ReflectionProbeCount < 1 {
		return invalid("texture", "sizes must be positive")
	}

	sh := s.Shadow
	if sh.ShadowMapSize < 1 || sh.AtlasSize < sh.ShadowMapSize {
		return invalid("shadow", "atlas %d cannot hold a %d shadow map", sh.AtlasSize, sh.ShadowMapSize)
	}
	if sh.MaxShadowSlices < 1 {
		return invalid("shadow.max_shadow_slices", "must be positive, got %d", sh.MaxShadowSlices)
	}

	if c := s.Common; c != nil {
		if c.MaxShadowDistance <= 0 {
			return invalid("common.max_shadow_distance", "must be positive, got %f", c.MaxShadowDistance)
		}
		prev := float32(0)
		for i, r := range c.DirectionalLightCascades {
			if r <= prev || r >= 1 {
				return invalid("common.directional_light_cascades", "ratio %d (%f) must increase inside (0, 1)", i, r)
			}
			prev = r
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	if s.Common != nil {
		common := *s.Common
		c.Common = &common
	}
	return &c
}
