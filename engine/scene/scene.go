package scene

import (
	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

// Renderer is a drawable object as the pipeline sees it: bounds, a queue
// and the set of shader passes its material implements.
type Renderer struct {
	Name        string
	Bounds      math.Extents3D
	Queue       metadata.RenderQueue
	Passes      []string
	CastShadows bool
}

func (r *Renderer) HasPass(name string) bool {
	for _, p := range r.Passes {
		if p == name {
			return true
		}
	}
	return false
}

type LightType uint8

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	}
	return "unknown"
}

type Light struct {
	Name      string
	Type      LightType
	Position  math.Vec3
	Direction math.Vec3
	Color     math.Vec3
	Intensity float32
	// Range is ignored for directional lights.
	Range float32
	// Outer and inner cone angles in degrees, spot lights only.
	SpotAngle      float32
	InnerSpotAngle float32
	CastShadows    bool
	Disabled       bool
}

// Luminance of the light colour scaled by its intensity.
func (l *Light) Luminance() float32 {
	return (0.2126*l.Color.X + 0.7152*l.Color.Y + 0.0722*l.Color.Z) * l.Intensity
}

// BoundingSphere of the light's influence; directional lights have none.
func (l *Light) BoundingSphere() math.Sphere {
	return math.Sphere{Center: l.Position, Radius: l.Range}
}

type Scene struct {
	Renderers []*Renderer
	Lights    []*Light
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) AddRenderer(r *Renderer) *Renderer {
	s.Renderers = append(s.Renderers, r)
	return r
}

func (s *Scene) AddLight(l *Light) *Light {
	s.Lights = append(s.Lights, l)
	return l
}
