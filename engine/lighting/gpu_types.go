package lighting

import (
	"encoding/binary"
	m "math"

	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/scene"
)

const (
	GPU_LIGHT_TYPE_DIRECTIONAL uint32 = 0
	GPU_LIGHT_TYPE_POINT       uint32 = 1
	GPU_LIGHT_TYPE_SPOT        uint32 = 2
)

// GPULightSize is the std430 stride of GPULight.
const GPULightSize = 64

/**
 * @brief GPU layout of one light, 64 bytes std430.
 *
 *	vec3 position     offset  0
 *	u32  light_type   offset 12
 *	vec3 color        offset 16
 *	f32  intensity    offset 28
 *	vec3 direction    offset 32
 *	f32  range        offset 44
 *	f32  inner_cone   offset 48 (cosine)
 *	f32  outer_cone   offset 52 (cosine)
 *	i32  shadow_index offset 56, -1 when unshadowed
 *	u32  _pad         offset 60
 */
type GPULight struct {
	Position    [3]float32
	LightType   uint32
	Color       [3]float32
	Intensity   float32
	Direction   [3]float32
	Range       float32
	InnerCone   float32
	OuterCone   float32
	ShadowIndex int32
}

func NewGPULight(l *scene.Light, shadowIndex int) GPULight {
	g := GPULight{
		Position:    [3]float32{l.Position.X, l.Position.Y, l.Position.Z},
		Color:       [3]float32{l.Color.X, l.Color.Y, l.Color.Z},
		Intensity:   l.Intensity,
		Range:       l.Range,
		ShadowIndex: int32(shadowIndex),
	}
	dir := l.Direction.Normalize()
	g.Direction = [3]float32{dir.X, dir.Y, dir.Z}

	switch l.Type {
	case scene.LightTypeDirectional:
		g.LightType = GPU_LIGHT_TYPE_DIRECTIONAL
	case scene.LightTypePoint:
		g.LightType = GPU_LIGHT_TYPE_POINT
	case scene.LightTypeSpot:
		g.LightType = GPU_LIGHT_TYPE_SPOT
		inner := l.InnerSpotAngle
		if inner <= 0 || inner > l.SpotAngle {
			inner = l.SpotAngle
		}
		g.OuterCone = float32(m.Cos(float64(math.DegToRad(l.SpotAngle * 0.5))))
		g.InnerCone = float32(m.Cos(float64(math.DegToRad(inner * 0.5))))
	}
	return g
}

func putFloat(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, m.Float32bits(v))
}

// Marshal serializes the light little-endian, ready for upload.
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.marshalInto(buf)
	return buf
}

func (g *GPULight) marshalInto(buf []byte) {
	putFloat(buf[0:4], g.Position[0])
	putFloat(buf[4:8], g.Position[1])
	putFloat(buf[8:12], g.Position[2])
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putFloat(buf[16:20], g.Color[0])
	putFloat(buf[20:24], g.Color[1])
	putFloat(buf[24:28], g.Color[2])
	putFloat(buf[28:32], g.Intensity)
	putFloat(buf[32:36], g.Direction[0])
	putFloat(buf[36:40], g.Direction[1])
	putFloat(buf[40:44], g.Direction[2])
	putFloat(buf[44:48], g.Range)
	putFloat(buf[48:52], g.InnerCone)
	putFloat(buf[52:56], g.OuterCone)
	binary.LittleEndian.PutUint32(buf[56:60], uint32(g.ShadowIndex))
	binary.LittleEndian.PutUint32(buf[60:64], 0)
}

// MarshalLights packs lights back to back.
func MarshalLights(lights []GPULight) []byte {
	buf := make([]byte, len(lights)*GPULightSize)
	for i := range lights {
		lights[i].marshalInto(buf[i*GPULightSize : (i+1)*GPULightSize])
	}
	return buf
}

// MarshalUint32s packs light indices or counts for upload.
func MarshalUint32s(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
