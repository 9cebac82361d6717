package components

import (
	"github.com/spaghettifunk/hdrp/engine/math"
)

// HDCamera is the per-frame snapshot of a camera that every pass reads.
// It is built once per camera per frame and never modified afterwards.
type HDCamera struct {
	Camera *Camera
	// (width, height, 1/width, 1/height)
	ScreenSize              math.Vec4
	ViewMatrix              math.Mat4
	ProjectionMatrix        math.Mat4
	ViewProjectionMatrix    math.Mat4
	InvViewProjectionMatrix math.Mat4
	Frustum                 math.Frustum
	NearClip                float32
	FarClip                 float32
	validViewVolume         bool
}

func NewHDCamera(camera *Camera) HDCamera {
	w, h := float32(camera.PixelWidth), float32(camera.PixelHeight)
	hd := HDCamera{
		Camera:           camera,
		ViewMatrix:       camera.GetView(),
		ProjectionMatrix: camera.GetProjection(),
		NearClip:         camera.NearClip,
		FarClip:          camera.FarClip,
	}
	if w > 0 && h > 0 {
		hd.ScreenSize = math.NewVec4(w, h, 1.0/w, 1.0/h)
	}
	hd.ViewProjectionMatrix = hd.ViewMatrix.Mul(hd.ProjectionMatrix)
	hd.InvViewProjectionMatrix = hd.ViewProjectionMatrix.Inverse()
	hd.Frustum = math.NewFrustumFromMatrix(hd.ViewProjectionMatrix)

	hd.validViewVolume = w > 0 && h > 0 &&
		camera.NearClip > 0 && camera.FarClip > camera.NearClip &&
		hd.ViewProjectionMatrix.Invertible() && hd.Frustum.Valid()
	return hd
}

func (h HDCamera) Width() int {
	return int(h.ScreenSize.X)
}

func (h HDCamera) Height() int {
	return int(h.ScreenSize.Y)
}

// HasValidViewVolume is false for zero-sized targets and degenerate projections.
func (h HDCamera) HasValidViewVolume() bool {
	return h.validViewVolume
}

// WorldToView transforms a world-space point into view space (camera looks down -Z).
func (h HDCamera) WorldToView(p math.Vec3) math.Vec3 {
	return p.Transform(h.ViewMatrix)
}

// ViewToNDC projects a view-space point. ok is false when the point is not in front of the camera.
func (h HDCamera) ViewToNDC(p math.Vec3) (ndc math.Vec3, ok bool) {
	clip := p.ToVec4(1.0).Transform(h.ProjectionMatrix)
	if clip.W <= 0 {
		return math.Vec3{}, false
	}
	return math.NewVec3(clip.X/clip.W, clip.Y/clip.W, clip.Z/clip.W), true
}
