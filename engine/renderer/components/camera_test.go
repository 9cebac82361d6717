package components

import (
	"testing"

	"github.com/spaghettifunk/hdrp/engine/math"
)

func TestHDCameraScreenSize(t *testing.T) {
	cam := NewCamera("main", 1920, 1080)
	hd := NewHDCamera(cam)
	want := math.NewVec4(1920, 1080, 1.0/1920, 1.0/1080)
	if !hd.ScreenSize.Compare(want, 1e-7) {
		t.Errorf("expected screen size %v, got %v", want, hd.ScreenSize)
	}
	if !hd.HasValidViewVolume() {
		t.Error("expected a valid view volume")
	}
	if hd.Width() != 1920 || hd.Height() != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", hd.Width(), hd.Height())
	}
}

func TestHDCameraInverseViewProjection(t *testing.T) {
	cam := NewCamera("main", 800, 600)
	cam.SetPosition(math.NewVec3(1, 2, 10))
	cam.Yaw(0.3)
	hd := NewHDCamera(cam)
	id := hd.ViewProjectionMatrix.Mul(hd.InvViewProjectionMatrix)
	ref := math.NewMat4Identity()
	for i := range id.Data {
		if math.Abs(id.Data[i]-ref.Data[i]) > 1e-3 {
			t.Fatalf("expected identity at %d, got %f", i, id.Data[i])
		}
	}
}

func TestHDCameraZeroSizeIsInvalid(t *testing.T) {
	cam := NewCamera("minimized", 0, 0)
	if NewHDCamera(cam).HasValidViewVolume() {
		t.Error("expected zero-sized camera to have no view volume")
	}
	cam = NewCamera("flat", 640, 480)
	cam.NearClip, cam.FarClip = 10, 1
	if NewHDCamera(cam).HasValidViewVolume() {
		t.Error("expected inverted clip planes to be invalid")
	}
}

func TestProjectPointInFront(t *testing.T) {
	hd := NewHDCamera(NewCamera("main", 640, 480))
	ndc, ok := hd.ViewToNDC(math.NewVec3(0, 0, -5))
	if !ok {
		t.Fatal("expected point in front of the camera to project")
	}
	if math.Abs(ndc.X) > 1e-5 || math.Abs(ndc.Y) > 1e-5 {
		t.Errorf("expected centre of screen, got %v", ndc)
	}
	if _, ok := hd.ViewToNDC(math.NewVec3(0, 0, 5)); ok {
		t.Error("expected point behind the camera to be rejected")
	}
}
