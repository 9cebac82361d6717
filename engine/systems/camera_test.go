package systems

import (
	"testing"

	"github.com/spaghettifunk/hdrp/engine/renderer/components"
)

func TestCameraSystemAcquireRelease(t *testing.T) {
	if _, err := NewCameraSystem(&CameraSystemConfig{}); err == nil {
		t.Fatalf("expected an error for a zero camera count")
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cs.Resize(800, 600)

	def, _ := cs.Acquire(components.DEFAULT_CAMERA_NAME)
	if def != cs.GetDefault() {
		t.Errorf("expected the default camera")
	}
	editor, err := cs.Acquire("editor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if editor.PixelWidth != 800 || editor.PixelHeight != 600 {
		t.Errorf("expected a new camera at 800x600, got %dx%d", editor.PixelWidth, editor.PixelHeight)
	}
	again, _ := cs.Acquire("editor")
	if again != editor {
		t.Errorf("expected the same camera for the same name")
	}
	if _, err := cs.Acquire("preview"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cs.Acquire("third"); err == nil {
		t.Errorf("expected the system to be full")
	}

	cams := cs.Cameras()
	if len(cams) != 3 || cams[0] != def || cams[1] != editor || cams[2].Name != "preview" {
		t.Errorf("expected [default editor preview], got %d cameras", len(cams))
	}

	// two references, the first release keeps it
	cs.Release("editor")
	if len(cs.Cameras()) != 3 {
		t.Errorf("expected editor to survive one release")
	}
	cs.Release("editor")
	if len(cs.Cameras()) != 2 {
		t.Errorf("expected editor to be dropped, got %d cameras", len(cs.Cameras()))
	}
	cs.Release(components.DEFAULT_CAMERA_NAME)
	if cs.Cameras()[0] != def {
		t.Errorf("expected the default camera to stay")
	}
}
