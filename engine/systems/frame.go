package systems

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/shadow"
)

type Pass uint8

const (
	PassCull Pass = iota
	PassResize
	PassSetupCamera
	PassInitAndClear
	PassUpdateSkyEnvironment
	PassDepthPrepass
	PassForwardOnlyOpaqueDepthPrepass
	PassGBuffer
	PassDebugViewMaterial
	PassDebugViewGBuffer
	PassDebugViewTransparent
	PassDebugBlit
	PassShadow
	PassRestoreCamera
	PassPrepareLights
	PassBuildLightLists
	PassPushGlobalParams
	PassDeferredLighting
	PassForwardOpaque
	PassForwardOnlyOpaque
	PassSky
	PassForwardTransparent
	PassVelocity
	PassDistortion
	PassFinal
	PassSceneViewDepth
	PassSubmit
	passCount
)

var passNames = [passCount]string{
	"Cull",
	"Resize",
	"SetupCamera",
	"InitAndClear",
	"UpdateSkyEnvironment",
	"DepthPrepass",
	"ForwardOnlyOpaqueDepthPrepass",
	"GBuffer",
	"DebugViewMaterial",
	"DebugViewGBuffer",
	"DebugViewTransparent",
	"DebugBlit",
	"Shadow",
	"RestoreCamera",
	"PrepareLights",
	"BuildLightLists",
	"PushGlobalParams",
	"DeferredLighting",
	"ForwardOpaque",
	"ForwardOnlyOpaque",
	"Sky",
	"ForwardTransparent",
	"Velocity",
	"Distortion",
	"Final",
	"SceneViewDepth",
	"Submit",
}

func (p Pass) String() string {
	if p >= passCount {
		return "Unknown"
	}
	return passNames[p]
}

type SkipReason uint8

const (
	SkipNone SkipReason = iota
	SkipForwardOnly
	SkipNotForwardOnly
	SkipDepthPrepassDisabled
	SkipNoForwardOnlyOpaque
	SkipVelocityInGBuffer
	SkipDistortionDisabled
	SkipDebugView
	SkipResolutionUnchanged
	SkipNotSceneView
	SkipSkyInvalid
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipForwardOnly:
		return "forward only"
	case SkipNotForwardOnly:
		return "deferred"
	case SkipDepthPrepassDisabled:
		return "depth prepass disabled"
	case SkipNoForwardOnlyOpaque:
		return "no forward only opaque renderers"
	case SkipVelocityInGBuffer:
		return "velocity in gbuffer"
	case SkipDistortionDisabled:
		return "distortion disabled"
	case SkipDebugView:
		return "debug view"
	case SkipResolutionUnchanged:
		return "resolution unchanged"
	case SkipNotSceneView:
		return "not a scene view"
	case SkipSkyInvalid:
		return "no valid sky"
	}
	return "unknown"
}

/**
 * @brief Receives every pass decision of the orchestrator, in order.
 * Calls come from the rendering goroutine only.
 */
type PassTracer interface {
	BeginCamera(frame uint64, camera *components.Camera)
	Executed(pass Pass)
	Skipped(pass Pass, reason SkipReason)
	CameraSkipped(camera *components.Camera, err error)
}

type nopTracer struct{}

func (nopTracer) BeginCamera(uint64, *components.Camera) {}
func (nopTracer) Executed(Pass) {}
func (nopTracer) Skipped(Pass, SkipReason) {}
func (nopTracer) CameraSkipped(*components.Camera, error) {}

type PassEvent struct {
	Frame    uint64
	Camera   string
	Pass     Pass
	Executed bool
	Reason   SkipReason
}

// PassRecorder is a PassTracer keeping every event.
type PassRecorder struct {
	mu             sync.Mutex
	frame          uint64
	camera         string
	Events         []PassEvent
	SkippedCameras []string
}

func NewPassRecorder() *PassRecorder {
	return &PassRecorder{}
}

func (pr *PassRecorder) BeginCamera(frame uint64, camera *components.Camera) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.frame, pr.camera = frame, camera.Name
}

func (pr *PassRecorder) Executed(pass Pass) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.Events = append(pr.Events, PassEvent{Frame: pr.frame, Camera: pr.camera, Pass: pass, Executed: true})
}

func (pr *PassRecorder) Skipped(pass Pass, reason SkipReason) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.Events = append(pr.Events, PassEvent{Frame: pr.frame, Camera: pr.camera, Pass: pass, Reason: reason})
}

func (pr *PassRecorder) CameraSkipped(camera *components.Camera, err error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.SkippedCameras = append(pr.SkippedCameras, camera.Name)
}

// ExecutedPasses returns the executed passes of one camera, in order.
func (pr *PassRecorder) ExecutedPasses(camera string) []Pass {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	var out []Pass
	for _, e := range pr.Events {
		if e.Camera == camera && e.Executed {
			out = append(out, e.Pass)
		}
	}
	return out
}

// SkipReasons returns every reason pass was skipped for, in order.
func (pr *PassRecorder) SkipReasons(camera string, pass Pass) []SkipReason {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	var out []SkipReason
	for _, e := range pr.Events {
		if e.Camera == camera && e.Pass == pass && !e.Executed {
			out = append(out, e.Reason)
		}
	}
	return out
}

func (pr *PassRecorder) Reset() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.Events = nil
	pr.SkippedCameras = nil
}

/**
 * @brief Everything a frame reads, captured once at its start so
 * settings reloads never land mid-frame.
 */
type FrameContext struct {
	ID      uuid.UUID
	Number  uint64
	Cameras []*components.Camera
	/** @brief Copy of the debug parameters for this frame. */
	Debug     config.DebugParameters
	Wireframe bool
	Shadow    shadow.ShadowSettings
	/** @brief Global post-process stack, empty for none. */
	PostProcess string
}

func (f *FrameContext) ForwardOnly() bool {
	return f.Debug.ShouldUseForwardRenderingOnly(f.Wireframe)
}

func (f *FrameContext) DebugView() bool {
	return f.Debug.DebugViewMaterial != 0
}

/** @brief The resolution the light loop buffers were last allocated for. */
type ResolutionState struct {
	Width  int
	Height int
}

func (r ResolutionState) Allocated() bool {
	return r.Width > 0 && r.Height > 0
}

func (r ResolutionState) Changed(width, height int) bool {
	return r.Width != width || r.Height != height
}

/** @brief Counters of one rendered frame. */
type FrameStats struct {
	Frame          uint64
	Cameras        int
	SkippedCameras int
	Passes         uint32
	Skips          uint32
	Draws          uint32
	Submits        int
	ElapsedSeconds float64
}
