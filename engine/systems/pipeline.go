package systems

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/containers"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/lighting"
	"github.com/spaghettifunk/hdrp/engine/material"
	"github.com/spaghettifunk/hdrp/engine/postprocess"
	"github.com/spaghettifunk/hdrp/engine/renderer"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
	"github.com/spaghettifunk/hdrp/engine/scene"
	"github.com/spaghettifunk/hdrp/engine/shadow"
	"github.com/spaghettifunk/hdrp/engine/sky"
)

const (
	CameraColorBufferName = "_CameraColorTexture"
	CameraDepthBufferName = "_CameraDepthTexture"
	DistortionBufferName  = "_DistortionTexture"

	debugViewMaterialGBuffer = "DebugViewMaterialGBuffer"
	defaultStatsHistory      = 120
)

// passes of the lighting path, traced as skipped when the debug view takes over
var lightingPasses = []Pass{
	PassShadow,
	PassRestoreCamera,
	PassPrepareLights,
	PassBuildLightLists,
	PassPushGlobalParams,
	PassDeferredLighting,
	PassForwardOpaque,
	PassForwardOnlyOpaque,
	PassSky,
	PassForwardTransparent,
	PassVelocity,
	PassDistortion,
	PassFinal,
}

/** @brief The configuration for the render pipeline. Fixed after Build. */
type RenderPipelineConfig struct {
	VelocityInGBuffer   bool
	MaxTransientBuffers uint32
	/** @brief Number of frames kept by History. */
	StatsHistory int
}

/**
 * @brief Per-camera frame orchestrator. Every camera goes through the
 * same fixed pass sequence; the debug view and forward-only mode are the
 * only branches.
 */
type RenderPipelineSystem struct {
	config   RenderPipelineConfig
	backend  renderer.RendererBackend
	settings config.Source

	culler     scene.Culler
	material   material.System
	lightLoop  lighting.LightLoop
	shadowPass *shadow.ShadowRenderPass
	sky        *sky.SkyManager
	finalPass  *postprocess.FinalPass
	tracer     PassTracer

	resources  *ResourceSystem
	gbuffer    *GBufferSystem
	colour     BufferHandle
	depth      BufferHandle
	velocity   BufferHandle
	distortion BufferHandle

	resolution  ResolutionState
	frameNumber uint64
	built       bool

	clock   *core.Clock
	metrics *core.FrameMetrics
	history *containers.RingQueue[FrameStats]
	stats   FrameStats
}

func NewRenderPipelineSystem(
	config *RenderPipelineConfig,
	backend renderer.RendererBackend,
	settings config.Source,
	culler scene.Culler,
	mat material.System,
	lightLoop lighting.LightLoop,
	shadowPass *shadow.ShadowRenderPass,
	skyManager *sky.SkyManager,
	finalPass *postprocess.FinalPass,
) (*RenderPipelineSystem, error) {
	if config == nil {
		return nil, fmt.Errorf("func NewRenderPipelineSystem - config cannot be nil")
	}
	if config.MaxTransientBuffers == 0 {
		return nil, fmt.Errorf("func NewRenderPipelineSystem - config.MaxTransientBuffers must be > 0")
	}
	if backend == nil || settings == nil || culler == nil || mat == nil || lightLoop == nil || shadowPass == nil || skyManager == nil || finalPass == nil {
		return nil, fmt.Errorf("func NewRenderPipelineSystem - all collaborators are required")
	}
	history := config.StatsHistory
	if history <= 0 {
		history = defaultStatsHistory
	}
	return &RenderPipelineSystem{
		config:     *config,
		backend:    backend,
		settings:   settings,
		culler:     culler,
		material:   mat,
		lightLoop:  lightLoop,
		shadowPass: shadowPass,
		sky:        skyManager,
		finalPass:  finalPass,
		tracer:     nopTracer{},
		colour:     InvalidBufferHandle,
		depth:      InvalidBufferHandle,
		velocity:   InvalidBufferHandle,
		distortion: InvalidBufferHandle,
		clock:      core.NewClock(),
		metrics:    core.NewFrameMetrics(),
		history:    containers.NewRingQueue[FrameStats](history),
	}, nil
}

// SetTracer installs t; nil restores the silent tracer.
func (rps *RenderPipelineSystem) SetTracer(t PassTracer) {
	if t == nil {
		t = nopTracer{}
	}
	rps.tracer = t
}

func (rps *RenderPipelineSystem) Build() error {
	if rps.built {
		return nil
	}
	if err := rps.build(); err != nil {
		rps.Cleanup()
		return fmt.Errorf("render pipeline build: %w", err)
	}
	rps.built = true
	core.LogInfo("render pipeline built with %d gbuffer slots (velocity in gbuffer=%t)", rps.gbuffer.SlotCount(), rps.config.VelocityInGBuffer)
	return nil
}

func (rps *RenderPipelineSystem) build() error {
	var err error
	if rps.resources, err = NewResourceSystem(&ResourceSystemConfig{MaxBufferCount: rps.config.MaxTransientBuffers}, rps.backend); err != nil {
		return err
	}
	if rps.gbuffer, err = NewGBufferSystem(rps.resources); err != nil {
		return err
	}
	if err = rps.gbuffer.Configure(rps.material.GBufferSlotCount(), rps.material.GBufferSlotFormats(), rps.config.VelocityInGBuffer); err != nil {
		return err
	}

	if rps.colour, err = rps.resources.DeclareBuffer(CameraColorBufferName, metadata.TEXTURE_FORMAT_ARGB_HALF, metadata.COLOR_SPACE_LINEAR, BufferOptions{EnableRandomWrite: true}); err != nil {
		return err
	}
	if rps.depth, err = rps.resources.DeclareBuffer(CameraDepthBufferName, metadata.TEXTURE_FORMAT_DEPTH, metadata.COLOR_SPACE_DEFAULT, BufferOptions{DepthBits: 24}); err != nil {
		return err
	}
	if !rps.config.VelocityInGBuffer {
		f := metadata.VelocityBufferFormat
		if rps.velocity, err = rps.resources.DeclareBuffer(VelocityBufferName, f.Format, f.ColorSpace, BufferOptions{}); err != nil {
			return err
		}
	}
	f := metadata.DistortionBufferFormat
	if rps.distortion, err = rps.resources.DeclareBuffer(DistortionBufferName, f.Format, f.ColorSpace, BufferOptions{}); err != nil {
		return err
	}

	if err = rps.material.Build(rps.backend); err != nil {
		return err
	}
	if err = rps.lightLoop.Build(rps.settings.Settings().Texture); err != nil {
		return err
	}
	if err = rps.shadowPass.Build(rps.backend); err != nil {
		return err
	}
	return rps.sky.Build()
}

func (rps *RenderPipelineSystem) Cleanup() {
	rps.lightLoop.Cleanup()
	rps.shadowPass.Cleanup(rps.backend)
	rps.sky.Cleanup()
	rps.material.Cleanup(rps.backend)
	if rps.resources != nil {
		rps.resources.Shutdown()
	}
	rps.resolution = ResolutionState{}
	rps.built = false
}

// BeginFrame snapshots the current settings for one frame over cameras.
func (rps *RenderPipelineSystem) BeginFrame(cameras []*components.Camera, wireframe bool) *FrameContext {
	rps.frameNumber++
	frame := &FrameContext{
		ID:        uuid.New(),
		Number:    rps.frameNumber,
		Cameras:   cameras,
		Wireframe: wireframe,
	}
	rps.updateCommonSettings(frame, rps.settings.Settings())
	return frame
}

func (rps *RenderPipelineSystem) updateCommonSettings(frame *FrameContext, s *config.Settings) {
	frame.Debug = s.Debug
	frame.Shadow = shadow.NewShadowSettings(s.Common)
	if s.Common != nil {
		frame.PostProcess = s.Common.PostProcess
	}
}

/**
 * @brief Renders every camera of the frame in order. A camera that cannot be
 * culled or fails mid-way is skipped; running out of resources aborts the
 * whole frame and returns the error.
 */
func (rps *RenderPipelineSystem) Render(frame *FrameContext) error {
	if !rps.built {
		return fmt.Errorf("render pipeline: %w", core.ErrNotInitialized)
	}
	rps.clock.Start()
	rps.stats = FrameStats{Frame: frame.Number, Cameras: len(frame.Cameras)}

	if !rps.material.IsInit() {
		rps.material.RenderInit(rps.backend)
		if err := rps.backend.Submit(); err != nil {
			return fmt.Errorf("material init: %w", err)
		}
	}

	rps.lightLoop.NewFrame()
	rps.shadowPass.UpdateSettings(frame.Shadow)
	rps.finalPass.SetGlobalStack(frame.PostProcess)

	for _, camera := range frame.Cameras {
		rps.tracer.BeginCamera(frame.Number, camera)
		err := rps.renderCamera(frame, camera)
		if err == nil {
			continue
		}
		rps.backend.Discard()
		if errors.Is(err, core.ErrResourceExhausted) {
			core.LogError("frame %d aborted on camera '%s': %s", frame.Number, camera.Name, err.Error())
			rps.endFrame()
			return err
		}
		core.LogWarn("camera '%s' skipped: %s", camera.Name, err.Error())
		rps.tracer.CameraSkipped(camera, err)
		rps.metrics.CameraSkipped()
		rps.stats.SkippedCameras++
	}
	rps.endFrame()
	return nil
}

func (rps *RenderPipelineSystem) endFrame() {
	rps.resources.EndFrame()
	rps.clock.Stop()
	rps.stats.ElapsedSeconds = rps.clock.Elapsed()
	rps.metrics.Update(rps.stats.ElapsedSeconds, rps.stats.Draws, rps.stats.Passes, rps.stats.Skips)
	rps.history.Push(rps.stats)
}

func (rps *RenderPipelineSystem) executed(pass Pass) {
	rps.stats.Passes++
	rps.tracer.Executed(pass)
}

func (rps *RenderPipelineSystem) skipped(pass Pass, reason SkipReason) {
	rps.stats.Skips++
	rps.tracer.Skipped(pass, reason)
}

func cullingError(camera *components.Camera, err error) error {
	if errors.Is(err, core.ErrCullingFailed) {
		return fmt.Errorf("camera '%s': %w", camera.Name, err)
	}
	return fmt.Errorf("camera '%s': %s: %w", camera.Name, err.Error(), core.ErrCullingFailed)
}

func (rps *RenderPipelineSystem) renderCamera(frame *FrameContext, camera *components.Camera) error {
	params, err := rps.culler.GetCullingParameters(camera)
	if err != nil {
		return cullingError(camera, err)
	}
	rps.shadowPass.UpdateCullingParameters(&params)
	cull, err := rps.culler.Cull(&params)
	if err != nil {
		return cullingError(camera, err)
	}
	rps.executed(PassCull)

	if err := rps.resize(camera); err != nil {
		return err
	}

	hdCamera := components.NewHDCamera(camera)
	rps.backend.SetupCameraProperties(&hdCamera)
	rps.executed(PassSetupCamera)

	if err := rps.initAndClearBuffers(frame, &hdCamera); err != nil {
		return err
	}

	rps.updateSkyEnvironment(&hdCamera)
	rps.renderDepthPrepass(frame, cull)
	rps.renderForwardOnlyOpaqueDepthPrepass(frame, cull)
	rps.renderGBuffer(frame, cull)

	if frame.DebugView() {
		rps.renderDebugViewMaterial(frame, cull)
		for _, p := range lightingPasses {
			rps.skipped(p, SkipDebugView)
		}
	} else if err := rps.renderLighting(frame, &hdCamera, cull); err != nil {
		return err
	}

	// bind depth for editor overlays
	if camera.Type == components.CameraTypeSceneView {
		renderer.SetRenderTarget(rps.backend, metadata.CameraTarget, rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
		rps.executed(PassSceneViewDepth)
	} else {
		rps.skipped(PassSceneViewDepth, SkipNotSceneView)
	}

	if err := rps.backend.Submit(); err != nil {
		return err
	}
	rps.executed(PassSubmit)
	rps.stats.Submits++
	return nil
}

func (rps *RenderPipelineSystem) renderLighting(frame *FrameContext, hdCamera *components.HDCamera, cull *scene.CullResults) error {
	shadows, err := rps.renderShadows(hdCamera, cull)
	if err != nil {
		return err
	}

	// the shadow pass leaves its own view and target bound
	rps.backend.SetupCameraProperties(hdCamera)
	rps.executed(PassRestoreCamera)

	if err := rps.buildLightList(frame, hdCamera, cull, shadows); err != nil {
		return err
	}

	rps.renderDeferredLighting(frame, hdCamera)
	rps.renderForward(frame, hdCamera, cull, true)
	rps.renderForwardOnlyOpaque(frame, hdCamera, cull)
	rps.renderSky(hdCamera)
	rps.renderForward(frame, hdCamera, cull, false)

	if err := rps.renderVelocity(frame, hdCamera, cull); err != nil {
		return err
	}
	if err := rps.renderDistortion(frame, hdCamera, cull); err != nil {
		return err
	}

	if err := rps.finalPass.Resolve(rps.backend, hdCamera, rps.colourTarget()); err != nil {
		return err
	}
	rps.executed(PassFinal)
	return nil
}

func (rps *RenderPipelineSystem) colourTarget() metadata.RenderTargetIdentifier {
	return rps.resources.Identifier(rps.colour)
}

func (rps *RenderPipelineSystem) depthTarget() metadata.RenderTargetIdentifier {
	return rps.resources.Identifier(rps.depth)
}

// resize re-allocates the light loop buffers when the camera size changed.
// The sky only re-allocates when its parameters changed.
func (rps *RenderPipelineSystem) resize(camera *components.Camera) error {
	if err := rps.sky.Resize(); err != nil {
		return err
	}
	w, h := camera.PixelWidth, camera.PixelHeight
	if !rps.resolution.Changed(w, h) && !rps.lightLoop.NeedsResize() {
		rps.skipped(PassResize, SkipResolutionUnchanged)
		return nil
	}
	if rps.resolution.Allocated() {
		rps.lightLoop.ReleaseResolutionDependentBuffers()
	}
	if err := rps.lightLoop.AllocResolutionDependentBuffers(w, h); err != nil {
		rps.resolution = ResolutionState{}
		return err
	}
	core.LogDebug("resized from %dx%d to %dx%d", rps.resolution.Width, rps.resolution.Height, w, h)
	rps.resolution = ResolutionState{Width: w, Height: h}
	rps.executed(PassResize)
	return nil
}

func (rps *RenderPipelineSystem) initAndClearBuffers(frame *FrameContext, hdCamera *components.HDCamera) error {
	defer renderer.ProfilingSample(rps.backend, "InitAndClearBuffer")()

	w, h := hdCamera.Width(), hdCamera.Height()
	if err := rps.resources.Allocate(rps.colour, w, h); err != nil {
		return err
	}
	if err := rps.resources.Allocate(rps.depth, w, h); err != nil {
		return err
	}
	if !frame.ForwardOnly() {
		if err := rps.gbuffer.Allocate(w, h); err != nil {
			return err
		}
	}

	colour, depth := rps.colourTarget(), rps.depthTarget()
	renderer.SetRenderTarget(rps.backend, colour, depth, metadata.CLEAR_FLAG_DEPTH)
	renderer.SetRenderTarget(rps.backend, colour, depth, metadata.CLEAR_FLAG_COLOR)
	if !frame.ForwardOnly() {
		renderer.SetRenderTargetMRT(rps.backend, rps.gbuffer.Identifiers(), depth, metadata.CLEAR_FLAG_COLOR)
	}
	rps.executed(PassInitAndClear)
	return nil
}

func (rps *RenderPipelineSystem) sunLight() *scene.Light {
	if vl, ok := rps.lightLoop.CurrentSunLight(); ok {
		return vl.Light
	}
	return nil
}

func (rps *RenderPipelineSystem) updateSkyEnvironment(hdCamera *components.HDCamera) {
	rps.sky.UpdateEnvironment(hdCamera, rps.sunLight())
	rps.executed(PassUpdateSkyEnvironment)
}

func (rps *RenderPipelineSystem) renderOpaqueList(frame *FrameContext, cull *scene.CullResults, passName string, configuration metadata.RendererConfiguration) {
	if !frame.Debug.DisplayOpaqueObjects {
		return
	}
	rps.drawList(cull, metadata.DrawSettings{
		PassName:      passName,
		Queue:         metadata.RenderQueueOpaque,
		Sorting:       metadata.SORT_COMMON_OPAQUE,
		Configuration: configuration,
	})
}

func (rps *RenderPipelineSystem) renderTransparentList(frame *FrameContext, cull *scene.CullResults, passName string, configuration metadata.RendererConfiguration) {
	if !frame.Debug.DisplayTransparentObjects {
		return
	}
	rps.drawList(cull, metadata.DrawSettings{
		PassName:      passName,
		Queue:         metadata.RenderQueueTransparent,
		Sorting:       metadata.SORT_COMMON_TRANSPARENT,
		Configuration: configuration,
	})
}

func (rps *RenderPipelineSystem) drawList(cull *scene.CullResults, settings metadata.DrawSettings) {
	list := cull.RenderList(settings)
	if len(list) == 0 {
		return
	}
	rps.stats.Draws += rps.backend.DrawRenderers(list, settings)
}

func (rps *RenderPipelineSystem) renderDepthPrepass(frame *FrameContext, cull *scene.CullResults) {
	// Forward only runs the prepass whatever UseDepthPrepass says: there is
	// no gbuffer, and the light list build needs depth.
	if !frame.Debug.UseDepthPrepass && !frame.ForwardOnly() {
		rps.skipped(PassDepthPrepass, SkipDepthPrepassDisabled)
		return
	}
	defer renderer.ProfilingSample(rps.backend, "Depth Prepass")()
	renderer.SetDepthTarget(rps.backend, rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
	rps.renderOpaqueList(frame, cull, metadata.PassNameDepthOnly, metadata.RENDERER_CONFIGURATION_NONE)
	rps.executed(PassDepthPrepass)
}

func (rps *RenderPipelineSystem) renderForwardOnlyOpaqueDepthPrepass(frame *FrameContext, cull *scene.CullResults) {
	if frame.ForwardOnly() && !frame.Debug.UseDepthPrepass {
		rps.skipped(PassForwardOnlyOpaqueDepthPrepass, SkipForwardOnly)
		return
	}
	if !cull.HasRenderers(metadata.RenderQueueOpaque, metadata.PassNameForwardOnlyOpaqueDepthOnly) {
		rps.skipped(PassForwardOnlyOpaqueDepthPrepass, SkipNoForwardOnlyOpaque)
		return
	}
	defer renderer.ProfilingSample(rps.backend, "Forward opaque depth")()
	renderer.SetDepthTarget(rps.backend, rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
	rps.renderOpaqueList(frame, cull, metadata.PassNameForwardOnlyOpaqueDepthOnly, metadata.RENDERER_CONFIGURATION_NONE)
	rps.executed(PassForwardOnlyOpaqueDepthPrepass)
}

func (rps *RenderPipelineSystem) renderGBuffer(frame *FrameContext, cull *scene.CullResults) {
	if frame.ForwardOnly() {
		rps.skipped(PassGBuffer, SkipForwardOnly)
		return
	}
	defer renderer.ProfilingSample(rps.backend, "GBuffer Pass")()
	renderer.SetRenderTargetMRT(rps.backend, rps.gbuffer.Identifiers(), rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
	rps.renderOpaqueList(frame, cull, metadata.PassNameGBuffer, metadata.RENDERER_CONFIGURATION_BAKED_LIGHTING)
	rps.executed(PassGBuffer)
}

func (rps *RenderPipelineSystem) renderDebugViewMaterial(frame *FrameContext, cull *scene.CullResults) {
	colour, depth := rps.colourTarget(), rps.depthTarget()

	func() {
		defer renderer.ProfilingSample(rps.backend, "DebugView Material Mode Pass")()
		renderer.SetRenderTarget(rps.backend, colour, depth, metadata.CLEAR_FLAG_ALL)
		rps.backend.SetGlobalInt("_DebugViewMaterial", frame.Debug.DebugViewMaterial)
		rps.renderOpaqueList(frame, cull, metadata.PassNameDebugViewMaterial, metadata.RENDERER_CONFIGURATION_NONE)
	}()
	rps.executed(PassDebugViewMaterial)

	if frame.ForwardOnly() {
		rps.skipped(PassDebugViewGBuffer, SkipForwardOnly)
	} else {
		for _, id := range rps.gbuffer.Identifiers() {
			rps.backend.SetGlobalTexture(id.Name, id)
		}
		rps.backend.Blit(metadata.NoTarget, colour, debugViewMaterialGBuffer, 0)
		rps.executed(PassDebugViewGBuffer)
	}

	renderer.SetRenderTarget(rps.backend, colour, depth, metadata.CLEAR_FLAG_NONE)
	rps.renderTransparentList(frame, cull, metadata.PassNameDebugViewMaterial, metadata.RENDERER_CONFIGURATION_NONE)
	rps.executed(PassDebugViewTransparent)

	rps.backend.Blit(colour, metadata.CameraTarget, "", 0)
	rps.executed(PassDebugBlit)
}

func (rps *RenderPipelineSystem) renderShadows(hdCamera *components.HDCamera, cull *scene.CullResults) (*shadow.ShadowOutput, error) {
	defer renderer.ProfilingSample(rps.backend, "Shadow Pass")()
	shadows, err := rps.shadowPass.Render(rps.backend, hdCamera, cull)
	if err != nil {
		return nil, err
	}
	rps.stats.Draws += shadows.Draws
	rps.executed(PassShadow)
	return shadows, nil
}

func (rps *RenderPipelineSystem) buildLightList(frame *FrameContext, hdCamera *components.HDCamera, cull *scene.CullResults, shadows *shadow.ShadowOutput) error {
	defer renderer.ProfilingSample(rps.backend, "Build Light list")()

	rps.lightLoop.PrepareLightsForGPU(frame.Shadow, cull, hdCamera, shadows)
	rps.executed(PassPrepareLights)

	if err := rps.lightLoop.BuildGPULightLists(hdCamera, rps.depthTarget()); err != nil {
		return err
	}
	rps.executed(PassBuildLightLists)

	rps.pushGlobalParams(hdCamera)
	rps.executed(PassPushGlobalParams)
	return nil
}

func (rps *RenderPipelineSystem) pushGlobalParams(hdCamera *components.HDCamera) {
	if rps.sky.IsSkyValid() {
		rps.sky.SetGlobalSkyTexture()
		rps.backend.SetGlobalInt("_EnvLightSkyEnabled", 1)
	} else {
		rps.backend.SetGlobalInt("_EnvLightSkyEnabled", 0)
	}

	rps.backend.SetGlobalVector("_ScreenSize", hdCamera.ScreenSize)
	rps.backend.SetGlobalMatrix("_ViewProjMatrix", hdCamera.ViewProjectionMatrix)
	rps.backend.SetGlobalMatrix("_InvViewProjMatrix", hdCamera.InvViewProjectionMatrix)

	rps.lightLoop.PushGlobalParams(hdCamera)
}

func (rps *RenderPipelineSystem) renderDeferredLighting(frame *FrameContext, hdCamera *components.HDCamera) {
	if frame.ForwardOnly() {
		rps.skipped(PassDeferredLighting, SkipForwardOnly)
		return
	}
	rps.material.Bind(rps.backend)
	rps.lightLoop.RenderDeferredLighting(hdCamera, rps.colourTarget())
	rps.executed(PassDeferredLighting)
}

func (rps *RenderPipelineSystem) renderForward(frame *FrameContext, hdCamera *components.HDCamera, cull *scene.CullResults, opaque bool) {
	pass := PassForwardTransparent
	if opaque {
		pass = PassForwardOpaque
		// deferred already lit the opaque objects
		if !frame.ForwardOnly() {
			rps.skipped(pass, SkipNotForwardOnly)
			return
		}
	}

	defer renderer.ProfilingSample(rps.backend, "Forward Pass")()
	rps.material.Bind(rps.backend)
	renderer.SetRenderTarget(rps.backend, rps.colourTarget(), rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
	rps.lightLoop.RenderForward(hdCamera, opaque)
	if opaque {
		rps.renderOpaqueList(frame, cull, metadata.PassNameForward, metadata.RENDERER_CONFIGURATION_NONE)
	} else {
		rps.renderTransparentList(frame, cull, metadata.PassNameForward, metadata.RENDERER_CONFIGURATION_BAKED_LIGHTING)
	}
	rps.executed(pass)
}

// renderForwardOnlyOpaque draws the materials that are never deferred.
func (rps *RenderPipelineSystem) renderForwardOnlyOpaque(frame *FrameContext, hdCamera *components.HDCamera, cull *scene.CullResults) {
	defer renderer.ProfilingSample(rps.backend, "Forward Only Pass")()
	rps.material.Bind(rps.backend)
	renderer.SetRenderTarget(rps.backend, rps.colourTarget(), rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
	rps.lightLoop.RenderForward(hdCamera, true)
	rps.renderOpaqueList(frame, cull, metadata.PassNameForwardOnlyOpaque, metadata.RENDERER_CONFIGURATION_NONE)
	rps.executed(PassForwardOnlyOpaque)
}

func (rps *RenderPipelineSystem) renderSky(hdCamera *components.HDCamera) {
	if !rps.sky.IsSkyValid() {
		rps.skipped(PassSky, SkipSkyInvalid)
		return
	}
	rps.sky.RenderSky(hdCamera, rps.sunLight(), rps.colourTarget(), rps.depthTarget())
	rps.executed(PassSky)
}

// renderVelocity traces each reason it is skipped for.
func (rps *RenderPipelineSystem) renderVelocity(frame *FrameContext, hdCamera *components.HDCamera, cull *scene.CullResults) error {
	skip := false
	if rps.config.VelocityInGBuffer {
		rps.skipped(PassVelocity, SkipVelocityInGBuffer)
		skip = true
	}
	if frame.ForwardOnly() {
		rps.skipped(PassVelocity, SkipForwardOnly)
		skip = true
	}
	if skip {
		return nil
	}

	defer renderer.ProfilingSample(rps.backend, "Velocity Pass")()
	if err := rps.resources.Allocate(rps.velocity, hdCamera.Width(), hdCamera.Height()); err != nil {
		return err
	}
	renderer.SetRenderTarget(rps.backend, rps.resources.Identifier(rps.velocity), rps.depthTarget(), metadata.CLEAR_FLAG_NONE)
	rps.renderOpaqueList(frame, cull, metadata.PassNameMotionVectors, metadata.RENDERER_CONFIGURATION_NONE)
	rps.executed(PassVelocity)
	return nil
}

func (rps *RenderPipelineSystem) renderDistortion(frame *FrameContext, hdCamera *components.HDCamera, cull *scene.CullResults) error {
	if !frame.Debug.UseDistortion {
		rps.skipped(PassDistortion, SkipDistortionDisabled)
		return nil
	}

	defer renderer.ProfilingSample(rps.backend, "Distortion Pass")()
	if err := rps.resources.Allocate(rps.distortion, hdCamera.Width(), hdCamera.Height()); err != nil {
		return err
	}
	renderer.SetRenderTarget(rps.backend, rps.resources.Identifier(rps.distortion), rps.depthTarget(), metadata.CLEAR_FLAG_COLOR)
	// only transparent objects write distortion vectors
	rps.renderTransparentList(frame, cull, metadata.PassNameDistortionVectors, metadata.RENDERER_CONFIGURATION_NONE)
	rps.executed(PassDistortion)
	return nil
}

// Stats returns the counters of the last rendered frame.
func (rps *RenderPipelineSystem) Stats() FrameStats {
	return rps.stats
}

// History returns the most recent frame stats, oldest first.
func (rps *RenderPipelineSystem) History() []FrameStats {
	return rps.history.Items()
}

func (rps *RenderPipelineSystem) Metrics() *core.FrameMetrics {
	return rps.metrics
}

func (rps *RenderPipelineSystem) Resolution() ResolutionState {
	return rps.resolution
}

func (rps *RenderPipelineSystem) Resources() *ResourceSystem {
	return rps.resources
}

func (rps *RenderPipelineSystem) GBuffer() *GBufferSystem {
	return rps.gbuffer
}

func (rps *RenderPipelineSystem) LightLoop() lighting.LightLoop {
	return rps.lightLoop
}
