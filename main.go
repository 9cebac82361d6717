/*
This is an example of application that renders the testbed scene
headless and reports what the pipeline did
*/
package main

import (
	"flag"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/hdrp/engine"
	"github.com/spaghettifunk/hdrp/engine/config"
	"github.com/spaghettifunk/hdrp/engine/core"
	"github.com/spaghettifunk/hdrp/engine/lighting"
	"github.com/spaghettifunk/hdrp/engine/renderer/headless"
	"github.com/spaghettifunk/hdrp/testbed"
)

func main() {
	settingsPath := flag.String("settings", "", "TOML settings file, watched for changes")
	frames := flag.Uint64("frames", 120, "frames to render, 0 renders until interrupted")
	width := flag.Int("width", 1920, "camera width in pixels")
	height := flag.Int("height", 1080, "camera height in pixels")
	sceneView := flag.Bool("scene-view", false, "also render an editor scene view camera")
	wireframe := flag.Bool("wireframe", false, "render in wireframe, which forces forward only")
	postProcess := flag.String("post-process", "", "post-process stack of the world camera")
	heatmap := flag.String("heatmap", "", "write the light count heatmap of the last frame to this PNG")
	dumpSettings := flag.Bool("dump-settings", false, "print the effective settings and exit")
	flag.Parse()

	var source config.Source
	if *settingsPath != "" {
		w, err := config.NewWatcher(*settingsPath)
		if err != nil {
			panic(err)
		}
		w.Start()
		defer w.Close()
		source = w
	} else {
		source = config.Static(config.Default())
	}

	if *dumpSettings {
		if err := source.Settings().Encode(os.Stdout); err != nil {
			panic(err)
		}
		return
	}

	tb, err := testbed.NewTestGame(testbed.Options{
		Width:       *width,
		Height:      *height,
		FrameCount:  *frames,
		SceneView:   *sceneView,
		Wireframe:   *wireframe,
		PostProcess: *postProcess,
	})
	if err != nil {
		panic(err)
	}

	backend := headless.New()
	engine, err := engine.New(tb.Game, backend, source)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the frame loop on the first signal
	go func() {
		<-sigCh
		engine.Stop()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		panic(err)
	}

	pipeline := engine.SystemManager().Pipeline()
	rendered, aborted := engine.Frames()
	total, draws, passes, skips, skippedCameras := pipeline.Metrics().Snapshot()
	core.LogInfo("%d frames rendered (%d aborted), %d recordings submitted", rendered, aborted, len(backend.Recordings()))
	core.LogInfo("last frame: %d draws, %d passes, %d skips; %d cameras skipped over %d frames", draws, passes, skips, skippedCameras, total)
	core.LogInfo("average frame time %.3fms", pipeline.Metrics().FrameTime())

	if *heatmap != "" {
		if err := writeHeatmap(*heatmap, pipeline.LightLoop().LightList(), *width, *height, source.Settings().LightLoop.MaxLightsPerTile); err != nil {
			core.LogError("heatmap: %s", err.Error())
		}
	}

	if err := engine.Shutdown(); err != nil {
		panic(err)
	}
}

func writeHeatmap(path string, list *lighting.LightList, width, height, maxLights int) error {
	if list.TilesX == 0 || list.TilesY == 0 {
		core.LogWarn("no light list was built, skipping the heatmap")
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, lighting.LightCountHeatmap(list, width, height, maxLights)); err != nil {
		return err
	}
	core.LogInfo("light count heatmap written to %s", path)
	return nil
}
