package lighting

import (
	"sync"

	"github.com/spaghettifunk/hdrp/engine/math"
	"github.com/spaghettifunk/hdrp/engine/renderer/components"
	"github.com/spaghettifunk/hdrp/engine/renderer/metadata"
)

// lightBounds is the coarse footprint of one punctual light, in tiles and
// depth slices, all ranges inclusive.
type lightBounds struct {
	index      uint32
	minX, maxX int
	minY, maxY int
	minZ, maxZ int
}

// depthSlicer maps a view space depth range to slice indices.
type depthSlicer func(zMin, zMax float32) (int, int)

func singleSlice(float32, float32) (int, int) {
	return 0, 0
}

// logSlicer splits [near, far] into slices of equal ratio.
func logSlicer(near, far float32, slices int) depthSlicer {
	scale := float32(slices) / math.Log2(far/near)
	slice := func(z float32) int {
		if z <= near {
			return 0
		}
		return math.Clamp(int(math.Floor(math.Log2(z/near)*scale)), 0, slices-1)
	}
	return func(zMin, zMax float32) (int, int) {
		return slice(zMin), slice(zMax)
	}
}

// coarseBounds projects every light sphere onto the tile grid. Lights fully
// outside the view volume are dropped. A sphere crossing the near plane
// covers the whole screen.
func coarseBounds(camera *components.HDCamera, spheres []math.Sphere, tileSize, tilesX, tilesY int, slicer depthSlicer) []lightBounds {
	near, far := camera.NearClip, camera.FarClip
	width, height := float32(camera.Width()), float32(camera.Height())

	out := make([]lightBounds, 0, len(spheres))
	for i, s := range spheres {
		vc := camera.WorldToView(s.Center)
		depth := -vc.Z
		zMin, zMax := depth-s.Radius, depth+s.Radius
		if zMax < near || zMin > far {
			continue
		}
		b := lightBounds{index: uint32(i), maxX: tilesX - 1, maxY: tilesY - 1}
		b.minZ, b.maxZ = slicer(math.Max(zMin, near), math.Min(zMax, far))

		if zMin < near {
			out = append(out, b)
			continue
		}

		minPX, minPY := float32(math.K_INFINITY), float32(math.K_INFINITY)
		maxPX, maxPY := -float32(math.K_INFINITY), -float32(math.K_INFINITY)
		for c := 0; c < 8; c++ {
			corner := math.NewVec3(
				vc.X+cornerSign(c, 1)*s.Radius,
				vc.Y+cornerSign(c, 2)*s.Radius,
				vc.Z+cornerSign(c, 4)*s.Radius,
			)
			ndc, ok := camera.ViewToNDC(corner)
			if !ok {
				continue
			}
			px := (ndc.X*0.5 + 0.5) * width
			py := (0.5 - ndc.Y*0.5) * height
			minPX, maxPX = math.Min(minPX, px), math.Max(maxPX, px)
			minPY, maxPY = math.Min(minPY, py), math.Max(maxPY, py)
		}
		if maxPX < 0 || maxPY < 0 || minPX >= width || minPY >= height {
			continue
		}
		ts := float32(tileSize)
		b.minX = math.Clamp(int(math.Floor(minPX/ts)), 0, tilesX-1)
		b.maxX = math.Clamp(int(math.Floor(maxPX/ts)), 0, tilesX-1)
		b.minY = math.Clamp(int(math.Floor(minPY/ts)), 0, tilesY-1)
		b.maxY = math.Clamp(int(math.Floor(maxPY/ts)), 0, tilesY-1)
		out = append(out, b)
	}
	return out
}

func cornerSign(corner, bit int) float32 {
	if corner&bit != 0 {
		return 1
	}
	return -1
}

type rowRange struct {
	y0, y1 int
}

// binRows fills the cells of rows [y0, y1). Cells of other rows are not touched,
// so row ranges can be binned concurrently.
func binRows(list *LightList, bounds []lightBounds, rows rowRange, maxPerCell int) int {
	overflow := 0
	for y := rows.y0; y < rows.y1; y++ {
		for _, b := range bounds {
			if y < b.minY || y > b.maxY {
				continue
			}
			for z := b.minZ; z <= b.maxZ; z++ {
				for x := b.minX; x <= b.maxX; x++ {
					idx := list.CellIndex(x, y, z)
					if len(list.Cells[idx]) >= maxPerCell {
						overflow++
						continue
					}
					list.Cells[idx] = append(list.Cells[idx], b.index)
				}
			}
		}
	}
	return overflow
}

// binLights fans the rows out over jobs and waits for all of them. With no
// submitter the rows are binned inline.
func binLights(list *LightList, bounds []lightBounds, maxPerCell int, jobs JobSubmitter, workers int) int {
	if list.TilesY == 0 || len(bounds) == 0 {
		return 0
	}
	workers = math.Clamp(workers, 1, list.TilesY)
	rowsPerJob := math.DivideRoundUp(list.TilesY, workers)
	jobCount := math.DivideRoundUp(list.TilesY, rowsPerJob)
	overflow := make([]int, jobCount)

	var wg sync.WaitGroup
	for j := 0; j < jobCount; j++ {
		rows := rowRange{y0: j * rowsPerJob, y1: math.Min((j+1)*rowsPerJob, list.TilesY)}
		if jobs == nil {
			overflow[j] = binRows(list, bounds, rows, maxPerCell)
			continue
		}
		jobIndex := j
		wg.Add(1)
		jobs.Submit(metadata.JobTask{
			JobType:     metadata.JOB_TYPE_GPU_PREPARE,
			InputParams: rows,
			OnStart: func(params interface{}) (interface{}, error) {
				return binRows(list, bounds, params.(rowRange), maxPerCell), nil
			},
			OnComplete: func(result interface{}) {
				overflow[jobIndex] = result.(int)
			},
			OnCompletionCallback: wg.Done,
		})
	}
	wg.Wait()

	total := 0
	for _, o := range overflow {
		total += o
	}
	return total
}
