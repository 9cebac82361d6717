package lighting

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var heatmapRamp = []color.RGBA{
	{0, 0, 0, 255},
	{0, 0, 255, 255},
	{0, 255, 255, 255},
	{0, 255, 0, 255},
	{255, 255, 0, 255},
	{255, 0, 0, 255},
}

// heatColour maps count in [0, max] onto the ramp; zero is always black.
func heatColour(count, max int) color.RGBA {
	if count <= 0 || max <= 0 {
		return heatmapRamp[0]
	}
	if count >= max {
		return heatmapRamp[len(heatmapRamp)-1]
	}
	t := float64(count) / float64(max) * float64(len(heatmapRamp)-2)
	i := int(t)
	f := t - float64(i)
	a, b := heatmapRamp[i+1], heatmapRamp[i+2]
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*f)
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}

// LightCountHeatmap draws one pixel per tile coloured by its light count,
// scaled up to width x height. Tiles with maxLights or more are red.
func LightCountHeatmap(list *LightList, width, height, maxLights int) *image.RGBA {
	tiles := image.NewRGBA(image.Rect(0, 0, list.TilesX, list.TilesY))
	for y := 0; y < list.TilesY; y++ {
		for x := 0; x < list.TilesX; x++ {
			tiles.SetRGBA(x, y, heatColour(list.TileLightCount(x, y), maxLights))
		}
	}
	if width <= 0 || height <= 0 {
		return tiles
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), tiles, tiles.Bounds(), draw.Src, nil)
	return dst
}
