package cover

import (
	"bytes"
	"image"
	"image/png"
	"math"
)

const tau = 2 * math.Pi

// canvas is a minimal premultiplied-alpha drawing surface standing in for
// the original's tiny_skia Pixmap: a solid fill, then a sequence of
// alpha-blended strokes and rects composited over it with src-over.
// Reimplemented against the standard library's image package (no pack
// example or common Go library does path-stroke anti-aliasing on raster
// images the way tiny_skia does; the coverage-based line rasterizer below
// is the justified stdlib replacement).
type canvas struct {
	img  *image.RGBA
	size int
}

func newCanvas(edgeSize int, lightness, fillAlpha float64) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, edgeSize, edgeSize))
	r, g, b, a := premultiplied(lightness, fillAlpha)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return &canvas{img: img, size: edgeSize}
}

func (c *canvas) encodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// strokeLine draws an anti-aliased segment of the given width by
// accumulating per-pixel coverage from distance to the segment, blended
// with src-over compositing.
func (c *canvas) strokeLine(x0, y0, x1, y1, width, lightness, alpha float64) {
	if alpha <= 0 || width <= 0 {
		return
	}
	half := width/2 + 0.75

	minX := clampInt(int(math.Floor(math.Min(x0, x1)-half)), 0, c.size-1)
	maxX := clampInt(int(math.Ceil(math.Max(x0, x1)+half)), 0, c.size-1)
	minY := clampInt(int(math.Floor(math.Min(y0, y1)-half)), 0, c.size-1)
	maxY := clampInt(int(math.Ceil(math.Max(y0, y1)+half)), 0, c.size-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := distanceToSegment(float64(x)+0.5, float64(y)+0.5, x0, y0, x1, y1)
			coverage := clamp01(width/2 - d + 0.5)
			if coverage <= 0 {
				continue
			}
			c.blend(x, y, lightness, alpha*coverage)
		}
	}
}

// fillRect blends an axis-aligned rectangle over the canvas, used by the
// Blocks style. No anti-aliasing of the rect edges is needed since tile
// boundaries in that style are never visually compared against each other.
func (c *canvas) fillRect(x0, y0, w, h, lightness, alpha float64) {
	if alpha <= 0 {
		return
	}
	minX := clampInt(int(math.Round(x0)), 0, c.size-1)
	maxX := clampInt(int(math.Round(x0+w))-1, 0, c.size-1)
	minY := clampInt(int(math.Round(y0)), 0, c.size-1)
	maxY := clampInt(int(math.Round(y0+h))-1, 0, c.size-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			c.blend(x, y, lightness, alpha)
		}
	}
}

func (c *canvas) blend(x, y int, lightness, alpha float64) {
	a := clamp01(alpha)
	if a <= 0 {
		return
	}
	idx := c.img.PixOffset(x, y)
	pix := c.img.Pix[idx : idx+4 : idx+4]

	dr, dg, db, da := float64(pix[0])/255, float64(pix[1])/255, float64(pix[2])/255, float64(pix[3])/255
	sr, sg, sb, sa := premultipliedFloat(lightness, a)
	inv := 1 - sa

	pix[0] = to8(sr + dr*inv)
	pix[1] = to8(sg + dg*inv)
	pix[2] = to8(sb + db*inv)
	pix[3] = to8(sa + da*inv)
}

func premultipliedFloat(lightness, alpha float64) (r, g, b, a float64) {
	a = clamp01(alpha)
	v := clamp01(lightness) * a
	return v, v, v, a
}

func premultiplied(lightness, alpha float64) (r, g, b, a uint8) {
	rf, gf, bf, af := premultipliedFloat(lightness, alpha)
	return to8(rf), to8(gf), to8(bf), to8(af)
}

func to8(f float64) uint8 {
	return uint8(clamp01(f)*255 + 0.5)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func distanceToSegment(px, py, x0, y0, x1, y1 float64) float64 {
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x0, py-y0)
	}
	t := ((px-x0)*dx + (py-y0)*dy) / lenSq
	t = clamp01(t)
	cx, cy := x0+t*dx, y0+t*dy
	return math.Hypot(px-cx, py-cy)
}
