// Package imaging resizes source images into the role-specific asset sets
// cached by internal/cache: artist portraits, release/track covers,
// backdrop images and feed thumbnails. Grounded on
// original_source/src/image.rs and its image/processor.rs companion
// (image/artist.rs, image/release.rs, image/feed.rs supply the per-role
// asset shapes, already carried over into internal/cache's
// ArtistAssetSet/CoverAssetSet types).
//
// The minimum size in every tier is always computed; every larger tier is
// only computed if the source significantly overshoots the previous tier's
// target size, so a small source image never gets upscaled into a full
// ladder of identical-looking variants.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// MinOvershoot gates whether a larger tier is computed at all: a tier is
// only rendered if the source dimension exceeds the previous tier's target
// by this factor.
const MinOvershoot = 1.2

// BackgroundMaxEdgeSize is the longest edge a backdrop image is resized to.
const BackgroundMaxEdgeSize = 1280

// FeedMaxEdgeSize is the longest edge a feed thumbnail is resized to.
const FeedMaxEdgeSize = 920

// JPEGQuality is used for every resized asset; the original's image
// processing backends (the "image" and "libvips" Cargo features) default
// to a similar fixed quality rather than exposing it as a build option.
const JPEGQuality = 85

// ResizeMode selects how a source image is cropped and scaled.
type ResizeMode interface {
	isResizeMode()
}

// ContainInSquare scales down so neither edge exceeds MaxEdgeSize, without
// cropping. Used for backgrounds and feed thumbnails.
type ContainInSquare struct {
	MaxEdgeSize int
}

// CoverSquare crops to a centered square, then scales to EdgeSize x
// EdgeSize. Used for cover images.
type CoverSquare struct {
	EdgeSize int
}

// CoverRectangle crops to a centered rectangle whose aspect ratio
// (width/height) falls within [MinAspect, MaxAspect], then scales the
// result to MaxWidth wide. Used for artist images.
type CoverRectangle struct {
	MaxAspect float64
	MinAspect float64
	MaxWidth  int
}

func (ContainInSquare) isResizeMode() {}
func (CoverSquare) isResizeMode()     {}
func (CoverRectangle) isResizeMode()  {}

// OpenOpaque decodes path and flattens any transparency onto a white
// background, mirroring the original's "opaque" image handling (covers,
// artist photos and backgrounds are always delivered as plain JPEGs, never
// with an alpha channel).
func OpenOpaque(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	return flatten(src), nil
}

func flatten(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, &image.Uniform{C: image.White}, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Over)
	return dst
}

// Resize applies mode to src, returning the resulting image along with its
// final width and height.
func Resize(src image.Image, mode ResizeMode) (image.Image, int, int) {
	switch m := mode.(type) {
	case ContainInSquare:
		return resizeContain(src, m.MaxEdgeSize)
	case CoverSquare:
		return resizeCoverSquare(src, m.EdgeSize)
	case CoverRectangle:
		return resizeCoverRectangle(src, m.MaxAspect, m.MinAspect, m.MaxWidth)
	default:
		panic("imaging: unknown ResizeMode")
	}
}

func resizeContain(src image.Image, maxEdgeSize int) (image.Image, int, int) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	longEdge := width
	if height > longEdge {
		longEdge = height
	}
	if longEdge <= maxEdgeSize {
		return src, width, height
	}

	scale := float64(maxEdgeSize) / float64(longEdge)
	newWidth := round(float64(width) * scale)
	newHeight := round(float64(height) * scale)

	return scaleTo(src, newWidth, newHeight), newWidth, newHeight
}

func resizeCoverSquare(src image.Image, edgeSize int) (image.Image, int, int) {
	cropped := cropCenteredSquare(src)
	return scaleTo(cropped, edgeSize, edgeSize), edgeSize, edgeSize
}

func resizeCoverRectangle(src image.Image, maxAspect, minAspect float64, maxWidth int) (image.Image, int, int) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	aspect := float64(width) / float64(height)

	cropped := src
	switch {
	case aspect > maxAspect:
		targetWidth := round(float64(height) * maxAspect)
		cropped = cropCenteredWidth(src, targetWidth)
	case aspect < minAspect:
		targetHeight := round(float64(width) / minAspect)
		cropped = cropCenteredHeight(src, targetHeight)
	}

	croppedBounds := cropped.Bounds()
	croppedAspect := float64(croppedBounds.Dx()) / float64(croppedBounds.Dy())
	newWidth := maxWidth
	newHeight := round(float64(newWidth) / croppedAspect)

	return scaleTo(cropped, newWidth, newHeight), newWidth, newHeight
}

func cropCenteredSquare(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	side := width
	if height < side {
		side = height
	}
	x0 := bounds.Min.X + (width-side)/2
	y0 := bounds.Min.Y + (height-side)/2
	return subImage(src, x0, y0, side, side)
}

func cropCenteredWidth(src image.Image, targetWidth int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if targetWidth >= width {
		return src
	}
	x0 := bounds.Min.X + (width-targetWidth)/2
	return subImage(src, x0, bounds.Min.Y, targetWidth, height)
}

func cropCenteredHeight(src image.Image, targetHeight int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if targetHeight >= height {
		return src
	}
	y0 := bounds.Min.Y + (height-targetHeight)/2
	return subImage(src, bounds.Min.X, y0, width, targetHeight)
}

// subImage returns an independent RGBA copy of the x0,y0,w,h region of src
// (rather than relying on a SubImage method that not every image.Image
// implementation provides).
func subImage(src image.Image, x0, y0, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x0, Y: y0}, draw.Src)
	return dst
}

func scaleTo(src image.Image, width, height int) image.Image {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// EncodeJPEG encodes img at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
