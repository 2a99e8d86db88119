package imaging

import (
	"image"

	"tonearm/internal/cache"
)

// coverEdgeSizes are the square edge sizes a cover image is resized to, in
// ascending order. The first is always computed; each later one is gated
// by MinOvershoot against the previous size.
var coverEdgeSizes = [...]int{160, 320, 480, 800, 1280}

// ComputeCoverAssets renders every cover-image tier from src, mirroring
// Image::cover_assets: 160 is always computed, each larger square tier
// only if the source overshoots the previous tier by MinOvershoot.
func ComputeCoverAssets(store *cache.Store, src image.Image) (cache.CoverAssetSet, error) {
	sourceWidth := float64(src.Bounds().Dx())

	var variants []cache.CoverVariant

	for i, edgeSize := range coverEdgeSizes {
		if i > 0 && sourceWidth <= float64(coverEdgeSizes[i-1])*MinOvershoot {
			break
		}

		variant, err := computeCoverVariant(store, src, edgeSize)
		if err != nil {
			return cache.CoverAssetSet{}, err
		}
		variants = append(variants, variant)
	}

	return cache.CoverAssetSet{Variants: variants}, nil
}

func computeCoverVariant(store *cache.Store, src image.Image, edgeSize int) (cache.CoverVariant, error) {
	resized, width, _ := Resize(src, CoverSquare{EdgeSize: edgeSize})

	data, err := EncodeJPEG(resized)
	if err != nil {
		return cache.CoverVariant{}, err
	}

	asset, err := store.Put(data, ".jpg")
	if err != nil {
		return cache.CoverVariant{}, err
	}

	return cache.CoverVariant{EdgeSize: width, Asset: asset}, nil
}
