package imaging

import (
	"image"

	"tonearm/internal/cache"
)

// ComputeBackgroundAsset renders the single backdrop-image tier from src,
// mirroring Image::background_asset.
func ComputeBackgroundAsset(store *cache.Store, src image.Image) (cache.Asset, error) {
	resized, _, _ := Resize(src, ContainInSquare{MaxEdgeSize: BackgroundMaxEdgeSize})

	data, err := EncodeJPEG(resized)
	if err != nil {
		return cache.Asset{}, err
	}

	return store.Put(data, ".jpg")
}
