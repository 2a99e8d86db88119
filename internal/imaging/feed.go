package imaging

import (
	"image"

	"tonearm/internal/cache"
)

// ComputeFeedAsset renders the single feed-thumbnail tier from src,
// mirroring Image::feed_asset. The result is always square, so its edge
// size is recoverable from the stored asset's own dimensions when needed
// rather than carried as a separate cache field.
func ComputeFeedAsset(store *cache.Store, src image.Image) (cache.Asset, error) {
	resized, _, _ := Resize(src, ContainInSquare{MaxEdgeSize: FeedMaxEdgeSize})

	data, err := EncodeJPEG(resized)
	if err != nil {
		return cache.Asset{}, err
	}

	return store.Put(data, ".jpg")
}
