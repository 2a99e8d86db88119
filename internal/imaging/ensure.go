package imaging

import (
	"fmt"
	"path/filepath"

	"tonearm/internal/cache"
)

// EnsureArtistAssets returns img.ArtistAssets, computing and storing it
// first if absent. sourcePath is resolved against catalogRoot. Mirrors
// Image::artist_assets's revive-or-compute shape.
func EnsureArtistAssets(img *cache.Image, store *cache.Store, catalogRoot, sourcePath string) (*cache.ArtistAssetSet, error) {
	if img.ArtistAssets != nil {
		img.ArtistAssets.UnmarkStale()
		return img.ArtistAssets, nil
	}

	src, err := OpenOpaque(filepath.Join(catalogRoot, sourcePath))
	if err != nil {
		return nil, fmt.Errorf("resizing %s for use as an artist image: %w", sourcePath, err)
	}

	set, err := ComputeArtistAssets(store, src)
	if err != nil {
		return nil, err
	}
	img.ArtistAssets = &set
	return img.ArtistAssets, nil
}

// EnsureCoverAssets returns img.CoverAssets, computing and storing it first
// if absent. Mirrors Image::cover_assets.
func EnsureCoverAssets(img *cache.Image, store *cache.Store, catalogRoot, sourcePath string) (*cache.CoverAssetSet, error) {
	if img.CoverAssets != nil {
		img.CoverAssets.UnmarkStale()
		return img.CoverAssets, nil
	}

	src, err := OpenOpaque(filepath.Join(catalogRoot, sourcePath))
	if err != nil {
		return nil, fmt.Errorf("resizing %s for use as a cover image: %w", sourcePath, err)
	}

	set, err := ComputeCoverAssets(store, src)
	if err != nil {
		return nil, err
	}
	img.CoverAssets = &set
	return img.CoverAssets, nil
}

// EnsureBackgroundAsset returns img.BackgroundAsset, computing and storing
// it first if absent. Mirrors Image::background_asset.
func EnsureBackgroundAsset(img *cache.Image, store *cache.Store, catalogRoot, sourcePath string) (*cache.Asset, error) {
	if img.BackgroundAsset != nil {
		img.BackgroundAsset.UnmarkStale()
		return img.BackgroundAsset, nil
	}

	src, err := OpenOpaque(filepath.Join(catalogRoot, sourcePath))
	if err != nil {
		return nil, fmt.Errorf("resizing %s for use as a background image: %w", sourcePath, err)
	}

	asset, err := ComputeBackgroundAsset(store, src)
	if err != nil {
		return nil, err
	}
	img.BackgroundAsset = &asset
	return img.BackgroundAsset, nil
}

// EnsureFeedAsset returns img.FeedAsset, computing and storing it first if
// absent. Mirrors Image::feed_asset.
func EnsureFeedAsset(img *cache.Image, store *cache.Store, catalogRoot, sourcePath string) (*cache.Asset, error) {
	if img.FeedAsset != nil {
		img.FeedAsset.UnmarkStale()
		return img.FeedAsset, nil
	}

	src, err := OpenOpaque(filepath.Join(catalogRoot, sourcePath))
	if err != nil {
		return nil, fmt.Errorf("resizing %s for use as a feed image: %w", sourcePath, err)
	}

	asset, err := ComputeFeedAsset(store, src)
	if err != nil {
		return nil, err
	}
	img.FeedAsset = &asset
	return img.FeedAsset, nil
}
