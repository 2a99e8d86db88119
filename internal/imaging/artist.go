package imaging

import (
	"image"

	"tonearm/internal/cache"
)

// ComputeArtistAssets renders every artist-image tier from src and stores
// each as a content-addressed asset. Fixed tiers use a tighter aspect
// range (2.25-2.5) intended for narrow viewport layouts; fluid tiers use a
// wider range (2.5-5.0) for layouts that grow with the viewport. The 320
// fixed and 640 fluid tiers are always computed; larger tiers within each
// family are only computed if the source overshoots the previous tier by
// MinOvershoot, mirroring Image::artist_assets.
func ComputeArtistAssets(store *cache.Store, src image.Image) (cache.ArtistAssetSet, error) {
	sourceWidth := float64(src.Bounds().Dx())

	var variants []cache.ArtistVariant

	fixed320, err := computeArtistVariant(store, src, CoverRectangle{MaxAspect: 2.5, MinAspect: 2.25, MaxWidth: 320})
	if err != nil {
		return cache.ArtistAssetSet{}, err
	}
	variants = append(variants, fixed320)

	if sourceWidth > 320.0*MinOvershoot {
		fixed480, err := computeArtistVariant(store, src, CoverRectangle{MaxAspect: 2.5, MinAspect: 2.25, MaxWidth: 480})
		if err != nil {
			return cache.ArtistAssetSet{}, err
		}
		variants = append(variants, fixed480)
	}

	if sourceWidth > 480.0*MinOvershoot {
		fixed640, err := computeArtistVariant(store, src, CoverRectangle{MaxAspect: 2.5, MinAspect: 2.25, MaxWidth: 640})
		if err != nil {
			return cache.ArtistAssetSet{}, err
		}
		variants = append(variants, fixed640)
	}

	fluid640, err := computeArtistVariant(store, src, CoverRectangle{MaxAspect: 5.0, MinAspect: 2.5, MaxWidth: 640})
	if err != nil {
		return cache.ArtistAssetSet{}, err
	}
	variants = append(variants, fluid640)

	if sourceWidth > 640.0*MinOvershoot {
		fluid960, err := computeArtistVariant(store, src, CoverRectangle{MaxAspect: 5.0, MinAspect: 2.5, MaxWidth: 960})
		if err != nil {
			return cache.ArtistAssetSet{}, err
		}
		variants = append(variants, fluid960)
	}

	if sourceWidth > 960.0*MinOvershoot {
		fluid1280, err := computeArtistVariant(store, src, CoverRectangle{MaxAspect: 5.0, MinAspect: 2.5, MaxWidth: 1280})
		if err != nil {
			return cache.ArtistAssetSet{}, err
		}
		variants = append(variants, fluid1280)
	}

	return cache.ArtistAssetSet{Variants: variants}, nil
}

func computeArtistVariant(store *cache.Store, src image.Image, mode CoverRectangle) (cache.ArtistVariant, error) {
	resized, width, height := Resize(src, mode)

	data, err := EncodeJPEG(resized)
	if err != nil {
		return cache.ArtistVariant{}, err
	}

	asset, err := store.Put(data, ".jpg")
	if err != nil {
		return cache.ArtistVariant{}, err
	}

	return cache.ArtistVariant{Width: width, Height: height, Asset: asset}, nil
}
