package cover

import (
	"math"

	"tonearm/internal/hashx"
)

const fillAlpha = 0.025

func generateBestRillen(edgeSize int, input Input) *canvas {
	longest := longestDuration(input.Tracks)
	edgeCenter := float64(edgeSize) / 2.0
	radius := float64(edgeSize) / 3.0
	lightness := input.strokeLightness()

	c := newCanvas(edgeSize, lightness, fillAlpha)

	numTracks := len(input.Tracks)
	for trackIndex, track := range input.Tracks {
		if len(track.Peaks) < 2 {
			continue
		}
		amplitudeWidth := radius / float64(numTracks)
		trackArcRange := float64(track.DurationSeconds) / float64(longest)
		trackCompensation := 0.25 + (1.0-trackArcRange)/2.0

		steps := stepPeaks(track.Peaks, 2)
		denom := float64(len(track.Peaks) - 1)

		var prevX, prevY float64
		havePrev := false
		for _, s := range steps {
			peak := float64(s.peak)
			peakOffset := float64(s.enumIndex) / denom * 2.0 * -1.0
			angle := (trackCompensation + peakOffset*trackArcRange) * tau

			amplitude := float64(numTracks-1-trackIndex)*amplitudeWidth + peak*0.3*amplitudeWidth
			x := edgeCenter + amplitude*math.Sin(angle)
			y := edgeCenter + amplitude*math.Cos(angle)

			if havePrev {
				width := peak * (float64(edgeSize) / 400.0)
				c.strokeLine(prevX, prevY, x, y, width, lightness, peak)
			}
			prevX, prevY = x, y
			havePrev = true
		}
	}

	return c
}

func generateBlocks(edgeSize int, input Input, signature hashx.Hash) *canvas {
	lightness := input.strokeLightness()
	c := newCanvas(edgeSize, lightness, fillAlpha)

	rng := newRNG(signature)

	const squares = 6
	squareEdge := float64(edgeSize) / float64(squares)

	for hIndex := 0; hIndex < squares; hIndex++ {
		for vIndex := 0; vIndex < squares; vIndex++ {
			alpha := rng.Float64()
			c.fillRect(float64(hIndex)*squareEdge, float64(vIndex)*squareEdge, squareEdge, squareEdge, lightness, alpha)
		}
	}

	return c
}

func generateGlassSplinters(edgeSize int, input Input) *canvas {
	edgeCenter := float64(edgeSize) / 2.0
	lightness := input.strokeLightness()

	c := newCanvas(edgeSize, lightness, fillAlpha)

	totalDur := totalDuration(input.Tracks)
	shortestDur := shortestDuration(input.Tracks)

	gapArc := 0.02
	if minGapArc := float64(shortestDur) / float64(totalDur) / 2.0; minGapArc < gapArc {
		gapArc = minGapArc
	}

	strokeWidth := float64(edgeSize) / 400.0

	trackOffset := 0.0
	for _, track := range input.Tracks {
		trackArcRange := float64(track.DurationSeconds) / float64(totalDur)
		if len(track.Peaks) >= 2 {
			steps := stepPeaks(track.Peaks, 4)
			denom := float64(len(track.Peaks) - 1)

			var prevX, prevY float64
			havePrev := false
			for _, s := range steps {
				peak := float64(s.peak)
				peakOffset := float64(s.enumIndex) / denom * 4.0

				reach := float64(edgeSize)/6.0 + (1.0-peak)*float64(edgeSize)/3.5
				angle := (trackOffset + peakOffset*(trackArcRange-gapArc)) * tau
				x := edgeCenter + reach*math.Sin(angle)
				y := edgeCenter + reach*math.Sin(angle+tau/4.0)

				if havePrev {
					c.strokeLine(prevX, prevY, x, y, strokeWidth, lightness, 1.0)
				}
				prevX, prevY = x, y
				havePrev = true
			}
		}

		trackOffset += trackArcRange
	}

	return c
}

func generateLooneyTunes(edgeSize int, input Input) *canvas {
	longest := longestDuration(input.Tracks)
	edgeCenter := float64(edgeSize) / 2.0
	radius := float64(edgeSize) / 3.0
	lightness := input.strokeLightness()

	c := newCanvas(edgeSize, lightness, fillAlpha)

	maxTracks := input.MaxTracksInCatalog
	if maxTracks < 1 {
		maxTracks = 1
	}
	numTracks := len(input.Tracks)

	for trackIndex, track := range input.Tracks {
		if len(track.Peaks) < 2 {
			continue
		}
		amplitudeRange := 0.75 * float64(numTracks) / float64(maxTracks)
		amplitudeWidth := radius * amplitudeRange / float64(numTracks)
		trackArcRange := float64(track.DurationSeconds) / float64(longest)
		trackCompensation := 0.25 + (1.0-trackArcRange)/2.0

		steps := stepPeaks(track.Peaks, 1)
		denom := float64(len(track.Peaks) - 1)

		var prevX, prevY float64
		havePrev := false
		for _, s := range steps {
			peak := float64(s.peak)
			peakOffset := float64(s.enumIndex) / denom * -1.0
			angle := (trackCompensation + peakOffset*trackArcRange) * tau

			amplitude := radius*0.25 + float64(maxTracks-1-trackIndex)*amplitudeWidth + peak*0.3*amplitudeWidth
			x := edgeCenter + amplitude*math.Sin(angle)
			y := edgeCenter + amplitude*math.Cos(angle)

			if havePrev {
				width := peak * (float64(edgeSize) / 400.0)
				c.strokeLine(prevX, prevY, x, y, width, lightness, 1.0)
			}
			prevX, prevY = x, y
			havePrev = true
		}
	}

	return c
}

func generateScratchyFaintRillen(edgeSize int, input Input) *canvas {
	edgeCenter := float64(edgeSize) / 2.0
	radius := float64(edgeSize) / 3.0
	lightness := input.strokeLightness()

	c := newCanvas(edgeSize, lightness, fillAlpha)

	longest := longestDuration(input.Tracks)
	strokeWidth := float64(edgeSize) / 400.0
	numTracks := len(input.Tracks)

	for trackIndex, track := range input.Tracks {
		if len(track.Peaks) < 2 {
			continue
		}
		amplitudeWidth := radius / float64(numTracks)
		trackArcRange := float64(track.DurationSeconds) / float64(longest)

		steps := stepPeaks(track.Peaks, 2)
		denom := float64(len(track.Peaks) - 1)

		var prevX, prevY float64
		havePrev := false
		for _, s := range steps {
			peak := float64(s.peak)
			peakOffset := float64(s.enumIndex) / denom * 2.0
			angle := peakOffset * trackArcRange * tau

			amplitude := float64(numTracks-1-trackIndex)*amplitudeWidth + peak*amplitudeWidth
			x := edgeCenter + amplitude*math.Sin(angle)
			y := edgeCenter + amplitude*math.Cos(angle)

			if havePrev {
				c.strokeLine(prevX, prevY, x, y, strokeWidth, lightness, 1.0)
			}
			prevX, prevY = x, y
			havePrev = true
		}
	}

	return c
}

func generateSpaceTimeRupture(edgeSize int, input Input) *canvas {
	edgeCenter := float64(edgeSize) / 2.0
	lightness := input.strokeLightness()

	c := newCanvas(edgeSize, lightness, fillAlpha)

	totalDur := totalDuration(input.Tracks)
	shortestDur := shortestDuration(input.Tracks)
	longestDur := longestDuration(input.Tracks)

	strokeWidth := float64(edgeSize) / 400.0

	trackOffset := 0.0
	for _, track := range input.Tracks {
		trackArcRange := float64(track.DurationSeconds) / float64(totalDur)

		if len(track.Peaks) >= 2 {
			var amplitudeFactor float64
			if shortestDur != longestDur {
				amplitudeFactor = float64(track.DurationSeconds-shortestDur) / float64(longestDur-shortestDur)
			}

			steps := stepPeaks(track.Peaks, 6)
			denom := float64(len(track.Peaks) - 1)

			var prevX, prevY float64
			havePrev := false
			for _, s := range steps {
				peak := float64(s.peak)
				peakOffset := float64(s.enumIndex) / denom * 6.0

				amplitude := (float64(edgeSize)/6.0)*(1+amplitudeFactor) + (1.0-peak)*float64(edgeSize)/12.0
				angle := (trackOffset + peakOffset*trackArcRange) * tau
				x := edgeCenter + amplitude*math.Sin(angle)
				y := edgeCenter + amplitude*math.Sin(angle+tau/4.0)

				if havePrev {
					c.strokeLine(prevX, prevY, x, y, strokeWidth, lightness, 1.0)
				}
				prevX, prevY = x, y
				havePrev = true
			}
		}

		trackOffset += trackArcRange
	}

	return c
}
