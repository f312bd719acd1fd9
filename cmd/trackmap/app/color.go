package app

import (
	"image/color"

	"github.com/xericdusk/ghostbuster/internal/track"
)

// Strength bucket colors, matching the dashboard map markers.
var (
	strongColor   = color.RGBA{R: 0x2e, G: 0xa0, B: 0x43, A: 0xff} // green
	moderateColor = color.RGBA{R: 0xf2, G: 0x8c, B: 0x28, A: 0xff} // orange
	weakColor     = color.RGBA{R: 0xd6, G: 0x2b, B: 0x2b, A: 0xff} // red

	sentinelColor = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff} // gray
	gridColor     = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	axisColor     = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
)

// sampleColor picks the marker color for one observation. Unmeasured samples
// (the failure sentinel) are drawn gray so a dead receiver does not read as
// a weak signal trail.
func sampleColor(s track.Sample) color.RGBA {
	if !s.Measured {
		return sentinelColor
	}

	switch s.Strength {
	case track.Strong:
		return strongColor
	case track.Moderate:
		return moderateColor
	default:
		return weakColor
	}
}
