package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/xericdusk/ghostbuster/internal/storage"
	"github.com/xericdusk/ghostbuster/internal/track"
)

const (
	dpi      = 72.0
	fontSize = 13.0

	chartHeight  = 400
	topBorder    = 30
	leftBorder   = 70
	bottomBorder = 70
	rightBorder  = 20

	markerRadius = 3
	powerPadding = 5.0 // dB headroom above/below the observed range
)

// TrackData is everything the renderer needs for one session.
type TrackData struct {
	Session *storage.ChaseSession
	Samples []track.Sample
}

// RenderConfig holds visualization options for a chase session chart.
type RenderConfig struct {
	Width    int
	MinPower *float64
	MaxPower *float64

	Annotate bool
	FontPath string // TTF file; annotations are skipped when empty
}

// TrackRenderer draws a chase session as a power-over-time chart with a
// ground-track panel, markers colored by strength bucket.
type TrackRenderer struct {
	config RenderConfig
	font   *truetype.Font
}

// NewTrackRenderer creates a renderer, loading the annotation font if one
// is configured.
func NewTrackRenderer(config RenderConfig) (*TrackRenderer, error) {
	if config.Width <= 0 {
		config.Width = 1200
	}

	r := TrackRenderer{config: config}

	if config.Annotate && config.FontPath != "" {
		fontBytes, err := os.ReadFile(config.FontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		if r.font, err = freetype.ParseFont(fontBytes); err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
	}

	return &r, nil
}

// Render draws the session chart. The left panel plots power over time; the
// right panel plots the lat/lon ground track over the same samples.
func (r *TrackRenderer) Render(data *TrackData) (*image.RGBA, error) {
	if len(data.Samples) == 0 {
		return nil, fmt.Errorf("session %d has no samples", data.Session.ID)
	}

	trackPanel := chartHeight // square panel on the right
	fullWidth := leftBorder + r.config.Width + rightBorder + trackPanel
	fullHeight := topBorder + chartHeight + bottomBorder

	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	chartArea := image.Rect(leftBorder, topBorder, leftBorder+r.config.Width, topBorder+chartHeight)
	trackArea := image.Rect(chartArea.Max.X+rightBorder, topBorder, chartArea.Max.X+rightBorder+trackPanel, topBorder+chartHeight)

	minPower, maxPower := r.powerBounds(data.Samples)

	r.drawGrid(img, chartArea)
	r.drawPowerChart(img, chartArea, data.Samples, minPower, maxPower)
	r.drawGroundTrack(img, trackArea, data.Samples)

	if r.font != nil {
		if err := r.annotate(img, chartArea, data, minPower, maxPower); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	return img, nil
}

func (r *TrackRenderer) powerBounds(samples []track.Sample) (minPower, maxPower float64) {
	minPower, maxPower = math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		minPower = math.Min(minPower, s.Power)
		maxPower = math.Max(maxPower, s.Power)
	}
	minPower -= powerPadding
	maxPower += powerPadding

	if r.config.MinPower != nil {
		minPower = *r.config.MinPower
	}
	if r.config.MaxPower != nil {
		maxPower = *r.config.MaxPower
	}
	if maxPower <= minPower {
		maxPower = minPower + 1
	}
	return minPower, maxPower
}

func (r *TrackRenderer) drawGrid(img *image.RGBA, area image.Rectangle) {
	for y := area.Min.Y; y <= area.Max.Y; y += chartHeight / 8 {
		for x := area.Min.X; x < area.Max.X; x++ {
			img.Set(x, y, gridColor)
		}
	}

	// Axes
	for y := area.Min.Y; y <= area.Max.Y; y++ {
		img.Set(area.Min.X, y, axisColor)
	}
	for x := area.Min.X; x <= area.Max.X; x++ {
		img.Set(x, area.Max.Y, axisColor)
	}
}

func (r *TrackRenderer) drawPowerChart(img *image.RGBA, area image.Rectangle, samples []track.Sample, minPower, maxPower float64) {
	start := samples[0].Timestamp
	end := samples[len(samples)-1].Timestamp
	span := end.Sub(start)
	if span <= 0 {
		span = time.Second
	}

	for _, s := range samples {
		xRatio := float64(s.Timestamp.Sub(start)) / float64(span)
		yRatio := (s.Power - minPower) / (maxPower - minPower)

		x := area.Min.X + int(xRatio*float64(area.Dx()-1))
		y := area.Max.Y - int(yRatio*float64(area.Dy()-1))

		drawMarker(img, x, y, markerRadius, sampleColor(s))
	}
}

func (r *TrackRenderer) drawGroundTrack(img *image.RGBA, area image.Rectangle, samples []track.Sample) {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		minLat = math.Min(minLat, s.Position.Latitude)
		maxLat = math.Max(maxLat, s.Position.Latitude)
		minLon = math.Min(minLon, s.Position.Longitude)
		maxLon = math.Max(maxLon, s.Position.Longitude)
	}

	// A stationary platform still gets a visible dot in the panel center.
	latSpan := math.Max(maxLat-minLat, 1e-5)
	lonSpan := math.Max(maxLon-minLon, 1e-5)

	// Panel frame
	for x := area.Min.X; x <= area.Max.X; x++ {
		img.Set(x, area.Min.Y, axisColor)
		img.Set(x, area.Max.Y, axisColor)
	}
	for y := area.Min.Y; y <= area.Max.Y; y++ {
		img.Set(area.Min.X, y, axisColor)
		img.Set(area.Max.X, y, axisColor)
	}

	inset := 10
	for _, s := range samples {
		xRatio := (s.Position.Longitude - minLon) / lonSpan
		yRatio := (s.Position.Latitude - minLat) / latSpan

		x := area.Min.X + inset + int(xRatio*float64(area.Dx()-2*inset))
		y := area.Max.Y - inset - int(yRatio*float64(area.Dy()-2*inset))

		drawMarker(img, x, y, markerRadius, sampleColor(s))
	}
}

func (r *TrackRenderer) annotate(img *image.RGBA, area image.Rectangle, data *TrackData, minPower, maxPower float64) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(r.font)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingFull)
	ctx.SetSrc(image.Black)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)

	samples := data.Samples
	start := samples[0].Timestamp
	end := samples[len(samples)-1].Timestamp

	// Power scale on the left
	steps := 8
	for i := 0; i <= steps; i++ {
		power := maxPower - (maxPower-minPower)*float64(i)/float64(steps)
		y := area.Min.Y + i*area.Dy()/steps

		label := fmt.Sprintf("%.0f dBm", power)
		pt := freetype.Pt(5, y+5)
		if _, err := ctx.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing power label: %w", err)
		}
	}

	// Time scale along the bottom
	labels := 6
	for i := 0; i <= labels; i++ {
		point := start.Add(time.Duration(float64(end.Sub(start)) * float64(i) / float64(labels)))
		x := area.Min.X + i*area.Dx()/labels

		pt := freetype.Pt(x-20, area.Max.Y+20)
		if _, err := ctx.DrawString(point.Format("15:04:05"), pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}

	// Info bar
	freqSI, freqSuffix := humanize.ComputeSI(float64(data.Session.Frequency))
	info := fmt.Sprintf("Session %s; %0.2f %sHz; %d samples; %s - %s",
		data.Session.UUID,
		freqSI, freqSuffix,
		len(samples),
		start.Format(time.DateTime),
		end.Format(time.DateTime))

	pt := freetype.Pt(area.Min.X, img.Bounds().Max.Y-15)
	if _, err := ctx.DrawString(info, pt); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

// drawMarker draws a filled circle, the chart's analog of the dashboard's
// map markers.
func drawMarker(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, col)
			}
		}
	}
}
