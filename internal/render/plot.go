// Package render turns aggregation results into a single PNG: a by-offer bar
// panel and a daily click series panel, side by side.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"offer-redirect/internal/domain"

	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	panelWidth  = 700
	panelHeight = 500
)

var (
	barColor  = drawing.Color{R: 0x4C, G: 0x78, B: 0xA8, A: 0xFF}
	lineColor = drawing.Color{R: 0xF5, G: 0x85, B: 0x18, A: 0xFF}
)

// Input carries everything the plot needs; Offers is expected to be already
// truncated to top-N and Daily zero-filled over the requested range.
type Input struct {
	From    string
	To      string
	Country string
	Offers  []domain.OfferCount
	Daily   []domain.DayCount
}

// Plot renders the two panels and composites them into one PNG.
func Plot(in Input) ([]byte, error) {
	left, err := renderOffers(in)
	if err != nil {
		return nil, fmt.Errorf("render offers panel: %w", err)
	}
	right, err := renderDaily(in)
	if err != nil {
		return nil, fmt.Errorf("render daily panel: %w", err)
	}

	combined := image.NewRGBA(image.Rect(0, 0, left.Bounds().Dx()+right.Bounds().Dx(), panelHeight))
	draw.Draw(combined, combined.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(combined, left.Bounds(), left, image.Point{}, draw.Over)
	draw.Draw(combined, right.Bounds().Add(image.Pt(left.Bounds().Dx(), 0)), right, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, combined); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderOffers(in Input) (image.Image, error) {
	if len(in.Offers) == 0 {
		return placeholder("no offer clicks in range"), nil
	}

	maxClicks := lo.MaxBy(in.Offers, func(a, b domain.OfferCount) bool { return a.Clicks > b.Clicks }).Clicks

	bars := lo.Map(in.Offers, func(row domain.OfferCount, _ int) chart.Value {
		return chart.Value{
			Value: float64(row.Clicks),
			Label: row.OfferSlug,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
	})

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Clicks by offer (top %d)", len(in.Offers)),
		Width:    panelWidth,
		Height:   panelHeight,
		BarWidth: barWidth(len(bars)),
		Bars:     bars,
		YAxis: chart.YAxis{
			// Explicit range avoids a degenerate axis when every bar is equal.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxClicks) + 1},
		},
	}

	return renderPNG(func(w *bytes.Buffer) error { return graph.Render(chart.PNG, w) })
}

func renderDaily(in Input) (image.Image, error) {
	if len(in.Daily) == 0 {
		return placeholder("no clicks in range"), nil
	}

	xs := make([]time.Time, len(in.Daily))
	ys := make([]float64, len(in.Daily))
	var maxClicks float64
	for i, row := range in.Daily {
		xs[i] = row.Day
		ys[i] = float64(row.Clicks)
		if ys[i] > maxClicks {
			maxClicks = ys[i]
		}
	}

	title := fmt.Sprintf("Clicks per day, %s to %s", in.From, in.To)
	if in.Country != "" {
		title += " (" + in.Country + ")"
	}

	// Pad the x range by half a day on both sides; with a single day the
	// range would otherwise be zero-width and fail to render.
	xMin := float64(xs[0].Add(-12 * time.Hour).UnixNano())
	xMax := float64(xs[len(xs)-1].Add(12 * time.Hour).UnixNano())

	graph := chart.Chart{
		Title:  title,
		Width:  panelWidth,
		Height: panelHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxClicks + 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "clicks",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    3,
				},
			},
		},
	}

	return renderPNG(func(w *bytes.Buffer) error { return graph.Render(chart.PNG, w) })
}

func renderPNG(render func(w *bytes.Buffer) error) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// placeholder draws a centered message on a blank panel.
func placeholder(msg string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, panelWidth, panelHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xFF}),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(msg)
	d.Dot = fixed.P(panelWidth/2-width.Round()/2, panelHeight/2)
	d.DrawString(msg)
	return img
}

func barWidth(n int) int {
	if n == 0 {
		return 40
	}
	w := (panelWidth - 100) / n
	if w > 60 {
		return 60
	}
	if w < 10 {
		return 10
	}
	return w
}
