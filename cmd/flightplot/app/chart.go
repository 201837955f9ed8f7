package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"time"

	"github.com/golang/freetype"
	"golang.org/x/image/font"

	"github.com/openflight/tello/internal/storage"
)

const (
	dpi      = 72.0
	fontSize = 12.0

	// Border sizes in pixels around the plot area
	topBorder    = 20
	leftBorder   = 20
	bottomBorder = 60
	rightBorder  = 20

	timeLabelFormat = "15:04:05"
	pixelsPerLabel  = 150
)

var (
	backgroundColor = color.RGBA{R: 0x18, G: 0x18, B: 0x20, A: 0xff}
	gridColor       = color.RGBA{R: 0x38, G: 0x38, B: 0x44, A: 0xff}

	heightColor  = color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff}
	batteryColor = color.RGBA{R: 0xff, G: 0xc1, B: 0x07, A: 0xff}
	tempColor    = color.RGBA{R: 0xef, G: 0x53, B: 0x50, A: 0xff}
)

// series is one telemetry quantity plotted over the flight, scaled to its
// own min/max so unrelated units share the plot area.
type series struct {
	name    string
	unit    string
	color   color.RGBA
	extract func(storage.Record) float64
}

var chartSeries = []series{
	{"height", "cm", heightColor, func(r storage.Record) float64 { return float64(r.State.Height) }},
	{"battery", "%", batteryColor, func(r storage.Record) float64 { return float64(r.State.Battery) }},
	{"temp high", "°C", tempColor, func(r storage.Record) float64 { return float64(r.State.TemperatureHigh) }},
}

// ChartConfig holds the chart geometry and annotation font.
type ChartConfig struct {
	Width    int
	Height   int
	FontPath string // empty disables annotations
}

// ChartRenderer draws a flight's telemetry series onto one timeline image.
type ChartRenderer struct {
	config  ChartConfig
	context *freetype.Context // nil when annotations are disabled
}

// NewChartRenderer creates a renderer, loading the annotation font when one
// is configured.
func NewChartRenderer(config ChartConfig) (*ChartRenderer, error) {
	r := &ChartRenderer{config: config}

	if config.FontPath != "" {
		fontBytes, err := os.ReadFile(config.FontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}
		parsedFont, err := freetype.ParseFont(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}

		ctx := freetype.NewContext()
		ctx.SetDPI(dpi)
		ctx.SetFont(parsedFont)
		ctx.SetFontSize(fontSize)
		ctx.SetHinting(font.HintingFull)
		r.context = ctx
	}

	return r, nil
}

// Render draws the configured series for the given records, which must be
// in timestamp order.
func (r *ChartRenderer) Render(records []storage.Record) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	plot := image.Rect(leftBorder, topBorder,
		r.config.Width-rightBorder, r.config.Height-bottomBorder)

	r.drawGrid(img, plot)

	start := records[0].Timestamp
	end := records[len(records)-1].Timestamp
	span := end.Sub(start)
	if span <= 0 {
		span = time.Second
	}

	for _, s := range chartSeries {
		r.drawSeries(img, plot, s, records, start, span)
	}

	if r.context != nil {
		if err := r.annotate(img, plot, records, start, end, span); err != nil {
			return nil, err
		}
	}

	return img, nil
}

func (r *ChartRenderer) drawGrid(img *image.RGBA, plot image.Rectangle) {
	for i := 0; i <= 4; i++ {
		y := plot.Min.Y + (plot.Dy()*i)/4
		for x := plot.Min.X; x < plot.Max.X; x++ {
			img.Set(x, y, gridColor)
		}
	}
}

func (r *ChartRenderer) drawSeries(img *image.RGBA, plot image.Rectangle, s series, records []storage.Record, start time.Time, span time.Duration) {
	lo, hi := seriesBounds(s, records)
	if hi == lo {
		hi = lo + 1 // flat series renders as a straight line
	}

	var prevX, prevY int
	for i, rec := range records {
		v := s.extract(rec)
		x := plot.Min.X + int(float64(plot.Dx()-1)*rec.Timestamp.Sub(start).Seconds()/span.Seconds())
		y := plot.Max.Y - 1 - int(float64(plot.Dy()-1)*(v-lo)/(hi-lo))

		if i > 0 {
			drawLine(img, prevX, prevY, x, y, s.color)
		}
		prevX, prevY = x, y
	}
}

func (r *ChartRenderer) annotate(img *image.RGBA, plot image.Rectangle, records []storage.Record, start, end time.Time, span time.Duration) error {
	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)
	r.context.SetSrc(image.White)

	// time scale along the bottom of the plot area
	count := plot.Dx() / pixelsPerLabel
	if count < 1 {
		count = 1
	}
	for i := 0; i <= count; i++ {
		x := plot.Min.X + (plot.Dx()*i)/count
		at := start.Add(time.Duration(float64(span) * float64(i) / float64(count)))

		for y := plot.Max.Y; y < plot.Max.Y+5; y++ {
			img.Set(x, y, image.White)
		}

		pt := freetype.Pt(x-30, plot.Max.Y+20)
		if _, err := r.context.DrawString(at.Local().Format(timeLabelFormat), pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}

	// legend with per-series value ranges
	x := plot.Min.X
	for _, s := range chartSeries {
		lo, hi := seriesBounds(s, records)
		label := fmt.Sprintf("%s %g-%g %s", s.name, lo, hi, s.unit)

		for dy := 0; dy < 10; dy++ {
			for dx := 0; dx < 10; dx++ {
				img.Set(x+dx, plot.Max.Y+30+dy, s.color)
			}
		}

		pt := freetype.Pt(x+14, plot.Max.Y+40)
		if _, err := r.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing legend: %w", err)
		}
		x += 14 + len(label)*8 + 30
	}

	return nil
}

func seriesBounds(s series, records []storage.Record) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, rec := range records {
		v := s.extract(rec)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// drawLine draws a 1px line segment with the classic integer Bresenham
// walk; telemetry arrives often enough that unsmoothed segments look fine.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
