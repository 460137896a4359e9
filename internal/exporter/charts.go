package exporter

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"aurelion/internal/analytics"
	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
)

// Chart geometry. Bars fill the plot area left to right with a fixed
// gap; the canvas size matches what the docs embed.
const (
	chartWidth   = 800
	chartHeight  = 400
	chartPadding = 40
	barGap       = 8
)

var (
	chartBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	chartAxis       = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	chartBar        = color.RGBA{R: 41, G: 128, B: 185, A: 255}
)

// ChartRenderer writes the revenue charts as PNG files.
type ChartRenderer struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewChartRenderer creates a chart renderer.
func NewChartRenderer(paths *config.Paths, logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{paths: paths, logger: logger}
}

// WriteCharts renders the monthly revenue and top products bar charts
// under the export directory.
func (r *ChartRenderer) WriteCharts(ctx context.Context, summary *analytics.Summary) error {
	monthly := make([]float64, len(summary.MonthlyTickets))
	for i, mt := range summary.MonthlyTickets {
		monthly[i] = mt.Revenue
	}
	if err := r.writeChart("charts/monthly_revenue.png", monthly); err != nil {
		return apperrors.NewExportError("charts/monthly_revenue.png", err)
	}

	top := make([]float64, len(summary.TopProducts))
	for i, tp := range summary.TopProducts {
		top[i] = tp.Revenue
	}
	if err := r.writeChart("charts/top_products.png", top); err != nil {
		return apperrors.NewExportError("charts/top_products.png", err)
	}

	r.logger.InfoContext(ctx, "charts rendered",
		slog.Int("monthly_bars", len(monthly)),
		slog.Int("product_bars", len(top)))
	return nil
}

func (r *ChartRenderer) writeChart(file string, values []float64) error {
	path := r.paths.GetExportPath(file)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(out, renderBars(values)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// renderBars draws a plain vertical bar chart. Values are scaled to the
// plot height; negative values clamp to zero.
func renderBars(values []float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fill(img, img.Bounds(), chartBackground)

	plot := image.Rect(chartPadding, chartPadding, chartWidth-chartPadding, chartHeight-chartPadding)

	// Axes
	fill(img, image.Rect(plot.Min.X-1, plot.Min.Y, plot.Min.X, plot.Max.Y+1), chartAxis)
	fill(img, image.Rect(plot.Min.X-1, plot.Max.Y, plot.Max.X, plot.Max.Y+1), chartAxis)

	if len(values) == 0 {
		return img
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return img
	}

	barWidth := (plot.Dx() - barGap*(len(values)+1)) / len(values)
	if barWidth < 1 {
		barWidth = 1
	}

	x := plot.Min.X + barGap
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		height := int(float64(plot.Dy()) * v / max)
		bar := image.Rect(x, plot.Max.Y-height, x+barWidth, plot.Max.Y)
		fill(img, bar, chartBar)
		x += barWidth + barGap
	}

	return img
}

func fill(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
