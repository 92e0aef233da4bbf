package diagnostics

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// maxCells bounds each heatmap axis; larger planes are block-averaged.
const maxCells = 128

// WriteReport renders an HTML page with heatmaps of the original and cleaned
// planes, the spectrum magnitude and a chart of the removed peaks.
func WriteReport(path string, original, cleaned, magnitude *mat.Dense, peaks []Peak) error {
	page := components.NewPage()
	page.AddCharts(
		heatmap("Original", original),
		heatmap("Cleaned", cleaned),
		heatmap("FFT Magnitude", magnitude),
		peakChart(peaks),
	)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

func heatmap(title string, plane *mat.Dense) *charts.HeatMap {
	small := downsample(plane, maxCells)
	w, h := small.Dims()

	xLabels := make([]string, w)
	for i := range xLabels {
		xLabels[i] = strconv.Itoa(i)
	}
	yLabels := make([]string, h)
	for i := range yLabels {
		yLabels[i] = strconv.Itoa(i)
	}

	data := make([]opts.HeatMapData, 0, w*h)
	for x := range w {
		for y := range h {
			data = append(data, opts.HeatMapData{Value: [3]any{x, y, small.At(x, y)}})
		}
	}

	vals := values(small)
	lo, hi := floats.Min(vals), floats.Max(vals)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%dx%d cells", w, h),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "category", Data: xLabels}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "category", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	hm.AddSeries(title, data)
	return hm
}

func peakChart(peaks []Peak) *charts.Bar {
	labels := make([]string, len(peaks))
	data := make([]opts.BarData, len(peaks))
	for i, p := range peaks {
		labels[i] = fmt.Sprintf("#%d (%d,%d)", i+1, p.X, p.Y)
		data[i] = opts.BarData{Value: p.Magnitude}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Removed peaks",
			Subtitle: "|F| at the time of removal",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("|F|", data)
	return bar
}

// downsample averages plane over square blocks so neither axis exceeds limit.
func downsample(plane *mat.Dense, limit int) *mat.Dense {
	w, h := plane.Dims()
	step := max((max(w, h)+limit-1)/limit, 1)
	if step == 1 {
		return plane
	}
	sw, sh := (w+step-1)/step, (h+step-1)/step
	out := mat.NewDense(sw, sh, nil)
	for i := range sw {
		for j := range sh {
			var sum float64
			var n int
			for x := i * step; x < min((i+1)*step, w); x++ {
				for y := j * step; y < min((j+1)*step, h); y++ {
					sum += plane.At(x, y)
					n++
				}
			}
			out.Set(i, j, sum/float64(n))
		}
	}
	return out
}
