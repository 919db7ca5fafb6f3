package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// handleChart renders a quick line chart (HTML) of recent cycles using
// go-echarts. Debugging-only endpoint; no auth. Query params:
//   - n (optional) number of recent cycles, default the whole ring
func (ws *WebServer) handleChart(w http.ResponseWriter, r *http.Request) {
	history := ws.snapshot(parseN(r))
	if len(history) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no cycles observed yet")
		return
	}

	timestamps := make([]string, len(history))
	lux := make([]opts.LineData, len(history))
	shutter := make([]opts.LineData, len(history))
	correction := make([]opts.LineData, len(history))
	mean := make([]opts.LineData, len(history))
	for i, d := range history {
		timestamps[i] = d.Timestamp.Format("15:04:05")
		lux[i] = opts.LineData{Value: d.SmoothedLux}
		shutter[i] = opts.LineData{Value: d.AppliedExposure}
		correction[i] = opts.LineData{Value: d.CorrectionFactor}
		mean[i] = opts.LineData{Value: d.Brightness.Mean}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "exposure cycles",
			Subtitle: fmt.Sprintf("run %s, last %d cycles", ws.runID, len(history)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "log"}),
	)
	line.SetXAxis(timestamps).
		AddSeries("smoothed lux", lux).
		AddSeries("exposure (s)", shutter).
		AddSeries("correction factor", correction).
		AddSeries("frame mean", mean)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handlePlotPNG renders brightness and exposure history as a PNG via
// gonum/plot, for environments where an HTML chart is inconvenient.
func (ws *WebServer) handlePlotPNG(w http.ResponseWriter, r *http.Request) {
	history := ws.snapshot(parseN(r))
	if len(history) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no cycles observed yet")
		return
	}

	meanPts := make(plotter.XYs, len(history))
	expPts := make(plotter.XYs, len(history))
	for i, d := range history {
		meanPts[i].X = float64(i)
		meanPts[i].Y = d.Brightness.Mean
		expPts[i].X = float64(i)
		expPts[i].Y = d.AppliedExposure
	}

	p := plot.New()
	p.Title.Text = "brightness and exposure"
	p.X.Label.Text = "cycle"
	p.Y.Label.Text = "frame mean / exposure (s)"

	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("build plot: %v", err))
		return
	}
	meanLine.Width = vg.Points(1)
	expLine, err := plotter.NewLine(expPts)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("build plot: %v", err))
		return
	}
	expLine.Width = vg.Points(1)
	expLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(meanLine, expLine)
	p.Legend.Add("frame mean", meanLine)
	p.Legend.Add("exposure", expLine)
	p.Legend.Top = true

	writer, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render plot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := writer.WriteTo(w); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("write plot: %v", err))
	}
}

func parseN(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && v > 0 {
		return v
	}
	return 0
}
