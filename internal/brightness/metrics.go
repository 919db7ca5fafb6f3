package brightness

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Clipping thresholds for 8-bit luma. Pixels at or below UnderexposedLevel
// count as crushed blacks, at or above OverexposedLevel as blown highlights.
const (
	UnderexposedLevel = 10
	OverexposedLevel  = 245
)

// Metrics holds scalar statistics computed from a grayscale pixel buffer.
// Recomputed fresh from pixels on every capture; never persisted here.
type Metrics struct {
	Mean            float64 `json:"mean"`
	Median          float64 `json:"median"`
	StdDev          float64 `json:"stddev"`
	P5              float64 `json:"p5"`
	P25             float64 `json:"p25"`
	P75             float64 `json:"p75"`
	P95             float64 `json:"p95"`
	UnderexposedPct float64 `json:"underexposed_pct"`
	OverexposedPct  float64 `json:"overexposed_pct"`
}

// Analyze computes Metrics from an 8-bit luma buffer. An empty buffer
// yields the zero Metrics value; callers treat that as a degenerate probe.
func Analyze(pixels []uint8) Metrics {
	if len(pixels) == 0 {
		return Metrics{}
	}

	values := make([]float64, len(pixels))
	var under, over int
	for i, p := range pixels {
		values[i] = float64(p)
		if p <= UnderexposedLevel {
			under++
		}
		if p >= OverexposedLevel {
			over++
		}
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}

	sort.Float64s(values)

	n := float64(len(pixels))
	return Metrics{
		Mean:           mean,
		Median:         stat.Quantile(0.5, stat.Empirical, values, nil),
		StdDev:         std,
		P5:             stat.Quantile(0.05, stat.Empirical, values, nil),
		P25:            stat.Quantile(0.25, stat.Empirical, values, nil),
		P75:            stat.Quantile(0.75, stat.Empirical, values, nil),
		P95:            stat.Quantile(0.95, stat.Empirical, values, nil),
		UnderexposedPct: float64(under) / n * 100,
		OverexposedPct:  float64(over) / n * 100,
	}
}
