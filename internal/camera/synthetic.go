package camera

import (
	"context"
	"math"
	"time"

	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
	"github.com/ekstremedia/raspilapse-sub000/internal/timeutil"
)

// Synthetic simulates a diurnal scene for dev mode and tests. Scene
// illuminance follows a smooth log-lux curve through one compressed day,
// and frames respond photometrically to the requested settings, so the
// whole control loop can be exercised without camera hardware.
type Synthetic struct {
	p     exposure.Params
	clock timeutil.Clock
	start time.Time

	// DayLength is how long one full simulated day takes.
	DayLength float64 // seconds

	// PeakLogLux and TroughLogLux bound the diurnal log10(lux) curve.
	PeakLogLux   float64
	TroughLogLux float64
}

// NewSynthetic builds a synthetic scene on the real clock with a 20 minute
// day, fast enough to watch a full cycle during development.
func NewSynthetic(p exposure.Params, clock timeutil.Clock) *Synthetic {
	return &Synthetic{
		p:            p,
		clock:        clock,
		start:        clock.Now(),
		DayLength:    20 * 60,
		PeakLogLux:   4.3,  // ~20k lux, overcast daylight
		TroughLogLux: -1.0, // 0.1 lux, moonlit
	}
}

// SceneLux returns the scene illuminance at the current simulated time.
func (c *Synthetic) SceneLux() float64 {
	elapsed := c.clock.Since(c.start).Seconds()
	phase := 2 * math.Pi * elapsed / c.DayLength
	mid := (c.PeakLogLux + c.TroughLogLux) / 2
	amp := (c.PeakLogLux - c.TroughLogLux) / 2
	return math.Pow(10, mid+amp*math.Sin(phase))
}

// Probe simulates the fixed-setting light measurement capture.
func (c *Synthetic) Probe(context.Context) (exposure.Frame, error) {
	mean := c.SceneLux() * c.p.ProbeExposure * c.p.ProbeGain / c.p.LuxCalibration
	return exposure.Frame{
		Pixels:   scenePixels(mean),
		Exposure: c.p.ProbeExposure,
		Gain:     c.p.ProbeGain,
	}, nil
}

// Capture simulates the governed capture. Under auto exposure the simulated
// AE loop picks the exposure value that lands the frame on a mean of 120;
// under manual control the frame responds linearly to the requested EV.
func (c *Synthetic) Capture(_ context.Context, s exposure.AppliedSettings) (exposure.Frame, error) {
	lux := c.SceneLux()

	if s.AutoExposure {
		ev := 120 * c.p.LuxCalibration / math.Max(lux, c.p.LuxEpsilon)
		exp, gain := c.p.AllocateEV(ev)
		mean := lux * exp * gain / c.p.LuxCalibration
		return exposure.Frame{
			Pixels:   scenePixels(mean),
			Exposure: exp,
			Gain:     gain,
			WB:       s.WB,
		}, nil
	}

	mean := lux * s.EV() / c.p.LuxCalibration
	return exposure.Frame{
		Pixels:   scenePixels(mean),
		Exposure: s.Exposure,
		Gain:     s.Gain,
		WB:       s.WB,
	}, nil
}

// scenePixels builds a luma buffer around the given mean with a symmetric
// spread, so analysis sees realistic non-zero contrast.
func scenePixels(mean float64) []uint8 {
	const spread = 24.0
	px := make([]uint8, 64*48)
	for i := range px {
		offset := spread * math.Sin(float64(i)*2*math.Pi/64)
		px[i] = uint8(clampLevel(mean + offset))
	}
	return px
}

func clampLevel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
