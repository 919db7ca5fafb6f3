package exposure

import "math"

// FeedbackController derives a slow multiplicative correction factor from
// post-capture brightness error. It is the integral layer beneath the
// faster interpolation ramp: each cycle nudges the factor by at most
// FeedbackMaxStep, and the factor is clamped to
// [CorrectionMin, CorrectionMax], so one bad reading cannot cascade into
// runaway exposure.
type FeedbackController struct {
	p      Params
	factor float64
}

// NewFeedbackController creates a controller with a neutral factor.
func NewFeedbackController(p Params) *FeedbackController {
	return &FeedbackController{p: p, factor: 1.0}
}

// Factor returns the current correction factor.
func (f *FeedbackController) Factor() float64 {
	return f.factor
}

// Update folds one post-capture brightness reading into the factor and
// returns the new value. Inside the tolerance band the factor decays slowly
// toward neutral; outside it moves against the error.
func (f *FeedbackController) Update(actualMean float64) float64 {
	err := actualMean - f.p.TargetBrightness

	if math.Abs(err) <= f.p.BrightnessTolerance {
		f.factor += (1.0 - f.factor) * f.p.FeedbackDecay
	} else {
		step := (err / f.p.TargetBrightness) * f.p.FeedbackStrength
		step = clamp(step, -f.p.FeedbackMaxStep, f.p.FeedbackMaxStep)
		f.factor *= 1.0 - step
	}

	f.factor = clamp(f.factor, f.p.CorrectionMin, f.p.CorrectionMax)
	return f.factor
}

// Decay relaxes the factor toward neutral without consuming a brightness
// reading, used while hardware auto exposure owns the error.
func (f *FeedbackController) Decay() float64 {
	f.factor += (1.0 - f.factor) * f.p.FeedbackDecay
	f.factor = clamp(f.factor, f.p.CorrectionMin, f.p.CorrectionMax)
	return f.factor
}

// RatioExposure is the alternative single-layer feedback mode: scale the
// previous exposure directly by (target/actual)^damping. With damping in
// [0.5, 0.8] it converges in a handful of cycles without the compounding
// sluggishness of stacked attenuated layers.
func (p Params) RatioExposure(oldExposure, actualMean float64) float64 {
	if actualMean <= 0 {
		actualMean = 1
	}
	ratio := p.TargetBrightness / actualMean
	next := oldExposure * math.Pow(ratio, p.RatioDamping)
	return clamp(next, p.DayExposureFloor, p.NightExposureCeiling)
}
