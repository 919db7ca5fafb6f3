package exposure

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Buckets are keyed by half-decade of log10(lux): bucket 0 starts at
// 0.01 lux, each bucket spans ×√10. 21 buckets cover 0.01 to beyond
// full-sun illuminance.
const (
	numBuckets       = 21
	bucketsPerDecade = 2
	bucketLuxOrigin  = -2.0 // log10(0.01)
	confidenceHalfN  = 5.0  // sample count at which bucket confidence reaches 0.5
)

// Bucket is one learned lux range: the mean good exposure and gain observed
// there, with a sample-count-weighted confidence.
type Bucket struct {
	LuxLow       float64 `json:"lux_low"`
	LuxHigh      float64 `json:"lux_high"`
	SampleCount  int     `json:"sample_count"`
	MeanExposure float64 `json:"mean_exposure"`
	MeanGain     float64 `json:"mean_gain"`
	Confidence   float64 `json:"confidence"`
}

// BucketTable is an immutable learned-exposure model. It is built wholesale
// by Retrain and swapped in atomically; it is never mutated after
// construction, so concurrent readers need no locking.
type BucketTable struct {
	buckets [numBuckets]Bucket
}

// Prediction is the learned model's answer for a lux level.
type Prediction struct {
	Exposure   float64
	Gain       float64
	Confidence float64
}

func bucketIndex(lux, luxMin, luxMax float64) int {
	lux = clamp(lux, luxMin, luxMax)
	idx := int(math.Floor((math.Log10(lux) - bucketLuxOrigin) * bucketsPerDecade))
	if idx < 0 {
		idx = 0
	}
	if idx >= numBuckets {
		idx = numBuckets - 1
	}
	return idx
}

func bucketBounds(idx int) (low, high float64) {
	low = math.Pow(10, bucketLuxOrigin+float64(idx)/bucketsPerDecade)
	high = math.Pow(10, bucketLuxOrigin+float64(idx+1)/bucketsPerDecade)
	return low, high
}

func bucketCenterLog(idx int) float64 {
	return bucketLuxOrigin + (float64(idx)+0.5)/bucketsPerDecade
}

// IsGoodSample reports whether a historical sample qualifies for
// retraining: brightness landed in the configured good range, or the
// high-contrast low-lux exception for night-sky scenes (a starfield's mean
// is legitimately far below target).
func (p Params) IsGoodSample(s GoodSample) bool {
	if s.Exposure <= 0 || s.Gain <= 0 || s.Lux <= 0 {
		return false
	}
	if s.Brightness >= p.GoodBrightnessMin && s.Brightness <= p.GoodBrightnessMax {
		return true
	}
	return s.Lux < p.NightSkyLuxMax && s.StdDev > p.NightSkyStddevMin
}

// Retrain builds a fresh bucket table from a corpus of historical samples.
// Samples failing IsGoodSample are skipped; buckets with fewer than
// LearnedMinSamples qualifying samples stay unpopulated. The result
// replaces the previous table wholesale — retraining never mutates a live
// table.
func (p Params) Retrain(samples []GoodSample) *BucketTable {
	exposures := make([][]float64, numBuckets)
	gains := make([][]float64, numBuckets)

	for _, s := range samples {
		if !p.IsGoodSample(s) {
			continue
		}
		idx := bucketIndex(s.Lux, p.LuxMin, p.LuxMax)
		exposures[idx] = append(exposures[idx], s.Exposure)
		gains[idx] = append(gains[idx], s.Gain)
	}

	t := &BucketTable{}
	for i := 0; i < numBuckets; i++ {
		low, high := bucketBounds(i)
		b := Bucket{LuxLow: low, LuxHigh: high}
		if n := len(exposures[i]); n >= p.LearnedMinSamples {
			b.SampleCount = n
			b.MeanExposure = stat.Mean(exposures[i], nil)
			b.MeanGain = stat.Mean(gains[i], nil)
			b.Confidence = float64(n) / (float64(n) + confidenceHalfN)
		}
		t.buckets[i] = b
	}
	return t
}

// Buckets returns a copy of the populated buckets, for telemetry.
func (t *BucketTable) Buckets() []Bucket {
	var out []Bucket
	for _, b := range t.buckets {
		if b.SampleCount > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Predict looks up learned settings for a lux level. Resolution order:
// the exact bucket if populated; logarithmic interpolation between the
// nearest populated neighbors at ×0.7 confidence; the single nearest
// neighbor at ×0.5 confidence; otherwise no prediction.
func (t *BucketTable) Predict(lux float64, p Params) (Prediction, bool) {
	if t == nil {
		return Prediction{}, false
	}

	idx := bucketIndex(lux, p.LuxMin, p.LuxMax)
	if b := t.buckets[idx]; b.SampleCount > 0 {
		return Prediction{Exposure: b.MeanExposure, Gain: b.MeanGain, Confidence: b.Confidence}, true
	}

	lower, hasLower := t.nearestPopulated(idx-1, -1)
	upper, hasUpper := t.nearestPopulated(idx+1, +1)

	switch {
	case hasLower && hasUpper:
		lo, hi := t.buckets[lower], t.buckets[upper]
		u := (bucketCenterLog(idx) - bucketCenterLog(lower)) /
			(bucketCenterLog(upper) - bucketCenterLog(lower))
		conf := math.Min(lo.Confidence, hi.Confidence) * 0.7
		return Prediction{
			Exposure:   logLerp(lo.MeanExposure, hi.MeanExposure, u),
			Gain:       lo.MeanGain + u*(hi.MeanGain-lo.MeanGain),
			Confidence: conf,
		}, true
	case hasLower:
		b := t.buckets[lower]
		return Prediction{Exposure: b.MeanExposure, Gain: b.MeanGain, Confidence: b.Confidence * 0.5}, true
	case hasUpper:
		b := t.buckets[upper]
		return Prediction{Exposure: b.MeanExposure, Gain: b.MeanGain, Confidence: b.Confidence * 0.5}, true
	default:
		return Prediction{}, false
	}
}

func (t *BucketTable) nearestPopulated(start, step int) (int, bool) {
	for i := start; i >= 0 && i < numBuckets; i += step {
		if t.buckets[i].SampleCount > 0 {
			return i, true
		}
	}
	return 0, false
}

func logLerp(a, b, u float64) float64 {
	if a <= 0 || b <= 0 {
		return a + u*(b-a)
	}
	return math.Exp(math.Log(a) + u*(math.Log(b)-math.Log(a)))
}

// Trust computes the blend weight for a prediction. It starts from the
// prediction's own confidence and decays smoothly — not stepwise — as
// brightness error leaves the band and as the log-lux rate of change rises,
// so the safer formula path dominates during fast transitions and large
// error.
func (p Params) Trust(confidence, brightnessErr, logLuxRate float64) float64 {
	errExcess := (math.Abs(brightnessErr) - p.TrustErrorBand) / p.TrustErrorFalloff
	rateExcess := (math.Abs(logLuxRate) - p.TrustLuxRateBand) / p.TrustLuxRateFalloff

	trust := confidence
	trust *= 1 - clamp(errExcess, 0, 1)
	trust *= 1 - clamp(rateExcess, 0, 1)
	return clamp(trust, 0, 1)
}

// DriftCorrector supplements the learned blend: a bounded multiplicative
// correction that engages only after several consecutive cycles of
// consistently-signed brightness error, and decays toward neutral as soon
// as the sign becomes inconsistent. Bounds keep any single update ≤
// DriftMaxStep and the multiplier within [DriftMin, DriftMax].
type DriftCorrector struct {
	p          Params
	lastSign   int
	count      int
	multiplier float64
}

// NewDriftCorrector creates a corrector at the neutral multiplier.
func NewDriftCorrector(p Params) *DriftCorrector {
	return &DriftCorrector{p: p, multiplier: 1.0}
}

// Multiplier returns the current correction multiplier.
func (d *DriftCorrector) Multiplier() float64 {
	return d.multiplier
}

// Update folds one brightness error into the corrector and returns the new
// multiplier. Errors inside half the feedback tolerance count as unsigned.
func (d *DriftCorrector) Update(brightnessErr float64) float64 {
	deadband := d.p.BrightnessTolerance / 2

	sign := 0
	if brightnessErr > deadband {
		sign = 1
	} else if brightnessErr < -deadband {
		sign = -1
	}

	if sign == 0 || sign != d.lastSign {
		d.lastSign = sign
		if sign == 0 {
			d.count = 0
		} else {
			d.count = 1
		}
		// Inconsistent sign: decay toward neutral.
		d.multiplier += (1.0 - d.multiplier) * d.p.DriftDecay
		return d.multiplier
	}

	d.count++
	if d.count < d.p.DriftTriggerCycles {
		return d.multiplier
	}

	step := clamp(math.Abs(brightnessErr)/d.p.TargetBrightness*d.p.DriftGain, 0, d.p.DriftMaxStep)
	if sign < 0 {
		// Consistently too dark: push exposure up.
		d.multiplier *= 1 + step
	} else {
		d.multiplier *= 1 - step
	}
	d.multiplier = clamp(d.multiplier, d.p.DriftMin, d.p.DriftMax)
	return d.multiplier
}
