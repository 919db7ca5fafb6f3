package exposure

// Probe luma levels considered degenerate. An all-dark probe cannot
// distinguish "dark" from "very dark", so lux is pinned rather than
// computed; same for a saturated probe at the other end.
const (
	probeDarkMean      = 2.0
	probeSaturatedMean = 250.0
)

// EstimateLux converts a probe capture's mean brightness and its known
// fixed settings into an ambient illuminance estimate. The function is
// monotonic in mean brightness: the same settings producing a brighter
// probe always yield a higher estimate. Degenerate probes (all-dark,
// all-saturated, nonsense settings) pin to the configured bounds instead
// of failing; division by zero is impossible.
func (p Params) EstimateLux(meanBrightness, probeExposure, probeGain float64) float64 {
	if probeExposure <= 0 || probeGain <= 0 {
		return p.LuxMin
	}
	if meanBrightness <= probeDarkMean {
		return p.LuxMin
	}
	if meanBrightness >= probeSaturatedMean {
		return p.LuxMax
	}

	lux := p.LuxCalibration * meanBrightness / (probeExposure * probeGain)
	if lux < p.LuxMin {
		return p.LuxMin
	}
	if lux > p.LuxMax {
		return p.LuxMax
	}
	return lux
}
