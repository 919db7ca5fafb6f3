package exposure

import "math"

// RawTarget is the pre-clamp, pre-ramp output of the target calculator.
type RawTarget struct {
	Exposure     float64
	Gain         float64
	WB           WBGains
	AutoExposure bool
}

// TransitionPosition maps smoothed lux onto [0, 1] within the transition
// band: 0 at the day threshold, 1 at the night threshold.
func (p Params) TransitionPosition(lux float64) float64 {
	t := (p.DayThreshold - lux) / (p.DayThreshold - p.NightThreshold)
	return clamp(t, 0, 1)
}

// RawTargetFor computes the per-mode raw target settings.
//
// Night pins everything: ceiling exposure, fixed gain, night white balance,
// auto exposure off. Day hands exposure and gain to the hardware AE loop
// (targets advisory) with the day white balance. Transition computes
// exposure from inverse lux and interpolates gain and white balance by
// band position.
func (p Params) RawTargetFor(mode Mode, lux float64) RawTarget {
	switch mode {
	case ModeNight:
		return RawTarget{
			Exposure: p.NightExposureCeiling,
			Gain:     p.NightGain,
			WB:       p.NightWB,
		}
	case ModeDay:
		return RawTarget{
			Exposure:     p.DayExposureFloor,
			Gain:         p.GainFloor,
			WB:           p.DayWB,
			AutoExposure: true,
		}
	default:
		t := p.TransitionPosition(lux)
		exp := p.TransitionK * p.TransitionRefLux / math.Max(lux, p.LuxEpsilon)
		return RawTarget{
			Exposure: clamp(exp, p.DayExposureFloor, p.NightExposureCeiling),
			Gain:     p.GainFloor + t*(p.NightGain-p.GainFloor),
			WB:       lerpWB(p.DayWB, p.NightWB, t),
		}
	}
}

// AllocateEV splits a total exposure value into (exposure, gain) under the
// shutter-before-gain policy: all headroom goes to shutter first, and gain
// rises above its floor only once shutter sits at the ceiling. Longer
// integration is always preferred over higher gain because gain amplifies
// sensor noise; this single allocation rule yields the sequential ramp in
// both directions (gain returns to its floor before shutter shortens on the
// way back to day).
func (p Params) AllocateEV(ev float64) (exposure, gain float64) {
	if ev <= 0 {
		return p.DayExposureFloor, p.GainFloor
	}

	// EV achievable on shutter alone.
	shutterOnly := p.NightExposureCeiling * p.GainFloor
	if ev <= shutterOnly {
		exposure = ev / p.GainFloor
		if exposure < p.DayExposureFloor {
			exposure = p.DayExposureFloor
		}
		return exposure, p.GainFloor
	}

	gain = ev / p.NightExposureCeiling
	if gain > p.GainCeiling {
		gain = p.GainCeiling
	}
	return p.NightExposureCeiling, gain
}

// Rebalance reapplies the shutter-before-gain policy to a target whose
// exposure has been scaled by corrections, preserving its EV.
func (p Params) Rebalance(target RawTarget) RawTarget {
	exposure, gain := p.AllocateEV(target.Exposure * target.Gain)
	target.Exposure = exposure
	target.Gain = gain
	return target
}

func lerpWB(a, b WBGains, t float64) WBGains {
	return WBGains{
		Red:  a.Red + t*(b.Red-a.Red),
		Blue: a.Blue + t*(b.Blue-a.Blue),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
