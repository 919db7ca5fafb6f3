package exposure

import "math"

// ApplyEVContinuity enforces photometric continuity on the first manual
// frame after leaving Day. If the proposed target EV differs from the
// seeded auto-exposure EV by more than the tolerance, the target exposure
// is overridden so the first manual frame matches the last automatic one
// exactly. Fires at most once per Day exit: the caller sets
// State.EVClampApplied afterwards and resets it only when Day is
// re-entered.
//
// Returns the possibly-adjusted target and whether the override fired.
func (p Params) ApplyEVContinuity(state *State, target RawTarget) (RawTarget, bool) {
	if state.EVClampApplied || !state.HasSeed {
		return target, false
	}

	seedEV := state.TransitionSeed.EV()
	proposedEV := target.Exposure * target.Gain
	if seedEV <= 0 || target.Gain <= 0 {
		return target, false
	}

	rel := math.Abs(proposedEV-seedEV) / seedEV
	if rel <= p.EVClampTolerance {
		return target, false
	}

	target.Exposure = seedEV / target.Gain
	return target, true
}

// ApplyExtremeClamp is the hard backstop behind normal ramping: if the last
// governed capture was blown far past the extreme bounds, force a fixed
// fractional exposure change regardless of what the ramp produced. It
// should fire rarely; the severity-driven ramp handles everything short of
// a genuinely broken frame.
//
// Returns the possibly-overridden exposure and whether a clamp fired.
func (p Params) ApplyExtremeClamp(lastMean, previousExposure, rampedExposure float64) (float64, bool) {
	if previousExposure <= 0 {
		return rampedExposure, false
	}

	if lastMean > p.ExtremeHighMean {
		forced := previousExposure * (1 - p.ExtremeStepFraction)
		if forced < p.DayExposureFloor {
			forced = p.DayExposureFloor
		}
		if rampedExposure > forced {
			return forced, true
		}
		return rampedExposure, false
	}

	if lastMean > 0 && lastMean < p.ExtremeLowMean {
		forced := previousExposure * (1 + p.ExtremeStepFraction)
		if forced > p.NightExposureCeiling {
			forced = p.NightExposureCeiling
		}
		if rampedExposure < forced {
			return forced, true
		}
		return rampedExposure, false
	}

	return rampedExposure, false
}
