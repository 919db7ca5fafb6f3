package exposure

import (
	"math"

	"github.com/ekstremedia/raspilapse-sub000/internal/brightness"
)

// SpeedFor selects the per-cycle interpolation speed from the current
// severity flags. Either direction at critical wins; warning in either
// direction lifts the speed above default. Underexposure is evaluated in
// every mode, not only at the exposure ceiling, so light collapsing faster
// than the default ramp still gets the fast rate.
func (p Params) SpeedFor(flags brightness.Flags) float64 {
	switch flags.Max() {
	case brightness.SeverityCritical:
		return p.CriticalSpeed
	case brightness.SeverityWarning:
		return p.WarningSpeed
	default:
		return p.DefaultSpeed
	}
}

// RampExposure moves an applied exposure value (shutter seconds or a whole
// EV) toward target by speed, interpolating in log space: perceived
// brightness responds logarithmically to exposure, so equal log steps are
// equal visual steps and a large absolute jump near the ceiling doesn't
// flash.
func RampExposure(applied, target, speed float64) float64 {
	if applied <= 0 || target <= 0 {
		// Log space undefined; fall back to linear.
		return applied + speed*(target-applied)
	}
	logApplied := math.Log(applied)
	logTarget := math.Log(target)
	return math.Exp(logApplied + speed*(logTarget-logApplied))
}

// RampLinear moves applied toward target by speed in linear space, used for
// the white balance channels.
func RampLinear(applied, target, speed float64) float64 {
	return applied + speed*(target-applied)
}

// RampWB interpolates both white balance gains linearly.
func RampWB(applied, target WBGains, speed float64) WBGains {
	return WBGains{
		Red:  RampLinear(applied.Red, target.Red, speed),
		Blue: RampLinear(applied.Blue, target.Blue, speed),
	}
}
