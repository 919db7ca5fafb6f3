package brightness

// Severity classifies how far brightness has deviated from target in one
// direction. It drives ramp-speed selection in the exposure engine.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Flags carries the per-direction severity for a single capture.
type Flags struct {
	Over  Severity `json:"over"`
	Under Severity `json:"under"`
}

// ClearFlags returns Flags with both directions at SeverityNone.
func ClearFlags() Flags {
	return Flags{Over: SeverityNone, Under: SeverityNone}
}

// Thresholds holds the enter/clear levels for both severity directions.
// Mean levels are 8-bit luma, clip levels are percentages.
type Thresholds struct {
	OverWarnMean     float64
	OverWarnClipPct  float64
	OverCritMean     float64
	OverCritClipPct  float64
	OverClearMean    float64
	OverClearClipPct float64
	UnderWarnMean    float64
	UnderCritMean    float64
	UnderClearMean   float64
}

// DefaultThresholds returns the stock severity thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OverWarnMean:     150,
		OverWarnClipPct:  5,
		OverCritMean:     170,
		OverCritClipPct:  10,
		OverClearMean:    130,
		OverClearClipPct: 3,
		UnderWarnMean:    90,
		UnderCritMean:    70,
		UnderClearMean:   105,
	}
}

// Classify derives fresh severity flags from the latest metrics. The
// previous flags matter only inside the hysteresis band between the warning
// and clear levels: a direction already at warning holds there until its
// clear condition is met, so severity cannot chatter around a single
// threshold. Escalation to critical and de-escalation below clear are
// immediate.
func (th Thresholds) Classify(m Metrics, prev Flags) Flags {
	return Flags{
		Over:  th.classifyOver(m, prev.Over),
		Under: th.classifyUnder(m, prev.Under),
	}
}

func (th Thresholds) classifyOver(m Metrics, prev Severity) Severity {
	switch {
	case m.Mean > th.OverCritMean || m.OverexposedPct > th.OverCritClipPct:
		return SeverityCritical
	case m.Mean > th.OverWarnMean || m.OverexposedPct > th.OverWarnClipPct:
		return SeverityWarning
	case m.Mean < th.OverClearMean && m.OverexposedPct < th.OverClearClipPct:
		return SeverityNone
	case prev == SeverityCritical:
		// Below critical entry but not yet clear: hold at warning.
		return SeverityWarning
	case prev == SeverityWarning:
		return SeverityWarning
	default:
		return SeverityNone
	}
}

func (th Thresholds) classifyUnder(m Metrics, prev Severity) Severity {
	switch {
	case m.Mean < th.UnderCritMean:
		return SeverityCritical
	case m.Mean < th.UnderWarnMean:
		return SeverityWarning
	case m.Mean > th.UnderClearMean:
		return SeverityNone
	case prev == SeverityCritical:
		return SeverityWarning
	case prev == SeverityWarning:
		return SeverityWarning
	default:
		return SeverityNone
	}
}

// Max returns the more severe of the two directions, used for ramp-speed
// selection where either direction should accelerate the ramp.
func (f Flags) Max() Severity {
	if f.Over == SeverityCritical || f.Under == SeverityCritical {
		return SeverityCritical
	}
	if f.Over == SeverityWarning || f.Under == SeverityWarning {
		return SeverityWarning
	}
	return SeverityNone
}
