package exposure

import "time"

// Smoother turns noisy per-cycle lux readings into a stable smoothed value
// and an accepted Mode. Smoothing is a plain EMA; mode changes go through
// hold-count hysteresis so a transient occlusion (headlights, a bird on the
// lens) can never flip the regime. The smoother always reports the accepted
// mode, never the raw candidate.
type Smoother struct {
	p Params

	sample      LightSample // rolling window of one
	accepted    Mode
	pending     Mode // last dissenting candidate
	holdCount   int
	initialized bool
}

// NewSmoother creates a light smoother. The accepted mode before the first
// sample is Day: starting bright and ramping down is always safe, starting
// dark and flashing bright is not.
func NewSmoother(p Params) *Smoother {
	return &Smoother{p: p, accepted: ModeDay}
}

// Update folds one raw lux reading into the EMA and advances the hysteresis
// state machine. Returns the updated light sample.
func (s *Smoother) Update(rawLux float64, now time.Time) LightSample {
	if !s.initialized {
		s.sample = LightSample{RawLux: rawLux, SmoothedLux: rawLux, Timestamp: now}
		s.accepted = s.classify(rawLux)
		s.initialized = true
		return s.sample
	}

	s.sample.RawLux = rawLux
	s.sample.SmoothedLux = s.p.Alpha*rawLux + (1-s.p.Alpha)*s.sample.SmoothedLux
	s.sample.Timestamp = now

	candidate := s.classify(s.sample.SmoothedLux)
	switch {
	case candidate == s.accepted:
		s.holdCount = 0
	case candidate == s.pending:
		s.holdCount++
		if s.holdCount >= s.p.ModeHoldCycles {
			s.accepted = candidate
			s.holdCount = 0
		}
	default:
		// New dissenting candidate: restart the count.
		s.pending = candidate
		s.holdCount = 1
		if s.holdCount >= s.p.ModeHoldCycles {
			s.accepted = candidate
			s.holdCount = 0
		}
	}

	return s.sample
}

func (s *Smoother) classify(lux float64) Mode {
	switch {
	case lux < s.p.NightThreshold:
		return ModeNight
	case lux > s.p.DayThreshold:
		return ModeDay
	default:
		return ModeTransition
	}
}

// Mode returns the accepted mode.
func (s *Smoother) Mode() Mode {
	return s.accepted
}

// Sample returns the current light sample.
func (s *Smoother) Sample() LightSample {
	return s.sample
}
