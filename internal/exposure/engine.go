package exposure

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/ekstremedia/raspilapse-sub000/internal/brightness"
	"github.com/ekstremedia/raspilapse-sub000/internal/monitoring"
)

// Engine is the per-camera exposure decision orchestrator. It runs strictly
// sequentially, exactly once per capture cycle, and must never be
// re-entered concurrently for the same camera: all of its state is mutated
// in place without locks. The one concession to concurrency is the learned
// bucket table, which an out-of-band retrainer may swap atomically between
// cycles.
type Engine struct {
	p        Params
	cam      Camera
	smoother *Smoother
	feedback *FeedbackController
	drift    *DriftCorrector
	buckets  atomic.Pointer[BucketTable]

	state        State
	severity     brightness.Flags
	lastGoverned brightness.Metrics
	hasGoverned  bool
	prevMode     Mode
	hasPrevMode  bool
	prevLogLux   float64
	hasPrevLux   bool
}

// NewEngine builds an engine around validated params and a capture
// collaborator. Each camera needs its own Engine; nothing is shared.
func NewEngine(p Params, cam Camera) *Engine {
	return &Engine{
		p:        p,
		cam:      cam,
		smoother: NewSmoother(p),
		feedback: NewFeedbackController(p),
		drift:    NewDriftCorrector(p),
		state:    State{CorrectionFactor: 1.0},
		severity: brightness.ClearFlags(),
	}
}

// SetBucketTable swaps in a freshly retrained learned model. Safe to call
// from the retraining goroutine; readers always observe either the old or
// the new table, never a partial one.
func (e *Engine) SetBucketTable(t *BucketTable) {
	e.buckets.Store(t)
}

// State returns a copy of the per-camera exposure state.
func (e *Engine) State() State {
	return e.state
}

// RunCycle performs one full decision cycle: probe, classify, compute
// targets, clamp, ramp, capture, and fold the capture's brightness back
// into the correction loops. The returned Diagnostics describe the cycle
// for logging and persistence. Capture errors are returned unprocessed;
// retry policy belongs to the caller.
func (e *Engine) RunCycle(ctx context.Context) (Diagnostics, error) {
	now := time.Now()

	probe, err := e.cam.Probe(ctx)
	if err != nil {
		return Diagnostics{}, fmt.Errorf("probe capture: %w", err)
	}
	probeMetrics := brightness.Analyze(probe.Pixels)
	rawLux := e.p.EstimateLux(probeMetrics.Mean, probe.Exposure, probe.Gain)

	sample := e.smoother.Update(rawLux, now)
	mode := e.smoother.Mode()

	logLux := math.Log10(math.Max(sample.SmoothedLux, e.p.LuxMin))
	var logLuxRate float64
	if e.hasPrevLux {
		logLuxRate = logLux - e.prevLogLux
	}
	e.prevLogLux = logLux
	e.hasPrevLux = true

	e.noteModeChange(mode)

	diag := Diagnostics{
		Timestamp:        now,
		Mode:             mode,
		RawLux:           sample.RawLux,
		SmoothedLux:      sample.SmoothedLux,
		CorrectionFactor: e.state.CorrectionFactor,
		DriftMultiplier:  e.drift.Multiplier(),
	}
	if mode == ModeTransition {
		diag.TransitionPosition = e.p.TransitionPosition(sample.SmoothedLux)
	}

	target := e.p.RawTargetFor(mode, sample.SmoothedLux)

	var settings AppliedSettings
	if mode == ModeDay {
		// Hardware AE owns exposure and gain; targets are advisory.
		e.state.TargetExposure = target.Exposure
		e.state.TargetGain = target.Gain
		settings = AppliedSettings{
			Exposure:     target.Exposure,
			Gain:         target.Gain,
			WB:           target.WB,
			AutoExposure: true,
		}
	} else {
		settings, diag = e.decideManual(target, logLuxRate, diag)
	}

	frame, err := e.cam.Capture(ctx, settings)
	if err != nil {
		return Diagnostics{}, fmt.Errorf("governed capture: %w", err)
	}
	governed := brightness.Analyze(frame.Pixels)

	if mode == ModeDay {
		// Track what AE actually chose so a Day exit seeds from reality.
		if frame.Exposure > 0 {
			e.state.AppliedExposure = frame.Exposure
		}
		if frame.Gain > 0 {
			e.state.AppliedGain = frame.Gain
		}
		e.state.AppliedWB = frame.WB
	}

	e.severity = e.p.Severity.Classify(governed, e.severity)
	e.updateFeedback(mode, governed)

	e.lastGoverned = governed
	e.hasGoverned = true
	e.prevMode = mode
	e.hasPrevMode = true

	diag.TargetExposure = e.state.TargetExposure
	diag.AppliedExposure = e.state.AppliedExposure
	diag.AppliedGain = e.state.AppliedGain
	diag.AppliedWB = e.state.AppliedWB
	diag.AutoExposure = settings.AutoExposure
	diag.CorrectionFactor = e.state.CorrectionFactor
	diag.Severity = e.severity
	diag.Brightness = governed

	monitoring.Debugf("cycle mode=%s lux=%.2f/%.2f exp=%.4fs gain=%.2f corr=%.3f sev=%s/%s",
		mode, sample.RawLux, sample.SmoothedLux,
		e.state.AppliedExposure, e.state.AppliedGain, e.state.CorrectionFactor,
		e.severity.Over, e.severity.Under)

	return diag, nil
}

// noteModeChange maintains the seed and EV-clamp flag across mode edges.
// Leaving Day records the seed for photometric continuity; re-entering Day
// re-arms the clamp for the next exit.
func (e *Engine) noteModeChange(mode Mode) {
	if !e.hasPrevMode {
		return
	}
	if e.prevMode == ModeDay && mode != ModeDay {
		e.state.TransitionSeed = Seed{
			Exposure: e.state.AppliedExposure,
			Gain:     e.state.AppliedGain,
			WB:       e.state.AppliedWB,
		}
		e.state.HasSeed = e.state.AppliedExposure > 0 && e.state.AppliedGain > 0
	}
	if mode == ModeDay && e.prevMode != ModeDay {
		e.state.EVClampApplied = false
		e.state.HasSeed = false
	}
}

// decideManual runs the manual-control decision path: feedback correction,
// learned blend, drift multiplier, shutter-before-gain rebalance, EV
// continuity, severity-speed ramp, and the hard extreme backstop.
func (e *Engine) decideManual(target RawTarget, logLuxRate float64, diag Diagnostics) (AppliedSettings, Diagnostics) {
	lux := e.smoother.Sample().SmoothedLux

	// Feedback correction on the raw target exposure.
	if e.p.Feedback == FeedbackRatio {
		if e.hasGoverned && e.state.AppliedExposure > 0 {
			target.Exposure = e.p.RatioExposure(e.state.AppliedExposure, e.lastGoverned.Mean)
		}
	} else {
		target.Exposure *= e.state.CorrectionFactor
	}

	// Learned blend, trust-weighted.
	if e.p.LearnedEnabled {
		if table := e.buckets.Load(); table != nil {
			if pred, ok := table.Predict(lux, e.p); ok {
				var brightnessErr float64
				if e.hasGoverned {
					brightnessErr = e.lastGoverned.Mean - e.p.TargetBrightness
				}
				trust := e.p.Trust(pred.Confidence, brightnessErr, logLuxRate)
				target.Exposure = trust*pred.Exposure + (1-trust)*target.Exposure
				target.Gain = trust*pred.Gain + (1-trust)*target.Gain
				diag.LearnedTrust = trust
			}
		}
		target.Exposure *= e.drift.Multiplier()
	}

	target = e.p.Rebalance(target)

	target, evFired := e.p.ApplyEVContinuity(&e.state, target)
	diag.EVClampFired = evFired
	if !e.state.EVClampApplied && e.state.HasSeed {
		// First manual frame evaluated; the clamp is disarmed until the
		// next Day entry whether or not it had to fire.
		e.state.EVClampApplied = true
	}

	e.state.TargetExposure = target.Exposure
	e.state.TargetGain = target.Gain

	var exposure, gain float64
	var wb WBGains
	if e.state.AppliedExposure <= 0 || evFired {
		// First governed frame, or a continuity override that must land
		// exactly: apply the target directly.
		exposure = target.Exposure
		gain = target.Gain
		wb = target.WB
	} else {
		// Ramp the total EV, then split it shutter-first. Ramping the two
		// channels separately would let gain sit above its floor while
		// shutter headroom still exists.
		speed := e.p.SpeedFor(e.severity)
		ev := RampExposure(e.state.AppliedExposure*e.state.AppliedGain,
			target.Exposure*target.Gain, speed)
		exposure, gain = e.p.AllocateEV(ev)
		wb = RampWB(e.state.AppliedWB, target.WB, speed)
	}

	if e.hasGoverned {
		var extremeFired bool
		exposure, extremeFired = e.p.ApplyExtremeClamp(e.lastGoverned.Mean, e.state.AppliedExposure, exposure)
		diag.ExtremeClampFired = extremeFired
	}

	exposure = clamp(exposure, e.p.DayExposureFloor, e.p.NightExposureCeiling)
	gain = clamp(gain, e.p.GainFloor, e.p.GainCeiling)

	e.state.AppliedExposure = exposure
	e.state.AppliedGain = gain
	e.state.AppliedWB = wb

	return AppliedSettings{Exposure: exposure, Gain: gain, WB: wb, AutoExposure: false}, diag
}

// updateFeedback folds the governed capture's brightness into the slow
// correction loops. Under auto exposure the error belongs to the hardware
// AE, so both loops only decay toward neutral.
func (e *Engine) updateFeedback(mode Mode, governed brightness.Metrics) {
	if mode == ModeDay {
		e.feedback.Decay()
		e.drift.Update(0)
		e.state.CorrectionFactor = e.feedback.Factor()
		return
	}

	if e.p.Feedback == FeedbackFactor {
		e.state.CorrectionFactor = e.feedback.Update(governed.Mean)
	} else {
		e.state.CorrectionFactor = 1.0
	}

	if e.p.LearnedEnabled {
		e.drift.Update(governed.Mean - e.p.TargetBrightness)
	}
}
