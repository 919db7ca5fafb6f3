package exposure

import (
	"fmt"

	"github.com/ekstremedia/raspilapse-sub000/internal/brightness"
	"github.com/ekstremedia/raspilapse-sub000/internal/config"
)

// FeedbackMode selects the brightness feedback algorithm.
type FeedbackMode string

const (
	// FeedbackFactor is the slow multiplicative correction-factor loop.
	FeedbackFactor FeedbackMode = "factor"
	// FeedbackRatio is the direct ratio correction
	// new = old × (target/actual)^damping, converging in a few cycles.
	FeedbackRatio FeedbackMode = "ratio"
)

// Params is the immutable engine configuration. Built once from the tuning
// config and validated at construction; the engine never revalidates
// mid-run. One Params value may be shared by several engines.
type Params struct {
	// Light measurement
	Alpha          float64 // EMA coefficient for lux smoothing
	NightThreshold float64 // lux below which Night is the candidate mode
	DayThreshold   float64 // lux above which Day is the candidate mode
	ModeHoldCycles int     // consecutive dissenting cycles before a mode switch
	LuxMin         float64 // degenerate-probe floor
	LuxMax         float64 // degenerate-probe ceiling
	LuxCalibration float64 // scene-specific scale for the probe conversion
	ProbeExposure  float64 // seconds, fixed probe shutter
	ProbeGain      float64 // fixed probe analog gain

	// Targets
	DayExposureFloor     float64 // seconds
	NightExposureCeiling float64 // seconds
	GainFloor            float64
	GainCeiling          float64
	NightGain            float64
	TransitionK          float64
	TransitionRefLux     float64
	LuxEpsilon           float64
	DayWB                WBGains
	NightWB              WBGains

	// Ramping
	DefaultSpeed  float64
	WarningSpeed  float64
	CriticalSpeed float64
	Severity      brightness.Thresholds

	// Feedback
	TargetBrightness    float64
	BrightnessTolerance float64
	FeedbackStrength    float64
	FeedbackDecay       float64
	FeedbackMaxStep     float64 // max relative factor change per cycle
	CorrectionMin       float64
	CorrectionMax       float64
	Feedback            FeedbackMode
	RatioDamping        float64

	// Safety clamps
	EVClampTolerance    float64
	ExtremeHighMean     float64
	ExtremeLowMean      float64
	ExtremeStepFraction float64

	// Learned predictor
	LearnedEnabled      bool
	LearnedMinSamples   int
	TrustErrorBand      float64
	TrustErrorFalloff   float64
	TrustLuxRateBand    float64 // |Δlog10(lux)| per cycle before trust decays
	TrustLuxRateFalloff float64
	GoodBrightnessMin   float64
	GoodBrightnessMax   float64
	NightSkyLuxMax      float64
	NightSkyStddevMin   float64
	DriftTriggerCycles  int
	DriftGain           float64
	DriftMaxStep        float64
	DriftMin            float64
	DriftMax            float64
	DriftDecay          float64
}

// NewParams builds and validates engine parameters from the tuning config.
// A nil cfg uses defaults for every field. Validation failure is fatal by
// design: a bad configuration must never be discovered mid-run.
func NewParams(cfg *config.TuningConfig) (Params, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}

	p := Params{
		Alpha:          cfg.GetLuxSmoothingAlpha(),
		NightThreshold: cfg.GetNightLuxThreshold(),
		DayThreshold:   cfg.GetDayLuxThreshold(),
		ModeHoldCycles: cfg.GetModeHoldCycles(),
		LuxMin:         cfg.GetLuxMin(),
		LuxMax:         cfg.GetLuxMax(),
		LuxCalibration: cfg.GetLuxCalibration(),
		ProbeExposure:  cfg.GetProbeExposure(),
		ProbeGain:      cfg.GetProbeGain(),

		DayExposureFloor:     cfg.GetDayExposureFloor(),
		NightExposureCeiling: cfg.GetNightExposureCeiling(),
		GainFloor:            cfg.GetGainFloor(),
		GainCeiling:          cfg.GetGainCeiling(),
		NightGain:            cfg.GetNightGain(),
		TransitionK:          cfg.GetTransitionK(),
		TransitionRefLux:     cfg.GetTransitionRefLux(),
		LuxEpsilon:           cfg.GetLuxEpsilon(),
		DayWB:                WBGains{Red: cfg.GetDayWBRed(), Blue: cfg.GetDayWBBlue()},
		NightWB:              WBGains{Red: cfg.GetNightWBRed(), Blue: cfg.GetNightWBBlue()},

		DefaultSpeed:  cfg.GetRampDefaultSpeed(),
		WarningSpeed:  cfg.GetRampWarningSpeed(),
		CriticalSpeed: cfg.GetRampCriticalSpeed(),
		Severity: brightness.Thresholds{
			OverWarnMean:     cfg.GetOverWarnMean(),
			OverWarnClipPct:  cfg.GetOverWarnClipPct(),
			OverCritMean:     cfg.GetOverCritMean(),
			OverCritClipPct:  cfg.GetOverCritClipPct(),
			OverClearMean:    cfg.GetOverClearMean(),
			OverClearClipPct: cfg.GetOverClearClipPct(),
			UnderWarnMean:    cfg.GetUnderWarnMean(),
			UnderCritMean:    cfg.GetUnderCritMean(),
			UnderClearMean:   cfg.GetUnderClearMean(),
		},

		TargetBrightness:    cfg.GetTargetBrightness(),
		BrightnessTolerance: cfg.GetBrightnessTolerance(),
		FeedbackStrength:    cfg.GetFeedbackStrength(),
		FeedbackDecay:       cfg.GetFeedbackDecay(),
		FeedbackMaxStep:     cfg.GetFeedbackMaxStep(),
		CorrectionMin:       cfg.GetCorrectionMin(),
		CorrectionMax:       cfg.GetCorrectionMax(),
		Feedback:            FeedbackMode(cfg.GetFeedbackMode()),
		RatioDamping:        cfg.GetRatioDamping(),

		EVClampTolerance:    cfg.GetEVClampTolerance(),
		ExtremeHighMean:     cfg.GetExtremeHighMean(),
		ExtremeLowMean:      cfg.GetExtremeLowMean(),
		ExtremeStepFraction: cfg.GetExtremeStepFraction(),

		LearnedEnabled:      cfg.GetLearnedEnabled(),
		LearnedMinSamples:   cfg.GetLearnedMinSamples(),
		TrustErrorBand:      cfg.GetTrustErrorBand(),
		TrustErrorFalloff:   cfg.GetTrustErrorFalloff(),
		TrustLuxRateBand:    cfg.GetTrustLuxRateBand(),
		TrustLuxRateFalloff: cfg.GetTrustLuxRateFalloff(),
		GoodBrightnessMin:   cfg.GetGoodBrightnessMin(),
		GoodBrightnessMax:   cfg.GetGoodBrightnessMax(),
		NightSkyLuxMax:      cfg.GetNightSkyLuxMax(),
		NightSkyStddevMin:   cfg.GetNightSkyStddevMin(),
		DriftTriggerCycles:  cfg.GetDriftTriggerCycles(),
		DriftGain:           cfg.GetDriftGain(),
		DriftMaxStep:        cfg.GetDriftMaxStep(),
		DriftMin:            cfg.GetDriftMin(),
		DriftMax:            cfg.GetDriftMax(),
		DriftDecay:          cfg.GetDriftDecay(),
	}

	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// DefaultParams returns the stock parameter set. Panics only if the
// built-in defaults are themselves inconsistent, which is a programming
// error; intended for tests and the synthetic dev camera.
func DefaultParams() Params {
	p, err := NewParams(nil)
	if err != nil {
		panic("default exposure params invalid: " + err.Error())
	}
	return p
}

func (p Params) validate() error {
	if p.Alpha <= 0 || p.Alpha > 1 {
		return fmt.Errorf("smoothing alpha must be in (0, 1], got %g", p.Alpha)
	}
	if p.NightThreshold >= p.DayThreshold {
		return fmt.Errorf("night lux threshold %g must be below day lux threshold %g",
			p.NightThreshold, p.DayThreshold)
	}
	if p.ModeHoldCycles < 1 {
		return fmt.Errorf("mode hold cycles must be at least 1, got %d", p.ModeHoldCycles)
	}
	if p.NightExposureCeiling <= p.DayExposureFloor {
		return fmt.Errorf("night exposure ceiling %g must be above day exposure floor %g",
			p.NightExposureCeiling, p.DayExposureFloor)
	}
	if p.DayExposureFloor <= 0 {
		return fmt.Errorf("day exposure floor must be positive, got %g", p.DayExposureFloor)
	}
	if p.GainFloor <= 0 || p.GainCeiling < p.GainFloor {
		return fmt.Errorf("gain range [%g, %g] invalid", p.GainFloor, p.GainCeiling)
	}
	if p.NightGain < p.GainFloor || p.NightGain > p.GainCeiling {
		return fmt.Errorf("night gain %g outside gain range [%g, %g]",
			p.NightGain, p.GainFloor, p.GainCeiling)
	}
	if p.LuxMin <= 0 || p.LuxMax <= p.LuxMin {
		return fmt.Errorf("lux range [%g, %g] invalid", p.LuxMin, p.LuxMax)
	}
	if p.LuxEpsilon <= 0 {
		return fmt.Errorf("lux epsilon must be positive, got %g", p.LuxEpsilon)
	}
	if p.ProbeExposure <= 0 || p.ProbeGain <= 0 {
		return fmt.Errorf("probe settings must be positive, got exposure %g gain %g",
			p.ProbeExposure, p.ProbeGain)
	}
	for _, s := range []float64{p.DefaultSpeed, p.WarningSpeed, p.CriticalSpeed} {
		if s <= 0 || s > 1 {
			return fmt.Errorf("ramp speeds must be in (0, 1], got %g/%g/%g",
				p.DefaultSpeed, p.WarningSpeed, p.CriticalSpeed)
		}
	}
	if p.CorrectionMin <= 0 || p.CorrectionMax < 1 || p.CorrectionMin > 1 {
		return fmt.Errorf("correction factor range [%g, %g] must bracket 1.0",
			p.CorrectionMin, p.CorrectionMax)
	}
	if p.Feedback != FeedbackFactor && p.Feedback != FeedbackRatio {
		return fmt.Errorf("unknown feedback mode %q", p.Feedback)
	}
	if p.RatioDamping < 0.1 || p.RatioDamping > 1 {
		return fmt.Errorf("ratio damping %g outside [0.1, 1]", p.RatioDamping)
	}
	if p.EVClampTolerance <= 0 {
		return fmt.Errorf("ev clamp tolerance must be positive, got %g", p.EVClampTolerance)
	}
	if p.ExtremeLowMean >= p.ExtremeHighMean {
		return fmt.Errorf("extreme brightness bounds [%g, %g] inverted",
			p.ExtremeLowMean, p.ExtremeHighMean)
	}
	if p.ExtremeStepFraction <= 0 || p.ExtremeStepFraction >= 1 {
		return fmt.Errorf("extreme step fraction %g outside (0, 1)", p.ExtremeStepFraction)
	}
	if p.DriftMin <= 0 || p.DriftMax < 1 || p.DriftMin > 1 {
		return fmt.Errorf("drift multiplier range [%g, %g] must bracket 1.0",
			p.DriftMin, p.DriftMax)
	}
	if p.DriftMaxStep <= 0 || p.DriftMaxStep > 1 {
		return fmt.Errorf("drift max step %g outside (0, 1]", p.DriftMaxStep)
	}
	if p.DriftTriggerCycles < 1 {
		return fmt.Errorf("drift trigger cycles must be at least 1, got %d", p.DriftTriggerCycles)
	}
	return nil
}
