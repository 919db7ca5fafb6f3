package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for exposure tuning
// parameters. Fields omitted from the JSON file retain their defaults via
// the Get* accessors, so partial configs are safe.
type TuningConfig struct {
	// Light measurement params
	LuxSmoothingAlpha *float64 `json:"lux_smoothing_alpha,omitempty"`
	NightLuxThreshold *float64 `json:"night_lux_threshold,omitempty"`
	DayLuxThreshold   *float64 `json:"day_lux_threshold,omitempty"`
	ModeHoldCycles    *int     `json:"mode_hold_cycles,omitempty"`
	LuxMin            *float64 `json:"lux_min,omitempty"`
	LuxMax            *float64 `json:"lux_max,omitempty"`
	LuxCalibration    *float64 `json:"lux_calibration,omitempty"`
	ProbeExposure     *float64 `json:"probe_exposure,omitempty"` // seconds
	ProbeGain         *float64 `json:"probe_gain,omitempty"`

	// Target params
	DayExposureFloor     *float64 `json:"day_exposure_floor,omitempty"`     // seconds
	NightExposureCeiling *float64 `json:"night_exposure_ceiling,omitempty"` // seconds
	GainFloor            *float64 `json:"gain_floor,omitempty"`
	GainCeiling          *float64 `json:"gain_ceiling,omitempty"`
	NightGain            *float64 `json:"night_gain,omitempty"`
	TransitionK          *float64 `json:"transition_k,omitempty"`
	TransitionRefLux     *float64 `json:"transition_ref_lux,omitempty"`
	LuxEpsilon           *float64 `json:"lux_epsilon,omitempty"`
	DayWBRed             *float64 `json:"day_wb_red,omitempty"`
	DayWBBlue            *float64 `json:"day_wb_blue,omitempty"`
	NightWBRed           *float64 `json:"night_wb_red,omitempty"`
	NightWBBlue          *float64 `json:"night_wb_blue,omitempty"`

	// Ramp speeds
	RampDefaultSpeed  *float64 `json:"ramp_default_speed,omitempty"`
	RampWarningSpeed  *float64 `json:"ramp_warning_speed,omitempty"`
	RampCriticalSpeed *float64 `json:"ramp_critical_speed,omitempty"`

	// Severity thresholds (8-bit brightness, percent clipped)
	OverWarnMean     *float64 `json:"over_warn_mean,omitempty"`
	OverWarnClipPct  *float64 `json:"over_warn_clip_pct,omitempty"`
	OverCritMean     *float64 `json:"over_crit_mean,omitempty"`
	OverCritClipPct  *float64 `json:"over_crit_clip_pct,omitempty"`
	OverClearMean    *float64 `json:"over_clear_mean,omitempty"`
	OverClearClipPct *float64 `json:"over_clear_clip_pct,omitempty"`
	UnderWarnMean    *float64 `json:"under_warn_mean,omitempty"`
	UnderCritMean    *float64 `json:"under_crit_mean,omitempty"`
	UnderClearMean   *float64 `json:"under_clear_mean,omitempty"`

	// Brightness feedback params
	TargetBrightness    *float64 `json:"target_brightness,omitempty"`
	BrightnessTolerance *float64 `json:"brightness_tolerance,omitempty"`
	FeedbackStrength    *float64 `json:"feedback_strength,omitempty"`
	FeedbackDecay       *float64 `json:"feedback_decay,omitempty"`
	FeedbackMaxStep     *float64 `json:"feedback_max_step,omitempty"`
	CorrectionMin       *float64 `json:"correction_min,omitempty"`
	CorrectionMax       *float64 `json:"correction_max,omitempty"`
	FeedbackMode        *string  `json:"feedback_mode,omitempty"` // "factor" or "ratio"
	RatioDamping        *float64 `json:"ratio_damping,omitempty"`

	// Safety clamp params
	EVClampTolerance    *float64 `json:"ev_clamp_tolerance,omitempty"`
	ExtremeHighMean     *float64 `json:"extreme_high_mean,omitempty"`
	ExtremeLowMean      *float64 `json:"extreme_low_mean,omitempty"`
	ExtremeStepFraction *float64 `json:"extreme_step_fraction,omitempty"`

	// Learned predictor params
	LearnedEnabled      *bool    `json:"learned_enabled,omitempty"`
	LearnedMinSamples   *int     `json:"learned_min_samples,omitempty"`
	TrustErrorBand      *float64 `json:"trust_error_band,omitempty"`
	TrustErrorFalloff   *float64 `json:"trust_error_falloff,omitempty"`
	TrustLuxRateBand    *float64 `json:"trust_lux_rate_band,omitempty"`    // log10 lux per cycle
	TrustLuxRateFalloff *float64 `json:"trust_lux_rate_falloff,omitempty"` // log10 lux per cycle
	GoodBrightnessMin   *float64 `json:"good_brightness_min,omitempty"`
	GoodBrightnessMax   *float64 `json:"good_brightness_max,omitempty"`
	NightSkyLuxMax      *float64 `json:"night_sky_lux_max,omitempty"`
	NightSkyStddevMin   *float64 `json:"night_sky_stddev_min,omitempty"`
	DriftTriggerCycles  *int     `json:"drift_trigger_cycles,omitempty"`
	DriftGain           *float64 `json:"drift_gain,omitempty"`
	DriftMaxStep        *float64 `json:"drift_max_step,omitempty"`
	DriftMin            *float64 `json:"drift_min,omitempty"`
	DriftMax            *float64 `json:"drift_max,omitempty"`
	DriftDecay          *float64 `json:"drift_decay,omitempty"`
	RetrainInterval     *string  `json:"retrain_interval,omitempty"` // duration string like "24h"
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that configuration values are internally consistent.
// Deeper cross-field validation (threshold ordering, ceiling above floor)
// happens once more when the exposure engine builds its immutable Params,
// which is the construction-time failure point the engine relies on.
func (c *TuningConfig) Validate() error {
	if c.LuxSmoothingAlpha != nil {
		if *c.LuxSmoothingAlpha <= 0 || *c.LuxSmoothingAlpha > 1 {
			return fmt.Errorf("lux_smoothing_alpha must be in (0, 1], got %f", *c.LuxSmoothingAlpha)
		}
	}

	if c.NightLuxThreshold != nil && c.DayLuxThreshold != nil {
		if *c.NightLuxThreshold >= *c.DayLuxThreshold {
			return fmt.Errorf("night_lux_threshold (%f) must be below day_lux_threshold (%f)",
				*c.NightLuxThreshold, *c.DayLuxThreshold)
		}
	}

	if c.DayExposureFloor != nil && c.NightExposureCeiling != nil {
		if *c.NightExposureCeiling <= *c.DayExposureFloor {
			return fmt.Errorf("night_exposure_ceiling (%f) must be above day_exposure_floor (%f)",
				*c.NightExposureCeiling, *c.DayExposureFloor)
		}
	}

	if c.ModeHoldCycles != nil && *c.ModeHoldCycles < 1 {
		return fmt.Errorf("mode_hold_cycles must be at least 1, got %d", *c.ModeHoldCycles)
	}

	if c.FeedbackMode != nil {
		if *c.FeedbackMode != "factor" && *c.FeedbackMode != "ratio" {
			return fmt.Errorf("feedback_mode must be \"factor\" or \"ratio\", got %q", *c.FeedbackMode)
		}
	}

	if c.RetrainInterval != nil && *c.RetrainInterval != "" {
		if _, err := time.ParseDuration(*c.RetrainInterval); err != nil {
			return fmt.Errorf("invalid retrain_interval '%s': %w", *c.RetrainInterval, err)
		}
	}

	for name, v := range map[string]*float64{
		"ramp_default_speed":  c.RampDefaultSpeed,
		"ramp_warning_speed":  c.RampWarningSpeed,
		"ramp_critical_speed": c.RampCriticalSpeed,
	} {
		if v != nil && (*v <= 0 || *v > 1) {
			return fmt.Errorf("%s must be in (0, 1], got %f", name, *v)
		}
	}

	return nil
}

// GetLuxSmoothingAlpha returns the lux_smoothing_alpha value or the default.
func (c *TuningConfig) GetLuxSmoothingAlpha() float64 {
	if c.LuxSmoothingAlpha == nil {
		return 0.3
	}
	return *c.LuxSmoothingAlpha
}

// GetNightLuxThreshold returns the night_lux_threshold value or the default.
func (c *TuningConfig) GetNightLuxThreshold() float64 {
	if c.NightLuxThreshold == nil {
		return 5.0
	}
	return *c.NightLuxThreshold
}

// GetDayLuxThreshold returns the day_lux_threshold value or the default.
func (c *TuningConfig) GetDayLuxThreshold() float64 {
	if c.DayLuxThreshold == nil {
		return 80.0
	}
	return *c.DayLuxThreshold
}

// GetModeHoldCycles returns the mode_hold_cycles value or the default.
func (c *TuningConfig) GetModeHoldCycles() int {
	if c.ModeHoldCycles == nil {
		return 3
	}
	return *c.ModeHoldCycles
}

// GetLuxMin returns the lux_min value or the default.
func (c *TuningConfig) GetLuxMin() float64 {
	if c.LuxMin == nil {
		return 0.01
	}
	return *c.LuxMin
}

// GetLuxMax returns the lux_max value or the default.
func (c *TuningConfig) GetLuxMax() float64 {
	if c.LuxMax == nil {
		return 200000.0
	}
	return *c.LuxMax
}

// GetLuxCalibration returns the lux_calibration value or the default.
func (c *TuningConfig) GetLuxCalibration() float64 {
	if c.LuxCalibration == nil {
		return 0.16
	}
	return *c.LuxCalibration
}

// GetProbeExposure returns the probe_exposure value (seconds) or the default.
func (c *TuningConfig) GetProbeExposure() float64 {
	if c.ProbeExposure == nil {
		return 0.1
	}
	return *c.ProbeExposure
}

// GetProbeGain returns the probe_gain value or the default.
func (c *TuningConfig) GetProbeGain() float64 {
	if c.ProbeGain == nil {
		return 4.0
	}
	return *c.ProbeGain
}

// GetDayExposureFloor returns the day_exposure_floor value (seconds) or the default.
func (c *TuningConfig) GetDayExposureFloor() float64 {
	if c.DayExposureFloor == nil {
		return 0.0005
	}
	return *c.DayExposureFloor
}

// GetNightExposureCeiling returns the night_exposure_ceiling value (seconds) or the default.
func (c *TuningConfig) GetNightExposureCeiling() float64 {
	if c.NightExposureCeiling == nil {
		return 20.0
	}
	return *c.NightExposureCeiling
}

// GetGainFloor returns the gain_floor value or the default.
func (c *TuningConfig) GetGainFloor() float64 {
	if c.GainFloor == nil {
		return 1.0
	}
	return *c.GainFloor
}

// GetGainCeiling returns the gain_ceiling value or the default.
func (c *TuningConfig) GetGainCeiling() float64 {
	if c.GainCeiling == nil {
		return 16.0
	}
	return *c.GainCeiling
}

// GetNightGain returns the night_gain value or the default.
func (c *TuningConfig) GetNightGain() float64 {
	if c.NightGain == nil {
		return 8.0
	}
	return *c.NightGain
}

// GetTransitionK returns the transition_k value or the default.
func (c *TuningConfig) GetTransitionK() float64 {
	if c.TransitionK == nil {
		return 0.02
	}
	return *c.TransitionK
}

// GetTransitionRefLux returns the transition_ref_lux value or the default.
func (c *TuningConfig) GetTransitionRefLux() float64 {
	if c.TransitionRefLux == nil {
		return 100.0
	}
	return *c.TransitionRefLux
}

// GetLuxEpsilon returns the lux_epsilon value or the default.
func (c *TuningConfig) GetLuxEpsilon() float64 {
	if c.LuxEpsilon == nil {
		return 0.01
	}
	return *c.LuxEpsilon
}

// GetDayWBRed returns the day_wb_red value or the default.
func (c *TuningConfig) GetDayWBRed() float64 {
	if c.DayWBRed == nil {
		return 2.6
	}
	return *c.DayWBRed
}

// GetDayWBBlue returns the day_wb_blue value or the default.
func (c *TuningConfig) GetDayWBBlue() float64 {
	if c.DayWBBlue == nil {
		return 1.8
	}
	return *c.DayWBBlue
}

// GetNightWBRed returns the night_wb_red value or the default.
func (c *TuningConfig) GetNightWBRed() float64 {
	if c.NightWBRed == nil {
		return 2.0
	}
	return *c.NightWBRed
}

// GetNightWBBlue returns the night_wb_blue value or the default.
func (c *TuningConfig) GetNightWBBlue() float64 {
	if c.NightWBBlue == nil {
		return 2.2
	}
	return *c.NightWBBlue
}

// GetRampDefaultSpeed returns the ramp_default_speed value or the default.
func (c *TuningConfig) GetRampDefaultSpeed() float64 {
	if c.RampDefaultSpeed == nil {
		return 0.10
	}
	return *c.RampDefaultSpeed
}

// GetRampWarningSpeed returns the ramp_warning_speed value or the default.
func (c *TuningConfig) GetRampWarningSpeed() float64 {
	if c.RampWarningSpeed == nil {
		return 0.40
	}
	return *c.RampWarningSpeed
}

// GetRampCriticalSpeed returns the ramp_critical_speed value or the default.
func (c *TuningConfig) GetRampCriticalSpeed() float64 {
	if c.RampCriticalSpeed == nil {
		return 0.70
	}
	return *c.RampCriticalSpeed
}

// GetOverWarnMean returns the over_warn_mean value or the default.
func (c *TuningConfig) GetOverWarnMean() float64 {
	if c.OverWarnMean == nil {
		return 150.0
	}
	return *c.OverWarnMean
}

// GetOverWarnClipPct returns the over_warn_clip_pct value or the default.
func (c *TuningConfig) GetOverWarnClipPct() float64 {
	if c.OverWarnClipPct == nil {
		return 5.0
	}
	return *c.OverWarnClipPct
}

// GetOverCritMean returns the over_crit_mean value or the default.
func (c *TuningConfig) GetOverCritMean() float64 {
	if c.OverCritMean == nil {
		return 170.0
	}
	return *c.OverCritMean
}

// GetOverCritClipPct returns the over_crit_clip_pct value or the default.
func (c *TuningConfig) GetOverCritClipPct() float64 {
	if c.OverCritClipPct == nil {
		return 10.0
	}
	return *c.OverCritClipPct
}

// GetOverClearMean returns the over_clear_mean value or the default.
func (c *TuningConfig) GetOverClearMean() float64 {
	if c.OverClearMean == nil {
		return 130.0
	}
	return *c.OverClearMean
}

// GetOverClearClipPct returns the over_clear_clip_pct value or the default.
func (c *TuningConfig) GetOverClearClipPct() float64 {
	if c.OverClearClipPct == nil {
		return 3.0
	}
	return *c.OverClearClipPct
}

// GetUnderWarnMean returns the under_warn_mean value or the default.
func (c *TuningConfig) GetUnderWarnMean() float64 {
	if c.UnderWarnMean == nil {
		return 90.0
	}
	return *c.UnderWarnMean
}

// GetUnderCritMean returns the under_crit_mean value or the default.
func (c *TuningConfig) GetUnderCritMean() float64 {
	if c.UnderCritMean == nil {
		return 70.0
	}
	return *c.UnderCritMean
}

// GetUnderClearMean returns the under_clear_mean value or the default.
func (c *TuningConfig) GetUnderClearMean() float64 {
	if c.UnderClearMean == nil {
		return 105.0
	}
	return *c.UnderClearMean
}

// GetTargetBrightness returns the target_brightness value or the default.
func (c *TuningConfig) GetTargetBrightness() float64 {
	if c.TargetBrightness == nil {
		return 120.0
	}
	return *c.TargetBrightness
}

// GetBrightnessTolerance returns the brightness_tolerance value or the default.
func (c *TuningConfig) GetBrightnessTolerance() float64 {
	if c.BrightnessTolerance == nil {
		return 30.0
	}
	return *c.BrightnessTolerance
}

// GetFeedbackStrength returns the feedback_strength value or the default.
func (c *TuningConfig) GetFeedbackStrength() float64 {
	if c.FeedbackStrength == nil {
		return 0.18
	}
	return *c.FeedbackStrength
}

// GetFeedbackDecay returns the feedback_decay value or the default.
func (c *TuningConfig) GetFeedbackDecay() float64 {
	if c.FeedbackDecay == nil {
		return 0.08
	}
	return *c.FeedbackDecay
}

// GetFeedbackMaxStep returns the feedback_max_step value or the default.
func (c *TuningConfig) GetFeedbackMaxStep() float64 {
	if c.FeedbackMaxStep == nil {
		return 0.10
	}
	return *c.FeedbackMaxStep
}

// GetCorrectionMin returns the correction_min value or the default.
func (c *TuningConfig) GetCorrectionMin() float64 {
	if c.CorrectionMin == nil {
		return 0.3
	}
	return *c.CorrectionMin
}

// GetCorrectionMax returns the correction_max value or the default.
func (c *TuningConfig) GetCorrectionMax() float64 {
	if c.CorrectionMax == nil {
		return 4.0
	}
	return *c.CorrectionMax
}

// GetFeedbackMode returns the feedback_mode value or the default.
func (c *TuningConfig) GetFeedbackMode() string {
	if c.FeedbackMode == nil {
		return "factor"
	}
	return *c.FeedbackMode
}

// GetRatioDamping returns the ratio_damping value or the default.
func (c *TuningConfig) GetRatioDamping() float64 {
	if c.RatioDamping == nil {
		return 0.65
	}
	return *c.RatioDamping
}

// GetEVClampTolerance returns the ev_clamp_tolerance value or the default.
func (c *TuningConfig) GetEVClampTolerance() float64 {
	if c.EVClampTolerance == nil {
		return 0.05
	}
	return *c.EVClampTolerance
}

// GetExtremeHighMean returns the extreme_high_mean value or the default.
func (c *TuningConfig) GetExtremeHighMean() float64 {
	if c.ExtremeHighMean == nil {
		return 220.0
	}
	return *c.ExtremeHighMean
}

// GetExtremeLowMean returns the extreme_low_mean value or the default.
func (c *TuningConfig) GetExtremeLowMean() float64 {
	if c.ExtremeLowMean == nil {
		return 35.0
	}
	return *c.ExtremeLowMean
}

// GetExtremeStepFraction returns the extreme_step_fraction value or the default.
func (c *TuningConfig) GetExtremeStepFraction() float64 {
	if c.ExtremeStepFraction == nil {
		return 0.3
	}
	return *c.ExtremeStepFraction
}

// GetLearnedEnabled returns the learned_enabled value or the default.
func (c *TuningConfig) GetLearnedEnabled() bool {
	if c.LearnedEnabled == nil {
		return true
	}
	return *c.LearnedEnabled
}

// GetLearnedMinSamples returns the learned_min_samples value or the default.
func (c *TuningConfig) GetLearnedMinSamples() int {
	if c.LearnedMinSamples == nil {
		return 3
	}
	return *c.LearnedMinSamples
}

// GetTrustErrorBand returns the trust_error_band value or the default.
func (c *TuningConfig) GetTrustErrorBand() float64 {
	if c.TrustErrorBand == nil {
		return 15.0
	}
	return *c.TrustErrorBand
}

// GetTrustErrorFalloff returns the trust_error_falloff value or the default.
func (c *TuningConfig) GetTrustErrorFalloff() float64 {
	if c.TrustErrorFalloff == nil {
		return 60.0
	}
	return *c.TrustErrorFalloff
}

// GetTrustLuxRateBand returns the trust_lux_rate_band value or the default.
func (c *TuningConfig) GetTrustLuxRateBand() float64 {
	if c.TrustLuxRateBand == nil {
		return 0.15
	}
	return *c.TrustLuxRateBand
}

// GetTrustLuxRateFalloff returns the trust_lux_rate_falloff value or the default.
func (c *TuningConfig) GetTrustLuxRateFalloff() float64 {
	if c.TrustLuxRateFalloff == nil {
		return 0.5
	}
	return *c.TrustLuxRateFalloff
}

// GetGoodBrightnessMin returns the good_brightness_min value or the default.
func (c *TuningConfig) GetGoodBrightnessMin() float64 {
	if c.GoodBrightnessMin == nil {
		return 100.0
	}
	return *c.GoodBrightnessMin
}

// GetGoodBrightnessMax returns the good_brightness_max value or the default.
func (c *TuningConfig) GetGoodBrightnessMax() float64 {
	if c.GoodBrightnessMax == nil {
		return 140.0
	}
	return *c.GoodBrightnessMax
}

// GetNightSkyLuxMax returns the night_sky_lux_max value or the default.
func (c *TuningConfig) GetNightSkyLuxMax() float64 {
	if c.NightSkyLuxMax == nil {
		return 1.0
	}
	return *c.NightSkyLuxMax
}

// GetNightSkyStddevMin returns the night_sky_stddev_min value or the default.
func (c *TuningConfig) GetNightSkyStddevMin() float64 {
	if c.NightSkyStddevMin == nil {
		return 30.0
	}
	return *c.NightSkyStddevMin
}

// GetDriftTriggerCycles returns the drift_trigger_cycles value or the default.
func (c *TuningConfig) GetDriftTriggerCycles() int {
	if c.DriftTriggerCycles == nil {
		return 3
	}
	return *c.DriftTriggerCycles
}

// GetDriftGain returns the drift_gain value or the default.
func (c *TuningConfig) GetDriftGain() float64 {
	if c.DriftGain == nil {
		return 0.15
	}
	return *c.DriftGain
}

// GetDriftMaxStep returns the drift_max_step value or the default.
func (c *TuningConfig) GetDriftMaxStep() float64 {
	if c.DriftMaxStep == nil {
		return 0.30
	}
	return *c.DriftMaxStep
}

// GetDriftMin returns the drift_min value or the default.
func (c *TuningConfig) GetDriftMin() float64 {
	if c.DriftMin == nil {
		return 0.5
	}
	return *c.DriftMin
}

// GetDriftMax returns the drift_max value or the default.
func (c *TuningConfig) GetDriftMax() float64 {
	if c.DriftMax == nil {
		return 2.0
	}
	return *c.DriftMax
}

// GetDriftDecay returns the drift_decay value or the default.
func (c *TuningConfig) GetDriftDecay() float64 {
	if c.DriftDecay == nil {
		return 0.2
	}
	return *c.DriftDecay
}

// GetRetrainInterval parses and returns the RetrainInterval as a time.Duration.
func (c *TuningConfig) GetRetrainInterval() time.Duration {
	if c.RetrainInterval == nil || *c.RetrainInterval == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(*c.RetrainInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
