package exposure

import (
	"context"
	"time"

	"github.com/ekstremedia/raspilapse-sub000/internal/brightness"
)

// Mode is the accepted light regime. It changes only through the smoother's
// hysteresis, never directly from a single measurement.
type Mode string

const (
	ModeNight      Mode = "night"
	ModeDay        Mode = "day"
	ModeTransition Mode = "transition"
)

// WBGains is the two-gain white balance model: red and blue channel gains
// relative to green.
type WBGains struct {
	Red  float64 `json:"red"`
	Blue float64 `json:"blue"`
}

// AppliedSettings is handed to the capture subsystem each cycle.
// When AutoExposure is set, Exposure and Gain are advisory and the sensor's
// own AE loop owns them.
type AppliedSettings struct {
	Exposure     float64 `json:"exposure"` // seconds
	Gain         float64 `json:"gain"`
	WB           WBGains `json:"wb"`
	AutoExposure bool    `json:"auto_exposure"`
}

// EV returns the exposure value: exposure time × gain, the scalar total
// light-gathering independent of the shutter/gain split.
func (s AppliedSettings) EV() float64 {
	return s.Exposure * s.Gain
}

// Frame is the result of a capture: the analysis-sized luma buffer plus the
// settings the sensor actually used (which differ from the request under
// auto exposure).
type Frame struct {
	Pixels   []uint8
	Exposure float64 // seconds actually used
	Gain     float64
	WB       WBGains
}

// Camera is the capture collaborator the engine drives. Probe performs a
// quick fixed-setting capture for light measurement only; Capture is the
// governed capture. Both may block for the full exposure duration, so they
// take a context, but an in-flight exposure runs to completion — partial
// captures are discarded by the implementation, not salvaged.
type Camera interface {
	Probe(ctx context.Context) (Frame, error)
	Capture(ctx context.Context, settings AppliedSettings) (Frame, error)
}

// LightSample is the per-cycle light measurement. SmoothedLux is mutated in
// place by the EMA; the engine keeps a rolling window of one.
type LightSample struct {
	RawLux      float64   `json:"raw_lux"`
	SmoothedLux float64   `json:"smoothed_lux"`
	Timestamp   time.Time `json:"timestamp"`
}

// Seed records the last auto-exposure settings captured just before the
// engine takes manual control, used to guarantee photometric continuity on
// the first manual frame.
type Seed struct {
	Exposure float64
	Gain     float64
	WB       WBGains
}

// EV returns the seed's exposure value.
func (s Seed) EV() float64 {
	return s.Exposure * s.Gain
}

// State is the long-lived per-camera exposure state, mutated every cycle.
// It has no concurrency protection: the engine must never be re-entered
// concurrently for the same camera.
type State struct {
	AppliedExposure  float64
	AppliedGain      float64
	AppliedWB        WBGains
	TargetExposure   float64
	TargetGain       float64
	CorrectionFactor float64
	EVClampApplied   bool
	TransitionSeed   Seed
	HasSeed          bool
}

// Diagnostics is the per-cycle telemetry record handed to logging and
// persistence collaborators.
type Diagnostics struct {
	Timestamp          time.Time          `json:"timestamp"`
	Mode               Mode               `json:"mode"`
	RawLux             float64            `json:"raw_lux"`
	SmoothedLux        float64            `json:"smoothed_lux"`
	TransitionPosition float64            `json:"transition_position"`
	TargetExposure     float64            `json:"target_exposure"`
	AppliedExposure    float64            `json:"applied_exposure"`
	AppliedGain        float64            `json:"applied_gain"`
	AppliedWB          WBGains            `json:"applied_wb"`
	AutoExposure       bool               `json:"auto_exposure"`
	CorrectionFactor   float64            `json:"correction_factor"`
	Severity           brightness.Flags   `json:"severity"`
	Brightness         brightness.Metrics `json:"brightness"`
	EVClampFired       bool               `json:"ev_clamp_fired"`
	ExtremeClampFired  bool               `json:"extreme_clamp_fired"`
	LearnedTrust       float64            `json:"learned_trust"`
	DriftMultiplier    float64            `json:"drift_multiplier"`
}

// GoodSample is one historical good frame consumed by bucket retraining.
type GoodSample struct {
	Lux        float64
	Exposure   float64
	Gain       float64
	Brightness float64
	StdDev     float64
}
