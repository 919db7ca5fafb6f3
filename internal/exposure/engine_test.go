package exposure

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstremedia/raspilapse-sub000/internal/brightness"
)

// stubCamera plays back a scripted scene. Probe frames report the scene
// illuminance through the probe conversion; governed frames respond
// photometrically to the requested settings unless governedMean overrides
// the response.
type stubCamera struct {
	p            Params
	sceneLux     []float64 // per-cycle illuminance, last value repeats
	cycle        int
	aeExposure   float64
	aeGain       float64
	governedMean func(lux float64, s AppliedSettings) float64
	captures     []AppliedSettings
}

func (c *stubCamera) lux() float64 {
	if c.cycle < len(c.sceneLux) {
		return c.sceneLux[c.cycle]
	}
	return c.sceneLux[len(c.sceneLux)-1]
}

func uniformPixels(level float64) []uint8 {
	v := uint8(clamp(math.Round(level), 0, 255))
	px := make([]uint8, 64)
	for i := range px {
		px[i] = v
	}
	return px
}

func (c *stubCamera) Probe(context.Context) (Frame, error) {
	level := c.lux() * c.p.ProbeExposure * c.p.ProbeGain / c.p.LuxCalibration
	return Frame{
		Pixels:   uniformPixels(level),
		Exposure: c.p.ProbeExposure,
		Gain:     c.p.ProbeGain,
	}, nil
}

func (c *stubCamera) Capture(_ context.Context, s AppliedSettings) (Frame, error) {
	c.captures = append(c.captures, s)
	lux := c.lux()
	c.cycle++

	if s.AutoExposure {
		return Frame{
			Pixels:   uniformPixels(120),
			Exposure: c.aeExposure,
			Gain:     c.aeGain,
			WB:       s.WB,
		}, nil
	}

	mean := lux * s.EV() / c.p.LuxCalibration
	if c.governedMean != nil {
		mean = c.governedMean(lux, s)
	}
	return Frame{
		Pixels:   uniformPixels(mean),
		Exposure: s.Exposure,
		Gain:     s.Gain,
		WB:       s.WB,
	}, nil
}

// engineParams makes mode decisions deterministic per-cycle: with no
// smoothing, the candidate mode follows the scripted lux directly and only
// the hold hysteresis delays switches.
func engineParams(t *testing.T) Params {
	t.Helper()
	p := testParams(t)
	p.Alpha = 1.0
	return p
}

func runCycles(t *testing.T, e *Engine, n int) []Diagnostics {
	t.Helper()
	diags := make([]Diagnostics, 0, n)
	for i := 0; i < n; i++ {
		d, err := e.RunCycle(context.Background())
		require.NoError(t, err)
		diags = append(diags, d)
	}
	return diags
}

func TestEngineDayCycle(t *testing.T) {
	p := engineParams(t)
	cam := &stubCamera{p: p, sceneLux: []float64{100000}, aeExposure: 0.004, aeGain: 1.0}
	e := NewEngine(p, cam)

	diags := runCycles(t, e, 3)
	for _, d := range diags {
		assert.Equal(t, ModeDay, d.Mode)
		assert.True(t, d.AutoExposure)
		assert.Equal(t, brightness.SeverityNone, d.Severity.Max())
		assert.Equal(t, 1.0, d.CorrectionFactor)
	}

	// The engine tracks what AE actually chose, not the advisory target.
	st := e.State()
	assert.Equal(t, 0.004, st.AppliedExposure)
	assert.Equal(t, 1.0, st.AppliedGain)
}

func TestEngineDayExitContinuity(t *testing.T) {
	p := engineParams(t)
	bright, dusk := 100000.0, 30.0
	cam := &stubCamera{
		p: p,
		sceneLux: []float64{
			bright, bright, bright, // day
			dusk, dusk, dusk, dusk, dusk, dusk, // dusk sets in
			bright, bright, bright, // dawn
			dusk, dusk, dusk, // dusk again
		},
		aeExposure: 0.004,
		aeGain:     1.0,
	}
	e := NewEngine(p, cam)
	diags := runCycles(t, e, 15)

	// Hysteresis holds Day for two dissenting cycles, switches on the third.
	for i := 0; i <= 4; i++ {
		assert.Equal(t, ModeDay, diags[i].Mode, "cycle %d", i)
		assert.True(t, diags[i].AutoExposure, "cycle %d", i)
	}
	assert.Equal(t, ModeTransition, diags[5].Mode)
	assert.False(t, diags[5].AutoExposure)

	// The first manual frame is photometrically identical to the last
	// automatic one: the continuity clamp overrides the formula target.
	assert.True(t, diags[5].EVClampFired)
	firstEV := diags[5].AppliedExposure * diags[5].AppliedGain
	assert.InEpsilon(t, 0.004*1.0, firstEV, 1e-9)

	// After firing once it stays disarmed, and exposure walks up toward
	// the formula target with gain still on its floor.
	for i := 6; i <= 8; i++ {
		assert.Equal(t, ModeTransition, diags[i].Mode, "cycle %d", i)
		assert.False(t, diags[i].EVClampFired, "cycle %d", i)
		assert.Greater(t, diags[i].AppliedExposure, diags[i-1].AppliedExposure, "cycle %d", i)
		assert.Equal(t, p.GainFloor, diags[i].AppliedGain, "cycle %d", i)
	}

	// Dawn: three bright candidates re-enter Day and re-arm the clamp.
	assert.Equal(t, ModeTransition, diags[9].Mode)
	assert.Equal(t, ModeTransition, diags[10].Mode)
	assert.Equal(t, ModeDay, diags[11].Mode)
	assert.False(t, e.State().EVClampApplied)

	// The next Day exit fires the clamp again from the fresh AE seed.
	assert.Equal(t, ModeTransition, diags[14].Mode)
	assert.True(t, diags[14].EVClampFired)
	assert.InEpsilon(t, 0.004*1.0, diags[14].AppliedExposure*diags[14].AppliedGain, 1e-9)
}

func TestEngineNightConvergence(t *testing.T) {
	p := engineParams(t)
	cam := &stubCamera{
		p:        p,
		sceneLux: []float64{30, 2},
		// A well-behaved scene: governed frames land on target so the
		// correction loops stay neutral and only the ramp is in play.
		governedMean: func(float64, AppliedSettings) float64 { return 120 },
	}
	e := NewEngine(p, cam)

	diags := runCycles(t, e, 60)

	assert.Equal(t, ModeTransition, diags[0].Mode)
	assert.Equal(t, ModeTransition, diags[2].Mode)
	assert.Equal(t, ModeNight, diags[3].Mode)

	// Night pins the target: ceiling shutter, fixed night gain. Any gain
	// above the floor comes only with the shutter at its ceiling.
	for i := 3; i < len(diags); i++ {
		assert.Equal(t, ModeNight, diags[i].Mode, "cycle %d", i)
		assert.InDelta(t, p.NightExposureCeiling, diags[i].TargetExposure, 1e-9)
	}
	for i, d := range diags {
		if d.AppliedGain > p.GainFloor+1e-9 {
			assert.InDelta(t, p.NightExposureCeiling, d.AppliedExposure, 1e-9,
				"cycle %d: gain above floor with shutter headroom left", i)
		}
	}
	assert.InDelta(t, p.NightGain, e.State().TargetGain, 0.1)

	// The applied settings converge on the pinned target.
	final := diags[len(diags)-1]
	assert.Greater(t, final.AppliedExposure, 15.0)
	assert.InDelta(t, p.NightGain, final.AppliedGain, 0.5)
	assert.InDelta(t, p.NightWB.Red, final.AppliedWB.Red, 0.1)
	assert.InDelta(t, p.NightWB.Blue, final.AppliedWB.Blue, 0.1)

	// No severity, so every step used the slow ramp: monotone, no overshoot.
	for i := 4; i < len(diags); i++ {
		assert.GreaterOrEqual(t, diags[i].AppliedExposure, diags[i-1].AppliedExposure)
		assert.LessOrEqual(t, diags[i].AppliedExposure, p.NightExposureCeiling)
	}
}

func TestEngineDawnDescentShutterFirst(t *testing.T) {
	p := engineParams(t)
	cam := &stubCamera{
		p:            p,
		sceneLux:     []float64{2, 2, 2, 60},
		governedMean: func(float64, AppliedSettings) float64 { return 120 },
	}
	e := NewEngine(p, cam)

	diags := runCycles(t, e, 20)

	// Deep night lands straight on the pinned target.
	assert.Equal(t, ModeNight, diags[0].Mode)
	assert.InDelta(t, p.NightExposureCeiling, diags[0].AppliedExposure, 1e-9)
	assert.InDelta(t, p.NightGain, diags[0].AppliedGain, 1e-9)

	// Hysteresis holds Night for two dissenting cycles after dawn.
	assert.Equal(t, ModeNight, diags[4].Mode)
	assert.Equal(t, ModeTransition, diags[5].Mode)

	// On the way down, gain must return to its floor before the shutter
	// leaves the ceiling: any cycle with gain above the floor still has
	// the shutter pinned.
	firstShortened := -1
	for i := 5; i < len(diags); i++ {
		if diags[i].AppliedGain > p.GainFloor+1e-9 {
			assert.InDelta(t, p.NightExposureCeiling, diags[i].AppliedExposure, 1e-9,
				"cycle %d: shutter shortened while gain above floor", i)
		}
		assert.LessOrEqual(t, diags[i].AppliedGain, diags[i-1].AppliedGain, "cycle %d", i)
		if firstShortened < 0 && diags[i].AppliedExposure < p.NightExposureCeiling-1e-9 {
			firstShortened = i
		}
	}

	// The descent exercises both phases: gain drains first, then the
	// shutter shortens with gain already on the floor.
	require.Greater(t, firstShortened, 5)
	assert.Greater(t, diags[firstShortened-1].AppliedGain, p.GainFloor)
	assert.InDelta(t, p.GainFloor, diags[firstShortened].AppliedGain, 1e-9)

	final := diags[len(diags)-1]
	assert.Less(t, final.AppliedExposure, 1.0)
	assert.InDelta(t, p.GainFloor, final.AppliedGain, 1e-9)
}

func TestEngineCriticalRecovery(t *testing.T) {
	p := engineParams(t)
	cam := &stubCamera{
		p:        p,
		sceneLux: []float64{30},
		// Every governed frame comes back blown out no matter the settings.
		governedMean: func(float64, AppliedSettings) float64 { return 250 },
	}
	e := NewEngine(p, cam)

	diags := runCycles(t, e, 6)

	// The blown first frame escalates straight to critical.
	assert.Equal(t, brightness.SeverityCritical, diags[0].Severity.Over)

	// While frames stay blown past the extreme bound, the backstop forces
	// the full fractional step down every cycle, outrunning the formula
	// target.
	for i := 1; i < len(diags); i++ {
		assert.True(t, diags[i].ExtremeClampFired, "cycle %d", i)
		assert.InEpsilon(t, diags[i-1].AppliedExposure*(1-p.ExtremeStepFraction),
			diags[i].AppliedExposure, 1e-9, "cycle %d", i)
		assert.Equal(t, brightness.SeverityCritical, diags[i].Severity.Over, "cycle %d", i)
	}

	// The feedback factor pulls down too, staying inside its bounds.
	for i := 1; i < len(diags); i++ {
		assert.Less(t, diags[i].CorrectionFactor, diags[i-1].CorrectionFactor)
		assert.GreaterOrEqual(t, diags[i].CorrectionFactor, p.CorrectionMin)
	}
}

func TestEngineLearnedBlend(t *testing.T) {
	p := engineParams(t)
	scene := []float64{30}
	governed := func(float64, AppliedSettings) float64 { return 120 }

	plain := NewEngine(p, &stubCamera{p: p, sceneLux: scene, governedMean: governed})
	learned := NewEngine(p, &stubCamera{p: p, sceneLux: scene, governedMean: governed})
	learned.SetBucketTable(p.Retrain(goodSamplesAt(30, 0.01, 1.0, 10)))

	plainDiag := runCycles(t, plain, 1)[0]
	learnedDiag := runCycles(t, learned, 1)[0]

	assert.Zero(t, plainDiag.LearnedTrust)
	assert.InDelta(t, 10.0/15.0, learnedDiag.LearnedTrust, 1e-6)

	// The learned model remembers a much shorter exposure for this lux
	// level, so the blended decision sits below the pure formula one.
	assert.Less(t, learnedDiag.AppliedExposure, plainDiag.AppliedExposure)
	assert.Greater(t, learnedDiag.AppliedExposure, 0.01)
}

func TestEngineBucketSwapMidRun(t *testing.T) {
	p := engineParams(t)
	cam := &stubCamera{
		p:            p,
		sceneLux:     []float64{30},
		governedMean: func(float64, AppliedSettings) float64 { return 120 },
	}
	e := NewEngine(p, cam)

	before := runCycles(t, e, 1)[0]
	assert.Zero(t, before.LearnedTrust)

	// A retrain lands between cycles; the next cycle uses the new table.
	e.SetBucketTable(p.Retrain(goodSamplesAt(30, 0.01, 1.0, 10)))
	after := runCycles(t, e, 1)[0]
	assert.Greater(t, after.LearnedTrust, 0.0)
}
