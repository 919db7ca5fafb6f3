package exposure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEVContinuity(t *testing.T) {
	p := testParams(t)

	t.Run("large EV mismatch overrides exposure, keeps gain", func(t *testing.T) {
		state := &State{
			TransitionSeed: Seed{Exposure: 0.02, Gain: 1.0}, // seed EV 0.02
			HasSeed:        true,
		}
		target := RawTarget{Exposure: 20, Gain: 2.5} // proposed EV 50

		out, fired := p.ApplyEVContinuity(state, target)
		assert.True(t, fired)
		assert.InDelta(t, 0.008, out.Exposure, 1e-9) // 0.02 / 2.5
		assert.Equal(t, 2.5, out.Gain)
	})

	t.Run("within tolerance leaves the target alone", func(t *testing.T) {
		state := &State{
			TransitionSeed: Seed{Exposure: 0.02, Gain: 1.0},
			HasSeed:        true,
		}
		target := RawTarget{Exposure: 0.0204, Gain: 1.0} // 2% off

		out, fired := p.ApplyEVContinuity(state, target)
		assert.False(t, fired)
		assert.Equal(t, target, out)
	})

	t.Run("disarmed clamp never fires", func(t *testing.T) {
		state := &State{
			TransitionSeed: Seed{Exposure: 0.02, Gain: 1.0},
			HasSeed:        true,
			EVClampApplied: true,
		}
		target := RawTarget{Exposure: 20, Gain: 2.5}

		out, fired := p.ApplyEVContinuity(state, target)
		assert.False(t, fired)
		assert.Equal(t, target, out)
	})

	t.Run("no seed means no clamp", func(t *testing.T) {
		state := &State{}
		target := RawTarget{Exposure: 20, Gain: 2.5}

		_, fired := p.ApplyEVContinuity(state, target)
		assert.False(t, fired)
	})
}

func TestApplyExtremeClamp(t *testing.T) {
	p := testParams(t)

	t.Run("blown highlights force a reduction", func(t *testing.T) {
		ramped := 1.0 // ramp barely moved
		out, fired := p.ApplyExtremeClamp(235, 1.0, ramped)
		assert.True(t, fired)
		assert.InDelta(t, 1.0*(1-p.ExtremeStepFraction), out, 1e-9)
	})

	t.Run("reduction does not fire when the ramp already cut deeper", func(t *testing.T) {
		out, fired := p.ApplyExtremeClamp(235, 1.0, 0.4)
		assert.False(t, fired)
		assert.Equal(t, 0.4, out)
	})

	t.Run("crushed blacks force an increase", func(t *testing.T) {
		out, fired := p.ApplyExtremeClamp(20, 1.0, 1.02)
		assert.True(t, fired)
		assert.InDelta(t, 1.0*(1+p.ExtremeStepFraction), out, 1e-9)
	})

	t.Run("normal brightness never clamps", func(t *testing.T) {
		out, fired := p.ApplyExtremeClamp(120, 1.0, 1.1)
		assert.False(t, fired)
		assert.Equal(t, 1.1, out)
	})

	t.Run("forced values respect the exposure range", func(t *testing.T) {
		out, fired := p.ApplyExtremeClamp(20, p.NightExposureCeiling, p.NightExposureCeiling)
		assert.False(t, fired)
		assert.LessOrEqual(t, out, p.NightExposureCeiling)

		out, _ = p.ApplyExtremeClamp(235, p.DayExposureFloor, p.DayExposureFloor)
		assert.GreaterOrEqual(t, out, p.DayExposureFloor)
	})
}
