package exposure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams(t *testing.T) Params {
	t.Helper()
	p, err := NewParams(nil)
	require.NoError(t, err)
	return p
}

func TestSmootherEMA(t *testing.T) {
	p := testParams(t)
	s := NewSmoother(p)
	now := time.Now()

	t.Run("first sample seeds the EMA", func(t *testing.T) {
		sample := s.Update(100, now)
		assert.Equal(t, 100.0, sample.SmoothedLux)
		assert.Equal(t, 100.0, sample.RawLux)
	})

	t.Run("subsequent samples blend by alpha", func(t *testing.T) {
		sample := s.Update(200, now)
		// 0.3*200 + 0.7*100
		assert.InDelta(t, 130.0, sample.SmoothedLux, 1e-9)
		assert.Equal(t, 200.0, sample.RawLux)
	})
}

func TestSmootherConvergesWithoutOvershoot(t *testing.T) {
	p := testParams(t)
	s := NewSmoother(p)
	now := time.Now()

	s.Update(10, now)

	// Step input: smoothed must approach 1000 monotonically and never
	// exceed it.
	prev := s.Sample().SmoothedLux
	for i := 0; i < 60; i++ {
		sample := s.Update(1000, now)
		assert.GreaterOrEqual(t, sample.SmoothedLux, prev, "cycle %d regressed", i)
		assert.LessOrEqual(t, sample.SmoothedLux, 1000.0, "cycle %d overshot", i)
		prev = sample.SmoothedLux
	}
	assert.InDelta(t, 1000.0, prev, 1.0)
}

func TestSmootherHysteresis(t *testing.T) {
	now := time.Now()

	// Alpha 1 disables smoothing so candidates follow raw lux directly.
	cfgParams := func(t *testing.T) Params {
		p := testParams(t)
		p.Alpha = 1.0
		return p
	}

	t.Run("accepted mode needs consecutive dissent", func(t *testing.T) {
		p := cfgParams(t)
		s := NewSmoother(p)

		s.Update(200, now) // seeds Day
		require.Equal(t, ModeDay, s.Mode())

		s.Update(40, now) // Transition candidate 1
		assert.Equal(t, ModeDay, s.Mode())
		s.Update(40, now) // candidate 2
		assert.Equal(t, ModeDay, s.Mode())
		s.Update(40, now) // candidate 3: switch
		assert.Equal(t, ModeTransition, s.Mode())
	})

	t.Run("alternating candidate never flips the mode", func(t *testing.T) {
		p := cfgParams(t)
		s := NewSmoother(p)

		s.Update(200, now)
		require.Equal(t, ModeDay, s.Mode())

		for i := 0; i < 20; i++ {
			s.Update(40, now)  // Transition candidate
			s.Update(200, now) // back to Day candidate
			assert.Equal(t, ModeDay, s.Mode(), "cycle %d", i)
		}
	})

	t.Run("changing the dissenting candidate restarts the count", func(t *testing.T) {
		p := cfgParams(t)
		s := NewSmoother(p)

		s.Update(200, now)
		s.Update(40, now) // Transition candidate, count 1
		s.Update(40, now) // count 2
		s.Update(2, now)  // Night candidate: restart at 1
		assert.Equal(t, ModeDay, s.Mode())
		s.Update(2, now) // count 2
		assert.Equal(t, ModeDay, s.Mode())
		s.Update(2, now) // count 3: Night accepted
		assert.Equal(t, ModeNight, s.Mode())
	})

	t.Run("descent through twilight reaches night only after sustained dark", func(t *testing.T) {
		p := cfgParams(t)
		s := NewSmoother(p)

		for _, lux := range []float64{200, 150, 90} {
			s.Update(lux, now)
			assert.Equal(t, ModeDay, s.Mode())
		}
		// Three consecutive transition-band readings flip to Transition.
		seen := []Mode{}
		for _, lux := range []float64{40, 20, 10} {
			s.Update(lux, now)
			seen = append(seen, s.Mode())
		}
		assert.Equal(t, ModeTransition, seen[2])

		// Night is accepted only after three consecutive sub-threshold
		// candidates.
		s.Update(2, now)
		assert.Equal(t, ModeTransition, s.Mode())
		s.Update(1, now)
		assert.Equal(t, ModeTransition, s.Mode())
		s.Update(0.5, now)
		assert.Equal(t, ModeNight, s.Mode())
	})
}

func TestEstimateLux(t *testing.T) {
	p := testParams(t)

	t.Run("monotonic in brightness", func(t *testing.T) {
		low := p.EstimateLux(40, p.ProbeExposure, p.ProbeGain)
		high := p.EstimateLux(120, p.ProbeExposure, p.ProbeGain)
		assert.Greater(t, high, low)
	})

	t.Run("all-dark probe pins to minimum", func(t *testing.T) {
		assert.Equal(t, p.LuxMin, p.EstimateLux(0, p.ProbeExposure, p.ProbeGain))
		assert.Equal(t, p.LuxMin, p.EstimateLux(1.5, p.ProbeExposure, p.ProbeGain))
	})

	t.Run("saturated probe pins to maximum", func(t *testing.T) {
		assert.Equal(t, p.LuxMax, p.EstimateLux(255, p.ProbeExposure, p.ProbeGain))
	})

	t.Run("zero exposure cannot divide by zero", func(t *testing.T) {
		assert.Equal(t, p.LuxMin, p.EstimateLux(120, 0, p.ProbeGain))
		assert.Equal(t, p.LuxMin, p.EstimateLux(120, p.ProbeExposure, 0))
	})

	t.Run("result never negative", func(t *testing.T) {
		for _, mean := range []float64{0, 3, 50, 128, 200, 255} {
			assert.GreaterOrEqual(t, p.EstimateLux(mean, p.ProbeExposure, p.ProbeGain), 0.0)
		}
	})
}
