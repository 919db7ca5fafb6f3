package brightness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformBuffer(value uint8, n int) []uint8 {
	buf := make([]uint8, n)
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func TestAnalyze(t *testing.T) {
	t.Run("empty buffer yields zero metrics", func(t *testing.T) {
		m := Analyze(nil)
		assert.Equal(t, Metrics{}, m)
	})

	t.Run("uniform buffer", func(t *testing.T) {
		m := Analyze(uniformBuffer(120, 1000))
		assert.Equal(t, 120.0, m.Mean)
		assert.Equal(t, 120.0, m.Median)
		assert.Equal(t, 0.0, m.StdDev)
		assert.Equal(t, 0.0, m.UnderexposedPct)
		assert.Equal(t, 0.0, m.OverexposedPct)
	})

	t.Run("clipped fractions", func(t *testing.T) {
		// 100 black pixels, 50 saturated, 850 mid-gray
		buf := append(uniformBuffer(0, 100), uniformBuffer(255, 50)...)
		buf = append(buf, uniformBuffer(128, 850)...)

		m := Analyze(buf)
		assert.InDelta(t, 10.0, m.UnderexposedPct, 1e-9)
		assert.InDelta(t, 5.0, m.OverexposedPct, 1e-9)
	})

	t.Run("percentiles are ordered", func(t *testing.T) {
		buf := make([]uint8, 256)
		for i := range buf {
			buf[i] = uint8(i)
		}
		m := Analyze(buf)
		assert.LessOrEqual(t, m.P5, m.P25)
		assert.LessOrEqual(t, m.P25, m.Median)
		assert.LessOrEqual(t, m.Median, m.P75)
		assert.LessOrEqual(t, m.P75, m.P95)
		assert.Greater(t, m.StdDev, 0.0)
	})
}

func TestSeverityClassify(t *testing.T) {
	th := DefaultThresholds()
	clear := ClearFlags()

	t.Run("mid brightness is clear", func(t *testing.T) {
		f := th.Classify(Metrics{Mean: 120}, clear)
		assert.Equal(t, SeverityNone, f.Over)
		assert.Equal(t, SeverityNone, f.Under)
	})

	t.Run("overexposure escalation", func(t *testing.T) {
		f := th.Classify(Metrics{Mean: 155}, clear)
		assert.Equal(t, SeverityWarning, f.Over)

		f = th.Classify(Metrics{Mean: 175}, f)
		assert.Equal(t, SeverityCritical, f.Over)
	})

	t.Run("clip percentage alone triggers over severity", func(t *testing.T) {
		f := th.Classify(Metrics{Mean: 120, OverexposedPct: 12}, clear)
		assert.Equal(t, SeverityCritical, f.Over)
	})

	t.Run("warning holds until clear condition", func(t *testing.T) {
		f := th.Classify(Metrics{Mean: 155}, clear)
		assert.Equal(t, SeverityWarning, f.Over)

		// Mean back between clear (130) and warn (150): still warning.
		f = th.Classify(Metrics{Mean: 140}, f)
		assert.Equal(t, SeverityWarning, f.Over)

		// Below clear level: released.
		f = th.Classify(Metrics{Mean: 125}, f)
		assert.Equal(t, SeverityNone, f.Over)
	})

	t.Run("underexposure escalation and release", func(t *testing.T) {
		f := th.Classify(Metrics{Mean: 85}, clear)
		assert.Equal(t, SeverityWarning, f.Under)

		f = th.Classify(Metrics{Mean: 60}, f)
		assert.Equal(t, SeverityCritical, f.Under)

		// Between warn (90) and clear (105): holds at warning.
		f = th.Classify(Metrics{Mean: 100}, f)
		assert.Equal(t, SeverityWarning, f.Under)

		f = th.Classify(Metrics{Mean: 110}, f)
		assert.Equal(t, SeverityNone, f.Under)
	})

	t.Run("max picks the more severe direction", func(t *testing.T) {
		f := Flags{Over: SeverityWarning, Under: SeverityCritical}
		assert.Equal(t, SeverityCritical, f.Max())

		f = Flags{Over: SeverityWarning, Under: SeverityNone}
		assert.Equal(t, SeverityWarning, f.Max())

		assert.Equal(t, SeverityNone, ClearFlags().Max())
	})
}
