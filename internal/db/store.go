package db

import (
	"fmt"
	"time"

	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
)

// CycleRecord is one persisted exposure cycle.
type CycleRecord struct {
	ID                int64     `json:"id"`
	RunID             string    `json:"run_id"`
	CapturedAt        time.Time `json:"captured_at"`
	Mode              string    `json:"mode"`
	RawLux            float64   `json:"raw_lux"`
	SmoothedLux       float64   `json:"smoothed_lux"`
	Exposure          float64   `json:"exposure"`
	Gain              float64   `json:"gain"`
	WBRed             float64   `json:"wb_red"`
	WBBlue            float64   `json:"wb_blue"`
	AutoExposure      bool      `json:"auto_exposure"`
	MeanBrightness    float64   `json:"mean_brightness"`
	StdDevBrightness  float64   `json:"stddev_brightness"`
	CorrectionFactor  float64   `json:"correction_factor"`
	SeverityOver      string    `json:"severity_over"`
	SeverityUnder     string    `json:"severity_under"`
	EVClampFired      bool      `json:"ev_clamp_fired"`
	ExtremeClampFired bool      `json:"extreme_clamp_fired"`
	LearnedTrust      float64   `json:"learned_trust"`
	DriftMultiplier   float64   `json:"drift_multiplier"`
}

// NewCycleRecord flattens one cycle's diagnostics for persistence.
func NewCycleRecord(runID string, d exposure.Diagnostics) CycleRecord {
	return CycleRecord{
		RunID:             runID,
		CapturedAt:        d.Timestamp,
		Mode:              string(d.Mode),
		RawLux:            d.RawLux,
		SmoothedLux:       d.SmoothedLux,
		Exposure:          d.AppliedExposure,
		Gain:              d.AppliedGain,
		WBRed:             d.AppliedWB.Red,
		WBBlue:            d.AppliedWB.Blue,
		AutoExposure:      d.AutoExposure,
		MeanBrightness:    d.Brightness.Mean,
		StdDevBrightness:  d.Brightness.StdDev,
		CorrectionFactor:  d.CorrectionFactor,
		SeverityOver:      string(d.Severity.Over),
		SeverityUnder:     string(d.Severity.Under),
		EVClampFired:      d.EVClampFired,
		ExtremeClampFired: d.ExtremeClampFired,
		LearnedTrust:      d.LearnedTrust,
		DriftMultiplier:   d.DriftMultiplier,
	}
}

const cycleColumns = `run_id, captured_at, mode, raw_lux, smoothed_lux,
	exposure, gain, wb_red, wb_blue, auto_exposure,
	mean_brightness, stddev_brightness, correction_factor,
	severity_over, severity_under, ev_clamp_fired, extreme_clamp_fired,
	learned_trust, drift_multiplier`

// RecordCycle inserts one cycle row.
func (db *DB) RecordCycle(rec CycleRecord) error {
	_, err := db.Exec(`
		INSERT INTO exposure_cycles (`+cycleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.CapturedAt, rec.Mode, rec.RawLux, rec.SmoothedLux,
		rec.Exposure, rec.Gain, rec.WBRed, rec.WBBlue, rec.AutoExposure,
		rec.MeanBrightness, rec.StdDevBrightness, rec.CorrectionFactor,
		rec.SeverityOver, rec.SeverityUnder, rec.EVClampFired, rec.ExtremeClampFired,
		rec.LearnedTrust, rec.DriftMultiplier,
	)
	if err != nil {
		return fmt.Errorf("insert exposure cycle: %w", err)
	}
	return nil
}

// GoodSampleFilter bounds the retraining read path.
type GoodSampleFilter struct {
	Since time.Time
	Limit int // 0 means no limit
}

// GoodSamples returns candidate retraining samples: manually-governed
// cycles since the filter time, oldest first. Quality filtering happens in
// the retrainer, which also knows the night-sky exception; the store only
// excludes auto-exposure rows, whose settings belong to the hardware AE.
func (db *DB) GoodSamples(f GoodSampleFilter) ([]exposure.GoodSample, error) {
	q := `
		SELECT smoothed_lux, exposure, gain, mean_brightness, stddev_brightness
		FROM exposure_cycles
		WHERE auto_exposure = 0 AND captured_at >= ?
		ORDER BY captured_at ASC`
	args := []interface{}{f.Since}
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query good samples: %w", err)
	}
	defer rows.Close()

	var samples []exposure.GoodSample
	for rows.Next() {
		var s exposure.GoodSample
		if err := rows.Scan(&s.Lux, &s.Exposure, &s.Gain, &s.Brightness, &s.StdDev); err != nil {
			return nil, fmt.Errorf("scan good sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// RecentCycles returns the n most recent cycles, newest first.
func (db *DB) RecentCycles(n int) ([]CycleRecord, error) {
	rows, err := db.Query(`
		SELECT id, `+cycleColumns+`
		FROM exposure_cycles
		ORDER BY captured_at DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent cycles: %w", err)
	}
	defer rows.Close()

	var records []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.CapturedAt, &rec.Mode, &rec.RawLux, &rec.SmoothedLux,
			&rec.Exposure, &rec.Gain, &rec.WBRed, &rec.WBBlue, &rec.AutoExposure,
			&rec.MeanBrightness, &rec.StdDevBrightness, &rec.CorrectionFactor,
			&rec.SeverityOver, &rec.SeverityUnder, &rec.EVClampFired, &rec.ExtremeClampFired,
			&rec.LearnedTrust, &rec.DriftMultiplier,
		); err != nil {
			return nil, fmt.Errorf("scan cycle record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CycleCount reports the number of persisted cycles, for status reporting.
func (db *DB) CycleCount() (int64, error) {
	var n int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM exposure_cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exposure cycles: %w", err)
	}
	return n, nil
}
