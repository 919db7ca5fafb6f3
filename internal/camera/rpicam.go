package camera

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
	"github.com/ekstremedia/raspilapse-sub000/internal/monitoring"
)

// Rpicam drives a Raspberry Pi camera through the rpicam-still binary.
// Each capture shells out once, writes a YUV420 buffer to a scratch file,
// and returns the Y plane for analysis. An in-flight exposure always runs
// to completion; the context deadline only bounds how long we wait for the
// process beyond the requested shutter time.
type Rpicam struct {
	Binary   string // rpicam-still, or a compatible shim
	Width    int
	Height   int
	TmpDir   string        // scratch dir for YUV buffers, os.TempDir() when empty
	Overhead time.Duration // process time allowed beyond the shutter

	probe exposure.AppliedSettings
}

// NewRpicam builds the real capture collaborator. Probe settings are fixed
// from the tuning parameters so every probe is comparable.
func NewRpicam(p exposure.Params) *Rpicam {
	return &Rpicam{
		Binary:   "rpicam-still",
		Width:    640,
		Height:   360,
		Overhead: 20 * time.Second,
		probe: exposure.AppliedSettings{
			Exposure: p.ProbeExposure,
			Gain:     p.ProbeGain,
			WB:       exposure.WBGains{Red: 1.0, Blue: 1.0},
		},
	}
}

// Probe takes the fixed-setting light measurement capture.
func (c *Rpicam) Probe(ctx context.Context) (exposure.Frame, error) {
	frame, err := c.run(ctx, c.probe)
	if err != nil {
		return exposure.Frame{}, err
	}
	// Probe settings are known exactly; ignore metadata echo.
	frame.Exposure = c.probe.Exposure
	frame.Gain = c.probe.Gain
	return frame, nil
}

// Capture takes the governed capture with the engine's settings.
func (c *Rpicam) Capture(ctx context.Context, s exposure.AppliedSettings) (exposure.Frame, error) {
	return c.run(ctx, s)
}

func (c *Rpicam) run(ctx context.Context, s exposure.AppliedSettings) (exposure.Frame, error) {
	dir := c.TmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	out, err := os.CreateTemp(dir, "raspilapse-*.yuv")
	if err != nil {
		return exposure.Frame{}, fmt.Errorf("create capture scratch file: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	meta := out.Name() + ".json"
	defer os.Remove(meta)

	wait := c.Overhead
	if !s.AutoExposure {
		wait += time.Duration(s.Exposure * float64(time.Second))
	}
	runCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	args := c.buildArgs(s, out.Name(), meta)
	cmd := exec.CommandContext(runCtx, c.Binary, args...)
	if combined, err := cmd.CombinedOutput(); err != nil {
		return exposure.Frame{}, fmt.Errorf("%s: %w (%s)", c.Binary, err, string(combined))
	}

	buf, err := os.ReadFile(out.Name())
	if err != nil {
		return exposure.Frame{}, fmt.Errorf("read capture buffer: %w", err)
	}
	plane := c.Width * c.Height
	if len(buf) < plane {
		return exposure.Frame{}, fmt.Errorf("short YUV buffer: got %d bytes, want at least %d", len(buf), plane)
	}

	frame := exposure.Frame{
		Pixels:   buf[:plane],
		Exposure: s.Exposure,
		Gain:     s.Gain,
		WB:       s.WB,
	}

	// Under auto exposure the settings the sensor chose come back in the
	// metadata sidecar. Missing metadata is not fatal; the engine treats
	// zero values as unknown.
	if s.AutoExposure {
		actual, err := readMetadata(meta)
		if err != nil {
			monitoring.Logf("capture metadata unavailable: %v", err)
			frame.Exposure, frame.Gain = 0, 0
		} else {
			frame.Exposure = actual.Exposure
			frame.Gain = actual.Gain
			frame.WB = actual.WB
		}
	}
	return frame, nil
}

// buildArgs maps engine settings onto rpicam-still flags. Manual control
// pins shutter, gain, and white balance gains; auto exposure omits them and
// asks for the metadata sidecar instead.
func (c *Rpicam) buildArgs(s exposure.AppliedSettings, outFile, metaFile string) []string {
	args := []string{
		"--nopreview",
		"--immediate",
		"--width", strconv.Itoa(c.Width),
		"--height", strconv.Itoa(c.Height),
		"--encoding", "yuv420",
		"--output", outFile,
	}
	if s.AutoExposure {
		args = append(args,
			"--metadata", metaFile,
			"--metadata-format", "json",
		)
		return args
	}
	shutterUs := int64(s.Exposure * 1e6)
	args = append(args,
		"--shutter", strconv.FormatInt(shutterUs, 10),
		"--gain", strconv.FormatFloat(s.Gain, 'f', -1, 64),
		"--awbgains", fmt.Sprintf("%.3f,%.3f", s.WB.Red, s.WB.Blue),
	)
	return args
}

// rpicamMetadata mirrors the fields we need from the rpicam-still JSON
// metadata sidecar.
type rpicamMetadata struct {
	ExposureTime int64     `json:"ExposureTime"` // microseconds
	AnalogueGain float64   `json:"AnalogueGain"`
	ColourGains  []float64 `json:"ColourGains"` // red, blue
}

type actualSettings struct {
	Exposure float64
	Gain     float64
	WB       exposure.WBGains
}

func readMetadata(path string) (actualSettings, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return actualSettings{}, fmt.Errorf("read metadata: %w", err)
	}
	var m rpicamMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return actualSettings{}, fmt.Errorf("parse metadata: %w", err)
	}
	a := actualSettings{
		Exposure: float64(m.ExposureTime) / 1e6,
		Gain:     m.AnalogueGain,
	}
	if len(m.ColourGains) == 2 {
		a.WB = exposure.WBGains{Red: m.ColourGains[0], Blue: m.ColourGains[1]}
	}
	return a, nil
}
