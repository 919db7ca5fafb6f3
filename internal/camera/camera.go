// Package camera provides the capture implementations behind the engine's
// Camera interface: the real rpicam-still collaborator and a synthetic
// scene for development.
package camera

import (
	"fmt"

	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
	"github.com/ekstremedia/raspilapse-sub000/internal/timeutil"
)

// New returns the capture implementation for the given kind: "rpicam" for
// real hardware, "synthetic" for the simulated dev scene.
func New(kind string, p exposure.Params) (exposure.Camera, error) {
	switch kind {
	case "rpicam":
		return NewRpicam(p), nil
	case "synthetic":
		return NewSynthetic(p, timeutil.RealClock{}), nil
	default:
		return nil, fmt.Errorf("unknown camera kind %q", kind)
	}
}
