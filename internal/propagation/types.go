package propagation

import (
	"time"

	"github.com/brandon-sexton/openspace-coordinates/internal/transform"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// State is one satellite's position at an epoch in every supported frame.
// Distances are km, velocities km/s.
type State struct {
	NORADID int
	Name    string
	Epoch   time.Time

	// Fixed is the ECF state derived from the SGP4 TEME output.
	Fixed transform.StateFixed
	// Inertial is the ECI (J2000) position.
	Inertial vecmath.Vector3
	// Spherical is Inertial as (range, right ascension, declination).
	Spherical vecmath.Vector3
	// Geodetic is the WGS-84 sub-satellite point.
	Geodetic transform.Geodetic
}

// Config holds propagation configuration loaded from environment variables.
type Config struct {
	Workers int // Concurrent propagations per snapshot (default: runtime.NumCPU())
}
