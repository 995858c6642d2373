package propagation

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/brandon-sexton/openspace-coordinates/internal/tle"
	"github.com/brandon-sexton/openspace-coordinates/internal/transform"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// SGP4 errors are not visible through satellite.Propagate, which takes the
// Satellite by value. Failures are detected from the output instead.

// SGP4Propagator wraps the go-satellite library for a single satellite.
type SGP4Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4Propagator initializes SGP4 from a catalog entry.
//
// The lines are validated first because go-satellite calls log.Fatal on
// any numeric field it cannot parse.
func NewSGP4Propagator(entry tle.Entry) (*SGP4Propagator, error) {
	if err := tle.ValidateLines(entry.Line1, entry.Line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", entry.NORADID, err)
	}

	sat := satellite.TLEToSat(entry.Line1, entry.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", entry.NORADID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, noradID: entry.NORADID}, nil
}

// Propagate returns the TEME state at t, truncated to whole seconds.
func (p *SGP4Propagator) Propagate(t time.Time) (transform.StateTEME, error) {
	t = t.UTC()
	pos, vel := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	state := transform.StateTEME{
		Position: vecmath.NewVector3(pos.X, pos.Y, pos.Z),
		Velocity: vecmath.NewVector3(vel.X, vel.Y, vel.Z),
	}
	if err := transform.ValidateOrbitRadius(state.Position); err != nil {
		return transform.StateTEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: %w", p.noradID, err)
	}
	if !state.Velocity.IsFinite() {
		return transform.StateTEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: velocity is not finite", p.noradID)
	}
	return state, nil
}
