// Package transform bridges SGP4 output into the ECF frame.
//
// SGP4 emits states in TEME (True Equator Mean Equinox). TEME differs from
// ECF only by a rotation about the pole through GMST, so the conversion
// needs no precession or nutation. Polar motion is ignored.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"fmt"
	"math"

	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// OmegaEarth is Earth's rotation rate in rad/s (IAU value).
const OmegaEarth = 7.292115146706979e-5

// Orbital radius bounds for a plausible Earth-orbiting position, km.
const (
	minRadiusKm = 6200.0
	maxRadiusKm = 50000.0
)

// StateTEME is a position (km) and velocity (km/s) in TEME.
type StateTEME struct {
	Position vecmath.Vector3
	Velocity vecmath.Vector3
}

// StateFixed is a position (km) and velocity (km/s) in ECF.
type StateFixed struct {
	Position vecmath.Vector3
	Velocity vecmath.Vector3
}

// FixedFromTEME rotates a TEME state into ECF using the GMST angle (radians).
//
//	r_ECF = R3(θ) · r_TEME
//	v_ECF = R3(θ) · v_TEME − ω × r_ECF
func FixedFromTEME(s StateTEME, gmst float64) StateFixed {
	sinG, cosG := math.Sincos(gmst)
	r3 := vecmath.Matrix3{
		{cosG, sinG, 0},
		{-sinG, cosG, 0},
		{0, 0, 1},
	}

	pos := r3.MulVec(s.Position)
	vel := r3.MulVec(s.Velocity)

	// ω × r = [-ω·y, ω·x, 0]
	vel = vel.Sub(vecmath.NewVector3(-OmegaEarth*pos.Y(), OmegaEarth*pos.X(), 0))

	return StateFixed{Position: pos, Velocity: vel}
}

// ValidateOrbitRadius checks that pos (km) is finite and lies between just
// inside the Earth's surface and beyond GEO.
func ValidateOrbitRadius(pos vecmath.Vector3) error {
	if !pos.IsFinite() {
		return fmt.Errorf("position %v is not finite", pos)
	}
	if mag := pos.Norm(); mag < minRadiusKm || mag > maxRadiusKm {
		return fmt.Errorf("unreasonable position magnitude %.1f km", mag)
	}
	return nil
}
