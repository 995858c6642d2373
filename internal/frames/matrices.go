// Package frames builds the rotations between the Earth-centered inertial
// frame (ECI, J2000 mean equator and equinox) and the Earth-centered fixed
// frame (ECF), and converts positions between them.
//
// The transform is the classical three-stage chain
//
//	ECF = R · N · P · ECI
//
// where P precesses J2000 mean coordinates to the mean equator of date, N
// nutates mean-of-date to true-of-date, and R spins true-of-date about the
// pole by Greenwich Apparent Sidereal Time. Each stage comes from a
// truncated analytic series, good to a few arcseconds over decades around
// J2000. It is not intended for geodetic-grade work.
//
// Functions in this file are pure. Non-finite epoch values propagate into
// the returned matrices as NaN; use Converter for checked conversions.
package frames

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// Epoch is the time source the rotations are evaluated at. All three values
// must describe the same instant.
type Epoch interface {
	DaysPastJ2000() float64
	JulianCenturiesPastJ2000() float64
	GMST() float64 // radians
}

// Obliquity returns the mean obliquity of the ecliptic at e in radians.
// The rotations use it internally; it is exported so the matrices endpoint
// and framectl can report it alongside GAST.
func Obliquity(e Epoch) float64 {
	t := e.JulianCenturiesPastJ2000()
	return obliquityJ2000 - coeffA*t - coeffB*t*t + coeffC*t*t*t
}

// nutationAngles returns the low-order nutation in longitude (dpsi) and in
// obliquity (deps), both in radians.
func nutationAngles(e Epoch) (dpsi, deps float64) {
	d := e.DaysPastJ2000()
	arg1 := unit.AngleFromDeg(nodeLongitude0 - nodeLongitudeRate*d).Rad()
	arg2 := unit.AngleFromDeg(sunLongitude0 + sunLongitudeRate*d).Rad()
	s1, c1 := math.Sincos(arg1)
	s2, c2 := math.Sincos(arg2)
	dpsi = coeffD*s1 - coeffE*s2
	deps = coeffN*c1 + coeffO*c2
	return dpsi, deps
}

// GAST returns Greenwich Apparent Sidereal Time in radians: GMST plus the
// equation of the equinoxes. The result is not reduced to [0, 2π).
func GAST(e Epoch) float64 {
	dpsi, _ := nutationAngles(e)
	return dpsi*math.Cos(Obliquity(e)) + e.GMST()
}

// RotationMatrix returns the diurnal rotation R at e, a rotation about +Z
// by GAST taking true-of-date coordinates to ECF.
func RotationMatrix(e Epoch) vecmath.Matrix3 {
	gast := GAST(e)
	s, c := math.Sincos(-gast)
	return vecmath.NewMatrix3(
		vecmath.NewVector3(c, -s, 0),
		vecmath.NewVector3(s, c, 0),
		vecmath.NewVector3(0, 0, 1),
	)
}

// NutationMatrix returns the nutation N at e, mean-of-date to true-of-date.
//
// The matrix is the first-order small-angle form and is orthogonal only to
// O(dpsi·deps), about 1e-9. It is deliberately not re-orthonormalized; see
// Config.OrthonormalNutation.
func NutationMatrix(e Epoch) vecmath.Matrix3 {
	dpsi, deps := nutationAngles(e)
	se, ce := math.Sincos(Obliquity(e))
	return vecmath.NewMatrix3(
		vecmath.NewVector3(1, -dpsi*ce, -dpsi*se),
		vecmath.NewVector3(dpsi*ce, 1, -deps),
		vecmath.NewVector3(dpsi*se, deps, 1),
	)
}

// PrecessionMatrix returns the precession P at e, J2000 mean to mean-of-date,
// as a Z-Y-Z Euler composition of the three precession angles.
func PrecessionMatrix(e Epoch) vecmath.Matrix3 {
	t := e.JulianCenturiesPastJ2000()
	t2, t3 := t*t, t*t*t
	x := coeffF*t + coeffG*t2 + coeffH*t3
	y := coeffI*t - coeffJ*t2 - coeffK*t3
	z := x + coeffL*t2 + coeffM*t3

	sx, cx := math.Sincos(x)
	sy, cy := math.Sincos(y)
	sz, cz := math.Sincos(z)

	return vecmath.NewMatrix3(
		vecmath.NewVector3(-sz*sx+cz*cy*cx, -sz*cx-cz*cy*sx, -cz*sy),
		vecmath.NewVector3(cz*sx+sz*cy*cx, cz*cx-sz*cy*sx, -sz*sy),
		vecmath.NewVector3(sy*cx, -sy*sx, cy),
	)
}
