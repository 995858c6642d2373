package frames

import (
	"math"

	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// Transform holds the three rotations for a single epoch so they can be
// reused across many vectors.
type Transform struct {
	Rotation   vecmath.Matrix3
	Nutation   vecmath.Matrix3
	Precession vecmath.Matrix3
}

// NewTransform evaluates R, N and P at e.
func NewTransform(e Epoch) Transform {
	return Transform{
		Rotation:   RotationMatrix(e),
		Nutation:   NutationMatrix(e),
		Precession: PrecessionMatrix(e),
	}
}

// FixedFromInertial applies precession, then nutation, then rotation.
func (t Transform) FixedFromInertial(v vecmath.Vector3) vecmath.Vector3 {
	return t.Rotation.MulVec(t.Nutation.MulVec(t.Precession.MulVec(v)))
}

// InertialFromFixed undoes FixedFromInertial using transposes in reverse
// order.
func (t Transform) InertialFromFixed(v vecmath.Vector3) vecmath.Vector3 {
	return t.Precession.Transpose().MulVec(
		t.Nutation.Transpose().MulVec(
			t.Rotation.Transpose().MulVec(v)))
}

// Matrix returns the composed ECI-to-ECF matrix R·N·P.
func (t Transform) Matrix() vecmath.Matrix3 {
	return t.Rotation.Mul(t.Nutation.Mul(t.Precession))
}

// FixedFromInertial converts an ECI position to ECF at e.
func FixedFromInertial(e Epoch, position vecmath.Vector3) vecmath.Vector3 {
	return NewTransform(e).FixedFromInertial(position)
}

// InertialFromFixed converts an ECF position to ECI at e.
func InertialFromFixed(e Epoch, position vecmath.Vector3) vecmath.Vector3 {
	return NewTransform(e).InertialFromFixed(position)
}

// SphericalFromCartesian returns (range, right ascension, declination) of
// position, with angles in radians and right ascension in [0, 2π).
//
// The origin is degenerate and maps to (0, 0, 0). A vector on the ±Z axis
// gets right ascension 0.
func SphericalFromCartesian(position vecmath.Vector3) vecmath.Vector3 {
	x, y, z := position.X(), position.Y(), position.Z()
	ra := math.Atan2(y, x)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	// Tiny negative angles round up to exactly 2π; -0 becomes 0.
	if ra >= 2*math.Pi || ra == 0 {
		ra = 0
	}
	dec := math.Atan2(z, math.Sqrt(x*x+y*y))
	return vecmath.NewVector3(position.Norm(), ra, dec)
}

// CartesianFromSpherical is the inverse of SphericalFromCartesian.
func CartesianFromSpherical(s vecmath.Vector3) vecmath.Vector3 {
	r, ra, dec := s[0], s[1], s[2]
	sra, cra := math.Sincos(ra)
	sdec, cdec := math.Sincos(dec)
	return vecmath.NewVector3(r*cdec*cra, r*cdec*sra, r*sdec)
}
