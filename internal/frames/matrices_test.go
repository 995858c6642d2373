package frames

import (
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/unit"

	"github.com/brandon-sexton/openspace-coordinates/internal/epoch"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// rawEpoch supplies the three epoch values directly.
type rawEpoch struct {
	days, centuries, gmst float64
}

func (e rawEpoch) DaysPastJ2000() float64            { return e.days }
func (e rawEpoch) JulianCenturiesPastJ2000() float64 { return e.centuries }
func (e rawEpoch) GMST() float64                     { return e.gmst }

// testEpochs spans a century either side of J2000.
func testEpochs() []epoch.Epoch {
	return []epoch.Epoch{
		epoch.J2000(),
		epoch.New(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)),
		epoch.New(time.Date(1987, 4, 10, 19, 21, 0, 0, time.UTC)),
		epoch.New(time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC)),
		epoch.New(time.Date(2021, 12, 25, 4, 42, 42, 424000000, time.UTC)),
		epoch.New(time.Date(2050, 6, 30, 23, 59, 59, 0, time.UTC)),
		epoch.New(time.Date(2099, 12, 31, 12, 0, 0, 0, time.UTC)),
	}
}

func TestObliquityAtJ2000(t *testing.T) {
	if got := Obliquity(epoch.J2000()); got != obliquityJ2000 {
		t.Errorf("Obliquity(J2000) = %.16f, want %.16f", got, obliquityJ2000)
	}
}

// TestObliquityRate compares the change in obliquity since J2000 against
// meeus' IAU 1980 mean obliquity, which uses the same rate terms.
func TestObliquityRate(t *testing.T) {
	j2000 := epoch.J2000()
	ref0 := nutation.MeanObliquity(j2000.JulianDate()).Rad()

	for _, e := range testEpochs() {
		ours := Obliquity(e) - obliquityJ2000
		ref := nutation.MeanObliquity(e.JulianDate()).Rad() - ref0
		if diff := math.Abs(ours - ref); diff > 1e-10 {
			t.Errorf("obliquity change at %v = %.3e rad, meeus = %.3e rad (diff=%.2e)", e, ours, ref, diff)
		}
	}
}

// TestNutationAngles checks the two-term nutation series against meeus'
// full IAU 1980 series. The truncation error is bounded by a few arcseconds.
func TestNutationAngles(t *testing.T) {
	tolerance := unit.AngleFromSec(3).Rad()

	for _, e := range testEpochs() {
		dpsi, deps := nutationAngles(e)
		refPsi, refEps := nutation.Nutation(e.JulianDate())
		if diff := math.Abs(dpsi - refPsi.Rad()); diff > tolerance {
			t.Errorf("dpsi at %v = %.2f\", meeus = %.2f\"", e, unit.Angle(dpsi).Sec(), refPsi.Sec())
		}
		if diff := math.Abs(deps - refEps.Rad()); diff > tolerance {
			t.Errorf("deps at %v = %.2f\", meeus = %.2f\"", e, unit.Angle(deps).Sec(), refEps.Sec())
		}
	}
}

func TestOrthogonality(t *testing.T) {
	for _, e := range testEpochs() {
		t.Run(e.String(), func(t *testing.T) {
			if err := RotationMatrix(e).OrthogonalityError(); err > 1e-14 {
				t.Errorf("rotation orthogonality error = %.2e", err)
			}
			if err := PrecessionMatrix(e).OrthogonalityError(); err > 1e-14 {
				t.Errorf("precession orthogonality error = %.2e", err)
			}
			// First-order only: off by O(dpsi²), O(deps²).
			if err := NutationMatrix(e).OrthogonalityError(); err > 2e-8 {
				t.Errorf("nutation orthogonality error = %.2e", err)
			}
		})
	}
}

func TestPrecessionIdentityAtJ2000(t *testing.T) {
	if d := PrecessionMatrix(epoch.J2000()).MaxAbsDiff(vecmath.Identity()); d != 0 {
		t.Errorf("precession at J2000 differs from identity by %g", d)
	}
}

func TestRotationMatrixIsZRotationByGAST(t *testing.T) {
	for _, e := range testEpochs() {
		gast := GAST(e)
		s, c := math.Sincos(gast)
		want := vecmath.Matrix3{{c, s, 0}, {-s, c, 0}, {0, 0, 1}}
		if d := RotationMatrix(e).MaxAbsDiff(want); d > 1e-15 {
			t.Errorf("rotation at %v differs from R3(GAST) by %g", e, d)
		}
		// GAST stays within the equation of the equinoxes (~1.2s of time) of GMST.
		if eqeq := math.Abs(gast - e.GMST()); eqeq > unit.AngleFromSec(20).Rad() {
			t.Errorf("equation of the equinoxes at %v = %g rad", e, eqeq)
		}
	}
}

// TestNutationMatrixExactForm pins the non-orthonormalized first-order form.
func TestNutationMatrixExactForm(t *testing.T) {
	e := rawEpoch{days: 0, centuries: 0, gmst: 0}
	n := NutationMatrix(e)

	arg1 := unit.AngleFromDeg(125.0).Rad()
	arg2 := unit.AngleFromDeg(200.9).Rad()
	dpsi := coeffD*math.Sin(arg1) - coeffE*math.Sin(arg2)
	deps := coeffN*math.Cos(arg1) + coeffO*math.Cos(arg2)
	ce, se := math.Cos(obliquityJ2000), math.Sin(obliquityJ2000)

	want := vecmath.Matrix3{
		{1, -dpsi * ce, -dpsi * se},
		{dpsi * ce, 1, -deps},
		{dpsi * se, deps, 1},
	}
	if d := n.MaxAbsDiff(want); d > 1e-18 {
		t.Errorf("nutation matrix differs from first-order form by %g", d)
	}
	for i := 0; i < 3; i++ {
		if n[i][i] != 1 {
			t.Errorf("diagonal element %d = %v, want exactly 1", i, n[i][i])
		}
	}
}

func TestCoefficients(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"A", coeffA, 46.815 / 3600 * math.Pi / 180},
		{"D", coeffD, -0.0048 * math.Pi / 180},
		{"F", coeffF, 2306.2181 / 3600 * math.Pi / 180},
		{"M", coeffM, 0.000205 / 3600 * math.Pi / 180},
		{"O", coeffO, 0.0002 * math.Pi / 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-18 {
				t.Errorf("coeff%s = %.18e, want %.18e", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestNonFinitePropagates(t *testing.T) {
	e := rawEpoch{days: math.NaN(), centuries: 0.2, gmst: 1}
	if RotationMatrix(e).IsFinite() {
		t.Error("rotation matrix with NaN days should not be finite")
	}
	if NutationMatrix(e).IsFinite() {
		t.Error("nutation matrix with NaN days should not be finite")
	}

	inf := rawEpoch{days: 1, centuries: math.Inf(1), gmst: 1}
	if PrecessionMatrix(inf).IsFinite() {
		t.Error("precession matrix with infinite centuries should not be finite")
	}
}

func BenchmarkTransform(b *testing.B) {
	e := epoch.New(time.Date(2021, 12, 25, 4, 42, 42, 424000000, time.UTC))
	for i := 0; i < b.N; i++ {
		_ = NewTransform(e)
	}
}
