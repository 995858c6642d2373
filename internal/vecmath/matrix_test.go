package vecmath

import (
	"math"
	"testing"
)

func rotZ(a float64) Matrix3 {
	s, c := math.Sincos(a)
	return Matrix3{{c, s, 0}, {-s, c, 0}, {0, 0, 1}}
}

func TestMulVec(t *testing.T) {
	m := Matrix3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	got := m.MulVec(NewVector3(1, 0, -1))
	want := NewVector3(-2, -2, -2)
	if got != want {
		t.Errorf("MulVec = %v, want %v", got, want)
	}
}

func TestMulAndTranspose(t *testing.T) {
	a := Matrix3{{1, 2, 0}, {0, 1, 3}, {4, 0, 1}}
	b := Matrix3{{2, 0, 1}, {1, 1, 0}, {0, 5, 1}}

	// (a·b)ᵗ = bᵗ·aᵗ
	lhs := a.Mul(b).Transpose()
	rhs := b.Transpose().Mul(a.Transpose())
	if d := lhs.MaxAbsDiff(rhs); d != 0 {
		t.Errorf("(ab)ᵗ differs from bᵗaᵗ by %g", d)
	}

	if got := a.Mul(Identity()); got != a {
		t.Errorf("a·I = %v, want %v", got, a)
	}
	if got := a.Transpose().Transpose(); got != a {
		t.Errorf("double transpose = %v, want %v", got, a)
	}
}

func TestNewMatrix3Rows(t *testing.T) {
	m := NewMatrix3(NewVector3(1, 2, 3), NewVector3(4, 5, 6), NewVector3(7, 8, 9))
	if m.Row(1) != NewVector3(4, 5, 6) {
		t.Errorf("Row(1) = %v", m.Row(1))
	}
	if m[2][0] != 7 {
		t.Errorf("m[2][0] = %v, want 7", m[2][0])
	}
}

func TestOrthogonalityError(t *testing.T) {
	if e := rotZ(1.234).OrthogonalityError(); e > 1e-15 {
		t.Errorf("rotation orthogonality error = %g", e)
	}
	skew := Matrix3{{1, 0.1, 0}, {0, 1, 0}, {0, 0, 1}}
	if e := skew.OrthogonalityError(); e < 0.05 {
		t.Errorf("sheared matrix orthogonality error = %g, want >= 0.05", e)
	}
}

func TestOrthonormalize(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix3
	}{
		{"identity", Identity()},
		{"rotation", rotZ(0.7)},
		{"perturbed rotation", rotZ(0.3).Mul(Matrix3{{1, -1e-4, -2e-4}, {1e-4, 1, -3e-4}, {2e-4, 3e-4, 1}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.m.Orthonormalize()
			if e := q.OrthogonalityError(); e > 1e-12 {
				t.Errorf("orthogonality error after Orthonormalize = %g", e)
			}
			// The polar factor of a near-rotation stays close to it.
			if d := q.MaxAbsDiff(tt.m); d > 1e-6 {
				t.Errorf("orthonormalized matrix moved by %g", d)
			}
		})
	}
}

func TestDenseRoundTrip(t *testing.T) {
	m := Matrix3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	if got := FromDense(m.Dense()); got != m {
		t.Errorf("FromDense(Dense()) = %v, want %v", got, m)
	}
}

func TestVectorOps(t *testing.T) {
	a := NewVector3(3, 4, 12)
	if n := a.Norm(); n != 13 {
		t.Errorf("Norm = %v, want 13", n)
	}
	if d := Distance(a, a.Scale(2)); d != 13 {
		t.Errorf("Distance = %v, want 13", d)
	}
	if got := a.Add(a).Sub(a); got != a {
		t.Errorf("a+a-a = %v", got)
	}
	if a.X() != 3 || a.Y() != 4 || a.Z() != 12 {
		t.Errorf("accessors returned %v %v %v", a.X(), a.Y(), a.Z())
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vector3
		want bool
	}{
		{"finite", NewVector3(1, 2, 3), true},
		{"NaN", NewVector3(math.NaN(), 0, 0), false},
		{"Inf", NewVector3(0, math.Inf(-1), 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}

	m := Identity()
	m[1][2] = math.NaN()
	if m.IsFinite() {
		t.Error("matrix with NaN reported finite")
	}
}
