package vecmath

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// NewMatrix3 builds a matrix from three row vectors.
func NewMatrix3(r0, r1, r2 Vector3) Matrix3 {
	return Matrix3{r0, r1, r2}
}

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Row returns row i as a vector.
func (m Matrix3) Row(i int) Vector3 {
	return Vector3(m[i])
}

// MulVec returns m · v.
func (m Matrix3) MulVec(v Vector3) Vector3 {
	return Vector3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Mul returns m · o.
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return out
}

// Transpose returns mᵗ. For a rotation matrix this is also its inverse.
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

// MaxAbsDiff returns the largest element-wise |m - o|.
func (m Matrix3) MaxAbsDiff(o Matrix3) float64 {
	var d float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d = math.Max(d, math.Abs(m[i][j]-o[i][j]))
		}
	}
	return d
}

// OrthogonalityError returns max|mᵗ·m - I|, which is zero for an exact
// rotation matrix.
func (m Matrix3) OrthogonalityError() float64 {
	return m.Transpose().Mul(m).MaxAbsDiff(Identity())
}

// Dense copies m into a gonum matrix.
func (m Matrix3) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// FromDense copies a 3x3 gonum matrix into a Matrix3.
// It panics if d is not 3x3.
func FromDense(d mat.Matrix) Matrix3 {
	r, c := d.Dims()
	if r != 3 || c != 3 {
		panic("vecmath: FromDense requires a 3x3 matrix")
	}
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = d.At(i, j)
		}
	}
	return out
}

// Orthonormalize returns the rotation closest to m in the Frobenius norm,
// i.e. the orthogonal polar factor U·Vᵗ of the SVD m = U·Σ·Vᵗ.
// If the factorization fails, m is returned unchanged.
func (m Matrix3) Orthonormalize() Matrix3 {
	var svd mat.SVD
	if ok := svd.Factorize(m.Dense(), mat.SVDFull); !ok {
		return m
	}
	var u, v, q mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	q.Mul(&u, v.T())
	return FromDense(&q)
}

// IsFinite reports whether every element is neither NaN nor ±Inf.
func (m Matrix3) IsFinite() bool {
	for _, row := range m {
		if !Vector3(row).IsFinite() {
			return false
		}
	}
	return true
}
