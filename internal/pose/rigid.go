package pose

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RigidTolerance is the default tolerance used by IsRigid.
const RigidTolerance = 0.01

// IsRigid reports whether m is a proper rigid transform within tol: the 3x3
// rotation block has determinant 1 and the last row is [0 0 0 1].
func IsRigid(m Matrix, tol float64) bool {
	rot := mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
	if !scalar.EqualWithinAbs(mat.Det(rot), 1, tol) {
		return false
	}
	for j, want := range [4]float64{0, 0, 0, 1} {
		if !scalar.EqualWithinAbs(m[3][j], want, tol) {
			return false
		}
	}
	return true
}

// Decompose splits a rigid transform into its rotation quaternion and
// translation. The returned quaternion has a non-negative scalar part, so q and
// -q (the same rotation) decompose identically.
func Decompose(m Matrix) (quat.Number, r3.Vector) {
	r00, r01, r02 := m[0][0], m[0][1], m[0][2]
	r10, r11, r12 := m[1][0], m[1][1], m[1][2]
	r20, r21, r22 := m[2][0], m[2][1], m[2][2]

	var q quat.Number
	switch tr := r00 + r11 + r22; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{Real: 0.25 * s, Imag: (r21 - r12) / s, Jmag: (r02 - r20) / s, Kmag: (r10 - r01) / s}
	case r00 > r11 && r00 > r22:
		s := math.Sqrt(1+r00-r11-r22) * 2
		q = quat.Number{Real: (r21 - r12) / s, Imag: 0.25 * s, Jmag: (r01 + r10) / s, Kmag: (r02 + r20) / s}
	case r11 > r22:
		s := math.Sqrt(1+r11-r00-r22) * 2
		q = quat.Number{Real: (r02 - r20) / s, Imag: (r01 + r10) / s, Jmag: 0.25 * s, Kmag: (r12 + r21) / s}
	default:
		s := math.Sqrt(1+r22-r00-r11) * 2
		q = quat.Number{Real: (r10 - r01) / s, Imag: (r02 + r20) / s, Jmag: (r12 + r21) / s, Kmag: 0.25 * s}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q, m.Translation()
}

// Normalize returns q scaled to unit length. A zero quaternion is returned
// unchanged.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return q
	}
	return quat.Scale(1/n, q)
}
