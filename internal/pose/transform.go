// Package pose converts COLMAP world-to-camera poses into the camera-to-world
// homogeneous matrices consumed by rendering pipelines.
//
// Matrices are row-major 4x4 arrays: m[row][col]. The rotation formula follows
// the Hamilton convention with the scalar part first (qw, qx, qy, qz), which is
// how COLMAP writes images.txt.
package pose

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// ErrNonInvertibleTransform is returned when a world-to-camera matrix is
// singular or too ill-conditioned to invert.
var ErrNonInvertibleTransform = errors.New("transform is not invertible")

// Matrix is a row-major 4x4 homogeneous transform. It marshals to JSON as a
// nested array, which is the shape transforms.json expects.
type Matrix [4][4]float64

// Identity returns the 4x4 identity matrix.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// RotationMatrix converts q into a 3x3 rotation matrix. q is used as given; a
// quaternion that is not unit length yields a scaled, non-orthonormal matrix.
func RotationMatrix(q quat.Number) [3][3]float64 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [3][3]float64{
		{1 - 2*y*y - 2*z*z, 2*x*y - 2*z*w, 2*x*z + 2*y*w},
		{2*x*y + 2*z*w, 1 - 2*x*x - 2*z*z, 2*y*z - 2*x*w},
		{2*x*z - 2*y*w, 2*y*z + 2*x*w, 1 - 2*x*x - 2*y*y},
	}
}

// WorldToCamera assembles [[R, t], [0, 0, 0, 1]] from a rotation quaternion
// and a translation.
func WorldToCamera(q quat.Number, t r3.Vector) Matrix {
	r := RotationMatrix(q)
	return Matrix{
		{r[0][0], r[0][1], r[0][2], t.X},
		{r[1][0], r[1][1], r[1][2], t.Y},
		{r[2][0], r[2][1], r[2][2], t.Z},
		{0, 0, 0, 1},
	}
}

// CameraToWorld returns the inverse of the world-to-camera pose (q, t).
//
// The full 4x4 matrix is inverted rather than using the rigid shortcut
// [R^T, -R^T t], so quaternions with slight normalisation drift still yield the
// exact inverse of what COLMAP stored.
func CameraToWorld(q quat.Number, t r3.Vector) (Matrix, error) {
	inv, err := WorldToCamera(q, t).Inverse()
	if err != nil {
		return Matrix{}, fmt.Errorf("invert pose q=%v t=%v: %w", q, t, err)
	}
	return inv, nil
}

// Inverse returns a newly allocated inverse of m.
func (m Matrix) Inverse() (Matrix, error) {
	if !m.IsFinite() {
		return Matrix{}, fmt.Errorf("%w: non-finite input", ErrNonInvertibleTransform)
	}
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Matrix{}, fmt.Errorf("%w: %v", ErrNonInvertibleTransform, err)
	}
	out := fromDense(&inv)
	if !out.IsFinite() {
		return Matrix{}, fmt.Errorf("%w: non-finite result", ErrNonInvertibleTransform)
	}
	return out, nil
}

// Mul returns m * o.
func (m Matrix) Mul(o Matrix) Matrix {
	var prod mat.Dense
	prod.Mul(m.dense(), o.dense())
	return fromDense(&prod)
}

// Translation returns the translation column of m. For a camera-to-world
// matrix this is the camera centre in world coordinates.
func (m Matrix) Translation() r3.Vector {
	return r3.Vector{X: m[0][3], Y: m[1][3], Z: m[2][3]}
}

// IsFinite reports whether every element of m is a finite number.
func (m Matrix) IsFinite() bool {
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// dense copies m into a gonum matrix.
func (m Matrix) dense() *mat.Dense {
	data := make([]float64, 0, 16)
	for _, row := range m {
		data = append(data, row[:]...)
	}
	return mat.NewDense(4, 4, data)
}

func fromDense(d *mat.Dense) Matrix {
	var m Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}
