package pose

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
)

const tol = 1e-9

func assertMatrixInDelta(t *testing.T, want, got Matrix, delta float64) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, want[i][j], got[i][j], delta, "element [%d][%d]", i, j)
		}
	}
}

// assertSameRotation accepts q or -q, which encode the same rotation.
func assertSameRotation(t *testing.T, want, got quat.Number) {
	t.Helper()
	if want.Real < 0 {
		want = quat.Scale(-1, want)
	}
	if got.Real < 0 {
		got = quat.Scale(-1, got)
	}
	if math.Abs(want.Real) < tol {
		// Scalar part ~0: sign is ambiguous, align on the first non-zero imaginary part.
		wv := []float64{want.Imag, want.Jmag, want.Kmag}
		gv := []float64{got.Imag, got.Jmag, got.Kmag}
		for i := range wv {
			if math.Abs(wv[i]) > tol {
				if math.Signbit(wv[i]) != math.Signbit(gv[i]) {
					got = quat.Scale(-1, got)
				}
				break
			}
		}
	}
	assert.InDelta(t, want.Real, got.Real, tol)
	assert.InDelta(t, want.Imag, got.Imag, tol)
	assert.InDelta(t, want.Jmag, got.Jmag, tol)
	assert.InDelta(t, want.Kmag, got.Kmag, tol)
}

func TestCameraToWorld_IdentityPose(t *testing.T) {
	c2w, err := CameraToWorld(quat.Number{Real: 1}, r3.Vector{})
	require.NoError(t, err)
	assertMatrixInDelta(t, Identity(), c2w, tol)
}

func TestRotationMatrix_QuarterTurnAboutZ(t *testing.T) {
	h := math.Sqrt(0.5)
	r := RotationMatrix(quat.Number{Real: h, Kmag: h})

	want := [3][3]float64{
		{0, -1, 0},
		{1, 0, 0},
		{0, 0, 1},
	}
	for i := range want {
		for j := range want[i] {
			assert.InDelta(t, want[i][j], r[i][j], tol, "R[%d][%d]", i, j)
		}
	}
}

func TestCameraToWorld_PureTranslation(t *testing.T) {
	c2w, err := CameraToWorld(quat.Number{Real: 1}, r3.Vector{X: 1, Y: -2, Z: 3})
	require.NoError(t, err)

	want := Identity()
	want[0][3], want[1][3], want[2][3] = -1, 2, -3
	assertMatrixInDelta(t, want, c2w, tol)
	assert.InDelta(t, 0, c2w.Translation().Sub(r3.Vector{X: -1, Y: 2, Z: -3}).Norm(), tol)
}

func TestCameraToWorld_MatchesRigidInverse(t *testing.T) {
	q := Normalize(quat.Number{Real: 0.9, Imag: 0.1, Jmag: -0.3, Kmag: 0.2})
	tr := r3.Vector{X: 0.5, Y: 1.5, Z: -2}

	c2w, err := CameraToWorld(q, tr)
	require.NoError(t, err)

	// For a unit quaternion the full inverse equals [R^T, -R^T t].
	r := RotationMatrix(q)
	var want Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want[i][j] = r[j][i]
		}
		want[i][3] = -(r[0][i]*tr.X + r[1][i]*tr.Y + r[2][i]*tr.Z)
	}
	want[3][3] = 1
	assertMatrixInDelta(t, want, c2w, tol)
}

func TestCameraToWorld_RoundTrip(t *testing.T) {
	h := math.Sqrt(0.5)
	cases := []struct {
		name string
		q    quat.Number
		t    r3.Vector
	}{
		{"identity", quat.Number{Real: 1}, r3.Vector{}},
		{"general", Normalize(quat.Number{Real: 0.9, Imag: 0.1, Jmag: -0.3, Kmag: 0.2}), r3.Vector{X: 1, Y: 2, Z: 3}},
		{"negative trace", Normalize(quat.Number{Real: 0.1, Imag: 0.7, Jmag: 0.7, Kmag: 0.1}), r3.Vector{X: -4, Y: 0.25, Z: 9}},
		{"half turn about x", quat.Number{Imag: 1}, r3.Vector{X: 0, Y: 0, Z: -1}},
		{"half turn about z", quat.Number{Kmag: 1}, r3.Vector{X: 3, Y: 3, Z: 3}},
		{"quarter turn about y", quat.Number{Real: h, Jmag: h}, r3.Vector{X: -0.1, Y: 0.2, Z: -0.3}},
		{"negative scalar", Normalize(quat.Number{Real: -0.5, Imag: 0.5, Jmag: 0.5, Kmag: -0.5}), r3.Vector{X: 10, Y: -10, Z: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c2w, err := CameraToWorld(tc.q, tc.t)
			require.NoError(t, err)
			assert.True(t, IsRigid(c2w, RigidTolerance), "camera-to-world should be rigid")

			w2c, err := c2w.Inverse()
			require.NoError(t, err)
			assertMatrixInDelta(t, WorldToCamera(tc.q, tc.t), w2c, tol)

			gotQ, gotT := Decompose(w2c)
			assertSameRotation(t, tc.q, gotQ)
			assert.InDelta(t, tc.t.X, gotT.X, tol)
			assert.InDelta(t, tc.t.Y, gotT.Y, tol)
			assert.InDelta(t, tc.t.Z, gotT.Z, tol)
		})
	}
}

func TestCameraToWorld_ComposesToIdentity(t *testing.T) {
	q := Normalize(quat.Number{Real: 0.3, Imag: -0.2, Jmag: 0.6, Kmag: 0.1})
	tr := r3.Vector{X: 7, Y: -1, Z: 0.5}

	c2w, err := CameraToWorld(q, tr)
	require.NoError(t, err)
	assertMatrixInDelta(t, Identity(), WorldToCamera(q, tr).Mul(c2w), tol)
}

func TestCameraToWorld_Singular(t *testing.T) {
	// Rows 0 and 1 of the rotation block coincide and row 2 is zero.
	q := quat.Number{Imag: 0.5, Jmag: 0.5}

	_, err := CameraToWorld(q, r3.Vector{X: 1, Y: 1, Z: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonInvertibleTransform), "got %v", err)
}

func TestCameraToWorld_NaNInput(t *testing.T) {
	_, err := CameraToWorld(quat.Number{Real: math.NaN()}, r3.Vector{})
	assert.ErrorIs(t, err, ErrNonInvertibleTransform)
}

func TestCameraToWorld_DoesNotAlias(t *testing.T) {
	q := quat.Number{Real: 1}
	a, err := CameraToWorld(q, r3.Vector{X: 1})
	require.NoError(t, err)
	b, err := CameraToWorld(q, r3.Vector{X: 1})
	require.NoError(t, err)

	a[0][3] = 42
	assert.InDelta(t, -1.0, b[0][3], tol)
}

func TestIsRigid(t *testing.T) {
	assert.True(t, IsRigid(Identity(), RigidTolerance))

	scaled := Identity()
	scaled[0][0], scaled[1][1], scaled[2][2] = 2, 2, 2
	assert.False(t, IsRigid(scaled, RigidTolerance), "det = 8 is not rigid")

	badRow := Identity()
	badRow[3][0] = 0.5
	assert.False(t, IsRigid(badRow, RigidTolerance))

	// A half turn whose quaternion has length 1.001 gives det ~1.008.
	drift := quat.Number{Imag: 1.001}
	assert.False(t, IsRigid(WorldToCamera(drift, r3.Vector{}), 0.001))
}

func TestNormalize(t *testing.T) {
	q := Normalize(quat.Number{Real: 2})
	assert.Equal(t, quat.Number{Real: 1}, q)
	assert.Equal(t, quat.Number{}, Normalize(quat.Number{}))
}
