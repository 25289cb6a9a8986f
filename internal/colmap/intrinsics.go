package colmap

import "fmt"

// Intrinsics are undistorted pinhole parameters in pixels.
type Intrinsics struct {
	Fx, Fy float64
	Cx, Cy float64
}

// ParamCount returns the number of leading parameters the pinhole reduction
// of model needs, and false when model has none. OPENCV distortion terms are
// not required.
func ParamCount(model CameraModel) (int, bool) {
	switch model {
	case ModelSimplePinhole:
		return 3, true // f, cx, cy
	case ModelPinhole:
		return 4, true // fx, fy, cx, cy
	case ModelSimpleRadial:
		return 4, true // f, cx, cy, k
	case ModelOpenCV:
		return 4, true // fx, fy, cx, cy; k1, k2, p1, p2 optional
	default:
		return 0, false
	}
}

// DeriveIntrinsics reduces a COLMAP camera to (fx, fy, cx, cy). Distortion
// coefficients are dropped, never approximated: the output describes an
// undistorted pinhole camera.
func DeriveIntrinsics(model CameraModel, params []float64) (Intrinsics, error) {
	want, ok := ParamCount(model)
	if !ok {
		return Intrinsics{}, fmt.Errorf("%w: %q", ErrUnsupportedModel, string(model))
	}
	if len(params) < want {
		return Intrinsics{}, fmt.Errorf("%w: %s needs %d, got %d", ErrInsufficientParameters, model, want, len(params))
	}

	switch model {
	case ModelPinhole, ModelOpenCV:
		return Intrinsics{Fx: params[0], Fy: params[1], Cx: params[2], Cy: params[3]}, nil
	case ModelSimplePinhole, ModelSimpleRadial:
		return Intrinsics{Fx: params[0], Fy: params[0], Cx: params[1], Cy: params[2]}, nil
	}
	// ParamCount and the switch above must list the same models.
	panic(fmt.Sprintf("colmap: no reduction for model %s", model))
}
