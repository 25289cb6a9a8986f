package scene

import (
	"fmt"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/colmap2scene/internal/colmap"
	"github.com/banshee-data/colmap2scene/internal/monitoring"
	"github.com/banshee-data/colmap2scene/internal/pose"
)

func pinholeCameras() map[int]colmap.Camera {
	return map[int]colmap.Camera{
		1: {ID: 1, Model: colmap.ModelPinhole, Width: 1920, Height: 1080, Params: []float64{1000, 1100, 960, 540}},
		2: {ID: 2, Model: colmap.ModelSimplePinhole, Width: 1000, Height: 750, Params: []float64{1000, 500, 375}},
	}
}

func testImages(cameraID int, ids ...int) []colmap.Image {
	images := make([]colmap.Image, 0, len(ids))
	for i, id := range ids {
		images = append(images, colmap.Image{
			ID:       id,
			Q:        quat.Number{Real: 1},
			T:        r3.Vector{X: float64(i), Y: float64(-i), Z: 1},
			CameraID: cameraID,
			Name:     "IMG_" + string(rune('a'+i)) + ".jpg",
		})
	}
	return images
}

func TestBuild_PinholeFieldOfView(t *testing.T) {
	d, err := Build(pinholeCameras(), testImages(1, 1), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "PINHOLE", d.CameraModel)
	assert.Equal(t, 1000.0, d.FlX)
	assert.Equal(t, 1100.0, d.FlY)
	assert.Equal(t, 960.0, d.Cx)
	assert.Equal(t, 540.0, d.Cy)
	assert.Equal(t, 1920, d.W)
	assert.Equal(t, 1080, d.H)
	assert.InDelta(t, 2*math.Atan(0.96), d.CameraAngleX, 1e-12)
	assert.InDelta(t, 1.52999, d.CameraAngleX, 1e-4)
	assert.InDelta(t, 2*math.Atan(540.0/1100.0), d.CameraAngleY, 1e-12)
	assert.InDelta(t, 0.91270, d.CameraAngleY, 1e-4)
	assert.Equal(t, "sparse_pc.ply", d.PLYFilePath)
}

func TestBuild_SimplePinhole(t *testing.T) {
	d, err := Build(pinholeCameras(), testImages(2, 1), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1000.0, d.FlX)
	assert.Equal(t, 1000.0, d.FlY)
	assert.Equal(t, 500.0, d.Cx)
	assert.Equal(t, 375.0, d.Cy)
	assert.Equal(t, OutputCameraModel, d.CameraModel, "input model is normalised to PINHOLE")
}

func TestBuild_FramesKeepInputOrder(t *testing.T) {
	ids := []int{9, 3, 27, 1, 14}
	images := testImages(1, ids...)

	d, err := Build(pinholeCameras(), images, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, d.Frames, len(ids))

	for i, f := range d.Frames {
		assert.Equal(t, ids[i], f.ColmapImageID)
		assert.Equal(t, "images/"+images[i].Name, f.FilePath)

		want, err := pose.CameraToWorld(images[i].Q, images[i].T)
		require.NoError(t, err)
		assert.Equal(t, want, f.TransformMatrix)
	}
}

func TestBuild_FirstImageCameraIsGlobal(t *testing.T) {
	images := append(testImages(2, 1), testImages(1, 2)...)

	d, err := Build(pinholeCameras(), images, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1000, d.W, "intrinsics come from camera 2")
	assert.Equal(t, 1000.0, d.FlY)
	assert.Len(t, d.Frames, 2, "images from other cameras are still emitted")
}

func TestBuild_WarnsOnNonRigidPose(t *testing.T) {
	images := testImages(1, 1, 2)
	images[1].Q = quat.Number{Real: 1, Imag: 0.5} // det 1.25

	var logged []string
	defer monitoring.SetLogger(func(format string, v ...any) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})()

	d, err := Build(pinholeCameras(), images, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, d.Frames, 2)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "image 2 (IMG_b.jpg) pose is not rigid")
}

func TestBuild_CustomOptions(t *testing.T) {
	opts := Options{ImagesPrefix: "rgb", PLYFilePath: "points.ply"}

	d, err := Build(pinholeCameras(), testImages(1, 5), opts)
	require.NoError(t, err)
	assert.Equal(t, "rgb/IMG_a.jpg", d.Frames[0].FilePath)
	assert.Equal(t, "points.ply", d.PLYFilePath)
}

func TestBuild_FilePathIsCleaned(t *testing.T) {
	images := testImages(1, 1, 2, 3)
	images[0].Name = "./IMG_a.jpg"
	images[1].Name = "left/../IMG_b.jpg"
	images[2].Name = "left/IMG_c.jpg"

	d, err := Build(pinholeCameras(), images, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "images/IMG_a.jpg", d.Frames[0].FilePath)
	assert.Equal(t, "images/IMG_b.jpg", d.Frames[1].FilePath)
	assert.Equal(t, "images/left/IMG_c.jpg", d.Frames[2].FilePath)
}

func TestBuild_Errors(t *testing.T) {
	singular := testImages(1, 1, 2)
	singular[1].Q = quat.Number{Imag: 0.5, Jmag: 0.5}

	tests := []struct {
		name    string
		cameras map[int]colmap.Camera
		images  []colmap.Image
		wantErr error
	}{
		{"no images", pinholeCameras(), nil, ErrNoImages},
		{"unknown camera", pinholeCameras(), testImages(5, 1), ErrUnknownCamera},
		{
			"unsupported model",
			map[int]colmap.Camera{1: {ID: 1, Model: "FISHEYE", Width: 10, Height: 10, Params: []float64{1, 2, 3, 4}}},
			testImages(1, 1),
			colmap.ErrUnsupportedModel,
		},
		{
			"insufficient parameters",
			map[int]colmap.Camera{1: {ID: 1, Model: colmap.ModelPinhole, Width: 10, Height: 10, Params: []float64{1, 2}}},
			testImages(1, 1),
			colmap.ErrInsufficientParameters,
		},
		{"singular pose", pinholeCameras(), singular, pose.ErrNonInvertibleTransform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Build(tt.cameras, tt.images, DefaultOptions())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, d)
		})
	}
}

func TestFieldOfView(t *testing.T) {
	// Focal length equal to half the size gives a right angle.
	assert.InDelta(t, math.Pi/2, FieldOfView(1000, 500), 1e-12)
}
