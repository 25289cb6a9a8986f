// Package scene assembles a Nerfstudio-style transforms.json scene
// description from a parsed COLMAP reconstruction and writes it, together with
// optional side files (sparse point cloud, trajectory plot).
package scene

import (
	"errors"
	"fmt"
	"math"
	"path"

	"github.com/banshee-data/colmap2scene/internal/colmap"
	"github.com/banshee-data/colmap2scene/internal/monitoring"
	"github.com/banshee-data/colmap2scene/internal/pose"
)

// OutputCameraModel is written for every scene: distortion is always dropped.
const OutputCameraModel = "PINHOLE"

// Defaults for Options.
const (
	DefaultImagesPrefix = "images/"
	DefaultPLYFilePath  = "sparse_pc.ply"
)

var (
	// ErrNoImages is returned when the image table has no records.
	ErrNoImages = errors.New("no images in reconstruction")

	// ErrUnknownCamera is returned when the first image references a camera
	// that is not in the camera table.
	ErrUnknownCamera = errors.New("unknown camera")
)

// Frame is one posed image in the scene.
type Frame struct {
	FilePath        string      `json:"file_path"`
	TransformMatrix pose.Matrix `json:"transform_matrix"` // camera-to-world
	ColmapImageID   int         `json:"colmap_im_id"`
}

// Description is the transforms.json document. Field order is the order the
// keys are written in.
type Description struct {
	CameraModel  string  `json:"camera_model"`
	FlX          float64 `json:"fl_x"`
	FlY          float64 `json:"fl_y"`
	Cx           float64 `json:"cx"`
	Cy           float64 `json:"cy"`
	W            int     `json:"w"`
	H            int     `json:"h"`
	CameraAngleX float64 `json:"camera_angle_x"`
	CameraAngleY float64 `json:"camera_angle_y"`
	Frames       []Frame `json:"frames"`
	PLYFilePath  string  `json:"ply_file_path"`
}

// Options controls the paths recorded in the description.
type Options struct {
	// ImagesPrefix is joined with each image name to form Frame.FilePath.
	ImagesPrefix string
	// PLYFilePath is the point cloud side file referenced by the scene.
	PLYFilePath string
}

// DefaultOptions returns the options used by the converter when no config
// file overrides them.
func DefaultOptions() Options {
	return Options{
		ImagesPrefix: DefaultImagesPrefix,
		PLYFilePath:  DefaultPLYFilePath,
	}
}

// FieldOfView returns the angle in radians subtended by size pixels at focal
// length f pixels.
func FieldOfView(size int, f float64) float64 {
	return 2 * math.Atan(0.5*float64(size)/f)
}

// Build assembles the scene description.
//
// Intrinsics come from the camera of the first image only. The scene format
// carries a single global intrinsic block, so images captured by other cameras
// are still emitted but described by the first camera's intrinsics.
//
// Frames are emitted in image-table order. If any pose cannot be inverted,
// Build returns an error and no description.
func Build(cameras map[int]colmap.Camera, images []colmap.Image, opts Options) (*Description, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	first := images[0]
	cam, ok := cameras[first.CameraID]
	if !ok {
		return nil, fmt.Errorf("%w: camera %d referenced by image %d", ErrUnknownCamera, first.CameraID, first.ID)
	}
	in, err := cam.Intrinsics()
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, 0, len(images))
	otherCameras := 0
	for _, img := range images {
		c2w, err := pose.CameraToWorld(img.Q, img.T)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", img.ID, img.Name, err)
		}
		if !pose.IsRigid(c2w, pose.RigidTolerance) {
			monitoring.Logf("scene: image %d (%s) pose is not rigid; quaternion may not be normalised", img.ID, img.Name)
		}
		if img.CameraID != first.CameraID {
			otherCameras++
		}
		frames = append(frames, Frame{
			FilePath:        path.Join(opts.ImagesPrefix, img.Name),
			TransformMatrix: c2w,
			ColmapImageID:   img.ID,
		})
	}
	if otherCameras > 0 {
		monitoring.Logf("scene: %d images use a camera other than %d; all frames share camera %d intrinsics", otherCameras, first.CameraID, first.CameraID)
	}

	return &Description{
		CameraModel:  OutputCameraModel,
		FlX:          in.Fx,
		FlY:          in.Fy,
		Cx:           in.Cx,
		Cy:           in.Cy,
		W:            cam.Width,
		H:            cam.Height,
		CameraAngleX: FieldOfView(cam.Width, in.Fx),
		CameraAngleY: FieldOfView(cam.Height, in.Fy),
		Frames:       frames,
		PLYFilePath:  opts.PLYFilePath,
	}, nil
}
