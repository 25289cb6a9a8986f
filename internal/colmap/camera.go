package colmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/colmap2scene/internal/fsutil"
)

// CameraModel is a COLMAP camera model name as written in cameras.txt.
type CameraModel string

// Camera models with a pinhole reduction.
const (
	ModelSimplePinhole CameraModel = "SIMPLE_PINHOLE"
	ModelPinhole       CameraModel = "PINHOLE"
	ModelSimpleRadial  CameraModel = "SIMPLE_RADIAL"
	ModelOpenCV        CameraModel = "OPENCV"
)

// Camera is one row of the camera table.
type Camera struct {
	ID     int
	Model  CameraModel
	Width  int
	Height int
	Params []float64
}

// Intrinsics derives the pinhole intrinsics of c.
func (c Camera) Intrinsics() (Intrinsics, error) {
	in, err := DeriveIntrinsics(c.Model, c.Params)
	if err != nil {
		return Intrinsics{}, fmt.Errorf("camera %d: %w", c.ID, err)
	}
	return in, nil
}

// ParseCameras parses a cameras.txt body into a map keyed by camera ID.
// Blank lines and lines starting with '#' are skipped. Each data line is
// CAMERA_ID MODEL WIDTH HEIGHT PARAMS[]. A repeated ID replaces the earlier row.
func ParseCameras(data []byte) (map[int]Camera, error) {
	cameras := make(map[int]Camera)
	for i, raw := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		elems := strings.Fields(line)
		if len(elems) < 4 {
			return nil, malformed(lineNo, "camera line has %d fields, want at least 4", len(elems))
		}

		id, err := strconv.Atoi(elems[0])
		if err != nil {
			return nil, malformed(lineNo, "camera id %q", elems[0])
		}
		width, err := strconv.Atoi(elems[2])
		if err != nil {
			return nil, malformed(lineNo, "width %q", elems[2])
		}
		height, err := strconv.Atoi(elems[3])
		if err != nil {
			return nil, malformed(lineNo, "height %q", elems[3])
		}

		params := make([]float64, 0, len(elems)-4)
		for _, tok := range elems[4:] {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, malformed(lineNo, "camera parameter %q", tok)
			}
			params = append(params, v)
		}

		cameras[id] = Camera{
			ID:     id,
			Model:  CameraModel(elems[1]),
			Width:  width,
			Height: height,
			Params: params,
		}
	}
	return cameras, nil
}

// LoadCameras reads and parses the camera table at path.
func LoadCameras(fsys fsutil.FileSystem, path string) (map[int]Camera, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read camera table: %w", err)
	}
	cameras, err := ParseCameras(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cameras, nil
}
