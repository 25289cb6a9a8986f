package colmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/colmap2scene/internal/fsutil"
)

// Point3D is one triangulated point from points3D.txt. The track is not kept.
type Point3D struct {
	ID       int64
	Position r3.Vector
	R, G, B  uint8
	Error    float64
}

// ParsePoints3D parses a points3D.txt body. Each data line is
// POINT3D_ID X Y Z R G B ERROR TRACK[].
func ParsePoints3D(data []byte) ([]Point3D, error) {
	var points []Point3D
	for i, raw := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		elems := strings.Fields(line)
		if len(elems) < 8 {
			return nil, malformed(lineNo, "point line has %d fields, want at least 8", len(elems))
		}

		id, err := strconv.ParseInt(elems[0], 10, 64)
		if err != nil {
			return nil, malformed(lineNo, "point id %q", elems[0])
		}
		var xyz [3]float64
		for k := range xyz {
			if xyz[k], err = strconv.ParseFloat(elems[k+1], 64); err != nil {
				return nil, malformed(lineNo, "coordinate %q", elems[k+1])
			}
		}
		var rgb [3]uint8
		for k := range rgb {
			c, err := strconv.ParseUint(elems[k+4], 10, 8)
			if err != nil {
				return nil, malformed(lineNo, "color %q", elems[k+4])
			}
			rgb[k] = uint8(c)
		}
		reprojErr, err := strconv.ParseFloat(elems[7], 64)
		if err != nil {
			return nil, malformed(lineNo, "error %q", elems[7])
		}

		points = append(points, Point3D{
			ID:       id,
			Position: r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]},
			R:        rgb[0],
			G:        rgb[1],
			B:        rgb[2],
			Error:    reprojErr,
		})
	}
	return points, nil
}

// LoadPoints3D reads and parses the point table at path.
func LoadPoints3D(fsys fsutil.FileSystem, path string) ([]Point3D, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read point table: %w", err)
	}
	points, err := ParsePoints3D(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}
