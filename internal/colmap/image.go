package colmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/colmap2scene/internal/fsutil"
	"github.com/banshee-data/colmap2scene/internal/monitoring"
)

// minImageFields is the field count below which an images.txt data line is
// treated as malformed.
const minImageFields = 9

// Image is one registered image from images.txt: its world-to-camera pose,
// the camera that captured it and its file name.
type Image struct {
	ID       int
	Q        quat.Number // world-to-camera rotation (qw, qx, qy, qz), as stored
	T        r3.Vector   // world-to-camera translation
	CameraID int
	Name     string
}

// ImageParseOptions controls how ParseImages treats short data lines.
type ImageParseOptions struct {
	// Strict turns short data lines into ErrMalformedRecord instead of
	// skipping them.
	Strict bool
}

// ParseImages parses an images.txt body into records in file order.
//
// Each record occupies two lines: IMAGE_ID QW QX QY QZ TX TY TZ CAMERA_ID NAME,
// then a POINTS2D line that is never read. Blank and comment lines advance one
// line. A data line with fewer than 9 fields is skipped (advancing one line)
// unless opts.Strict is set.
func ParseImages(data []byte, opts ImageParseOptions) ([]Image, error) {
	lines := strings.Split(string(data), "\n")
	var images []Image

	for i := 0; i < len(lines); {
		lineNo := i + 1
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			i++
			continue
		}

		elems := strings.Fields(line)
		if len(elems) < minImageFields {
			if opts.Strict {
				return nil, malformed(lineNo, "image line has %d fields, want 10", len(elems))
			}
			monitoring.Logf("colmap: skipping image line %d: %d fields", lineNo, len(elems))
			i++
			continue
		}
		if len(elems) == minImageFields {
			return nil, malformed(lineNo, "image line has no file name")
		}

		img, err := parseImageRecord(elems)
		if err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}
		images = append(images, img)
		i += 2
	}
	return images, nil
}

func parseImageRecord(elems []string) (Image, error) {
	id, err := strconv.Atoi(elems[0])
	if err != nil {
		return Image{}, fmt.Errorf("%w: image id %q", ErrMalformedRecord, elems[0])
	}

	var v [7]float64
	for k := range v {
		v[k], err = strconv.ParseFloat(elems[k+1], 64)
		if err != nil {
			return Image{}, fmt.Errorf("%w: pose field %q", ErrMalformedRecord, elems[k+1])
		}
	}

	cameraID, err := strconv.Atoi(elems[8])
	if err != nil {
		return Image{}, fmt.Errorf("%w: camera id %q", ErrMalformedRecord, elems[8])
	}

	return Image{
		ID:       id,
		Q:        quat.Number{Real: v[0], Imag: v[1], Jmag: v[2], Kmag: v[3]},
		T:        r3.Vector{X: v[4], Y: v[5], Z: v[6]},
		CameraID: cameraID,
		Name:     elems[9],
	}, nil
}

// LoadImages reads and parses the image table at path.
func LoadImages(fsys fsutil.FileSystem, path string, opts ImageParseOptions) ([]Image, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image table: %w", err)
	}
	images, err := ParseImages(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return images, nil
}
