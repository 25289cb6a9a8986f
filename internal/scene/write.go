package scene

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/colmap2scene/internal/colmap"
	"github.com/banshee-data/colmap2scene/internal/fsutil"
)

// Encode renders d as JSON indented by two spaces.
func Encode(d *Description) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode scene: %w", err)
	}
	return data, nil
}

// Write encodes d in full and then replaces path atomically. On any error the
// file at path is left untouched.
func Write(fsys fsutil.FileSystem, path string, d *Description) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(fsys, path, data, 0644)
}

// EncodePLY renders points as an ASCII PLY with position and color.
func EncodePLY(points []colmap.Point3D) []byte {
	var b bytes.Buffer
	b.WriteString("ply\n")
	b.WriteString("format ascii 1.0\n")
	fmt.Fprintf(&b, "element vertex %d\n", len(points))
	b.WriteString("property float x\nproperty float y\nproperty float z\n")
	b.WriteString("property uchar red\nproperty uchar green\nproperty uchar blue\n")
	b.WriteString("end_header\n")
	for _, p := range points {
		fmt.Fprintf(&b, "%g %g %g %d %d %d\n", p.Position.X, p.Position.Y, p.Position.Z, p.R, p.G, p.B)
	}
	return b.Bytes()
}

// WritePLY writes the sparse point cloud to path atomically.
func WritePLY(fsys fsutil.FileSystem, path string, points []colmap.Point3D) error {
	return fsutil.WriteFileAtomic(fsys, path, EncodePLY(points), 0644)
}
