package colmap

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	_ "modernc.org/sqlite"
)

// databaseModels maps COLMAP's integer model ids (as stored in database.db)
// to model names.
var databaseModels = map[int]CameraModel{
	0:  ModelSimplePinhole,
	1:  ModelPinhole,
	2:  ModelSimpleRadial,
	3:  "RADIAL",
	4:  ModelOpenCV,
	5:  "OPENCV_FISHEYE",
	6:  "FULL_OPENCV",
	7:  "FOV",
	8:  "SIMPLE_RADIAL_FISHEYE",
	9:  "RADIAL_FISHEYE",
	10: "THIN_PRISM_FISHEYE",
}

// ModelFromDatabaseID returns the model name for a database.db model id.
// Unknown ids map to "UNKNOWN_<id>", which DeriveIntrinsics rejects.
func ModelFromDatabaseID(id int) CameraModel {
	if m, ok := databaseModels[id]; ok {
		return m
	}
	return CameraModel(fmt.Sprintf("UNKNOWN_%d", id))
}

// LoadCamerasFromDatabase reads the cameras table of a COLMAP database.db.
// params is a blob of little-endian float64 values.
func LoadCamerasFromDatabase(ctx context.Context, path string) (map[int]Camera, error) {
	// sql.Open would create a missing file.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// query_only is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("failed to set query_only: %w", err)
	}

	return queryCameras(ctx, db)
}

func queryCameras(ctx context.Context, db *sql.DB) (map[int]Camera, error) {
	rows, err := db.QueryContext(ctx, `SELECT camera_id, model, width, height, params FROM cameras ORDER BY camera_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	cameras := make(map[int]Camera)
	for rows.Next() {
		var (
			id, model, width, height int
			blob                     []byte
		)
		if err := rows.Scan(&id, &model, &width, &height, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan camera row: %w", err)
		}
		params, err := decodeParams(blob)
		if err != nil {
			return nil, fmt.Errorf("camera %d: %w", id, err)
		}
		cameras[id] = Camera{
			ID:     id,
			Model:  ModelFromDatabaseID(model),
			Width:  width,
			Height: height,
			Params: params,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cameras: %w", err)
	}
	return cameras, nil
}

func decodeParams(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("%w: params blob is %d bytes, not a multiple of 8", ErrMalformedRecord, len(blob))
	}
	params := make([]float64, len(blob)/8)
	for i := range params {
		params[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return params, nil
}

