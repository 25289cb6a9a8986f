package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/colmap2scene/internal/colmap"
	"github.com/banshee-data/colmap2scene/internal/config"
	"github.com/banshee-data/colmap2scene/internal/fsutil"
	"github.com/banshee-data/colmap2scene/internal/monitoring"
	"github.com/banshee-data/colmap2scene/internal/scene"
	"github.com/banshee-data/colmap2scene/internal/security"
)

// Options holds the parsed command line.
type Options struct {
	SparseDir    string
	OutputDir    string
	ConfigPath   string
	DatabasePath string
	Points       bool
	PlotPath     string
	Strict       bool
	ShowVersion  bool
}

// Result summarises a successful conversion.
type Result struct {
	OutputName string
	OutputPath string
	PLYPath    string
	Frames     int
}

// Run performs the conversion. Every input is read, the scene assembled and
// the trajectory plot rendered before anything is written, so a failed run
// leaves the output directory untouched.
func Run(ctx context.Context, fsys fsutil.FileSystem, opts Options) (*Result, error) {
	cfg := config.Empty()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}

	var (
		cameras map[int]colmap.Camera
		err     error
	)
	if opts.DatabasePath != "" {
		cameras, err = colmap.LoadCamerasFromDatabase(ctx, opts.DatabasePath)
	} else {
		cameras, err = colmap.LoadCameras(fsys, filepath.Join(opts.SparseDir, "cameras.txt"))
	}
	if err != nil {
		return nil, err
	}

	parseOpts := colmap.ImageParseOptions{Strict: opts.Strict || cfg.GetStrictRecords()}
	images, err := colmap.LoadImages(fsys, filepath.Join(opts.SparseDir, "images.txt"), parseOpts)
	if err != nil {
		return nil, err
	}

	desc, err := scene.Build(cameras, images, scene.Options{
		ImagesPrefix: cfg.GetImagesPrefix(),
		PLYFilePath:  cfg.GetPLYFilePath(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}

	res := &Result{
		OutputName: cfg.GetOutputName(),
		OutputPath: filepath.Join(opts.OutputDir, cfg.GetOutputName()),
		Frames:     len(desc.Frames),
	}

	var points []colmap.Point3D
	if opts.Points {
		if res.PLYPath, err = security.JoinWithinDirectory(opts.OutputDir, desc.PLYFilePath); err != nil {
			return nil, fmt.Errorf("invalid ply_file_path: %w", err)
		}
		if points, err = colmap.LoadPoints3D(fsys, filepath.Join(opts.SparseDir, "points3D.txt")); err != nil {
			return nil, err
		}
	}

	var plotData []byte
	if opts.PlotPath != "" {
		if plotData, err = scene.RenderTrajectory(desc, scene.TrajectoryFormat(opts.PlotPath)); err != nil {
			return nil, err
		}
	}

	if err := fsys.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := scene.Write(fsys, res.OutputPath, desc); err != nil {
		return nil, err
	}

	if opts.Points {
		if err := fsys.MkdirAll(filepath.Dir(res.PLYPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create point cloud directory: %w", err)
		}
		if err := scene.WritePLY(fsys, res.PLYPath, points); err != nil {
			return nil, err
		}
		monitoring.Logf("colmap2scene: wrote %d points to %s", len(points), res.PLYPath)
	}

	if opts.PlotPath != "" {
		if err := fsys.MkdirAll(filepath.Dir(opts.PlotPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create plot directory: %w", err)
		}
		if err := fsutil.WriteFileAtomic(fsys, opts.PlotPath, plotData, 0644); err != nil {
			return nil, err
		}
		monitoring.Logf("colmap2scene: wrote trajectory plot to %s", opts.PlotPath)
	}

	return res, nil
}
