package main

import (
	"fmt"
	"io"

	"github.com/banshee-data/colmap2scene/internal/config"
	"github.com/banshee-data/colmap2scene/internal/fsutil"
	"github.com/banshee-data/colmap2scene/internal/rename"
)

// Options holds the parsed command line.
type Options struct {
	ImagesDir   string
	ImagesTxt   string
	PadWidth    int // 0 means use config
	ConfigPath  string
	DryRun      bool
	ShowVersion bool
}

// Result reports what changed.
type Result struct {
	Renamed    []rename.Rename
	TableLines int
}

// Run renames the images and then rewrites the image table, printing each
// rename to out as "old -> new".
func Run(fsys fsutil.FileSystem, opts Options, out io.Writer) (*Result, error) {
	cfg := config.Empty()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if opts.PadWidth != 0 {
		cfg.PadWidth = &opts.PadWidth
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	pattern, err := rename.NewPattern(cfg.GetImagePrefix(), cfg.GetImageExt(), cfg.GetPadWidth())
	if err != nil {
		return nil, err
	}
	r := &rename.Renamer{FS: fsys, Pattern: pattern, DryRun: opts.DryRun}

	renamed, err := r.RenameImages(opts.ImagesDir)
	if err != nil {
		return nil, err
	}
	for _, mv := range renamed {
		fmt.Fprintln(out, mv)
	}

	lines, err := r.RewriteImageTable(opts.ImagesTxt)
	if err != nil {
		return nil, err
	}

	return &Result{Renamed: renamed, TableLines: lines}, nil
}
