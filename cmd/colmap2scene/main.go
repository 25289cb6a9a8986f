// Command colmap2scene converts a COLMAP sparse text reconstruction into a
// transforms.json scene description.
//
// Usage:
//
//	colmap2scene [flags] <path_to_sparse> <output_dir>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/colmap2scene/internal/fsutil"
	"github.com/banshee-data/colmap2scene/internal/version"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(1)
	}
	if opts.ShowVersion {
		fmt.Println(version.String("colmap2scene"))
		return
	}

	res, err := Run(context.Background(), fsutil.OSFileSystem{}, opts)
	if err != nil {
		log.Fatalf("colmap2scene: %v", err)
	}
	log.Printf("Saved %s (%d frames)", res.OutputName, res.Frames)
}

// parseFlags parses args into Options. Usage goes to stderr and a non-nil
// error is returned when the arguments are unusable.
func parseFlags(args []string, stderr io.Writer) (Options, error) {
	var opts Options

	fs := flag.NewFlagSet("colmap2scene", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "path to JSON config file")
	fs.StringVar(&opts.DatabasePath, "database", "", "read cameras from a COLMAP database.db instead of cameras.txt")
	fs.BoolVar(&opts.Points, "points", false, "export points3D.txt as a PLY next to transforms.json")
	fs.StringVar(&opts.PlotPath, "plot", "", "write a camera trajectory plot to this file (png, svg, pdf)")
	fs.BoolVar(&opts.Strict, "strict", false, "treat short image records as errors instead of skipping them")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: colmap2scene [flags] <path_to_sparse> <output_dir>\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.ShowVersion {
		return opts, nil
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return opts, fmt.Errorf("expected 2 arguments, got %d", fs.NArg())
	}
	opts.SparseDir = fs.Arg(0)
	opts.OutputDir = fs.Arg(1)
	return opts, nil
}
