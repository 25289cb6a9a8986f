// Command fix-names zero-pads numbered image file names (IMG_1.jpg becomes
// IMG_000001.jpg) in an images directory and updates the matching NAME
// column of a COLMAP images.txt.
package main

import (
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
		fmt.Println(version.String("fix-names"))
		return
	}

	res, err := Run(fsutil.OSFileSystem{}, opts, os.Stdout)
	if err != nil {
		log.Fatalf("fix-names: %v", err)
	}
	if opts.DryRun {
		log.Printf("dry run: %d files and %d image table lines would change", len(res.Renamed), res.TableLines)
		return
	}
	fmt.Println("Image renaming and images.txt update complete.")
}

func parseFlags(args []string, stderr io.Writer) (Options, error) {
	var opts Options

	fs := flag.NewFlagSet("fix-names", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ImagesDir, "images", "images", "directory holding the image files")
	fs.StringVar(&opts.ImagesTxt, "images-txt", "images.txt", "COLMAP images.txt to update")
	fs.IntVar(&opts.PadWidth, "pad", 0, "digits in the padded number (default from config, else 6)")
	fs.StringVar(&opts.ConfigPath, "config", "", "path to JSON config file")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "report changes without touching any file")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}
