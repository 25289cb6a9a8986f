package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/colmap2scene/internal/security"
)

// Defaults applied by the Get* methods when a field is absent.
const (
	DefaultImagesPrefix = "images/"
	DefaultPLYFilePath  = "sparse_pc.ply"
	DefaultOutputName   = "transforms.json"
	DefaultPadWidth     = 6
	DefaultImagePrefix  = "IMG_"
	DefaultImageExt     = ".jpg"
)

// maxPadWidth keeps padded numbers within an int64.
const maxPadWidth = 18

// Config holds the settings shared by colmap2scene and fix-names. Every field
// is optional; omitted fields fall back to the defaults above, so partial
// files are safe.
type Config struct {
	// Scene description
	ImagesPrefix  *string `json:"images_prefix,omitempty"`
	PLYFilePath   *string `json:"ply_file_path,omitempty"`
	OutputName    *string `json:"output_name,omitempty"`
	StrictRecords *bool   `json:"strict_records,omitempty"`

	// Image renaming
	PadWidth    *int    `json:"pad_width,omitempty"`
	ImagePrefix *string `json:"image_prefix,omitempty"`
	ImageExt    *string `json:"image_ext,omitempty"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Defaults returns a Config with every field set to its default.
func Defaults() *Config {
	return &Config{
		ImagesPrefix:  ptrString(DefaultImagesPrefix),
		PLYFilePath:   ptrString(DefaultPLYFilePath),
		OutputName:    ptrString(DefaultOutputName),
		StrictRecords: ptrBool(false),
		PadWidth:      ptrInt(DefaultPadWidth),
		ImagePrefix:   ptrString(DefaultImagePrefix),
		ImageExt:      ptrString(DefaultImageExt),
	}
}

// Load loads a Config from a JSON file.
// The file must have a .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.PLYFilePath != nil && *c.PLYFilePath == "" {
		return fmt.Errorf("ply_file_path must not be empty")
	}

	if c.OutputName != nil {
		if err := security.ValidateFileName(*c.OutputName); err != nil {
			return fmt.Errorf("output_name: %w", err)
		}
	}

	if c.PadWidth != nil {
		if *c.PadWidth < 1 || *c.PadWidth > maxPadWidth {
			return fmt.Errorf("pad_width must be between 1 and %d, got %d", maxPadWidth, *c.PadWidth)
		}
	}

	if c.ImageExt != nil && !strings.HasPrefix(*c.ImageExt, ".") {
		return fmt.Errorf("image_ext must start with '.', got %q", *c.ImageExt)
	}

	return nil
}

// GetImagesPrefix returns the images_prefix value or the default.
func (c *Config) GetImagesPrefix() string {
	if c.ImagesPrefix == nil {
		return DefaultImagesPrefix
	}
	return *c.ImagesPrefix
}

// GetPLYFilePath returns the ply_file_path value or the default.
func (c *Config) GetPLYFilePath() string {
	if c.PLYFilePath == nil {
		return DefaultPLYFilePath
	}
	return *c.PLYFilePath
}

// GetOutputName returns the output_name value or the default.
func (c *Config) GetOutputName() string {
	if c.OutputName == nil {
		return DefaultOutputName
	}
	return *c.OutputName
}

// GetStrictRecords returns the strict_records value or the default.
func (c *Config) GetStrictRecords() bool {
	if c.StrictRecords == nil {
		return false // default: skip short image lines
	}
	return *c.StrictRecords
}

// GetPadWidth returns the pad_width value or the default.
func (c *Config) GetPadWidth() int {
	if c.PadWidth == nil {
		return DefaultPadWidth
	}
	return *c.PadWidth
}

// GetImagePrefix returns the image_prefix value or the default.
func (c *Config) GetImagePrefix() string {
	if c.ImagePrefix == nil {
		return DefaultImagePrefix
	}
	return *c.ImagePrefix
}

// GetImageExt returns the image_ext value or the default.
func (c *Config) GetImageExt() string {
	if c.ImageExt == nil {
		return DefaultImageExt
	}
	return *c.ImageExt
}
