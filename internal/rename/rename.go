// Package rename canonicalises image file names of the form IMG_<n>.jpg to a
// fixed-width zero-padded number, and keeps the NAME column of a COLMAP
// images.txt in step with the files on disk.
package rename

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/banshee-data/colmap2scene/internal/fsutil"
	"github.com/banshee-data/colmap2scene/internal/monitoring"
	"github.com/banshee-data/colmap2scene/internal/security"
)

// ErrTargetExists is returned when a canonical name is already taken, either by
// an existing file or by another file mapping to the same number.
var ErrTargetExists = errors.New("rename target already exists")

// Pattern describes the numbered file names being canonicalised.
type Pattern struct {
	Prefix   string // e.g. "IMG_"
	Ext      string // e.g. ".jpg"
	PadWidth int

	re *regexp.Regexp
}

// NewPattern compiles a Pattern. The whole name must match: prefix, one or
// more ASCII digits, extension.
func NewPattern(prefix, ext string, padWidth int) (*Pattern, error) {
	if padWidth < 1 {
		return nil, fmt.Errorf("pad width must be positive, got %d", padWidth)
	}
	re, err := regexp.Compile("^" + regexp.QuoteMeta(prefix) + `([0-9]+)` + regexp.QuoteMeta(ext) + "$")
	if err != nil {
		return nil, fmt.Errorf("failed to compile name pattern: %w", err)
	}
	return &Pattern{Prefix: prefix, Ext: ext, PadWidth: padWidth, re: re}, nil
}

// ID extracts the image number from name.
func (p *Pattern) ID(name string) (int64, bool) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Canonical formats id as a padded file name.
func (p *Pattern) Canonical(id int64) string {
	return fmt.Sprintf("%s%0*d%s", p.Prefix, p.PadWidth, id, p.Ext)
}

// CanonicalName returns the canonical form of name and whether name matches
// the pattern at all.
func (p *Pattern) CanonicalName(name string) (string, bool) {
	id, ok := p.ID(name)
	if !ok {
		return name, false
	}
	return p.Canonical(id), true
}

// Rename is one planned or performed file rename within a directory.
type Rename struct {
	From string
	To   string
}

func (r Rename) String() string { return r.From + " -> " + r.To }

// Renamer applies a Pattern to a directory and to an image table.
type Renamer struct {
	FS      fsutil.FileSystem
	Pattern *Pattern
	// DryRun plans every change and reports it without touching any file.
	DryRun bool
}

// Plan lists the renames needed in dir, in name order. It fails with
// ErrTargetExists, before anything is renamed, if two files map to the same
// canonical name or a canonical name is already taken.
func (r *Renamer) Plan(dir string) ([]Rename, error) {
	names, err := r.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var plan []Rename
	claimed := make(map[string]string)
	for _, name := range names {
		target, ok := r.Pattern.CanonicalName(name)
		if !ok {
			continue
		}
		if prev, dup := claimed[target]; dup {
			return nil, fmt.Errorf("%w: %s and %s both map to %s", ErrTargetExists, prev, name, target)
		}
		claimed[target] = name
		if target == name {
			continue
		}
		// A canonical name maps to itself, so an existing target never moves.
		if present[target] {
			return nil, fmt.Errorf("%w: %s -> %s", ErrTargetExists, name, target)
		}
		plan = append(plan, Rename{From: name, To: target})
	}
	return plan, nil
}

// RenameImages renames every matching file in dir to its canonical name and
// returns what was (or, with DryRun, would be) renamed.
func (r *Renamer) RenameImages(dir string) ([]Rename, error) {
	plan, err := r.Plan(dir)
	if err != nil {
		return nil, err
	}

	for _, mv := range plan {
		from, err := security.JoinWithinDirectory(dir, mv.From)
		if err != nil {
			return nil, err
		}
		if err := security.ValidateFileName(mv.To); err != nil {
			return nil, err
		}
		to, err := security.JoinWithinDirectory(dir, mv.To)
		if err != nil {
			return nil, err
		}
		if r.DryRun {
			continue
		}
		if err := r.FS.Rename(from, to); err != nil {
			return nil, fmt.Errorf("failed to rename %s: %w", mv, err)
		}
	}
	return plan, nil
}

// RewriteImageTable canonicalises the NAME column of the images.txt at path
// and returns the number of lines changed. The file is replaced atomically and
// only when something changed.
func (r *Renamer) RewriteImageTable(path string) (int, error) {
	data, err := r.FS.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read image table: %w", err)
	}

	out, changed := RewriteImageTable(data, r.Pattern)
	if changed == 0 || r.DryRun {
		return changed, nil
	}

	if err := fsutil.WriteFileAtomic(r.FS, path, out, 0644); err != nil {
		return 0, err
	}
	return changed, nil
}

// RewriteImageTable rewrites every non-blank, non-comment line whose last
// field matches p: the field is replaced by its canonical name and the fields
// are re-joined with single spaces. All other lines are kept byte for byte.
func RewriteImageTable(data []byte, p *Pattern) ([]byte, int) {
	lines := strings.Split(string(data), "\n")
	changed := 0
	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		trimmed := strings.TrimSpace(body)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		parts := strings.Fields(trimmed)
		last := parts[len(parts)-1]
		canonical, ok := p.CanonicalName(last)
		if !ok || canonical == last {
			continue
		}
		parts[len(parts)-1] = canonical
		rewritten := strings.Join(parts, " ")
		if cr {
			rewritten += "\r"
		}
		lines[i] = rewritten
		changed++
	}
	if changed > 0 {
		monitoring.Logf("rename: updated %d image table lines", changed)
	}
	return []byte(strings.Join(lines, "\n")), changed
}
