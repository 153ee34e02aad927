// Package logdir lists and resolves log files under a base directory.
package logdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrNoFiles is returned by Latest when the directory holds no log files.
	ErrNoFiles = errors.New("no log files")

	// ErrOutsideDir is returned by Resolve for paths that escape the base.
	ErrOutsideDir = errors.New("path escapes log directory")
)

// File is a log file relative to a Dir.
type File struct {
	Name    string    `json:"name"` // slash-separated, relative to the Dir
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Dir is a directory of log files.
type Dir struct {
	Base string
}

// New returns a Dir rooted at base.
func New(base string) *Dir {
	return &Dir{Base: filepath.Clean(base)}
}

// Files lists log files. Without a match it returns the files directly in
// the directory. With one it walks the whole tree and keeps files whose
// relative path contains match, or matches it as a glob when match has glob
// characters (e.g. "**/worker-*.log"). Either way the newest file is first.
func (d *Dir) Files(match string) ([]File, error) {
	var files []File

	if match == "" {
		entries, err := os.ReadDir(d.Base)
		if err != nil {
			return nil, fmt.Errorf("failed to read log directory: %w", err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			files = append(files, d.file(e.Name(), info))
		}
	} else {
		glob := strings.ContainsAny(match, "*?[{")
		if glob && !doublestar.ValidatePattern(match) {
			return nil, fmt.Errorf("invalid pattern %q", match)
		}

		err := filepath.WalkDir(d.Base, func(path string, e fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !e.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(d.Base, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			keep := strings.Contains(rel, match)
			if glob {
				keep, _ = doublestar.Match(match, rel)
			}
			if !keep {
				return nil
			}
			info, err := e.Info()
			if err != nil {
				return nil
			}
			files = append(files, d.file(rel, info))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk log directory: %w", err)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (d *Dir) file(rel string, info fs.FileInfo) File {
	return File{
		Name:    rel,
		Path:    filepath.Join(d.Base, filepath.FromSlash(rel)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// Dirs lists the immediate subdirectories, sorted by name.
func (d *Dir) Dirs() ([]string, error) {
	entries, err := os.ReadDir(d.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Latest returns the most recently modified file directly in the directory.
func (d *Dir) Latest() (File, error) {
	files, err := d.Files("")
	if err != nil {
		return File{}, err
	}
	if len(files) == 0 {
		return File{}, fmt.Errorf("%w in %s", ErrNoFiles, d.Base)
	}
	return files[0], nil
}

// Resolve joins rel onto the base directory. Absolute paths and paths that
// climb out of the base are rejected.
func (d *Dir) Resolve(rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimSpace(rel))
	if rel == "" {
		return d.Base, nil
	}
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("%w: %s", ErrOutsideDir, rel)
	}

	joined := filepath.Join(d.Base, rel)
	back, err := filepath.Rel(d.Base, joined)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDir, rel)
	}
	return joined, nil
}

// Sub returns the Dir for a subdirectory of d.
func (d *Dir) Sub(rel string) (*Dir, error) {
	path, err := d.Resolve(rel)
	if err != nil {
		return nil, err
	}
	return New(path), nil
}

// Names returns the relative names of files, for suggestions.
func Names(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
