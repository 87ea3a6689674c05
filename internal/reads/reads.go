// Package reads finds the sequencing read files of a run and merges them
// into the single FASTQ every pipeline consumes.
package reads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPattern selects FASTQ files when walking directories.
const DefaultPattern = "*.fastq"

// ErrNoReads is returned when discovery finds no file at all.
var ErrNoReads = errors.New("input location(s) did not exist or did not contain any read files")

// Discovery is the outcome of Discover.
type Discovery struct {
	// Files are absolute paths, in walk order.
	Files []string
	// Missing lists given locations that do not exist.
	Missing []string
}

// Discover expands locations into read files. Directories are walked
// recursively and filtered by pattern on the base name; plain files are
// taken as given. Missing locations are recorded and skipped.
func Discover(locations []string, pattern string) (*Discovery, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid reads pattern %q: %w", pattern, err)
	}

	d := &Discovery{}
	for _, loc := range locations {
		abs, err := filepath.Abs(loc)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", loc, err)
		}
		info, err := os.Stat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			d.Missing = append(d.Missing, abs)
			continue
		case err != nil:
			return nil, fmt.Errorf("inspecting %s: %w", abs, err)
		}

		if !info.IsDir() {
			d.Files = append(d.Files, abs)
			continue
		}
		err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			if ok, _ := filepath.Match(pattern, entry.Name()); ok {
				d.Files = append(d.Files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", abs, err)
		}
	}

	if len(d.Files) == 0 {
		return d, ErrNoReads
	}
	return d, nil
}

// Concatenate writes files, in order, to dest. dest is replaced atomically
// so an interrupted merge never leaves a truncated read set behind.
func Concatenate(files []string, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	var total int64
	for _, f := range files {
		n, err := appendFile(out, f)
		total += n
		if err != nil {
			out.Close()
			os.Remove(tmpPath)
			return total, err
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return total, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return total, fmt.Errorf("renaming temp file: %w", err)
	}
	return total, nil
}

func appendFile(w io.Writer, path string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	n, err := io.Copy(w, in)
	if err != nil {
		return n, fmt.Errorf("copying %s: %w", path, err)
	}
	return n, nil
}
