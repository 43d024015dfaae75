// Package workspace gives agents read access to the project they work on.
// Every path is resolved relative to the workspace root and may not escape it.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrOutsideRoot is returned for paths that resolve outside the workspace.
var ErrOutsideRoot = errors.New("workspace: path is outside the workspace root")

// ErrTooLarge is returned for files above the reader's size limit.
var ErrTooLarge = errors.New("workspace: file too large")

// Option configures a Reader.
type Option func(*Reader)

// WithMaxFileSize sets the largest file the reader returns. Default is 1MB.
func WithMaxFileSize(bytes int64) Option {
	return func(r *Reader) {
		r.maxFileSize = bytes
	}
}

// WithSkipDirs replaces the directory names skipped when listing files.
func WithSkipDirs(names ...string) Option {
	return func(r *Reader) {
		r.skipDirs = names
	}
}

// Reader reads files below a root directory.
type Reader struct {
	root        string
	maxFileSize int64
	skipDirs    []string
}

// NewReader creates a reader rooted at root.
func NewReader(root string, opts ...Option) *Reader {
	r := &Reader{
		root:        filepath.Clean(root),
		maxFileSize: 1024 * 1024,
		skipDirs:    []string{".git", "node_modules", "vendor", ".venv", "__pycache__", "dist", "build"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the workspace root.
func (r *Reader) Root() string {
	return r.root
}

// Resolve maps a workspace relative path to a filesystem path. Symlinks
// in existing paths are followed and must stay inside the root.
func (r *Reader) Resolve(path string) (string, error) {
	path = filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
		}
		path = rel
	}
	full := filepath.Join(r.root, path)
	if !within(r.root, full) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	target, err := filepath.EvalSymlinks(full)
	if errors.Is(err, fs.ErrNotExist) {
		return full, nil
	}
	if err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(r.root)
	if err != nil {
		return "", err
	}
	if !within(root, target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Open opens a workspace file for reading. The file is opened through an
// os.Root, so no path component can lead outside the workspace.
func (r *Reader) Open(path string) (*os.File, error) {
	full, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(r.root, full)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	root, err := os.OpenRoot(r.root)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return root.Open(rel)
}

// ReadFile returns the content of a workspace file.
func (r *Reader) ReadFile(path string) (string, error) {
	f, err := r.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("workspace: %s is a directory", path)
	}
	if info.Size() > r.maxFileSize {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, path, info.Size())
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Files lists every file below dir, relative to the root with forward
// slashes, sorted. Skipped directories and oversized files are left out.
func (r *Reader) Files(dir string) ([]string, error) {
	start, err := r.Resolve(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != start && slices.Contains(r.skipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > r.maxFileSize {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if _, err := r.Resolve(rel); err != nil {
				return nil
			}
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// FileTree renders the workspace file list as an indented tree.
func (r *Reader) FileTree() (string, error) {
	files, err := r.Files(".")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var prev []string
	for _, f := range files {
		parts := strings.Split(f, "/")
		common := 0
		for common < len(prev)-1 && common < len(parts)-1 && prev[common] == parts[common] {
			common++
		}
		for i := common; i < len(parts); i++ {
			b.WriteString(strings.Repeat("  ", i))
			b.WriteString(parts[i])
			if i < len(parts)-1 {
				b.WriteString("/")
			}
			b.WriteString("\n")
		}
		prev = parts
	}
	return b.String(), nil
}
