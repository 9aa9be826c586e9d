package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for paths that would escape the base directory.
var ErrInvalidPath = errors.New("invalid path")

type FileSystem struct {
	baseDir string
}

func NewFileSystem(baseDir string) *FileSystem {
	return &FileSystem{
		baseDir: filepath.Clean(baseDir),
	}
}

// BaseDir returns the directory every stored path is relative to.
func (fs *FileSystem) BaseDir() string {
	return fs.baseDir
}

// sanitizePath validates and cleans the path to prevent directory traversal
func (fs *FileSystem) sanitizePath(path string) (string, error) {
	cleaned := filepath.Clean(path)

	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("%w: contains parent directory reference", ErrInvalidPath)
	}

	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute paths not allowed", ErrInvalidPath)
	}

	fullPath := filepath.Join(fs.baseDir, cleaned)

	if !strings.HasPrefix(fullPath, fs.baseDir+string(filepath.Separator)) && fullPath != fs.baseDir {
		return "", fmt.Errorf("%w: outside base directory", ErrInvalidPath)
	}

	return fullPath, nil
}

// Path resolves a stored path to its location on disk, for tools such as
// ffmpeg that need a real file name.
func (fs *FileSystem) Path(path string) (string, error) {
	return fs.sanitizePath(path)
}

func (fs *FileSystem) Save(ctx context.Context, path string, data []byte) error {
	fullPath, err := fs.sanitizePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	mode := os.FileMode(0644)
	if strings.Contains(path, "token") || strings.Contains(path, ".env") {
		mode = 0600
	}

	if err := os.WriteFile(fullPath, data, mode); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// SaveStream copies r into path through a temporary file, so a failed
// download never leaves a truncated file behind.
func (fs *FileSystem) SaveStream(ctx context.Context, path string, r io.Reader) (int64, error) {
	fullPath, err := fs.sanitizePath(path)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("writing file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return n, fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return n, fmt.Errorf("renaming file: %w", err)
	}

	return n, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func (fs *FileSystem) Load(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := fs.sanitizePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return data, nil
}

func (fs *FileSystem) List(ctx context.Context, pattern string) ([]string, error) {
	// Clean the pattern but allow * and ? wildcards
	cleaned := filepath.Clean(pattern)
	if strings.Contains(cleaned, "..") {
		return nil, fmt.Errorf("%w: pattern contains parent directory reference", ErrInvalidPath)
	}
	if filepath.IsAbs(cleaned) {
		return nil, fmt.Errorf("%w: absolute patterns not allowed", ErrInvalidPath)
	}

	matches, err := filepath.Glob(filepath.Join(fs.baseDir, cleaned))
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	var results []string
	for _, match := range matches {
		if !strings.HasPrefix(match, fs.baseDir+string(filepath.Separator)) && match != fs.baseDir {
			continue
		}

		rel, err := filepath.Rel(fs.baseDir, match)
		if err != nil {
			continue
		}
		results = append(results, rel)
	}

	return results, nil
}

func (fs *FileSystem) Exists(ctx context.Context, path string) bool {
	fullPath, err := fs.sanitizePath(path)
	if err != nil {
		return false
	}

	_, err = os.Stat(fullPath)
	return err == nil
}

// Delete removes path. Deleting a missing file is not an error.
func (fs *FileSystem) Delete(ctx context.Context, path string) error {
	fullPath, err := fs.sanitizePath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}

	return nil
}
