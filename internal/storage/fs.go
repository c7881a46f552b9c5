package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	ext  string
	junk map[string]struct{}
}

// FSOption configures an FS.
type FSOption func(*FS)

// WithExtension sets the extension appended on rename.
func WithExtension(ext string) FSOption {
	return func(f *FS) {
		f.ext = ext
	}
}

// WithJunkFiles replaces the set of filenames hidden from listings.
func WithJunkFiles(names ...string) FSOption {
	return func(f *FS) {
		f.junk = make(map[string]struct{}, len(names))
		for _, n := range names {
			f.junk[n] = struct{}{}
		}
	}
}

// NewFS creates a file-system provider. Directories are supplied per call.
func NewFS(opts ...FSOption) *FS {
	f := &FS{
		ext:  models.DefaultExtension,
		junk: map[string]struct{}{models.DefaultJunkFile: {}},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Extension returns the note extension used by Rename.
func (f *FS) Extension() string {
	return f.ext
}

// notePath resolves name inside dir and rejects anything that is not a plain
// filename (separators, traversal, absolute paths).
func notePath(dir, name string) (string, error) {
	if dir == "" || !filepath.IsAbs(dir) {
		return "", fmt.Errorf("storage: directory must be absolute: %q: %w", dir, apperr.ErrInvalid)
	}
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("storage: invalid filename %q: %w", name, apperr.ErrInvalid)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("storage: filename must not contain a path: %q: %w", name, apperr.ErrInvalid)
	}
	return filepath.Join(filepath.Clean(dir), name), nil
}

// List returns regular files in dir, skipping junk names and anything that is
// not a regular file (directories, symlinks, sockets).
func (f *FS) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dir == "" || !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("storage: directory must be absolute: %q: %w", dir, apperr.ErrInvalid)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, apperr.Wrap(err))
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, skip := f.junk[e.Name()]; skip {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Read returns the file content as text.
func (f *FS) Read(ctx context.Context, name, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := notePath(dir, name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("storage: read %s: %w", name, apperr.Wrap(err))
	}
	return string(data), nil
}

// Write truncates and rewrites the file in place, then fsyncs. There is no
// temp-file swap: an interrupted write can leave a partial file.
func (f *FS) Write(ctx context.Context, content, name, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := notePath(dir, name)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", name, apperr.Wrap(err))
	}
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		return fmt.Errorf("storage: write %s: %w", name, apperr.Wrap(err))
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("storage: fsync %s: %w", name, apperr.Wrap(err))
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", name, apperr.Wrap(err))
	}
	return nil
}

// Rename moves current to newName+ext. The extension is appended even when
// newName already ends with it.
func (f *FS) Rename(ctx context.Context, current, newName, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	absOld, err := notePath(dir, current)
	if err != nil {
		return "", err
	}
	if newName == "" {
		return "", fmt.Errorf("storage: rename %s: empty name: %w", current, apperr.ErrInvalid)
	}
	target := newName + f.ext
	absNew, err := notePath(dir, target)
	if err != nil {
		return "", err
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return "", fmt.Errorf("storage: rename %s: %w", current, apperr.Wrap(err))
	}
	return target, nil
}

// Remove deletes the file.
func (f *FS) Remove(ctx context.Context, name, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := notePath(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: remove %s: %w", name, apperr.Wrap(err))
	}
	return nil
}
