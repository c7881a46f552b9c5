package boundary

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/starford/jotter/internal/storage"
)

// lockedStore serialises operations per file and logs every failure once
// before handing it back to the caller.
type lockedStore struct {
	next   storage.Provider
	locks  *keyLock
	ext    string
	logger *slog.Logger
}

var _ storage.Provider = (*lockedStore)(nil)

func fileKey(dir, name string) string {
	return filepath.Join(dir, name)
}

func (s *lockedStore) fail(op string, err error, attrs ...slog.Attr) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("op", op))
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.String("error", err.Error()))
	s.logger.Warn("boundary: store operation failed", args...)
	return err
}

func (s *lockedStore) List(ctx context.Context, dir string) ([]string, error) {
	names, err := s.next.List(ctx, dir)
	if err != nil {
		return nil, s.fail("list", err, slog.String("dir", dir))
	}
	return names, nil
}

func (s *lockedStore) Read(ctx context.Context, name, dir string) (string, error) {
	unlock, err := s.locks.Lock(ctx, fileKey(dir, name))
	if err != nil {
		return "", s.fail("read", err, slog.String("file", name))
	}
	defer unlock()

	content, err := s.next.Read(ctx, name, dir)
	if err != nil {
		return "", s.fail("read", err, slog.String("dir", dir), slog.String("file", name))
	}
	return content, nil
}

func (s *lockedStore) Write(ctx context.Context, content, name, dir string) error {
	unlock, err := s.locks.Lock(ctx, fileKey(dir, name))
	if err != nil {
		return s.fail("write", err, slog.String("file", name))
	}
	defer unlock()

	if err := s.next.Write(ctx, content, name, dir); err != nil {
		return s.fail("write", err, slog.String("dir", dir), slog.String("file", name))
	}
	return nil
}

func (s *lockedStore) Rename(ctx context.Context, current, newName, dir string) (string, error) {
	unlock, err := s.locks.Lock(ctx, fileKey(dir, current), fileKey(dir, newName+s.ext))
	if err != nil {
		return "", s.fail("rename", err, slog.String("file", current))
	}
	defer unlock()

	renamed, err := s.next.Rename(ctx, current, newName, dir)
	if err != nil {
		return "", s.fail("rename", err,
			slog.String("dir", dir), slog.String("file", current), slog.String("new_name", newName))
	}
	return renamed, nil
}

func (s *lockedStore) Remove(ctx context.Context, name, dir string) error {
	unlock, err := s.locks.Lock(ctx, fileKey(dir, name))
	if err != nil {
		return s.fail("remove", err, slog.String("file", name))
	}
	defer unlock()

	if err := s.next.Remove(ctx, name, dir); err != nil {
		return s.fail("remove", err, slog.String("dir", dir), slog.String("file", name))
	}
	return nil
}
