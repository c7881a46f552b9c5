// Package apperr defines the error kinds shared across the access boundary.
package apperr

import (
	"errors"
	"io/fs"
	"syscall"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermission        = errors.New("permission denied")
	ErrInvalid           = errors.New("invalid argument")
	ErrNoSpace           = errors.New("no space left on device")
	ErrAlreadyExists     = errors.New("already exists")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrCancelled         = errors.New("cancelled")
)

// Kind is the wire name of an error class.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindPermission        Kind = "permission"
	KindInvalid           Kind = "invalid"
	KindNoSpace           Kind = "no_space"
	KindAlreadyExists     Kind = "already_exists"
	KindAlreadySubscribed Kind = "already_subscribed"
	KindCancelled         Kind = "cancelled"
	KindIO                Kind = "io"
)

var kinds = []struct {
	kind Kind
	err  error
}{
	{KindNotFound, ErrNotFound},
	{KindPermission, ErrPermission},
	{KindInvalid, ErrInvalid},
	{KindNoSpace, ErrNoSpace},
	{KindAlreadyExists, ErrAlreadyExists},
	{KindAlreadySubscribed, ErrAlreadySubscribed},
	{KindCancelled, ErrCancelled},
}

// Classify returns the sentinel matching err, translating io/fs and errno
// failures. Unknown errors yield nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, fs.ErrExist):
		return ErrAlreadyExists
	case errors.Is(err, fs.ErrInvalid):
		return ErrInvalid
	case errors.Is(err, syscall.ENOSPC):
		return ErrNoSpace
	}
	return nil
}

// KindOf returns the wire kind of err. Nil errors have an empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	sentinel := Classify(err)
	for _, k := range kinds {
		if sentinel == k.err {
			return k.kind
		}
	}
	return KindIO
}

// FromKind returns the sentinel for a wire kind, or nil for unknown kinds.
func FromKind(kind Kind) error {
	for _, k := range kinds {
		if k.kind == kind {
			return k.err
		}
	}
	return nil
}

// Wrap attaches the sentinel for err's class so errors.Is works on both the
// sentinel and the original cause.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	sentinel := Classify(err)
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return &classified{kind: sentinel, err: err}
}

type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string { return c.err.Error() }

func (c *classified) Unwrap() []error { return []error{c.kind, c.err} }
