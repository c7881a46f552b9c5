// Package storage defines the note directory abstraction.
package storage

import "context"

// Provider is the interface for note file operations. Every call is scoped to
// the caller-supplied absolute directory; there is no implicit root.
type Provider interface {
	// List returns the regular, non-junk filenames in dir in enumeration order.
	List(ctx context.Context, dir string) ([]string, error)
	// Read returns the full content of name as text.
	Read(ctx context.Context, name, dir string) (string, error)
	// Write replaces the content of name, creating it when absent.
	Write(ctx context.Context, content, name, dir string) error
	// Rename moves current to newName plus the note extension and returns
	// the resulting filename.
	Rename(ctx context.Context, current, newName, dir string) (string, error)
	// Remove deletes name permanently.
	Remove(ctx context.Context, name, dir string) error
}
