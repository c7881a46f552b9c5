// Package models defines the domain types shared by both sides of the access boundary.
package models

import (
	"strings"
	"time"
)

// DefaultExtension is the suffix every managed note carries on disk.
const DefaultExtension = ".txt"

// DefaultJunkFile is the platform metadata file excluded from listings.
const DefaultJunkFile = ".DS_Store"

// NoteFile is one managed plain-text file inside the storage directory.
type NoteFile struct {
	Filename string `json:"filename"`
}

// DisplayName returns the filename without ext. Filenames that do not carry
// ext are returned unchanged.
func (n NoteFile) DisplayName(ext string) string {
	return DisplayName(n.Filename, ext)
}

// DisplayName strips ext from filename.
func DisplayName(filename, ext string) string {
	if ext == "" || len(filename) <= len(ext) {
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}

// TimestampFilename synthesizes a note filename at minute granularity:
// YYYYMMDDHHmm followed by ext.
func TimestampFilename(t time.Time, ext string) string {
	return t.Format("200601021504") + ext
}
