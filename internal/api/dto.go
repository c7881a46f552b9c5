package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jotter/internal/models"
)

// DialogResponse carries the directory the user picked.
type DialogResponse struct {
	Dir string `json:"dir"`
}

// FileListResponse is the file list of a directory in enumeration order.
type FileListResponse struct {
	Files []string `json:"files"`
}

// FileResponse carries the content of one file.
type FileResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// WriteFileRequest overwrites a file. Empty content is valid.
type WriteFileRequest struct {
	Dir     string `json:"dir"`
	Content string `json:"content"`
}

// Validate validates the request.
func (r WriteFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Dir, validation.Required),
	)
}

// RenameRequest renames a file to NewName plus the note extension.
type RenameRequest struct {
	Dir     string `json:"dir"`
	NewName string `json:"new_name"`
}

// Validate validates the request.
func (r RenameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Dir, validation.Required),
		validation.Field(&r.NewName, validation.Required),
	)
}

// RenameResponse carries the resulting filename.
type RenameResponse struct {
	Filename string `json:"filename"`
}

// ContextMenuRequest opens the context menu for a right-click target.
type ContextMenuRequest struct {
	Dir      string `json:"dir"`
	Filename string `json:"filename"`
}

// MenuChoiceRequest answers an open menu. An empty action dismisses it.
type MenuChoiceRequest struct {
	Action models.Action `json:"action"`
}

// Validate validates the request.
func (r MenuChoiceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.In(
			models.ActionNone,
			models.ActionRename,
			models.ActionDelete,
			models.ActionNew,
			models.ActionCopyTitle,
			models.ActionCopyLink,
			models.ActionReveal,
			models.ActionOpenExternal,
		)),
	)
}
