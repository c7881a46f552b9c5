package models

// NotificationKind names a push message sent from the privileged side to the
// display.
type NotificationKind string

const (
	NotifyCloseContextMenu NotificationKind = "closeContextMenu"
	NotifyCreateNewFile    NotificationKind = "createNewFile"
	NotifyRemoveFile       NotificationKind = "removeFile"
	NotifyRenameFile       NotificationKind = "renameFile"
	NotifyOpenContextMenu  NotificationKind = "openContextMenu"
	NotifyFilesChanged     NotificationKind = "filesChanged"
)

// Notification is a single push message. Only the fields relevant to Kind are set.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Filename  string           `json:"filename,omitempty"`
	Directory string           `json:"directory,omitempty"`
	Menu      *Menu            `json:"menu,omitempty"`
}
