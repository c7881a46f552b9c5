package models

// Action identifies a context-menu entry.
type Action string

const (
	ActionNone         Action = ""
	ActionRename       Action = "rename"
	ActionDelete       Action = "delete"
	ActionNew          Action = "new"
	ActionCopyTitle    Action = "copy_title"
	ActionCopyLink     Action = "copy_link"
	ActionReveal       Action = "reveal"
	ActionOpenExternal Action = "open_external"
)

// TargetKind is the kind of object a context menu was opened on.
type TargetKind string

const (
	TargetNone      TargetKind = "none"
	TargetDirectory TargetKind = "directory"
	TargetFile      TargetKind = "file"
)

// Target is the context a menu was opened for.
type Target struct {
	Kind      TargetKind `json:"kind"`
	Directory string     `json:"directory,omitempty"`
	Filename  string     `json:"filename,omitempty"`
}

// MenuEntry is one row of a context menu. Separator rows carry no action.
type MenuEntry struct {
	Action    Action `json:"action,omitempty"`
	Label     string `json:"label,omitempty"`
	Enabled   bool   `json:"enabled"`
	Separator bool   `json:"separator,omitempty"`
}

// Menu is a built context menu awaiting a choice.
type Menu struct {
	ID      string      `json:"id"`
	Target  Target      `json:"target"`
	Entries []MenuEntry `json:"entries"`
}

// Entry returns the entry for action, if present.
func (m *Menu) Entry(action Action) (MenuEntry, bool) {
	for _, e := range m.Entries {
		if !e.Separator && e.Action == action {
			return e, true
		}
	}
	return MenuEntry{}, false
}
