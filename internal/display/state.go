package display

import (
	"slices"
	"strings"

	"github.com/starford/jotter/internal/models"
)

// Item is one row of the sidebar.
type Item struct {
	Filename string
	// Hidden items do not match the search filter. They stay in the list.
	Hidden bool
}

// AppState is everything the display knows. It is owned by a Session and
// handed out as copies.
type AppState struct {
	Directory string
	// Items are in display order, head first.
	Items []Item

	Active      string
	Focused     string
	Renaming    string
	RenameDraft string

	Buffer string
	// BufferVersion changes whenever Buffer is replaced from outside the
	// editor (file loaded, file removed, directory switched).
	BufferVersion int
	Loading       bool

	Filter       string
	SidebarWidth int
	Dragging     bool

	// Menu is the context menu awaiting an answer, if any.
	Menu *models.Menu

	LastError string
}

func (s *AppState) clone() AppState {
	c := *s
	c.Items = slices.Clone(s.Items)
	if s.Menu != nil {
		m := *s.Menu
		m.Entries = slices.Clone(s.Menu.Entries)
		c.Menu = &m
	}
	return c
}

// Visible returns the items that match the filter.
func (s AppState) Visible() []Item {
	out := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if !it.Hidden {
			out = append(out, it)
		}
	}
	return out
}

// Filenames returns every filename in display order.
func (s AppState) Filenames() []string {
	out := make([]string, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Filename
	}
	return out
}

func (s AppState) index(filename string) int {
	return slices.IndexFunc(s.Items, func(it Item) bool { return it.Filename == filename })
}

// Has reports whether filename is in the snapshot.
func (s AppState) Has(filename string) bool {
	return s.index(filename) >= 0
}

func matches(filter, filename string) bool {
	return filter == "" || strings.Contains(strings.ToLower(filename), strings.ToLower(filter))
}

// prepend inserts filename at the head unless it is already listed.
func (s *AppState) prepend(filename string) {
	if s.Has(filename) {
		return
	}
	s.Items = slices.Insert(s.Items, 0, Item{Filename: filename, Hidden: !matches(s.Filter, filename)})
}

// setItems rebuilds the list from enumeration order. Each name is placed at
// the head, so the result is the enumeration reversed.
func (s *AppState) setItems(names []string) {
	s.Items = s.Items[:0:0]
	for _, n := range names {
		s.prepend(n)
	}
}

// mergeItems reconciles the list with a fresh enumeration: listed names keep
// their position, vanished ones are dropped and unknown ones are prepended.
func (s *AppState) mergeItems(names []string) {
	s.Items = slices.DeleteFunc(s.Items, func(it Item) bool {
		return !slices.Contains(names, it.Filename)
	})
	for _, n := range names {
		s.prepend(n)
	}
}

func (s *AppState) remove(filename string) bool {
	i := s.index(filename)
	if i < 0 {
		return false
	}
	s.Items = slices.Delete(s.Items, i, i+1)
	return true
}

// rename replaces from with to in place. Another item already named to is
// dropped, as the file system replaced it.
func (s *AppState) rename(from, to string) {
	if from != to {
		if j := s.index(to); j >= 0 && s.index(from) >= 0 {
			s.Items = slices.Delete(s.Items, j, j+1)
		}
	}
	if i := s.index(from); i >= 0 {
		s.Items[i] = Item{Filename: to, Hidden: !matches(s.Filter, to)}
	}
	if s.Active == from {
		s.Active = to
	}
	if s.Focused == from {
		s.Focused = to
	}
}

func (s *AppState) applyFilter(q string) {
	s.Filter = q
	for i := range s.Items {
		s.Items[i].Hidden = !matches(q, s.Items[i].Filename)
	}
}

func (s *AppState) replaceBuffer(content string) {
	s.Buffer = content
	s.BufferVersion++
}

func (s *AppState) clearActive() {
	s.Active = ""
	s.Loading = false
	s.replaceBuffer("")
}
