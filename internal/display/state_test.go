package display

import (
	"slices"
	"testing"
)

func TestMergeItemsKeepsPositions(t *testing.T) {
	var st AppState
	st.setItems([]string{"a.txt", "b.txt", "c.txt"})
	st.rename("a.txt", "z.txt")

	st.mergeItems([]string{"b.txt", "z.txt", "d.txt", "e.txt"})
	want := []string{"e.txt", "d.txt", "z.txt", "b.txt"}
	if got := st.Filenames(); !slices.Equal(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestMergeItemsAppliesFilter(t *testing.T) {
	var st AppState
	st.setItems([]string{"notes.txt"})
	st.applyFilter("dr")

	st.mergeItems([]string{"notes.txt", "draft.txt"})
	vis := st.Visible()
	if len(vis) != 1 || vis[0].Filename != "draft.txt" {
		t.Errorf("visible = %v", vis)
	}
}

func TestRenameOntoListedName(t *testing.T) {
	var st AppState
	st.setItems([]string{"a.txt", "b.txt", "c.txt"})
	st.Active = "a.txt"

	st.rename("a.txt", "b.txt")
	want := []string{"c.txt", "b.txt"}
	if got := st.Filenames(); !slices.Equal(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if st.Active != "b.txt" {
		t.Errorf("active = %q", st.Active)
	}
}

func TestRenameToSameName(t *testing.T) {
	var st AppState
	st.setItems([]string{"a.txt", "b.txt"})
	st.rename("a.txt", "a.txt")
	if got := st.Filenames(); !slices.Equal(got, []string{"b.txt", "a.txt"}) {
		t.Errorf("items = %v", got)
	}
}
