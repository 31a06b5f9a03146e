package app

import "github.com/rebeliceyang/pgglance/internal/filter"

// TableViewState is the cursor and sort state of one panel. The cursor
// indexes the filtered+sorted index list, never the snapshot collection.
type TableViewState[C filter.Column[C]] struct {
	selected  int // -1 when nothing is selected
	Sort      C
	Ascending bool
}

func newTableView[C filter.Column[C]](sort C) TableViewState[C] {
	return TableViewState[C]{selected: -1, Sort: sort, Ascending: sort.DefaultAscending()}
}

// Selected returns the cursor position, if any.
func (t *TableViewState[C]) Selected() (int, bool) {
	return t.selected, t.selected >= 0
}

// Clamp keeps the cursor inside a list of n rows. An empty list clears it and
// a list appearing under an unset cursor selects the first row.
func (t *TableViewState[C]) Clamp(n int) {
	switch {
	case n <= 0:
		t.selected = -1
	case t.selected < 0:
		t.selected = 0
	case t.selected >= n:
		t.selected = n - 1
	}
}

func (t *TableViewState[C]) SelectNext(n int) {
	if t.selected < n-1 {
		t.selected++
	}
	t.Clamp(n)
}

func (t *TableViewState[C]) SelectPrev(n int) {
	if t.selected > 0 {
		t.selected--
	}
	t.Clamp(n)
}

// SelectFirst moves the cursor to the top of a list of n rows.
func (t *TableViewState[C]) SelectFirst(n int) {
	t.selected = -1
	t.Clamp(n)
}

// CycleSort advances the sort column, resetting direction to its default.
func (t *TableViewState[C]) CycleSort() {
	t.Sort, t.Ascending = filter.Cycle(t.Sort, t.Ascending)
}

// SortArrow is the direction glyph shown next to the sort column.
func (t *TableViewState[C]) SortArrow() string {
	if t.Ascending {
		return "↑"
	}
	return "↓"
}
