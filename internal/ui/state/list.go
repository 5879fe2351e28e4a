package state

// Entry is one row of the folder picker.
type Entry struct {
	ID     int64
	Label  string
	Detail string
}

// List holds the picker rows together with the filter, cursor and viewport.
type List struct {
	Full           []Entry
	Items          []Entry
	Filter         string
	FilterCursor   int
	Cursor         int
	ViewportOffset int
}

// NewList constructs a List over entries with the cursor on the first row.
func NewList(entries []Entry) *List {
	l := &List{}
	l.UpdateEntries(entries)
	return l
}

// UpdateEntries replaces the rows, keeping the cursor on the same folder when
// it is still listed.
func (l *List) UpdateEntries(entries []Entry) {
	var keep int64
	if cur, ok := l.Current(); ok {
		keep = cur.ID
	}
	l.Full = CloneEntries(entries)
	l.applyFilter()
	if idx := l.IndexOf(keep); idx >= 0 {
		l.Cursor = idx
	}
}

// Current returns the row under the cursor.
func (l *List) Current() (Entry, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return Entry{}, false
	}
	return l.Items[l.Cursor], true
}

// IndexOf returns the visible index of id, or -1.
func (l *List) IndexOf(id int64) int {
	if id == 0 {
		return -1
	}
	for i, e := range l.Items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// MoveCursor moves by delta rows, clamped to the list.
func (l *List) MoveCursor(delta int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = clamp(l.Cursor+delta, 0, len(l.Items)-1)
	return l.Cursor != old
}

// MoveCursorHome moves the cursor to the first row.
func (l *List) MoveCursorHome() bool {
	return l.MoveCursor(-len(l.Items))
}

// MoveCursorEnd moves the cursor to the last row.
func (l *List) MoveCursorEnd() bool {
	return l.MoveCursor(len(l.Items))
}

// MoveCursorPage moves a page of maxVisible rows; dir is -1 or 1.
func (l *List) MoveCursorPage(maxVisible, dir int) bool {
	size := maxVisible
	if size <= 0 || size > len(l.Items) {
		size = len(l.Items)
	}
	return l.MoveCursor(dir * size)
}

// EnsureCursorVisible adjusts the viewport so the cursor row is shown.
func (l *List) EnsureCursorVisible(maxVisible int) {
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, len(l.Items)-1)
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := len(l.Items) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := clamp(l.ViewportOffset, 0, maxOffset)
	if l.Cursor < offset {
		offset = l.Cursor
	}
	if l.Cursor > offset+maxVisible-1 {
		offset = l.Cursor - maxVisible + 1
	}
	l.ViewportOffset = clamp(offset, 0, maxOffset)
}

// Visible returns the rows inside the viewport and the index of the first.
func (l *List) Visible(maxVisible int) ([]Entry, int) {
	if maxVisible <= 0 || len(l.Items) <= maxVisible {
		return l.Items, 0
	}
	l.EnsureCursorVisible(maxVisible)
	start := l.ViewportOffset
	return l.Items[start : start+maxVisible], start
}

// CloneEntries copies entries.
func CloneEntries(entries []Entry) []Entry {
	dup := make([]Entry, len(entries))
	copy(dup, entries)
	return dup
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
