package state

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetFilter updates the query, refilters and moves the cursor to the best
// match.
func (l *List) SetFilter(query string, cursor int) {
	l.Filter = query
	l.FilterCursor = clamp(cursor, 0, len([]rune(query)))
	l.applyFilter()
	if strings.TrimSpace(query) == "" {
		return
	}
	if idx := BestMatchIndex(l.Items, query); idx >= 0 {
		l.Cursor = idx
	}
}

// ClearFilter drops the query.
func (l *List) ClearFilter() bool {
	if l.Filter == "" {
		return false
	}
	l.SetFilter("", 0)
	return true
}

func (l *List) applyFilter() {
	l.Items = FilterEntries(l.Full, l.Filter)
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, len(l.Items)-1)
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}

// InsertFilterText inserts text at the filter cursor.
func (l *List) InsertFilterText(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(l.Filter)
	pos := clamp(l.FilterCursor, 0, len(runes))
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	l.SetFilter(string(updated), pos+len(insert))
	return true
}

// DeleteFilterRuneBackward deletes the rune before the filter cursor.
func (l *List) DeleteFilterRuneBackward() bool {
	runes := []rune(l.Filter)
	pos := clamp(l.FilterCursor, 0, len(runes))
	if pos == 0 {
		return false
	}
	l.SetFilter(string(append(runes[:pos-1:pos-1], runes[pos:]...)), pos-1)
	return true
}

// DeleteFilterWordBackward deletes the word before the filter cursor.
func (l *List) DeleteFilterWordBackward() bool {
	runes := []rune(l.Filter)
	pos := clamp(l.FilterCursor, 0, len(runes))
	if pos == 0 {
		return false
	}
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	l.SetFilter(string(append(runes[:i:i], runes[pos:]...)), i)
	return true
}

// FilterEntries returns entries whose label fuzzily matches query, falling
// back to a substring match on label or detail.
func FilterEntries(entries []Entry, query string) []Entry {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return CloneEntries(entries)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels(entries))
	if len(ranks) > 0 {
		matched := make(map[int]struct{}, len(ranks))
		for _, r := range ranks {
			matched[r.OriginalIndex] = struct{}{}
		}
		out := make([]Entry, 0, len(matched))
		for i, e := range entries {
			if _, ok := matched[i]; ok {
				out = append(out, e)
			}
		}
		return out
	}
	lower := strings.ToLower(trimmed)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Label), lower) || strings.Contains(strings.ToLower(e.Detail), lower) {
			out = append(out, e)
		}
	}
	return out
}

// BestMatchIndex picks the row the cursor should land on for query: an exact
// label, then a label prefix, then the closest fuzzy match.
func BestMatchIndex(entries []Entry, query string) int {
	if len(entries) == 0 {
		return -1
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	for i, e := range entries {
		if strings.EqualFold(e.Label, trimmed) {
			return i
		}
	}
	for i, e := range entries {
		if strings.HasPrefix(strings.ToLower(e.Label), lower) {
			return i
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels(entries))
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance || (r.Distance == best.Distance && r.OriginalIndex < best.OriginalIndex) {
			best = r
		}
	}
	return best.OriginalIndex
}

func labels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}
