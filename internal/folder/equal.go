package folder

import "slices"

// Equal reports whether a and b agree on every semantic field. UpdatedTime and
// LocalID are ignored; peer lists are compared element-wise in order. A flag
// stored as false is the same as an absent flag.
func Equal(a, b Filter) bool {
	if a.ID != b.ID || a.Kind != b.Kind || a.Title != b.Title || a.HasMyInvites != b.HasMyInvites {
		return false
	}
	if !flagsEqual(a.Flags, b.Flags) {
		return false
	}
	return slices.Equal(a.PinnedPeerIDs, b.PinnedPeerIDs) &&
		slices.Equal(a.IncludePeerIDs, b.IncludePeerIDs) &&
		slices.Equal(a.ExcludePeerIDs, b.ExcludePeerIDs)
}

// IsDirty reports whether working has diverged from original.
func IsDirty(original, working Filter) bool {
	return !Equal(original, working)
}

func flagsEqual(a, b map[Flag]bool) bool {
	for k, v := range a {
		if v != b[k] {
			return false
		}
	}
	for k, v := range b {
		if v != a[k] {
			return false
		}
	}
	return true
}
