// Package folder defines the chat folder (dialog filter) resource edited by the
// popup, together with the comparison rules used to detect unsaved edits.
package folder

import (
	"slices"
	"sort"
	"strings"
)

// MaxTitleLength bounds the folder title in runes.
const MaxTitleLength = 12

// MaxPeersPerFolder bounds pinned plus included peers for a single folder.
const MaxPeersPerFolder = 100

// Kind distinguishes locally owned folders from shared chatlists.
type Kind string

const (
	KindPlain    Kind = "plain"
	KindChatlist Kind = "chatlist"
)

// Flag is a named membership predicate.
type Flag string

const (
	FlagContacts        Flag = "contacts"
	FlagNonContacts     Flag = "non_contacts"
	FlagGroups          Flag = "groups"
	FlagBroadcasts      Flag = "broadcasts"
	FlagBots            Flag = "bots"
	FlagExcludeMuted    Flag = "exclude_muted"
	FlagExcludeRead     Flag = "exclude_read"
	FlagExcludeArchived Flag = "exclude_archived"
)

// AllFlags lists every flag in display order.
var AllFlags = []Flag{
	FlagContacts,
	FlagNonContacts,
	FlagGroups,
	FlagBroadcasts,
	FlagBots,
	FlagExcludeMuted,
	FlagExcludeRead,
	FlagExcludeArchived,
}

var flagLabels = map[Flag]string{
	FlagContacts:        "Contacts",
	FlagNonContacts:     "Non-Contacts",
	FlagGroups:          "Groups",
	FlagBroadcasts:      "Channels",
	FlagBots:            "Bots",
	FlagExcludeMuted:    "Muted",
	FlagExcludeRead:     "Read",
	FlagExcludeArchived: "Archived",
}

// Label returns the human readable flag name.
func (f Flag) Label() string {
	if label, ok := flagLabels[f]; ok {
		return label
	}
	return string(f)
}

// Excludes reports whether the flag removes chats rather than adding them.
func (f Flag) Excludes() bool {
	return strings.HasPrefix(string(f), "exclude_")
}

// Known reports whether the flag is one of AllFlags.
func (f Flag) Known() bool {
	_, ok := flagLabels[f]
	return ok
}

// PeerCategory names one of the three peer lists on a folder.
type PeerCategory string

const (
	PeersPinned  PeerCategory = "pinned_peers"
	PeersInclude PeerCategory = "include_peers"
	PeersExclude PeerCategory = "exclude_peers"
)

// PeerCategories lists the peer lists resolved before an edit panel opens.
var PeerCategories = []PeerCategory{PeersPinned, PeersInclude, PeersExclude}

// Peer is a directory entry for a chat referenced by a folder.
type Peer struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Filter is a folder as exchanged with the store and the push stream.
type Filter struct {
	ID             int64         `json:"id" yaml:"id"`
	Kind           Kind          `json:"kind" yaml:"kind"`
	Title          string        `json:"title" yaml:"title"`
	Flags          map[Flag]bool `json:"flags" yaml:"flags"`
	PinnedPeerIDs  []int64       `json:"pinnedPeerIds" yaml:"pinned"`
	IncludePeerIDs []int64       `json:"includePeerIds" yaml:"include"`
	ExcludePeerIDs []int64       `json:"excludePeerIds" yaml:"exclude"`
	HasMyInvites   bool          `json:"hasMyInvites,omitempty" yaml:"has_my_invites,omitempty"`

	// Volatile bookkeeping, ignored by Equal.
	UpdatedTime int64 `json:"updatedTime" yaml:"-"`
	LocalID     int64 `json:"localId" yaml:"-"`
}

// Template returns the empty folder used by the create panel.
func Template() Filter {
	return Filter{
		ID:             0,
		Kind:           KindPlain,
		Title:          "",
		Flags:          map[Flag]bool{},
		PinnedPeerIDs:  []int64{},
		IncludePeerIDs: []int64{},
		ExcludePeerIDs: []int64{},
	}
}

// Clone returns a deep copy that shares no mutable state with f.
func (f Filter) Clone() Filter {
	dup := f
	dup.Flags = make(map[Flag]bool, len(f.Flags))
	for k, v := range f.Flags {
		dup.Flags[k] = v
	}
	dup.PinnedPeerIDs = cloneIDs(f.PinnedPeerIDs)
	dup.IncludePeerIDs = cloneIDs(f.IncludePeerIDs)
	dup.ExcludePeerIDs = cloneIDs(f.ExcludePeerIDs)
	return dup
}

// IsChatlist reports whether the folder is shared through an invite link.
func (f Filter) IsChatlist() bool {
	return f.Kind == KindChatlist
}

// HasFlag reports whether flag is set.
func (f Filter) HasFlag(flag Flag) bool {
	return f.Flags[flag]
}

// SetFlag sets or clears a flag. Cleared flags are removed so that an unset
// flag and an absent flag compare equal.
func (f *Filter) SetFlag(flag Flag, on bool) {
	if f.Flags == nil {
		f.Flags = map[Flag]bool{}
	}
	if on {
		f.Flags[flag] = true
		return
	}
	delete(f.Flags, flag)
}

// ActiveFlags returns the set flags in display order.
func (f Filter) ActiveFlags() []Flag {
	out := make([]Flag, 0, len(f.Flags))
	for _, flag := range AllFlags {
		if f.Flags[flag] {
			out = append(out, flag)
		}
	}
	extra := make([]Flag, 0)
	for flag, on := range f.Flags {
		if on && !flag.Known() {
			extra = append(extra, flag)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Peers returns the ids stored under category.
func (f Filter) Peers(category PeerCategory) []int64 {
	switch category {
	case PeersPinned:
		return cloneIDs(f.PinnedPeerIDs)
	case PeersInclude:
		return cloneIDs(f.IncludePeerIDs)
	case PeersExclude:
		return cloneIDs(f.ExcludePeerIDs)
	default:
		return nil
	}
}

// SetPeers replaces the ids stored under category.
func (f *Filter) SetPeers(category PeerCategory, ids []int64) {
	switch category {
	case PeersPinned:
		f.PinnedPeerIDs = cloneIDs(ids)
	case PeersInclude:
		f.IncludePeerIDs = cloneIDs(ids)
	case PeersExclude:
		f.ExcludePeerIDs = cloneIDs(ids)
	}
}

// AllPeerIDs returns every referenced peer id once, in first-seen order.
func (f Filter) AllPeerIDs() []int64 {
	seen := make(map[int64]struct{})
	out := make([]int64, 0, len(f.PinnedPeerIDs)+len(f.IncludePeerIDs)+len(f.ExcludePeerIDs))
	for _, list := range [][]int64{f.PinnedPeerIDs, f.IncludePeerIDs, f.ExcludePeerIDs} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func cloneIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return slices.Clone(ids)
}
