package state

import (
	"sort"

	"github.com/atomicstack/folderctl/internal/folder"
)

// FolderStore holds the folder list shown by the picker.
type FolderStore interface {
	Entries() []folder.Filter
	SetEntries([]folder.Filter)
	Get(id int64) (folder.Filter, bool)
	Upsert(folder.Filter)
	Remove(id int64) bool
	Origin(id int64) string
	SetOrigin(id int64, origin string)
}

type folderStore struct {
	entries []folder.Filter
	origins map[int64]string
}

func NewFolderStore() FolderStore {
	return &folderStore{origins: map[int64]string{}}
}

func (s *folderStore) Entries() []folder.Filter {
	return cloneFilters(s.entries)
}

func (s *folderStore) SetEntries(entries []folder.Filter) {
	s.entries = cloneFilters(entries)
	s.sort()
}

func (s *folderStore) Get(id int64) (folder.Filter, bool) {
	for _, f := range s.entries {
		if f.ID == id {
			return f.Clone(), true
		}
	}
	return folder.Filter{}, false
}

func (s *folderStore) Upsert(f folder.Filter) {
	for i := range s.entries {
		if s.entries[i].ID == f.ID {
			s.entries[i] = f.Clone()
			return
		}
	}
	s.entries = append(s.entries, f.Clone())
	s.sort()
}

func (s *folderStore) Remove(id int64) bool {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			delete(s.origins, id)
			return true
		}
	}
	return false
}

func (s *folderStore) Origin(id int64) string {
	return s.origins[id]
}

func (s *folderStore) SetOrigin(id int64, origin string) {
	if origin == "" {
		delete(s.origins, id)
		return
	}
	s.origins[id] = origin
}

func (s *folderStore) sort() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].LocalID != s.entries[j].LocalID {
			return s.entries[i].LocalID < s.entries[j].LocalID
		}
		return s.entries[i].ID < s.entries[j].ID
	})
}

func cloneFilters(entries []folder.Filter) []folder.Filter {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]folder.Filter, len(entries))
	for i, f := range entries {
		dup[i] = f.Clone()
	}
	return dup
}
