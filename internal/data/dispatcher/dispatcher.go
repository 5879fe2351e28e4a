package dispatcher

import (
	"github.com/atomicstack/folderctl/internal/backend"
	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"github.com/atomicstack/folderctl/internal/state"
)

// Result reports what an event changed. Update is set when the event targets
// the folder currently open in the panel and was written by another replica.
type Result struct {
	FoldersUpdated bool
	Update         *folder.Filter
	Removed        bool
	Origin         string
}

type Dispatcher struct {
	folders state.FolderStore
	self    string
	watched int64
}

// New returns a dispatcher for the given folder list. Updates whose origin is
// self are echoes of this process's own saves and are never routed.
func New(folders state.FolderStore, self string) *Dispatcher {
	return &Dispatcher{folders: folders, self: self}
}

// Watch routes later updates for id into Result.Update.
func (d *Dispatcher) Watch(id int64) { d.watched = id }

// Unwatch stops routing updates.
func (d *Dispatcher) Unwatch() { d.watched = 0 }

// Watched returns the routed id, 0 when none.
func (d *Dispatcher) Watched() int64 { return d.watched }

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		return res
	}
	switch evt.Kind {
	case backend.KindFilter:
		f, ok := evt.Data.(folder.Filter)
		if !ok {
			return res
		}
		d.folders.Upsert(f)
		d.folders.SetOrigin(f.ID, evt.Origin)
		res.FoldersUpdated = true
		res.Origin = evt.Origin
		if d.watched != 0 && f.ID == d.watched && (d.self == "" || evt.Origin != d.self) {
			dup := f.Clone()
			res.Update = &dup
			events.Push.Routed(f.ID)
		}
	case backend.KindFilterRemoved:
		id, ok := evt.Data.(int64)
		if !ok {
			return res
		}
		res.FoldersUpdated = d.folders.Remove(id)
		res.Removed = d.watched != 0 && id == d.watched
	}
	return res
}
