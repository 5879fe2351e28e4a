package backend

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/store"
	"github.com/atomicstack/folderctl/internal/testutil"
)

type fakeSource struct {
	mu      sync.Mutex
	revs    map[int64]store.Revision
	filters map[int64]folder.Filter
	err     error
	getErr  map[int64]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{revs: map[int64]store.Revision{}, filters: map[int64]folder.Filter{}}
}

func (f *fakeSource) Revisions(context.Context) (map[int64]store.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]store.Revision, len(f.revs))
	for k, v := range f.revs {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSource) Get(_ context.Context, id int64) (folder.Filter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[id]; err != nil {
		return folder.Filter{}, err
	}
	flt, ok := f.filters[id]
	if !ok {
		return folder.Filter{}, folder.ErrNotFound
	}
	return flt.Clone(), nil
}

func (f *fakeSource) put(id int64, title string, updated int64, origin string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flt := folder.Template()
	flt.ID = id
	flt.Title = title
	flt.UpdatedTime = updated
	f.filters[id] = flt
	f.revs[id] = store.Revision{Updated: updated, Origin: origin}
}

func (f *fakeSource) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.filters, id)
	delete(f.revs, id)
}

func (f *fakeSource) failGet(id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr == nil {
		f.getErr = map[int64]error{}
	}
	if err == nil {
		delete(f.getErr, id)
		return
	}
	f.getErr[id] = err
}

// vanish bumps the revision of id but drops the row, as if it was deleted
// between the revision scan and the read.
func (f *fakeSource) vanish(id int64, updated int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.filters, id)
	f.revs[id] = store.Revision{Updated: updated}
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt, ok := <-w.Events():
		if !ok {
			t.Fatalf("events channel closed")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func TestWatcherEmitsChangesAfterBaseline(t *testing.T) {
	src := newFakeSource()
	src.put(1, "Work", 10, "a")
	w := NewWatcher(src, "", 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	src.put(1, "Play", 11, "b")
	evt := nextEvent(t, w)
	if evt.Kind != KindFilter || evt.Err != nil {
		t.Fatalf("expected filter event, got %#v", evt)
	}
	f, ok := evt.Data.(folder.Filter)
	if !ok || f.Title != "Play" {
		t.Fatalf("expected updated folder, got %#v", evt.Data)
	}
	if evt.Origin != "b" {
		t.Fatalf("expected origin b, got %q", evt.Origin)
	}

	src.remove(1)
	evt = nextEvent(t, w)
	if evt.Kind != KindFilterRemoved {
		t.Fatalf("expected removal, got %#v", evt)
	}
	if id, _ := evt.Data.(int64); id != 1 {
		t.Fatalf("expected removed id 1, got %v", evt.Data)
	}
}

func TestWatcherReportsErrors(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(src, "", 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	boom := errors.New("boom")
	src.fail(boom)
	evt := nextEvent(t, w)
	if !errors.Is(evt.Err, boom) {
		t.Fatalf("expected error event, got %#v", evt)
	}
}

func TestWatcherRetriesFailedReadWithoutRemoval(t *testing.T) {
	src := newFakeSource()
	src.put(1, "Work", 10, "a")
	w := NewWatcher(src, "", 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	boom := errors.New("boom")
	src.failGet(1, boom)
	src.put(1, "Play", 11, "b")
	evt := nextEvent(t, w)
	if !errors.Is(evt.Err, boom) {
		t.Fatalf("expected read error, got %#v", evt)
	}

	src.failGet(1, nil)
	for {
		evt = nextEvent(t, w)
		if evt.Err != nil {
			continue
		}
		if evt.Kind == KindFilterRemoved {
			t.Fatalf("expected failed read to keep the folder known, got removal")
		}
		f, _ := evt.Data.(folder.Filter)
		if evt.Kind != KindFilter || f.Title != "Play" {
			t.Fatalf("expected retried update, got %#v", evt)
		}
		return
	}
}

func TestWatcherReportsFolderDeletedBetweenReads(t *testing.T) {
	src := newFakeSource()
	src.put(1, "Work", 10, "a")
	src.put(2, "Play", 10, "a")
	w := NewWatcher(src, "", 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	src.vanish(1, 11)
	evt := nextEvent(t, w)
	if evt.Kind != KindFilterRemoved {
		t.Fatalf("expected removal, got %#v", evt)
	}
	if id, _ := evt.Data.(int64); id != 1 {
		t.Fatalf("expected removed id 1, got %v", evt.Data)
	}

	src.put(2, "Play 2", 12, "b")
	evt = nextEvent(t, w)
	f, _ := evt.Data.(folder.Filter)
	if evt.Kind != KindFilter || f.ID != 2 {
		t.Fatalf("expected only folder 2 to change next, got %#v", evt)
	}
}

func TestWatcherStopClosesEvents(t *testing.T) {
	w := NewWatcher(newFakeSource(), "", time.Hour)
	w.Stop()
	w.Wait()
	if _, ok := <-w.Events(); ok {
		t.Fatalf("expected closed channel after stop")
	}
}

func TestWatcherWithStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folders.db")
	s := testutil.OpenStoreAt(t, path, 10)

	w := NewWatcher(s, path, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	base := folder.Template()
	base.Title = "Fresh"
	created, err := s.Create(ctx, base)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w.Poke()
	evt := testutil.Receive(t, w.Events(), 2*time.Second)
	f, _ := evt.Data.(folder.Filter)
	if evt.Kind != KindFilter || f.ID != created.ID {
		t.Fatalf("expected event for created folder, got %#v", evt)
	}
	if evt.Origin != s.Replica() {
		t.Fatalf("expected origin %q, got %q", s.Replica(), evt.Origin)
	}
}

func TestWatcherSeesOtherReplica(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folders.db")
	local := testutil.OpenStoreAt(t, path, 10)
	remote := testutil.OpenStoreAt(t, path, 10)

	base := folder.Template()
	base.Title = "Work"
	created, err := local.Create(ctx, base)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := NewWatcher(local, path, 20*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	created.Title = "Renamed"
	if _, err := remote.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	evt := testutil.Receive(t, w.Events(), 2*time.Second)
	f, _ := evt.Data.(folder.Filter)
	if f.Title != "Renamed" || evt.Origin != remote.Replica() {
		t.Fatalf("expected remote rename, got %#v", evt)
	}
}
