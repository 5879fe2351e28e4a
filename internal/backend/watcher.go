package backend

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"github.com/atomicstack/folderctl/internal/store"
	"github.com/fsnotify/fsnotify"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	// KindFilter carries a folder.Filter that was created or changed.
	KindFilter Kind = iota
	// KindFilterRemoved carries the int64 id of a deleted folder.
	KindFilterRemoved
)

func (k Kind) String() string {
	if k == KindFilterRemoved {
		return "filter.removed"
	}
	return "filter"
}

// Event conveys updated data or an error from a backend poll.
type Event struct {
	Kind   Kind
	Data   interface{}
	Origin string
	Err    error
}

// Source is the part of the store the watcher reads.
type Source interface {
	Revisions(ctx context.Context) (map[int64]store.Revision, error)
	Get(ctx context.Context, id int64) (folder.Filter, error)
}

// Watcher polls the store for changed revisions and publishes one event per
// changed folder. Writes to the database directory wake it before the next
// tick.
type Watcher struct {
	src      Source
	path     string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wake   chan struct{}
	wg     sync.WaitGroup

	known map[int64]store.Revision
}

// NewWatcher starts a watcher for src. path is the database file whose
// directory is watched for wake-ups; an empty path disables them.
func NewWatcher(src Source, path string, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		src:      src,
		path:     path,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
		wake:     make(chan struct{}, 1),
	}

	baseErr := w.baseline()
	w.startNotifier()
	w.wg.Add(1)
	go w.poll(baseErr)

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current fetch
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all goroutines have exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Poke requests an immediate revision check.
func (w *Watcher) Poke() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Watcher) startNotifier() {
	if w.path == "" {
		return
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		events.Push.WatchError(err)
		return
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		events.Push.WatchError(err)
		fsw.Close()
		return
	}
	base := filepath.Base(w.path)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fsw.Close()
		for {
			select {
			case <-w.ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if strings.HasPrefix(filepath.Base(ev.Name), base) && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					w.Poke()
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				events.Push.WatchError(err)
			}
		}
	}()
}

func (w *Watcher) poll(baseErr error) {
	defer w.wg.Done()

	throttle := newThrottle(250 * time.Millisecond)

	if baseErr != nil && !w.send(Event{Err: baseErr}) {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		case <-w.wake:
		}
		if !throttle.wait(w.ctx) || !w.check() {
			return
		}
	}
}

// baseline records the revisions present at start. Those folders are loaded
// by the caller, so they are not announced.
func (w *Watcher) baseline() error {
	revs, err := w.src.Revisions(w.ctx)
	if err != nil {
		w.known = map[int64]store.Revision{}
		return err
	}
	w.known = revs
	return nil
}

// check diffs the current revisions against the last seen ones and emits
// events. It returns false once the watcher is stopping.
func (w *Watcher) check() bool {
	revs, err := w.src.Revisions(w.ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		return w.send(Event{Err: err})
	}
	next := make(map[int64]store.Revision, len(revs))
	for id, rev := range revs {
		prev, ok := w.known[id]
		if ok && prev.Updated == rev.Updated {
			next[id] = rev
			continue
		}
		f, err := w.src.Get(w.ctx, id)
		if errors.Is(err, folder.ErrNotFound) {
			// Deleted between the two reads.
			continue
		}
		if err != nil {
			if !w.send(Event{Err: err}) {
				return false
			}
			if ok {
				next[id] = prev
			}
			continue
		}
		events.Push.Received(KindFilter.String(), id, rev.Origin)
		if !w.send(Event{Kind: KindFilter, Data: f, Origin: rev.Origin}) {
			return false
		}
		next[id] = rev
	}
	for id := range w.known {
		if _, ok := next[id]; ok {
			continue
		}
		events.Push.Received(KindFilterRemoved.String(), id, "")
		if !w.send(Event{Kind: KindFilterRemoved, Data: id}) {
			return false
		}
	}
	w.known = next
	return true
}

func (w *Watcher) send(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
