package peers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/state"
)

type fakeDirectory struct {
	mu    sync.Mutex
	known map[int64]folder.Peer
	calls int
	err   error
}

func (d *fakeDirectory) Peers(_ context.Context, ids []int64) (map[int64]folder.Peer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	out := map[int64]folder.Peer{}
	for _, id := range ids {
		if p, ok := d.known[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func sample() folder.Filter {
	f := folder.Template()
	f.ID = 9
	f.PinnedPeerIDs = []int64{1}
	f.IncludePeerIDs = []int64{2, 3}
	f.ExcludePeerIDs = []int64{4}
	return f
}

func TestResolveFillsCache(t *testing.T) {
	dir := &fakeDirectory{known: map[int64]folder.Peer{
		1: {ID: 1, Name: "Alice"},
		2: {ID: 2, Name: "Bob"},
		4: {ID: 4, Name: "Spam"},
	}}
	cache := state.NewPeerStore()
	r := NewResolver(dir, cache)

	n, err := r.Resolve(context.Background(), sample())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 peers resolved, got %d", n)
	}
	if dir.calls != 3 {
		t.Fatalf("expected one lookup per list, got %d", dir.calls)
	}
	names := r.Names([]int64{1, 3, 99})
	if names[0] != "Alice" || names[1] != "#3" || names[2] != "#99" {
		t.Fatalf("unexpected names %v", names)
	}

	n, err = r.Resolve(context.Background(), sample())
	if err != nil || n != 0 {
		t.Fatalf("expected cached resolve to be a no-op, got %d %v", n, err)
	}
	if dir.calls != 3 {
		t.Fatalf("expected no further lookups, got %d", dir.calls)
	}
}

func TestResolvePropagatesErrors(t *testing.T) {
	boom := errors.New("offline")
	r := NewResolver(&fakeDirectory{err: boom}, state.NewPeerStore())
	if _, err := r.Resolve(context.Background(), sample()); !errors.Is(err, boom) {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestResolveNothingMissing(t *testing.T) {
	dir := &fakeDirectory{}
	r := NewResolver(dir, state.NewPeerStore())
	if n, err := r.Resolve(context.Background(), folder.Template()); n != 0 || err != nil {
		t.Fatalf("expected empty resolve, got %d %v", n, err)
	}
	if dir.calls != 0 {
		t.Fatalf("expected no lookups")
	}
}
