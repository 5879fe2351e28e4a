// Package peers resolves the chats referenced by a folder before its edit
// panel becomes interactive.
package peers

import (
	"context"
	"fmt"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"github.com/atomicstack/folderctl/internal/state"
	"golang.org/x/sync/errgroup"
)

// Directory looks up peers by id.
type Directory interface {
	Peers(ctx context.Context, ids []int64) (map[int64]folder.Peer, error)
}

// Resolver fills a PeerStore from a Directory.
type Resolver struct {
	dir   Directory
	cache state.PeerStore
}

func NewResolver(dir Directory, cache state.PeerStore) *Resolver {
	return &Resolver{dir: dir, cache: cache}
}

// Resolve loads every uncached peer referenced by f, looking up the three
// peer lists in parallel. It returns the number of peers added to the cache.
func (r *Resolver) Resolve(ctx context.Context, f folder.Filter) (int, error) {
	missing := r.cache.Missing(f.AllPeerIDs())
	events.Peers.Resolve(f.ID, len(missing))
	if len(missing) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	counts := make([]int, len(folder.PeerCategories))
	for i, category := range folder.PeerCategories {
		g.Go(func() error {
			n, err := r.ResolveMissing(ctx, f, category)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	events.Peers.Resolved(f.ID, total)
	return total, nil
}

// ResolveMissing loads the uncached peers of one list.
func (r *Resolver) ResolveMissing(ctx context.Context, f folder.Filter, category folder.PeerCategory) (int, error) {
	ids := r.cache.Missing(f.Peers(category))
	if len(ids) == 0 {
		return 0, nil
	}
	found, err := r.dir.Peers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", category, err)
	}
	n := 0
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			// Unknown chats still render, under their id.
			p = folder.Peer{ID: id, Name: fmt.Sprintf("#%d", id)}
		}
		r.cache.Put(p)
		n++
	}
	return n, nil
}

// Names returns display names for ids, taken from the cache.
func (r *Resolver) Names(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.cache.Get(id); ok {
			out = append(out, p.Name)
			continue
		}
		out = append(out, fmt.Sprintf("#%d", id))
	}
	return out
}
