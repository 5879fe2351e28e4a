package state

import (
	"sync"

	"github.com/atomicstack/folderctl/internal/folder"
)

// PeerStore caches resolved peer directory entries. Resolution writes from
// several goroutines, so unlike the other stores it is locked.
type PeerStore interface {
	Get(id int64) (folder.Peer, bool)
	Put(...folder.Peer)
	Missing(ids []int64) []int64
	Len() int
}

type peerStore struct {
	mu    sync.RWMutex
	peers map[int64]folder.Peer
}

func NewPeerStore() PeerStore {
	return &peerStore{peers: map[int64]folder.Peer{}}
}

func (p *peerStore) Get(id int64) (folder.Peer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	peer, ok := p.peers[id]
	return peer, ok
}

func (p *peerStore) Put(peers ...folder.Peer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, peer := range peers {
		p.peers[peer.ID] = peer
	}
}

// Missing returns the ids not yet cached, in the given order.
func (p *peerStore) Missing(ids []int64) []int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []int64
	for _, id := range ids {
		if _, ok := p.peers[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (p *peerStore) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.peers)
}
