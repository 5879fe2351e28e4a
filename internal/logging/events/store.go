package events

import "github.com/atomicstack/folderctl/internal/logging"

type StoreTracer struct{}

type PushTracer struct{}

type PeerTracer struct{}

var (
	Store = StoreTracer{}
	Push  = PushTracer{}
	Peers = PeerTracer{}
)

func (StoreTracer) Open(path, replica string) {
	logging.Trace("store.open", map[string]interface{}{"path": path, "replica": replica})
}

func (StoreTracer) Create(id int64, title string) {
	logging.Trace("store.create", map[string]interface{}{"id": id, "title": title})
}

func (StoreTracer) Update(id int64, updated int64) {
	logging.Trace("store.update", map[string]interface{}{"id": id, "updated": updated})
}

func (StoreTracer) Delete(id int64) {
	logging.Trace("store.delete", map[string]interface{}{"id": id})
}

func (StoreTracer) Seed(path string, filters, peers int) {
	logging.Trace("store.seed", map[string]interface{}{"path": path, "filters": filters, "peers": peers})
}

func (PushTracer) Received(kind string, id int64, origin string) {
	logging.Trace("push.received", map[string]interface{}{"kind": kind, "id": id, "origin": origin})
}

func (PushTracer) Routed(id int64) {
	logging.Trace("push.routed", map[string]interface{}{"id": id})
}

func (PushTracer) WatchError(err error) {
	logging.Trace("push.error", map[string]interface{}{"error": errString(err)})
}

func (PeerTracer) Resolve(id int64, missing int) {
	logging.Trace("peers.resolve", map[string]interface{}{"id": id, "missing": missing})
}

func (PeerTracer) Resolved(id int64, count int) {
	logging.Trace("peers.resolved", map[string]interface{}{"id": id, "count": count})
}
