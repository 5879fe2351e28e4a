package events

import "github.com/atomicstack/folderctl/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Open(mode string, id int64) {
	logging.Trace("session.open", map[string]interface{}{"mode": mode, "id": id})
}

func (SessionTracer) Ready(id int64) {
	logging.Trace("session.ready", map[string]interface{}{"id": id})
}

func (SessionTracer) Confirm(id int64, op string, closeAfter bool) {
	logging.Trace("session.confirm", map[string]interface{}{"id": id, "op": op, "close": closeAfter})
}

func (SessionTracer) ConfirmIgnored(id int64) {
	logging.Trace("session.confirm.ignored", map[string]interface{}{"id": id})
}

func (SessionTracer) StaleSettle(id int64, seq int) {
	logging.Trace("session.settle.stale", map[string]interface{}{"id": id, "seq": seq})
}

func (SessionTracer) Saved(id int64) {
	logging.Trace("session.saved", map[string]interface{}{"id": id})
}

func (SessionTracer) SaveFailed(id int64, err error) {
	logging.Trace("session.save.failed", map[string]interface{}{"id": id, "error": errString(err)})
}

func (SessionTracer) Postpone(id int64) {
	logging.Trace("session.postpone", map[string]interface{}{"id": id})
}

func (SessionTracer) Reconcile(id int64, title string) {
	logging.Trace("session.reconcile", map[string]interface{}{"id": id, "title": title})
}

func (SessionTracer) DeleteRedirect(id int64) {
	logging.Trace("session.delete.redirect", map[string]interface{}{"id": id})
}

func (SessionTracer) Delete(id int64) {
	logging.Trace("session.delete", map[string]interface{}{"id": id})
}

func (SessionTracer) DeleteFailed(id int64, err error) {
	logging.Trace("session.delete.failed", map[string]interface{}{"id": id, "error": errString(err)})
}

func (SessionTracer) Close(id int64, reason string) {
	logging.Trace("session.close", map[string]interface{}{"id": id, "reason": reason})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
