package ui

import (
	"fmt"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"github.com/atomicstack/folderctl/internal/session"
	"github.com/atomicstack/folderctl/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// Every reply that belongs to a panel carries the session it was issued
// for. A reply whose session is no longer the open one is dropped.

type foldersLoadedMsg struct {
	folders []folder.Filter
	err     error
}

type filterLoadedMsg struct {
	id     int64
	filter folder.Filter
	err    error
}

type peersResolvedMsg struct {
	sess  *session.Session
	count int
	err   error
}

type saveSettledMsg struct {
	sess  *session.Session
	seq   int
	saved *folder.Filter
	err   error
}

type deleteSettledMsg struct {
	sess *session.Session
	err  error
}

func (m *Model) loadFoldersCmd() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	svc := m.svc
	ctx := m.ctx
	return m.bus.Execute(command.Request{
		ID:    "folders:list",
		Label: "list folders",
		Run: func() tea.Msg {
			list, err := svc.List(ctx)
			if err != nil {
				logging.Error(err)
			}
			return foldersLoadedMsg{folders: list, err: err}
		},
	})
}

func (m *Model) loadFilterCmd(id int64) tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return m.bus.Execute(command.Request{
		ID:    fmt.Sprintf("folder:get:%d", id),
		Label: "load folder",
		Run: func() tea.Msg {
			f, err := svc.Get(ctx, id)
			if err != nil {
				logging.Error(err)
			}
			return filterLoadedMsg{id: id, filter: f, err: err}
		},
	})
}

func (m *Model) resolvePeersCmd(sess *session.Session) tea.Cmd {
	resolver := m.peers
	ctx := m.ctx
	f := sess.Original()
	return m.bus.Execute(command.Request{
		ID:    fmt.Sprintf("peers:resolve:%d", f.ID),
		Label: "resolve peers",
		Run: func() tea.Msg {
			if resolver == nil {
				return peersResolvedMsg{sess: sess}
			}
			n, err := resolver.Resolve(ctx, f)
			if err != nil {
				logging.Error(err)
			}
			return peersResolvedMsg{sess: sess, count: n, err: err}
		},
	})
}

func (m *Model) saveCmd(sess *session.Session, req session.SaveRequest) tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return m.bus.Execute(command.Request{
		ID:    fmt.Sprintf("folder:%s:%d", req.Op, req.Seq),
		Label: "save folder",
		Run: func() tea.Msg {
			var (
				saved folder.Filter
				err   error
			)
			switch req.Op {
			case session.OpCreate:
				saved, err = svc.Create(ctx, req.Filter)
			default:
				saved, err = svc.Update(ctx, req.Filter)
			}
			if err != nil {
				return saveSettledMsg{sess: sess, seq: req.Seq, err: err}
			}
			return saveSettledMsg{sess: sess, seq: req.Seq, saved: &saved}
		},
	})
}

func (m *Model) deleteCmd(sess *session.Session, id int64) tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return m.bus.Execute(command.Request{
		ID:    fmt.Sprintf("folder:delete:%d", id),
		Label: "delete folder",
		Run: func() tea.Msg {
			err := svc.Delete(ctx, id)
			if err != nil {
				logging.Error(err)
			}
			return deleteSettledMsg{sess: sess, err: err}
		},
	})
}

func (m *Model) handleFoldersLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(foldersLoadedMsg)
	if !ok {
		return nil
	}
	if loaded.err != nil {
		m.errMsg = loaded.err.Error()
		return nil
	}
	m.folders.SetEntries(loaded.folders)
	m.syncList()
	return nil
}

func (m *Model) handleFilterLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(filterLoadedMsg)
	if !ok {
		return nil
	}
	m.loading = false
	m.pendingLabel = ""
	if loaded.err != nil {
		m.errMsg = loaded.err.Error()
		events.Action.Error(loaded.err)
		if m.direct {
			return tea.Quit
		}
		return nil
	}
	m.errMsg = ""
	sess := session.NewEdit(loaded.filter)
	m.editor = newEditor(sess)
	m.mode = ModeEditor
	m.dispatcher.Watch(loaded.id)
	events.UI.PickerEnter(loaded.id, loaded.filter.Title, m.list.Filter)
	return m.resolvePeersCmd(sess)
}

func (m *Model) handlePeersResolvedMsg(msg tea.Msg) tea.Cmd {
	resolved, ok := msg.(peersResolvedMsg)
	if !ok || !m.current(resolved.sess) {
		return nil
	}
	// Unresolved peers render as their id; the panel opens regardless.
	if resolved.err != nil {
		m.setInfo("Some chats could not be loaded")
	}
	m.applyEffects(resolved.sess.MarkReady())
	return nil
}

func (m *Model) handleSaveSettledMsg(msg tea.Msg) tea.Cmd {
	settled, ok := msg.(saveSettledMsg)
	if !ok {
		return nil
	}
	if !m.current(settled.sess) {
		// Closed panels still see their saves land in the folder list.
		settled.sess.Settle(settled.seq, settled.saved, settled.err)
		if settled.err == nil {
			return m.loadFoldersCmd()
		}
		return nil
	}
	_, postponed := settled.sess.Postponed()
	fx := settled.sess.Settle(settled.seq, settled.saved, settled.err)
	if postponed && !fx.Close && (fx.RefreshTitle || fx.RefreshFlags) {
		m.editor.hint = "Updated elsewhere"
	}
	if settled.err != nil {
		if session.Classify(settled.err) == session.NoticeSaveFailed {
			logging.Error(settled.err)
		}
		events.Action.Error(settled.err)
	} else {
		m.editor.clearAlert()
		events.Action.Success("saved")
		if settled.saved != nil {
			m.folders.Upsert(*settled.saved)
			m.syncList()
		}
	}
	if cmd := m.applyEffects(fx); cmd != nil {
		return cmd
	}
	if settled.err == nil {
		return m.loadFoldersCmd()
	}
	return nil
}

func (m *Model) handleDeleteSettledMsg(msg tea.Msg) tea.Cmd {
	settled, ok := msg.(deleteSettledMsg)
	if !ok || !m.current(settled.sess) {
		return nil
	}
	id := settled.sess.ID()
	fx := settled.sess.DeleteSettled(settled.err)
	if settled.err != nil {
		events.Action.Error(settled.err)
		m.applyEffects(fx)
		return nil
	}
	events.Action.Success("deleted")
	m.folders.Remove(id)
	m.syncList()
	if m.verbose {
		m.setInfo("Folder deleted")
	}
	return m.applyEffects(fx)
}

// current reports whether sess is the session behind the open panel.
func (m *Model) current(sess *session.Session) bool {
	return m.editor != nil && sess != nil && m.editor.sess == sess
}

// applyEffects replays fx onto the open panel and closes it when asked.
func (m *Model) applyEffects(fx session.Effects) tea.Cmd {
	if m.editor == nil {
		return nil
	}
	if m.editor.apply(fx) {
		return m.closeEditor()
	}
	return nil
}

// closeEditor dismisses the panel. Launched straight into a panel, closing
// quits; otherwise the picker comes back.
func (m *Model) closeEditor() tea.Cmd {
	if m.editor != nil {
		m.editor.sess.Close()
	}
	m.editor = nil
	m.dispatcher.Unwatch()
	m.mode = ModePicker
	if m.direct {
		return tea.Quit
	}
	return m.loadFoldersCmd()
}

func (m *Model) openCreate() tea.Cmd {
	sess := session.NewCreate()
	m.editor = newEditor(sess)
	m.mode = ModeEditor
	m.dispatcher.Unwatch()
	m.errMsg = ""
	m.applyEffects(sess.Enter())
	return nil
}

func (m *Model) openEdit(id int64) tea.Cmd {
	if m.svc == nil {
		return nil
	}
	m.loading = true
	m.pendingLabel = "Loading folder…"
	return m.loadFilterCmd(id)
}
