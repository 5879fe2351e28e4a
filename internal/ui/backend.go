package ui

import (
	"github.com/atomicstack/folderctl/internal/backend"
	"github.com/atomicstack/folderctl/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(src EventSource) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-src.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	if evt.Err != nil {
		m.backendLastErr = evt.Err.Error()
		events.Push.WatchError(evt.Err)
		return nil
	}
	m.backendLastErr = ""

	res := m.dispatcher.Handle(evt)
	if res.FoldersUpdated {
		m.syncList()
	}
	if m.editor == nil {
		return nil
	}
	if res.Removed {
		m.setInfo("Folder was deleted elsewhere")
		return m.closeEditor()
	}
	if res.Update == nil {
		return nil
	}
	fx := m.editor.sess.ExternalUpdate(*res.Update)
	if fx.RefreshTitle || fx.RefreshFlags {
		m.editor.hint = "Updated elsewhere"
	}
	return m.applyEffects(fx)
}
