package ui

import (
	"unicode"

	"github.com/atomicstack/folderctl/internal/logging/events"
	"github.com/atomicstack/folderctl/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.String() == "ctrl+c" {
		if m.editor != nil {
			m.editor.sess.Close()
		}
		return tea.Quit
	}
	if m.mode == ModeEditor && m.editor != nil {
		return m.handleEditorKey(key)
	}
	return m.handlePickerKey(key)
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	if m.loading {
		return nil
	}
	switch msg.String() {
	case "up":
		m.moveCursor(-1)
		return nil
	case "down":
		m.moveCursor(1)
		return nil
	case "pgup":
		m.list.MoveCursorPage(m.maxVisibleItems(), -1)
		m.syncViewport()
		return nil
	case "pgdown":
		m.list.MoveCursorPage(m.maxVisibleItems(), 1)
		m.syncViewport()
		return nil
	case "home":
		m.list.MoveCursorHome()
		m.syncViewport()
		return nil
	case "end":
		m.list.MoveCursorEnd()
		m.syncViewport()
		return nil
	case "enter":
		entry, ok := m.list.Current()
		if !ok {
			return nil
		}
		return m.openEdit(entry.ID)
	case "ctrl+n":
		return m.openCreate()
	case "esc":
		if m.list.ClearFilter() {
			events.Filter.Cleared()
			m.syncViewport()
			return nil
		}
		return tea.Quit
	}
	_, cmd := m.handleTextInput(msg)
	return cmd
}

func (m *Model) moveCursor(delta int) {
	if m.list.MoveCursor(delta) {
		events.UI.PickerCursor(m.list.Cursor)
	}
	m.syncViewport()
}

func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+u":
		if !m.list.ClearFilter() {
			return false, nil
		}
		m.filterEdited()
		events.Filter.Cleared()
		return true, nil
	case "ctrl+w":
		if !m.list.DeleteFilterWordBackward() {
			return false, nil
		}
		m.filterEdited()
		events.Filter.Backspace(m.list.Filter)
		return true, nil
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		if !m.list.DeleteFilterRuneBackward() {
			return false, nil
		}
		m.filterEdited()
		events.Filter.Backspace(m.list.Filter)
		return true, nil
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false, nil
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false, nil
			}
		}
		return m.appendToFilter(string(msg.Runes)), nil
	case tea.KeySpace:
		return m.appendToFilter(" "), nil
	}
	return false, nil
}

func (m *Model) appendToFilter(text string) bool {
	if !m.list.InsertFilterText(text) {
		return false
	}
	m.filterEdited()
	events.Filter.Append(m.list.Filter)
	return true
}

func (m *Model) filterEdited() {
	m.forceClearInfo()
	m.errMsg = ""
	m.syncViewport()
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	e := m.editor
	if e.dialog != session.DialogNone {
		return m.handleDialogKey(msg)
	}
	if msg.String() == "esc" {
		return m.closeEditor()
	}
	if e.loading() {
		return nil
	}
	switch msg.String() {
	case "enter":
		return m.confirm(true)
	case "ctrl+s":
		return m.confirm(false)
	case "ctrl+x":
		if !e.optionsVisible {
			return nil
		}
		return m.applyEffects(e.sess.RequestDelete())
	case "tab", "shift+tab":
		e.toggleFocus()
		events.UI.Focus(e.focus.String())
		return nil
	}
	if e.focus == focusFlags {
		switch msg.String() {
		case "up", "k":
			e.moveFlag(-1)
		case "down", "j":
			e.moveFlag(1)
		case " ", "x":
			e.clearAlert()
			return m.applyEffects(e.sess.ToggleFlag(e.currentFlag()))
		}
		return nil
	}
	cmd, value, changed := e.updateTitle(msg)
	if !changed {
		return cmd
	}
	e.clearAlert()
	if closeCmd := m.applyEffects(e.sess.SetTitle(value)); closeCmd != nil {
		return closeCmd
	}
	return cmd
}

// confirm starts a save. A clean edit panel has nothing to save, so enter
// just closes it.
func (m *Model) confirm(closeAfter bool) tea.Cmd {
	e := m.editor
	sess := e.sess
	if sess.Mode() == session.ModeEdit && !sess.Dirty() && !sess.SaveInFlight() {
		if closeAfter {
			return m.closeEditor()
		}
		return nil
	}
	req, fx, ok := sess.Confirm(closeAfter)
	if !ok {
		return m.applyEffects(fx)
	}
	e.clearAlert()
	m.applyEffects(fx)
	return m.saveCmd(sess, req)
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	e := m.editor
	kind := e.dialog
	var accepted bool
	switch msg.String() {
	case "y", "Y", "enter":
		accepted = true
	case "n", "N", "esc":
		accepted = false
	default:
		return nil
	}
	e.dialog = session.DialogNone
	events.UI.Dialog(dialogName(kind), accepted)
	if kind != session.DialogConfirmDelete || !accepted {
		return nil
	}
	id, ok := e.sess.BeginDelete()
	if !ok {
		return nil
	}
	return m.deleteCmd(e.sess, id)
}

func dialogName(d session.Dialog) string {
	switch d {
	case session.DialogConfirmDelete:
		return "confirm-delete"
	case session.DialogShareInvite:
		return "share-invite"
	default:
		return "none"
	}
}
