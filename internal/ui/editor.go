package ui

import (
	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/session"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorFocus int

const (
	focusTitle editorFocus = iota
	focusFlags
)

func (f editorFocus) String() string {
	if f == focusFlags {
		return "flags"
	}
	return "title"
}

// editor is the folder panel. It implements session.Surface so that session
// effects are replayed onto it through session.Apply.
type editor struct {
	sess  *session.Session
	title textinput.Model
	focus editorFocus

	flagCursor  int
	activeFlags map[folder.Flag]bool

	saveVisible    bool
	saveEnabled    bool
	optionsVisible bool

	alert    string
	alertErr bool
	titleErr string
	hint     string
	dialog   session.Dialog
	closed   bool
}

var _ session.Surface = (*editor)(nil)

func newEditor(sess *session.Session) *editor {
	ti := textinput.New()
	ti.Placeholder = "Folder name"
	ti.CharLimit = folder.MaxTitleLength
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	if styles.Cursor != nil {
		ti.Cursor.Style = *styles.Cursor
	}
	if styles.FilterPlaceholder != nil {
		ti.PlaceholderStyle = *styles.FilterPlaceholder
	}
	ti.Focus()
	return &editor{
		sess:        sess,
		title:       ti,
		activeFlags: map[folder.Flag]bool{},
	}
}

func (e *editor) heading() string {
	if e.sess.Mode() == session.ModeCreate {
		return "New Folder"
	}
	return "Edit Folder"
}

func (e *editor) loading() bool {
	return e.sess.Phase() == session.PhaseLoading
}

// apply replays fx and reports whether the panel closed.
func (e *editor) apply(fx session.Effects) bool {
	session.Apply(e, e.sess, fx)
	return e.closed
}

func (e *editor) SetSaveVisible(v bool)    { e.saveVisible = v }
func (e *editor) SetSaveEnabled(v bool)    { e.saveEnabled = v }
func (e *editor) SetOptionsVisible(v bool) { e.optionsVisible = v }

func (e *editor) SetTitle(title string) {
	e.title.SetValue(title)
	e.title.CursorEnd()
	e.titleErr = ""
}

func (e *editor) RenderFlags(flags []folder.Flag) {
	e.activeFlags = make(map[folder.Flag]bool, len(flags))
	for _, f := range flags {
		e.activeFlags[f] = true
	}
}

func (e *editor) Alert(n session.Notice, err error) {
	e.alert = session.NoticeText(n, err)
	e.alertErr = n != session.NoticeNone
	if n == session.NoticeTitleRequired {
		e.titleErr = e.alert
		e.focusField(focusTitle)
	}
}

func (e *editor) OpenDialog(d session.Dialog) { e.dialog = d }

func (e *editor) Close() { e.closed = true }

func (e *editor) clearAlert() {
	e.alert = ""
	e.alertErr = false
}

func (e *editor) focusField(f editorFocus) {
	e.focus = f
	if f == focusTitle {
		e.title.Focus()
		return
	}
	e.title.Blur()
}

func (e *editor) toggleFocus() {
	if e.focus == focusTitle {
		e.focusField(focusFlags)
		return
	}
	e.focusField(focusTitle)
}

func (e *editor) moveFlag(delta int) {
	n := len(folder.AllFlags)
	e.flagCursor = (e.flagCursor + delta + n) % n
}

func (e *editor) currentFlag() folder.Flag {
	return folder.AllFlags[e.flagCursor]
}

// updateTitle forwards a key to the title input and reports the new value
// when it changed.
func (e *editor) updateTitle(msg tea.Msg) (tea.Cmd, string, bool) {
	before := e.title.Value()
	updated, cmd := e.title.Update(msg)
	e.title = updated
	after := e.title.Value()
	if after == before {
		return cmd, after, false
	}
	e.titleErr = ""
	return cmd, after, true
}
