package session

import "github.com/atomicstack/folderctl/internal/folder"

// Notice is a user-facing outcome the surface should announce.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeTitleRequired
	NoticeLimitReached
	NoticeSaveFailed
	NoticeDeleteFailed
)

// Dialog is a modal the surface should open.
type Dialog int

const (
	DialogNone Dialog = iota
	DialogConfirmDelete
	DialogShareInvite
)

// Effects is the outcome of a session transition. Transitions never touch
// the UI directly; an adapter hands Effects to Apply.
type Effects struct {
	Visibility   Visibility
	RefreshTitle bool
	RefreshFlags bool
	Close        bool
	Notice       Notice
	Dialog       Dialog
	Err          error
}

// Surface is the part of the panel a session drives.
type Surface interface {
	SetSaveVisible(bool)
	SetSaveEnabled(bool)
	SetOptionsVisible(bool)
	SetTitle(string)
	RenderFlags([]folder.Flag)
	Alert(Notice, error)
	OpenDialog(Dialog)
	Close()
}

// Empty reports whether fx asks for nothing.
func (fx Effects) Empty() bool {
	return fx.Visibility == (Visibility{}) &&
		!fx.RefreshTitle && !fx.RefreshFlags && !fx.Close &&
		fx.Notice == NoticeNone && fx.Dialog == DialogNone && fx.Err == nil
}

// Apply replays effects onto surface. Empty effects change nothing, and a
// closing transition skips every other update because the panel is going
// away.
func Apply(surface Surface, s *Session, fx Effects) {
	if surface == nil || s == nil || fx.Empty() {
		return
	}
	if fx.Close {
		surface.Close()
		return
	}
	surface.SetSaveVisible(fx.Visibility.SaveVisible)
	surface.SetSaveEnabled(fx.Visibility.SaveEnabled)
	surface.SetOptionsVisible(fx.Visibility.OptionsVisible)
	working := s.Working()
	if fx.RefreshTitle {
		surface.SetTitle(working.Title)
	}
	if fx.RefreshFlags {
		surface.RenderFlags(s.VisibleFlags())
	}
	if fx.Notice != NoticeNone || fx.Err != nil {
		surface.Alert(fx.Notice, fx.Err)
	}
	if fx.Dialog != DialogNone {
		surface.OpenDialog(fx.Dialog)
	}
}
