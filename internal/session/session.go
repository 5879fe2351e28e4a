// Package session holds the edit-session controller for the folder panel: it
// tracks the working copy against the last known server state, serialises
// saves, and defers pushed updates that race an outstanding save.
//
// A Session is owned by a single event loop and is not safe for concurrent
// use. Every transition returns Effects for the UI adapter instead of calling
// into the UI itself.
package session

import (
	"strings"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging/events"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseClosed
)

// Op selects the persistence call for a save.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

func (o Op) String() string {
	if o == OpUpdate {
		return "update"
	}
	return "create"
}

// SaveRequest is the request a confirm hands to the persistence service.
type SaveRequest struct {
	Seq        int
	Op         Op
	Filter     folder.Filter
	CloseAfter bool
}

// Session is the state machine behind one open panel.
type Session struct {
	mode  Mode
	phase Phase

	original folder.Filter
	working  folder.Filter

	saveInFlight bool
	closeArmed   bool
	saveSeq      int
	sent         folder.Filter
	postponed    *folder.Filter

	deleting bool
}

// NewCreate opens a create session on the empty template. It is ready
// immediately.
func NewCreate() *Session {
	tmpl := folder.Template()
	s := &Session{
		mode:     ModeCreate,
		phase:    PhaseReady,
		original: tmpl,
		working:  tmpl.Clone(),
	}
	events.Session.Open(s.mode.String(), 0)
	return s
}

// NewEdit opens an edit session on a loaded folder. The session stays in
// PhaseLoading until MarkReady is called once missing peers are resolved.
func NewEdit(loaded folder.Filter) *Session {
	s := &Session{
		mode:     ModeEdit,
		phase:    PhaseLoading,
		original: loaded.Clone(),
		working:  loaded.Clone(),
	}
	events.Session.Open(s.mode.String(), loaded.ID)
	return s
}

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// ID returns the id of the folder being edited, 0 in create mode.
func (s *Session) ID() int64 { return s.original.ID }

// Original returns a copy of the comparison baseline.
func (s *Session) Original() folder.Filter { return s.original.Clone() }

// Working returns a copy of the draft.
func (s *Session) Working() folder.Filter { return s.working.Clone() }

// SaveInFlight reports whether a save is outstanding.
func (s *Session) SaveInFlight() bool { return s.saveInFlight }

// Postponed returns the buffered pushed update, if any.
func (s *Session) Postponed() (folder.Filter, bool) {
	if s.postponed == nil {
		return folder.Filter{}, false
	}
	return s.postponed.Clone(), true
}

// Deleting reports whether a delete request is outstanding.
func (s *Session) Deleting() bool { return s.deleting }

// Closed reports whether the panel has been dismissed.
func (s *Session) Closed() bool { return s.phase == PhaseClosed }

// Dirty reports whether the draft diverges from the baseline.
func (s *Session) Dirty() bool {
	return folder.IsDirty(s.original, s.working)
}

// Visibility returns the current header actions.
func (s *Session) Visibility() Visibility {
	return NextVisibility(s.mode, s.Dirty(), s.saveInFlight)
}

// VisibleFlags returns the flags the panel shows as active. A create panel
// starts with none.
func (s *Session) VisibleFlags() []folder.Flag {
	if s.mode == ModeCreate && !s.Dirty() {
		return nil
	}
	return s.working.ActiveFlags()
}

// MarkReady finishes the edit entry once peers are resolved.
func (s *Session) MarkReady() Effects {
	if s.phase != PhaseLoading {
		return Effects{}
	}
	s.phase = PhaseReady
	events.Session.Ready(s.original.ID)
	return s.refresh()
}

// Enter returns the effects that paint a freshly opened, ready panel.
func (s *Session) Enter() Effects {
	if s.phase != PhaseReady {
		return Effects{}
	}
	return s.refresh()
}

// SetTitle applies a title edit. Input beyond the limit is truncated.
func (s *Session) SetTitle(title string) Effects {
	if !s.editable() {
		return Effects{}
	}
	s.working.Title = folder.ClampTitle(title)
	return Effects{Visibility: s.Visibility()}
}

// ToggleFlag flips a flag on the draft.
func (s *Session) ToggleFlag(flag folder.Flag) Effects {
	if !s.editable() {
		return Effects{}
	}
	s.working.SetFlag(flag, !s.working.HasFlag(flag))
	return Effects{Visibility: s.Visibility(), RefreshFlags: true}
}

// SetPeers replaces one of the draft's peer lists, as returned by a peer
// picker.
func (s *Session) SetPeers(category folder.PeerCategory, ids []int64) Effects {
	if !s.editable() {
		return Effects{}
	}
	s.working.SetPeers(category, ids)
	return Effects{Visibility: s.Visibility()}
}

// Confirm starts a save of the draft. It refuses while the trimmed title is
// empty and is a no-op while another save is outstanding. A create session
// always closes after a successful save because it cannot turn into an edit
// session in place.
func (s *Session) Confirm(closeAfter bool) (SaveRequest, Effects, bool) {
	if s.phase != PhaseReady {
		return SaveRequest{}, Effects{}, false
	}
	if s.saveInFlight {
		events.Session.ConfirmIgnored(s.original.ID)
		return SaveRequest{}, Effects{}, false
	}
	if err := folder.ValidateTitle(s.working.Title); err != nil {
		return SaveRequest{}, Effects{Visibility: s.Visibility(), Notice: NoticeTitleRequired, Err: err}, false
	}
	op := OpUpdate
	if s.mode == ModeCreate {
		op = OpCreate
		closeAfter = true
	}
	s.saveSeq++
	s.saveInFlight = true
	s.closeArmed = closeAfter
	s.sent = s.working.Clone()
	events.Session.Confirm(s.original.ID, op.String(), closeAfter)
	req := SaveRequest{Seq: s.saveSeq, Op: op, Filter: s.sent.Clone(), CloseAfter: closeAfter}
	return req, Effects{Visibility: s.Visibility()}, true
}

// Settle resolves the save started by the confirm that produced seq. Calls
// for an older seq or for a closed session are ignored.
func (s *Session) Settle(seq int, saved *folder.Filter, err error) Effects {
	if s.phase == PhaseClosed || !s.saveInFlight || seq != s.saveSeq {
		events.Session.StaleSettle(s.original.ID, seq)
		return Effects{}
	}
	s.saveInFlight = false
	postponed := s.postponed
	s.postponed = nil

	if err != nil {
		s.closeArmed = false
		fx := Effects{}
		if postponed != nil {
			fx = s.reconcile(*postponed)
		}
		fx.Visibility = s.Visibility()
		fx.Notice = Classify(err)
		fx.Err = err
		events.Session.SaveFailed(s.original.ID, err)
		return fx
	}

	fx := Effects{}
	if s.mode == ModeEdit {
		baseline := s.sent
		if saved != nil {
			baseline = *saved
		}
		// Without edits during the save the draft follows the stored form,
		// so normalisation such as a trimmed title does not read as dirty.
		if folder.Equal(s.working, s.sent) {
			s.working = baseline.Clone()
			fx.RefreshTitle = true
			fx.RefreshFlags = true
		}
		s.original = baseline.Clone()
	}
	events.Session.Saved(s.original.ID)

	if postponed != nil {
		fx = s.reconcile(*postponed)
	}
	if s.closeArmed {
		s.closeArmed = false
		s.phase = PhaseClosed
		events.Session.Close(s.original.ID, "saved")
		return Effects{Close: true}
	}
	fx.Visibility = s.Visibility()
	return fx
}

// ExternalUpdate handles a pushed change for the folder being edited. While
// a save is outstanding the update is buffered and replaces any earlier
// buffered update. Otherwise it becomes the new baseline and discards
// unsaved edits.
func (s *Session) ExternalUpdate(f folder.Filter) Effects {
	if s.phase == PhaseClosed || s.mode == ModeCreate || f.ID != s.original.ID {
		return Effects{}
	}
	if s.saveInFlight {
		dup := f.Clone()
		s.postponed = &dup
		events.Session.Postpone(f.ID)
		return Effects{}
	}
	if s.phase == PhaseLoading {
		s.original = f.Clone()
		s.working = f.Clone()
		return Effects{}
	}
	fx := s.reconcile(f)
	fx.Visibility = s.Visibility()
	return fx
}

// RequestDelete decides how a delete from the options menu proceeds. A
// shared chatlist without own invites cannot be deleted directly and opens
// the invite dialog instead.
func (s *Session) RequestDelete() Effects {
	if s.phase != PhaseReady || s.mode != ModeEdit || s.deleting {
		return Effects{}
	}
	if s.original.IsChatlist() && !s.original.HasMyInvites {
		events.Session.DeleteRedirect(s.original.ID)
		return Effects{Visibility: s.Visibility(), Dialog: DialogShareInvite}
	}
	return Effects{Visibility: s.Visibility(), Dialog: DialogConfirmDelete}
}

// BeginDelete marks a confirmed delete as outstanding and returns the id to
// delete. It refuses while another delete is outstanding.
func (s *Session) BeginDelete() (int64, bool) {
	if s.phase != PhaseReady || s.mode != ModeEdit || s.deleting {
		return 0, false
	}
	if s.original.IsChatlist() && !s.original.HasMyInvites {
		return 0, false
	}
	s.deleting = true
	events.Session.Delete(s.original.ID)
	return s.original.ID, true
}

// DeleteSettled resolves an outstanding delete. Success closes the panel.
func (s *Session) DeleteSettled(err error) Effects {
	if s.phase == PhaseClosed || !s.deleting {
		return Effects{}
	}
	s.deleting = false
	if err != nil {
		events.Session.DeleteFailed(s.original.ID, err)
		return Effects{Visibility: s.Visibility(), Notice: NoticeDeleteFailed, Err: err}
	}
	s.phase = PhaseClosed
	events.Session.Close(s.original.ID, "deleted")
	return Effects{Close: true}
}

// Close dismisses the panel. Later callbacks become no-ops.
func (s *Session) Close() {
	if s.phase == PhaseClosed {
		return
	}
	s.phase = PhaseClosed
	s.postponed = nil
	s.closeArmed = false
	events.Session.Close(s.original.ID, "dismissed")
}

func (s *Session) editable() bool {
	return s.phase == PhaseReady
}

func (s *Session) reconcile(f folder.Filter) Effects {
	s.original = f.Clone()
	s.working = f.Clone()
	events.Session.Reconcile(f.ID, strings.TrimSpace(f.Title))
	return Effects{RefreshTitle: true, RefreshFlags: true}
}

func (s *Session) refresh() Effects {
	return Effects{Visibility: s.Visibility(), RefreshTitle: true, RefreshFlags: true}
}
