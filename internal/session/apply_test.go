package session

import (
	"testing"

	"github.com/atomicstack/folderctl/internal/folder"
)

type recordingSurface struct {
	saveVisible    bool
	saveEnabled    bool
	optionsVisible bool
	title          string
	flags          []folder.Flag
	notice         Notice
	dialog         Dialog
	closed         bool
	calls          int
}

func (r *recordingSurface) SetSaveVisible(v bool)    { r.saveVisible = v; r.calls++ }
func (r *recordingSurface) SetSaveEnabled(v bool)    { r.saveEnabled = v; r.calls++ }
func (r *recordingSurface) SetOptionsVisible(v bool) { r.optionsVisible = v; r.calls++ }
func (r *recordingSurface) SetTitle(t string)        { r.title = t; r.calls++ }
func (r *recordingSurface) RenderFlags(f []folder.Flag) {
	r.flags = f
	r.calls++
}
func (r *recordingSurface) Alert(n Notice, err error) { r.notice = n; r.calls++ }
func (r *recordingSurface) OpenDialog(d Dialog)       { r.dialog = d; r.calls++ }
func (r *recordingSurface) Close()                    { r.closed = true; r.calls++ }

func TestApplyEnterPaintsPanel(t *testing.T) {
	f := loaded(7, "Work")
	f.SetFlag(folder.FlagGroups, true)
	s := readyEdit(t, f)
	surface := &recordingSurface{}
	Apply(surface, s, s.Enter())
	if surface.title != "Work" {
		t.Fatalf("expected title Work, got %q", surface.title)
	}
	if !surface.optionsVisible || surface.saveVisible {
		t.Fatalf("expected options only on a clean edit panel, got %#v", surface)
	}
	if len(surface.flags) != 1 || surface.flags[0] != folder.FlagGroups {
		t.Fatalf("expected groups flag rendered, got %v", surface.flags)
	}
}

func TestApplyEmptyEffectsIsNoOp(t *testing.T) {
	s := readyEdit(t, loaded(7, "Work"))
	surface := &recordingSurface{optionsVisible: true}
	Apply(surface, s, Effects{})
	if surface.calls != 0 || !surface.optionsVisible {
		t.Fatalf("expected no surface calls, got %d", surface.calls)
	}
}

func TestApplyCloseSkipsOtherUpdates(t *testing.T) {
	s := readyEdit(t, loaded(7, "Work"))
	surface := &recordingSurface{}
	Apply(surface, s, Effects{Close: true, RefreshTitle: true, Notice: NoticeSaveFailed})
	if !surface.closed || surface.calls != 1 {
		t.Fatalf("expected a lone close, got %d calls", surface.calls)
	}
}

func TestApplyAlertAndDialog(t *testing.T) {
	s := readyEdit(t, loaded(7, "Work"))
	surface := &recordingSurface{}
	Apply(surface, s, Effects{Visibility: s.Visibility(), Notice: NoticeLimitReached, Dialog: DialogConfirmDelete})
	if surface.notice != NoticeLimitReached {
		t.Fatalf("expected limit notice, got %v", surface.notice)
	}
	if surface.dialog != DialogConfirmDelete {
		t.Fatalf("expected delete dialog, got %v", surface.dialog)
	}
}
