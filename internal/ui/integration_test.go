package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/folderctl/internal/backend"
	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/peers"
	"github.com/atomicstack/folderctl/internal/state"
	"github.com/atomicstack/folderctl/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

func TestIntegrationEditSeededFolder(t *testing.T) {
	st := testutil.SeededStore(t, 10)
	h := NewHarness(NewModel(Options{
		Folders: st,
		Peers:   peers.NewResolver(st, state.NewPeerStore()),
		Replica: st.Replica(),
	}))
	h.Init()
	view := h.View()
	for _, want := range []string{"Work", "Shared", "Mine"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in picker, got:\n%s", want, view)
		}
	}

	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	view = h.View()
	if !strings.Contains(view, "Included (2): Alice, Bob") {
		t.Fatalf("expected resolved peers in panel, got:\n%s", view)
	}
	if !strings.Contains(view, "Pinned (1): Release Notes") {
		t.Fatalf("expected pinned channel in panel, got:\n%s", view)
	}

	h.Send(runes("+"))
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if h.Model().Mode() != ModePicker {
		t.Fatalf("expected picker after save and close")
	}
	list, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].Title != "Work+" {
		t.Fatalf("expected stored title Work+, got %q", list[0].Title)
	}
	if !list[0].HasFlag(folder.FlagGroups) {
		t.Fatalf("expected flags preserved through the save")
	}
}

func TestIntegrationTrimmedTitleSettlesClean(t *testing.T) {
	st := testutil.SeededStore(t, 10)
	h := NewHarness(NewModel(Options{
		Folders: st,
		Peers:   peers.NewResolver(st, state.NewPeerStore()),
		Replica: st.Replica(),
	}))
	h.Init()
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	h.Send(runes(" "))
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	e := h.Model().editor
	if h.Model().Mode() != ModeEditor || e == nil {
		t.Fatalf("expected panel to stay open after ctrl+s")
	}
	if e.sess.Dirty() {
		t.Fatalf("expected clean panel after save, got working %q original %q", e.sess.Working().Title, e.sess.Original().Title)
	}
	if e.saveVisible || !e.optionsVisible {
		t.Fatalf("expected options instead of save after the save settled")
	}
	if got := e.title.Value(); got != "Work" {
		t.Fatalf("expected stored title Work in the input, got %q", got)
	}
}

func TestIntegrationQuotaFromStore(t *testing.T) {
	st := testutil.SeededStore(t, 3)
	h := NewHarness(NewModel(Options{Folders: st, Replica: st.Replica(), StartCreate: true}))
	h.Init()
	h.Send(runes("Fourth"))
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(h.View(), "Folder limit reached") {
		t.Fatalf("expected limit notice from the store quota, got:\n%s", h.View())
	}
}

func TestIntegrationRemoteWriteReachesPanel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folders.db")
	local := testutil.OpenStoreAt(t, path, 10)
	remote := testutil.OpenStoreAt(t, path, 10)
	ctx := context.Background()

	base := folder.Template()
	base.Title = "Work"
	created, err := local.Create(ctx, base)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := backend.NewWatcher(local, path, 20*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	h := NewHarness(NewModel(Options{Folders: local, Replica: local.Replica(), StartFilter: created.ID}))
	h.Init()
	if h.Model().Mode() != ModeEditor {
		t.Fatalf("expected the panel open")
	}

	created.Title = "Remote"
	if _, err := remote.Update(ctx, created); err != nil {
		t.Fatalf("remote update: %v", err)
	}
	evt := testutil.Receive(t, w.Events(), 2*time.Second)
	h.Send(backendEventMsg{event: evt})

	e := h.Model().editor
	if e.title.Value() != "Remote" {
		t.Fatalf("expected remote title in the panel, got %q", e.title.Value())
	}
	if !strings.Contains(h.View(), "Updated elsewhere") {
		t.Fatalf("expected updated elsewhere hint, got:\n%s", h.View())
	}
}
