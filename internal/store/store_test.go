package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/folderctl/internal/folder"
)

func openTestStore(t *testing.T, maxFilters int) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "folders.db"), maxFilters)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newFilter(title string) folder.Filter {
	f := folder.Template()
	f.Title = title
	return f
}

func TestCreateGetRoundTrip(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	in := newFilter(" Work ")
	in.SetFlag(folder.FlagGroups, true)
	in.IncludePeerIDs = []int64{3, 1, 2}

	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if created.Title != "Work" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !folder.Equal(created, got) {
		t.Fatalf("expected stored folder %#v, got %#v", created, got)
	}
	if got.UpdatedTime != created.UpdatedTime {
		t.Fatalf("expected updated time %d, got %d", created.UpdatedTime, got.UpdatedTime)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t, 10)
	if _, err := s.Get(context.Background(), 99); !errors.Is(err, folder.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateQuota(t *testing.T) {
	s := openTestStore(t, 2)
	ctx := context.Background()
	for _, title := range []string{"a", "b"} {
		if _, err := s.Create(ctx, newFilter(title)); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	if _, err := s.Create(ctx, newFilter("c")); !errors.Is(err, folder.ErrTooManyFilters) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestUpdatePeerLimit(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	created, err := s.Create(ctx, newFilter("big"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ids := make([]int64, folder.MaxPeersPerFolder+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	created.IncludePeerIDs = ids
	if _, err := s.Update(ctx, created); !errors.Is(err, folder.ErrTooManyFilters) {
		t.Fatalf("expected peer limit error, got %v", err)
	}
}

func TestWritesRejectEmptyTitle(t *testing.T) {
	s := openTestStore(t, 10)
	if _, err := s.Create(context.Background(), newFilter("  ")); !errors.Is(err, folder.ErrTitleRequired) {
		t.Fatalf("expected title error, got %v", err)
	}
}

func TestUpdatedTimeStrictlyIncreases(t *testing.T) {
	s := openTestStore(t, 10)
	fixed := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	created, err := s.Create(ctx, newFilter("a"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	prev := created.UpdatedTime
	for i := 0; i < 3; i++ {
		created.Title = "a" + string(rune('0'+i))
		updated, err := s.Update(ctx, created)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.UpdatedTime <= prev {
			t.Fatalf("expected updated time above %d, got %d", prev, updated.UpdatedTime)
		}
		prev = updated.UpdatedTime
	}
}

func TestUpdateKeepsKindAndInvites(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	in := newFilter("shared")
	in.Kind = folder.KindChatlist
	in.HasMyInvites = true
	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created.Kind = folder.KindPlain
	created.HasMyInvites = false
	created.Title = "renamed"
	updated, err := s.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Kind != folder.KindChatlist || !updated.HasMyInvites {
		t.Fatalf("expected kind and invites preserved, got %#v", updated)
	}
	if updated.Title != "renamed" {
		t.Fatalf("expected renamed title, got %q", updated.Title)
	}
}

func TestDeleteAndRevisions(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	a, _ := s.Create(ctx, newFilter("a"))
	b, _ := s.Create(ctx, newFilter("b"))

	revs, err := s.Revisions(ctx)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}
	if revs[a.ID].Origin != s.Replica() {
		t.Fatalf("expected origin %q, got %q", s.Replica(), revs[a.ID].Origin)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, folder.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("expected only b left, got %#v", list)
	}
}

func TestSeparateHandlesHaveDistinctReplicas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()
	first, err := Open(ctx, path, 10)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer first.Close()
	second, err := Open(ctx, path, 10)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer second.Close()
	if first.Replica() == second.Replica() {
		t.Fatalf("expected distinct replica ids")
	}
	created, err := first.Create(ctx, newFilter("x"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := second.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get through second handle: %v", err)
	}
	if got.Title != "x" {
		t.Fatalf("expected shared database, got %#v", got)
	}
}

func TestPeers(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	if err := s.PutPeers(ctx, []folder.Peer{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob", Kind: "bot"}}); err != nil {
		t.Fatalf("put peers: %v", err)
	}
	if err := s.PutPeers(ctx, []folder.Peer{{ID: 1, Name: "Alicia"}}); err != nil {
		t.Fatalf("replace peer: %v", err)
	}
	got, err := s.Peers(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("peers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 known peers, got %d", len(got))
	}
	if got[1].Name != "Alicia" || got[2].Kind != "bot" {
		t.Fatalf("unexpected peers %#v", got)
	}
	empty, err := s.Peers(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty lookup, got %v %v", empty, err)
	}
}

func TestSeed(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()
	if err := s.Seed(ctx, filepath.Join("testdata", "seed.yaml")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 seeded folders, got %d", len(list))
	}
	work := list[0]
	if work.Title != "Work" || !work.HasFlag(folder.FlagGroups) || !work.HasFlag(folder.FlagExcludeMuted) {
		t.Fatalf("unexpected first folder %#v", work)
	}
	if len(work.PinnedPeerIDs) != 1 || len(work.IncludePeerIDs) != 2 {
		t.Fatalf("unexpected peers on first folder %#v", work)
	}
	if !list[1].IsChatlist() || list[1].HasMyInvites {
		t.Fatalf("expected shared chatlist without invites, got %#v", list[1])
	}
	peers, err := s.Peers(ctx, []int64{101, 201})
	if err != nil || len(peers) != 2 {
		t.Fatalf("expected seeded peers, got %v %v", peers, err)
	}

	if err := s.Seed(ctx, filepath.Join("testdata", "seed.yaml")); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, _ := s.List(ctx)
	if len(again) != 3 {
		t.Fatalf("expected reseed to be a no-op, got %d folders", len(again))
	}
}
