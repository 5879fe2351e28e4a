// Package testutil holds helpers shared by tests that need a real store.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/folderctl/internal/store"
)

// SeedFixture is the seed file under internal/store/testdata.
const SeedFixture = "internal/store/testdata/seed.yaml"

// OpenStore opens an empty store in a temporary directory. The store is
// closed when the test ends.
func OpenStore(t *testing.T, maxFilters int) *store.Store {
	t.Helper()
	return OpenStoreAt(t, filepath.Join(t.TempDir(), "folders.db"), maxFilters)
}

// OpenStoreAt opens a store handle at path. Two handles on one path act as
// separate replicas.
func OpenStoreAt(t *testing.T, path string, maxFilters int) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), path, maxFilters)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeededStore opens a store loaded with the repository seed fixture.
func SeededStore(t *testing.T, maxFilters int) *store.Store {
	t.Helper()
	s := OpenStore(t, maxFilters)
	if err := s.Seed(context.Background(), filepath.Join(RepoRoot(t), SeedFixture)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

// Receive waits for a value on ch, failing the test after timeout or when the
// channel closes.
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %s", timeout)
	}
	var zero T
	return zero
}

// RepoRoot walks up from the working directory to the module root.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
