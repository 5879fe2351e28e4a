package store

import (
	"context"
	"fmt"
	"os"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by Seed.
type SeedFile struct {
	Peers   []folder.Peer   `yaml:"peers"`
	Filters []folder.Filter `yaml:"filters"`
}

// Seed loads a YAML fixture into an empty store. Stores that already hold
// folders are left untouched so that reruns are harmless.
func (s *Store) Seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}

	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := s.PutPeers(ctx, seed.Peers); err != nil {
		return err
	}
	if len(existing) > 0 {
		events.Store.Seed(path, 0, len(seed.Peers))
		return nil
	}
	for i, f := range seed.Filters {
		if f.Kind == "" {
			f.Kind = folder.KindPlain
		}
		if _, err := s.Create(ctx, f); err != nil {
			return fmt.Errorf("seed filter %d (%q): %w", i, f.Title, err)
		}
	}
	events.Store.Seed(path, len(seed.Filters), len(seed.Peers))
	return nil
}
