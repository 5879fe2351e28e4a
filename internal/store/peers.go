package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomicstack/folderctl/internal/folder"
)

// Peers looks up directory entries for ids. Unknown ids are absent from the
// result.
func (s *Store) Peers(ctx context.Context, ids []int64) (map[int64]folder.Peer, error) {
	out := make(map[int64]folder.Peer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind FROM peers WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup peers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p folder.Peer
		if err := rows.Scan(&p.ID, &p.Name, &p.Kind); err != nil {
			return nil, fmt.Errorf("lookup peers: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup peers: %w", err)
	}
	return out, nil
}

// PutPeers inserts or replaces directory entries.
func (s *Store) PutPeers(ctx context.Context, peers []folder.Peer) error {
	if len(peers) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put peers: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO peers (id, name, kind) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind`)
	if err != nil {
		return fmt.Errorf("put peers: %w", err)
	}
	defer stmt.Close()
	for _, p := range peers {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Kind); err != nil {
			return fmt.Errorf("put peer %d: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put peers: %w", err)
	}
	return nil
}
