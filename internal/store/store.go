// Package store persists folders and the peer directory in SQLite. Every
// write stamps the folder with a strictly increasing updated time and the
// writing replica's id so watchers in other processes can tell pushes apart.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Revision identifies the last write of one folder.
type Revision struct {
	Updated int64
	Origin  string
}

// Store is a SQLite-backed folder store. It is safe for concurrent use.
type Store struct {
	db         *sql.DB
	path       string
	replica    string
	maxFilters int

	mu  sync.Mutex
	now func() time.Time
}

// Open opens or creates the database at path. maxFilters bounds how many
// folders Create accepts.
func Open(ctx context.Context, path string, maxFilters int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure store: %w", err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	s := &Store{
		db:         db,
		path:       path,
		replica:    uuid.NewString(),
		maxFilters: maxFilters,
		now:        time.Now,
	}
	events.Store.Open(path, s.replica)
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS filters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			flags_json TEXT NOT NULL,
			pinned_json TEXT NOT NULL,
			include_json TEXT NOT NULL,
			exclude_json TEXT NOT NULL,
			has_my_invites INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL,
			updated_ms INTEGER NOT NULL,
			origin TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS peers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Replica returns the id stamped on writes made through this handle.
func (s *Store) Replica() string { return s.replica }

const selectFilter = `SELECT id, kind, title, flags_json, pinned_json, include_json, exclude_json, has_my_invites, position, updated_ms FROM filters`

// List returns every folder in display order.
func (s *Store) List(ctx context.Context) ([]folder.Filter, error) {
	rows, err := s.db.QueryContext(ctx, selectFilter+` ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()
	var out []folder.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("list filters: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return out, nil
}

// Get loads one folder.
func (s *Store) Get(ctx context.Context, id int64) (folder.Filter, error) {
	row := s.db.QueryRowContext(ctx, selectFilter+` WHERE id = ?`, id)
	f, err := scanFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return folder.Filter{}, fmt.Errorf("filter %d: %w", id, folder.ErrNotFound)
	}
	if err != nil {
		return folder.Filter{}, fmt.Errorf("get filter %d: %w", id, err)
	}
	return f, nil
}

// Create inserts f as a new folder and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, f folder.Filter) (folder.Filter, error) {
	if err := checkWrite(f); err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	defer tx.Rollback()

	var count int
	var maxPos sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*), MAX(position) FROM filters`).Scan(&count, &maxPos); err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	if count >= s.maxFilters {
		return folder.Filter{}, fmt.Errorf("create filter: %w", folder.ErrTooManyFilters)
	}
	updated, err := s.tick(ctx, tx)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	cols, err := encodeColumns(f)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	kind := f.Kind
	if kind == "" {
		kind = folder.KindPlain
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO filters (kind, title, flags_json, pinned_json, include_json, exclude_json, has_my_invites, position, updated_ms, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(kind), strings.TrimSpace(f.Title), cols.flags, cols.pinned, cols.include, cols.exclude, boolInt(f.HasMyInvites), maxPos.Int64+1, updated, s.replica)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return folder.Filter{}, fmt.Errorf("create filter: %w", err)
	}

	out := f.Clone()
	out.ID = id
	out.Kind = kind
	out.Title = strings.TrimSpace(f.Title)
	out.UpdatedTime = updated
	out.LocalID = maxPos.Int64 + 1
	events.Store.Create(id, out.Title)
	return out, nil
}

// Update overwrites an existing folder and returns the stored result.
func (s *Store) Update(ctx context.Context, f folder.Filter) (folder.Filter, error) {
	if err := checkWrite(f); err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	defer tx.Rollback()

	var position int64
	err = tx.QueryRowContext(ctx, `SELECT position FROM filters WHERE id = ?`, f.ID).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, folder.ErrNotFound)
	}
	if err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	updated, err := s.tick(ctx, tx)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	cols, err := encodeColumns(f)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	_, err = tx.ExecContext(ctx, `UPDATE filters SET title = ?, flags_json = ?, pinned_json = ?, include_json = ?, exclude_json = ?, updated_ms = ?, origin = ? WHERE id = ?`,
		strings.TrimSpace(f.Title), cols.flags, cols.pinned, cols.include, cols.exclude, updated, s.replica, f.ID)
	if err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return folder.Filter{}, fmt.Errorf("update filter %d: %w", f.ID, err)
	}
	events.Store.Update(f.ID, updated)

	// Kind and invite ownership are server-side properties and survive the
	// write unchanged.
	return s.Get(ctx, f.ID)
}

// Delete removes a folder.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete filter %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete filter %d: %w", id, folder.ErrNotFound)
	}
	events.Store.Delete(id)
	return nil
}

// Revisions returns the last write of every folder keyed by id.
func (s *Store) Revisions(ctx context.Context) (map[int64]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, updated_ms, origin FROM filters`)
	if err != nil {
		return nil, fmt.Errorf("read revisions: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]Revision)
	for rows.Next() {
		var id int64
		var rev Revision
		if err := rows.Scan(&id, &rev.Updated, &rev.Origin); err != nil {
			return nil, fmt.Errorf("read revisions: %w", err)
		}
		out[id] = rev
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read revisions: %w", err)
	}
	return out, nil
}

// tick advances the store clock and returns the new updated time. The clock
// lives in meta so that it keeps increasing across processes and deletes.
func (s *Store) tick(ctx context.Context, tx *sql.Tx) (int64, error) {
	var last int64
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'clock'`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, err
	default:
		if _, err := fmt.Sscan(raw, &last); err != nil {
			return 0, fmt.Errorf("parse store clock %q: %w", raw, err)
		}
	}
	next := s.now().UnixMilli()
	if next <= last {
		next = last + 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (k, v) VALUES ('clock', ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, fmt.Sprint(next)); err != nil {
		return 0, err
	}
	return next, nil
}

func checkWrite(f folder.Filter) error {
	if err := folder.ValidateTitle(f.Title); err != nil {
		return err
	}
	if len(f.PinnedPeerIDs)+len(f.IncludePeerIDs) > folder.MaxPeersPerFolder {
		return fmt.Errorf("%d chats: %w", len(f.PinnedPeerIDs)+len(f.IncludePeerIDs), folder.ErrTooManyFilters)
	}
	return nil
}

type columns struct {
	flags, pinned, include, exclude string
}

func encodeColumns(f folder.Filter) (columns, error) {
	flags := make(map[folder.Flag]bool, len(f.Flags))
	for k, v := range f.Flags {
		if v {
			flags[k] = true
		}
	}
	var cols columns
	var err error
	if cols.flags, err = encodeJSON(flags); err != nil {
		return columns{}, err
	}
	if cols.pinned, err = encodeJSON(nonNil(f.PinnedPeerIDs)); err != nil {
		return columns{}, err
	}
	if cols.include, err = encodeJSON(nonNil(f.IncludePeerIDs)); err != nil {
		return columns{}, err
	}
	if cols.exclude, err = encodeJSON(nonNil(f.ExcludePeerIDs)); err != nil {
		return columns{}, err
	}
	return cols, nil
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFilter(row scanner) (folder.Filter, error) {
	var (
		f                               folder.Filter
		kind                            string
		flags, pinned, include, exclude string
		invites                         int
	)
	if err := row.Scan(&f.ID, &kind, &f.Title, &flags, &pinned, &include, &exclude, &invites, &f.LocalID, &f.UpdatedTime); err != nil {
		return folder.Filter{}, err
	}
	f.Kind = folder.Kind(kind)
	f.HasMyInvites = invites != 0
	f.Flags = map[folder.Flag]bool{}
	if err := json.Unmarshal([]byte(flags), &f.Flags); err != nil {
		return folder.Filter{}, fmt.Errorf("decode flags: %w", err)
	}
	for dst, raw := range map[*[]int64]string{&f.PinnedPeerIDs: pinned, &f.IncludePeerIDs: include, &f.ExcludePeerIDs: exclude} {
		ids := []int64{}
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return folder.Filter{}, fmt.Errorf("decode peers: %w", err)
		}
		*dst = ids
	}
	return f, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
