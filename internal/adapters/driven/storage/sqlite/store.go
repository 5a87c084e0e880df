package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/assetsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all state store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.assetsync/data/state.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".assetsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	// Open database with WAL mode for better concurrency.
	// Foreign keys are enabled per connection through the DSN.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// BaselineStore returns a BaselineStore interface backed by this store.
func (s *Store) BaselineStore() driven.BaselineStore {
	return &baselineStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// CacheIndexStore returns a CacheIndexStore interface backed by this store.
func (s *Store) CacheIndexStore() driven.CacheIndexStore {
	return &cacheIndexStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Baseline Store ====================

// baselineStore implements driven.BaselineStore.
type baselineStore struct {
	store *Store
}

var _ driven.BaselineStore = (*baselineStore)(nil)

// Load returns the region's baseline ordered by logical name.
func (s *baselineStore) Load(ctx context.Context, region string) (*domain.Manifest, error) {
	var exists int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM baseline_regions WHERE region = ?", region).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading baseline: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT logical_name, content_hash, url, size, raw
		FROM baselines WHERE region = ?
		ORDER BY logical_name
	`, region)
	if err != nil {
		return nil, fmt.Errorf("querying baseline: %w", err)
	}
	defer rows.Close()

	var entries []domain.ContentDescriptor
	for rows.Next() {
		var d domain.ContentDescriptor
		var raw int
		if err := rows.Scan(&d.LogicalName, &d.ContentHash, &d.URL, &d.Size, &raw); err != nil {
			return nil, fmt.Errorf("scanning baseline entry: %w", err)
		}
		d.Raw = raw != 0
		entries = append(entries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating baseline: %w", err)
	}
	return domain.NewManifest(region, entries), nil
}

// Apply upserts entries into the region's baseline.
func (s *baselineStore) Apply(ctx context.Context, region string, entries []domain.ContentDescriptor) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO baseline_regions (region, updated_at) VALUES (?, ?)
			ON CONFLICT(region) DO UPDATE SET updated_at = excluded.updated_at
		`, region, time.Now().UTC()); err != nil {
			return fmt.Errorf("saving baseline region: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO baselines (region, logical_name, content_hash, url, size, raw)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(region, logical_name) DO UPDATE SET
				content_hash = excluded.content_hash,
				url = excluded.url,
				size = excluded.size,
				raw = excluded.raw
		`)
		if err != nil {
			return fmt.Errorf("preparing baseline upsert: %w", err)
		}
		defer stmt.Close()

		for _, d := range entries {
			if _, err := stmt.ExecContext(ctx, region, d.LogicalName, d.ContentHash,
				d.URL, d.Size, boolToInt(d.Raw)); err != nil {
				return fmt.Errorf("saving baseline entry %s: %w", d.LogicalName, err)
			}
		}
		return nil
	})
}

// Remove deletes logical names from the region's baseline.
func (s *baselineStore) Remove(ctx context.Context, region string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"DELETE FROM baselines WHERE region = ? AND logical_name = ?")
		if err != nil {
			return fmt.Errorf("preparing baseline delete: %w", err)
		}
		defer stmt.Close()

		for _, name := range names {
			if _, err := stmt.ExecContext(ctx, region, name); err != nil {
				return fmt.Errorf("removing baseline entry %s: %w", name, err)
			}
		}
		return nil
	})
}

// Reset deletes the region's baseline.
func (s *baselineStore) Reset(ctx context.Context, region string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM baseline_regions WHERE region = ?", region)
	if err != nil {
		return fmt.Errorf("resetting baseline: %w", err)
	}
	return nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or replaces a run record.
func (s *runStore) Save(ctx context.Context, run domain.RunRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, region, started_at, finished_at, fetched, skipped, failed,
			raw_copied, groups_total, decode_failed, artifacts, bytes_fetched)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			region = excluded.region,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			fetched = excluded.fetched,
			skipped = excluded.skipped,
			failed = excluded.failed,
			raw_copied = excluded.raw_copied,
			groups_total = excluded.groups_total,
			decode_failed = excluded.decode_failed,
			artifacts = excluded.artifacts,
			bytes_fetched = excluded.bytes_fetched
	`, run.ID, run.Region, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Fetched, run.Skipped, run.Failed, run.RawCopied,
		run.Groups, run.DecodeFailed, run.Artifacts, run.BytesFetched)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. An empty region lists all regions.
func (s *runStore) List(ctx context.Context, region string, limit int) ([]domain.RunRecord, error) {
	query := `
		SELECT id, region, started_at, finished_at, fetched, skipped, failed,
			raw_copied, groups_total, decode_failed, artifacts, bytes_fetched
		FROM runs WHERE (? = '' OR region = ?)
		ORDER BY started_at DESC, id
	`
	args := []any{region, region}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var r domain.RunRecord
		var startedAt, finishedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Region, &startedAt, &finishedAt,
			&r.Fetched, &r.Skipped, &r.Failed, &r.RawCopied,
			&r.Groups, &r.DecodeFailed, &r.Artifacts, &r.BytesFetched); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if startedAt.Valid {
			r.StartedAt = startedAt.Time
		}
		if finishedAt.Valid {
			r.FinishedAt = finishedAt.Time
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ==================== Cache Index Store ====================

// cacheIndexStore implements driven.CacheIndexStore.
type cacheIndexStore struct {
	store *Store
}

var _ driven.CacheIndexStore = (*cacheIndexStore)(nil)

// Put stores or updates a cache entry keyed by region and logical name.
func (s *cacheIndexStore) Put(ctx context.Context, entry domain.CacheEntry) error {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cache_entries (region, logical_name, content_hash, local_path, digest, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(region, logical_name) DO UPDATE SET
			content_hash = excluded.content_hash,
			local_path = excluded.local_path,
			digest = excluded.digest,
			fetched_at = excluded.fetched_at
	`, entry.Region, entry.LogicalName, entry.ContentHash, entry.LocalPath,
		entry.Digest, entry.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// List returns a region's cache entries ordered by logical name.
func (s *cacheIndexStore) List(ctx context.Context, region string) ([]domain.CacheEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT region, logical_name, content_hash, local_path, digest, fetched_at
		FROM cache_entries WHERE region = ?
		ORDER BY logical_name
	`, region)
	if err != nil {
		return nil, fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CacheEntry
	for rows.Next() {
		var e domain.CacheEntry
		var fetchedAt sql.NullTime
		if err := rows.Scan(&e.Region, &e.LogicalName, &e.ContentHash,
			&e.LocalPath, &e.Digest, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		if fetchedAt.Valid {
			e.FetchedAt = fetchedAt.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache entries: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
