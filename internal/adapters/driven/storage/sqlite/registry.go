package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/quaero-labs/quaero/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry is a SQLite-backed document registry.
type Registry struct {
	db   *sql.DB
	path string
}

// NewRegistry creates a registry at the specified data directory.
// If dataDir is empty, defaults to ~/.quaero/data/registry.db.
func NewRegistry(dataDir string) (*Registry, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quaero", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")

	// WAL mode for better concurrency under the HTTP server.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r := &Registry{db: db, path: dbPath}
	if err := r.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return r, nil
}

// Path returns the database file path.
func (r *Registry) Path() string {
	return r.path
}

// Close closes the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Save stores or updates a document record.
func (r *Registry) Save(ctx context.Context, info *domain.DocumentInfo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, file_hash, pages, chunks, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			file_hash = excluded.file_hash,
			pages = excluded.pages,
			chunks = excluded.chunks,
			created_at = excluded.created_at
	`, info.ID, info.Name, info.FileHash, info.Pages, info.Chunks, info.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving document %s: %w", info.ID, err)
	}
	return nil
}

// Get retrieves a document record by ID.
func (r *Registry) Get(ctx context.Context, id string) (*domain.DocumentInfo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, file_hash, pages, chunks, created_at
		FROM documents WHERE id = ?
	`, id)

	info, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return info, nil
}

// List returns all document records, newest first.
func (r *Registry) List(ctx context.Context) ([]domain.DocumentInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, file_hash, pages, chunks, created_at
		FROM documents ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentInfo
	for rows.Next() {
		info, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document record. Missing records are not an error.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanDocument.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.DocumentInfo, error) {
	var info domain.DocumentInfo
	var createdAt string
	if err := row.Scan(&info.ID, &info.Name, &info.FileHash, &info.Pages, &info.Chunks, &createdAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	info.CreatedAt = ts
	return &info, nil
}

// migrate runs all pending migrations.
func (r *Registry) migrate(fsys embed.FS) error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}
