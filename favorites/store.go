package favorites

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fractview/codec"
	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/fractal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is a stored favorite.
type Entry struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Data        *fractal.Data
	ID          string
	Title       string
	Description string
	Icon        []byte
}

// Favorite returns the entry in its persisted form.
func (e *Entry) Favorite() *codec.Favorite {
	return &codec.Favorite{Data: e.Data, Description: e.Description, Icon: e.Icon}
}

// Store keeps favorites in a SQLite database, one row per title.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies pending
// migrations. ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, storeError(err, "open database")
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	Logger().Debug("favorites store opened", zap.String("path", path))
	return s, nil
}

// versionRows is the part of *sql.Rows read by appliedVersions.
type versionRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func appliedVersions(rows versionRows) (map[string]bool, error) {
	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, storeError(err, "scan migration")
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "query migrations")
	}
	return applied, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return storeError(err, "create migrations table")
	}

	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return storeError(err, "query migrations")
	}
	applied, err := appliedVersions(rows)
	rows.Close()
	if err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return storeError(err, "read migrations")
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		if applied[version] {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return storeError(err, "read migration "+name)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return storeError(err, "begin migration")
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return storeError(err, "apply migration "+name)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, s.now().UnixNano()); err != nil {
			tx.Rollback()
			return storeError(err, "record migration "+name)
		}
		if err := tx.Commit(); err != nil {
			return storeError(err, "commit migration "+name)
		}
		Logger().Info("applied migration", zap.String("version", version))
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores f under title, replacing an existing favorite with the same
// title but keeping its ID.
func (s *Store) Put(ctx context.Context, title string, f *codec.Favorite) (*Entry, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fverrors.InvalidInput(fverrors.PhaseStore, "favorite title is empty")
	}
	doc, err := codec.MarshalData(f.Data)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &Entry{
		ID:          uuid.NewString(),
		Title:       title,
		Description: f.Description,
		Icon:        f.Icon,
		Data:        f.Data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var id string
	var created int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO favorites (id, title, description, icon, fractal, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (title) DO UPDATE SET
			description = excluded.description,
			icon = excluded.icon,
			fractal = excluded.fractal,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`, e.ID, title, e.Description, e.Icon, string(doc), now.UnixNano(), now.UnixNano()).Scan(&id, &created)
	if err != nil {
		return nil, storeError(err, "put favorite")
	}
	e.ID = id
	e.CreatedAt = time.Unix(0, created).UTC()

	Logger().Debug("favorite stored", zap.String("title", title), zap.String("id", id))
	return e, nil
}

// Get returns the favorite with the given title.
func (s *Store) Get(ctx context.Context, title string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, icon, fractal, created_at, updated_at
		FROM favorites
		WHERE title = ?
	`, title)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fverrors.NotFound(fverrors.PhaseStore, "favorite", title)
	}
	return e, err
}

// List returns all favorites, oldest first.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, icon, fractal, created_at, updated_at
		FROM favorites
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, storeError(err, "list favorites")
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "list favorites")
	}
	return out, nil
}

// Delete removes the favorite with the given title.
func (s *Store) Delete(ctx context.Context, title string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE title = ?`, title)
	if err != nil {
		return storeError(err, "delete favorite")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(err, "delete favorite")
	}
	if n == 0 {
		return fverrors.NotFound(fverrors.PhaseStore, "favorite", title)
	}
	return nil
}

// Count returns the number of favorites.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&n); err != nil {
		return 0, storeError(err, "count favorites")
	}
	return n, nil
}

// Import stores every entry of a favorites collection. Entries that fail
// are skipped; their errors are combined in the returned error.
func (s *Store) Import(ctx context.Context, entries []codec.Titled) (int, error) {
	var errs error
	stored := 0
	for _, e := range entries {
		if _, err := s.Put(ctx, e.Title, e.Favorite); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		stored++
	}
	if errs != nil {
		Logger().Warn("favorites import incomplete",
			zap.Int("stored", stored),
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Error(errs))
	}
	return stored, errs
}

// Export returns all favorites as a collection, oldest first.
func (s *Store) Export(ctx context.Context) ([]codec.Titled, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]codec.Titled, len(entries))
	for i, e := range entries {
		out[i] = codec.Titled{Title: e.Title, Favorite: e.Favorite()}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e                Entry
		doc              string
		created, updated int64
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Icon, &doc, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeError(err, "scan favorite")
	}

	data, err := codec.UnmarshalData([]byte(doc))
	if err != nil {
		return nil, fverrors.New(fverrors.PhaseStore, fverrors.KindInvalidData).
			Param(e.Title).Cause(err).Detail("stored fractal").Build()
	}
	e.Data = data
	e.CreatedAt = time.Unix(0, created).UTC()
	e.UpdatedAt = time.Unix(0, updated).UTC()
	return &e, nil
}

func storeError(err error, detail string) error {
	return fverrors.Wrap(fverrors.PhaseStore, fverrors.KindInvalidData, err, detail)
}
