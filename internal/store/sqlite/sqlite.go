// Package sqlite is the embedded store backend. It keeps every project
// in one items table keyed by project name, which maps the per-project
// collection model onto a single database file with no server to run.
// This is the default backend for local use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	name       TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id             TEXT PRIMARY KEY,
	project        TEXT NOT NULL,
	type           TEXT NOT NULL,
	epic_id        TEXT NOT NULL DEFAULT '',
	feature_id     TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL,
	descr          TEXT NOT NULL DEFAULT '',
	uat            TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	reference_file TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_project_type   ON items(project, type);
CREATE INDEX IF NOT EXISTS idx_items_epic_id        ON items(project, epic_id);
CREATE INDEX IF NOT EXISTS idx_items_feature_id     ON items(project, feature_id);
CREATE INDEX IF NOT EXISTS idx_items_status         ON items(project, status);
CREATE INDEX IF NOT EXISTS idx_items_type_status    ON items(project, type, status);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
`

// Store is the SQLite-backed store.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed,
// applies pragmas and the schema, and returns the store.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list projects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) CreateProject(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: create project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func (s *Store) DropProject(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: drop project: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("sqlite: drop project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE project = ?`, name); err != nil {
		return fmt.Errorf("sqlite: drop project items: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Project(name string) store.Collection {
	return &collection{db: s.db, project: name}
}

func (s *Store) Users() store.UserCollection {
	return &userCollection{db: s.db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

type collection struct {
	db      *sql.DB
	project string
}

const itemColumns = `id, type, epic_id, feature_id, title, descr, uat, status, reference_file, created_at, updated_at`

// whereClause translates a store.Filter into SQL conditions. The
// project predicate is always first.
func (c *collection) whereClause(f store.Filter) (string, []any) {
	conds := []string{"project = ?"}
	args := []any{c.project}

	if f.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, f.ID)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.EpicID != "" {
		conds = append(conds, "epic_id = ?")
		args = append(args, f.EpicID)
	}
	if f.FeatureID != "" {
		conds = append(conds, "feature_id = ?")
		args = append(args, f.FeatureID)
	}
	if len(f.FeatureIDIn) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.FeatureIDIn)), ",")
		conds = append(conds, "feature_id IN ("+placeholders+")")
		for _, id := range f.FeatureIDIn {
			args = append(args, id)
		}
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Query != "" {
		conds = append(conds, `(instr(lower(title), lower(?)) > 0
			OR instr(lower(descr), lower(?)) > 0
			OR instr(lower(uat), lower(?)) > 0
			OR instr(lower(reference_file), lower(?)) > 0)`)
		args = append(args, f.Query, f.Query, f.Query, f.Query)
	}
	return strings.Join(conds, " AND "), args
}

func (c *collection) Find(ctx context.Context, f store.Filter, opts *store.FindOptions) ([]item.Item, error) {
	where, args := c.whereClause(f)
	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + where
	if opts != nil && opts.SortUpdatedDesc {
		query += ` ORDER BY updated_at DESC`
	}
	if opts != nil && opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find: %w", err)
	}
	defer rows.Close()

	var out []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (c *collection) FindOne(ctx context.Context, f store.Filter) (*item.Item, error) {
	where, args := c.whereClause(f)
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE `+where+` LIMIT 1`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find one: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, store.ErrNotFound
	}
	it, err := scanItem(rows)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func scanItem(rows *sql.Rows) (item.Item, error) {
	var it item.Item
	var createdAt, updatedAt string
	err := rows.Scan(&it.ID, &it.Type, &it.EpicID, &it.FeatureID, &it.Title,
		&it.Desc, &it.UAT, &it.Status, &it.ReferenceFile, &createdAt, &updatedAt)
	if err != nil {
		return item.Item{}, fmt.Errorf("sqlite: scan item: %w", err)
	}
	it.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	it.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return it, nil
}

func (c *collection) InsertOne(ctx context.Context, it *item.Item) (string, error) {
	if it.ID == "" {
		it.ID = store.NewID()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO items (id, project, type, epic_id, feature_id, title, descr, uat, status, reference_file, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, c.project, string(it.Type), it.EpicID, it.FeatureID, it.Title,
		it.Desc, it.UAT, string(it.Status), it.ReferenceFile,
		it.CreatedAt.UTC().Format(time.RFC3339Nano), it.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("sqlite: insert: %w", err)
	}
	return it.ID, nil
}

// patchColumns maps wire field names to item table columns.
var patchColumns = map[string]string{
	"title":          "title",
	"desc":           "descr",
	"uat":            "uat",
	"status":         "status",
	"reference_file": "reference_file",
	"updated_at":     "updated_at",
}

func (c *collection) UpdateOne(ctx context.Context, f store.Filter, patch map[string]any) (int, error) {
	var sets []string
	var args []any
	for key, val := range patch {
		col, ok := patchColumns[key]
		if !ok {
			return 0, fmt.Errorf("sqlite: unknown patch field %q", key)
		}
		switch v := val.(type) {
		case time.Time:
			val = v.UTC().Format(time.RFC3339Nano)
		case item.Status:
			val = string(v)
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	if len(sets) == 0 {
		return 0, nil
	}

	where, whereArgs := c.whereClause(f)
	query := `UPDATE items SET ` + strings.Join(sets, ", ") + ` WHERE id IN (
		SELECT id FROM items WHERE ` + where + ` LIMIT 1)`
	args = append(args, whereArgs...)

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: update: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (c *collection) DeleteOne(ctx context.Context, f store.Filter) (int, error) {
	where, args := c.whereClause(f)
	res, err := c.db.ExecContext(ctx, `DELETE FROM items WHERE id IN (
		SELECT id FROM items WHERE `+where+` LIMIT 1)`, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete one: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (c *collection) DeleteMany(ctx context.Context, f store.Filter) (int, error) {
	where, args := c.whereClause(f)
	res, err := c.db.ExecContext(ctx, `DELETE FROM items WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete many: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type userCollection struct {
	db *sql.DB
}

func (u *userCollection) Insert(ctx context.Context, usr *store.User) (string, error) {
	if usr.ID == "" {
		usr.ID = store.NewID()
	}
	_, err := u.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		usr.ID, usr.Username, usr.Email, usr.PasswordHash,
		usr.CreatedAt.UTC().Format(time.RFC3339Nano), usr.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", store.ErrConflict
		}
		return "", fmt.Errorf("sqlite: insert user: %w", err)
	}
	return usr.ID, nil
}

func (u *userCollection) ByID(ctx context.Context, id string) (*store.User, error) {
	return u.one(ctx, `id = ?`, id)
}

func (u *userCollection) ByUsername(ctx context.Context, username string) (*store.User, error) {
	return u.one(ctx, `username = ?`, username)
}

func (u *userCollection) ByEmail(ctx context.Context, email string) (*store.User, error) {
	return u.one(ctx, `email = ?`, email)
}

func (u *userCollection) one(ctx context.Context, cond string, arg any) (*store.User, error) {
	var usr store.User
	var createdAt, updatedAt string
	err := u.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE `+cond, arg).
		Scan(&usr.ID, &usr.Username, &usr.Email, &usr.PasswordHash, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find user: %w", err)
	}
	usr.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	usr.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &usr, nil
}
