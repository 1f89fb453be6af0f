package basicseo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/basicseo/seo"
)

// Store wraps a SQLite database holding content entries, taxonomy terms and
// their key/value meta.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with a busy timeout lets readers run while a save is in flight.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'publish',
    parent_id INTEGER NOT NULL DEFAULT 0,
    thumbnail_id INTEGER NOT NULL DEFAULT 0,
    file TEXT NOT NULL DEFAULT '',
    modified TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS entities_type_status ON entities (type, status, modified);
CREATE INDEX IF NOT EXISTS entities_slug ON entities (slug);
CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    parent_id INTEGER NOT NULL DEFAULT 0,
    UNIQUE (taxonomy, slug)
);
CREATE TABLE IF NOT EXISTS term_relationships (
    entity_id INTEGER NOT NULL,
    term_id INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (entity_id, term_id)
);
CREATE TABLE IF NOT EXISTS post_meta (
    entity_id INTEGER NOT NULL,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL,
    PRIMARY KEY (entity_id, meta_key)
);
CREATE TABLE IF NOT EXISTS term_meta (
    term_id INTEGER NOT NULL,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL,
    PRIMARY KEY (term_id, meta_key)
);
`)
	return err
}

const entryColumns = `id, type, slug, title, body, status, parent_id, thumbnail_id, file, modified`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var modified string
	if err := row.Scan(&e.ID, &e.Type, &e.Slug, &e.Title, &e.Body, &e.Status, &e.ParentID, &e.ThumbnailID, &e.File, &modified); err != nil {
		return Entry{}, err
	}
	e.Modified, _ = time.Parse(time.RFC3339, modified)
	return e, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return seo.ErrNotFound
	}
	return err
}

// GetEntry returns an entry of any status.
func (s *Store) GetEntry(ctx context.Context, id int64) (Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entities WHERE id = ?`, id))
	if err != nil {
		return Entry{}, notFound(err)
	}
	return e, nil
}

// EntryBySlug returns the entry of postType with slug under parentID,
// preferring a published one.
func (s *Store) EntryBySlug(ctx context.Context, postType, slug string, parentID int64) (Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entities WHERE type = ? AND slug = ? AND parent_id = ?
		 ORDER BY status = 'publish' DESC, id LIMIT 1`,
		postType, slug, parentID))
	if err != nil {
		return Entry{}, notFound(err)
	}
	return e, nil
}

// ListEntries returns entries of postType, most recently modified first.
// An empty postType or status matches every value.
func (s *Store) ListEntries(ctx context.Context, postType, status string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entities
		 WHERE (? = '' OR type = ?) AND (? = '' OR status = ?)
		 ORDER BY modified DESC, id DESC`,
		postType, postType, status, status)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// CountEntries returns the number of entries of postType with status.
func (s *Store) CountEntries(ctx context.Context, postType, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE type = ? AND status = ?`, postType, status).Scan(&n)
	return n, err
}

// SearchEntries returns published entries of the given types whose title or
// body contains q.
func (s *Store) SearchEntries(ctx context.Context, q string, types []string) ([]Entry, error) {
	if len(types) == 0 {
		return nil, nil
	}
	like := "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(q)) + "%"
	args := []any{StatusPublish, like, like}
	for _, t := range types {
		args = append(args, t)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entities
		 WHERE status = ? AND (lower(title) LIKE ? ESCAPE '\' OR lower(body) LIKE ? ESCAPE '\')
		 AND type IN (`+placeholders(len(types))+`)
		 ORDER BY modified DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// TermEntries returns the published members of a term.
func (s *Store) TermEntries(ctx context.Context, termID int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.type, e.slug, e.title, e.body, e.status, e.parent_id, e.thumbnail_id, e.file, e.modified
		 FROM entities e JOIN term_relationships r ON r.entity_id = e.id
		 WHERE r.term_id = ? AND e.status = ?
		 ORDER BY e.modified DESC, e.id DESC`, termID, StatusPublish)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveEntry inserts e when its ID is zero and updates it otherwise. The
// modification time is set to now unless e.Modified is already set on insert.
func (s *Store) SaveEntry(ctx context.Context, e *Entry) error {
	if e.Status == "" {
		e.Status = StatusPublish
	}
	// Inserts keep an explicit modification time (imports); updates always touch it.
	if e.ID != 0 || e.Modified.IsZero() {
		e.Modified = s.now()
	}
	modified := e.Modified.UTC().Format(time.RFC3339)
	if e.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO entities (type, slug, title, body, status, parent_id, thumbnail_id, file, modified)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Type, e.Slug, e.Title, e.Body, e.Status, e.ParentID, e.ThumbnailID, e.File, modified)
		if err != nil {
			return err
		}
		e.ID, err = res.LastInsertId()
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE entities SET type = ?, slug = ?, title = ?, body = ?, status = ?, parent_id = ?, thumbnail_id = ?, file = ?, modified = ?
		 WHERE id = ?`,
		e.Type, e.Slug, e.Title, e.Body, e.Status, e.ParentID, e.ThumbnailID, e.File, modified, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return seo.ErrNotFound
	}
	return nil
}

// SetThumbnail sets the featured image of an entry.
func (s *Store) SetThumbnail(ctx context.Context, id, attachmentID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE entities SET thumbnail_id = ? WHERE id = ?`, attachmentID, id)
	return err
}

// DeleteEntry removes an entry together with its meta and term links.
// Children move up to the deleted entry's parent.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		var parent int64
		if err := tx.QueryRowContext(ctx, `SELECT parent_id FROM entities WHERE id = ?`, id).Scan(&parent); err != nil {
			return notFound(err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE entities SET parent_id = ? WHERE parent_id = ?`, parent, id); err != nil {
			return err
		}
		for _, q := range []string{
			`UPDATE entities SET thumbnail_id = 0 WHERE thumbnail_id = ?`,
			`DELETE FROM post_meta WHERE entity_id = ?`,
			`DELETE FROM term_relationships WHERE entity_id = ?`,
			`DELETE FROM entities WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		return nil
	})
}

const termColumns = `t.id, t.taxonomy, t.slug, t.name, t.description, t.parent_id,
	(SELECT COUNT(*) FROM term_relationships r JOIN entities e ON e.id = r.entity_id
	 WHERE r.term_id = t.id AND e.status = 'publish')`

func scanTerm(row scanner) (seo.Term, error) {
	var t seo.Term
	err := row.Scan(&t.ID, &t.Taxonomy, &t.Slug, &t.Name, &t.Description, &t.ParentID, &t.Count)
	return t, err
}

// GetTerm returns a term with its published member count.
func (s *Store) GetTerm(ctx context.Context, id int64) (seo.Term, error) {
	t, err := scanTerm(s.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms t WHERE t.id = ?`, id))
	if err != nil {
		return seo.Term{}, notFound(err)
	}
	return t, nil
}

// TermBySlug returns the term of taxonomy with slug.
func (s *Store) TermBySlug(ctx context.Context, taxonomy, slug string) (seo.Term, error) {
	t, err := scanTerm(s.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms t WHERE t.taxonomy = ? AND t.slug = ?`, taxonomy, slug))
	if err != nil {
		return seo.Term{}, notFound(err)
	}
	return t, nil
}

// ListTerms returns the terms of taxonomy ordered by name. nonEmpty keeps
// only terms with published members; limit <= 0 means no limit.
func (s *Store) ListTerms(ctx context.Context, taxonomy string, nonEmpty bool, limit int) ([]seo.Term, error) {
	q := `SELECT * FROM (SELECT ` + termColumns + ` AS member_count FROM terms t WHERE t.taxonomy = ?)`
	if nonEmpty {
		q += ` WHERE member_count > 0`
	}
	q += ` ORDER BY name COLLATE NOCASE, id`
	args := []any{taxonomy}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []seo.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTerm inserts t when its ID is zero and updates it otherwise.
func (s *Store) SaveTerm(ctx context.Context, t *seo.Term) error {
	if t.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO terms (taxonomy, slug, name, description, parent_id) VALUES (?, ?, ?, ?, ?)`,
			t.Taxonomy, t.Slug, t.Name, t.Description, t.ParentID)
		if err != nil {
			return err
		}
		t.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE terms SET taxonomy = ?, slug = ?, name = ?, description = ?, parent_id = ? WHERE id = ?`,
		t.Taxonomy, t.Slug, t.Name, t.Description, t.ParentID, t.ID)
	return err
}

// DeleteTerm removes a term with its meta and member links.
func (s *Store) DeleteTerm(ctx context.Context, id int64) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM term_meta WHERE term_id = ?`,
			`DELETE FROM term_relationships WHERE term_id = ?`,
			`DELETE FROM terms WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetEntryTerms replaces the terms of an entry within taxonomy. Order is kept.
func (s *Store) SetEntryTerms(ctx context.Context, entryID int64, taxonomy string, termIDs []int64) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM term_relationships WHERE entity_id = ? AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`,
			entryID, taxonomy); err != nil {
			return err
		}
		for i, id := range termIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO term_relationships (entity_id, term_id, position) VALUES (?, ?, ?)`,
				entryID, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// EntryTerms returns the terms of an entry within taxonomy in assignment order.
func (s *Store) EntryTerms(ctx context.Context, entryID int64, taxonomy string) ([]seo.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+termColumns+` FROM terms t JOIN term_relationships rel ON rel.term_id = t.id
		 WHERE rel.entity_id = ? AND t.taxonomy = ? ORDER BY rel.position, t.id`, entryID, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []seo.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TermMembersModified returns the latest modification among the published
// members of a term, or the zero time when it has none.
func (s *Store) TermMembersModified(ctx context.Context, termID int64) (time.Time, error) {
	var modified sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(e.modified) FROM entities e JOIN term_relationships r ON r.entity_id = e.id
		 WHERE r.term_id = ? AND e.status = ?`, termID, StatusPublish).Scan(&modified)
	if err != nil || !modified.Valid {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, modified.String)
}

// PostMeta returns the value of key for an entry; a missing key is "".
func (s *Store) PostMeta(ctx context.Context, id int64, key string) (string, error) {
	return s.getMeta(ctx, "post_meta", "entity_id", id, key)
}

// SetPostMeta upserts key for an entry.
func (s *Store) SetPostMeta(ctx context.Context, id int64, key, value string) error {
	return s.setMeta(ctx, "post_meta", "entity_id", id, key, value)
}

// DeletePostMeta removes key from an entry.
func (s *Store) DeletePostMeta(ctx context.Context, id int64, key string) error {
	return s.deleteMeta(ctx, "post_meta", "entity_id", id, key)
}

// TermMeta returns the value of key for a term; a missing key is "".
func (s *Store) TermMeta(ctx context.Context, id int64, key string) (string, error) {
	return s.getMeta(ctx, "term_meta", "term_id", id, key)
}

// SetTermMeta upserts key for a term.
func (s *Store) SetTermMeta(ctx context.Context, id int64, key, value string) error {
	return s.setMeta(ctx, "term_meta", "term_id", id, key, value)
}

// DeleteTermMeta removes key from a term.
func (s *Store) DeleteTermMeta(ctx context.Context, id int64, key string) error {
	return s.deleteMeta(ctx, "term_meta", "term_id", id, key)
}

// table and owner are package constants, never user input.
func (s *Store) getMeta(ctx context.Context, table, owner string, id int64, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT meta_value FROM %s WHERE %s = ? AND meta_key = ?`, table, owner), id, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) setMeta(ctx context.Context, table, owner string, id int64, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, meta_key, meta_value) VALUES (?, ?, ?)
		 ON CONFLICT (%s, meta_key) DO UPDATE SET meta_value = excluded.meta_value`, table, owner, owner),
		id, key, value)
	return err
}

func (s *Store) deleteMeta(ctx context.Context, table, owner string, id int64, key string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND meta_key = ?`, table, owner), id, key)
	return err
}

func (s *Store) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
