// Package sqlite keeps the story catalog: one row per saved story, with
// the state of its rendered artifacts.
package sqlite

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

	"github.com/myrontuttle/storytime/internal/storage/sqlite/migrations"
)

// ErrNotFound is returned when no story has the requested ID.
var ErrNotFound = errors.New("story not found in catalog")

// Entry is the catalog record of a story.
type Entry struct {
	ID             string
	Title          string
	Subtitle       string
	BaseName       string
	Path           string
	Structure      string
	Genre          string
	Audience       string
	Era            string
	Acts           int
	Scenes         int
	Images         int
	NarrationClips int
	Author         string
	Illustrator    string
	VideoPath      string
	VideoID        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store persists the catalog in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the catalog at path, creating it and applying migrations as
// needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert records e, replacing any entry with the same ID. CreatedAt is
// kept from the first insert.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("story id is required")
	}
	now := s.now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stories (
		   id, title, subtitle, base_name, path, structure, genre, audience, era,
		   acts, scenes, images, narration_clips, author, illustrator,
		   video_path, video_id, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   subtitle = excluded.subtitle,
		   base_name = excluded.base_name,
		   path = excluded.path,
		   structure = excluded.structure,
		   genre = excluded.genre,
		   audience = excluded.audience,
		   era = excluded.era,
		   acts = excluded.acts,
		   scenes = excluded.scenes,
		   images = excluded.images,
		   narration_clips = excluded.narration_clips,
		   author = excluded.author,
		   illustrator = excluded.illustrator,
		   video_path = excluded.video_path,
		   video_id = excluded.video_id,
		   updated_at = excluded.updated_at`,
		e.ID, e.Title, e.Subtitle, e.BaseName, e.Path, e.Structure, e.Genre, e.Audience, e.Era,
		e.Acts, e.Scenes, e.Images, e.NarrationClips, e.Author, e.Illustrator,
		e.VideoPath, e.VideoID, toMillis(e.CreatedAt), toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("upsert story %s: %w", e.ID, err)
	}
	return nil
}

const selectColumns = `id, title, subtitle, base_name, path, structure, genre, audience, era,
	acts, scenes, images, narration_clips, author, illustrator,
	video_path, video_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var created, updated int64
	err := row.Scan(&e.ID, &e.Title, &e.Subtitle, &e.BaseName, &e.Path, &e.Structure, &e.Genre, &e.Audience, &e.Era,
		&e.Acts, &e.Scenes, &e.Images, &e.NarrationClips, &e.Author, &e.Illustrator,
		&e.VideoPath, &e.VideoID, &created, &updated)
	if err != nil {
		return Entry{}, err
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

// Get returns the entry for id. A unique ID prefix of at least 4
// characters also matches.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, fmt.Errorf("story id is required")
	}

	e, err := scanEntry(s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM stories WHERE id = ?", id))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get story %s: %w", id, err)
	}
	if len(id) < 4 {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM stories WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(id)+"%")
	if err != nil {
		return Entry{}, fmt.Errorf("get story %s: %w", id, err)
	}
	defer rows.Close()

	var matches []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, fmt.Errorf("scan story: %w", err)
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("get story %s: %w", id, err)
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	default:
		return Entry{}, fmt.Errorf("story id prefix %q is ambiguous", id)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM stories ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return entries, nil
}

// Delete removes the entry for id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete story %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
