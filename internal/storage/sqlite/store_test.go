package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id, title string, created time.Time) Entry {
	return Entry{
		ID:        id,
		Title:     title,
		BaseName:  title,
		Path:      title + ".json",
		Structure: "Five-Act",
		Genre:     "fantasy",
		Audience:  "children",
		Era:       "Medieval",
		Acts:      5,
		Scenes:    10,
		Author:    "mock",
		CreatedAt: created,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Error("Open(blank) succeeded")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	for i := range 2 {
		s, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("Open() #%d error = %v", i+1, err)
		}
		s.Close()
	}
}

func TestCatalogCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2025, 7, 16, 15, 30, 0, 0, time.UTC)

	if err := s.Upsert(ctx, entry("b2c3d4e5-0000", "Second", base.Add(time.Hour))); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, entry("a1b2c3d4-0000", "First", base)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := s.Get(ctx, "a1b2c3d4-0000")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "First" || got.Acts != 5 || !got.CreatedAt.Equal(base) || got.UpdatedAt.IsZero() {
		t.Errorf("Get() = %+v", got)
	}

	updated := got
	updated.VideoPath = "First.mp4"
	updated.VideoID = "yt123"
	updated.NarrationClips = 12
	updated.CreatedAt = time.Time{}
	if err := s.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert(update) error = %v", err)
	}
	got, _ = s.Get(ctx, "a1b2")
	if got.VideoID != "yt123" || got.NarrationClips != 12 || !got.CreatedAt.Equal(base) {
		t.Errorf("updated entry = %+v", got)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Title != "Second" || list[1].Title != "First" {
		t.Errorf("List() = %+v", list)
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) = %d entries", len(list))
	}

	if err := s.Delete(ctx, "b2c3d4e5-0000"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "b2c3d4e5-0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "b2c3d4e5-0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestGetPrefix(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	s.Upsert(ctx, entry("abcd1111", "One", time.Now()))
	s.Upsert(ctx, entry("abcd2222", "Two", time.Now()))

	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"abcd1", "One", false},
		{"abcd2222", "Two", false},
		{"abcd", "", true},
		{"abc", "", true},
		{"zzzz", "", true},
		{"ab%d", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := s.Get(ctx, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get(%q) error = %v", tt.id, err)
			}
			if got.Title != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.id, got.Title, tt.want)
			}
		})
	}
}

func TestExtractUp(t *testing.T) {
	sql := "-- +migrate Up\nCREATE TABLE t (x);\n-- +migrate Down\nDROP TABLE t;\n"
	if got := extractUp(sql); got != "\nCREATE TABLE t (x);\n" {
		t.Errorf("extractUp() = %q", got)
	}
	if got := extractUp("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("extractUp(plain) = %q", got)
	}
}
