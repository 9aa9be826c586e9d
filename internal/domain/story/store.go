package story

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/myrontuttle/storytime/internal/storage"
)

// Paths locates the story's artifacts. Stories saved before a base name
// was assigned fall back to the letters and digits of the title.
func (s *Story) Paths() storage.StoryPaths {
	base := s.BaseName
	if base == "" {
		base = storage.BaseName(s.Title, s.ID, storage.NameByTitle, s.CreatedAt)
	}
	return storage.StoryPaths{Base: base}
}

// Save writes the story as one JSON document and returns its path within
// store. The first save fixes the base name every other artifact uses.
func (s *Story) Save(ctx context.Context, store storage.Storage, naming storage.NamingStrategy) (string, error) {
	if s.BaseName == "" {
		s.BaseName = storage.BaseName(s.Title, s.ID, naming, s.CreatedAt)
		if claimedByOther(ctx, store, s.Paths().StoryFile(), s.ID) {
			s.BaseName = storage.UniqueBase(s.BaseName, s.ID)
		}
	}

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding story: %w", err)
	}

	path := s.Paths().StoryFile()
	if err := store.Save(ctx, path, data); err != nil {
		return "", fmt.Errorf("saving story: %w", err)
	}
	return path, nil
}

// claimedByOther reports whether path already holds a story with a
// different ID. An unreadable file counts as claimed.
func claimedByOther(ctx context.Context, store storage.Storage, path, id string) bool {
	if !store.Exists(ctx, path) {
		return false
	}
	other, err := Load(ctx, store, path)
	return err != nil || other.ID != id
}

// Load reads a story saved at path within store.
func Load(ctx context.Context, store storage.Storage, path string) (*Story, error) {
	data, err := store.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading story: %w", err)
	}

	var s Story
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding story %s: %w", path, err)
	}
	return &s, nil
}

// LoadFile reads a story from a JSON file anywhere on disk.
func LoadFile(ctx context.Context, path string) (*Story, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return Load(ctx, storage.NewFileSystem(filepath.Dir(abs)), filepath.Base(abs))
}
