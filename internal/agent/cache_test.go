package agent

import (
	"context"
	"testing"
	"time"

	"github.com/myrontuttle/storytime/internal/storage"
)

func TestResponseCache(t *testing.T) {
	ctx := context.Background()
	cache := NewResponseCache(storage.NewFileSystem(t.TempDir()), time.Hour)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, ok := cache.Get(ctx, "prompt"); ok {
		t.Fatal("Get() hit on empty cache")
	}
	if err := cache.Set(ctx, "prompt", "response"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := cache.Get(ctx, "prompt"); !ok || got != "response" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := cache.Get(ctx, "prompt"); ok {
		t.Error("Get() hit after TTL expired")
	}
}

func TestCachedClient(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClient()
	client := WithCache(mock, NewResponseCache(storage.NewFileSystem(t.TempDir()), time.Hour))

	first, err := client.GenerateText(ctx, "scene prompt", DefaultTextParams())
	if err != nil {
		t.Fatal(err)
	}
	second, _ := client.GenerateText(ctx, "scene prompt", DefaultTextParams())
	if first != second {
		t.Errorf("cached response = %q, want %q", second, first)
	}
	if n := len(mock.Calls()); n != 1 {
		t.Errorf("underlying calls = %d, want 1", n)
	}

	// Different parameters are a different request.
	client.GenerateText(ctx, "scene prompt", DefaultTextParams().WithMaxTokens(30))
	if n := len(mock.Calls()); n != 2 {
		t.Errorf("underlying calls = %d, want 2", n)
	}

	if client.Model() != "mock" {
		t.Errorf("Model() = %q", client.Model())
	}
}

func TestCachedClientSkipsEmpty(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClient()
	mock.SetResponse("blank", "")
	client := WithCache(mock, NewResponseCache(storage.NewFileSystem(t.TempDir()), time.Hour))

	client.GenerateText(ctx, "blank prompt", DefaultTextParams())
	client.GenerateText(ctx, "blank prompt", DefaultTextParams())
	if n := len(mock.Calls()); n != 2 {
		t.Errorf("underlying calls = %d, want 2 when responses are empty", n)
	}
}
