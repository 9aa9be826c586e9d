package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/myrontuttle/storytime/internal/agent"
	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/domain/story"
	"github.com/myrontuttle/storytime/internal/storage"
	"github.com/myrontuttle/storytime/internal/storage/sqlite"
	"github.com/myrontuttle/storytime/internal/upload"
	"github.com/myrontuttle/storytime/internal/video"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func imageClient(status int) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       io.NopCloser(strings.NewReader("png:" + r.URL.Path)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})}
}

type fakeNarrator struct {
	mu    sync.Mutex
	store storage.Storage
	calls int
}

func (f *fakeNarrator) Synthesize(ctx context.Context, text, voice, file string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.store.Save(ctx, file, []byte(voice+":"+text))
}

type fakeRenderer struct {
	in video.Inputs
}

func (f *fakeRenderer) Create(_ context.Context, in video.Inputs) error {
	f.in = in
	return os.WriteFile(in.Output, []byte("mp4"), 0644)
}

type fakePublisher struct {
	req upload.Request
	err error
}

func (f *fakePublisher) Upload(_ context.Context, req upload.Request) (string, error) {
	f.req = req
	return "yt-1", f.err
}

func newPipeline(t *testing.T) (*Pipeline, *storage.FileSystem) {
	t.Helper()
	dir := t.TempDir()
	fs := storage.NewFileSystem(filepath.Join(dir, "stories"))

	catalog, err := sqlite.Open(context.Background(), filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { catalog.Close() })

	mock := agent.NewMockClient()
	return &Pipeline{
		Generator: &story.Generator{Text: mock, Images: mock},
		Store:     fs,
		Catalog:   catalog,
		Narrator:  &fakeNarrator{store: fs},
		Renderer:  &fakeRenderer{},
		Publisher: &fakePublisher{},
		HTTP:      imageClient(http.StatusOK),
		Workers:   2,
		Upload:    config.Default().Upload,
	}, fs
}

func TestRun(t *testing.T) {
	p, fs := newPipeline(t)
	ctx := context.Background()

	s, err := p.Run(ctx, rand.New(rand.NewSource(3)), story.Options{Structure: story.ThreeAct},
		Steps{Images: true, Narrate: true, Video: true, Upload: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	paths := s.Paths()
	for _, label := range s.ImageSet.Labels() {
		if !fs.Exists(ctx, paths.ImageFile(label)) {
			t.Errorf("image %s not downloaded", label)
		}
	}

	wantClips := 2 + 3*s.SceneCount()
	if len(s.Narration) != wantClips {
		t.Errorf("narration clips = %d, want %d", len(s.Narration), wantClips)
	}
	if n := p.Narrator.(*fakeNarrator).calls; n != wantClips {
		t.Errorf("synthesized = %d, want %d", n, wantClips)
	}

	in := p.Renderer.(*fakeRenderer).in
	if len(in.Images) != s.SceneCount() || len(in.Audio) != wantClips || in.Title != "The Lantern Keeper" {
		t.Errorf("render inputs = %d images, %d clips, title %q", len(in.Images), len(in.Audio), in.Title)
	}
	if !strings.HasSuffix(in.Output, "TheLanternKeeper.mp4") {
		t.Errorf("output = %q", in.Output)
	}

	req := p.Publisher.(*fakePublisher).req
	if req.Title != "The Lantern Keeper: A Tale of Two Winters" || req.Description != s.Synopsis || req.Category != "24" {
		t.Errorf("upload request = %+v", req)
	}

	e, err := p.Catalog.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if e.VideoID != "yt-1" || e.VideoPath != "TheLanternKeeper.mp4" || e.NarrationClips != wantClips ||
		e.Images != s.SceneCount() || e.Acts != len(s.Beats) {
		t.Errorf("catalog entry = %+v", e)
	}

	saved, err := story.Load(ctx, fs, paths.StoryFile())
	if err != nil {
		t.Fatal(err)
	}
	if saved.VideoID != "yt-1" || len(saved.Narration) != wantClips {
		t.Errorf("saved story video = %q, clips = %d", saved.VideoID, len(saved.Narration))
	}
}

func TestNarrateSkipsExistingClips(t *testing.T) {
	p, fs := newPipeline(t)
	ctx := context.Background()

	s, _, err := p.Write(ctx, rand.New(rand.NewSource(1)), story.Options{})
	if err != nil {
		t.Fatal(err)
	}
	first := s.NarrationScript()[0].File
	if err := fs.Save(ctx, first, []byte("existing")); err != nil {
		t.Fatal(err)
	}

	if err := p.Narrate(ctx, s); err != nil {
		t.Fatal(err)
	}
	if n := p.Narrator.(*fakeNarrator).calls; n != len(s.Narration)-1 {
		t.Errorf("synthesized = %d, want %d", n, len(s.Narration)-1)
	}
	data, _ := fs.Load(ctx, first)
	if !bytes.Equal(data, []byte("existing")) {
		t.Errorf("existing clip overwritten: %q", data)
	}
}

func TestDownloadImages(t *testing.T) {
	p, fs := newPipeline(t)
	ctx := context.Background()

	s, _, err := p.Write(ctx, rand.New(rand.NewSource(1)), story.Options{WithImages: true})
	if err != nil {
		t.Fatal(err)
	}
	s.ImageSet.Images[0].URL = ""

	n, err := p.DownloadImages(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(s.ImageSet.Images)-1 {
		t.Errorf("downloaded = %d, want %d", n, len(s.ImageSet.Images)-1)
	}
	if again, _ := p.DownloadImages(ctx, s); again != 0 {
		t.Errorf("second download = %d, want 0", again)
	}
	data, _ := fs.Load(ctx, s.Paths().ImageFile(s.ImageSet.Images[1].Label))
	if !strings.HasPrefix(string(data), "png:") {
		t.Errorf("image content = %q", data)
	}

	p.HTTP = imageClient(http.StatusNotFound)
	s.ImageSet.Images[0].URL = "https://images.invalid/missing.png"
	if _, err := p.DownloadImages(ctx, s); err == nil {
		t.Error("DownloadImages() error = nil for 404")
	}
}

func TestRenderShowsBlankCardForFailedImage(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()

	s, _, err := p.Write(ctx, rand.New(rand.NewSource(1)), story.Options{WithImages: true})
	if err != nil {
		t.Fatal(err)
	}
	s.ImageSet.Images[0].URL = ""
	if _, err := p.DownloadImages(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := p.Narrate(ctx, s); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Render(ctx, s); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	images := p.Renderer.(*fakeRenderer).in.Images
	if len(images) != len(s.ImageSet.Images) {
		t.Fatalf("images = %d, want %d", len(images), len(s.ImageSet.Images))
	}
	if images[0] != "" {
		t.Errorf("failed image = %q, want blank", images[0])
	}
	for i, img := range images[1:] {
		if img == "" {
			t.Errorf("image %d is blank", i+1)
		}
	}
}

func TestStageErrors(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()
	s, _, err := p.Write(ctx, rand.New(rand.NewSource(1)), story.Options{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Render(ctx, s); !errors.Is(err, ErrNotNarrated) {
		t.Errorf("Render() before narration = %v", err)
	}
	if _, err := p.Publish(ctx, s); !errors.Is(err, ErrNotRendered) {
		t.Errorf("Publish() before render = %v", err)
	}
	if _, err := p.DownloadImages(ctx, s); !errors.Is(err, ErrNoImages) {
		t.Errorf("DownloadImages() without image set = %v", err)
	}

	if err := p.Narrate(ctx, s); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Render(ctx, s); !errors.Is(err, ErrNoImages) {
		t.Errorf("Render() without images = %v", err)
	}

	p.Narrator = nil
	if err := p.Narrate(ctx, s); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Narrate() without narrator = %v", err)
	}
}

func TestWriteSameTitleKeepsStoriesApart(t *testing.T) {
	p, fs := newPipeline(t)
	ctx := context.Background()
	mock := agent.NewMockClient()
	mock.SetError(errors.New("offline"))
	p.Generator = &story.Generator{Text: mock, Images: mock}

	a, pathA, err := p.Write(ctx, rand.New(rand.NewSource(1)), story.Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, pathB, err := p.Write(ctx, rand.New(rand.NewSource(2)), story.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != b.Title {
		t.Fatalf("titles %q and %q differ", a.Title, b.Title)
	}
	if pathA == pathB || a.Paths().AudioDir() == b.Paths().AudioDir() {
		t.Fatalf("both stories saved to %s", pathA)
	}

	for _, s := range []*story.Story{a, b} {
		e, err := p.Catalog.Get(ctx, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		got, err := story.Load(ctx, fs, e.Path)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != s.ID {
			t.Errorf("catalog %s loads story %s from %s", s.ID, got.ID, e.Path)
		}
	}
}

func TestEntry(t *testing.T) {
	s := &story.Story{ID: "abc", Title: "T"}
	e := Entry(s, "T.json")
	if e.ID != "abc" || e.Path != "T.json" || e.Images != 0 {
		t.Errorf("Entry() = %+v", e)
	}
}
