package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/myrontuttle/storytime/internal/config"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls     []call
	durations map[string]string
	err       error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name, args})
	if f.err != nil {
		return nil, f.err
	}
	if name == "ffprobe" {
		return []byte(f.durations[args[len(args)-1]] + "\n"), nil
	}
	return nil, nil
}

func (f *fakeRunner) ffmpegCalls() []call {
	var out []call
	for _, c := range f.calls {
		if c.name == "ffmpeg" {
			out = append(out, c)
		}
	}
	return out
}

func testConfig() config.VideoConfig {
	return config.Default().Video
}

func TestImageDurations(t *testing.T) {
	tests := []struct {
		name  string
		clips []float64
		want  []float64
	}{
		{"empty", nil, nil},
		{"title and outro", []float64{2, 3}, []float64{2, 3}},
		{"one scene", []float64{2, 1, 1, 1, 3}, []float64{2, 3, 3}},
		{"two scenes", []float64{2, 1, 2, 3, 4, 5, 6, 3}, []float64{2, 6, 15, 3}},
		{"short last group", []float64{2, 1, 2, 3, 4, 3}, []float64{2, 6, 7, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageDurations(tt.clips); !slices.Equal(got, tt.want) {
				t.Errorf("ImageDurations(%v) = %v, want %v", tt.clips, got, tt.want)
			}
		})
	}
}

func TestImageList(t *testing.T) {
	got := ImageList([]string{"/a/Title.png", "/a/it's.png"}, []float64{2, 1.5})
	want := "file '/a/Title.png'\nduration 2.000\n" +
		"file '/a/it'\\''s.png'\nduration 1.500\n" +
		"file '/a/it'\\''s.png'\n"
	if got != want {
		t.Errorf("ImageList() = %q, want %q", got, want)
	}
}

func TestEscapeText(t *testing.T) {
	got := escapeText(`Tory's Tale: 100% \o/`)
	want := `Tory\'s Tale\: 100\% \\o/`
	if got != want {
		t.Errorf("escapeText() = %q, want %q", got, want)
	}
}

func TestDuration(t *testing.T) {
	r := &fakeRunner{durations: map[string]string{"a.mp3": "12.345"}}
	a := New(testConfig(), WithRunner(r))

	d, err := a.Duration(context.Background(), "a.mp3")
	if err != nil || d != 12.345 {
		t.Fatalf("Duration() = %v, %v", d, err)
	}

	r.durations["bad.mp3"] = "N/A"
	if _, err := a.Duration(context.Background(), "bad.mp3"); err == nil {
		t.Error("Duration(bad) error = nil")
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	audio := []string{"000.mp3", "001.mp3", "002.mp3", "003.mp3", "004.mp3"}
	r := &fakeRunner{durations: map[string]string{
		"000.mp3": "4", "001.mp3": "1", "002.mp3": "2", "003.mp3": "3", "004.mp3": "5",
	}}
	a := New(testConfig(), WithRunner(r))

	err := a.Create(context.Background(), Inputs{
		Title:   "The Lantern Keeper",
		Byline:  "Written by mock.",
		Images:  []string{filepath.Join(dir, "A1S1.png")},
		Audio:   audio,
		WorkDir: dir,
		Output:  filepath.Join(dir, "out.mp4"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	calls := r.ffmpegCalls()
	if len(calls) != 3 {
		t.Fatalf("ffmpeg calls = %d, want 3 (title, outro, encode)", len(calls))
	}
	title := strings.Join(calls[0].args, " ")
	if !strings.Contains(title, "color=c=black:s=480x480") || !strings.Contains(title, "text='The Lantern Keeper'") {
		t.Errorf("title card args = %s", title)
	}
	if strings.Count(title, "drawtext") != 2 {
		t.Errorf("empty subtitle should be skipped: %s", title)
	}
	if outro := strings.Join(calls[1].args, " "); !strings.Contains(outro, "The End") {
		t.Errorf("outro card args = %s", outro)
	}

	encode := strings.Join(calls[2].args, " ")
	for _, want := range []string{"pad=854:480", "scale=480:480", "libx264", "-c:a aac", "-r 24"} {
		if !strings.Contains(encode, want) {
			t.Errorf("encode args missing %q: %s", want, encode)
		}
	}

	list, err := os.ReadFile(filepath.Join(dir, "images.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"duration 4.000", "duration 6.000", "duration 5.000", OutroCard} {
		if !strings.Contains(string(list), want) {
			t.Errorf("image list missing %q:\n%s", want, list)
		}
	}
}

func TestCreateKeepsExistingCards(t *testing.T) {
	dir := t.TempDir()
	for _, card := range []string{TitleCard, OutroCard} {
		if err := os.WriteFile(filepath.Join(dir, card), []byte("png"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	r := &fakeRunner{durations: map[string]string{"t.mp3": "1", "o.mp3": "1"}}
	a := New(testConfig(), WithRunner(r))

	err := a.Create(context.Background(), Inputs{Audio: []string{"t.mp3", "o.mp3"}, WorkDir: dir, Output: "out.mp4"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n := len(r.ffmpegCalls()); n != 1 {
		t.Errorf("ffmpeg calls = %d, want 1", n)
	}
}

func TestCreateBlankCardForMissingImage(t *testing.T) {
	dir := t.TempDir()
	for _, card := range []string{TitleCard, OutroCard} {
		if err := os.WriteFile(filepath.Join(dir, card), []byte("png"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	r := &fakeRunner{durations: map[string]string{
		"t.mp3": "1", "a.mp3": "1", "b.mp3": "1", "c.mp3": "1", "o.mp3": "1",
	}}
	a := New(testConfig(), WithRunner(r))

	err := a.Create(context.Background(), Inputs{
		Images:  []string{""},
		Audio:   []string{"t.mp3", "a.mp3", "b.mp3", "c.mp3", "o.mp3"},
		WorkDir: dir,
		Output:  filepath.Join(dir, "out.mp4"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	calls := r.ffmpegCalls()
	if len(calls) != 2 {
		t.Fatalf("ffmpeg calls = %d, want 2 (blank, encode)", len(calls))
	}
	blank := calls[0].args
	if blank[len(blank)-1] != filepath.Join(dir, BlankCard) || slices.Contains(blank, "-vf") {
		t.Errorf("blank card args = %v", blank)
	}

	list, err := os.ReadFile(filepath.Join(dir, "images.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(list), BlankCard+"'\nduration 3.000") {
		t.Errorf("image list lacks the blank card:\n%s", list)
	}
}

func TestCreateErrors(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{durations: map[string]string{"t.mp3": "1", "o.mp3": "1"}}
	a := New(testConfig(), WithRunner(r))

	if err := a.Create(context.Background(), Inputs{WorkDir: dir}); !errors.Is(err, ErrNoAudio) {
		t.Errorf("no audio: error = %v", err)
	}

	err := a.Create(context.Background(), Inputs{
		Images:  []string{"A1S1.png"},
		Audio:   []string{"t.mp3", "o.mp3"},
		WorkDir: dir,
	})
	if !errors.Is(err, ErrImageMismatch) {
		t.Errorf("mismatch: error = %v", err)
	}

	failing := New(testConfig(), WithRunner(&fakeRunner{err: errors.New("exit status 1")}))
	if err := failing.Create(context.Background(), Inputs{Audio: []string{"t.mp3"}, WorkDir: dir}); err == nil {
		t.Error("probe failure: error = nil")
	}
}
