// Package video assembles narrated slideshow videos with ffmpeg.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/myrontuttle/storytime/internal/config"
)

// Card geometry and type sizes.
const (
	TitleFontSize    = 40
	SubtitleFontSize = 30
	BylineFontSize   = 20

	TitleCard = "Title.png"
	OutroCard = "Outro.png"
	BlankCard = "Blank.png"
)

var (
	ErrNoAudio       = errors.New("no narration clips")
	ErrImageMismatch = errors.New("image count does not match narration")
)

// Runner executes an external tool and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as subprocesses.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, tail(stderr.String(), 500))
	}
	return stdout.Bytes(), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

// Inputs are the parts of one video. Images are the scene illustrations
// in playback order; an empty entry shows a blank card instead. Audio holds
// the title clip, three clips per scene and the outro clip.
type Inputs struct {
	Title    string
	Subtitle string
	Byline   string
	Images   []string
	Audio    []string
	WorkDir  string
	Output   string
}

// Assembler renders Inputs into an MP4.
type Assembler struct {
	cfg    config.VideoConfig
	runner Runner
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*Assembler)

func WithRunner(r Runner) Option {
	return func(a *Assembler) { a.runner = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func New(cfg config.VideoConfig, opts ...Option) *Assembler {
	a := &Assembler{
		cfg:    cfg,
		runner: ExecRunner{},
		logger: slog.Default().With("component", "video"),
		tracer: otel.Tracer("github.com/myrontuttle/storytime/internal/video"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Create measures the narration, renders the title and outro cards when
// they are missing, and writes the video to in.Output.
func (a *Assembler) Create(ctx context.Context, in Inputs) (err error) {
	ctx, span := a.tracer.Start(ctx, "video.Create", trace.WithAttributes(
		attribute.Int("video.images", len(in.Images)),
		attribute.Int("video.clips", len(in.Audio)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(in.Audio) == 0 {
		return ErrNoAudio
	}

	a.logger.Info("loading audio clips", "clips", len(in.Audio))
	durations := make([]float64, 0, len(in.Audio))
	for _, f := range in.Audio {
		d, err := a.Duration(ctx, f)
		if err != nil {
			return fmt.Errorf("measuring %s: %w", f, err)
		}
		durations = append(durations, d)
	}

	if err := os.MkdirAll(in.WorkDir, 0755); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}

	titleCard := filepath.Join(in.WorkDir, TitleCard)
	if !exists(titleCard) {
		a.logger.Info("creating title card")
		if err := a.titleCard(ctx, in, titleCard); err != nil {
			return fmt.Errorf("creating title card: %w", err)
		}
	}
	outroCard := filepath.Join(in.WorkDir, OutroCard)
	if !exists(outroCard) {
		a.logger.Info("creating outro card")
		if err := a.outroCard(ctx, outroCard); err != nil {
			return fmt.Errorf("creating outro card: %w", err)
		}
	}

	images := []string{titleCard}
	for _, img := range in.Images {
		if img == "" {
			img = filepath.Join(in.WorkDir, BlankCard)
			if !exists(img) {
				a.logger.Info("creating blank card")
				if err := a.card(ctx, img, nil); err != nil {
					return fmt.Errorf("creating blank card: %w", err)
				}
			}
		}
		images = append(images, img)
	}
	images = append(images, outroCard)
	shown := ImageDurations(durations)
	if len(images) != len(shown) {
		return fmt.Errorf("%w: %d images for %d slides", ErrImageMismatch, len(images), len(shown))
	}

	imageList := filepath.Join(in.WorkDir, "images.txt")
	if err := os.WriteFile(imageList, []byte(ImageList(images, shown)), 0644); err != nil {
		return fmt.Errorf("writing image list: %w", err)
	}
	audioList := filepath.Join(in.WorkDir, "audio.txt")
	if err := os.WriteFile(audioList, []byte(AudioList(in.Audio)), 0644); err != nil {
		return fmt.Errorf("writing audio list: %w", err)
	}

	start := time.Now()
	a.logger.Info("creating video", "output", in.Output, "slides", len(images))
	if _, err := a.runner.Run(ctx, a.cfg.FFmpeg, a.encodeArgs(imageList, audioList, in.Output)...); err != nil {
		return fmt.Errorf("encoding video: %w", err)
	}
	a.logger.Info("video created",
		"output", in.Output,
		"seconds", sum(durations),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Duration returns the length of a media file in seconds.
func (a *Assembler) Duration(ctx context.Context, file string) (float64, error) {
	out, err := a.runner.Run(ctx, a.cfg.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return d, nil
}

// ImageDurations groups clip durations into slide durations: the title
// clip, then each scene's three clips, then the outro clip.
func ImageDurations(clips []float64) []float64 {
	if len(clips) == 0 {
		return nil
	}
	shown := []float64{clips[0]}
	for i := 1; i < len(clips)-1; i += 3 {
		end := min(i+3, len(clips))
		shown = append(shown, sum(clips[i:end]))
	}
	return append(shown, clips[len(clips)-1])
}

// ImageList is a concat demuxer script showing each image for its
// duration. The last image is repeated so its duration is honoured.
func ImageList(images []string, durations []float64) string {
	var b strings.Builder
	for i, img := range images {
		fmt.Fprintf(&b, "file %s\n", quote(img))
		if i < len(durations) {
			fmt.Fprintf(&b, "duration %s\n", strconv.FormatFloat(durations[i], 'f', 3, 64))
		}
	}
	if len(images) > 0 {
		fmt.Fprintf(&b, "file %s\n", quote(images[len(images)-1]))
	}
	return b.String()
}

func AudioList(files []string) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "file %s\n", quote(f))
	}
	return b.String()
}

func (a *Assembler) encodeArgs(imageList, audioList, output string) []string {
	side := a.cfg.Height
	filter := fmt.Sprintf("scale=%d:%d,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=yuv420p",
		side, side, a.cfg.Width, a.cfg.Height, a.cfg.FPS)
	return []string{"-y",
		"-f", "concat", "-safe", "0", "-i", imageList,
		"-f", "concat", "-safe", "0", "-i", audioList,
		"-map", "0:v", "-map", "1:a",
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-r", strconv.Itoa(a.cfg.FPS),
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		output,
	}
}

func (a *Assembler) titleCard(ctx context.Context, in Inputs, path string) error {
	mid := a.cfg.Height / 2
	lines := []drawText{
		{in.Title, TitleFontSize, mid - TitleFontSize - 10},
		{in.Subtitle, SubtitleFontSize, mid + 10},
		{in.Byline, BylineFontSize, mid + SubtitleFontSize + 20},
	}
	return a.card(ctx, path, lines)
}

func (a *Assembler) outroCard(ctx context.Context, path string) error {
	mid := a.cfg.Height / 2
	return a.card(ctx, path, []drawText{
		{"The End", SubtitleFontSize, mid - SubtitleFontSize - 10},
		{"Thank you for watching", SubtitleFontSize, mid + 10},
	})
}

type drawText struct {
	text string
	size int
	y    int
}

func (a *Assembler) card(ctx context.Context, path string, lines []drawText) error {
	_, err := a.runner.Run(ctx, a.cfg.FFmpeg, a.cardArgs(path, lines)...)
	return err
}

func (a *Assembler) cardArgs(path string, lines []drawText) []string {
	side := a.cfg.Height
	var filters []string
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		f := fmt.Sprintf("drawtext=text='%s':fontcolor=white:fontsize=%d:x=10:y=%d",
			escapeText(l.text), l.size, l.y)
		if a.cfg.FontFile != "" {
			f += ":fontfile='" + escapeText(a.cfg.FontFile) + "'"
		}
		filters = append(filters, f)
	}
	args := []string{"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:d=1", side, side),
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}
	return append(args, "-frames:v", "1", path)
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return s
}

func quote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
