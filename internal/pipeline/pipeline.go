// Package pipeline runs a story from premise to published video: writing,
// saving and cataloguing it, then downloading its images, narrating it,
// rendering the video and uploading it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/core"
	"github.com/myrontuttle/storytime/internal/domain/story"
	"github.com/myrontuttle/storytime/internal/storage"
	"github.com/myrontuttle/storytime/internal/storage/sqlite"
	"github.com/myrontuttle/storytime/internal/upload"
	"github.com/myrontuttle/storytime/internal/video"
)

var (
	ErrNoImages      = errors.New("story has no images")
	ErrNotNarrated   = errors.New("story has not been narrated")
	ErrNotRendered   = errors.New("story has no video")
	ErrNotConfigured = errors.New("pipeline stage not configured")
)

// Narrator synthesizes one clip into storage.
type Narrator interface {
	Synthesize(ctx context.Context, text, voiceGender, outputFile string) error
}

// Renderer assembles a video.
type Renderer interface {
	Create(ctx context.Context, in video.Inputs) error
}

// Publisher uploads a rendered video and returns its ID.
type Publisher interface {
	Upload(ctx context.Context, req upload.Request) (string, error)
}

// Steps selects the stages Run performs after writing the story.
type Steps struct {
	Images  bool
	Narrate bool
	Video   bool
	Upload  bool
}

// Pipeline wires the stages together. Only Generator and Store are
// required; a stage whose collaborator is nil fails with ErrNotConfigured.
type Pipeline struct {
	Generator *story.Generator
	Store     storage.StreamStorage
	Catalog   *sqlite.Store
	Narrator  Narrator
	Renderer  Renderer
	Publisher Publisher
	HTTP      *http.Client

	Naming  storage.NamingStrategy
	Workers int
	Timeout time.Duration
	Retry   core.RetryPolicy
	Upload  config.UploadConfig

	Logger *slog.Logger
	Tracer trace.Tracer
}

func (p *Pipeline) defaults() {
	if p.Logger == nil {
		p.Logger = slog.Default().With("component", "pipeline")
	}
	if p.Tracer == nil {
		p.Tracer = otel.Tracer("github.com/myrontuttle/storytime/internal/pipeline")
	}
	if p.HTTP == nil {
		p.HTTP = &http.Client{Timeout: 2 * time.Minute}
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Minute
	}
	if p.Retry.BaseDelay == 0 {
		p.Retry = core.DefaultRetryPolicy()
	}
}

// Run writes a story with opts and carries it through the selected steps.
// The story is saved after every step, so a failed run can be resumed
// from its JSON.
func (p *Pipeline) Run(ctx context.Context, rng *rand.Rand, opts story.Options, steps Steps) (*story.Story, error) {
	p.defaults()
	ctx, span := p.Tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	if steps.Images {
		opts.WithImages = true
	}
	s, _, err := p.Write(ctx, rng, opts)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("story.id", s.ID))

	if steps.Images {
		if _, err := p.DownloadImages(ctx, s); err != nil {
			return s, err
		}
	}
	if steps.Narrate {
		if err := p.Narrate(ctx, s); err != nil {
			return s, err
		}
	}
	if steps.Video {
		if _, err := p.Render(ctx, s); err != nil {
			return s, err
		}
	}
	if steps.Upload {
		if _, err := p.Publish(ctx, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Write generates a story and saves it.
func (p *Pipeline) Write(ctx context.Context, rng *rand.Rand, opts story.Options) (*story.Story, string, error) {
	p.defaults()
	start := time.Now()

	s, err := p.Generator.Generate(ctx, rng, opts)
	if err != nil {
		return nil, "", fmt.Errorf("generating story: %w", err)
	}
	path, err := p.Save(ctx, s)
	if err != nil {
		return s, "", err
	}

	p.Logger.Info("story written",
		"id", s.ID,
		"title", s.Title,
		"path", path,
		"scenes", s.SceneCount(),
		"duration_ms", time.Since(start).Milliseconds())
	return s, path, nil
}

// Save writes the story JSON and records it in the catalog.
func (p *Pipeline) Save(ctx context.Context, s *story.Story) (string, error) {
	p.defaults()
	path, err := s.Save(ctx, p.Store, p.Naming)
	if err != nil {
		return "", err
	}
	if p.Catalog == nil {
		return path, nil
	}
	if err := p.Catalog.Upsert(ctx, Entry(s, path)); err != nil {
		return path, fmt.Errorf("cataloguing story: %w", err)
	}
	return path, nil
}

// Entry is the catalog record of a story saved at path.
func Entry(s *story.Story, path string) sqlite.Entry {
	e := sqlite.Entry{
		ID:             s.ID,
		Title:          s.Title,
		Subtitle:       s.Subtitle,
		BaseName:       s.BaseName,
		Path:           path,
		Structure:      s.Structure,
		Genre:          s.Genre,
		Audience:       s.Audience,
		Era:            s.TimePeriod.Era,
		Acts:           len(s.Acts),
		Scenes:         s.SceneCount(),
		NarrationClips: len(s.Narration),
		Author:         s.Author,
		Illustrator:    s.Illustrator,
		VideoPath:      s.Video,
		VideoID:        s.VideoID,
		CreatedAt:      s.CreatedAt,
	}
	if s.ImageSet != nil {
		e.Images = len(s.ImageSet.Images)
	}
	return e
}

// Narrate synthesizes every clip of the narration script. Clips already
// on disk are kept.
func (p *Pipeline) Narrate(ctx context.Context, s *story.Story) error {
	p.defaults()
	if p.Narrator == nil {
		return fmt.Errorf("narration: %w", ErrNotConfigured)
	}
	ctx, span := p.Tracer.Start(ctx, "pipeline.Narrate")
	defer span.End()

	script := s.NarrationScript()
	p.Logger.Info("narrating story", "id", s.ID, "clips", len(script), "voice", s.Voice())

	pool := NewWorkerPool[clipJob, struct{}](
		WithWorkers(p.Workers), WithTimeout(p.Timeout), WithPoolLogger(p.Logger))
	jobs := make([]clipJob, len(script))
	for i, c := range script {
		jobs[i] = clipJob(c)
	}
	_, err := pool.Process(ctx, jobs, func(ctx context.Context, c clipJob) (struct{}, error) {
		if p.Store.Exists(ctx, c.File) {
			p.Logger.Debug("narration clip exists, skipping", "file", c.File)
			return struct{}{}, nil
		}
		return struct{}{}, p.Narrator.Synthesize(ctx, c.Text, c.Voice, c.File)
	})
	if err != nil {
		return fmt.Errorf("narrating story: %w", err)
	}

	s.Narration = script
	_, err = p.Save(ctx, s)
	return err
}

type clipJob story.Clip

func (c clipJob) ID() string { return c.File }

// Render assembles the narrated story into a video.
func (p *Pipeline) Render(ctx context.Context, s *story.Story) (string, error) {
	p.defaults()
	if p.Renderer == nil {
		return "", fmt.Errorf("video: %w", ErrNotConfigured)
	}
	if len(s.Narration) == 0 {
		return "", ErrNotNarrated
	}
	if s.ImageSet == nil || len(s.ImageSet.Images) == 0 {
		return "", ErrNoImages
	}

	paths := s.Paths()
	in := video.Inputs{
		Title:    s.Title,
		Subtitle: s.Subtitle,
		Byline:   s.Byline(),
	}
	for _, label := range s.ImageSet.Labels() {
		rel := paths.ImageFile(label)
		if !p.Store.Exists(ctx, rel) {
			p.Logger.Warn("scene image missing, showing a blank card", "id", s.ID, "scene", label)
			in.Images = append(in.Images, "")
			continue
		}
		full, err := p.Store.Path(rel)
		if err != nil {
			return "", err
		}
		in.Images = append(in.Images, full)
	}
	for _, file := range s.NarrationFiles() {
		full, err := p.Store.Path(file)
		if err != nil {
			return "", err
		}
		in.Audio = append(in.Audio, full)
	}

	var err error
	if in.WorkDir, err = p.Store.Path(paths.ImagesDir()); err != nil {
		return "", err
	}
	if in.Output, err = p.Store.Path(paths.VideoFile()); err != nil {
		return "", err
	}

	if err := p.Renderer.Create(ctx, in); err != nil {
		return "", fmt.Errorf("rendering video: %w", err)
	}

	s.Video = paths.VideoFile()
	if _, err := p.Save(ctx, s); err != nil {
		return "", err
	}
	return in.Output, nil
}

// Publish uploads the rendered video with the synopsis as its description.
func (p *Pipeline) Publish(ctx context.Context, s *story.Story) (string, error) {
	p.defaults()
	if p.Publisher == nil {
		return "", fmt.Errorf("upload: %w", ErrNotConfigured)
	}
	if s.Video == "" {
		return "", ErrNotRendered
	}
	file, err := p.Store.Path(s.Video)
	if err != nil {
		return "", err
	}

	title := s.Title
	if s.Subtitle != "" {
		title += ": " + s.Subtitle
	}
	id, err := p.Publisher.Upload(ctx, upload.Request{
		File:        file,
		Title:       title,
		Description: s.Synopsis,
		Tags:        p.Upload.Tags,
		Category:    p.Upload.Category,
		Privacy:     p.Upload.Privacy,
	})
	if err != nil {
		return "", err
	}

	s.VideoID = id
	if _, err := p.Save(ctx, s); err != nil {
		return id, err
	}
	return id, nil
}
