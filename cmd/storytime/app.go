package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/myrontuttle/storytime/internal/agent"
	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/domain/character"
	"github.com/myrontuttle/storytime/internal/domain/story"
	"github.com/myrontuttle/storytime/internal/lookup"
	"github.com/myrontuttle/storytime/internal/narrator"
	"github.com/myrontuttle/storytime/internal/pipeline"
	"github.com/myrontuttle/storytime/internal/storage"
	"github.com/myrontuttle/storytime/internal/storage/sqlite"
	"github.com/myrontuttle/storytime/internal/upload"
	"github.com/myrontuttle/storytime/internal/video"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	stories *storage.FileSystem
	cache   *storage.FileSystem
	catalog *sqlite.Store
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	catalog, err := sqlite.Open(ctx, cfg.Paths.CatalogDB)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		stories: storage.NewFileSystem(cfg.Paths.StoriesDir),
		cache:   storage.NewFileSystem(cfg.Paths.CacheDir),
		catalog: catalog,
	}, nil
}

func (a *app) Close() error {
	return a.catalog.Close()
}

func (a *app) generator(ctx context.Context) (*story.Generator, error) {
	text, err := agent.NewTextGenerator(ctx, a.cfg, a.cache, a.logger)
	if err != nil {
		return nil, err
	}
	images, err := agent.NewImageGenerator(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	g := &story.Generator{
		Text:         text,
		Images:       images,
		TextParams:   textParams(a.cfg.Text),
		ScenesPerAct: a.cfg.Limits.ScenesPerAct,
		MaxTertiary:  a.cfg.Limits.MaxTertiary,
		Logger:       a.logger.With("component", "story"),
	}
	if a.cfg.Lookup.Enabled {
		opts := []lookup.Option{
			lookup.WithTimeout(a.cfg.Lookup.Timeout),
			lookup.WithLogger(a.logger.With("component", "lookup")),
		}
		if a.cfg.Lookup.CacheTTL > 0 {
			opts = append(opts, lookup.WithCache(a.cache, a.cfg.Lookup.CacheTTL))
		}
		g.Sources = character.Sources{
			Names:       lookup.NewReedsy(a.cfg.Lookup.NamesURL, opts...),
			Occupations: lookup.NewONet(a.cfg.Lookup.OccupationsURL, opts...),
		}
	}
	g.Sources.Logger = a.logger.With("component", "character")
	return g, nil
}

func textParams(cfg config.TextConfig) agent.TextParams {
	p := agent.DefaultTextParams()
	p.Temperature = cfg.Temperature
	p.TopP = cfg.TopP
	return p.WithMaxTokens(cfg.MaxTokens)
}

// pipeline builds a pipeline with the stages steps needs. Stages left out
// stay nil so that building them never requires unused credentials.
func (a *app) pipeline(ctx context.Context, steps pipeline.Steps) (*pipeline.Pipeline, error) {
	g, err := a.generator(ctx)
	if err != nil {
		return nil, err
	}
	p := &pipeline.Pipeline{
		Generator: g,
		Store:     a.stories,
		Catalog:   a.catalog,
		HTTP:      &http.Client{Timeout: a.cfg.Image.Timeout},
		Naming:    storage.ParseNamingStrategy(a.cfg.Paths.Naming),
		Workers:   a.cfg.Limits.Workers,
		Retry:     a.cfg.Limits.RetryPolicy(),
		Upload:    a.cfg.Upload,
		Logger:    a.logger.With("component", "pipeline"),
	}

	if steps.Narrate {
		speech, err := narrator.NewGoogleSpeech(ctx, a.cfg.Narration)
		if err != nil {
			return nil, err
		}
		p.Narrator = narrator.New(speech, a.stories,
			narrator.WithLanguage(a.cfg.Narration.LanguageCode),
			narrator.WithRetry(a.cfg.Limits.RetryPolicy()),
			narrator.WithLogger(a.logger.With("component", "narrator")))
	}
	if steps.Video {
		p.Renderer = video.New(a.cfg.Video, video.WithLogger(a.logger.With("component", "video")))
	}
	if steps.Upload {
		yt, err := upload.NewYouTube(ctx, a.cfg.Upload)
		if err != nil {
			return nil, err
		}
		p.Publisher = upload.New(yt,
			upload.WithMaxRetries(a.cfg.Upload.MaxRetries),
			upload.WithLogger(a.logger.With("component", "upload")))
	}
	return p, nil
}

// loadStory reads a story from a JSON file, or by catalog ID or ID prefix.
func (a *app) loadStory(ctx context.Context, ref string) (*story.Story, error) {
	if _, err := os.Stat(ref); err == nil {
		return story.LoadFile(ctx, ref)
	}
	e, err := a.catalog.Get(ctx, ref)
	if errors.Is(err, sqlite.ErrNotFound) && a.stories.Exists(ctx, ref) {
		return story.Load(ctx, a.stories, ref)
	}
	if err != nil {
		return nil, err
	}
	return story.Load(ctx, a.stories, e.Path)
}
