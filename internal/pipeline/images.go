package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"github.com/myrontuttle/storytime/internal/core"
	"github.com/myrontuttle/storytime/internal/domain/story"
)

type imageJob struct {
	label string
	url   string
	path  string
}

func (j imageJob) ID() string { return j.label }

// DownloadImages fetches every illustration of s into its images
// directory and returns how many were downloaded. Images already on disk
// and images whose generation failed are skipped.
func (p *Pipeline) DownloadImages(ctx context.Context, s *story.Story) (int, error) {
	p.defaults()
	if s.ImageSet == nil {
		return 0, ErrNoImages
	}
	ctx, span := p.Tracer.Start(ctx, "pipeline.DownloadImages")
	defer span.End()

	paths := s.Paths()
	var jobs []imageJob
	for _, img := range s.ImageSet.Images {
		path := paths.ImageFile(img.Label)
		switch {
		case img.URL == "":
			p.Logger.Warn("image has no URL, skipping", "label", img.Label)
		case p.Store.Exists(ctx, path):
			p.Logger.Debug("image exists, skipping", "label", img.Label)
		default:
			jobs = append(jobs, imageJob{label: img.Label, url: img.URL, path: path})
		}
	}

	pool := NewWorkerPool[imageJob, int64](
		WithWorkers(p.Workers), WithTimeout(p.Timeout), WithPoolLogger(p.Logger))
	sizes, err := pool.Process(ctx, jobs, func(ctx context.Context, j imageJob) (int64, error) {
		var n int64
		err := core.Retry(ctx, p.Retry, p.Logger, "download "+j.label, func(ctx context.Context) error {
			var err error
			n, err = p.download(ctx, j)
			return err
		})
		return n, err
	})
	if err != nil {
		return 0, fmt.Errorf("downloading images: %w", err)
	}

	var total int64
	for _, n := range sizes {
		total += n
	}
	p.Logger.Info("images downloaded", "id", s.ID, "count", len(sizes), "bytes", total)
	return len(sizes), nil
}

func (p *Pipeline) download(ctx context.Context, j imageJob) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := p.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &core.APIError{Provider: "image download", Status: resp.StatusCode, Body: resp.Status}
	}
	return p.Store.SaveStream(ctx, j.path, resp.Body)
}
