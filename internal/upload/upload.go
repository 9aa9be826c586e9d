// Package upload publishes rendered videos to YouTube.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"os"
	"slices"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/core"
)

// Entertainment.
const DefaultCategory = "24"

var (
	// PrivacyStatuses are the visibilities a video may be uploaded with.
	PrivacyStatuses = []string{"public", "private", "unlisted"}

	retriableStatuses = []int{
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
)

// Request describes one video upload.
type Request struct {
	File        string
	Title       string
	Description string
	Tags        []string
	Category    string
	Privacy     string
}

// Inserter sends one videos.insert request with its media.
type Inserter interface {
	Insert(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error)
}

// YouTube inserts videos through the YouTube Data API.
type YouTube struct {
	svc *youtube.Service
}

// NewYouTube authorizes with the configured OAuth client and refresh token.
func NewYouTube(ctx context.Context, cfg config.UploadConfig, opts ...option.ClientOption) (*YouTube, error) {
	if len(opts) == 0 {
		if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
			return nil, fmt.Errorf("youtube upload credentials: %w", core.ErrNoAPIKey)
		}
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{youtube.YoutubeUploadScope},
		}
		ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return &YouTube{svc: svc}, nil
}

func (y *YouTube) Insert(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error) {
	return y.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media).
		Context(ctx).
		Do()
}

// Uploader retries interrupted uploads with randomized exponential backoff.
type Uploader struct {
	inserter   Inserter
	maxRetries int
	sleepUnit  time.Duration
	rng        *rand.Rand
	logger     *slog.Logger
}

type Option func(*Uploader)

func WithMaxRetries(n int) Option {
	return func(u *Uploader) { u.maxRetries = n }
}

// WithSleepUnit scales the backoff; retry n sleeps up to 2^n units.
func WithSleepUnit(d time.Duration) Option {
	return func(u *Uploader) { u.sleepUnit = d }
}

func WithRand(rng *rand.Rand) Option {
	return func(u *Uploader) {
		if rng != nil {
			u.rng = rng
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

func New(inserter Inserter, opts ...Option) *Uploader {
	u := &Uploader{
		inserter:   inserter,
		maxRetries: 10,
		sleepUnit:  time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     slog.Default().With("component", "upload"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload sends req.File and returns the new video's ID. Retriable
// failures are retried until the retry ceiling, after which the error
// wraps core.ErrUploadRetriesExhausted.
func (u *Uploader) Upload(ctx context.Context, req Request) (string, error) {
	if req.Privacy == "" {
		req.Privacy = "private"
	}
	if !slices.Contains(PrivacyStatuses, req.Privacy) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidPrivacy, req.Privacy)
	}
	if req.Category == "" {
		req.Category = DefaultCategory
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  req.Category,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: req.Privacy},
	}

	for retry := 0; ; {
		u.logger.Info("uploading file", "file", req.File, "attempt", retry+1)
		resp, err := u.insert(ctx, video, req.File)
		if err == nil {
			if resp == nil || resp.Id == "" {
				return "", fmt.Errorf("upload failed with an unexpected response: %+v", resp)
			}
			u.logger.Info("video uploaded", "video_id", resp.Id, "title", req.Title)
			return resp.Id, nil
		}
		if !Retriable(err) {
			return "", fmt.Errorf("uploading %s: %w", req.File, err)
		}

		u.logger.Error("retriable upload error", "error", err)
		retry++
		if retry > u.maxRetries {
			return "", fmt.Errorf("%w after %d retries: %w", core.ErrUploadRetriesExhausted, u.maxRetries, err)
		}

		delay := core.JitteredDelay(u.rng, retry, u.sleepUnit)
		u.logger.Info("sleeping before retry", "delay", delay.String())
		if err := core.Sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (u *Uploader) insert(ctx context.Context, video *youtube.Video, file string) (*youtube.Video, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening video: %w", err)
	}
	defer f.Close()
	return u.inserter.Insert(ctx, video, f)
}

// Retriable reports whether an upload error is worth another attempt:
// HTTP 500, 502, 503 and 504, and transport failures.
func Retriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return slices.Contains(retriableStatuses, gerr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, core.ErrNetworkError)
}
