// Command storytime writes stories with a language model and renders them
// into narrated, illustrated videos.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/core"
	"github.com/myrontuttle/storytime/internal/telemetry"
)

const usage = `Usage: storytime [-config file] [-seed n] <command> [flags] [args]

Commands:
  generate    write a random or partly specified story
  fairytale   write a story from an archetype
  images      illustrate a story and download its images
  narrate     synthesize a story's narration
  video       render a narrated story into a video
  upload      upload a rendered story to YouTube
  list        list catalogued stories
  show        print a catalogued story

Stories are referenced by JSON path, catalog ID or unique ID prefix.
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	case errors.Is(err, core.ErrUploadRetriesExhausted):
		slog.Error("no longer attempting to retry upload", "error", err)
		os.Exit(1)
	default:
		slog.Error("storytime failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("storytime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to config.yaml")
	seed := fs.Int64("seed", 0, "random seed; 0 picks one and logs it")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, stderr)
	slog.SetDefault(logger)

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.Limits.TotalTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd := &command{app: a, seed: *seed, stdout: stdout, stderr: stderr}
	name, rest := fs.Arg(0), fs.Args()[1:]
	switch name {
	case "generate":
		return cmd.generate(ctx, rest)
	case "fairytale":
		return cmd.fairytale(ctx, rest)
	case "images":
		return cmd.images(ctx, rest)
	case "narrate":
		return cmd.narrate(ctx, rest)
	case "video":
		return cmd.video(ctx, rest)
	case "upload":
		return cmd.upload(ctx, rest)
	case "list":
		return cmd.list(ctx, rest)
	case "show":
		return cmd.show(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fs.Usage()
		return errUsage
	}
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
