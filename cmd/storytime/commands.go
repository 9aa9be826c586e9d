package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/myrontuttle/storytime/internal/domain/archetype"
	"github.com/myrontuttle/storytime/internal/domain/story"
	"github.com/myrontuttle/storytime/internal/domain/timeperiod"
	"github.com/myrontuttle/storytime/internal/pipeline"
	"github.com/myrontuttle/storytime/internal/random"
)

type command struct {
	app    *app
	seed   int64
	stdout io.Writer
	stderr io.Writer
}

func (c *command) flags(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: storytime %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func stepFlags(fs *flag.FlagSet) *pipeline.Steps {
	var s pipeline.Steps
	fs.BoolVar(&s.Images, "images", false, "illustrate the story and download the images")
	fs.BoolVar(&s.Narrate, "narrate", false, "synthesize the narration")
	fs.BoolVar(&s.Video, "video", false, "render the video (needs -images and -narrate)")
	fs.BoolVar(&s.Upload, "upload", false, "upload the video (needs -video)")
	return &s
}

func (c *command) generate(ctx context.Context, args []string) error {
	fs := c.flags("generate", "")
	var opts story.Options
	fs.StringVar(&opts.Audience, "audience", "", "target audience: "+strings.Join(story.Audiences, ", "))
	fs.StringVar(&opts.Genre, "genre", "", "genre: "+strings.Join(story.Genres, ", "))
	themes := fs.String("themes", "", "comma separated themes")
	fs.StringVar(&opts.Structure, "structure", "", "narrative structure: "+strings.Join(story.StructureNames(), ", "))
	fs.StringVar(&opts.TimePeriod.Era, "era", "", "era: "+strings.Join(timeperiod.Eras, ", "))
	fs.StringVar(&opts.Area, "area", "", "area of each act's opening scene")
	fs.StringVar(&opts.Medium, "medium", "", "art medium of the illustrations")
	fs.StringVar(&opts.Style, "style", "", "art style of the illustrations")
	steps := stepFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *themes != "" {
		for _, t := range strings.Split(*themes, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Themes = append(opts.Themes, t)
			}
		}
	}
	return c.runStory(ctx, opts, *steps)
}

func (c *command) fairytale(ctx context.Context, args []string) error {
	fs := c.flags("fairytale", "")
	storyType := fs.String("type", archetype.FairyTale, "story archetype: "+strings.Join(archetype.Names(archetype.StoryTypes), ", "))
	steps := stepFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	p, err := c.app.pipeline(ctx, *steps)
	if err != nil {
		return err
	}
	rng := random.NewSeeded(c.seed, c.app.logger)
	opts := archetype.StoryOptions(ctx, rng, *storyType, steps.Images, p.Generator.Sources)
	return c.finish(p.Run(ctx, rng, opts, *steps))
}

func (c *command) runStory(ctx context.Context, opts story.Options, steps pipeline.Steps) error {
	p, err := c.app.pipeline(ctx, steps)
	if err != nil {
		return err
	}
	rng := random.NewSeeded(c.seed, c.app.logger)
	return c.finish(p.Run(ctx, rng, opts, steps))
}

func (c *command) finish(s *story.Story, err error) error {
	if s != nil {
		fmt.Fprintf(c.stdout, "%s\t%s\t%s\n", s.ID, s.Title, s.Paths().StoryFile())
	}
	return err
}

// storyArg parses a command taking one story reference.
func (c *command) storyArg(ctx context.Context, name string, args []string, extra func(*flag.FlagSet)) (*story.Story, error) {
	fs := c.flags(name, "<story>")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		if err == nil {
			fs.Usage()
		}
		return nil, errUsage
	}
	return c.app.loadStory(ctx, fs.Arg(0))
}

func (c *command) images(ctx context.Context, args []string) error {
	var medium, style string
	s, err := c.storyArg(ctx, "images", args, func(fs *flag.FlagSet) {
		fs.StringVar(&medium, "medium", "", "art medium for a story without images")
		fs.StringVar(&style, "style", "", "art style for a story without images")
	})
	if err != nil {
		return err
	}
	p, err := c.app.pipeline(ctx, pipeline.Steps{Images: true})
	if err != nil {
		return err
	}

	if s.ImageSet == nil {
		rng := random.NewSeeded(c.seed, c.app.logger)
		if err := p.Generator.Illustrate(ctx, rng, s, medium, style); err != nil {
			return err
		}
		if _, err := p.Save(ctx, s); err != nil {
			return err
		}
	}
	n, err := p.DownloadImages(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "downloaded %d images to %s\n", n, s.Paths().ImagesDir())
	return nil
}

func (c *command) narrate(ctx context.Context, args []string) error {
	s, err := c.storyArg(ctx, "narrate", args, nil)
	if err != nil {
		return err
	}
	p, err := c.app.pipeline(ctx, pipeline.Steps{Narrate: true})
	if err != nil {
		return err
	}
	if err := p.Narrate(ctx, s); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "narrated %d clips to %s\n", len(s.Narration), s.Paths().AudioDir())
	return nil
}

func (c *command) video(ctx context.Context, args []string) error {
	s, err := c.storyArg(ctx, "video", args, nil)
	if err != nil {
		return err
	}
	p, err := c.app.pipeline(ctx, pipeline.Steps{Video: true})
	if err != nil {
		return err
	}
	out, err := p.Render(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out)
	return nil
}

func (c *command) upload(ctx context.Context, args []string) error {
	var privacy string
	s, err := c.storyArg(ctx, "upload", args, func(fs *flag.FlagSet) {
		fs.StringVar(&privacy, "privacy", "", "public, private or unlisted")
	})
	if err != nil {
		return err
	}
	p, err := c.app.pipeline(ctx, pipeline.Steps{Upload: true})
	if err != nil {
		return err
	}
	if privacy != "" {
		p.Upload.Privacy = privacy
	}
	id, err := p.Publish(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "uploaded video %s\n", id)
	return nil
}

func (c *command) list(ctx context.Context, args []string) error {
	fs := c.flags("list", "")
	limit := fs.Int("limit", 20, "maximum stories to list; 0 lists all")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	entries, err := c.app.catalog.List(ctx, *limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTRUCTURE\tSCENES\tIMAGES\tCLIPS\tVIDEO\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			shortID(e.ID), e.Title, e.Structure, e.Scenes, e.Images, e.NarrationClips,
			e.VideoID, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (c *command) show(ctx context.Context, args []string) error {
	s, err := c.storyArg(ctx, "show", args, nil)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
