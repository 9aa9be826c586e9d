// Package story generates a complete story: its premise, cast, title and
// the acts of scenes that follow a narrative structure.
package story

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/myrontuttle/storytime/internal/agent"
	"github.com/myrontuttle/storytime/internal/domain/character"
	"github.com/myrontuttle/storytime/internal/domain/imageset"
	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/domain/scene"
	"github.com/myrontuttle/storytime/internal/domain/timeperiod"
	"github.com/myrontuttle/storytime/internal/random"
)

const (
	DefaultScenesPerAct = 2
	DefaultMaxTertiary  = 3

	titleMaxTokens = 30
	untitled       = "Untitled"
)

// Story is a generated story and everything rendered from it.
type Story struct {
	ID          string                `json:"id"`
	Audience    string                `json:"audience"`
	Genre       string                `json:"genre"`
	Themes      []string              `json:"themes"`
	Structure   string                `json:"structure"`
	Beats       []Beat                `json:"beats"`
	TimePeriod  timeperiod.TimePeriod `json:"time_period"`
	Cast        character.Cast        `json:"cast"`
	Area        string                `json:"area,omitempty"`
	Synopsis    string                `json:"synopsis"`
	Title       string                `json:"title"`
	Subtitle    string                `json:"subtitle,omitempty"`
	Acts        [][]*scene.Scene      `json:"acts"`
	ImageSet    *imageset.ImageSet    `json:"image_set,omitempty"`
	Narration   []Clip                `json:"narration,omitempty"`
	Video       string                `json:"video,omitempty"`
	VideoID     string                `json:"video_id,omitempty"`
	Author      string                `json:"author"`
	Illustrator string                `json:"illustrator,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	BaseName    string                `json:"base_name,omitempty"`
}

// Options pins parts of the premise. Zero values are sampled.
type Options struct {
	Audience   string
	Genre      string
	Themes     []string
	Structure  string
	TimePeriod timeperiod.Options
	Cast       character.Cast
	// Area pins the area of each act's opening scene.
	Area       string
	WithImages bool
	Medium     string
	Style      string
}

// Generator writes stories with the configured collaborators.
type Generator struct {
	Text       agent.TextGenerator
	Images     agent.ImageGenerator
	Sources    character.Sources
	TextParams agent.TextParams

	// ScenesPerAct bounds the scenes drawn per act. It must be even; 2
	// writes exactly two scenes per act.
	ScenesPerAct int
	MaxTertiary  int

	Logger *slog.Logger
	Tracer trace.Tracer
	Now    func() time.Time
}

func (g *Generator) defaults() {
	if g.Logger == nil {
		g.Logger = slog.Default().With("component", "story")
	}
	if g.Tracer == nil {
		g.Tracer = otel.Tracer("github.com/myrontuttle/storytime/internal/domain/story")
	}
	if g.Now == nil {
		g.Now = time.Now
	}
	if g.TextParams.MaxTokens == 0 {
		g.TextParams = agent.DefaultTextParams()
	}
	if g.ScenesPerAct < 2 {
		g.ScenesPerAct = DefaultScenesPerAct
	}
	if g.MaxTertiary < 0 {
		g.MaxTertiary = 0
	}
	if g.Sources.Logger == nil {
		g.Sources.Logger = g.Logger
	}
}

// Generate writes a story. Generation failures degrade to blank text; the
// only error returned is the context's.
func (g *Generator) Generate(ctx context.Context, rng *rand.Rand, opts Options) (*Story, error) {
	g.defaults()

	ctx, span := g.Tracer.Start(ctx, "story.Generate")
	defer span.End()

	s := &Story{
		ID:        uuid.NewString(),
		CreatedAt: g.Now().UTC(),
		Area:      opts.Area,
	}

	s.Audience = pick(rng, opts.Audience, Audiences)
	s.Genre = pick(rng, opts.Genre, Genres)

	s.Themes = append([]string(nil), opts.Themes...)
	for len(s.Themes) < 2 {
		s.Themes = append(s.Themes, random.Choice(rng, Concepts))
	}

	structure, ok := FindStructure(opts.Structure)
	if !ok {
		if opts.Structure != "" {
			g.Logger.Warn("unknown narrative structure, choosing one at random", "structure", opts.Structure)
		}
		structure = random.Choice(rng, Structures)
	}
	s.Structure = structure.Name
	s.Beats = structure.Beats

	s.TimePeriod = timeperiod.New(rng, opts.TimePeriod)

	s.Cast = opts.Cast
	if len(s.Cast) == 0 {
		s.Cast = g.newCast(ctx, rng, s.TimePeriod.Era)
	} else if !s.Cast.Has(character.Protagonist) {
		g.Logger.Warn("cast has no protagonist, generating one")
		lead := character.New(ctx, rng, character.Options{Era: s.TimePeriod.Era}, g.Sources)
		s.Cast = append(character.Cast{{Role: character.Protagonist, Character: lead}}, s.Cast...)
	}

	span.SetAttributes(
		attribute.String("story.id", s.ID),
		attribute.String("story.structure", s.Structure),
		attribute.String("story.era", s.TimePeriod.Era),
		attribute.Int("story.cast", len(s.Cast)),
	)

	s.Synopsis = synopsis(s)
	s.Title, s.Subtitle = splitTitle(agent.Generate(ctx, g.Text, g.Logger,
		"Write a title for "+s.Synopsis, g.TextParams.WithMaxTokens(titleMaxTokens)))
	s.Author = agent.ModelName(g.Text)

	g.Logger.Info("writing story",
		"id", s.ID,
		"title", s.Title,
		"structure", s.Structure,
		"acts", len(s.Beats))

	deps := scene.Deps{Text: g.Text, TextParams: g.TextParams, Logger: g.Logger, Tracer: g.Tracer}
	for i, beat := range s.Beats {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("writing act %d: %w", i+1, err)
		}

		total := scenesInAct(rng, g.ScenesPerAct)
		g.Logger.Info("generating act", "act", i+1, "beat", beat.Name, "scenes", total)

		params := scene.Params{
			Audience:   s.Audience,
			Genre:      s.Genre,
			Themes:     s.Themes,
			Beat:       beat.Description,
			TimePeriod: s.TimePeriod,
			Cast:       s.Cast,
			TotalInAct: total,
			Area:       s.Area,
		}
		var act []*scene.Scene
		for range total {
			act = append(act, scene.New(ctx, rng, params, act, deps))
		}
		s.Acts = append(s.Acts, act)
	}

	if opts.WithImages {
		if err := g.Illustrate(ctx, rng, s, opts.Medium, opts.Style); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	return s, nil
}

// Illustrate generates one image per scene, labelled by act and scene
// number. An existing image set keeps its medium and style.
func (g *Generator) Illustrate(ctx context.Context, rng *rand.Rand, s *Story, medium, style string) error {
	g.defaults()

	if s.ImageSet == nil {
		s.ImageSet = imageset.New(rng, medium, style, g.Images, g.Logger)
	} else {
		s.ImageSet.Attach(g.Images, g.Logger)
	}
	s.Illustrator = agent.ModelName(g.Images)

	for a, act := range s.Acts {
		for n, sc := range act {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("illustrating story: %w", err)
			}
			s.ImageSet.AddSceneImage(ctx, imageset.Label(a+1, n+1), sc)
		}
	}
	return nil
}

func (g *Generator) newCast(ctx context.Context, rng *rand.Rand, era string) character.Cast {
	var cast character.Cast
	for _, role := range character.PrincipalRoles {
		cast = append(cast, character.Member{
			Role:      role,
			Character: character.New(ctx, rng, character.Options{Era: era}, g.Sources),
		})
	}
	for i := range rng.Intn(g.MaxTertiary + 1) {
		cast = append(cast, character.Member{
			Role:      character.TertiaryRole(i),
			Character: character.New(ctx, rng, character.Options{Era: era}, g.Sources),
		})
	}
	return cast
}

func pick(rng *rand.Rand, explicit string, items []string) string {
	if explicit != "" {
		return explicit
	}
	return random.Choice(rng, items)
}

// scenesInAct draws an even scene count in [2, limit).
func scenesInAct(rng *rand.Rand, limit int) int {
	if limit <= 2 {
		return 2
	}
	return 2 + 2*rng.Intn((limit-1)/2)
}

func synopsis(s *Story) string {
	return fmt.Sprintf("A %s story targeted at %s during the %s era. %s must grapple with themes of %s and %s. "+
		"Using a %s narrative structure. Starting around %s during %s.",
		s.Genre, s.Audience, s.TimePeriod.Era,
		s.Cast.Get(character.Protagonist),
		s.Themes[0], s.Themes[1],
		s.Structure, s.TimePeriod.TimeOfDay, s.TimePeriod.Season)
}

// splitTitle splits "Title: Subtitle" at the first colon.
func splitTitle(raw string) (title, subtitle string) {
	raw = strings.TrimSpace(raw)
	if before, after, ok := strings.Cut(raw, ":"); ok {
		after, _, _ = strings.Cut(after, ":")
		title, subtitle = strings.TrimSpace(before), strings.TrimSpace(after)
	} else {
		title = raw
	}
	title = strings.Trim(title, `"`)
	subtitle = strings.Trim(subtitle, `"`)
	if title == "" {
		title = untitled
	}
	return title, subtitle
}

// SceneCount returns the number of scenes across all acts.
func (s *Story) SceneCount() int {
	n := 0
	for _, act := range s.Acts {
		n += len(act)
	}
	return n
}

func (s *Story) String() string {
	var b strings.Builder
	b.WriteString(s.Synopsis)
	b.WriteString("\n\n")
	for a, act := range s.Acts {
		fmt.Fprintf(&b, "Act %d\n", a+1)
		for n, sc := range act {
			fmt.Fprintf(&b, "Scene %d\n", n+1)
			b.WriteString(sc.String())
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

type storyJSON Story

func (s Story) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		storyJSON
	}{kind.Story, storyJSON(s)})
}

func (s *Story) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind string `json:"kind"`
		storyJSON
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := kind.Check(v.Kind, kind.Story); err != nil {
		return err
	}
	*s = Story(v.storyJSON)
	return nil
}
