// Package scene writes a single scene of a story: who is in it, where and
// when it happens, and the generated text of its three parts.
package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/myrontuttle/storytime/internal/agent"
	"github.com/myrontuttle/storytime/internal/domain/character"
	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/domain/location"
	"github.com/myrontuttle/storytime/internal/domain/timeperiod"
	"github.com/myrontuttle/storytime/internal/random"
)

// Scene types alternate within an act.
const (
	TypeScene  = "scene"
	TypeSequel = "sequel"
)

// NoPrevious marks a scene that opens its act.
const NoPrevious = -1

const visualMaxTokens = 60

// PartSpec names a part of a scene and describes what happens in it.
type PartSpec struct {
	Name        string
	Description string
}

var sceneParts = []PartSpec{
	{"goal", "a specific and clearly defined goal that the protagonist wants to achieve is presented."},
	{"conflict", "a problem or set of obstacles is presented that the protagonist faces on the way to reaching their goal."},
	{"disaster", "a disaster occurs to the protagonist that prevents them from achieving their goal."},
}

var sequelParts = []PartSpec{
	{"reaction", "the protagonist's reaction to the disaster of the previous scene is shown."},
	{"dilemma", "a dilemma that the protagonist faces is illustrated."},
	{"decision", "the protagonist's decision to deal with the dilemma is shown."},
}

// Parts returns the parts written for a scene type.
func Parts(sceneType string) []PartSpec {
	if sceneType == TypeSequel {
		return sequelParts
	}
	return sceneParts
}

// Part is the generated text of one part.
type Part struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Scene is one scene of an act.
type Scene struct {
	Number     int                   `json:"number"`
	TotalInAct int                   `json:"total_in_act"`
	Type       string                `json:"type"`
	Roles      []string              `json:"cast"`
	Location   location.Location     `json:"location"`
	TimePeriod timeperiod.TimePeriod `json:"time_period"`
	Setup      string                `json:"setup"`
	Parts      []Part                `json:"parts"`
	Visual     string                `json:"visual"`
	Previous   int                   `json:"previous"`
}

// Params describes the story context a scene is written in.
type Params struct {
	Audience   string
	Genre      string
	Themes     []string
	Beat       string
	TimePeriod timeperiod.TimePeriod
	Cast       character.Cast
	TotalInAct int
	// Area pins the first scene's area. Empty draws one for the era.
	Area string
}

// Deps are the collaborators used to write the scene text.
type Deps struct {
	Text       agent.TextGenerator
	TextParams agent.TextParams
	Logger     *slog.Logger
	Tracer     trace.Tracer
}

// New builds the next scene of an act. previous holds the act's earlier
// scenes in order. Generation failures leave blank parts; New never fails.
func New(ctx context.Context, rng *rand.Rand, p Params, previous []*Scene, d Deps) *Scene {
	if d.Logger == nil {
		d.Logger = slog.Default().With("component", "scene")
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer("github.com/myrontuttle/storytime/internal/domain/scene")
	}
	if d.TextParams.MaxTokens == 0 {
		d.TextParams = agent.DefaultTextParams()
	}

	s := &Scene{
		Number:     len(previous) + 1,
		TotalInAct: p.TotalInAct,
		Type:       TypeScene,
		Previous:   NoPrevious,
	}
	var last *Scene
	if len(previous) > 0 {
		last = previous[len(previous)-1]
		s.Previous = len(previous) - 1
		if last.Type == TypeScene {
			s.Type = TypeSequel
		}
	}

	ctx, span := d.Tracer.Start(ctx, "scene.New", trace.WithAttributes(
		attribute.Int("scene.number", s.Number),
		attribute.String("scene.type", s.Type),
	))
	defer span.End()

	s.Roles = drawRoles(rng, p.Cast)

	if last == nil {
		s.Location = location.New(rng, location.Options{Era: p.TimePeriod.Era, Area: p.Area})
		s.TimePeriod = p.TimePeriod
	} else {
		s.Location, s.TimePeriod = nextSetting(rng, rng.Float64, last)
	}

	s.Setup = setup(p, s, last)

	for _, part := range Parts(s.Type) {
		prompt := PartPrompt(s.Setup, part)
		params := d.TextParams.WithMaxTokens(agent.MaxTokens - len(prompt)/4)
		text := agent.Generate(ctx, d.Text, d.Logger, prompt, params)
		s.Parts = append(s.Parts, Part{Name: part.Name, Text: text})
	}

	if text := s.LastText(); text != "" {
		s.Visual = agent.Generate(ctx, d.Text, d.Logger, VisualPrompt(text), d.TextParams.WithMaxTokens(visualMaxTokens))
	}

	d.Logger.Debug("scene written",
		"number", s.Number,
		"type", s.Type,
		"cast", len(s.Roles),
		"location", s.Location.String())

	return s
}

// nextSetting moves the setting on from the previous scene. The area roll
// is only made when the locale roll fails. roll supplies the branch rolls;
// rng drives the choice of a new locale or area.
func nextSetting(rng *rand.Rand, roll func() float64, last *Scene) (location.Location, timeperiod.TimePeriod) {
	loc := last.Location
	switch {
	case roll() > 0.6:
		loc = location.NewLocale(rng, last.Location)
	case roll() > 0.9:
		loc = location.NewArea(rng, last.Location)
	}

	tp := timeperiod.AdvanceTimeOfDay(last.TimePeriod)
	if roll() > 0.7 {
		tp = timeperiod.AdvanceSeason(tp)
	}
	if roll() > 0.95 {
		tp = timeperiod.AdvanceEra(tp)
	}
	return loc, tp
}

// drawRoles always casts the protagonist, then adds a random role for each
// of a number of draws, skipping roles already cast.
func drawRoles(rng *rand.Rand, cast character.Cast) []string {
	roles := []string{character.Protagonist}
	all := cast.Roles()

	draws := len(all)
	if len(all) >= 3 {
		draws = random.Between(rng, 2, len(all)-1)
	}
	for range draws {
		role := random.Choice(rng, all)
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}

func setup(p Params, s *Scene, last *Scene) string {
	themes := append(append([]string(nil), p.Themes...), "", "")

	var b strings.Builder
	fmt.Fprintf(&b, "As part of a %s appealing to %s with the themes of %s and %s, in the %s scene of a %d scene act where %s",
		p.Genre, p.Audience, themes[0], themes[1], Ordinal(s.Number), s.TotalInAct, p.Beat)

	if last != nil {
		if text := last.LastText(); text != "" {
			fmt.Fprintf(&b, " The previous scene ended with: %s", text)
		}
	}

	fmt.Fprintf(&b, " This scene takes place in a %s in a %s area during %s of %s in the %s era.",
		s.Location.Locale, s.Location.Area, s.TimePeriod.TimeOfDay, s.TimePeriod.Season, s.TimePeriod.Era)

	for _, role := range s.Roles {
		if c := p.Cast.Get(role); c != nil {
			fmt.Fprintf(&b, " %s is the %s.", c, role)
		}
	}
	return b.String()
}

// PartPrompt asks for one part of the scene described by setup.
func PartPrompt(setup string, part PartSpec) string {
	return setup + " Write a part of the scene where " + part.Description +
		" Start with a paragraph that describes what the characters experience externally" +
		" and then write one or more paragraphs that describes how the characters react to" +
		" what happened beginning with their feelings, then any reflexive actions, followed" +
		" by any rational actions and dialogue."
}

// VisualPrompt asks for a one sentence caption of text.
func VisualPrompt(text string) string {
	return "Describe the setting and the characters of the following scene in one sentence" +
		" that could be used as a caption for an illustration: " + text
}

// LastText returns the text of the final part, or "".
func (s *Scene) LastText() string {
	if len(s.Parts) == 0 {
		return ""
	}
	return s.Parts[len(s.Parts)-1].Text
}

// Ordinal returns n with its English ordinal suffix.
func Ordinal(n int) string {
	suffix := "th"
	if m := n % 100; m < 10 || m > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func (s *Scene) String() string {
	var b strings.Builder
	for _, part := range s.Parts {
		b.WriteString("------\n")
		b.WriteString(part.Text)
		b.WriteString("\n")
	}
	return b.String()
}

type sceneJSON Scene

func (s Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		sceneJSON
	}{kind.Scene, sceneJSON(s)})
}

func (s *Scene) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind string `json:"kind"`
		sceneJSON
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := kind.Check(v.Kind, kind.Scene); err != nil {
		return err
	}
	*s = Scene(v.sceneJSON)
	return nil
}
