// Package archetype holds ready-made premises: story archetypes such as the
// fairy tale and the stock characters that populate them.
package archetype

import (
	"context"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/myrontuttle/storytime/internal/domain/character"
	"github.com/myrontuttle/storytime/internal/domain/story"
	"github.com/myrontuttle/storytime/internal/domain/timeperiod"
)

const FairyTale = "fairy tale"

// StoryTypes describes each story archetype.
var StoryTypes = map[string]string{
	FairyTale: "Fairy tales are short and interesting tales, featuring folkloric fantasy characters.",
}

// Stock characters.
const (
	Princess = "princess"
	Prince   = "prince"
	King     = "king"
	Queen    = "queen"
	Wizard   = "wizard"
	Witch    = "witch"
	Knight   = "knight"
)

// CharacterTypes describes each character archetype.
var CharacterTypes = map[string]string{
	Princess: "A princess",
	Prince:   "A prince",
	King:     "A king",
	Queen:    "A queen",
	Wizard:   "A wizard",
	Witch:    "A witch",
	Knight:   "A knight",
}

var characterOptions = map[string]character.Options{
	Princess: {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Female, Age: 14},
	Prince:   {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Male, Age: 10},
	King:     {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Male, Age: 40},
	Queen:    {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Female, Age: 35},
	Wizard:   {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Male, Age: 62},
	Witch:    {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Female, Age: 66},
	Knight:   {Era: timeperiod.Medieval, Ethnicity: "old-english", Gender: character.Male, Age: 25},
}

// fairyTaleCast assigns a stock character to each role.
var fairyTaleCast = []struct {
	role, archetype string
}{
	{character.Protagonist, Princess},
	{character.Antagonist, Witch},
	{character.Deuteragonist, Prince},
	{character.Confidante, Wizard},
	{character.LoveInterest, Knight},
	{character.Foil, Queen},
	{character.TertiaryRole(1), King},
}

// Names returns the known archetypes of a table in sorted order.
func Names(table map[string]string) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Character builds a stock character. An unknown archetype is logged and
// replaced by a random character.
func Character(ctx context.Context, rng *rand.Rand, characterType string, src character.Sources) *character.Character {
	opts, ok := characterOptions[characterType]
	if !ok {
		logger(src.Logger).Error("character type not found, generating random character",
			"character_type", characterType)
	}
	return character.New(ctx, rng, opts, src)
}

// StoryOptions returns the premise of a story archetype with its cast
// built. An unknown archetype is logged and yields empty options, so the
// whole story is drawn at random.
func StoryOptions(ctx context.Context, rng *rand.Rand, storyType string, withImages bool, src character.Sources) story.Options {
	if storyType != FairyTale {
		logger(src.Logger).Error("story type not found, generating random story",
			"story_type", storyType)
		return story.Options{WithImages: withImages}
	}

	var cast character.Cast
	for _, m := range fairyTaleCast {
		cast = append(cast, character.Member{
			Role:      m.role,
			Character: Character(ctx, rng, m.archetype, src),
		})
	}

	return story.Options{
		Audience:   "children",
		Genre:      "fantasy",
		Themes:     []string{"love", "friendship"},
		Structure:  story.FiveAct,
		TimePeriod: timeperiod.Options{Era: timeperiod.Medieval},
		Cast:       cast,
		Area:       "medieval",
		WithImages: withImages,
		Medium:     "digital art",
		Style:      "pixar",
	}
}

// Generate writes a story of the given archetype.
func Generate(ctx context.Context, g *story.Generator, rng *rand.Rand, storyType string, withImages bool) (*story.Story, error) {
	opts := StoryOptions(ctx, rng, storyType, withImages, g.Sources)
	return g.Generate(ctx, rng, opts)
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default().With("component", "archetype")
	}
	return l
}
