// Package character builds story characters: their names, appearance,
// psychology and background, and the cast that assigns them roles.
package character

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/random"
)

// NameSource looks up a full name for a character.
type NameSource interface {
	FullName(ctx context.Context, ethnicity, gender, nameType string) (string, error)
}

// OccupationSource lists occupations matching three job interest areas.
type OccupationSource interface {
	Occupations(ctx context.Context, interests []string) ([]string, error)
}

// Sources are the external collaborators used to fill in names and
// contemporary occupations. Nil sources fall back to placeholders.
type Sources struct {
	Names       NameSource
	Occupations OccupationSource
	Logger      *slog.Logger
}

// Personality rates the five personality factors.
type Personality struct {
	Agreeable     string `json:"agreeable"`
	Conscientious string `json:"conscientious"`
	Extraverted   string `json:"extraverted"`
	Neurotic      string `json:"neurotic"`
	Open          string `json:"open"`
}

// Character is a fully described story character.
type Character struct {
	Era          string      `json:"era"`
	Ethnicity    string      `json:"ethnicity"`
	Gender       string      `json:"gender"`
	Pronoun      string      `json:"pronoun"`
	FullName     string      `json:"full_name"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Name         string      `json:"name"`
	Age          int         `json:"age"`
	Height       string      `json:"height"`
	Weight       string      `json:"weight"`
	FaceType     string      `json:"face_type"`
	HairColor    string      `json:"hair_color"`
	EyeColor     string      `json:"eye_color"`
	SkinTone     string      `json:"skin_tone"`
	Personality  Personality `json:"personality"`
	Values       []string    `json:"values"`
	JobInterests []string    `json:"job_interests"`
	SocialClass  string      `json:"social_class"`
	Education    string      `json:"education"`
	Occupation   string      `json:"occupation"`
}

// Options selects explicit attributes. Zero values are sampled or derived.
type Options struct {
	Era          string
	Ethnicity    string
	Gender       string
	FullName     string
	Age          int
	Height       string
	Weight       string
	FaceType     string
	HairColor    string
	EyeColor     string
	SkinTone     string
	Personality  Personality
	Values       []string
	JobInterests []string
	SocialClass  string
	Education    string
	Occupation   string
}

// New builds a character. Lookup failures are logged and replaced with
// placeholders, so New always returns a usable character.
func New(ctx context.Context, rng *rand.Rand, opts Options, src Sources) *Character {
	logger := src.Logger
	if logger == nil {
		logger = slog.Default().With("component", "character")
	}
	pick := func(explicit string, items []string) string {
		if explicit != "" {
			return explicit
		}
		return random.Choice(rng, items)
	}

	c := &Character{Era: opts.Era}
	defaults, ok := eras[c.Era]
	if !ok {
		c.Era = "Contemporary"
		defaults = eras[c.Era]
	}

	c.Ethnicity = pick(opts.Ethnicity, Ethnicities)
	if defaults.ethnicity != "" {
		c.Ethnicity = defaults.ethnicity
	}

	c.Gender = pick(opts.Gender, Genders)
	c.Pronoun = "She"
	if c.Gender == Male {
		c.Pronoun = "He"
	}

	c.FullName = opts.FullName
	if c.FullName == "" {
		c.FullName = lookupName(ctx, src.Names, c.Ethnicity, c.Gender, defaults.nameType, logger)
	}
	c.FirstName, c.LastName = splitName(c.FullName, c.Ethnicity)
	c.Name = c.FirstName

	c.Age = opts.Age
	if c.Age <= 0 {
		c.Age = random.Between(rng, 5, defaults.maxAge)
	}

	c.Height = pick(opts.Height, heights)
	c.Weight = pick(opts.Weight, weights)
	c.FaceType = pick(opts.FaceType, faceTypes)

	p, ok := palettes[c.Ethnicity]
	if !ok {
		p = northernEuropean
	}
	hair := p.hair
	if p.greying && c.Age > 60 {
		hair = greyHair
	}
	c.HairColor = pick(opts.HairColor, hair)
	c.EyeColor = pick(opts.EyeColor, p.eyes)
	c.SkinTone = pick(opts.SkinTone, p.skin)

	c.Personality = Personality{
		Agreeable:     pick(opts.Personality.Agreeable, degrees),
		Conscientious: pick(opts.Personality.Conscientious, degrees),
		Extraverted:   pick(opts.Personality.Extraverted, degrees),
		Neurotic:      pick(opts.Personality.Neurotic, degrees),
		Open:          pick(opts.Personality.Open, degrees),
	}

	c.Values = opts.Values
	if len(c.Values) < 3 {
		c.Values = random.Sample(rng, valueList, 3)
	}
	c.JobInterests = opts.JobInterests
	if len(c.JobInterests) < 3 {
		c.JobInterests = random.Sample(rng, InterestAreas, 3)
	}

	c.SocialClass = pick(opts.SocialClass, socialClasses)
	c.Education, c.Occupation = opts.Education, opts.Occupation
	if c.Education == "" || c.Occupation == "" {
		edu, occ := background(ctx, rng, c, src.Occupations, logger)
		if c.Education == "" {
			c.Education = edu
		}
		if c.Occupation == "" {
			c.Occupation = occ
		}
	}
	return c
}

func lookupName(ctx context.Context, names NameSource, ethnicity, gender, nameType string, logger *slog.Logger) string {
	placeholder := "Jane Doe"
	if gender == Male {
		placeholder = "John Doe"
	}
	if names == nil {
		return placeholder
	}
	name, err := names.FullName(ctx, ethnicity, gender, nameType)
	if err != nil || strings.TrimSpace(name) == "" {
		logger.Error("name lookup failed",
			"ethnicity", ethnicity,
			"gender", gender,
			"error", err)
		return placeholder
	}
	return strings.TrimSpace(name)
}

// splitName returns the first and last name. Family-name-first ethnicities
// are reversed and old-norse names have no last name.
func splitName(full, ethnicity string) (first, last string) {
	parts := strings.Fields(full)
	switch {
	case len(parts) == 0:
		return "", ""
	case len(parts) == 1:
		return parts[0], ""
	case familyNameFirst[ethnicity]:
		return parts[len(parts)-1], parts[0]
	case ethnicity == "old-norse":
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}

// background draws education and occupation for the character's era and
// age. Only adults of the Contemporary era consult the occupation source.
func background(ctx context.Context, rng *rand.Rand, c *Character, occupations OccupationSource, logger *slog.Logger) (education, occupation string) {
	switch c.Era {
	case "Prehistoric":
		return "minimal", random.Choice(rng, []string{"Hunter", "Gatherer"})
	case "Ancient":
		return "minimal", random.Choice(rng, []string{"Farmer", "Carpenter", "Smith", "Merchant"})
	case "Medieval":
		education = random.Choice(rng, []string{"minimal", "basic", "intermediate"})
		return education, random.Choice(rng, []string{"Farmer", "Carpenter", "Smith", "Merchant", "Knight", "Noble"})
	case "Renaissance":
		education = random.Choice(rng, []string{"minimal", "basic", "intermediate", "advanced"})
		return education, random.Choice(rng, []string{"Farmer", "Carpenter", "Artist", "Merchant", "Doctor", "Lawyer", "Engineer"})
	}

	switch {
	case c.Age <= 10:
		education, occupation = "Elementary School", "Student"
	case c.Age <= 15:
		education, occupation = "Middle School", "Student"
	case c.Age <= 18:
		education, occupation = "High School", "Student"
	case c.Age <= 22:
		education = random.Choice(rng, []string{"College", "High School"})
		occupation = random.Choice(rng, append([]string{"Student"}, genericJobs...))
	default:
		education = random.Choice(rng, []string{"College", "High School", "Trade School", "Grad School"})
		if c.Era == "Contemporary" {
			occupation = lookupOccupation(ctx, rng, occupations, c.JobInterests, logger)
		} else {
			occupation = random.Choice(rng, genericJobs)
		}
	}
	if c.Age > 65 {
		occupation = "Retired " + occupation
	}
	return education, occupation
}

func lookupOccupation(ctx context.Context, rng *rand.Rand, occupations OccupationSource, interests []string, logger *slog.Logger) string {
	if occupations != nil {
		jobs, err := occupations.Occupations(ctx, interests)
		if err == nil && len(jobs) > 0 {
			return strings.Trim(random.Choice(rng, jobs), "s")
		}
		logger.Error("occupation lookup failed", "interests", interests, "error", err)
	}
	return random.Choice(rng, genericJobs)
}

func (c *Character) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, a %d year old ", c.Name, c.Age)
	switch {
	case c.Age < 18 && c.Gender == Male:
		b.WriteString("boy ")
	case c.Age < 18:
		b.WriteString("girl ")
	case c.Gender == Male:
		b.WriteString("man ")
	default:
		b.WriteString("woman ")
	}
	fmt.Fprintf(&b, "of %s descent that values %s", c.Ethnicity, c.valueList())
	return b.String()
}

// Appearance describes how the character looks.
func (c *Character) Appearance() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is %d years old of %s descent with %s skin, %s hair, and %s eyes. ",
		c.Name, c.Age, c.Ethnicity, c.SkinTone, c.HairColor, c.EyeColor)

	tall := c.Height == "tall" || c.Height == "very tall"
	switch c.Weight {
	case "fat", "very fat":
		switch {
		case c.Age < 18:
			fmt.Fprintf(&b, "%s is %s and a bit chubby.", c.Pronoun, c.Height)
		case c.Gender == Female:
			fmt.Fprintf(&b, "%s is %s and plump.", c.Pronoun, c.Height)
		case c.Height == "very short":
			fmt.Fprintf(&b, "%s is tubby.", c.Pronoun)
		case c.Height == "short":
			fmt.Fprintf(&b, "%s is stocky.", c.Pronoun)
		}
	case "thin", "very thin":
		switch {
		case c.Gender == Male && tall:
			fmt.Fprintf(&b, "%s is lanky.", c.Pronoun)
		case c.Gender == Male:
			fmt.Fprintf(&b, "%s is %s and lean.", c.Pronoun, c.Height)
		case c.Gender == Female && tall:
			fmt.Fprintf(&b, "%s is %s and willowy.", c.Pronoun, c.Height)
		case c.Gender == Female:
			fmt.Fprintf(&b, "%s is %s and slender.", c.Pronoun, c.Height)
		}
	default:
		fmt.Fprintf(&b, "%s is %s and %s.", c.Pronoun, c.Height, c.Weight)
	}
	return b.String()
}

// Background describes the character's class, education and occupation.
func (c *Character) Background() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s was born in the %s era and is %s class. ", c.Name, c.Era, c.SocialClass)
	switch c.Era {
	case "Prehistoric", "Ancient", "Medieval", "Renaissance":
		if c.Age <= 10 {
			fmt.Fprintf(&b, "%s is training to be a %s.", c.Pronoun, c.Occupation)
		} else {
			fmt.Fprintf(&b, "%s is a %s.", c.Pronoun, c.Occupation)
		}
	default:
		fmt.Fprintf(&b, "%s has a %s education and is a %s.", c.Pronoun, c.Education, c.Occupation)
	}
	return b.String()
}

// Psychology describes personality, values and work interests.
func (c *Character) Psychology() string {
	p := c.Personality
	return fmt.Sprintf("%s is %s open-minded, %s conscientious, %s outgoing, %s agreeable, and %s neurotic. "+
		"%s values %s. "+
		"%s is interested in work that is %s.",
		c.Name, p.Open, p.Conscientious, p.Extraverted, p.Agreeable, p.Neurotic,
		c.Pronoun, c.valueList(),
		c.Pronoun, listOfThree(c.JobInterests))
}

func (c *Character) valueList() string {
	return listOfThree(c.Values)
}

func listOfThree(items []string) string {
	var v [3]string
	copy(v[:], items)
	return fmt.Sprintf("%s, %s, and %s", v[0], v[1], v[2])
}

type characterJSON Character

func (c Character) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		characterJSON
	}{kind.Character, characterJSON(c)})
}

func (c *Character) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind string `json:"kind"`
		characterJSON
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := kind.Check(v.Kind, kind.Character); err != nil {
		return err
	}
	*c = Character(v.characterJSON)
	return nil
}
