package scene

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/myrontuttle/storytime/internal/agent"
	"github.com/myrontuttle/storytime/internal/domain/character"
	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/domain/location"
	"github.com/myrontuttle/storytime/internal/domain/timeperiod"
	"github.com/myrontuttle/storytime/internal/random"
)

func testCast() character.Cast {
	person := func(name, gender string, age int) *character.Character {
		return &character.Character{
			Name:      name,
			Gender:    gender,
			Age:       age,
			Ethnicity: "english",
			Values:    []string{"honesty", "courage", "loyalty"},
		}
	}
	return character.Cast{
		{Role: character.Protagonist, Character: person("Ada", character.Female, 36)},
		{Role: character.Antagonist, Character: person("Bram", character.Male, 50)},
		{Role: character.Deuteragonist, Character: person("Cleo", character.Female, 12)},
		{Role: character.Confidante, Character: person("Dov", character.Male, 70)},
		{Role: character.TertiaryRole(0), Character: person("Eve", character.Female, 22)},
	}
}

func testParams() Params {
	return Params{
		Audience:   "families",
		Genre:      "mystery",
		Themes:     []string{"trust", "loss"},
		Beat:       "the hero is introduced.",
		TimePeriod: timeperiod.TimePeriod{Era: timeperiod.Colonial, Season: "Winter", TimeOfDay: "dawn"},
		Cast:       testCast(),
		TotalInAct: 4,
	}
}

func writeAct(t *testing.T, seed int64, n int, text agent.TextGenerator) []*Scene {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	var scenes []*Scene
	for range n {
		scenes = append(scenes, New(context.Background(), rng, testParams(), scenes, Deps{Text: text}))
	}
	return scenes
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 10: "10th", 11: "11th", 12: "12th",
		13: "13th", 20: "20th", 21: "21st", 22: "22nd", 23: "23rd", 101: "101st",
		111: "111th", 112: "112th", 0: "0th",
	}
	for n, want := range tests {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestTypesAlternate(t *testing.T) {
	scenes := writeAct(t, 1, 6, agent.NewMockClient())

	for i, s := range scenes {
		want := TypeScene
		if i%2 == 1 {
			want = TypeSequel
		}
		if s.Type != want {
			t.Errorf("scene %d type = %q, want %q", i, s.Type, want)
		}
		if s.Number != i+1 {
			t.Errorf("scene %d number = %d", i, s.Number)
		}
		if s.Previous != i-1 {
			t.Errorf("scene %d previous = %d, want %d", i, s.Previous, i-1)
		}
		if len(s.Parts) != 3 || s.Parts[0].Name != Parts(want)[0].Name {
			t.Errorf("scene %d parts = %+v", i, s.Parts)
		}
	}
}

func TestFirstSceneSetting(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		p := testParams()
		s := New(context.Background(), rand.New(rand.NewSource(seed)), p, nil, Deps{Text: agent.NewMockClient()})

		if s.TimePeriod != p.TimePeriod {
			t.Errorf("seed %d: time period = %+v, want story time %+v", seed, s.TimePeriod, p.TimePeriod)
		}
		if s.Location.Era != p.TimePeriod.Era || !location.HasLocale(s.Location.Era, s.Location.Area, s.Location.Locale) {
			t.Errorf("seed %d: location %+v is not a location of the era", seed, s.Location)
		}
	}
}

func TestFirstSceneHonoursArea(t *testing.T) {
	p := testParams()
	p.Area = "rural"
	s := New(context.Background(), rand.New(rand.NewSource(3)), p, nil, Deps{Text: agent.NewMockClient()})
	if s.Location.Area != "rural" {
		t.Errorf("area = %q, want rural", s.Location.Area)
	}
}

func TestLaterScenesAdvanceTime(t *testing.T) {
	scenes := writeAct(t, 7, 4, agent.NewMockClient())
	for i := 1; i < len(scenes); i++ {
		want := timeperiod.AdvanceTimeOfDay(scenes[i-1].TimePeriod).TimeOfDay
		if scenes[i].TimePeriod.TimeOfDay != want {
			t.Errorf("scene %d time of day = %q, want %q", i, scenes[i].TimePeriod.TimeOfDay, want)
		}
	}
}

func TestRoles(t *testing.T) {
	cast := testCast()
	for seed := int64(1); seed <= 50; seed++ {
		roles := drawRoles(rand.New(rand.NewSource(seed)), cast)
		if roles[0] != character.Protagonist {
			t.Fatalf("seed %d: first role = %q", seed, roles[0])
		}
		// Draw count is at most len(cast)-1, plus the protagonist.
		if len(roles) > len(cast) {
			t.Errorf("seed %d: %d roles from a cast of %d", seed, len(roles), len(cast))
		}
		seen := map[string]bool{}
		for _, r := range roles {
			if seen[r] || !cast.Has(r) {
				t.Errorf("seed %d: bad role list %v", seed, roles)
			}
			seen[r] = true
		}
	}

	small := cast[:2]
	roles := drawRoles(rand.New(rand.NewSource(1)), small)
	if len(roles) < 1 || len(roles) > 2 {
		t.Errorf("small cast roles = %v", roles)
	}
}

// rolls replays fixed branch rolls and counts how many were taken.
type rolls struct {
	values []float64
	taken  int
}

func (r *rolls) next() float64 {
	v := r.values[r.taken]
	r.taken++
	return v
}

func TestNextSetting(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	last := &Scene{
		Location:   location.New(rng, location.Options{Era: timeperiod.Colonial, Area: "rural"}),
		TimePeriod: timeperiod.TimePeriod{Era: timeperiod.Colonial, Season: "Winter", TimeOfDay: "dawn"},
	}

	tests := []struct {
		name   string
		rolls  []float64
		taken  int
		locale bool
		area   bool
		season bool
		era    bool
	}{
		{name: "new locale", rolls: []float64{0.61, 0.1, 0.1}, taken: 3, locale: true},
		{name: "new area", rolls: []float64{0.6, 0.91, 0.71, 0.1}, taken: 4, area: true, season: true},
		{name: "carry over", rolls: []float64{0.5, 0.9, 0.7, 0.96}, taken: 4, era: true},
		{name: "everything advances", rolls: []float64{0.99, 0.99, 0.99}, taken: 3, locale: true, season: true, era: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &rolls{values: tt.rolls}
			loc, tp := nextSetting(rand.New(rand.NewSource(9)), r.next, last)

			if r.taken != tt.taken {
				t.Errorf("rolls taken = %d, want %d", r.taken, tt.taken)
			}
			switch {
			case tt.locale:
				if loc.Area != last.Location.Area || loc.Locale == last.Location.Locale {
					t.Errorf("new locale = %+v, previous %+v", loc, last.Location)
				}
			case tt.area:
				if loc.Area == last.Location.Area || !location.HasLocale(loc.Era, loc.Area, loc.Locale) {
					t.Errorf("new area = %+v, previous %+v", loc, last.Location)
				}
			default:
				if loc != last.Location {
					t.Errorf("location = %+v, want unchanged %+v", loc, last.Location)
				}
			}

			if tp.TimeOfDay != timeperiod.AdvanceTimeOfDay(last.TimePeriod).TimeOfDay {
				t.Errorf("time of day = %q", tp.TimeOfDay)
			}
			if advanced := tp.Season != last.TimePeriod.Season; advanced != tt.season {
				t.Errorf("season = %q, advanced %v, want %v", tp.Season, advanced, tt.season)
			}
			if advanced := tp.Era != last.TimePeriod.Era; advanced != tt.era {
				t.Errorf("era = %q, advanced %v, want %v", tp.Era, advanced, tt.era)
			}
		})
	}
}

func TestRolesCanFallShortOfDraws(t *testing.T) {
	cast := testCast()
	short := 0
	for seed := int64(1); seed <= 200; seed++ {
		draws := random.Between(rand.New(rand.NewSource(seed)), 2, len(cast)-1)
		roles := drawRoles(rand.New(rand.NewSource(seed)), cast)
		if len(roles) > draws+1 {
			t.Fatalf("seed %d: %d roles from %d draws", seed, len(roles), draws)
		}
		if len(roles) < draws+1 {
			short++
		}
	}
	// Repeated draws are skipped, not redrawn.
	if short == 0 {
		t.Error("no seed produced a cast smaller than its draw count")
	}
}

func TestSetupAndPrompts(t *testing.T) {
	mock := agent.NewMockClient()
	scenes := writeAct(t, 11, 2, mock)
	first, second := scenes[0], scenes[1]

	wantPrefix := "As part of a mystery appealing to families with the themes of trust and loss, in the 1st scene of a 4 scene act where the hero is introduced."
	if !strings.HasPrefix(first.Setup, wantPrefix) {
		t.Errorf("setup = %q", first.Setup)
	}
	if !strings.Contains(first.Setup, " This scene takes place in a "+first.Location.Locale+" in a "+first.Location.Area+" area during dawn of Winter in the Colonial era.") {
		t.Errorf("setup lacks the setting: %q", first.Setup)
	}
	if !strings.Contains(first.Setup, " Ada, a 36 year old woman of english descent that values honesty, courage, and loyalty is the protagonist.") {
		t.Errorf("setup lacks the protagonist: %q", first.Setup)
	}
	if strings.Contains(first.Setup, "previous scene") {
		t.Errorf("first scene mentions a previous scene: %q", first.Setup)
	}
	if !strings.Contains(second.Setup, "in the 2nd scene") || !strings.Contains(second.Setup, " The previous scene ended with: "+first.LastText()) {
		t.Errorf("second setup = %q", second.Setup)
	}

	calls := mock.Calls()
	// Three parts and one caption per scene.
	if len(calls) != 8 {
		t.Fatalf("text calls = %d, want 8", len(calls))
	}
	goal := calls[0]
	if goal.Prompt != PartPrompt(first.Setup, sceneParts[0]) {
		t.Errorf("goal prompt = %q", goal.Prompt)
	}
	if !strings.Contains(goal.Prompt, ". Write a part of the scene where a specific and clearly defined goal") {
		t.Errorf("goal prompt = %q", goal.Prompt)
	}
	if goal.Params.MaxTokens != agent.MaxTokens-len(goal.Prompt)/4 {
		t.Errorf("max tokens = %d", goal.Params.MaxTokens)
	}
	if calls[3].Params.MaxTokens != visualMaxTokens || calls[3].Prompt != VisualPrompt(first.LastText()) {
		t.Errorf("caption call = %+v", calls[3])
	}
	if first.Visual == "" {
		t.Error("visual caption is empty")
	}
}

func TestGenerationFailureLeavesBlankText(t *testing.T) {
	mock := agent.NewMockClient()
	mock.SetError(errors.New("offline"))
	s := New(context.Background(), rand.New(rand.NewSource(1)), testParams(), nil, Deps{Text: mock})

	if len(s.Parts) != 3 {
		t.Fatalf("parts = %d", len(s.Parts))
	}
	for _, p := range s.Parts {
		if p.Text != "" {
			t.Errorf("part %s = %q, want empty", p.Name, p.Text)
		}
	}
	if s.Visual != "" || len(mock.Calls()) != 3 {
		t.Errorf("caption requested for blank scene: %d calls", len(mock.Calls()))
	}
}

func TestString(t *testing.T) {
	s := &Scene{Parts: []Part{{Name: "goal", Text: "One."}, {Name: "conflict", Text: "Two."}}}
	if got, want := s.String(), "------\nOne.\n------\nTwo.\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestJSON(t *testing.T) {
	s := writeAct(t, 5, 2, agent.NewMockClient())[1]

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"kind":"scene"`) {
		t.Errorf("JSON lacks kind: %s", data)
	}

	var got Scene
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Setup != s.Setup || got.Location != s.Location || got.TimePeriod != s.TimePeriod ||
		got.Previous != 0 || !slices.Equal(got.Roles, s.Roles) || !slices.Equal(got.Parts, s.Parts) {
		t.Errorf("round trip = %+v, want %+v", got, *s)
	}

	bad := strings.Replace(string(data), `"kind":"scene"`, `"kind":"story"`, 1)
	if err := json.Unmarshal([]byte(bad), &got); !errors.Is(err, kind.ErrMismatch) {
		t.Errorf("Unmarshal(wrong kind) error = %v", err)
	}
}
