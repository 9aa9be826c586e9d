// Package timeperiod models the era, season and time of day a scene takes
// place in.
package timeperiod

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"

	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/random"
)

const (
	Prehistoric  = "Prehistoric"  // Before written history
	Ancient      = "Ancient"      // 3000 BC - 500 AD
	Medieval     = "Medieval"     // 5th to 15th century
	Renaissance  = "Renaissance"  // 16th-17th centuries
	Colonial     = "Colonial"     // 1800s
	Modern       = "Modern"       // 1900s
	Contemporary = "Contemporary" // 2000s
	Future       = "Future"       // 2100s and beyond
)

// Eras in chronological order.
var Eras = []string{
	Prehistoric,
	Ancient,
	Medieval,
	Renaissance,
	Colonial,
	Modern,
	Contemporary,
	Future,
}

var Seasons = []string{
	"Spring",
	"Summer",
	"Autumn",
	"Winter",
}

var TimesOfDay = []string{
	"midnight",
	"pre-dawn",
	"dawn",
	"morning",
	"midday",
	"afternoon",
	"evening",
	"dusk",
	"night",
}

// TimePeriod is an immutable era, season and time of day triple.
type TimePeriod struct {
	Era       string `json:"era"`
	Season    string `json:"season"`
	TimeOfDay string `json:"time_of_day"`
}

// Options selects explicit values. Empty fields are sampled.
type Options struct {
	Era       string
	Season    string
	TimeOfDay string
}

// New builds a TimePeriod, drawing any unset field uniformly.
func New(rng *rand.Rand, opts Options) TimePeriod {
	tp := TimePeriod{Era: opts.Era, Season: opts.Season, TimeOfDay: opts.TimeOfDay}
	if tp.Era == "" {
		tp.Era = random.Choice(rng, Eras)
	}
	if tp.Season == "" {
		tp.Season = random.Choice(rng, Seasons)
	}
	if tp.TimeOfDay == "" {
		tp.TimeOfDay = random.Choice(rng, TimesOfDay)
	}
	return tp
}

// IsEra reports whether era is one of the known eras.
func IsEra(era string) bool {
	return slices.Contains(Eras, era)
}

func (tp TimePeriod) String() string {
	return fmt.Sprintf("%s %s %s", tp.Era, tp.Season, tp.TimeOfDay)
}

// AdvanceTimeOfDay returns the period with the next time of day, wrapping
// from night to midnight.
func AdvanceTimeOfDay(tp TimePeriod) TimePeriod {
	tp.TimeOfDay = next(TimesOfDay, tp.TimeOfDay)
	return tp
}

// AdvanceSeason returns the period with the next season, wrapping from
// Winter to Spring.
func AdvanceSeason(tp TimePeriod) TimePeriod {
	tp.Season = next(Seasons, tp.Season)
	return tp
}

// AdvanceEra returns the period in the next era. The Future wraps back to
// Prehistoric.
func AdvanceEra(tp TimePeriod) TimePeriod {
	tp.Era = next(Eras, tp.Era)
	return tp
}

// next returns the cyclic successor of v. Unknown values map to the first
// entry.
func next(cycle []string, v string) string {
	i := slices.Index(cycle, v)
	return cycle[(i+1)%len(cycle)]
}

type timePeriodJSON TimePeriod

func (tp TimePeriod) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		timePeriodJSON
	}{kind.TimePeriod, timePeriodJSON(tp)})
}

func (tp *TimePeriod) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind string `json:"kind"`
		timePeriodJSON
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := kind.Check(v.Kind, kind.TimePeriod); err != nil {
		return err
	}
	*tp = TimePeriod(v.timePeriodJSON)
	return nil
}
