// Package location models where a scene takes place: an area valid for the
// story's era and a locale inside it.
package location

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"

	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/domain/timeperiod"
	"github.com/myrontuttle/storytime/internal/random"
)

// Location is an area and locale for a given era. Values are never mutated;
// transitions return a new Location.
type Location struct {
	Era    string `json:"era"`
	Area   string `json:"area"`
	Locale string `json:"locale"`
}

// Options selects explicit values. Empty fields are sampled.
type Options struct {
	Era    string
	Area   string
	Locale string
}

// AvailableAreas returns the areas a story in era can visit. Groupings
// accumulate as history progresses, except for the Future which only uses
// modern and advanced areas.
func AvailableAreas(era string) []Area {
	switch era {
	case timeperiod.Prehistoric, timeperiod.Ancient:
		return primitiveAreas
	case timeperiod.Medieval:
		return concat(primitiveAreas, medievalAreas)
	case timeperiod.Renaissance, timeperiod.Colonial:
		return concat(primitiveAreas, medievalAreas, colonialAreas)
	case timeperiod.Future:
		return concat(modernAreas, advancedAreas)
	default:
		return concat(primitiveAreas, medievalAreas, colonialAreas, modernAreas)
	}
}

// New builds a Location, drawing the area and/or locale when unset.
// An explicit area outside the era's table is looked up among every known
// area; an unknown area is replaced with a random valid one.
func New(rng *rand.Rand, opts Options) Location {
	areas := AvailableAreas(opts.Era)
	loc := Location{Era: opts.Era, Area: opts.Area, Locale: opts.Locale}

	var area Area
	switch {
	case loc.Area == "":
		area = random.Choice(rng, areas)
	default:
		var ok bool
		if area, ok = find(areas, loc.Area); !ok {
			if area, ok = find(allAreas(), loc.Area); !ok {
				area = random.Choice(rng, areas)
			}
		}
	}
	loc.Area = area.Name

	if loc.Locale == "" {
		loc.Locale = random.Choice(rng, area.Locales)
	}
	return loc
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.Area, l.Locale)
}

// NewLocale selects a different locale in the same area. When the area has
// no other locale the location is returned unchanged.
func NewLocale(rng *rand.Rand, l Location) Location {
	area, ok := find(AvailableAreas(l.Era), l.Area)
	if !ok {
		area, ok = find(allAreas(), l.Area)
	}
	if !ok {
		return l
	}

	var candidates []string
	for _, locale := range area.Locales {
		if locale != l.Locale {
			candidates = append(candidates, locale)
		}
	}
	if len(candidates) == 0 {
		return l
	}
	return Location{Era: l.Era, Area: l.Area, Locale: random.Choice(rng, candidates)}
}

// NewArea selects a different area valid for the era and a random locale in
// it. When the era has a single area the location is returned unchanged.
func NewArea(rng *rand.Rand, l Location) Location {
	var candidates []Area
	for _, area := range AvailableAreas(l.Era) {
		if area.Name != l.Area {
			candidates = append(candidates, area)
		}
	}
	if len(candidates) == 0 {
		return l
	}
	area := random.Choice(rng, candidates)
	return Location{Era: l.Era, Area: area.Name, Locale: random.Choice(rng, area.Locales)}
}

// HasLocale reports whether locale belongs to the named area of era.
func HasLocale(era, areaName, locale string) bool {
	area, ok := find(AvailableAreas(era), areaName)
	return ok && slices.Contains(area.Locales, locale)
}

func find(areas []Area, name string) (Area, bool) {
	for _, a := range areas {
		if a.Name == name {
			return a, true
		}
	}
	return Area{}, false
}

func allAreas() []Area {
	return concat(primitiveAreas, medievalAreas, colonialAreas, modernAreas, advancedAreas)
}

func concat(groups ...[]Area) []Area {
	var out []Area
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

type locationJSON Location

func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		locationJSON
	}{kind.Location, locationJSON(l)})
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind string `json:"kind"`
		locationJSON
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := kind.Check(v.Kind, kind.Location); err != nil {
		return err
	}
	*l = Location(v.locationJSON)
	return nil
}
