// Package weather provides a mock weather lookup tool for voice agents.
//
// No real weather API is involved: forecasts are generated from a fixed set
// of condition descriptions and a hardcoded month-to-season table with
// per-season temperature ranges. This keeps example agents runnable without
// another API key while still giving the model plausible material to speak.
package weather

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	voiceagent "github.com/mbaskaran/voiceagent"
)

// Season groups months with similar temperature behavior.
type Season int

const (
	Winter Season = iota
	Spring
	Summer
	Autumn
)

// String returns the lowercase season name.
func (s Season) String() string {
	switch s {
	case Winter:
		return "winter"
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	default:
		return "unknown"
	}
}

// seasonByMonth maps calendar months to seasons (northern hemisphere).
var seasonByMonth = map[time.Month]Season{
	time.January:   Winter,
	time.February:  Winter,
	time.March:     Spring,
	time.April:     Spring,
	time.May:       Spring,
	time.June:      Summer,
	time.July:      Summer,
	time.August:    Summer,
	time.September: Autumn,
	time.October:   Autumn,
	time.November:  Autumn,
	time.December:  Winter,
}

// TempRange is the inclusive temperature band a season's forecasts fall in.
type TempRange struct {
	MinC float64
	MaxC float64
}

// tempRanges documents the per-season Celsius bands forecasts are drawn from.
var tempRanges = map[Season]TempRange{
	Winter: {MinC: -5, MaxC: 10},
	Spring: {MinC: 8, MaxC: 22},
	Summer: {MinC: 18, MaxC: 36},
	Autumn: {MinC: 5, MaxC: 20},
}

// conditions are the canned sky descriptions a forecast picks from.
var conditions = []string{
	"clear skies",
	"partly cloudy",
	"overcast",
	"light rain",
	"scattered showers",
	"gusty winds",
	"hazy sunshine",
	"thunderstorms in the evening",
}

// Forecast is the result of a mock weather lookup.
type Forecast struct {
	Location     string
	Condition    string
	TemperatureC float64
	Season       Season
	Month        time.Month
}

// String renders the forecast the way the tool reports it to the model.
// It always contains the requested location and the temperature.
func (f Forecast) String() string {
	return fmt.Sprintf("Weather in %s: %s, %.1f°C (%.1f°F). Typical %s conditions.",
		f.Location, f.Condition, f.TemperatureC, f.TemperatureC*9/5+32, f.Season)
}

// SeasonFor returns the season a month belongs to.
func SeasonFor(month time.Month) Season { return seasonByMonth[month] }

// RangeFor returns the documented temperature range for a month.
func RangeFor(month time.Month) TempRange { return tempRanges[seasonByMonth[month]] }

// Service generates mock forecasts. The zero value is not usable; construct
// with New or NewWithSource.
type Service struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a weather service seeded from the current time.
func New() *Service {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()), time.Now)
}

// NewWithSource creates a weather service with a fixed random source and
// clock, for deterministic tests.
func NewWithSource(src rand.Source, now func() time.Time) *Service {
	return &Service{rng: rand.New(src), now: now}
}

// Lookup produces a forecast for the given location at the current month.
func (s *Service) Lookup(location string) Forecast {
	return s.LookupAt(location, s.now().Month())
}

// LookupAt produces a forecast for the given location and month. The
// temperature always falls inside the month's seasonal range.
func (s *Service) LookupAt(location string, month time.Month) Forecast {
	location = strings.TrimSpace(location)
	if location == "" {
		location = "your area"
	}

	season := seasonByMonth[month]
	r := tempRanges[season]

	s.mu.Lock()
	temp := r.MinC + s.rng.Float64()*(r.MaxC-r.MinC)
	condition := conditions[s.rng.Intn(len(conditions))]
	s.mu.Unlock()

	return Forecast{
		Location:     location,
		Condition:    condition,
		TemperatureC: temp,
		Season:       season,
		Month:        month,
	}
}

// lookupArgs is the argument payload the model produces for the tool.
type lookupArgs struct {
	Location string `json:"location"`
}

// Tool exposes the service as a voiceagent function tool named
// "lookup_weather".
func (s *Service) Tool() voiceagent.Tool {
	return voiceagent.NewTool("lookup_weather", "Used to look up weather information.",
		voiceagent.ObjectSchema(map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "The city or area to look up weather for.",
			},
		}, "location"),
		func(ctx context.Context, args lookupArgs) (string, error) {
			return s.Lookup(args.Location).String(), nil
		},
	)
}
