package levels

import (
	"errors"
	"fmt"
	"time"

	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

// ErrInvalidConfig is returned when a Config cannot be used to build an Engine.
var ErrInvalidConfig = errors.New("invalid levels config")

// DefaultWarmupBars is the number of leading primary bars consumed before any
// tracker runs, so every higher-timeframe series has a bar to reference.
const DefaultWarmupBars = 2

// Toggle selects which levels of a timeframe are published.
type Toggle struct {
	Open    bool
	HighLow bool
}

// On reports whether any level of the timeframe is enabled.
func (t Toggle) On() bool { return t.Open || t.HighLow }

// SessionConfig describes one recurring intraday window.
type SessionConfig struct {
	Name   string
	Tag    string
	Window tracker.Window
}

// Config is the validated, immutable configuration of an Engine.
type Config struct {
	// Location is the reference zone for dates, weekdays and time of day.
	Location   *time.Location
	WarmupBars int

	Timeframes map[model.Timeframe]Toggle

	WeekdayRange bool
	RangeWeekday time.Weekday

	Sessions []SessionConfig
}

// DefaultConfig enables every level with the London, New York and Asia
// sessions expressed in UTC. The sessions only close on a feed that has bars
// outside each window, such as index futures.
func DefaultConfig() Config {
	all := Toggle{Open: true, HighLow: true}
	return Config{
		Location:   time.UTC,
		WarmupBars: DefaultWarmupBars,
		Timeframes: map[model.Timeframe]Toggle{
			model.Daily:   all,
			model.Weekly:  all,
			model.Monthly: all,
			model.Yearly:  all,
		},
		WeekdayRange: true,
		RangeWeekday: time.Monday,
		Sessions: []SessionConfig{
			{Name: "London", Tag: "Lon", Window: tracker.Window{Start: 8 * 3600, End: 16 * 3600}},
			{Name: "New York", Tag: "NY", Window: tracker.Window{Start: 13 * 3600, End: 21 * 3600}},
			{Name: "Asia", Tag: "Asia", Window: tracker.Window{Start: 0, End: 8 * 3600}},
		},
	}
}

// Validate checks the config once, before any bar is processed.
func (c Config) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidConfig)
	}
	if c.WarmupBars < 0 {
		return fmt.Errorf("%w: warmup bars must not be negative", ErrInvalidConfig)
	}
	if c.RangeWeekday < time.Sunday || c.RangeWeekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidConfig, c.RangeWeekday)
	}
	for tf := range c.Timeframes {
		if _, ok := timeframeDefs[tf]; !ok {
			return fmt.Errorf("%w: unknown timeframe %q", ErrInvalidConfig, tf)
		}
	}

	tags := make(map[string]string)
	for _, tf := range model.Timeframes {
		def := timeframeDefs[tf]
		for _, ls := range []levelDef{def.open, def.high, def.low} {
			tags[ls.tag] = string(tf)
		}
	}
	prefix := weekdayPrefix(c.RangeWeekday)
	tags[prefix+"H"] = "weekday range"
	tags[prefix+"L"] = "weekday range"

	for _, s := range c.Sessions {
		if s.Name == "" || s.Tag == "" {
			return fmt.Errorf("%w: session needs a name and a tag", ErrInvalidConfig)
		}
		if err := s.Window.Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s.Name, err)
		}
		for _, suffix := range []string{"O", "H", "L"} {
			tag := s.Tag + suffix
			if owner, dup := tags[tag]; dup {
				return fmt.Errorf("%w: tag %s of session %s already used by %s", ErrInvalidConfig, tag, s.Name, owner)
			}
			tags[tag] = s.Name
		}
	}
	return nil
}
