package collector

import (
	"fmt"
	"sort"
	"time"

	"LevelSentinel/internal/levels"
	"LevelSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars []model.Bar
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_, _ string, limit int) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	out := make([]model.Bar, len(bars))
	copy(out, bars)
	return out, nil
}

// Collector turns repeated fetches of overlapping bar history into a single
// ordered stream of engine inputs.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Limit    int
	// Now reports the current time; bars that have not finished by Now are skipped.
	Now func() time.Time

	barDur    time.Duration
	resampler *Resampler
	lastTime  time.Time
	nextIndex int
}

// NewCollector creates a new Collector. Higher-timeframe periods are cut in loc.
func NewCollector(fetcher Fetcher, symbol, interval string, limit int, loc *time.Location) (*Collector, error) {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("bar interval %q: invalid duration", interval)
	}
	return &Collector{
		Fetcher:   fetcher,
		Symbol:    symbol,
		Interval:  interval,
		Limit:     limit,
		Now:       time.Now,
		barDur:    d,
		resampler: NewResampler(loc),
	}, nil
}

// Collect fetches the latest bars and returns inputs for every finished bar
// not returned before, with increasing sequence indices.
func (c *Collector) Collect() ([]levels.Input, error) {
	bars, err := c.Fetcher.FetchBars(c.Symbol, c.Interval, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	now := c.Now()
	var inputs []levels.Input
	for _, b := range bars {
		if !b.Time.After(c.lastTime) {
			continue // already delivered
		}
		if b.Time.Add(c.barDur).After(now) {
			break // still forming
		}
		b.Index = c.nextIndex
		c.nextIndex++
		c.lastTime = b.Time
		inputs = append(inputs, levels.Input{Bar: b, Series: c.resampler.Add(b)})
	}
	return inputs, nil
}

// Delivered returns the number of bars handed out so far.
func (c *Collector) Delivered() int { return c.nextIndex }
