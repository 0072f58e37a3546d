package levels

import (
	"errors"
	"fmt"
	"time"

	"LevelSentinel/internal/clock"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

// ErrOutOfOrder is returned when a bar does not advance the sequence index.
var ErrOutOfOrder = errors.New("out-of-order bar")

// Input is one primary-bar event with the higher-timeframe series as they
// stand at that bar. A missing series is treated as having no history.
type Input struct {
	Bar    model.Bar
	Series map[model.Timeframe]model.SeriesView
}

// Result is the output of one Step.
type Result struct {
	Levels LevelSet
	// Closed lists the sessions that closed on this bar.
	Closed []model.SessionSnapshot
}

// LevelSet is an ordered, published set of levels.
type LevelSet []model.Level

// Get returns the level with the given tag.
func (ls LevelSet) Get(tag string) (model.Level, bool) {
	for _, l := range ls {
		if l.Tag == tag {
			return l, true
		}
	}
	return model.Level{}, false
}

// Engine drives every tracker once per primary bar and publishes the levels.
// It is not safe for concurrent use.
type Engine struct {
	cfg Config

	timeframes []*tracker.TimeframeTracker
	weekday    *tracker.WeekdayRangeTracker
	sessions   []*tracker.SessionWindowTracker

	started   bool
	lastIndex int
	published LevelSet
}

// NewEngine validates cfg and builds one tracker per enabled timeframe and session.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	for _, tf := range model.Timeframes {
		if !cfg.Timeframes[tf].On() {
			continue
		}
		e.timeframes = append(e.timeframes, tracker.NewTimeframeTracker(tf, timeframeDefs[tf].mode))
	}
	if cfg.WeekdayRange {
		e.weekday = tracker.NewWeekdayRangeTracker(cfg.RangeWeekday)
	}
	for _, s := range cfg.Sessions {
		st, err := tracker.NewSessionWindowTracker(s.Name, s.Tag, s.Window)
		if err != nil {
			return nil, err
		}
		e.sessions = append(e.sessions, st)
	}
	return e, nil
}

// Step processes one primary bar. Bars whose index does not exceed the last
// processed one are rejected with ErrOutOfOrder and leave all state untouched.
func (e *Engine) Step(in Input) (Result, error) {
	bar := in.Bar
	if e.started && bar.Index <= e.lastIndex {
		return Result{}, fmt.Errorf("%w: index %d after %d", ErrOutOfOrder, bar.Index, e.lastIndex)
	}
	e.started = true
	e.lastIndex = bar.Index

	if bar.Index < e.cfg.WarmupBars {
		return Result{}, nil
	}

	for _, t := range e.timeframes {
		view, ok := in.Series[t.Timeframe]
		if !ok {
			view = model.EmptySeries
		}
		t.Update(view, bar.Index)
	}

	if e.weekday != nil {
		date := clock.DateOf(bar.Time, e.cfg.Location)
		e.weekday.Update(date, date.Weekday(), bar.High, bar.Low, bar.Index)
	}

	var closed []model.SessionSnapshot
	tod := clock.TimeOfDay(bar.Time, e.cfg.Location)
	for _, s := range e.sessions {
		if s.Update(tod, bar) {
			snap, _ := s.Snapshot()
			closed = append(closed, snap)
		}
	}

	e.published = e.collect()
	return Result{Levels: e.Levels(), Closed: closed}, nil
}

// Levels returns a copy of the last published level set.
func (e *Engine) Levels() LevelSet {
	out := make(LevelSet, len(e.published))
	copy(out, e.published)
	return out
}

// LastIndex returns the index of the last accepted bar and whether any bar was accepted.
func (e *Engine) LastIndex() (int, bool) { return e.lastIndex, e.started }

// Location returns the reference time zone.
func (e *Engine) Location() *time.Location { return e.cfg.Location }

func (e *Engine) collect() LevelSet {
	var out LevelSet
	add := func(ls levelDef, p model.Price, anchor int) {
		if !p.Valid {
			return
		}
		out = append(out, model.Level{Tag: ls.tag, Price: p.Value, AnchorIndex: anchor, Label: ls.label})
	}

	for _, t := range e.timeframes {
		def := timeframeDefs[t.Timeframe]
		toggle := e.cfg.Timeframes[t.Timeframe]
		if toggle.Open {
			add(def.open, t.Open(), t.Anchor())
		}
		if toggle.HighLow {
			add(def.high, t.High(), t.Anchor())
			add(def.low, t.Low(), t.Anchor())
		}
	}

	if e.weekday != nil {
		prefix := weekdayPrefix(e.weekday.Weekday)
		day := e.weekday.Weekday.String()
		add(levelDef{prefix + "H", day + " High"}, e.weekday.High(), e.weekday.Anchor())
		add(levelDef{prefix + "L", day + " Low"}, e.weekday.Low(), e.weekday.Anchor())
	}

	for _, s := range e.sessions {
		snap, ok := s.Snapshot()
		if !ok {
			continue
		}
		add(levelDef{s.Tag + "O", s.Name + " Open"}, model.Known(snap.Open), snap.AnchorIndex)
		add(levelDef{s.Tag + "H", s.Name + " High"}, model.Known(snap.High), snap.AnchorIndex)
		add(levelDef{s.Tag + "L", s.Name + " Low"}, model.Known(snap.Low), snap.AnchorIndex)
	}
	return out
}
