package tracker

import "LevelSentinel/internal/model"

// Mode selects which aggregated bar a TimeframeTracker reads its extremes from.
type Mode int

const (
	// PriorPeriod reads high/low from the last closed bar and needs one
	// closed bar of history (series index >= 1).
	PriorPeriod Mode = iota
	// RunningPeriod reads high/low from the in-progress bar, so the extremes
	// are those of the active period so far. Any bar (index >= 0) is enough.
	RunningPeriod
)

// TimeframeTracker follows one higher timeframe and exposes its current open
// and reference high/low, anchored to the first primary bar of the period.
type TimeframeTracker struct {
	Timeframe model.Timeframe
	Mode      Mode

	lastSeen int
	anchor   int
	open     model.Price
	high     model.Price
	low      model.Price
}

// NewTimeframeTracker creates a tracker with no history.
func NewTimeframeTracker(tf model.Timeframe, mode Mode) *TimeframeTracker {
	return &TimeframeTracker{Timeframe: tf, Mode: mode, lastSeen: -1, anchor: -1}
}

// Update refreshes the tracker from the latest view of its series.
// It is a no-op while the series lacks the history the mode needs.
func (t *TimeframeTracker) Update(view model.SeriesView, primaryIndex int) {
	if !t.hasHistory(view.Index) {
		return
	}
	// Anchor moves only when the aggregated bar index changes.
	if view.Index != t.lastSeen {
		t.lastSeen = view.Index
		t.anchor = primaryIndex
	}

	src := view.Previous
	if t.Mode == RunningPeriod {
		src = view.Current
	}
	t.open = model.Known(view.Current.Open)
	t.high = model.Known(src.High)
	t.low = model.Known(src.Low)
}

func (t *TimeframeTracker) hasHistory(index int) bool {
	if t.Mode == RunningPeriod {
		return index >= 0
	}
	return index >= 1
}

// Open returns the open of the in-progress period.
func (t *TimeframeTracker) Open() model.Price { return t.open }

// High returns the prior period's high, or the running high in RunningPeriod mode.
func (t *TimeframeTracker) High() model.Price { return t.high }

// Low returns the prior period's low, or the running low in RunningPeriod mode.
func (t *TimeframeTracker) Low() model.Price { return t.low }

// Anchor returns the primary index of the first bar of the current period, -1 if none.
func (t *TimeframeTracker) Anchor() int { return t.anchor }
