package tracker

import (
	"time"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/clock"
	"LevelSentinel/internal/model"
)

// WeekdayRangeTracker accumulates the high/low of every bar that falls on a
// given weekday, starting over on each new date of that weekday.
type WeekdayRangeTracker struct {
	Weekday time.Weekday

	date   clock.Date
	high   float64
	low    float64
	anchor int
}

// NewWeekdayRangeTracker creates a tracker for the given weekday.
func NewWeekdayRangeTracker(wd time.Weekday) *WeekdayRangeTracker {
	return &WeekdayRangeTracker{Weekday: wd, anchor: -1}
}

// Update folds one primary bar into the range.
func (w *WeekdayRangeTracker) Update(date clock.Date, weekday time.Weekday, high, low float64, primaryIndex int) {
	if weekday != w.Weekday {
		return
	}
	if date != w.date {
		w.date = date
		w.high = high
		w.low = low
		w.anchor = primaryIndex
		return
	}
	w.high, w.low = calculator.Extend(w.high, w.low, high, low)
}

// High returns the range high, unset before the first matching bar.
func (w *WeekdayRangeTracker) High() model.Price {
	if w.date.IsZero() {
		return model.Price{}
	}
	return model.Known(w.high)
}

// Low returns the range low, unset before the first matching bar.
func (w *WeekdayRangeTracker) Low() model.Price {
	if w.date.IsZero() {
		return model.Price{}
	}
	return model.Known(w.low)
}

// Anchor returns the primary index of the first bar of the range date.
func (w *WeekdayRangeTracker) Anchor() int { return w.anchor }

// Date returns the date the current range belongs to.
func (w *WeekdayRangeTracker) Date() clock.Date { return w.date }
