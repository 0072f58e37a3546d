package tracker

import (
	"errors"
	"fmt"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/clock"
	"LevelSentinel/internal/model"
)

// ErrInvalidWindow is returned for session windows that are empty, wrap
// around midnight, or fall outside the day.
var ErrInvalidWindow = errors.New("invalid session window")

// Window is a half-open [Start, End) time-of-day interval in seconds.
type Window struct {
	Start int
	End   int
}

// Validate rejects windows outside 0 <= Start < End <= 86400.
func (w Window) Validate() error {
	if w.Start < 0 || w.Start >= clock.SecondsPerDay {
		return fmt.Errorf("%w: start %d outside [0, %d)", ErrInvalidWindow, w.Start, clock.SecondsPerDay)
	}
	if w.End > clock.SecondsPerDay {
		return fmt.Errorf("%w: end %d past %d", ErrInvalidWindow, w.End, clock.SecondsPerDay)
	}
	if w.Start >= w.End {
		return fmt.Errorf("%w: start %d must be before end %d", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Contains reports whether tod falls inside the window.
func (w Window) Contains(tod int) bool {
	return tod >= w.Start && tod < w.End
}

func (w Window) String() string {
	return clock.FormatTimeOfDay(w.Start) + "-" + clock.FormatTimeOfDay(w.End)
}

// SessionWindowTracker accumulates open/high/low while bars fall inside a
// recurring intraday window and freezes a snapshot when the window exits.
type SessionWindowTracker struct {
	Name   string
	Tag    string
	Window Window

	active bool
	open   float64
	high   float64
	low    float64
	start  int

	snapshot    model.SessionSnapshot
	hasSnapshot bool
}

// NewSessionWindowTracker validates the window and returns an inactive tracker.
func NewSessionWindowTracker(name, tag string, w Window) (*SessionWindowTracker, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("session %s: %w", name, err)
	}
	return &SessionWindowTracker{Name: name, Tag: tag, Window: w, start: -1}, nil
}

// Update evaluates one primary bar at time-of-day tod and reports whether the
// session closed on it.
func (s *SessionWindowTracker) Update(tod int, bar model.Bar) bool {
	inside := s.Window.Contains(tod)
	switch {
	case inside && !s.active:
		s.active = true
		s.open = bar.Open
		s.high = bar.High
		s.low = bar.Low
		s.start = bar.Index
	case inside && s.active:
		s.high, s.low = calculator.Extend(s.high, s.low, bar.High, bar.Low)
	case !inside && s.active:
		s.active = false
		s.snapshot = model.SessionSnapshot{
			Session:     s.Name,
			Tag:         s.Tag,
			Open:        s.open,
			High:        s.high,
			Low:         s.low,
			AnchorIndex: s.start,
			ClosedIndex: bar.Index,
		}
		s.hasSnapshot = true
		return true
	}
	return false
}

// Active reports whether a window is currently being accumulated.
func (s *SessionWindowTracker) Active() bool { return s.active }

// Snapshot returns the last closed session, false if none has closed yet.
func (s *SessionWindowTracker) Snapshot() (model.SessionSnapshot, bool) {
	return s.snapshot, s.hasSnapshot
}
