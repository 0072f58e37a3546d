package notifier

import (
	"fmt"
	"strings"
	"time"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

const timeLayout = "2006-01-02 15:04 MST"

// FormatLevels renders the level board as of bar, with each level's distance
// from the bar close.
func FormatLevels(symbol string, bar model.Bar, levels []model.Level, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📐 <b>%s levels</b> | %s\n", symbol, bar.Time.In(loc).Format(timeLayout))
	fmt.Fprintf(&b, "Close: %.2f\n\n", bar.Close)

	if len(levels) == 0 {
		b.WriteString("No levels yet.\n")
		return b.String()
	}
	for _, l := range levels {
		diff := bar.Close - l.Price
		pct := 0.0
		if l.Price != 0 {
			pct = diff / l.Price * 100
		}
		fmt.Fprintf(&b, "<code>%-5s</code> %10.2f  (%+.2f, %+.2f%%)  %s\n", l.Tag, l.Price, diff, pct, l.Label)
	}
	return b.String()
}

// FormatSessionClose renders a closed session with the position of price
// inside the session range.
func FormatSessionClose(snap model.SessionSnapshot, price float64, closedAt time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 <b>%s session closed</b> | %s\n\n", snap.Session, closedAt.In(loc).Format(timeLayout))
	fmt.Fprintf(&b, "%sO: %.2f\n", snap.Tag, snap.Open)
	fmt.Fprintf(&b, "%sH: %.2f\n", snap.Tag, snap.High)
	fmt.Fprintf(&b, "%sL: %.2f\n", snap.Tag, snap.Low)
	fmt.Fprintf(&b, "Range: %.2f\n", snap.High-snap.Low)
	if pos, err := calculator.RangePosition(price, snap.High, snap.Low); err == nil {
		fmt.Fprintf(&b, "Price %.2f at %.0f%% of range\n", price, pos*100)
	}
	return b.String()
}

// FormatSessions lists the configured session windows and which are open at t.
func FormatSessions(sessions []SessionStatus, t time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕒 <b>Sessions</b> | %s\n\n", t.In(loc).Format(timeLayout))
	for _, s := range sessions {
		state := "closed"
		if s.Active {
			state = "open"
		}
		fmt.Fprintf(&b, "%s (%s): %s %s\n", s.Name, s.Tag, s.Window, state)
	}
	return b.String()
}

// SessionStatus is one row of FormatSessions.
type SessionStatus struct {
	Name   string
	Tag    string
	Window tracker.Window
	Active bool
}
