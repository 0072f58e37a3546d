package recorder

import (
	"time"

	"LevelSentinel/internal/model"
)

// LevelChange is one level whose price or anchor differs from the last recorded value.
type LevelChange struct {
	Level    model.Level
	BarIndex int
	BarTime  time.Time
}

// Recorder persists level history for later analysis.
type Recorder interface {
	// RecordLevels stores the levels published for bar, skipping those unchanged
	// since the previous call. It returns the number of rows written.
	RecordLevels(bar model.Bar, levels []model.Level) (int, error)
	RecordSessionClose(snap model.SessionSnapshot, closedAt time.Time) error
	Close() error
}

// changes filters levels down to those that differ from last.
func changes(last map[string]model.Level, bar model.Bar, levels []model.Level) []LevelChange {
	var out []LevelChange
	for _, l := range levels {
		if prev, ok := last[l.Tag]; ok && prev == l {
			continue
		}
		out = append(out, LevelChange{Level: l, BarIndex: bar.Index, BarTime: bar.Time})
	}
	return out
}
