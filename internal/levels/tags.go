package levels

import (
	"time"

	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

type levelDef struct {
	tag   string
	label string
}

type timeframeDef struct {
	mode            tracker.Mode
	open, high, low levelDef
}

// The yearly timeframe publishes the running extremes of the active year,
// the others publish the extremes of the prior period.
var timeframeDefs = map[model.Timeframe]timeframeDef{
	model.Daily: {
		mode: tracker.PriorPeriod,
		open: levelDef{"DO", "Daily Open"},
		high: levelDef{"PDH", "Prev Day High"},
		low:  levelDef{"PDL", "Prev Day Low"},
	},
	model.Weekly: {
		mode: tracker.PriorPeriod,
		open: levelDef{"WO", "Weekly Open"},
		high: levelDef{"PWH", "Prev Week High"},
		low:  levelDef{"PWL", "Prev Week Low"},
	},
	model.Monthly: {
		mode: tracker.PriorPeriod,
		open: levelDef{"MO", "Monthly Open"},
		high: levelDef{"PMH", "Prev Month High"},
		low:  levelDef{"PML", "Prev Month Low"},
	},
	model.Yearly: {
		mode: tracker.RunningPeriod,
		open: levelDef{"YO", "Yearly Open"},
		high: levelDef{"YH", "Year High"},
		low:  levelDef{"YL", "Year Low"},
	},
}

// weekdayPrefix returns the three-letter tag prefix of a weekday, e.g. "Mon".
func weekdayPrefix(wd time.Weekday) string {
	return wd.String()[:3]
}
