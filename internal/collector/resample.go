package collector

import (
	"time"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/model"
)

// series is one higher-timeframe aggregation built from primary bars.
type series struct {
	index   int
	key     int
	current model.Bar
	prev    model.Bar
}

// Resampler derives the daily, weekly, monthly and yearly series from the
// primary feed, with period boundaries taken in a reference time zone.
type Resampler struct {
	loc    *time.Location
	series map[model.Timeframe]*series
}

// NewResampler creates a Resampler with empty series.
func NewResampler(loc *time.Location) *Resampler {
	r := &Resampler{loc: loc, series: make(map[model.Timeframe]*series, len(model.Timeframes))}
	for _, tf := range model.Timeframes {
		r.series[tf] = &series{index: -1}
	}
	return r
}

// periodKey identifies the period of tf that t falls in. Weeks are ISO weeks (Mon-Sun).
func periodKey(tf model.Timeframe, t time.Time) int {
	y, m, d := t.Date()
	switch tf {
	case model.Daily:
		return y*10000 + int(m)*100 + d
	case model.Weekly:
		iy, iw := t.ISOWeek()
		return iy*100 + iw
	case model.Monthly:
		return y*100 + int(m)
	default:
		return y
	}
}

// Add folds a primary bar into every series and returns the resulting views.
func (r *Resampler) Add(b model.Bar) map[model.Timeframe]model.SeriesView {
	local := b.Time.In(r.loc)
	views := make(map[model.Timeframe]model.SeriesView, len(r.series))
	for _, tf := range model.Timeframes {
		s := r.series[tf]
		key := periodKey(tf, local)
		switch {
		case s.index < 0:
			s.index = 0
			s.key = key
			s.current = openPeriod(s.index, b)
		case key != s.key:
			s.prev = s.current
			s.index++
			s.key = key
			s.current = openPeriod(s.index, b)
		default:
			s.current.High, s.current.Low = calculator.Extend(s.current.High, s.current.Low, b.High, b.Low)
			s.current.Close = b.Close
			s.current.Volume += b.Volume
		}
		views[tf] = model.SeriesView{Index: s.index, Current: s.current, Previous: s.prev}
	}
	return views
}

func openPeriod(index int, b model.Bar) model.Bar {
	return model.Bar{
		Index:  index,
		Time:   b.Time,
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}
