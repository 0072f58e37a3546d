package levels

import (
	"errors"
	"testing"
	"time"

	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

// 2024-01-08 is a Monday.
var monday = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

func at(index int, hh, mm int, o, h, l, c float64) model.Bar {
	return model.Bar{
		Index: index,
		Time:  monday.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute),
		Open:  o, High: h, Low: l, Close: c,
	}
}

func sessionsOnly(sessions ...SessionConfig) Config {
	return Config{
		Location:   time.UTC,
		WarmupBars: DefaultWarmupBars,
		Sessions:   sessions,
	}
}

func TestNewEngine_RejectsInvalidWindow(t *testing.T) {
	cfg := sessionsOnly(SessionConfig{Name: "Broken", Tag: "Brk", Window: tracker.Window{Start: 60000, End: 10000}})
	e, err := NewEngine(cfg)
	if !errors.Is(err, tracker.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if e != nil {
		t.Error("expected no engine for invalid config")
	}
}

func TestNewEngine_RejectsDuplicateTags(t *testing.T) {
	cfg := sessionsOnly(
		SessionConfig{Name: "A", Tag: "X", Window: tracker.Window{Start: 0, End: 100}},
		SessionConfig{Name: "B", Tag: "X", Window: tracker.Window{Start: 200, End: 300}},
	)
	if _, err := NewEngine(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	cfg = sessionsOnly(SessionConfig{Name: "Daily clash", Tag: "P", Window: tracker.Window{Start: 0, End: 100}})
	cfg.Sessions[0].Tag = "PD" // PDH / PDL clash with the daily tags
	if _, err := NewEngine(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected clash with daily tags, got %v", err)
	}
}

func TestNewEngine_RequiresLocation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = nil
	if _, err := NewEngine(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestStep_LondonExample(t *testing.T) {
	e, err := NewEngine(sessionsOnly(SessionConfig{Name: "London", Tag: "Lon", Window: tracker.Window{Start: 28800, End: 57600}}))
	if err != nil {
		t.Fatal(err)
	}
	bars := []model.Bar{
		at(0, 6, 0, 1, 1, 1, 1),
		at(1, 7, 0, 1, 1, 1, 1),
		at(2, 7, 59, 90, 200, 10, 95),
		at(3, 8, 0, 100, 102, 98, 101),
		at(4, 12, 0, 101, 106, 99, 104),
		at(5, 15, 59, 104, 105, 95, 97),
	}
	for _, b := range bars {
		res, err := e.Step(Input{Bar: b})
		if err != nil {
			t.Fatalf("bar %d: %v", b.Index, err)
		}
		if _, ok := res.Levels.Get("LonO"); ok {
			t.Fatalf("bar %d: in-progress session must not be published", b.Index)
		}
	}

	res, err := e.Step(Input{Bar: at(6, 16, 0, 97, 300, 1, 150)})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Closed) != 1 || res.Closed[0].Tag != "Lon" {
		t.Fatalf("expected London close, got %+v", res.Closed)
	}
	want := LevelSet{
		{Tag: "LonO", Price: 100, AnchorIndex: 3, Label: "London Open"},
		{Tag: "LonH", Price: 106, AnchorIndex: 3, Label: "London High"},
		{Tag: "LonL", Price: 95, AnchorIndex: 3, Label: "London Low"},
	}
	if len(res.Levels) != len(want) {
		t.Fatalf("expected %d levels, got %+v", len(want), res.Levels)
	}
	for i := range want {
		if res.Levels[i] != want[i] {
			t.Errorf("level %d: expected %+v, got %+v", i, want[i], res.Levels[i])
		}
	}

	// Snapshot holds through the next bars outside the window.
	res, _ = e.Step(Input{Bar: at(7, 20, 0, 1, 500, 0.5, 1)})
	if l, _ := res.Levels.Get("LonH"); l.Price != 106 {
		t.Errorf("expected LonH to stay 106, got %.0f", l.Price)
	}
}

func TestStep_WarmupSkipsTrackers(t *testing.T) {
	e, _ := NewEngine(DefaultConfig())
	yearly := map[model.Timeframe]model.SeriesView{
		model.Yearly: {Index: 0, Current: model.Bar{Open: 10, High: 12, Low: 9}},
	}
	for i := 0; i < DefaultWarmupBars; i++ {
		res, err := e.Step(Input{Bar: at(i, 9, i, 1, 1, 1, 1), Series: yearly})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Levels) != 0 {
			t.Fatalf("bar %d: expected no levels during warm-up, got %+v", i, res.Levels)
		}
	}
	res, _ := e.Step(Input{Bar: at(2, 9, 5, 1, 1, 1, 1), Series: yearly})
	if l, ok := res.Levels.Get("YO"); !ok || l.AnchorIndex != 2 {
		t.Errorf("expected YO anchored at first post-warm-up bar, got %+v (ok=%v)", l, ok)
	}
}

func TestStep_OutOfOrderLeavesStateUnchanged(t *testing.T) {
	e, _ := NewEngine(DefaultConfig())
	series := map[model.Timeframe]model.SeriesView{
		model.Daily: {Index: 3, Current: model.Bar{Open: 50}, Previous: model.Bar{High: 55, Low: 45}},
	}
	if _, err := e.Step(Input{Bar: at(5, 9, 0, 50, 51, 49, 50), Series: series}); err != nil {
		t.Fatal(err)
	}
	before := e.Levels()

	later := map[model.Timeframe]model.SeriesView{
		model.Daily: {Index: 4, Current: model.Bar{Open: 60}, Previous: model.Bar{High: 65, Low: 58}},
	}
	for _, idx := range []int{5, 4} {
		_, err := e.Step(Input{Bar: at(idx, 9, 1, 60, 61, 59, 60), Series: later})
		if !errors.Is(err, ErrOutOfOrder) {
			t.Fatalf("index %d: expected ErrOutOfOrder, got %v", idx, err)
		}
	}
	after := e.Levels()
	if len(after) != len(before) {
		t.Fatalf("expected %d levels, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("level %s changed after rejected bar: %+v -> %+v", before[i].Tag, before[i], after[i])
		}
	}
	if last, _ := e.LastIndex(); last != 5 {
		t.Errorf("expected last index 5, got %d", last)
	}
}

func TestStep_TimeframeLevels(t *testing.T) {
	e, _ := NewEngine(DefaultConfig())
	series := map[model.Timeframe]model.SeriesView{
		model.Daily:   {Index: 1, Current: model.Bar{Open: 101}, Previous: model.Bar{High: 105, Low: 95}},
		model.Weekly:  {Index: 0, Current: model.Bar{Open: 99, High: 106, Low: 94}},
		model.Monthly: {Index: 2, Current: model.Bar{Open: 90}, Previous: model.Bar{High: 120, Low: 80}},
		model.Yearly:  {Index: 0, Current: model.Bar{Open: 70, High: 130, Low: 60}},
	}
	// Tuesday, so no weekday range.
	bar := model.Bar{Index: 2, Time: monday.Add(24*time.Hour + 9*time.Hour), Open: 101, High: 102, Low: 100, Close: 101}
	res, err := e.Step(Input{Bar: bar, Series: series})
	if err != nil {
		t.Fatal(err)
	}
	var tags []string
	for _, l := range res.Levels {
		tags = append(tags, l.Tag)
	}
	wantTags := []string{"DO", "PDH", "PDL", "MO", "PMH", "PML", "YO", "YH", "YL"}
	if len(tags) != len(wantTags) {
		t.Fatalf("expected %v, got %v", wantTags, tags)
	}
	for i := range wantTags {
		if tags[i] != wantTags[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantTags[i], tags[i])
		}
	}
	if l, _ := res.Levels.Get("YH"); l.Price != 130 {
		t.Errorf("expected running yearly high 130, got %.0f", l.Price)
	}
	if l, _ := res.Levels.Get("PDL"); l.Price != 95 || l.Label != "Prev Day Low" {
		t.Errorf("unexpected PDL %+v", l)
	}
}

func TestStep_TogglesAndWeekdayRange(t *testing.T) {
	cfg := Config{
		Location:     time.UTC,
		WarmupBars:   0,
		Timeframes:   map[model.Timeframe]Toggle{model.Daily: {Open: true}},
		WeekdayRange: true,
		RangeWeekday: time.Monday,
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	series := map[model.Timeframe]model.SeriesView{
		model.Daily: {Index: 1, Current: model.Bar{Open: 10}, Previous: model.Bar{High: 11, Low: 9}},
	}
	e.Step(Input{Bar: at(0, 1, 0, 10, 12, 8, 11), Series: series})
	res, _ := e.Step(Input{Bar: at(1, 2, 0, 11, 15, 9, 14), Series: series})

	if _, ok := res.Levels.Get("PDH"); ok {
		t.Error("expected PDH to be disabled")
	}
	if l, ok := res.Levels.Get("DO"); !ok || l.AnchorIndex != 0 {
		t.Errorf("expected DO anchored at 0, got %+v", l)
	}
	hi, _ := res.Levels.Get("MonH")
	lo, _ := res.Levels.Get("MonL")
	if hi.Price != 15 || lo.Price != 8 || hi.AnchorIndex != 0 || hi.Label != "Monday High" {
		t.Errorf("unexpected Monday range %+v / %+v", hi, lo)
	}
}

func TestStep_RepeatedBarIsNotDoubleCounted(t *testing.T) {
	e, _ := NewEngine(DefaultConfig())
	in := Input{Bar: at(3, 9, 0, 10, 11, 9, 10)}
	first, err := e.Step(in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Step(in); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected repeat to be rejected, got %v", err)
	}
	now := e.Levels()
	if len(now) != len(first.Levels) {
		t.Fatalf("expected %d levels, got %d", len(first.Levels), len(now))
	}
	for i := range now {
		if now[i] != first.Levels[i] {
			t.Errorf("level %s changed on repeat", now[i].Tag)
		}
	}
}

func TestLevels_ReturnsCopy(t *testing.T) {
	e, _ := NewEngine(DefaultConfig())
	e.Step(Input{Bar: at(2, 9, 0, 10, 11, 9, 10)})
	ls := e.Levels()
	if len(ls) == 0 {
		t.Fatal("expected Monday range levels")
	}
	ls[0].Price = -1
	if e.Levels()[0].Price == -1 {
		t.Error("expected published set to be immutable to callers")
	}
}
