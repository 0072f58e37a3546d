package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/clock"
	"LevelSentinel/internal/collector"
	"LevelSentinel/internal/levels"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/notifier"
	"LevelSentinel/internal/recorder"
)

// DefaultNotifyWithin bounds how old a session close may be and still be
// announced. Older closes come from backfill and are only recorded.
const DefaultNotifyWithin = 2 * time.Hour

// Scheduler manages all cron tasks. The engine is only touched under mu.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *levels.Engine
	Notifier  notifier.Sender
	Recorder  recorder.Recorder
	Ctx       context.Context

	Symbol   string
	Sessions []levels.SessionConfig
	// NotifyWithin of zero announces every close.
	NotifyWithin time.Duration
	Now          func() time.Time

	mu      sync.Mutex
	lastBar model.Bar
	haveBar bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, eng *levels.Engine, sender notifier.Sender, rec recorder.Recorder) *Scheduler {
	cronLog := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Collector:    col,
		Engine:       eng,
		Notifier:     sender,
		Recorder:     rec,
		Ctx:          ctx,
		Symbol:       col.Symbol,
		NotifyWithin: DefaultNotifyWithin,
		Now:          time.Now,
	}
}

// RegisterAll registers the bar poll and the level summary tasks.
func (s *Scheduler) RegisterAll(pollCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(pollCron, s.pollTask); err != nil {
		return fmt.Errorf("register poll task: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunPollNow executes the poll task immediately (for RUN_ON_START).
func (s *Scheduler) RunPollNow() {
	s.pollTask()
}

func (s *Scheduler) pollTask() {
	for _, msg := range s.poll() {
		s.trySend(msg)
	}
}

// poll feeds every new bar to the engine and returns the session-close
// reports to announce. Sending happens after mu is released.
func (s *Scheduler) poll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputs, err := s.Collector.Collect()
	if err != nil {
		log.Errorf("poll collect: %v", err)
		return nil
	}
	if len(inputs) == 0 {
		log.Debug("poll: no finished bars")
		return nil
	}

	var reports []string
	bars := make([]model.Bar, 0, len(inputs))
	for _, in := range inputs {
		ok, msgs := s.step(in)
		if ok {
			bars = append(bars, in.Bar)
		}
		reports = append(reports, msgs...)
	}
	if len(bars) == 0 {
		return reports
	}
	high, low, _ := calculator.RangeOf(bars)
	log.WithFields(log.Fields{
		"bars":  len(bars),
		"first": bars[0].Index,
		"last":  bars[len(bars)-1].Index,
		"high":  high,
		"low":   low,
	}).Info("poll: bars processed")
	return reports
}

// step feeds one input to the engine and reports whether it was accepted,
// along with the session-close reports it produced.
func (s *Scheduler) step(in levels.Input) (bool, []string) {
	res, err := s.Engine.Step(in)
	if errors.Is(err, levels.ErrOutOfOrder) {
		log.Warnf("skip bar: %v", err)
		return false, nil
	}
	if err != nil {
		log.Errorf("step bar %d: %v", in.Bar.Index, err)
		return false, nil
	}
	s.lastBar = in.Bar
	s.haveBar = true

	if _, err := s.Recorder.RecordLevels(in.Bar, res.Levels); err != nil {
		log.Errorf("record levels: %v", err)
	}
	var reports []string
	for _, snap := range res.Closed {
		if err := s.Recorder.RecordSessionClose(snap, in.Bar.Time); err != nil {
			log.Errorf("record session close: %v", err)
		}
		if s.NotifyWithin > 0 && s.Now().Sub(in.Bar.Time) > s.NotifyWithin {
			log.WithField("session", snap.Session).Debug("backfilled session close, not announced")
			continue
		}
		reports = append(reports, notifier.FormatSessionClose(snap, in.Bar.Close, in.Bar.Time, s.Engine.Location()))
	}
	return true, reports
}

func (s *Scheduler) summaryTask() {
	log.Info("running summary task")
	s.trySend(s.board())
}

func (s *Scheduler) board() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveBar {
		return fmt.Sprintf("📐 <b>%s levels</b>\n\nNo bars processed yet.", s.Symbol)
	}
	return notifier.FormatLevels(s.Symbol, s.lastBar, s.Engine.Levels(), s.Engine.Location())
}

func (s *Scheduler) sessions() string {
	now := s.Now()
	loc := s.Engine.Location()
	tod := clock.TimeOfDay(now, loc)
	rows := make([]notifier.SessionStatus, 0, len(s.Sessions))
	for _, sc := range s.Sessions {
		rows = append(rows, notifier.SessionStatus{
			Name:   sc.Name,
			Tag:    sc.Tag,
			Window: sc.Window,
			Active: sc.Window.Contains(tod),
		})
	}
	return notifier.FormatSessions(rows, now, loc)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/levels":
		return s.board()
	case "/sessions":
		return s.sessions()
	case "/poll":
		s.pollTask()
		return s.board()
	default:
		return "Available commands:\n• /levels\n• /sessions\n• /poll"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Errorf("send notification: %v", err)
	}
}
