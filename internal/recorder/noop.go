package recorder

import (
	"time"

	"LevelSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLevels(_ model.Bar, _ []model.Level) (int, error)        { return 0, nil }
func (n *NoopRecorder) RecordSessionClose(_ model.SessionSnapshot, _ time.Time) error { return nil }
func (n *NoopRecorder) Close() error                                                  { return nil }
