package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/arrpush/internal/events"
)

// Summary counts what happened during a session.
type Summary struct {
	Started   int
	Completed int
	Skipped   int
	Failed    int
	Trashed   int
	Duration  time.Duration
}

// Stats tallies pipeline events from the bus.
type Stats struct {
	ch    <-chan events.Event
	log   *slog.Logger
	start time.Time

	mu  sync.Mutex
	sum Summary
}

// NewStats subscribes to the bus immediately so no event published after it
// returns is missed. A nil bus yields empty counts.
func NewStats(bus *events.Bus, logger *slog.Logger) *Stats {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stats{log: logger, start: time.Now()}
	if bus != nil {
		s.ch = bus.SubscribeAll(100)
	}
	return s
}

// Start counts events until ctx is done or the bus closes.
func (s *Stats) Start(ctx context.Context) error {
	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				return nil
			}
			s.record(e)
		case <-ctx.Done():
			s.drain()
			return nil
		}
	}
}

func (s *Stats) drain() {
	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				return
			}
			s.record(e)
		default:
			return
		}
	}
}

func (s *Stats) record(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := e.(type) {
	case *events.TransferStarted:
		s.sum.Started++
	case *events.TransferCompleted:
		s.sum.Completed++
	case *events.TransferSkipped:
		s.sum.Skipped++
	case *events.TransferFailed:
		s.sum.Failed++
	case *events.CleanupCompleted:
		s.sum.Trashed += len(ev.Paths)
	}
}

// Summary returns the counts so far.
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := s.sum
	sum.Duration = time.Since(s.start)
	return sum
}

// LogSummary writes the session summary.
func (s *Stats) LogSummary() {
	sum := s.Summary()
	s.log.Info("session summary",
		"jobs", sum.Started,
		"completed", sum.Completed,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"trashed", sum.Trashed,
		"duration", sum.Duration.Round(time.Second))
}
