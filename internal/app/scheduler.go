package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/log"
)

// ErrInvalidPeriod is returned by Start for a non-positive period.
var ErrInvalidPeriod = errors.New("scheduler period must be positive")

// SchedulerState is the running state of a Scheduler.
type SchedulerState int

const (
	SchedulerStopped SchedulerState = iota
	SchedulerRunning
)

// String returns a human-readable representation of the state.
func (s SchedulerState) String() string {
	if s == SchedulerRunning {
		return "Running"
	}
	return "Stopped"
}

// Scheduler dispatches the command under the table cursor once per period
// and advances the cursor. Start dispatches once immediately.
type Scheduler struct {
	dispatcher *Dispatcher
	logger     log.Logger

	mu     sync.Mutex
	state  SchedulerState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(dispatcher *Dispatcher, logger log.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// State returns the scheduler state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start performs the immediate dispatch and arms the periodic timer.
// Ticks that find the sender disconnected are skipped.
func (s *Scheduler) Start(ctx context.Context, sender Sender, table *Table, period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}

	s.mu.Lock()
	if s.state == SchedulerRunning {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.state = SchedulerRunning
	s.mu.Unlock()

	s.logger.Info("scheduler started",
		log.Duration("period", period),
		log.Int("commands", table.Len()),
	)

	s.tick(runCtx, sender, table)

	go s.loop(runCtx, sender, table, period, done)
	return nil
}

// Stop cancels the timer and waits for an in-flight dispatch to finish.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != SchedulerRunning {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.state = SchedulerStopped
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// SendOnce dispatches the command at index without touching the cursor.
func (s *Scheduler) SendOnce(ctx context.Context, sender Sender, table *Table, index int) (domain.Report, error) {
	cmd, err := table.Get(index)
	if err != nil {
		return domain.Report{}, err
	}
	r := s.dispatcher.Dispatch(ctx, sender, cmd, index, domain.SourceManual)
	return r, r.Err
}

func (s *Scheduler) loop(ctx context.Context, sender Sender, table *Table, period time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, sender, table)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, sender Sender, table *Table) {
	if ctx.Err() != nil {
		return
	}
	if !sender.Connected() {
		s.logger.Debug("not connected, skipping tick")
		return
	}

	cmd, index, gen, err := table.Next()
	if err != nil {
		s.logger.Warn("nothing to send", log.Err(err))
		return
	}

	s.dispatcher.Dispatch(ctx, sender, cmd, index, domain.SourceScheduled)
	if !table.AdvanceFrom(gen) {
		s.logger.Debug("table replaced during dispatch, cursor left at start")
	}
}
