package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
	"github.com/google/uuid"
)

// SchedulerOptions configure the daily scheduler.
type SchedulerOptions struct {
	Schedule  entity.Schedule
	ChannelID string
	Caption   string
	Pipeline  contract.Pipeline
	Conn      contract.Connection
	Logger    *slog.Logger
	Clock     func() time.Time
	Sleeper   func(context.Context, time.Duration) error
	NewID     func() string
}

type scheduler struct {
	schedule  entity.Schedule
	channelID string
	caption   string
	pipeline  contract.Pipeline
	conn      contract.Connection
	logger    *slog.Logger
	clock     func() time.Time
	sleeper   func(context.Context, time.Duration) error
	newID     func() string

	mu      sync.Mutex
	started bool
	done    chan struct{}
	wg      sync.WaitGroup

	// fireMu keeps scheduled and test-mode fires from overlapping.
	fireMu   sync.Mutex
	lastFire time.Time
}

func newScheduler(opts SchedulerOptions) *scheduler {
	if opts.Schedule.Location == nil {
		opts.Schedule.Location = time.UTC
	}
	if opts.Caption == "" {
		opts.Caption = domain.DefaultCaption
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Sleeper == nil {
		opts.Sleeper = defaultSleeper
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &scheduler{
		schedule:  opts.Schedule,
		channelID: opts.ChannelID,
		caption:   opts.Caption,
		pipeline:  opts.Pipeline,
		conn:      opts.Conn,
		logger:    opts.Logger,
		clock:     opts.Clock,
		sleeper:   opts.Sleeper,
		newID:     opts.NewID,
		done:      make(chan struct{}),
	}
}

// Start spawns the scheduling loop. Only the first call has an effect, later calls
// (e.g. from reconnects) return false.
func (s *scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return false
	}
	s.started = true

	s.logger.InfoContext(ctx, "scheduler starting...", "schedule", s.schedule.String(), "channel_id", s.channelID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.mainLoop(ctx)
	}()
	return true
}

// Done is closed when the scheduling loop has returned.
func (s *scheduler) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the loop and any pending one-shot fire have returned, including a
// cycle in flight. It returns at once if nothing was started.
func (s *scheduler) Wait() {
	s.wg.Wait()
}

// FireAfter runs a single cycle to the scheduled channel after delay.
func (s *scheduler) FireAfter(ctx context.Context, delay time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.conn.Ready():
		case <-ctx.Done():
			return
		}

		s.logger.InfoContext(ctx, "test mode: one-shot fire scheduled", "delay", delay.String())
		if err := s.sleeper(ctx, delay); err != nil {
			return
		}
		if !s.conn.IsOpen() {
			s.logger.WarnContext(ctx, "test mode: connection closed, skipping one-shot fire")
			return
		}
		s.fire(ctx, domain.TriggerTestMode)
	}()
}

func (s *scheduler) mainLoop(ctx context.Context) {
	defer close(s.done)

	select {
	case <-s.conn.Ready():
	case <-ctx.Done():
		return
	}
	s.logger.InfoContext(ctx, "bot ready, syncing with the daily schedule")

	for {
		if !s.conn.IsOpen() {
			s.logger.InfoContext(ctx, "connection closed, scheduler stopping")
			return
		}

		now := s.clock()
		next := s.nextFire(now)
		wait := next.Sub(now)

		s.logger.InfoContext(ctx, "next screenshot scheduled",
			"next_fire", next.Format(time.RFC3339),
			"wait", wait.Round(time.Second).String())

		if err := s.sleeper(ctx, wait); err != nil {
			s.logger.InfoContext(ctx, "scheduler stopped", "reason", err.Error())
			return
		}

		if !s.conn.IsOpen() {
			s.logger.InfoContext(ctx, "connection closed, scheduler stopping")
			return
		}

		s.lastFire = next
		s.fire(ctx, domain.TriggerScheduled)
	}
}

// nextFire anchors the computation at the last fire so an early wake-up can never
// select the same occurrence twice.
func (s *scheduler) nextFire(now time.Time) time.Time {
	anchor := now
	if !s.lastFire.IsZero() && !now.After(s.lastFire) {
		anchor = s.lastFire
	}
	return NextFire(anchor, s.schedule)
}

func (s *scheduler) fire(ctx context.Context, trigger domain.Trigger) {
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	cycle := entity.Cycle{
		ID:        s.newID(),
		Trigger:   trigger,
		ChannelID: s.channelID,
		Caption:   s.caption,
	}

	defer recoverCycle(ctx, s.logger, cycle)

	err := s.pipeline.Run(ctx, cycle)
	logCycleError(ctx, s.logger, cycle, err)
}

func defaultSleeper(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
