package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
	"github.com/google/uuid"
)

// TriggerOptions configure manual captures.
type TriggerOptions struct {
	Pipeline contract.Pipeline
	Sink     contract.Deliverer
	Caption  string
	Logger   *slog.Logger
	NewID    func() string
}

type trigger struct {
	pipeline contract.Pipeline
	sink     contract.Deliverer
	caption  string
	logger   *slog.Logger
	newID    func() string
	wg       sync.WaitGroup
}

var _ contract.TriggerService = (*trigger)(nil)

func newTrigger(opts TriggerOptions) *trigger {
	if opts.Caption == "" {
		opts.Caption = domain.DefaultTestCaption
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &trigger{
		pipeline: opts.Pipeline,
		sink:     opts.Sink,
		caption:  opts.Caption,
		logger:   opts.Logger,
		newID:    opts.NewID,
	}
}

// TriggerCapture runs a cycle to channelID in the background. Manual cycles are not
// serialized with scheduled ones; each stages its own file.
func (t *trigger) TriggerCapture(ctx context.Context, channelID, userID string) {
	cycle := entity.Cycle{
		ID:        t.newID(),
		Trigger:   domain.TriggerManual,
		ChannelID: channelID,
		Caption:   t.caption,
	}

	t.logger.InfoContext(ctx, "manual screenshot requested", "cycle_id", cycle.ID, "channel_id", channelID, "user_id", userID)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx, cycle)
	}()
}

// Wait blocks until all manual cycles have finished.
func (t *trigger) Wait() {
	t.wg.Wait()
}

func (t *trigger) run(ctx context.Context, cycle entity.Cycle) {
	defer func() {
		if r := recover(); r != nil {
			recoverErr := fmt.Errorf("panic: %v", r)
			logCycleError(ctx, t.logger, cycle, recoverErr)
			t.report(ctx, cycle, recoverErr)
		}
	}()

	err := t.pipeline.Run(ctx, cycle)
	if err == nil {
		return
	}

	logCycleError(ctx, t.logger, cycle, err)
	t.report(ctx, cycle, err)
}

func (t *trigger) report(ctx context.Context, cycle entity.Cycle, err error) {
	text := fmt.Sprintf("❌ Screenshot failed: `%v`", err)
	if nerr := t.sink.Notify(ctx, cycle.ChannelID, text); nerr != nil {
		t.logger.ErrorContext(ctx, "failed to report manual screenshot error", "cycle_id", cycle.ID, "channel_id", cycle.ChannelID, "error", nerr)
	}
}
