package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
)

// PipelineOptions configure the fetch-then-deliver cycle.
type PipelineOptions struct {
	Fetcher    contract.Fetcher
	Sink       contract.Deliverer
	Heartbeat  contract.Heartbeat
	StagingDir string
	Format     string
	Logger     *slog.Logger
}

type pipeline struct {
	fetcher    contract.Fetcher
	sink       contract.Deliverer
	heartbeat  contract.Heartbeat
	stagingDir string
	format     string
	logger     *slog.Logger
}

var _ contract.Pipeline = (*pipeline)(nil)

func newPipeline(opts PipelineOptions) *pipeline {
	if opts.StagingDir == "" {
		opts.StagingDir = os.TempDir()
	}
	if opts.Format == "" {
		opts.Format = domain.DefaultFormat
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &pipeline{
		fetcher:    opts.Fetcher,
		sink:       opts.Sink,
		heartbeat:  opts.Heartbeat,
		stagingDir: opts.StagingDir,
		format:     opts.Format,
		logger:     opts.Logger,
	}
}

// Run fetches a screenshot and delivers it. Delivery is never attempted when the
// fetch fails, and the staged file is removed once the cycle ends.
func (p *pipeline) Run(ctx context.Context, cycle entity.Cycle) error {
	start := time.Now()
	logger := p.logger.With("cycle_id", cycle.ID, "trigger", string(cycle.Trigger), "channel_id", cycle.ChannelID)

	path := p.stagingPath(cycle)
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnContext(ctx, "failed to remove staged screenshot", "path", path, "error", err)
		}
	}()

	logger.InfoContext(ctx, "downloading countdown screenshot...")
	// Fetch errors already name the fetch step.
	result, err := p.fetcher.Fetch(ctx, path)
	if err != nil {
		return err
	}

	if err := p.sink.Deliver(ctx, cycle.ChannelID, result.Path, cycle.Caption); err != nil {
		return fmt.Errorf("deliver screenshot: %w", err)
	}

	logger.InfoContext(ctx, "screenshot sent", "bytes", result.Bytes, "duration", time.Since(start).String())

	if p.heartbeat != nil && cycle.Trigger == domain.TriggerScheduled {
		if err := p.heartbeat.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "heartbeat ping failed", "error", err)
		}
	}

	return nil
}

// stagingPath gives every cycle its own file so concurrent cycles never share one.
func (p *pipeline) stagingPath(cycle entity.Cycle) string {
	return filepath.Join(p.stagingDir, fmt.Sprintf("capture-%s.%s", cycle.ID, p.format))
}

// logCycleError reduces a cycle failure to a log line, keeping expected failure kinds
// apart from unexpected ones.
func logCycleError(ctx context.Context, logger *slog.Logger, cycle entity.Cycle, err error) {
	if err == nil {
		return
	}

	logger = logger.With("cycle_id", cycle.ID, "trigger", string(cycle.Trigger), "channel_id", cycle.ChannelID)

	var (
		cfgErr      *domain.ConfigurationError
		fetchErr    *domain.FetchError
		notFoundErr *domain.DestinationNotFoundError
		deliveryErr *domain.DeliveryError
	)

	switch {
	case errors.As(err, &cfgErr):
		logger.ErrorContext(ctx, "screenshot capture is misconfigured", "field", cfgErr.Field, "error", err)
	case errors.As(err, &fetchErr):
		logger.WarnContext(ctx, "screenshot fetch failed, nothing delivered", "status_code", fetchErr.StatusCode, "error", err)
	case errors.As(err, &notFoundErr):
		logger.ErrorContext(ctx, "destination channel not found, check SLACK_CHANNEL_ID", "reason", notFoundErr.Reason, "error", err)
	case errors.As(err, &deliveryErr):
		logger.ErrorContext(ctx, "screenshot delivery failed", "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.InfoContext(ctx, "cycle canceled", "error", err)
	default:
		logger.ErrorContext(ctx, "unexpected cycle failure", "error", err)
	}
}

func recoverCycle(ctx context.Context, logger *slog.Logger, cycle entity.Cycle) {
	if r := recover(); r != nil {
		logger.ErrorContext(ctx, "cycle panicked", "cycle_id", cycle.ID, "trigger", string(cycle.Trigger), "panic", fmt.Sprint(r))
	}
}
