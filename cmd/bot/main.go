package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/diegoclair/screenshot-bot/internal/config"
	"github.com/diegoclair/screenshot-bot/internal/delivery"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/service"
	"github.com/diegoclair/screenshot-bot/internal/handlers"
	"github.com/diegoclair/screenshot-bot/internal/heartbeat"
	"github.com/diegoclair/screenshot-bot/internal/screenshot"
	"github.com/diegoclair/screenshot-bot/internal/server"
	"github.com/diegoclair/screenshot-bot/internal/socket"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

const heartbeatTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := config.InitLogger(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	libLogger := config.StdLogger(logger, slog.LevelDebug)

	api := slack.New(cfg.Slack.BotToken,
		slack.OptionAppLevelToken(cfg.Slack.AppToken),
		slack.OptionDebug(cfg.Slack.Debug),
		slack.OptionLog(libLogger),
	)
	client := socketmode.New(api,
		socketmode.OptionDebug(cfg.Slack.Debug),
		socketmode.OptionLog(libLogger),
	)
	conn := socket.New(client, logger)

	fetcher, err := screenshot.New(screenshot.Config{
		BaseURL:    cfg.Screenshot.APIURL,
		APIKey:     cfg.Screenshot.APIKey,
		TargetURL:  cfg.Screenshot.TargetURL,
		Dimension:  cfg.Screenshot.Dimension,
		Device:     cfg.Screenshot.Device,
		Format:     cfg.Screenshot.Format,
		CacheLimit: cfg.Screenshot.CacheLimit,
		Delay:      cfg.Screenshot.Delay,
		Zoom:       cfg.Screenshot.Zoom,
		Timeout:    cfg.Screenshot.Timeout,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	sink := delivery.New(api, logger)

	var hb contract.Heartbeat
	if cfg.HeartbeatURL != "" {
		hb = heartbeat.New(cfg.HeartbeatURL, heartbeatTimeout)
	}

	instance := service.NewInstance(service.Options{
		Fetcher:     fetcher,
		Sink:        sink,
		Heartbeat:   hb,
		Conn:        conn,
		Schedule:    cfg.Schedule(),
		ChannelID:   cfg.Slack.ChannelID,
		Caption:     cfg.Send.Caption,
		TestCaption: cfg.Send.TestCaption,
		StagingDir:  cfg.StagingDir,
		Format:      cfg.Screenshot.Format,
		Logger:      logger,
	})

	handler := handlers.New(ctx, instance.Trigger, cfg.Slack.SigningSecret, logger)
	conn.SetCommandHandler(handler)

	var slashHandler *handlers.SlackHandler
	if cfg.Slack.SigningSecret != "" {
		slashHandler = handler
	}
	httpServer := server.Start(logger, handlers.Routes(slashHandler), cfg.Addr())

	conn.OnConnected(func(ctx context.Context) {
		if !instance.Scheduler.Start(ctx) {
			return
		}
		go func() {
			if _, err := sink.Resolve(ctx, cfg.Slack.ChannelID); err != nil {
				logger.WarnContext(ctx, "scheduled channel is not reachable yet", "channel_id", cfg.Slack.ChannelID, "error", err)
			}
		}()
	})

	if cfg.TestMode {
		instance.Scheduler.FireAfter(ctx, cfg.TestDelay)
	}

	logger.Info("bot starting",
		"schedule", cfg.Schedule().String(),
		"channel_id", cfg.Slack.ChannelID,
		"test_mode", cfg.TestMode,
		"http_commands", slashHandler != nil,
	)

	runErr := conn.Run(ctx)
	cancel()

	if err := server.Shutdown(ctx, httpServer, logger); err != nil {
		logger.Warn("HTTP server shutdown failed", "error", err)
	}
	instance.Trigger.Wait()
	instance.Scheduler.Wait()

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
