// Package socket keeps the bot's Slack Socket Mode connection and routes its events.
package socket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidAuth   = errors.New("socket mode: invalid_auth")
	errClientStopped = errors.New("socket mode: client stopped")
)

type runFunc func(ctx context.Context) error

type ackFunc func(req socketmode.Request, payload ...interface{})

type Connection struct {
	events  <-chan socketmode.Event
	run     runFunc
	ack     ackFunc
	handler contract.CommandHandler
	logger  *slog.Logger

	open      atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once

	mu          sync.Mutex
	onConnected []func(ctx context.Context)
}

var _ contract.Connection = (*Connection)(nil)

func New(client *socketmode.Client, logger *slog.Logger) *Connection {
	return newConnection(client.Events, client.RunContext, client.Ack, logger)
}

func newConnection(events <-chan socketmode.Event, run runFunc, ack ackFunc, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{
		events: events,
		run:    run,
		ack:    ack,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// SetCommandHandler routes slash commands to handler. Call it before Run.
func (c *Connection) SetCommandHandler(handler contract.CommandHandler) {
	c.handler = handler
}

// Ready is closed on the first connected event.
func (c *Connection) Ready() <-chan struct{} {
	return c.ready
}

// IsOpen reports whether the connection came up and Run has not returned yet.
func (c *Connection) IsOpen() bool {
	return c.open.Load()
}

// OnConnected registers fn to run on every connected event, reconnects included.
// Callbacks run on the event loop and must not block.
func (c *Connection) OnConnected(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnected = append(c.onConnected, fn)
}

// Run blocks until ctx is done or the connection fails for good.
func (c *Connection) Run(ctx context.Context) error {
	defer c.open.Store(false)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := c.run(gctx)
		if err == nil && gctx.Err() == nil {
			return errClientStopped
		}
		return err
	})

	g.Go(func() error {
		return c.consume(gctx)
	})

	return g.Wait()
}

func (c *Connection) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-c.events:
			if !ok {
				return errClientStopped
			}
			if err := c.handle(ctx, evt); err != nil {
				return err
			}
		}
	}
}

func (c *Connection) handle(ctx context.Context, evt socketmode.Event) error {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		c.logger.InfoContext(ctx, "connecting to Slack with Socket Mode...")

	case socketmode.EventTypeConnectionError:
		c.logger.WarnContext(ctx, "socket mode connection failed, retrying", "data", evt.Data)

	case socketmode.EventTypeInvalidAuth:
		c.logger.ErrorContext(ctx, "socket mode authentication failed, check SLACK_APP_TOKEN")
		return ErrInvalidAuth

	case socketmode.EventTypeConnected:
		c.logger.InfoContext(ctx, "connected to Slack with Socket Mode")
		c.open.Store(true)
		c.readyOnce.Do(func() { close(c.ready) })

		c.mu.Lock()
		callbacks := append([]func(context.Context){}, c.onConnected...)
		c.mu.Unlock()
		for _, fn := range callbacks {
			fn(ctx)
		}

	case socketmode.EventTypeHello:
		c.logger.DebugContext(ctx, "socket mode hello received")

	case socketmode.EventTypeDisconnect:
		c.logger.InfoContext(ctx, "socket mode disconnect requested, reconnecting")

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			c.logger.WarnContext(ctx, "ignored slash command with unexpected payload")
			return nil
		}
		c.logger.InfoContext(ctx, "slash command received", "command", cmd.Command, "text", cmd.Text, "channel_id", cmd.ChannelID, "user_id", cmd.UserID)

		if c.handler == nil {
			if evt.Request != nil {
				c.ack(*evt.Request)
			}
			return nil
		}

		msg := c.handler.HandleCommand(ctx, cmd)
		if evt.Request != nil {
			c.ack(*evt.Request, msg)
		}

	default:
		// Slack redelivers anything left unacknowledged.
		if evt.Request != nil && evt.Request.EnvelopeID != "" {
			c.ack(*evt.Request)
		}
	}

	return nil
}
