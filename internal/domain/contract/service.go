package contract

import (
	"context"

	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
	"github.com/slack-go/slack"
)

// Fetcher obtains a rendered page image and stages it at path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*entity.CaptureResult, error)
}

// Deliverer posts staged files and text to channels.
type Deliverer interface {
	Deliver(ctx context.Context, channelID, path, caption string) error
	Notify(ctx context.Context, channelID, text string) error
}

// Heartbeat reports a healthy cycle to an external monitor.
type Heartbeat interface {
	Ping(ctx context.Context) error
}

// Pipeline runs one fetch-then-deliver cycle.
type Pipeline interface {
	Run(ctx context.Context, cycle entity.Cycle) error
}

// Connection exposes the lifecycle of the messaging connection.
type Connection interface {
	Ready() <-chan struct{}
	IsOpen() bool
}

// TriggerService starts manual cycles requested from chat.
type TriggerService interface {
	TriggerCapture(ctx context.Context, channelID, userID string)
}

// CommandHandler turns a slash command into its immediate reply.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd slack.SlashCommand) *slack.Msg
}
