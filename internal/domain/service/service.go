package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
)

// Options holds everything the services need. Clock, Sleeper and NewID are optional.
type Options struct {
	Fetcher     contract.Fetcher
	Sink        contract.Deliverer
	Heartbeat   contract.Heartbeat
	Conn        contract.Connection
	Schedule    entity.Schedule
	ChannelID   string
	Caption     string
	TestCaption string
	StagingDir  string
	Format      string
	Logger      *slog.Logger

	Clock   func() time.Time
	Sleeper func(context.Context, time.Duration) error
	NewID   func() string
}
