// Package delivery posts staged screenshots to Slack channels.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
	"github.com/slack-go/slack"
)

// Slack API error codes that mean the bot cannot reach the channel.
var destinationErrors = map[string]string{
	"channel_not_found": "channel not found",
	"not_in_channel":    "bot is not a member of the channel",
	"is_archived":       "channel is archived",
	"missing_scope":     "bot token is missing a required scope",
	"access_denied":     "access denied",
	"restricted_action": "posting is restricted in this channel",
}

// Sink delivers files and messages through the Slack Web API.
type Sink struct {
	client contract.SlackClient
	logger *slog.Logger

	mu           sync.RWMutex
	destinations map[string]*entity.Destination
}

var _ contract.Deliverer = (*Sink)(nil)

func New(client contract.SlackClient, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		client:       client,
		logger:       logger,
		destinations: make(map[string]*entity.Destination),
	}
}

// Resolve looks up channelID once and caches the result.
func (s *Sink) Resolve(ctx context.Context, channelID string) (*entity.Destination, error) {
	s.mu.RLock()
	dest, ok := s.destinations[channelID]
	s.mu.RUnlock()
	if ok {
		return dest, nil
	}

	channel, err := s.client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{ChannelID: channelID})
	if err != nil {
		return nil, classify(channelID, err)
	}
	if channel == nil {
		return nil, &domain.DestinationNotFoundError{ChannelID: channelID, Reason: "channel not found"}
	}
	if channel.IsArchived {
		return nil, &domain.DestinationNotFoundError{ChannelID: channelID, Reason: destinationErrors["is_archived"]}
	}
	if !channel.IsIM && !channel.IsMpIM && !channel.IsMember {
		return nil, &domain.DestinationNotFoundError{ChannelID: channelID, Reason: destinationErrors["not_in_channel"]}
	}

	dest = &entity.Destination{ChannelID: channelID, Name: channel.Name}

	s.mu.Lock()
	s.destinations[channelID] = dest
	s.mu.Unlock()

	return dest, nil
}

// Deliver uploads the file at path to channelID with caption as the message text.
func (s *Sink) Deliver(ctx context.Context, channelID, path, caption string) error {
	dest, err := s.Resolve(ctx, channelID)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return &domain.DeliveryError{ChannelID: channelID, Err: fmt.Errorf("stat staged file: %w", err)}
	}

	filename := filepath.Base(path)
	file, err := s.client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           path,
		FileSize:       int(info.Size()),
		Filename:       filename,
		Title:          filename,
		InitialComment: caption,
		Channel:        dest.ChannelID,
	})
	if err != nil {
		return classify(channelID, err)
	}

	s.logger.InfoContext(ctx, "screenshot delivered",
		"channel_id", dest.ChannelID,
		"channel_name", dest.Name,
		"file_id", file.ID,
		"bytes", info.Size())

	return nil
}

// Notify posts a plain text message to channelID.
func (s *Sink) Notify(ctx context.Context, channelID, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return classify(channelID, err)
	}
	return nil
}

func classify(channelID string, err error) error {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		if reason, ok := destinationErrors[slackErr.Err]; ok {
			return &domain.DestinationNotFoundError{ChannelID: channelID, Reason: reason, Err: err}
		}
	}
	return &domain.DeliveryError{ChannelID: channelID, Err: err}
}
