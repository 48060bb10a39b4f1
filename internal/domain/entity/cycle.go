package entity

import "github.com/diegoclair/screenshot-bot/internal/domain"

// Cycle is one fetch-then-deliver run.
type Cycle struct {
	ID        string
	Trigger   domain.Trigger
	ChannelID string
	Caption   string
}

// Destination is a channel that accepted the bot.
type Destination struct {
	ChannelID string
	Name      string
}
