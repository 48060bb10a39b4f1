package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	slackcmd "github.com/diegoclair/screenshot-bot/internal/domain/slack"
	"github.com/slack-go/slack"
)

type SlackHandler struct {
	// lifetime bounds captures started over HTTP; they outlive the request but not
	// the process.
	lifetime       context.Context
	triggerService contract.TriggerService
	signingSecret  string
	logger         *slog.Logger
}

var _ contract.CommandHandler = (*SlackHandler)(nil)

func New(lifetime context.Context, triggerService contract.TriggerService, signingSecret string, logger *slog.Logger) *SlackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlackHandler{
		lifetime:       lifetime,
		triggerService: triggerService,
		signingSecret:  signingSecret,
		logger:         logger,
	}
}

// HandleSlashCommand serves slash commands delivered over HTTP.
func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	// Verify Slack signature
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		h.logger.WarnContext(r.Context(), "rejected slash command with invalid signature", "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := h.lifetime.Err(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	response := h.HandleCommand(h.lifetime, s)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode slash command response", "error", err)
	}
}

// HandleCommand answers a slash command, whichever transport delivered it. Captures run
// in the background; the returned message is the immediate reply.
func (h *SlackHandler) HandleCommand(ctx context.Context, s slack.SlashCommand) *slack.Msg {
	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		return h.createErrorResponse(fmt.Sprintf("%v\n\n%s", err, slackcmd.GetHelpText(s.Command)))
	}

	switch cmd.Type {
	case slackcmd.CmdCapture:
		return h.handleCapture(ctx, &s)
	case slackcmd.CmdHelp:
		return h.handleHelp(&s)
	default:
		return h.createErrorResponse("Unknown command")
	}
}

func (h *SlackHandler) handleCapture(ctx context.Context, slashCmd *slack.SlashCommand) *slack.Msg {
	if slashCmd.ChannelID == "" {
		return h.createErrorResponse("This command must be used in a channel")
	}

	h.triggerService.TriggerCapture(ctx, slashCmd.ChannelID, slashCmd.UserID)

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         domain.ManualAckText,
	}
}

func (h *SlackHandler) handleHelp(slashCmd *slack.SlashCommand) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(slashCmd.Command),
	}
}

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("❌ %s", message),
	}
}
