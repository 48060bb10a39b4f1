package socket

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/diegoclair/screenshot-bot/mocks"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeClient struct {
	events chan socketmode.Event

	mu   sync.Mutex
	acks []ackCall
}

type ackCall struct {
	req     socketmode.Request
	payload []interface{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{events: make(chan socketmode.Event, 10)}
}

func (f *fakeClient) run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeClient) ack(req socketmode.Request, payload ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, ackCall{req: req, payload: payload})
}

func (f *fakeClient) Acks() []ackCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ackCall(nil), f.acks...)
}

func newTestConnection(t *testing.T) (*Connection, *fakeClient, *mocks.MockCommandHandler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	handler := mocks.NewMockCommandHandler(ctrl)
	client := newFakeClient()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn := newConnection(client.events, client.run, client.ack, logger)
	conn.SetCommandHandler(handler)
	return conn, client, handler
}

func runAsync(ctx context.Context, c *Connection) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(ctx)
	}()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()

	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestConnection_Connected(t *testing.T) {
	conn, client, _ := newTestConnection(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connected := make(chan struct{}, 2)
	conn.OnConnected(func(context.Context) {
		connected <- struct{}{}
	})

	assert.False(t, conn.IsOpen())

	errCh := runAsync(ctx, conn)

	client.events <- socketmode.Event{Type: socketmode.EventTypeConnecting}
	client.events <- socketmode.Event{Type: socketmode.EventTypeConnected}

	select {
	case <-conn.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("connection never became ready")
	}
	<-connected
	assert.True(t, conn.IsOpen())

	// reconnects run the callbacks again
	client.events <- socketmode.Event{Type: socketmode.EventTypeDisconnect}
	client.events <- socketmode.Event{Type: socketmode.EventTypeConnected}
	<-connected

	cancel()
	assert.ErrorIs(t, waitErr(t, errCh), context.Canceled)
	assert.False(t, conn.IsOpen())
}

func TestConnection_InvalidAuth(t *testing.T) {
	conn, client, _ := newTestConnection(t)

	errCh := runAsync(context.Background(), conn)

	client.events <- socketmode.Event{Type: socketmode.EventTypeInvalidAuth}

	assert.ErrorIs(t, waitErr(t, errCh), ErrInvalidAuth)
	assert.False(t, conn.IsOpen())

	select {
	case <-conn.Ready():
		t.Fatal("connection must not be ready")
	default:
	}
}

func TestConnection_SlashCommand(t *testing.T) {
	conn, client, handler := newTestConnection(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := slack.SlashCommand{Command: "/screenshot", Text: "now", ChannelID: "C1", UserID: "U1"}
	reply := &slack.Msg{ResponseType: slack.ResponseTypeInChannel, Text: "📸 Taking a test screenshot..."}

	handled := make(chan struct{})
	handler.EXPECT().HandleCommand(gomock.Any(), cmd).DoAndReturn(
		func(context.Context, slack.SlashCommand) *slack.Msg {
			close(handled)
			return reply
		},
	).Times(1)

	errCh := runAsync(ctx, conn)

	client.events <- socketmode.Event{
		Type:    socketmode.EventTypeSlashCommand,
		Data:    cmd,
		Request: &socketmode.Request{Type: socketmode.RequestTypeSlashCommands, EnvelopeID: "env-1"},
	}
	<-handled

	// an unrelated request is still acknowledged, without payload
	client.events <- socketmode.Event{
		Type:    socketmode.EventTypeEventsAPI,
		Request: &socketmode.Request{Type: socketmode.RequestTypeEventsAPI, EnvelopeID: "env-2"},
	}

	require.Eventually(t, func() bool { return len(client.Acks()) == 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	waitErr(t, errCh)

	acks := client.Acks()
	assert.Equal(t, "env-1", acks[0].req.EnvelopeID)
	require.Len(t, acks[0].payload, 1)
	assert.Equal(t, reply, acks[0].payload[0])

	assert.Equal(t, "env-2", acks[1].req.EnvelopeID)
	assert.Empty(t, acks[1].payload)
}

func TestConnection_SlashCommandWithoutHandler(t *testing.T) {
	client := newFakeClient()
	conn := newConnection(client.events, client.run, client.ack, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := runAsync(ctx, conn)

	client.events <- socketmode.Event{
		Type:    socketmode.EventTypeSlashCommand,
		Data:    slack.SlashCommand{Command: "/screenshot"},
		Request: &socketmode.Request{Type: socketmode.RequestTypeSlashCommands, EnvelopeID: "env-1"},
	}

	require.Eventually(t, func() bool { return len(client.Acks()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, client.Acks()[0].payload)

	cancel()
	waitErr(t, errCh)
}

func TestConnection_ClientStopped(t *testing.T) {
	events := make(chan socketmode.Event)

	conn := newConnection(events, func(context.Context) error { return nil }, func(socketmode.Request, ...interface{}) {}, nil)

	err := conn.Run(context.Background())
	assert.ErrorIs(t, err, errClientStopped)
}
