package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/diegoclair/screenshot-bot/mocks"
	"go.uber.org/mock/gomock"
)

type allMocks struct {
	mockFetcher    *mocks.MockFetcher
	mockDeliverer  *mocks.MockDeliverer
	mockHeartbeat  *mocks.MockHeartbeat
	mockPipeline   *mocks.MockPipeline
	mockConnection *mocks.MockConnection
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	m = allMocks{
		mockFetcher:    mocks.NewMockFetcher(ctrl),
		mockDeliverer:  mocks.NewMockDeliverer(ctrl),
		mockHeartbeat:  mocks.NewMockHeartbeat(ctrl),
		mockPipeline:   mocks.NewMockPipeline(ctrl),
		mockConnection: mocks.NewMockConnection(ctrl),
	}

	return
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock advances instantly on every sleep and records the requested waits.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
	// drift is subtracted from each sleep to simulate early wake-ups.
	drift time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.waits = append(c.waits, d)
	c.now = c.now.Add(d - c.drift)
	return nil
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

func readyChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func sequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
