package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
	"github.com/diegoclair/screenshot-bot/internal/screenshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTrigger_TriggerCapture(t *testing.T) {
	tests := []struct {
		name      string
		buildMock func(ctx context.Context, mocks allMocks)
	}{
		{
			name: "Should run a manual cycle to the requesting channel",
			buildMock: func(ctx context.Context, mocks allMocks) {
				mocks.mockPipeline.EXPECT().Run(ctx, entity.Cycle{
					ID:        "manual-1",
					Trigger:   domain.TriggerManual,
					ChannelID: "C777",
					Caption:   domain.DefaultTestCaption,
				}).Return(nil)
				mocks.mockDeliverer.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
		},
		{
			name: "Should report failure in the requesting channel",
			buildMock: func(ctx context.Context, mocks allMocks) {
				mocks.mockPipeline.EXPECT().Run(ctx, gomock.Any()).
					Return(&domain.FetchError{StatusCode: 500, Status: "500 Internal Server Error"})
				mocks.mockDeliverer.EXPECT().Notify(ctx, "C777",
					"❌ Screenshot failed: `fetch screenshot: HTTP error: 500 Internal Server Error`").Return(nil)
			},
		},
		{
			name: "Should survive a failed failure report",
			buildMock: func(ctx context.Context, mocks allMocks) {
				mocks.mockPipeline.EXPECT().Run(ctx, gomock.Any()).Return(errors.New("boom"))
				mocks.mockDeliverer.EXPECT().Notify(ctx, "C777", "❌ Screenshot failed: `boom`").
					Return(&domain.DeliveryError{ChannelID: "C777", Err: errors.New("not_authed")})
			},
		},
		{
			name: "Should report a panicking cycle",
			buildMock: func(ctx context.Context, mocks allMocks) {
				mocks.mockPipeline.EXPECT().Run(ctx, gomock.Any()).DoAndReturn(
					func(context.Context, entity.Cycle) error { panic("nil file") },
				)
				mocks.mockDeliverer.EXPECT().Notify(ctx, "C777", "❌ Screenshot failed: `panic: nil file`").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl := newServiceTestMock(t)
			defer ctrl.Finish()

			ctx := context.Background()
			if tt.buildMock != nil {
				tt.buildMock(ctx, m)
			}

			tr := newTrigger(TriggerOptions{
				Pipeline: m.mockPipeline,
				Sink:     m.mockDeliverer,
				Logger:   discardLogger(),
				NewID:    sequentialIDs("manual"),
			})

			tr.TriggerCapture(ctx, "C777", "U1")
			tr.Wait()
		})
	}
}

func TestTrigger_FailureReportHidesCaptureKey(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := ts.URL + "/"
	ts.Close()

	fetcher, err := screenshot.New(screenshot.Config{BaseURL: baseURL, APIKey: "capture-key-0123", Logger: discardLogger()})
	require.NoError(t, err)

	p := newPipeline(PipelineOptions{
		Fetcher:    fetcher,
		Sink:       m.mockDeliverer,
		StagingDir: t.TempDir(),
		Logger:     discardLogger(),
	})

	var posted string
	m.mockDeliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.mockDeliverer.EXPECT().Notify(gomock.Any(), "C777", gomock.Any()).DoAndReturn(
		func(_ context.Context, _, text string) error {
			posted = text
			return nil
		},
	).Times(1)

	tr := newTrigger(TriggerOptions{
		Pipeline: p,
		Sink:     m.mockDeliverer,
		Logger:   discardLogger(),
	})

	tr.TriggerCapture(context.Background(), "C777", "U1")
	tr.Wait()

	assert.True(t, strings.HasPrefix(posted, "❌ Screenshot failed: `fetch screenshot: "), posted)
	assert.NotContains(t, posted, "capture-key-0123")
	assert.NotContains(t, posted, "fetch screenshot: fetch screenshot")
}

func TestNewInstance(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	instance := NewInstance(Options{
		Fetcher:   m.mockFetcher,
		Sink:      m.mockDeliverer,
		Heartbeat: m.mockHeartbeat,
		Conn:      m.mockConnection,
		ChannelID: "C123",
		Logger:    discardLogger(),
	})

	assert.NotNil(t, instance.Pipeline)
	assert.NotNil(t, instance.Scheduler)
	assert.NotNil(t, instance.Trigger)
	assert.Equal(t, domain.DefaultCaption, instance.Scheduler.caption)
	assert.Equal(t, domain.DefaultTestCaption, instance.Trigger.caption)
	assert.Equal(t, domain.DefaultFormat, instance.Pipeline.format)
}
