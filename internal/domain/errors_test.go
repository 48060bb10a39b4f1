package domain

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "Should format configuration error with field",
			err:  &ConfigurationError{Field: "SCREENSHOT_KEY", Message: "is required"},
			want: "configuration error: SCREENSHOT_KEY: is required",
		},
		{
			name: "Should format configuration error without field",
			err:  &ConfigurationError{Message: "bad"},
			want: "configuration error: bad",
		},
		{
			name: "Should format fetch error with status",
			err:  &FetchError{StatusCode: 500, Status: "500 Internal Server Error"},
			want: "fetch screenshot: HTTP error: 500 Internal Server Error",
		},
		{
			name: "Should format fetch error with cause",
			err:  &FetchError{Err: io.ErrUnexpectedEOF},
			want: "fetch screenshot: unexpected EOF",
		},
		{
			name: "Should format destination not found error",
			err:  &DestinationNotFoundError{ChannelID: "C1", Reason: "bot is not a member"},
			want: "destination C1 not found: bot is not a member",
		},
		{
			name: "Should format delivery error",
			err:  &DeliveryError{ChannelID: "C1", Err: errors.New("rate limited")},
			want: "deliver to C1: rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	wrapped := fmt.Errorf("cycle: %w", &DeliveryError{ChannelID: "C1", Err: cause})

	var deliveryErr *DeliveryError
	require.True(t, errors.As(wrapped, &deliveryErr))
	assert.Equal(t, "C1", deliveryErr.ChannelID)
	assert.ErrorIs(t, wrapped, cause)

	var fetchErr *FetchError
	assert.False(t, errors.As(wrapped, &fetchErr))

	assert.ErrorIs(t, &FetchError{Err: cause}, cause)
	assert.ErrorIs(t, &DestinationNotFoundError{ChannelID: "C1", Err: cause}, cause)
}
